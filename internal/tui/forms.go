package tui

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/huh"

	"github.com/julianstephens/foodlog/internal/constants"
	"github.com/julianstephens/foodlog/internal/flows"
	"github.com/julianstephens/foodlog/internal/models"
)

const (
	choiceFood   = "food"
	choiceWater  = "water"
	choiceScan   = "scan"
	choiceCustom = "custom"
)

func (m Model) theme() *huh.Theme {
	if m.settings.DarkMode {
		return huh.ThemeDracula()
	}
	return huh.ThemeCharm()
}

func NewMenuForm(fm *MenuFormModel) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("What would you like to log?").
				Options(
					huh.NewOption("Food (manual entry)", choiceFood),
					huh.NewOption("Water", choiceWater),
					huh.NewOption("Scan a photo", choiceScan),
				).
				Value(&fm.Choice),
		),
	)
}

// NewFoodForm builds the manual entry form. It also serves as the scan
// review form and the food editor; numbers are free text and anything
// unparsable is handled by the flow that consumes the form.
func NewFoodForm(fm *flows.FoodForm, title string) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Name").
				Value(&fm.Name),
			huh.NewInput().
				Title("Calories (kcal)").
				Value(&fm.Calories),
			huh.NewInput().
				Title("Protein (g)").
				Value(&fm.Protein),
			huh.NewInput().
				Title("Carbs (g)").
				Value(&fm.Carbs),
			huh.NewInput().
				Title("Fats (g)").
				Value(&fm.Fats),
		).Title(title),
	)
}

func validateWaterAmount(s string) error {
	if !flows.NewWaterPicker().SetCustom(s) {
		return errors.New("enter an amount greater than zero")
	}
	return nil
}

func NewWaterForm(fm *WaterFormModel, settings models.Settings) *huh.Form {
	presets := flows.NewWaterPicker().Presets()
	options := make([]huh.Option[string], 0, len(presets)+1)
	for i, p := range presets {
		options = append(options, huh.NewOption(settings.FormatWater(p), strconv.Itoa(i)))
	}
	options = append(options, huh.NewOption("Custom amount", choiceCustom))

	return huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("How much water?").
				Options(options...).
				Value(&fm.Preset),
		),
		huh.NewGroup(
			huh.NewInput().
				Title("Amount (liters)").
				Value(&fm.Custom).
				Validate(validateWaterAmount),
		).WithHideFunc(func() bool { return fm.Preset != choiceCustom }),
	)
}

// NewWaterEditForm edits the amount of an existing water entry.
func NewWaterEditForm(fm *WaterFormModel) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Amount (liters)").
				Value(&fm.Custom),
		).Title("Edit water"),
	)
}

func validateImagePath(s string) error {
	s = strings.TrimSpace(s)
	if s == "" {
		return errors.New("enter the path of a photo")
	}
	info, err := os.Stat(s)
	if err != nil {
		return fmt.Errorf("cannot open %s", s)
	}
	if info.IsDir() {
		return errors.New("path is a directory")
	}
	return nil
}

func NewScanForm(fm *ScanFormModel) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Photo to analyze").
				Description("Path to an image of your meal").
				Value(&fm.Path).
				Validate(validateImagePath),
		),
	)
}

func NewSettingsForm(fm *SettingsFormModel) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Display Name").
				Value(&fm.DisplayName),
			huh.NewSelect[constants.Units]().
				Title("Units").
				Options(
					huh.NewOption("Metric (L)", constants.UnitsMetric),
					huh.NewOption("Imperial (fl oz)", constants.UnitsImperial),
				).
				Value(&fm.Units),
			huh.NewInput().
				Title("Daily Water Goal (liters)").
				Value(&fm.WaterGoal).
				Validate(func(s string) error {
					v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
					if err != nil {
						return err
					}
					if v <= 0 {
						return fmt.Errorf("must be a positive number")
					}
					return nil
				}),
			huh.NewInput().
				Title("Timezone (IANA name or 'Local')").
				Description("Examples: Local, UTC, America/New_York, Europe/London, Asia/Tokyo").
				Value(&fm.Timezone).
				Validate(func(s string) error {
					if _, err := (models.Settings{Timezone: strings.TrimSpace(s)}).Location(); err != nil {
						return fmt.Errorf("invalid timezone name")
					}
					return nil
				}),
			huh.NewConfirm().
				Title("Notifications").
				Value(&fm.NotificationsEnabled),
			huh.NewConfirm().
				Title("Dark Mode").
				Value(&fm.DarkMode),
		),
	)
}

func settingsFormFrom(s models.Settings) *SettingsFormModel {
	return &SettingsFormModel{
		DisplayName:          s.DisplayName,
		NotificationsEnabled: s.NotificationsEnabled,
		DarkMode:             s.DarkMode,
		Units:                s.Units,
		WaterGoal:            flows.FormatAmount(s.WaterGoalLiters),
		Timezone:             s.Timezone,
	}
}

// toSettings applies the form on top of base.
func (fm *SettingsFormModel) toSettings(base models.Settings) (models.Settings, error) {
	s := base
	s.DisplayName = strings.TrimSpace(fm.DisplayName)
	s.NotificationsEnabled = fm.NotificationsEnabled
	s.DarkMode = fm.DarkMode
	s.Units = fm.Units
	s.Timezone = strings.TrimSpace(fm.Timezone)
	goal, err := strconv.ParseFloat(strings.TrimSpace(fm.WaterGoal), 64)
	if err != nil {
		return base, fmt.Errorf("invalid water goal: %w", err)
	}
	s.WaterGoalLiters = goal
	if err := s.Validate(); err != nil {
		return base, err
	}
	return s, nil
}

// waterPick turns the water form into a picker selection.
func (fm *WaterFormModel) waterPick() (*flows.WaterPicker, error) {
	p := flows.NewWaterPicker()
	if fm.Preset == choiceCustom {
		if !p.SetCustom(fm.Custom) {
			return nil, errors.New("enter an amount greater than zero")
		}
		return p, nil
	}
	i, err := strconv.Atoi(fm.Preset)
	if err != nil {
		return nil, fmt.Errorf("unknown preset %q", fm.Preset)
	}
	if err := p.SelectPreset(i); err != nil {
		return nil, err
	}
	return p, nil
}
