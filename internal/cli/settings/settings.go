package settings

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/julianstephens/foodlog/internal/cli"
	"github.com/julianstephens/foodlog/internal/constants"
	"github.com/julianstephens/foodlog/internal/models"
)

type SettingsShowCmd struct{}

func (c *SettingsShowCmd) Run(ctx *cli.Context) error {
	s := ctx.Settings
	ctx.Println("Current Settings:")
	ctx.Printf("  Display Name:          %s\n", s.DisplayName)
	ctx.Printf("  Notifications Enabled: %v\n", s.NotificationsEnabled)
	ctx.Printf("  Dark Mode:             %v\n", s.DarkMode)
	ctx.Printf("  Units:                 %s\n", s.Units)
	ctx.Printf("  Water Goal:            %s\n", s.FormatWater(s.WaterGoalLiters))
	ctx.Printf("  Timezone:              %s\n", s.Timezone)
	return nil
}

type SettingsSetCmd struct {
	Name  string `arg:"" help:"Setting name (display_name, notifications_enabled, dark_mode, units, water_goal_liters, timezone)."`
	Value string `arg:"" help:"New value."`
}

func (c *SettingsSetCmd) Run(ctx *cli.Context) error {
	if err := ctx.AcquireLock(); err != nil {
		return err
	}
	updated, err := Apply(ctx.Settings, c.Name, c.Value)
	if err != nil {
		return err
	}
	if err := ctx.SaveSettings(updated); err != nil {
		return fmt.Errorf("failed to save settings: %w", err)
	}
	ctx.Println("Settings updated successfully.")
	return nil
}

// Apply returns s with the named setting parsed from value.
func Apply(s models.Settings, name, value string) (models.Settings, error) {
	value = strings.TrimSpace(value)
	switch strings.ToLower(strings.ReplaceAll(name, "-", "_")) {
	case constants.SettingDisplayName:
		s.DisplayName = value
	case constants.SettingNotifications:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return s, fmt.Errorf("%s must be true or false: %w", name, err)
		}
		s.NotificationsEnabled = b
	case constants.SettingDarkMode:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return s, fmt.Errorf("%s must be true or false: %w", name, err)
		}
		s.DarkMode = b
	case constants.SettingUnits:
		s.Units = constants.Units(strings.ToLower(value))
	case constants.SettingWaterGoal:
		v, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return s, fmt.Errorf("%s must be a number: %w", name, err)
		}
		s.WaterGoalLiters = v
	case constants.SettingTimezone:
		s.Timezone = value
	default:
		return s, fmt.Errorf("unknown setting %q", name)
	}
	return s, s.Validate()
}
