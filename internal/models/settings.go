package models

import (
	"encoding/json"
	"fmt"
	"math"
	"time"

	"github.com/julianstephens/foodlog/internal/constants"
)

// Settings holds the account screen preferences
type Settings struct {
	DisplayName          string          `json:"display_name"`          // name shown on the account tab
	NotificationsEnabled bool            `json:"notifications_enabled"` // whether reminders are enabled
	DarkMode             bool            `json:"dark_mode"`             // TUI color scheme
	Units                constants.Units `json:"units"`                 // metric or imperial display
	WaterGoalLiters      float64         `json:"water_goal_liters"`     // daily water goal
	Timezone             string          `json:"timezone"`              // IANA timezone name or "Local"
}

// DefaultSettings returns the settings used when nothing has been saved yet.
func DefaultSettings() Settings {
	return Settings{
		DisplayName:          constants.DefaultDisplayName,
		NotificationsEnabled: constants.DefaultNotificationsEnabled,
		DarkMode:             constants.DefaultDarkMode,
		Units:                constants.DefaultUnits,
		WaterGoalLiters:      constants.DefaultWaterGoalLiters,
		Timezone:             constants.DefaultTimezone,
	}
}

// DecodeSettings parses a settings blob, filling unset fields from the defaults.
func DecodeSettings(data []byte) (Settings, error) {
	s := DefaultSettings()
	if err := json.Unmarshal(data, &s); err != nil {
		return DefaultSettings(), fmt.Errorf("failed to decode settings: %w", err)
	}
	if s.Units == "" {
		s.Units = constants.DefaultUnits
	}
	if s.Timezone == "" {
		s.Timezone = constants.DefaultTimezone
	}
	return s, nil
}

// EncodeSettings serializes settings for storage.
func EncodeSettings(s Settings) ([]byte, error) {
	return json.Marshal(s)
}

// Location resolves the configured timezone. "Local" and "" map to time.Local.
func (s Settings) Location() (*time.Location, error) {
	if s.Timezone == "" || s.Timezone == constants.DefaultTimezone {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(s.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid timezone %q: %w", s.Timezone, err)
	}
	return loc, nil
}

// FormatWater renders liters in the configured units.
func (s Settings) FormatWater(liters float64) string {
	if s.Units == constants.UnitsImperial {
		return fmt.Sprintf("%.1f fl oz", liters*constants.LitersToFluidOunces)
	}
	return fmt.Sprintf("%.2fL", liters)
}

// Validate checks the settings for values the app cannot work with.
func (s Settings) Validate() error {
	if s.Units != constants.UnitsMetric && s.Units != constants.UnitsImperial {
		return fmt.Errorf("units must be %q or %q, got %q", constants.UnitsMetric, constants.UnitsImperial, s.Units)
	}
	if !(s.WaterGoalLiters > 0) || math.IsInf(s.WaterGoalLiters, 1) {
		return fmt.Errorf("water goal must be greater than zero")
	}
	if _, err := s.Location(); err != nil {
		return err
	}
	return nil
}
