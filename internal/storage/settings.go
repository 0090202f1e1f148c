package storage

import (
	"errors"
	"fmt"

	"github.com/julianstephens/foodlog/internal/constants"
	"github.com/julianstephens/foodlog/internal/models"
)

// LoadSettings reads the account settings. A missing key yields the
// defaults with no error; an undecodable blob yields the defaults and the
// decode error so callers can log it.
func LoadSettings(p Provider) (models.Settings, error) {
	data, err := p.Get(constants.SettingsKey)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return models.DefaultSettings(), nil
		}
		return models.DefaultSettings(), fmt.Errorf("failed to read settings: %w", err)
	}
	return models.DecodeSettings(data)
}

// SaveSettings validates and persists the account settings.
func SaveSettings(p Provider, s models.Settings) error {
	if err := s.Validate(); err != nil {
		return err
	}
	data, err := models.EncodeSettings(s)
	if err != nil {
		return fmt.Errorf("failed to encode settings: %w", err)
	}
	if err := p.Set(constants.SettingsKey, data); err != nil {
		return fmt.Errorf("failed to save settings: %w", err)
	}
	return nil
}
