package services

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"nssc-portal/models"
	"nssc-portal/store"
	"nssc-portal/wizard"
)

// SettingsService reads and writes the settings/global document.
type SettingsService struct {
	docs store.DocumentStore
	log  *zap.Logger
}

func NewSettingsService(docs store.DocumentStore, log *zap.Logger) *SettingsService {
	if log == nil {
		log = zap.NewNop()
	}
	return &SettingsService{docs: docs, log: log}
}

// Get falls back to the defaults for any value that was never saved.
func (s *SettingsService) Get(ctx context.Context) (models.GlobalSettings, error) {
	settings := models.DefaultGlobalSettings()
	snap, err := s.docs.Get(ctx, models.CollectionSettings, models.GlobalSettingsID)
	if errors.Is(err, store.ErrNotFound) {
		return settings, nil
	}
	if err != nil {
		return models.GlobalSettings{}, err
	}
	var saved models.GlobalSettings
	if err := snap.DataTo(&saved); err != nil {
		return models.GlobalSettings{}, err
	}
	if saved.ActiveThemeName != "" {
		settings.ActiveThemeName = saved.ActiveThemeName
	}
	if saved.NavbarThemeName != "" {
		settings.NavbarThemeName = saved.NavbarThemeName
	}
	if saved.ActiveFont != "" {
		settings.ActiveFont = saved.ActiveFont
	}
	return settings, nil
}

func (s *SettingsService) Update(ctx context.Context, in models.GlobalSettings) (models.GlobalSettings, error) {
	data, err := wizard.ToMap(in)
	if err != nil {
		return models.GlobalSettings{}, err
	}
	if _, err := s.docs.Merge(ctx, models.CollectionSettings, models.GlobalSettingsID, data); err != nil {
		return models.GlobalSettings{}, err
	}
	s.log.Info("global settings updated", zap.String("theme", in.ActiveThemeName), zap.String("font", in.ActiveFont))
	return s.Get(ctx)
}
