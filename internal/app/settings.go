package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/okian/fest/internal/adapters/docstore"
	"github.com/okian/fest/internal/domain/model"
	"github.com/okian/fest/pkg/logger"
)

// SettingsPatch changes the flags that are set and leaves nil ones alone.
type SettingsPatch struct {
	RegistrationOpen  *bool `json:"registrationOpen,omitempty"`
	MaintenanceMode   *bool `json:"maintenanceMode,omitempty"`
	ShowPointsHome    *bool `json:"showPointsHome,omitempty"`
	ShowPointsResults *bool `json:"showPointsResults,omitempty"`
}

// Empty reports whether the patch changes nothing.
func (p SettingsPatch) Empty() bool {
	return p.RegistrationOpen == nil && p.MaintenanceMode == nil &&
		p.ShowPointsHome == nil && p.ShowPointsResults == nil
}

// Settings resolves both settings documents. A points document older than
// the current schema is migrated and written back once.
func (s *Service) Settings(ctx context.Context) (model.Settings, error) {
	site, points, err := s.loadSettings(ctx)
	if err != nil {
		return model.DefaultSettings(), err
	}
	return model.ResolveSettings(site, points), nil
}

func (s *Service) loadSettings(ctx context.Context) (model.SiteDocument, model.PointsDocument, error) {
	var (
		site   model.SiteDocument
		points model.PointsDocument
	)
	if err := s.store.Get(ctx, model.CollectionSettings, model.SettingsSiteID, &site); err != nil &&
		!errors.Is(err, docstore.ErrNotFound) {
		return site, points, fmt.Errorf("load site settings: %w", err)
	}

	err := s.store.Get(ctx, model.CollectionSettings, model.SettingsPointsID, &points)
	missing := errors.Is(err, docstore.ErrNotFound)
	if err != nil && !missing {
		return site, points, fmt.Errorf("load points settings: %w", err)
	}

	migrated, changed := model.MigratePoints(points)
	if changed && !missing {
		if err := s.store.Set(ctx, model.CollectionSettings, model.SettingsPointsID, migrated); err != nil {
			// The migrated view is still correct for this read.
			s.logger.Warn(ctx, "persisting migrated points settings failed", logger.Error(err))
		} else {
			s.logger.Info(ctx, "points settings migrated",
				logger.Int("schemaVersion", migrated.SchemaVersion),
			)
		}
	}
	return site, migrated, nil
}

// UpdateSettings applies p to the stored documents and returns the resolved
// result.
func (s *Service) UpdateSettings(ctx context.Context, p SettingsPatch) (model.Settings, error) {
	site, points, err := s.loadSettings(ctx)
	if err != nil {
		return model.DefaultSettings(), err
	}

	if p.RegistrationOpen != nil || p.MaintenanceMode != nil {
		if p.RegistrationOpen != nil {
			site.RegistrationOpen = model.Bool(*p.RegistrationOpen)
		}
		if p.MaintenanceMode != nil {
			site.MaintenanceMode = model.Bool(*p.MaintenanceMode)
		}
		if err := s.store.Set(ctx, model.CollectionSettings, model.SettingsSiteID, site); err != nil {
			return model.DefaultSettings(), fmt.Errorf("save site settings: %w", err)
		}
	}

	if p.ShowPointsHome != nil || p.ShowPointsResults != nil {
		if p.ShowPointsHome != nil {
			points.ShowPointsHome = model.Bool(*p.ShowPointsHome)
		}
		if p.ShowPointsResults != nil {
			points.ShowPointsResults = model.Bool(*p.ShowPointsResults)
		}
		if err := s.store.Set(ctx, model.CollectionSettings, model.SettingsPointsID, points); err != nil {
			return model.DefaultSettings(), fmt.Errorf("save points settings: %w", err)
		}
	}

	resolved := model.ResolveSettings(site, points)
	s.logger.Info(ctx, "settings updated",
		logger.Bool("registrationOpen", resolved.RegistrationOpen),
		logger.Bool("maintenanceMode", resolved.MaintenanceMode),
		logger.Bool("showPointsHome", resolved.ShowPointsHome),
		logger.Bool("showPointsResults", resolved.ShowPointsResults),
	)
	return resolved, nil
}
