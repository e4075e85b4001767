package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/luminacare/memory-lane/internal/types"
)

// consentModel maps to the consent_settings table, one row per user.
type consentModel struct {
	UserID string `gorm:"primaryKey"`
	// Settings holds the full ConsentSettings document as JSONB so new flags
	// need no migration.
	Settings  json.RawMessage `gorm:"type:jsonb"`
	UpdatedAt time.Time
}

func (consentModel) TableName() string {
	return "consent_settings"
}

// ConsentRepo persists per-user consent settings.
type ConsentRepo struct {
	db *gorm.DB
}

// NewConsentRepo returns a ConsentRepo.
func NewConsentRepo(db *gorm.DB) *ConsentRepo {
	return &ConsentRepo{db: db}
}

// Save upserts a user's consent settings.
func (r *ConsentRepo) Save(ctx context.Context, userID string, consent types.ConsentSettings) error {
	raw, err := marshalJSON(consent)
	if err != nil {
		return fmt.Errorf("failed to encode consent settings: %w", err)
	}
	record := consentModel{UserID: userID, Settings: raw}
	if err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"settings", "updated_at"}),
		}).
		Create(&record).Error; err != nil {
		return fmt.Errorf("failed to save consent settings: %w", err)
	}
	return nil
}

// Load returns a user's consent settings, falling back to the privacy-first
// defaults when no row exists.
func (r *ConsentRepo) Load(ctx context.Context, userID string) (types.ConsentSettings, error) {
	var record consentModel
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&record).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return types.DefaultConsent(), nil
	}
	if err != nil {
		return types.ConsentSettings{}, fmt.Errorf("failed to load consent settings: %w", err)
	}

	var consent types.ConsentSettings
	if err := unmarshalJSON(record.Settings, &consent); err != nil {
		return types.ConsentSettings{}, fmt.Errorf("failed to decode consent settings: %w", err)
	}
	return consent.Normalize(), nil
}
