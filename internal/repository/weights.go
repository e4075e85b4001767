package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/luminacare/memory-lane/internal/types"
)

// weightsModel maps to the model_weights table. Each save appends a new row
// so older versions stay available for rollback.
type weightsModel struct {
	ID      int
	UserID  string
	Version string
	// Weights holds the full ModelWeights document, vectors as JSON arrays.
	// Finite float32 values round-trip losslessly through this encoding.
	Weights   json.RawMessage `gorm:"type:jsonb"`
	CreatedAt time.Time
}

func (weightsModel) TableName() string {
	return "model_weights"
}

// WeightsRepo persists per-user model weight snapshots.
type WeightsRepo struct {
	db *gorm.DB
}

// NewWeightsRepo returns a WeightsRepo.
func NewWeightsRepo(db *gorm.DB) *WeightsRepo {
	return &WeightsRepo{db: db}
}

// Save appends a weight snapshot for a user.
func (r *WeightsRepo) Save(ctx context.Context, userID string, weights types.ModelWeights) error {
	raw, err := marshalJSON(weights)
	if err != nil {
		return fmt.Errorf("failed to encode model weights: %w", err)
	}
	record := weightsModel{
		UserID:  userID,
		Version: weights.Version,
		Weights: raw,
	}
	if err := r.db.WithContext(ctx).Create(&record).Error; err != nil {
		return fmt.Errorf("failed to insert model weights: %w", err)
	}
	return nil
}

// LoadLatest returns the most recent weight snapshot for a user, or nil when
// none has been saved.
func (r *WeightsRepo) LoadLatest(ctx context.Context, userID string) (*types.ModelWeights, error) {
	var record weightsModel
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		First(&record).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load model weights: %w", err)
	}

	var weights types.ModelWeights
	if err := unmarshalJSON(record.Weights, &weights); err != nil {
		return nil, fmt.Errorf("failed to decode model weights: %w", err)
	}
	return &weights, nil
}
