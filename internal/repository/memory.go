package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/pgvector/pgvector-go"
	"gorm.io/gorm"

	"github.com/luminacare/memory-lane/internal/types"
)

// memoryModel maps to the memories table.
type memoryModel struct {
	ID      int
	UserID  string
	Title   string
	Summary string
	// Comfort is a 0-1 score of how soothing past reviews of this memory
	// have been, used in ranking.
	Comfort float64 `gorm:"column:comfort_score"`
	// Embedding stores the vector representation for similarity search.
	Embedding *pgvector.Vector `gorm:"type:vector"`
	CreatedAt time.Time
}

func (memoryModel) TableName() string {
	return "memories"
}

// MemoryRepo accesses memory data.
type MemoryRepo struct {
	db *gorm.DB
}

// NewMemoryRepo returns a MemoryRepo.
func NewMemoryRepo(db *gorm.DB) *MemoryRepo {
	return &MemoryRepo{db: db}
}

// AddMemory inserts a memory record.
func (r *MemoryRepo) AddMemory(ctx context.Context, mem types.Memory) error {
	var vector *pgvector.Vector
	if len(mem.Embedding) > 0 {
		v := pgvector.NewVector(mem.Embedding)
		vector = &v
	}
	record := memoryModel{
		UserID:    mem.UserID,
		Title:     mem.Title,
		Summary:   mem.Summary,
		Comfort:   mem.Comfort,
		Embedding: vector,
	}
	if err := r.db.WithContext(ctx).Create(&record).Error; err != nil {
		return fmt.Errorf("failed to insert memory: %w", err)
	}
	return nil
}

// RecentMemories returns a user's memories oldest to newest, bounded by limit.
func (r *MemoryRepo) RecentMemories(ctx context.Context, userID string, limit int) ([]types.Memory, error) {
	var records []memoryModel
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Find(&records).Error; err != nil {
		return nil, fmt.Errorf("failed to query memories: %w", err)
	}

	results := make([]types.Memory, 0, len(records))
	for _, record := range records {
		results = append(results, memoryFromModel(record))
	}

	// Oldest -> newest
	for i, j := 0, len(results)-1; i < j; i, j = i+1, j-1 {
		results[i], results[j] = results[j], results[i]
	}
	return results, nil
}

// RankMemories orders a user's memories for review by cosine similarity to
// the query embedding, blended with the stored comfort score.
func (r *MemoryRepo) RankMemories(ctx context.Context, userID string, embedding []float32, topK int) ([]types.MemoryRanking, error) {
	if len(embedding) == 0 {
		return nil, nil
	}

	query := `
		SELECT id::text AS memory_id,
		       1 - (embedding <=> $1) AS relevance_score,
		       COALESCE(comfort_score, 0) AS comfort_score
		FROM memories
		WHERE embedding IS NOT NULL AND user_id = $2
		ORDER BY (0.85 * (1 - (embedding <=> $1)) + 0.15 * COALESCE(comfort_score, 0)) DESC
		LIMIT $3`

	var results []types.MemoryRanking
	if err := r.db.WithContext(ctx).
		Raw(query, pgvector.NewVector(embedding), userID, topK).
		Scan(&results).Error; err != nil {
		return nil, fmt.Errorf("failed to rank memories: %w", err)
	}

	for i := range results {
		results[i].Reason = "Similar to what you have been thinking about lately"
	}
	return results, nil
}

// memoryFromModel converts database model to domain struct.
func memoryFromModel(model memoryModel) types.Memory {
	return types.Memory{
		ID:        model.ID,
		UserID:    model.UserID,
		Title:     model.Title,
		Summary:   model.Summary,
		Comfort:   model.Comfort,
		CreatedAt: model.CreatedAt,
	}
}

// marshalJSON encodes a value into JSONB, returning nil for empty values.
func marshalJSON(value any) (json.RawMessage, error) {
	if value == nil {
		return nil, nil
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return nil, err
	}
	if len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}
	return json.RawMessage(raw), nil
}

// unmarshalJSON decodes JSONB into the provided target.
func unmarshalJSON(data json.RawMessage, target any) error {
	if len(data) == 0 {
		return nil
	}
	return json.Unmarshal(data, target)
}
