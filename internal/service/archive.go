package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/pageza/vegan-dog-recipes/backend/internal/model"
	"github.com/pageza/vegan-dog-recipes/backend/internal/types"
)

// ExportURLExpiry is how long a presigned export URL stays valid
const ExportURLExpiry = 15 * time.Minute

// ObjectStore is the subset of config.S3Config used for recipe export
type ObjectStore interface {
	Upload(ctx context.Context, key string, body []byte, contentType string) error
	GeneratePresignedURL(ctx context.Context, objectKey string, expiration time.Duration) (string, error)
}

// RecipeArchive writes recipes to object storage as JSON documents
type RecipeArchive struct {
	store  ObjectStore
	logger *zap.Logger
}

// NewRecipeArchive creates a new RecipeArchive. A nil store disables export.
func NewRecipeArchive(store ObjectStore, logger *zap.Logger) *RecipeArchive {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RecipeArchive{store: store, logger: logger}
}

// ExportKey is the object key a recipe is stored under
func ExportKey(id int64) string {
	return fmt.Sprintf("recipes/%d.json", id)
}

// Export uploads the recipe and returns a time-limited download URL
func (a *RecipeArchive) Export(ctx context.Context, recipe *model.Recipe) (*types.ExportResponse, error) {
	if a == nil || a.store == nil {
		return nil, ErrArchiveDisabled
	}

	body, err := json.MarshalIndent(recipe, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode recipe %d: %w", recipe.ID, err)
	}

	key := ExportKey(recipe.ID)
	if err := a.store.Upload(ctx, key, body, "application/json"); err != nil {
		a.logger.Error("recipe upload failed", zap.String("key", key), zap.Error(err))
		return nil, &StorageError{Op: "upload recipe", Err: err}
	}

	url, err := a.store.GeneratePresignedURL(ctx, key, ExportURLExpiry)
	if err != nil {
		a.logger.Error("presigning recipe export failed", zap.String("key", key), zap.Error(err))
		return nil, &StorageError{Op: "presign recipe", Err: err}
	}

	a.logger.Info("recipe exported", zap.Int64("id", recipe.ID), zap.String("key", key))
	return &types.ExportResponse{
		ID:        recipe.ID,
		Key:       key,
		URL:       url,
		ExpiresIn: int(ExportURLExpiry.Seconds()),
	}, nil
}
