package service

import (
	"context"

	"github.com/pageza/vegan-dog-recipes/backend/internal/model"
	"github.com/pageza/vegan-dog-recipes/backend/internal/types"
)

// IRecipeGenerator defines the interface for building new recipes
type IRecipeGenerator interface {
	Generate(req types.GenerateRecipeRequest) *model.Recipe
}

// IRecipeService defines the interface for recipe persistence
type IRecipeService interface {
	CreateRecipe(ctx context.Context, req *types.CreateRecipeRequest) (*model.Recipe, error)
	GetRecipe(ctx context.Context, id int64) (*model.Recipe, error)
	ValidateGenerateRequest(req *types.GenerateRecipeRequest) error
}

// IRecipeArchive defines the interface for exporting recipes to object storage
type IRecipeArchive interface {
	Export(ctx context.Context, recipe *model.Recipe) (*types.ExportResponse, error)
}
