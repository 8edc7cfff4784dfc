package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/pageza/vegan-dog-recipes/backend/internal/model"
	"github.com/pageza/vegan-dog-recipes/backend/internal/types"
)

// MockRecipeService is a mock implementation of the recipe service
type MockRecipeService struct {
	mock.Mock
}

// CreateRecipe mocks the CreateRecipe method
func (m *MockRecipeService) CreateRecipe(ctx context.Context, req *types.CreateRecipeRequest) (*model.Recipe, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Recipe), args.Error(1)
}

// GetRecipe mocks the GetRecipe method
func (m *MockRecipeService) GetRecipe(ctx context.Context, id int64) (*model.Recipe, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Recipe), args.Error(1)
}

// ValidateGenerateRequest mocks the ValidateGenerateRequest method
func (m *MockRecipeService) ValidateGenerateRequest(req *types.GenerateRecipeRequest) error {
	args := m.Called(req)
	return args.Error(0)
}

// MockRecipeGenerator is a mock implementation of the recipe generator
type MockRecipeGenerator struct {
	mock.Mock
}

// Generate mocks the Generate method
func (m *MockRecipeGenerator) Generate(req types.GenerateRecipeRequest) *model.Recipe {
	args := m.Called(req)
	if args.Get(0) == nil {
		return nil
	}
	return args.Get(0).(*model.Recipe)
}

// MockRecipeArchive is a mock implementation of the recipe archive
type MockRecipeArchive struct {
	mock.Mock
}

// Export mocks the Export method
func (m *MockRecipeArchive) Export(ctx context.Context, recipe *model.Recipe) (*types.ExportResponse, error) {
	args := m.Called(ctx, recipe)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.ExportResponse), args.Error(1)
}
