package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/pageza/vegan-dog-recipes/backend/internal/model"
	"github.com/pageza/vegan-dog-recipes/backend/internal/types"
)

// RecipeService handles recipe persistence
type RecipeService struct {
	db       *gorm.DB
	validate *validator.Validate
	logger   *zap.Logger
}

// NewRecipeService creates a new RecipeService instance
func NewRecipeService(db *gorm.DB, logger *zap.Logger) *RecipeService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RecipeService{
		db:       db,
		validate: NewValidator(),
		logger:   logger,
	}
}

// NewValidator returns a validator that reports JSON field names.
func NewValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// ValidateCreateRequest checks a create payload before it reaches storage.
func (s *RecipeService) ValidateCreateRequest(req *types.CreateRecipeRequest) error {
	if req == nil {
		return &ValidationError{Message: "request body is required"}
	}
	return translate(s.validate.Struct(req))
}

// ValidateGenerateRequest checks the optional dog size of a generation request.
func (s *RecipeService) ValidateGenerateRequest(req *types.GenerateRecipeRequest) error {
	return translate(s.validate.Struct(req))
}

// CreateRecipe validates and persists a new recipe. The store assigns the
// identifier and creation timestamp.
func (s *RecipeService) CreateRecipe(ctx context.Context, req *types.CreateRecipeRequest) (*model.Recipe, error) {
	if err := s.ValidateCreateRequest(req); err != nil {
		return nil, err
	}

	recipe := &model.Recipe{
		Name:            *req.Name,
		Description:     req.Description,
		Ingredients:     model.JSONStringArray(req.Ingredients),
		Instructions:    model.JSONStringArray(req.Instructions),
		PrepTimeMinutes: req.PrepTimeMinutes,
		Servings:        req.Servings,
	}

	if err := s.db.WithContext(ctx).Create(recipe).Error; err != nil {
		s.logger.Error("recipe creation failed", zap.String("name", recipe.Name), zap.Error(err))
		return nil, &StorageError{Op: "create recipe", Err: err}
	}

	s.logger.Debug("recipe created", zap.Int64("id", recipe.ID))
	return recipe, nil
}

// GetRecipe retrieves a recipe by ID. A missing recipe yields (nil, nil).
func (s *RecipeService) GetRecipe(ctx context.Context, id int64) (*model.Recipe, error) {
	// ids are SERIAL (int4); anything outside that range cannot exist
	if id < 1 || id > math.MaxInt32 {
		return nil, nil
	}

	var recipe model.Recipe
	err := s.db.WithContext(ctx).Where("id = ?", id).Take(&recipe).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		s.logger.Error("recipe retrieval failed", zap.Int64("id", id), zap.Error(err))
		return nil, &StorageError{Op: "get recipe", Err: err}
	}
	return &recipe, nil
}

// CreateRequestFromRecipe turns a generated recipe into a create payload.
func CreateRequestFromRecipe(r *model.Recipe) *types.CreateRecipeRequest {
	name := r.Name
	return &types.CreateRecipeRequest{
		Name:            &name,
		Description:     r.Description,
		Ingredients:     append([]string{}, r.Ingredients...),
		Instructions:    append([]string{}, r.Instructions...),
		PrepTimeMinutes: r.PrepTimeMinutes,
		Servings:        r.Servings,
	}
}

func translate(err error) error {
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return &ValidationError{Message: err.Error()}
	}
	fe := verrs[0]
	var msg string
	switch fe.Tag() {
	case "required":
		msg = "is required"
	case "gt":
		msg = "must be a positive integer"
	case "lte":
		msg = fmt.Sprintf("must be at most %s", fe.Param())
	case "oneof":
		msg = fmt.Sprintf("must be one of: %s", strings.ReplaceAll(fe.Param(), " ", ", "))
	default:
		msg = fmt.Sprintf("failed %q validation", fe.Tag())
	}
	return &ValidationError{Field: fe.Field(), Message: msg}
}
