package api

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/pageza/vegan-dog-recipes/backend/internal/metrics"
	"github.com/pageza/vegan-dog-recipes/backend/internal/service"
	"github.com/pageza/vegan-dog-recipes/backend/internal/types"
)

// RecipeHandler serves the recipe endpoints
type RecipeHandler struct {
	recipes   service.IRecipeService
	generator service.IRecipeGenerator
	archive   service.IRecipeArchive
	metrics   *metrics.Metrics
	logger    *zap.Logger
}

// NewRecipeHandler creates a new RecipeHandler. archive and m may be nil.
func NewRecipeHandler(
	recipes service.IRecipeService,
	generator service.IRecipeGenerator,
	archive service.IRecipeArchive,
	m *metrics.Metrics,
	logger *zap.Logger,
) *RecipeHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RecipeHandler{
		recipes:   recipes,
		generator: generator,
		archive:   archive,
		metrics:   m,
		logger:    logger,
	}
}

// RegisterRoutes mounts the recipe routes. Extra handlers run before
// GenerateRecipe, which is where the rate limiter goes.
func (h *RecipeHandler) RegisterRoutes(router *gin.RouterGroup, generateMiddleware ...gin.HandlerFunc) {
	recipes := router.Group("/recipes")
	{
		recipes.POST("/generate", append(generateMiddleware, h.GenerateRecipe)...)
		recipes.GET("/:id", h.GetRecipe)
		recipes.POST("", h.CreateRecipe)
		recipes.POST("/:id/export", h.ExportRecipe)
	}
}

// GenerateRecipe builds a new unsaved recipe. An empty body is a request with
// no preferences.
func (h *RecipeHandler) GenerateRecipe(c *gin.Context) {
	var req types.GenerateRecipeRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		h.respondError(c, &service.ValidationError{Message: "invalid request body: " + err.Error()})
		return
	}
	if err := h.recipes.ValidateGenerateRequest(&req); err != nil {
		h.respondError(c, err)
		return
	}

	recipe := h.generator.Generate(req)
	h.metrics.RecipeGenerated(string(req.DogSize.Normalize()))

	c.JSON(http.StatusOK, recipe)
}

// GetRecipe returns the stored recipe, or a JSON null when none has the id.
func (h *RecipeHandler) GetRecipe(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}

	recipe, err := h.recipes.GetRecipe(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	if recipe == nil {
		c.JSON(http.StatusOK, nil)
		return
	}

	c.JSON(http.StatusOK, recipe)
}

// CreateRecipe persists a recipe supplied by the client
func (h *RecipeHandler) CreateRecipe(c *gin.Context) {
	var req types.CreateRecipeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respondError(c, &service.ValidationError{Message: "invalid request body: " + err.Error()})
		return
	}

	recipe, err := h.recipes.CreateRecipe(c.Request.Context(), &req)
	if err != nil {
		h.respondError(c, err)
		return
	}
	h.metrics.RecipeCreated()

	c.JSON(http.StatusCreated, recipe)
}

// ExportRecipe uploads a stored recipe to object storage and returns a
// presigned download URL.
func (h *RecipeHandler) ExportRecipe(c *gin.Context) {
	if h.archive == nil {
		h.respondError(c, service.ErrArchiveDisabled)
		return
	}

	id, ok := h.parseID(c)
	if !ok {
		return
	}

	recipe, err := h.recipes.GetRecipe(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	if recipe == nil {
		c.JSON(http.StatusNotFound, types.ErrorResponse{Error: "Recipe not found"})
		return
	}

	resp, err := h.archive.Export(c.Request.Context(), recipe)
	if err != nil {
		h.respondError(c, err)
		return
	}
	h.metrics.RecipeExported()

	c.JSON(http.StatusOK, resp)
}

func (h *RecipeHandler) parseID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, types.ErrorResponse{Error: "recipe id must be an integer", Field: "id"})
		return 0, false
	}
	return id, true
}

func (h *RecipeHandler) respondError(c *gin.Context, err error) {
	var verr *service.ValidationError
	var serr *service.StorageError

	switch {
	case errors.As(err, &verr):
		c.JSON(http.StatusBadRequest, types.ErrorResponse{Error: verr.Message, Field: verr.Field})
	case errors.Is(err, service.ErrArchiveDisabled):
		c.JSON(http.StatusServiceUnavailable, types.ErrorResponse{Error: err.Error()})
	case errors.As(err, &serr):
		_ = c.Error(err)
		h.logger.Error("storage failure",
			zap.String("op", serr.Op),
			zap.String("request_id", c.GetString("request_id")),
			zap.Error(serr.Err),
		)
		c.JSON(http.StatusInternalServerError, types.ErrorResponse{Error: "Internal Server Error"})
	default:
		_ = c.Error(err)
		h.logger.Error("unexpected error", zap.Error(err))
		c.JSON(http.StatusInternalServerError, types.ErrorResponse{Error: "Internal Server Error"})
	}
}
