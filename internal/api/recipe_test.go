package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/pageza/vegan-dog-recipes/backend/internal/metrics"
	"github.com/pageza/vegan-dog-recipes/backend/internal/mocks"
	"github.com/pageza/vegan-dog-recipes/backend/internal/model"
	"github.com/pageza/vegan-dog-recipes/backend/internal/service"
	"github.com/pageza/vegan-dog-recipes/backend/internal/testhelpers"
	"github.com/pageza/vegan-dog-recipes/backend/internal/types"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func setupRecipeTestRouter(t *testing.T, archive service.IRecipeArchive) *gin.Engine {
	t.Helper()
	db := testhelpers.SetupSQLiteDatabase(t)
	logger := zaptest.NewLogger(t)
	handler := NewRecipeHandler(
		service.NewRecipeService(db, logger),
		service.NewRecipeGenerator(nil),
		archive,
		metrics.New(),
		logger,
	)
	return newTestEngine(handler)
}

func newTestEngine(handler *RecipeHandler) *gin.Engine {
	router := gin.New()
	handler.RegisterRoutes(router.Group("/api/v1"))
	return router
}

func performRequest(router http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		switch b := body.(type) {
		case string:
			buf.WriteString(b)
		default:
			_ = json.NewEncoder(&buf).Encode(b)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func itoa(id int64) string {
	return strconv.FormatInt(id, 10)
}

func validRecipeBody() map[string]interface{} {
	return map[string]interface{}{
		"name":              "Sweet Potato Mash",
		"description":       nil,
		"ingredients":       []string{"sweet potato", "peas"},
		"instructions":      []string{"Boil", "Mash", "Cool"},
		"prep_time_minutes": 20,
		"servings":          1,
	}
}

func TestGenerateRecipe(t *testing.T) {
	router := setupRecipeTestRouter(t, nil)

	w := performRequest(router, http.MethodPost, "/api/v1/recipes/generate", map[string]interface{}{
		"dog_size":              "large",
		"dietary_restrictions":  []string{"quinoa"},
		"preferred_ingredients": []string{"carrots", "onion"},
	})
	require.Equal(t, http.StatusOK, w.Code)

	var recipe model.Recipe
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &recipe))
	assert.NotZero(t, recipe.ID)
	assert.Equal(t, 4, recipe.Servings)
	assert.Contains(t, recipe.Name, "Vegan Large Dog")
	assert.Equal(t, "carrots", recipe.Ingredients[0])
	assert.NotContains(t, recipe.Ingredients, "onion")
	assert.NotContains(t, recipe.Ingredients, "quinoa")
	assert.Contains(t, *recipe.Description, "Avoids: quinoa.")
}

func TestGenerateRecipeEmptyBody(t *testing.T) {
	router := setupRecipeTestRouter(t, nil)

	w := performRequest(router, http.MethodPost, "/api/v1/recipes/generate", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var recipe model.Recipe
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &recipe))
	assert.Equal(t, 2, recipe.Servings)
	assert.Contains(t, recipe.Name, "Vegan Medium Dog")
}

func TestGenerateRecipeRejectsUnknownSize(t *testing.T) {
	router := setupRecipeTestRouter(t, nil)

	w := performRequest(router, http.MethodPost, "/api/v1/recipes/generate", map[string]string{"dog_size": "giant"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	var resp types.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "dog_size", resp.Field)
}

func TestCreateAndGetRecipe(t *testing.T) {
	router := setupRecipeTestRouter(t, nil)

	w := performRequest(router, http.MethodPost, "/api/v1/recipes", validRecipeBody())
	require.Equal(t, http.StatusCreated, w.Code)

	var created model.Recipe
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	assert.NotZero(t, created.ID)
	assert.Nil(t, created.Description)
	assert.False(t, created.CreatedAt.IsZero())

	w = performRequest(router, http.MethodGet, "/api/v1/recipes/"+itoa(created.ID), nil)
	require.Equal(t, http.StatusOK, w.Code)

	var got model.Recipe
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, created.ID, got.ID)
	assert.Equal(t, "Sweet Potato Mash", got.Name)
	assert.Equal(t, []string{"Boil", "Mash", "Cool"}, []string(got.Instructions))
}

func TestGetRecipeUnknownIDReturnsNull(t *testing.T) {
	router := setupRecipeTestRouter(t, nil)

	w := performRequest(router, http.MethodGet, "/api/v1/recipes/999", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "null", w.Body.String())
}

func TestGetRecipeOutOfRangeIDReturnsNull(t *testing.T) {
	router := setupRecipeTestRouter(t, nil)

	w := performRequest(router, http.MethodGet, "/api/v1/recipes/99999999999", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "null", w.Body.String())
}

func TestGetRecipeRejectsNonIntegerID(t *testing.T) {
	router := setupRecipeTestRouter(t, nil)

	w := performRequest(router, http.MethodGet, "/api/v1/recipes/abc", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCreateRecipeValidation(t *testing.T) {
	tests := []struct {
		name  string
		edit  func(body map[string]interface{})
		field string
	}{
		{"missing name", func(b map[string]interface{}) { delete(b, "name") }, "name"},
		{"missing ingredients", func(b map[string]interface{}) { delete(b, "ingredients") }, "ingredients"},
		{"null instructions", func(b map[string]interface{}) { b["instructions"] = nil }, "instructions"},
		{"zero prep time", func(b map[string]interface{}) { b["prep_time_minutes"] = 0 }, "prep_time_minutes"},
		{"negative servings", func(b map[string]interface{}) { b["servings"] = -2 }, "servings"},
		{"prep time beyond int4", func(b map[string]interface{}) { b["prep_time_minutes"] = 3000000000 }, "prep_time_minutes"},
		{"servings beyond int4", func(b map[string]interface{}) { b["servings"] = 2147483648 }, "servings"},
		{"ingredients not strings", func(b map[string]interface{}) { b["ingredients"] = []int{1, 2} }, ""},
		{"fractional servings", func(b map[string]interface{}) { b["servings"] = 1.5 }, ""},
	}

	router := setupRecipeTestRouter(t, nil)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body := validRecipeBody()
			tt.edit(body)

			w := performRequest(router, http.MethodPost, "/api/v1/recipes", body)
			assert.Equal(t, http.StatusBadRequest, w.Code)

			var resp types.ErrorResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			assert.NotEmpty(t, resp.Error)
			assert.Equal(t, tt.field, resp.Field)
		})
	}

	w := performRequest(router, http.MethodPost, "/api/v1/recipes", "{not json")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCreateRecipeAcceptsEmptyLists(t *testing.T) {
	router := setupRecipeTestRouter(t, nil)
	body := validRecipeBody()
	body["ingredients"] = []string{}
	body["instructions"] = []string{}

	w := performRequest(router, http.MethodPost, "/api/v1/recipes", body)
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Contains(t, w.Body.String(), `"ingredients":[]`)
}

func TestCreateRecipeStorageErrorIs500(t *testing.T) {
	recipes := new(mocks.MockRecipeService)
	recipes.On("CreateRecipe", mock.Anything, mock.AnythingOfType("*types.CreateRecipeRequest")).
		Return(nil, &service.StorageError{Op: "create recipe", Err: errors.New("disk full")})
	router := newTestEngine(NewRecipeHandler(recipes, service.NewRecipeGenerator(nil), nil, nil, zaptest.NewLogger(t)))

	w := performRequest(router, http.MethodPost, "/api/v1/recipes", validRecipeBody())
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"error":"Internal Server Error"}`, w.Body.String())
	assert.NotContains(t, w.Body.String(), "disk full")
	recipes.AssertExpectations(t)
}

func TestGetRecipeStorageErrorIs500(t *testing.T) {
	recipes := new(mocks.MockRecipeService)
	recipes.On("GetRecipe", mock.Anything, int64(5)).
		Return(nil, &service.StorageError{Op: "get recipe", Err: errors.New("timeout")})
	router := newTestEngine(NewRecipeHandler(recipes, service.NewRecipeGenerator(nil), nil, nil, zaptest.NewLogger(t)))

	w := performRequest(router, http.MethodGet, "/api/v1/recipes/5", nil)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	recipes.AssertExpectations(t)
}

func TestGenerateRecipeUsesGenerator(t *testing.T) {
	recipes := new(mocks.MockRecipeService)
	generator := new(mocks.MockRecipeGenerator)
	req := types.GenerateRecipeRequest{DogSize: types.DogSizeSmall, DietaryRestrictions: []string{"peas"}}
	want := &model.Recipe{ID: 9, Name: "Vegan Small Dog Steamed Bowl", Servings: 1, PrepTimeMinutes: 25}

	recipes.On("ValidateGenerateRequest", &req).Return(nil)
	generator.On("Generate", req).Return(want)
	router := newTestEngine(NewRecipeHandler(recipes, generator, nil, nil, zaptest.NewLogger(t)))

	w := performRequest(router, http.MethodPost, "/api/v1/recipes/generate", req)
	require.Equal(t, http.StatusOK, w.Code)

	var got model.Recipe
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, want.Name, got.Name)
	recipes.AssertExpectations(t)
	generator.AssertExpectations(t)
}

func TestExportRecipe(t *testing.T) {
	archive := new(mocks.MockRecipeArchive)
	router := setupRecipeTestRouter(t, archive)

	w := performRequest(router, http.MethodPost, "/api/v1/recipes", validRecipeBody())
	require.Equal(t, http.StatusCreated, w.Code)
	var created model.Recipe
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))

	archive.On("Export", mock.Anything, mock.MatchedBy(func(r *model.Recipe) bool {
		return r.ID == created.ID
	})).Return(&types.ExportResponse{
		ID:        created.ID,
		Key:       service.ExportKey(created.ID),
		URL:       "https://example.com/signed",
		ExpiresIn: int((15 * time.Minute).Seconds()),
	}, nil)

	w = performRequest(router, http.MethodPost, "/api/v1/recipes/"+itoa(created.ID)+"/export", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp types.ExportResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "https://example.com/signed", resp.URL)
	assert.Equal(t, 900, resp.ExpiresIn)
	archive.AssertExpectations(t)

	w = performRequest(router, http.MethodPost, "/api/v1/recipes/424242/export", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestExportRecipeDisabled(t *testing.T) {
	router := setupRecipeTestRouter(t, nil)

	w := performRequest(router, http.MethodPost, "/api/v1/recipes/1/export", nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)

	// A disabled archive implementation is reported the same way.
	router = setupRecipeTestRouter(t, service.NewRecipeArchive(nil, nil))
	w = performRequest(router, http.MethodPost, "/api/v1/recipes", validRecipeBody())
	require.Equal(t, http.StatusCreated, w.Code)
	var created model.Recipe
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))

	w = performRequest(router, http.MethodPost, "/api/v1/recipes/"+itoa(created.ID)+"/export", nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

type fakePinger struct{ err error }

func (f fakePinger) HealthCheck(context.Context) error { return f.err }

func TestHealthCheck(t *testing.T) {
	router := gin.New()
	NewHealthHandler(fakePinger{}, zaptest.NewLogger(t)).RegisterRoutes(router)

	for _, path := range []string{"/health", "/api/v1/healthcheck"} {
		w := performRequest(router, http.MethodGet, path, nil)
		require.Equal(t, http.StatusOK, w.Code)

		var body map[string]string
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.Equal(t, "ok", body["status"])
		assert.Equal(t, "ok", body["database"])
		_, err := time.Parse(time.RFC3339, body["timestamp"])
		assert.NoError(t, err)
	}

	router = gin.New()
	NewHealthHandler(fakePinger{err: errors.New("down")}, zaptest.NewLogger(t)).RegisterRoutes(router)
	w := performRequest(router, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}
