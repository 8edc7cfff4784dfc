package types

// GenerateRecipeRequest represents the request body for generating a recipe
type GenerateRecipeRequest struct {
	DogSize              DogSize  `json:"dog_size,omitempty" validate:"omitempty,oneof=small medium large"`
	DietaryRestrictions  []string `json:"dietary_restrictions,omitempty"`
	PreferredIngredients []string `json:"preferred_ingredients,omitempty"`
}

// CreateRecipeRequest represents the request body for creating a recipe
type CreateRecipeRequest struct {
	Name            *string  `json:"name" validate:"required"`
	Description     *string  `json:"description"`
	Ingredients     []string `json:"ingredients" validate:"required"`
	Instructions    []string `json:"instructions" validate:"required"`
	PrepTimeMinutes int      `json:"prep_time_minutes" validate:"gt=0,lte=2147483647"`
	Servings        int      `json:"servings" validate:"gt=0,lte=2147483647"`
}

// ErrorResponse is the JSON body returned for failed requests
type ErrorResponse struct {
	Error string `json:"error"`
	Field string `json:"field,omitempty"`
}

// ExportResponse is returned after a recipe has been exported to object storage
type ExportResponse struct {
	ID        int64  `json:"id"`
	Key       string `json:"key"`
	URL       string `json:"url"`
	ExpiresIn int    `json:"expires_in_seconds"`
}
