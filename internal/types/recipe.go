package types

import "strings"

// DogSize is the size category of the dog a recipe is meant for.
type DogSize string

const (
	DogSizeSmall  DogSize = "small"
	DogSizeMedium DogSize = "medium"
	DogSizeLarge  DogSize = "large"
)

// Normalize returns the size, falling back to medium when unset or unknown.
func (s DogSize) Normalize() DogSize {
	switch s {
	case DogSizeSmall, DogSizeMedium, DogSizeLarge:
		return s
	default:
		return DogSizeMedium
	}
}

// Servings maps the size to a serving count.
func (s DogSize) Servings() int {
	switch s.Normalize() {
	case DogSizeSmall:
		return 1
	case DogSizeLarge:
		return 4
	default:
		return 2
	}
}

// Label is the capitalised size used in recipe names.
func (s DogSize) Label() string {
	n := string(s.Normalize())
	return strings.ToUpper(n[:1]) + n[1:]
}
