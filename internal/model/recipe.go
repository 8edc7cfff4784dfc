package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// JSONStringArray stores a string slice as a JSON-encoded array column.
type JSONStringArray []string

// Value implements the driver.Valuer interface
func (a JSONStringArray) Value() (driver.Value, error) {
	if len(a) == 0 {
		return "[]", nil
	}
	b, err := json.Marshal([]string(a))
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements the sql.Scanner interface
func (a *JSONStringArray) Scan(value interface{}) error {
	if value == nil {
		*a = JSONStringArray{}
		return nil
	}

	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return fmt.Errorf("cannot scan %T into JSONStringArray", value)
	}

	var out []string
	if err := json.Unmarshal(bytes, &out); err != nil {
		return err
	}
	if out == nil {
		out = []string{}
	}
	*a = out
	return nil
}

// MarshalJSON keeps empty arrays as [] instead of null in API responses.
func (a JSONStringArray) MarshalJSON() ([]byte, error) {
	if a == nil {
		return []byte("[]"), nil
	}
	return json.Marshal([]string(a))
}

// Recipe is a dog recipe, either freshly generated or persisted.
type Recipe struct {
	ID              int64           `gorm:"primaryKey;autoIncrement" json:"id"`
	Name            string          `gorm:"type:text;not null" json:"name"`
	Description     *string         `gorm:"type:text" json:"description"`
	Ingredients     JSONStringArray `gorm:"type:json;not null" json:"ingredients"`
	Instructions    JSONStringArray `gorm:"type:json;not null" json:"instructions"`
	PrepTimeMinutes int             `gorm:"column:prep_time_minutes;not null" json:"prep_time_minutes"`
	Servings        int             `gorm:"not null" json:"servings"`
	CreatedAt       time.Time       `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

func (Recipe) TableName() string {
	return "recipes"
}
