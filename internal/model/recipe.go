package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// DefaultTitle is used when a generated response carries no usable title
const DefaultTitle = "Generated Recipe"

// StringList is an ordered list of strings stored as a JSON array column
type StringList []string

// Value implements the driver.Valuer interface
func (a StringList) Value() (driver.Value, error) {
	if len(a) == 0 {
		return "[]", nil
	}
	data, err := json.Marshal([]string(a))
	if err != nil {
		return nil, err
	}
	return string(data), nil
}

// Scan implements the sql.Scanner interface
func (a *StringList) Scan(value interface{}) error {
	if value == nil {
		*a = StringList{}
		return nil
	}

	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return fmt.Errorf("unsupported string list column type %T", value)
	}

	var list []string
	if err := json.Unmarshal(bytes, &list); err != nil {
		return fmt.Errorf("failed to decode string list: %w", err)
	}
	if list == nil {
		list = []string{}
	}
	*a = StringList(list)
	return nil
}

// Recipe is a generated recipe as parsed from a model response and stored locally
type Recipe struct {
	ID           uint       `gorm:"primaryKey;autoIncrement" json:"id"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
	Title        string     `gorm:"column:recipe_title;not null" json:"title"`
	Description  string     `gorm:"type:text;not null" json:"description"`
	PrepTime     string     `gorm:"not null" json:"prep_time"`
	CookTime     string     `gorm:"not null" json:"cook_time"`
	TotalTime    string     `gorm:"not null" json:"total_time"`
	Servings     string     `gorm:"not null" json:"servings"`
	Ingredients  StringList `gorm:"type:text;not null" json:"ingredients"`
	Instructions StringList `gorm:"type:text;not null" json:"instructions"`
	ImagePrompt  string     `gorm:"type:text;not null" json:"image_prompt"`
	ImageURL     *string    `gorm:"type:text" json:"image_url,omitempty"`
}

// TableName overrides the table name used by gorm
func (Recipe) TableName() string {
	return "recipes"
}

// WithImageURL returns a copy of the recipe carrying the given image URL.
// A blank url leaves the image unset.
func (r Recipe) WithImageURL(url string) Recipe {
	if url == "" {
		r.ImageURL = nil
		return r
	}
	r.ImageURL = &url
	return r
}

// HasContent reports whether the recipe carries anything beyond the default title
func (r Recipe) HasContent() bool {
	return r.Title != DefaultTitle ||
		len(r.Ingredients) > 0 ||
		len(r.Instructions) > 0 ||
		r.ImagePrompt != ""
}
