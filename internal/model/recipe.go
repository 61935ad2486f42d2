package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// RecipeCategories is the fixed set of categories a recipe may belong to.
var RecipeCategories = []string{"Breakfast", "Lunch", "Dinner", "Dessert", "Drinks"}

// IsRecipeCategory reports whether c is one of RecipeCategories. The
// comparison is case-sensitive.
func IsRecipeCategory(c string) bool {
	for _, known := range RecipeCategories {
		if c == known {
			return true
		}
	}
	return false
}

// JSONBStringArray is a custom type for handling string arrays in JSONB
type JSONBStringArray []string

// Value implements the driver.Valuer interface
func (a JSONBStringArray) Value() (driver.Value, error) {
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
func (a *JSONBStringArray) Scan(value interface{}) error {
	if value == nil {
		*a = JSONBStringArray{}
		return nil
	}

	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return fmt.Errorf("unsupported type %T for JSONBStringArray", value)
	}

	return json.Unmarshal(bytes, a)
}

type Recipe struct {
	ID           uuid.UUID        `gorm:"type:varchar(36);primarykey" json:"id"`
	CreatedAt    time.Time        `gorm:"index" json:"created_at"`
	UpdatedAt    time.Time        `json:"updated_at"`
	Title        string           `gorm:"size:255;not null;uniqueIndex" json:"title"`
	Ingredients  JSONBStringArray `gorm:"type:jsonb;not null;default:'[]'" json:"ingredients"`
	Instructions string           `gorm:"type:text;not null" json:"instructions"`
	Category     string           `gorm:"size:50;not null;index" json:"category"`
	Image        string           `gorm:"size:512" json:"image"`
	CreatedBy    uuid.UUID        `gorm:"type:varchar(36);not null;index" json:"created_by"`
	Creator      *User            `gorm:"foreignKey:CreatedBy" json:"-"`
	Likes        []RecipeLike     `gorm:"foreignKey:RecipeID" json:"-"`
}

func (r *Recipe) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}

// LikeUserIDs returns the ids of the users who liked the recipe, in the
// order the likes were loaded.
func (r *Recipe) LikeUserIDs() []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(r.Likes))
	for _, l := range r.Likes {
		ids = append(ids, l.UserID)
	}
	return ids
}
