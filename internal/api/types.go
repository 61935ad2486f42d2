package api

import (
	"time"

	"github.com/google/uuid"

	"github.com/pageza/recipe-share/backend/internal/model"
)

// CreatorResponse is the public part of a recipe's owner.
type CreatorResponse struct {
	ID       uuid.UUID `json:"id"`
	Username string    `json:"username,omitempty"`
}

// RecipeResponse represents the response structure for recipe-related API endpoints
type RecipeResponse struct {
	ID           uuid.UUID       `json:"id"`
	Title        string          `json:"title"`
	Ingredients  []string        `json:"ingredients"`
	Instructions string          `json:"instructions"`
	Category     string          `json:"category"`
	Image        string          `json:"image"`
	ImageURL     string          `json:"imageUrl"`
	CreatedBy    CreatorResponse `json:"createdBy"`
	Likes        []uuid.UUID     `json:"likes"`
	CreatedAt    time.Time       `json:"createdAt"`
	UpdatedAt    time.Time       `json:"updatedAt"`
}

func newRecipeResponse(r *model.Recipe) RecipeResponse {
	ingredients := []string(r.Ingredients)
	if ingredients == nil {
		ingredients = []string{}
	}
	creator := CreatorResponse{ID: r.CreatedBy}
	if r.Creator != nil {
		creator.Username = r.Creator.Username
	}
	return RecipeResponse{
		ID:           r.ID,
		Title:        r.Title,
		Ingredients:  ingredients,
		Instructions: r.Instructions,
		Category:     r.Category,
		Image:        r.Image,
		ImageURL:     r.Image,
		CreatedBy:    creator,
		Likes:        r.LikeUserIDs(),
		CreatedAt:    r.CreatedAt,
		UpdatedAt:    r.UpdatedAt,
	}
}

func newRecipeList(recipes []model.Recipe) []RecipeResponse {
	out := make([]RecipeResponse, 0, len(recipes))
	for i := range recipes {
		out = append(out, newRecipeResponse(&recipes[i]))
	}
	return out
}

// RegisterRequest is the body of POST /api/auth/register.
type RegisterRequest struct {
	Username string     `json:"username" form:"username"`
	Email    string     `json:"email" form:"email"`
	Password string     `json:"password" form:"password"`
	Role     model.Role `json:"role" form:"role"`
}

// LoginRequest is the body of POST /api/auth/login.
type LoginRequest struct {
	Email    string `json:"email" form:"email"`
	Password string `json:"password" form:"password"`
}

// ToggleRequest names the recipe a favorite or like toggle applies to.
type ToggleRequest struct {
	RecipeID string `json:"recipeId" form:"recipeId"`
}

// recipeRequest is the JSON form of a recipe create or update. Ingredients
// is comma-separated, like the multipart field.
type recipeRequest struct {
	Title        *string `json:"title"`
	Ingredients  *string `json:"ingredients"`
	Instructions *string `json:"instructions"`
	Category     *string `json:"category"`
}

// MessageResponse is a bare confirmation.
type MessageResponse struct {
	Message string `json:"message"`
}

type updateRecipeResponse struct {
	Message string         `json:"message"`
	Recipe  RecipeResponse `json:"recipe"`
}

type favoritesResponse struct {
	Favorites []uuid.UUID `json:"favorites"`
}

type likesResponse struct {
	Message     string      `json:"message"`
	Likes       []uuid.UUID `json:"likes"`
	RecipeLikes int64       `json:"recipeLikes"`
}

type rateLimitStatus struct {
	Limit     int    `json:"limit"`
	Remaining int    `json:"remaining"`
	ResetTime int64  `json:"reset_time"`
	Window    string `json:"window"`
	RecipeID  string `json:"recipe_id,omitempty"`
}
