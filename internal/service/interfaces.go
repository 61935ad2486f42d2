package service

import (
	"context"

	"github.com/google/uuid"

	"github.com/pageza/recipe-share/backend/internal/model"
)

// IAuthService defines the interface for authentication operations
type IAuthService interface {
	Register(ctx context.Context, in RegisterInput) (*AuthResult, error)
	Login(ctx context.Context, email, password string) (*AuthResult, error)
	GetProfile(ctx context.Context, userID uuid.UUID) (*model.Identity, error)
	Authenticate(ctx context.Context, token string) (*model.Identity, error)
}

// IRecipeService defines the interface for recipe operations
type IRecipeService interface {
	Create(ctx context.Context, identity model.Identity, fields RecipeFields, image *ImageUpload) (*model.Recipe, error)
	List(ctx context.Context, filter RecipeFilter) ([]model.Recipe, error)
	Get(ctx context.Context, id string) (*model.Recipe, error)
	Update(ctx context.Context, identity model.Identity, id string, fields RecipeFields, image *ImageUpload) (*model.Recipe, error)
	Delete(ctx context.Context, identity model.Identity, id string) error
	ListCategories(ctx context.Context) ([]string, error)
	Statistics(ctx context.Context, days int) (*RecipeStatistics, error)
}

// ISocialService defines the interface for favorite and like operations
type ISocialService interface {
	ToggleFavorite(ctx context.Context, identity model.Identity, recipeID string) ([]uuid.UUID, error)
	GetFavorites(ctx context.Context, identity model.Identity) ([]model.Recipe, error)
	ToggleLike(ctx context.Context, identity model.Identity, recipeID string) (*LikeResult, error)
}
