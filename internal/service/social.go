package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/pageza/recipe-share/backend/internal/model"
)

// LikeResult is returned by ToggleLike.
type LikeResult struct {
	// Likes holds the ids of every recipe the user likes.
	Likes []uuid.UUID
	// RecipeLikes is the number of users liking the toggled recipe.
	RecipeLikes int64
}

// SocialService manages favorites and likes. Both are rows in a join table
// keyed by (recipe_id, user_id); a toggle deletes the row and inserts it
// only if nothing was deleted.
type SocialService struct {
	db *gorm.DB
}

var _ ISocialService = (*SocialService)(nil)

func NewSocialService(db *gorm.DB) *SocialService {
	return &SocialService{db: db}
}

// ToggleFavorite flips the recipe's membership in the user's favorites and
// returns the resulting favorite ids, oldest first.
func (s *SocialService) ToggleFavorite(ctx context.Context, identity model.Identity, recipeID string) ([]uuid.UUID, error) {
	id, err := s.resolve(ctx, identity, recipeID)
	if err != nil {
		return nil, err
	}
	db := s.db.WithContext(ctx)
	if err := toggle(db, &model.RecipeFavorite{RecipeID: id, UserID: identity.ID}, id, identity.ID); err != nil {
		return nil, fmt.Errorf("failed to toggle favorite: %w", err)
	}
	return s.recipeIDs(db, model.RecipeFavorite{}.TableName(), identity.ID)
}

// GetFavorites returns the user's favorite recipes, oldest favorite first.
func (s *SocialService) GetFavorites(ctx context.Context, identity model.Identity) ([]model.Recipe, error) {
	if err := s.requireUser(ctx, identity.ID); err != nil {
		return nil, err
	}
	var recipes []model.Recipe
	err := withCreator(s.db.WithContext(ctx)).
		Select("recipes.*").
		Joins("JOIN recipe_favorites ON recipe_favorites.recipe_id = recipes.id").
		Where("recipe_favorites.user_id = ?", identity.ID).
		Order("recipe_favorites.created_at ASC").
		Find(&recipes).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list favorites: %w", err)
	}
	return recipes, nil
}

// ToggleLike flips the user's like on the recipe.
func (s *SocialService) ToggleLike(ctx context.Context, identity model.Identity, recipeID string) (*LikeResult, error) {
	id, err := s.resolve(ctx, identity, recipeID)
	if err != nil {
		return nil, err
	}
	db := s.db.WithContext(ctx)
	if err := toggle(db, &model.RecipeLike{RecipeID: id, UserID: identity.ID}, id, identity.ID); err != nil {
		return nil, fmt.Errorf("failed to toggle like: %w", err)
	}

	likes, err := s.recipeIDs(db, model.RecipeLike{}.TableName(), identity.ID)
	if err != nil {
		return nil, err
	}
	result := &LikeResult{Likes: likes}
	if err := db.Model(&model.RecipeLike{}).Where("recipe_id = ?", id).Count(&result.RecipeLikes).Error; err != nil {
		return nil, fmt.Errorf("failed to count likes: %w", err)
	}
	return result, nil
}

// toggle flips the (recipeID, userID) row. row is the join model holding
// the same ids with a zero primary key.
func toggle(db *gorm.DB, row interface{}, recipeID, userID uuid.UUID) error {
	res := db.Where("recipe_id = ? AND user_id = ?", recipeID, userID).Delete(row)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected > 0 {
		return nil
	}
	return db.Clauses(clause.OnConflict{DoNothing: true}).Create(row).Error
}

// resolve validates the recipe id and checks that both sides still exist.
func (s *SocialService) resolve(ctx context.Context, identity model.Identity, recipeID string) (uuid.UUID, error) {
	recipeID = strings.TrimSpace(recipeID)
	if recipeID == "" {
		return uuid.Nil, errRecipeIDMissing
	}
	id, err := uuid.Parse(recipeID)
	if err != nil {
		return uuid.Nil, errRecipeIDInvalid
	}

	var count int64
	if err := s.db.WithContext(ctx).Model(&model.Recipe{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return uuid.Nil, fmt.Errorf("failed to load recipe: %w", err)
	}
	if count == 0 {
		return uuid.Nil, errRecipeNotFound
	}
	if err := s.requireUser(ctx, identity.ID); err != nil {
		return uuid.Nil, err
	}
	return id, nil
}

func (s *SocialService) requireUser(ctx context.Context, userID uuid.UUID) error {
	var user model.User
	err := s.db.WithContext(ctx).Select("id").First(&user, "id = ?", userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return errUserNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to load user: %w", err)
	}
	return nil
}

// recipeIDs lists the user's recipe ids in table, skipping recipes that no
// longer exist.
func (s *SocialService) recipeIDs(db *gorm.DB, table string, userID uuid.UUID) ([]uuid.UUID, error) {
	ids := []uuid.UUID{}
	err := db.Table(table).
		Joins("JOIN recipes ON recipes.id = "+table+".recipe_id").
		Where(table+".user_id = ?", userID).
		Order(table+".created_at ASC").
		Pluck(table+".recipe_id", &ids).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", table, err)
	}
	return ids, nil
}
