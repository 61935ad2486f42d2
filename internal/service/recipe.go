package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/pageza/recipe-share/backend/internal/logger"
	"github.com/pageza/recipe-share/backend/internal/model"
	"github.com/pageza/recipe-share/backend/internal/storage"
)

// DefaultStatisticsDays is the window used when no day count is given.
const DefaultStatisticsDays = 30

// RecipeFields holds user-supplied recipe fields. A nil field is left
// unchanged on update and counts as missing on create. Ingredients is a
// comma-separated list.
type RecipeFields struct {
	Title        *string
	Ingredients  *string
	Instructions *string
	Category     *string
}

// ImageUpload is an image received with a create or update request.
type ImageUpload struct {
	Filename string
	Body     io.Reader
}

// RecipeFilter narrows List. Empty fields do not filter.
type RecipeFilter struct {
	Category string
	Search   string
}

// CategoryCount is one row of the statistics breakdown.
type CategoryCount struct {
	Category string `json:"category"`
	Count    int64  `json:"count"`
}

// RecipeStatistics summarises recipes per category.
type RecipeStatistics struct {
	TotalRecipes int64           `json:"totalRecipes"`
	Days         int             `json:"days"`
	Stats        []CategoryCount `json:"stats"`
}

type RecipeService struct {
	db     *gorm.DB
	images storage.ImageStore
	log    *logger.Logger
}

var _ IRecipeService = (*RecipeService)(nil)

func NewRecipeService(db *gorm.DB, images storage.ImageStore, log *logger.Logger) *RecipeService {
	return &RecipeService{db: db, images: images, log: log}
}

// ParseIngredients splits a comma-separated list, trimming entries and
// dropping empty ones.
func ParseIngredients(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func trimmed(s *string) string {
	if s == nil {
		return ""
	}
	return strings.TrimSpace(*s)
}

func parseRecipeID(id string) (uuid.UUID, error) {
	parsed, err := uuid.Parse(strings.TrimSpace(id))
	if err != nil {
		return uuid.Nil, errRecipeNotFound
	}
	return parsed, nil
}

func withCreator(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Creator", func(tx *gorm.DB) *gorm.DB { return tx.Select("id", "username") }).
		Preload("Likes", func(tx *gorm.DB) *gorm.DB { return tx.Order("created_at ASC") })
}

func (s *RecipeService) Create(ctx context.Context, identity model.Identity, fields RecipeFields, image *ImageUpload) (*model.Recipe, error) {
	if err := RequireAdmin(identity); err != nil {
		return nil, err
	}

	title := trimmed(fields.Title)
	instructions := trimmed(fields.Instructions)
	category := trimmed(fields.Category)
	var ingredients []string
	if fields.Ingredients != nil {
		ingredients = ParseIngredients(*fields.Ingredients)
	}
	if title == "" || instructions == "" || category == "" || len(ingredients) == 0 {
		return nil, errFieldsRequired
	}
	if !model.IsRecipeCategory(category) {
		return nil, errInvalidCategory
	}

	db := s.db.WithContext(ctx)
	if err := s.checkTitleAvailable(db, title, uuid.Nil); err != nil {
		return nil, err
	}

	recipe := model.Recipe{
		Title:        title,
		Ingredients:  ingredients,
		Instructions: instructions,
		Category:     category,
		CreatedBy:    identity.ID,
	}

	if image != nil {
		ref, err := s.storeImage(ctx, image)
		if err != nil {
			return nil, err
		}
		recipe.Image = ref
	}

	if err := db.Omit(clause.Associations).Create(&recipe).Error; err != nil {
		s.discardImage(ctx, recipe.Image)
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, errTitleTaken
		}
		return nil, fmt.Errorf("failed to create recipe: %w", err)
	}

	return s.load(ctx, recipe.ID)
}

func (s *RecipeService) List(ctx context.Context, filter RecipeFilter) ([]model.Recipe, error) {
	query := withCreator(s.db.WithContext(ctx)).Order("created_at DESC")

	if category := strings.TrimSpace(filter.Category); category != "" {
		query = query.Where("category = ?", category)
	}
	if search := strings.TrimSpace(filter.Search); search != "" {
		query = titleContains(query, search)
	}

	var recipes []model.Recipe
	if err := query.Find(&recipes).Error; err != nil {
		return nil, fmt.Errorf("failed to list recipes: %w", err)
	}
	return recipes, nil
}

func (s *RecipeService) Get(ctx context.Context, id string) (*model.Recipe, error) {
	recipeID, err := parseRecipeID(id)
	if err != nil {
		return nil, err
	}
	return s.load(ctx, recipeID)
}

func (s *RecipeService) Update(ctx context.Context, identity model.Identity, id string, fields RecipeFields, image *ImageUpload) (*model.Recipe, error) {
	recipeID, err := parseRecipeID(id)
	if err != nil {
		return nil, err
	}

	db := s.db.WithContext(ctx)
	var recipe model.Recipe
	if err := db.First(&recipe, "id = ?", recipeID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errRecipeNotFound
		}
		return nil, fmt.Errorf("failed to load recipe: %w", err)
	}

	if err := RequireOwnerOrAdmin(identity, recipe.CreatedBy); err != nil {
		return nil, err
	}

	// Blank fields leave the stored value unchanged; edit forms send every field.
	if title := trimmed(fields.Title); title != "" {
		if title != recipe.Title {
			if err := s.checkTitleAvailable(db, title, recipe.ID); err != nil {
				return nil, err
			}
		}
		recipe.Title = title
	}
	if fields.Ingredients != nil {
		if ingredients := ParseIngredients(*fields.Ingredients); len(ingredients) > 0 {
			recipe.Ingredients = ingredients
		}
	}
	if instructions := trimmed(fields.Instructions); instructions != "" {
		recipe.Instructions = instructions
	}
	if category := trimmed(fields.Category); category != "" {
		if !model.IsRecipeCategory(category) {
			return nil, errInvalidCategory
		}
		recipe.Category = category
	}

	var newImage string
	if image != nil {
		ref, err := s.storeImage(ctx, image)
		if err != nil {
			return nil, err
		}
		// The previous image is gone even if the save below fails.
		s.discardImage(ctx, recipe.Image)
		newImage = ref
		recipe.Image = ref
	}

	if err := db.Omit(clause.Associations).Save(&recipe).Error; err != nil {
		s.discardImage(ctx, newImage)
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, errTitleTaken
		}
		return nil, fmt.Errorf("failed to update recipe: %w", err)
	}

	return s.load(ctx, recipe.ID)
}

// Delete removes the recipe together with its favorites, likes and image.
func (s *RecipeService) Delete(ctx context.Context, identity model.Identity, id string) error {
	recipeID, err := parseRecipeID(id)
	if err != nil {
		return err
	}

	var image string
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var recipe model.Recipe
		if err := tx.Select("id", "created_by", "image").First(&recipe, "id = ?", recipeID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return errRecipeNotFound
			}
			return fmt.Errorf("failed to load recipe: %w", err)
		}
		if err := RequireOwnerOrAdmin(identity, recipe.CreatedBy); err != nil {
			return err
		}

		if err := tx.Where("recipe_id = ?", recipeID).Delete(&model.RecipeFavorite{}).Error; err != nil {
			return fmt.Errorf("failed to delete favorites: %w", err)
		}
		if err := tx.Where("recipe_id = ?", recipeID).Delete(&model.RecipeLike{}).Error; err != nil {
			return fmt.Errorf("failed to delete likes: %w", err)
		}
		if err := tx.Delete(&model.Recipe{}, "id = ?", recipeID).Error; err != nil {
			return fmt.Errorf("failed to delete recipe: %w", err)
		}
		image = recipe.Image
		return nil
	})
	if err != nil {
		return err
	}

	s.discardImage(ctx, image)
	return nil
}

// ListCategories returns the distinct non-empty categories in use, sorted.
func (s *RecipeService) ListCategories(ctx context.Context) ([]string, error) {
	categories := []string{}
	err := s.db.WithContext(ctx).
		Model(&model.Recipe{}).
		Where("category <> ''").
		Distinct("category").
		Order("category").
		Pluck("category", &categories).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	return categories, nil
}

// Statistics counts all recipes and breaks down the ones created in the
// last days days by category, largest first.
func (s *RecipeService) Statistics(ctx context.Context, days int) (*RecipeStatistics, error) {
	if days <= 0 {
		return nil, newError(ErrValidation, "days must be a positive integer")
	}

	db := s.db.WithContext(ctx)
	stats := &RecipeStatistics{Days: days, Stats: []CategoryCount{}}

	if err := db.Model(&model.Recipe{}).Count(&stats.TotalRecipes).Error; err != nil {
		return nil, fmt.Errorf("failed to count recipes: %w", err)
	}

	since := time.Now().UTC().AddDate(0, 0, -days)
	err := db.Model(&model.Recipe{}).
		Select("category, COUNT(*) AS count").
		Where("category <> '' AND created_at >= ?", since).
		Group("category").
		Order("COUNT(*) DESC, category ASC").
		Scan(&stats.Stats).Error
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate recipes: %w", err)
	}
	return stats, nil
}

func (s *RecipeService) load(ctx context.Context, id uuid.UUID) (*model.Recipe, error) {
	var recipe model.Recipe
	err := withCreator(s.db.WithContext(ctx)).First(&recipe, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errRecipeNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load recipe: %w", err)
	}
	return &recipe, nil
}

func (s *RecipeService) checkTitleAvailable(db *gorm.DB, title string, exclude uuid.UUID) error {
	query := db.Model(&model.Recipe{}).Where("title = ?", title)
	if exclude != uuid.Nil {
		query = query.Where("id <> ?", exclude)
	}
	var count int64
	if err := query.Count(&count).Error; err != nil {
		return fmt.Errorf("failed to check title: %w", err)
	}
	if count > 0 {
		return errTitleTaken
	}
	return nil
}

func (s *RecipeService) storeImage(ctx context.Context, image *ImageUpload) (string, error) {
	name, err := storage.GenerateFileName(image.Filename)
	if err != nil {
		return "", errInvalidImage
	}
	ref, err := s.images.Save(ctx, name, image.Body, storage.ContentTypeFor(name))
	if err != nil {
		return "", fmt.Errorf("failed to store image: %w", err)
	}
	return ref, nil
}

// discardImage deletes a stored image, logging instead of failing.
func (s *RecipeService) discardImage(ctx context.Context, ref string) {
	if ref == "" {
		return
	}
	if err := s.images.Delete(ctx, ref); err != nil {
		s.log.Warnw("image_delete_failed", "image", ref, "error", err)
	}
}

// titleContains matches search case-insensitively anywhere in the title.
// SQLite's LOWER only folds ASCII, so the search text is folded the same way
// there and non-ASCII letters must match exactly.
func titleContains(query *gorm.DB, search string) *gorm.DB {
	if query.Dialector.Name() == "postgres" {
		return query.Where(`title ILIKE ? ESCAPE '\'`, "%"+escapeLike(search)+"%")
	}
	return query.Where(`LOWER(title) LIKE ? ESCAPE '\'`, "%"+escapeLike(asciiLower(search))+"%")
}

func asciiLower(s string) string {
	return strings.Map(func(r rune) rune {
		if 'A' <= r && r <= 'Z' {
			return r + ('a' - 'A')
		}
		return r
	}, s)
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
