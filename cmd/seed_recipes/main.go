package main

import (
	"context"
	"errors"
	"os"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/pageza/recipe-share/backend/config"
	"github.com/pageza/recipe-share/backend/internal/database"
	"github.com/pageza/recipe-share/backend/internal/logger"
	"github.com/pageza/recipe-share/backend/internal/model"
	"github.com/pageza/recipe-share/backend/internal/service"
	"github.com/pageza/recipe-share/backend/internal/storage"
)

type seedRecipe struct {
	Title        string
	Ingredients  string
	Instructions string
	Category     string
}

var seedRecipes = []seedRecipe{
	{"Buttermilk Pancakes", "flour, buttermilk, eggs, butter, sugar, baking powder", "Whisk the dry and wet ingredients separately, combine, and cook on a hot griddle until bubbles form. Flip once.", "Breakfast"},
	{"Shakshuka", "eggs, tomatoes, onion, bell pepper, garlic, cumin, paprika", "Simmer the vegetables and spices into a thick sauce, make wells, crack in the eggs and cover until set.", "Breakfast"},
	{"Chicken Caesar Wrap", "tortillas, chicken breast, romaine, parmesan, caesar dressing", "Grill and slice the chicken, toss with lettuce, cheese and dressing, then roll in warm tortillas.", "Lunch"},
	{"Lentil Soup", "red lentils, carrots, celery, onion, vegetable stock, cumin", "Sweat the vegetables, add lentils and stock, simmer 25 minutes and blend half of the soup.", "Lunch"},
	{"Spaghetti Bolognese", "spaghetti, ground beef, onion, carrot, tomato passata, red wine", "Brown the beef, add the soffritto and wine, then passata. Simmer an hour and serve over pasta.", "Dinner"},
	{"Salmon with Greens", "salmon fillets, green beans, lemon, garlic, olive oil", "Roast the salmon and beans at 200C for 12 minutes, finish with lemon and garlic oil.", "Dinner"},
	{"Chocolate Mousse", "dark chocolate, eggs, sugar, cream", "Melt the chocolate, fold in whipped cream and beaten egg whites, chill for four hours.", "Dessert"},
	{"Apple Crumble", "apples, flour, butter, brown sugar, cinnamon, oats", "Layer spiced apples in a dish, rub the topping together, scatter over and bake 40 minutes.", "Dessert"},
	{"Fresh Lemonade", "lemons, sugar, water, mint", "Dissolve the sugar in warm water, add lemon juice and cold water, serve over ice with mint.", "Drinks"},
	{"Mango Lassi", "mango, yogurt, milk, cardamom, honey", "Blend everything until smooth and serve chilled.", "Drinks"},
}

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Get(logger.InfoLevel).Fatalw("failed to load configuration", "error", err)
	}
	log := logger.Get(cfg.LogLevel)
	defer log.Sync()

	db, err := database.Open(cfg, log)
	if err != nil {
		log.Fatalw("failed to connect to database", "error", err)
	}
	defer database.Close(db)

	if err := database.RunMigrations(db, log); err != nil {
		log.Fatalw("migration failed", "error", err)
	}

	ctx := context.Background()
	admin, err := ensureAdmin(ctx, db, envOr("SEED_ADMIN_EMAIL", "admin@example.com"), envOr("SEED_ADMIN_PASSWORD", "adminpassword123"))
	if err != nil {
		log.Fatalw("failed to create admin", "error", err)
	}

	// Seeded recipes carry no images
	images, err := storage.NewLocalStore(cfg.UploadDir)
	if err != nil {
		log.Fatalw("failed to open upload directory", "error", err)
	}
	recipes := service.NewRecipeService(db, images, log)

	created := 0
	for _, seed := range seedRecipes {
		seed := seed
		_, err := recipes.Create(ctx, admin.Identity(), service.RecipeFields{
			Title:        &seed.Title,
			Ingredients:  &seed.Ingredients,
			Instructions: &seed.Instructions,
			Category:     &seed.Category,
		}, nil)
		switch {
		case errors.Is(err, service.ErrConflict):
			log.Infow("recipe exists, skipping", "title", seed.Title)
		case err != nil:
			log.Errorw("failed to create recipe", "title", seed.Title, "error", err)
		default:
			created++
			log.Infow("recipe created", "title", seed.Title, "category", seed.Category)
		}
	}
	log.Infow("seeding finished", "created", created, "total", len(seedRecipes))
}

// ensureAdmin returns the admin account with email, creating it if missing.
func ensureAdmin(ctx context.Context, db *gorm.DB, email, password string) (*model.User, error) {
	var user model.User
	err := db.WithContext(ctx).Where("email = ?", email).First(&user).Error
	if err == nil {
		return &user, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	user = model.User{
		Username:     "admin",
		Email:        email,
		PasswordHash: string(hash),
		Role:         model.RoleAdmin,
	}
	if err := db.WithContext(ctx).Create(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
