package testhelpers

import (
	"testing"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/pageza/recipe-share/backend/internal/model"
)

// TestPassword is the password of every user created by CreateUser.
const TestPassword = "password123"

// CreateUser inserts a user with the given role and TestPassword.
func CreateUser(t *testing.T, db *gorm.DB, username string, role model.Role) *model.User {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte(TestPassword), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}
	user := &model.User{
		Username:     username,
		Email:        username + "@example.com",
		PasswordHash: string(hash),
		Role:         role,
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed to create user %s: %v", username, err)
	}
	return user
}

// CreateRecipe inserts a recipe owned by owner.
func CreateRecipe(t *testing.T, db *gorm.DB, owner *model.User, title, category string) *model.Recipe {
	t.Helper()

	recipe := &model.Recipe{
		Title:        title,
		Ingredients:  model.JSONBStringArray{"flour", "eggs"},
		Instructions: "Mix and cook.",
		Category:     category,
		CreatedBy:    owner.ID,
	}
	if err := db.Omit("Creator", "Likes").Create(recipe).Error; err != nil {
		t.Fatalf("failed to create recipe %s: %v", title, err)
	}
	return recipe
}
