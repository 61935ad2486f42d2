package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/pageza/recipe-share/backend/internal/model"
	"github.com/pageza/recipe-share/backend/internal/service"
)

// MockSocialService is a mock implementation of the favorites and likes service
type MockSocialService struct {
	mock.Mock
}

var _ service.ISocialService = (*MockSocialService)(nil)

func (m *MockSocialService) ToggleFavorite(ctx context.Context, identity model.Identity, recipeID string) ([]uuid.UUID, error) {
	args := m.Called(ctx, identity, recipeID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]uuid.UUID), args.Error(1)
}

func (m *MockSocialService) GetFavorites(ctx context.Context, identity model.Identity) ([]model.Recipe, error) {
	args := m.Called(ctx, identity)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Recipe), args.Error(1)
}

func (m *MockSocialService) ToggleLike(ctx context.Context, identity model.Identity, recipeID string) (*service.LikeResult, error) {
	args := m.Called(ctx, identity, recipeID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.LikeResult), args.Error(1)
}
