package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/pageza/recipe-share/backend/internal/model"
)

// RegisterInput carries the fields accepted at registration. An empty Role
// means model.RoleUser.
type RegisterInput struct {
	Username string
	Email    string
	Password string
	Role     model.Role
}

// AuthResult is returned by Register and Login.
type AuthResult struct {
	Token string     `json:"token"`
	Role  model.Role `json:"role"`
}

type AuthService struct {
	db               *gorm.DB
	tokens           *TokenIssuer
	allowAdminSignup bool
	bcryptCost       int
}

var _ IAuthService = (*AuthService)(nil)

func NewAuthService(db *gorm.DB, tokens *TokenIssuer, allowAdminSignup bool) *AuthService {
	return &AuthService{
		db:               db,
		tokens:           tokens,
		allowAdminSignup: allowAdminSignup,
		bcryptCost:       bcrypt.DefaultCost,
	}
}

// WithBcryptCost overrides the hashing cost. Tests use bcrypt.MinCost.
func (s *AuthService) WithBcryptCost(cost int) *AuthService {
	s.bcryptCost = cost
	return s
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*AuthResult, error) {
	username := strings.TrimSpace(in.Username)
	email := normalizeEmail(in.Email)
	if username == "" || email == "" || in.Password == "" {
		return nil, newError(ErrValidation, "Username, email and password are required")
	}

	role := in.Role
	if role == "" {
		role = model.RoleUser
	}
	if !role.Valid() {
		return nil, newError(ErrValidation, "Invalid role")
	}
	if role == model.RoleAdmin && !s.allowAdminSignup {
		return nil, newError(ErrForbidden, "Admin registration is disabled")
	}

	db := s.db.WithContext(ctx)

	var count int64
	if err := db.Model(&model.User{}).Where("email = ?", email).Count(&count).Error; err != nil {
		return nil, fmt.Errorf("failed to check existing user: %w", err)
	}
	if count > 0 {
		return nil, errUserExists
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.bcryptCost)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return nil, newError(ErrValidation, "Password must be at most 72 bytes")
		}
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := model.User{
		Username:     username,
		Email:        email,
		PasswordHash: string(hash),
		Role:         role,
	}
	if err := db.Create(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, errUserExists
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	token, err := s.tokens.Issue(user.ID, user.Role)
	if err != nil {
		return nil, err
	}
	return &AuthResult{Token: token, Role: user.Role}, nil
}

var (
	dummyHash     []byte
	dummyHashOnce sync.Once
)

// compareDummy spends the same time as a real comparison so that unknown
// emails cannot be told apart from wrong passwords.
func compareDummy(password string) {
	dummyHashOnce.Do(func() {
		dummyHash, _ = bcrypt.GenerateFromPassword([]byte("not-a-real-password"), bcrypt.DefaultCost)
	})
	_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(password))
}

func (s *AuthService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	var user model.User
	err := s.db.WithContext(ctx).Where("email = ?", normalizeEmail(email)).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		compareDummy(password)
		return nil, errBadCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, errBadCredentials
	}

	token, err := s.tokens.Issue(user.ID, user.Role)
	if err != nil {
		return nil, err
	}
	return &AuthResult{Token: token, Role: user.Role}, nil
}

// GetProfile returns the public fields of the user.
func (s *AuthService) GetProfile(ctx context.Context, userID uuid.UUID) (*model.Identity, error) {
	user, err := s.findUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	id := user.Identity()
	return &id, nil
}

// Authenticate verifies a bearer token and resolves it to a live user.
func (s *AuthService) Authenticate(ctx context.Context, token string) (*model.Identity, error) {
	if token == "" {
		return nil, errNoToken
	}
	claims, err := s.tokens.Parse(token)
	if err != nil {
		return nil, err
	}
	userID, err := uuid.Parse(claims.ID)
	if err != nil {
		return nil, errInvalidToken
	}
	return s.GetProfile(ctx, userID)
}

func (s *AuthService) findUser(ctx context.Context, userID uuid.UUID) (*model.User, error) {
	var user model.User
	err := s.db.WithContext(ctx).
		Select("id", "username", "email", "role").
		First(&user, "id = ?", userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	return &user, nil
}
