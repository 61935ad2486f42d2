package api

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pageza/recipe-share/backend/internal/middleware"
	"github.com/pageza/recipe-share/backend/internal/service"
)

// UserHandler serves a user's favorites and likes.
type UserHandler struct {
	socialService service.ISocialService
	authService   service.IAuthService
}

func NewUserHandler(socialService service.ISocialService, authService service.IAuthService) *UserHandler {
	return &UserHandler{socialService: socialService, authService: authService}
}

// RegisterRoutes mounts the toggles under both /recipes and /users, the two
// paths clients have used for them.
func (h *UserHandler) RegisterRoutes(router *gin.RouterGroup) {
	auth := middleware.AuthMiddleware(h.authService)

	router.POST("/recipes/favorite", auth, h.ToggleFavorite)
	router.POST("/recipes/like", auth, h.ToggleLike)

	users := router.Group("/users", auth)
	{
		users.GET("/favorites", h.GetFavorites)
		users.POST("/favorites", h.ToggleFavorite)
		users.POST("/likes", h.ToggleLike)
	}
}

func (h *UserHandler) ToggleFavorite(c *gin.Context) {
	identity, ok := requireIdentity(c)
	if !ok {
		return
	}
	recipeID, ok := bindRecipeID(c)
	if !ok {
		return
	}

	favorites, err := h.socialService.ToggleFavorite(c.Request.Context(), identity, recipeID)
	if err != nil {
		respondError(c, err, "Server error")
		return
	}

	c.JSON(http.StatusOK, favoritesResponse{Favorites: favorites})
}

func (h *UserHandler) GetFavorites(c *gin.Context) {
	identity, ok := requireIdentity(c)
	if !ok {
		return
	}

	recipes, err := h.socialService.GetFavorites(c.Request.Context(), identity)
	if err != nil {
		respondError(c, err, "Error retrieving favorites")
		return
	}

	c.JSON(http.StatusOK, newRecipeList(recipes))
}

func (h *UserHandler) ToggleLike(c *gin.Context) {
	identity, ok := requireIdentity(c)
	if !ok {
		return
	}
	recipeID, ok := bindRecipeID(c)
	if !ok {
		return
	}

	result, err := h.socialService.ToggleLike(c.Request.Context(), identity, recipeID)
	if err != nil {
		respondError(c, err, "Server error")
		return
	}

	c.JSON(http.StatusOK, likesResponse{
		Message:     "Likes updated",
		Likes:       result.Likes,
		RecipeLikes: result.RecipeLikes,
	})
}

// bindRecipeID reads recipeId from a JSON or form body. A missing id is left
// for the service to reject.
func bindRecipeID(c *gin.Context) (string, bool) {
	var req ToggleRequest
	if err := c.ShouldBind(&req); err != nil && !errors.Is(err, io.EOF) {
		badRequest(c, "Invalid request body")
		return "", false
	}
	return req.RecipeID, true
}
