package api

import (
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"

	"github.com/pageza/recipe-share/backend/internal/middleware"
	"github.com/pageza/recipe-share/backend/internal/service"
)

// defaultMaxUploadBytes caps recipe form bodies when no limit is configured.
const defaultMaxUploadBytes = 5 << 20

type RecipeHandler struct {
	recipeService       service.IRecipeService
	authService         service.IAuthService
	maxUploadBytes      int64
	creationLimiter     *middleware.RateLimiter
	modificationLimiter *middleware.RateLimiter
}

func NewRecipeHandler(recipeService service.IRecipeService, authService service.IAuthService, maxUploadBytes int64) *RecipeHandler {
	if maxUploadBytes <= 0 {
		maxUploadBytes = defaultMaxUploadBytes
	}
	return &RecipeHandler{
		recipeService:  recipeService,
		authService:    authService,
		maxUploadBytes: maxUploadBytes,
	}
}

// WithRateLimits enables the creation and modification limiters. Either may
// be nil.
func (h *RecipeHandler) WithRateLimits(creation, modification *middleware.RateLimiter) *RecipeHandler {
	h.creationLimiter = creation
	h.modificationLimiter = modification
	return h
}

func (h *RecipeHandler) RegisterRoutes(router *gin.RouterGroup) {
	auth := middleware.AuthMiddleware(h.authService)

	create := []gin.HandlerFunc{auth, middleware.RequireAdmin()}
	if h.creationLimiter != nil {
		create = append(create, h.creationLimiter.RateLimitMiddleware())
	}
	modify := []gin.HandlerFunc{auth}
	if h.modificationLimiter != nil {
		modify = append(modify, h.modificationLimiter.PerRecipeRateLimitMiddleware())
	}

	recipes := router.Group("/recipes")
	{
		recipes.GET("", h.ListRecipes)
		recipes.GET("/categories", h.ListCategories)
		recipes.GET("/stats", auth, middleware.RequireAdmin(), h.Statistics)
		recipes.GET("/:id", h.GetRecipe)
		recipes.POST("", chain(create, h.CreateRecipe)...)
		recipes.PUT("/:id", chain(modify, h.UpdateRecipe)...)
		recipes.DELETE("/:id", chain(modify, h.DeleteRecipe)...)
	}
}

func chain(middlewares []gin.HandlerFunc, handler gin.HandlerFunc) []gin.HandlerFunc {
	out := make([]gin.HandlerFunc, 0, len(middlewares)+1)
	out = append(out, middlewares...)
	return append(out, handler)
}

func (h *RecipeHandler) ListRecipes(c *gin.Context) {
	recipes, err := h.recipeService.List(c.Request.Context(), service.RecipeFilter{
		Category: c.Query("category"),
		Search:   c.Query("search"),
	})
	if err != nil {
		respondError(c, err, "Error retrieving recipes")
		return
	}

	c.JSON(http.StatusOK, newRecipeList(recipes))
}

func (h *RecipeHandler) GetRecipe(c *gin.Context) {
	recipe, err := h.recipeService.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err, "Error retrieving recipe")
		return
	}

	c.JSON(http.StatusOK, newRecipeResponse(recipe))
}

func (h *RecipeHandler) CreateRecipe(c *gin.Context) {
	identity, ok := requireIdentity(c)
	if !ok {
		return
	}

	fields, image, err := h.readRecipeForm(c)
	if err != nil {
		respondError(c, err, "Error creating recipe")
		return
	}
	defer image.close()

	recipe, err := h.recipeService.Create(c.Request.Context(), identity, fields, image.upload())
	if err != nil {
		respondError(c, err, "Error creating recipe")
		return
	}

	c.JSON(http.StatusCreated, newRecipeResponse(recipe))
}

func (h *RecipeHandler) UpdateRecipe(c *gin.Context) {
	identity, ok := requireIdentity(c)
	if !ok {
		return
	}

	fields, image, err := h.readRecipeForm(c)
	if err != nil {
		respondError(c, err, "Error updating recipe")
		return
	}
	defer image.close()

	recipe, err := h.recipeService.Update(c.Request.Context(), identity, c.Param("id"), fields, image.upload())
	if err != nil {
		respondError(c, err, "Error updating recipe")
		return
	}

	c.JSON(http.StatusOK, updateRecipeResponse{
		Message: "Recipe successfully updated!",
		Recipe:  newRecipeResponse(recipe),
	})
}

func (h *RecipeHandler) DeleteRecipe(c *gin.Context) {
	identity, ok := requireIdentity(c)
	if !ok {
		return
	}

	if err := h.recipeService.Delete(c.Request.Context(), identity, c.Param("id")); err != nil {
		respondError(c, err, "Error deleting recipe")
		return
	}

	c.JSON(http.StatusOK, MessageResponse{Message: "Recipe successfully deleted"})
}

func (h *RecipeHandler) ListCategories(c *gin.Context) {
	categories, err := h.recipeService.ListCategories(c.Request.Context())
	if err != nil {
		respondError(c, err, "Error retrieving categories")
		return
	}

	c.JSON(http.StatusOK, categories)
}

func (h *RecipeHandler) Statistics(c *gin.Context) {
	days := service.DefaultStatisticsDays
	if raw := c.Query("days"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			badRequest(c, "days must be a positive integer")
			return
		}
		days = n
	}

	stats, err := h.recipeService.Statistics(c.Request.Context(), days)
	if err != nil {
		respondError(c, err, "Error retrieving statistics")
		return
	}

	c.JSON(http.StatusOK, stats)
}

// formImage is the optional image part of a recipe form.
type formImage struct {
	file     multipart.File
	filename string
}

func (f *formImage) upload() *service.ImageUpload {
	if f == nil {
		return nil
	}
	return &service.ImageUpload{Filename: f.filename, Body: f.file}
}

func (f *formImage) close() {
	if f != nil {
		f.file.Close()
	}
}

// readRecipeForm reads recipe fields from a multipart, urlencoded or JSON
// body. Fields absent from the request stay nil.
func (h *RecipeHandler) readRecipeForm(c *gin.Context) (service.RecipeFields, *formImage, error) {
	var fields service.RecipeFields
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUploadBytes)

	if c.ContentType() == binding.MIMEJSON {
		var req recipeRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			if tooLarge(err) {
				return fields, nil, errBodyTooLarge
			}
			if errors.Is(err, io.EOF) {
				return fields, nil, nil
			}
			return fields, nil, &service.Error{Kind: service.ErrValidation, Message: "Invalid request body"}
		}
		return service.RecipeFields{
			Title:        req.Title,
			Ingredients:  req.Ingredients,
			Instructions: req.Instructions,
			Category:     req.Category,
		}, nil, nil
	}

	var err error
	if strings.HasPrefix(c.ContentType(), binding.MIMEMultipartPOSTForm) {
		err = c.Request.ParseMultipartForm(h.maxUploadBytes)
	} else {
		err = c.Request.ParseForm()
	}
	if err != nil {
		if tooLarge(err) {
			return fields, nil, errBodyTooLarge
		}
		return fields, nil, &service.Error{Kind: service.ErrValidation, Message: "Invalid request body"}
	}

	field := func(name string) *string {
		if v, ok := c.GetPostForm(name); ok {
			return &v
		}
		return nil
	}
	fields = service.RecipeFields{
		Title:        field("title"),
		Ingredients:  field("ingredients"),
		Instructions: field("instructions"),
		Category:     field("category"),
	}

	file, header, err := c.Request.FormFile("image")
	switch {
	case errors.Is(err, http.ErrMissingFile), errors.Is(err, http.ErrNotMultipart):
		return fields, nil, nil
	case err != nil:
		return fields, nil, err
	}
	return fields, &formImage{file: file, filename: header.Filename}, nil
}

func tooLarge(err error) bool {
	var maxErr *http.MaxBytesError
	return errors.As(err, &maxErr)
}
