// Package recipes contains handlers for the recipes endpoint.
package recipes

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	apiError "github.com/m-orlov/foodgram/internal/api/error"
	"github.com/m-orlov/foodgram/internal/api/requestid"
	"github.com/m-orlov/foodgram/internal/api/token"
	"github.com/m-orlov/foodgram/internal/database"
	"github.com/m-orlov/foodgram/internal/env"
	"github.com/m-orlov/foodgram/internal/filestore"
	"github.com/m-orlov/foodgram/internal/image"
	mJson "github.com/m-orlov/foodgram/internal/json"
	"github.com/m-orlov/foodgram/internal/pagination"
	"github.com/m-orlov/foodgram/internal/recipe"
	"github.com/m-orlov/foodgram/internal/shopping"
	"github.com/m-orlov/foodgram/internal/view"
)

const shoppingListFilename = "shopping_list.txt"

const (
	markerFavorite = "favorite"
	markerCart     = "shopping_cart"
)

func writeJSON(w http.ResponseWriter, status int, body any) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	return json.NewEncoder(w).Encode(body)
}

// parseRecipeID resolves the recipeID URL parameter. Encodes not_found
// and reports ok=false when the value does not parse.
func parseRecipeID(w http.ResponseWriter, r *http.Request, requestID string) (int64, bool) {
	recipeIDQ := recipeID(chi.URLParam(r, "recipeID"))
	if err := recipeIDQ.Validate(); err != nil {
		_ = apiError.EncodeError(w, apiError.NotFound, "recipe not found", requestID)
		return 0, false
	}
	id, _ := strconv.ParseInt(string(recipeIDQ), 10, 64)
	return id, true
}

// HandleListRecipes godoc
//
//	@Summary	List recipes, newest first.
//	@Tags		Recipes
//
//	@Param		page				query		int	false	"Page number"
//	@Param		limit				query		int	false	"Page size"
//	@Param		author				query		int	false	"Filter by author id"
//	@Param		is_favorited		query		string	false	"Filter to the viewer's favorites"
//	@Param		is_in_shopping_cart	query		string	false	"Filter to the viewer's cart"
//	@Success	200					{object}	pagination.Page[view.Recipe]
//	@Router		/api/recipes/ [GET]
func HandleListRecipes(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	env := env.EnvFromCtx(ctx)
	requestID := requestid.String(ctx)
	viewerID, viewerOK := token.ViewerFromCtx(ctx)

	params, err := pagination.ParseParams(r.URL.Query(), env.Config.Pagination.PageSize)
	if err != nil {
		env.Logger.ErrorContext(ctx, "Failed to parse pagination params", slog.Any("error", err))
		_ = apiError.EncodeError(w, apiError.BadRequest, err.Error(), requestID)
		return
	}
	filters := parseListFilters(r.URL.Query(), viewerID, viewerOK)

	env.Logger.DebugContext(ctx, "Listing recipes")
	rows, err := env.Database.ListRecipes(ctx, database.ListRecipesParams{
		RecipeFilterParams: filters,
		Limit:              int32(params.Limit),
		Offset:             int32(params.Offset()),
	})
	if err != nil {
		env.Logger.ErrorContext(ctx, "Failed to list recipes", slog.Any("error", err))
		_ = apiError.EncodeInternalError(w, requestID)
		return
	}
	count, err := env.Database.CountRecipes(ctx, filters)
	if err != nil {
		env.Logger.ErrorContext(ctx, "Failed to count recipes", slog.Any("error", err))
		_ = apiError.EncodeInternalError(w, requestID)
		return
	}

	views, err := view.BuildRecipes(ctx, env.Database, view.Viewer{ID: viewerID, Authed: viewerOK},
		env.Config.HostOrigin, rows)
	if err != nil {
		env.Logger.ErrorContext(ctx, "Failed to build recipe views", slog.Any("error", err))
		_ = apiError.EncodeInternalError(w, requestID)
		return
	}

	if err := writeJSON(w, http.StatusOK, pagination.NewPage(r, count, params, views)); err != nil {
		env.Logger.ErrorContext(ctx, "Failed to write response", slog.Any("error", err))
	}
}

// HandleCreateRecipe godoc
//
//	@Summary	Create a recipe.
//	@Tags		Recipes
//
//	@Accept		json
//	@Param		request	body	RecipeRequest	true	"Recipe body"
//
//	@Success	201	{object}	view.Recipe
//	@Failure	400	{object}	apiError.Error	"Validation failed"
//	@Security	AccessToken
//	@Router		/api/recipes/ [POST]
func HandleCreateRecipe(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	env := env.EnvFromCtx(ctx)
	requestID := requestid.String(ctx)
	userID, err := token.UserIDFromCtx(ctx)
	if err != nil {
		env.Logger.ErrorContext(ctx, "Failed to extract user id from context", slog.Any("error", err))
		_ = apiError.EncodeInternalError(w, requestID)
		return
	}

	// Decode JSON
	var request RecipeRequest
	env.Logger.DebugContext(ctx, "Reading request body")
	defer func() { _ = r.Body.Close() }()
	if err := mJson.DecodeStrict(&request, r.Body); err != nil {
		env.Logger.ErrorContext(ctx, "Failed to decode request body", slog.Any("error", err))
		_ = apiError.EncodeError(w, apiError.BadRequest, "invalid request body", requestID)
		return
	}

	// Validate
	env.Logger.DebugContext(ctx, "Validating recipe")
	input := request.Input()
	if fields := recipe.ValidateInput(input, env.Config.Recipes, true); fields != nil {
		env.Logger.ErrorContext(ctx, "Recipe validation failed", slog.Any("fields", fields))
		_ = apiError.EncodeFieldErrors(w, fields, requestID)
		return
	}
	fields, err := recipe.CheckIngredientsExist(ctx, env.Database, input.Ingredients)
	if err != nil {
		env.Logger.ErrorContext(ctx, "Failed to check ingredients", slog.Any("error", err))
		_ = apiError.EncodeInternalError(w, requestID)
		return
	}
	if fields != nil {
		env.Logger.ErrorContext(ctx, "Unknown ingredients", slog.Any("fields", fields))
		_ = apiError.EncodeFieldErrors(w, fields, requestID)
		return
	}

	// Store image
	env.Logger.DebugContext(ctx, "Decoding recipe image")
	decoded, err := image.ParseDataURL(input.Image)
	if err != nil {
		env.Logger.ErrorContext(ctx, "Failed to decode recipe image", slog.Any("error", err))
		_ = apiError.EncodeFieldErrors(w, map[string][]string{
			"image": {"expected an embedded image"},
		}, requestID)
		return
	}
	imageURL, err := env.Files.WriteRecipeImage(ctx, decoded.Suffix, decoded.Data)
	if err != nil {
		env.Logger.ErrorContext(ctx, "Failed to store recipe image", slog.Any("error", err))
		_ = apiError.EncodeInternalError(w, requestID)
		return
	}

	// Create recipe
	env.Logger.DebugContext(ctx, "Creating recipe")
	recipeID, err := env.Database.CreateRecipeWithIngredients(ctx, database.CreateRecipeWithIngredientsParams{
		AuthorID:    userID,
		Name:        input.Name,
		Text:        input.Text,
		CookingTime: input.CookingTime,
		ImageURL:    imageURL,
		Lines:       recipe.Lines(input.Ingredients),
	})
	if err != nil {
		env.Logger.ErrorContext(ctx, "Failed to create recipe", slog.Any("error", err))
		_ = apiError.EncodeInternalError(w, requestID)
		return
	}

	// Write response
	env.Logger.DebugContext(ctx, "Writing response")
	row, err := env.Database.GetRecipe(ctx, recipeID)
	if err != nil {
		env.Logger.ErrorContext(ctx, "Failed to retrieve created recipe", slog.Any("error", err))
		_ = apiError.EncodeInternalError(w, requestID)
		return
	}
	recipeView, err := view.BuildRecipe(ctx, env.Database, view.Viewer{ID: userID, Authed: true},
		env.Config.HostOrigin, row)
	if err != nil {
		env.Logger.ErrorContext(ctx, "Failed to build recipe view", slog.Any("error", err))
		_ = apiError.EncodeInternalError(w, requestID)
		return
	}
	if err := writeJSON(w, http.StatusCreated, recipeView); err != nil {
		env.Logger.ErrorContext(ctx, "Failed to write response", slog.Any("error", err))
	}
}

// HandleGetRecipe godoc
//
//	@Summary	Get a recipe.
//	@Tags		Recipes
//
//	@Param		recipeID	path		int	true	"Recipe ID"
//	@Success	200			{object}	view.Recipe
//	@Failure	404			{object}	apiError.Error	"Recipe not found"
//	@Router		/api/recipes/{recipeID}/ [GET]
func HandleGetRecipe(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	env := env.EnvFromCtx(ctx)
	requestID := requestid.String(ctx)
	viewerID, viewerOK := token.ViewerFromCtx(ctx)

	id, ok := parseRecipeID(w, r, requestID)
	if !ok {
		return
	}

	env.Logger.DebugContext(ctx, "Retrieving recipe")
	row, err := env.Database.GetRecipe(ctx, id)
	if errors.Is(err, pgx.ErrNoRows) {
		env.Logger.ErrorContext(ctx, "Recipe does not exist", slog.Any("error", err))
		_ = apiError.EncodeError(w, apiError.NotFound, "recipe not found", requestID)
		return
	} else if err != nil {
		env.Logger.ErrorContext(ctx, "Failed to retrieve recipe", slog.Any("error", err))
		_ = apiError.EncodeInternalError(w, requestID)
		return
	}

	recipeView, err := view.BuildRecipe(ctx, env.Database, view.Viewer{ID: viewerID, Authed: viewerOK},
		env.Config.HostOrigin, row)
	if err != nil {
		env.Logger.ErrorContext(ctx, "Failed to build recipe view", slog.Any("error", err))
		_ = apiError.EncodeInternalError(w, requestID)
		return
	}

	if err := writeJSON(w, http.StatusOK, recipeView); err != nil {
		env.Logger.ErrorContext(ctx, "Failed to write response", slog.Any("error", err))
	}
}

// HandleUpdateRecipe godoc
//
//	@Summary	Update a recipe. Author only.
//	@Tags		Recipes
//
//	@Accept		json
//	@Param		recipeID	path	int				true	"Recipe ID"
//	@Param		request		body	RecipeRequest	true	"Recipe body"
//
//	@Success	200	{object}	view.Recipe
//	@Failure	400	{object}	apiError.Error	"Validation failed"
//	@Failure	403	{object}	apiError.Error	"Not the author"
//	@Failure	404	{object}	apiError.Error	"Recipe not found"
//	@Security	AccessToken
//	@Router		/api/recipes/{recipeID}/ [PATCH]
func HandleUpdateRecipe(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	env := env.EnvFromCtx(ctx)
	requestID := requestid.String(ctx)
	userID, err := token.UserIDFromCtx(ctx)
	if err != nil {
		env.Logger.ErrorContext(ctx, "Failed to extract user id from context", slog.Any("error", err))
		_ = apiError.EncodeInternalError(w, requestID)
		return
	}

	id, ok := parseRecipeID(w, r, requestID)
	if !ok {
		return
	}

	// Check recipe ownership
	env.Logger.DebugContext(ctx, "Checking recipe ownership")
	row, err := env.Database.GetRecipe(ctx, id)
	if errors.Is(err, pgx.ErrNoRows) {
		env.Logger.ErrorContext(ctx, "Recipe does not exist", slog.Any("error", err))
		_ = apiError.EncodeError(w, apiError.NotFound, "recipe not found", requestID)
		return
	} else if err != nil {
		env.Logger.ErrorContext(ctx, "Failed to retrieve recipe", slog.Any("error", err))
		_ = apiError.EncodeInternalError(w, requestID)
		return
	}
	if row.Recipe.AuthorID != userID {
		env.Logger.ErrorContext(ctx, "User does not own recipe")
		_ = apiError.EncodeError(w, apiError.PermissionDenied, "only the author may modify a recipe", requestID)
		return
	}

	// Decode JSON
	var request RecipeRequest
	env.Logger.DebugContext(ctx, "Reading request body")
	defer func() { _ = r.Body.Close() }()
	if err := mJson.DecodeStrict(&request, r.Body); err != nil {
		env.Logger.ErrorContext(ctx, "Failed to decode request body", slog.Any("error", err))
		_ = apiError.EncodeError(w, apiError.BadRequest, "invalid request body", requestID)
		return
	}

	// Validate. The image may be omitted to keep the stored one.
	env.Logger.DebugContext(ctx, "Validating recipe")
	input := request.Input()
	if fields := recipe.ValidateInput(input, env.Config.Recipes, false); fields != nil {
		env.Logger.ErrorContext(ctx, "Recipe validation failed", slog.Any("fields", fields))
		_ = apiError.EncodeFieldErrors(w, fields, requestID)
		return
	}
	fields, err := recipe.CheckIngredientsExist(ctx, env.Database, input.Ingredients)
	if err != nil {
		env.Logger.ErrorContext(ctx, "Failed to check ingredients", slog.Any("error", err))
		_ = apiError.EncodeInternalError(w, requestID)
		return
	}
	if fields != nil {
		env.Logger.ErrorContext(ctx, "Unknown ingredients", slog.Any("fields", fields))
		_ = apiError.EncodeFieldErrors(w, fields, requestID)
		return
	}

	// Store replacement image, if one was embedded
	imageURL := row.Recipe.ImageURL
	replacedImage := false
	if input.Image != "" {
		env.Logger.DebugContext(ctx, "Decoding recipe image")
		decoded, err := image.ParseDataURL(input.Image)
		if err != nil {
			env.Logger.ErrorContext(ctx, "Failed to decode recipe image", slog.Any("error", err))
			_ = apiError.EncodeFieldErrors(w, map[string][]string{
				"image": {"expected an embedded image"},
			}, requestID)
			return
		}
		imageURL, err = env.Files.WriteRecipeImage(ctx, decoded.Suffix, decoded.Data)
		if err != nil {
			env.Logger.ErrorContext(ctx, "Failed to store recipe image", slog.Any("error", err))
			_ = apiError.EncodeInternalError(w, requestID)
			return
		}
		replacedImage = true
	}

	// Update recipe
	env.Logger.DebugContext(ctx, "Updating recipe")
	if err := env.Database.UpdateRecipeWithIngredients(ctx, database.UpdateRecipeWithIngredientsParams{
		ID:          id,
		Name:        input.Name,
		Text:        input.Text,
		CookingTime: input.CookingTime,
		ImageURL:    imageURL,
		Lines:       recipe.Lines(input.Ingredients),
	}); err != nil {
		env.Logger.ErrorContext(ctx, "Failed to update recipe", slog.Any("error", err))
		_ = apiError.EncodeInternalError(w, requestID)
		return
	}
	if replacedImage && row.Recipe.ImageURL != "" {
		if err := env.Files.DeleteURLPath(ctx, row.Recipe.ImageURL); err != nil {
			env.Logger.WarnContext(ctx, "Failed to delete previous image", slog.Any("error", err))
		}
	}

	// Write response
	env.Logger.DebugContext(ctx, "Writing response")
	updated, err := env.Database.GetRecipe(ctx, id)
	if err != nil {
		env.Logger.ErrorContext(ctx, "Failed to retrieve updated recipe", slog.Any("error", err))
		_ = apiError.EncodeInternalError(w, requestID)
		return
	}
	recipeView, err := view.BuildRecipe(ctx, env.Database, view.Viewer{ID: userID, Authed: true},
		env.Config.HostOrigin, updated)
	if err != nil {
		env.Logger.ErrorContext(ctx, "Failed to build recipe view", slog.Any("error", err))
		_ = apiError.EncodeInternalError(w, requestID)
		return
	}
	if err := writeJSON(w, http.StatusOK, recipeView); err != nil {
		env.Logger.ErrorContext(ctx, "Failed to write response", slog.Any("error", err))
	}
}

// HandleDeleteRecipe godoc
//
//	@Summary	Delete a recipe. Author only.
//	@Tags		Recipes
//
//	@Param		recipeID	path	int	true	"Recipe ID"
//	@Success	204
//	@Failure	403	{object}	apiError.Error	"Not the author"
//	@Failure	404	{object}	apiError.Error	"Recipe not found"
//	@Security	AccessToken
//	@Router		/api/recipes/{recipeID}/ [DELETE]
func HandleDeleteRecipe(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	env := env.EnvFromCtx(ctx)
	requestID := requestid.String(ctx)
	userID, err := token.UserIDFromCtx(ctx)
	if err != nil {
		env.Logger.ErrorContext(ctx, "Failed to extract user id from context", slog.Any("error", err))
		_ = apiError.EncodeInternalError(w, requestID)
		return
	}

	id, ok := parseRecipeID(w, r, requestID)
	if !ok {
		return
	}

	// Check recipe ownership
	env.Logger.DebugContext(ctx, "Checking recipe ownership")
	row, err := env.Database.GetRecipe(ctx, id)
	if errors.Is(err, pgx.ErrNoRows) {
		env.Logger.ErrorContext(ctx, "Recipe does not exist", slog.Any("error", err))
		_ = apiError.EncodeError(w, apiError.NotFound, "recipe not found", requestID)
		return
	} else if err != nil {
		env.Logger.ErrorContext(ctx, "Failed to retrieve recipe", slog.Any("error", err))
		_ = apiError.EncodeInternalError(w, requestID)
		return
	}
	if row.Recipe.AuthorID != userID {
		env.Logger.ErrorContext(ctx, "User does not own recipe")
		_ = apiError.EncodeError(w, apiError.PermissionDenied, "only the author may delete a recipe", requestID)
		return
	}

	env.Logger.DebugContext(ctx, "Deleting recipe")
	if _, err := env.Database.DeleteRecipe(ctx, id); err != nil {
		env.Logger.ErrorContext(ctx, "Failed to delete recipe", slog.Any("error", err))
		_ = apiError.EncodeInternalError(w, requestID)
		return
	}
	if row.Recipe.ImageURL != "" {
		if err := env.Files.DeleteURLPath(ctx, row.Recipe.ImageURL); err != nil {
			env.Logger.WarnContext(ctx, "Failed to delete recipe image", slog.Any("error", err))
		}
	}

	w.WriteHeader(http.StatusNoContent)
}

// addMarker adds a user/recipe marker relation and responds with the
// compact recipe view. The recipe must exist before any mutation.
func addMarker(w http.ResponseWriter, r *http.Request, marker string) {
	ctx := r.Context()
	env := env.EnvFromCtx(ctx)
	requestID := requestid.String(ctx)
	userID, err := token.UserIDFromCtx(ctx)
	if err != nil {
		env.Logger.ErrorContext(ctx, "Failed to extract user id from context", slog.Any("error", err))
		_ = apiError.EncodeInternalError(w, requestID)
		return
	}

	id, ok := parseRecipeID(w, r, requestID)
	if !ok {
		return
	}

	env.Logger.DebugContext(ctx, "Retrieving recipe")
	row, err := env.Database.GetRecipe(ctx, id)
	if errors.Is(err, pgx.ErrNoRows) {
		env.Logger.ErrorContext(ctx, "Recipe does not exist", slog.Any("error", err))
		_ = apiError.EncodeError(w, apiError.NotFound, "recipe not found", requestID)
		return
	} else if err != nil {
		env.Logger.ErrorContext(ctx, "Failed to retrieve recipe", slog.Any("error", err))
		_ = apiError.EncodeInternalError(w, requestID)
		return
	}

	params := database.RelationParams{UserID: userID, RecipeID: id}

	// Existence pre-check is an early exit; the unique constraint below
	// is the authoritative duplicate detector.
	var exists bool
	switch marker {
	case markerFavorite:
		exists, err = env.Database.FavoriteExists(ctx, params)
	case markerCart:
		exists, err = env.Database.CartItemExists(ctx, params)
	}
	if err != nil {
		env.Logger.ErrorContext(ctx, "Failed to check relation", slog.Any("error", err))
		_ = apiError.EncodeInternalError(w, requestID)
		return
	}
	if exists {
		env.Logger.ErrorContext(ctx, "Relation already exists", slog.String("marker", marker))
		_ = apiError.EncodeError(w, apiError.DuplicateRelation, "recipe already added", requestID)
		return
	}

	env.Logger.DebugContext(ctx, "Adding relation", slog.String("marker", marker))
	switch marker {
	case markerFavorite:
		err = env.Database.AddFavorite(ctx, params)
	case markerCart:
		err = env.Database.AddCartItem(ctx, params)
	}
	if database.IsUniqueViolation(err) {
		env.Logger.ErrorContext(ctx, "Relation already exists", slog.Any("error", err))
		_ = apiError.EncodeError(w, apiError.DuplicateRelation, "recipe already added", requestID)
		return
	} else if err != nil {
		env.Logger.ErrorContext(ctx, "Failed to add relation", slog.Any("error", err))
		_ = apiError.EncodeInternalError(w, requestID)
		return
	}

	if err := writeJSON(w, http.StatusCreated,
		view.NewRecipeMini(row.Recipe, env.Config.HostOrigin)); err != nil {
		env.Logger.ErrorContext(ctx, "Failed to write response", slog.Any("error", err))
	}
}

// removeMarker deletes a user/recipe marker relation. Removing a
// missing relation is a client error, not a no-op.
func removeMarker(w http.ResponseWriter, r *http.Request, marker string) {
	ctx := r.Context()
	env := env.EnvFromCtx(ctx)
	requestID := requestid.String(ctx)
	userID, err := token.UserIDFromCtx(ctx)
	if err != nil {
		env.Logger.ErrorContext(ctx, "Failed to extract user id from context", slog.Any("error", err))
		_ = apiError.EncodeInternalError(w, requestID)
		return
	}

	id, ok := parseRecipeID(w, r, requestID)
	if !ok {
		return
	}

	env.Logger.DebugContext(ctx, "Retrieving recipe")
	if _, err := env.Database.GetRecipe(ctx, id); errors.Is(err, pgx.ErrNoRows) {
		env.Logger.ErrorContext(ctx, "Recipe does not exist", slog.Any("error", err))
		_ = apiError.EncodeError(w, apiError.NotFound, "recipe not found", requestID)
		return
	} else if err != nil {
		env.Logger.ErrorContext(ctx, "Failed to retrieve recipe", slog.Any("error", err))
		_ = apiError.EncodeInternalError(w, requestID)
		return
	}

	params := database.RelationParams{UserID: userID, RecipeID: id}

	env.Logger.DebugContext(ctx, "Deleting relation", slog.String("marker", marker))
	var deleted int64
	switch marker {
	case markerFavorite:
		deleted, err = env.Database.DeleteFavorite(ctx, params)
	case markerCart:
		deleted, err = env.Database.DeleteCartItem(ctx, params)
	}
	if err != nil {
		env.Logger.ErrorContext(ctx, "Failed to delete relation", slog.Any("error", err))
		_ = apiError.EncodeInternalError(w, requestID)
		return
	}
	if deleted == 0 {
		env.Logger.ErrorContext(ctx, "Relation does not exist", slog.String("marker", marker))
		_ = apiError.EncodeError(w, apiError.BadRequest, "recipe was not added", requestID)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// HandleFavorite godoc
//
//	@Summary	Add a recipe to favorites.
//	@Tags		Favorites
//
//	@Param		recipeID	path		int	true	"Recipe ID"
//	@Success	201			{object}	view.RecipeMini
//	@Failure	400			{object}	apiError.Error	"Already favorited"
//	@Failure	404			{object}	apiError.Error	"Recipe not found"
//	@Security	AccessToken
//	@Router		/api/recipes/{recipeID}/favorite/ [POST]
func HandleFavorite(w http.ResponseWriter, r *http.Request) {
	addMarker(w, r, markerFavorite)
}

// HandleUnfavorite godoc
//
//	@Summary	Remove a recipe from favorites.
//	@Tags		Favorites
//
//	@Param		recipeID	path	int	true	"Recipe ID"
//	@Success	204
//	@Failure	400	{object}	apiError.Error	"Not favorited"
//	@Failure	404	{object}	apiError.Error	"Recipe not found"
//	@Security	AccessToken
//	@Router		/api/recipes/{recipeID}/favorite/ [DELETE]
func HandleUnfavorite(w http.ResponseWriter, r *http.Request) {
	removeMarker(w, r, markerFavorite)
}

// HandleAddToCart godoc
//
//	@Summary	Add a recipe to the shopping cart.
//	@Tags		ShoppingCart
//
//	@Param		recipeID	path		int	true	"Recipe ID"
//	@Success	201			{object}	view.RecipeMini
//	@Failure	400			{object}	apiError.Error	"Already in cart"
//	@Failure	404			{object}	apiError.Error	"Recipe not found"
//	@Security	AccessToken
//	@Router		/api/recipes/{recipeID}/shopping_cart/ [POST]
func HandleAddToCart(w http.ResponseWriter, r *http.Request) {
	addMarker(w, r, markerCart)
}

// HandleRemoveFromCart godoc
//
//	@Summary	Remove a recipe from the shopping cart.
//	@Tags		ShoppingCart
//
//	@Param		recipeID	path	int	true	"Recipe ID"
//	@Success	204
//	@Failure	400	{object}	apiError.Error	"Not in cart"
//	@Failure	404	{object}	apiError.Error	"Recipe not found"
//	@Security	AccessToken
//	@Router		/api/recipes/{recipeID}/shopping_cart/ [DELETE]
func HandleRemoveFromCart(w http.ResponseWriter, r *http.Request) {
	removeMarker(w, r, markerCart)
}

// HandleDownloadShoppingCart godoc
//
//	@Summary	Download the aggregated shopping list.
//	@Tags		ShoppingCart
//
//	@Produce	plain
//	@Success	200	{string}	string	"Shopping list document"
//	@Security	AccessToken
//	@Router		/api/recipes/download_shopping_cart/ [GET]
func HandleDownloadShoppingCart(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	env := env.EnvFromCtx(ctx)
	requestID := requestid.String(ctx)
	userID, err := token.UserIDFromCtx(ctx)
	if err != nil {
		env.Logger.ErrorContext(ctx, "Failed to extract user id from context", slog.Any("error", err))
		_ = apiError.EncodeInternalError(w, requestID)
		return
	}

	env.Logger.DebugContext(ctx, "Compiling shopping list")
	rows, err := shopping.Compile(ctx, env.Database, userID)
	if err != nil {
		env.Logger.ErrorContext(ctx, "Failed to compile shopping list", slog.Any("error", err))
		_ = apiError.EncodeInternalError(w, requestID)
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+shoppingListFilename+`"`)
	if _, err := w.Write([]byte(shopping.RenderAsText(rows))); err != nil {
		env.Logger.ErrorContext(ctx, "Failed to write response", slog.Any("error", err))
	}
}

// HandleGetLink godoc
//
//	@Summary	Get a short link for a recipe.
//	@Tags		Recipes
//
//	@Param		recipeID	path		int	true	"Recipe ID"
//	@Success	200			{object}	GetLinkResponse
//	@Failure	404			{object}	apiError.Error	"Recipe not found"
//	@Router		/api/recipes/{recipeID}/get-link/ [GET]
func HandleGetLink(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	env := env.EnvFromCtx(ctx)
	requestID := requestid.String(ctx)

	id, ok := parseRecipeID(w, r, requestID)
	if !ok {
		return
	}

	env.Logger.DebugContext(ctx, "Retrieving recipe")
	row, err := env.Database.GetRecipe(ctx, id)
	if errors.Is(err, pgx.ErrNoRows) {
		env.Logger.ErrorContext(ctx, "Recipe does not exist", slog.Any("error", err))
		_ = apiError.EncodeError(w, apiError.NotFound, "recipe not found", requestID)
		return
	} else if err != nil {
		env.Logger.ErrorContext(ctx, "Failed to retrieve recipe", slog.Any("error", err))
		_ = apiError.EncodeInternalError(w, requestID)
		return
	}

	// The short link is the recipe id; assign it on first request.
	shortLink := row.Recipe.ShortLink
	if !shortLink.Valid {
		shortLink = pgtype.Text{String: strconv.FormatInt(id, 10), Valid: true}
		env.Logger.DebugContext(ctx, "Assigning short link")
		if err := env.Database.SetRecipeShortLink(ctx, database.SetRecipeShortLinkParams{
			ID:        id,
			ShortLink: shortLink,
		}); err != nil {
			env.Logger.ErrorContext(ctx, "Failed to set short link", slog.Any("error", err))
			_ = apiError.EncodeInternalError(w, requestID)
			return
		}
	}

	if err := writeJSON(w, http.StatusOK, GetLinkResponse{
		ShortLink: filestore.FileURL(env.Config.HostOrigin, "/s/"+shortLink.String),
	}); err != nil {
		env.Logger.ErrorContext(ctx, "Failed to write response", slog.Any("error", err))
	}
}
