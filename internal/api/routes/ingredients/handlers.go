// Package ingredients contains handlers for the ingredient catalog.
package ingredients

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	apiError "github.com/m-orlov/foodgram/internal/api/error"
	"github.com/m-orlov/foodgram/internal/api/requestid"
	"github.com/m-orlov/foodgram/internal/env"
	"github.com/m-orlov/foodgram/internal/view"
)

func writeJSON(w http.ResponseWriter, status int, body any) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	return json.NewEncoder(w).Encode(body)
}

// HandleListIngredients godoc
//
//	@Summary	List catalog ingredients, optionally filtered by name prefix.
//	@Tags		Ingredients
//
//	@Param		name	query		string	false	"Name prefix"
//	@Success	200		{array}		view.Ingredient
//	@Router		/api/ingredients/ [GET]
func HandleListIngredients(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	env := env.EnvFromCtx(ctx)
	requestID := requestid.String(ctx)

	env.Logger.DebugContext(ctx, "Listing ingredients")
	rows, err := env.Database.SearchIngredients(ctx, r.URL.Query().Get("name"))
	if err != nil {
		env.Logger.ErrorContext(ctx, "Failed to list ingredients", slog.Any("error", err))
		_ = apiError.EncodeInternalError(w, requestID)
		return
	}

	// The catalog endpoint is not paginated.
	if err := writeJSON(w, http.StatusOK, view.NewIngredients(rows)); err != nil {
		env.Logger.ErrorContext(ctx, "Failed to write response", slog.Any("error", err))
	}
}

// HandleGetIngredient godoc
//
//	@Summary	Get a single catalog ingredient.
//	@Tags		Ingredients
//
//	@Param		ingredientID	path		int	true	"Ingredient ID"
//	@Success	200				{object}	view.Ingredient
//	@Failure	404				{object}	apiError.Error	"Ingredient not found"
//	@Router		/api/ingredients/{ingredientID}/ [GET]
func HandleGetIngredient(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	env := env.EnvFromCtx(ctx)
	requestID := requestid.String(ctx)

	id, err := strconv.ParseInt(chi.URLParam(r, "ingredientID"), 10, 64)
	if err != nil {
		env.Logger.ErrorContext(ctx, "Failed to parse ingredient id", slog.Any("error", err))
		_ = apiError.EncodeError(w, apiError.NotFound, "ingredient not found", requestID)
		return
	}

	env.Logger.DebugContext(ctx, "Retrieving ingredient")
	rows, err := env.Database.ListIngredientsByIDs(ctx, []int64{id})
	if err != nil {
		env.Logger.ErrorContext(ctx, "Failed to retrieve ingredient", slog.Any("error", err))
		_ = apiError.EncodeInternalError(w, requestID)
		return
	}
	if len(rows) == 0 {
		env.Logger.ErrorContext(ctx, "Ingredient does not exist")
		_ = apiError.EncodeError(w, apiError.NotFound, "ingredient not found", requestID)
		return
	}

	if err := writeJSON(w, http.StatusOK, view.NewIngredient(rows[0])); err != nil {
		env.Logger.ErrorContext(ctx, "Failed to write response", slog.Any("error", err))
	}
}
