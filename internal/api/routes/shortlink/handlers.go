// Package shortlink resolves short recipe links into redirects.
package shortlink

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5"

	apiError "github.com/m-orlov/foodgram/internal/api/error"
	"github.com/m-orlov/foodgram/internal/api/requestid"
	"github.com/m-orlov/foodgram/internal/env"
)

// HandleResolve godoc
//
//	@Summary	Redirect a short link to its recipe page.
//	@Tags		Recipes
//
//	@Param		shortLink	path	string	true	"Short link token"
//	@Success	302
//	@Failure	404	{object}	apiError.Error	"Unknown short link"
//	@Router		/s/{shortLink} [GET]
func HandleResolve(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	env := env.EnvFromCtx(ctx)
	requestID := requestid.String(ctx)

	// Short link tokens are recipe ids.
	token := chi.URLParam(r, "shortLink")
	id, err := strconv.ParseInt(token, 10, 64)
	if err != nil {
		env.Logger.ErrorContext(ctx, "Failed to parse short link", slog.Any("error", err))
		_ = apiError.EncodeError(w, apiError.NotFound, "unknown short link", requestID)
		return
	}

	env.Logger.DebugContext(ctx, "Resolving short link")
	if _, err := env.Database.GetRecipe(ctx, id); errors.Is(err, pgx.ErrNoRows) {
		env.Logger.ErrorContext(ctx, "Recipe does not exist", slog.Any("error", err))
		_ = apiError.EncodeError(w, apiError.NotFound, "unknown short link", requestID)
		return
	} else if err != nil {
		env.Logger.ErrorContext(ctx, "Failed to retrieve recipe", slog.Any("error", err))
		_ = apiError.EncodeInternalError(w, requestID)
		return
	}

	http.Redirect(w, r, "/api/recipes/"+strconv.FormatInt(id, 10)+"/", http.StatusFound)
}
