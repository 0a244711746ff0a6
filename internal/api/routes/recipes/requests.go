package recipes

import (
	"errors"
	"net/url"
	"strconv"

	"github.com/jackc/pgx/v5/pgtype"

	"github.com/m-orlov/foodgram/internal/database"
	"github.com/m-orlov/foodgram/internal/recipe"
)

type recipeID string

func (r recipeID) Validate() error {
	v, err := strconv.ParseInt(string(r), 10, 64)
	if err != nil {
		return errors.New("expected an integer")
	}
	if v < 0 {
		return errors.New("recipe id should be non-negative")
	}
	return nil
}

// RecipeRequest is the create/update body. Image is an embedded data
// URL; on partial update an empty value keeps the stored image.
type RecipeRequest struct {
	Name        string             `json:"name"`
	Text        string             `json:"text"`
	CookingTime int32              `json:"cooking_time"`
	Image       string             `json:"image"`
	Ingredients []recipe.LineInput `json:"ingredients"`
}

func (r RecipeRequest) Input() recipe.Input {
	return recipe.Input{
		Name:        r.Name,
		Text:        r.Text,
		CookingTime: r.CookingTime,
		Image:       r.Image,
		Ingredients: r.Ingredients,
	}
}

// parseListFilters reads the list filter parameters. The boolean
// filters only take effect for authenticated viewers.
func parseListFilters(query url.Values, viewerID int64, viewerOK bool) database.RecipeFilterParams {
	var filters database.RecipeFilterParams

	if raw := query.Get("author"); raw != "" {
		if id, err := strconv.ParseInt(raw, 10, 64); err == nil {
			filters.AuthorID = pgtype.Int8{Int64: id, Valid: true}
		}
	}

	if viewerOK {
		if flagSet(query.Get("is_favorited")) {
			filters.FavoritedBy = pgtype.Int8{Int64: viewerID, Valid: true}
		}
		if flagSet(query.Get("is_in_shopping_cart")) {
			filters.InCartOf = pgtype.Int8{Int64: viewerID, Valid: true}
		}
	}

	return filters
}

func flagSet(raw string) bool {
	return raw == "1" || raw == "true"
}
