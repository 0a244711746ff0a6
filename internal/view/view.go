// Package view renders database models into API response shapes.
package view

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgtype"

	"github.com/m-orlov/foodgram/internal/database"
	"github.com/m-orlov/foodgram/internal/filestore"
)

// Viewer identifies the requesting user for personalized flags. A zero
// Viewer renders every flag false.
type Viewer struct {
	ID     int64
	Authed bool
}

type User struct {
	ID           int64   `json:"id"`
	Email        string  `json:"email"`
	Username     string  `json:"username"`
	FirstName    string  `json:"first_name"`
	LastName     string  `json:"last_name"`
	IsSubscribed bool    `json:"is_subscribed"`
	Avatar       *string `json:"avatar"`
}

type Ingredient struct {
	ID              int64  `json:"id"`
	Name            string `json:"name"`
	MeasurementUnit string `json:"measurement_unit"`
}

// Line is one recipe line item joined with its catalog entry.
type Line struct {
	ID              int64  `json:"id"`
	Name            string `json:"name"`
	MeasurementUnit string `json:"measurement_unit"`
	Amount          int32  `json:"amount"`
}

type Recipe struct {
	ID               int64  `json:"id"`
	Author           User   `json:"author"`
	Ingredients      []Line `json:"ingredients"`
	IsFavorited      bool   `json:"is_favorited"`
	IsInShoppingCart bool   `json:"is_in_shopping_cart"`
	Name             string `json:"name"`
	Image            string `json:"image"`
	Text             string `json:"text"`
	CookingTime      int32  `json:"cooking_time"`
}

// RecipeMini is the compact recipe shape used in marker responses and
// subscription listings.
type RecipeMini struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Image       string `json:"image"`
	CookingTime int32  `json:"cooking_time"`
}

type UserWithRecipes struct {
	User

	Recipes      []RecipeMini `json:"recipes"`
	RecipesCount int64        `json:"recipes_count"`
}

func NewUser(u database.User, isSubscribed bool, host string) User {
	view := User{
		ID:           u.ID,
		Email:        u.Email,
		Username:     u.Username,
		FirstName:    u.FirstName,
		LastName:     u.LastName,
		IsSubscribed: isSubscribed,
	}
	if u.AvatarURL.Valid {
		url := filestore.FileURL(host, u.AvatarURL.String)
		view.Avatar = &url
	}
	return view
}

func NewIngredient(i database.Ingredient) Ingredient {
	return Ingredient{
		ID:              i.ID,
		Name:            i.Name,
		MeasurementUnit: i.MeasurementUnit,
	}
}

func NewIngredients(ingredients []database.Ingredient) []Ingredient {
	views := make([]Ingredient, 0, len(ingredients))
	for _, ingredient := range ingredients {
		views = append(views, NewIngredient(ingredient))
	}
	return views
}

func NewRecipeMini(r database.Recipe, host string) RecipeMini {
	return RecipeMini{
		ID:          r.ID,
		Name:        r.Name,
		Image:       filestore.FileURL(host, r.ImageURL),
		CookingTime: r.CookingTime,
	}
}

// BuildRecipes assembles full recipe views for a page of rows. Line
// items and the viewer's marker flags are fetched in one batch query
// each, keyed back to rows by recipe id.
func BuildRecipes(ctx context.Context, db database.Querier, viewer Viewer, host string, rows []database.RecipeWithAuthor) ([]Recipe, error) {
	if len(rows) == 0 {
		return []Recipe{}, nil
	}

	recipeIDs := make([]int64, 0, len(rows))
	authorIDs := make([]int64, 0, len(rows))
	for _, row := range rows {
		recipeIDs = append(recipeIDs, row.Recipe.ID)
		authorIDs = append(authorIDs, row.Author.ID)
	}

	lineRows, err := db.ListRecipeIngredientsForRecipes(ctx, recipeIDs)
	if err != nil {
		return nil, fmt.Errorf("listing recipe ingredients: %w", err)
	}
	lines := make(map[int64][]Line, len(rows))
	for _, row := range lineRows {
		lines[row.RecipeID] = append(lines[row.RecipeID], Line{
			ID:              row.IngredientID,
			Name:            row.Name,
			MeasurementUnit: row.MeasurementUnit,
			Amount:          row.Amount,
		})
	}

	favorited := make(map[int64]bool)
	inCart := make(map[int64]bool)
	subscribed := make(map[int64]bool)
	if viewer.Authed {
		favoriteIDs, err := db.FilterFavoriteRecipeIDs(ctx, database.FilterRelationParams{
			UserID:    viewer.ID,
			RecipeIDs: recipeIDs,
		})
		if err != nil {
			return nil, fmt.Errorf("filtering favorites: %w", err)
		}
		for _, id := range favoriteIDs {
			favorited[id] = true
		}

		cartIDs, err := db.FilterCartRecipeIDs(ctx, database.FilterRelationParams{
			UserID:    viewer.ID,
			RecipeIDs: recipeIDs,
		})
		if err != nil {
			return nil, fmt.Errorf("filtering cart items: %w", err)
		}
		for _, id := range cartIDs {
			inCart[id] = true
		}

		subscribedIDs, err := db.FilterSubscribedAuthorIDs(ctx, database.FilterSubscribedAuthorIDsParams{
			SubscriberID: viewer.ID,
			AuthorIDs:    authorIDs,
		})
		if err != nil {
			return nil, fmt.Errorf("filtering subscriptions: %w", err)
		}
		for _, id := range subscribedIDs {
			subscribed[id] = true
		}
	}

	views := make([]Recipe, 0, len(rows))
	for _, row := range rows {
		recipeLines := lines[row.Recipe.ID]
		if recipeLines == nil {
			recipeLines = []Line{}
		}
		views = append(views, Recipe{
			ID:               row.Recipe.ID,
			Author:           NewUser(row.Author, subscribed[row.Author.ID], host),
			Ingredients:      recipeLines,
			IsFavorited:      favorited[row.Recipe.ID],
			IsInShoppingCart: inCart[row.Recipe.ID],
			Name:             row.Recipe.Name,
			Image:            filestore.FileURL(host, row.Recipe.ImageURL),
			Text:             row.Recipe.Text,
			CookingTime:      row.Recipe.CookingTime,
		})
	}

	return views, nil
}

// BuildRecipe assembles the view for a single recipe.
func BuildRecipe(ctx context.Context, db database.Querier, viewer Viewer, host string, row database.RecipeWithAuthor) (Recipe, error) {
	views, err := BuildRecipes(ctx, db, viewer, host, []database.RecipeWithAuthor{row})
	if err != nil {
		return Recipe{}, err
	}
	return views[0], nil
}

// BuildUsers assembles profile views with the viewer's subscription
// flags resolved in one query.
func BuildUsers(ctx context.Context, db database.Querier, viewer Viewer, host string, users []database.User) ([]User, error) {
	subscribed := make(map[int64]bool)
	if viewer.Authed && len(users) > 0 {
		authorIDs := make([]int64, 0, len(users))
		for _, u := range users {
			authorIDs = append(authorIDs, u.ID)
		}
		subscribedIDs, err := db.FilterSubscribedAuthorIDs(ctx, database.FilterSubscribedAuthorIDsParams{
			SubscriberID: viewer.ID,
			AuthorIDs:    authorIDs,
		})
		if err != nil {
			return nil, fmt.Errorf("filtering subscriptions: %w", err)
		}
		for _, id := range subscribedIDs {
			subscribed[id] = true
		}
	}

	views := make([]User, 0, len(users))
	for _, u := range users {
		views = append(views, NewUser(u, subscribed[u.ID], host))
	}
	return views, nil
}

// BuildAuthorsWithRecipes assembles subscription views. The viewer
// follows every listed author, so is_subscribed is always true.
// recipesLimit caps the embedded recipes, never recipes_count.
func BuildAuthorsWithRecipes(ctx context.Context, db database.Querier, host string, authors []database.User, recipesLimit pgtype.Int4) ([]UserWithRecipes, error) {
	views := make([]UserWithRecipes, 0, len(authors))
	for _, author := range authors {
		recipes, err := db.ListAuthorRecipes(ctx, database.ListAuthorRecipesParams{
			AuthorID: author.ID,
			Limit:    recipesLimit,
		})
		if err != nil {
			return nil, fmt.Errorf("listing author recipes: %w", err)
		}
		count, err := db.CountAuthorRecipes(ctx, author.ID)
		if err != nil {
			return nil, fmt.Errorf("counting author recipes: %w", err)
		}

		minis := make([]RecipeMini, 0, len(recipes))
		for _, r := range recipes {
			minis = append(minis, NewRecipeMini(r, host))
		}

		views = append(views, UserWithRecipes{
			User:         NewUser(author, true, host),
			Recipes:      minis,
			RecipesCount: count,
		})
	}
	return views, nil
}
