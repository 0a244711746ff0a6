package database

import "github.com/jackc/pgx/v5/pgtype"

type User struct {
	ID           int64
	Email        string
	Username     string
	FirstName    string
	LastName     string
	PasswordHash string
	AvatarURL    pgtype.Text
	CreatedAt    pgtype.Timestamptz
}

type Ingredient struct {
	ID              int64
	Name            string
	MeasurementUnit string
}

type Recipe struct {
	ID          int64
	AuthorID    int64
	Name        string
	Text        string
	CookingTime int32
	ImageURL    string
	ShortLink   pgtype.Text
	CreatedAt   pgtype.Timestamptz
}

type RecipeWithAuthor struct {
	Recipe Recipe
	Author User
}

// RecipeIngredientRow is one line item joined with its catalog entry.
type RecipeIngredientRow struct {
	RecipeID        int64
	IngredientID    int64
	Name            string
	MeasurementUnit string
	Amount          int32
}

// ShoppingListRow is one aggregated group of the shopping list.
type ShoppingListRow struct {
	Name            string
	MeasurementUnit string
	TotalAmount     int64
}

// IngredientLine is one (ingredient, amount) pair of a recipe write.
type IngredientLine struct {
	IngredientID int64
	Amount       int32
}
