package database

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

const recipeWithAuthorColumns = `
r.id, r.author_id, r.name, r.text, r.cooking_time, r.image_url, r.short_link, r.created_at,
u.id, u.email, u.username, u.first_name, u.last_name, u.password_hash, u.avatar_url, u.created_at`

func scanRecipeWithAuthor(row pgx.Row) (RecipeWithAuthor, error) {
	var r RecipeWithAuthor
	err := row.Scan(
		&r.Recipe.ID, &r.Recipe.AuthorID, &r.Recipe.Name, &r.Recipe.Text,
		&r.Recipe.CookingTime, &r.Recipe.ImageURL, &r.Recipe.ShortLink, &r.Recipe.CreatedAt,
		&r.Author.ID, &r.Author.Email, &r.Author.Username, &r.Author.FirstName,
		&r.Author.LastName, &r.Author.PasswordHash, &r.Author.AvatarURL, &r.Author.CreatedAt)
	return r, err
}

const getRecipe = `
SELECT` + recipeWithAuthorColumns + `
FROM recipes r
JOIN users u ON u.id = r.author_id
WHERE r.id = $1
`

func (q *Queries) GetRecipe(ctx context.Context, id int64) (RecipeWithAuthor, error) {
	return scanRecipeWithAuthor(q.pool.QueryRow(ctx, getRecipe, id))
}

// RecipeFilterParams carries the optional list filters. An invalid
// (null) field disables its filter.
type RecipeFilterParams struct {
	AuthorID    pgtype.Int8
	FavoritedBy pgtype.Int8
	InCartOf    pgtype.Int8
}

type ListRecipesParams struct {
	RecipeFilterParams

	Limit  int32
	Offset int32
}

const recipeFilterClause = `
WHERE ($1::bigint IS NULL OR r.author_id = $1)
  AND ($2::bigint IS NULL OR EXISTS (
        SELECT 1 FROM favorites f WHERE f.user_id = $2 AND f.recipe_id = r.id))
  AND ($3::bigint IS NULL OR EXISTS (
        SELECT 1 FROM shopping_carts c WHERE c.user_id = $3 AND c.recipe_id = r.id))
`

const listRecipes = `
SELECT` + recipeWithAuthorColumns + `
FROM recipes r
JOIN users u ON u.id = r.author_id
` + recipeFilterClause + `
ORDER BY r.created_at DESC, r.id DESC
LIMIT $4 OFFSET $5
`

func (q *Queries) ListRecipes(ctx context.Context, arg ListRecipesParams) ([]RecipeWithAuthor, error) {
	rows, err := q.pool.Query(ctx, listRecipes,
		arg.AuthorID, arg.FavoritedBy, arg.InCartOf, arg.Limit, arg.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var recipes []RecipeWithAuthor
	for rows.Next() {
		r, err := scanRecipeWithAuthor(rows)
		if err != nil {
			return nil, err
		}
		recipes = append(recipes, r)
	}
	return recipes, rows.Err()
}

const countRecipes = `
SELECT count(*)
FROM recipes r
` + recipeFilterClause

func (q *Queries) CountRecipes(ctx context.Context, arg RecipeFilterParams) (int64, error) {
	var count int64
	err := q.pool.QueryRow(ctx, countRecipes,
		arg.AuthorID, arg.FavoritedBy, arg.InCartOf).Scan(&count)
	return count, err
}

type ListAuthorRecipesParams struct {
	AuthorID int64
	// Limit caps the number of returned recipes; null means all.
	Limit pgtype.Int4
}

const listAuthorRecipes = `
SELECT id, author_id, name, text, cooking_time, image_url, short_link, created_at
FROM recipes
WHERE author_id = $1
ORDER BY created_at DESC, id DESC
LIMIT $2
`

func (q *Queries) ListAuthorRecipes(ctx context.Context, arg ListAuthorRecipesParams) ([]Recipe, error) {
	rows, err := q.pool.Query(ctx, listAuthorRecipes, arg.AuthorID, arg.Limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var recipes []Recipe
	for rows.Next() {
		var r Recipe
		if err := rows.Scan(&r.ID, &r.AuthorID, &r.Name, &r.Text, &r.CookingTime,
			&r.ImageURL, &r.ShortLink, &r.CreatedAt); err != nil {
			return nil, err
		}
		recipes = append(recipes, r)
	}
	return recipes, rows.Err()
}

func (q *Queries) CountAuthorRecipes(ctx context.Context, authorID int64) (int64, error) {
	var count int64
	err := q.pool.QueryRow(ctx,
		`SELECT count(*) FROM recipes WHERE author_id = $1`, authorID).Scan(&count)
	return count, err
}

func (q *Queries) DeleteRecipe(ctx context.Context, id int64) (int64, error) {
	tag, err := q.pool.Exec(ctx, `DELETE FROM recipes WHERE id = $1`, id)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

type SetRecipeShortLinkParams struct {
	ID        int64
	ShortLink pgtype.Text
}

func (q *Queries) SetRecipeShortLink(ctx context.Context, arg SetRecipeShortLinkParams) error {
	_, err := q.pool.Exec(ctx,
		`UPDATE recipes SET short_link = $1 WHERE id = $2 AND short_link IS NULL`,
		arg.ShortLink, arg.ID)
	return err
}

const listRecipeIngredients = `
SELECT ri.recipe_id, ri.ingredient_id, i.name, i.measurement_unit, ri.amount
FROM recipe_ingredients ri
JOIN ingredients i ON i.id = ri.ingredient_id
WHERE ri.recipe_id = $1
ORDER BY i.name
`

func (q *Queries) ListRecipeIngredients(ctx context.Context, recipeID int64) ([]RecipeIngredientRow, error) {
	rows, err := q.pool.Query(ctx, listRecipeIngredients, recipeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanRecipeIngredientRows(rows)
}

const listRecipeIngredientsForRecipes = `
SELECT ri.recipe_id, ri.ingredient_id, i.name, i.measurement_unit, ri.amount
FROM recipe_ingredients ri
JOIN ingredients i ON i.id = ri.ingredient_id
WHERE ri.recipe_id = ANY($1)
ORDER BY ri.recipe_id, i.name
`

// ListRecipeIngredientsForRecipes fetches line items for a whole page
// of recipes in one query so list rendering stays O(1) in query count.
func (q *Queries) ListRecipeIngredientsForRecipes(ctx context.Context, recipeIDs []int64) ([]RecipeIngredientRow, error) {
	rows, err := q.pool.Query(ctx, listRecipeIngredientsForRecipes, recipeIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanRecipeIngredientRows(rows)
}

func scanRecipeIngredientRows(rows pgx.Rows) ([]RecipeIngredientRow, error) {
	var items []RecipeIngredientRow
	for rows.Next() {
		var it RecipeIngredientRow
		if err := rows.Scan(&it.RecipeID, &it.IngredientID, &it.Name,
			&it.MeasurementUnit, &it.Amount); err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

type CreateRecipeWithIngredientsParams struct {
	AuthorID    int64
	Name        string
	Text        string
	CookingTime int32
	ImageURL    string
	Lines       []IngredientLine
}

// CreateRecipeWithIngredients inserts the recipe row and bulk-inserts
// its line items in a single transaction. Nothing is persisted when any
// part fails.
func (q *Queries) CreateRecipeWithIngredients(ctx context.Context, arg CreateRecipeWithIngredientsParams) (int64, error) {
	tx, err := q.pool.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var recipeID int64
	err = tx.QueryRow(ctx, `
INSERT INTO recipes (author_id, name, text, cooking_time, image_url)
VALUES ($1, $2, $3, $4, $5)
RETURNING id`,
		arg.AuthorID, arg.Name, arg.Text, arg.CookingTime, arg.ImageURL).Scan(&recipeID)
	if err != nil {
		return 0, fmt.Errorf("inserting recipe: %w", err)
	}

	if err := copyIngredientLines(ctx, tx, recipeID, arg.Lines); err != nil {
		return 0, err
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("committing transaction: %w", err)
	}
	return recipeID, nil
}

type UpdateRecipeWithIngredientsParams struct {
	ID          int64
	Name        string
	Text        string
	CookingTime int32
	ImageURL    string
	Lines       []IngredientLine
}

// UpdateRecipeWithIngredients replaces the recipe's fields and its
// whole line-item set (delete-all-then-insert) atomically, so readers
// never observe a recipe with zero or partial line items. The author
// column is never touched.
func (q *Queries) UpdateRecipeWithIngredients(ctx context.Context, arg UpdateRecipeWithIngredientsParams) error {
	tx, err := q.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	tag, err := tx.Exec(ctx, `
UPDATE recipes SET name = $1, text = $2, cooking_time = $3, image_url = $4
WHERE id = $5`,
		arg.Name, arg.Text, arg.CookingTime, arg.ImageURL, arg.ID)
	if err != nil {
		return fmt.Errorf("updating recipe: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}

	if _, err := tx.Exec(ctx,
		`DELETE FROM recipe_ingredients WHERE recipe_id = $1`, arg.ID); err != nil {
		return fmt.Errorf("deleting old line items: %w", err)
	}

	if err := copyIngredientLines(ctx, tx, arg.ID, arg.Lines); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

func copyIngredientLines(ctx context.Context, tx pgx.Tx, recipeID int64, lines []IngredientLine) error {
	_, err := tx.CopyFrom(ctx,
		pgx.Identifier{"recipe_ingredients"},
		[]string{"recipe_id", "ingredient_id", "amount"},
		pgx.CopyFromSlice(len(lines), func(i int) ([]any, error) {
			return []any{recipeID, lines[i].IngredientID, lines[i].Amount}, nil
		}))
	if err != nil {
		return fmt.Errorf("inserting line items: %w", err)
	}
	return nil
}
