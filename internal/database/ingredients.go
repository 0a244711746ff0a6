package database

import (
	"context"
	"strings"

	"github.com/jackc/pgx/v5"
)

const searchIngredients = `
SELECT id, name, measurement_unit
FROM ingredients
WHERE lower(name) LIKE lower($1) || '%' ESCAPE '\'
ORDER BY name
`

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// escapeLike neutralizes LIKE metacharacters so a user-supplied prefix
// matches literally.
func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

// SearchIngredients returns every ingredient whose name starts with the
// given prefix, case-insensitively, ordered by name. The catalog is
// small reference data, so the result set is not paginated.
func (q *Queries) SearchIngredients(ctx context.Context, namePrefix string) ([]Ingredient, error) {
	rows, err := q.pool.Query(ctx, searchIngredients, escapeLike(namePrefix))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanIngredients(rows)
}

const listIngredientsByIDs = `
SELECT id, name, measurement_unit
FROM ingredients
WHERE id = ANY($1)
ORDER BY name
`

func (q *Queries) ListIngredientsByIDs(ctx context.Context, ids []int64) ([]Ingredient, error) {
	rows, err := q.pool.Query(ctx, listIngredientsByIDs, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanIngredients(rows)
}

func scanIngredients(rows pgx.Rows) ([]Ingredient, error) {
	var ingredients []Ingredient
	for rows.Next() {
		var ing Ingredient
		if err := rows.Scan(&ing.ID, &ing.Name, &ing.MeasurementUnit); err != nil {
			return nil, err
		}
		ingredients = append(ingredients, ing)
	}
	return ingredients, rows.Err()
}

type InsertIngredientParams struct {
	Name            string
	MeasurementUnit string
}

const insertIngredient = `
INSERT INTO ingredients (name, measurement_unit)
VALUES ($1, $2)
ON CONFLICT ON CONSTRAINT ingredients_unique DO NOTHING
`

// InsertIngredient inserts a catalog entry unless the
// (name, measurement_unit) pair already exists. Reports whether a row
// was inserted.
func (q *Queries) InsertIngredient(ctx context.Context, arg InsertIngredientParams) (bool, error) {
	tag, err := q.pool.Exec(ctx, insertIngredient, arg.Name, arg.MeasurementUnit)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}
