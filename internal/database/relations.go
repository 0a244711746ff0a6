package database

import "context"

// RelationParams keys a marker relation between a user and a recipe.
type RelationParams struct {
	UserID   int64
	RecipeID int64
}

type FilterRelationParams struct {
	UserID    int64
	RecipeIDs []int64
}

func (q *Queries) AddFavorite(ctx context.Context, arg RelationParams) error {
	_, err := q.pool.Exec(ctx,
		`INSERT INTO favorites (user_id, recipe_id) VALUES ($1, $2)`,
		arg.UserID, arg.RecipeID)
	return err
}

func (q *Queries) DeleteFavorite(ctx context.Context, arg RelationParams) (int64, error) {
	tag, err := q.pool.Exec(ctx,
		`DELETE FROM favorites WHERE user_id = $1 AND recipe_id = $2`,
		arg.UserID, arg.RecipeID)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (q *Queries) FavoriteExists(ctx context.Context, arg RelationParams) (bool, error) {
	var exists bool
	err := q.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM favorites WHERE user_id = $1 AND recipe_id = $2)`,
		arg.UserID, arg.RecipeID).Scan(&exists)
	return exists, err
}

// FilterFavoriteRecipeIDs returns the subset of RecipeIDs the user has
// favorited. One query per rendered list, not one per recipe.
func (q *Queries) FilterFavoriteRecipeIDs(ctx context.Context, arg FilterRelationParams) ([]int64, error) {
	return q.filterRelationRecipeIDs(ctx,
		`SELECT recipe_id FROM favorites WHERE user_id = $1 AND recipe_id = ANY($2)`, arg)
}

func (q *Queries) AddCartItem(ctx context.Context, arg RelationParams) error {
	_, err := q.pool.Exec(ctx,
		`INSERT INTO shopping_carts (user_id, recipe_id) VALUES ($1, $2)`,
		arg.UserID, arg.RecipeID)
	return err
}

func (q *Queries) DeleteCartItem(ctx context.Context, arg RelationParams) (int64, error) {
	tag, err := q.pool.Exec(ctx,
		`DELETE FROM shopping_carts WHERE user_id = $1 AND recipe_id = $2`,
		arg.UserID, arg.RecipeID)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (q *Queries) CartItemExists(ctx context.Context, arg RelationParams) (bool, error) {
	var exists bool
	err := q.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM shopping_carts WHERE user_id = $1 AND recipe_id = $2)`,
		arg.UserID, arg.RecipeID).Scan(&exists)
	return exists, err
}

func (q *Queries) FilterCartRecipeIDs(ctx context.Context, arg FilterRelationParams) ([]int64, error) {
	return q.filterRelationRecipeIDs(ctx,
		`SELECT recipe_id FROM shopping_carts WHERE user_id = $1 AND recipe_id = ANY($2)`, arg)
}

func (q *Queries) filterRelationRecipeIDs(ctx context.Context, query string, arg FilterRelationParams) ([]int64, error) {
	rows, err := q.pool.Query(ctx, query, arg.UserID, arg.RecipeIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

const compileShoppingList = `
SELECT i.name, i.measurement_unit, SUM(ri.amount)::bigint AS total_amount
FROM recipe_ingredients ri
JOIN ingredients i ON i.id = ri.ingredient_id
JOIN shopping_carts sc ON sc.recipe_id = ri.recipe_id
WHERE sc.user_id = $1
GROUP BY i.name, i.measurement_unit
ORDER BY i.name
`

// CompileShoppingList sums line-item amounts over every recipe in the
// user's cart, grouped by (ingredient name, measurement unit), sorted
// by name. Each cart recipe contributes exactly once: the cart has a
// uniqueness constraint over (user, recipe).
func (q *Queries) CompileShoppingList(ctx context.Context, userID int64) ([]ShoppingListRow, error) {
	rows, err := q.pool.Query(ctx, compileShoppingList, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var groups []ShoppingListRow
	for rows.Next() {
		var g ShoppingListRow
		if err := rows.Scan(&g.Name, &g.MeasurementUnit, &g.TotalAmount); err != nil {
			return nil, err
		}
		groups = append(groups, g)
	}
	return groups, rows.Err()
}
