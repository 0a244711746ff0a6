// Package shopping compiles shopping carts into downloadable lists.
package shopping

import (
	"context"
	"fmt"
	"strings"

	"github.com/m-orlov/foodgram/internal/database"
)

// Compile aggregates every line item across the user's cart, grouped
// by ingredient name and unit, ordered by name.
func Compile(ctx context.Context, db database.Querier, userID int64) ([]database.ShoppingListRow, error) {
	rows, err := db.CompileShoppingList(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("compiling shopping list: %w", err)
	}
	return rows, nil
}

// RenderAsText renders the aggregated list as one line per group. An
// empty cart renders as an empty document.
func RenderAsText(rows []database.ShoppingListRow) string {
	lines := make([]string, 0, len(rows))
	for _, row := range rows {
		lines = append(lines, fmt.Sprintf("%s - %d %s",
			row.Name, row.TotalAmount, row.MeasurementUnit))
	}
	return strings.Join(lines, "\n")
}
