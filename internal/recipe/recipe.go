// Package recipe contains utilities for validating recipe submissions.
package recipe

import (
	"context"
	"fmt"

	"github.com/m-orlov/foodgram/internal/config"
	"github.com/m-orlov/foodgram/internal/database"
)

const maxNameLength = 256

// LineInput is one (ingredient, amount) pair of a submitted recipe.
type LineInput struct {
	ID     int64 `json:"id"`
	Amount int32 `json:"amount"`
}

// Input is a recipe submission after JSON decoding. Image holds the
// raw image value; an embedded payload on create, optionally empty on
// partial update to keep the stored image.
type Input struct {
	Name        string
	Text        string
	CookingTime int32
	Image       string
	Ingredients []LineInput
}

// ValidateInput checks a submission against the configured bounds and
// returns field-keyed messages, nil when the input is valid. Line item
// problems are keyed by position, e.g. ingredients[2].amount.
func ValidateInput(in Input, bounds config.Recipes, imageRequired bool) map[string][]string {
	fields := make(map[string][]string)

	if in.Name == "" {
		fields["name"] = append(fields["name"], "field is required")
	} else if len(in.Name) > maxNameLength {
		fields["name"] = append(fields["name"],
			fmt.Sprintf("must be at most %d characters", maxNameLength))
	}

	if in.Text == "" {
		fields["text"] = append(fields["text"], "field is required")
	}

	if int(in.CookingTime) < bounds.MinCookingTime {
		fields["cooking_time"] = append(fields["cooking_time"],
			fmt.Sprintf("must be at least %d", bounds.MinCookingTime))
	} else if int(in.CookingTime) > bounds.MaxCookingTime {
		fields["cooking_time"] = append(fields["cooking_time"],
			fmt.Sprintf("must be at most %d", bounds.MaxCookingTime))
	}

	if imageRequired && in.Image == "" {
		fields["image"] = append(fields["image"], "field is required")
	}

	if len(in.Ingredients) == 0 {
		fields["ingredients"] = append(fields["ingredients"],
			"at least one ingredient is required")
	}

	seen := make(map[int64]bool, len(in.Ingredients))
	for i, line := range in.Ingredients {
		if seen[line.ID] {
			key := fmt.Sprintf("ingredients[%d].id", i)
			fields[key] = append(fields[key], "duplicate ingredient")
		}
		seen[line.ID] = true

		if int(line.Amount) < bounds.MinIngredientAmount {
			key := fmt.Sprintf("ingredients[%d].amount", i)
			fields[key] = append(fields[key],
				fmt.Sprintf("must be at least %d", bounds.MinIngredientAmount))
		} else if int(line.Amount) > bounds.MaxIngredientAmount {
			key := fmt.Sprintf("ingredients[%d].amount", i)
			fields[key] = append(fields[key],
				fmt.Sprintf("must be at most %d", bounds.MaxIngredientAmount))
		}
	}

	if len(fields) == 0 {
		return nil
	}
	return fields
}

// CheckIngredientsExist verifies every referenced catalog entry exists
// and returns field-keyed messages for the ones that do not.
func CheckIngredientsExist(ctx context.Context, db database.Querier, lines []LineInput) (map[string][]string, error) {
	if len(lines) == 0 {
		return nil, nil
	}

	ids := make([]int64, 0, len(lines))
	for _, line := range lines {
		ids = append(ids, line.ID)
	}

	found, err := db.ListIngredientsByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("listing ingredients: %w", err)
	}

	exists := make(map[int64]bool, len(found))
	for _, ingredient := range found {
		exists[ingredient.ID] = true
	}

	var fields map[string][]string
	for i, line := range lines {
		if exists[line.ID] {
			continue
		}
		if fields == nil {
			fields = make(map[string][]string)
		}
		key := fmt.Sprintf("ingredients[%d].id", i)
		fields[key] = append(fields[key], "ingredient does not exist")
	}

	return fields, nil
}

// Lines converts submitted line items to their storage form.
func Lines(in []LineInput) []database.IngredientLine {
	lines := make([]database.IngredientLine, 0, len(in))
	for _, line := range in {
		lines = append(lines, database.IngredientLine{
			IngredientID: line.ID,
			Amount:       line.Amount,
		})
	}
	return lines
}
