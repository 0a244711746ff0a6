package recipe

import (
	"context"
	"reflect"
	"testing"

	"go.uber.org/mock/gomock"

	"github.com/m-orlov/foodgram/internal/config"
	"github.com/m-orlov/foodgram/internal/database"
)

var testBounds = config.Recipes{
	MinCookingTime:      1,
	MaxCookingTime:      32000,
	MinIngredientAmount: 1,
	MaxIngredientAmount: 32000,
}

func validInput() Input {
	return Input{
		Name:        "Borscht",
		Text:        "Chop and simmer.",
		CookingTime: 45,
		Image:       "data:image/png;base64,aGk=",
		Ingredients: []LineInput{
			{ID: 1, Amount: 200},
			{ID: 2, Amount: 50},
		},
	}
}

func TestValidateInput(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name          string
		mutate        func(*Input)
		imageRequired bool
		wantFields    []string
	}{
		{
			name:          "valid",
			mutate:        func(*Input) {},
			imageRequired: true,
		},
		{
			name:          "missing name",
			mutate:        func(in *Input) { in.Name = "" },
			imageRequired: true,
			wantFields:    []string{"name"},
		},
		{
			name: "name too long",
			mutate: func(in *Input) {
				for range 300 {
					in.Name += "x"
				}
			},
			wantFields: []string{"name"},
		},
		{
			name:       "missing text",
			mutate:     func(in *Input) { in.Text = "" },
			wantFields: []string{"text"},
		},
		{
			name:       "cooking time below minimum",
			mutate:     func(in *Input) { in.CookingTime = 0 },
			wantFields: []string{"cooking_time"},
		},
		{
			name:       "cooking time above maximum",
			mutate:     func(in *Input) { in.CookingTime = 32001 },
			wantFields: []string{"cooking_time"},
		},
		{
			name:          "missing image on create",
			mutate:        func(in *Input) { in.Image = "" },
			imageRequired: true,
			wantFields:    []string{"image"},
		},
		{
			name:          "missing image allowed on update",
			mutate:        func(in *Input) { in.Image = "" },
			imageRequired: false,
		},
		{
			name:       "no ingredients",
			mutate:     func(in *Input) { in.Ingredients = nil },
			wantFields: []string{"ingredients"},
		},
		{
			name: "duplicate ingredient",
			mutate: func(in *Input) {
				in.Ingredients = []LineInput{
					{ID: 1, Amount: 200},
					{ID: 1, Amount: 50},
				}
			},
			wantFields: []string{"ingredients[1].id"},
		},
		{
			name: "amount below minimum",
			mutate: func(in *Input) {
				in.Ingredients = []LineInput{
					{ID: 1, Amount: 200},
					{ID: 2, Amount: 0},
				}
			},
			wantFields: []string{"ingredients[1].amount"},
		},
		{
			name: "amount above maximum",
			mutate: func(in *Input) {
				in.Ingredients[0].Amount = 32001
			},
			wantFields: []string{"ingredients[0].amount"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			in := validInput()
			tt.mutate(&in)

			fields := ValidateInput(in, testBounds, tt.imageRequired)
			if len(tt.wantFields) == 0 {
				if fields != nil {
					t.Fatalf("ValidateInput() = %v, want nil", fields)
				}
				return
			}
			if len(fields) != len(tt.wantFields) {
				t.Fatalf("ValidateInput() keys = %v, want %v", fields, tt.wantFields)
			}
			for _, key := range tt.wantFields {
				if len(fields[key]) == 0 {
					t.Errorf("missing messages for field %q in %v", key, fields)
				}
			}
		})
	}
}

func TestCheckIngredientsExist(t *testing.T) {
	t.Parallel()

	t.Run("all exist", func(t *testing.T) {
		t.Parallel()

		ctrl := gomock.NewController(t)
		mockDB := database.NewMockQuerier(ctrl)
		mockDB.EXPECT().
			ListIngredientsByIDs(gomock.Any(), []int64{1, 2}).
			Return([]database.Ingredient{
				{ID: 1, Name: "beet", MeasurementUnit: "g"},
				{ID: 2, Name: "salt", MeasurementUnit: "g"},
			}, nil)

		fields, err := CheckIngredientsExist(context.Background(), mockDB, []LineInput{
			{ID: 1, Amount: 200},
			{ID: 2, Amount: 5},
		})
		if err != nil {
			t.Fatalf("CheckIngredientsExist() error = %v", err)
		}
		if fields != nil {
			t.Errorf("CheckIngredientsExist() = %v, want nil", fields)
		}
	})

	t.Run("missing ingredient keyed by position", func(t *testing.T) {
		t.Parallel()

		ctrl := gomock.NewController(t)
		mockDB := database.NewMockQuerier(ctrl)
		mockDB.EXPECT().
			ListIngredientsByIDs(gomock.Any(), []int64{1, 99}).
			Return([]database.Ingredient{
				{ID: 1, Name: "beet", MeasurementUnit: "g"},
			}, nil)

		fields, err := CheckIngredientsExist(context.Background(), mockDB, []LineInput{
			{ID: 1, Amount: 200},
			{ID: 99, Amount: 5},
		})
		if err != nil {
			t.Fatalf("CheckIngredientsExist() error = %v", err)
		}
		if len(fields["ingredients[1].id"]) == 0 {
			t.Errorf("fields = %v, want ingredients[1].id entry", fields)
		}
	})

	t.Run("no lines", func(t *testing.T) {
		t.Parallel()

		ctrl := gomock.NewController(t)
		mockDB := database.NewMockQuerier(ctrl)

		fields, err := CheckIngredientsExist(context.Background(), mockDB, nil)
		if err != nil {
			t.Fatalf("CheckIngredientsExist() error = %v", err)
		}
		if fields != nil {
			t.Errorf("CheckIngredientsExist() = %v, want nil", fields)
		}
	})
}

func TestLines(t *testing.T) {
	t.Parallel()

	got := Lines([]LineInput{{ID: 7, Amount: 3}, {ID: 8, Amount: 10}})
	want := []database.IngredientLine{
		{IngredientID: 7, Amount: 3},
		{IngredientID: 8, Amount: 10},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Lines() = %v, want %v", got, want)
	}
}
