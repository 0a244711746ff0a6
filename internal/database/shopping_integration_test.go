//go:build integration

package database

import (
	"context"
	"fmt"
	"os/exec"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

func skipIfNoDocker(t *testing.T) {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := exec.CommandContext(ctx, "docker", "info").Run(); err != nil {
		t.Skip("skipping: docker not available")
	}
}

// startPostgres runs a throwaway postgres, applies the schema, and
// returns a ready query layer.
func startPostgres(t *testing.T) *Queries {
	t.Helper()

	ctx := context.Background()
	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "postgres:16-alpine",
			ExposedPorts: []string{"5432/tcp"},
			Env: map[string]string{
				"POSTGRES_USER":     "foodgram",
				"POSTGRES_PASSWORD": "foodgram",
				"POSTGRES_DB":       "foodgram",
			},
			WaitingFor: wait.ForAll(
				wait.ForLog("database system is ready to accept connections").WithOccurrence(2),
				wait.ForListeningPort("5432/tcp"),
			).WithStartupTimeout(60 * time.Second),
		},
		Started: true,
	})
	if err != nil {
		t.Fatalf("starting postgres container: %v", err)
	}
	t.Cleanup(func() {
		if err := container.Terminate(context.Background()); err != nil {
			t.Logf("terminating container: %v", err)
		}
	})

	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("container host: %v", err)
	}
	port, err := container.MappedPort(ctx, "5432")
	if err != nil {
		t.Fatalf("container port: %v", err)
	}

	pool, err := pgxpool.New(ctx, fmt.Sprintf(
		"postgresql://foodgram:foodgram@%s:%s/foodgram", host, port.Port()))
	if err != nil {
		t.Fatalf("creating pool: %v", err)
	}
	t.Cleanup(pool.Close)

	q := &Queries{pool: pool}
	if err := q.EnsureSchema(ctx); err != nil {
		t.Fatalf("applying schema: %v", err)
	}
	return q
}

func createTestUser(t *testing.T, q *Queries, name string) int64 {
	t.Helper()

	id, err := q.CreateUser(context.Background(), CreateUserParams{
		Email:        name + "@example.com",
		Username:     name,
		FirstName:    "Test",
		LastName:     "User",
		PasswordHash: "unused",
	})
	if err != nil {
		t.Fatalf("creating user %s: %v", name, err)
	}
	return id
}

func createTestIngredient(t *testing.T, q *Queries, name, unit string) int64 {
	t.Helper()

	ctx := context.Background()
	if _, err := q.InsertIngredient(ctx, InsertIngredientParams{
		Name:            name,
		MeasurementUnit: unit,
	}); err != nil {
		t.Fatalf("inserting ingredient %s: %v", name, err)
	}
	found, err := q.SearchIngredients(ctx, name)
	if err != nil || len(found) == 0 {
		t.Fatalf("looking up ingredient %s: %v", name, err)
	}
	return found[0].ID
}

func createTestRecipe(t *testing.T, q *Queries, authorID int64, name string, lines []IngredientLine) int64 {
	t.Helper()

	id, err := q.CreateRecipeWithIngredients(context.Background(), CreateRecipeWithIngredientsParams{
		AuthorID:    authorID,
		Name:        name,
		Text:        "Cook it.",
		CookingTime: 30,
		ImageURL:    "/media/recipe_" + name + ".jpg",
		Lines:       lines,
	})
	if err != nil {
		t.Fatalf("creating recipe %s: %v", name, err)
	}
	return id
}

// Shared ingredients across cart recipes collapse into one line with a
// summed amount; recipes outside the cart contribute nothing.
func TestCompileShoppingList(t *testing.T) {
	skipIfNoDocker(t)

	q := startPostgres(t)
	ctx := context.Background()

	shopper := createTestUser(t, q, "shopper")
	author := createTestUser(t, q, "author")

	salt := createTestIngredient(t, q, "salt", "g")
	onion := createTestIngredient(t, q, "onion", "pc")

	soup := createTestRecipe(t, q, author, "soup", []IngredientLine{
		{IngredientID: salt, Amount: 5},
		{IngredientID: onion, Amount: 2},
	})
	stew := createTestRecipe(t, q, author, "stew", []IngredientLine{
		{IngredientID: salt, Amount: 3},
	})
	salad := createTestRecipe(t, q, author, "salad", []IngredientLine{
		{IngredientID: salt, Amount: 100},
	})

	for _, recipeID := range []int64{soup, stew} {
		if err := q.AddCartItem(ctx, RelationParams{UserID: shopper, RecipeID: recipeID}); err != nil {
			t.Fatalf("adding cart item: %v", err)
		}
	}
	// Favorited but not in the cart, so its salt must not be counted.
	if err := q.AddFavorite(ctx, RelationParams{UserID: shopper, RecipeID: salad}); err != nil {
		t.Fatalf("adding favorite: %v", err)
	}

	got, err := q.CompileShoppingList(ctx, shopper)
	if err != nil {
		t.Fatalf("CompileShoppingList() error: %v", err)
	}

	want := []ShoppingListRow{
		{Name: "onion", MeasurementUnit: "pc", TotalAmount: 2},
		{Name: "salt", MeasurementUnit: "g", TotalAmount: 8},
	}
	if len(got) != len(want) {
		t.Fatalf("CompileShoppingList() returned %d rows, want %d: %+v", len(got), len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("row %d = %+v, want %+v", i, got[i], want[i])
		}
	}

	empty, err := q.CompileShoppingList(ctx, author)
	if err != nil {
		t.Fatalf("CompileShoppingList() error for empty cart: %v", err)
	}
	if len(empty) != 0 {
		t.Errorf("expected empty list for user with empty cart, got %+v", empty)
	}
}
