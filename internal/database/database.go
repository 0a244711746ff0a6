// Package database implements the persistence layer over PostgreSQL.
package database

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/m-orlov/foodgram/internal/sql"
)

const uniqueViolationCode = "23505"

// Querier is the full query surface of the store. Handlers depend on
// this interface so tests can substitute a mock.
type Querier interface {
	EnsureSchema(ctx context.Context) error

	// Users
	CreateUser(ctx context.Context, arg CreateUserParams) (int64, error)
	GetUserByEmail(ctx context.Context, email string) (User, error)
	GetUserByID(ctx context.Context, id int64) (User, error)
	ListUsers(ctx context.Context, arg ListUsersParams) ([]User, error)
	CountUsers(ctx context.Context) (int64, error)
	UpdateUserAvatar(ctx context.Context, arg UpdateUserAvatarParams) error
	UpdateUserPassword(ctx context.Context, arg UpdateUserPasswordParams) error

	// Subscriptions
	CreateSubscription(ctx context.Context, arg SubscriptionParams) error
	DeleteSubscription(ctx context.Context, arg SubscriptionParams) (int64, error)
	SubscriptionExists(ctx context.Context, arg SubscriptionParams) (bool, error)
	ListSubscribedAuthors(ctx context.Context, arg ListSubscribedAuthorsParams) ([]User, error)
	CountSubscribedAuthors(ctx context.Context, subscriberID int64) (int64, error)
	FilterSubscribedAuthorIDs(ctx context.Context, arg FilterSubscribedAuthorIDsParams) ([]int64, error)

	// Ingredient catalog
	SearchIngredients(ctx context.Context, namePrefix string) ([]Ingredient, error)
	ListIngredientsByIDs(ctx context.Context, ids []int64) ([]Ingredient, error)
	InsertIngredient(ctx context.Context, arg InsertIngredientParams) (bool, error)

	// Recipes
	GetRecipe(ctx context.Context, id int64) (RecipeWithAuthor, error)
	ListRecipes(ctx context.Context, arg ListRecipesParams) ([]RecipeWithAuthor, error)
	CountRecipes(ctx context.Context, arg RecipeFilterParams) (int64, error)
	ListAuthorRecipes(ctx context.Context, arg ListAuthorRecipesParams) ([]Recipe, error)
	CountAuthorRecipes(ctx context.Context, authorID int64) (int64, error)
	DeleteRecipe(ctx context.Context, id int64) (int64, error)
	SetRecipeShortLink(ctx context.Context, arg SetRecipeShortLinkParams) error
	ListRecipeIngredients(ctx context.Context, recipeID int64) ([]RecipeIngredientRow, error)
	ListRecipeIngredientsForRecipes(ctx context.Context, recipeIDs []int64) ([]RecipeIngredientRow, error)
	CreateRecipeWithIngredients(ctx context.Context, arg CreateRecipeWithIngredientsParams) (int64, error)
	UpdateRecipeWithIngredients(ctx context.Context, arg UpdateRecipeWithIngredientsParams) error

	// Favorites / shopping cart
	AddFavorite(ctx context.Context, arg RelationParams) error
	DeleteFavorite(ctx context.Context, arg RelationParams) (int64, error)
	FavoriteExists(ctx context.Context, arg RelationParams) (bool, error)
	FilterFavoriteRecipeIDs(ctx context.Context, arg FilterRelationParams) ([]int64, error)
	AddCartItem(ctx context.Context, arg RelationParams) error
	DeleteCartItem(ctx context.Context, arg RelationParams) (int64, error)
	CartItemExists(ctx context.Context, arg RelationParams) (bool, error)
	FilterCartRecipeIDs(ctx context.Context, arg FilterRelationParams) ([]int64, error)
	CompileShoppingList(ctx context.Context, userID int64) ([]ShoppingListRow, error)
}

type Database struct {
	Querier
}

// Queries is the pgx-backed Querier implementation.
type Queries struct {
	pool *pgxpool.Pool
}

var _ Querier = (*Queries)(nil)

func New(pool *pgxpool.Pool) *Database {
	return &Database{
		Querier: &Queries{pool: pool},
	}
}

// EnsureSchema applies the embedded schema if the users table is not
// detected.
func (q *Queries) EnsureSchema(ctx context.Context) error {
	var exists bool
	err := q.pool.QueryRow(ctx,
		"SELECT to_regclass('public.users') IS NOT NULL").Scan(&exists)
	if err != nil {
		return fmt.Errorf("checking schema exists: %w", err)
	}

	if exists {
		return nil
	}

	if _, err := q.pool.Exec(ctx, sql.Schema()); err != nil {
		return fmt.Errorf("applying database schema: %w", err)
	}

	return nil
}

// IsUniqueViolation reports whether err is a storage-level unique
// constraint violation. The unique constraint is the authoritative
// duplicate detector for marker relations; application-level existence
// checks are an early exit only.
func IsUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode
}

// UniqueConstraint returns the violated constraint name, if err is a
// unique violation.
func UniqueConstraint(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode {
		return pgErr.ConstraintName
	}
	return ""
}
