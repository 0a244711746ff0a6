package database

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

const userColumns = `id, email, username, first_name, last_name, password_hash, avatar_url, created_at`

func scanUser(row pgx.Row) (User, error) {
	var u User
	err := row.Scan(&u.ID, &u.Email, &u.Username, &u.FirstName, &u.LastName,
		&u.PasswordHash, &u.AvatarURL, &u.CreatedAt)
	return u, err
}

type CreateUserParams struct {
	Email        string
	Username     string
	FirstName    string
	LastName     string
	PasswordHash string
}

const createUser = `
INSERT INTO users (email, username, first_name, last_name, password_hash)
VALUES ($1, $2, $3, $4, $5)
RETURNING id
`

func (q *Queries) CreateUser(ctx context.Context, arg CreateUserParams) (int64, error) {
	var id int64
	err := q.pool.QueryRow(ctx, createUser,
		arg.Email, arg.Username, arg.FirstName, arg.LastName, arg.PasswordHash).Scan(&id)
	return id, err
}

const getUserByEmail = `SELECT ` + userColumns + ` FROM users WHERE email = $1`

func (q *Queries) GetUserByEmail(ctx context.Context, email string) (User, error) {
	return scanUser(q.pool.QueryRow(ctx, getUserByEmail, email))
}

const getUserByID = `SELECT ` + userColumns + ` FROM users WHERE id = $1`

func (q *Queries) GetUserByID(ctx context.Context, id int64) (User, error) {
	return scanUser(q.pool.QueryRow(ctx, getUserByID, id))
}

type ListUsersParams struct {
	Limit  int32
	Offset int32
}

const listUsers = `
SELECT ` + userColumns + `
FROM users
ORDER BY username
LIMIT $1 OFFSET $2
`

func (q *Queries) ListUsers(ctx context.Context, arg ListUsersParams) ([]User, error) {
	rows, err := q.pool.Query(ctx, listUsers, arg.Limit, arg.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

func (q *Queries) CountUsers(ctx context.Context) (int64, error) {
	var count int64
	err := q.pool.QueryRow(ctx, `SELECT count(*) FROM users`).Scan(&count)
	return count, err
}

type UpdateUserAvatarParams struct {
	ID        int64
	AvatarURL pgtype.Text
}

func (q *Queries) UpdateUserAvatar(ctx context.Context, arg UpdateUserAvatarParams) error {
	_, err := q.pool.Exec(ctx,
		`UPDATE users SET avatar_url = $1 WHERE id = $2`, arg.AvatarURL, arg.ID)
	return err
}

type UpdateUserPasswordParams struct {
	ID           int64
	PasswordHash string
}

func (q *Queries) UpdateUserPassword(ctx context.Context, arg UpdateUserPasswordParams) error {
	_, err := q.pool.Exec(ctx,
		`UPDATE users SET password_hash = $1 WHERE id = $2`, arg.PasswordHash, arg.ID)
	return err
}

type SubscriptionParams struct {
	SubscriberID int64
	AuthorID     int64
}

func (q *Queries) CreateSubscription(ctx context.Context, arg SubscriptionParams) error {
	_, err := q.pool.Exec(ctx,
		`INSERT INTO subscriptions (subscriber_id, author_id) VALUES ($1, $2)`,
		arg.SubscriberID, arg.AuthorID)
	return err
}

func (q *Queries) DeleteSubscription(ctx context.Context, arg SubscriptionParams) (int64, error) {
	tag, err := q.pool.Exec(ctx,
		`DELETE FROM subscriptions WHERE subscriber_id = $1 AND author_id = $2`,
		arg.SubscriberID, arg.AuthorID)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (q *Queries) SubscriptionExists(ctx context.Context, arg SubscriptionParams) (bool, error) {
	var exists bool
	err := q.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM subscriptions WHERE subscriber_id = $1 AND author_id = $2)`,
		arg.SubscriberID, arg.AuthorID).Scan(&exists)
	return exists, err
}

type ListSubscribedAuthorsParams struct {
	SubscriberID int64
	Limit        int32
	Offset       int32
}

const listSubscribedAuthors = `
SELECT u.id, u.email, u.username, u.first_name, u.last_name, u.password_hash, u.avatar_url, u.created_at
FROM users u
JOIN subscriptions s ON s.author_id = u.id
WHERE s.subscriber_id = $1
ORDER BY u.username
LIMIT $2 OFFSET $3
`

func (q *Queries) ListSubscribedAuthors(ctx context.Context, arg ListSubscribedAuthorsParams) ([]User, error) {
	rows, err := q.pool.Query(ctx, listSubscribedAuthors, arg.SubscriberID, arg.Limit, arg.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

func (q *Queries) CountSubscribedAuthors(ctx context.Context, subscriberID int64) (int64, error) {
	var count int64
	err := q.pool.QueryRow(ctx,
		`SELECT count(*) FROM subscriptions WHERE subscriber_id = $1`, subscriberID).Scan(&count)
	return count, err
}

type FilterSubscribedAuthorIDsParams struct {
	SubscriberID int64
	AuthorIDs    []int64
}

// FilterSubscribedAuthorIDs returns the subset of AuthorIDs the
// subscriber follows. Used for batch is_subscribed computation when
// rendering lists.
func (q *Queries) FilterSubscribedAuthorIDs(ctx context.Context, arg FilterSubscribedAuthorIDsParams) ([]int64, error) {
	rows, err := q.pool.Query(ctx,
		`SELECT author_id FROM subscriptions WHERE subscriber_id = $1 AND author_id = ANY($2)`,
		arg.SubscriberID, arg.AuthorIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scanning author id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
