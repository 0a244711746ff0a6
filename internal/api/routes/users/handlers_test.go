package users

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"go.uber.org/mock/gomock"

	apiError "github.com/m-orlov/foodgram/internal/api/error"
	"github.com/m-orlov/foodgram/internal/api/requestid"
	"github.com/m-orlov/foodgram/internal/api/token"
	"github.com/m-orlov/foodgram/internal/argon2id"
	"github.com/m-orlov/foodgram/internal/config"
	"github.com/m-orlov/foodgram/internal/database"
	"github.com/m-orlov/foodgram/internal/env"
	"github.com/m-orlov/foodgram/internal/filestore"
	"github.com/m-orlov/foodgram/internal/log"
)

const testPassword = "Str0ng-passw0rd!"

type fakeFiles struct {
	avatarPath string
	deleted    []string
}

func (f *fakeFiles) WriteRecipeImage(_ context.Context, suffix string, _ []byte) (string, error) {
	return filestore.DefaultURLPrefix + "/recipe_test" + suffix, nil
}

func (f *fakeFiles) WriteAvatarImage(_ context.Context, suffix string, _ []byte) (string, error) {
	if f.avatarPath == "" {
		f.avatarPath = filestore.DefaultURLPrefix + "/avatar_test" + suffix
	}
	return f.avatarPath, nil
}

func (f *fakeFiles) DeleteURLPath(_ context.Context, urlPath string) error {
	f.deleted = append(f.deleted, urlPath)
	return nil
}

func testEnv(db database.Querier, files filestore.FileStore) *env.Env {
	secret := config.AppSecretValue("test-secret-32-bytes-long-12345")
	return &env.Env{
		Logger:   log.NullLogger(),
		Database: &database.Database{Querier: db},
		Files:    files,
		Config: config.Config{
			AppSecret: config.AppSecret{
				Value:   &secret,
				Version: "1",
			},
			HostOrigin: "https://foodgram.example",
			Pagination: config.Pagination{PageSize: 6},
			Env:        config.EnvDev,
		},
	}
}

func serve(t *testing.T, e *env.Env, userID int64, authed bool, method, target string, body io.Reader,
	register func(chi.Router)) *httptest.ResponseRecorder {
	t.Helper()

	router := chi.NewRouter()
	router.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := requestid.InjectRequestID(r.Context(), 12345)
			ctx = env.WithCtx(ctx, e)
			if authed {
				ctx = token.UserIDWithCtx(ctx, userID)
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	})
	register(router)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(method, target, body))
	return rec
}

func storedUser(t *testing.T, id int64) database.User {
	t.Helper()
	hash, err := argon2id.EncodeHash(testPassword, argon2id.DefaultParams)
	if err != nil {
		t.Fatalf("hashing password: %v", err)
	}
	return database.User{
		ID:           id,
		Email:        "anna@example.com",
		Username:     "anna",
		FirstName:    "Anna",
		LastName:     "Petrova",
		PasswordHash: hash,
	}
}

func decodeErrorCode(t *testing.T, body io.Reader) string {
	t.Helper()
	var resp struct {
		Code string `json:"code"`
	}
	if err := json.NewDecoder(body).Decode(&resp); err != nil {
		t.Fatalf("decoding error response: %v", err)
	}
	return resp.Code
}

func TestHandleCreateUser(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	tests := []struct {
		name       string
		body       string
		setup      func(db *database.MockQuerier)
		wantStatus int
		wantCode   string
	}{
		{
			name: "successful signup",
			body: `{"email":"anna@example.com","username":"anna","first_name":"Anna",` +
				`"last_name":"Petrova","password":"` + testPassword + `"}`,
			setup: func(db *database.MockQuerier) {
				db.EXPECT().CreateUser(gomock.Any(), gomock.Any()).
					Return(int64(1), nil)
			},
			wantStatus: http.StatusCreated,
		},
		{
			name: "duplicate email",
			body: `{"email":"anna@example.com","username":"anna2","first_name":"Anna",` +
				`"last_name":"Petrova","password":"` + testPassword + `"}`,
			setup: func(db *database.MockQuerier) {
				db.EXPECT().CreateUser(gomock.Any(), gomock.Any()).
					Return(int64(0), &pgconn.PgError{Code: "23505", ConstraintName: "users_email_unique"})
			},
			wantStatus: http.StatusConflict,
			wantCode:   apiError.EmailConflict.String(),
		},
		{
			name: "duplicate username",
			body: `{"email":"anna2@example.com","username":"anna","first_name":"Anna",` +
				`"last_name":"Petrova","password":"` + testPassword + `"}`,
			setup: func(db *database.MockQuerier) {
				db.EXPECT().CreateUser(gomock.Any(), gomock.Any()).
					Return(int64(0), &pgconn.PgError{Code: "23505", ConstraintName: "users_username_unique"})
			},
			wantStatus: http.StatusConflict,
			wantCode:   apiError.UsernameConflict.String(),
		},
		{
			name: "weak password",
			body: `{"email":"anna@example.com","username":"anna","first_name":"Anna",` +
				`"last_name":"Petrova","password":"short"}`,
			setup:      func(db *database.MockQuerier) {},
			wantStatus: http.StatusUnprocessableEntity,
			wantCode:   apiError.WeakPassword.String(),
		},
		{
			name:       "invalid email",
			body:       `{"email":"nope","username":"anna","first_name":"Anna","last_name":"Petrova","password":"` + testPassword + `"}`,
			setup:      func(db *database.MockQuerier) {},
			wantStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockDB := database.NewMockQuerier(ctrl)
			tt.setup(mockDB)

			rec := serve(t, testEnv(mockDB, &fakeFiles{}), 0, false,
				http.MethodPost, "/api/users/", strings.NewReader(tt.body), func(r chi.Router) {
					r.Post("/api/users/", HandleCreateUser)
				})

			if rec.Code != tt.wantStatus {
				t.Fatalf("expected status %d, got %d: %s", tt.wantStatus, rec.Code, rec.Body.String())
			}
			if tt.wantCode != "" {
				if code := decodeErrorCode(t, rec.Body); code != tt.wantCode {
					t.Errorf("expected code %s, got %s", tt.wantCode, code)
				}
			}
		})
	}
}

func TestHandleLogin(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	tests := []struct {
		name       string
		body       string
		setup      func(db *database.MockQuerier)
		wantStatus int
	}{
		{
			name: "successful login",
			body: `{"email":"anna@example.com","password":"` + testPassword + `"}`,
			setup: func(db *database.MockQuerier) {
				db.EXPECT().GetUserByEmail(gomock.Any(), "anna@example.com").
					Return(storedUser(t, 1), nil)
			},
			wantStatus: http.StatusOK,
		},
		{
			name: "wrong password",
			body: `{"email":"anna@example.com","password":"Wr0ng-passw0rd!"}`,
			setup: func(db *database.MockQuerier) {
				db.EXPECT().GetUserByEmail(gomock.Any(), "anna@example.com").
					Return(storedUser(t, 1), nil)
			},
			wantStatus: http.StatusUnauthorized,
		},
		{
			name: "unknown email",
			body: `{"email":"ghost@example.com","password":"` + testPassword + `"}`,
			setup: func(db *database.MockQuerier) {
				db.EXPECT().GetUserByEmail(gomock.Any(), "ghost@example.com").
					Return(database.User{}, pgx.ErrNoRows)
			},
			wantStatus: http.StatusUnauthorized,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockDB := database.NewMockQuerier(ctrl)
			tt.setup(mockDB)

			rec := serve(t, testEnv(mockDB, &fakeFiles{}), 0, false,
				http.MethodPost, "/api/auth/token/login/", strings.NewReader(tt.body), func(r chi.Router) {
					r.Post("/api/auth/token/login/", HandleLogin)
				})

			if rec.Code != tt.wantStatus {
				t.Fatalf("expected status %d, got %d: %s", tt.wantStatus, rec.Code, rec.Body.String())
			}
			if tt.wantStatus != http.StatusOK {
				return
			}

			var body UserLoginResponse
			if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
				t.Fatalf("decoding response: %v", err)
			}
			if body.AuthToken == "" {
				t.Error("expected a non-empty auth token")
			}
			cookies := rec.Result().Cookies()
			if len(cookies) != 1 || cookies[0].Value == "" {
				t.Errorf("expected an access token cookie, got %v", cookies)
			}
		})
	}
}

func TestHandleGetUser(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	tests := []struct {
		name       string
		target     string
		setup      func(db *database.MockQuerier)
		wantStatus int
	}{
		{
			name:   "existing user",
			target: "/api/users/1/",
			setup: func(db *database.MockQuerier) {
				db.EXPECT().GetUserByID(gomock.Any(), int64(1)).
					Return(storedUser(t, 1), nil)
			},
			wantStatus: http.StatusOK,
		},
		{
			name:   "missing user",
			target: "/api/users/99/",
			setup: func(db *database.MockQuerier) {
				db.EXPECT().GetUserByID(gomock.Any(), int64(99)).
					Return(database.User{}, pgx.ErrNoRows)
			},
			wantStatus: http.StatusNotFound,
		},
		{
			name:       "non-numeric id",
			target:     "/api/users/abc/",
			setup:      func(db *database.MockQuerier) {},
			wantStatus: http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockDB := database.NewMockQuerier(ctrl)
			tt.setup(mockDB)

			rec := serve(t, testEnv(mockDB, &fakeFiles{}), 0, false,
				http.MethodGet, tt.target, nil, func(r chi.Router) {
					r.Get("/api/users/{userID}/", HandleGetUser)
				})

			if rec.Code != tt.wantStatus {
				t.Errorf("expected status %d, got %d", tt.wantStatus, rec.Code)
			}
		})
	}
}

func TestHandleSubscribe(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	subscription := database.SubscriptionParams{SubscriberID: 7, AuthorID: 2}

	tests := []struct {
		name       string
		target     string
		setup      func(db *database.MockQuerier)
		wantStatus int
	}{
		{
			name:   "subscribed",
			target: "/api/users/2/subscribe/",
			setup: func(db *database.MockQuerier) {
				db.EXPECT().GetUserByID(gomock.Any(), int64(2)).
					Return(storedUser(t, 2), nil)
				db.EXPECT().SubscriptionExists(gomock.Any(), subscription).Return(false, nil)
				db.EXPECT().CreateSubscription(gomock.Any(), subscription).Return(nil)
				db.EXPECT().ListAuthorRecipes(gomock.Any(), gomock.Any()).
					Return([]database.Recipe{}, nil)
				db.EXPECT().CountAuthorRecipes(gomock.Any(), int64(2)).Return(int64(0), nil)
			},
			wantStatus: http.StatusCreated,
		},
		{
			name:       "self subscription",
			target:     "/api/users/7/subscribe/",
			setup:      func(db *database.MockQuerier) {},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:   "already subscribed",
			target: "/api/users/2/subscribe/",
			setup: func(db *database.MockQuerier) {
				db.EXPECT().GetUserByID(gomock.Any(), int64(2)).
					Return(storedUser(t, 2), nil)
				db.EXPECT().SubscriptionExists(gomock.Any(), subscription).Return(true, nil)
			},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:   "missing author",
			target: "/api/users/2/subscribe/",
			setup: func(db *database.MockQuerier) {
				db.EXPECT().GetUserByID(gomock.Any(), int64(2)).
					Return(database.User{}, pgx.ErrNoRows)
			},
			wantStatus: http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockDB := database.NewMockQuerier(ctrl)
			tt.setup(mockDB)

			rec := serve(t, testEnv(mockDB, &fakeFiles{}), 7, true,
				http.MethodPost, tt.target, nil, func(r chi.Router) {
					r.Post("/api/users/{userID}/subscribe/", HandleSubscribe)
				})

			if rec.Code != tt.wantStatus {
				t.Errorf("expected status %d, got %d: %s", tt.wantStatus, rec.Code, rec.Body.String())
			}
		})
	}
}

// Two simultaneous subscribe requests can both pass the existence
// check. The losing insert hits the unique constraint and must come
// back as a client error.
func TestHandleSubscribeUniqueViolation(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	subscription := database.SubscriptionParams{SubscriberID: 7, AuthorID: 2}

	mockDB := database.NewMockQuerier(ctrl)
	mockDB.EXPECT().GetUserByID(gomock.Any(), int64(2)).
		Return(storedUser(t, 2), nil)
	mockDB.EXPECT().SubscriptionExists(gomock.Any(), subscription).Return(false, nil)
	mockDB.EXPECT().CreateSubscription(gomock.Any(), subscription).
		Return(&pgconn.PgError{Code: "23505", ConstraintName: "subscriptions_unique"})

	rec := serve(t, testEnv(mockDB, &fakeFiles{}), 7, true,
		http.MethodPost, "/api/users/2/subscribe/", nil, func(r chi.Router) {
			r.Post("/api/users/{userID}/subscribe/", HandleSubscribe)
		})

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status %d, got %d: %s", http.StatusBadRequest, rec.Code, rec.Body.String())
	}
	if code := decodeErrorCode(t, rec.Body); code != "duplicate_relation" {
		t.Errorf("expected error code duplicate_relation, got %q", code)
	}
}

func TestHandleUnsubscribe(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	subscription := database.SubscriptionParams{SubscriberID: 7, AuthorID: 2}

	tests := []struct {
		name       string
		deleted    int64
		wantStatus int
	}{
		{name: "unsubscribed", deleted: 1, wantStatus: http.StatusNoContent},
		{name: "was not subscribed", deleted: 0, wantStatus: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockDB := database.NewMockQuerier(ctrl)
			mockDB.EXPECT().GetUserByID(gomock.Any(), int64(2)).
				Return(storedUser(t, 2), nil)
			mockDB.EXPECT().DeleteSubscription(gomock.Any(), subscription).
				Return(tt.deleted, nil)

			rec := serve(t, testEnv(mockDB, &fakeFiles{}), 7, true,
				http.MethodDelete, "/api/users/2/subscribe/", nil, func(r chi.Router) {
					r.Delete("/api/users/{userID}/subscribe/", HandleUnsubscribe)
				})

			if rec.Code != tt.wantStatus {
				t.Errorf("expected status %d, got %d", tt.wantStatus, rec.Code)
			}
		})
	}
}

func TestHandleSetAvatar(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	tests := []struct {
		name       string
		body       string
		setup      func(db *database.MockQuerier)
		wantStatus int
	}{
		{
			name: "avatar stored",
			body: `{"avatar":"data:image/png;base64,aGVsbG8="}`,
			setup: func(db *database.MockQuerier) {
				db.EXPECT().GetUserByID(gomock.Any(), int64(7)).
					Return(storedUser(t, 7), nil)
				db.EXPECT().UpdateUserAvatar(gomock.Any(), gomock.Any()).Return(nil)
			},
			wantStatus: http.StatusOK,
		},
		{
			name:       "missing avatar field",
			body:       `{"avatar":""}`,
			setup:      func(db *database.MockQuerier) {},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "not a data url",
			body:       `{"avatar":"https://example.com/a.png"}`,
			setup:      func(db *database.MockQuerier) {},
			wantStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockDB := database.NewMockQuerier(ctrl)
			tt.setup(mockDB)
			files := &fakeFiles{}

			rec := serve(t, testEnv(mockDB, files), 7, true,
				http.MethodPut, "/api/users/me/avatar/", strings.NewReader(tt.body), func(r chi.Router) {
					r.Put("/api/users/me/avatar/", HandleSetAvatar)
				})

			if rec.Code != tt.wantStatus {
				t.Fatalf("expected status %d, got %d: %s", tt.wantStatus, rec.Code, rec.Body.String())
			}
			if tt.wantStatus != http.StatusOK {
				return
			}

			var body SetAvatarResponse
			if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
				t.Fatalf("decoding response: %v", err)
			}
			if !strings.HasPrefix(body.Avatar, "https://foodgram.example/media/avatar_") {
				t.Errorf("unexpected avatar url %q", body.Avatar)
			}
		})
	}
}

func TestHandleListSubscriptionsRecipesLimit(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockDB := database.NewMockQuerier(ctrl)
	author := storedUser(t, 2)
	mockDB.EXPECT().ListSubscribedAuthors(gomock.Any(), gomock.Any()).
		Return([]database.User{author}, nil)
	mockDB.EXPECT().CountSubscribedAuthors(gomock.Any(), int64(7)).Return(int64(1), nil)
	mockDB.EXPECT().ListAuthorRecipes(gomock.Any(), database.ListAuthorRecipesParams{
		AuthorID: 2,
		Limit:    pgtype.Int4{Int32: 1, Valid: true},
	}).Return([]database.Recipe{{ID: 10, AuthorID: 2, Name: "Borscht"}}, nil)
	mockDB.EXPECT().CountAuthorRecipes(gomock.Any(), int64(2)).Return(int64(3), nil)

	rec := serve(t, testEnv(mockDB, &fakeFiles{}), 7, true,
		http.MethodGet, "/api/users/subscriptions/?recipes_limit=1", nil, func(r chi.Router) {
			r.Get("/api/users/subscriptions/", HandleListSubscriptions)
		})

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var page struct {
		Count   int64 `json:"count"`
		Results []struct {
			Recipes      []json.RawMessage `json:"recipes"`
			RecipesCount int64             `json:"recipes_count"`
		} `json:"results"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&page); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if len(page.Results) != 1 {
		t.Fatalf("expected 1 author, got %d", len(page.Results))
	}
	if len(page.Results[0].Recipes) != 1 {
		t.Errorf("expected 1 embedded recipe, got %d", len(page.Results[0].Recipes))
	}
	if page.Results[0].RecipesCount != 3 {
		t.Errorf("expected recipes_count 3, got %d", page.Results[0].RecipesCount)
	}
}
