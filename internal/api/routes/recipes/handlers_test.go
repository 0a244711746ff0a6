package recipes

import (
	"bytes"
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

	"github.com/m-orlov/foodgram/internal/api/requestid"
	"github.com/m-orlov/foodgram/internal/api/token"
	"github.com/m-orlov/foodgram/internal/config"
	"github.com/m-orlov/foodgram/internal/database"
	"github.com/m-orlov/foodgram/internal/env"
	"github.com/m-orlov/foodgram/internal/filestore"
	"github.com/m-orlov/foodgram/internal/log"
)

type fakeFiles struct {
	recipePath string
	deleted    []string
	writeErr   error
}

func (f *fakeFiles) WriteRecipeImage(_ context.Context, suffix string, _ []byte) (string, error) {
	if f.writeErr != nil {
		return "", f.writeErr
	}
	if f.recipePath == "" {
		f.recipePath = filestore.DefaultURLPrefix + "/recipe_test" + suffix
	}
	return f.recipePath, nil
}

func (f *fakeFiles) WriteAvatarImage(_ context.Context, suffix string, _ []byte) (string, error) {
	return filestore.DefaultURLPrefix + "/avatar_test" + suffix, nil
}

func (f *fakeFiles) DeleteURLPath(_ context.Context, urlPath string) error {
	f.deleted = append(f.deleted, urlPath)
	return nil
}

func testEnv(db database.Querier, files filestore.FileStore) *env.Env {
	return &env.Env{
		Logger:   log.NullLogger(),
		Database: &database.Database{Querier: db},
		Files:    files,
		Config: config.Config{
			HostOrigin: "https://foodgram.example",
			Pagination: config.Pagination{PageSize: 6},
			Recipes: config.Recipes{
				MinCookingTime:      1,
				MaxCookingTime:      32000,
				MinIngredientAmount: 1,
				MaxIngredientAmount: 32000,
			},
		},
	}
}

// serve routes the request through a chi router so URL parameters
// resolve the way they do in production.
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

func sampleRecipeRow(id, authorID int64) database.RecipeWithAuthor {
	return database.RecipeWithAuthor{
		Recipe: database.Recipe{
			ID:          id,
			AuthorID:    authorID,
			Name:        "Borscht",
			Text:        "Simmer until done.",
			CookingTime: 45,
			ImageURL:    "/media/recipe_abc.jpg",
		},
		Author: database.User{
			ID:        authorID,
			Email:     "chef@example.com",
			Username:  "chef",
			FirstName: "Anna",
			LastName:  "Petrova",
		},
	}
}

func responseErrorCode(t *testing.T, body io.Reader) string {
	t.Helper()

	var resp struct {
		Code string `json:"code"`
	}
	if err := json.NewDecoder(body).Decode(&resp); err != nil {
		t.Fatalf("decoding error body: %v", err)
	}
	return resp.Code
}

func TestHandleGetRecipe(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	tests := []struct {
		name       string
		target     string
		setup      func(db *database.MockQuerier)
		wantStatus int
	}{
		{
			name:   "existing recipe",
			target: "/api/recipes/1/",
			setup: func(db *database.MockQuerier) {
				db.EXPECT().GetRecipe(gomock.Any(), int64(1)).
					Return(sampleRecipeRow(1, 7), nil)
				db.EXPECT().ListRecipeIngredientsForRecipes(gomock.Any(), []int64{1}).
					Return([]database.RecipeIngredientRow{}, nil)
			},
			wantStatus: http.StatusOK,
		},
		{
			name:   "missing recipe",
			target: "/api/recipes/99/",
			setup: func(db *database.MockQuerier) {
				db.EXPECT().GetRecipe(gomock.Any(), int64(99)).
					Return(database.RecipeWithAuthor{}, pgx.ErrNoRows)
			},
			wantStatus: http.StatusNotFound,
		},
		{
			name:       "non-numeric id",
			target:     "/api/recipes/abc/",
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
					r.Get("/api/recipes/{recipeID}/", HandleGetRecipe)
				})

			if rec.Code != tt.wantStatus {
				t.Errorf("expected status %d, got %d", tt.wantStatus, rec.Code)
			}
		})
	}
}

func TestHandleGetRecipeImageURL(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockDB := database.NewMockQuerier(ctrl)
	mockDB.EXPECT().GetRecipe(gomock.Any(), int64(1)).
		Return(sampleRecipeRow(1, 7), nil)
	mockDB.EXPECT().ListRecipeIngredientsForRecipes(gomock.Any(), []int64{1}).
		Return([]database.RecipeIngredientRow{}, nil)

	rec := serve(t, testEnv(mockDB, &fakeFiles{}), 0, false,
		http.MethodGet, "/api/recipes/1/", nil, func(r chi.Router) {
			r.Get("/api/recipes/{recipeID}/", HandleGetRecipe)
		})

	var body struct {
		Image string `json:"image"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	want := "https://foodgram.example/media/recipe_abc.jpg"
	if body.Image != want {
		t.Errorf("expected image %q, got %q", want, body.Image)
	}
}

func TestHandleCreateRecipeValidation(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	tests := []struct {
		name       string
		body       string
		wantStatus int
	}{
		{
			name:       "missing image",
			body:       `{"name":"Soup","text":"Boil.","cooking_time":10,"ingredients":[{"id":1,"amount":2}]}`,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "no ingredients",
			body:       `{"name":"Soup","text":"Boil.","cooking_time":10,"image":"data:image/png;base64,aGk=","ingredients":[]}`,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "cooking time below minimum",
			body:       `{"name":"Soup","text":"Boil.","cooking_time":0,"image":"data:image/png;base64,aGk=","ingredients":[{"id":1,"amount":2}]}`,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "unknown field rejected",
			body:       `{"name":"Soup","bogus":true}`,
			wantStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockDB := database.NewMockQuerier(ctrl)

			rec := serve(t, testEnv(mockDB, &fakeFiles{}), 7, true,
				http.MethodPost, "/api/recipes/", strings.NewReader(tt.body), func(r chi.Router) {
					r.Post("/api/recipes/", HandleCreateRecipe)
				})

			if rec.Code != tt.wantStatus {
				t.Errorf("expected status %d, got %d: %s", tt.wantStatus, rec.Code, rec.Body.String())
			}
		})
	}
}

func TestHandleCreateRecipe(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockDB := database.NewMockQuerier(ctrl)
	mockDB.EXPECT().ListIngredientsByIDs(gomock.Any(), []int64{1}).
		Return([]database.Ingredient{{ID: 1, Name: "beet", MeasurementUnit: "g"}}, nil)
	mockDB.EXPECT().CreateRecipeWithIngredients(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, arg database.CreateRecipeWithIngredientsParams) (int64, error) {
			if arg.AuthorID != 7 {
				t.Errorf("expected author 7, got %d", arg.AuthorID)
			}
			if len(arg.Lines) != 1 || arg.Lines[0].IngredientID != 1 {
				t.Errorf("unexpected ingredient lines: %+v", arg.Lines)
			}
			return int64(42), nil
		})
	mockDB.EXPECT().GetRecipe(gomock.Any(), int64(42)).
		Return(sampleRecipeRow(42, 7), nil)
	mockDB.EXPECT().ListRecipeIngredientsForRecipes(gomock.Any(), []int64{42}).
		Return([]database.RecipeIngredientRow{}, nil)
	mockDB.EXPECT().FilterFavoriteRecipeIDs(gomock.Any(), gomock.Any()).Return([]int64{}, nil)
	mockDB.EXPECT().FilterCartRecipeIDs(gomock.Any(), gomock.Any()).Return([]int64{}, nil)
	mockDB.EXPECT().FilterSubscribedAuthorIDs(gomock.Any(), gomock.Any()).Return([]int64{}, nil)

	body := `{"name":"Borscht","text":"Simmer until done.","cooking_time":45,` +
		`"image":"data:image/jpeg;base64,aGVsbG8=","ingredients":[{"id":1,"amount":200}]}`

	rec := serve(t, testEnv(mockDB, &fakeFiles{}), 7, true,
		http.MethodPost, "/api/recipes/", bytes.NewReader([]byte(body)), func(r chi.Router) {
			r.Post("/api/recipes/", HandleCreateRecipe)
		})

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestHandleUpdateRecipePermission(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockDB := database.NewMockQuerier(ctrl)
	mockDB.EXPECT().GetRecipe(gomock.Any(), int64(1)).
		Return(sampleRecipeRow(1, 99), nil)

	body := `{"name":"Borscht","text":"Simmer.","cooking_time":45,"ingredients":[{"id":1,"amount":200}]}`
	rec := serve(t, testEnv(mockDB, &fakeFiles{}), 7, true,
		http.MethodPatch, "/api/recipes/1/", strings.NewReader(body), func(r chi.Router) {
			r.Patch("/api/recipes/{recipeID}/", HandleUpdateRecipe)
		})

	if rec.Code != http.StatusForbidden {
		t.Errorf("expected status 403, got %d", rec.Code)
	}
}

func TestHandleDeleteRecipe(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	tests := []struct {
		name        string
		userID      int64
		setup       func(db *database.MockQuerier)
		wantStatus  int
		wantDeleted string
	}{
		{
			name:   "author deletes recipe",
			userID: 7,
			setup: func(db *database.MockQuerier) {
				db.EXPECT().GetRecipe(gomock.Any(), int64(1)).
					Return(sampleRecipeRow(1, 7), nil)
				db.EXPECT().DeleteRecipe(gomock.Any(), int64(1)).
					Return(int64(1), nil)
			},
			wantStatus:  http.StatusNoContent,
			wantDeleted: "/media/recipe_abc.jpg",
		},
		{
			name:   "non-author is rejected",
			userID: 8,
			setup: func(db *database.MockQuerier) {
				db.EXPECT().GetRecipe(gomock.Any(), int64(1)).
					Return(sampleRecipeRow(1, 7), nil)
			},
			wantStatus: http.StatusForbidden,
		},
		{
			name:   "missing recipe",
			userID: 7,
			setup: func(db *database.MockQuerier) {
				db.EXPECT().GetRecipe(gomock.Any(), int64(1)).
					Return(database.RecipeWithAuthor{}, pgx.ErrNoRows)
			},
			wantStatus: http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockDB := database.NewMockQuerier(ctrl)
			tt.setup(mockDB)
			files := &fakeFiles{}

			rec := serve(t, testEnv(mockDB, files), tt.userID, true,
				http.MethodDelete, "/api/recipes/1/", nil, func(r chi.Router) {
					r.Delete("/api/recipes/{recipeID}/", HandleDeleteRecipe)
				})

			if rec.Code != tt.wantStatus {
				t.Errorf("expected status %d, got %d", tt.wantStatus, rec.Code)
			}
			if tt.wantDeleted != "" {
				if len(files.deleted) != 1 || files.deleted[0] != tt.wantDeleted {
					t.Errorf("expected deleted %q, got %v", tt.wantDeleted, files.deleted)
				}
			}
		})
	}
}

func TestHandleFavorite(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	params := database.RelationParams{UserID: 7, RecipeID: 1}

	tests := []struct {
		name       string
		setup      func(db *database.MockQuerier)
		wantStatus int
	}{
		{
			name: "added",
			setup: func(db *database.MockQuerier) {
				db.EXPECT().GetRecipe(gomock.Any(), int64(1)).
					Return(sampleRecipeRow(1, 9), nil)
				db.EXPECT().FavoriteExists(gomock.Any(), params).Return(false, nil)
				db.EXPECT().AddFavorite(gomock.Any(), params).Return(nil)
			},
			wantStatus: http.StatusCreated,
		},
		{
			name: "already favorited",
			setup: func(db *database.MockQuerier) {
				db.EXPECT().GetRecipe(gomock.Any(), int64(1)).
					Return(sampleRecipeRow(1, 9), nil)
				db.EXPECT().FavoriteExists(gomock.Any(), params).Return(true, nil)
			},
			wantStatus: http.StatusBadRequest,
		},
		{
			name: "missing recipe",
			setup: func(db *database.MockQuerier) {
				db.EXPECT().GetRecipe(gomock.Any(), int64(1)).
					Return(database.RecipeWithAuthor{}, pgx.ErrNoRows)
			},
			wantStatus: http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockDB := database.NewMockQuerier(ctrl)
			tt.setup(mockDB)

			rec := serve(t, testEnv(mockDB, &fakeFiles{}), 7, true,
				http.MethodPost, "/api/recipes/1/favorite/", nil, func(r chi.Router) {
					r.Post("/api/recipes/{recipeID}/favorite/", HandleFavorite)
				})

			if rec.Code != tt.wantStatus {
				t.Errorf("expected status %d, got %d", tt.wantStatus, rec.Code)
			}
		})
	}
}

// A concurrent request can insert the relation between the existence
// check and the insert. The unique constraint must then surface as a
// client error rather than an internal one.
func TestHandleMarkerUniqueViolation(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	params := database.RelationParams{UserID: 7, RecipeID: 1}

	tests := []struct {
		name   string
		target string
		setup  func(db *database.MockQuerier)
	}{
		{
			name:   "favorite",
			target: "/api/recipes/1/favorite/",
			setup: func(db *database.MockQuerier) {
				db.EXPECT().GetRecipe(gomock.Any(), int64(1)).
					Return(sampleRecipeRow(1, 9), nil)
				db.EXPECT().FavoriteExists(gomock.Any(), params).Return(false, nil)
				db.EXPECT().AddFavorite(gomock.Any(), params).
					Return(&pgconn.PgError{Code: "23505", ConstraintName: "favorites_unique"})
			},
		},
		{
			name:   "shopping cart",
			target: "/api/recipes/1/shopping_cart/",
			setup: func(db *database.MockQuerier) {
				db.EXPECT().GetRecipe(gomock.Any(), int64(1)).
					Return(sampleRecipeRow(1, 9), nil)
				db.EXPECT().CartItemExists(gomock.Any(), params).Return(false, nil)
				db.EXPECT().AddCartItem(gomock.Any(), params).
					Return(&pgconn.PgError{Code: "23505", ConstraintName: "cart_items_unique"})
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockDB := database.NewMockQuerier(ctrl)
			tt.setup(mockDB)

			rec := serve(t, testEnv(mockDB, &fakeFiles{}), 7, true,
				http.MethodPost, tt.target, nil, func(r chi.Router) {
					r.Post("/api/recipes/{recipeID}/favorite/", HandleFavorite)
					r.Post("/api/recipes/{recipeID}/shopping_cart/", HandleAddToCart)
				})

			if rec.Code != http.StatusBadRequest {
				t.Fatalf("expected status %d, got %d", http.StatusBadRequest, rec.Code)
			}
			if code := responseErrorCode(t, rec.Body); code != "duplicate_relation" {
				t.Errorf("expected error code duplicate_relation, got %q", code)
			}
		})
	}
}

func TestHandleRemoveFromCart(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	params := database.RelationParams{UserID: 7, RecipeID: 1}

	tests := []struct {
		name       string
		deleted    int64
		wantStatus int
	}{
		{name: "removed", deleted: 1, wantStatus: http.StatusNoContent},
		{name: "was not in cart", deleted: 0, wantStatus: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockDB := database.NewMockQuerier(ctrl)
			mockDB.EXPECT().GetRecipe(gomock.Any(), int64(1)).
				Return(sampleRecipeRow(1, 9), nil)
			mockDB.EXPECT().DeleteCartItem(gomock.Any(), params).
				Return(tt.deleted, nil)

			rec := serve(t, testEnv(mockDB, &fakeFiles{}), 7, true,
				http.MethodDelete, "/api/recipes/1/shopping_cart/", nil, func(r chi.Router) {
					r.Delete("/api/recipes/{recipeID}/shopping_cart/", HandleRemoveFromCart)
				})

			if rec.Code != tt.wantStatus {
				t.Errorf("expected status %d, got %d", tt.wantStatus, rec.Code)
			}
		})
	}
}

func TestHandleDownloadShoppingCart(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockDB := database.NewMockQuerier(ctrl)
	mockDB.EXPECT().CompileShoppingList(gomock.Any(), int64(7)).
		Return([]database.ShoppingListRow{
			{Name: "beet", MeasurementUnit: "g", TotalAmount: 500},
			{Name: "onion", MeasurementUnit: "pc", TotalAmount: 2},
		}, nil)

	rec := serve(t, testEnv(mockDB, &fakeFiles{}), 7, true,
		http.MethodGet, "/api/recipes/download_shopping_cart/", nil, func(r chi.Router) {
			r.Get("/api/recipes/download_shopping_cart/", HandleDownloadShoppingCart)
		})

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/plain") {
		t.Errorf("expected text/plain content type, got %q", ct)
	}
	if cd := rec.Header().Get("Content-Disposition"); !strings.Contains(cd, shoppingListFilename) {
		t.Errorf("expected attachment disposition, got %q", cd)
	}
	want := "beet - 500 g\nonion - 2 pc"
	if got := rec.Body.String(); got != want {
		t.Errorf("expected body %q, got %q", want, got)
	}
}

func TestHandleGetLink(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	tests := []struct {
		name     string
		setup    func(db *database.MockQuerier)
		wantLink string
	}{
		{
			name: "assigns link on first request",
			setup: func(db *database.MockQuerier) {
				db.EXPECT().GetRecipe(gomock.Any(), int64(5)).
					Return(sampleRecipeRow(5, 7), nil)
				db.EXPECT().SetRecipeShortLink(gomock.Any(), database.SetRecipeShortLinkParams{
					ID:        5,
					ShortLink: pgtype.Text{String: "5", Valid: true},
				}).Return(nil)
			},
			wantLink: "https://foodgram.example/s/5",
		},
		{
			name: "reuses stored link",
			setup: func(db *database.MockQuerier) {
				row := sampleRecipeRow(5, 7)
				row.Recipe.ShortLink = pgtype.Text{String: "5", Valid: true}
				db.EXPECT().GetRecipe(gomock.Any(), int64(5)).Return(row, nil)
			},
			wantLink: "https://foodgram.example/s/5",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockDB := database.NewMockQuerier(ctrl)
			tt.setup(mockDB)

			rec := serve(t, testEnv(mockDB, &fakeFiles{}), 0, false,
				http.MethodGet, "/api/recipes/5/get-link/", nil, func(r chi.Router) {
					r.Get("/api/recipes/{recipeID}/get-link/", HandleGetLink)
				})

			if rec.Code != http.StatusOK {
				t.Fatalf("expected status 200, got %d: %s", rec.Code, rec.Body.String())
			}
			var body GetLinkResponse
			if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
				t.Fatalf("failed to decode response: %v", err)
			}
			if body.ShortLink != tt.wantLink {
				t.Errorf("expected link %q, got %q", tt.wantLink, body.ShortLink)
			}
		})
	}
}
