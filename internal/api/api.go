// Package api sets up and starts the API
// server with routing, middleware, and Swagger documentation.
package api

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	httpSwagger "github.com/swaggo/http-swagger/v2"

	_ "github.com/m-orlov/foodgram/docs"
	"github.com/m-orlov/foodgram/internal/api/middleware"
	"github.com/m-orlov/foodgram/internal/api/routes/ingredients"
	"github.com/m-orlov/foodgram/internal/api/routes/ping"
	"github.com/m-orlov/foodgram/internal/api/routes/recipes"
	"github.com/m-orlov/foodgram/internal/api/routes/shortlink"
	"github.com/m-orlov/foodgram/internal/api/routes/users"
	"github.com/m-orlov/foodgram/internal/config"
	"github.com/m-orlov/foodgram/internal/env"
)

const (
	serverPort = 8080
)

func addDocs(r *chi.Mux, serverAddr string) {
	swagger := httpSwagger.Handler(
		httpSwagger.URL(fmt.Sprintf("http://%s/api/swagger/doc.json", serverAddr)),
		httpSwagger.DeepLinking(true),
		httpSwagger.DocExpansion("none"),
		httpSwagger.DomID("swagger-ui"),
	)

	r.Mount("/api/swagger", http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		// Handle preflight
		if req.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		// Allow GET to serve Swagger
		if req.Method == http.MethodGet {
			swagger.ServeHTTP(w, req)
			return
		}

		// Block anything else
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
	}))
}

// addMedia serves stored images straight from the volume when the
// local backend is active. The S3 backend serves its own objects.
func addMedia(router *chi.Mux, conf config.Config) {
	if conf.FileStore.Backend != config.StorageLocal {
		return
	}
	prefix := conf.FileStore.URLPrefix
	fs := http.StripPrefix(prefix, http.FileServer(http.Dir(conf.FileStore.Volume)))
	router.Handle(prefix+"/*", fs)
}

func addRoutes(router *chi.Mux) {
	router.Get("/s/{shortLink}", shortlink.HandleResolve)

	router.Route("/api", func(r chi.Router) {
		r.Get("/ping", ping.HandlePing)

		r.Route("/auth/token", func(r chi.Router) {
			r.Post("/login/", users.HandleLogin)

			r.Group(func(r chi.Router) {
				r.Use(middleware.Authenticate)
				r.Post("/logout/", users.HandleLogout)
			})
		})

		r.Route("/users", func(r chi.Router) {
			r.Post("/", users.HandleCreateUser)

			r.Group(func(r chi.Router) {
				r.Use(middleware.AuthenticateOptional)
				r.Get("/", users.HandleListUsers)
			})

			r.Group(func(r chi.Router) {
				r.Use(middleware.Authenticate)
				r.Get("/me/", users.HandleGetMe)
				r.Put("/me/avatar/", users.HandleSetAvatar)
				r.Delete("/me/avatar/", users.HandleDeleteAvatar)
				r.Post("/set_password/", users.HandleSetPassword)
				r.Get("/subscriptions/", users.HandleListSubscriptions)
				r.Post("/{userID}/subscribe/", users.HandleSubscribe)
				r.Delete("/{userID}/subscribe/", users.HandleUnsubscribe)
			})

			r.Group(func(r chi.Router) {
				r.Use(middleware.AuthenticateOptional)
				r.Get("/{userID}/", users.HandleGetUser)
			})
		})

		r.Route("/ingredients", func(r chi.Router) {
			r.Get("/", ingredients.HandleListIngredients)
			r.Get("/{ingredientID}/", ingredients.HandleGetIngredient)
		})

		r.Route("/recipes", func(r chi.Router) {
			r.Group(func(r chi.Router) {
				r.Use(middleware.AuthenticateOptional)
				r.Get("/", recipes.HandleListRecipes)
				r.Get("/{recipeID}/", recipes.HandleGetRecipe)
				r.Get("/{recipeID}/get-link/", recipes.HandleGetLink)
			})

			r.Group(func(r chi.Router) {
				r.Use(middleware.Authenticate)
				r.Post("/", recipes.HandleCreateRecipe)
				r.Patch("/{recipeID}/", recipes.HandleUpdateRecipe)
				r.Delete("/{recipeID}/", recipes.HandleDeleteRecipe)
				r.Get("/download_shopping_cart/", recipes.HandleDownloadShoppingCart)
				r.Post("/{recipeID}/favorite/", recipes.HandleFavorite)
				r.Delete("/{recipeID}/favorite/", recipes.HandleUnfavorite)
				r.Post("/{recipeID}/shopping_cart/", recipes.HandleAddToCart)
				r.Delete("/{recipeID}/shopping_cart/", recipes.HandleRemoveFromCart)
			})
		})
	})
}

// Start godoc
//
//	@title						Foodgram API
//	@version					1.0
//	@description				API server for the Foodgram recipe platform.
//
//	@securityDefinitions.apikey	AccessToken
//	@in							header
//	@name						Authorization
//
//	@host						localhost:8080
//	@BasePath					/api
func Start(env *env.Env) error {
	router := chi.NewRouter()
	router.Use(middleware.AddRequestID)
	router.Use(middleware.LogRequest(env.Logger))
	router.Use(middleware.InjectEnv(env))
	router.Use(middleware.AddCors)

	addRoutes(router)
	addMedia(router, env.Config)
	addDocs(router, fmt.Sprintf("0.0.0.0:%d", serverPort))
	http.Handle("/", router)

	env.Logger.Info(fmt.Sprintf("Listening at 0.0.0.0:%d", serverPort))
	env.Logger.Info(fmt.Sprintf("Swagger UI available at http://0.0.0.0:%d/api/swagger/index.html", serverPort))
	return http.ListenAndServe(fmt.Sprintf(":%d", serverPort), nil)
}
