// Package docs registers the OpenAPI document served at
// /api/swagger/doc.json. Regenerate with `swag init` after changing
// handler annotations.
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "contact": {},
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/api/auth/token/login/": {
            "post": {
                "consumes": ["application/json"],
                "tags": ["Auth"],
                "summary": "Issue an access token.",
                "responses": {
                    "200": {"description": "OK"},
                    "401": {"description": "Unauthorized"}
                }
            }
        },
        "/api/auth/token/logout/": {
            "post": {
                "tags": ["Auth"],
                "summary": "Discard the access token cookie.",
                "responses": {
                    "204": {"description": "No Content"}
                }
            }
        },
        "/api/ingredients/": {
            "get": {
                "tags": ["Ingredients"],
                "summary": "List catalog ingredients, optionally filtered by name prefix.",
                "parameters": [
                    {"type": "string", "name": "name", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK"}
                }
            }
        },
        "/api/ingredients/{ingredientID}/": {
            "get": {
                "tags": ["Ingredients"],
                "summary": "Get a single catalog ingredient.",
                "parameters": [
                    {"type": "integer", "name": "ingredientID", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK"},
                    "404": {"description": "Not Found"}
                }
            }
        },
        "/api/ping": {
            "get": {
                "tags": ["Ping"],
                "summary": "Ping endpoint.",
                "responses": {
                    "200": {"description": "OK"}
                }
            }
        },
        "/api/recipes/": {
            "get": {
                "tags": ["Recipes"],
                "summary": "List recipes, newest first.",
                "parameters": [
                    {"type": "integer", "name": "page", "in": "query"},
                    {"type": "integer", "name": "limit", "in": "query"},
                    {"type": "integer", "name": "author", "in": "query"},
                    {"type": "string", "name": "is_favorited", "in": "query"},
                    {"type": "string", "name": "is_in_shopping_cart", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK"}
                }
            },
            "post": {
                "security": [{"AccessToken": []}],
                "consumes": ["application/json"],
                "tags": ["Recipes"],
                "summary": "Create a recipe.",
                "responses": {
                    "201": {"description": "Created"},
                    "400": {"description": "Bad Request"}
                }
            }
        },
        "/api/recipes/download_shopping_cart/": {
            "get": {
                "security": [{"AccessToken": []}],
                "produces": ["text/plain"],
                "tags": ["ShoppingCart"],
                "summary": "Download the aggregated shopping list.",
                "responses": {
                    "200": {"description": "OK"}
                }
            }
        },
        "/api/recipes/{recipeID}/": {
            "get": {
                "tags": ["Recipes"],
                "summary": "Get a recipe.",
                "responses": {
                    "200": {"description": "OK"},
                    "404": {"description": "Not Found"}
                }
            },
            "delete": {
                "security": [{"AccessToken": []}],
                "tags": ["Recipes"],
                "summary": "Delete a recipe. Author only.",
                "responses": {
                    "204": {"description": "No Content"},
                    "403": {"description": "Forbidden"},
                    "404": {"description": "Not Found"}
                }
            },
            "patch": {
                "security": [{"AccessToken": []}],
                "consumes": ["application/json"],
                "tags": ["Recipes"],
                "summary": "Update a recipe. Author only.",
                "responses": {
                    "200": {"description": "OK"},
                    "400": {"description": "Bad Request"},
                    "403": {"description": "Forbidden"},
                    "404": {"description": "Not Found"}
                }
            }
        },
        "/api/recipes/{recipeID}/favorite/": {
            "post": {
                "security": [{"AccessToken": []}],
                "tags": ["Favorites"],
                "summary": "Add a recipe to favorites.",
                "responses": {
                    "201": {"description": "Created"},
                    "400": {"description": "Bad Request"},
                    "404": {"description": "Not Found"}
                }
            },
            "delete": {
                "security": [{"AccessToken": []}],
                "tags": ["Favorites"],
                "summary": "Remove a recipe from favorites.",
                "responses": {
                    "204": {"description": "No Content"},
                    "400": {"description": "Bad Request"},
                    "404": {"description": "Not Found"}
                }
            }
        },
        "/api/recipes/{recipeID}/get-link/": {
            "get": {
                "tags": ["Recipes"],
                "summary": "Get a short link for a recipe.",
                "responses": {
                    "200": {"description": "OK"},
                    "404": {"description": "Not Found"}
                }
            }
        },
        "/api/recipes/{recipeID}/shopping_cart/": {
            "post": {
                "security": [{"AccessToken": []}],
                "tags": ["ShoppingCart"],
                "summary": "Add a recipe to the shopping cart.",
                "responses": {
                    "201": {"description": "Created"},
                    "400": {"description": "Bad Request"},
                    "404": {"description": "Not Found"}
                }
            },
            "delete": {
                "security": [{"AccessToken": []}],
                "tags": ["ShoppingCart"],
                "summary": "Remove a recipe from the shopping cart.",
                "responses": {
                    "204": {"description": "No Content"},
                    "400": {"description": "Bad Request"},
                    "404": {"description": "Not Found"}
                }
            }
        },
        "/api/users/": {
            "get": {
                "tags": ["Users"],
                "summary": "List users.",
                "responses": {
                    "200": {"description": "OK"}
                }
            },
            "post": {
                "consumes": ["application/json"],
                "tags": ["Users"],
                "summary": "Sign up.",
                "responses": {
                    "201": {"description": "Created"},
                    "409": {"description": "Conflict"},
                    "422": {"description": "Unprocessable Entity"}
                }
            }
        },
        "/api/users/me/": {
            "get": {
                "security": [{"AccessToken": []}],
                "tags": ["Users"],
                "summary": "Get the authenticated user.",
                "responses": {
                    "200": {"description": "OK"}
                }
            }
        },
        "/api/users/me/avatar/": {
            "put": {
                "security": [{"AccessToken": []}],
                "consumes": ["application/json"],
                "tags": ["Users"],
                "summary": "Set the authenticated user's avatar.",
                "responses": {
                    "200": {"description": "OK"},
                    "400": {"description": "Bad Request"}
                }
            },
            "delete": {
                "security": [{"AccessToken": []}],
                "tags": ["Users"],
                "summary": "Remove the authenticated user's avatar.",
                "responses": {
                    "204": {"description": "No Content"}
                }
            }
        },
        "/api/users/set_password/": {
            "post": {
                "security": [{"AccessToken": []}],
                "consumes": ["application/json"],
                "tags": ["Users"],
                "summary": "Change the authenticated user's password.",
                "responses": {
                    "204": {"description": "No Content"},
                    "401": {"description": "Unauthorized"},
                    "422": {"description": "Unprocessable Entity"}
                }
            }
        },
        "/api/users/subscriptions/": {
            "get": {
                "security": [{"AccessToken": []}],
                "tags": ["Subscriptions"],
                "summary": "List followed authors with their recipes.",
                "parameters": [
                    {"type": "integer", "name": "recipes_limit", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK"}
                }
            }
        },
        "/api/users/{userID}/": {
            "get": {
                "tags": ["Users"],
                "summary": "Get a user profile.",
                "responses": {
                    "200": {"description": "OK"},
                    "404": {"description": "Not Found"}
                }
            }
        },
        "/api/users/{userID}/subscribe/": {
            "post": {
                "security": [{"AccessToken": []}],
                "tags": ["Subscriptions"],
                "summary": "Follow an author.",
                "responses": {
                    "201": {"description": "Created"},
                    "400": {"description": "Bad Request"},
                    "404": {"description": "Not Found"}
                }
            },
            "delete": {
                "security": [{"AccessToken": []}],
                "tags": ["Subscriptions"],
                "summary": "Unfollow an author.",
                "responses": {
                    "204": {"description": "No Content"},
                    "400": {"description": "Bad Request"},
                    "404": {"description": "Not Found"}
                }
            }
        },
        "/s/{shortLink}": {
            "get": {
                "tags": ["Recipes"],
                "summary": "Redirect a short link to its recipe page.",
                "responses": {
                    "302": {"description": "Found"},
                    "404": {"description": "Not Found"}
                }
            }
        }
    },
    "securityDefinitions": {
        "AccessToken": {
            "type": "apiKey",
            "name": "Authorization",
            "in": "header"
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "localhost:8080",
	BasePath:         "/api",
	Schemes:          []string{},
	Title:            "Foodgram API",
	Description:      "API server for the Foodgram recipe platform.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
