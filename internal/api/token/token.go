// Package token contains utilities for http access tokens.
package token

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/m-orlov/foodgram/internal/config"
	"github.com/m-orlov/foodgram/internal/jwt"
)

const (
	accessTokenLifetime = 60 * 60 * 24 // 24 hours

	// AuthorizationHeader carries a bearer token as an alternative to
	// the access cookie.
	AuthorizationHeader = "Authorization"
	bearerPrefix        = "Bearer "
)

var ErrNoUserID = errors.New("no user id in context")

type userIDKeyType struct{}

var userIDKey userIDKeyType

// UserIDWithCtx stores the authenticated user's id in the context.
func UserIDWithCtx(ctx context.Context, userID int64) context.Context {
	return context.WithValue(ctx, userIDKey, userID)
}

// UserIDFromCtx extracts the authenticated user's id from the context.
func UserIDFromCtx(ctx context.Context) (int64, error) {
	if v, ok := ctx.Value(userIDKey).(int64); ok {
		return v, nil
	}
	return 0, ErrNoUserID
}

// ViewerFromCtx reports the acting user, or ok=false when the request
// is anonymous. Handlers that render viewer-relative fields take this
// explicitly instead of assuming an authenticated caller.
func ViewerFromCtx(ctx context.Context) (int64, bool) {
	v, ok := ctx.Value(userIDKey).(int64)
	return v, ok
}

func AccessTokenName(conf config.Config) string {
	if conf.Env == config.EnvProd {
		return "__Host-foodgram-access"
	}
	return "access"
}

// NewAccessToken generates a signed access token for the user.
func NewAccessToken(params jwt.JWTParams, conf config.Config) (string, error) {
	if conf.AppSecret.Value == nil {
		return "", errors.New("app secret not loaded")
	}
	version := conf.AppSecret.Version
	if version == "" {
		version = jwt.DefaultKID
	}
	return jwt.GenerateJWT(params, []byte(*conf.AppSecret.Value), version)
}

func NewAccessTokenCookie(token string, conf config.Config) *http.Cookie {
	return &http.Cookie{
		Name:     AccessTokenName(conf),
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		MaxAge:   accessTokenLifetime,
		SameSite: http.SameSiteLaxMode,
		Secure:   conf.Env == config.EnvProd,
	}
}

// ExpiredAccessTokenCookie returns a cookie that clears the access
// token on the client.
func ExpiredAccessTokenCookie(conf config.Config) *http.Cookie {
	return &http.Cookie{
		Name:     AccessTokenName(conf),
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		MaxAge:   -1,
		SameSite: http.SameSiteLaxMode,
		Secure:   conf.Env == config.EnvProd,
	}
}

// FromRequest extracts the raw access token from the Authorization
// header or, failing that, the access cookie. Returns an empty string
// when neither is present.
func FromRequest(r *http.Request, conf config.Config) string {
	if h := r.Header.Get(AuthorizationHeader); strings.HasPrefix(h, bearerPrefix) {
		return strings.TrimPrefix(h, bearerPrefix)
	}
	if cookie, err := r.Cookie(AccessTokenName(conf)); err == nil {
		return cookie.Value
	}
	return ""
}
