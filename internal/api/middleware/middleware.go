// Package middleware contains middleware functions for the API
package middleware

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/httplog/v3"
	"github.com/golang-jwt/jwt/v5"
	"github.com/oklog/ulid/v2"

	apiError "github.com/m-orlov/foodgram/internal/api/error"
	"github.com/m-orlov/foodgram/internal/api/requestid"
	"github.com/m-orlov/foodgram/internal/api/token"
	"github.com/m-orlov/foodgram/internal/config"
	"github.com/m-orlov/foodgram/internal/env"
	fgJwt "github.com/m-orlov/foodgram/internal/jwt"
	"github.com/m-orlov/foodgram/internal/log"
)

// InjectEnv injects an environment struct into the request context.
func InjectEnv(environment *env.Env) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			next.ServeHTTP(w, r.WithContext(env.WithCtx(r.Context(), environment)))
		})
	}
}

func LogRequest(logger *slog.Logger) func(http.Handler) http.Handler {
	return httplog.RequestLogger(logger, &httplog.Options{
		LogExtraAttrs: func(r *http.Request, reqBody string, respStatus int) []slog.Attr {
			if id := requestid.ExtractRequestID(r.Context()); id != 0 {
				return []slog.Attr{slog.Uint64(log.AttrRequestID, id)}
			}
			return []slog.Attr{slog.String(log.AttrRequestID, "N/A")}
		},
	})
}

// AddRequestID adds a request ID to the request context.
func AddRequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := ulid.Now()
		r = r.WithContext(log.WithRequestID(r.Context(), requestID))
		r = r.WithContext(requestid.InjectRequestID(r.Context(), requestID))
		next.ServeHTTP(w, r)
	})
}

// AddCors adds the necessary CORS headers to the response.
func AddCors(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		e := env.EnvFromCtx(r.Context())
		origin := r.Header.Get("Origin")

		var allowedOrigin string
		if e.Config.Env == config.EnvProd {
			allowedOrigin = e.Config.HostOrigin
		} else if origin != "" {
			// In dev mode, allow all origins
			allowedOrigin = origin
		}
		if allowedOrigin == "" {
			allowedOrigin = e.Config.HostOrigin
		}

		w.Header().Set("Access-Control-Allow-Origin", allowedOrigin)
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS, PATCH")
		w.Header().Set("Access-Control-Max-Age", "86400")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		w.Header().Set("Access-Control-Allow-Credentials", "true")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// Authenticate validates the access token and stores the user id in
// the request context. Requests without a valid token are rejected.
func Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		e := env.EnvFromCtx(r.Context())
		requestID := requestid.String(r.Context())

		rawToken := token.FromRequest(r, e.Config)
		if rawToken == "" {
			e.Logger.DebugContext(r.Context(), "no access token on request")
			_ = apiError.EncodeError(w, apiError.InvalidAccessToken, "invalid access token", requestID)
			return
		}

		userID, err := validateAccessToken(rawToken, e.Config)
		if errors.Is(err, jwt.ErrTokenExpired) {
			e.Logger.ErrorContext(r.Context(), "access token expired", slog.Any("error", err))
			_ = apiError.EncodeError(w, apiError.ExpiredAccessToken, "access token expired", requestID)
			return
		} else if err != nil {
			e.Logger.ErrorContext(r.Context(), "invalid access token", slog.Any("error", err))
			_ = apiError.EncodeError(w, apiError.InvalidAccessToken, "invalid access token", requestID)
			return
		}

		r = r.WithContext(log.WithUserID(r.Context(), userID))
		r = r.WithContext(token.UserIDWithCtx(r.Context(), userID))
		next.ServeHTTP(w, r)
	})
}

// AuthenticateOptional stores the user id in the context when a valid
// access token is present and passes the request through anonymously
// otherwise. Used on read endpoints that render viewer-relative flags.
func AuthenticateOptional(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		e := env.EnvFromCtx(r.Context())

		rawToken := token.FromRequest(r, e.Config)
		if rawToken == "" {
			next.ServeHTTP(w, r)
			return
		}

		userID, err := validateAccessToken(rawToken, e.Config)
		if err != nil {
			e.Logger.DebugContext(r.Context(), "ignoring invalid access token", slog.Any("error", err))
			next.ServeHTTP(w, r)
			return
		}

		r = r.WithContext(log.WithUserID(r.Context(), userID))
		r = r.WithContext(token.UserIDWithCtx(r.Context(), userID))
		next.ServeHTTP(w, r)
	})
}

func validateAccessToken(rawToken string, conf config.Config) (int64, error) {
	if conf.AppSecret.Value == nil {
		return 0, errors.New("app secret not loaded")
	}
	version := conf.AppSecret.Version
	if version == "" {
		version = fgJwt.DefaultKID
	}

	accessJwt, err := fgJwt.ValidateJWT(rawToken, version, []byte(*conf.AppSecret.Value))
	if err != nil {
		return 0, err
	}

	sub, err := accessJwt.Claims.GetSubject()
	if err != nil {
		return 0, err
	}
	return strconv.ParseInt(sub, 10, 64)
}
