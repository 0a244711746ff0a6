// Package users contains handlers for the user resource.
package users

import (
	"crypto/subtle"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	apiError "github.com/m-orlov/foodgram/internal/api/error"
	"github.com/m-orlov/foodgram/internal/api/requestid"
	"github.com/m-orlov/foodgram/internal/api/token"
	"github.com/m-orlov/foodgram/internal/argon2id"
	"github.com/m-orlov/foodgram/internal/database"
	"github.com/m-orlov/foodgram/internal/env"
	"github.com/m-orlov/foodgram/internal/filestore"
	"github.com/m-orlov/foodgram/internal/image"
	mJson "github.com/m-orlov/foodgram/internal/json"
	"github.com/m-orlov/foodgram/internal/jwt"
	"github.com/m-orlov/foodgram/internal/pagination"
	"github.com/m-orlov/foodgram/internal/password"
	"github.com/m-orlov/foodgram/internal/view"
)

func writeJSON(w http.ResponseWriter, status int, body any) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	return json.NewEncoder(w).Encode(body)
}

// parseRecipesLimit reads the recipes_limit query parameter. A missing
// or unparsable value means no limit.
func parseRecipesLimit(query url.Values) pgtype.Int4 {
	raw := query.Get("recipes_limit")
	if raw == "" {
		return pgtype.Int4{}
	}
	limit, err := strconv.ParseInt(raw, 10, 32)
	if err != nil || limit < 0 {
		return pgtype.Int4{}
	}
	return pgtype.Int4{Int32: int32(limit), Valid: true}
}

// HandleCreateUser godoc
//
//	@Summary	Register a user.
//	@Tags		Users
//
//	@Accept		json
//	@Param		request	body	CreateUserRequest	true	"Create User Request"
//
//	@Success	201	{object}	CreateUserResponse
//	@Failure	409	{object}	apiError.Error	"Email or username taken"
//	@Failure	422	{object}	apiError.Error	"Weak password"
//	@Router		/api/users/ [POST]
func HandleCreateUser(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	env := env.EnvFromCtx(ctx)
	requestID := requestid.String(ctx)

	// Decode JSON
	var request CreateUserRequest
	env.Logger.DebugContext(ctx, "Reading request body")
	defer func() { _ = r.Body.Close() }()
	if err := mJson.DecodeStrict(&request, r.Body); err != nil {
		env.Logger.ErrorContext(ctx, "Failed to decode request body", slog.Any("error", err))
		_ = apiError.EncodeError(w, apiError.BadRequest, "invalid request body", requestID)
		return
	}
	validate := validator.New(validator.WithRequiredStructEnabled())
	if err := validate.Struct(request); err != nil {
		env.Logger.ErrorContext(ctx, "Failed to validate request body", slog.Any("error", err))
		_ = apiError.EncodeError(w, apiError.ValidationFailed, "invalid request body", requestID)
		return
	}

	// Ensure password strength
	env.Logger.DebugContext(ctx, "Validating password")
	if err := password.ValidatePassword(request.Password); err != nil {
		env.Logger.ErrorContext(ctx, "Failed to validate password", slog.Any("error", err))
		_ = apiError.EncodeError(w, apiError.WeakPassword, err.Error(), requestID) // OK to share the error with client.
		return
	}

	// Hash password
	env.Logger.DebugContext(ctx, "Hashing password")
	hash, err := argon2id.EncodeHash(request.Password, argon2id.DefaultParams)
	if err != nil {
		env.Logger.ErrorContext(ctx, "Failed to hash password", slog.Any("error", err))
		_ = apiError.EncodeInternalError(w, requestID)
		return
	}

	// Create user
	env.Logger.DebugContext(ctx, "Creating user")
	userID, err := env.Database.CreateUser(ctx, database.CreateUserParams{
		Email:        request.Email,
		Username:     request.Username,
		FirstName:    request.FirstName,
		LastName:     request.LastName,
		PasswordHash: hash,
	})
	if constraint := database.UniqueConstraint(err); constraint != "" {
		switch constraint {
		case "users_email_unique":
			env.Logger.ErrorContext(ctx, "User with email already exists", slog.Any("error", err))
			_ = apiError.EncodeError(w, apiError.EmailConflict, "email already in use", requestID)
		default:
			env.Logger.ErrorContext(ctx, "User with username already exists", slog.Any("error", err))
			_ = apiError.EncodeError(w, apiError.UsernameConflict, "username already in use", requestID)
		}
		return
	} else if err != nil {
		env.Logger.ErrorContext(ctx, "Failed to create user", slog.Any("error", err))
		_ = apiError.EncodeInternalError(w, requestID)
		return
	}

	// Write response
	env.Logger.DebugContext(ctx, "Writing response")
	if err := writeJSON(w, http.StatusCreated, CreateUserResponse{
		ID:        userID,
		Email:     request.Email,
		Username:  request.Username,
		FirstName: request.FirstName,
		LastName:  request.LastName,
	}); err != nil {
		env.Logger.ErrorContext(ctx, "Failed to write response", slog.Any("error", err))
	}
}

// HandleLogin godoc
//
//	@Summary	Exchange credentials for an access token.
//	@Tags		Auth
//
//	@Accept		json
//	@Param		request	body	UserLoginRequest	true	"Login Request"
//
//	@Success	200	{object}	UserLoginResponse
//	@Failure	401	{object}	apiError.Error	"Unauthorized"
//	@Router		/api/auth/token/login/ [POST]
func HandleLogin(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	env := env.EnvFromCtx(ctx)
	requestID := requestid.String(ctx)

	// Decode JSON
	var request UserLoginRequest
	env.Logger.DebugContext(ctx, "Reading request body")
	defer func() { _ = r.Body.Close() }()
	if err := mJson.DecodeStrict(&request, r.Body); err != nil {
		env.Logger.ErrorContext(ctx, "Failed to decode request body", slog.Any("error", err))
		_ = apiError.EncodeError(w, apiError.BadRequest, "invalid request body", requestID)
		return
	}
	validate := validator.New(validator.WithRequiredStructEnabled())
	if err := validate.Struct(request); err != nil {
		env.Logger.ErrorContext(ctx, "Failed to validate request body", slog.Any("error", err))
		_ = apiError.EncodeError(w, apiError.BadRequest, "invalid request body", requestID)
		return
	}

	// Retrieve user information
	env.Logger.DebugContext(ctx, "Retrieving user information")
	user, err := env.Database.GetUserByEmail(ctx, request.Email)
	if errors.Is(err, pgx.ErrNoRows) {
		env.Logger.ErrorContext(ctx, "User with email does not exist", slog.Any("error", err))
		_ = apiError.EncodeError(w, apiError.InvalidCredentials, "email or password is incorrect", requestID)
		return
	} else if err != nil {
		env.Logger.ErrorContext(ctx, "Failed to retrieve user information", slog.Any("error", err))
		_ = apiError.EncodeInternalError(w, requestID)
		return
	}

	// Compare passwords
	env.Logger.DebugContext(ctx, "Comparing passwords")
	argonParams, argonSalt, trueHash, err := argon2id.DecodeHash(user.PasswordHash)
	if err != nil {
		env.Logger.ErrorContext(ctx, "Failed to decode password hash", slog.Any("error", err))
		_ = apiError.EncodeInternalError(w, requestID)
		return
	}
	givenHash := argon2id.HashWithSalt(request.Password, *argonParams, argonSalt)
	if subtle.ConstantTimeCompare(givenHash, trueHash) == 0 {
		env.Logger.ErrorContext(ctx, "Given password is incorrect")
		_ = apiError.EncodeError(w, apiError.InvalidCredentials, "email or password is incorrect", requestID)
		return
	}

	// Create access token
	env.Logger.DebugContext(ctx, "Generating access token")
	accessToken, err := token.NewAccessToken(jwt.JWTParams{
		UserID: strconv.FormatInt(user.ID, 10),
	}, env.Config)
	if err != nil {
		env.Logger.ErrorContext(ctx, "Failed to create access token", slog.Any("error", err))
		_ = apiError.EncodeInternalError(w, requestID)
		return
	}
	http.SetCookie(w, token.NewAccessTokenCookie(accessToken, env.Config))

	// Write response
	env.Logger.DebugContext(ctx, "Writing response")
	if err := writeJSON(w, http.StatusOK, UserLoginResponse{AuthToken: accessToken}); err != nil {
		env.Logger.ErrorContext(ctx, "Failed to write response", slog.Any("error", err))
	}
}

// HandleLogout godoc
//
//	@Summary	Discard the access cookie.
//	@Tags		Auth
//
//	@Success	204
//	@Security	AccessToken
//	@Router		/api/auth/token/logout/ [POST]
func HandleLogout(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	env := env.EnvFromCtx(ctx)

	http.SetCookie(w, token.ExpiredAccessTokenCookie(env.Config))
	w.WriteHeader(http.StatusNoContent)
}

// HandleSetPassword godoc
//
//	@Summary	Change the current user's password.
//	@Tags		Users
//
//	@Accept		json
//	@Param		request	body	SetPasswordRequest	true	"Set Password Request"
//
//	@Success	204
//	@Failure	401	{object}	apiError.Error	"Wrong current password"
//	@Failure	422	{object}	apiError.Error	"Weak password"
//	@Security	AccessToken
//	@Router		/api/users/set_password/ [POST]
func HandleSetPassword(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	env := env.EnvFromCtx(ctx)
	requestID := requestid.String(ctx)
	userID, err := token.UserIDFromCtx(ctx)
	if err != nil {
		env.Logger.ErrorContext(ctx, "Failed to extract user id from context", slog.Any("error", err))
		_ = apiError.EncodeInternalError(w, requestID)
		return
	}

	// Decode JSON
	var request SetPasswordRequest
	env.Logger.DebugContext(ctx, "Reading request body")
	defer func() { _ = r.Body.Close() }()
	if err := mJson.DecodeStrict(&request, r.Body); err != nil {
		env.Logger.ErrorContext(ctx, "Failed to decode request body", slog.Any("error", err))
		_ = apiError.EncodeError(w, apiError.BadRequest, "invalid request body", requestID)
		return
	}
	validate := validator.New(validator.WithRequiredStructEnabled())
	if err := validate.Struct(request); err != nil {
		env.Logger.ErrorContext(ctx, "Failed to validate request body", slog.Any("error", err))
		_ = apiError.EncodeError(w, apiError.ValidationFailed, "invalid request body", requestID)
		return
	}

	// Verify current password
	env.Logger.DebugContext(ctx, "Verifying current password")
	user, err := env.Database.GetUserByID(ctx, userID)
	if err != nil {
		env.Logger.ErrorContext(ctx, "Failed to retrieve user", slog.Any("error", err))
		_ = apiError.EncodeInternalError(w, requestID)
		return
	}
	argonParams, argonSalt, trueHash, err := argon2id.DecodeHash(user.PasswordHash)
	if err != nil {
		env.Logger.ErrorContext(ctx, "Failed to decode password hash", slog.Any("error", err))
		_ = apiError.EncodeInternalError(w, requestID)
		return
	}
	givenHash := argon2id.HashWithSalt(request.CurrentPassword, *argonParams, argonSalt)
	if subtle.ConstantTimeCompare(givenHash, trueHash) == 0 {
		env.Logger.ErrorContext(ctx, "Current password is incorrect")
		_ = apiError.EncodeError(w, apiError.InvalidCredentials, "current password is incorrect", requestID)
		return
	}

	// Ensure new password strength
	env.Logger.DebugContext(ctx, "Validating new password")
	if err := password.ValidatePassword(request.NewPassword); err != nil {
		env.Logger.ErrorContext(ctx, "Failed to validate password", slog.Any("error", err))
		_ = apiError.EncodeError(w, apiError.WeakPassword, err.Error(), requestID)
		return
	}

	// Update password
	env.Logger.DebugContext(ctx, "Updating password")
	hash, err := argon2id.EncodeHash(request.NewPassword, argon2id.DefaultParams)
	if err != nil {
		env.Logger.ErrorContext(ctx, "Failed to hash password", slog.Any("error", err))
		_ = apiError.EncodeInternalError(w, requestID)
		return
	}
	if err := env.Database.UpdateUserPassword(ctx, database.UpdateUserPasswordParams{
		ID:           userID,
		PasswordHash: hash,
	}); err != nil {
		env.Logger.ErrorContext(ctx, "Failed to update password", slog.Any("error", err))
		_ = apiError.EncodeInternalError(w, requestID)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// HandleListUsers godoc
//
//	@Summary	List users.
//	@Tags		Users
//
//	@Param		page	query		int	false	"Page number"
//	@Param		limit	query		int	false	"Page size"
//	@Success	200		{object}	pagination.Page[view.User]
//	@Router		/api/users/ [GET]
func HandleListUsers(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	env := env.EnvFromCtx(ctx)
	requestID := requestid.String(ctx)
	viewerID, viewerOK := token.ViewerFromCtx(ctx)

	params, err := pagination.ParseParams(r.URL.Query(), env.Config.Pagination.PageSize)
	if err != nil {
		env.Logger.ErrorContext(ctx, "Failed to parse pagination params", slog.Any("error", err))
		_ = apiError.EncodeError(w, apiError.BadRequest, err.Error(), requestID)
		return
	}

	env.Logger.DebugContext(ctx, "Listing users")
	dbUsers, err := env.Database.ListUsers(ctx, database.ListUsersParams{
		Limit:  int32(params.Limit),
		Offset: int32(params.Offset()),
	})
	if err != nil {
		env.Logger.ErrorContext(ctx, "Failed to list users", slog.Any("error", err))
		_ = apiError.EncodeInternalError(w, requestID)
		return
	}
	count, err := env.Database.CountUsers(ctx)
	if err != nil {
		env.Logger.ErrorContext(ctx, "Failed to count users", slog.Any("error", err))
		_ = apiError.EncodeInternalError(w, requestID)
		return
	}

	views, err := view.BuildUsers(ctx, env.Database, view.Viewer{ID: viewerID, Authed: viewerOK},
		env.Config.HostOrigin, dbUsers)
	if err != nil {
		env.Logger.ErrorContext(ctx, "Failed to build user views", slog.Any("error", err))
		_ = apiError.EncodeInternalError(w, requestID)
		return
	}

	if err := writeJSON(w, http.StatusOK, pagination.NewPage(r, count, params, views)); err != nil {
		env.Logger.ErrorContext(ctx, "Failed to write response", slog.Any("error", err))
	}
}

// HandleGetUser godoc
//
//	@Summary	Get a user profile.
//	@Tags		Users
//
//	@Param		userID	path		int	true	"User ID"
//	@Success	200		{object}	view.User
//	@Failure	404		{object}	apiError.Error	"User not found"
//	@Router		/api/users/{userID}/ [GET]
func HandleGetUser(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	env := env.EnvFromCtx(ctx)
	requestID := requestid.String(ctx)
	viewerID, viewerOK := token.ViewerFromCtx(ctx)

	// Read request
	env.Logger.DebugContext(ctx, "Reading request")
	userIDQ := userID(chi.URLParam(r, "userID"))
	if err := userIDQ.Validate(); err != nil {
		env.Logger.ErrorContext(ctx, "Failed to validate user id", slog.Any("error", err))
		_ = apiError.EncodeError(w, apiError.NotFound, "user not found", requestID)
		return
	}
	id, _ := strconv.ParseInt(string(userIDQ), 10, 64)

	env.Logger.DebugContext(ctx, "Retrieving user")
	user, err := env.Database.GetUserByID(ctx, id)
	if errors.Is(err, pgx.ErrNoRows) {
		env.Logger.ErrorContext(ctx, "User does not exist", slog.Any("error", err))
		_ = apiError.EncodeError(w, apiError.NotFound, "user not found", requestID)
		return
	} else if err != nil {
		env.Logger.ErrorContext(ctx, "Failed to retrieve user", slog.Any("error", err))
		_ = apiError.EncodeInternalError(w, requestID)
		return
	}

	views, err := view.BuildUsers(ctx, env.Database, view.Viewer{ID: viewerID, Authed: viewerOK},
		env.Config.HostOrigin, []database.User{user})
	if err != nil {
		env.Logger.ErrorContext(ctx, "Failed to build user view", slog.Any("error", err))
		_ = apiError.EncodeInternalError(w, requestID)
		return
	}

	if err := writeJSON(w, http.StatusOK, views[0]); err != nil {
		env.Logger.ErrorContext(ctx, "Failed to write response", slog.Any("error", err))
	}
}

// HandleGetMe godoc
//
//	@Summary	Get the current user's profile.
//	@Tags		Users
//
//	@Success	200	{object}	view.User
//	@Security	AccessToken
//	@Router		/api/users/me/ [GET]
func HandleGetMe(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	env := env.EnvFromCtx(ctx)
	requestID := requestid.String(ctx)
	userID, err := token.UserIDFromCtx(ctx)
	if err != nil {
		env.Logger.ErrorContext(ctx, "Failed to extract user id from context", slog.Any("error", err))
		_ = apiError.EncodeInternalError(w, requestID)
		return
	}

	env.Logger.DebugContext(ctx, "Retrieving user")
	user, err := env.Database.GetUserByID(ctx, userID)
	if err != nil {
		env.Logger.ErrorContext(ctx, "Failed to retrieve user", slog.Any("error", err))
		_ = apiError.EncodeInternalError(w, requestID)
		return
	}

	if err := writeJSON(w, http.StatusOK, view.NewUser(user, false, env.Config.HostOrigin)); err != nil {
		env.Logger.ErrorContext(ctx, "Failed to write response", slog.Any("error", err))
	}
}

// HandleSetAvatar godoc
//
//	@Summary	Set the current user's avatar.
//	@Tags		Users
//
//	@Accept		json
//	@Param		request	body	SetAvatarRequest	true	"Embedded avatar image"
//
//	@Success	200	{object}	SetAvatarResponse
//	@Failure	400	{object}	apiError.Error	"Invalid image payload"
//	@Security	AccessToken
//	@Router		/api/users/me/avatar/ [PUT]
func HandleSetAvatar(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	env := env.EnvFromCtx(ctx)
	requestID := requestid.String(ctx)
	userID, err := token.UserIDFromCtx(ctx)
	if err != nil {
		env.Logger.ErrorContext(ctx, "Failed to extract user id from context", slog.Any("error", err))
		_ = apiError.EncodeInternalError(w, requestID)
		return
	}

	// Decode JSON
	var request SetAvatarRequest
	env.Logger.DebugContext(ctx, "Reading request body")
	defer func() { _ = r.Body.Close() }()
	if err := mJson.DecodeStrict(&request, r.Body); err != nil {
		env.Logger.ErrorContext(ctx, "Failed to decode request body", slog.Any("error", err))
		_ = apiError.EncodeError(w, apiError.BadRequest, "invalid request body", requestID)
		return
	}
	if request.Avatar == "" {
		_ = apiError.EncodeFieldErrors(w, map[string][]string{
			"avatar": {"field is required"},
		}, requestID)
		return
	}

	// Decode image
	env.Logger.DebugContext(ctx, "Decoding avatar image")
	decoded, err := image.ParseDataURL(request.Avatar)
	if err != nil {
		env.Logger.ErrorContext(ctx, "Failed to decode avatar image", slog.Any("error", err))
		_ = apiError.EncodeFieldErrors(w, map[string][]string{
			"avatar": {"expected an embedded image"},
		}, requestID)
		return
	}

	// Store image
	env.Logger.DebugContext(ctx, "Storing avatar image")
	urlPath, err := env.Files.WriteAvatarImage(ctx, decoded.Suffix, decoded.Data)
	if err != nil {
		env.Logger.ErrorContext(ctx, "Failed to store avatar image", slog.Any("error", err))
		_ = apiError.EncodeInternalError(w, requestID)
		return
	}

	// Swap avatar reference
	env.Logger.DebugContext(ctx, "Updating avatar reference")
	user, err := env.Database.GetUserByID(ctx, userID)
	if err != nil {
		env.Logger.ErrorContext(ctx, "Failed to retrieve user", slog.Any("error", err))
		_ = apiError.EncodeInternalError(w, requestID)
		return
	}
	if err := env.Database.UpdateUserAvatar(ctx, database.UpdateUserAvatarParams{
		ID:        userID,
		AvatarURL: pgtype.Text{String: urlPath, Valid: true},
	}); err != nil {
		env.Logger.ErrorContext(ctx, "Failed to update avatar", slog.Any("error", err))
		_ = apiError.EncodeInternalError(w, requestID)
		return
	}
	if user.AvatarURL.Valid {
		if err := env.Files.DeleteURLPath(ctx, user.AvatarURL.String); err != nil {
			env.Logger.WarnContext(ctx, "Failed to delete previous avatar", slog.Any("error", err))
		}
	}

	if err := writeJSON(w, http.StatusOK, SetAvatarResponse{
		Avatar: filestore.FileURL(env.Config.HostOrigin, urlPath),
	}); err != nil {
		env.Logger.ErrorContext(ctx, "Failed to write response", slog.Any("error", err))
	}
}

// HandleDeleteAvatar godoc
//
//	@Summary	Remove the current user's avatar.
//	@Tags		Users
//
//	@Success	204
//	@Security	AccessToken
//	@Router		/api/users/me/avatar/ [DELETE]
func HandleDeleteAvatar(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	env := env.EnvFromCtx(ctx)
	requestID := requestid.String(ctx)
	userID, err := token.UserIDFromCtx(ctx)
	if err != nil {
		env.Logger.ErrorContext(ctx, "Failed to extract user id from context", slog.Any("error", err))
		_ = apiError.EncodeInternalError(w, requestID)
		return
	}

	env.Logger.DebugContext(ctx, "Retrieving user")
	user, err := env.Database.GetUserByID(ctx, userID)
	if err != nil {
		env.Logger.ErrorContext(ctx, "Failed to retrieve user", slog.Any("error", err))
		_ = apiError.EncodeInternalError(w, requestID)
		return
	}

	env.Logger.DebugContext(ctx, "Clearing avatar reference")
	if err := env.Database.UpdateUserAvatar(ctx, database.UpdateUserAvatarParams{
		ID:        userID,
		AvatarURL: pgtype.Text{},
	}); err != nil {
		env.Logger.ErrorContext(ctx, "Failed to clear avatar", slog.Any("error", err))
		_ = apiError.EncodeInternalError(w, requestID)
		return
	}
	if user.AvatarURL.Valid {
		if err := env.Files.DeleteURLPath(ctx, user.AvatarURL.String); err != nil {
			env.Logger.WarnContext(ctx, "Failed to delete avatar file", slog.Any("error", err))
		}
	}

	w.WriteHeader(http.StatusNoContent)
}

// HandleListSubscriptions godoc
//
//	@Summary	List the authors the current user follows.
//	@Tags		Subscriptions
//
//	@Param		page			query		int	false	"Page number"
//	@Param		limit			query		int	false	"Page size"
//	@Param		recipes_limit	query		int	false	"Cap embedded recipes per author"
//	@Success	200				{object}	pagination.Page[view.UserWithRecipes]
//	@Security	AccessToken
//	@Router		/api/users/subscriptions/ [GET]
func HandleListSubscriptions(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	env := env.EnvFromCtx(ctx)
	requestID := requestid.String(ctx)
	userID, err := token.UserIDFromCtx(ctx)
	if err != nil {
		env.Logger.ErrorContext(ctx, "Failed to extract user id from context", slog.Any("error", err))
		_ = apiError.EncodeInternalError(w, requestID)
		return
	}

	params, err := pagination.ParseParams(r.URL.Query(), env.Config.Pagination.PageSize)
	if err != nil {
		env.Logger.ErrorContext(ctx, "Failed to parse pagination params", slog.Any("error", err))
		_ = apiError.EncodeError(w, apiError.BadRequest, err.Error(), requestID)
		return
	}
	recipesLimit := parseRecipesLimit(r.URL.Query())

	env.Logger.DebugContext(ctx, "Listing subscribed authors")
	authors, err := env.Database.ListSubscribedAuthors(ctx, database.ListSubscribedAuthorsParams{
		SubscriberID: userID,
		Limit:        int32(params.Limit),
		Offset:       int32(params.Offset()),
	})
	if err != nil {
		env.Logger.ErrorContext(ctx, "Failed to list subscribed authors", slog.Any("error", err))
		_ = apiError.EncodeInternalError(w, requestID)
		return
	}
	count, err := env.Database.CountSubscribedAuthors(ctx, userID)
	if err != nil {
		env.Logger.ErrorContext(ctx, "Failed to count subscribed authors", slog.Any("error", err))
		_ = apiError.EncodeInternalError(w, requestID)
		return
	}

	views, err := view.BuildAuthorsWithRecipes(ctx, env.Database, env.Config.HostOrigin, authors, recipesLimit)
	if err != nil {
		env.Logger.ErrorContext(ctx, "Failed to build subscription views", slog.Any("error", err))
		_ = apiError.EncodeInternalError(w, requestID)
		return
	}

	if err := writeJSON(w, http.StatusOK, pagination.NewPage(r, count, params, views)); err != nil {
		env.Logger.ErrorContext(ctx, "Failed to write response", slog.Any("error", err))
	}
}

// HandleSubscribe godoc
//
//	@Summary	Follow an author.
//	@Tags		Subscriptions
//
//	@Param		userID			path		int	true	"Author ID"
//	@Param		recipes_limit	query		int	false	"Cap embedded recipes"
//	@Success	201				{object}	view.UserWithRecipes
//	@Failure	400				{object}	apiError.Error	"Self or duplicate subscription"
//	@Failure	404				{object}	apiError.Error	"Author not found"
//	@Security	AccessToken
//	@Router		/api/users/{userID}/subscribe/ [POST]
func HandleSubscribe(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	env := env.EnvFromCtx(ctx)
	requestID := requestid.String(ctx)
	userID, err := token.UserIDFromCtx(ctx)
	if err != nil {
		env.Logger.ErrorContext(ctx, "Failed to extract user id from context", slog.Any("error", err))
		_ = apiError.EncodeInternalError(w, requestID)
		return
	}

	// Read request
	env.Logger.DebugContext(ctx, "Reading request")
	authorIDQ := chi.URLParam(r, "userID")
	authorID, err := strconv.ParseInt(authorIDQ, 10, 64)
	if err != nil {
		env.Logger.ErrorContext(ctx, "Failed to parse author id", slog.Any("error", err))
		_ = apiError.EncodeError(w, apiError.NotFound, "user not found", requestID)
		return
	}
	if authorID == userID {
		env.Logger.ErrorContext(ctx, "Attempted self subscription")
		_ = apiError.EncodeError(w, apiError.BadRequest, "cannot subscribe to yourself", requestID)
		return
	}

	// Resolve author
	env.Logger.DebugContext(ctx, "Retrieving author")
	author, err := env.Database.GetUserByID(ctx, authorID)
	if errors.Is(err, pgx.ErrNoRows) {
		env.Logger.ErrorContext(ctx, "Author does not exist", slog.Any("error", err))
		_ = apiError.EncodeError(w, apiError.NotFound, "user not found", requestID)
		return
	} else if err != nil {
		env.Logger.ErrorContext(ctx, "Failed to retrieve author", slog.Any("error", err))
		_ = apiError.EncodeInternalError(w, requestID)
		return
	}

	// Existence pre-check is an early exit; the unique constraint below
	// is the authoritative duplicate detector.
	exists, err := env.Database.SubscriptionExists(ctx, database.SubscriptionParams{
		SubscriberID: userID,
		AuthorID:     authorID,
	})
	if err != nil {
		env.Logger.ErrorContext(ctx, "Failed to check subscription", slog.Any("error", err))
		_ = apiError.EncodeInternalError(w, requestID)
		return
	}
	if exists {
		env.Logger.ErrorContext(ctx, "Already subscribed")
		_ = apiError.EncodeError(w, apiError.DuplicateRelation, "already subscribed", requestID)
		return
	}

	env.Logger.DebugContext(ctx, "Creating subscription")
	err = env.Database.CreateSubscription(ctx, database.SubscriptionParams{
		SubscriberID: userID,
		AuthorID:     authorID,
	})
	if database.IsUniqueViolation(err) {
		env.Logger.ErrorContext(ctx, "Already subscribed", slog.Any("error", err))
		_ = apiError.EncodeError(w, apiError.DuplicateRelation, "already subscribed", requestID)
		return
	} else if err != nil {
		env.Logger.ErrorContext(ctx, "Failed to create subscription", slog.Any("error", err))
		_ = apiError.EncodeInternalError(w, requestID)
		return
	}

	views, err := view.BuildAuthorsWithRecipes(ctx, env.Database, env.Config.HostOrigin,
		[]database.User{author}, parseRecipesLimit(r.URL.Query()))
	if err != nil {
		env.Logger.ErrorContext(ctx, "Failed to build subscription view", slog.Any("error", err))
		_ = apiError.EncodeInternalError(w, requestID)
		return
	}

	if err := writeJSON(w, http.StatusCreated, views[0]); err != nil {
		env.Logger.ErrorContext(ctx, "Failed to write response", slog.Any("error", err))
	}
}

// HandleUnsubscribe godoc
//
//	@Summary	Unfollow an author.
//	@Tags		Subscriptions
//
//	@Param		userID	path	int	true	"Author ID"
//	@Success	204
//	@Failure	400	{object}	apiError.Error	"Not subscribed"
//	@Failure	404	{object}	apiError.Error	"Author not found"
//	@Security	AccessToken
//	@Router		/api/users/{userID}/subscribe/ [DELETE]
func HandleUnsubscribe(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	env := env.EnvFromCtx(ctx)
	requestID := requestid.String(ctx)
	userID, err := token.UserIDFromCtx(ctx)
	if err != nil {
		env.Logger.ErrorContext(ctx, "Failed to extract user id from context", slog.Any("error", err))
		_ = apiError.EncodeInternalError(w, requestID)
		return
	}

	// Read request
	env.Logger.DebugContext(ctx, "Reading request")
	authorID, err := strconv.ParseInt(chi.URLParam(r, "userID"), 10, 64)
	if err != nil {
		env.Logger.ErrorContext(ctx, "Failed to parse author id", slog.Any("error", err))
		_ = apiError.EncodeError(w, apiError.NotFound, "user not found", requestID)
		return
	}

	// Resolve author
	env.Logger.DebugContext(ctx, "Retrieving author")
	if _, err := env.Database.GetUserByID(ctx, authorID); errors.Is(err, pgx.ErrNoRows) {
		env.Logger.ErrorContext(ctx, "Author does not exist", slog.Any("error", err))
		_ = apiError.EncodeError(w, apiError.NotFound, "user not found", requestID)
		return
	} else if err != nil {
		env.Logger.ErrorContext(ctx, "Failed to retrieve author", slog.Any("error", err))
		_ = apiError.EncodeInternalError(w, requestID)
		return
	}

	env.Logger.DebugContext(ctx, "Deleting subscription")
	deleted, err := env.Database.DeleteSubscription(ctx, database.SubscriptionParams{
		SubscriberID: userID,
		AuthorID:     authorID,
	})
	if err != nil {
		env.Logger.ErrorContext(ctx, "Failed to delete subscription", slog.Any("error", err))
		_ = apiError.EncodeInternalError(w, requestID)
		return
	}
	if deleted == 0 {
		env.Logger.ErrorContext(ctx, "Subscription does not exist")
		_ = apiError.EncodeError(w, apiError.BadRequest, "not subscribed", requestID)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
