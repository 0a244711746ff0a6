package users

import (
	"errors"
	"strconv"
)

type userID string

func (u userID) Validate() error {
	v, err := strconv.ParseInt(string(u), 10, 64)
	if err != nil {
		return errors.New("expected an integer")
	}
	if v < 0 {
		return errors.New("user id should be non-negative")
	}
	return nil
}

type CreateUserRequest struct {
	Email     string `json:"email" validate:"required,email,max=254"`
	Username  string `json:"username" validate:"required,max=150"`
	FirstName string `json:"first_name" validate:"required,max=150"`
	LastName  string `json:"last_name" validate:"required,max=150"`
	Password  string `json:"password" validate:"required"`
}

type UserLoginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type SetPasswordRequest struct {
	NewPassword     string `json:"new_password" validate:"required"`
	CurrentPassword string `json:"current_password" validate:"required"`
}

type SetAvatarRequest struct {
	Avatar string `json:"avatar" validate:"required"`
}
