package users

type CreateUserResponse struct {
	ID        int64  `json:"id"`
	Email     string `json:"email"`
	Username  string `json:"username"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

type UserLoginResponse struct {
	AuthToken string `json:"auth_token"`
}

type SetAvatarResponse struct {
	Avatar string `json:"avatar"`
}
