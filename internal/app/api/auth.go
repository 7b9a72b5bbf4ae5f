package api

import (
	"context"
	"net/http"
)

// LoginInput is the body of POST /auth/login.
type LoginInput struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// LoginOutput is the success body of POST /auth/login.
type LoginOutput struct {
	Token string `json:"token"`
	Role  string `json:"role"`
	Name  string `json:"name"`
}

// RegisterInput is the body of POST /auth/register.
type RegisterInput struct {
	Name     string `json:"name" validate:"required,max=100"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
	Role     string `json:"role" validate:"portal_role"`
}

// Login exchanges credentials for a bearer token, role and display name.
func (c *Client) Login(ctx context.Context, in LoginInput) (*LoginOutput, error) {
	var out LoginOutput
	if err := c.do(ctx, "login", http.MethodPost, "/auth/login", nil, in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Register creates an account. The response body is not used.
func (c *Client) Register(ctx context.Context, in RegisterInput) error {
	return c.do(ctx, "register", http.MethodPost, "/auth/register", nil, in, nil)
}
