package client

import (
	"context"
	"net/http"
	"strings"

	"github.com/GriffinCanCode/BizMate/core/internal/shared/types"
	"github.com/GriffinCanCode/BizMate/core/internal/shared/utils"
	"go.uber.org/zap"
)

// Login exchanges credentials for a token and stores it in the session.
// A rejected login clears any previous session, like every other 401.
func (c *Client) Login(ctx context.Context, creds types.Credentials) error {
	const op = "login"
	if err := utils.ValidateCredentials(creds.Email, creds.Password); err != nil {
		return Validation(op, err.Error())
	}
	creds.Email = strings.TrimSpace(creds.Email)

	call := Call{
		Method: http.MethodPost,
		Path:   "/auth/login",
		Form: map[string]string{
			"username": creds.Email,
			"password": creds.Password,
		},
	}
	resp, err := c.Request(ctx, call)
	if err != nil {
		return err
	}

	var out types.LoginResponse
	if err := decode(resp, call.Op(), &out, "access_token"); err != nil {
		return err
	}
	if out.AccessToken == "" {
		return application(call.Op(), "BizMate sent an incomplete response.", nil)
	}

	c.store.Set(out.AccessToken)
	c.logger.Info("Signed in", zap.String("request_id", resp.RequestID))
	return nil
}

// Signup registers a new account. It does not sign the user in.
func (c *Client) Signup(ctx context.Context, creds types.Credentials) error {
	const op = "signup"
	if err := utils.ValidateCredentials(creds.Email, creds.Password); err != nil {
		return Validation(op, err.Error())
	}
	creds.Email = strings.TrimSpace(creds.Email)
	_, err := c.Request(ctx, Call{
		Method: http.MethodPost,
		Path:   "/auth/signup",
		Body:   creds,
	})
	return err
}

// Logout ends the session locally. The API keeps no server-side session.
func (c *Client) Logout() {
	c.store.Clear()
	c.logger.Info("Signed out")
}
