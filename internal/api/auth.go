package api

import (
	"context"

	"github.com/devilmonastery/biniq/internal/client"
)

// AuthAPI covers registration, login and password recovery
type AuthAPI struct {
	s *service
}

// Register creates an account
func (a *AuthAPI) Register(ctx context.Context, data any) (*client.Response, error) {
	return a.s.call(ctx, AuthRegister, data)
}

// Login exchanges credentials for a token.
// When the response carries a "token" it is persisted before Login returns.
func (a *AuthAPI) Login(ctx context.Context, credentials any) (*client.Response, error) {
	resp, err := a.s.call(ctx, AuthLogin, credentials)
	if err != nil {
		return nil, err
	}
	if token := resp.StringField("token"); token != "" {
		a.s.client.SetAuthToken(token)
	} else {
		a.s.logger.Warn("login response has no token")
	}
	return resp, nil
}

// Logout forgets the stored token. There is no server-side session to end.
func (a *AuthAPI) Logout() {
	a.s.client.RemoveAuthToken()
	a.s.logger.Debug("logged out")
}

func (a *AuthAPI) ForgotPassword(ctx context.Context, data any) (*client.Response, error) {
	return a.s.call(ctx, AuthForgotPassword, data)
}

func (a *AuthAPI) VerifyOTP(ctx context.Context, data any) (*client.Response, error) {
	return a.s.call(ctx, AuthVerifyOTP, data)
}

func (a *AuthAPI) ResetPassword(ctx context.Context, data any) (*client.Response, error) {
	return a.s.call(ctx, AuthResetPassword, data)
}
