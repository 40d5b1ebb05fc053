package api

import (
	"context"
	"errors"
	"log/slog"

	"github.com/devilmonastery/biniq/internal/client"
)

// ErrMissingUserID is returned by DeleteAccount when the profile has no "_id"
var ErrMissingUserID = errors.New("profile response has no user id")

// UsersAPI covers the signed-in user's profile and admin user moderation
type UsersAPI struct {
	s *service
}

// userIDRequest is the body of approve, reject and delete-account
type userIDRequest struct {
	UserID string `json:"user_id"`
}

func (u *UsersAPI) Profile(ctx context.Context) (*client.Response, error) {
	return u.s.call(ctx, UsersProfile, nil)
}

func (u *UsersAPI) UpdateProfile(ctx context.Context, data any) (*client.Response, error) {
	return u.s.call(ctx, UsersUpdateProfile, data)
}

func (u *UsersAPI) ChangePassword(ctx context.Context, data any) (*client.Response, error) {
	return u.s.call(ctx, UsersChangePassword, data)
}

// DeleteAccount deletes the signed-in user's account.
// The user id is read from the profile, so two requests are made; if the profile
// fetch fails the delete is never sent. On success the stored token is removed.
func (u *UsersAPI) DeleteAccount(ctx context.Context) (*client.Response, error) {
	profile, err := u.s.call(ctx, UsersProfile, nil)
	if err != nil {
		u.s.logger.Error("delete account: failed to fetch profile", slog.String("error", err.Error()))
		return nil, err
	}

	userID := profile.StringField("_id")
	if userID == "" {
		userID = profile.NestedString("user", "_id")
	}
	if userID == "" {
		u.s.logger.Error("delete account: profile has no user id")
		return nil, ErrMissingUserID
	}

	resp, err := u.s.call(ctx, UsersDeleteAccount, userIDRequest{UserID: userID})
	if err != nil {
		u.s.logger.Error("delete account failed",
			slog.String("user_id", userID),
			slog.String("error", err.Error()))
		return nil, err
	}

	u.s.client.RemoveAuthToken()
	u.s.logger.Info("account deleted", slog.String("user_id", userID))
	return resp, nil
}

// Approve approves a pending user (admin)
func (u *UsersAPI) Approve(ctx context.Context, userID string) (*client.Response, error) {
	return u.s.call(ctx, UsersApprove, userIDRequest{UserID: userID})
}

// Reject rejects a pending user (admin)
func (u *UsersAPI) Reject(ctx context.Context, userID string) (*client.Response, error) {
	return u.s.call(ctx, UsersReject, userIDRequest{UserID: userID})
}

func (u *UsersAPI) Feedback(ctx context.Context, params map[string]any) (*client.Response, error) {
	return u.s.call(ctx, UsersFeedback, params)
}

func (u *UsersAPI) SubmitFeedback(ctx context.Context, data any) (*client.Response, error) {
	return u.s.call(ctx, UsersSubmitFeedback, data)
}

func (u *UsersAPI) ReplyFeedback(ctx context.Context, data any) (*client.Response, error) {
	return u.s.call(ctx, UsersReplyFeedback, data)
}
