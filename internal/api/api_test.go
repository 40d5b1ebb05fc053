package api

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/devilmonastery/biniq/internal/apitest"
	"github.com/devilmonastery/biniq/internal/client"
)

func newTestAPI(t *testing.T, timeout time.Duration) (*API, *client.Client, *apitest.Server) {
	t.Helper()
	srv := apitest.New(t)
	c := client.NewClient(client.Config{BaseURL: srv.URL, Timeout: timeout}, client.NewMemoryTokenManager())
	return New(c, nil), c, srv
}

func TestLoginPersistsToken(t *testing.T) {
	a, c, srv := newTestAPI(t, time.Second)
	srv.Handle(http.MethodPost, "/api/users/login", http.StatusOK, map[string]any{
		"token": "jwt-abc",
		"user":  map[string]any{"_id": "u1"},
	})
	srv.Handle(http.MethodGet, "/api/users/profile", http.StatusOK, map[string]any{"_id": "u1"})

	resp, err := a.Auth.Login(context.Background(), map[string]string{"email": "a@b.c", "password": "pw"})
	require.NoError(t, err)
	assert.Equal(t, "jwt-abc", resp.StringField("token"))
	assert.Equal(t, "jwt-abc", c.GetAuthToken())

	login, ok := srv.Last()
	require.True(t, ok)
	var body map[string]string
	require.NoError(t, login.JSON(&body))
	assert.Equal(t, "a@b.c", body["email"])
	assert.Empty(t, login.Header.Get("Authorization"))

	_, err = a.Users.Profile(context.Background())
	require.NoError(t, err)
	profile, _ := srv.Last()
	assert.Equal(t, "Bearer jwt-abc", profile.Header.Get("Authorization"))
}

func TestLoginWithoutTokenInResponse(t *testing.T) {
	a, c, srv := newTestAPI(t, time.Second)
	srv.Handle(http.MethodPost, "/api/users/login", http.StatusOK, map[string]any{"message": "check your email"})

	_, err := a.Auth.Login(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, c.GetAuthToken())
}

func TestLoginFailureKeepsPreviousToken(t *testing.T) {
	a, c, srv := newTestAPI(t, time.Second)
	c.SetAuthToken("old")
	srv.Handle(http.MethodPost, "/api/users/login", http.StatusUnauthorized, map[string]any{"message": "Invalid credentials"})

	_, err := a.Auth.Login(context.Background(), map[string]string{"email": "a@b.c"})
	var apiErr *client.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusUnauthorized, apiErr.Status)
	assert.Equal(t, "Invalid credentials", apiErr.Message)
	assert.Equal(t, "old", c.GetAuthToken())
}

func TestLogoutClearsTokenWithoutNetwork(t *testing.T) {
	a, c, srv := newTestAPI(t, time.Second)
	c.SetAuthToken("jwt-abc")

	a.Auth.Logout()

	assert.Empty(t, c.GetAuthToken())
	assert.Empty(t, srv.Requests())
	assert.Empty(t, c.BuildHeaders(nil)["Authorization"])
}

func TestDeleteAccount(t *testing.T) {
	tests := []struct {
		name          string
		profileStatus int
		profileBody   any
		deleteStatus  int
		wantErr       bool
		wantDeleteReq bool
		wantUserID    string
		wantTokenKept bool
	}{
		{
			name:          "top-level id",
			profileStatus: http.StatusOK,
			profileBody:   map[string]any{"_id": "u1", "email": "a@b.c"},
			deleteStatus:  http.StatusOK,
			wantDeleteReq: true,
			wantUserID:    "u1",
		},
		{
			name:          "nested user id",
			profileStatus: http.StatusOK,
			profileBody:   map[string]any{"user": map[string]any{"_id": "u2"}},
			deleteStatus:  http.StatusOK,
			wantDeleteReq: true,
			wantUserID:    "u2",
		},
		{
			name:          "profile fetch fails",
			profileStatus: http.StatusUnauthorized,
			profileBody:   map[string]any{"message": "jwt expired"},
			wantErr:       true,
			wantTokenKept: true,
		},
		{
			name:          "profile without id",
			profileStatus: http.StatusOK,
			profileBody:   map[string]any{"email": "a@b.c"},
			wantErr:       true,
			wantTokenKept: true,
		},
		{
			name:          "delete fails",
			profileStatus: http.StatusOK,
			profileBody:   map[string]any{"_id": "u3"},
			deleteStatus:  http.StatusInternalServerError,
			wantErr:       true,
			wantDeleteReq: true,
			wantUserID:    "u3",
			wantTokenKept: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, c, srv := newTestAPI(t, time.Second)
			c.SetAuthToken("jwt-abc")
			srv.Handle(http.MethodGet, "/api/users/profile", tt.profileStatus, tt.profileBody)
			if tt.deleteStatus != 0 {
				srv.Handle(http.MethodDelete, "/api/users/delete-account", tt.deleteStatus, map[string]any{"message": "done"})
			}

			_, err := a.Users.DeleteAccount(context.Background())
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}

			deletes := srv.RequestsTo(http.MethodDelete, "/api/users/delete-account")
			if !tt.wantDeleteReq {
				assert.Empty(t, deletes)
			} else {
				require.Len(t, deletes, 1)
				var body map[string]string
				require.NoError(t, deletes[0].JSON(&body))
				assert.Equal(t, tt.wantUserID, body["user_id"])
				assert.Equal(t, "Bearer jwt-abc", deletes[0].Header.Get("Authorization"))
			}

			if tt.wantTokenKept {
				assert.Equal(t, "jwt-abc", c.GetAuthToken())
			} else {
				assert.Empty(t, c.GetAuthToken())
			}
		})
	}
}

func TestDeleteAccountPropagatesProfileError(t *testing.T) {
	a, _, srv := newTestAPI(t, time.Second)
	srv.Handle(http.MethodGet, "/api/users/profile", http.StatusForbidden, map[string]any{"error": "Forbidden"})

	_, err := a.Users.DeleteAccount(context.Background())
	var apiErr *client.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusForbidden, apiErr.Status)
	assert.Equal(t, "Forbidden", apiErr.Message)
}

func TestDeleteAccountMissingID(t *testing.T) {
	a, _, srv := newTestAPI(t, time.Second)
	srv.Handle(http.MethodGet, "/api/users/profile", http.StatusOK, map[string]any{"_id": 42})

	_, err := a.Users.DeleteAccount(context.Background())
	assert.True(t, errors.Is(err, ErrMissingUserID))
}

func TestWrappersUseCatalog(t *testing.T) {
	ctx := context.Background()
	tests := []struct {
		name   string
		call   func(a *API) (*client.Response, error)
		method string
		path   string
		body   map[string]any
	}{
		{"register", func(a *API) (*client.Response, error) { return a.Auth.Register(ctx, map[string]any{"email": "x"}) }, "POST", "/api/users/register", map[string]any{"email": "x"}},
		{"forgot password", func(a *API) (*client.Response, error) { return a.Auth.ForgotPassword(ctx, nil) }, "POST", "/api/users/forgot-password", map[string]any{}},
		{"verify otp", func(a *API) (*client.Response, error) { return a.Auth.VerifyOTP(ctx, map[string]any{"otp": "1234"}) }, "POST", "/api/users/verify-otp", map[string]any{"otp": "1234"}},
		{"reset password", func(a *API) (*client.Response, error) { return a.Auth.ResetPassword(ctx, nil) }, "POST", "/api/users/reset-password", map[string]any{}},
		{"update profile", func(a *API) (*client.Response, error) { return a.Users.UpdateProfile(ctx, map[string]any{"name": "n"}) }, "PUT", "/api/users/profile", map[string]any{"name": "n"}},
		{"change password", func(a *API) (*client.Response, error) { return a.Users.ChangePassword(ctx, nil) }, "POST", "/api/users/change-password", map[string]any{}},
		{"approve", func(a *API) (*client.Response, error) { return a.Users.Approve(ctx, "u9") }, "POST", "/api/users/approve", map[string]any{"user_id": "u9"}},
		{"reject", func(a *API) (*client.Response, error) { return a.Users.Reject(ctx, "u9") }, "POST", "/api/users/reject", map[string]any{"user_id": "u9"}},
		{"feedback", func(a *API) (*client.Response, error) { return a.Users.Feedback(ctx, nil) }, "GET", "/api/users/feedback", nil},
		{"submit feedback", func(a *API) (*client.Response, error) { return a.Users.SubmitFeedback(ctx, nil) }, "POST", "/api/users/feedback", map[string]any{}},
		{"reply feedback", func(a *API) (*client.Response, error) { return a.Users.ReplyFeedback(ctx, nil) }, "POST", "/api/users/feedback/reply", map[string]any{}},
		{"products", func(a *API) (*client.Response, error) { return a.Products.List(ctx, nil) }, "GET", "/api/products", nil},
		{"trending", func(a *API) (*client.Response, error) { return a.Products.Trending(ctx, nil) }, "GET", "/api/products/trending", nil},
		{"activity", func(a *API) (*client.Response, error) { return a.Products.Activity(ctx, nil) }, "GET", "/api/products/activity", nil},
		{"product", func(a *API) (*client.Response, error) { return a.Products.Get(ctx, "p1") }, "GET", "/api/products/p1", nil},
		{"create product", func(a *API) (*client.Response, error) { return a.Products.Create(ctx, nil) }, "POST", "/api/products", map[string]any{}},
		{"update product", func(a *API) (*client.Response, error) { return a.Products.Update(ctx, "p1", map[string]any{"price": 3.5}) }, "PUT", "/api/products/p1", map[string]any{"price": 3.5}},
		{"delete product", func(a *API) (*client.Response, error) { return a.Products.Delete(ctx, "p1") }, "DELETE", "/api/products/p1", map[string]any{}},
		{"categories", func(a *API) (*client.Response, error) { return a.Products.Categories(ctx) }, "GET", "/api/categories", nil},
		{"create category", func(a *API) (*client.Response, error) { return a.Products.CreateCategory(ctx, nil) }, "POST", "/api/categories", map[string]any{}},
		{"stores", func(a *API) (*client.Response, error) { return a.Stores.List(ctx, nil) }, "GET", "/api/stores", nil},
		{"my store", func(a *API) (*client.Response, error) { return a.Stores.Mine(ctx) }, "GET", "/api/stores/my-store", nil},
		{"store details", func(a *API) (*client.Response, error) { return a.Stores.Details(ctx, "s1") }, "GET", "/api/stores/details/s1", nil},
		{"nearby", func(a *API) (*client.Response, error) { return a.Stores.Nearby(ctx, nil) }, "GET", "/api/stores/nearby", nil},
		{"favorites", func(a *API) (*client.Response, error) { return a.Stores.Favorites(ctx) }, "GET", "/api/stores/favorites", nil},
		{"user favorites", func(a *API) (*client.Response, error) { return a.Stores.UserFavorites(ctx, "u1") }, "GET", "/api/stores/favorites/u1", nil},
		{"create store", func(a *API) (*client.Response, error) { return a.Stores.Create(ctx, nil) }, "POST", "/api/stores", map[string]any{}},
		{"update store", func(a *API) (*client.Response, error) { return a.Stores.Update(ctx, nil) }, "PUT", "/api/stores", map[string]any{}},
		{"view store", func(a *API) (*client.Response, error) { return a.Stores.View(ctx, "s1") }, "POST", "/api/stores/view", map[string]any{"store_id": "s1"}},
		{"like store", func(a *API) (*client.Response, error) { return a.Stores.Like(ctx, "s1") }, "POST", "/api/stores/like", map[string]any{"store_id": "s1"}},
		{"follow store", func(a *API) (*client.Response, error) { return a.Stores.Follow(ctx, "s1") }, "POST", "/api/stores/follow", map[string]any{"store_id": "s1"}},
		{"comment store", func(a *API) (*client.Response, error) { return a.Stores.Comment(ctx, "s1", "nice") }, "POST", "/api/stores/comment", map[string]any{"store_id": "s1", "comment": "nice"}},
		{"favorite store", func(a *API) (*client.Response, error) { return a.Stores.Favorite(ctx, "s1") }, "POST", "/api/stores/favorite", map[string]any{"store_id": "s1"}},
		{"promotions", func(a *API) (*client.Response, error) { return a.Promotions.List(ctx, nil) }, "GET", "/api/promotions", nil},
		{"promotion", func(a *API) (*client.Response, error) { return a.Promotions.Get(ctx, "pr1") }, "GET", "/api/promotions/pr1", nil},
		{"create promotion", func(a *API) (*client.Response, error) { return a.Promotions.Create(ctx, nil) }, "POST", "/api/promotions", map[string]any{}},
		{"update promotion", func(a *API) (*client.Response, error) { return a.Promotions.Update(ctx, "pr1", nil) }, "PUT", "/api/promotions/pr1", map[string]any{}},
		{"delete promotion", func(a *API) (*client.Response, error) { return a.Promotions.Delete(ctx, "pr1") }, "DELETE", "/api/promotions/pr1", map[string]any{}},
		{"tiers", func(a *API) (*client.Response, error) { return a.Subscriptions.Tiers(ctx) }, "GET", "/api/subscriptions/tiers", nil},
		{"update tiers", func(a *API) (*client.Response, error) { return a.Subscriptions.UpdateTiers(ctx, nil) }, "PUT", "/api/subscriptions/tiers", map[string]any{}},
		{"subscribe", func(a *API) (*client.Response, error) { return a.Subscriptions.Subscribe(ctx, map[string]any{"tier": "pro"}) }, "POST", "/api/subscriptions/subscribe", map[string]any{"tier": "pro"}},
		{"subscription", func(a *API) (*client.Response, error) { return a.Subscriptions.Current(ctx) }, "GET", "/api/subscriptions", nil},
		{"cancel subscription", func(a *API) (*client.Response, error) { return a.Subscriptions.Cancel(ctx, nil) }, "POST", "/api/subscriptions/cancel", map[string]any{}},
		{"notifications", func(a *API) (*client.Response, error) { return a.Notifications.List(ctx, nil) }, "GET", "/api/notifications", nil},
		{"create notification", func(a *API) (*client.Response, error) { return a.Notifications.Create(ctx, nil) }, "POST", "/api/notifications", map[string]any{}},
		{"mark read", func(a *API) (*client.Response, error) { return a.Notifications.MarkRead(ctx, "n1") }, "PUT", "/api/notifications/n1/read", map[string]any{}},
		{"faqs", func(a *API) (*client.Response, error) { return a.FAQs.List(ctx) }, "GET", "/api/faqs", nil},
		{"faq", func(a *API) (*client.Response, error) { return a.FAQs.Get(ctx, "f1") }, "GET", "/api/faqs/f1", nil},
		{"create faq", func(a *API) (*client.Response, error) { return a.FAQs.Create(ctx, nil) }, "POST", "/api/faqs", map[string]any{}},
		{"update faq", func(a *API) (*client.Response, error) { return a.FAQs.Update(ctx, "f1", nil) }, "PUT", "/api/faqs/f1", map[string]any{}},
		{"delete faq", func(a *API) (*client.Response, error) { return a.FAQs.Delete(ctx, "f1") }, "DELETE", "/api/faqs/f1", map[string]any{}},
		{"paid users", func(a *API) (*client.Response, error) { return a.Stats.PaidUsers(ctx, nil) }, "GET", "/api/stats/paid-users", nil},
		{"store owners", func(a *API) (*client.Response, error) { return a.Stats.StoreOwners(ctx, nil) }, "GET", "/api/stats/store-owners", nil},
		{"resellers", func(a *API) (*client.Response, error) { return a.Stats.Resellers(ctx, nil) }, "GET", "/api/stats/resellers", nil},
		{"revenue", func(a *API) (*client.Response, error) { return a.Stats.Revenue(ctx, nil) }, "GET", "/api/stats/revenue", nil},
		{"recent activity", func(a *API) (*client.Response, error) { return a.Stats.RecentActivity(ctx, nil) }, "GET", "/api/stats/recent-activity", nil},
		{"recent feedbacks", func(a *API) (*client.Response, error) { return a.Stats.RecentFeedbacks(ctx, nil) }, "GET", "/api/stats/recent-feedbacks", nil},
		{"quick stats", func(a *API) (*client.Response, error) { return a.Stats.Quick(ctx) }, "GET", "/api/stats/quick-stats", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, _, srv := newTestAPI(t, time.Second)
			srv.Handle(tt.method, tt.path, http.StatusOK, map[string]any{"ok": true})

			_, err := tt.call(a)
			require.NoError(t, err)

			req, ok := srv.Last()
			require.True(t, ok)
			assert.Equal(t, tt.method, req.Method)
			assert.Equal(t, tt.path, req.Path)
			if tt.body == nil {
				assert.Empty(t, req.Body)
				return
			}
			var body map[string]any
			require.NoError(t, req.JSON(&body))
			assert.Equal(t, tt.body, body)
		})
	}
}

func TestListParamsBecomeQueryString(t *testing.T) {
	a, _, srv := newTestAPI(t, time.Second)
	srv.Handle(http.MethodGet, "/api/stores/nearby", http.StatusOK, []any{})

	_, err := a.Stores.Nearby(context.Background(), map[string]any{"latitude": 40.7, "longitude": -74, "radius": nil})
	require.NoError(t, err)

	req, _ := srv.Last()
	assert.Equal(t, "latitude=40.7&longitude=-74", req.RawQuery)
}

func TestTemplatedEndpointWithoutIDMakesNoRequest(t *testing.T) {
	a, _, srv := newTestAPI(t, time.Second)

	_, err := a.Products.Get(context.Background(), "")
	assert.ErrorIs(t, err, ErrMissingID)
	assert.Empty(t, srv.Requests())
}

func TestCallByEndpoint(t *testing.T) {
	a, _, srv := newTestAPI(t, time.Second)
	srv.Handle(http.MethodGet, "/api/promotions/{id}", http.StatusOK, map[string]any{"_id": "pr7"})

	e, ok := a.Catalog.Lookup("promotions.getById")
	require.True(t, ok)
	resp, err := a.Call(context.Background(), e, nil, "pr7")
	require.NoError(t, err)
	assert.Equal(t, "pr7", resp.StringField("_id"))
}

func TestCallPayloadShapes(t *testing.T) {
	a, _, srv := newTestAPI(t, time.Second)
	srv.Handle(http.MethodGet, "/api/products", http.StatusOK, []any{})
	ctx := context.Background()

	_, err := a.Call(ctx, ProductsList, map[string]string{"search": "bins"})
	require.NoError(t, err)
	req, ok := srv.Last()
	require.True(t, ok)
	assert.Equal(t, "search=bins", req.RawQuery)

	_, err = a.Call(ctx, ProductsList, []string{"search=bins"})
	assert.ErrorIs(t, err, ErrInvalidPayload)
	_, err = a.Call(ctx, ProductsList, struct{ Search string }{"bins"})
	assert.ErrorIs(t, err, ErrInvalidPayload)
	assert.Len(t, srv.Requests(), 1)
}

func TestCallVerbs(t *testing.T) {
	a, _, srv := newTestAPI(t, time.Second)
	ctx := context.Background()

	patch := Endpoint{Kind: Static, Method: http.MethodPatch, Path: "/api/products"}
	_, _ = a.Call(ctx, patch, map[string]any{"name": "x"})
	require.Len(t, srv.RequestsTo(http.MethodPatch, "/api/products"), 1)

	options := Endpoint{Kind: Static, Method: http.MethodOptions, Path: "/api/products"}
	_, err := a.Call(ctx, options, nil)
	assert.ErrorIs(t, err, ErrUnsupportedMethod)
	assert.Len(t, srv.Requests(), 1)
}

func TestConcurrentCallsAreIndependent(t *testing.T) {
	a, _, srv := newTestAPI(t, 200*time.Millisecond)
	srv.Handle(http.MethodGet, "/api/stats/quick-stats", http.StatusOK, map[string]any{"users": 1})
	srv.Handle(http.MethodGet, "/api/faqs", http.StatusOK, []any{map[string]any{"question": "q"}})
	srv.Delay("/api/stats/quick-stats", 5*time.Second)

	var (
		wg               sync.WaitGroup
		statsErr, faqErr error
		faqs             *client.Response
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		_, statsErr = a.Stats.Quick(context.Background())
	}()
	go func() {
		defer wg.Done()
		faqs, faqErr = a.FAQs.List(context.Background())
	}()
	wg.Wait()

	assert.ErrorIs(t, statsErr, client.ErrRequestTimeout)
	require.NoError(t, faqErr)
	var list []map[string]any
	require.NoError(t, faqs.Decode(&list))
	assert.Len(t, list, 1)
}
