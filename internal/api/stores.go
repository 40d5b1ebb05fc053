package api

import (
	"context"

	"github.com/devilmonastery/biniq/internal/client"
)

// StoresAPI covers stores and the engagement actions on them
type StoresAPI struct {
	s *service
}

// storeAction is the body of the view/like/follow/comment/favorite endpoints
type storeAction struct {
	StoreID string `json:"store_id"`
	Comment string `json:"comment,omitempty"`
}

func (st *StoresAPI) List(ctx context.Context, params map[string]any) (*client.Response, error) {
	return st.s.call(ctx, StoresList, params)
}

// Mine returns the store owned by the signed-in user
func (st *StoresAPI) Mine(ctx context.Context) (*client.Response, error) {
	return st.s.call(ctx, StoresMine, nil)
}

func (st *StoresAPI) Details(ctx context.Context, id string) (*client.Response, error) {
	return st.s.call(ctx, StoresDetails, nil, id)
}

// Nearby expects location params such as latitude, longitude and radius
func (st *StoresAPI) Nearby(ctx context.Context, params map[string]any) (*client.Response, error) {
	return st.s.call(ctx, StoresNearby, params)
}

func (st *StoresAPI) Favorites(ctx context.Context) (*client.Response, error) {
	return st.s.call(ctx, StoresFavorites, nil)
}

func (st *StoresAPI) UserFavorites(ctx context.Context, userID string) (*client.Response, error) {
	return st.s.call(ctx, StoresUserFavorites, nil, userID)
}

func (st *StoresAPI) Create(ctx context.Context, data any) (*client.Response, error) {
	return st.s.call(ctx, StoresCreate, data)
}

// Update modifies the signed-in user's store; the server picks the store from the token
func (st *StoresAPI) Update(ctx context.Context, data any) (*client.Response, error) {
	return st.s.call(ctx, StoresUpdate, data)
}

func (st *StoresAPI) View(ctx context.Context, storeID string) (*client.Response, error) {
	return st.s.call(ctx, StoresView, storeAction{StoreID: storeID})
}

func (st *StoresAPI) Like(ctx context.Context, storeID string) (*client.Response, error) {
	return st.s.call(ctx, StoresLike, storeAction{StoreID: storeID})
}

func (st *StoresAPI) Follow(ctx context.Context, storeID string) (*client.Response, error) {
	return st.s.call(ctx, StoresFollow, storeAction{StoreID: storeID})
}

func (st *StoresAPI) Comment(ctx context.Context, storeID, comment string) (*client.Response, error) {
	return st.s.call(ctx, StoresComment, storeAction{StoreID: storeID, Comment: comment})
}

func (st *StoresAPI) Favorite(ctx context.Context, storeID string) (*client.Response, error) {
	return st.s.call(ctx, StoresFavorite, storeAction{StoreID: storeID})
}
