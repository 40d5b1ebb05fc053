package api

import (
	"context"

	"github.com/devilmonastery/biniq/internal/client"
)

// StatsAPI exposes the admin dashboard statistics
type StatsAPI struct {
	s *service
}

func (st *StatsAPI) PaidUsers(ctx context.Context, params map[string]any) (*client.Response, error) {
	return st.s.call(ctx, StatsPaidUsers, params)
}

func (st *StatsAPI) StoreOwners(ctx context.Context, params map[string]any) (*client.Response, error) {
	return st.s.call(ctx, StatsStoreOwners, params)
}

func (st *StatsAPI) Resellers(ctx context.Context, params map[string]any) (*client.Response, error) {
	return st.s.call(ctx, StatsResellers, params)
}

func (st *StatsAPI) Revenue(ctx context.Context, params map[string]any) (*client.Response, error) {
	return st.s.call(ctx, StatsRevenue, params)
}

func (st *StatsAPI) RecentActivity(ctx context.Context, params map[string]any) (*client.Response, error) {
	return st.s.call(ctx, StatsRecentActivity, params)
}

func (st *StatsAPI) RecentFeedbacks(ctx context.Context, params map[string]any) (*client.Response, error) {
	return st.s.call(ctx, StatsRecentFeedbacks, params)
}

// Quick returns the summary counters shown at the top of the dashboard
func (st *StatsAPI) Quick(ctx context.Context) (*client.Response, error) {
	return st.s.call(ctx, StatsQuick, nil)
}
