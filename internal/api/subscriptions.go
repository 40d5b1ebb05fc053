package api

import (
	"context"

	"github.com/devilmonastery/biniq/internal/client"
)

// SubscriptionsAPI covers subscription tiers and the signed-in user's subscription
type SubscriptionsAPI struct {
	s *service
}

func (sub *SubscriptionsAPI) Tiers(ctx context.Context) (*client.Response, error) {
	return sub.s.call(ctx, SubscriptionsTiers, nil)
}

// UpdateTiers replaces the tier definitions (admin)
func (sub *SubscriptionsAPI) UpdateTiers(ctx context.Context, data any) (*client.Response, error) {
	return sub.s.call(ctx, SubscriptionsUpdateTiers, data)
}

func (sub *SubscriptionsAPI) Subscribe(ctx context.Context, data any) (*client.Response, error) {
	return sub.s.call(ctx, SubscriptionsSubscribe, data)
}

// Current returns the signed-in user's subscription
func (sub *SubscriptionsAPI) Current(ctx context.Context) (*client.Response, error) {
	return sub.s.call(ctx, SubscriptionsGet, nil)
}

func (sub *SubscriptionsAPI) Cancel(ctx context.Context, data any) (*client.Response, error) {
	return sub.s.call(ctx, SubscriptionsCancel, data)
}
