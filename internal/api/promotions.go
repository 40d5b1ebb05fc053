package api

import (
	"context"

	"github.com/devilmonastery/biniq/internal/client"
)

type PromotionsAPI struct {
	s *service
}

func (p *PromotionsAPI) List(ctx context.Context, params map[string]any) (*client.Response, error) {
	return p.s.call(ctx, PromotionsList, params)
}

func (p *PromotionsAPI) Get(ctx context.Context, id string) (*client.Response, error) {
	return p.s.call(ctx, PromotionsGet, nil, id)
}

func (p *PromotionsAPI) Create(ctx context.Context, data any) (*client.Response, error) {
	return p.s.call(ctx, PromotionsCreate, data)
}

func (p *PromotionsAPI) Update(ctx context.Context, id string, data any) (*client.Response, error) {
	return p.s.call(ctx, PromotionsUpdate, data, id)
}

func (p *PromotionsAPI) Delete(ctx context.Context, id string) (*client.Response, error) {
	return p.s.call(ctx, PromotionsDelete, nil, id)
}
