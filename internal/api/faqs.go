package api

import (
	"context"

	"github.com/devilmonastery/biniq/internal/client"
)

type FAQsAPI struct {
	s *service
}

func (f *FAQsAPI) List(ctx context.Context) (*client.Response, error) {
	return f.s.call(ctx, FAQsList, nil)
}

func (f *FAQsAPI) Get(ctx context.Context, id string) (*client.Response, error) {
	return f.s.call(ctx, FAQsGet, nil, id)
}

func (f *FAQsAPI) Create(ctx context.Context, data any) (*client.Response, error) {
	return f.s.call(ctx, FAQsCreate, data)
}

func (f *FAQsAPI) Update(ctx context.Context, id string, data any) (*client.Response, error) {
	return f.s.call(ctx, FAQsUpdate, data, id)
}

func (f *FAQsAPI) Delete(ctx context.Context, id string) (*client.Response, error) {
	return f.s.call(ctx, FAQsDelete, nil, id)
}
