package api

import (
	"context"

	"github.com/devilmonastery/biniq/internal/client"
)

// ProductsAPI covers products and their categories
type ProductsAPI struct {
	s *service
}

// List returns products; params are passed through as the query string
func (p *ProductsAPI) List(ctx context.Context, params map[string]any) (*client.Response, error) {
	return p.s.call(ctx, ProductsList, params)
}

func (p *ProductsAPI) Trending(ctx context.Context, params map[string]any) (*client.Response, error) {
	return p.s.call(ctx, ProductsTrending, params)
}

func (p *ProductsAPI) Activity(ctx context.Context, params map[string]any) (*client.Response, error) {
	return p.s.call(ctx, ProductsActivity, params)
}

func (p *ProductsAPI) Get(ctx context.Context, id string) (*client.Response, error) {
	return p.s.call(ctx, ProductsGet, nil, id)
}

func (p *ProductsAPI) Create(ctx context.Context, data any) (*client.Response, error) {
	return p.s.call(ctx, ProductsCreate, data)
}

func (p *ProductsAPI) Update(ctx context.Context, id string, data any) (*client.Response, error) {
	return p.s.call(ctx, ProductsUpdate, data, id)
}

func (p *ProductsAPI) Delete(ctx context.Context, id string) (*client.Response, error) {
	return p.s.call(ctx, ProductsDelete, nil, id)
}

func (p *ProductsAPI) Categories(ctx context.Context) (*client.Response, error) {
	return p.s.call(ctx, CategoriesList, nil)
}

func (p *ProductsAPI) CreateCategory(ctx context.Context, data any) (*client.Response, error) {
	return p.s.call(ctx, CategoriesCreate, data)
}
