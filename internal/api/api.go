// Package api wraps the BinIQ endpoint catalog in one method per resource action.
// Every method makes exactly one call through the underlying client, except
// Users.DeleteAccount which fetches the profile first.
package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/devilmonastery/biniq/internal/client"
)

var (
	// ErrInvalidPayload is returned when a GET endpoint is called with something other than query parameters
	ErrInvalidPayload = errors.New("invalid payload")
	// ErrUnsupportedMethod is returned for endpoints registered under a verb the client cannot send
	ErrUnsupportedMethod = errors.New("unsupported method")
)

// Requester is the part of *client.Client the wrappers use
type Requester interface {
	BaseURL() string
	Get(ctx context.Context, url string, params map[string]any) (*client.Response, error)
	Post(ctx context.Context, url string, data any) (*client.Response, error)
	Put(ctx context.Context, url string, data any) (*client.Response, error)
	Delete(ctx context.Context, url string, data any) (*client.Response, error)
	Patch(ctx context.Context, url string, data any) (*client.Response, error)
	SetAuthToken(token string)
	RemoveAuthToken()
}

// API groups the resource wrappers
type API struct {
	Catalog *Catalog

	Auth          *AuthAPI
	Users         *UsersAPI
	Products      *ProductsAPI
	Stores        *StoresAPI
	Promotions    *PromotionsAPI
	Subscriptions *SubscriptionsAPI
	Notifications *NotificationsAPI
	FAQs          *FAQsAPI
	Stats         *StatsAPI

	svc *service
}

// New creates the resource wrappers on top of c. A nil logger means slog.Default().
func New(c Requester, logger *slog.Logger) *API {
	if logger == nil {
		logger = slog.Default()
	}
	s := &service{
		client:  c,
		catalog: NewCatalog(c.BaseURL()),
		logger:  logger.With("component", "api"),
	}
	return &API{
		Catalog:       s.catalog,
		Auth:          &AuthAPI{s},
		Users:         &UsersAPI{s},
		Products:      &ProductsAPI{s},
		Stores:        &StoresAPI{s},
		Promotions:    &PromotionsAPI{s},
		Subscriptions: &SubscriptionsAPI{s},
		Notifications: &NotificationsAPI{s},
		FAQs:          &FAQsAPI{s},
		Stats:         &StatsAPI{s},
		svc:           s,
	}
}

// service is shared by all resource wrappers
type service struct {
	client  Requester
	catalog *Catalog
	logger  *slog.Logger
}

// call issues e with the verb it is registered under.
// For GET, payload must be nil or a map[string]any (or map[string]string) of query parameters.
func (s *service) call(ctx context.Context, e Endpoint, payload any, ids ...string) (*client.Response, error) {
	url, err := s.catalog.URL(e, ids...)
	if err != nil {
		return nil, err
	}

	switch e.Method {
	case http.MethodGet:
		params, err := queryParams(payload)
		if err != nil {
			return nil, fmt.Errorf("%s %s: %w", e.Method, e.Path, err)
		}
		return s.client.Get(ctx, url, params)
	case http.MethodPost:
		return s.client.Post(ctx, url, payload)
	case http.MethodPut:
		return s.client.Put(ctx, url, payload)
	case http.MethodDelete:
		return s.client.Delete(ctx, url, payload)
	case http.MethodPatch:
		return s.client.Patch(ctx, url, payload)
	default:
		return nil, fmt.Errorf("%s %s: %w", e.Method, e.Path, ErrUnsupportedMethod)
	}
}

// queryParams accepts the payload shapes a GET endpoint can take
func queryParams(payload any) (map[string]any, error) {
	switch p := payload.(type) {
	case nil:
		return nil, nil
	case map[string]any:
		return p, nil
	case map[string]string:
		params := make(map[string]any, len(p))
		for k, v := range p {
			params[k] = v
		}
		return params, nil
	default:
		return nil, fmt.Errorf("%w: query parameters must be map[string]any, got %T", ErrInvalidPayload, payload)
	}
}

// Call invokes any catalog endpoint with the verb it is registered under
func (a *API) Call(ctx context.Context, e Endpoint, payload any, ids ...string) (*client.Response, error) {
	return a.svc.call(ctx, e, payload, ids...)
}
