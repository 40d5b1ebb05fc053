package api

import (
	"context"

	"github.com/devilmonastery/biniq/internal/client"
)

type NotificationsAPI struct {
	s *service
}

func (n *NotificationsAPI) List(ctx context.Context, params map[string]any) (*client.Response, error) {
	return n.s.call(ctx, NotificationsList, params)
}

// Create sends a notification (admin)
func (n *NotificationsAPI) Create(ctx context.Context, data any) (*client.Response, error) {
	return n.s.call(ctx, NotificationsCreate, data)
}

func (n *NotificationsAPI) MarkRead(ctx context.Context, id string) (*client.Response, error) {
	return n.s.call(ctx, NotificationsMarkRead, nil, id)
}
