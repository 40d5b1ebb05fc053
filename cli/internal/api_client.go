package cli

import (
	"log/slog"

	"github.com/devilmonastery/biniq/internal/client"
	"github.com/devilmonastery/biniq/internal/localstore"
)

// NewAPIClient creates a client for a context, persisting the token in store
func NewAPIClient(ctx *Context, store localstore.Store, logger *slog.Logger) *client.Client {
	transport := client.NewTransport(client.TransportOptions{
		MaxRetries:        ctx.API.Retries,
		RequestsPerSecond: ctx.API.RequestsPerSecond,
		Burst:             ctx.API.Burst,
		Metrics:           true,
	})

	return client.NewClient(client.Config{
		BaseURL:   ctx.API.BaseURL,
		Timeout:   ctx.API.Timeout,
		Transport: transport,
		Logger:    logger,
	}, localstore.TokenManager(store))
}
