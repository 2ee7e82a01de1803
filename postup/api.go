package postup

import (
	"context"
)

// API defines the client operations used outside the resource services
type API interface {
	// TestConnection verifies the credentials against PostUp
	TestConnection(ctx context.Context) error

	// Request sends a raw request and returns the normalized response
	Request(ctx context.Context, method, path string, body any) (any, error)

	// Do sends a raw request and decodes the normalized response into out
	Do(ctx context.Context, method, path string, body, out any) error

	// BaseURL returns the API root requests are sent to
	BaseURL() string
}

var _ API = (*Client)(nil)
