package accounts

import (
	"context"
	"errors"
)

// ErrNotFound is returned when an account does not exist.
var ErrNotFound = errors.New("account not found")

type Provider interface {
	// Resolve an account by its opaque id.
	ResolveAccountByID(ctx context.Context, id string) (Account, error)
	// ListWidgetOrigins returns every origin allowed to embed the widget
	// for the account. Zero rows means the widget is embeddable nowhere.
	ListWidgetOrigins(ctx context.Context, accountID string) ([]string, error)
	// Origin allow-list management (admin API).
	AddWidgetOrigin(ctx context.Context, accountID, origin string) error
	RemoveWidgetOrigin(ctx context.Context, accountID, origin string) error
	// Gallery data for the widget gallery script, newest first.
	ListImageAssets(ctx context.Context, accountID string) ([]Asset, error)
}
