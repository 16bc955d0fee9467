package application

import (
	"context"

	catalog "github.com/dmehra2102/chipstore/internal/catalog/domain"
)

// CartStore persists the serialized line list of one cart session. Load
// returns nil data when the session has no cart yet.
type CartStore interface {
	Load(ctx context.Context, session string) ([]byte, error)
	Save(ctx context.Context, session string, data []byte) error
	Delete(ctx context.Context, session string) error
}

type ProductLookup interface {
	Get(id string) (catalog.Product, bool)
}
