package ports

import "context"

// CredentialStore is durable key-value storage for the persisted credential
// record. A missing key reads as an empty string, not an error.
type CredentialStore interface {
	GetItem(ctx context.Context, key string) (string, error)
	SetItem(ctx context.Context, key, value string) error
	RemoveItem(ctx context.Context, key string) error
	MultiRemove(ctx context.Context, keys []string) error
}
