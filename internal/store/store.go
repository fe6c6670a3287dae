// Package store is the persistence sink for captured product records.
package store

import "context"

// DocumentStore is the persistence capability the traversal core
// consumes: insert a finished record, and look a record up by its
// canonical link before building a new one. The core never updates
// or deletes.
type DocumentStore interface {
	// Insert persists one product record
	Insert(ctx context.Context, record interface{}) error

	// FindByLink reports whether a record with the given canonical
	// link already exists
	FindByLink(ctx context.Context, link string) (bool, error)

	// Close releases the underlying connection
	Close(ctx context.Context) error
}
