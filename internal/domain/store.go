package domain

import (
	"context"
	"errors"
)

// ErrSettingNotFound is returned by Store.Setting when the named setting
// does not exist. Callers treat absence as a no-op, not a failure.
var ErrSettingNotFound = errors.New("setting not found")

// Store is the append-only ledger row store. Rows are never updated or
// deleted; Recent returns rows in store-native insertion order,
// oldest first.
type Store interface {
	Append(ctx context.Context, rec *Record) error
	Recent(ctx context.Context, limit int) ([]*Record, error)
	Setting(ctx context.Context, name string) (string, error)
	Categories(ctx context.Context) ([]Category, error)
}

// Category is one row of the user-extensible category taxonomy.
type Category struct {
	Name     string
	Keywords string
	Budget   string
	Color    string
}
