// Package kv is the persistence port behind the shopper state stores. Values are
// JSON-encoded under string keys.
package kv

import (
	"context"
	"errors"
)

// ErrNotFound is returned by Load when the key holds no value.
var ErrNotFound = errors.New("kv: key not found")

// Repository is a durable key-value store of JSON values.
type Repository interface {
	// Load decodes the value stored under key into dst.
	Load(ctx context.Context, key string, dst any) error
	// Save encodes value and stores it under key.
	Save(ctx context.Context, key string, value any) error
	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
}

// LoadOr returns the value under key, or def when the repository is nil, the key is
// missing, or the stored value cannot be decoded. The error reports why def was used.
func LoadOr[T any](ctx context.Context, repo Repository, key string, def T) (T, error) {
	if repo == nil {
		return def, nil
	}
	var v T
	if err := repo.Load(ctx, key, &v); err != nil {
		if errors.Is(err, ErrNotFound) {
			return def, nil
		}
		return def, err
	}
	return v, nil
}
