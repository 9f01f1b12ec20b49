package cachestore

import (
	"context"
)

// Short-lived cache of string lists (eg, the admin user IDs of a group chat), namespaced by name.
//
// A miss is reported with ok=false; an empty list is a valid cached value.
type CacheStore interface {
	Get(ctx context.Context, name, key string) (vals []string, ok bool, err error)
	Set(ctx context.Context, name, key string, vals []string) error
	Purge(ctx context.Context, name, key string) error
}
