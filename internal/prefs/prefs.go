// Package prefs is a scoped, durable key-value surface for small pieces of
// client state. Every backend applies an Edit atomically: readers observe
// either all of its changes or none of them.
package prefs

import (
	"context"
	"fmt"
	"strconv"

	"github.com/redis/go-redis/v9"
)

// Values is a point-in-time copy of a scope's entries.
type Values map[string]string

// String returns the value stored under key.
func (v Values) String(key string) (string, bool) {
	s, ok := v[key]
	return s, ok
}

// Bool returns the boolean stored under key, false when absent or malformed.
func (v Values) Bool(key string) bool {
	s, ok := v[key]
	if !ok {
		return false
	}
	b, err := strconv.ParseBool(s)
	return err == nil && b
}

// Edit batches changes for a single atomic commit. Clear, when set, is
// applied before the puts.
type Edit struct {
	clear bool
	puts  map[string]string
}

func NewEdit() *Edit {
	return &Edit{puts: make(map[string]string)}
}

func (e *Edit) PutString(key, value string) *Edit {
	e.puts[key] = value
	return e
}

func (e *Edit) PutBool(key string, value bool) *Edit {
	e.puts[key] = strconv.FormatBool(value)
	return e
}

// Clear drops every entry in the scope.
func (e *Edit) Clear() *Edit {
	e.clear = true
	e.puts = make(map[string]string)
	return e
}

// apply returns the result of committing e on top of v.
func (e *Edit) apply(v Values) Values {
	out := make(Values, len(v)+len(e.puts))
	if !e.clear {
		for k, val := range v {
			out[k] = val
		}
	}
	for k, val := range e.puts {
		out[k] = val
	}
	return out
}

// Store is implemented by every backend.
type Store interface {
	Snapshot(ctx context.Context) (Values, error)
	Commit(ctx context.Context, e *Edit) error
	Close() error
}

// Backend names accepted by Open.
const (
	BackendFile   = "file"
	BackendSQLite = "sqlite"
	BackendRedis  = "redis"
)

type Options struct {
	Backend string
	// Path is the file (file backend) or database (sqlite backend) location.
	// Several scopes may share one Path.
	Path string
	// Scope namespaces the entries; it plays the role of a preferences file name.
	Scope string
	Redis *redis.Client
}

// Open returns the backend selected by opts.
func Open(ctx context.Context, opts Options) (Store, error) {
	if opts.Scope == "" {
		return nil, fmt.Errorf("prefs: scope is required")
	}
	switch opts.Backend {
	case "", BackendFile:
		return NewFileStore(opts.Path, opts.Scope)
	case BackendSQLite:
		return OpenSQLite(ctx, opts.Path, opts.Scope)
	case BackendRedis:
		if opts.Redis == nil {
			return nil, fmt.Errorf("prefs: redis backend requires a client")
		}
		return NewRedisStore(opts.Redis, opts.Scope), nil
	default:
		return nil, fmt.Errorf("prefs: unknown backend %q", opts.Backend)
	}
}
