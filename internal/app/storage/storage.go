/*
Package storage provides the durable key-value storage that keeps the portal session across
restarts of the client.

The session store writes three independent string entries (token, role, name). Backends only
need Get/Set/Delete on single keys; there is no transaction across keys and no cross-process
invalidation.
*/
package storage

import (
	"context"
	"errors"
	"fmt"
)

// Durable session keys.
const (
	KeyToken = "token"
	KeyRole  = "role"
	KeyName  = "name"
)

// SessionKeys lists the durable session keys in write order.
var SessionKeys = []string{KeyToken, KeyRole, KeyName}

// Backend names accepted by NewKV.
const (
	BackendFile   = "file"
	BackendMemory = "memory"
	BackendRedis  = "redis"
	BackendS3     = "s3"
)

// ErrUnknownBackend is returned by NewKV for an unsupported backend name.
var ErrUnknownBackend = errors.New("storage: unknown backend")

// KV is a durable string key-value store.
type KV interface {
	// Get returns the value for key. A missing key is ("", false, nil).
	Get(ctx context.Context, key string) (string, bool, error)

	// Set stores value under key, replacing any previous value.
	Set(ctx context.Context, key, value string) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
}

// ServiceConfig holds the configuration required to open a storage backend.
type ServiceConfig struct {
	Backend string

	// file
	Dir string

	// redis
	RedisAddr   string
	RedisPrefix string

	// s3
	S3BucketName      string
	S3Endpoint        string
	S3AccessKeyID     string
	S3SecretAccessKey string
	S3Prefix          string
}

// NewKV is the factory for KV backends. Backends that talk to a server verify connectivity
// before returning.
func NewKV(ctx context.Context, cfg ServiceConfig) (KV, error) {
	switch cfg.Backend {
	case BackendFile:
		return NewFileKV(cfg.Dir)
	case BackendMemory:
		return NewMemoryKV(), nil
	case BackendRedis:
		client, err := NewRedisClient(ctx, cfg.RedisAddr)
		if err != nil {
			return nil, err
		}
		return NewRedisKV(client, cfg.RedisPrefix), nil
	case BackendS3:
		return newS3KV(ctx, cfg)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, cfg.Backend)
	}
}
