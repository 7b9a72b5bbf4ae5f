package main

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"golang.org/x/time/rate"

	"complaintportal/internal/app/api"
	"complaintportal/internal/app/gate"
	"complaintportal/internal/app/identity"
	"complaintportal/internal/app/session"
	"complaintportal/internal/app/storage"
	"complaintportal/internal/configs"
)

// runtime is the wired client: durable storage, remote client and session store.
type runtime struct {
	kv     storage.KV
	client *api.Client
	store  *session.Store
}

func storageConfig(cfg *configs.AppConfig) storage.ServiceConfig {
	return storage.ServiceConfig{
		Backend:           cfg.Storage,
		Dir:               cfg.SessionDir,
		RedisAddr:         cfg.RedisAddr,
		RedisPrefix:       cfg.RedisPrefix,
		S3BucketName:      cfg.S3BucketName,
		S3Endpoint:        cfg.S3Endpoint,
		S3AccessKeyID:     cfg.S3AccessKeyID,
		S3SecretAccessKey: cfg.S3SecretAccessKey,
		S3Prefix:          cfg.S3Prefix,
	}
}

func openRuntime(ctx context.Context, cfg *configs.AppConfig) (*runtime, error) {
	kv, err := storage.NewKV(ctx, storageConfig(cfg))
	if err != nil {
		return nil, fmt.Errorf("open session storage: %w", err)
	}

	client := api.New(cfg.APIURL, api.WithRateLimit(rate.Limit(cfg.APIRate), cfg.APIBurst))
	store := session.New(kv, client)
	client.UseCredentials(store)

	return &runtime{kv: kv, client: client, store: store}, nil
}

func (rt *runtime) Close() error {
	if c, ok := rt.kv.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

// run opens the runtime, settles the session store and calls fn with a context bounded by
// the request timeout.
func (a *cliApp) run(cmd *cobra.Command, fn func(ctx context.Context, rt *runtime) error) error {
	ctx, cancel := context.WithTimeout(cmd.Context(), a.cfg.RequestTimeout)
	defer cancel()

	rt, err := openRuntime(ctx, a.cfg)
	if err != nil {
		return err
	}
	defer rt.Close()

	// A failed startup read settles the store logged out and has been logged.
	_ = rt.store.Initialize(ctx)

	return fn(ctx, rt)
}

// runAs is run behind the access gate. A denied command exits with code 3.
func (a *cliApp) runAs(cmd *cobra.Command, required identity.Role, fn func(ctx context.Context, rt *runtime) error) error {
	return a.run(cmd, func(ctx context.Context, rt *runtime) error {
		if err := gate.Require(rt.store, required); err != nil {
			if required != identity.RoleNone {
				err = fmt.Errorf("%w (%s account required)", err, required)
			}
			return &exitError{code: exitAccessDenied, err: err}
		}
		return fn(ctx, rt)
	})
}
