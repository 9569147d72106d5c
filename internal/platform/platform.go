// Package platform bundles the storage, key-value and AI capabilities and
// tracks whether they are ready to serve.
package platform

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/singleflight"

	"resume-review/internal/llm"
	"resume-review/internal/shared/server/respond"
	"resume-review/internal/shared/storage/kv"
	"resume-review/internal/shared/storage/object"
	"resume-review/internal/shared/telemetry"
)

// Capability ports consumed by the pipeline.
type (
	FileStore   = object.Store
	KVStore     = kv.Store
	ChatService = llm.Client
)

// Pinger is implemented by backends that can verify connectivity.
type Pinger interface {
	Ping(ctx context.Context) error
}

// State is the init lifecycle state.
type State string

const (
	StateUninitialized State = "uninitialized"
	StateInitializing  State = "initializing"
	StateReady         State = "ready"
	StateError         State = "error"
)

// ErrNotReady is returned by Ready before a successful Init.
var ErrNotReady = errors.New("platform not ready")

// Client is the capability set with its init lifecycle.
type Client struct {
	Files FileStore
	KV    KVStore
	AI    ChatService

	mu     sync.Mutex
	state  State
	err    error
	flight singleflight.Group
}

// New returns an uninitialized client.
func New(files FileStore, store KVStore, ai ChatService) *Client {
	return &Client{Files: files, KV: store, AI: ai, state: StateUninitialized}
}

// Init pings every backend that implements Pinger. Concurrent callers share
// the attempt in flight. Once ready, later calls return immediately; after a
// failure the next call tries again.
func (c *Client) Init(ctx context.Context) error {
	if c.State() == StateReady {
		return nil
	}
	ch := c.flight.DoChan("init", func() (any, error) {
		return nil, c.attempt(ctx)
	})
	select {
	case res := <-ch:
		return res.Err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (c *Client) attempt(ctx context.Context) error {
	c.mu.Lock()
	if c.state == StateReady {
		c.mu.Unlock()
		return nil
	}
	c.state = StateInitializing
	c.mu.Unlock()

	err := c.ping(ctx)

	c.mu.Lock()
	c.err = err
	if err != nil {
		c.state = StateError
	} else {
		c.state = StateReady
	}
	c.mu.Unlock()

	if err != nil {
		telemetry.Error("platform.init_failed", map[string]any{"err": err})
	} else {
		telemetry.Info("platform.ready", nil)
	}
	return err
}

func (c *Client) ping(ctx context.Context) error {
	backends := []struct {
		name string
		v    any
	}{
		{"files", c.Files},
		{"kv", c.KV},
		{"ai", c.AI},
	}
	for _, b := range backends {
		if b.v == nil {
			return fmt.Errorf("%s backend is not configured", b.name)
		}
		p, ok := b.v.(Pinger)
		if !ok {
			continue
		}
		if err := p.Ping(ctx); err != nil {
			return fmt.Errorf("ping %s: %w", b.name, err)
		}
	}
	return nil
}

// State returns the lifecycle state.
func (c *Client) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state == "" {
		return StateUninitialized
	}
	return c.state
}

// Err returns the init error, if any.
func (c *Client) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.err
}

// Ready returns nil once Init succeeded.
func (c *Client) Ready() error {
	if c.State() != StateReady {
		return ErrNotReady
	}
	return nil
}

// RequireReady answers 503 until the client is ready.
func RequireReady(c *Client) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		if err := c.Ready(); err != nil {
			respond.Error(ctx, http.StatusServiceUnavailable, "platform_not_ready", "platform is "+string(c.State()), nil)
			return
		}
		ctx.Next()
	}
}
