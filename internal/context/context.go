// Package context carries the centrally constructed CLI structures through
// context.Context. The memoized index, the workspace configuration, the
// driver cache and the tool runner are created once per invocation and
// injected here, so every command (and every test) works against an
// explicit, isolated context instead of hidden globals.
package context

import (
	"context"
	"sync"

	"github.com/spf13/cobra"

	"github.com/dynalint/dynalint/internal/driver"
	"github.com/dynalint/dynalint/internal/index"
	"github.com/dynalint/dynalint/internal/toolexec"
	"github.com/dynalint/dynalint/internal/wsconfig"
)

type ctxKey string

const key ctxKey = "github.com/dynalint/dynalint/internal/context"

// Context is the dynalint command-line context. It holds pointers to
// structures that are created once and shared by every command, and is
// itself passed as a pointer so lookups stay O(1).
type Context struct {
	mu sync.RWMutex

	// configuration is the loaded workspace configuration, always set
	// before any command runs (defaults apply when no file exists).
	configuration *wsconfig.Config

	// workingDir is the directory the workspace configuration was loaded
	// from and the directory dispatched checks run in.
	workingDir string

	// index is the memoized name -> toolchain -> locations view of all
	// discoverable prebuilt artifacts for this invocation.
	index *index.Index

	// drivers resolves and builds toolchain-matched driver binaries.
	drivers *driver.Cache

	// runner executes external build and check tools. Tests substitute a
	// recording stub here.
	runner toolexec.Runner
}

// WithConfiguration stores the workspace configuration and working
// directory. Retrieve them with [FromContext] and [Context.Configuration].
func WithConfiguration(ctx context.Context, cfg *wsconfig.Config, workingDir string) context.Context {
	ctx, c := retrieveOrCreate(ctx)
	c.mu.Lock()
	defer c.mu.Unlock()
	c.configuration = cfg
	c.workingDir = workingDir
	return ctx
}

// WithIndex stores the invocation's artifact index.
func WithIndex(ctx context.Context, ix *index.Index) context.Context {
	ctx, c := retrieveOrCreate(ctx)
	c.mu.Lock()
	defer c.mu.Unlock()
	c.index = ix
	return ctx
}

// WithDriverCache stores the driver cache.
func WithDriverCache(ctx context.Context, cache *driver.Cache) context.Context {
	ctx, c := retrieveOrCreate(ctx)
	c.mu.Lock()
	defer c.mu.Unlock()
	c.drivers = cache
	return ctx
}

// WithRunner stores the tool runner.
func WithRunner(ctx context.Context, runner toolexec.Runner) context.Context {
	ctx, c := retrieveOrCreate(ctx)
	c.mu.Lock()
	defer c.mu.Unlock()
	c.runner = runner
	return ctx
}

// Register ensures the command's context contains a Context object.
func Register(cmd *cobra.Command) {
	ctx, c := retrieveOrCreate(cmd.Context())
	c.mu.Lock()
	defer c.mu.Unlock()
	cmd.SetContext(ctx)
}

func (c *Context) Configuration() *wsconfig.Config {
	if c == nil {
		return nil
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.configuration
}

func (c *Context) WorkingDir() string {
	if c == nil {
		return ""
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.workingDir
}

func (c *Context) Index() *index.Index {
	if c == nil {
		return nil
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.index
}

func (c *Context) Drivers() *driver.Cache {
	if c == nil {
		return nil
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.drivers
}

func (c *Context) Runner() toolexec.Runner {
	if c == nil {
		return nil
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.runner
}

// FromContext retrieves the CLI context. Within a command registered with
// [Register] it is always present; elsewhere it may be nil.
func FromContext(ctx context.Context) *Context {
	if ctx == nil {
		return nil
	}
	if v, ok := ctx.Value(key).(*Context); ok {
		return v
	}
	return nil
}

// WithContext stores an existing CLI context.
func WithContext(ctx context.Context, c *Context) context.Context {
	if c == nil {
		return nil
	}
	return context.WithValue(ctx, key, c)
}

func retrieveOrCreate(ctx context.Context) (context.Context, *Context) {
	if ctx == nil {
		ctx = context.Background()
	}
	c := FromContext(ctx)
	if c == nil {
		c = &Context{}
		ctx = WithContext(ctx, c)
	}
	return ctx, c
}
