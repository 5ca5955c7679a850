package pgxcasbin

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/casbin/casbin/v3"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sethvargo/go-retry"
	"go.uber.org/atomic"
)

const defaultChannel = "storefront_casbin_policy"

// Watcher reloads policies when another replica changes them.
//
// Update sends the local id as the NOTIFY payload; notifications carrying
// our own id are ignored.
type Watcher struct {
	mu       sync.RWMutex
	pool     *pgxpool.Pool
	channel  string
	localID  string
	callback func(string)
	cancel   context.CancelFunc
	closed   *atomic.Bool
	done     chan struct{}
}

// NewWatcher starts listening on channel (a default is used when empty).
// The listener reconnects with a capped fibonacci backoff.
func NewWatcher(ctx context.Context, pool *pgxpool.Pool, channel, localID string) (*Watcher, error) {
	if err := pool.Ping(ctx); err != nil {
		return nil, err
	}
	if channel == "" {
		channel = defaultChannel
	}

	listenCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	w := &Watcher{
		pool:    pool,
		channel: channel,
		localID: localID,
		cancel:  cancel,
		closed:  atomic.NewBool(false),
		done:    make(chan struct{}),
	}

	go func() {
		defer close(w.done)

		b := retry.WithCappedDuration(5*time.Second, retry.NewFibonacci(200*time.Millisecond))
		err := retry.Do(listenCtx, b, func(ctx context.Context) error {
			err := w.listen(ctx)
			if errors.Is(err, context.Canceled) {
				return nil
			}
			slog.Error("pgxcasbin failed to listen message", "channel", w.channel, "error", err)
			return retry.RetryableError(err)
		})
		if err != nil && !errors.Is(err, context.Canceled) {
			slog.Error("pgxcasbin listener stopped with error", "error", err)
		}
	}()

	return w, nil
}

// ReloadCallback returns a callback that reloads the enforcer's policies.
func ReloadCallback(e casbin.IEnforcer) func(string) {
	return func(string) {
		if err := e.LoadPolicy(); err != nil {
			slog.Error("pgxcasbin failed to reload policy", "error", err)
		}
	}
}

// SetUpdateCallback implements persist.Watcher.
func (w *Watcher) SetUpdateCallback(callback func(string)) error {
	w.mu.Lock()
	w.callback = callback
	w.mu.Unlock()
	return nil
}

// Update implements persist.Watcher by notifying the other replicas.
func (w *Watcher) Update() error {
	if w.closed.Load() {
		return nil
	}
	if _, err := w.pool.Exec(context.Background(), "SELECT pg_notify($1, $2)", w.channel, w.localID); err != nil {
		return errors.Join(ErrNotifyMessage, err)
	}
	return nil
}

// Close implements persist.Watcher.
func (w *Watcher) Close() {
	if w.closed.Swap(true) {
		return
	}
	w.cancel()
	<-w.done
}

func (w *Watcher) listen(ctx context.Context) error {
	conn, err := w.pool.Acquire(ctx)
	if err != nil {
		return err
	}
	defer conn.Release()

	if _, err := conn.Exec(ctx, fmt.Sprintf("LISTEN %q", w.channel)); err != nil {
		return errors.Join(ErrListenChannel, err)
	}

	for {
		n, err := conn.Conn().WaitForNotification(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return errors.Join(ErrWaitNotification, err)
		}
		if n.Payload == w.localID {
			continue
		}

		w.mu.RLock()
		cb := w.callback
		w.mu.RUnlock()
		if cb != nil {
			cb(n.Payload)
		}
	}
}
