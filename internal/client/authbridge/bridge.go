// Package authbridge routes "the server rejected our credentials" events
// from the API client to whatever the shell registered.
package authbridge

import (
	"context"
	"sync"
	"time"
)

// DefaultLogoutDelay gives in-flight output a moment before the session
// is torn down.
const DefaultLogoutDelay = 500 * time.Millisecond

// Bridge holds at most one handler. The zero value is ready to use.
type Bridge struct {
	mu      sync.RWMutex
	handler func()
	wg      sync.WaitGroup
}

func New() *Bridge {
	return &Bridge{}
}

// SetHandler replaces the current handler. nil clears it.
func (b *Bridge) SetHandler(fn func()) {
	b.mu.Lock()
	b.handler = fn
	b.mu.Unlock()
}

// Signal runs the current handler on its own goroutine and returns
// immediately. It does nothing when no handler is set.
func (b *Bridge) Signal() {
	b.mu.RLock()
	fn := b.handler
	b.mu.RUnlock()

	if fn == nil {
		return
	}
	b.wg.Add(1)
	go func() {
		defer b.wg.Done()
		fn()
	}()
}

// Wait blocks until every handler started by Signal has returned.
func (b *Bridge) Wait() {
	b.wg.Wait()
}

// Logouter is the part of the session store the logout handler needs.
type Logouter interface {
	Logout(ctx context.Context) error
}

// LogoutHandler returns the standard handler: wait delay, clear the
// session, then call navigate. Errors from Logout are passed to onErr
// when it is non-nil; navigate still runs.
func LogoutHandler(store Logouter, delay time.Duration, navigate func(), onErr func(error)) func() {
	return func() {
		if delay > 0 {
			time.Sleep(delay)
		}
		if err := store.Logout(context.Background()); err != nil && onErr != nil {
			onErr(err)
		}
		if navigate != nil {
			navigate()
		}
	}
}
