package service

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// WaitTimeout is the maximum time a client can wait for notifications
const WaitTimeout = 25 * time.Second

// WaitRegistry manages long-polling clients waiting for game state changes
type WaitRegistry struct {
	mu       sync.Mutex
	waiters  map[string][]*WaitRequest // gameID → waiting clients
	timeout  time.Duration
	shutdown chan struct{}
	closed   bool
	wg       sync.WaitGroup
}

// WaitRequest represents a single client waiting for game updates. Done is
// closed exactly once: on a change, timeout, game removal or shutdown.
type WaitRequest struct {
	GameID string
	done   chan struct{}
	once   sync.Once
}

func (r *WaitRequest) Done() <-chan struct{} { return r.done }

func (r *WaitRequest) release() {
	r.once.Do(func() { close(r.done) })
}

func NewWaitRegistry(timeout time.Duration) *WaitRegistry {
	if timeout <= 0 {
		timeout = WaitTimeout
	}
	return &WaitRegistry{
		waiters:  make(map[string][]*WaitRequest),
		timeout:  timeout,
		shutdown: make(chan struct{}),
	}
}

// RegisterWait registers a client to wait for the next change to gameID.
// The returned channel is closed when the client should re-read the game.
func (w *WaitRegistry) RegisterWait(ctx context.Context, gameID string) <-chan struct{} {
	req := &WaitRequest{GameID: gameID, done: make(chan struct{})}

	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		req.release()
		return req.done
	}
	w.waiters[gameID] = append(w.waiters[gameID], req)
	w.wg.Add(1)
	w.mu.Unlock()

	go func() {
		defer w.wg.Done()
		timer := time.NewTimer(w.timeout)
		defer timer.Stop()
		select {
		case <-ctx.Done():
		case <-req.done:
		case <-timer.C:
		case <-w.shutdown:
		}
		req.release()
		w.removeWaiter(gameID, req)
	}()

	return req.done
}

// NotifyGame wakes every client waiting on gameID.
func (w *WaitRegistry) NotifyGame(gameID string) {
	w.mu.Lock()
	waitList := w.waiters[gameID]
	delete(w.waiters, gameID)
	w.mu.Unlock()

	for _, req := range waitList {
		req.release()
	}
}

// RemoveGame wakes and drops all waiters for a game (called before game deletion)
func (w *WaitRegistry) RemoveGame(gameID string) {
	w.NotifyGame(gameID)
}

// Waiting returns the number of clients currently waiting on gameID.
func (w *WaitRegistry) Waiting(gameID string) int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.waiters[gameID])
}

// Shutdown releases every waiter and waits for their goroutines.
func (w *WaitRegistry) Shutdown(timeout time.Duration) error {
	w.mu.Lock()
	if !w.closed {
		w.closed = true
		close(w.shutdown)
	}
	w.mu.Unlock()

	done := make(chan struct{})
	go func() {
		w.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-time.After(timeout):
		return fmt.Errorf("wait registry shutdown timed out")
	}
}

func (w *WaitRegistry) removeWaiter(gameID string, req *WaitRequest) {
	w.mu.Lock()
	defer w.mu.Unlock()

	waitList := w.waiters[gameID]
	for i, waiter := range waitList {
		if waiter == req {
			w.waiters[gameID] = append(waitList[:i], waitList[i+1:]...)
			break
		}
	}
	if len(w.waiters[gameID]) == 0 {
		delete(w.waiters, gameID)
	}
}
