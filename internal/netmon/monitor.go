// Package netmon observes network reachability. Reachability is probed with a
// short TCP dial; callers decide what to do with a transition.
package netmon

import (
	"context"
	"net"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

const (
	// DefaultProbeAddress is a well-known anycast resolver, reachable from
	// most networks on 53/tcp.
	DefaultProbeAddress = "1.1.1.1:53"

	defaultProbeTimeout  = 3 * time.Second
	defaultProbeInterval = 15 * time.Second
)

// Dialer matches net.Dialer's DialContext, swapped out in tests.
type Dialer interface {
	DialContext(ctx context.Context, network, address string) (net.Conn, error)
}

// Monitor exposes the current reachability state and change notifications.
// With no probe address it stays optimistic and always reports online, so a
// missing platform facility never blocks reads.
type Monitor struct {
	addr     string
	interval time.Duration
	timeout  time.Duration
	dialer   Dialer
	logger   zerolog.Logger

	mu        sync.Mutex
	offline   bool
	listeners []func(offline bool)
	cancel    context.CancelFunc
	done      chan struct{}
}

type Option func(*Monitor)

func WithInterval(interval time.Duration) Option {
	return func(m *Monitor) { m.interval = interval }
}

func WithDialer(dialer Dialer) Option {
	return func(m *Monitor) { m.dialer = dialer }
}

func New(probeAddr string, logger zerolog.Logger, opts ...Option) *Monitor {
	m := &Monitor{
		addr:     probeAddr,
		interval: defaultProbeInterval,
		timeout:  defaultProbeTimeout,
		dialer:   &net.Dialer{},
		logger:   logger,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Offline is the point-in-time reachability check.
func (m *Monitor) Offline() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.offline
}

// OnChange registers a callback fired on every offline/online transition.
func (m *Monitor) OnChange(fn func(offline bool)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.listeners = append(m.listeners, fn)
}

// Check probes immediately, records the result, and returns the new offline
// state. Transitions fire the registered callbacks.
func (m *Monitor) Check(ctx context.Context) bool {
	offline := m.probe(ctx)
	m.setOffline(offline)
	return offline
}

// Start begins periodic probing until ctx is cancelled or Close is called.
func (m *Monitor) Start(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})

	m.mu.Lock()
	m.cancel = cancel
	m.done = done
	m.mu.Unlock()

	go func() {
		defer close(done)
		ticker := time.NewTicker(m.interval)
		defer ticker.Stop()

		m.Check(ctx)
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				m.Check(ctx)
			}
		}
	}()
}

func (m *Monitor) Close() {
	m.mu.Lock()
	cancel, done := m.cancel, m.done
	m.cancel, m.done = nil, nil
	m.mu.Unlock()

	if cancel != nil {
		cancel()
		<-done
	}
}

func (m *Monitor) probe(ctx context.Context) bool {
	if m.addr == "" {
		return false
	}

	ctx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()

	conn, err := m.dialer.DialContext(ctx, "tcp", m.addr)
	if err != nil {
		return true
	}
	_ = conn.Close()
	return false
}

func (m *Monitor) setOffline(offline bool) {
	m.mu.Lock()
	changed := m.offline != offline
	m.offline = offline
	listeners := append([]func(offline bool){}, m.listeners...)
	m.mu.Unlock()

	if !changed {
		return
	}
	m.logger.Debug().Bool("offline", offline).Msg("connectivity changed")
	for _, fn := range listeners {
		fn(offline)
	}
}
