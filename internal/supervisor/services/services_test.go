// Shelfsense - Retail Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shelfsense

package services

import (
	"context"
	"errors"
	"net/http"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/thejerf/suture/v4"
)

func testLogger() zerolog.Logger {
	return zerolog.Nop()
}

// mockHTTPServer is a test double for HTTPServer.
type mockHTTPServer struct {
	listenErr     error
	shutdownErr   error
	shutdownCount atomic.Int32
	started       chan struct{}
	stopCh        chan struct{}
}

func newMockHTTPServer() *mockHTTPServer {
	return &mockHTTPServer{
		started: make(chan struct{}, 1),
		stopCh:  make(chan struct{}),
	}
}

func (m *mockHTTPServer) ListenAndServe() error {
	select {
	case m.started <- struct{}{}:
	default:
	}
	if m.listenErr != nil {
		return m.listenErr
	}
	<-m.stopCh
	return http.ErrServerClosed
}

func (m *mockHTTPServer) Shutdown(context.Context) error {
	m.shutdownCount.Add(1)
	close(m.stopCh)
	return m.shutdownErr
}

func TestHTTPServerServiceImplementsService(t *testing.T) {
	var _ suture.Service = (*HTTPServerService)(nil)
	var _ suture.Service = (*JanitorService)(nil)
}

func TestHTTPServerServiceGracefulShutdown(t *testing.T) {
	t.Parallel()

	server := newMockHTTPServer()
	svc := NewHTTPServerService(server, ":0", time.Second, testLogger())

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- svc.Serve(ctx) }()

	<-server.started
	cancel()

	select {
	case err := <-errCh:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("Serve() error = %v, want context.Canceled", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Serve() did not return after cancel")
	}
	if got := server.shutdownCount.Load(); got != 1 {
		t.Errorf("Shutdown called %d times, want 1", got)
	}
}

func TestHTTPServerServiceListenFailure(t *testing.T) {
	t.Parallel()

	server := newMockHTTPServer()
	server.listenErr = errors.New("address already in use")
	svc := NewHTTPServerService(server, ":0", time.Second, testLogger())

	err := svc.Serve(context.Background())
	if err == nil || !errors.Is(err, server.listenErr) {
		t.Errorf("Serve() error = %v, want wrapped listen error", err)
	}
	if svc.String() != "http-server" {
		t.Errorf("String() = %q", svc.String())
	}
}

type fakeSweeper struct {
	calls atomic.Int32
	n     int
	err   error
}

func (f *fakeSweeper) Sweep(context.Context) (int, error) {
	f.calls.Add(1)
	return f.n, f.err
}

type fakeExpirer struct {
	calls atomic.Int32
	now   atomic.Value
	n     int
}

func (f *fakeExpirer) ExpireStale(_ context.Context, now time.Time) (int, error) {
	f.calls.Add(1)
	f.now.Store(now)
	return f.n, nil
}

func TestJanitorRunOnce(t *testing.T) {
	t.Parallel()

	fixed := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	sweeper := &fakeSweeper{n: 4}
	expirer := &fakeExpirer{n: 2}
	j := NewJanitorService(sweeper, expirer, JanitorConfig{}, testLogger())
	j.now = func() time.Time { return fixed }

	swept, expired := j.RunOnce(context.Background())
	if swept != 4 || expired != 2 {
		t.Errorf("RunOnce() = (%d, %d), want (4, 2)", swept, expired)
	}
	if got, _ := expirer.now.Load().(time.Time); !got.Equal(fixed) {
		t.Errorf("ExpireStale now = %v, want %v", got, fixed)
	}
	if j.config.Interval != 5*time.Minute {
		t.Errorf("default interval = %v, want 5m", j.config.Interval)
	}
}

func TestJanitorContinuesAfterSweepFailure(t *testing.T) {
	t.Parallel()

	sweeper := &fakeSweeper{err: errors.New("store: unavailable")}
	expirer := &fakeExpirer{n: 1}
	j := NewJanitorService(sweeper, expirer, JanitorConfig{}, testLogger())

	if _, expired := j.RunOnce(context.Background()); expired != 1 {
		t.Errorf("expired = %d, want 1 despite sweep failure", expired)
	}

	nilJanitor := NewJanitorService(nil, nil, JanitorConfig{}, testLogger())
	if swept, expired := nilJanitor.RunOnce(context.Background()); swept != 0 || expired != 0 {
		t.Errorf("RunOnce() with no collaborators = (%d, %d), want (0, 0)", swept, expired)
	}
}

func TestJanitorServeTicks(t *testing.T) {
	t.Parallel()

	sweeper := &fakeSweeper{}
	j := NewJanitorService(sweeper, nil, JanitorConfig{Interval: 10 * time.Millisecond, RunOnStart: true}, testLogger())

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- j.Serve(ctx) }()

	deadline := time.After(2 * time.Second)
	for sweeper.calls.Load() < 3 {
		select {
		case <-deadline:
			t.Fatalf("sweep ran %d times, want at least 3", sweeper.calls.Load())
		case <-time.After(5 * time.Millisecond):
		}
	}

	cancel()
	if err := <-errCh; !errors.Is(err, context.Canceled) {
		t.Errorf("Serve() error = %v, want context.Canceled", err)
	}
}
