package main

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/MagnumMax/skyluxse-sub003/pkg/config"
	"github.com/MagnumMax/skyluxse-sub003/pkg/logger"
	"github.com/MagnumMax/skyluxse-sub003/pkg/outbox"
)

type fakePinger struct {
	err error
}

func (f fakePinger) Ping(context.Context) error {
	return f.err
}

type fakeRunner struct {
	results []runResult
	calls   int
	done    chan struct{}
}

type runResult struct {
	stats outbox.Stats
	err   error
}

func (f *fakeRunner) RunBatch(context.Context) (outbox.Stats, error) {
	if f.calls >= len(f.results) {
		if f.done != nil {
			select {
			case <-f.done:
			default:
				close(f.done)
			}
		}
		return outbox.Stats{}, nil
	}
	result := f.results[f.calls]
	f.calls++
	return result.stats, result.err
}

func newTestWorker(t *testing.T, db pinger, runner batchRunner) *Service {
	t.Helper()
	cfg := &config.Config{}
	cfg.Outbox.PollIntervalMS = 1

	service, err := NewService(ServiceParams{
		Config:     cfg,
		Logger:     logger.New(logger.Options{ServiceName: "test", Level: zerolog.Disabled}),
		DB:         db,
		Dispatcher: runner,
	})
	if err != nil {
		t.Fatalf("creating service: %v", err)
	}
	return service
}

func TestRunStopsWhenDatabaseIsDown(t *testing.T) {
	service := newTestWorker(t, fakePinger{err: errors.New("connection refused")}, &fakeRunner{})

	err := service.Run(context.Background())
	if err == nil {
		t.Fatal("expected readiness failure")
	}
}

func TestRunStopsOnContextCancel(t *testing.T) {
	runner := &fakeRunner{done: make(chan struct{})}
	service := newTestWorker(t, fakePinger{}, runner)

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() {
		errCh <- service.Run(ctx)
	}()

	<-runner.done
	cancel()

	select {
	case err := <-errCh:
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("unexpected error: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("run did not stop after cancel")
	}
}

func TestRunContinuesAfterBatchError(t *testing.T) {
	runner := &fakeRunner{
		results: []runResult{
			{err: errors.New("claim failed")},
			{stats: outbox.Stats{Claimed: 1, Succeeded: 1}},
		},
		done: make(chan struct{}),
	}
	service := newTestWorker(t, fakePinger{}, runner)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	errCh := make(chan error, 1)
	go func() {
		errCh <- service.Run(ctx)
	}()

	select {
	case <-runner.done:
	case <-time.After(5 * time.Second):
		t.Fatal("worker never recovered from the batch error")
	}
	cancel()
	<-errCh

	if runner.calls != len(runner.results) {
		t.Errorf("calls = %d, want %d", runner.calls, len(runner.results))
	}
}

func TestNextBackoffDoublesUpToCap(t *testing.T) {
	base := 500 * time.Millisecond
	backoff := base
	for i := 0; i < 10; i++ {
		backoff = nextBackoff(backoff, base, maxBackoff)
	}
	if backoff != maxBackoff {
		t.Errorf("backoff = %v, want cap %v", backoff, maxBackoff)
	}
	if got := nextBackoff(base, base, maxBackoff); got != 2*base {
		t.Errorf("first step = %v, want %v", got, 2*base)
	}
}

func TestWithJitterNeverShrinks(t *testing.T) {
	base := 100 * time.Millisecond
	for i := 0; i < 50; i++ {
		got := withJitter(base)
		if got < base || got > base+jitterWindow {
			t.Fatalf("jittered value %v outside [%v, %v]", got, base, base+jitterWindow)
		}
	}
	if withJitter(0) != 0 {
		t.Error("zero duration should stay zero")
	}
}
