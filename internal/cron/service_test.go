package cron

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/MagnumMax/skyluxse-sub003/pkg/logger"
)

type fakeLock struct {
	acquired   bool
	acquireErr error
	releases   int
}

func (f *fakeLock) Acquire(context.Context) (bool, error) {
	return f.acquired, f.acquireErr
}

func (f *fakeLock) Release(context.Context) error {
	f.releases++
	return nil
}

type recordedJob struct {
	name string
	runs int
	err  error
}

func (j *recordedJob) Name() string { return j.name }

func (j *recordedJob) Run(context.Context) error {
	j.runs++
	return j.err
}

func testCronLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "test", Level: zerolog.Disabled})
}

func TestRunCycleExecutesAllJobs(t *testing.T) {
	first := &recordedJob{name: "first"}
	second := &recordedJob{name: "second", err: errors.New("boom")}
	third := &recordedJob{name: "third"}
	lock := &fakeLock{acquired: true}

	service, err := NewService(ServiceParams{
		Logger:   testCronLogger(),
		Registry: NewRegistry(first, second, third),
		Lock:     lock,
	})
	if err != nil {
		t.Fatalf("creating service: %v", err)
	}

	if err := service.runCycle(context.Background()); err != nil {
		t.Fatalf("run cycle: %v", err)
	}

	for _, job := range []*recordedJob{first, second, third} {
		if job.runs != 1 {
			t.Errorf("job %s ran %d times, want 1", job.name, job.runs)
		}
	}
	if lock.releases != 1 {
		t.Errorf("lock released %d times, want 1", lock.releases)
	}
}

func TestRunCycleSkipsWhenLockHeld(t *testing.T) {
	job := &recordedJob{name: "only"}
	lock := &fakeLock{acquired: false}

	service, err := NewService(ServiceParams{
		Logger:   testCronLogger(),
		Registry: NewRegistry(job),
		Lock:     lock,
	})
	if err != nil {
		t.Fatalf("creating service: %v", err)
	}

	if err := service.runCycle(context.Background()); err != nil {
		t.Fatalf("run cycle: %v", err)
	}
	if job.runs != 0 {
		t.Errorf("job ran %d times while lock was held elsewhere", job.runs)
	}
	if lock.releases != 0 {
		t.Errorf("lock released %d times without being acquired", lock.releases)
	}
}

func TestRunCycleReportsLockFailure(t *testing.T) {
	service, err := NewService(ServiceParams{
		Logger: testCronLogger(),
		Lock:   &fakeLock{acquireErr: errors.New("redis down")},
	})
	if err != nil {
		t.Fatalf("creating service: %v", err)
	}

	if err := service.runCycle(context.Background()); err == nil {
		t.Fatal("expected lock failure to surface")
	}
}

func TestRunStopsOnCancel(t *testing.T) {
	service, err := NewService(ServiceParams{
		Logger:   testCronLogger(),
		Lock:     &fakeLock{acquired: true},
		Interval: time.Hour,
	})
	if err != nil {
		t.Fatalf("creating service: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := service.Run(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("unexpected error: %v", err)
	}
}
