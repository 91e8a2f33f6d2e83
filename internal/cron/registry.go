package cron

import "context"

// Job is one retention task executed during a worker cycle. Jobs are
// expected to tolerate repeated runs; a cycle may fire again before the
// previous data has aged past the cutoff.
type Job interface {
	Name() string
	Run(ctx context.Context) error
}

// Registry fixes the order retention jobs run in. Outbox pruning is
// registered before event pruning so delivery history disappears first.
type Registry struct {
	jobs []Job
}

func NewRegistry(jobs ...Job) *Registry {
	registry := &Registry{jobs: make([]Job, 0, len(jobs))}
	for _, job := range jobs {
		if job == nil {
			continue
		}
		registry.jobs = append(registry.jobs, job)
	}
	return registry
}

// Jobs returns the jobs in registration order.
func (r *Registry) Jobs() []Job {
	jobs := make([]Job, len(r.jobs))
	copy(jobs, r.jobs)
	return jobs
}
