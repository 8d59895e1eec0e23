// Package jobmgr runs named background jobs with cancellation and in-memory
// tracking of what is running.
//
// Typical usage:
//
//	jm := jobmgr.NewManager(ctx, func(name string, err error) {
//	    log.Println("job finished:", name, err)
//	})
//
//	jm.Restart("nicknames", func(ctx context.Context) error {
//	    // do work until ctx is cancelled
//	    return nil
//	})
//
//	// on shutdown
//	jm.Shutdown()
//
// Jobs run in separate goroutines and are removed on completion.
package jobmgr

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"
)

// Job represents a running unit of work.
type Job struct {
	Name   string
	Cancel context.CancelFunc

	done chan struct{}
}

// StatusReporter receives the outcome of every finished job. err is nil on
// success and context.Canceled when the job was stopped or replaced.
type StatusReporter func(name string, err error)

// Manager orchestrates starting, stopping and tracking jobs.
// It is safe for concurrent use.
type Manager struct {
	mu       sync.Mutex
	parent   context.Context
	jobs     map[string]*Job
	wg       sync.WaitGroup
	Reporter StatusReporter
}

// NewManager creates a Manager whose jobs are cancelled when parent is.
// The reporter callback may be nil.
func NewManager(parent context.Context, reporter StatusReporter) *Manager {
	if parent == nil {
		parent = context.Background()
	}
	return &Manager{
		parent:   parent,
		jobs:     make(map[string]*Job),
		Reporter: reporter,
	}
}

// StartAsync runs a job in a separate goroutine and returns immediately.
// If a job with the same name is already running, an error is returned.
func (m *Manager) StartAsync(name string, runner func(ctx context.Context) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.jobs[name]; exists {
		return fmt.Errorf("job '%s' is already running", name)
	}
	m.start(name, runner)
	return nil
}

// Restart cancels a running job with the same name, if any, and starts runner
// in its place.
func (m *Manager) Restart(name string, runner func(ctx context.Context) error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if old, ok := m.jobs[name]; ok {
		old.Cancel()
		delete(m.jobs, name)
	}
	m.start(name, runner)
}

// start must be called with m.mu held.
func (m *Manager) start(name string, runner func(ctx context.Context) error) {
	ctx, cancel := context.WithCancel(m.parent)
	job := &Job{Name: name, Cancel: cancel, done: make(chan struct{})}
	m.jobs[name] = job

	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		defer close(job.done)
		defer cancel()

		err := runner(ctx)
		m.report(name, err)

		m.mu.Lock()
		if m.jobs[name] == job {
			delete(m.jobs, name)
		}
		m.mu.Unlock()
	}()
}

// Stop cancels a running job by name.
// If the job is not running, an error is returned.
func (m *Manager) Stop(name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	job, ok := m.jobs[name]
	if !ok {
		return fmt.Errorf("job '%s' not running", name)
	}

	job.Cancel()
	delete(m.jobs, name)
	return nil
}

// Shutdown cancels every job and waits for all of them to return.
func (m *Manager) Shutdown() {
	m.mu.Lock()
	for name, job := range m.jobs {
		job.Cancel()
		delete(m.jobs, name)
	}
	m.mu.Unlock()
	m.wg.Wait()
}

// Wait blocks until every started job has returned, without cancelling any.
func (m *Manager) Wait() {
	m.wg.Wait()
}

// List returns the sorted names of active jobs.
func (m *Manager) List() []string {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]string, 0, len(m.jobs))
	for k := range m.jobs {
		out = append(out, k)
	}
	slices.Sort(out)
	return out
}

// Status returns a human-readable summary of active jobs.
// Example:
//
//	"Running jobs: mapping-report, nicknames"
//
// If none are running: "No jobs are running."
func (m *Manager) Status() string {
	active := m.List()
	if len(active) == 0 {
		return "No jobs are running."
	}
	return fmt.Sprintf("Running jobs: %s", strings.Join(active, ", "))
}

func (m *Manager) report(name string, err error) {
	if m.Reporter != nil {
		m.Reporter(name, err)
	}
}
