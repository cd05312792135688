// internal/scheduler/scheduler.go
// Package scheduler maintains exactly one repeating schedule per named
// job and runs a single bounded worker over a durable RabbitMQ queue.
package scheduler

import (
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"compliancehub/internal/messaging"
	"compliancehub/internal/model"
)

// JobStore persists repeatable-job definitions.
type JobStore interface {
	DeleteRecurringJobs() error
	InsertRecurringJob(job model.RecurringJob) error
}

// Publisher enqueues job trigger messages.
type Publisher interface {
	Publish(queueName string, body []byte) error
}

// Scheduler owns the cron registry. It is constructed explicitly and
// shut down by the application's startup sequence; a single replica
// must run it (delete-then-recreate registration is not safe under
// concurrent schedulers).
type Scheduler struct {
	cron  *cron.Cron
	store JobStore
	queue Publisher

	mu      sync.Mutex
	entries []cron.EntryID
}

func NewScheduler(store JobStore, queue Publisher) *Scheduler {
	return &Scheduler{
		cron:  cron.New(cron.WithChain(cron.Recover(cron.DefaultLogger))),
		store: store,
		queue: queue,
	}
}

// ScheduleAll idempotently (re-)registers the fixed job set: existing
// persisted definitions are deleted and re-created, and any cron
// entries from a prior call are removed first. Safe to call on every
// process start.
func (s *Scheduler) ScheduleAll() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.store.DeleteRecurringJobs(); err != nil {
		return fmt.Errorf("failed to clear recurring jobs: %w", err)
	}
	for _, id := range s.entries {
		s.cron.Remove(id)
	}
	s.entries = s.entries[:0]

	for _, def := range Definitions() {
		if err := s.store.InsertRecurringJob(model.RecurringJob{
			Name:     def.Name,
			CronExpr: def.CronExpr,
		}); err != nil {
			return fmt.Errorf("failed to register job %s: %w", def.Name, err)
		}

		name := def.Name
		id, err := s.cron.AddFunc(def.CronExpr, func() {
			if err := s.Enqueue(name); err != nil {
				log.Printf("[Scheduler] Failed to enqueue job %s: %v", name, err)
			}
		})
		if err != nil {
			return fmt.Errorf("failed to schedule job %s: %w", def.Name, err)
		}
		s.entries = append(s.entries, id)
		log.Printf("[Scheduler] Registered job %s (%s)", def.Name, def.CronExpr)
	}
	return nil
}

// Enqueue publishes a job trigger onto the durable jobs queue. Used by
// cron fires and by the manual-trigger API.
func (s *Scheduler) Enqueue(name string) error {
	if !KnownJob(name) {
		return fmt.Errorf("unknown job %q", name)
	}
	body, err := json.Marshal(JobMessage{Name: name, FiredAt: time.Now()})
	if err != nil {
		return fmt.Errorf("failed to marshal job message: %w", err)
	}
	return s.queue.Publish(messaging.JobsQueue, body)
}

// EntryCount returns the number of live cron registrations.
func (s *Scheduler) EntryCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// Start begins firing schedules.
func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop halts the cron loop and waits for any in-flight fire callback.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
	log.Printf("[Scheduler] Stopped")
}
