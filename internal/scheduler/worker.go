// internal/scheduler/worker.go
package scheduler

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/streadway/amqp"

	"compliancehub/internal/messaging"
	"compliancehub/internal/metrics"
)

// Engine is the reconciliation contract the worker dispatches to.
type Engine interface {
	CheckOverdue(ctx context.Context) (int, error)
	TrialReminders(ctx context.Context) (int, error)
	SyncAuthority(ctx context.Context) (int, int, error)
}

const consumerTag = "billing-worker"

// Worker is the single job executor. Concurrency is deliberately one
// in-flight job: overlapping reconciliation passes could race on
// read-modify-write status updates, so throughput comes from splitting
// work across job names instead.
type Worker struct {
	rabbit *messaging.RabbitClient
	engine Engine
	ch     *amqp.Channel

	stopCh chan struct{}
	doneCh chan struct{}

	maxAttempts int
	backoffBase time.Duration
}

func NewWorker(rabbit *messaging.RabbitClient, engine Engine) *Worker {
	return &Worker{
		rabbit:      rabbit,
		engine:      engine,
		stopCh:      make(chan struct{}),
		doneCh:      make(chan struct{}),
		maxAttempts: 3,
		backoffBase: 2 * time.Second,
	}
}

// Start opens a dedicated channel with prefetch 1 and begins consuming
// the jobs queue.
func (w *Worker) Start() error {
	ch, err := w.rabbit.GetConnection().Channel()
	if err != nil {
		return fmt.Errorf("failed to open worker channel: %w", err)
	}
	if err := ch.Qos(1, 0, false); err != nil {
		ch.Close()
		return fmt.Errorf("failed to set prefetch: %w", err)
	}

	msgs, err := ch.Consume(
		messaging.JobsQueue,
		consumerTag,
		false, // manual ack
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		ch.Close()
		return fmt.Errorf("failed to start consuming: %w", err)
	}

	w.ch = ch
	go w.consumeLoop(msgs)

	log.Printf("[Worker] Started on queue %s", messaging.JobsQueue)
	return nil
}

func (w *Worker) consumeLoop(msgs <-chan amqp.Delivery) {
	defer close(w.doneCh)

	for {
		select {
		case msg, ok := <-msgs:
			if !ok {
				log.Printf("[Worker] Delivery channel closed")
				return
			}
			w.handleDelivery(msg)

		case <-w.stopCh:
			log.Printf("[Worker] Stopping...")
			_ = w.ch.Cancel(consumerTag, false)
			return
		}
	}
}

func (w *Worker) handleDelivery(msg amqp.Delivery) {
	var job JobMessage
	if err := json.Unmarshal(msg.Body, &job); err != nil {
		log.Printf("[Worker] Failed to parse job message: %v", err)
		_ = msg.Reject(false) // send to DLQ
		return
	}

	result, err := w.execute(context.Background(), job)
	if err != nil {
		// Not silently dropped: the dead letter is visible to
		// operators and the next cron fire recomputes from scratch.
		log.Printf("[Worker] Job %s failed after %d attempts: %v", job.Name, w.maxAttempts, err)
		metrics.JobsProcessed.WithLabelValues(job.Name, "failed").Inc()
		_ = msg.Reject(false)
		return
	}

	log.Printf("[Worker] Job %s completed: suspended=%d reminders=%d invoices=%d reactivated=%d",
		job.Name, result.TenantsSuspended, result.RemindersSent, result.InvoicesUpdated, result.TenantsReactivated)
	metrics.JobsProcessed.WithLabelValues(job.Name, "success").Inc()
	_ = msg.Ack(false)
}

// execute runs the job with retry and exponential backoff: 3 attempts,
// delays of 2s then 4s between them.
func (w *Worker) execute(ctx context.Context, job JobMessage) (Result, error) {
	var lastErr error
	for attempt := 1; attempt <= w.maxAttempts; attempt++ {
		result, err := w.dispatch(ctx, job.Name)
		if err == nil {
			return result, nil
		}
		lastErr = err

		if attempt < w.maxAttempts {
			delay := w.backoffBase << (attempt - 1)
			log.Printf("[Worker] Job %s attempt %d failed (%v), retrying in %v", job.Name, attempt, err, delay)
			metrics.JobRetries.WithLabelValues(job.Name).Inc()
			select {
			case <-time.After(delay):
			case <-w.stopCh:
				return Result{}, lastErr
			}
		}
	}
	return Result{}, lastErr
}

func (w *Worker) dispatch(ctx context.Context, name string) (Result, error) {
	switch name {
	case JobCheckOverdue:
		n, err := w.engine.CheckOverdue(ctx)
		return Result{TenantsSuspended: n}, err
	case JobTrialReminders:
		n, err := w.engine.TrialReminders(ctx)
		return Result{RemindersSent: n}, err
	case JobSyncFikenMorning, JobSyncFikenAfternoon, JobSyncFikenEvening:
		updated, reactivated, err := w.engine.SyncAuthority(ctx)
		return Result{InvoicesUpdated: updated, TenantsReactivated: reactivated}, err
	default:
		return Result{}, fmt.Errorf("unknown job %q", name)
	}
}

// Stop signals the worker, waits for the in-flight job to finish, then
// releases the channel.
func (w *Worker) Stop() {
	close(w.stopCh)
	<-w.doneCh
	if w.ch != nil {
		_ = w.ch.Close()
	}
	log.Printf("[Worker] Stopped")
}
