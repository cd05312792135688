package scheduler

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"

	"compliancehub/internal/messaging"
	"compliancehub/internal/model"
)

type stubJobStore struct {
	jobs map[string]model.RecurringJob
}

func newStubJobStore() *stubJobStore {
	return &stubJobStore{jobs: make(map[string]model.RecurringJob)}
}

func (s *stubJobStore) DeleteRecurringJobs() error {
	s.jobs = make(map[string]model.RecurringJob)
	return nil
}

func (s *stubJobStore) InsertRecurringJob(job model.RecurringJob) error {
	s.jobs[job.Name] = job
	return nil
}

type stubPublisher struct {
	published []JobMessage
	queues    []string
}

func (p *stubPublisher) Publish(queueName string, body []byte) error {
	var msg JobMessage
	if err := json.Unmarshal(body, &msg); err != nil {
		return err
	}
	p.published = append(p.published, msg)
	p.queues = append(p.queues, queueName)
	return nil
}

func TestScheduleAllIsIdempotent(t *testing.T) {
	store := newStubJobStore()
	s := NewScheduler(store, &stubPublisher{})

	require.NoError(t, s.ScheduleAll())
	require.NoError(t, s.ScheduleAll())

	// Exactly one persisted definition and one cron entry per name.
	require.Len(t, store.jobs, len(Definitions()))
	require.Equal(t, len(Definitions()), s.EntryCount())

	for _, def := range Definitions() {
		job, ok := store.jobs[def.Name]
		require.True(t, ok, "missing job %s", def.Name)
		require.Equal(t, def.CronExpr, job.CronExpr)
	}
}

func TestEnqueuePublishesToJobsQueue(t *testing.T) {
	pub := &stubPublisher{}
	s := NewScheduler(newStubJobStore(), pub)

	require.NoError(t, s.Enqueue(JobCheckOverdue))

	require.Len(t, pub.published, 1)
	require.Equal(t, JobCheckOverdue, pub.published[0].Name)
	require.False(t, pub.published[0].FiredAt.IsZero())
	require.Equal(t, messaging.JobsQueue, pub.queues[0])
}

func TestEnqueueRejectsUnknownJob(t *testing.T) {
	s := NewScheduler(newStubJobStore(), &stubPublisher{})
	require.Error(t, s.Enqueue("no-such-job"))
}

func TestKnownJob(t *testing.T) {
	require.True(t, KnownJob(JobSyncFikenMorning))
	require.False(t, KnownJob("sync-fiken-midnight"))
}
