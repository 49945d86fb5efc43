package worker

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/sportnest/sportnest/internal/domain/job"
	"github.com/sportnest/sportnest/internal/notifications"
)

type fakeJobsRepo struct {
	queue []job.Job

	done        []string
	failed      map[string]string
	rescheduled map[string]time.Time
}

func newFakeJobsRepo(jobs ...job.Job) *fakeJobsRepo {
	return &fakeJobsRepo{
		queue:       jobs,
		failed:      make(map[string]string),
		rescheduled: make(map[string]time.Time),
	}
}

func (f *fakeJobsRepo) ClaimNext(ctx context.Context, workerID string) (job.Job, error) {
	if len(f.queue) == 0 {
		return job.Job{}, job.ErrJobNotFound
	}
	j := f.queue[0]
	f.queue = f.queue[1:]
	j.Status = job.StatusProcessing
	return j, nil
}

func (f *fakeJobsRepo) MarkDone(ctx context.Context, id string) error {
	f.done = append(f.done, id)
	return nil
}

func (f *fakeJobsRepo) MarkFailed(ctx context.Context, id string, errMsg string) error {
	f.failed[id] = errMsg
	return nil
}

func (f *fakeJobsRepo) Reschedule(ctx context.Context, id string, runAt time.Time, errMsg string) error {
	f.rescheduled[id] = runAt
	return nil
}

func (f *fakeJobsRepo) RequeueStaleProcessing(ctx context.Context, lockTTL time.Duration) (int64, error) {
	return 0, nil
}

type fakeNotifier struct {
	sent []notifications.SendRegistrationConfirmationInput
	err  error
}

func (f *fakeNotifier) SendRegistrationConfirmation(ctx context.Context, in notifications.SendRegistrationConfirmationInput) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, in)
	return nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func confirmationJob(t *testing.T, attempts, maxAttempts int) job.Job {
	t.Helper()

	payload, err := job.EncodeRegistrationConfirmation(job.RegistrationConfirmationPayload{
		RegistrationID: "reg-1",
		EventID:        "ev-1",
		EventName:      "Summer Gala",
		Name:           "Dana",
		Email:          "dana@example.com",
	})
	if err != nil {
		t.Fatalf("encode payload: %v", err)
	}

	j := job.New(job.CreateRequest{Type: job.TypeRegistrationConfirmation, Payload: payload, MaxAttempts: maxAttempts})
	j.Attempts = attempts
	return j
}

func TestProcessOneDeliversAndMarksDone(t *testing.T) {
	j := confirmationJob(t, 0, 5)
	repo := newFakeJobsRepo(j)
	notifier := &fakeNotifier{}

	w := New(Config{WorkerID: "test-1"}, repo, notifier, testLogger(), nil)

	processed, err := w.ProcessOne(context.Background())
	if err != nil {
		t.Fatalf("ProcessOne: %v", err)
	}
	if !processed {
		t.Fatal("expected a job to be processed")
	}

	if len(notifier.sent) != 1 {
		t.Fatalf("sent = %d, want 1", len(notifier.sent))
	}
	if notifier.sent[0].Email != "dana@example.com" {
		t.Fatalf("email = %s", notifier.sent[0].Email)
	}
	if len(repo.done) != 1 || repo.done[0] != j.ID {
		t.Fatalf("done = %v, want [%s]", repo.done, j.ID)
	}
}

func TestProcessOneReschedulesOnTransientFailure(t *testing.T) {
	j := confirmationJob(t, 0, 5)
	repo := newFakeJobsRepo(j)
	notifier := &fakeNotifier{err: errors.New("provider down")}

	w := New(Config{WorkerID: "test-1"}, repo, notifier, testLogger(), nil)

	processed, err := w.ProcessOne(context.Background())
	if err != nil {
		t.Fatalf("ProcessOne: %v", err)
	}
	if !processed {
		t.Fatal("expected a job to be processed")
	}

	runAt, ok := repo.rescheduled[j.ID]
	if !ok {
		t.Fatal("expected job to be rescheduled")
	}
	if !runAt.After(time.Now().UTC()) {
		t.Fatalf("runAt = %v, want future", runAt)
	}
	if len(repo.failed) != 0 {
		t.Fatalf("failed = %v, want none", repo.failed)
	}
}

func TestProcessOneParksJobAfterLastAttempt(t *testing.T) {
	j := confirmationJob(t, 4, 5)
	repo := newFakeJobsRepo(j)
	notifier := &fakeNotifier{err: errors.New("provider down")}

	w := New(Config{WorkerID: "test-1"}, repo, notifier, testLogger(), nil)

	if _, err := w.ProcessOne(context.Background()); err != nil {
		t.Fatalf("ProcessOne: %v", err)
	}

	if _, ok := repo.failed[j.ID]; !ok {
		t.Fatal("expected job to be marked failed")
	}
	if len(repo.rescheduled) != 0 {
		t.Fatalf("rescheduled = %v, want none", repo.rescheduled)
	}
}

func TestProcessOneUnknownTypeFails(t *testing.T) {
	j := job.New(job.CreateRequest{Type: "bogus", Payload: []byte(`{}`), MaxAttempts: 1})
	repo := newFakeJobsRepo(j)

	w := New(Config{WorkerID: "test-1"}, repo, &fakeNotifier{}, testLogger(), nil)

	if _, err := w.ProcessOne(context.Background()); err != nil {
		t.Fatalf("ProcessOne: %v", err)
	}
	if _, ok := repo.failed[j.ID]; !ok {
		t.Fatal("unknown job type should be marked failed")
	}
}

func TestProcessOneNoJobs(t *testing.T) {
	w := New(Config{WorkerID: "test-1"}, newFakeJobsRepo(), &fakeNotifier{}, testLogger(), nil)

	processed, err := w.ProcessOne(context.Background())
	if err != nil {
		t.Fatalf("ProcessOne: %v", err)
	}
	if processed {
		t.Fatal("expected no job to be processed")
	}
}

func TestExponentialBackoffGrowsAndCaps(t *testing.T) {
	prev := time.Duration(0)
	for attempt := 0; attempt < 6; attempt++ {
		d := ExponentialBackoff(attempt)
		if d < prev {
			t.Fatalf("backoff shrank at attempt %d: %v < %v", attempt, d, prev)
		}
		prev = d
	}

	if d := ExponentialBackoff(20); d > 5*time.Minute+time.Second {
		t.Fatalf("backoff exceeds cap: %v", d)
	}
}
