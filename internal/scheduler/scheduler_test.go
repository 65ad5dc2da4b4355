package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"
)

type noopJob struct{}

func (noopJob) RunScheduled(context.Context) error { return nil }

func TestNewRejectsBadSchedule(t *testing.T) {
	if _, err := New("every day please", time.UTC, noopJob{}); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestNextFireIsTwentiethAtNine(t *testing.T) {
	loc, err := time.LoadLocation("Asia/Jerusalem")
	if err != nil {
		t.Skip("zone data unavailable")
	}
	s, err := New("0 9 20 * *", loc, noopJob{})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	next := s.Next().In(loc)
	if next.Day() != 20 || next.Hour() != 9 || next.Minute() != 0 {
		t.Fatalf("next = %v", next)
	}
}

type blockingJob struct {
	started chan struct{}
	result  chan error
}

func (j *blockingJob) RunScheduled(ctx context.Context) error {
	close(j.started)
	<-ctx.Done()
	j.result <- ctx.Err()
	return ctx.Err()
}

func TestStopCancelsRunningJob(t *testing.T) {
	job := &blockingJob{started: make(chan struct{}), result: make(chan error, 1)}
	s, err := New("0 9 20 * *", time.UTC, job)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	s.Start()

	go s.run()
	<-job.started

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	s.Stop(ctx)

	select {
	case err := <-job.result:
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("job ctx err = %v, want context.Canceled", err)
		}
	case <-time.After(time.Second):
		t.Fatal("running job was not canceled by Stop")
	}
}
