package store

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/spigell/hh-interviewer/internal/interview"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

type storeFactory func(t *testing.T, clock *fakeClock) interview.Store

var factories = map[string]storeFactory{
	"memory": func(_ *testing.T, clock *fakeClock) interview.Store {
		return NewMemory(WithClock(clock.Now))
	},
	"sqlite": func(t *testing.T, clock *fakeClock) interview.Store {
		s, err := OpenSQLite(InMemoryPath, WithClock(clock.Now))
		if err != nil {
			t.Fatalf("open sqlite: %v", err)
		}
		t.Cleanup(func() { s.Close() })
		return s
	},
}

func forEachStore(t *testing.T, fn func(t *testing.T, s interview.Store, clock *fakeClock)) {
	for name, factory := range factories {
		t.Run(name, func(t *testing.T) {
			clock := newFakeClock()
			fn(t, factory(t, clock), clock)
		})
	}
}

func ms(v int64) *int64 { return &v }

func newSession() *interview.Session {
	return &interview.Session{
		CandidateName:   "Ada",
		CandidateID:     "u-1",
		InterviewRef:    "i-1",
		Role:            "Backend Developer",
		Difficulty:      "medium",
		DurationMinutes: 30,
		Questions:       []string{"q1", "q2"},
		Status:          interview.StatusActive,
		Transcript: []interview.Turn{
			{Speaker: interview.SpeakerInterviewer, Content: "hello", TimestampMillis: ms(1000)},
		},
	}
}

func appendTurn(content string) func(*interview.Session) error {
	return func(s *interview.Session) error {
		s.Transcript = append(s.Transcript, interview.Turn{Speaker: interview.SpeakerCandidate, Content: content})
		s.CurrentQuestionIndex++
		return nil
	}
}

func TestCreateAndGet(t *testing.T) {
	forEachStore(t, func(t *testing.T, s interview.Store, clock *fakeClock) {
		ctx := context.Background()

		id, err := s.Create(ctx, newSession())
		if err != nil {
			t.Fatalf("create: %v", err)
		}
		if id == "" {
			t.Fatal("expected generated id")
		}

		got, err := s.Get(ctx, id)
		if err != nil {
			t.Fatalf("get: %v", err)
		}
		if got.ID != id || got.CandidateName != "Ada" || got.DurationMinutes != 30 {
			t.Fatalf("unexpected metadata: %+v", got)
		}
		if len(got.Questions) != 2 || got.Questions[1] != "q2" {
			t.Fatalf("unexpected questions: %v", got.Questions)
		}
		if len(got.Transcript) != 1 || *got.Transcript[0].TimestampMillis != 1000 {
			t.Fatalf("unexpected transcript: %+v", got.Transcript)
		}
		if !got.CreatedAt.Equal(clock.Now()) || !got.UpdatedAt.Equal(clock.Now()) {
			t.Fatalf("unexpected timestamps: %v %v", got.CreatedAt, got.UpdatedAt)
		}
	})
}

func TestGetUnknown(t *testing.T) {
	forEachStore(t, func(t *testing.T, s interview.Store, _ *fakeClock) {
		if _, err := s.Get(context.Background(), "missing"); !errors.Is(err, interview.ErrSessionNotFound) {
			t.Fatalf("expected ErrSessionNotFound, got %v", err)
		}
		_, err := s.Update(context.Background(), "missing", appendTurn("x"))
		if !errors.Is(err, interview.ErrSessionNotFound) {
			t.Fatalf("expected ErrSessionNotFound from update, got %v", err)
		}
	})
}

func TestUpdateCommits(t *testing.T) {
	forEachStore(t, func(t *testing.T, s interview.Store, clock *fakeClock) {
		ctx := context.Background()
		id, _ := s.Create(ctx, newSession())
		clock.Advance(time.Minute)

		updated, err := s.Update(ctx, id, appendTurn("answer"))
		if err != nil {
			t.Fatalf("update: %v", err)
		}
		if updated.CurrentQuestionIndex != 1 || len(updated.Transcript) != 2 {
			t.Fatalf("unexpected update result: %+v", updated)
		}

		got, _ := s.Get(ctx, id)
		if len(got.Transcript) != 2 || got.Transcript[1].Content != "answer" || got.Transcript[1].TimestampMillis != nil {
			t.Fatalf("transcript not persisted: %+v", got.Transcript)
		}
		if !got.UpdatedAt.Equal(clock.Now()) {
			t.Fatalf("expected updated_at to move, got %v", got.UpdatedAt)
		}
	})
}

func TestUpdateNoChange(t *testing.T) {
	forEachStore(t, func(t *testing.T, s interview.Store, _ *fakeClock) {
		ctx := context.Background()
		id, _ := s.Create(ctx, newSession())

		got, err := s.Update(ctx, id, func(sess *interview.Session) error {
			sess.Transcript = append(sess.Transcript, interview.Turn{Speaker: interview.SpeakerCandidate, Content: "ignored"})
			return interview.ErrNoChange
		})
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if len(got.Transcript) != 1 {
			t.Fatalf("expected current snapshot, got %+v", got.Transcript)
		}

		stored, _ := s.Get(ctx, id)
		if len(stored.Transcript) != 1 {
			t.Fatalf("no-change mutation was committed: %+v", stored.Transcript)
		}
	})
}

func TestUpdateAbortsOnError(t *testing.T) {
	forEachStore(t, func(t *testing.T, s interview.Store, _ *fakeClock) {
		ctx := context.Background()
		id, _ := s.Create(ctx, newSession())
		boom := errors.New("boom")

		_, err := s.Update(ctx, id, func(sess *interview.Session) error {
			sess.CurrentQuestionIndex = 2
			return boom
		})
		if !errors.Is(err, boom) {
			t.Fatalf("expected mutator error, got %v", err)
		}

		stored, _ := s.Get(ctx, id)
		if stored.CurrentQuestionIndex != 0 {
			t.Fatalf("aborted mutation was committed: %+v", stored)
		}
	})
}

func TestUpdateRejectsInvariantViolations(t *testing.T) {
	mutations := map[string]func(*interview.Session) error{
		"shrink transcript": func(s *interview.Session) error {
			s.Transcript = nil
			return nil
		},
		"rewrite turn": func(s *interview.Session) error {
			s.Transcript[0].Content = "changed"
			return nil
		},
		"decrease index": func(s *interview.Session) error {
			s.CurrentQuestionIndex = -1
			return nil
		},
		"change role": func(s *interview.Session) error {
			s.Role = "Data Scientist"
			return nil
		},
		"replace questions": func(s *interview.Session) error {
			s.Questions = []string{"other"}
			return nil
		},
	}

	forEachStore(t, func(t *testing.T, s interview.Store, _ *fakeClock) {
		ctx := context.Background()
		id, _ := s.Create(ctx, newSession())

		for name, mutate := range mutations {
			if _, err := s.Update(ctx, id, mutate); !errors.Is(err, interview.ErrInvalidUpdate) {
				t.Fatalf("%s: expected ErrInvalidUpdate, got %v", name, err)
			}
		}

		stored, _ := s.Get(ctx, id)
		if stored.Transcript[0].Content != "hello" || stored.Role != "Backend Developer" {
			t.Fatalf("invalid update was committed: %+v", stored)
		}
	})
}

func TestCompletedCannotReopen(t *testing.T) {
	forEachStore(t, func(t *testing.T, s interview.Store, _ *fakeClock) {
		ctx := context.Background()
		id, _ := s.Create(ctx, newSession())

		if _, err := s.Update(ctx, id, func(sess *interview.Session) error {
			sess.Status = interview.StatusCompleted
			return nil
		}); err != nil {
			t.Fatalf("complete: %v", err)
		}

		_, err := s.Update(ctx, id, func(sess *interview.Session) error {
			sess.Status = interview.StatusActive
			return nil
		})
		if !errors.Is(err, interview.ErrInvalidUpdate) {
			t.Fatalf("expected ErrInvalidUpdate, got %v", err)
		}
	})
}

func TestExpire(t *testing.T) {
	forEachStore(t, func(t *testing.T, s interview.Store, clock *fakeClock) {
		ctx := context.Background()

		stale, _ := s.Create(ctx, newSession())
		clock.Advance(time.Hour)
		fresh, _ := s.Create(ctx, newSession())

		removed, err := s.Expire(ctx, clock.Now().Add(-30*time.Minute))
		if err != nil {
			t.Fatalf("expire: %v", err)
		}
		if removed != 1 {
			t.Fatalf("expected 1 expired session, got %d", removed)
		}
		if _, err := s.Get(ctx, stale); !errors.Is(err, interview.ErrSessionNotFound) {
			t.Fatalf("expected stale session to be gone, got %v", err)
		}
		if _, err := s.Get(ctx, fresh); err != nil {
			t.Fatalf("expected fresh session to remain, got %v", err)
		}
	})
}

func TestConcurrentUpdatesAreSerialized(t *testing.T) {
	const workers = 20

	forEachStore(t, func(t *testing.T, s interview.Store, _ *fakeClock) {
		ctx := context.Background()
		sess := newSession()
		sess.Questions = make([]string, workers)
		for i := range sess.Questions {
			sess.Questions[i] = "q"
		}
		id, _ := s.Create(ctx, sess)

		var wg sync.WaitGroup
		errs := make(chan error, workers)
		for i := 0; i < workers; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, err := s.Update(ctx, id, func(sess *interview.Session) error {
					time.Sleep(time.Millisecond)
					return appendTurn("answer")(sess)
				})
				errs <- err
			}()
		}
		wg.Wait()
		close(errs)

		for err := range errs {
			if err != nil {
				t.Fatalf("update failed: %v", err)
			}
		}

		got, _ := s.Get(ctx, id)
		if got.CurrentQuestionIndex != workers || len(got.Transcript) != workers+1 {
			t.Fatalf("lost updates: index %d, turns %d", got.CurrentQuestionIndex, len(got.Transcript))
		}
	})
}

func TestKeyedMutexReleasesEntries(t *testing.T) {
	var k keyedMutex

	unlockA := k.lock("a")
	unlockB := k.lock("b")
	unlockA()
	unlockB()

	if len(k.locks) != 0 {
		t.Fatalf("expected no retained locks, got %d", len(k.locks))
	}
}
