package views

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"testing"
	"time"

	"interview-console/internal/api"
	"interview-console/internal/apitest"
	"interview-console/internal/metrics"
	"interview-console/internal/notify"
)

// stubSessions is a SessionBackend whose answers can be held back per call
type stubSessions struct {
	mu         sync.Mutex
	interviews []api.Interview
	listErr    error
	createErr  error
	answerErr  error
	calls      []string
	// hold, when set, is waited on by SubmitAnswer before it replies
	hold map[string]chan struct{}
}

func (s *stubSessions) ListInterviews(ctx context.Context) ([]api.Interview, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listErr != nil {
		return nil, s.listErr
	}
	return cloneInterviews(s.interviews), nil
}

func (s *stubSessions) CreateInterview(ctx context.Context, in api.NewInterview) (*api.Interview, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.createErr != nil {
		return nil, s.createErr
	}
	iv := api.Interview{
		ID:            "iv-" + in.CandidateName,
		CandidateName: in.CandidateName,
		Questions: []api.Question{
			{ID: "q1", Text: "What is JSX?", Domain: in.Domain, TechStack: in.TechStack, Difficulty: in.Difficulty},
			{ID: "q2", Text: "What is a hook?", Domain: in.Domain, TechStack: in.TechStack, Difficulty: in.Difficulty},
		},
		Responses: map[string]string{},
	}
	s.interviews = append(s.interviews, iv)
	out := cloneInterview(iv)
	return &out, nil
}

func (s *stubSessions) SubmitAnswer(ctx context.Context, interviewID, questionID, answer string) (*api.Interview, error) {
	s.mu.Lock()
	s.calls = append(s.calls, answer)
	wait := s.hold[answer]
	s.mu.Unlock()

	if wait != nil {
		select {
		case <-wait:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.answerErr != nil {
		return nil, s.answerErr
	}
	for i := range s.interviews {
		if s.interviews[i].ID == interviewID {
			// reply with a snapshot carrying this call's answer, as a backend
			// answering out of order would
			s.interviews[i].Responses[questionID] = answer
			out := cloneInterview(s.interviews[i])
			return &out, nil
		}
	}
	return nil, &api.RequestError{Op: "submit answer", StatusCode: http.StatusNotFound}
}

func (s *stubSessions) answerCalls() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.calls...)
}

func newManager(t *testing.T, backend SessionBackend, debounce time.Duration) (*SessionManager, *notify.Recorder, *metrics.Metrics) {
	t.Helper()
	rec := &notify.Recorder{}
	m := metrics.NewMetrics()
	mgr := NewSessionManager(backend, SessionOptions{Debounce: debounce}, Deps{Notifier: rec, Metrics: m})
	t.Cleanup(mgr.Close)
	return mgr, rec, m
}

func startAda(t *testing.T, mgr *SessionManager) *api.Interview {
	t.Helper()
	mgr.SetForm(api.NewInterview{CandidateName: "Ada", Domain: "Web", TechStack: "React", Difficulty: api.DifficultyMedium})
	iv, err := mgr.Start(context.Background())
	if err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	return iv
}

func TestStartAgainstBackend(t *testing.T) {
	srv, _ := apitest.NewServer()
	defer srv.Close()

	client := api.NewClient(srv.URL, 5*time.Second)
	mgr, rec, _ := newManager(t, client, 0)

	iv := startAda(t, mgr)

	if iv.CurrentQuestionIndex < 0 || iv.CurrentQuestionIndex >= len(iv.Questions) {
		t.Fatalf("cursor %d outside [0,%d)", iv.CurrentQuestionIndex, len(iv.Questions))
	}
	if iv.CurrentQuestionIndex != 0 {
		t.Fatalf("expected index 0, got %d", iv.CurrentQuestionIndex)
	}
	if len(iv.Responses) != 0 {
		t.Fatalf("expected no responses, got %v", iv.Responses)
	}
	if got := mgr.Interviews(); len(got) != 1 || got[0].ID != iv.ID {
		t.Fatalf("expected created session in cache, got %+v", got)
	}
	if toasts := rec.Toasts(); len(toasts) != 1 || toasts[0].Description != "Interview started successfully." {
		t.Fatalf("unexpected toasts %+v", toasts)
	}
}

func TestStartResetsFormOnlyOnSuccess(t *testing.T) {
	backend := &stubSessions{createErr: errors.New("boom")}
	mgr, rec, _ := newManager(t, backend, 0)

	form := api.NewInterview{CandidateName: "Ada", Domain: "Web", TechStack: "React", Difficulty: api.DifficultyHard}
	mgr.SetForm(form)

	if _, err := mgr.Start(context.Background()); err == nil {
		t.Fatal("expected error")
	}
	if got := mgr.Form(); got != form {
		t.Fatalf("form should be kept after failure, got %+v", got)
	}
	if rec.Count(notify.VariantDestructive) != 1 {
		t.Fatalf("expected one error toast, got %+v", rec.Toasts())
	}

	backend.mu.Lock()
	backend.createErr = nil
	backend.mu.Unlock()

	if _, err := mgr.Start(context.Background()); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	want := api.NewInterview{Difficulty: api.DifficultyMedium}
	if got := mgr.Form(); got != want {
		t.Fatalf("form should reset to defaults, got %+v", got)
	}
}

func TestLoadFailureKeepsCache(t *testing.T) {
	backend := &stubSessions{}
	mgr, rec, _ := newManager(t, backend, 0)
	startAda(t, mgr)

	before := mgr.Interviews()

	backend.mu.Lock()
	backend.listErr = &api.RequestError{Op: "list interviews", StatusCode: http.StatusInternalServerError}
	backend.mu.Unlock()

	if _, err := mgr.Load(context.Background()); err == nil {
		t.Fatal("expected error")
	}

	after := mgr.Interviews()
	if len(after) != len(before) || after[0].ID != before[0].ID {
		t.Fatalf("cache changed on failure: before %+v after %+v", before, after)
	}
	if got := rec.Count(notify.VariantDestructive); got != 1 {
		t.Fatalf("expected exactly one error toast, got %d", got)
	}
	if mgr.Status() != StatusError {
		t.Fatalf("expected error status, got %s", mgr.Status())
	}
}

func TestSubmitAnswerTouchesOnlyThatQuestion(t *testing.T) {
	backend := &stubSessions{}
	mgr, _, m := newManager(t, backend, 0)
	iv := startAda(t, mgr)
	ctx := context.Background()

	if _, err := mgr.SubmitAnswer(ctx, iv.ID, "q2", "useState"); err != nil {
		t.Fatalf("SubmitAnswer failed: %v", err)
	}
	if _, err := mgr.SubmitAnswer(ctx, iv.ID, "q1", "JavaScript XML"); err != nil {
		t.Fatalf("SubmitAnswer failed: %v", err)
	}

	got, ok := mgr.Interview(iv.ID)
	if !ok {
		t.Fatal("session missing from cache")
	}
	if got.Responses["q2"] != "useState" || got.Responses["q1"] != "JavaScript XML" {
		t.Fatalf("unexpected responses %v", got.Responses)
	}
	if m.GetSnapshot().AnswersSubmitted != 2 {
		t.Fatalf("expected 2 answers counted, got %+v", m.GetSnapshot())
	}
}

func TestSubmitAnswerFailureKeepsSession(t *testing.T) {
	backend := &stubSessions{}
	mgr, rec, _ := newManager(t, backend, 0)
	iv := startAda(t, mgr)

	backend.mu.Lock()
	backend.answerErr = errors.New("connection reset")
	backend.mu.Unlock()

	if _, err := mgr.SubmitAnswer(context.Background(), iv.ID, "q1", "x"); err == nil {
		t.Fatal("expected error")
	}

	got, _ := mgr.Interview(iv.ID)
	if len(got.Responses) != 0 {
		t.Fatalf("failed submit must not apply, got %v", got.Responses)
	}
	if rec.Count(notify.VariantDestructive) != 1 {
		t.Fatalf("expected one error toast, got %+v", rec.Toasts())
	}
}

func TestOutOfOrderAnswerIsDropped(t *testing.T) {
	release := make(chan struct{})
	backend := &stubSessions{hold: map[string]chan struct{}{"Jav": release}}
	mgr, _, m := newManager(t, backend, 0)
	iv := startAda(t, mgr)
	ctx := context.Background()

	slow := make(chan error, 1)
	go func() {
		_, err := mgr.SubmitAnswer(ctx, iv.ID, "q1", "Jav")
		slow <- err
	}()

	waitFor(t, func() bool { return len(backend.answerCalls()) == 1 })

	if _, err := mgr.SubmitAnswer(ctx, iv.ID, "q1", "JavaScript"); err != nil {
		t.Fatalf("SubmitAnswer failed: %v", err)
	}

	close(release)
	if err := <-slow; err != nil {
		t.Fatalf("slow SubmitAnswer failed: %v", err)
	}

	got, _ := mgr.Interview(iv.ID)
	if got.Responses["q1"] != "JavaScript" {
		t.Fatalf("older response overwrote newer one: %q", got.Responses["q1"])
	}
	if m.GetSnapshot().StaleResponsesDropped != 1 {
		t.Fatalf("expected one dropped response, got %+v", m.GetSnapshot())
	}
}

func TestDraftDebouncesIntoOneCommit(t *testing.T) {
	backend := &stubSessions{}
	mgr, _, _ := newManager(t, backend, 50*time.Millisecond)
	iv := startAda(t, mgr)

	for _, text := range []string{"J", "Ja", "Jav", "Java"} {
		mgr.Draft(iv.ID, "q1", text)
	}
	if got := mgr.AnswerText(iv.ID); got != "Java" {
		t.Fatalf("expected local echo, got %q", got)
	}

	waitFor(t, func() bool { return !mgr.Pending(iv.ID) })

	calls := backend.answerCalls()
	if len(calls) != 1 || calls[0] != "Java" {
		t.Fatalf("expected a single commit of the final text, got %v", calls)
	}
	if got := mgr.AnswerText(iv.ID); got != "Java" {
		t.Fatalf("expected confirmed text, got %q", got)
	}
}

func TestExplicitCommit(t *testing.T) {
	backend := &stubSessions{}
	mgr, _, _ := newManager(t, backend, 0)
	iv := startAda(t, mgr)
	ctx := context.Background()

	if _, err := mgr.Commit(ctx, iv.ID); !errors.Is(err, ErrNoDraft) {
		t.Fatalf("expected ErrNoDraft, got %v", err)
	}

	mgr.Draft(iv.ID, "q1", "a closure")
	time.Sleep(10 * time.Millisecond)
	if len(backend.answerCalls()) != 0 {
		t.Fatal("zero debounce must not commit on its own")
	}

	if _, err := mgr.Commit(ctx, iv.ID); err != nil {
		t.Fatalf("Commit failed: %v", err)
	}
	if mgr.Pending(iv.ID) {
		t.Fatal("draft should be confirmed after commit")
	}
	got, _ := mgr.Interview(iv.ID)
	if got.Responses["q1"] != "a closure" {
		t.Fatalf("unexpected responses %v", got.Responses)
	}
}

func TestFlushAllCommitsUnsentDrafts(t *testing.T) {
	backend := &stubSessions{}
	mgr, _, _ := newManager(t, backend, time.Hour)
	iv := startAda(t, mgr)

	mgr.Draft(iv.ID, "q1", "typed but not sent")
	if err := mgr.FlushAll(context.Background()); err != nil {
		t.Fatalf("FlushAll failed: %v", err)
	}

	if calls := backend.answerCalls(); len(calls) != 1 || calls[0] != "typed but not sent" {
		t.Fatalf("unexpected calls %v", calls)
	}
}

func TestFailedCommitIsRetriedByFlushAll(t *testing.T) {
	backend := &stubSessions{}
	mgr, rec, _ := newManager(t, backend, 0)
	iv := startAda(t, mgr)
	ctx := context.Background()

	backend.mu.Lock()
	backend.answerErr = &api.RequestError{Op: "submit answer", StatusCode: http.StatusServiceUnavailable}
	backend.mu.Unlock()

	mgr.Draft(iv.ID, "q1", "closure")
	if _, err := mgr.Commit(ctx, iv.ID); err == nil {
		t.Fatal("expected commit to fail")
	}
	if rec.Count(notify.VariantDestructive) != 1 {
		t.Fatalf("expected one error toast, got %+v", rec.Toasts())
	}

	backend.mu.Lock()
	backend.answerErr = nil
	backend.mu.Unlock()

	if err := mgr.FlushAll(ctx); err != nil {
		t.Fatalf("FlushAll failed: %v", err)
	}
	if calls := backend.answerCalls(); len(calls) != 2 || calls[1] != "closure" {
		t.Fatalf("failed answer should be sent again, got %v", calls)
	}
	if mgr.Pending(iv.ID) {
		t.Fatal("draft should be confirmed after redelivery")
	}
	if got, _ := mgr.Interview(iv.ID); got.Responses["q1"] != "closure" {
		t.Fatalf("unexpected responses %v", got.Responses)
	}
}

func TestEditedDraftIsNotMarkedByStaleFailure(t *testing.T) {
	release := make(chan struct{})
	backend := &stubSessions{hold: map[string]chan struct{}{"first": release}}
	mgr, _, _ := newManager(t, backend, 0)
	iv := startAda(t, mgr)
	ctx := context.Background()

	mgr.Draft(iv.ID, "q1", "first")
	result := make(chan error, 1)
	go func() {
		_, err := mgr.Commit(ctx, iv.ID)
		result <- err
	}()
	waitFor(t, func() bool { return len(backend.answerCalls()) == 1 })

	backend.mu.Lock()
	backend.answerErr = errors.New("connection reset")
	backend.mu.Unlock()
	mgr.Draft(iv.ID, "q1", "second")
	close(release)
	if err := <-result; err == nil {
		t.Fatal("expected commit to fail")
	}

	if got := mgr.AnswerText(iv.ID); got != "second" {
		t.Fatalf("newer draft should still show, got %q", got)
	}
	backend.mu.Lock()
	backend.answerErr = nil
	backend.mu.Unlock()
	if err := mgr.FlushAll(ctx); err != nil {
		t.Fatalf("FlushAll failed: %v", err)
	}
	if calls := backend.answerCalls(); len(calls) != 2 || calls[1] != "second" {
		t.Fatalf("expected the newer draft to be sent, got %v", calls)
	}
}

func TestDraftForNextQuestionSendsPreviousDraft(t *testing.T) {
	backend := &stubSessions{}
	mgr, _, _ := newManager(t, backend, 50*time.Millisecond)
	iv := startAda(t, mgr)

	mgr.Draft(iv.ID, "q1", "final q1 answer")
	mgr.Draft(iv.ID, "q2", "q2 answer")

	waitFor(t, func() bool { return len(backend.answerCalls()) == 2 })
	waitFor(t, func() bool { return !mgr.Pending(iv.ID) })

	got, _ := mgr.Interview(iv.ID)
	if got.Responses["q1"] != "final q1 answer" || got.Responses["q2"] != "q2 answer" {
		t.Fatalf("both answers should reach the backend, got %v", got.Responses)
	}
}

func TestFlushAllWaitsForReplacedDraft(t *testing.T) {
	backend := &stubSessions{}
	mgr, _, _ := newManager(t, backend, time.Hour)
	iv := startAda(t, mgr)

	mgr.Draft(iv.ID, "q1", "q1 answer")
	mgr.Draft(iv.ID, "q2", "q2 answer")
	if err := mgr.FlushAll(context.Background()); err != nil {
		t.Fatalf("FlushAll failed: %v", err)
	}

	calls := backend.answerCalls()
	if len(calls) != 2 {
		t.Fatalf("expected both drafts delivered before FlushAll returns, got %v", calls)
	}
}

func TestCloseDiscardsInFlightResult(t *testing.T) {
	release := make(chan struct{})
	backend := &stubSessions{hold: map[string]chan struct{}{"late": release}}
	mgr, rec, _ := newManager(t, backend, 0)
	iv := startAda(t, mgr)
	toastsBefore := len(rec.Toasts())

	result := make(chan error, 1)
	go func() {
		_, err := mgr.SubmitAnswer(context.Background(), iv.ID, "q1", "late")
		result <- err
	}()
	waitFor(t, func() bool { return len(backend.answerCalls()) == 1 })

	mgr.Close()
	close(release)

	if err := <-result; !errors.Is(err, ErrClosed) {
		t.Fatalf("expected ErrClosed, got %v", err)
	}
	if len(mgr.Interviews()) != 0 {
		t.Fatal("closed view must not hold sessions")
	}
	if len(rec.Toasts()) != toastsBefore {
		t.Fatalf("closed view must not notify, got %+v", rec.Toasts())
	}
	if _, err := mgr.Load(context.Background()); !errors.Is(err, ErrClosed) {
		t.Fatalf("expected ErrClosed after close, got %v", err)
	}
}

func TestMountLoadsOnce(t *testing.T) {
	backend := &stubSessions{interviews: []api.Interview{{ID: "a", Responses: map[string]string{}}}}
	mgr, _, _ := newManager(t, backend, 0)
	ctx := context.Background()

	if err := mgr.Mount(ctx); err != nil {
		t.Fatalf("Mount failed: %v", err)
	}
	if err := mgr.Mount(ctx); err != nil {
		t.Fatalf("Mount failed: %v", err)
	}
	if len(mgr.Interviews()) != 1 {
		t.Fatalf("expected one session, got %d", len(mgr.Interviews()))
	}
	if mgr.Status() != StatusSuccess {
		t.Fatalf("expected success, got %s", mgr.Status())
	}
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met before deadline")
}
