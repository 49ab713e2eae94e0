package views

import (
	"context"
	"errors"
	"sync"
	"time"

	"interview-console/internal/api"
	"interview-console/internal/notify"
	"interview-console/internal/observability"
)

// ErrNoDraft is returned by Commit when nothing is pending for the session
var ErrNoDraft = errors.New("views: no pending answer")

// SessionBackend is the part of the backend the session manager needs
type SessionBackend interface {
	ListInterviews(ctx context.Context) ([]api.Interview, error)
	CreateInterview(ctx context.Context, in api.NewInterview) (*api.Interview, error)
	SubmitAnswer(ctx context.Context, interviewID, questionID, answer string) (*api.Interview, error)
}

// SessionOptions configures a SessionManager
type SessionOptions struct {
	// FormDefaults is what the new-interview form resets to.
	// An empty difficulty becomes Medium.
	FormDefaults api.NewInterview

	// Debounce is the quiet period after the last Draft before the answer is
	// committed. Zero disables automatic commits; only Commit sends.
	Debounce time.Duration
}

// draft is the local echo of an answer not yet confirmed by the backend
type draft struct {
	questionID string
	text       string
	version    uint64
	dirty      bool
	timer      *time.Timer
}

// SessionManager creates interview sessions and records answers
type SessionManager struct {
	base
	backend  SessionBackend
	debounce time.Duration
	mounted  bool

	interviews []api.Interview
	form       api.NewInterview
	defaults   api.NewInterview

	drafts  map[string]*draft
	seq     map[string]uint64
	applied map[string]uint64

	// handoffs counts replaced drafts still being sent; idle is signalled
	// when it drops
	handoffs int
	idle     *sync.Cond
}

func NewSessionManager(backend SessionBackend, opts SessionOptions, deps Deps) *SessionManager {
	defaults := opts.FormDefaults
	if defaults.Difficulty == "" {
		defaults.Difficulty = api.DifficultyMedium
	}

	m := &SessionManager{
		backend:  backend,
		debounce: opts.Debounce,
		form:     defaults,
		defaults: defaults,
		drafts:   make(map[string]*draft),
		seq:      make(map[string]uint64),
		applied:  make(map[string]uint64),
	}
	m.init(deps)
	m.idle = sync.NewCond(&m.mu)
	return m
}

// Mount loads the sessions the first time it is called
func (m *SessionManager) Mount(ctx context.Context) error {
	m.mu.Lock()
	if m.mounted {
		m.mu.Unlock()
		return nil
	}
	m.mounted = true
	m.mu.Unlock()

	_, err := m.Load(ctx)
	return err
}

// Load replaces the cached sessions with the backend's list
func (m *SessionManager) Load(ctx context.Context) ([]api.Interview, error) {
	reqCtx, done, gen, err := m.begin(ctx)
	if err != nil {
		return nil, err
	}
	defer done()

	interviews, err := m.backend.ListInterviews(reqCtx)

	m.mu.Lock()
	if !m.live(gen) {
		m.mu.Unlock()
		m.metrics.IncrementStaleResponsesDropped()
		return nil, ErrClosed
	}
	m.end(err)
	if err == nil {
		m.interviews = cloneInterviews(interviews)
	}
	m.mu.Unlock()

	if err != nil {
		observability.LoggerFromContext(ctx).Error("Error fetching interviews", "error", err)
		m.notify(ctx, notify.Error("Failed to fetch interviews. Please try again."))
		return nil, err
	}
	return interviews, nil
}

// Form returns the new-interview form
func (m *SessionManager) Form() api.NewInterview {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.form
}

// SetForm replaces the new-interview form
func (m *SessionManager) SetForm(form api.NewInterview) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.form = form
}

// Start creates a session from the current form. Fields are passed through
// as entered; the backend decides what is acceptable. The form resets to its
// defaults only when the session was created.
func (m *SessionManager) Start(ctx context.Context) (*api.Interview, error) {
	reqCtx, done, gen, err := m.begin(ctx)
	if err != nil {
		return nil, err
	}
	defer done()

	form := m.Form()
	interview, err := m.backend.CreateInterview(reqCtx, form)

	m.mu.Lock()
	if !m.live(gen) {
		m.mu.Unlock()
		m.metrics.IncrementStaleResponsesDropped()
		return nil, ErrClosed
	}
	m.end(err)
	if err == nil {
		m.interviews = append(m.interviews, cloneInterview(*interview))
		m.form = m.defaults
	}
	m.mu.Unlock()

	if err != nil {
		observability.LoggerFromContext(ctx).Error("Error starting interview", "error", err)
		m.notify(ctx, notify.Error("Failed to start interview. Please try again."))
		return nil, err
	}

	m.metrics.IncrementInterviewsStarted()
	m.notify(ctx, notify.Success("Interview started successfully."))
	return interview, nil
}

// SubmitAnswer sends answer for questionID and replaces the cached session
// with the one returned by the backend. A response older than one already
// applied for the same session is dropped.
func (m *SessionManager) SubmitAnswer(ctx context.Context, interviewID, questionID, answer string) (*api.Interview, error) {
	reqCtx, done, gen, err := m.begin(ctx)
	if err != nil {
		return nil, err
	}
	defer done()

	m.mu.Lock()
	m.seq[interviewID]++
	seq := m.seq[interviewID]
	m.mu.Unlock()

	interview, err := m.backend.SubmitAnswer(reqCtx, interviewID, questionID, answer)

	m.mu.Lock()
	if !m.live(gen) {
		m.mu.Unlock()
		m.metrics.IncrementStaleResponsesDropped()
		return nil, ErrClosed
	}
	m.end(err)
	if err == nil {
		m.applyAnswerLocked(interviewID, seq, interview)
	}
	m.mu.Unlock()

	if err != nil {
		observability.LoggerFromContext(ctx).Error("Error submitting answer", "error", err, "interview_id", interviewID, "question_id", questionID)
		m.notify(ctx, notify.Error("Failed to submit answer. Please try again."))
		return nil, err
	}

	m.metrics.IncrementAnswersSubmitted()
	m.notify(ctx, notify.Success("Answer submitted successfully."))
	return interview, nil
}

// applyAnswerLocked installs a confirmed session unless a newer submission
// for it was applied first. Callers hold m.mu.
func (m *SessionManager) applyAnswerLocked(interviewID string, seq uint64, interview *api.Interview) {
	if seq < m.applied[interviewID] {
		m.metrics.IncrementStaleResponsesDropped()
		observability.WithFields("interview_id", interviewID, "seq", seq).Debug("dropping out-of-order answer response")
		return
	}
	m.applied[interviewID] = seq

	for i := range m.interviews {
		if m.interviews[i].ID == interviewID {
			m.interviews[i] = cloneInterview(*interview)
			break
		}
	}

	// the draft is confirmed once the backend holds the same text
	if d, ok := m.drafts[interviewID]; ok && !d.dirty {
		if got, ok := interview.Responses[d.questionID]; ok && got == d.text {
			delete(m.drafts, interviewID)
		}
	}
}

// Draft records text as the pending answer to questionID and arms the
// debounce timer. The text is shown by AnswerText right away.
func (m *SessionManager) Draft(interviewID, questionID, text string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return
	}

	d, ok := m.drafts[interviewID]
	if !ok || d.questionID != questionID {
		if ok {
			if d.timer != nil {
				d.timer.Stop()
			}
			if d.dirty {
				m.handOffLocked(interviewID, d.questionID, d.text)
			}
		}
		d = &draft{questionID: questionID}
		m.drafts[interviewID] = d
	}
	d.text = text
	d.version++
	d.dirty = true

	if m.debounce <= 0 {
		return
	}
	if d.timer != nil {
		d.timer.Stop()
	}
	version := d.version
	d.timer = time.AfterFunc(m.debounce, func() {
		m.fire(interviewID, version)
	})
}

// handOffLocked sends an unsent draft that is being replaced by a draft for
// another question of the same session. Callers hold m.mu.
func (m *SessionManager) handOffLocked(interviewID, questionID, text string) {
	m.handoffs++
	ctx := m.ctx
	go func() {
		if _, err := m.SubmitAnswer(ctx, interviewID, questionID, text); err != nil {
			observability.WithFields("interview_id", interviewID, "question_id", questionID).Warn("replaced draft was not delivered", "error", err)
		}
		m.mu.Lock()
		m.handoffs--
		m.idle.Broadcast()
		m.mu.Unlock()
	}()
}

// sendDraft submits text, the snapshot of d taken at version. When the send fails
// and d was neither edited nor replaced meanwhile, it is marked unsent again
// so FlushAll or the next debounce delivers it.
func (m *SessionManager) sendDraft(ctx context.Context, interviewID string, d *draft, version uint64, text string) (*api.Interview, error) {
	interview, err := m.SubmitAnswer(ctx, interviewID, d.questionID, text)
	if err != nil {
		m.mu.Lock()
		if cur, ok := m.drafts[interviewID]; ok && cur == d && cur.version == version {
			cur.dirty = true
		}
		m.mu.Unlock()
	}
	return interview, err
}

// fire commits a draft whose debounce period elapsed untouched
func (m *SessionManager) fire(interviewID string, version uint64) {
	m.mu.Lock()
	d, ok := m.drafts[interviewID]
	if !ok || d.version != version || m.closed {
		m.mu.Unlock()
		return
	}
	d.timer = nil
	d.dirty = false
	text := d.text
	ctx := m.ctx
	m.mu.Unlock()

	m.sendDraft(ctx, interviewID, d, version, text)
}

// Commit sends the pending draft for the session immediately
func (m *SessionManager) Commit(ctx context.Context, interviewID string) (*api.Interview, error) {
	m.mu.Lock()
	d, ok := m.drafts[interviewID]
	if !ok {
		m.mu.Unlock()
		return nil, ErrNoDraft
	}
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	d.version++
	d.dirty = false
	version, text := d.version, d.text
	m.mu.Unlock()

	return m.sendDraft(ctx, interviewID, d, version, text)
}

// FlushAll commits every draft not sent yet, waits for replaced drafts still
// being delivered and returns the first error
func (m *SessionManager) FlushAll(ctx context.Context) error {
	m.mu.Lock()
	ids := make([]string, 0, len(m.drafts))
	for id, d := range m.drafts {
		if d.dirty {
			ids = append(ids, id)
		}
	}
	m.mu.Unlock()

	var first error
	for _, id := range ids {
		if _, err := m.Commit(ctx, id); err != nil && !errors.Is(err, ErrNoDraft) && first == nil {
			first = err
		}
	}

	m.mu.Lock()
	for m.handoffs > 0 {
		m.idle.Wait()
	}
	m.mu.Unlock()
	return first
}

// Pending reports whether the session has an unconfirmed draft
func (m *SessionManager) Pending(interviewID string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.drafts[interviewID]
	return ok
}

// AnswerText is the text shown for the session's current question: the
// local draft if one exists, else the confirmed response.
func (m *SessionManager) AnswerText(interviewID string) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.answerTextLocked(interviewID)
}

func (m *SessionManager) answerTextLocked(interviewID string) string {
	for i := range m.interviews {
		iv := &m.interviews[i]
		if iv.ID != interviewID {
			continue
		}
		q, ok := iv.CurrentQuestion()
		if !ok {
			return ""
		}
		if d, ok := m.drafts[interviewID]; ok && d.questionID == q.ID {
			return d.text
		}
		return iv.Responses[q.ID]
	}
	return ""
}

// Interviews returns a copy of the cached sessions
func (m *SessionManager) Interviews() []api.Interview {
	m.mu.Lock()
	defer m.mu.Unlock()
	return cloneInterviews(m.interviews)
}

// Interview returns a copy of one cached session
func (m *SessionManager) Interview(id string) (api.Interview, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, iv := range m.interviews {
		if iv.ID == id {
			return cloneInterview(iv), true
		}
	}
	return api.Interview{}, false
}

// Close stops pending drafts and discards the cache. Results still in flight
// are ignored when they arrive.
func (m *SessionManager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, d := range m.drafts {
		if d.timer != nil {
			d.timer.Stop()
		}
	}
	m.close()
	m.drafts = make(map[string]*draft)
	m.interviews = nil
}

func cloneInterview(iv api.Interview) api.Interview {
	out := iv
	out.Questions = append([]api.Question(nil), iv.Questions...)
	out.Responses = make(map[string]string, len(iv.Responses))
	for k, v := range iv.Responses {
		out.Responses[k] = v
	}
	return out
}

func cloneInterviews(in []api.Interview) []api.Interview {
	out := make([]api.Interview, 0, len(in))
	for _, iv := range in {
		out = append(out, cloneInterview(iv))
	}
	return out
}
