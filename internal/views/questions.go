package views

import (
	"context"

	"interview-console/internal/api"
	"interview-console/internal/notify"
	"interview-console/internal/observability"
)

// QuestionBackend is the part of the backend the question bank needs
type QuestionBackend interface {
	ListQuestions(ctx context.Context) ([]api.Question, error)
	CreateQuestion(ctx context.Context, in api.NewQuestion) (*api.Question, error)
}

// QuestionBank lists questions and edits the pending question before it is
// created
type QuestionBank struct {
	base
	backend QuestionBackend
	mounted bool

	questions []api.Question
	pending   api.NewQuestion
	defaults  api.NewQuestion
	tag       string
}

// NewQuestionBank creates the view. The pending question starts from
// defaults; an empty difficulty becomes Medium.
func NewQuestionBank(backend QuestionBackend, defaults api.NewQuestion, deps Deps) *QuestionBank {
	if defaults.Difficulty == "" {
		defaults.Difficulty = api.DifficultyMedium
	}
	defaults.Tags = nil

	b := &QuestionBank{
		backend:  backend,
		defaults: defaults,
		pending:  cloneNewQuestion(defaults),
	}
	b.init(deps)
	return b
}

// Mount loads the questions the first time it is called
func (b *QuestionBank) Mount(ctx context.Context) error {
	b.mu.Lock()
	if b.mounted {
		b.mu.Unlock()
		return nil
	}
	b.mounted = true
	b.mu.Unlock()

	_, err := b.Load(ctx)
	return err
}

// Load replaces the cached questions with the backend's list
func (b *QuestionBank) Load(ctx context.Context) ([]api.Question, error) {
	reqCtx, done, gen, err := b.begin(ctx)
	if err != nil {
		return nil, err
	}
	defer done()

	questions, err := b.backend.ListQuestions(reqCtx)

	b.mu.Lock()
	if !b.live(gen) {
		b.mu.Unlock()
		b.metrics.IncrementStaleResponsesDropped()
		return nil, ErrClosed
	}
	b.end(err)
	if err == nil {
		b.questions = cloneQuestions(questions)
	}
	b.mu.Unlock()

	if err != nil {
		observability.LoggerFromContext(ctx).Error("Error fetching questions", "error", err)
		b.notify(ctx, notify.Error("Failed to fetch questions: "+errorDetail(err)))
		return nil, err
	}
	return questions, nil
}

// Pending returns a copy of the question being edited
func (b *QuestionBank) Pending() api.NewQuestion {
	b.mu.Lock()
	defer b.mu.Unlock()
	return cloneNewQuestion(b.pending)
}

// EditPending applies fn to the question being edited
func (b *QuestionBank) EditPending(fn func(q *api.NewQuestion)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	fn(&b.pending)
}

// SetTagInput sets the single-tag input field
func (b *QuestionBank) SetTagInput(tag string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.tag = tag
}

// TagInput returns the single-tag input field
func (b *QuestionBank) TagInput() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.tag
}

// AddTag moves the tag input into the pending question's tags. Empty input
// and tags already present are rejected and leave the input as is.
func (b *QuestionBank) AddTag() bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.tag == "" {
		return false
	}
	for _, t := range b.pending.Tags {
		if t == b.tag {
			return false
		}
	}
	b.pending.Tags = append(b.pending.Tags, b.tag)
	b.tag = ""
	return true
}

// AddTagValue sets the tag input to tag and adds it
func (b *QuestionBank) AddTagValue(tag string) bool {
	b.SetTagInput(tag)
	return b.AddTag()
}

// Create sends the pending question. On success the question is appended to
// the cache and the pending question resets; on failure both stay as they
// were.
func (b *QuestionBank) Create(ctx context.Context) (*api.Question, error) {
	reqCtx, done, gen, err := b.begin(ctx)
	if err != nil {
		return nil, err
	}
	defer done()

	in := b.Pending()
	if in.Tags == nil {
		in.Tags = []string{}
	}
	question, err := b.backend.CreateQuestion(reqCtx, in)

	b.mu.Lock()
	if !b.live(gen) {
		b.mu.Unlock()
		b.metrics.IncrementStaleResponsesDropped()
		return nil, ErrClosed
	}
	b.end(err)
	if err == nil {
		b.questions = append(b.questions, cloneQuestion(*question))
		b.pending = cloneNewQuestion(b.defaults)
	}
	b.mu.Unlock()

	if err != nil {
		observability.LoggerFromContext(ctx).Error("Error adding question", "error", err)
		b.notify(ctx, notify.Error("Failed to add question: "+errorDetail(err)))
		return nil, err
	}

	b.metrics.IncrementQuestionsAdded()
	b.notify(ctx, notify.Success("Question added successfully."))
	return question, nil
}

// Questions returns a copy of the cached questions
func (b *QuestionBank) Questions() []api.Question {
	b.mu.Lock()
	defer b.mu.Unlock()
	return cloneQuestions(b.questions)
}

// Close discards the cache, the pending question and any request in flight
func (b *QuestionBank) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.close()
	b.questions = nil
	b.pending = cloneNewQuestion(b.defaults)
	b.tag = ""
}

func cloneQuestion(q api.Question) api.Question {
	q.Tags = append([]string(nil), q.Tags...)
	return q
}

func cloneQuestions(in []api.Question) []api.Question {
	out := make([]api.Question, 0, len(in))
	for _, q := range in {
		out = append(out, cloneQuestion(q))
	}
	return out
}

func cloneNewQuestion(q api.NewQuestion) api.NewQuestion {
	q.Tags = append([]string(nil), q.Tags...)
	return q
}
