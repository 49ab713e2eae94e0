package views

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
)

const (
	FormatText = "text"
	FormatJSON = "json"

	defaultWidth = 60
	ansiBold     = "\x1b[1m"
	ansiReset    = "\x1b[0m"
)

// RenderOptions controls how a view is written out
type RenderOptions struct {
	Format string
	Width  int
	Color  bool
}

func (o RenderOptions) format() (string, error) {
	switch f := strings.ToLower(o.Format); f {
	case "", FormatText:
		return FormatText, nil
	case FormatJSON:
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("unsupported format: %s", o.Format)
	}
}

func (o RenderOptions) rule() string {
	width := o.Width
	if width <= 0 {
		width = defaultWidth
	}
	if width > 120 {
		width = 120
	}
	return strings.Repeat("─", width)
}

func (o RenderOptions) heading(text string) string {
	if o.Color {
		return ansiBold + text + ansiReset
	}
	return text
}

// textWriter keeps the first write error so render code stays linear
type textWriter struct {
	w   io.Writer
	err error
}

func (tw *textWriter) line(format string, args ...any) {
	if tw.err != nil {
		return
	}
	_, tw.err = fmt.Fprintf(tw.w, format+"\n", args...)
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// Render writes the dashboard
func (v *StatsView) Render(w io.Writer, opts RenderOptions) error {
	format, err := opts.format()
	if err != nil {
		return err
	}

	status := v.Status()
	stats := v.Stats()

	if format == FormatJSON {
		return writeJSON(w, stats)
	}

	tw := &textWriter{w: w}
	switch {
	case status == StatusLoading:
		tw.line("Loading...")
		return tw.err
	case stats == nil:
		tw.line("No statistics available.")
		return tw.err
	}

	tw.line("%s", opts.heading("Interview Dashboard"))
	tw.line("")
	tw.line("Total Interviews: %d", stats.TotalInterviews)
	tw.line("Average Score:    %.2f", stats.AverageScore)
	tw.line("")
	tw.line("%s", opts.heading("Most Used Questions"))
	tw.line("%s", opts.rule())
	for _, q := range stats.TopQuestions {
		tw.line("%s - Used %d times", q.Question, q.Count)
	}
	return tw.err
}

// Render writes the ongoing interviews with their current question and the
// answer as displayed
func (m *SessionManager) Render(w io.Writer, opts RenderOptions) error {
	format, err := opts.format()
	if err != nil {
		return err
	}

	if format == FormatJSON {
		return writeJSON(w, m.Interviews())
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	tw := &textWriter{w: w}
	tw.line("%s", opts.heading("Ongoing Interviews"))
	tw.line("")

	switch {
	case m.statusLocked() == StatusLoading:
		tw.line("Loading interviews...")
		return tw.err
	case len(m.interviews) == 0:
		tw.line("No ongoing interviews.")
		return tw.err
	}

	for i := range m.interviews {
		iv := &m.interviews[i]
		tw.line("%s", opts.rule())
		tw.line("%s  (%s)", opts.heading(iv.CandidateName), iv.ID)

		if meta, ok := iv.Meta(); ok {
			tw.line("Domain: %s | Tech Stack: %s | Difficulty: %s", meta.Domain, meta.TechStack, meta.Difficulty)
		} else {
			tw.line("Domain: - | Tech Stack: - | Difficulty: -")
		}

		q, ok := iv.CurrentQuestion()
		if !ok {
			tw.line("No current question.")
			continue
		}
		tw.line("Current Question (%d/%d):", iv.CurrentQuestionIndex+1, len(iv.Questions))
		tw.line("%s", q.Text)

		answer := m.answerTextLocked(iv.ID)
		if answer == "" {
			answer = "-"
		}
		if d, pending := m.drafts[iv.ID]; pending && d.questionID == q.ID {
			answer += " (pending)"
		}
		tw.line("Answer: %s", answer)
	}
	return tw.err
}

// Render writes the existing questions
func (b *QuestionBank) Render(w io.Writer, opts RenderOptions) error {
	format, err := opts.format()
	if err != nil {
		return err
	}

	status := b.Status()
	questions := b.Questions()

	if format == FormatJSON {
		return writeJSON(w, questions)
	}

	tw := &textWriter{w: w}
	tw.line("%s", opts.heading("Existing Questions"))
	tw.line("")

	switch {
	case status == StatusLoading:
		tw.line("Loading questions...")
		return tw.err
	case len(questions) == 0:
		tw.line("No questions available.")
		return tw.err
	}

	for _, q := range questions {
		tw.line("%s", opts.rule())
		tw.line("%s", q.Text)
		tw.line("Domain: %s | Tech Stack: %s | Difficulty: %s", q.Domain, q.TechStack, q.Difficulty)
		tw.line("Tags: %s", strings.Join(q.Tags, ", "))
	}
	return tw.err
}
