package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"interview-console/internal/api"
	"interview-console/internal/observability"
	"interview-console/internal/storage"
	"interview-console/internal/views"

	"github.com/spf13/cobra"
)

func newSessionsCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "sessions",
		Aliases: []string{"interviews"},
		Short:   "List, start and answer interview sessions",
	}

	cmd.AddCommand(newSessionsListCmd(opts))
	cmd.AddCommand(newSessionsStartCmd(opts))
	cmd.AddCommand(newSessionsAnswerCmd(opts))
	cmd.AddCommand(newSessionsAttendCmd(opts))
	cmd.AddCommand(newSessionsExportCmd(opts))
	cmd.AddCommand(newSessionsTranscriptsCmd(opts))

	return cmd
}

func newSessionManager(a *app) *views.SessionManager {
	return views.NewSessionManager(a.client, views.SessionOptions{
		FormDefaults: a.interviewDefaults(),
		Debounce:     a.cfg.Answers.Debounce,
	}, a.deps)
}

// closeSessions sends whatever is still drafted before the manager goes away
func closeSessions(ctx context.Context, mgr *views.SessionManager) {
	if err := mgr.FlushAll(ctx); err != nil && !errors.Is(err, views.ErrClosed) {
		observability.LoggerFromContext(ctx).Warn("unsent answers were dropped", "error", err)
	}
	mgr.Close()
}

func newSessionsListCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "Show ongoing interviews with their current question",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			mgr := newSessionManager(opts.app)
			defer closeSessions(cmd.Context(), mgr)

			loadErr := mgr.Mount(cmd.Context())
			if err := mgr.Render(cmd.OutOrStdout(), opts.renderOptions(cmd)); err != nil {
				return err
			}
			return loadErr
		},
	}
}

func newSessionsStartCmd(opts *rootOptions) *cobra.Command {
	var (
		candidate  string
		domain     string
		techStack  string
		difficulty string
	)

	cmd := &cobra.Command{
		Use:   "start",
		Short: "Start an interview for a candidate",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			mgr := newSessionManager(opts.app)
			defer closeSessions(cmd.Context(), mgr)

			form := mgr.Form()
			form.CandidateName = candidate
			flags := cmd.Flags()
			if flags.Changed("domain") {
				form.Domain = domain
			}
			if flags.Changed("tech-stack") {
				form.TechStack = techStack
			}
			if flags.Changed("difficulty") {
				form.Difficulty = api.Difficulty(difficulty)
			}
			mgr.SetForm(form)

			if _, err := mgr.Start(cmd.Context()); err != nil {
				return err
			}
			return mgr.Render(cmd.OutOrStdout(), opts.renderOptions(cmd))
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&candidate, "candidate", "", "candidate name")
	flags.StringVar(&domain, "domain", "", "interview domain (defaults to form_defaults.domain)")
	flags.StringVar(&techStack, "tech-stack", "", "tech stack (defaults to form_defaults.tech_stack)")
	flags.StringVar(&difficulty, "difficulty", "", "Easy, Medium or Hard (defaults to form_defaults.difficulty)")

	return cmd
}

func newSessionsAnswerCmd(opts *rootOptions) *cobra.Command {
	var (
		questionID string
		text       string
	)

	cmd := &cobra.Command{
		Use:   "answer <interview-id>",
		Short: "Record an answer for a question of an interview",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			id := args[0]

			mgr := newSessionManager(opts.app)
			defer closeSessions(ctx, mgr)

			if err := mgr.Mount(ctx); err != nil {
				return err
			}
			iv, ok := mgr.Interview(id)
			if !ok {
				return fmt.Errorf("interview %s not found", id)
			}

			if questionID == "" {
				q, ok := iv.CurrentQuestion()
				if !ok {
					return fmt.Errorf("interview %s has no current question", id)
				}
				questionID = q.ID
			}

			mgr.Draft(id, questionID, text)
			if _, err := mgr.Commit(ctx, id); err != nil {
				return err
			}
			return mgr.Render(cmd.OutOrStdout(), opts.renderOptions(cmd))
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&questionID, "question", "", "question id (defaults to the current question)")
	flags.StringVar(&text, "text", "", "answer text")
	_ = cmd.MarkFlagRequired("text")

	return cmd
}

func newSessionsAttendCmd(opts *rootOptions) *cobra.Command {
	var export bool

	cmd := &cobra.Command{
		Use:   "attend <interview-id>",
		Short: "Answer an interview question by question from standard input",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			id := args[0]

			mgr := newSessionManager(opts.app)
			defer closeSessions(ctx, mgr)

			if err := mgr.Mount(ctx); err != nil {
				return err
			}

			answered, err := attend(ctx, mgr, id, cmd.InOrStdin(), cmd.OutOrStdout())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Answered %d question(s).\n", answered)

			if !export {
				return nil
			}
			iv, _ := mgr.Interview(id)
			path, err := storage.SaveTranscript(opts.app.cfg.Results.Dir, storage.BuildTranscript(iv, time.Now()))
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Transcript saved to %s\n", path)
			return nil
		},
	}

	cmd.Flags().BoolVar(&export, "export", false, "save a transcript when the session ends")

	return cmd
}

// attend asks the current question, reads one line as the answer and
// commits it, until input ends or the backend stops moving the cursor
func attend(ctx context.Context, mgr *views.SessionManager, id string, in io.Reader, out io.Writer) (int, error) {
	scanner := bufio.NewScanner(in)
	answered := 0

	for {
		iv, ok := mgr.Interview(id)
		if !ok {
			return answered, fmt.Errorf("interview %s not found", id)
		}
		q, ok := iv.CurrentQuestion()
		if !ok {
			fmt.Fprintln(out, "No current question.")
			return answered, nil
		}

		fmt.Fprintf(out, "Question (%d/%d): %s\n", iv.CurrentQuestionIndex+1, len(iv.Questions), q.Text)
		fmt.Fprint(out, "Your answer: ")

		if !scanner.Scan() {
			fmt.Fprintln(out)
			return answered, scanner.Err()
		}
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			fmt.Fprintln(out, "Please provide an answer.")
			continue
		}

		mgr.Draft(id, q.ID, text)
		updated, err := mgr.Commit(ctx, id)
		if err != nil {
			return answered, err
		}
		answered++

		if updated.CurrentQuestionIndex == iv.CurrentQuestionIndex {
			fmt.Fprintln(out, "Interview complete.")
			return answered, nil
		}
	}
}

func newSessionsExportCmd(opts *rootOptions) *cobra.Command {
	var dir string

	cmd := &cobra.Command{
		Use:   "export <interview-id>",
		Short: "Write an interview transcript as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			id := args[0]

			mgr := newSessionManager(opts.app)
			defer closeSessions(ctx, mgr)

			if err := mgr.Mount(ctx); err != nil {
				return err
			}
			iv, ok := mgr.Interview(id)
			if !ok {
				return fmt.Errorf("interview %s not found", id)
			}

			if dir == "" {
				dir = opts.app.cfg.Results.Dir
			}
			path, err := storage.SaveTranscript(dir, storage.BuildTranscript(iv, time.Now()))
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), path)
			return nil
		},
	}

	cmd.Flags().StringVar(&dir, "dir", "", "output directory (defaults to results.dir)")

	return cmd
}

func newSessionsTranscriptsCmd(opts *rootOptions) *cobra.Command {
	var dir string

	cmd := &cobra.Command{
		Use:   "transcripts",
		Short: "List exported transcripts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if dir == "" {
				dir = opts.app.cfg.Results.Dir
			}
			ids, err := storage.ListTranscripts(dir)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(ids) == 0 {
				fmt.Fprintln(out, "No transcripts found.")
				return nil
			}
			for _, id := range ids {
				t, err := storage.LoadTranscript(dir, id)
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "%s\t%s\t%d/%d answered\t%s\n", t.InterviewID, t.CandidateName, t.Answered(), t.TotalQuestions, t.Timestamp)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&dir, "dir", "", "transcript directory (defaults to results.dir)")

	return cmd
}
