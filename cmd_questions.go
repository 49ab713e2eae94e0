package main

import (
	"fmt"

	"interview-console/internal/api"
	"interview-console/internal/observability"
	"interview-console/internal/views"

	"github.com/spf13/cobra"
)

func newQuestionsCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "questions",
		Short: "Browse and extend the question bank",
	}

	cmd.AddCommand(newQuestionsListCmd(opts))
	cmd.AddCommand(newQuestionsAddCmd(opts))

	return cmd
}

func newQuestionsListCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "Show existing questions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a := opts.app
			bank := views.NewQuestionBank(a.client, a.questionDefaults(), a.deps)
			defer bank.Close()

			loadErr := bank.Mount(cmd.Context())
			if err := bank.Render(cmd.OutOrStdout(), opts.renderOptions(cmd)); err != nil {
				return err
			}
			return loadErr
		},
	}
}

func newQuestionsAddCmd(opts *rootOptions) *cobra.Command {
	var (
		text        string
		domain      string
		techStack   string
		difficulty  string
		idealAnswer string
		tags        []string
	)

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a question to the bank",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a := opts.app
			bank := views.NewQuestionBank(a.client, a.questionDefaults(), a.deps)
			defer bank.Close()

			flags := cmd.Flags()
			bank.EditPending(func(q *api.NewQuestion) {
				q.Text = text
				q.IdealAnswer = idealAnswer
				if flags.Changed("domain") {
					q.Domain = domain
				}
				if flags.Changed("tech-stack") {
					q.TechStack = techStack
				}
				if flags.Changed("difficulty") {
					q.Difficulty = api.Difficulty(difficulty)
				}
			})

			for _, tag := range tags {
				bank.SetTagInput(tag)
				if !bank.AddTag() {
					observability.Logger().Debug("tag skipped", "tag", tag)
				}
			}

			q, err := bank.Create(cmd.Context())
			if err != nil {
				return err
			}

			if opts.format == views.FormatJSON {
				return bank.Render(cmd.OutOrStdout(), opts.renderOptions(cmd))
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added question %s\n", q.ID)
			return nil
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&text, "text", "", "question text")
	flags.StringVar(&domain, "domain", "", "domain (defaults to form_defaults.domain)")
	flags.StringVar(&techStack, "tech-stack", "", "tech stack (defaults to form_defaults.tech_stack)")
	flags.StringVar(&difficulty, "difficulty", "", "Easy, Medium or Hard (defaults to form_defaults.difficulty)")
	flags.StringVar(&idealAnswer, "ideal-answer", "", "reference answer")
	flags.StringArrayVar(&tags, "tag", nil, "tag to attach; repeat for more, duplicates are ignored")

	return cmd
}
