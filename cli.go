package main

import (
	"io"
	"os"

	"interview-console/internal/api"
	"interview-console/internal/config"
	"interview-console/internal/metrics"
	"interview-console/internal/notify"
	"interview-console/internal/observability"
	"interview-console/internal/telegram"
	"interview-console/internal/views"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// app holds what every command needs once the configuration is loaded
type app struct {
	cfg     *config.Config
	client  *api.Client
	metrics *metrics.Metrics
	deps    views.Deps
}

type rootOptions struct {
	configPath string
	format     string

	app *app
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:           "interview-console",
		Short:         "Run interviews and manage the question bank against the interview backend",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd, opts.configPath)
			if err != nil {
				return err
			}
			opts.app = a
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if opts.app == nil {
				return
			}
			observability.Logger().Debug("command finished",
				append([]any{"command", cmd.CommandPath()}, opts.app.metrics.GetSnapshot().LogValues()...)...)
		},
	}

	flags := cmd.PersistentFlags()
	flags.StringVar(&opts.configPath, "config", "", "path to a YAML config file")
	flags.StringVar(&opts.format, "format", views.FormatText, "output format: text or json")

	cmd.AddCommand(newStatsCmd(opts))
	cmd.AddCommand(newSessionsCmd(opts))
	cmd.AddCommand(newQuestionsCmd(opts))
	cmd.AddCommand(newDevServerCmd())

	return cmd
}

func newApp(cmd *cobra.Command, configPath string) (*app, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}

	observability.Configure(cmd.ErrOrStderr(), cfg.Log.Format, cfg.Log.Level)

	m := metrics.NewMetrics()
	notifier := notify.Multi{notify.NewTerminal(cmd.ErrOrStderr())}
	if cfg.TelegramEnabled() {
		bot := telegram.NewWithAPIURL(cfg.Telegram.Token, cfg.Telegram.APIURL)
		notifier = append(notifier, telegram.NewNotifier(bot, cfg.Telegram.ChatID, cfg.Telegram.ErrorsOnly))
	}

	observability.WithFields("api_url", cfg.API.BaseURL, "telegram", cfg.TelegramEnabled()).Debug("console configured")

	return &app{
		cfg:     cfg,
		client:  api.NewClient(cfg.API.BaseURL, cfg.API.Timeout).WithMetrics(m),
		metrics: m,
		deps:    views.Deps{Notifier: notifier, Metrics: m},
	}, nil
}

func (a *app) interviewDefaults() api.NewInterview {
	return api.NewInterview{
		Domain:     a.cfg.FormDefaults.Domain,
		TechStack:  a.cfg.FormDefaults.TechStack,
		Difficulty: api.Difficulty(a.cfg.FormDefaults.Difficulty),
	}
}

func (a *app) questionDefaults() api.NewQuestion {
	return api.NewQuestion{
		Domain:     a.cfg.FormDefaults.Domain,
		TechStack:  a.cfg.FormDefaults.TechStack,
		Difficulty: api.Difficulty(a.cfg.FormDefaults.Difficulty),
	}
}

func (o *rootOptions) renderOptions(cmd *cobra.Command) views.RenderOptions {
	out := cmd.OutOrStdout()
	return views.RenderOptions{
		Format: o.format,
		Width:  terminalWidth(out),
		Color:  notify.UseColor(out),
	}
}

// terminalWidth returns 0 when w is not a terminal
func terminalWidth(w io.Writer) int {
	f, ok := w.(*os.File)
	if !ok || !term.IsTerminal(int(f.Fd())) {
		return 0
	}
	width, _, err := term.GetSize(int(f.Fd()))
	if err != nil {
		return 0
	}
	return width
}
