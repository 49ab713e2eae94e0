package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"interview-console/internal/api"
	"interview-console/internal/apitest"
	"interview-console/internal/observability"

	"github.com/spf13/cobra"
)

var seedQuestions = []api.Question{
	{Text: "What is JSX?", Domain: "Web", TechStack: "React", Difficulty: api.DifficultyMedium, Tags: []string{"react", "jsx"}},
	{Text: "When does a component re-render?", Domain: "Web", TechStack: "React", Difficulty: api.DifficultyMedium, Tags: []string{"react", "rendering"}},
	{Text: "How do you cancel a goroutine?", Domain: "Backend", TechStack: "Go", Difficulty: api.DifficultyMedium, Tags: []string{"go", "context"}},
}

func newDevServerCmd() *cobra.Command {
	var (
		addr string
		seed bool
	)

	cmd := &cobra.Command{
		Use:   "dev-server",
		Short: "Serve an in-memory interview backend for local runs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			backend := apitest.NewBackend()
			if seed {
				for _, q := range seedQuestions {
					backend.AddQuestion(q)
				}
			}

			srv := &http.Server{
				Addr:              addr,
				Handler:           backend,
				ReadHeaderTimeout: 10 * time.Second,
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			errCh := make(chan error, 1)
			go func() {
				observability.Logger().Info("dev server listening", "addr", addr)
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					errCh <- err
				}
				close(errCh)
			}()

			select {
			case err := <-errCh:
				return err
			case <-ctx.Done():
			}

			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&addr, "addr", "127.0.0.1:3000", "listen address")
	flags.BoolVar(&seed, "seed", false, "preload a few sample questions")

	return cmd
}
