package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/frontinsight/loginpage/internal/config"
	"github.com/frontinsight/loginpage/internal/form"
	"github.com/frontinsight/loginpage/internal/logger"
	"github.com/frontinsight/loginpage/internal/services"
	"github.com/frontinsight/loginpage/internal/terminal"
	"github.com/frontinsight/loginpage/internal/validation"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		email      string
		delay      time.Duration
		accessible bool
	)
	cmd := &cobra.Command{
		Use:           "prompt",
		Short:         "Log in from the terminal",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("delay") {
				delay = cfg.SubmitDelay
			}
			// Logs go to stderr so they never interleave with the form.
			log := logger.NewLogger(&logger.Config{Level: cfg.LogLevel, JSON: cfg.LogJSON, Output: os.Stderr})

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()

			f := form.New(services.NewSimulatedAuthenticator(delay, log), form.WithLogger(log))
			defer f.Dispose()
			if email != "" {
				if err := f.SetField(validation.FieldEmail, email); err != nil {
					return err
				}
			}

			fd := int(os.Stdout.Fd())
			width, height, err := term.GetSize(fd)
			if err != nil {
				width, height = 0, 0
			}
			p := &terminal.Prompt{
				Form:              f,
				Output:            cmd.OutOrStdout(),
				Width:             width,
				Height:            height,
				Accessible:        accessible || !term.IsTerminal(fd),
				ForgotPasswordURL: cfg.ForgotPasswordURL,
				SignUpURL:         cfg.SignUpURL,
			}
			p.SetEmail(email)

			err = p.Run(ctx)
			if errors.Is(err, huh.ErrUserAborted) || errors.Is(err, context.Canceled) {
				return nil
			}
			if err != nil {
				fmt.Fprintln(cmd.ErrOrStderr(), err)
			}
			return err
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "prefill the email address")
	cmd.Flags().DurationVar(&delay, "delay", services.DefaultSubmitDelay, "simulated submission delay")
	cmd.Flags().BoolVar(&accessible, "accessible", false, "line-based prompts instead of the interactive form")
	return cmd
}
