// Command planit drives the assistant from a terminal: one-shot prompts,
// an interactive chat, record listing and Google account connection.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/minhajsf/Plan-it/internal/app"
	"github.com/minhajsf/Plan-it/internal/config"
	"github.com/minhajsf/Plan-it/internal/logging"
	"github.com/minhajsf/Plan-it/internal/provider"
)

var (
	// Global flags
	email   string
	verbose bool
	dryRun  bool

	logger *zap.Logger
	planit *app.App
)

var rootCmd = &cobra.Command{
	Use:   "planit",
	Short: "Manage Google Calendar events, Meet meetings and Gmail drafts in plain language",
	Long: `planit turns a plain-language request into a calendar event, a Google Meet
meeting or a Gmail draft, and keeps a local record of what it created so
later requests can update, remove or send it.

Examples:
  planit auth
  planit prompt "Set up a meeting with Brooke tomorrow at 5PM"
  planit chat`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.LoadFromEnv()
		if verbose {
			cfg.Debug = true
		}

		var err error
		logger, err = logging.New(cfg.Debug)
		if err != nil {
			return err
		}

		var opts []app.Option
		if dryRun {
			opts = append(opts, app.WithProvider(provider.NewMemory()))
		}

		planit, err = app.New(cmd.Context(), cfg, logger, opts...)
		return err
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if planit != nil {
			_ = planit.Close()
		}
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&email, "email", "e", os.Getenv("PLANIT_USER_EMAIL"), "account email (defaults to $PLANIT_USER_EMAIL)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log every pipeline stage")
	rootCmd.PersistentFlags().BoolVar(&dryRun, "dry-run", false, "apply actions to an in-memory provider instead of Google")

	recordsCmd.Flags().StringVarP(&recordsKind, "kind", "k", "", "only list calendar, meeting or mail records")

	rootCmd.AddCommand(promptCmd, chatCmd, recordsCmd, authCmd, timezoneCmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// currentUserID resolves --email to a local user, creating it on first use
func currentUserID() (int64, error) {
	if email == "" {
		return 0, fmt.Errorf("an account email is required: pass --email or set PLANIT_USER_EMAIL")
	}
	user, err := planit.DB.GetOrCreateUser(email)
	if err != nil {
		return 0, err
	}
	return user.ID, nil
}
