package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/minhajsf/Plan-it/internal/auth"
	"github.com/minhajsf/Plan-it/internal/clients"
)

var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Connect a Google account",
	Long: `Prints the Google consent URL, then reads the authorization code from
standard input. The granted token is stored encrypted in the local database.

The code is shown on the redirect page after consent (the "code" query
parameter of the callback URL).`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if planit.Auth == nil {
			return fmt.Errorf("google credentials not configured: provide credentials.json or set GOOGLE_CREDENTIALS_JSON")
		}
		return runAuth(cmd.Context(), planit.Auth, planit.Providers, cmd.InOrStdin(), cmd.OutOrStdout())
	},
}

// Connector exchanges an OAuth code for a connected account
type Connector interface {
	GetAuthURL(state string) string
	Connect(ctx context.Context, code string, deviceInfo string) (*auth.User, string, error)
}

func runAuth(ctx context.Context, connector Connector, providers *clients.Manager, in io.Reader, out io.Writer) error {
	state := fmt.Sprintf("planit-cli-%d", time.Now().Unix())
	fmt.Fprintf(out, "Open this URL in your browser and approve access:\n\n  %s\n\n", connector.GetAuthURL(state))
	fmt.Fprint(out, "Paste the authorization code: ")

	code, err := bufio.NewReader(in).ReadString('\n')
	code = strings.TrimSpace(code)
	if code == "" {
		if err != nil {
			return fmt.Errorf("failed to read authorization code: %w", err)
		}
		return fmt.Errorf("no authorization code given")
	}

	user, _, err := connector.Connect(ctx, code, "planit-cli")
	if err != nil {
		return err
	}
	if providers != nil {
		providers.Evict(user.ID)
	}

	fmt.Fprintf(out, "Connected as %s. Use --email %s with other commands.\n", user.Email, user.Email)
	return nil
}
