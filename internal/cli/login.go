package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/deskhand/deskhand/internal/gateway"
	"github.com/deskhand/deskhand/internal/logger"
)

// EnvPassword supplies the login password non-interactively.
const EnvPassword = "DESKHAND_PASSWORD"

func newLoginCmd(a *app) *cobra.Command {
	var portalURL, user string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Authenticate and store the session",
		Long: `Log in against the helpdesk portal, resolve the session-scoped service
endpoint, and store both in the config file. The password is read from
` + EnvPassword + ` or prompted for; it is never persisted.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if portalURL == "" {
				portalURL = a.cfg.Portal.URL
			}
			if portalURL == "" {
				return fmt.Errorf("no portal URL; pass --portal or set portal.url in the config")
			}
			if user == "" {
				user = a.cfg.Portal.User
			}
			if user == "" {
				return fmt.Errorf("no username; pass --user or set portal.user in the config")
			}

			password, err := resolvePassword(user)
			if err != nil {
				return err
			}

			client := gateway.New(logger.L, portalURL, a.timeout)
			sess, err := client.Login(cmd.Context(), user, password)
			if err != nil {
				return err
			}

			a.cfg.Portal.URL = strings.TrimRight(portalURL, "/")
			a.cfg.Portal.User = user
			a.cfg.Session.Token = sess.Token
			a.cfg.Session.ServiceURL = sess.ServiceURL
			if err := a.cfg.Save(); err != nil {
				return fmt.Errorf("save config: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Logged in as %s\n", user)
			return nil
		},
	}

	cmd.Flags().StringVar(&portalURL, "portal", "", "portal base URL")
	cmd.Flags().StringVar(&user, "user", "", "login username")
	return cmd
}

func resolvePassword(user string) (string, error) {
	if p := os.Getenv(EnvPassword); p != "" {
		return p, nil
	}
	fmt.Fprintf(os.Stderr, "Password for %s: ", user)
	raw, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", fmt.Errorf("read password: %w", err)
	}
	if len(raw) == 0 {
		return "", fmt.Errorf("password is required")
	}
	return string(raw), nil
}
