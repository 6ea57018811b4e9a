// Package cli defines the deskhand command tree.
package cli

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/deskhand/deskhand/internal/config"
	"github.com/deskhand/deskhand/internal/gateway"
	"github.com/deskhand/deskhand/internal/logger"
	"github.com/deskhand/deskhand/internal/version"
)

// app carries the loaded configuration shared by all commands.
type app struct {
	cfgPath string
	timeout time.Duration
	cfg     *config.Config
}

// NewRootCmd builds the deskhand command tree.
func NewRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:           "deskhand",
		Short:         "Command-line client for the helpdesk",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(a.cfgPath)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			a.cfg = cfg
			logger.Init(cfg.Log.Level, cfg.Log.Format)
			return nil
		},
	}

	root.PersistentFlags().StringVar(&a.cfgPath, "config", "", "config file (default "+config.DefaultPath()+")")
	root.PersistentFlags().DurationVar(&a.timeout, "timeout", gateway.DefaultTimeout, "request timeout")

	root.AddCommand(
		newLoginCmd(a),
		newTicketCmd(a),
		newAliasCmd(a),
		newVersionCmd(),
	)
	return root
}

// Execute runs the CLI. Fatal errors print a single line and exit non-zero.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "deskhand: %v\n", err)
		os.Exit(1)
	}
}

// gateway returns a client with the stored session attached, or an error
// when no session has been established yet.
func (a *app) gateway() (*gateway.Client, error) {
	if a.cfg.Session.Token == "" || a.cfg.Session.ServiceURL == "" {
		return nil, fmt.Errorf("not logged in; run 'deskhand login' first")
	}
	c := gateway.New(logger.L, a.cfg.Portal.URL, a.timeout)
	c.UseSession(a.cfg.Session.ServiceURL, a.cfg.Session.Token)
	return c, nil
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "deskhand %s\n", version.String())
		},
	}
}
