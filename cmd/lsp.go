// Copyright © 2024 The ELPS authors

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/luthersystems/tslint/config"
	"github.com/luthersystems/tslint/lsp"
)

// LSPCommand creates the "lsp" cobra command with optional embedder
// configuration. Rules added with WithRules become configurable in the
// workspace's tslint.json.
func LSPCommand(opts ...Option) *cobra.Command {
	cfg := newCmdConfig(opts)

	var (
		stdio bool
		port  int
	)

	cmd := &cobra.Command{
		Use:           "lsp [flags]",
		SilenceUsage:  true,
		SilenceErrors: true,
		Short:         "Start the tslint Language Server Protocol server",
		Long: `Start an LSP server publishing lint failures as diagnostics.

The server lints documents as they are opened, edited and saved, and offers
code actions that apply a failure's fix, disable its rule for a line, or
apply every fix in the document.

Rules come from the file named by --config, else from the tslint.json
nearest the workspace root sent by the client, else from the defaults.

Transport modes:
  --stdio      Use stdin/stdout for LSP communication (default)
  --port N     Listen for an LSP client on TCP port N

Examples:
  tslint lsp                           Start with stdio transport
  tslint lsp --stdio                   Same as above (explicit)
  tslint lsp --port 7998               Start with TCP on port 7998`,
		Args: cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			log := cfg.logger()
			serverOpts := []lsp.Option{lsp.WithLogger(log), lsp.WithLookup(cfg.lookup)}
			if cfgFile != "" {
				conf, err := config.LoadFor(cfgFile, ".")
				if err != nil {
					return badInvocation(err)
				}
				configured, err := conf.Resolve(cfg.lookup, log)
				if err != nil {
					return badInvocation(err)
				}
				serverOpts = append(serverOpts, lsp.WithRules(configured))
			}

			srv := lsp.New(serverOpts...)

			if !stdio && port > 0 {
				addr := fmt.Sprintf("localhost:%d", port)
				log.WithField("addr", addr).Info("tslint LSP server listening")
				if err := srv.RunTCP(addr); err != nil {
					return fmt.Errorf("lsp server error: %w", err)
				}
				return nil
			}
			if err := srv.RunStdio(); err != nil {
				return fmt.Errorf("lsp server error: %w", err)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&stdio, "stdio", false,
		"Use stdin/stdout for LSP communication (default behavior)")
	cmd.Flags().IntVar(&port, "port", 0,
		"TCP port for LSP server (use instead of --stdio)")

	return cmd
}

func init() {
	rootCmd.AddCommand(LSPCommand())
}
