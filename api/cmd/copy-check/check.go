package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"copy-check/api/internal/config"
	"copy-check/api/internal/copycheck"
	"copy-check/api/internal/logging"
)

func newCheckCmd(configPath *string) *cobra.Command {
	var offline bool

	cmd := &cobra.Command{
		Use:   "check [request.json]",
		Short: "Check one request read from a file or stdin and print the result",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return err
			}
			log, err := logging.New(cfg.LogLevel, "console")
			if err != nil {
				return err
			}
			defer func() { _ = log.Sync() }()

			var raw []byte
			if len(args) == 1 && args[0] != "-" {
				raw, err = os.ReadFile(args[0])
			} else {
				raw, err = io.ReadAll(cmd.InOrStdin())
			}
			if err != nil {
				return fmt.Errorf("read request: %w", err)
			}

			in, err := copycheck.Validate(raw)
			if err != nil {
				return err
			}

			a, err := newApp(cmd.Context(), cfg, log, offline, false)
			if err != nil {
				return err
			}
			defer func() { _ = a.Close() }()

			res := a.svc.Run(cmd.Context(), in)
			log.Debug("copy check", zap.Int("status", res.Status), zap.String("path", res.Path))

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			enc.SetEscapeHTML(false)
			return enc.Encode(res.Output)
		},
	}
	cmd.Flags().BoolVar(&offline, "offline", false, "skip the model and print the rule-based result")
	return cmd
}
