package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"stellar-copytrade-lab/internal/domain"
	"stellar-copytrade-lab/internal/snapshot"
)

func newReportCmd(a *app) *cobra.Command {
	var (
		name   string
		source string
		format string
	)
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Render the latest published candidate snapshot",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			defer a.close()
			if name == "" {
				src := domain.RunSource(source)
				if src != domain.RunSourceNetwork && src != domain.RunSourceDomain {
					return fmt.Errorf("unknown source %q (valid: network, domain)", source)
				}
				name = a.cfg.SnapshotName(src)
			}

			store, err := a.blobStore(cmd.Context())
			if err != nil {
				return err
			}
			if store == nil {
				return errors.New("snapshot backend is disabled")
			}
			set, err := snapshot.Load(cmd.Context(), store, name)
			if err != nil {
				return fmt.Errorf("load snapshot %s: %w", name, err)
			}
			return render(cmd.OutOrStdout(), set, format)
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "Snapshot name (defaults to the configured name for --source)")
	cmd.Flags().StringVar(&source, "source", string(domain.RunSourceNetwork), "Run source when --name is empty (network|domain)")
	cmd.Flags().StringVar(&format, "format", "markdown", "Output format (markdown|csv)")
	return cmd
}
