package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"stellar-copytrade-lab/internal/domain"
	"stellar-copytrade-lab/internal/orchestrator"
	"stellar-copytrade-lab/internal/reporting"
)

func newNetworkCmd(a *app) *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "network",
		Short: "Rank the most active wallets across the whole network",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			defer a.close()
			orch, err := a.orchestrator(cmd.Context())
			if err != nil {
				return err
			}
			res, err := orch.RunNetwork(cmd.Context())
			if err != nil {
				return err
			}
			return a.finish(cmd.OutOrStdout(), res, format)
		},
	}
	cmd.Flags().StringVar(&format, "format", "markdown", "Output format (markdown|csv|none)")
	return cmd
}

func newDomainCmd(a *app) *cobra.Command {
	var (
		domains []string
		format  string
	)
	cmd := &cobra.Command{
		Use:   "domain",
		Short: "Rank wallets trading the assets of the given home domains",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			defer a.close()
			if len(domains) == 0 {
				domains = a.cfg.Domain.Domains
			}
			if len(domains) == 0 {
				return fmt.Errorf("no domains given (use --domains or domain.domains)")
			}
			orch, err := a.orchestrator(cmd.Context())
			if err != nil {
				return err
			}
			res, err := orch.RunDomain(cmd.Context(), domains)
			if err != nil {
				return err
			}
			return a.finish(cmd.OutOrStdout(), res, format)
		},
	}
	cmd.Flags().StringSliceVar(&domains, "domains", nil, "Comma-separated home domains (e.g. lu.meme)")
	cmd.Flags().StringVar(&format, "format", "markdown", "Output format (markdown|csv|none)")
	return cmd
}

func (a *app) finish(w io.Writer, res *orchestrator.RunResult, format string) error {
	for _, e := range res.Errors {
		a.logger.Warn("run error", zap.String("run_id", res.RunID), zap.String("error", e))
	}
	a.logger.Info("run finished",
		zap.String("run_id", res.RunID),
		zap.String("source", string(res.Source)),
		zap.Int("wallets", res.WalletsFetched),
		zap.Int("rejected_rows", res.RowsRejected),
		zap.Int("summaries", res.SummariesEstimated),
		zap.Int("filtered", res.CandidatesFiltered),
		zap.Int("primary", res.Primary),
		zap.Int("secondary", res.Secondary),
	)
	return render(w, res.Candidates, format)
}

func render(w io.Writer, set *domain.CandidateSet, format string) error {
	switch format {
	case "markdown", "md":
		_, err := io.WriteString(w, reporting.RenderMarkdown(set))
		return err
	case "csv":
		out, err := reporting.RenderCSV(set)
		if err != nil {
			return err
		}
		_, err = io.WriteString(w, out)
		return err
	case "none":
		return nil
	default:
		return fmt.Errorf("unknown format %q (valid: markdown, csv, none)", format)
	}
}
