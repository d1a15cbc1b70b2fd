package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"lcopilot-hq/lcopilot/pkg/cli"
	"lcopilot-hq/lcopilot/pkg/docs"
	"lcopilot-hq/lcopilot/pkg/rules/engine"
)

var validateFlags struct {
	documents    string
	domain       string
	jurisdiction string
	documentType string
	format       string
	strict       bool
}

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate a document presentation against the active rulesets",
	Long: `Evaluate an extracted document payload against the active compliance
rulesets.

The payload is a JSON object whose top-level keys are document roles
("lc", "invoice", "bill_of_lading", ...). The governing rulebook is
detected from the document text unless --domain overrides it.

Examples:
  # Validate with rulebook detection
  lcopilot validate --documents presentation.json

  # Pin the rulebook and jurisdiction
  lcopilot validate --documents presentation.json --domain icc.isp98 --jurisdiction bd

  # Machine-readable report, nonzero exit on discrepancies
  lcopilot validate --documents presentation.json --format json --strict`,
	RunE: runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)

	validateCmd.Flags().StringVarP(&validateFlags.documents, "documents", "d", "", "document payload JSON file (required)")
	validateCmd.Flags().StringVar(&validateFlags.domain, "domain", "", "override rulebook detection (e.g. icc.ucp600)")
	validateCmd.Flags().StringVar(&validateFlags.jurisdiction, "jurisdiction", "", "jurisdiction scope (default global)")
	validateCmd.Flags().StringVar(&validateFlags.documentType, "document-type", "", "narrow rules to one document kind")
	validateCmd.Flags().StringVar(&validateFlags.format, "format", "text", "output format: text, json")
	validateCmd.Flags().BoolVar(&validateFlags.strict, "strict", false, "exit nonzero when the presentation is discrepant or blocked")
	_ = validateCmd.MarkFlagRequired("documents")
}

func runValidate(cmd *cobra.Command, args []string) error {
	cfg, logger, err := loadConfig()
	if err != nil {
		return cli.NewConfigError("", err.Error())
	}

	payload, err := os.ReadFile(validateFlags.documents)
	if err != nil {
		return cli.NewCommandError("validate", fmt.Errorf("failed to read documents: %w", err))
	}
	docctx, err := docs.ParseContext(payload)
	if err != nil {
		return cli.NewCommandError("validate", err)
	}
	docctx.Domain = validateFlags.domain
	docctx.Jurisdiction = validateFlags.jurisdiction
	docctx.DocumentType = validateFlags.documentType

	ruleStore, err := openStore(cfg)
	if err != nil {
		return cli.NewCommandError("validate", err)
	}
	defer closeQuietly(ruleStore)

	sink, durable, err := openAudit(cfg)
	if err != nil {
		return cli.NewCommandError("validate", err)
	}
	if durable != nil {
		defer durable.Close()
	}

	eng, err := newEngine(cfg, ruleStore, sink, prometheus.NewRegistry(), logger)
	if err != nil {
		return cli.NewCommandError("validate", err)
	}

	report, err := eng.Validate(cmd.Context(), docctx)
	if err != nil {
		return cli.NewCommandError("validate", err)
	}

	if err := printReport(cmd.OutOrStdout(), report); err != nil {
		return err
	}

	if validateFlags.strict && report.Status != engine.StatusCompliant {
		return cli.NewCommandError("validate", fmt.Errorf("presentation is %s", report.Status))
	}
	return nil
}

func printReport(w io.Writer, report *engine.Report) error {
	if validateFlags.format == "json" {
		return cli.NewFormatter(cli.FormatJSON).FormatTo(w, report)
	}

	fmt.Fprintf(w, "Status: %s\n", report.Status)
	fmt.Fprintf(w, "Domains: %s\n", strings.Join(report.Domains, ", "))
	fmt.Fprintf(w, "Jurisdiction: %s", report.Jurisdiction)
	if report.BaseMetadata.EffectiveJurisdiction != "" &&
		report.BaseMetadata.EffectiveJurisdiction != report.Jurisdiction {
		fmt.Fprintf(w, " (served from %s)", report.BaseMetadata.EffectiveJurisdiction)
	}
	fmt.Fprintln(w)

	if report.Status == engine.StatusBlocked {
		fmt.Fprintf(w, "Blocked: %s\n", report.BlockReason)
		return nil
	}

	fmt.Fprintf(w, "Rules: %d evaluated, %d passed, %d failed, %d warnings\n",
		report.RulesEvaluated, report.Passed, report.Failed, report.Warnings)

	for _, outcome := range report.Discrepancies() {
		fmt.Fprintf(w, "\n✗ [%s] %s", outcome.RuleID, outcome.Title)
		if outcome.Article != "" {
			fmt.Fprintf(w, " (%s)", outcome.Article)
		}
		fmt.Fprintln(w)
		for _, cond := range outcome.Conditions {
			if cond.Status != engine.StatusFailed {
				continue
			}
			if cond.Message != "" {
				fmt.Fprintf(w, "    %s\n", cond.Message)
			} else {
				fmt.Fprintf(w, "    condition %d (%s) on %s failed\n", cond.Index, cond.Type, cond.Field)
			}
		}
	}
	return nil
}

func closeQuietly(v any) {
	if closer, ok := v.(io.Closer); ok {
		_ = closer.Close()
	}
}
