package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"lcopilot-hq/lcopilot/pkg/cli"
	"lcopilot-hq/lcopilot/pkg/rules/ast"
	"lcopilot-hq/lcopilot/pkg/rules/source"
	"lcopilot-hq/lcopilot/pkg/rules/store"
)

var rulesCmd = &cobra.Command{
	Use:   "rules",
	Short: "Manage compliance ruleset bundles",
	Long: `Import, publish and inspect ruleset bundles.

A bundle is a YAML or JSON file carrying one ruleset descriptor and its
rules. Importing stores the bundle as a draft without touching the
active ruleset; activating publishes it, atomically flipping the single
active ruleset for its domain and jurisdiction.`,
}

var rulesImportFlags struct {
	file     string
	activate bool
	format   string
}

var rulesImportCmd = &cobra.Command{
	Use:   "import",
	Short: "Import a ruleset bundle as a draft",
	Long: `Import a ruleset bundle without publishing it.

Draft imports only insert rules whose IDs are new; existing rules are
left untouched and counted as skipped, so a draft can never overwrite
the rules serving live validations.

Examples:
  # Draft import
  lcopilot rules import --file rulesets/ucp600.yaml

  # Import and publish in one step
  lcopilot rules import --file rulesets/ucp600.yaml --activate`,
	RunE: runRulesImport,
}

var rulesActivateCmd = &cobra.Command{
	Use:   "activate",
	Short: "Publish a ruleset bundle",
	Long: `Import a ruleset bundle and make it the active ruleset for its domain
and jurisdiction.

Activation upserts every rule in the bundle and flips is_active in a
single transaction: the previous active ruleset for the same scope is
archived in the same step, so readers never observe two active rulesets.
Re-activating an archived ruleset performs a rollback.`,
	RunE: runRulesActivate,
}

var rulesListFlags struct {
	all    bool
	format string
}

var rulesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List known rulesets",
	Long: `List ruleset descriptors with their lifecycle state.

By default only active rulesets are shown; --all includes drafts and
archived versions.`,
	RunE: runRulesList,
}

func init() {
	rootCmd.AddCommand(rulesCmd)
	rulesCmd.AddCommand(rulesImportCmd, rulesActivateCmd, rulesListCmd)

	rulesImportCmd.Flags().StringVarP(&rulesImportFlags.file, "file", "f", "", "bundle file (required)")
	rulesImportCmd.Flags().BoolVar(&rulesImportFlags.activate, "activate", false, "publish the bundle after import")
	rulesImportCmd.Flags().StringVar(&rulesImportFlags.format, "format", "text", "output format: text, json")
	_ = rulesImportCmd.MarkFlagRequired("file")

	rulesActivateCmd.Flags().StringVarP(&rulesImportFlags.file, "file", "f", "", "bundle file (required)")
	rulesActivateCmd.Flags().StringVar(&rulesImportFlags.format, "format", "text", "output format: text, json")
	_ = rulesActivateCmd.MarkFlagRequired("file")

	rulesListCmd.Flags().BoolVar(&rulesListFlags.all, "all", false, "include draft and archived rulesets")
	rulesListCmd.Flags().StringVar(&rulesListFlags.format, "format", "text", "output format: text, json")
}

func runRulesImport(cmd *cobra.Command, args []string) error {
	return importBundle(cmd, rulesImportFlags.activate)
}

func runRulesActivate(cmd *cobra.Command, args []string) error {
	return importBundle(cmd, true)
}

func importBundle(cmd *cobra.Command, activate bool) error {
	cfg, logger, err := loadConfig()
	if err != nil {
		return cli.NewConfigError("", err.Error())
	}

	bundle, err := source.LoadBundle(rulesImportFlags.file)
	if err != nil {
		return cli.NewCommandError("rules import", err)
	}

	ruleStore, err := openStore(cfg)
	if err != nil {
		return cli.NewCommandError("rules import", err)
	}
	defer closeQuietly(ruleStore)

	sink, durable, err := openAudit(cfg)
	if err != nil {
		return cli.NewCommandError("rules import", err)
	}
	if durable != nil {
		defer durable.Close()
	}

	importer := store.NewImporter(ruleStore, sink, logger)
	summary, err := importer.Import(cmd.Context(), bundle.Ruleset, bundle.Rules, activate)
	if err != nil {
		return cli.NewCommandError("rules import", err)
	}

	return printImportSummary(cmd.OutOrStdout(), summary)
}

func printImportSummary(w io.Writer, summary *store.ImportSummary) error {
	if rulesImportFlags.format == "json" {
		return cli.NewFormatter(cli.FormatJSON).FormatTo(w, summary)
	}

	fmt.Fprintf(w, "Ruleset %s version %s imported (%s)\n",
		summary.RulesetID, summary.RulesetVersion, summary.Mode)
	fmt.Fprintf(w, "  inserted: %d  updated: %d  skipped: %d\n",
		summary.Inserted, summary.Updated, summary.SkippedExisting)
	for _, importErr := range summary.Errors {
		fmt.Fprintf(w, "  ✗ %s: %s\n", importErr.RuleID, importErr.Message)
	}
	if summary.ErrorCount() > 0 {
		fmt.Fprintf(w, "%d rule(s) rejected\n", summary.ErrorCount())
	}
	return nil
}

func runRulesList(cmd *cobra.Command, args []string) error {
	cfg, _, err := loadConfig()
	if err != nil {
		return cli.NewConfigError("", err.Error())
	}

	ruleStore, err := openStore(cfg)
	if err != nil {
		return cli.NewCommandError("rules list", err)
	}
	defer closeQuietly(ruleStore)

	rulesets, err := ruleStore.ListRulesets(cmd.Context())
	if err != nil {
		return cli.NewCommandError("rules list", err)
	}

	if !rulesListFlags.all {
		filtered := rulesets[:0]
		for _, rs := range rulesets {
			if rs.Status == ast.StatusActive {
				filtered = append(filtered, rs)
			}
		}
		rulesets = filtered
	}

	if rulesListFlags.format == "json" {
		return cli.NewFormatter(cli.FormatJSON).FormatTo(cmd.OutOrStdout(), rulesets)
	}

	if len(rulesets) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No rulesets found.")
		return nil
	}

	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "RULESET\tVERSION\tDOMAIN\tJURISDICTION\tSTATUS\tRULES")
	for _, rs := range rulesets {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%d\n",
			rs.ID, rs.Version, rs.Domain, rs.Jurisdiction, rs.Status, rs.RuleCount)
	}
	return tw.Flush()
}
