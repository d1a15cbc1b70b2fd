package source

import (
	"context"
	"log/slog"

	"lcopilot-hq/lcopilot/pkg/rules/store"
)

// AutoImporter ties the drafts directory to the rule store: every
// bundle found there is imported in draft mode, on startup and whenever
// the watcher sees a change. Draft imports never touch active rules, so
// the automation is safe to run unattended; activation stays a manual
// administrative step.
type AutoImporter struct {
	source   *FileSource
	importer *store.Importer
	watcher  *Watcher
	logger   *slog.Logger
}

// NewAutoImporter creates an auto importer over a drafts directory.
// The watcher may be nil for a one-shot import.
func NewAutoImporter(source *FileSource, importer *store.Importer, watcher *Watcher, logger *slog.Logger) *AutoImporter {
	if logger == nil {
		logger = slog.Default().With("component", "rules.autoimport")
	}
	return &AutoImporter{
		source:   source,
		importer: importer,
		watcher:  watcher,
		logger:   logger,
	}
}

// ImportAll loads every bundle and imports it as a draft. Per-bundle
// failures are logged; the sweep continues.
func (a *AutoImporter) ImportAll(ctx context.Context) error {
	bundles, err := a.source.LoadBundles(ctx)
	if err != nil {
		return err
	}

	for _, bundle := range bundles {
		summary, err := a.importer.Import(ctx, bundle.Ruleset, bundle.Rules, false)
		if err != nil {
			a.logger.Error("draft import failed",
				"path", bundle.Path,
				"ruleset_id", bundle.Ruleset.ID,
				"error", err,
			)
			continue
		}

		a.logger.Info("draft bundle imported",
			"path", bundle.Path,
			"ruleset_id", bundle.Ruleset.ID,
			"inserted", summary.Inserted,
			"skipped_existing", summary.SkippedExisting,
			"errors", len(summary.Errors),
		)
	}

	return nil
}

// Run performs an initial sweep and then blocks, re-importing on every
// change, until the context is cancelled.
func (a *AutoImporter) Run(ctx context.Context) error {
	if err := a.ImportAll(ctx); err != nil {
		a.logger.Error("initial draft sweep failed", "error", err)
	}

	if a.watcher == nil {
		<-ctx.Done()
		return nil
	}

	return a.watcher.Watch(ctx, func() error {
		return a.ImportAll(ctx)
	})
}
