package engine

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"lcopilot-hq/lcopilot/pkg/docs"
	"lcopilot-hq/lcopilot/pkg/rules/loader"
	"lcopilot-hq/lcopilot/pkg/rules/router"
	"lcopilot-hq/lcopilot/pkg/telemetry/metrics"
)

// Engine is the validation entry point: route, load, inject, evaluate.
type Engine struct {
	router   *router.Router
	loader   *loader.Loader
	executor *Executor
	metrics  *metrics.ValidationMetrics
	logger   *slog.Logger
}

// New assembles an engine from its stages.
func New(r *router.Router, l *loader.Loader, x *Executor, vm *metrics.ValidationMetrics, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default().With("component", "rules.engine")
	}
	return &Engine{
		router:   r,
		loader:   l,
		executor: x,
		metrics:  vm,
		logger:   logger,
	}
}

// Validate runs the full pipeline over one document context.
//
// A missing primary ruleset is a governance condition, not an infra
// failure: it yields a blocked report and a nil error. Storage and
// other infrastructure failures are returned as errors.
func (e *Engine) Validate(ctx context.Context, docctx *docs.Context) (*Report, error) {
	domains := e.router.ResolveDomainSequence(docctx)
	jurisdiction := docctx.EffectiveJurisdiction()

	loaded, err := e.loader.LoadRulesWithProvenance(ctx, domains, jurisdiction, docctx.DocumentType)
	if err != nil {
		var unavailable *loader.RulesetUnavailableError
		if errors.As(err, &unavailable) {
			if e.metrics != nil {
				e.metrics.RecordLoadFailure(unavailable.Domain)
			}
			e.logger.Error("validation blocked, primary ruleset unavailable",
				"domain", unavailable.Domain,
				"jurisdiction", jurisdiction,
				"tried_global", unavailable.TriedGlobal,
			)
			return &Report{
				Status:       StatusBlocked,
				GeneratedAt:  time.Now().UTC(),
				Domains:      domains,
				Jurisdiction: jurisdiction,
				BlockReason:  unavailable.Error(),
			}, nil
		}
		return nil, err
	}

	return e.executor.Execute(ctx, loaded, docctx), nil
}
