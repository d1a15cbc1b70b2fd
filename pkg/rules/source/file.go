package source

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"lcopilot-hq/lcopilot/pkg/rules/ast"
)

// Bundle is one ruleset file: the descriptor plus its rules.
type Bundle struct {
	Ruleset ast.Ruleset
	Rules   []ast.Rule

	// Path is the file the bundle was read from.
	Path string
}

// bundlePayload is the on-disk shape. The ruleset descriptor fields sit
// at the top level next to the rules list.
type bundlePayload struct {
	ast.Ruleset
	Rules []ast.Rule `json:"rules"`
}

// FileSource loads ruleset bundles from a file or directory.
type FileSource struct {
	path   string
	logger *slog.Logger
}

// NewFileSource creates a source over a bundle file or a directory of
// bundles (.yaml, .yml and .json files).
func NewFileSource(path string, logger *slog.Logger) *FileSource {
	if logger == nil {
		logger = slog.Default().With("component", "rules.source")
	}
	return &FileSource{path: path, logger: logger}
}

// LoadBundles loads every bundle under the configured path. Invalid
// files are logged and skipped so one bad upload cannot poison the
// whole directory.
func (s *FileSource) LoadBundles(ctx context.Context) ([]Bundle, error) {
	info, err := os.Stat(s.path)
	if err != nil {
		return nil, fmt.Errorf("failed to stat path %q: %w", s.path, err)
	}

	if !info.IsDir() {
		bundle, err := LoadBundle(s.path)
		if err != nil {
			return nil, err
		}
		return []Bundle{*bundle}, nil
	}

	var bundles []Bundle
	err = filepath.Walk(s.path, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() || !isBundleFile(path) {
			return nil
		}

		bundle, err := LoadBundle(path)
		if err != nil {
			s.logger.Warn("failed to load ruleset bundle, skipping",
				"path", path,
				"error", err,
			)
			return nil
		}

		bundles = append(bundles, *bundle)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk directory %q: %w", s.path, err)
	}

	s.logger.Info("loaded ruleset bundles",
		"path", s.path,
		"bundle_count", len(bundles),
	)

	return bundles, nil
}

// LoadBundle reads and validates a single bundle file.
func LoadBundle(path string) (*Bundle, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read bundle %q: %w", path, err)
	}

	payload, err := decodeBundle(data, filepath.Ext(path))
	if err != nil {
		return nil, fmt.Errorf("failed to parse bundle %q: %w", path, err)
	}

	if err := validateBundle(payload); err != nil {
		return nil, fmt.Errorf("invalid bundle %q: %w", path, err)
	}

	ruleset := payload.Ruleset
	ruleset.Location = path
	ruleset.RuleCount = len(payload.Rules)

	return &Bundle{
		Ruleset: ruleset,
		Rules:   payload.Rules,
		Path:    path,
	}, nil
}

// decodeBundle parses the file content. YAML is normalized through a
// JSON round trip so the rule types keep a single set of field tags.
func decodeBundle(data []byte, ext string) (*bundlePayload, error) {
	var payload bundlePayload

	switch ext {
	case ".json":
		if err := json.Unmarshal(data, &payload); err != nil {
			return nil, err
		}
	default:
		var tree any
		if err := yaml.Unmarshal(data, &tree); err != nil {
			return nil, err
		}
		normalized, err := json.Marshal(tree)
		if err != nil {
			return nil, err
		}
		if err := json.Unmarshal(normalized, &payload); err != nil {
			return nil, err
		}
	}

	return &payload, nil
}

// validateBundle checks the descriptor fields the store requires.
func validateBundle(payload *bundlePayload) error {
	switch {
	case payload.ID == "":
		return fmt.Errorf("ruleset_id is required")
	case payload.Domain == "":
		return fmt.Errorf("domain is required")
	case payload.Version == "":
		return fmt.Errorf("ruleset_version is required")
	case len(payload.Rules) == 0:
		return fmt.Errorf("bundle carries no rules")
	}
	if payload.Jurisdiction == "" {
		payload.Jurisdiction = "global"
	}
	return nil
}

func isBundleFile(path string) bool {
	switch filepath.Ext(path) {
	case ".yaml", ".yml", ".json":
		return true
	default:
		return false
	}
}
