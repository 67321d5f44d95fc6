// Package companion backfills decoded text companions for binary fixtures.
package companion

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"fixview/internal/discovery"
	"fixview/internal/domain"
	"fixview/internal/execution"
)

// Decoder turns one fixture into its companion file.
type Decoder interface {
	Decode(ctx context.Context, input, output string) execution.Outcome
}

// Plan partitions the fixtures of a tree before any decoding happens.
// All paths are slash-separated and relative to Root.
type Plan struct {
	Root       string
	Discovered []string
	Excluded   []string // under the category that is never decoded
	Satisfied  []string // already have a companion
	Work       []string
}

// Report is the aggregated outcome of a backfill run.
type Report struct {
	Stats     domain.DecodeStats
	Succeeded []string
	Skipped   []string
	Failures  []domain.DecodeFailure
	Duration  time.Duration
}

// Resolver finds fixtures missing a companion and decodes them on a worker pool.
type Resolver struct {
	scanner  *discovery.Scanner
	filter   *discovery.Filter
	decoder  Decoder
	executor execution.Executor
	category string
	marker   string
	logger   *zap.Logger
}

// NewResolver creates a Resolver.
// category names the top-level preset excluded from decoding; marker is the literal root segment of extracted paths.
func NewResolver(scanner *discovery.Scanner, decoder Decoder, executor execution.Executor, category, marker string, logger *zap.Logger) *Resolver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Resolver{
		scanner:  scanner,
		filter:   discovery.NewFilter(),
		decoder:  decoder,
		executor: executor,
		category: category,
		marker:   marker,
		logger:   logger,
	}
}

// Plan enumerates fixtures under root, optionally narrowed by a wildcard pattern, and partitions them.
func (r *Resolver) Plan(root, pattern string) (*Plan, error) {
	fixtures, err := r.scanner.ScanFiles(root, domain.IsFixture)
	if err != nil {
		return nil, err
	}
	fixtures = r.filter.FilterByPattern(fixtures, pattern)

	plan := &Plan{Root: root, Discovered: fixtures}
	for _, rel := range fixtures {
		switch {
		case r.inCategory(rel):
			plan.Excluded = append(plan.Excluded, rel)
		case exists(filepath.Join(root, filepath.FromSlash(domain.CompanionName(rel)))):
			plan.Satisfied = append(plan.Satisfied, rel)
		default:
			plan.Work = append(plan.Work, rel)
		}
	}
	return plan, nil
}

func (r *Resolver) inCategory(rel string) bool {
	segments := discovery.SplitPath(rel)
	if len(segments) > 0 && segments[0] == r.marker {
		segments = segments[1:]
	}
	return len(segments) > 0 && segments[0] == r.category
}

// Resolve decodes every file in the plan's work set.
// One file's failure never stops the others; the report is built after the pool drains.
func (r *Resolver) Resolve(ctx context.Context, plan *Plan) *Report {
	tasks := make([]execution.Task, len(plan.Work))
	for i, rel := range plan.Work {
		input := filepath.Join(plan.Root, filepath.FromSlash(rel))
		tasks[i] = execution.Task{
			Name: rel,
			Do: func(ctx context.Context) execution.Outcome {
				return r.decodeOne(ctx, input)
			},
		}
	}

	results, duration := r.executor.Execute(ctx, tasks)

	report := &Report{
		Stats: domain.DecodeStats{
			Discovered:       len(plan.Discovered),
			ExcludedCategory: len(plan.Excluded),
			AlreadySatisfied: len(plan.Satisfied),
		},
		Duration: duration,
	}
	for _, res := range results {
		switch res.Outcome.Status {
		case execution.StatusSucceeded:
			report.Stats.Succeeded++
			report.Succeeded = append(report.Succeeded, res.Name)
		case execution.StatusSkipped:
			report.Stats.Skipped++
			report.Skipped = append(report.Skipped, res.Name)
		default:
			report.Stats.ErrorCount++
			report.Failures = append(report.Failures, domain.DecodeFailure{
				Path:   res.Name,
				Reason: res.Outcome.Reason,
				Output: res.Outcome.Output,
			})
			r.logger.Warn("decode failed",
				zap.String("path", res.Name),
				zap.String("reason", res.Outcome.Reason))
		}
	}
	return report
}

// decodeOne runs the decoder and makes sure only a valid companion is left on disk.
func (r *Resolver) decodeOne(ctx context.Context, input string) execution.Outcome {
	output := domain.CompanionName(input)
	outcome := r.decoder.Decode(ctx, input, output)

	if outcome.Status == execution.StatusSucceeded {
		if err := validateCompanion(output); err != nil {
			outcome = execution.Outcome{Status: execution.StatusFailed, Reason: err.Error(), Output: outcome.Output}
		}
	}
	if outcome.Status != execution.StatusSucceeded {
		if err := os.Remove(output); err != nil && !errors.Is(err, os.ErrNotExist) {
			r.logger.Warn("cannot remove partial companion", zap.String("path", output), zap.Error(err))
		}
	}
	return outcome
}

func validateCompanion(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("companion not written: %w", err)
	}
	var node yaml.Node
	if err := yaml.Unmarshal(data, &node); err != nil {
		return fmt.Errorf("companion is not valid yaml: %w", err)
	}
	return nil
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
