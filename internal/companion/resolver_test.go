package companion

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fixview/internal/config"
	"fixview/internal/discovery"
	"fixview/internal/domain"
	"fixview/internal/execution"
)

type fakeDecoder struct {
	mu    sync.Mutex
	calls []string
	fn    func(input, output string) execution.Outcome
}

func (d *fakeDecoder) Decode(ctx context.Context, input, output string) execution.Outcome {
	d.mu.Lock()
	d.calls = append(d.calls, input)
	d.mu.Unlock()
	return d.fn(input, output)
}

func writeFiles(t *testing.T, root string, files ...string) {
	t.Helper()
	for _, f := range files {
		p := filepath.Join(root, filepath.FromSlash(f))
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0755))
		require.NoError(t, os.WriteFile(p, []byte("x"), 0644))
	}
}

func newResolver(d Decoder) *Resolver {
	return NewResolver(discovery.NewScanner(nil), d, execution.NewWorkerPool(4), "general", "tests", nil)
}

const (
	validator = "tests/mainnet/phase0/ssz_static/Validator/ssz_random/case_0/serialized.ssz_snappy"
	state     = "tests/minimal/altair/sanity/blocks/pyspec_tests/empty/pre.ssz_snappy"
	decoded   = "tests/minimal/altair/sanity/blocks/pyspec_tests/empty/post.ssz_snappy"
	bls       = "tests/general/phase0/ssz_generic/basic_vector/valid/vec_0/serialized.ssz_snappy"
)

func TestResolver_Plan(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, validator, state, decoded, decoded+".yaml", bls,
		"tests/mainnet/phase0/ssz_static/Validator/ssz_random/case_0/roots.yaml")

	plan, err := newResolver(&fakeDecoder{}).Plan(root, "")
	require.NoError(t, err)

	assert.ElementsMatch(t, []string{validator, state, decoded, bls}, plan.Discovered)
	assert.Equal(t, []string{bls}, plan.Excluded)
	assert.Equal(t, []string{decoded}, plan.Satisfied)
	assert.ElementsMatch(t, []string{validator, state}, plan.Work)

	narrowed, err := newResolver(&fakeDecoder{}).Plan(root, "*/altair/*")
	require.NoError(t, err)
	assert.Equal(t, []string{state}, narrowed.Work)
}

func TestResolver_Plan_MissingRoot(t *testing.T) {
	_, err := newResolver(&fakeDecoder{}).Plan("/non/existent", "")
	assert.Error(t, err)
}

func TestResolver_Resolve(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, validator, state, decoded, bls)

	d := &fakeDecoder{fn: func(input, output string) execution.Outcome {
		switch filepath.Base(input) {
		case "serialized.ssz_snappy":
			assert.NoError(t, os.WriteFile(output, []byte("slot: 1\n"), 0644))
			return execution.Outcome{Status: execution.StatusSucceeded}
		case "pre.ssz_snappy":
			return execution.Outcome{Status: execution.StatusSkipped}
		default:
			// Partial output must not survive a failure
			assert.NoError(t, os.WriteFile(output, []byte("half"), 0644))
			return execution.Outcome{Status: execution.StatusFailed, Reason: "exit status 1", Output: "Traceback"}
		}
	}}
	r := newResolver(d)

	plan, err := r.Plan(root, "")
	require.NoError(t, err)
	report := r.Resolve(context.Background(), plan)

	assert.Equal(t, domain.DecodeStats{
		Discovered:       4,
		ExcludedCategory: 1,
		AlreadySatisfied: 0,
		Succeeded:        1,
		Skipped:          1,
		ErrorCount:       1,
	}, report.Stats)
	assert.Equal(t, []string{validator}, report.Succeeded)
	assert.Equal(t, []string{state}, report.Skipped)
	require.Len(t, report.Failures, 1)
	assert.Equal(t, decoded, report.Failures[0].Path)
	assert.Equal(t, "Traceback", report.Failures[0].Output)

	assert.FileExists(t, filepath.Join(root, validator+".yaml"))
	assert.NoFileExists(t, filepath.Join(root, state+".yaml"))
	assert.NoFileExists(t, filepath.Join(root, decoded+".yaml"))
}

func TestResolver_InvalidCompanionIsAnError(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, validator)

	r := newResolver(&fakeDecoder{fn: func(input, output string) execution.Outcome {
		assert.NoError(t, os.WriteFile(output, []byte("a: [unterminated"), 0644))
		return execution.Outcome{Status: execution.StatusSucceeded}
	}})
	plan, err := r.Plan(root, "")
	require.NoError(t, err)
	report := r.Resolve(context.Background(), plan)

	assert.Equal(t, 1, report.Stats.ErrorCount)
	assert.NoFileExists(t, filepath.Join(root, validator+".yaml"))
}

func TestResolver_SecondRunIsIdle(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, validator, state, bls)

	d := &fakeDecoder{fn: func(input, output string) execution.Outcome {
		assert.NoError(t, os.WriteFile(output, []byte("ok: true\n"), 0644))
		return execution.Outcome{Status: execution.StatusSucceeded}
	}}
	r := newResolver(d)

	plan, err := r.Plan(root, "")
	require.NoError(t, err)
	first := r.Resolve(context.Background(), plan)
	assert.Equal(t, 2, first.Stats.Succeeded)
	assert.Len(t, d.calls, 2)

	plan, err = r.Plan(root, "")
	require.NoError(t, err)
	assert.Empty(t, plan.Work)
	second := r.Resolve(context.Background(), plan)
	assert.Len(t, d.calls, 2, "second run must not invoke the decoder")
	assert.Equal(t, 2, second.Stats.AlreadySatisfied)
	assert.Equal(t, 1, second.Stats.ExcludedCategory)
}

func TestResolver_WithSubprocessSkip(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, validator)

	script := filepath.Join(t.TempDir(), "decode.sh")
	require.NoError(t, os.WriteFile(script, []byte("#!/bin/sh\nexit 2\n"), 0755))
	cfg := config.New()
	cfg.Decoder = "/bin/sh " + script
	cfg.DecodeTimeout = 5 * time.Second

	r := newResolver(execution.NewRunner(cfg))
	plan, err := r.Plan(root, "")
	require.NoError(t, err)
	report := r.Resolve(context.Background(), plan)

	assert.Equal(t, []string{validator}, report.Skipped)
	assert.Zero(t, report.Stats.ErrorCount)
	assert.NoFileExists(t, filepath.Join(root, validator+".yaml"))
}
