package domain

import (
	"path"
	"strings"
)

// Marker files and suffixes that identify fixture content.
const (
	DataFile        = "data.yaml"
	MetaFile        = "meta.yaml"
	FixtureSuffix   = ".ssz_snappy"
	CompanionSuffix = ".yaml"
)

// TestCaseDirectory is a terminal directory discovered during a walk
type TestCaseDirectory struct {
	Segments []string // Path relative to the walk root, split on "/"
	Files    []string // File names inside the directory, in walk order
}

// RelPath returns the slash-separated relative path of the directory.
func (d TestCaseDirectory) RelPath() string {
	return path.Join(d.Segments...)
}

// HierarchyKey locates a test case in the preset/fork/type/suite/config/case hierarchy
type HierarchyKey struct {
	Preset    string
	Fork      string
	TestType  string
	TestSuite string
	Config    string
	TestCase  string
}

// IsFixture reports whether name is a binary fixture (not a companion).
func IsFixture(name string) bool {
	return strings.HasSuffix(name, FixtureSuffix)
}

// IsCompanion reports whether name is a decoded companion of a fixture.
func IsCompanion(name string) bool {
	return strings.HasSuffix(name, FixtureSuffix+CompanionSuffix)
}

// CompanionName returns the companion file name for a fixture.
func CompanionName(fixture string) string {
	return fixture + CompanionSuffix
}

// FixtureOf returns the fixture name a companion belongs to.
func FixtureOf(companion string) string {
	return strings.TrimSuffix(companion, CompanionSuffix)
}

var operationTypes = map[string]string{
	"attestation":             "Attestation",
	"attester_slashing":       "AttesterSlashing",
	"block_header":            "BeaconBlock",
	"deposit":                 "Deposit",
	"proposer_slashing":       "ProposerSlashing",
	"voluntary_exit":          "SignedVoluntaryExit",
	"sync_aggregate":          "SyncAggregate",
	"execution_payload":       "ExecutionPayload",
	"withdrawals":             "ExecutionPayload",
	"bls_to_execution_change": "SignedBLSToExecutionChange",
}

// SSZType derives the container type a decoder would use for fixtures in this test case.
// ssz_static suites are named after their type; state-transition style runners operate on BeaconState.
func (k HierarchyKey) SSZType() string {
	switch k.TestType {
	case "ssz_static":
		return k.TestSuite
	case "operations":
		if t, ok := operationTypes[k.TestSuite]; ok {
			return t
		}
	case "epoch_processing", "fork", "transition", "finality", "random":
		return "BeaconState"
	case "sanity":
		if k.TestSuite == "blocks" || k.TestSuite == "slots" {
			return "BeaconState"
		}
	}

	var b strings.Builder
	for _, word := range strings.Split(k.TestSuite, "_") {
		if word == "" {
			continue
		}
		b.WriteString(strings.ToUpper(word[:1]) + word[1:])
	}
	return b.String()
}
