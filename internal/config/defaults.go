package config

import (
	"runtime"
	"time"
)

const (
	// DefaultProjectPath is the default project path
	DefaultProjectPath = "."
	// DefaultDataDir holds one directory per version plus versions.json
	DefaultDataDir = "data"
	// DefaultConfigFile is the optional project configuration file
	DefaultConfigFile = "fixview.yaml"
	// DefaultReleaseURL is where per-preset fixture archives are published
	DefaultReleaseURL = "https://github.com/ethereum/consensus-specs/releases/download"
	// DefaultDecoder is the command that turns a fixture into its companion
	DefaultDecoder = "python3 scripts/deserialize_ssz.py"
	// DefaultDecodeTimeout bounds a single decode invocation
	DefaultDecodeTimeout = 60 * time.Second
	// DefaultAddr is the listen address for serve
	DefaultAddr = ":8080"
	// DefaultGeneralCategory is the preset whose fixtures are never decoded
	DefaultGeneralCategory = "general"
	// DefaultTestsMarker is the literal root segment of every extracted test path
	DefaultTestsMarker = "tests"
	// DefaultDBDriver is the SQL driver used by export-db
	DefaultDBDriver = "sqlite"
	// DefaultSearchDebounce is the idle interval before a search is applied
	DefaultSearchDebounce = 300 * time.Millisecond
	// DefaultCacheSize is the number of loaded test cases the browser keeps
	DefaultCacheSize = 256
)

// DefaultProcessors is the default number of parallel decoders
var DefaultProcessors = runtime.NumCPU()

// DefaultPresets are the archives downloaded by prepare
var DefaultPresets = []string{
	"general",
	"minimal",
	"mainnet",
}
