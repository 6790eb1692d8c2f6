// Package config holds the run configuration of the simulator.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/sarchlab/vmsim/mem/vm/frame"
	"github.com/sarchlab/vmsim/mem/vm/tlb"
	"github.com/sarchlab/vmsim/mem/vm/translator"
)

// EnvPrefix prefixes every environment variable read by LoadEnv.
const EnvPrefix = "VMSIM_"

// Summary formats.
const (
	FormatText = "text"
	FormatJSON = "json"
)

// ErrInvalid is wrapped by every validation failure.
var ErrInvalid = errors.New("invalid configuration")

// Config describes one simulation run.
type Config struct {
	NumFrames              int    `json:"num_frames"`
	Policy                 string `json:"policy"`
	TLBEnabled             bool   `json:"tlb_enabled"`
	TLBCapacity            int    `json:"tlb_capacity"`
	TLBEvictionInvalidates bool   `json:"tlb_eviction_invalidates"`
	AddressFile            string `json:"address_file"`
	BackingStore           string `json:"backing_store"`
	RecordDB               string `json:"record_db"`
	LogLevel               string `json:"log_level"`
	SummaryFormat          string `json:"summary_format"`
}

// Defaults returns the configuration used when nothing else is given.
func Defaults() Config {
	return Config{
		NumFrames:              translator.DefaultNumFrames,
		Policy:                 string(frame.PolicyFIFO),
		TLBEnabled:             true,
		TLBCapacity:            tlb.DefaultCapacity,
		TLBEvictionInvalidates: true,
		BackingStore:           "BACKING_STORE.bin",
		LogLevel:               "INFO",
		SummaryFormat:          FormatText,
	}
}

// Load decodes a JSON file into v. Fields missing from the file keep the
// values v already holds.
func Load[T any](path string, v *T) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading config %s: %w", path, err)
	}

	err = json.Unmarshal(data, v)
	if err != nil {
		return fmt.Errorf("decoding config %s: %w", path, err)
	}

	return nil
}

// LoadEnv overrides the configuration with VMSIM_* environment variables.
// The given dotenv files are loaded first, if they exist. Variables already
// set in the environment win over the files.
func (c *Config) LoadEnv(dotenvFiles ...string) error {
	for _, f := range dotenvFiles {
		_, err := os.Stat(f)
		if err != nil {
			continue
		}

		err = godotenv.Load(f)
		if err != nil {
			return fmt.Errorf("loading %s: %w", f, err)
		}
	}

	strs := map[string]*string{
		"POLICY":         &c.Policy,
		"ADDRESSES":      &c.AddressFile,
		"BACKING_STORE":  &c.BackingStore,
		"RECORD":         &c.RecordDB,
		"LOG_LEVEL":      &c.LogLevel,
		"SUMMARY_FORMAT": &c.SummaryFormat,
	}
	for name, field := range strs {
		if v, ok := os.LookupEnv(EnvPrefix + name); ok {
			*field = v
		}
	}

	ints := map[string]*int{
		"FRAMES":       &c.NumFrames,
		"TLB_CAPACITY": &c.TLBCapacity,
	}
	for name, field := range ints {
		v, ok := os.LookupEnv(EnvPrefix + name)
		if !ok {
			continue
		}

		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("%s%s: %w", EnvPrefix, name, err)
		}

		*field = n
	}

	bools := map[string]*bool{
		"TLB":                      &c.TLBEnabled,
		"TLB_EVICTION_INVALIDATES": &c.TLBEvictionInvalidates,
	}
	for name, field := range bools {
		v, ok := os.LookupEnv(EnvPrefix + name)
		if !ok {
			continue
		}

		b, err := strconv.ParseBool(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("%s%s: %w", EnvPrefix, name, err)
		}

		*field = b
	}

	return nil
}

// Validate checks the configuration. A zero frame count is accepted; such a
// run fails at its first page fault.
func (c Config) Validate() error {
	if c.NumFrames < 0 {
		return fmt.Errorf("%w: negative frame count %d", ErrInvalid, c.NumFrames)
	}

	_, err := frame.ParsePolicy(c.Policy)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalid, err)
	}

	if c.TLBEnabled && c.TLBCapacity <= 0 {
		return fmt.Errorf("%w: TLB capacity must be positive, got %d",
			ErrInvalid, c.TLBCapacity)
	}

	switch c.SummaryFormat {
	case FormatText, FormatJSON:
	default:
		return fmt.Errorf("%w: unknown summary format %q",
			ErrInvalid, c.SummaryFormat)
	}

	return nil
}
