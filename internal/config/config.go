// Package config owns the fully-parsed search parameters: the CLI
// collaborator (cmd/btc_bruteforce, built on spf13/cobra and
// spf13/pflag) populates a Config and this package validates it before
// the orchestrator starts.
package config

import (
	"github.com/cockroachdb/errors"

	"btc_bruteforce/internal/predicate"
)

// SearchMode selects which predicate family a run searches for.
type SearchMode string

const (
	ModeCompressed   SearchMode = "compressed"
	ModeUncompressed SearchMode = "uncompressed"
	ModeBoth         SearchMode = "both"
	ModeMask         SearchMode = "mask"
	ModeSig          SearchMode = "sig"
	ModeTaproot      SearchMode = "taproot"
	ModeTxid         SearchMode = "txid"
	ModePattern      SearchMode = "pattern"
)

// Config is the fully-parsed, not-yet-validated set of search
// parameters.
type Config struct {
	Targets       []string
	HashFile      string // binary file of concatenated 20-byte hash160 values; alternative to Targets.
	Mode          SearchMode
	CPUThreads    int
	GPUThreads    int
	Seed          []byte
	StartPubKey   []byte // 33 or 65 byte SEC1 encoding; nil when not an offset search.
	RekeyMkeys    uint64
	MaxFound      int
	StopWhenFound bool
	Output        string
	MetricsAddr   string
	CaseInsensitive bool

	// Patterns holds glob targets for ModePattern; Targets is reused for
	// ModeCompressed/Uncompressed/Both address-prefix search.
	Patterns []string

	// TxidTemplateHex/TxidHoleOffset/TxidPrefixes configure ModeTxid.
	TxidTemplateHex string
	TxidHoleOffset  int
	TxidPrefixes    []string
}

// Validate enforces mode-specific input requirements; a failure here is
// a fatal error at init and causes a non-zero exit.
func (c *Config) Validate() error {
	switch c.Mode {
	case ModeCompressed, ModeUncompressed, ModeBoth:
		if len(c.Targets) == 0 && c.HashFile == "" {
			return errors.New("config: no targets registered")
		}
	case ModePattern:
		if len(c.Patterns) == 0 {
			return errors.New("config: no patterns registered")
		}
	case ModeTxid:
		if c.TxidTemplateHex == "" || len(c.TxidPrefixes) == 0 {
			return errors.New("config: txid mode requires a template and at least one prefix")
		}
	case ModeMask, ModeSig, ModeTaproot:
	default:
		return errors.Newf("config: unsupported mode %q", c.Mode)
	}
	if c.CPUThreads < 0 || c.GPUThreads < 0 {
		return errors.New("config: thread counts must be non-negative")
	}
	if c.CPUThreads == 0 && c.GPUThreads == 0 {
		return errors.New("config: at least one CPU or GPU thread is required")
	}
	if len(c.StartPubKey) != 0 && len(c.StartPubKey) != 33 && len(c.StartPubKey) != 65 {
		return errors.New("config: start-pubkey must be SEC1 compressed (33) or uncompressed (65) bytes")
	}
	return nil
}

// PredicateMode converts the configured search mode into the
// internal/predicate.Mode used by BatchEngine's serialization step.
func (c *Config) PredicateMode() predicate.Mode {
	switch c.Mode {
	case ModeUncompressed:
		return predicate.ModeUncompressed
	case ModeBoth:
		return predicate.ModeBoth
	default:
		return predicate.ModeCompressed
	}
}
