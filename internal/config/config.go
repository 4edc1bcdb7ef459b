// Package config holds the run configuration of the recombination scan and
// parses it from positional command-line arguments.
package config

import (
	"fmt"
	"strconv"
	"time"

	"github.com/Desperadko/rat-prototype/internal/alignment"
	"github.com/Desperadko/rat-prototype/internal/scan"
	"github.com/Desperadko/rat-prototype/internal/sequence"
)

// Scan parameters
const (
	DefaultThreads = scan.DefaultThreads
	DefaultWindow  = 20
	DefaultStep    = 5
)

// Alignment parameters
const (
	DefaultGapPenalty = alignment.DefaultGapPenalty
)

// Coordinator parameters
const (
	DefaultTimeout = scan.DefaultTimeout
)

// Output formats
const (
	FormatText = "text"
	FormatJSON = "json"
)

// Positional argument bounds
const (
	MinArgs = 4
	MaxArgs = 7
)

// Usage describes the positional arguments.
const Usage = "<sequence type> <recombinant file> <parent 1 file> <parent 2 file> " +
	"[number of threads] [window size] [step size]\n" +
	"Accepted sequence types: d - DNA | r - RNA\n" +
	"Accepted file formats: FASTA"

// ArgumentError describes an invalid command-line argument.
type ArgumentError struct {
	Name   string
	Value  string
	Reason string
}

func (e *ArgumentError) Error() string {
	if e.Value == "" {
		return fmt.Sprintf("%s: %s", e.Name, e.Reason)
	}
	return fmt.Sprintf("invalid input for '%s': %s (%s)", e.Name, e.Value, e.Reason)
}

// Config is everything one scan run needs.
type Config struct {
	SeqType         sequence.SequenceType
	RecombinantPath string
	Parent1Path     string
	Parent2Path     string

	Threads int
	Window  int
	Step    int

	GapPenalty int
	Timeout    time.Duration
	Stream     bool
	Format     string
}

// Default returns a Config with every tunable at its default value.
func Default() Config {
	return Config{
		SeqType:    sequence.DNA,
		Threads:    DefaultThreads,
		Window:     DefaultWindow,
		Step:       DefaultStep,
		GapPenalty: DefaultGapPenalty,
		Timeout:    DefaultTimeout,
		Format:     FormatText,
	}
}

// FromArgs parses the positional arguments
//
//	<type> <recombinant> <parent1> <parent2> [threads] [window] [step]
//
// on top of base and validates the result.
func FromArgs(base Config, args []string) (Config, error) {
	cfg := base
	if len(args) < MinArgs {
		return cfg, &ArgumentError{
			Name:   "arguments",
			Reason: fmt.Sprintf("program accepts at least %d arguments: %s", MinArgs, Usage),
		}
	}
	if len(args) > MaxArgs {
		return cfg, &ArgumentError{
			Name:   "arguments",
			Reason: fmt.Sprintf("program accepts at most %d arguments: %s", MaxArgs, Usage),
		}
	}

	t, err := sequence.ParseType(args[0])
	if err != nil {
		return cfg, &ArgumentError{Name: "sequence type", Value: args[0], Reason: "accepted: d - DNA | r - RNA"}
	}
	cfg.SeqType = t
	cfg.RecombinantPath = args[1]
	cfg.Parent1Path = args[2]
	cfg.Parent2Path = args[3]

	optional := []struct {
		name string
		dst  *int
	}{
		{"number of threads", &cfg.Threads},
		{"window size", &cfg.Window},
		{"step size", &cfg.Step},
	}
	for i, opt := range optional {
		if len(args) <= MinArgs+i {
			break
		}
		raw := args[MinArgs+i]
		n, err := strconv.Atoi(raw)
		if err != nil {
			return cfg, &ArgumentError{Name: opt.name, Value: raw, Reason: "not an integer"}
		}
		*opt.dst = n
	}

	return cfg, cfg.Validate()
}

// Validate checks the numeric parameters and the output format.
func (c Config) Validate() error {
	positive := []struct {
		name  string
		value int
	}{
		{"number of threads", c.Threads},
		{"window size", c.Window},
		{"step size", c.Step},
	}
	for _, p := range positive {
		if p.value <= 0 {
			return &ArgumentError{Name: p.name, Value: strconv.Itoa(p.value), Reason: "must be greater than zero"}
		}
	}
	if c.GapPenalty < 0 {
		return &ArgumentError{Name: "gap penalty", Value: strconv.Itoa(c.GapPenalty), Reason: "must not be negative"}
	}
	if c.Timeout < 0 {
		return &ArgumentError{Name: "timeout", Value: c.Timeout.String(), Reason: "must not be negative"}
	}
	if c.Format != FormatText && c.Format != FormatJSON {
		return &ArgumentError{Name: "format", Value: c.Format, Reason: "accepted: text | json"}
	}
	return nil
}

// ScanMode maps the Stream flag to a scan mode.
func (c Config) ScanMode() scan.Mode {
	if c.Stream {
		return scan.ModeStream
	}
	return scan.ModeChunked
}
