package cli

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"cuelang.org/go/cue/token"
	"gopkg.in/yaml.v3"

	"github.com/roach88/lineup/internal/compiler"
	"github.com/roach88/lineup/internal/ir"
	"github.com/roach88/lineup/internal/store"
)

// Error code constants - unified across all CLI commands.
const (
	ErrCodeGeneric      = "E001" // Generic/unknown error
	ErrCodeReadFailed   = "E002" // Input file could not be read
	ErrCodeParseFailed  = "E003" // YAML input malformed
	ErrCodeLeagueFailed = "E004" // CUE league did not compile
	ErrCodeNotFound     = "E005" // Path not found
	ErrCodeInvalid      = "E006" // Input compiled but is semantically invalid
	ErrCodeStoreFailed  = "E007" // Database open, read or write error
	ErrCodeMissingTeam  = "E008" // --team is required
	ErrCodeRejected     = "E009" // Proposals or moves rejected by validation
	ErrCodeNotCommitted = "E010" // One or more players were not committed
)

// LoadError represents an error that occurred while loading command input.
type LoadError struct {
	Code    string
	Message string
	Pos     token.Pos // CUE position if available
}

func (e *LoadError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s", e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(), e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// LoadLeague compiles and validates a CUE league file.
func LoadLeague(path string) (*ir.PositionSchema, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("league file not found: %s", path)}
	}

	schema, err := compiler.CompileLeagueFile(path)
	if err != nil {
		var compileErr *compiler.CompileError
		if errors.As(err, &compileErr) {
			return nil, &LoadError{Code: ErrCodeLeagueFailed, Message: compileErr.Field + ": " + compileErr.Message, Pos: compileErr.Pos}
		}
		return nil, &LoadError{Code: ErrCodeLeagueFailed, Message: err.Error()}
	}

	if verrs := compiler.ValidateSchema(*schema); len(verrs) > 0 {
		msgs := make([]string, len(verrs))
		for i, v := range verrs {
			msgs[i] = v.Error()
		}
		return nil, &LoadError{Code: ErrCodeInvalid, Message: "invalid league: " + strings.Join(msgs, "; ")}
	}
	return schema, nil
}

// RosterFile is the YAML form of a team roster.
type RosterFile struct {
	Roster []ir.RosterEntry `yaml:"roster"`
}

// CandidatesFile is the YAML form of an acquisition batch. Overrides maps a
// player id to a manual target ("SS_0", "BN", "MINORS").
type CandidatesFile struct {
	Candidates []ir.Candidate    `yaml:"candidates"`
	Overrides  map[string]string `yaml:"overrides,omitempty"`
}

// LoadRosterFile reads a roster YAML file.
func LoadRosterFile(path string) ([]ir.RosterEntry, error) {
	var f RosterFile
	if err := decodeYAML(path, &f); err != nil {
		return nil, err
	}
	for i, e := range f.Roster {
		if e.Player.ID == "" {
			return nil, &LoadError{Code: ErrCodeInvalid, Message: fmt.Sprintf("roster[%d]: player id is required", i)}
		}
	}
	if f.Roster == nil {
		f.Roster = []ir.RosterEntry{}
	}
	return f.Roster, nil
}

// LoadCandidatesFile reads a candidates YAML file and parses its overrides.
func LoadCandidatesFile(path string) ([]ir.Candidate, map[string]ir.Target, error) {
	var f CandidatesFile
	if err := decodeYAML(path, &f); err != nil {
		return nil, nil, err
	}
	if len(f.Candidates) == 0 {
		return nil, nil, &LoadError{Code: ErrCodeInvalid, Message: "candidates list is required and must be non-empty"}
	}
	for i, c := range f.Candidates {
		if c.Player.ID == "" {
			return nil, nil, &LoadError{Code: ErrCodeInvalid, Message: fmt.Sprintf("candidates[%d]: player id is required", i)}
		}
	}

	overrides := make(map[string]ir.Target, len(f.Overrides))
	for playerID, raw := range f.Overrides {
		t, err := ir.ParseTarget(raw)
		if err != nil {
			return nil, nil, &LoadError{Code: ErrCodeInvalid, Message: fmt.Sprintf("override for %s: %v", playerID, err)}
		}
		overrides[playerID] = t
	}
	return f.Candidates, overrides, nil
}

func decodeYAML(path string, target any) error {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("file not found: %s", path)}
	}
	if err != nil {
		return &LoadError{Code: ErrCodeReadFailed, Message: err.Error()}
	}

	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(target); err != nil {
		return &LoadError{Code: ErrCodeParseFailed, Message: fmt.Sprintf("%s: %v", path, err)}
	}
	return nil
}

// openStore opens the configured database. Callers close it.
func openStore(opts *RootOptions) (*store.Store, error) {
	if opts.DB == "" {
		return nil, &LoadError{Code: ErrCodeStoreFailed, Message: "--db is required"}
	}
	if opts.Team == "" {
		return nil, &LoadError{Code: ErrCodeMissingTeam, Message: "--team is required"}
	}
	st, err := store.Open(opts.DB)
	if err != nil {
		return nil, &LoadError{Code: ErrCodeStoreFailed, Message: err.Error()}
	}
	return st, nil
}

// loadRoster resolves the roster a read-only command works on: the --roster
// file when given, else the team's committed roster, else an empty roster.
func loadRoster(ctx context.Context, opts *RootOptions, rosterPath string) ([]ir.RosterEntry, error) {
	if rosterPath != "" {
		return LoadRosterFile(rosterPath)
	}
	if opts.DB == "" {
		return []ir.RosterEntry{}, nil
	}
	st, err := openStore(opts)
	if err != nil {
		return nil, err
	}
	defer st.Close()

	entries, err := st.LoadRoster(ctx, opts.Team)
	if err != nil {
		return nil, &LoadError{Code: ErrCodeStoreFailed, Message: err.Error()}
	}
	return entries, nil
}
