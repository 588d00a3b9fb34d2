// Package zodiac provides the static sign-to-raag recommendation table.
package zodiac

import (
	_ "embed"
	"errors"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/astromusic/astromusic/internal/model"
)

//go:embed table.yaml
var defaultTableYAML []byte

// Table loading errors.
var (
	ErrUnknownSign     = errors.New("unknown zodiac sign")
	ErrDuplicateSign   = errors.New("duplicate zodiac sign")
	ErrIncompleteTable = errors.New("table does not cover every sign")
	ErrMissingRaag     = errors.New("raag must not be empty")
)

// Entry is one row of the table.
type Entry struct {
	Sign  model.Sign
	Hindi string
	Raag  string
}

// Table maps each sign to its localized name and recommended raag.
// A Table is immutable once built and safe for concurrent use.
type Table struct {
	entries     map[model.Sign]Entry
	defaultRaag string
}

type tableDocument struct {
	DefaultRaag string `yaml:"default_raag"`
	Signs       []struct {
		Sign  string `yaml:"sign"`
		Hindi string `yaml:"hindi"`
		Raag  string `yaml:"raag"`
	} `yaml:"signs"`
}

// Default returns the built-in table.
// It panics if the embedded document is invalid, which is a build defect.
func Default() *Table {
	t, err := Parse(defaultTableYAML)
	if err != nil {
		panic(fmt.Sprintf("zodiac: embedded table is invalid: %v", err))
	}
	return t
}

// Parse builds a Table from a YAML document.
// Every one of the twelve signs must appear exactly once with a non-empty raag.
func Parse(data []byte) (*Table, error) {
	var doc tableDocument
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode table: %w", err)
	}
	if doc.DefaultRaag == "" {
		return nil, fmt.Errorf("default_raag: %w", ErrMissingRaag)
	}

	entries := make(map[model.Sign]Entry, len(model.Signs))
	for _, row := range doc.Signs {
		sign, ok := model.ParseSign(row.Sign)
		if !ok {
			return nil, fmt.Errorf("%q: %w", row.Sign, ErrUnknownSign)
		}
		if _, seen := entries[sign]; seen {
			return nil, fmt.Errorf("%s: %w", sign, ErrDuplicateSign)
		}
		if row.Raag == "" {
			return nil, fmt.Errorf("%s: %w", sign, ErrMissingRaag)
		}
		entries[sign] = Entry{Sign: sign, Hindi: row.Hindi, Raag: row.Raag}
	}

	if len(entries) != len(model.Signs) {
		return nil, fmt.Errorf("%d of %d signs: %w", len(entries), len(model.Signs), ErrIncompleteTable)
	}

	return &Table{entries: entries, defaultRaag: doc.DefaultRaag}, nil
}

// DefaultRaag is the recommendation used when no sign applies.
func (t *Table) DefaultRaag() string {
	return t.defaultRaag
}

// Lookup returns the raag for sign, or the default raag when sign is
// empty or not a zodiac sign.
func (t *Table) Lookup(sign model.Sign) string {
	if e, ok := t.entries[sign]; ok {
		return e.Raag
	}
	return t.defaultRaag
}

// Raag returns the raag for sign and whether sign is mapped.
func (t *Table) Raag(sign model.Sign) (string, bool) {
	e, ok := t.entries[sign]
	return e.Raag, ok
}

// LocalizedName returns the Hindi name of sign, or "" if sign is unknown.
func (t *Table) LocalizedName(sign model.Sign) string {
	return t.entries[sign].Hindi
}

// Info describes sign for display. Unknown signs echo the input with
// an empty localized name and the default raag.
func (t *Table) Info(sign string) model.ZodiacInfo {
	parsed, _ := model.ParseSign(sign)
	english := sign
	if parsed != "" {
		english = parsed.String()
	}
	return model.ZodiacInfo{
		English:       english,
		Hindi:         t.LocalizedName(parsed),
		SuggestedRaag: t.Lookup(parsed),
	}
}

// Entries returns the table rows in zodiacal order.
func (t *Table) Entries() []Entry {
	out := make([]Entry, 0, len(model.Signs))
	for _, s := range model.Signs {
		out = append(out, t.entries[s])
	}
	return out
}
