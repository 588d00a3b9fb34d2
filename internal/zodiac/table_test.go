package zodiac

import (
	"errors"
	"strings"
	"testing"

	"github.com/astromusic/astromusic/internal/model"
)

func TestDefault_LookupEverySign(t *testing.T) {
	t.Parallel()

	table := Default()

	for _, sign := range model.Signs {
		raag := table.Lookup(sign)
		if raag == "" {
			t.Errorf("Lookup(%s) returned empty raag", sign)
		}
		if table.LocalizedName(sign) == "" {
			t.Errorf("LocalizedName(%s) returned empty name", sign)
		}
	}
}

func TestDefault_KnownValues(t *testing.T) {
	t.Parallel()

	table := Default()

	tests := []struct {
		sign  model.Sign
		raag  string
		hindi string
	}{
		{model.Aries, "Bhairav", "मेष"},
		{model.Cancer, "Malkauns", "कर्क"},
		{model.Libra, "Darbari Kanada", "तुला"},
		{model.Pisces, "Todi", "मीन"},
	}

	for _, tt := range tests {
		if got := table.Lookup(tt.sign); got != tt.raag {
			t.Errorf("Lookup(%s) = %q, want %q", tt.sign, got, tt.raag)
		}
		if got := table.LocalizedName(tt.sign); got != tt.hindi {
			t.Errorf("LocalizedName(%s) = %q, want %q", tt.sign, got, tt.hindi)
		}
	}
}

func TestLookup_UnknownReturnsDefault(t *testing.T) {
	t.Parallel()

	table := Default()

	for _, sign := range []model.Sign{"", "Unknown", "aries", "Ophiuchus"} {
		if got := table.Lookup(sign); got != "Yaman" {
			t.Errorf("Lookup(%q) = %q, want Yaman", sign, got)
		}
		if _, ok := table.Raag(sign); ok {
			t.Errorf("Raag(%q) should report unmapped", sign)
		}
	}

	if table.DefaultRaag() != "Yaman" {
		t.Errorf("DefaultRaag() = %q, want Yaman", table.DefaultRaag())
	}
}

func TestInfo(t *testing.T) {
	t.Parallel()

	table := Default()

	info := table.Info("taurus")
	if info.English != "Taurus" || info.Hindi != "वृषभ" || info.SuggestedRaag != "Bhairavi" {
		t.Errorf("Info(taurus) = %+v", info)
	}

	unknown := table.Info("Nowhere")
	if unknown.English != "Nowhere" || unknown.Hindi != "" || unknown.SuggestedRaag != "Yaman" {
		t.Errorf("Info(Nowhere) = %+v", unknown)
	}
}

func TestEntries_Order(t *testing.T) {
	t.Parallel()

	entries := Default().Entries()
	if len(entries) != 12 {
		t.Fatalf("expected 12 entries, got %d", len(entries))
	}
	for i, e := range entries {
		if e.Sign != model.Signs[i] {
			t.Errorf("entry %d = %s, want %s", i, e.Sign, model.Signs[i])
		}
	}
}

func TestParse_Invalid(t *testing.T) {
	t.Parallel()

	full := string(defaultTableYAML)

	tests := []struct {
		name    string
		doc     string
		wantErr error
	}{
		{
			name:    "missing default",
			doc:     strings.Replace(full, "default_raag: Yaman", "default_raag: \"\"", 1),
			wantErr: ErrMissingRaag,
		},
		{
			name:    "unknown sign",
			doc:     strings.Replace(full, "sign: Pisces", "sign: Ophiuchus", 1),
			wantErr: ErrUnknownSign,
		},
		{
			name:    "duplicate sign",
			doc:     strings.Replace(full, "sign: Pisces", "sign: Aries", 1),
			wantErr: ErrDuplicateSign,
		},
		{
			name:    "incomplete",
			doc:     "default_raag: Yaman\nsigns:\n  - sign: Aries\n    hindi: x\n    raag: Bhairav\n",
			wantErr: ErrIncompleteTable,
		},
		{
			name:    "empty raag",
			doc:     strings.Replace(full, "raag: Todi", "raag: \"\"", 1),
			wantErr: ErrMissingRaag,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := Parse([]byte(tt.doc))
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Parse() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestParse_MalformedYAML(t *testing.T) {
	t.Parallel()

	if _, err := Parse([]byte("signs: [unterminated")); err == nil {
		t.Error("expected error for malformed YAML")
	}
}
