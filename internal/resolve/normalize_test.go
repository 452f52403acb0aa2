package resolve_test

import (
	"testing"

	"github.com/dmorales/fastaccess/internal/resolve"
)

func TestNormalize(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "lowercases", in: "Spotify", want: "spotify"},
		{name: "strips diacritics", in: "Café", want: "cafe"},
		{name: "removes inner whitespace", in: "Visual Studio Code", want: "visualstudiocode"},
		{name: "removes tabs and newlines", in: " a\tb\nc ", want: "abc"},
		{name: "spanish accents", in: "Música", want: "musica"},
		{name: "ntilde keeps base letter", in: "Año Nuevo", want: "anonuevo"},
		{name: "empty", in: "", want: ""},
		{name: "only whitespace", in: "   \t ", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := resolve.Normalize(tt.in); got != tt.want {
				t.Errorf("Normalize(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestNormalize_Idempotent(t *testing.T) {
	t.Parallel()

	inputs := []string{"Café con Leche", "SPOTIFY", "  Ángel  ", "already-normal"}
	for _, in := range inputs {
		once := resolve.Normalize(in)
		twice := resolve.Normalize(once)
		if once != twice {
			t.Errorf("Normalize not idempotent for %q: first %q, second %q", in, once, twice)
		}
	}
}

func TestNormalize_AccentInsensitiveEquality(t *testing.T) {
	t.Parallel()

	if resolve.Normalize("Café") != resolve.Normalize("cafe") {
		t.Errorf("Normalize(%q) != Normalize(%q); accented and unaccented forms must compare equal", "Café", "cafe")
	}
}
