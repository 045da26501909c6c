package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"empty", "", ""},
		{"whitespace only", "   \t\n", ""},
		{"lowercases", "FinTech", "fintech"},
		{"ampersand expands", "Food & Beverage", "food and beverage"},
		{"punctuation stripped", "e-commerce, retail!", "e commerce retail"},
		{"whitespace collapsed", "tea   cafe\tchain", "tea cafe chain"},
		{"diacritics folded", "Café Résumé", "cafe resume"},
		{"gurgaon alias", "Gurgaon", "gurugram"},
		{"delhi ncr alias", "Delhi NCR", "new delhi"},
		{"bengaluru alias", "Bengaluru", "bangalore"},
		{"bombay alias", "Bombay", "mumbai"},
		{"alias inside phrase", "based in Bengaluru area", "based in bangalore area"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Normalize(tt.in))
		})
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	inputs := []string{"Food & Beverage", "Delhi NCR", "Café", "  IT   Services  "}
	for _, in := range inputs {
		once := Normalize(in)
		assert.Equal(t, once, Normalize(once), "normalize should be stable for %q", in)
	}
}

func TestNormalizeAll(t *testing.T) {
	got := NormalizeAll([]string{"FinTech", "", "  ", "Food & Beverage"})
	assert.Equal(t, []string{"fintech", "food and beverage"}, got)
}
