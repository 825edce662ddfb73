package slug

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEncode(t *testing.T) {
	tests := []struct {
		name string
		in   string
		id   int64
		want string
	}{
		{"simple", "Pasta Palace", 12, "pasta-palace-12"},
		{"name ending in digits", "Cafe 24", 7, "cafe-24-7"},
		{"punctuation stripped", "Joe's Diner & Grill!", 3, "joe-s-diner-grill-3"},
		{"whitespace runs collapse", "La   Piazza", 5, "la-piazza-5"},
		{"leading and trailing separators", "  --Bistro-- ", 9, "bistro-9"},
		{"empty name uses fallback", "", 3, "business-3"},
		{"symbol-only name uses fallback", "!!!", 8, "business-8"},
		{"zero id", "Taverna", 0, "taverna-0"},
		{"negative id clamps to zero", "Taverna", -4, "taverna-0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Encode(tt.in, tt.id))
		})
	}
}

func TestEncodeWith_CustomOptions(t *testing.T) {
	got := EncodeWith("", 4, Options{Fallback: "restaurant", Lowercase: true})
	assert.Equal(t, "restaurant-4", got)

	got = EncodeWith("Chez PIERRE", 4, Options{Lowercase: false})
	assert.Equal(t, "Chez-PIERRE-4", got)

	// Zero-value options still get the default fallback.
	got = EncodeWith("", 2, Options{})
	assert.Equal(t, "business-2", got)
}

func TestEncode_Deterministic(t *testing.T) {
	assert.Equal(t, Encode("Cafe 24", 7), Encode("Cafe 24", 7))
}

func TestDecode(t *testing.T) {
	tests := []struct {
		in       string
		wantName string
		wantID   int64
	}{
		{"pasta-palace-12", "pasta-palace", 12},
		{"cafe-24-7", "cafe-24", 7},
		{"business-3", "business", 3},
		{"no-id-suffix", "no-id-suffix", 0},
		{"plainword", "plainword", 0},
		{"12345", "12345", 0},   // digits without a hyphen are a name
		{"-7", "", 7},           // empty name, valid id
		{"trailing-", "trailing-", 0},
		{"", "", 0},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("%q", tt.in), func(t *testing.T) {
			name, id := Decode(tt.in)
			assert.Equal(t, tt.wantName, name)
			assert.Equal(t, tt.wantID, id)
		})
	}
}

func TestDecode_OverflowDegradesToZero(t *testing.T) {
	name, id := Decode("cafe-99999999999999999999999999")
	assert.Equal(t, "cafe-99999999999999999999999999", name)
	assert.Zero(t, id)
}

// Decoding a slug produced by Encode must recover the id exactly, even
// for hostile names. The name portion is allowed to be lossy.
func TestRoundTrip_IDIsPreserved(t *testing.T) {
	names := []string{
		"", "Cafe 24", "Pasta Palace", "Joe's Diner & Grill!",
		"24", "24-7", "a-1-b-2", "   ", "•••", "Ünïcode Бистро",
	}
	ids := []int64{0, 1, 7, 24, 1000, 987654321}

	for _, name := range names {
		for _, id := range ids {
			_, got := Decode(Encode(name, id))
			assert.Equal(t, id, got, "name=%q id=%d slug=%q", name, id, Encode(name, id))
		}
	}
}

func TestExtractID(t *testing.T) {
	assert.EqualValues(t, 0, ExtractID())
	assert.EqualValues(t, 5, ExtractID("abc-5", "ignored-9"))
	assert.EqualValues(t, 0, ExtractID("garbage"))
	assert.EqualValues(t, 0, ExtractID(""))
}
