package ui

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"testing"

	"portal_automation/domain/entities"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestParseRecordTotal(t *testing.T) {
	cases := map[string]int{
		"Showing 1 to 20 of 13,056 records": 13056,
		"Showing 1 to 10 of 58 entries":     58,
		"Showing 0 to 0 of 0 records":       0,
		"1 - 25 of 1,30,560":                130560,
		"Total: 412":                        412,
		"No records":                        0,
		"":                                  0,
	}
	for text, want := range cases {
		assert.Equal(t, want, ParseRecordTotal(text), text)
	}
}

func TestParseCount(t *testing.T) {
	cases := map[string]int{
		"13,056":                  13056,
		"42 servers":              42,
		"Active: 7":               7,
		"1\u00a0234":              1234,
		"n/a":                     0,
		"":                        0,
		"99999999999999999999999": 0,
	}
	for text, want := range cases {
		assert.Equal(t, want, ParseCount(text), text)
	}
}

func TestParseAmount(t *testing.T) {
	cases := map[string]float64{
		"₹12,000.00":   12000,
		"Rs. 1,499":    1499,
		"₹1,23,456.50": 123456.5,
		"$0.99":        0.99,
		"INR 750":      750,
		"-₹50.00":      50,
		"₹-50.00":      -50,
	}
	for text, want := range cases {
		got, err := ParseAmount(text)
		require.NoError(t, err, text)
		assert.InDelta(t, want, got, 1e-9, text)
	}

	for _, text := range []string{"", "₹", "free", "--"} {
		_, err := ParseAmount(text)
		assert.ErrorIs(t, err, entities.ErrInvalidAmount, text)
	}
}

// groupThousands renders n with comma thousands separators
func groupThousands(n int) string {
	s := strconv.Itoa(n)
	var b strings.Builder
	for i, r := range s {
		if i > 0 && (len(s)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	return b.String()
}

func TestParseRecordTotal_Properties(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		total := rapid.IntRange(0, 1_000_000_000).Draw(t, "total")
		from := rapid.IntRange(0, 1000).Draw(t, "from")
		text := fmt.Sprintf("Showing %d to %d of %s records", from, from+19, groupThousands(total))
		if got := ParseRecordTotal(text); got != total {
			t.Fatalf("%q: expected %d, got %d", text, total, got)
		}
	})
}

func TestParseAmount_Properties(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		units := rapid.IntRange(0, 100_000_000).Draw(t, "units")
		cents := rapid.IntRange(0, 99).Draw(t, "cents")
		symbol := rapid.SampledFrom([]string{"₹", "$", "Rs. ", "INR ", ""}).Draw(t, "symbol")
		text := fmt.Sprintf("%s%s.%02d", symbol, groupThousands(units), cents)

		got, err := ParseAmount(text)
		if err != nil {
			t.Fatalf("%q: %v", text, err)
		}
		want := float64(units) + float64(cents)/100
		if math.Abs(got-want) > 1e-6 {
			t.Fatalf("%q: expected %v, got %v", text, want, got)
		}
	})
}
