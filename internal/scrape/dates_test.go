package scrape

import (
	"testing"
	"time"
)

func TestParsePTBRDate(t *testing.T) {
	cases := []struct {
		in   string
		want *time.Time
	}{
		{"18 de dez. de 2025", datePtr(2025, time.December, 18)},
		{"25 de dezembro de 2025", datePtr(2025, time.December, 25)},
		{"1 de janeiro de 2026", datePtr(2026, time.January, 1)},
		{"05 de mar de 2025", datePtr(2025, time.March, 5)},
		{"  10 de out. de 2025  ", datePtr(2025, time.October, 10)},
		// A missing year never guesses the current one.
		{"18 de dez.", nil},
		{"sexta-feira", nil},
		{"", nil},
		{"40 de janeiro de 2025", nil},
		{"12 de blurgh de 2025", nil},
	}
	for _, c := range cases {
		got := ParsePTBRDate(c.in)
		switch {
		case c.want == nil && got != nil:
			t.Errorf("ParsePTBRDate(%q) = %v, want nil", c.in, got)
		case c.want != nil && got == nil:
			t.Errorf("ParsePTBRDate(%q) = nil, want %v", c.in, *c.want)
		case c.want != nil && !got.Equal(*c.want):
			t.Errorf("ParsePTBRDate(%q) = %v, want %v", c.in, *got, *c.want)
		}
	}
}

func datePtr(y int, m time.Month, d int) *time.Time {
	t := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return &t
}
