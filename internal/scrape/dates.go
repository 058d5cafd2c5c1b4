package scrape

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Month tokens as they appear on the pt-BR IMDB calendar, full and
// abbreviated (with or without the trailing dot).
var ptBRMonths = map[string]time.Month{
	"jan": time.January, "janeiro": time.January,
	"fev": time.February, "fevereiro": time.February,
	"mar": time.March, "março": time.March,
	"abr": time.April, "abril": time.April,
	"mai": time.May, "maio": time.May,
	"jun": time.June, "junho": time.June,
	"jul": time.July, "julho": time.July,
	"ago": time.August, "agosto": time.August,
	"set": time.September, "setembro": time.September,
	"out": time.October, "outubro": time.October,
	"nov": time.November, "novembro": time.November,
	"dez": time.December, "dezembro": time.December,
}

// Matches "18 de dez. de 2025", "25 de dezembro de 2025" or "18 de dez."
// (year optional).
var ptBRDateRe = regexp.MustCompile(`(?i)(\d{1,2})\s+de\s+([\pL]+)\.?(?:\s+de\s+(\d{4}))?`)

// ParsePTBRDate parses a Brazilian-Portuguese calendar date string.
// Unparseable input, including a missing year, yields nil: guessing the
// current year produced wrong dates around New Year.
func ParsePTBRDate(s string) *time.Time {
	m := ptBRDateRe.FindStringSubmatch(strings.TrimSpace(s))
	if m == nil {
		return nil
	}
	day, err := strconv.Atoi(m[1])
	if err != nil || day < 1 || day > 31 {
		return nil
	}
	month, ok := ptBRMonths[strings.ToLower(strings.TrimSuffix(m[2], "."))]
	if !ok {
		return nil
	}
	if m[3] == "" {
		return nil
	}
	year, err := strconv.Atoi(m[3])
	if err != nil {
		return nil
	}
	t := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
	return &t
}
