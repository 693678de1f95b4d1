package ui

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"portal_automation/domain/entities"
)

var (
	// "Showing 1 to 20 of 13,056 records"; Indian grouping (1,30,560) is
	// accepted as well.
	recordTotalPattern = regexp.MustCompile(`(?i)\bof\s+(\d[\d,'\x{00a0}\x{202f}]*\d|\d)`)
	integerPattern     = regexp.MustCompile(`\d[\d,'\x{00a0}\x{202f}]*\d|\d`)
	amountPattern      = regexp.MustCompile(`-?\d(?:[\d,]*\d)?(?:\.\d+)?`)
	groupSeparators    = strings.NewReplacer(",", "", "'", "", "\u00a0", "", "\u202f", "")
)

// ParseCount - parses the first integer in text, ignoring thousands
// separators. Returns 0 when there is none.
func ParseCount(text string) int {
	match := integerPattern.FindString(text)
	if match == "" {
		return 0
	}
	n, err := strconv.Atoi(groupSeparators.Replace(match))
	if err != nil {
		return 0
	}
	return n
}

// ParseRecordTotal - extracts the total from a pagination summary. Falls
// back to the last integer in text; 0 when there is none.
func ParseRecordTotal(text string) int {
	if m := recordTotalPattern.FindStringSubmatch(text); m != nil {
		if n, err := strconv.Atoi(groupSeparators.Replace(m[1])); err == nil {
			return n
		}
	}
	all := integerPattern.FindAllString(text, -1)
	if len(all) == 0 {
		return 0
	}
	return ParseCount(all[len(all)-1])
}

// ParseAmount - parses a displayed price such as "₹12,000.00" or
// "Rs. 1,499". Currency symbols and thousands separators are dropped; text
// without a number is an error.
func ParseAmount(text string) (float64, error) {
	match := amountPattern.FindString(text)
	if match == "" {
		return 0, fmt.Errorf("%w: %q", entities.ErrInvalidAmount, text)
	}
	amount, err := strconv.ParseFloat(strings.ReplaceAll(match, ",", ""), 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q: %v", entities.ErrInvalidAmount, text, err)
	}
	return amount, nil
}
