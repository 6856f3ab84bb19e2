package common

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	groupedRegex  = regexp.MustCompile(`^[+-]?\d{1,3}(,\d{3})+(\.\d*)?$`)
	currencyRegex = regexp.MustCompile(`\$`)
)

// ErrEmptyValue is returned when there is nothing left to parse.
var ErrEmptyValue = errors.New("empty value")

// ParseAmount strips thousands separators and parses the rest as a decimal.
// "1,234.50" parses; "1.234,50" and "1,5" do not.
func ParseAmount(text string) (decimal.Decimal, error) {
	return parseCleaned(text)
}

// ParseCurrency is ParseAmount that also drops dollar signs, for
// currency-formatted spreadsheet cells.
func ParseCurrency(text string) (decimal.Decimal, error) {
	return parseCleaned(currencyRegex.ReplaceAllString(text, ""))
}

func parseCleaned(text string) (decimal.Decimal, error) {
	cleanText := strings.TrimSpace(text)
	if cleanText == "" {
		return decimal.Zero, ErrEmptyValue
	}
	if strings.Contains(cleanText, ",") {
		if !groupedRegex.MatchString(cleanText) {
			return decimal.Zero, fmt.Errorf("misplaced thousands separator in %q", cleanText)
		}
		cleanText = strings.ReplaceAll(cleanText, ",", "")
	}
	return decimal.NewFromString(cleanText)
}
