package parser

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/insightdelivered/bank-notification-parser/internal/extractor"
	"github.com/insightdelivered/bank-notification-parser/internal/models"
)

// limaZone is the bank-local fixed offset (Peru does not observe DST).
var limaZone = time.FixedZone("PET", -5*60*60)

const timestampLayout = "2006-01-02T15:04:05-07:00"

var (
	usdMarker = regexp.MustCompile(`(?i)US\$|\bUSD\b|d[oó]lar(?:es)?`)
	penMarker = regexp.MustCompile(`(?i)S/\.?|\bPEN\b|\bsoles\b`)
	// Matches a numeric token with an optional leading sign.
	numericToken = regexp.MustCompile(`(-\s*)?\d[\d.,]*`)
)

// ParseMoney canonicalizes a money string such as "S/ 1,234.56" or
// "US$ 45.99". Separators are resolved by position: the rightmost of ',' and
// '.' is the decimal separator. It returns false when no amount is present.
func ParseMoney(s string) (models.Money, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return models.Money{}, false
	}

	currency := detectCurrency(s)

	// Prefer the number that follows the currency marker.
	search := s
	if loc := firstMarker(s); loc != nil {
		search = s[loc[1]:]
	}
	token := numericToken.FindString(search)
	if token == "" {
		token = numericToken.FindString(s)
	}
	if token == "" {
		return models.Money{}, false
	}

	value, ok := canonicalDecimal(token)
	if !ok {
		return models.Money{}, false
	}
	return models.Money{Value: value, Currency: currency}, true
}

func detectCurrency(s string) models.Currency {
	switch {
	case usdMarker.MatchString(s):
		return models.CurrencyUSD
	case penMarker.MatchString(s):
		return models.CurrencyPEN
	case strings.Contains(s, "$"):
		return models.CurrencyUSD
	default:
		return models.CurrencyPEN
	}
}

func firstMarker(s string) []int {
	var best []int
	for _, re := range []*regexp.Regexp{usdMarker, penMarker} {
		if loc := re.FindStringIndex(s); loc != nil && (best == nil || loc[0] < best[0]) {
			best = loc
		}
	}
	if i := strings.Index(s, "$"); i >= 0 && (best == nil || i < best[0]) {
		best = []int{i, i + 1}
	}
	return best
}

// canonicalDecimal turns a raw numeric token into a fixed 2-digit decimal.
func canonicalDecimal(token string) (string, bool) {
	negative := strings.HasPrefix(token, "-")
	var b strings.Builder
	for _, r := range token {
		if (r >= '0' && r <= '9') || r == '.' || r == ',' {
			b.WriteRune(r)
		}
	}
	digits := strings.Trim(b.String(), ".,")
	if digits == "" {
		return "", false
	}

	lastComma := strings.LastIndex(digits, ",")
	lastDot := strings.LastIndex(digits, ".")
	switch {
	case lastComma >= 0 && lastDot >= 0:
		if lastComma > lastDot {
			digits = strings.ReplaceAll(digits, ".", "")
			digits = strings.Replace(digits, ",", ".", 1)
		} else {
			digits = strings.ReplaceAll(digits, ",", "")
		}
	case lastComma >= 0:
		if strings.Count(digits, ",") > 1 {
			digits = strings.ReplaceAll(digits, ",", "")
		} else {
			digits = strings.Replace(digits, ",", ".", 1)
		}
	case lastDot >= 0:
		if strings.Count(digits, ".") > 1 {
			digits = strings.ReplaceAll(digits, ".", "")
		}
	}

	d, err := decimal.NewFromString(digits)
	if err != nil {
		return "", false
	}
	if negative {
		d = d.Neg()
	}
	return d.StringFixed(2), true
}

// DateParts holds the raw components captured from a document date.
type DateParts struct {
	Day, Month, Year     string
	Hour, Minute, Second string
	Meridiem             string
}

var meridiemPattern = regexp.MustCompile(`(?i)^([ap])\.?\s*m\.?$`)

// normalizeMeridiem maps "a.m.", "p. m.", "PM" and friends to "am"/"pm".
func normalizeMeridiem(s string) string {
	m := meridiemPattern.FindStringSubmatch(strings.TrimSpace(s))
	if m == nil {
		return ""
	}
	return strings.ToLower(m[1]) + "m"
}

// BuildTimestamp combines date and optional time components into an
// ISO-8601 timestamp with the given fixed offset.
func BuildTimestamp(p DateParts, loc *time.Location) (string, error) {
	day, err := strconv.Atoi(p.Day)
	if err != nil {
		return "", fmt.Errorf("invalid day %q", p.Day)
	}
	month, err := strconv.Atoi(p.Month)
	if err != nil {
		return "", fmt.Errorf("invalid month %q", p.Month)
	}
	yearText := p.Year
	if len(yearText) == 2 {
		yearText = "20" + yearText
	}
	if len(yearText) != 4 {
		return "", fmt.Errorf("unsupported year %q", p.Year)
	}
	year, err := strconv.Atoi(yearText)
	if err != nil {
		return "", fmt.Errorf("invalid year %q", p.Year)
	}

	hour, minute, second := 0, 0, 0
	if p.Hour != "" {
		if hour, err = strconv.Atoi(p.Hour); err != nil {
			return "", fmt.Errorf("invalid hour %q", p.Hour)
		}
		if p.Minute != "" {
			if minute, err = strconv.Atoi(p.Minute); err != nil {
				return "", fmt.Errorf("invalid minute %q", p.Minute)
			}
		}
		if p.Second != "" {
			if second, err = strconv.Atoi(p.Second); err != nil {
				return "", fmt.Errorf("invalid second %q", p.Second)
			}
		}
		switch normalizeMeridiem(p.Meridiem) {
		case "am":
			if hour == 12 {
				hour = 0
			}
		case "pm":
			if hour < 12 {
				hour += 12
			}
		}
	}

	if month < 1 || month > 12 || day < 1 || hour > 23 || minute > 59 || second > 59 {
		return "", fmt.Errorf("date out of range: %d/%d/%d %d:%d:%d", day, month, year, hour, minute, second)
	}
	t := time.Date(year, time.Month(month), day, hour, minute, second, 0, loc)
	if t.Day() != day || int(t.Month()) != month {
		return "", fmt.Errorf("date out of range: %d/%d/%d", day, month, year)
	}
	return t.Format(timestampLayout), nil
}

// spanishMonths maps folded, lower-cased month names and abbreviations.
var spanishMonths = map[string]int{
	"enero": 1, "ene": 1,
	"febrero": 2, "feb": 2,
	"marzo": 3, "mar": 3,
	"abril": 4, "abr": 4,
	"mayo": 5, "may": 5,
	"junio": 6, "jun": 6,
	"julio": 7, "jul": 7,
	"agosto": 8, "ago": 8,
	"septiembre": 9, "setiembre": 9, "sep": 9, "set": 9,
	"octubre": 10, "oct": 10,
	"noviembre": 11, "nov": 11,
	"diciembre": 12, "dic": 12,
}

const timeSuffix = `(?:\s*(?:-|,|a las|hora:?|\|)?\s*(\d{1,2}):(\d{2})(?::(\d{2}))?\s*([ap]\.?\s?m\.?)?)?`

var (
	// 15/01/2024 10:32 pm, 15-01-24 - 22:10
	numericDatePattern = regexp.MustCompile(`(?i)\b(\d{1,2})[/-](\d{1,2})[/-](\d{4}|\d{2})\b` + timeSuffix)
	// 15 de enero de 2024 - 10:32 a.m.
	textDatePattern = regexp.MustCompile(`(?i)\b(\d{1,2})\s+(?:de\s+)?([a-z]{3,10})\.?\s+(?:de\s+|del\s+)?(\d{4})\b` + timeSuffix)
)

// findOccurredAt locates a document date in text and canonicalizes it. The
// numeric form is tried before the long Spanish form.
func findOccurredAt(text string, loc *time.Location) (string, bool) {
	for _, m := range numericDatePattern.FindAllStringSubmatch(text, -1) {
		ts, err := BuildTimestamp(DateParts{
			Day: m[1], Month: m[2], Year: m[3],
			Hour: m[4], Minute: m[5], Second: m[6], Meridiem: m[7],
		}, loc)
		if err == nil {
			return ts, true
		}
	}

	folded := extractor.FoldLower(text)
	for _, m := range textDatePattern.FindAllStringSubmatch(folded, -1) {
		month, ok := spanishMonths[m[2]]
		if !ok {
			continue
		}
		ts, err := BuildTimestamp(DateParts{
			Day: m[1], Month: strconv.Itoa(month), Year: m[3],
			Hour: m[4], Minute: m[5], Second: m[6], Meridiem: m[7],
		}, loc)
		if err == nil {
			return ts, true
		}
	}
	return "", false
}
