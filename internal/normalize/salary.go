package normalize

import (
	"regexp"
	"strconv"
	"strings"
)

var currencySymbols = map[string]string{
	"$": "USD", "€": "EUR", "£": "GBP", "₫": "VND", "¥": "JPY", "₹": "INR",
}

var currencyWords = map[string]string{
	"usd": "USD", "dollar": "USD", "dollars": "USD",
	"eur": "EUR", "euro": "EUR", "euros": "EUR",
	"gbp": "GBP", "pound": "GBP", "pounds": "GBP",
	"vnd": "VND", "dong": "VND",
	"sgd": "SGD", "aud": "AUD", "cad": "CAD", "jpy": "JPY", "yen": "JPY",
	"inr": "INR", "chf": "CHF", "sek": "SEK", "nok": "NOK", "dkk": "DKK",
	"pln": "PLN", "brl": "BRL", "mxn": "MXN", "cny": "CNY", "hkd": "HKD",
	"krw": "KRW", "thb": "THB", "myr": "MYR", "idr": "IDR", "php": "PHP",
	"nzd": "NZD", "zar": "ZAR", "aed": "AED",
}

func isAlpha(s string) bool {
	for _, r := range s {
		if r < 'A' || r > 'Z' {
			return false
		}
	}
	return true
}

var salaryAmountRe = regexp.MustCompile(`(\d+(?:[.,]\d{3})*(?:\.\d+)?)\s*([kKmM])?`)

// ParseSalary extracts min/max amounts and a currency code from free-form
// salary text: "$120k-150k", "120000 - 150000 USD", "Up to 90k", "90k+".
// Missing pieces come back nil/empty; the caller decides whether that
// rejects the record.
func ParseSalary(text string) (minSalary, maxSalary *int64, currency string) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, nil, ""
	}

	for sym, code := range currencySymbols {
		if strings.Contains(text, sym) {
			currency = code
			break
		}
	}
	lower := strings.ToLower(text)
	for _, word := range strings.FieldsFunc(lower, func(r rune) bool {
		return !(r >= 'a' && r <= 'z')
	}) {
		if code, ok := currencyWords[word]; ok {
			currency = code
			break
		}
	}
	if currency == "" {
		// an unrecognized bare code ("XBT") is carried through so validation
		// can reject it instead of it vanishing here
		for _, word := range strings.Fields(text) {
			if len(word) == 3 && word == strings.ToUpper(word) && isAlpha(word) {
				currency = word
				break
			}
		}
	}

	var amounts []int64
	for _, m := range salaryAmountRe.FindAllStringSubmatch(text, 3) {
		raw := strings.ReplaceAll(m[1], ",", "")
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			continue
		}
		switch strings.ToLower(m[2]) {
		case "k":
			v *= 1_000
		case "m":
			v *= 1_000_000
		}
		amounts = append(amounts, int64(v))
	}

	switch len(amounts) {
	case 0:
		return nil, nil, currency
	case 1:
		v := amounts[0]
		switch {
		case strings.Contains(lower, "up to") || strings.Contains(lower, "max"):
			return nil, &v, currency
		case strings.Contains(text, "+") && !strings.Contains(text, "-") ||
			strings.Contains(lower, "from") || strings.Contains(lower, "min"):
			return &v, nil, currency
		default:
			w := v
			return &v, &w, currency
		}
	default:
		lo, hi := amounts[0], amounts[1]
		if lo > hi {
			lo, hi = hi, lo
		}
		return &lo, &hi, currency
	}
}
