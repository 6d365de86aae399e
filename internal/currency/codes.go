package currency

// knownCodes is the set of ISO 4217 currency codes accepted at the API
// boundary. Not exhaustive, but covers every currency the exchange-rate
// provider publishes.
var knownCodes = map[string]struct{}{
	"AED": {}, "ARS": {}, "AUD": {}, "BGN": {}, "BRL": {}, "CAD": {},
	"CHF": {}, "CLP": {}, "CNY": {}, "COP": {}, "CZK": {}, "DKK": {},
	"EGP": {}, "EUR": {}, "GBP": {}, "HKD": {}, "HUF": {}, "IDR": {},
	"ILS": {}, "INR": {}, "ISK": {}, "JPY": {}, "KES": {}, "KRW": {},
	"KWD": {}, "MAD": {}, "MXN": {}, "MYR": {}, "NGN": {}, "NOK": {},
	"NZD": {}, "PEN": {}, "PHP": {}, "PKR": {}, "PLN": {}, "QAR": {},
	"RON": {}, "RSD": {}, "SAR": {}, "SEK": {}, "SGD": {}, "THB": {},
	"TRY": {}, "TWD": {}, "UAH": {}, "USD": {}, "VND": {}, "ZAR": {},
}

// IsValidCode reports whether code is a known 3-letter ISO 4217 code
func IsValidCode(code string) bool {
	if len(code) != 3 {
		return false
	}
	_, ok := knownCodes[code]
	return ok
}
