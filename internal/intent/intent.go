// Package intent maps a farmer's free-text query to one topical category
// using multilingual keyword matching.
package intent

import (
	"strings"
	"unicode"
)

// Intent is the closed set of topics a query can be tagged with.
type Intent string

const (
	Market             Intent = "market"
	PestDisease        Intent = "pest_disease"
	Irrigation         Intent = "irrigation"
	Schemes            Intent = "schemes"
	Weather            Intent = "weather"
	CropFailureSupport Intent = "crop_failure_support"
	GeneralAgronomy    Intent = "general_agronomy"
)

// All lists every intent in precedence order, general_agronomy last.
var All = []Intent{Market, PestDisease, Irrigation, Schemes, Weather, CropFailureSupport, GeneralAgronomy}

// Valid reports whether i is one of the known intents.
func (i Intent) Valid() bool {
	for _, known := range All {
		if i == known {
			return true
		}
	}
	return false
}

type category struct {
	intent   Intent
	keywords []string
	// words only match whole words; they are too short to be safe as
	// substrings ("rate" in "irrigate", "vila" in "vilayil").
	words []string
}

// categories is evaluated top to bottom; the first match wins.
// Keywords are stored lower-case. Scripts: Malayalam, Latin (English and
// romanized Malayalam), Devanagari, Telugu.
var categories = []category{
	{Market, []string{
		"വില", "വിപണി", "മാർക്കറ്റ്", "വിൽക്കുക", "പണം", "റേറ്റ്",
		"price", "market", "mandi", "sell", "vilkan",
		"भाव", "कीमत", "मंडी", "बाजार",
		"ధర", "మార్కెట్",
	}, []string{"vila", "rate", "rates"}},
	{PestDisease, []string{
		"കീടം", "രോഗം", "പ്രാണി", "സ്പ്രേ", "മരുന്ന്",
		"pest", "disease", "insect", "keedam", "rogam", "spray", "fungus", "blight", "bollworm", "hopper",
		"कीट", "रोग", "कीड़",
		"పురుగు", "తెగులు",
	}, nil},
	{Irrigation, []string{
		"വെള്ളം", "നനയ്ക്കൽ", "ജലസേചനം",
		"irrigation", "irrigate", "water", "vellam", "drip", "sprinkler", "drainage", "bore well", "borewell",
		"सिंचाई", "पानी",
		"నీరు", "నీటి",
	}, nil},
	{Schemes, []string{
		"പദ്ധതി", "സബ്‌സിഡി", "സർക്കാർ", "വായ്പ",
		"scheme", "subsidy", "government", "paddhati", "loan", "pm-kisan", "insurance",
		"योजना", "सब्सिडी", "सरकार",
		"పథకం", "సబ్సిడీ",
	}, nil},
	{Weather, []string{
		"കാലാവസ്ഥ", "മഴ", "താപനില",
		"weather", "rainfall", "raining", "rainy", "forecast", "temperature", "monsoon", "mazha", "kaalaavastha",
		"मौसम", "बारिश",
		"వర్షం", "వాతావరణం",
	}, []string{"rain", "rains"}},
	{CropFailureSupport, []string{
		"വിളനാശം", "നഷ്ടം", "കൃഷിനാശം",
		"crop loss", "crop failure", "crop damage", "failed crop", "compensation", "relief", "nashtam",
		"फसल नुकसान", "मुआवजा",
		"పంట నష్టం",
	}, nil},
}

// Classify returns the first intent whose keyword set matches a substring
// of query, or whose word set matches a whole word, compared
// case-insensitively. Unmatched and empty queries are general_agronomy.
func Classify(query string) Intent {
	q := strings.ToLower(query)
	if strings.TrimSpace(q) == "" {
		return GeneralAgronomy
	}
	tokens := words(q)
	for _, c := range categories {
		for _, kw := range c.keywords {
			if strings.Contains(q, kw) {
				return c.intent
			}
		}
		for _, w := range c.words {
			if tokens[w] {
				return c.intent
			}
		}
	}
	return GeneralAgronomy
}

func words(q string) map[string]bool {
	fields := strings.FieldsFunc(q, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && !unicode.IsMark(r)
	})
	set := make(map[string]bool, len(fields))
	for _, f := range fields {
		set[f] = true
	}
	return set
}

// Keywords returns a copy of the keyword and word sets for intent, or nil
// for general_agronomy.
func Keywords(i Intent) []string {
	for _, c := range categories {
		if c.intent == i {
			return append(append([]string(nil), c.keywords...), c.words...)
		}
	}
	return nil
}
