// Package phone rewrites raw phone strings from contact exports toward a single
// "+"-prefixed form. It is not a numbering-plan validator: the country rules are
// shape heuristics supplied per region.
package phone

import "strings"

// RuleKind tags which country rule rewrote a phone number.
type RuleKind int

const (
	// NoRule means no country rule matched, or no country table entry applied.
	NoRule RuleKind = iota
	// LeadingZero replaces a trunk "0" with "+<cc>".
	LeadingZero
	// BareCountryCode adds the missing "+" to a number that already starts with <cc>.
	BareCountryCode
	// BareSubscriberNumber prefixes "+<cc>" to a subscriber number written without trunk prefix.
	BareSubscriberNumber
)

// countryRules is evaluated in order; the first rule that matches wins.
var countryRules = []RuleKind{LeadingZero, BareCountryCode, BareSubscriberNumber}

func (k RuleKind) String() string {
	switch k {
	case LeadingZero:
		return "leading_zero"
	case BareCountryCode:
		return "bare_country_code"
	case BareSubscriberNumber:
		return "bare_subscriber_number"
	default:
		return "none"
	}
}

// Apply rewrites s under this rule. The second return is false when the rule
// does not match s, in which case s is returned unchanged.
func (k RuleKind) Apply(s string, rule CountryRule) (string, bool) {
	switch k {
	case LeadingZero:
		if strings.HasPrefix(s, "0") && len(s) >= rule.MinLength {
			return "+" + rule.CallingCode + s[1:], true
		}
	case BareCountryCode:
		if rule.CallingCode != "" && strings.HasPrefix(s, rule.CallingCode) && !strings.HasPrefix(s, "+") {
			return "+" + s, true
		}
	case BareSubscriberNumber:
		if len(s) < rule.MinLength {
			return s, false
		}
		for _, prefix := range rule.SubscriberPrefixes {
			if prefix != "" && strings.HasPrefix(s, prefix) {
				return "+" + rule.CallingCode + s, true
			}
		}
	}
	return s, false
}

// CountryRule holds the numbering conventions the country rules need for one region.
// MinLength guards LeadingZero and BareSubscriberNumber against short fragments;
// it is a heuristic, not a validity check.
type CountryRule struct {
	CallingCode        string
	MinLength          int
	SubscriberPrefixes []string
}

// CountryTable maps an upper-case two-letter region code to its rule.
type CountryTable map[string]CountryRule

// DefaultCountryTable returns the built-in table.
func DefaultCountryTable() CountryTable {
	return CountryTable{
		"KE": {CallingCode: "254", MinLength: 9, SubscriberPrefixes: []string{"7"}},
	}
}

// Lookup returns the rule for region, ignoring case.
func (t CountryTable) Lookup(region string) (CountryRule, bool) {
	if region == "" {
		return CountryRule{}, false
	}
	rule, ok := t[strings.ToUpper(region)]
	return rule, ok
}

// Result is the outcome of normalizing one phone string.
type Result struct {
	Phone          string
	Applied00      bool
	AppliedCountry bool
	Rule           RuleKind
}

// Normalizer applies the "00" rewrite and the country rules from its table.
// The zero value has an empty table and only performs the "00" rewrite.
type Normalizer struct {
	table CountryTable
}

// NewNormalizer returns a Normalizer backed by table. A nil table is treated as empty.
func NewNormalizer(table CountryTable) *Normalizer {
	return &Normalizer{table: table}
}

// Normalize trims raw, turns a leading "00" into "+", then applies the first
// matching country rule for country. Empty input is returned untouched.
func (n *Normalizer) Normalize(raw, country string) Result {
	if raw == "" {
		return Result{Phone: raw}
	}

	res := Result{Phone: strings.TrimSpace(raw)}

	if strings.HasPrefix(res.Phone, "00") {
		res.Phone = "+" + res.Phone[2:]
		res.Applied00 = true
	}

	rule, ok := n.table.Lookup(country)
	if !ok {
		return res
	}
	for _, kind := range countryRules {
		if phone, matched := kind.Apply(res.Phone, rule); matched {
			res.Phone = phone
			res.AppliedCountry = true
			res.Rule = kind
			break
		}
	}
	return res
}
