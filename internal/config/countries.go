package config

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/nyaruka/phonenumbers"
)

// resolveCountries cross-checks every configured region against the libphonenumber
// metadata. An empty calling code is filled in; a mismatching one is rejected.
func (c *Config) resolveCountries() error {
	resolved := make(map[string]CountryConfig, len(c.CountriesCfg))
	for region, cc := range c.CountriesCfg {
		region = strings.ToUpper(region)
		code := phonenumbers.GetCountryCodeForRegion(region)
		if code == 0 {
			return fmt.Errorf("unknown region %q", region)
		}
		expected := strconv.Itoa(code)
		switch cc.CallingCode {
		case "":
			cc.CallingCode = expected
		case expected:
		default:
			return fmt.Errorf("region %s: calling code %s does not match %s", region, cc.CallingCode, expected)
		}
		resolved[region] = cc
	}
	c.CountriesCfg = resolved
	return nil
}
