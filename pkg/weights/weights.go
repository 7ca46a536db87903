// Package weights holds the additive scoring weight table used by the
// matcher. The relative ordering of the weights is the behavioral contract;
// a table loaded from file that breaks the ordering is rejected.
package weights

import (
	"os"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

// Table lists the weight each satisfied sub-condition adds to a candidate's
// score, plus the confident-match threshold.
type Table struct {
	WebsiteExact        int `yaml:"website_exact"`
	PhoneExact          int `yaml:"phone_exact"`
	PhoneRaw            int `yaml:"phone_raw"`
	FacebookHandle      int `yaml:"facebook_handle"`
	NameCommercialExact int `yaml:"name_commercial_exact"`
	WebsiteSubstring    int `yaml:"website_substring"`
	NameLegalExact      int `yaml:"name_legal_exact"`
	PhoneSuffix         int `yaml:"phone_suffix"`
	NameCommercialToken int `yaml:"name_commercial_token"`
	WebsitePrefix       int `yaml:"website_prefix"`
	FacebookGeneric     int `yaml:"facebook_generic"`
	NameLegalToken      int `yaml:"name_legal_token"`
	NameAllNamesToken   int `yaml:"name_all_names_token"`

	// ConfidentThreshold is the score a top candidate must strictly exceed
	// to count as a confident match.
	ConfidentThreshold int `yaml:"confident_threshold"`
}

// Default returns the reference weight table.
func Default() Table {
	return Table{
		WebsiteExact:        10,
		PhoneExact:          8,
		PhoneRaw:            7,
		FacebookHandle:      6,
		NameCommercialExact: 5,
		WebsiteSubstring:    5,
		NameLegalExact:      4,
		PhoneSuffix:         4,
		NameCommercialToken: 3,
		WebsitePrefix:       3,
		FacebookGeneric:     3,
		NameLegalToken:      2,
		NameAllNamesToken:   1,
		ConfidentThreshold:  3,
	}
}

// Load reads a YAML weight file over the defaults. A missing path returns
// the defaults unchanged.
func Load(path string) (Table, error) {
	t := Default()
	if path == "" {
		return t, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return t, nil
		}
		return t, eris.Wrap(err, "weights: read file")
	}
	if err := yaml.Unmarshal(data, &t); err != nil {
		return t, eris.Wrap(err, "weights: parse yaml")
	}
	if err := t.Validate(); err != nil {
		return t, err
	}
	return t, nil
}

// Validate checks the invariants the matcher relies on: positive weights and
// the reference relative ordering between signal strengths.
func (t Table) Validate() error {
	all := []int{
		t.WebsiteExact, t.PhoneExact, t.PhoneRaw, t.FacebookHandle,
		t.NameCommercialExact, t.WebsiteSubstring, t.NameLegalExact,
		t.PhoneSuffix, t.NameCommercialToken, t.WebsitePrefix,
		t.FacebookGeneric, t.NameLegalToken, t.NameAllNamesToken,
	}
	for _, w := range all {
		if w <= 0 {
			return eris.New("weights: all weights must be positive")
		}
	}

	ordered := [][2]int{
		{t.WebsiteExact, t.PhoneExact},
		{t.PhoneExact, t.PhoneRaw},
		{t.PhoneRaw, t.FacebookHandle},
		{t.FacebookHandle, t.NameCommercialExact},
		{t.NameCommercialExact, t.NameLegalExact},
		{t.NameLegalExact, t.NameCommercialToken},
		{t.NameCommercialToken, t.NameLegalToken},
		{t.NameLegalToken, t.NameAllNamesToken},
	}
	for _, pair := range ordered {
		if pair[0] <= pair[1] {
			return eris.New("weights: relative signal ordering violated")
		}
	}
	if t.ConfidentThreshold < 0 {
		return eris.New("weights: confident_threshold must be >= 0")
	}
	return nil
}
