// types.go
package tablecfg

// RawConfig is one layer of table rules as written in YAML. Every field is
// optional so a table or variant file only states what it changes.
type RawConfig struct {
	Version string        `yaml:"version"`
	Name    string        `yaml:"name,omitempty"`
	Limits  LimitsConfig  `yaml:"limits"`
	Field   *FieldConfig  `yaml:"field,omitempty"`
	ATS     *ATSConfig    `yaml:"ats,omitempty"`
	Odds    *OddsConfig   `yaml:"odds,omitempty"`
	Vig     *VigConfig    `yaml:"vig,omitempty"`
	Winners *WinnerConfig `yaml:"winners,omitempty"`
	Notes   string        `yaml:"notes,omitempty"`
}

type LimitsConfig struct {
	Minimum *int64 `yaml:"minimum"`
	Maximum *int64 `yaml:"maximum"`
	Unit    *int64 `yaml:"unit"`
}

// FieldConfig holds the field's special payouts as "num:den".
type FieldConfig struct {
	Two    string `yaml:"two,omitempty"`
	Twelve string `yaml:"twelve,omitempty"`
}

type ATSConfig struct {
	Small string `yaml:"small,omitempty"`
	Tall  string `yaml:"tall,omitempty"`
	All   string `yaml:"all,omitempty"`
}

// OddsConfig caps odds per point, e.g. {4: 3, 5: 4, 6: 5}.
type OddsConfig struct {
	Multiples map[int]int64 `yaml:"multiples"`
}

type VigConfig struct {
	Percent *int64 `yaml:"percent"`
}

type WinnerConfig struct {
	LeaveUp *bool `yaml:"leave_up"`
}
