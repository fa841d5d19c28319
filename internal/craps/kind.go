package craps

import "fmt"

// Kind identifies a bet type. The set is closed: every Kind has a catalog
// entry and a case in the resolver.
type Kind int

const (
	KindUnknown Kind = iota
	PassLine
	DontPass
	Come
	DontCome
	PassOdds
	DontPassOdds
	ComeOdds
	DontComeOdds
	Field
	Place
	Buy
	Lay
	Hardway
	Proposition // single total: 2, 3, 11, 12
	AnySeven
	AnyCraps
	Hop // unordered dice pair
	All
	Tall
	Small
)

var kindNames = map[Kind]string{
	KindUnknown:  "unknown",
	PassLine:     "pass_line",
	DontPass:     "dont_pass",
	Come:         "come",
	DontCome:     "dont_come",
	PassOdds:     "pass_odds",
	DontPassOdds: "dont_pass_odds",
	ComeOdds:     "come_odds",
	DontComeOdds: "dont_come_odds",
	Field:        "field",
	Place:        "place",
	Buy:          "buy",
	Lay:          "lay",
	Hardway:      "hardway",
	Proposition:  "proposition",
	AnySeven:     "any_seven",
	AnyCraps:     "any_craps",
	Hop:          "hop",
	All:          "all",
	Tall:         "tall",
	Small:        "small",
}

// Kinds lists every placeable kind in declaration order.
func Kinds() []Kind {
	out := make([]Kind, 0, len(kindNames)-1)
	for k := PassLine; k <= Small; k++ {
		out = append(out, k)
	}
	return out
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// ParseKind maps a snake_case name back to its Kind.
func ParseKind(s string) (Kind, error) {
	for k, name := range kindNames {
		if name == s && k != KindUnknown {
			return k, nil
		}
	}
	return KindUnknown, fmt.Errorf("%w: %q", ErrUnknownBetKind, s)
}

// IsOdds reports whether k attaches to a parent wager.
func (k Kind) IsOdds() bool {
	switch k {
	case PassOdds, DontPassOdds, ComeOdds, DontComeOdds:
		return true
	}
	return false
}

// IsATS reports whether k is one of All, Tall, Small.
func (k Kind) IsATS() bool {
	return k == All || k == Tall || k == Small
}
