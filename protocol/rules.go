package protocol

import (
	"github.com/spymsg/spymsg-go/crypto"
)

// FlagBits is the number of low-order payload bits carrying flags.
const FlagBits = 6

const flagMask = 1<<FlagBits - 1

// Flags holds the six flag bits of a payload; flag n (1..6) is bit n-1.
type Flags uint8

// FlagsOf extracts the flag bits of payload.
func FlagsOf(payload crypto.Field) Flags {
	return Flags(payload[crypto.FieldSize-1] & flagMask)
}

// Has reports whether flag n (1..6) is set.
func (f Flags) Has(n uint) bool {
	return n >= 1 && n <= FlagBits && f.bit(n-1) == 1
}

func (f Flags) bit(i uint) uint8 {
	return uint8(f>>i) & 1
}

// A RuleReport holds the outcome of each payload rule.
type RuleReport struct {
	// FlagOneExclusive: flag 1 implies no other flag.
	FlagOneExclusive bool `json:"flag_one_exclusive"`
	// FlagTwoNeedsThree: flag 2 implies flag 3.
	FlagTwoNeedsThree bool `json:"flag_two_needs_three"`
	// FlagFourExcludesFiveSix: flag 4 implies neither flag 5 nor flag 6.
	FlagFourExcludesFiveSix bool `json:"flag_four_excludes_five_six"`
}

// Valid reports whether all rules hold.
func (r RuleReport) Valid() bool {
	return r.FlagOneExclusive && r.FlagTwoNeedsThree && r.FlagFourExcludesFiveSix
}

// CheckRules evaluates every payload rule. Each implication a => c is
// computed as (not a) or c over single bits, without branching, so the
// same expression can be laid out as a boolean circuit.
func CheckRules(payload crypto.Field) RuleReport {
	f := FlagsOf(payload)
	b0, b1, b2 := f.bit(0), f.bit(1), f.bit(2)
	b3, b4, b5 := f.bit(3), f.bit(4), f.bit(5)

	ruleA := (b0 ^ 1) | ((b1 | b2 | b3 | b4 | b5) ^ 1)
	ruleB := (b1 ^ 1) | b2
	ruleC := (b3 ^ 1) | ((b4 | b5) ^ 1)

	return RuleReport{
		FlagOneExclusive:        ruleA == 1,
		FlagTwoNeedsThree:       ruleB == 1,
		FlagFourExcludesFiveSix: ruleC == 1,
	}
}

// ValidatePayload reports whether payload satisfies all flag rules.
// Bits above FlagBits are not inspected.
func ValidatePayload(payload crypto.Field) bool {
	return CheckRules(payload).Valid()
}
