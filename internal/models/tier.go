package models

import "strings"

// MemberTier is a rung on the membership ladder. Order matters:
// STANDARD < GOLD < VIP.
type MemberTier string

const (
	TierStandard MemberTier = "STANDARD"
	TierGold     MemberTier = "GOLD"
	TierVIP      MemberTier = "VIP"
)

var tierLadder = []MemberTier{TierStandard, TierGold, TierVIP}

// legacyTiers maps names written by older releases onto the current ladder.
var legacyTiers = map[string]MemberTier{
	"BASIC":   TierStandard,
	"PREMIUM": TierGold,
}

// Rank returns the zero-based position on the ladder, or -1 if unknown.
func (t MemberTier) Rank() int {
	for i, rung := range tierLadder {
		if rung == t {
			return i
		}
	}
	return -1
}

func (t MemberTier) Valid() bool { return t.Rank() >= 0 }

// Next returns the tier one step up. ok is false at the top of the ladder.
func (t MemberTier) Next() (next MemberTier, ok bool) {
	r := t.Rank()
	if r < 0 || r == len(tierLadder)-1 {
		return t, false
	}
	return tierLadder[r+1], true
}

// Prev returns the tier one step down. ok is false at the bottom.
func (t MemberTier) Prev() (prev MemberTier, ok bool) {
	r := t.Rank()
	if r <= 0 {
		return t, false
	}
	return tierLadder[r-1], true
}

func (t MemberTier) AtLeast(other MemberTier) bool {
	return t.Valid() && t.Rank() >= other.Rank()
}

// ParseTier accepts current and legacy tier names, case-insensitively.
func ParseTier(s string) (MemberTier, bool) {
	upper := MemberTier(strings.ToUpper(strings.TrimSpace(s)))
	if upper.Valid() {
		return upper, true
	}
	if t, ok := legacyTiers[string(upper)]; ok {
		return t, true
	}
	return "", false
}

// Canonical maps a stored tier, legacy names included, onto the ladder.
func (t MemberTier) Canonical() (MemberTier, bool) {
	return ParseTier(string(t))
}

// LegacyTierNames lists stored values that migrate_member_tiers rewrites.
func LegacyTierNames() map[string]MemberTier {
	out := make(map[string]MemberTier, len(legacyTiers))
	for k, v := range legacyTiers {
		out[k] = v
	}
	return out
}

// CastTier tags a cast profile for access gating. It is not ordered.
type CastTier string

const (
	CastTierStandard  CastTier = "STANDARD"
	CastTierHighClass CastTier = "HIGH_CLASS"
)

func (c CastTier) Valid() bool {
	return c == CastTierStandard || c == CastTierHighClass
}

// RequiredMemberTier is the lowest member tier allowed to request a meeting
// with a cast of this classification.
func (c CastTier) RequiredMemberTier() MemberTier {
	if c == CastTierHighClass {
		return TierGold
	}
	return TierStandard
}
