package domain

// AccountTier is the closed capacity classification derived from identity
// metadata. Nothing outside this file inspects raw classification strings.
type AccountTier string

const (
	TierGuest            AccountTier = "guest"
	TierIndividual       AccountTier = "individual"
	TierBusiness         AccountTier = "business"
	TierVerifiedBusiness AccountTier = "verifiedBusiness"
)

// Classification values carried on accounts. Guests have no account and
// therefore no classification.
const (
	ClassificationIndividual = "individual"
	ClassificationBusiness   = "business"
)

// Policy is a tier paired with the maximum number of distinct basket rows
// that tier may hold.
type Policy struct {
	Tier     AccountTier `json:"tier"`
	MaxItems int         `json:"maxItems"`
}

// ResolveTier maps an account classification and verification flag to its
// capacity policy. Total: unrecognized classifications resolve to guest.
func ResolveTier(classification string, verified bool) Policy {
	switch classification {
	case ClassificationIndividual:
		return Policy{Tier: TierIndividual, MaxItems: 10}
	case ClassificationBusiness:
		if verified {
			return Policy{Tier: TierVerifiedBusiness, MaxItems: 1000}
		}
		return Policy{Tier: TierBusiness, MaxItems: 50}
	default:
		return Policy{Tier: TierGuest, MaxItems: 1}
	}
}

// GuestPolicy is the policy applied when no identity is present.
func GuestPolicy() Policy {
	return ResolveTier("", false)
}
