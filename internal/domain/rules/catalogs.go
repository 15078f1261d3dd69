package rules

import "strings"

var (
	MarketplaceCategories = []string{"Furniture", "Electronics", "Clothing", "Books", "Sports", "Home", "Kids", "Other"}
	ItemConditions        = []string{"new", "like_new", "good", "fair"}
	ServiceCategories     = []string{"Home repair", "Cleaning", "Gardening", "Tutoring", "Health", "Beauty", "Pets", "Transport", "Other"}
	ProposalCategories    = []string{"Mobility", "Green areas", "Safety", "Culture", "Sport", "Services", "Other"}
	TutoringLevels        = []string{"primary", "middle", "high", "university", "adult"}
)

// MatchOption returns the canonical spelling of value from options, ignoring case.
func MatchOption(options []string, value string) (string, bool) {
	trimmed := strings.TrimSpace(value)
	for _, option := range options {
		if strings.EqualFold(option, trimmed) {
			return option, true
		}
	}
	return "", false
}
