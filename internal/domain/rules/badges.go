package rules

import (
	"strings"

	"github.com/v4codeit/prato-rinaldo-webapp-sub003/internal/domain/model"
)

var badgeCatalog = []model.Badge{
	{Slug: "first_post", Name: "Prima voce", Description: "Ha scritto il primo post nel forum.", Metric: model.MetricPosts, Threshold: 1},
	{Slug: "active_voice", Name: "Voce attiva", Description: "Ha scritto almeno 25 post nel forum.", Metric: model.MetricPosts, Threshold: 25},
	{Slug: "event_goer", Name: "Sempre presente", Description: "Ha confermato la partecipazione a 5 eventi.", Metric: model.MetricEventRSVPs, Threshold: 5},
	{Slug: "trusted_seller", Name: "Venditore fidato", Description: "Ha venduto almeno 3 oggetti nel mercatino.", Metric: model.MetricSoldItems, Threshold: 3},
	{Slug: "volunteer", Name: "Volontario", Description: "Offre un servizio volontario nella directory.", Metric: model.MetricVolunteerProfiles, Threshold: 1},
	{Slug: "benefactor", Name: "Benefattore", Description: "Ha fatto almeno una donazione alla comunità.", Metric: model.MetricDonations, Threshold: 1},
}

// BadgeCatalog returns a copy of the fixed badge table.
func BadgeCatalog() []model.Badge {
	return append([]model.Badge(nil), badgeCatalog...)
}

func LookupBadge(slug string) (model.Badge, bool) {
	normalized := strings.ToLower(strings.TrimSpace(slug))
	for _, badge := range badgeCatalog {
		if badge.Slug == normalized {
			return badge, true
		}
	}
	return model.Badge{}, false
}

// EarnedBadges lists the slugs whose predicate holds for the given counters, in catalog order.
func EarnedBadges(counters model.ActivityCounters) []string {
	earned := make([]string, 0, len(badgeCatalog))
	for _, badge := range badgeCatalog {
		if counters[badge.Metric] >= badge.Threshold {
			earned = append(earned, badge.Slug)
		}
	}
	return earned
}
