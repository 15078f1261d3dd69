package model

import (
	"time"

	"github.com/google/uuid"
)

type Metric string

const (
	MetricPosts             Metric = "posts"
	MetricEventRSVPs        Metric = "event_rsvps"
	MetricSoldItems         Metric = "sold_items"
	MetricVolunteerProfiles Metric = "volunteer_profiles"
	MetricDonations         Metric = "donations"
)

type Badge struct {
	Slug        string `json:"slug"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Metric      Metric `json:"metric"`
	Threshold   int    `json:"threshold"`
}

type UserBadge struct {
	ID        uuid.UUID `json:"id"`
	TenantID  uuid.UUID `json:"tenant_id"`
	UserID    uuid.UUID `json:"user_id"`
	BadgeSlug string    `json:"badge_slug"`
	AwardedAt time.Time `json:"awarded_at"`
}

// ActivityCounters holds the per-user counts badge predicates read.
type ActivityCounters map[Metric]int
