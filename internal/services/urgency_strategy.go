// Package services provides business logic and orchestration services.
//
// This file implements the Strategy Pattern for renewal urgency
// classification. Each category can carry its own thresholds for how soon an
// approaching expiry should be flagged.
package services

import (
	"time"

	"spotcheck/internal/core"
)

// Urgency buckets an item by how close its expiry is.
type Urgency string

const (
	UrgencyNone     Urgency = "none"     // no expiry date
	UrgencyExpired  Urgency = "expired"  // expiry already passed
	UrgencyCritical Urgency = "critical" // inside the critical window
	UrgencyUpcoming Urgency = "upcoming" // inside the upcoming window
	UrgencyRelaxed  Urgency = "relaxed"  // nothing to do yet
)

// UrgencyChecker is the strategy interface for classifying an item's renewal
// urgency at a given time.
type UrgencyChecker interface {
	Classify(item core.Item, now time.Time) Urgency
}

// ThresholdChecker classifies by fixed day windows.
type ThresholdChecker struct {
	CriticalDays int
	UpcomingDays int
}

func (c ThresholdChecker) Classify(item core.Item, now time.Time) Urgency {
	days, ok := item.DaysUntilExpiry(now)
	if !ok {
		return UrgencyNone
	}
	switch {
	case days < 0:
		return UrgencyExpired
	case days <= c.CriticalDays:
		return UrgencyCritical
	case days <= c.UpcomingDays:
		return UrgencyUpcoming
	default:
		return UrgencyRelaxed
	}
}

// defaultChecker applies to categories without a registered strategy.
var defaultChecker UrgencyChecker = ThresholdChecker{CriticalDays: 7, UpcomingDays: 30}

// urgencyStrategies maps categories to their corresponding checkers.
// Insurance gets a wider critical window: shopping around for quotes takes
// longer than flipping a subscription switch.
var urgencyStrategies = map[core.Category]UrgencyChecker{
	core.CategoryInsurance: ThresholdChecker{CriticalDays: 14, UpcomingDays: 45},
}

// GetUrgencyChecker returns the checker for a category, falling back to the
// default thresholds.
func GetUrgencyChecker(category core.Category) UrgencyChecker {
	if checker, ok := urgencyStrategies[category]; ok {
		return checker
	}
	return defaultChecker
}

// RegisterUrgencyChecker allows registering custom checkers for a category.
func RegisterUrgencyChecker(category core.Category, checker UrgencyChecker) {
	urgencyStrategies[category] = checker
}

// ClassifyItem is a convenience wrapper combining lookup and classification.
func ClassifyItem(item core.Item, now time.Time) Urgency {
	return GetUrgencyChecker(item.Category).Classify(item, now)
}
