package services

import (
	"testing"
	"time"

	"spotcheck/internal/core"
)

func TestThresholdChecker_Classify(t *testing.T) {
	now := time.Date(2025, 8, 15, 10, 0, 0, 0, time.UTC)
	checker := ThresholdChecker{CriticalDays: 7, UpcomingDays: 30}

	tests := []struct {
		name   string
		expiry core.Date
		want   Urgency
	}{
		{name: "no expiry", want: UrgencyNone},
		{name: "expired yesterday", expiry: core.NewDate(2025, 8, 14), want: UrgencyExpired},
		{name: "expires today", expiry: core.NewDate(2025, 8, 15), want: UrgencyCritical},
		{name: "expires in a week", expiry: core.NewDate(2025, 8, 22), want: UrgencyCritical},
		{name: "expires in eight days", expiry: core.NewDate(2025, 8, 23), want: UrgencyUpcoming},
		{name: "expires in a month", expiry: core.NewDate(2025, 9, 14), want: UrgencyUpcoming},
		{name: "expires next year", expiry: core.NewDate(2026, 8, 15), want: UrgencyRelaxed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			item := core.Item{ExpiryDate: tt.expiry}
			if got := checker.Classify(item, now); got != tt.want {
				t.Errorf("Classify() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestInsuranceGetsWiderCriticalWindow(t *testing.T) {
	now := time.Date(2025, 8, 15, 10, 0, 0, 0, time.UTC)
	// 10 days out: critical for insurance, merely upcoming for the rest.
	expiry := core.NewDate(2025, 8, 25)

	insurance := core.Item{Category: core.CategoryInsurance, ExpiryDate: expiry}
	if got := ClassifyItem(insurance, now); got != UrgencyCritical {
		t.Errorf("insurance at 10 days = %v, want critical", got)
	}

	sub := core.Item{Category: core.CategorySubscription, ExpiryDate: expiry}
	if got := ClassifyItem(sub, now); got != UrgencyUpcoming {
		t.Errorf("subscription at 10 days = %v, want upcoming", got)
	}
}

func TestRegisterUrgencyChecker(t *testing.T) {
	original, hadOriginal := urgencyStrategies[core.CategoryWarranty]
	defer func() {
		if hadOriginal {
			urgencyStrategies[core.CategoryWarranty] = original
		} else {
			delete(urgencyStrategies, core.CategoryWarranty)
		}
	}()

	RegisterUrgencyChecker(core.CategoryWarranty, ThresholdChecker{CriticalDays: 1, UpcomingDays: 2})

	now := time.Date(2025, 8, 15, 10, 0, 0, 0, time.UTC)
	item := core.Item{Category: core.CategoryWarranty, ExpiryDate: core.NewDate(2025, 8, 17)}
	if got := ClassifyItem(item, now); got != UrgencyUpcoming {
		t.Errorf("custom checker not applied, got %v", got)
	}
}
