package rest

import (
	"fmt"
	"math"
	"time"

	"spotcheck/internal/core"
)

const dateLayout = "2006-01-02"

// itemRecord mirrors the hosted items table. The wire schema keeps the
// shorthand category values (gov, sub) and stores costs as decimal units.
type itemRecord struct {
	ID            string   `json:"id,omitempty"`
	OwnerID       string   `json:"owner_id"`
	Title         string   `json:"title"`
	Category      string   `json:"category"`
	ExpiryDate    *string  `json:"expiry_date"`
	ReminderDate  *string  `json:"reminder_date"`
	CostMonthly   *float64 `json:"cost_monthly"`
	RenewalStatus string   `json:"renewal_status"`
	OCRRawText    *string  `json:"ocr_raw_text"`
	IsScanned     bool     `json:"is_scanned"`
	VehicleReg    *string  `json:"vehicle_reg"`
	VehicleMake   *string  `json:"vehicle_make"`
	IsMainDealer  *bool    `json:"is_main_dealer"`
	CreatedAt     string   `json:"created_at,omitempty"`
}

func wireCategory(c core.Category) string {
	switch c {
	case core.CategoryVehicle:
		return "gov"
	case core.CategorySubscription:
		return "sub"
	default:
		return string(c)
	}
}

func recordFromItem(item core.Item) itemRecord {
	rec := itemRecord{
		OwnerID:       item.OwnerID,
		Title:         item.Title,
		Category:      wireCategory(item.Category),
		RenewalStatus: item.RenewalStatus,
		IsScanned:     item.Scanned,
	}
	if !item.ExpiryDate.IsEmpty() {
		s := item.ExpiryDate.Format(dateLayout)
		rec.ExpiryDate = &s
	}
	if !item.ReminderDate.IsEmpty() {
		s := item.ReminderDate.Format(dateLayout)
		rec.ReminderDate = &s
	}
	if item.MonthlyCost != nil {
		v := item.MonthlyCost.Units()
		rec.CostMonthly = &v
	}
	if item.OCRRawText != "" {
		rec.OCRRawText = &item.OCRRawText
	}
	if item.VehicleReg != "" {
		rec.VehicleReg = &item.VehicleReg
	}
	if item.VehicleMake != "" {
		rec.VehicleMake = &item.VehicleMake
	}
	if item.MainDealer {
		v := true
		rec.IsMainDealer = &v
	}
	return rec
}

func (r itemRecord) toItem() (core.Item, error) {
	category, err := core.ParseCategory(r.Category)
	if err != nil {
		return core.Item{}, fmt.Errorf("item %s: %w", r.ID, err)
	}

	item := core.Item{
		ID:            r.ID,
		OwnerID:       r.OwnerID,
		Title:         r.Title,
		Category:      category,
		RenewalStatus: r.RenewalStatus,
		Scanned:       r.IsScanned,
	}
	if r.ExpiryDate != nil && *r.ExpiryDate != "" {
		t, err := time.Parse(dateLayout, *r.ExpiryDate)
		if err != nil {
			return core.Item{}, fmt.Errorf("item %s: parse expiry date: %w", r.ID, err)
		}
		item.ExpiryDate = core.Date{Time: t}
	}
	if r.ReminderDate != nil && *r.ReminderDate != "" {
		t, err := time.Parse(dateLayout, *r.ReminderDate)
		if err != nil {
			return core.Item{}, fmt.Errorf("item %s: parse reminder date: %w", r.ID, err)
		}
		item.ReminderDate = core.Date{Time: t}
	}
	if r.CostMonthly != nil {
		item.MonthlyCost = &core.Money{Cents: int64(math.Round(*r.CostMonthly * 100))}
	}
	if r.OCRRawText != nil {
		item.OCRRawText = *r.OCRRawText
	}
	if r.VehicleReg != nil {
		item.VehicleReg = *r.VehicleReg
	}
	if r.VehicleMake != nil {
		item.VehicleMake = *r.VehicleMake
	}
	if r.IsMainDealer != nil {
		item.MainDealer = *r.IsMainDealer
	}
	if r.CreatedAt != "" {
		t, err := time.Parse(time.RFC3339, r.CreatedAt)
		if err != nil {
			return core.Item{}, fmt.Errorf("item %s: parse created_at: %w", r.ID, err)
		}
		item.CreatedAt = t
	}
	return item, nil
}
