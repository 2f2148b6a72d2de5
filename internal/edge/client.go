// Package edge calls the hosted serverless functions: document analysis,
// the renewal coach chat and the vehicle lookup.
package edge

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"spotcheck/internal/cache"
	"spotcheck/internal/core"
)

var (
	ErrEmptyText  = errors.New("text cannot be empty")
	ErrEmptyQuery = errors.New("query cannot be empty")
	ErrEmptyReg   = errors.New("registration plate cannot be empty")
)

const (
	vehicleCacheSize = 64
	vehicleCacheTTL  = 24 * time.Hour
)

type Client struct {
	baseURL  string
	apiKey   string
	token    string
	http     *http.Client
	vehicles *cache.LRUCache[VehicleInfo]
}

// New creates an edge-function client. baseURL already includes the
// functions path (e.g. https://project.example.com/functions/v1).
func New(baseURL, apiKey, token string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		token:   token,
		// Analysis calls go through an LLM, give them room.
		http: &http.Client{Timeout: 60 * time.Second},
		// Vehicle records change rarely, cache them per plate.
		vehicles: cache.NewLRUCache[VehicleInfo](vehicleCacheSize, vehicleCacheTTL),
	}
}

// AnalysisResult is the structured extraction from a scanned document.
type AnalysisResult struct {
	Title             string
	Category          core.Category
	ExpiryDate        core.Date
	CostAmount        *core.Money
	RenewalPrice      *core.Money
	CancellationTerms string
	VehicleReg        string
	VehicleMake       string
	MainDealer        bool
	RipOffAlert       string
}

type analysisRecord struct {
	Title             string   `json:"title"`
	Category          string   `json:"category"`
	ExpiryDate        *string  `json:"expiry_date"` // DD/MM/YYYY
	CostAmount        *float64 `json:"cost_amount"`
	RenewalPrice      *float64 `json:"renewal_price"`
	CancellationTerms *string  `json:"cancellation_terms"`
	VehicleReg        *string  `json:"vehicle_reg"`
	VehicleMake       *string  `json:"vehicle_make"`
	IsMainDealer      *bool    `json:"is_main_dealer"`
	RipOffAlert       *string  `json:"rip_off_alert"`
}

// AnalyzeDocument sends OCR text through the analyze-doc function and
// validates the extraction before handing it back.
func (c *Client) AnalyzeDocument(ctx context.Context, text string) (AnalysisResult, error) {
	if strings.TrimSpace(text) == "" {
		return AnalysisResult{}, ErrEmptyText
	}

	body, err := c.invoke(ctx, "analyze-doc", map[string]string{"text": text})
	if err != nil {
		return AnalysisResult{}, fmt.Errorf("analyze document: %w", err)
	}

	var rec analysisRecord
	if err := json.Unmarshal(body, &rec); err != nil {
		return AnalysisResult{}, fmt.Errorf("decode analysis: %w", err)
	}
	return rec.toResult()
}

func (rec analysisRecord) toResult() (AnalysisResult, error) {
	if strings.TrimSpace(rec.Title) == "" {
		return AnalysisResult{}, errors.New("analysis result missing title")
	}
	category, err := core.ParseCategory(rec.Category)
	if err != nil {
		return AnalysisResult{}, fmt.Errorf("analysis result: %w", err)
	}

	out := AnalysisResult{Title: rec.Title, Category: category}

	if rec.ExpiryDate != nil && *rec.ExpiryDate != "" {
		t, err := time.Parse("02/01/2006", *rec.ExpiryDate)
		if err != nil {
			return AnalysisResult{}, fmt.Errorf("analysis result: expiry date %q: %w", *rec.ExpiryDate, err)
		}
		out.ExpiryDate = core.Date{Time: t}
	}
	if rec.CostAmount != nil {
		out.CostAmount = moneyFromUnits(*rec.CostAmount)
	}
	if rec.RenewalPrice != nil {
		out.RenewalPrice = moneyFromUnits(*rec.RenewalPrice)
	}
	if rec.CancellationTerms != nil {
		out.CancellationTerms = *rec.CancellationTerms
	}
	if rec.VehicleReg != nil {
		out.VehicleReg = normalizeReg(*rec.VehicleReg)
	}
	if rec.VehicleMake != nil {
		out.VehicleMake = *rec.VehicleMake
	}
	if rec.IsMainDealer != nil {
		out.MainDealer = *rec.IsMainDealer
	}
	if rec.RipOffAlert != nil {
		out.RipOffAlert = *rec.RipOffAlert
	}
	return out, nil
}

type chatItem struct {
	ID            string   `json:"id"`
	Title         string   `json:"title"`
	Category      string   `json:"category"`
	ExpiryDate    *string  `json:"expiry_date"`
	CostMonthly   *float64 `json:"cost_monthly"`
	RenewalStatus string   `json:"renewal_status"`
}

// CoachChat asks the chat-coach function a question in the context of the
// user's active items.
func (c *Client) CoachChat(ctx context.Context, query string, items []core.Item) (string, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return "", ErrEmptyQuery
	}

	active := make([]chatItem, 0, len(items))
	for _, it := range items {
		if it.RenewalStatus != core.StatusActive {
			continue
		}
		ci := chatItem{
			ID:            it.ID,
			Title:         it.Title,
			Category:      string(it.Category),
			RenewalStatus: it.RenewalStatus,
		}
		if !it.ExpiryDate.IsEmpty() {
			s := it.ExpiryDate.Format("2006-01-02")
			ci.ExpiryDate = &s
		}
		if it.MonthlyCost != nil {
			u := it.MonthlyCost.Units()
			ci.CostMonthly = &u
		}
		active = append(active, ci)
	}

	body, err := c.invoke(ctx, "chat-coach", map[string]any{
		"query": query,
		"items": active,
	})
	if err != nil {
		return "", fmt.Errorf("coach chat: %w", err)
	}

	var resp struct {
		Response string `json:"response"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", fmt.Errorf("decode chat response: %w", err)
	}
	if resp.Response == "" {
		return "", errors.New("empty response from coach")
	}
	return resp.Response, nil
}

// VehicleInfo is the registered-vehicle record returned by the lookup
// function.
type VehicleInfo struct {
	RegistrationNumber string  `json:"registrationNumber"`
	Make               string  `json:"make"`
	Model              string  `json:"model"`
	Color              string  `json:"color"`
	YearOfManufacture  int     `json:"yearOfManufacture"`
	MOTExpiryDate      *string `json:"motExpiryDate"`
	TaxDueDate         *string `json:"taxDueDate"`
}

// FetchVehicle looks up a registration plate through the fetch-vehicle
// function.
func (c *Client) FetchVehicle(ctx context.Context, reg string) (VehicleInfo, error) {
	normalized := normalizeReg(reg)
	if normalized == "" {
		return VehicleInfo{}, ErrEmptyReg
	}

	if info, ok := c.vehicles.Get(normalized); ok {
		return info, nil
	}

	body, err := c.invoke(ctx, "fetch-vehicle", map[string]string{"registration_number": normalized})
	if err != nil {
		return VehicleInfo{}, fmt.Errorf("fetch vehicle: %w", err)
	}

	var info VehicleInfo
	if err := json.Unmarshal(body, &info); err != nil {
		return VehicleInfo{}, fmt.Errorf("decode vehicle info: %w", err)
	}
	c.vehicles.Set(normalized, info)
	return info, nil
}

func (c *Client) invoke(ctx context.Context, name string, payload any) ([]byte, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/"+name, bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("apikey", c.apiKey)
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("call %s: %w", name, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%s: status %d: %s", name, resp.StatusCode, strings.TrimSpace(string(body)))
	}
	return body, nil
}

func normalizeReg(reg string) string {
	return strings.ToUpper(strings.Join(strings.Fields(reg), ""))
}

func moneyFromUnits(u float64) *core.Money {
	if u < 0 {
		return nil
	}
	return &core.Money{Cents: int64(u*100 + 0.5)}
}
