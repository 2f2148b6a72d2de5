// Package sqlite implements the ItemStore port on a local SQLite database.
// It backs the offline mode: the app keeps working against this store when
// the hosted database is unreachable.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"spotcheck/internal/core"
	"spotcheck/internal/remote"
)

const dateLayout = "2006-01-02"

type Store struct {
	db *sql.DB
}

var _ remote.ItemStore = (*Store)(nil)

func New(dbPath string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

const listQuery = `
SELECT id, owner_id, title, category, expiry_date, reminder_date,
       cost_monthly_cents, renewal_status, ocr_raw_text, is_scanned,
       vehicle_reg, vehicle_make, is_main_dealer, created_at
FROM items
WHERE owner_id = ?
ORDER BY expiry_date IS NULL, expiry_date ASC, created_at ASC, id ASC`

func (s *Store) ListByOwner(ctx context.Context, ownerID string) ([]core.Item, error) {
	rows, err := s.db.QueryContext(ctx, listQuery, ownerID)
	if err != nil {
		return nil, remote.NewError("list", remote.CodeNetwork, fmt.Errorf("query items: %w", err))
	}
	defer rows.Close()

	var items []core.Item
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, remote.NewError("list", remote.CodeRejected, err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, remote.NewError("list", remote.CodeNetwork, fmt.Errorf("iterate items: %w", err))
	}
	return items, nil
}

func (s *Store) Create(ctx context.Context, draft core.Item) (core.Item, error) {
	if err := draft.Validate(); err != nil {
		return core.Item{}, remote.NewError("create", remote.CodeRejected, err)
	}

	stored := draft
	stored.ID = uuid.NewString()
	stored.CreatedAt = time.Now().UTC()

	var (
		expiry, reminder     sql.NullString
		costCents            sql.NullInt64
		ocrText, vReg, vMake sql.NullString
		mainDealer           sql.NullBool
	)
	if !stored.ExpiryDate.IsEmpty() {
		expiry = sql.NullString{String: stored.ExpiryDate.Format(dateLayout), Valid: true}
	}
	if !stored.ReminderDate.IsEmpty() {
		reminder = sql.NullString{String: stored.ReminderDate.Format(dateLayout), Valid: true}
	}
	if stored.MonthlyCost != nil {
		costCents = sql.NullInt64{Int64: stored.MonthlyCost.Cents, Valid: true}
	}
	if stored.OCRRawText != "" {
		ocrText = sql.NullString{String: stored.OCRRawText, Valid: true}
	}
	if stored.VehicleReg != "" {
		vReg = sql.NullString{String: stored.VehicleReg, Valid: true}
	}
	if stored.VehicleMake != "" {
		vMake = sql.NullString{String: stored.VehicleMake, Valid: true}
	}
	if stored.MainDealer {
		mainDealer = sql.NullBool{Bool: true, Valid: true}
	}

	_, err := s.db.ExecContext(ctx, `
INSERT INTO items (id, owner_id, title, category, expiry_date, reminder_date,
                   cost_monthly_cents, renewal_status, ocr_raw_text, is_scanned,
                   vehicle_reg, vehicle_make, is_main_dealer, created_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		stored.ID, stored.OwnerID, stored.Title, string(stored.Category),
		expiry, reminder, costCents, stored.RenewalStatus, ocrText,
		stored.Scanned, vReg, vMake, mainDealer,
		stored.CreatedAt.Format(time.RFC3339))
	if err != nil {
		return core.Item{}, remote.NewError("create", remote.CodeNetwork, fmt.Errorf("insert item: %w", err))
	}

	slog.InfoContext(ctx, "Item saved to SQLite",
		"id", stored.ID,
		"owner_id", stored.OwnerID,
		"title", stored.Title,
		"category", stored.Category)

	return stored, nil
}

func (s *Store) Delete(ctx context.Context, ownerID, itemID string) error {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM items WHERE id = ? AND owner_id = ?`, itemID, ownerID)
	if err != nil {
		return remote.NewError("delete", remote.CodeNetwork, fmt.Errorf("delete item: %w", err))
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return remote.NotFound("delete")
	}
	return nil
}

func (s *Store) UpdateStatus(ctx context.Context, ownerID, itemID, status string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE items SET renewal_status = ? WHERE id = ? AND owner_id = ?`,
		status, itemID, ownerID)
	if err != nil {
		return remote.NewError("update_status", remote.CodeNetwork, fmt.Errorf("update status: %w", err))
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return remote.NotFound("update_status")
	}
	return nil
}

func scanItem(rows *sql.Rows) (core.Item, error) {
	var (
		item                 core.Item
		category             string
		expiry, reminder     sql.NullString
		costCents            sql.NullInt64
		ocrText, vReg, vMake sql.NullString
		mainDealer           sql.NullBool
		createdAt            string
	)
	err := rows.Scan(&item.ID, &item.OwnerID, &item.Title, &category,
		&expiry, &reminder, &costCents, &item.RenewalStatus, &ocrText,
		&item.Scanned, &vReg, &vMake, &mainDealer, &createdAt)
	if err != nil {
		return core.Item{}, fmt.Errorf("scan item: %w", err)
	}

	item.Category, err = core.ParseCategory(category)
	if err != nil {
		return core.Item{}, fmt.Errorf("item %s: %w", item.ID, err)
	}
	if expiry.Valid {
		t, err := time.Parse(dateLayout, expiry.String)
		if err != nil {
			return core.Item{}, fmt.Errorf("item %s: parse expiry date: %w", item.ID, err)
		}
		item.ExpiryDate = core.Date{Time: t}
	}
	if reminder.Valid {
		t, err := time.Parse(dateLayout, reminder.String)
		if err != nil {
			return core.Item{}, fmt.Errorf("item %s: parse reminder date: %w", item.ID, err)
		}
		item.ReminderDate = core.Date{Time: t}
	}
	if costCents.Valid {
		item.MonthlyCost = &core.Money{Cents: costCents.Int64}
	}
	if ocrText.Valid {
		item.OCRRawText = ocrText.String
	}
	if vReg.Valid {
		item.VehicleReg = vReg.String
	}
	if vMake.Valid {
		item.VehicleMake = vMake.String
	}
	if mainDealer.Valid {
		item.MainDealer = mainDealer.Bool
	}
	item.CreatedAt, err = time.Parse(time.RFC3339, createdAt)
	if err != nil {
		return core.Item{}, fmt.Errorf("item %s: parse created_at: %w", item.ID, err)
	}
	return item, nil
}
