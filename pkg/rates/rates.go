// Package rates enforces the single-active-version invariant for scrap
// pricing: per scrap type, at most one scrap_rates row is active at a time,
// and setting a new rate deactivates the old row rather than deleting it, so
// pricing history is retained.
package rates

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"time"

	"github.com/scraphq/admind/pkg/dataservice"
	"github.com/scraphq/admind/pkg/logging"
)

// Table is the data-service table holding rate rows.
const Table = "scrap_rates"

// Rate is one scrap_rates row.
type Rate struct {
	ID            int64      `json:"id"`
	ScrapTypeID   string     `json:"scrap_type_id"`
	RatePerKg     float64    `json:"rate_per_kg"`
	IsActive      bool       `json:"is_active"`
	EffectiveFrom *time.Time `json:"effective_from"`
	CreatedAt     *time.Time `json:"created_at,omitempty"`
}

// newRate is the insert payload; it never carries an id or created_at so the
// data service assigns them.
type newRate struct {
	ScrapTypeID   string    `json:"scrap_type_id"`
	RatePerKg     float64   `json:"rate_per_kg"`
	IsActive      bool      `json:"is_active"`
	EffectiveFrom time.Time `json:"effective_from"`
}

// ValidationError rejects bad SetRate input before any data-service call.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// Manager performs rate reads and transitions against the data service.
type Manager struct {
	client *dataservice.Client
	log    *slog.Logger
}

// NewManager creates a manager on a privileged client for the project
// hosting scrap_rates. A nil logger means silent.
func NewManager(client *dataservice.Client, log *slog.Logger) *Manager {
	if log == nil {
		log = logging.Nop()
	}
	return &Manager{client: client, log: log.With("component", "rates")}
}

// ActiveRates returns the currently active rate per scrap type: all rows
// flagged active, reduced to the latest row per type.
func (m *Manager) ActiveRates(ctx context.Context) (map[string]Rate, error) {
	var rows []Rate
	err := m.client.Select(ctx, Table, dataservice.Query{
		Filters: map[string]string{"is_active": dataservice.Eq("true")},
	}, &rows)
	if err != nil {
		return nil, err
	}
	return foldActive(rows), nil
}

// SetRate validates the input, deactivates the type's current active rows,
// and inserts the new active row. The two writes are sequential and not
// atomic: if the insert fails after the deactivation succeeded, the type is
// left with zero active rates until the next successful SetRate, which
// repairs it. Concurrent SetRate calls for one type can interleave between
// the steps; the data service is the only arbiter.
func (m *Manager) SetRate(ctx context.Context, scrapTypeID string, ratePerKg float64) (*Rate, error) {
	if strings.TrimSpace(scrapTypeID) == "" {
		return nil, &ValidationError{Field: "scrapTypeId", Message: "scrap type id is required"}
	}
	if math.IsNaN(ratePerKg) || math.IsInf(ratePerKg, 0) || ratePerKg <= 0 {
		return nil, &ValidationError{Field: "ratePerKg", Message: "rate must be a positive number"}
	}

	err := m.client.Update(ctx, Table,
		map[string]interface{}{"is_active": false},
		dataservice.Query{Filters: map[string]string{
			"scrap_type_id": dataservice.Eq(scrapTypeID),
			"is_active":     dataservice.Eq("true"),
		}}, nil)
	if err != nil {
		return nil, fmt.Errorf("deactivating current rate: %w", err)
	}

	var inserted []Rate
	err = m.client.Insert(ctx, Table, newRate{
		ScrapTypeID:   scrapTypeID,
		RatePerKg:     ratePerKg,
		IsActive:      true,
		EffectiveFrom: time.Now().UTC(),
	}, &inserted)
	if err != nil {
		return nil, fmt.Errorf("inserting new rate: %w", err)
	}
	if len(inserted) == 0 {
		return nil, fmt.Errorf("insert for scrap type %s returned no rows", scrapTypeID)
	}

	m.log.Info("rate updated",
		"scrapTypeId", scrapTypeID,
		"ratePerKg", ratePerKg,
		"rateId", inserted[0].ID)
	return &inserted[0], nil
}

// foldActive reduces active rows to one per scrap type under laterRow.
func foldActive(rows []Rate) map[string]Rate {
	active := make(map[string]Rate, len(rows))
	for _, row := range rows {
		cur, ok := active[row.ScrapTypeID]
		if !ok || laterRow(row, cur) {
			active[row.ScrapTypeID] = row
		}
	}
	return active
}

// laterRow reports whether a supersedes b. Later effective_from wins; an
// absent effective_from sorts as the zero time; equal timestamps are broken
// by the greater row id, so the fold does not depend on row order.
func laterRow(a, b Rate) bool {
	at, bt := effectiveTime(a), effectiveTime(b)
	if !at.Equal(bt) {
		return at.After(bt)
	}
	return a.ID > b.ID
}

func effectiveTime(r Rate) time.Time {
	if r.EffectiveFrom == nil {
		return time.Time{}
	}
	return *r.EffectiveFrom
}
