package admin

import (
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/scraphq/admind/pkg/dataservice"
	"github.com/scraphq/admind/pkg/rates"
)

const scrapTypesTable = "scrap_types"

// scrapTypeRow is the storage shape of a scrap_types row.
type scrapTypeRow struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Icon        string `json:"icon,omitempty"`
	IsActive    bool   `json:"is_active"`
}

// ScrapType is the API shape of a scrap type. RatePerKg and EffectiveFrom are
// filled from the active rate when the type has one.
type ScrapType struct {
	ID            string     `json:"id"`
	Name          string     `json:"name"`
	Description   string     `json:"description,omitempty"`
	Icon          string     `json:"icon,omitempty"`
	IsActive      bool       `json:"isActive"`
	RatePerKg     *float64   `json:"ratePerKg,omitempty"`
	EffectiveFrom *time.Time `json:"effectiveFrom,omitempty"`
}

func (r scrapTypeRow) dto() ScrapType {
	return ScrapType{
		ID:          r.ID,
		Name:        r.Name,
		Description: r.Description,
		Icon:        r.Icon,
		IsActive:    r.IsActive,
	}
}

// ScrapRate is the API shape of a rate version.
type ScrapRate struct {
	ID            int64      `json:"id"`
	ScrapTypeID   string     `json:"scrapTypeId"`
	RatePerKg     float64    `json:"ratePerKg"`
	IsActive      bool       `json:"isActive"`
	EffectiveFrom *time.Time `json:"effectiveFrom,omitempty"`
}

func rateDTO(r rates.Rate) ScrapRate {
	return ScrapRate{
		ID:            r.ID,
		ScrapTypeID:   r.ScrapTypeID,
		RatePerKg:     r.RatePerKg,
		IsActive:      r.IsActive,
		EffectiveFrom: r.EffectiveFrom,
	}
}

// scrapTypePatchColumns maps patchable request keys to storage columns.
var scrapTypePatchColumns = map[string]string{
	"name":        "name",
	"description": "description",
	"icon":        "icon",
	"isActive":    "is_active",
}

// rateManager builds a rate manager on a privileged client for the project
// hosting scrap_rates. Managers are cheap; one is built per request.
func (a *API) rateManager() (*rates.Manager, error) {
	client, err := a.factory.TableClient(rates.Table)
	if err != nil {
		return nil, err
	}
	return rates.NewManager(client, a.log), nil
}

type scrapTypesResponse struct {
	Success    bool        `json:"success"`
	ScrapTypes []ScrapType `json:"scrapTypes"`
}

type scrapTypeResponse struct {
	Success   bool      `json:"success"`
	ScrapType ScrapType `json:"scrapType"`
}

// handleListScrapTypes returns every scrap type joined with its active rate.
func (a *API) handleListScrapTypes(w http.ResponseWriter, r *http.Request) {
	client, err := a.factory.TableClient(scrapTypesTable)
	if err != nil {
		status, msg := a.translateError(err, "list scrap types")
		writeError(w, status, msg)
		return
	}

	var rows []scrapTypeRow
	if err := client.Select(r.Context(), scrapTypesTable, dataservice.Query{Order: "name.asc"}, &rows); err != nil {
		status, msg := a.translateError(err, "list scrap types")
		writeError(w, status, msg)
		return
	}

	manager, err := a.rateManager()
	if err != nil {
		status, msg := a.translateError(err, "list scrap types")
		writeError(w, status, msg)
		return
	}
	active, err := manager.ActiveRates(r.Context())
	if err != nil {
		status, msg := a.translateError(err, "list scrap types")
		writeError(w, status, msg)
		return
	}

	types := make([]ScrapType, 0, len(rows))
	for _, row := range rows {
		st := row.dto()
		if rate, ok := active[row.ID]; ok {
			st.RatePerKg = &rate.RatePerKg
			st.EffectiveFrom = rate.EffectiveFrom
		}
		types = append(types, st)
	}

	writeJSON(w, http.StatusOK, scrapTypesResponse{Success: true, ScrapTypes: types})
}

type createScrapTypeRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
}

func (a *API) handleCreateScrapType(w http.ResponseWriter, r *http.Request) {
	var req createScrapTypeRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Name) == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}

	row := scrapTypeRow{
		ID:          uuid.New().String(),
		Name:        req.Name,
		Description: req.Description,
		Icon:        req.Icon,
		IsActive:    true,
	}

	client, err := a.factory.TableClient(scrapTypesTable)
	if err != nil {
		status, msg := a.translateError(err, "create scrap type")
		writeError(w, status, msg)
		return
	}

	var inserted []scrapTypeRow
	if err := client.Insert(r.Context(), scrapTypesTable, row, &inserted); err != nil {
		status, msg := a.translateError(err, "create scrap type")
		writeError(w, status, msg)
		return
	}
	created := row
	if len(inserted) > 0 {
		created = inserted[0]
	}

	a.log.Info("scrap type created", "id", created.ID, "name", created.Name)
	writeJSON(w, http.StatusCreated, scrapTypeResponse{Success: true, ScrapType: created.dto()})
}

func (a *API) handlePatchScrapType(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	var body map[string]any
	if !decodeBody(w, r, &body) {
		return
	}
	patch := patchColumns(body, scrapTypePatchColumns)
	if len(patch) == 0 {
		writeError(w, http.StatusBadRequest, "No fields to update")
		return
	}

	client, err := a.factory.TableClient(scrapTypesTable)
	if err != nil {
		status, msg := a.translateError(err, "update scrap type")
		writeError(w, status, msg)
		return
	}

	query := dataservice.Query{Filters: map[string]string{"id": dataservice.Eq(id)}}
	var updated []scrapTypeRow
	if err := client.Update(r.Context(), scrapTypesTable, patch, query, &updated); err != nil {
		status, msg := a.translateError(err, "update scrap type")
		writeError(w, status, msg)
		return
	}
	if len(updated) == 0 {
		writeError(w, http.StatusNotFound, ErrMsgNotFound)
		return
	}

	writeJSON(w, http.StatusOK, scrapTypeResponse{Success: true, ScrapType: updated[0].dto()})
}

type scrapRatesResponse struct {
	Success bool                 `json:"success"`
	Rates   map[string]ScrapRate `json:"rates"`
}

type setRateResponse struct {
	Success bool      `json:"success"`
	Rate    ScrapRate `json:"rate"`
}

// handleListScrapRates returns the active rate per scrap type, keyed by
// scrap type id.
func (a *API) handleListScrapRates(w http.ResponseWriter, r *http.Request) {
	manager, err := a.rateManager()
	if err != nil {
		status, msg := a.translateError(err, "list scrap rates")
		writeError(w, status, msg)
		return
	}
	active, err := manager.ActiveRates(r.Context())
	if err != nil {
		status, msg := a.translateError(err, "list scrap rates")
		writeError(w, status, msg)
		return
	}

	out := make(map[string]ScrapRate, len(active))
	for id, rate := range active {
		out[id] = rateDTO(rate)
	}

	writeJSON(w, http.StatusOK, scrapRatesResponse{Success: true, Rates: out})
}

type setRateRequest struct {
	ScrapTypeID string  `json:"scrapTypeId"`
	RatePerKg   float64 `json:"ratePerKg"`
}

// handleSetScrapRate publishes a new rate version for a scrap type,
// superseding the currently active one.
func (a *API) handleSetScrapRate(w http.ResponseWriter, r *http.Request) {
	var req setRateRequest
	if !decodeBody(w, r, &req) {
		return
	}

	manager, err := a.rateManager()
	if err != nil {
		status, msg := a.translateError(err, "set scrap rate")
		writeError(w, status, msg)
		return
	}
	rate, err := manager.SetRate(r.Context(), req.ScrapTypeID, req.RatePerKg)
	if err != nil {
		status, msg := a.translateError(err, "set scrap rate")
		writeError(w, status, msg)
		return
	}

	writeJSON(w, http.StatusCreated, setRateResponse{Success: true, Rate: rateDTO(*rate)})
}
