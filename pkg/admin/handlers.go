package admin

import (
	"net/http"
	"sort"
	"time"

	"github.com/scraphq/admind/pkg/dataservice"
)

// maxVendorRows caps the vendor listing.
const maxVendorRows = 500

type healthResponse struct {
	Status string `json:"status"`
	Uptime int    `json:"uptime"`
}

// handleHealth handles GET /health. Unauthenticated, for probes.
func (a *API) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{Status: "ok", Uptime: a.Uptime()})
}

type statusResponse struct {
	Success      bool     `json:"success"`
	Status       string   `json:"status"`
	Version      string   `json:"version"`
	Uptime       int      `json:"uptime"`
	AdminEnabled bool     `json:"adminEnabled"`
	Projects     []string `json:"projects"`
}

// handleStatus handles GET /status. Lists the configured logical projects by
// name only; key material never leaves the process.
func (a *API) handleStatus(w http.ResponseWriter, r *http.Request) {
	redacted := a.cfg.Redacted()
	projects := make([]string, 0, len(redacted))
	for p := range redacted {
		projects = append(projects, string(p))
	}
	sort.Strings(projects)

	writeJSON(w, http.StatusOK, statusResponse{
		Success:      true,
		Status:       "ok",
		Version:      a.version,
		Uptime:       a.Uptime(),
		AdminEnabled: a.cfg.AdminEnabled,
		Projects:     projects,
	})
}

type meResponse struct {
	Success bool   `json:"success"`
	IsAdmin bool   `json:"isAdmin"`
	UserID  string `json:"userId"`
}

// handleMe handles GET /me, confirming the caller passed the gate.
func (a *API) handleMe(w http.ResponseWriter, r *http.Request) {
	principal, ok := PrincipalFrom(r.Context())
	if !ok {
		writeError(w, http.StatusInternalServerError, ErrMsgInternalError)
		return
	}
	writeJSON(w, http.StatusOK, meResponse{
		Success: true,
		IsAdmin: principal.Role.IsAdmin(),
		UserID:  principal.UserID,
	})
}

// vendorRow is the storage shape of a vendors row.
type vendorRow struct {
	ID           string     `json:"id"`
	BusinessName string     `json:"business_name"`
	Phone        string     `json:"phone"`
	Email        string     `json:"email"`
	IsVerified   bool       `json:"is_verified"`
	CreatedAt    *time.Time `json:"created_at"`
}

// Vendor is the API shape of a vendor.
type Vendor struct {
	ID           string     `json:"id"`
	BusinessName string     `json:"businessName"`
	Phone        string     `json:"phone"`
	Email        string     `json:"email"`
	IsVerified   bool       `json:"isVerified"`
	CreatedAt    *time.Time `json:"createdAt"`
}

func (r vendorRow) dto() Vendor {
	return Vendor{
		ID:           r.ID,
		BusinessName: r.BusinessName,
		Phone:        r.Phone,
		Email:        r.Email,
		IsVerified:   r.IsVerified,
		CreatedAt:    r.CreatedAt,
	}
}

type vendorsResponse struct {
	Success bool     `json:"success"`
	Vendors []Vendor `json:"vendors"`
}

// handleListVendors handles GET /vendors: newest first, capped at
// maxVendorRows.
func (a *API) handleListVendors(w http.ResponseWriter, r *http.Request) {
	client, err := a.factory.TableClient("vendors")
	if err != nil {
		status, msg := a.translateError(err, "list vendors")
		writeError(w, status, msg)
		return
	}

	var rows []vendorRow
	err = client.Select(r.Context(), "vendors", dataservice.Query{
		Order: "created_at.desc",
		Limit: maxVendorRows,
	}, &rows)
	if err != nil {
		status, msg := a.translateError(err, "list vendors")
		writeError(w, status, msg)
		return
	}

	vendors := make([]Vendor, 0, len(rows))
	for _, row := range rows {
		vendors = append(vendors, row.dto())
	}
	writeJSON(w, http.StatusOK, vendorsResponse{Success: true, Vendors: vendors})
}
