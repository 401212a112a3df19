// Route registration for the admin API.

package admin

import (
	"net/http"
)

// registerRoutes sets up all API routes. requireAdmin wraps every privileged
// route individually so /health stays open for probes.
func (a *API) registerRoutes(mux *http.ServeMux) {
	// Health and status
	mux.HandleFunc("GET /health", a.handleHealth)
	mux.HandleFunc("GET /status", a.requireAdmin(a.handleStatus))

	// Identity
	mux.HandleFunc("GET /me", a.requireAdmin(a.handleMe))

	// Vendor directory
	mux.HandleFunc("GET /vendors", a.requireAdmin(a.handleListVendors))

	// Scrap types
	mux.HandleFunc("GET /scrap-types", a.requireAdmin(a.handleListScrapTypes))
	mux.HandleFunc("POST /scrap-types", a.requireAdmin(a.handleCreateScrapType))
	mux.HandleFunc("PATCH /scrap-types/{id}", a.requireAdmin(a.handlePatchScrapType))

	// Scrap rates (versioned: setting a rate deactivates the previous one)
	mux.HandleFunc("GET /scrap-rates", a.requireAdmin(a.handleListScrapRates))
	mux.HandleFunc("POST /scrap-rates", a.requireAdmin(a.handleSetScrapRate))

	// Site stats
	mux.HandleFunc("GET /site-stats", a.requireAdmin(a.handleListSiteStats))
	mux.HandleFunc("POST /site-stats", a.requireAdmin(a.handleCreateSiteStat))
	mux.HandleFunc("PATCH /site-stats/{id}", a.requireAdmin(a.handlePatchSiteStat))

	// Testimonials
	mux.HandleFunc("GET /testimonials", a.requireAdmin(a.handleListTestimonials))
	mux.HandleFunc("POST /testimonials", a.requireAdmin(a.handleCreateTestimonial))
	mux.HandleFunc("PATCH /testimonials/{id}", a.requireAdmin(a.handlePatchTestimonial))
}
