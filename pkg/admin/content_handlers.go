package admin

import (
	"net/http"
	"strings"

	"github.com/scraphq/admind/pkg/dataservice"
)

// Tables backing the public-site content endpoints. Both live in the
// customer project.
const (
	siteStatsTable    = "site_stats"
	testimonialsTable = "testimonials"
)

const ratingRangeMessage = "rating must be between 1 and 5"

// siteStatRow is the storage shape of a site_stats row.
type siteStatRow struct {
	ID        int64  `json:"id"`
	Label     string `json:"label"`
	Value     string `json:"value"`
	SortOrder int    `json:"sort_order"`
	IsActive  bool   `json:"is_active"`
}

// SiteStat is the API shape of a headline statistic shown on the public site.
type SiteStat struct {
	ID        int64  `json:"id"`
	Label     string `json:"label"`
	Value     string `json:"value"`
	SortOrder int    `json:"sortOrder"`
	IsActive  bool   `json:"isActive"`
}

func (r siteStatRow) dto() SiteStat {
	return SiteStat{
		ID:        r.ID,
		Label:     r.Label,
		Value:     r.Value,
		SortOrder: r.SortOrder,
		IsActive:  r.IsActive,
	}
}

// testimonialRow is the storage shape of a testimonials row. Rating is
// nullable; rows created before ratings existed carry none.
type testimonialRow struct {
	ID        int64    `json:"id"`
	Author    string   `json:"author"`
	Quote     string   `json:"quote"`
	Rating    *float64 `json:"rating"`
	SortOrder int      `json:"sort_order"`
	IsActive  bool     `json:"is_active"`
}

// Testimonial is the API shape of a customer testimonial.
type Testimonial struct {
	ID        int64    `json:"id"`
	Author    string   `json:"author"`
	Quote     string   `json:"quote"`
	Rating    *float64 `json:"rating,omitempty"`
	SortOrder int      `json:"sortOrder"`
	IsActive  bool     `json:"isActive"`
}

func (r testimonialRow) dto() Testimonial {
	return Testimonial{
		ID:        r.ID,
		Author:    r.Author,
		Quote:     r.Quote,
		Rating:    r.Rating,
		SortOrder: r.SortOrder,
		IsActive:  r.IsActive,
	}
}

var siteStatPatchColumns = map[string]string{
	"label":     "label",
	"value":     "value",
	"sortOrder": "sort_order",
	"isActive":  "is_active",
}

var testimonialPatchColumns = map[string]string{
	"author":    "author",
	"quote":     "quote",
	"rating":    "rating",
	"sortOrder": "sort_order",
	"isActive":  "is_active",
}

// validRating checks the 1..5 inclusive range.
func validRating(r float64) bool {
	return r >= 1 && r <= 5
}

type siteStatsResponse struct {
	Success   bool       `json:"success"`
	SiteStats []SiteStat `json:"siteStats"`
}

type siteStatResponse struct {
	Success  bool     `json:"success"`
	SiteStat SiteStat `json:"siteStat"`
}

func (a *API) handleListSiteStats(w http.ResponseWriter, r *http.Request) {
	client, err := a.factory.TableClient(siteStatsTable)
	if err != nil {
		status, msg := a.translateError(err, "list site stats")
		writeError(w, status, msg)
		return
	}

	var rows []siteStatRow
	if err := client.Select(r.Context(), siteStatsTable, dataservice.Query{Order: "sort_order.asc"}, &rows); err != nil {
		status, msg := a.translateError(err, "list site stats")
		writeError(w, status, msg)
		return
	}

	stats := make([]SiteStat, 0, len(rows))
	for _, row := range rows {
		stats = append(stats, row.dto())
	}
	writeJSON(w, http.StatusOK, siteStatsResponse{Success: true, SiteStats: stats})
}

type createSiteStatRequest struct {
	Label     string `json:"label"`
	Value     string `json:"value"`
	SortOrder int    `json:"sortOrder"`
	IsActive  *bool  `json:"isActive"`
}

func (a *API) handleCreateSiteStat(w http.ResponseWriter, r *http.Request) {
	var req createSiteStatRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Label) == "" {
		writeError(w, http.StatusBadRequest, "label is required")
		return
	}
	if strings.TrimSpace(req.Value) == "" {
		writeError(w, http.StatusBadRequest, "value is required")
		return
	}

	row := map[string]any{
		"label":      req.Label,
		"value":      req.Value,
		"sort_order": req.SortOrder,
		"is_active":  req.IsActive == nil || *req.IsActive,
	}

	client, err := a.factory.TableClient(siteStatsTable)
	if err != nil {
		status, msg := a.translateError(err, "create site stat")
		writeError(w, status, msg)
		return
	}
	var inserted []siteStatRow
	if err := client.Insert(r.Context(), siteStatsTable, row, &inserted); err != nil {
		status, msg := a.translateError(err, "create site stat")
		writeError(w, status, msg)
		return
	}
	if len(inserted) == 0 {
		status, msg := a.translateError(errNoRowsReturned(siteStatsTable), "create site stat")
		writeError(w, status, msg)
		return
	}

	a.log.Info("site stat created", "id", inserted[0].ID, "label", inserted[0].Label)
	writeJSON(w, http.StatusCreated, siteStatResponse{Success: true, SiteStat: inserted[0].dto()})
}

func (a *API) handlePatchSiteStat(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	var body map[string]any
	if !decodeBody(w, r, &body) {
		return
	}
	patch := patchColumns(body, siteStatPatchColumns)
	if len(patch) == 0 {
		writeError(w, http.StatusBadRequest, "No fields to update")
		return
	}

	client, err := a.factory.TableClient(siteStatsTable)
	if err != nil {
		status, msg := a.translateError(err, "update site stat")
		writeError(w, status, msg)
		return
	}

	query := dataservice.Query{Filters: map[string]string{"id": dataservice.Eq(id)}}
	var updated []siteStatRow
	if err := client.Update(r.Context(), siteStatsTable, patch, query, &updated); err != nil {
		status, msg := a.translateError(err, "update site stat")
		writeError(w, status, msg)
		return
	}
	if len(updated) == 0 {
		writeError(w, http.StatusNotFound, ErrMsgNotFound)
		return
	}

	writeJSON(w, http.StatusOK, siteStatResponse{Success: true, SiteStat: updated[0].dto()})
}

type testimonialsResponse struct {
	Success      bool          `json:"success"`
	Testimonials []Testimonial `json:"testimonials"`
}

type testimonialResponse struct {
	Success     bool        `json:"success"`
	Testimonial Testimonial `json:"testimonial"`
}

func (a *API) handleListTestimonials(w http.ResponseWriter, r *http.Request) {
	client, err := a.factory.TableClient(testimonialsTable)
	if err != nil {
		status, msg := a.translateError(err, "list testimonials")
		writeError(w, status, msg)
		return
	}

	var rows []testimonialRow
	if err := client.Select(r.Context(), testimonialsTable, dataservice.Query{Order: "sort_order.asc"}, &rows); err != nil {
		status, msg := a.translateError(err, "list testimonials")
		writeError(w, status, msg)
		return
	}

	testimonials := make([]Testimonial, 0, len(rows))
	for _, row := range rows {
		testimonials = append(testimonials, row.dto())
	}
	writeJSON(w, http.StatusOK, testimonialsResponse{Success: true, Testimonials: testimonials})
}

type createTestimonialRequest struct {
	Author    string   `json:"author"`
	Quote     string   `json:"quote"`
	Rating    *float64 `json:"rating"`
	SortOrder int      `json:"sortOrder"`
	IsActive  *bool    `json:"isActive"`
}

func (a *API) handleCreateTestimonial(w http.ResponseWriter, r *http.Request) {
	var req createTestimonialRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Author) == "" {
		writeError(w, http.StatusBadRequest, "author is required")
		return
	}
	if strings.TrimSpace(req.Quote) == "" {
		writeError(w, http.StatusBadRequest, "quote is required")
		return
	}
	if req.Rating != nil && !validRating(*req.Rating) {
		writeError(w, http.StatusBadRequest, ratingRangeMessage)
		return
	}

	// Author and quote are rendered on the public site; strip any markup.
	row := map[string]any{
		"author":     a.sanitizer.Sanitize(req.Author),
		"quote":      a.sanitizer.Sanitize(req.Quote),
		"rating":     req.Rating,
		"sort_order": req.SortOrder,
		"is_active":  req.IsActive == nil || *req.IsActive,
	}

	client, err := a.factory.TableClient(testimonialsTable)
	if err != nil {
		status, msg := a.translateError(err, "create testimonial")
		writeError(w, status, msg)
		return
	}
	var inserted []testimonialRow
	if err := client.Insert(r.Context(), testimonialsTable, row, &inserted); err != nil {
		status, msg := a.translateError(err, "create testimonial")
		writeError(w, status, msg)
		return
	}
	if len(inserted) == 0 {
		status, msg := a.translateError(errNoRowsReturned(testimonialsTable), "create testimonial")
		writeError(w, status, msg)
		return
	}

	a.log.Info("testimonial created", "id", inserted[0].ID, "author", inserted[0].Author)
	writeJSON(w, http.StatusCreated, testimonialResponse{Success: true, Testimonial: inserted[0].dto()})
}

func (a *API) handlePatchTestimonial(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	var body map[string]any
	if !decodeBody(w, r, &body) {
		return
	}
	patch := patchColumns(body, testimonialPatchColumns)
	if len(patch) == 0 {
		writeError(w, http.StatusBadRequest, "No fields to update")
		return
	}
	if rating, ok := patch["rating"]; ok && rating != nil {
		value, isNumber := rating.(float64)
		if !isNumber || !validRating(value) {
			writeError(w, http.StatusBadRequest, ratingRangeMessage)
			return
		}
	}
	for _, column := range []string{"author", "quote"} {
		if text, ok := patch[column].(string); ok {
			patch[column] = a.sanitizer.Sanitize(text)
		}
	}

	client, err := a.factory.TableClient(testimonialsTable)
	if err != nil {
		status, msg := a.translateError(err, "update testimonial")
		writeError(w, status, msg)
		return
	}

	query := dataservice.Query{Filters: map[string]string{"id": dataservice.Eq(id)}}
	var updated []testimonialRow
	if err := client.Update(r.Context(), testimonialsTable, patch, query, &updated); err != nil {
		status, msg := a.translateError(err, "update testimonial")
		writeError(w, status, msg)
		return
	}
	if len(updated) == 0 {
		writeError(w, http.StatusNotFound, ErrMsgNotFound)
		return
	}

	writeJSON(w, http.StatusOK, testimonialResponse{Success: true, Testimonial: updated[0].dto()})
}
