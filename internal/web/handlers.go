package web

import (
	"bytes"
	"database/sql"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/hpungsan/rolodex/internal/config"
	"github.com/hpungsan/rolodex/internal/contact"
	"github.com/hpungsan/rolodex/internal/errors"
	"github.com/hpungsan/rolodex/internal/ops"
	"github.com/hpungsan/rolodex/internal/vcf"
)

// Export response headers.
const (
	HeaderExportOutcome   = "X-Export-Outcome"
	HeaderExportSucceeded = "X-Export-Succeeded"
	HeaderExportFailed    = "X-Export-Failed"
)

// Handlers contains HTTP route handlers for the web UI.
type Handlers struct {
	db       *sql.DB
	cfg      *config.Config
	renderer *Renderer
	photoDir string
}

// HandleList handles GET /contacts: list contacts ordered by name.
func (h *Handlers) HandleList(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	input := ops.ListInput{
		NamePrefix:     q.Get("q"),
		StarredOnly:    parseBoolParam(r, "starred"),
		Limit:          parseIntParam(r, "limit", 50),
		Offset:         parseIntParam(r, "offset", 0),
		IncludeDeleted: parseBoolParam(r, "include_deleted"),
	}

	result, err := ops.List(r.Context(), h.db, input)
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	if wantsJSON(r) {
		renderJSON(w, http.StatusOK, result)
		return
	}

	nav := "contacts"
	if input.StarredOnly {
		nav = "starred"
	}
	h.renderer.renderPage(w, r, "list", ListPageData{
		PageData: PageData{
			Title:   "Contacts",
			Version: h.renderer.version,
			Nav:     nav,
		},
		Items:       result.Items,
		Pagination:  result.Pagination,
		NamePrefix:  input.NamePrefix,
		StarredOnly: input.StarredOnly,
		Deleted:     input.IncludeDeleted,
	})
}

// HandleDetail handles GET /contacts/{id}: view a single contact.
func (h *Handlers) HandleDetail(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		h.renderer.renderError(w, r, errors.NewInvalidRequest("contact ID is required"))
		return
	}

	c, err := ops.Fetch(r.Context(), h.db, ops.FetchInput{
		ID:             id,
		IncludeDeleted: parseBoolParam(r, "include_deleted"),
	})
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	if wantsJSON(r) {
		renderJSON(w, http.StatusOK, c)
		return
	}

	data := DetailPageData{
		PageData: PageData{
			Title:   c.DisplayName(),
			Version: h.renderer.version,
			Nav:     "contacts",
		},
		Contact:       c,
		RenderedNotes: h.renderer.renderMarkdown(c.Notes),
	}
	for _, e := range c.Events {
		switch {
		case e.Type == contact.EventBirthday && data.Birthday == "":
			data.Birthday = formatEventDate(e.Value)
		case e.Type == contact.EventAnniversary && data.Anniversary == "":
			data.Anniversary = formatEventDate(e.Value)
		}
	}

	h.renderer.renderPage(w, r, "detail", data)
}

// HandleDelete handles DELETE /contacts/{id}: soft-delete a contact.
func (h *Handlers) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		h.renderer.renderError(w, r, errors.NewInvalidRequest("contact ID is required"))
		return
	}

	result, err := ops.Delete(r.Context(), h.db, ops.DeleteInput{ID: id})
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	// HTMX request: redirect via HX-Redirect header
	if r.Header.Get("HX-Request") == "true" {
		w.Header().Set("HX-Redirect", "/contacts")
		w.WriteHeader(http.StatusOK)
		return
	}

	if wantsJSON(r) {
		renderJSON(w, http.StatusOK, result)
		return
	}

	// Default: redirect
	http.Redirect(w, r, "/contacts", http.StatusFound)
}

// HandlePurge handles POST /contacts/purge: permanently delete soft-deleted contacts.
func (h *Handlers) HandlePurge(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.renderer.renderError(w, r, errors.NewInvalidRequest("invalid form data"))
		return
	}

	if r.FormValue("confirm") != "true" {
		h.renderer.renderError(w, r, errors.NewInvalidRequest("confirm parameter must be \"true\""))
		return
	}

	var input ops.PurgeInput
	if days := r.FormValue("older_than_days"); days != "" {
		d, err := strconv.Atoi(days)
		if err != nil {
			h.renderer.renderError(w, r, errors.NewInvalidRequest("older_than_days must be an integer"))
			return
		}
		input.OlderThanDays = &d
	}

	result, err := ops.Purge(r.Context(), h.db, input)
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	// HTMX request: return HTML fragment
	if r.Header.Get("HX-Request") == "true" {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`<div class="purge-result">` + template.HTMLEscapeString(result.Message) + `</div>`))
		return
	}

	if wantsJSON(r) {
		renderJSON(w, http.StatusOK, result)
		return
	}

	// Default: redirect
	http.Redirect(w, r, "/contacts?include_deleted=true", http.StatusFound)
}

// HandleExport handles GET /export.vcf: download every contact as vCard.
// Repeated "id" query parameters restrict and order the export.
func (h *Handlers) HandleExport(w http.ResponseWriter, r *http.Request) {
	h.export(w, r, r.URL.Query()["id"], "contacts.vcf")
}

// HandleContactVCard handles GET /contacts/{id}/vcard: download one contact.
func (h *Handlers) HandleContactVCard(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	h.export(w, r, []string{id}, ops.ExportFilename(id))
}

// HandleContactQR handles GET /contacts/{id}/qr.png: the contact's vCard as a
// scannable QR code. The photo is left out so the card fits.
func (h *Handlers) HandleContactQR(w http.ResponseWriter, r *http.Request) {
	rec, err := ops.Fetch(r.Context(), h.db, ops.FetchInput{
		ID:             r.PathValue("id"),
		IncludeDeleted: parseBoolParam(r, "include_deleted"),
	})
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	card := *rec
	card.Thumbnail = nil

	var buf bytes.Buffer
	enc := vcf.NewEncoder(vcf.Options{Logger: slog.Default()})
	res := enc.Encode(r.Context(), []*contact.Contact{&card}, vcf.WriterSink{W: &buf}, false)
	if res.Outcome != vcf.OutcomeOK {
		err := res.Err
		if err == nil && len(res.Failures) > 0 {
			err = res.Failures[0].Err
		}
		if err == nil {
			err = errors.NewInternal(fmt.Errorf("contact %s could not be encoded", rec.ID))
		}
		h.renderer.renderError(w, r, err)
		return
	}

	size := parseIntParam(r, "size", vcf.DefaultQRSize)
	data, err := vcf.QRCode(buf.Bytes(), size)
	if err != nil {
		h.renderer.renderError(w, r, errors.NewInvalidRequest(err.Error()))
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

// export buffers the vCard text so the outcome headers can be set before the
// body is written.
func (h *Handlers) export(w http.ResponseWriter, r *http.Request, ids []string, filename string) {
	var buf bytes.Buffer
	result, err := ops.ExportTo(r.Context(), h.db, h.cfg, &buf, ops.ExportInput{
		IDs:            ids,
		IncludeDeleted: parseBoolParam(r, "include_deleted"),
		PhotoDir:       h.photoDir,
	})
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	for _, f := range result.Failures {
		slog.Warn("contact left out of download", "contact_id", f.ContactID, "error", f.Message)
	}

	w.Header().Set(HeaderExportOutcome, string(result.Outcome))
	w.Header().Set(HeaderExportSucceeded, strconv.Itoa(result.Succeeded))
	w.Header().Set(HeaderExportFailed, strconv.Itoa(result.Failed))

	switch {
	case result.Succeeded == 0 && result.Failed == 0:
		w.WriteHeader(http.StatusNoContent)
		return
	case result.Outcome == vcf.OutcomeFail:
		renderJSON(w, http.StatusUnprocessableEntity, result)
		return
	}

	w.Header().Set("Content-Type", "text/vcard; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.Header().Set("Last-Modified", time.Unix(result.ExportedAt, 0).UTC().Format(http.TimeFormat))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

// parseIntParam parses an integer query parameter with a default value.
func parseIntParam(r *http.Request, name string, defaultVal int) int {
	s := r.URL.Query().Get(name)
	if s == "" {
		return defaultVal
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return defaultVal
	}
	return v
}

// parseBoolParam parses a boolean query parameter.
func parseBoolParam(r *http.Request, name string) bool {
	s := r.URL.Query().Get(name)
	return s == "true" || s == "1"
}
