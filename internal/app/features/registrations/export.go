// internal/app/features/registrations/export.go
package registrations

import (
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	uierrors "github.com/dalemusser/eventdesk/internal/app/features/errors"
	"github.com/dalemusser/eventdesk/internal/app/system/regcsv"
	"github.com/dalemusser/eventdesk/internal/app/system/timeouts"
	"github.com/dalemusser/eventdesk/internal/domain/models"
	"go.uber.org/zap"
)

// utf8BOM lets Excel open the file as Unicode. Sent only with ?bom=1 so the
// first header cell stays "Group ID" for other CSV readers.
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// ServeExportCSV handles GET /registrations/export.csv: one row per member
// built from the aggregated list. Nothing is written until the read
// succeeds, so a failure is a normal JSON error.
func (h *Handler) ServeExportCSV(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Export(), h.Log, "export registrations")
	defer cancel()

	snap, err := h.fetch(ctx)
	if err != nil {
		uierrors.Fail(w, h.Log, "export registrations", err)
		return
	}
	h.writeCSV(w, r, "registrations", regcsv.FromRegistrations(snap.Registrations))
}

// ServeExportViewCSV handles GET /registrations/export-view.csv: the same
// columns read from the pre-joined export view.
func (h *Handler) ServeExportViewCSV(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Export(), h.Log, "export registration view")
	defer cancel()

	rows, err := h.Agg.ExportRows(ctx)
	if err != nil {
		uierrors.Fail(w, h.Log, "export registration view", err)
		return
	}
	h.writeCSV(w, r, "registrations_view", rows)
}

func (h *Handler) writeCSV(w http.ResponseWriter, r *http.Request, prefix string, rows []models.ExportRow) {
	filename := csvFilenameFromQuery(r, prefix)

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, url.PathEscape(filename)))
	if bom, _ := strconv.ParseBool(strings.TrimSpace(r.URL.Query().Get("bom"))); bom {
		_, _ = w.Write(utf8BOM)
	}

	if err := regcsv.Write(w, rows, h.Loc); err != nil {
		// Headers are gone; all we can do is log.
		h.Log.Error("write registrations CSV failed", zap.String("file", filename), zap.Error(err))
		return
	}
	h.Log.Info("registrations CSV exported", zap.String("file", filename), zap.Int("rows", len(rows)))
}

// csvFilenameFromQuery returns the "filename" query param, or
// prefix_YYYYMMDD_HHMMSS.csv. A .csv suffix is always present.
func csvFilenameFromQuery(r *http.Request, prefix string) string {
	filename := strings.TrimSpace(r.URL.Query().Get("filename"))
	if filename == "" {
		filename = prefix + "_" + time.Now().UTC().Format("20060102_150405") + ".csv"
	}
	if !strings.HasSuffix(strings.ToLower(filename), ".csv") {
		filename += ".csv"
	}
	return filename
}
