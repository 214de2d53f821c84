package handler

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/alanyoungcy/slipscan/internal/domain"
	"github.com/alanyoungcy/slipscan/internal/service"
)

// CSVImporter defines the methods the import handler requires from the
// service layer.
type CSVImporter interface {
	ImportCSV(ctx context.Context, filename string, data []byte, dryRun bool) (service.ImportResult, error)
}

// ImportHistory lists past import batches.
type ImportHistory interface {
	List(ctx context.Context, opts domain.ListOpts) ([]domain.CsvImport, error)
}

// ImportHandler serves CSV import endpoints.
type ImportHandler struct {
	importer  CSVImporter
	history   ImportHistory
	maxUpload int64
	logger    *slog.Logger
}

// NewImportHandler creates an ImportHandler. maxUpload bounds the accepted
// CSV size in bytes.
func NewImportHandler(importer CSVImporter, history ImportHistory, maxUpload int64, logger *slog.Logger) *ImportHandler {
	return &ImportHandler{
		importer:  importer,
		history:   history,
		maxUpload: maxUpload,
		logger:    logger,
	}
}

// ImportCSV ingests a CSV of historical bets. With dry_run=true the file is
// validated and counted but nothing is written.
// POST /api/import/csv?dry_run=false  (multipart field: file)
func (h *ImportHandler) ImportCSV(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUpload)
	if err := r.ParseMultipartForm(h.maxUpload); err != nil {
		writeError(w, http.StatusRequestEntityTooLarge, "upload too large or malformed")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "missing file field")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		writeError(w, http.StatusBadRequest, "failed to read upload")
		return
	}
	if len(data) == 0 {
		writeError(w, http.StatusBadRequest, "empty file")
		return
	}

	dryRun, _ := strconv.ParseBool(r.URL.Query().Get("dry_run"))

	result, err := h.importer.ImportCSV(r.Context(), header.Filename, data, dryRun)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "handler: csv import failed",
			slog.String("filename", header.Filename),
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusBadRequest, "failed to import csv: "+err.Error())
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// ListImports returns past import batches, newest first.
// GET /api/imports?limit=50&offset=0
func (h *ImportHandler) ListImports(w http.ResponseWriter, r *http.Request) {
	opts := parseListOpts(r)

	imports, err := h.history.List(r.Context(), opts)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "handler: list imports failed",
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusInternalServerError, "failed to list imports")
		return
	}
	if imports == nil {
		imports = []domain.CsvImport{}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"imports": imports,
		"limit":   opts.Limit,
		"offset":  opts.Offset,
	})
}
