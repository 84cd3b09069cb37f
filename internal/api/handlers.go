package api

import (
	"bytes"
	"context"
	"encoding/json"
	"mime"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/campus-tools/results-viewer/internal/dataset"
	"github.com/campus-tools/results-viewer/internal/export"
	"github.com/campus-tools/results-viewer/internal/query"
	"github.com/campus-tools/results-viewer/internal/results"
)

// Client-facing messages.
const (
	MsgInvalidFormat = "Invalid registration number format."
	MsgNotFound      = "No results found for the given registration number."
	MsgUnavailable   = "Results data is currently unavailable."
	MsgInternal      = "Internal server error."
)

type handler struct {
	svc *query.Service
}

type messageBody struct {
	Message string `json:"message"`
}

func (h *handler) health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *handler) results(w http.ResponseWriter, r *http.Request) {
	out, ok := h.lookup(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *handler) exportXLSX(w http.ResponseWriter, r *http.Request) {
	out, ok := h.lookup(w, r)
	if !ok {
		return
	}

	var buf bytes.Buffer
	if err := export.WriteXLSX(&buf, out); err != nil {
		zap.L().Error("xlsx export failed", zap.String("reg_no", out.RegNo), zap.Error(err))
		writeMessage(w, http.StatusInternalServerError, MsgInternal)
		return
	}

	w.Header().Set("Content-Type", export.ContentType)
	w.Header().Set("Content-Disposition", attachment(export.Filename(out.RegNo)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

// lookup runs the query for the request's path parameters and writes the
// error response itself when the lookup fails.
func (h *handler) lookup(w http.ResponseWriter, r *http.Request) (*results.Payload, bool) {
	year := chi.URLParam(r, "year")
	department := chi.URLParam(r, "department")
	number := chi.URLParam(r, "number")

	out, err := h.svc.Lookup(r.Context(), year, department, number)
	if err != nil {
		status, msg := classify(err)
		if status >= http.StatusInternalServerError {
			zap.L().Error("results lookup failed",
				zap.String("reg_no", query.RegNo(year, department, number)),
				zap.String("request_id", RequestIDFrom(r.Context())),
				zap.Error(err),
			)
		}
		writeMessage(w, status, msg)
		return nil, false
	}
	return out, true
}

// classify maps lookup errors to a status code and client message.
func classify(err error) (int, string) {
	switch {
	case eris.Is(err, query.ErrInvalidFormat):
		return http.StatusBadRequest, MsgInvalidFormat
	case eris.Is(err, results.ErrNotFound):
		return http.StatusNotFound, MsgNotFound
	case dataset.IsLoadError(err):
		return http.StatusServiceUnavailable, MsgUnavailable
	case eris.Is(err, context.Canceled), eris.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable, MsgUnavailable
	default:
		return http.StatusInternalServerError, MsgInternal
	}
}

// attachment builds a Content-Disposition value with filename quoted or
// RFC 2231 encoded as needed.
func attachment(filename string) string {
	if v := mime.FormatMediaType("attachment", map[string]string{"filename": filename}); v != "" {
		return v
	}
	return "attachment"
}

func writeMessage(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, messageBody{Message: msg})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zap.L().Warn("encode response", zap.Error(err))
	}
}
