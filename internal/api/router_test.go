package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campus-tools/results-viewer/internal/dataset"
	"github.com/campus-tools/results-viewer/internal/export"
	"github.com/campus-tools/results-viewer/internal/query"
	"github.com/campus-tools/results-viewer/internal/results"
	"github.com/campus-tools/results-viewer/internal/workbook"
)

type failingSource struct{ err error }

func (f failingSource) Dataset(context.Context) (*dataset.Dataset, error) {
	return nil, f.err
}

func testService(t *testing.T, preset string) *query.Service {
	t.Helper()
	p, err := results.Preset(preset)
	require.NoError(t, err)
	ds := dataset.FromRows([]workbook.Row{
		workbook.NewRow("Reg.No", "2020/ICT/0001", "Name", "A", "Semester", "Sem1", "GPA", "3.5", "Math", "A"),
		workbook.NewRow("Reg.No", "2020/ICT/0001", "Semester", "Sem2", "GPA", "3.8", "Physics", "B"),
	}, results.GPARecords{"2020/ICT/0001": "3.65"})
	return query.NewService(dataset.NewStatic(ds), p)
}

func serve(t *testing.T, h http.Handler, method, target string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, nil)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func decodeMessage(t *testing.T, rr *httptest.ResponseRecorder) string {
	t.Helper()
	var body map[string]string
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	return body["message"]
}

func TestHealthEndpoint(t *testing.T) {
	h := NewRouter(testService(t, "default"), Options{})

	rr := serve(t, h, http.MethodGet, "/health")

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Header().Get("Content-Type"), "application/json")
	assert.JSONEq(t, `{"status":"ok"}`, rr.Body.String())
}

func TestResults_Found(t *testing.T) {
	h := NewRouter(testService(t, "default"), Options{})

	rr := serve(t, h, http.MethodGet, "/api/results/2020/ICT/0001")

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Header().Get("Content-Type"), "application/json")

	var body struct {
		RegNo                   string                     `json:"regNo"`
		Name                    string                     `json:"name"`
		SemesterResults         map[string]json.RawMessage `json:"semesterResults"`
		TotalSemesters          int                        `json:"totalSemesters"`
		OverallGPA              string                     `json:"overallGpa"`
		OCGPA                   string                     `json:"ocGPA"`
		ComputedOverallGPA      string                     `json:"computedOverallGpa"`
		AuthoritativeOverallGPA *string                    `json:"authoritativeOverallGpa"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.Equal(t, "2020/ICT/0001", body.RegNo)
	assert.Equal(t, "A", body.Name)
	assert.Len(t, body.SemesterResults, 2)
	assert.Equal(t, 2, body.TotalSemesters)
	assert.Equal(t, "3.65", body.OverallGPA)
	assert.Equal(t, "3.65", body.OCGPA)
	assert.Equal(t, "3.65", body.ComputedOverallGPA)
	require.NotNil(t, body.AuthoritativeOverallGPA)
	assert.JSONEq(t, `{"courses":[{"Math":"A"}],"semesterGPA":3.5}`, string(body.SemesterResults["Sem1"]))
}

func TestResults_TrailingSlash(t *testing.T) {
	h := NewRouter(testService(t, "default"), Options{})
	rr := serve(t, h, http.MethodGet, "/api/results/2020/ICT/0001/")
	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestResults_NotFound(t *testing.T) {
	h := NewRouter(testService(t, "default"), Options{})

	rr := serve(t, h, http.MethodGet, "/api/results/2020/ICT/9999")

	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Equal(t, MsgNotFound, decodeMessage(t, rr))
}

func TestResults_InvalidFormat(t *testing.T) {
	h := NewRouter(testService(t, "default"), Options{})

	rr := serve(t, h, http.MethodGet, "/api/results/20/ICT/0001")

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, MsgInvalidFormat, decodeMessage(t, rr))
}

func TestResults_InvalidFormatWithoutValidation(t *testing.T) {
	h := NewRouter(testService(t, "legacy"), Options{})

	rr := serve(t, h, http.MethodGet, "/api/results/20/ICT/0001")

	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Equal(t, MsgNotFound, decodeMessage(t, rr))
}

func TestResults_DatasetUnavailable(t *testing.T) {
	p, err := results.Preset("default")
	require.NoError(t, err)
	svc := query.NewService(failingSource{err: &dataset.LoadError{Path: "data.xlsx", Err: errors.New("gone")}}, p)
	h := NewRouter(svc, Options{})

	rr := serve(t, h, http.MethodGet, "/api/results/2020/ICT/0001")

	assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
	assert.Equal(t, MsgUnavailable, decodeMessage(t, rr))
}

func TestResults_InternalError(t *testing.T) {
	p, err := results.Preset("default")
	require.NoError(t, err)
	h := NewRouter(query.NewService(failingSource{err: errors.New("boom")}, p), Options{})

	rr := serve(t, h, http.MethodGet, "/api/results/2020/ICT/0001")

	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.Equal(t, MsgInternal, decodeMessage(t, rr))
}

func TestExportXLSX(t *testing.T) {
	h := NewRouter(testService(t, "default"), Options{})

	rr := serve(t, h, http.MethodGet, "/api/results/2020/ICT/0001/export.xlsx")

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, export.ContentType, rr.Header().Get("Content-Type"))
	assert.Contains(t, rr.Header().Get("Content-Disposition"), "results_2020_ICT_0001.xlsx")

	w, err := workbook.OpenBinary(rr.Body.Bytes())
	require.NoError(t, err)
	assert.Equal(t, []string{export.SheetName}, w.SheetNames())
}

func TestExportXLSX_QuotesFilename(t *testing.T) {
	p, err := results.Preset("legacy")
	require.NoError(t, err)
	ds := dataset.FromRows([]workbook.Row{
		workbook.NewRow("Reg.No", `2020/ICT/00"1`, "Name", "Q", "Semester", "Sem1", "GPA", "3.0"),
	}, nil)
	h := NewRouter(query.NewService(dataset.NewStatic(ds), p), Options{})

	rr := serve(t, h, http.MethodGet, "/api/results/2020/ICT/00%221/export.xlsx")
	require.Equal(t, http.StatusOK, rr.Code)

	disposition, params, err := mime.ParseMediaType(rr.Header().Get("Content-Disposition"))
	require.NoError(t, err)
	assert.Equal(t, "attachment", disposition)
	assert.Equal(t, `results_2020_ICT_00"1.xlsx`, params["filename"])
}

func TestExportXLSX_NotFound(t *testing.T) {
	h := NewRouter(testService(t, "default"), Options{})

	rr := serve(t, h, http.MethodGet, "/api/results/2020/ICT/9999/export.xlsx")
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestIndexPage(t *testing.T) {
	h := NewRouter(testService(t, "default"), Options{})

	rr := serve(t, h, http.MethodGet, "/")

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Header().Get("Content-Type"), "text/html")
	assert.Contains(t, rr.Body.String(), "Results Viewer")
	assert.Contains(t, rr.Body.String(), "/api/results/")
}

func TestIndexPage_RendersInDocumentOrder(t *testing.T) {
	h := NewRouter(testService(t, "default"), Options{})

	page := serve(t, h, http.MethodGet, "/").Body.String()

	assert.Contains(t, page, "function parseOrdered(text)")
	assert.Contains(t, page, "new Map()")
	assert.NotContains(t, page, "Object.keys(course)")
	assert.NotContains(t, page, "Object.keys(data.semesterResults)")
	assert.NotContains(t, page, "resp.json()")
}

func TestUnknownRoute(t *testing.T) {
	h := NewRouter(testService(t, "default"), Options{})

	rr := serve(t, h, http.MethodGet, "/api/results/2020")
	assert.Equal(t, http.StatusNotFound, rr.Code)

	rr = serve(t, h, http.MethodPost, "/api/results/2020/ICT/0001")
	assert.Equal(t, http.StatusMethodNotAllowed, rr.Code)
}

func TestRequestID(t *testing.T) {
	h := NewRouter(testService(t, "default"), Options{})

	rr := serve(t, h, http.MethodGet, "/health")
	assert.Len(t, rr.Header().Get(requestIDHeader), 36)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set(requestIDHeader, "abc-123")
	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	assert.Equal(t, "abc-123", rr.Header().Get(requestIDHeader))
}

func TestCORS(t *testing.T) {
	h := NewRouter(testService(t, "default"), Options{AllowedOrigins: []string{"https://results.example.edu"}})

	req := httptest.NewRequest(http.MethodGet, "/api/results/2020/ICT/0001", nil)
	req.Header.Set("Origin", "https://results.example.edu")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	assert.Equal(t, "https://results.example.edu", rr.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodGet, "/api/results/2020/ICT/0001", nil)
	req.Header.Set("Origin", "https://evil.example.com")
	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	assert.Empty(t, rr.Header().Get("Access-Control-Allow-Origin"))
}

func TestRateLimit(t *testing.T) {
	h := NewRouter(testService(t, "default"), Options{RateLimit: 0.001, RateBurst: 2})

	assert.Equal(t, http.StatusOK, serve(t, h, http.MethodGet, "/api/results/2020/ICT/0001").Code)
	assert.Equal(t, http.StatusNotFound, serve(t, h, http.MethodGet, "/api/results/2020/ICT/9999").Code)

	rr := serve(t, h, http.MethodGet, "/api/results/2020/ICT/0001")
	assert.Equal(t, http.StatusTooManyRequests, rr.Code)
	assert.Equal(t, "1", rr.Header().Get("Retry-After"))

	// Health checks are not rate limited.
	assert.Equal(t, http.StatusOK, serve(t, h, http.MethodGet, "/health").Code)
}

func TestServer_EndToEnd(t *testing.T) {
	srv := httptest.NewServer(NewRouter(testService(t, "strict"), Options{}))
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/api/results/2020/ICT/0001")
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), `"overallGpa":"3.650"`)
	assert.Contains(t, string(body), `"computedOverallGpa":"3.650"`)
}

func TestClassify(t *testing.T) {
	tests := []struct {
		err    error
		status int
	}{
		{query.ErrInvalidFormat, http.StatusBadRequest},
		{results.ErrNotFound, http.StatusNotFound},
		{&dataset.LoadError{Path: "x", Err: errors.New("y")}, http.StatusServiceUnavailable},
		{context.Canceled, http.StatusServiceUnavailable},
		{eris.Wrap(query.ErrInvalidFormat, "lookup"), http.StatusBadRequest},
		{eris.Wrap(results.ErrNotFound, "lookup"), http.StatusNotFound},
		{errors.New("other"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		status, _ := classify(tt.err)
		assert.Equal(t, tt.status, status, tt.err.Error())
	}
}
