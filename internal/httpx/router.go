package httpx

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/AngelCh415/GA4_REPORT/internal/ingest"
	"github.com/AngelCh415/GA4_REPORT/internal/models"
	"github.com/AngelCh415/GA4_REPORT/internal/prom"
	"github.com/AngelCh415/GA4_REPORT/internal/query"
	"github.com/AngelCh415/GA4_REPORT/internal/report"
	"github.com/AngelCh415/GA4_REPORT/internal/store"
	"github.com/AngelCh415/GA4_REPORT/internal/utils"
)

const pageTitle = "GA4 Monthly Report (Organic Traffic)"

type Deps struct {
	Log       *slog.Logger
	Store     *store.MemoryStore
	Query     *query.Service
	Fetcher   *ingest.Fetcher
	Metrics   *prom.Metrics
	MaxUpload int64
}

type handlers struct{ Deps }

func NewRouter(d Deps) http.Handler {
	h := handlers{d}
	mux := chi.NewRouter()
	mux.Use(utils.RequestID)
	mux.Use(utils.Logger(d.Log))

	mux.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200); w.Write([]byte("ok")) })
	mux.Get("/readyz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200); w.Write([]byte("ready")) })
	mux.Method(http.MethodGet, "/metrics", d.Metrics.Handler())

	mux.Get("/", h.page)
	mux.Post("/ingest/run", h.fetch)

	mux.Route("/reports", func(r chi.Router) {
		r.Post("/", h.upload)
		r.Get("/monthly", func(w http.ResponseWriter, r *http.Request) {
			rows, err := d.Query.QueryMonthly(r.URL.Query())
			if err != nil {
				writeErr(w, err)
				return
			}
			writeJSON(w, rows)
		})
		r.Get("/top-pages", func(w http.ResponseWriter, r *http.Request) {
			rows, err := d.Query.QueryTopPages(r.URL.Query())
			if err != nil {
				writeErr(w, err)
				return
			}
			writeJSON(w, rows)
		})
		r.Get("/accounts", func(w http.ResponseWriter, r *http.Request) {
			accts, err := d.Query.Accounts()
			if err != nil {
				writeErr(w, err)
				return
			}
			writeJSON(w, accts)
		})
		r.Get("/charts/{account}", h.chart)
	})

	return mux
}

func (h handlers) page(w http.ResponseWriter, r *http.Request) {
	p := report.Page{Title: pageTitle, UploadAction: "/reports"}
	if up, err := h.Store.Current(); err == nil {
		p.Report = up.Report
	}
	h.writePage(w, http.StatusOK, p)
}

func (h handlers) writePage(w http.ResponseWriter, code int, p report.Page) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(code)
	if err := report.WriteHTML(w, p); err != nil {
		h.Log.Error("render page", slog.String("err", err.Error()))
	}
}

// upload accepts a multipart form (field "file") or a raw CSV body.
func (h handlers) upload(w http.ResponseWriter, r *http.Request) {
	if h.MaxUpload > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, h.MaxUpload)
	}
	body, name, err := uploadedFile(r)
	if err != nil {
		h.Metrics.ObserveFailure("upload")
		writeErr(w, err)
		return
	}
	defer body.Close()

	ds, err := ingest.Load(body)
	if err != nil {
		h.fail(w, r, "upload", err)
		return
	}
	up, err := h.process(name, ds, time.Now())
	if err != nil {
		h.fail(w, r, "upload", err)
		return
	}
	if wantsHTML(r) {
		h.writePage(w, http.StatusOK, report.Page{Title: pageTitle, UploadAction: "/reports", Report: up.Report})
		return
	}
	writeJSON(w, summary(up))
}

func (h handlers) fetch(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	ds, err := h.Fetcher.Fetch(r.Context())
	if err != nil {
		h.Metrics.ObserveFailure("fetch")
		writeErr(w, err)
		return
	}
	up, err := h.process("fetch", ds, start)
	if err != nil {
		h.fail(w, r, "fetch", err)
		return
	}
	writeJSON(w, summary(up))
}

func (h handlers) process(source string, ds models.Dataset, start time.Time) (store.Upload, error) {
	rep, err := report.Build(ds)
	if err != nil {
		return store.Upload{}, err
	}
	up := h.Store.Put(source, rep)
	h.Metrics.ObserveSuccess(sourceLabel(source), rep.Rows, len(rep.Charts), time.Since(start))
	h.Log.Info("report built",
		slog.String("source", source),
		slog.Int("rows", rep.Rows),
		slog.Int("monthly_rows", len(rep.Monthly)),
		slog.Int("top_page_rows", len(rep.TopPages)),
		slog.Int("accounts", len(rep.Charts)))
	return up, nil
}

func (h handlers) fail(w http.ResponseWriter, r *http.Request, source string, err error) {
	h.Metrics.ObserveFailure(source)
	h.Log.Warn("report failed", slog.String("rid", utils.RID(r.Context())), slog.String("err", err.Error()))
	if wantsHTML(r) {
		h.writePage(w, statusOf(err), report.Page{Title: pageTitle, UploadAction: "/reports", Error: err.Error()})
		return
	}
	writeErr(w, err)
}

func (h handlers) chart(w http.ResponseWriter, r *http.Request) {
	up, err := h.Store.Current()
	if err != nil {
		writeErr(w, err)
		return
	}
	c, ok := up.Report.Chart(chi.URLParam(r, "account"))
	if !ok {
		http.Error(w, "unknown account", http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "image/svg+xml")
	if _, err := c.WriteTo(w); err != nil {
		h.Log.Error("render chart", slog.String("err", err.Error()))
	}
}

func uploadedFile(r *http.Request) (io.ReadCloser, string, error) {
	ct, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if ct != "multipart/form-data" {
		return r.Body, "body", nil
	}
	f, hdr, err := r.FormFile("file")
	if err != nil {
		return nil, "", errBadUpload{err}
	}
	return f, hdr.Filename, nil
}

type errBadUpload struct{ err error }

func (e errBadUpload) Error() string { return "bad upload: " + e.err.Error() }
func (e errBadUpload) Unwrap() error { return e.err }

type uploadSummary struct {
	Source      string    `json:"source"`
	UploadedAt  time.Time `json:"uploaded_at"`
	Rows        int       `json:"rows"`
	MonthlyRows int       `json:"monthly_rows"`
	TopPageRows int       `json:"top_page_rows"`
	Accounts    []string  `json:"accounts"`
}

func summary(up store.Upload) uploadSummary {
	accts := up.Report.Monthly.Accounts()
	if accts == nil {
		accts = []string{}
	}
	return uploadSummary{
		Source:      up.Source,
		UploadedAt:  up.UploadedAt,
		Rows:        up.Report.Rows,
		MonthlyRows: len(up.Report.Monthly),
		TopPageRows: len(up.Report.TopPages),
		Accounts:    accts,
	}
}

// sourceLabel keeps metric cardinality bounded: file names collapse to "upload".
func sourceLabel(source string) string {
	if source == "fetch" {
		return source
	}
	return "upload"
}

func statusOf(err error) int {
	var tooBig *http.MaxBytesError
	var bad errBadUpload
	switch {
	case errors.As(err, &tooBig):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, store.ErrNoReport):
		return http.StatusNotFound
	case errors.Is(err, ingest.ErrNoSource):
		return http.StatusServiceUnavailable
	case errors.Is(err, models.ErrMissingColumn),
		errors.Is(err, ingest.ErrBadDate),
		errors.Is(err, ingest.ErrEmptyInput),
		errors.Is(err, ingest.ErrMalformedRow),
		errors.As(err, &bad):
		return http.StatusBadRequest
	case errors.Is(err, ingest.ErrFetch):
		return http.StatusBadGateway
	}
	return http.StatusBadRequest
}

func wantsHTML(r *http.Request) bool {
	return strings.Contains(r.Header.Get("Accept"), "text/html")
}

func writeErr(w http.ResponseWriter, err error) {
	http.Error(w, err.Error(), statusOf(err))
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	enc := json.NewEncoder(w)
	enc.SetIndent("", " ")
	enc.Encode(v)
}
