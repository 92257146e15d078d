package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"

	"invoiceku/backend/internal/catalog"
	"invoiceku/backend/internal/domain"
	"invoiceku/backend/internal/logger"
	"invoiceku/backend/internal/pdfgen"
	"invoiceku/backend/internal/service"
	"invoiceku/backend/internal/store"
)

type API struct {
	service       *service.Service
	renderer      pdfgen.Renderer
	prices        catalog.Catalog
	allowedOrigin string
	// exposeErrors leaks underlying 5xx detail to clients; only set outside
	// production.
	exposeErrors bool
	log          zerolog.Logger
}

func New(svc *service.Service, renderer pdfgen.Renderer, prices catalog.Catalog, allowedOrigin string, exposeErrors bool) *API {
	if renderer == nil {
		renderer = pdfgen.Noop{}
	}
	if prices == nil {
		prices = catalog.Default()
	}
	return &API{
		service:       svc,
		renderer:      renderer,
		prices:        prices,
		allowedOrigin: allowedOrigin,
		exposeErrors:  exposeErrors,
		log:           logger.WithComponent("httpapi"),
	}
}

func (a *API) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(a.requestLogger)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{a.allowedOrigin},
		AllowedMethods: []string{"GET", "POST", "PUT", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
	}))

	r.Get("/healthz", a.handleHealth)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/catalog", a.handleCatalog)
		r.Route("/invoices", func(r chi.Router) {
			r.Get("/new-number", a.handleNewNumber)
			r.Get("/", a.handleList)
			r.Post("/", a.handleCreate)
			r.Get("/{number}", a.handleGet)
			r.Put("/{number}/payment", a.handlePayment)
			r.Get("/{number}/pdf", a.handlePDF)
		})
	})

	return r
}

func (a *API) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost || r.Method == http.MethodPut {
			r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
		}

		startedAt := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		a.log.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Dur("elapsed", time.Since(startedAt)).
			Str("request_id", middleware.GetReqID(r.Context())).
			Msg("request")
	})
}

func (a *API) handleHealth(w http.ResponseWriter, r *http.Request) {
	a.writeJSON(w, http.StatusOK, map[string]any{
		"ok": true,
		"at": time.Now().UTC().Format(time.RFC3339),
	})
}

func (a *API) handleCatalog(w http.ResponseWriter, r *http.Request) {
	a.writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"catalog": a.prices,
	})
}

func (a *API) handleNewNumber(w http.ResponseWriter, r *http.Request) {
	a.writeJSON(w, http.StatusOK, map[string]any{
		"success":        true,
		"invoice_number": a.service.NewInvoiceNumber(),
	})
}

func (a *API) handleCreate(w http.ResponseWriter, r *http.Request) {
	var draft domain.InvoiceDraft
	if err := decodeJSON(r, &draft); err != nil {
		a.writeError(w, http.StatusBadRequest, err)
		return
	}

	invoice, err := a.service.Create(r.Context(), draft)
	if err != nil {
		a.writeServiceError(w, err)
		return
	}

	a.writeJSON(w, http.StatusCreated, map[string]any{
		"success":          true,
		"message":          "invoice saved",
		"invoice_number":   invoice.InvoiceNumber,
		"grand_total":      invoice.GrandTotal,
		"payment_status":   invoice.PaymentStatus,
		"remaining_amount": invoice.RemainingAmount,
	})
}

func (a *API) handleGet(w http.ResponseWriter, r *http.Request) {
	number := chi.URLParam(r, "number")

	invoice, err := a.service.GetByNumber(r.Context(), number)
	if err != nil {
		a.writeServiceError(w, err)
		return
	}

	a.writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"invoice": invoice,
	})
}

func (a *API) handleList(w http.ResponseWriter, r *http.Request) {
	includeHistory := strings.EqualFold(strings.TrimSpace(r.URL.Query().Get("includeHistory")), "true")
	query := r.URL.Query().Get("q")

	entries, err := a.service.ListVersions(r.Context(), includeHistory, query)
	if err != nil {
		a.writeServiceError(w, err)
		return
	}

	payload := map[string]any{
		"success":     true,
		"invoices":    entries,
		"total_count": len(entries),
	}
	if !includeHistory {
		payload["active_count"] = len(entries)
	}
	a.writeJSON(w, http.StatusOK, payload)
}

func (a *API) handlePayment(w http.ResponseWriter, r *http.Request) {
	number := chi.URLParam(r, "number")

	var req domain.PaymentRequest
	if err := decodeJSON(r, &req); err != nil {
		a.writeError(w, http.StatusBadRequest, err)
		return
	}

	invoice, err := a.service.ApplyPayment(r.Context(), number, req)
	if err != nil {
		a.writeServiceError(w, err)
		return
	}

	a.writeJSON(w, http.StatusOK, map[string]any{
		"success":          true,
		"payment_status":   invoice.PaymentStatus,
		"paid_amount":      invoice.PaidAmount,
		"remaining_amount": invoice.RemainingAmount,
	})
}

func (a *API) handlePDF(w http.ResponseWriter, r *http.Request) {
	number := chi.URLParam(r, "number")
	watermark := strings.EqualFold(strings.TrimSpace(r.URL.Query().Get("watermark")), "true")

	invoice, err := a.service.GetByNumber(r.Context(), number)
	if err != nil {
		a.writeServiceError(w, err)
		return
	}

	pdf, err := a.renderer.RenderInvoice(r.Context(), invoice, pdfgen.RenderOptions{Watermark: watermark})
	if err != nil {
		a.writeError(w, http.StatusInternalServerError, err)
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", invoice.InvoiceNumber+".pdf"))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(pdf)
}

// writeServiceError maps service sentinels onto HTTP statuses; anything
// unrecognized is treated as internal.
func (a *API) writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, store.ErrInvalidInvoice):
		a.writeError(w, http.StatusBadRequest, err)
	case errors.Is(err, store.ErrNotFound):
		a.writeError(w, http.StatusNotFound, errors.New("invoice not found"))
	default:
		a.writeError(w, http.StatusInternalServerError, err)
	}
}

func (a *API) writeError(w http.ResponseWriter, status int, err error) {
	// 4xx messages are user-facing; 5xx detail stays server-side unless the
	// deployment opts into exposing it.
	msg := err.Error()
	if status >= 500 {
		a.log.Error().Int("status", status).Err(err).Msg("internal error")
		if !a.exposeErrors {
			msg = "internal server error"
		}
	}
	a.writeJSON(w, status, map[string]any{
		"success": false,
		"error":   msg,
	})
}

func (a *API) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		a.log.Error().Err(err).Msg("encoding response")
	}
}

func decodeJSON(r *http.Request, dest any) error {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	return decoder.Decode(dest)
}
