package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	cart "github.com/dmehra2102/Retail-Checkout-System/internal/cart/domain"
	checkoutapp "github.com/dmehra2102/Retail-Checkout-System/internal/checkout/application"
	checkout "github.com/dmehra2102/Retail-Checkout-System/internal/checkout/domain"
	inventory "github.com/dmehra2102/Retail-Checkout-System/internal/inventory/domain"
	payment "github.com/dmehra2102/Retail-Checkout-System/internal/payment/domain"
	shipping "github.com/dmehra2102/Retail-Checkout-System/internal/shipping/domain"
	"github.com/dmehra2102/Retail-Checkout-System/internal/storefront/application"
	"github.com/dmehra2102/Retail-Checkout-System/pkg/idempotency"
)

const dateLayout = "2006-01-02"

type Handler struct {
	log     *slog.Logger
	service *application.Service
	records checkoutapp.CheckoutReader
	idem    *idempotency.Store
	tracer  trace.Tracer
}

type Option func(*Handler)

// WithCheckoutReader enables GET /checkouts/{id}.
func WithCheckoutReader(r checkoutapp.CheckoutReader) Option {
	return func(h *Handler) { h.records = r }
}

// WithIdempotency rejects replayed checkout requests carrying the same Idempotency-Key.
func WithIdempotency(store *idempotency.Store) Option {
	return func(h *Handler) { h.idem = store }
}

func NewHandler(log *slog.Logger, service *application.Service, opts ...Option) *Handler {
	h := &Handler{
		log:     log,
		service: service,
		tracer:  otel.Tracer("storefront-http"),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

type createItemReq struct {
	Name       string          `json:"name"`
	Price      decimal.Decimal `json:"price"`
	Stock      int             `json:"stock"`
	Weight     float64         `json:"weight_grams"`
	Shipping   bool            `json:"shipping"`
	Perishable bool            `json:"perishable"`
	ExpiresOn  string          `json:"expires_on"`
}

type openSessionReq struct {
	CustomerID string          `json:"customer_id"`
	Balance    decimal.Decimal `json:"balance"`
}

type addItemReq struct {
	ItemID   inventory.ItemID `json:"item_id"`
	Quantity int              `json:"quantity"`
}

type checkoutResp struct {
	CheckoutID string            `json:"checkout_id"`
	Manifest   shipping.Manifest `json:"manifest"`
	Receipt    checkout.Receipt  `json:"receipt"`
}

type recordResp struct {
	ID          string                 `json:"id"`
	CustomerID  string                 `json:"customer_id"`
	Status      checkout.Status        `json:"status"`
	Stage       checkout.Stage         `json:"stage"`
	Reason      string                 `json:"reason,omitempty"`
	Lines       []checkout.ReceiptLine `json:"lines"`
	Subtotal    decimal.Decimal        `json:"subtotal"`
	ShippingFee decimal.Decimal        `json:"shipping_fee"`
	Amount      decimal.Decimal        `json:"amount"`
	TotalWeight float64                `json:"total_weight_grams"`
	CreatedAt   time.Time              `json:"created_at"`
}

type errorResp struct {
	Error string         `json:"error"`
	Stage checkout.Stage `json:"stage,omitempty"`
}

func (h *Handler) Routes() http.Handler {
	r := chi.NewRouter()
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) })
	r.Get("/items", h.listItems)
	r.Post("/items", h.createItem)
	r.Post("/sessions", h.openSession)
	r.Route("/sessions/{id}", func(r chi.Router) {
		r.Get("/", h.getSession)
		r.Post("/items", h.addItem)
		r.Group(func(r chi.Router) {
			if h.idem != nil {
				r.Use(idempotency.Middleware(h.log, h.idem, "checkout"))
			}
			r.Post("/checkout", h.checkout)
		})
	})
	if h.records != nil {
		r.Get("/checkouts/{id}", h.getCheckout)
	}
	return r
}

func (h *Handler) listItems(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, h.service.Items())
}

func (h *Handler) createItem(w http.ResponseWriter, r *http.Request) {
	var req createItemReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.fail(w, http.StatusBadRequest, errors.New("invalid body"))
		return
	}
	if req.Name == "" || req.Price.IsNegative() || req.Stock < 0 || req.Weight < 0 {
		h.fail(w, http.StatusBadRequest, errors.New("name is required; price, stock and weight must not be negative"))
		return
	}

	var it inventory.Item
	if req.ExpiresOn != "" {
		expires, err := time.Parse(dateLayout, req.ExpiresOn)
		if err != nil {
			h.fail(w, http.StatusBadRequest, errors.New("expires_on must be YYYY-MM-DD"))
			return
		}
		it = inventory.NewItemWithExpiry(req.Name, req.Price, req.Stock, req.Perishable, req.Weight, req.Shipping, expires)
	} else {
		it = inventory.NewItem(req.Name, req.Price, req.Stock, req.Perishable, req.Weight, req.Shipping, h.service.Now())
	}

	id := h.service.RegisterItem(it)
	writeJSON(w, http.StatusCreated, map[string]inventory.ItemID{"id": id})
}

func (h *Handler) openSession(w http.ResponseWriter, r *http.Request) {
	var req openSessionReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.fail(w, http.StatusBadRequest, errors.New("invalid body"))
		return
	}
	sess, err := h.service.OpenSession(req.CustomerID, req.Balance)
	if err != nil {
		h.fail(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusCreated, sess)
}

func (h *Handler) getSession(w http.ResponseWriter, r *http.Request) {
	sess, err := h.service.Session(chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, sess)
}

func (h *Handler) addItem(w http.ResponseWriter, r *http.Request) {
	var req addItemReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.fail(w, http.StatusBadRequest, errors.New("invalid body"))
		return
	}
	sess, err := h.service.AddToCart(chi.URLParam(r, "id"), req.ItemID, req.Quantity)
	if err != nil {
		h.fail(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, sess)
}

func (h *Handler) checkout(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	ctx, span := h.tracer.Start(r.Context(), "CheckoutSession", trace.WithAttributes(attribute.String("session.id", id)))
	defer span.End()

	done, err := h.service.Checkout(ctx, id)
	if err != nil {
		h.fail(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, checkoutResp{
		CheckoutID: done.CheckoutID,
		Manifest:   done.Manifest,
		Receipt:    done.Receipt,
	})
}

func (h *Handler) getCheckout(w http.ResponseWriter, r *http.Request) {
	rec, err := h.records.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, recordResp{
		ID:          rec.ID,
		CustomerID:  rec.CustomerID,
		Status:      rec.Status,
		Stage:       rec.Stage,
		Reason:      rec.Reason,
		Lines:       rec.Lines,
		Subtotal:    rec.Subtotal,
		ShippingFee: rec.ShippingFee,
		Amount:      rec.Amount,
		TotalWeight: rec.TotalWeight,
		CreatedAt:   rec.CreatedAt,
	})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, cart.ErrInvalidQuantity), errors.Is(err, application.ErrInvalidBalance):
		return http.StatusBadRequest
	case errors.Is(err, application.ErrSessionNotFound),
		errors.Is(err, inventory.ErrUnknownItem),
		errors.Is(err, checkout.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, inventory.ErrExpiredItem), errors.Is(err, checkout.ErrEmptyCart):
		return http.StatusUnprocessableEntity
	case errors.Is(err, inventory.ErrInsufficientStock):
		return http.StatusConflict
	case errors.Is(err, payment.ErrInsufficientBalance):
		return http.StatusPaymentRequired
	default:
		return http.StatusInternalServerError
	}
}

func (h *Handler) fail(w http.ResponseWriter, status int, err error) {
	resp := errorResp{Error: err.Error()}
	var abort *checkout.AbortError
	if errors.As(err, &abort) {
		resp.Stage = abort.Stage
	}
	if status >= http.StatusInternalServerError {
		h.log.Error("request failed", "status", status, "err", err)
		resp.Error = "internal error"
	}
	writeJSON(w, status, resp)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
