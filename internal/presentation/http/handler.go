package httppresentation

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	appLedger "github.com/storeprime/backend/internal/application/ledger"
	appOrder "github.com/storeprime/backend/internal/application/order"
	"github.com/storeprime/backend/internal/domain/account"
	domorder "github.com/storeprime/backend/internal/domain/order"
	"github.com/storeprime/backend/internal/pkg/logging"
)

type Handler struct {
	orders  *appOrder.Service
	ledger  *appLedger.Service
	log     *zap.Logger
	metrics *Metrics
}

func NewHandler(orders *appOrder.Service, ledger *appLedger.Service, logger *zap.Logger, metrics *Metrics) *Handler {
	return &Handler{
		orders:  orders,
		ledger:  ledger,
		log:     logger.With(zap.String("component", "http_server")),
		metrics: metrics,
	}
}

func (h *Handler) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(ObservabilityMiddleware(h.log, h.metrics))

	r.Get("/health", h.handleHealth)

	r.Group(func(r chi.Router) {
		r.Use(IdentityMiddleware)

		r.Post("/orders", h.handleCreateOrder)
		r.Get("/orders", h.handleListOrders)
		r.Get("/orders/cancelled", h.handleListCancelled)
		r.Put("/orders/{orderID}/status", h.handleChangeStatus)
		r.Delete("/orders/{orderID}", h.handleCancelOrder)

		r.Post("/account/balance", h.handleTopUp)
		r.Get("/account/balance", h.handleBalance)
	})

	return r
}

type createOrderRequest struct {
	CartItemIDs []string `json:"cart_item_ids"`
}

type lineResponse struct {
	ProductID string `json:"product_id"`
	SellerID  string `json:"seller_id"`
	UnitPrice string `json:"unit_price"`
	Quantity  int    `json:"quantity"`
}

type orderResponse struct {
	ID        string         `json:"id"`
	BuyerID   string         `json:"buyer_id"`
	Status    string         `json:"status"`
	Total     string         `json:"total"`
	Lines     []lineResponse `json:"lines"`
	CreatedAt time.Time      `json:"created_at"`
}

func toOrderResponse(o *domorder.Order) orderResponse {
	lines := make([]lineResponse, 0, len(o.Lines))
	for _, l := range o.Lines {
		lines = append(lines, lineResponse{
			ProductID: l.ProductID,
			SellerID:  l.SellerID,
			UnitPrice: l.UnitPrice.String(),
			Quantity:  l.Quantity,
		})
	}
	return orderResponse{
		ID:        o.ID,
		BuyerID:   o.BuyerID,
		Status:    string(o.Status),
		Total:     o.Total().String(),
		Lines:     lines,
		CreatedAt: o.CreatedAt,
	}
}

func (h *Handler) handleCreateOrder(w http.ResponseWriter, r *http.Request) {
	ident, ok := identityFromContext(r.Context())
	if !ok || ident.Role != account.KindBuyer {
		writeJSONError(w, http.StatusForbidden, "only buyers create orders")
		return
	}

	var req createOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	created, err := h.orders.CreateOrder(r.Context(), ident.AccountID, req.CartItemIDs)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toOrderResponse(created))
}

func (h *Handler) handleListOrders(w http.ResponseWriter, r *http.Request) {
	ident, ok := identityFromContext(r.Context())
	if !ok {
		writeJSONError(w, http.StatusUnauthorized, "identity required")
		return
	}

	var (
		orders []*domorder.Order
		err    error
	)
	switch ident.Role {
	case account.KindBuyer:
		orders, err = h.orders.ListBuyerOrders(r.Context(), ident.AccountID)
	case account.KindSeller:
		orders, err = h.orders.ListSellerOrders(r.Context(), ident.AccountID)
	default:
		writeJSONError(w, http.StatusForbidden, "unknown role")
		return
	}
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	out := make([]orderResponse, 0, len(orders))
	for _, o := range orders {
		out = append(out, toOrderResponse(o))
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handler) handleListCancelled(w http.ResponseWriter, r *http.Request) {
	ident, ok := identityFromContext(r.Context())
	if !ok || ident.Role != account.KindBuyer {
		writeJSONError(w, http.StatusForbidden, "only buyers list cancelled orders")
		return
	}

	orders, err := h.orders.ListCancelledOrders(r.Context(), ident.AccountID)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	out := make([]orderResponse, 0, len(orders))
	for _, o := range orders {
		out = append(out, toOrderResponse(o))
	}
	writeJSON(w, http.StatusOK, out)
}

type changeStatusRequest struct {
	Status string `json:"status"`
}

func (h *Handler) handleChangeStatus(w http.ResponseWriter, r *http.Request) {
	ident, ok := identityFromContext(r.Context())
	if !ok || ident.Role != account.KindSeller {
		writeJSONError(w, http.StatusForbidden, "only sellers change order status")
		return
	}

	var req changeStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	updated, err := h.orders.ChangeStatus(r.Context(), ident.AccountID, chi.URLParam(r, "orderID"), req.Status)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toOrderResponse(updated))
}

func (h *Handler) handleCancelOrder(w http.ResponseWriter, r *http.Request) {
	ident, ok := identityFromContext(r.Context())
	if !ok || ident.Role != account.KindBuyer {
		writeJSONError(w, http.StatusForbidden, "only buyers cancel orders")
		return
	}

	cancelled, err := h.orders.CancelOrder(r.Context(), ident.AccountID, chi.URLParam(r, "orderID"))
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toOrderResponse(cancelled))
}

type topUpRequest struct {
	Amount string `json:"amount"`
}

type balanceResponse struct {
	AccountID string `json:"account_id"`
	Balance   string `json:"balance"`
}

func (h *Handler) handleTopUp(w http.ResponseWriter, r *http.Request) {
	ident, ok := identityFromContext(r.Context())
	if !ok {
		writeJSONError(w, http.StatusUnauthorized, "identity required")
		return
	}

	var req topUpRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, "amount must be a decimal number")
		return
	}

	balance, err := h.ledger.TopUp(r.Context(), ident.AccountID, amount)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, balanceResponse{AccountID: ident.AccountID, Balance: balance.String()})
}

func (h *Handler) handleBalance(w http.ResponseWriter, r *http.Request) {
	ident, ok := identityFromContext(r.Context())
	if !ok {
		writeJSONError(w, http.StatusUnauthorized, "identity required")
		return
	}

	balance, err := h.ledger.Balance(r.Context(), ident.AccountID)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, balanceResponse{AccountID: ident.AccountID, Balance: balance.String()})
}

func (h *Handler) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	logger := logging.FromContext(r.Context())

	switch {
	case errors.Is(err, appOrder.ErrBuyerNotFound),
		errors.Is(err, appOrder.ErrOrderNotFound),
		errors.Is(err, appOrder.ErrCartItemNotFound),
		errors.Is(err, appLedger.ErrAccountNotFound):
		writeJSONError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, appOrder.ErrForbidden):
		writeJSONError(w, http.StatusForbidden, err.Error())
	case errors.Is(err, appOrder.ErrInvalidStatus),
		errors.Is(err, appOrder.ErrNoCartItems),
		errors.Is(err, appLedger.ErrInvalidAmount):
		writeJSONError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, appOrder.ErrConflict),
		errors.Is(err, appOrder.ErrOutOfStock):
		writeJSONError(w, http.StatusConflict, err.Error())
	default:
		logger.Error("request_failed", zap.Error(err))
		writeJSONError(w, http.StatusInternalServerError, "internal error")
	}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeJSONError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
