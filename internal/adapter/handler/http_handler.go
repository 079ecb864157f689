package handler

import (
	"errors"
	"fmt"
	"mime"
	"net/http"
	"strconv"
	"strings"
	"time"

	json "github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/rl1809/store-manager/internal/core/domain"
	"github.com/rl1809/store-manager/internal/core/service"
)

const (
	requestIDHeader = "X-Request-ID"
	maxBodyBytes    = 1 << 20
)

type HTTPHandler struct {
	store  *service.StoreService
	logger *zap.Logger
}

type BalanceHTTPRequest struct {
	Command string `json:"command"`
	Amount  *int64 `json:"amount"`
}

type LineHTTPRequest struct {
	ItemName string           `json:"item_name"`
	Price    *decimal.Decimal `json:"price"`
	Quantity *int             `json:"quantity"`
}

type MessageHTTPResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

type ItemHTTPResponse struct {
	Price    decimal.Decimal `json:"price"`
	Quantity int             `json:"quantity"`
}

type TransactionHTTPResponse struct {
	Item     string          `json:"item"`
	Price    decimal.Decimal `json:"price"`
	Quantity int             `json:"quantity"`
	Total    decimal.Decimal `json:"total"`
	Time     string          `json:"time"`
}

type LineHTTPResponse struct {
	Success     bool                    `json:"success"`
	Message     string                  `json:"message"`
	Transaction TransactionHTTPResponse `json:"transaction"`
	Balance     decimal.Decimal         `json:"balance"`
}

type BalanceHTTPResponse struct {
	Balance decimal.Decimal `json:"balance"`
}

type InventoryHTTPResponse struct {
	Inventory map[string]ItemHTTPResponse `json:"inventory"`
}

type HistoryHTTPResponse struct {
	SalesHistory    []TransactionHTTPResponse `json:"sales_history"`
	PurchaseHistory []TransactionHTTPResponse `json:"purchase_history"`
}

func NewHTTPHandler(store *service.StoreService, logger *zap.Logger) *HTTPHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &HTTPHandler{store: store, logger: logger}
}

// Routes returns the API mux wrapped in request logging.
func (h *HTTPHandler) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", h.HealthCheck)
	mux.HandleFunc("GET /api/inventory", h.Inventory)
	mux.HandleFunc("GET /api/balance", h.Balance)
	mux.HandleFunc("POST /api/balance", h.AdjustBalance)
	mux.HandleFunc("POST /api/sales", h.Sale)
	mux.HandleFunc("POST /api/purchases", h.Purchase)
	mux.HandleFunc("GET /api/history", h.History)
	return h.logRequests(mux)
}

func (h *HTTPHandler) Inventory(w http.ResponseWriter, r *http.Request) {
	items := h.store.Inventory()
	resp := InventoryHTTPResponse{Inventory: make(map[string]ItemHTTPResponse, len(items))}
	for name, item := range items {
		resp.Inventory[name] = ItemHTTPResponse{Price: item.Price, Quantity: item.Quantity}
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *HTTPHandler) Balance(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, BalanceHTTPResponse{Balance: h.store.Balance()})
}

func (h *HTTPHandler) AdjustBalance(w http.ResponseWriter, r *http.Request) {
	req, err := decodeBalanceRequest(r)
	if err != nil {
		h.writeError(w, err)
		return
	}

	balance, err := h.store.AdjustBalance(r.Context(), req.Command, *req.Amount)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, BalanceHTTPResponse{Balance: balance})
}

func (h *HTTPHandler) Sale(w http.ResponseWriter, r *http.Request) {
	req, err := decodeLineRequest(r)
	if err != nil {
		h.writeError(w, err)
		return
	}

	tx, err := h.store.RecordSale(r.Context(), req.ItemName, *req.Price, *req.Quantity)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, LineHTTPResponse{
		Success:     true,
		Message:     fmt.Sprintf("sold %d %s", tx.Quantity, tx.Item),
		Transaction: transactionResponse(tx),
		Balance:     h.store.Balance(),
	})
}

func (h *HTTPHandler) Purchase(w http.ResponseWriter, r *http.Request) {
	req, err := decodeLineRequest(r)
	if err != nil {
		h.writeError(w, err)
		return
	}

	tx, err := h.store.RecordPurchase(r.Context(), req.ItemName, *req.Price, *req.Quantity)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, LineHTTPResponse{
		Success:     true,
		Message:     fmt.Sprintf("purchased %d %s", tx.Quantity, tx.Item),
		Transaction: transactionResponse(tx),
		Balance:     h.store.Balance(),
	})
}

func (h *HTTPHandler) History(w http.ResponseWriter, r *http.Request) {
	sales, purchases := h.store.History()
	writeJSON(w, http.StatusOK, HistoryHTTPResponse{
		SalesHistory:    transactionResponses(sales),
		PurchaseHistory: transactionResponses(purchases),
	})
}

func (h *HTTPHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *HTTPHandler) writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, domain.ErrValidation):
		status = http.StatusBadRequest
	case errors.Is(err, domain.ErrItemNotAvailable), errors.Is(err, domain.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, domain.ErrInsufficientStock), errors.Is(err, domain.ErrInsufficientFunds):
		status = http.StatusConflict
	case errors.Is(err, domain.ErrPersistence):
		h.logger.Error("request committed but not saved", zap.Error(err))
	default:
		h.logger.Error("unexpected error", zap.Error(err))
	}

	writeJSON(w, status, MessageHTTPResponse{
		Success: false,
		Message: domain.Message(err),
	})
}

// decodeBalanceRequest accepts a JSON body or an HTML form post.
func decodeBalanceRequest(r *http.Request) (BalanceHTTPRequest, error) {
	var req BalanceHTTPRequest
	if isForm(r) {
		if err := r.ParseForm(); err != nil {
			return req, domain.Validationf("invalid form body")
		}
		req.Command = r.PostForm.Get("command")
		if v := strings.TrimSpace(r.PostForm.Get("amount")); v != "" {
			amount, err := strconv.ParseInt(v, 10, 64)
			if err != nil {
				return req, domain.Validationf("amount must be a whole number")
			}
			req.Amount = &amount
		}
	} else if err := decodeJSONBody(r, &req); err != nil {
		return req, err
	}

	req.Command = strings.TrimSpace(req.Command)
	if req.Command == "" {
		return req, domain.Validationf("command is required")
	}
	if req.Amount == nil {
		return req, domain.Validationf("amount is required")
	}
	return req, nil
}

// decodeLineRequest accepts a JSON body or an HTML form post.
func decodeLineRequest(r *http.Request) (LineHTTPRequest, error) {
	var req LineHTTPRequest
	if isForm(r) {
		if err := r.ParseForm(); err != nil {
			return req, domain.Validationf("invalid form body")
		}
		req.ItemName = r.PostForm.Get("item_name")
		if v := strings.TrimSpace(r.PostForm.Get("price")); v != "" {
			price, err := decimal.NewFromString(v)
			if err != nil {
				return req, domain.Validationf("price must be a number")
			}
			req.Price = &price
		}
		if v := strings.TrimSpace(r.PostForm.Get("quantity")); v != "" {
			quantity, err := strconv.Atoi(v)
			if err != nil {
				return req, domain.Validationf("quantity must be a whole number")
			}
			req.Quantity = &quantity
		}
	} else if err := decodeJSONBody(r, &req); err != nil {
		return req, err
	}

	req.ItemName = strings.TrimSpace(req.ItemName)
	switch {
	case req.ItemName == "":
		return req, domain.Validationf("item_name is required")
	case req.Price == nil:
		return req, domain.Validationf("price is required")
	case req.Quantity == nil:
		return req, domain.Validationf("quantity is required")
	case req.Price.IsNegative():
		return req, domain.Validationf("price must not be negative")
	case *req.Quantity <= 0:
		return req, domain.Validationf("quantity must be positive")
	}
	return req, nil
}

func decodeJSONBody(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return domain.Validationf("invalid request body")
	}
	return nil
}

func isForm(r *http.Request) bool {
	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	return err == nil && mediaType == "application/x-www-form-urlencoded"
}

func transactionResponse(tx domain.Transaction) TransactionHTTPResponse {
	return TransactionHTTPResponse{
		Item:     tx.Item,
		Price:    tx.Price,
		Quantity: tx.Quantity,
		Total:    tx.Total,
		Time:     tx.Time,
	}
}

func transactionResponses(txs []domain.Transaction) []TransactionHTTPResponse {
	out := make([]TransactionHTTPResponse, 0, len(txs))
	for _, tx := range txs {
		out = append(out, transactionResponse(tx))
	}
	return out
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (h *HTTPHandler) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get(requestIDHeader)
		if requestID == "" {
			requestID = uuid.New().String()
		}
		w.Header().Set(requestIDHeader, requestID)
		r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()
		next.ServeHTTP(rec, r)

		h.logger.Info("http request",
			zap.String("request_id", requestID),
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", rec.status),
			zap.Duration("duration", time.Since(start)))
	})
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
