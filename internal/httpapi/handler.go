package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	log "github.com/sirupsen/logrus"

	"github.com/alesilvadev/mi-tienda-uy-frontend/internal/cart"
	"github.com/alesilvadev/mi-tienda-uy-frontend/internal/domain"
	"github.com/alesilvadev/mi-tienda-uy-frontend/internal/session"
)

// Handler переводит HTTP-запросы в операции контроллера сессии.
type Handler struct {
	session *session.Controller
	logger  *log.Entry
}

// NewHandler создаёт обработчик поверх контроллера.
func NewHandler(ctrl *session.Controller, logger *log.Entry) *Handler {
	if logger == nil {
		logger = log.New().WithField("component", "kiosk-http")
	}
	return &Handler{session: ctrl, logger: logger}
}

// GetSession отдаёт состояние сессии и вкладку корзины (?tab=buy|wishlist).
func (h *Handler) GetSession(w http.ResponseWriter, r *http.Request) {
	h.writeSession(w, r, http.StatusOK)
}

func (h *Handler) Start(w http.ResponseWriter, r *http.Request) {
	if err := h.session.Start(r.Context()); err != nil {
		h.writeError(w, err)
		return
	}
	h.writeSession(w, r, http.StatusOK)
}

func (h *Handler) StartNewOrder(w http.ResponseWriter, r *http.Request) {
	if err := h.session.StartNewOrder(r.Context()); err != nil {
		h.writeError(w, err)
		return
	}
	h.writeSession(w, r, http.StatusOK)
}

func (h *Handler) SearchProduct(w http.ResponseWriter, r *http.Request) {
	var req searchRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if _, err := h.session.SearchProduct(r.Context(), req.SKU); err != nil {
		h.writeError(w, err)
		return
	}
	h.writeSession(w, r, http.StatusOK)
}

func (h *Handler) CancelSelection(w http.ResponseWriter, r *http.Request) {
	if err := h.session.CancelSelection(); err != nil {
		h.writeError(w, err)
		return
	}
	h.writeSession(w, r, http.StatusOK)
}

func (h *Handler) AddItem(w http.ResponseWriter, r *http.Request) {
	var req addItemRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if _, err := h.session.AddItem(r.Context(), req.Quantity, req.Color); err != nil {
		h.writeError(w, err)
		return
	}
	h.writeSession(w, r, http.StatusCreated)
}

// UpdateItem меняет количество и/или список позиции одним запросом к серверу.
func (h *Handler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	position, ok := positionParam(w, r)
	if !ok {
		return
	}
	var req updateItemRequest
	if !decodeBody(w, r, &req) {
		return
	}

	patch := domain.ItemPatch{Quantity: req.Quantity}
	if req.ListType != nil {
		list := domain.ListType(*req.ListType)
		patch.ListType = &list
	}
	if err := h.session.UpdateItem(r.Context(), position, patch); err != nil {
		h.writeError(w, err)
		return
	}
	h.writeSession(w, r, http.StatusOK)
}

func (h *Handler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	position, ok := positionParam(w, r)
	if !ok {
		return
	}
	if err := h.session.RemoveItem(r.Context(), position); err != nil {
		h.writeError(w, err)
		return
	}
	h.writeSession(w, r, http.StatusOK)
}

func (h *Handler) CloseOrder(w http.ResponseWriter, r *http.Request) {
	if err := h.session.CloseOrder(r.Context()); err != nil {
		h.writeError(w, err)
		return
	}
	h.writeSession(w, r, http.StatusOK)
}

func (h *Handler) writeSession(w http.ResponseWriter, r *http.Request, status int) {
	tab := domain.ListType(r.URL.Query().Get("tab"))
	view := h.session.View()
	order := view.Order

	resp := sessionResponse{
		State:     string(view.State),
		OrderID:   order.ID,
		OrderCode: order.Code,
		Status:    string(order.Status),
		Subtotal:  order.Subtotal,
		Cart:      cart.Project(order.Items, tab),
	}
	if view.Selected != nil {
		selected := productFromDomain(*view.Selected)
		resp.Selected = &selected
	}
	writeJSON(w, status, resp)
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		h.logger.WithError(err).Warn("session operation failed")
	}
	writeMessage(w, status, domain.UserMessage(err))
}

// statusFor сопоставляет ошибку домена с HTTP-статусом.
func statusFor(err error) int {
	switch {
	case domain.IsValidation(err):
		return http.StatusBadRequest
	case domain.IsNotFound(err):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrUnauthenticated):
		return http.StatusUnauthorized
	case errors.Is(err, domain.ErrSessionNotReady),
		errors.Is(err, domain.ErrSessionClosed),
		errors.Is(err, domain.ErrNothingSelected),
		errors.Is(err, domain.ErrAlreadyStarted):
		return http.StatusConflict
	case errors.Is(err, domain.ErrPersistence):
		return http.StatusInternalServerError
	case domain.IsRemote(err):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func positionParam(w http.ResponseWriter, r *http.Request) (int, bool) {
	position, err := strconv.Atoi(chi.URLParam(r, "position"))
	if err != nil {
		writeMessage(w, http.StatusBadRequest, "position must be an integer")
		return 0, false
	}
	return position, true
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeMessage(w, http.StatusBadRequest, "invalid JSON body")
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeMessage(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, messageResponse{Message: message})
}
