package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"burger-forge/models"
	"burger-forge/services"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// OwnerPrefix namespaces browser sessions in storage.
const OwnerPrefix = "web:"

type Handler struct {
	sessions *services.Sessions
	logger   *zap.Logger
}

func NewHandler(sessions *services.Sessions, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{sessions: sessions, logger: logger.Named("http")}
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

type menuResponse struct {
	Categories []models.Category `json:"categories"`
	Items      []models.MenuItem `json:"items"`
	Meal       services.Meal     `json:"meal"`
}

func (h *Handler) GetMenu(w http.ResponseWriter, r *http.Request) {
	menu := h.sessions.Menu()
	writeJSON(w, http.StatusOK, menuResponse{
		Categories: models.Categories,
		Items:      menu.All(),
		Meal:       menu.Meal(),
	})
}

func (h *Handler) CreateSession(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusCreated, map[string]string{"sessionId": uuid.NewString()})
}

// session resolves {sessionID}; ids must be UUIDs handed out by CreateSession.
func (h *Handler) session(w http.ResponseWriter, r *http.Request) (*services.Session, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "sessionID"))
	if err != nil {
		writeError(w, http.StatusNotFound, "unknown session")
		return nil, false
	}
	return h.sessions.Get(r.Context(), OwnerPrefix+id.String()), true
}

func (h *Handler) GetCart(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, s.Cart())
}

type addItemRequest struct {
	CatalogID int `json:"catalogId"`
}

func (h *Handler) AddItem(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	var req addItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad request")
		return
	}
	writeAddResult(w, s, s.RequestAdd(r.Context(), req.CatalogID))
}

func writeAddResult(w http.ResponseWriter, s *services.Session, res services.AddResult) {
	switch res.Outcome {
	case services.AddOutcomeUnknown:
		writeError(w, http.StatusNotFound, "item not found")
	case services.AddOutcomeBlocked:
		v := s.Checkout()
		switch {
		case v.Processing:
			writeError(w, http.StatusConflict, services.ErrSettlementInProgress.Error())
		case v.Step == services.StepConfirmed:
			writeError(w, http.StatusConflict, "close the order confirmation first")
		default:
			writeError(w, http.StatusConflict, "resolve the pending meal offer first")
		}
	default:
		writeJSON(w, http.StatusOK, res)
	}
}

func catalogIDParam(w http.ResponseWriter, r *http.Request) (int, bool) {
	id, err := strconv.Atoi(chi.URLParam(r, "catalogID"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad catalog id")
		return 0, false
	}
	return id, true
}

type adjustRequest struct {
	Meal  bool `json:"meal"`
	Delta int  `json:"delta"`
}

func (h *Handler) AdjustItem(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	id, ok := catalogIDParam(w, r)
	if !ok {
		return
	}
	var req adjustRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad request")
		return
	}
	if !s.AdjustQuantity(r.Context(), id, req.Meal, req.Delta) {
		writeError(w, http.StatusConflict, "cart is locked")
		return
	}
	writeJSON(w, http.StatusOK, s.Cart())
}

// RemoveItem deletes the line; ?meal=true selects the meal line.
func (h *Handler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	id, ok := catalogIDParam(w, r)
	if !ok {
		return
	}
	meal, _ := strconv.ParseBool(r.URL.Query().Get("meal"))
	if !s.RemoveItem(r.Context(), id, meal) {
		writeError(w, http.StatusConflict, "cart is locked")
		return
	}
	writeJSON(w, http.StatusOK, s.Cart())
}

func (h *Handler) GetUpsell(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	offer, pending := s.PendingOffer()
	if !pending {
		writeError(w, http.StatusNotFound, "no pending offer")
		return
	}
	writeJSON(w, http.StatusOK, offer)
}

type upsellRequest struct {
	Choice services.UpsellChoice `json:"choice"`
}

func (h *Handler) ResolveUpsell(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	var req upsellRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || !req.Choice.Valid() {
		writeError(w, http.StatusBadRequest, "choice must be accept, decline or abandon")
		return
	}
	writeAddResult(w, s, s.ResolveUpsell(r.Context(), req.Choice))
}

func (h *Handler) GetCheckout(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, s.Checkout())
}

func (h *Handler) OpenCheckout(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, s.OpenCheckout())
}

// stepAction runs a checkout transition and answers with the resulting view,
// or 409 when the transition is not allowed from the current state.
func (h *Handler) stepAction(action func(*services.Session) bool, refused string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s, ok := h.session(w, r)
		if !ok {
			return
		}
		if !action(s) {
			writeError(w, http.StatusConflict, refused)
			return
		}
		writeJSON(w, http.StatusOK, s.Checkout())
	}
}

func (h *Handler) Advance(w http.ResponseWriter, r *http.Request) {
	h.stepAction((*services.Session).Advance, "cannot continue from this step")(w, r)
}

func (h *Handler) Back(w http.ResponseWriter, r *http.Request) {
	h.stepAction((*services.Session).Back, "cannot go back from this step")(w, r)
}

func (h *Handler) CloseCheckout(w http.ResponseWriter, r *http.Request) {
	h.stepAction((*services.Session).CloseCheckout, "no confirmed order to close")(w, r)
}

func (h *Handler) SetDetails(w http.ResponseWriter, r *http.Request) {
	var d models.CustomerDetails
	if err := json.NewDecoder(r.Body).Decode(&d); err != nil {
		writeError(w, http.StatusBadRequest, "bad request")
		return
	}
	h.stepAction(func(s *services.Session) bool { return s.SetDetails(d) }, "checkout can no longer be edited")(w, r)
}

func (h *Handler) SetPayment(w http.ResponseWriter, r *http.Request) {
	var p models.PaymentDetails
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		writeError(w, http.StatusBadRequest, "bad request")
		return
	}
	h.stepAction(func(s *services.Session) bool { return s.SetPayment(p) }, "checkout can no longer be edited")(w, r)
}

func (h *Handler) AddAddOn(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	var req addItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad request")
		return
	}
	switch res := s.AddAddOn(r.Context(), req.CatalogID); res.Outcome {
	case services.AddOutcomeAdded:
	case services.AddOutcomeBlocked:
		writeAddResult(w, s, res)
		return
	default:
		writeError(w, http.StatusConflict, "add-ons are only available while reviewing the order")
		return
	}
	writeJSON(w, http.StatusOK, s.Checkout())
}

// Pay blocks until the settlement finishes.
func (h *Handler) Pay(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	order, err := s.Pay(r.Context())
	switch {
	case err == nil:
		writeJSON(w, http.StatusCreated, order)
	case errors.Is(err, services.ErrSettlementInProgress),
		errors.Is(err, services.ErrNotAtPayment),
		errors.Is(err, services.ErrEmptyCart):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, services.ErrPaymentIncomplete):
		writeError(w, http.StatusUnprocessableEntity, err.Error())
	default:
		msg := s.Checkout().Error
		if msg == "" {
			msg = "payment failed"
		}
		writeError(w, http.StatusPaymentRequired, msg)
	}
}

type ordersResponse struct {
	User   *models.User   `json:"user,omitempty"`
	Orders []models.Order `json:"orders"`
}

func (h *Handler) GetOrders(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	orders, err := s.Orders(r.Context())
	if err != nil {
		h.logger.Error("list orders", zap.String("owner", s.Owner()), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	resp := ordersResponse{Orders: orders}
	if u, signedIn, err := s.User(r.Context()); err == nil && signedIn {
		resp.User = &u
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	var req models.User
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad request")
		return
	}
	u, err := s.Login(r.Context(), req.Name, req.Email)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, u)
}

func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	if err := s.Logout(r.Context()); err != nil {
		h.logger.Error("logout", zap.String("owner", s.Owner()), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) GetUser(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	u, signedIn, err := s.User(r.Context())
	if err != nil {
		h.logger.Error("load user", zap.String("owner", s.Owner()), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if !signedIn {
		writeError(w, http.StatusNotFound, "not signed in")
		return
	}
	writeJSON(w, http.StatusOK, u)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
