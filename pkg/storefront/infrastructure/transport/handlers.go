package transport

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"

	"storefront/pkg/storefront/domain/model"
	"storefront/pkg/storefront/domain/service"
	"storefront/pkg/storefront/infrastructure/handoff"
	"storefront/pkg/storefront/infrastructure/metrics"
)

// Deps wires the HTTP surface to the domain. The API mirrors the
// hosted backend the storefront SPA already speaks: one endpoint,
// action selected by query parameter, responses wrapped in a
// status/message/data envelope.
type Deps struct {
	Catalog    service.CatalogService
	Ledger     service.LedgerService
	Checkout   service.CheckoutService
	Verifier   service.TokenVerifier
	Handoff    *handoff.WhatsApp
	AdminEmail string
	Metrics    *metrics.ServerMetrics
}

func Router(deps Deps) http.Handler {
	h := &handler{deps: deps}

	r := mux.NewRouter()
	r.HandleFunc("/api", h.dispatch).Methods(http.MethodGet, http.MethodPost)
	r.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}).Methods(http.MethodGet)
	r.Handle("/metrics", metrics.Handler()).Methods(http.MethodGet)

	var wrapped http.Handler = r
	if deps.Metrics != nil {
		wrapped = metricsMiddleware(deps.Metrics, wrapped)
	}
	return logMiddleware(wrapped)
}

type handler struct {
	deps Deps
}

func (h *handler) dispatch(w http.ResponseWriter, r *http.Request) {
	action := r.URL.Query().Get("action")
	switch {
	case r.Method == http.MethodGet && (action == "" || action == "getProducts"):
		h.getProducts(w, r)
	case r.Method == http.MethodPost && action == "createOrder":
		h.createOrder(w, r)
	case r.Method == http.MethodPost && action == "getOrders":
		h.getOrders(w, r)
	case r.Method == http.MethodPost && action == "getAllOrders":
		h.getAllOrders(w, r)
	case r.Method == http.MethodPost && action == "updateOrderStatus":
		h.updateOrderStatus(w, r)
	case r.Method == http.MethodPost && action == "saveProducts":
		h.saveProducts(w, r)
	default:
		writeError(w, http.StatusBadRequest, "unknown action")
	}
}

type productDTO struct {
	ID          string `json:"id"`
	Name        string `json:"nombre"`
	Description string `json:"descripcion"`
	Price       int64  `json:"precio"`
	Stock       int    `json:"stock"`
	ImageURL    string `json:"imagen_url"`
}

type orderItemDTO struct {
	ID       string `json:"id"`
	Name     string `json:"nombre"`
	Quantity int    `json:"quantity"`
	Price    int64  `json:"precio"`
}

type customerDTO struct {
	Name  string `json:"nombre"`
	Email string `json:"email"`
}

type orderDTO struct {
	ID       string         `json:"id"`
	Date     time.Time      `json:"date"`
	Items    []orderItemDTO `json:"items"`
	Total    int64          `json:"total"`
	Status   string         `json:"status"`
	Customer *customerDTO   `json:"cliente,omitempty"`
}

func toProductDTO(p *model.Product) productDTO {
	return productDTO{
		ID:          string(p.ID),
		Name:        p.Name,
		Description: p.Description,
		Price:       p.PriceCents,
		Stock:       p.Stock,
		ImageURL:    p.ImageURL,
	}
}

func toOrderDTO(o *model.Order) orderDTO {
	items := make([]orderItemDTO, 0, len(o.Lines))
	for _, line := range o.Lines {
		items = append(items, orderItemDTO{
			ID:       string(line.ProductID),
			Name:     line.Name,
			Quantity: line.Quantity,
			Price:    line.PriceCents,
		})
	}
	dto := orderDTO{
		ID:     string(o.ID),
		Date:   o.CreatedAt,
		Items:  items,
		Total:  o.TotalCents,
		Status: o.Status.String(),
	}
	if o.Customer != nil {
		dto.Customer = &customerDTO{Name: o.Customer.Name, Email: o.Customer.Email}
	}
	return dto
}

func toOrderDTOs(orders []*model.Order) []orderDTO {
	dtos := make([]orderDTO, 0, len(orders))
	for _, order := range orders {
		dtos = append(dtos, toOrderDTO(order))
	}
	return dtos
}

func (h *handler) getProducts(w http.ResponseWriter, _ *http.Request) {
	products, err := h.deps.Catalog.Products()
	if err != nil {
		writeDomainError(w, err)
		return
	}
	dtos := make([]productDTO, 0, len(products))
	for _, product := range products {
		dtos = append(dtos, toProductDTO(product))
	}
	writeSuccess(w, dtos)
}

type createOrderRequest struct {
	Token string `json:"token"`
	Items []struct {
		ID       string `json:"id"`
		Quantity int    `json:"quantity"`
	} `json:"items"`
}

func (h *handler) createOrder(w http.ResponseWriter, r *http.Request) {
	var req createOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "malformed request body")
		return
	}

	// Anonymous orders are valid: the token is optional here.
	var user *model.User
	if req.Token != "" {
		identity, err := h.deps.Verifier.Verify(r.Context(), req.Token)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		user = &model.User{
			Email:   identity.Email,
			Name:    identity.Name,
			IsAdmin: strings.EqualFold(identity.Email, h.deps.AdminEmail),
		}
	}

	// Quantities and prices are resolved against the live catalog,
	// never taken from the client.
	items := make([]service.CartItemRequest, 0, len(req.Items))
	for _, item := range req.Items {
		product, err := h.deps.Catalog.Product(model.ProductID(item.ID))
		if err != nil {
			if errors.Is(err, model.ErrProductNotFound) {
				continue
			}
			writeDomainError(w, err)
			return
		}
		items = append(items, service.CartItemRequest{Product: product, Quantity: item.Quantity})
	}

	order, err := h.deps.Checkout.PlaceOrderFor(user, items)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	data := map[string]interface{}{"order": toOrderDTO(order)}
	if h.deps.Handoff != nil {
		data["whatsapp_url"] = h.deps.Handoff.URL(order, user)
	}
	writeSuccess(w, data)
}

type tokenRequest struct {
	Token string `json:"token"`
}

func (h *handler) getOrders(w http.ResponseWriter, r *http.Request) {
	identity, ok := h.verify(w, r, nil)
	if !ok {
		return
	}
	orders, err := h.deps.Ledger.OrdersFor(identity.Email)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeSuccess(w, toOrderDTOs(orders))
}

func (h *handler) getAllOrders(w http.ResponseWriter, r *http.Request) {
	if _, ok := h.verifyAdmin(w, r, nil); !ok {
		return
	}
	orders, err := h.deps.Ledger.AllOrders()
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeSuccess(w, toOrderDTOs(orders))
}

type updateStatusRequest struct {
	Token   string `json:"token"`
	OrderID string `json:"orderId"`
	Status  string `json:"status"`
}

func (h *handler) updateOrderStatus(w http.ResponseWriter, r *http.Request) {
	var req updateStatusRequest
	if _, ok := h.verifyAdmin(w, r, &req); !ok {
		return
	}
	status, err := model.ParseOrderStatus(req.Status)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	if err := h.deps.Ledger.SetStatus(model.OrderID(req.OrderID), status); err != nil {
		writeDomainError(w, err)
		return
	}
	writeSuccess(w, nil)
}

type saveProductsRequest struct {
	Token    string       `json:"token"`
	Products []productDTO `json:"products"`
}

func (h *handler) saveProducts(w http.ResponseWriter, r *http.Request) {
	var req saveProductsRequest
	if _, ok := h.verifyAdmin(w, r, &req); !ok {
		return
	}

	now := time.Now().UTC()
	products := make([]*model.Product, 0, len(req.Products))
	for _, dto := range req.Products {
		id := dto.ID
		if id == "" {
			id = "PROD-" + strings.ToUpper(uuid.NewString())
		}
		products = append(products, &model.Product{
			ID:          model.ProductID(id),
			Name:        dto.Name,
			Description: dto.Description,
			PriceCents:  dto.Price,
			Stock:       dto.Stock,
			ImageURL:    dto.ImageURL,
			CreatedAt:   now,
			UpdatedAt:   now,
		})
	}

	if err := h.deps.Catalog.ReplaceCatalog(products); err != nil {
		writeDomainError(w, err)
		return
	}
	writeSuccess(w, nil)
}

type tokenCarrier interface{ token() string }

func (r *tokenRequest) token() string        { return r.Token }
func (r *updateStatusRequest) token() string { return r.Token }
func (r *saveProductsRequest) token() string { return r.Token }

// verify decodes the body into req (a plain tokenRequest when nil) and
// resolves the bearer token into a verified identity.
func (h *handler) verify(w http.ResponseWriter, r *http.Request, req tokenCarrier) (*service.VerifiedIdentity, bool) {
	if req == nil {
		req = &tokenRequest{}
	}
	if err := json.NewDecoder(r.Body).Decode(req); err != nil {
		writeError(w, http.StatusBadRequest, "malformed request body")
		return nil, false
	}
	if req.token() == "" {
		writeError(w, http.StatusUnauthorized, "missing token")
		return nil, false
	}
	identity, err := h.deps.Verifier.Verify(r.Context(), req.token())
	if err != nil {
		writeDomainError(w, err)
		return nil, false
	}
	return identity, true
}

// verifyAdmin additionally derives the admin flag from the verified
// email. It is recomputed on every request; nothing persisted is
// consulted.
func (h *handler) verifyAdmin(w http.ResponseWriter, r *http.Request, req tokenCarrier) (*service.VerifiedIdentity, bool) {
	identity, ok := h.verify(w, r, req)
	if !ok {
		return nil, false
	}
	if !strings.EqualFold(identity.Email, h.deps.AdminEmail) {
		writeError(w, http.StatusForbidden, model.ErrNotAdmin.Error())
		return nil, false
	}
	return identity, true
}

type envelope struct {
	Status  string      `json:"status"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

func writeSuccess(w http.ResponseWriter, data interface{}) {
	writeJSON(w, http.StatusOK, envelope{Status: "success", Data: data})
}

func writeError(w http.ResponseWriter, code int, message string) {
	writeJSON(w, code, envelope{Status: "error", Message: message})
}

func writeDomainError(w http.ResponseWriter, err error) {
	writeError(w, statusForError(err), err.Error())
}

func statusForError(err error) int {
	switch {
	case errors.Is(err, model.ErrOrderNotFound), errors.Is(err, model.ErrProductNotFound):
		return http.StatusNotFound
	case errors.Is(err, model.ErrEmptyCart), errors.Is(err, model.ErrInvalidPrice),
		errors.Is(err, model.ErrInvalidStock), errors.Is(err, model.ErrUnknownStatus):
		return http.StatusBadRequest
	case errors.Is(err, model.ErrInvalidToken), errors.Is(err, model.ErrAdminChallenge):
		return http.StatusUnauthorized
	case errors.Is(err, model.ErrNotAdmin):
		return http.StatusForbidden
	case errors.Is(err, model.ErrInvalidTransition):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, code int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.WithError(err).Error("write response")
	}
}
