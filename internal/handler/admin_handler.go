package handler

import (
	"net/http"

	"github.com/distrisur/pedidos-go/internal/domain"
	"github.com/distrisur/pedidos-go/internal/port"
	"github.com/distrisur/pedidos-go/internal/service"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// AdminHandler serves the read-only dashboard API.
type AdminHandler struct {
	adminSvc *service.AdminService
	catalog  port.CatalogStore
	logger   *zap.Logger
}

func NewAdminHandler(adminSvc *service.AdminService, catalog port.CatalogStore, logger *zap.Logger) *AdminHandler {
	return &AdminHandler{adminSvc: adminSvc, catalog: catalog, logger: logger}
}

func (h *AdminHandler) HandleListOrders(w http.ResponseWriter, r *http.Request) {
	page, pageSize := parsePagination(r)

	result, err := h.adminSvc.ListOrders(r.Context(), page, pageSize)
	if err != nil {
		handleServiceError(w, err, h.logger)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *AdminHandler) HandleGetOrder(w http.ResponseWriter, r *http.Request) {
	orderID := chi.URLParam(r, "orderID")
	if orderID == "" {
		writeError(w, http.StatusBadRequest, "order id is required")
		return
	}

	detail, err := h.adminSvc.GetOrder(r.Context(), orderID)
	if err != nil {
		handleServiceError(w, err, h.logger)
		return
	}
	writeJSON(w, http.StatusOK, detail)
}

func (h *AdminHandler) HandleListClients(w http.ResponseWriter, r *http.Request) {
	clients, err := h.catalog.ListClients(r.Context())
	if err != nil {
		handleServiceError(w, err, h.logger)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"clients": clients})
}

func (h *AdminHandler) HandleListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.catalog.ListCategories(r.Context())
	if err != nil {
		handleServiceError(w, err, h.logger)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"categories": categories})
}

func (h *AdminHandler) HandleListProducts(w http.ResponseWriter, r *http.Request) {
	filter := domain.ProductFilter{}
	if r.URL.Query().Get("active") == "true" {
		filter.ActiveOnly = true
	}

	products, err := h.catalog.ListProducts(r.Context(), filter)
	if err != nil {
		handleServiceError(w, err, h.logger)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"products": products})
}

func (h *AdminHandler) HandleGetStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.adminSvc.GetStats(r.Context())
	if err != nil {
		handleServiceError(w, err, h.logger)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}
