package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"item-catalog-service/internal/domain"
	"item-catalog-service/internal/logger"
	"item-catalog-service/internal/query"
	"item-catalog-service/internal/store"
)

const (
	apiVersion   = "1.0.0"
	defaultLimit = 1000

	msgDatasetNotFound = "Dataset not found."
	msgItemNotFound    = "Item not found."
	msgItemCreated     = "Item created successfully."
	msgItemUpdated     = "Item updated successfully."
)

// HTTPHandler holds dependencies for HTTP handlers.
type HTTPHandler struct {
	itemStore store.ItemStorer
	validate  *validator.Validate
	logger    *logger.Logger
}

// NewHTTPHandler creates a new HTTPHandler with dependencies.
func NewHTTPHandler(s store.ItemStorer, l *logger.Logger) *HTTPHandler {
	if l == nil {
		l = logger.Nop()
	}
	return &HTTPHandler{
		itemStore: s,
		validate:  validator.New(),
		logger:    l,
	}
}

// --- Helpers ---

// ErrorResponse defines the structure for JSON error responses.
type ErrorResponse struct {
	Error string `json:"error"`
}

// MessageResponse wraps the record returned by create and update.
type MessageResponse struct {
	Message string       `json:"message"`
	Item    *domain.Item `json:"item"`
}

// ItemsResponse wraps list payloads that are not returned as bare arrays.
type ItemsResponse[T any] struct {
	Items []T `json:"items"`
}

func respondWithError(w http.ResponseWriter, code int, message string) {
	respondWithJSON(w, code, ErrorResponse{Error: message})
}

func respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if payload != nil {
		if err := json.NewEncoder(w).Encode(payload); err != nil {
			// Headers are gone already; nothing useful left to send.
			zap.S().Errorw("failed to encode JSON response", "error", err)
		}
	}
}

// respondWithStoreError maps store errors onto HTTP responses.
func (h *HTTPHandler) respondWithStoreError(w http.ResponseWriter, r *http.Request, op string, err error) {
	log := h.logger.WithRequestID(middleware.GetReqID(r.Context())).WithError(err)
	switch {
	case errors.Is(err, store.ErrDatasetNotFound):
		log.Warnw(op + ": dataset missing")
		respondWithError(w, http.StatusNotFound, msgDatasetNotFound)
	case errors.Is(err, store.ErrItemNotFound):
		respondWithError(w, http.StatusNotFound, msgItemNotFound)
	case errors.Is(err, store.ErrInvalidCategory):
		respondWithError(w, http.StatusBadRequest, "Validation failed: "+err.Error())
	default:
		log.Errorw(op + " failed")
		respondWithError(w, http.StatusInternalServerError, "Failed to "+op)
	}
}

// --- Handlers ---

func (h *HTTPHandler) Root(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, http.StatusOK, map[string]string{
		"message": "Welcome to the Item Catalog API",
		"version": apiVersion,
	})
}

func (h *HTTPHandler) Healthz(w http.ResponseWriter, r *http.Request) {
	datasetStatus := "healthy"
	if err := h.itemStore.Ping(r.Context()); err != nil {
		datasetStatus = "unhealthy"
		h.logger.Warnw("health check dataset ping failed", "error", err)
	}
	respondWithJSON(w, http.StatusOK, map[string]string{
		"status":    "healthy",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"dataset":   datasetStatus,
	})
}

func (h *HTTPHandler) ListItems(w http.ResponseWriter, r *http.Request) {
	skip, limit, err := parsePagination(r.URL.Query())
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Validation failed: "+err.Error())
		return
	}

	items, err := h.itemStore.ListItems(r.Context())
	if err != nil {
		h.respondWithStoreError(w, r, "list items", err)
		return
	}
	respondWithJSON(w, http.StatusOK, query.Paginate(items, skip, limit))
}

func (h *HTTPHandler) GetItem(w http.ResponseWriter, r *http.Request) {
	itemID, err := parseItemID(chi.URLParam(r, "itemID"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Validation failed: "+err.Error())
		return
	}

	item, err := h.itemStore.GetItem(r.Context(), itemID)
	if err != nil {
		h.respondWithStoreError(w, r, "retrieve item", err)
		return
	}
	respondWithJSON(w, http.StatusOK, item)
}

func (h *HTTPHandler) SearchItems(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	if err := validateSearchQuery(h.validate, q); err != nil {
		respondWithError(w, http.StatusBadRequest, "Validation failed: "+err.Error())
		return
	}

	items, err := h.itemStore.ListItems(r.Context())
	if err != nil {
		h.respondWithStoreError(w, r, "search items", err)
		return
	}
	respondWithJSON(w, http.StatusOK, query.Search(items, q))
}

func (h *HTTPHandler) ListByCategories(w http.ResponseWriter, r *http.Request) {
	allowed := r.URL.Query()["item-category"]

	items, err := h.itemStore.ListItems(r.Context())
	if err != nil {
		h.respondWithStoreError(w, r, "list items by category", err)
		return
	}
	respondWithJSON(w, http.StatusOK, ItemsResponse[domain.CategoryView]{
		Items: query.ByCategorySet(items, allowed),
	})
}

func (h *HTTPHandler) FilterItems(w http.ResponseWriter, r *http.Request) {
	params, err := parseFilterParams(r.URL.Query())
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Validation failed: "+err.Error())
		return
	}

	items, err := h.itemStore.ListItems(r.Context())
	if err != nil {
		h.respondWithStoreError(w, r, "filter items", err)
		return
	}
	respondWithJSON(w, http.StatusOK, ItemsResponse[domain.Item]{
		Items: query.Filter(items, params),
	})
}

func (h *HTTPHandler) CreateItem(w http.ResponseWriter, r *http.Request) {
	category, err := domain.ParseCategory(chi.URLParam(r, "category"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Validation failed: "+err.Error())
		return
	}

	var input ItemInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request payload: "+err.Error())
		return
	}
	defer r.Body.Close()

	if err := h.validate.Struct(input); err != nil {
		respondWithError(w, http.StatusBadRequest, "Validation failed: "+err.Error())
		return
	}

	created, err := h.itemStore.CreateItem(r.Context(), input.Fields(), string(category))
	if err != nil {
		h.respondWithStoreError(w, r, "create item", err)
		return
	}
	respondWithJSON(w, http.StatusCreated, MessageResponse{Message: msgItemCreated, Item: created})
}

func (h *HTTPHandler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	itemID, err := parseItemID(chi.URLParam(r, "itemID"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Validation failed: "+err.Error())
		return
	}

	var input ItemUpdateInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request payload: "+err.Error())
		return
	}
	defer r.Body.Close()

	if err := h.validate.Struct(input); err != nil {
		respondWithError(w, http.StatusBadRequest, "Validation failed: "+err.Error())
		return
	}

	updated, err := h.itemStore.UpdateItem(r.Context(), itemID, input.Fields())
	if err != nil {
		h.respondWithStoreError(w, r, "update item", err)
		return
	}
	respondWithJSON(w, http.StatusOK, MessageResponse{Message: msgItemUpdated, Item: updated})
}

// --- Route Registration ---

// RegisterRoutes sets up the HTTP routes for the service. The search,
// categories and filter endpoints answer with and without a trailing slash.
func (h *HTTPHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.Root)
	r.Get("/healthz", h.Healthz)

	r.Route("/items", func(r chi.Router) {
		r.Get("/", h.ListItems)
		// Static segments must win over {itemID}; chi matches them first.
		r.Get("/search", h.SearchItems)
		r.Get("/search/", h.SearchItems)
		r.Get("/categories", h.ListByCategories)
		r.Get("/categories/", h.ListByCategories)

		r.Get("/{itemID}", h.GetItem)
		r.Put("/{itemID}", h.UpdateItem)
		r.Post("/{category}", h.CreateItem)
	})

	r.Get("/get-items", h.FilterItems)
	r.Get("/get-items/", h.FilterItems)
}

// RequestLogger logs one line per request through l.
func RequestLogger(l *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)
			l.Infow("http request",
				"request_id", middleware.GetReqID(r.Context()),
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"duration", time.Since(start),
			)
		})
	}
}
