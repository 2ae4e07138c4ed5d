package handlers

import (
	"context"
	"net/http"
	"strconv"

	"storefront/internal/models"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"
)

type productStore interface {
	Create(ctx context.Context, req *models.CreateProductRequest) (*models.Product, error)
	FindAll(ctx context.Context) ([]*models.Product, error)
	FindByID(ctx context.Context, productID int64) (*models.Product, error)
}

type ProductHandler struct {
	products productStore
	logger   zerolog.Logger
}

func NewProductHandler(products productStore, logger zerolog.Logger) *ProductHandler {
	return &ProductHandler{
		products: products,
		logger:   logger,
	}
}

func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	products, err := h.products.FindAll(r.Context())
	if err != nil {
		respondWithServiceError(w, h.logger, err)
		return
	}
	respondWithJSON(w, http.StatusOK, products)
}

func (h *ProductHandler) Get(w http.ResponseWriter, r *http.Request) {
	productID, ok := pathID(w, r, "Invalid product ID")
	if !ok {
		return
	}

	product, err := h.products.FindByID(r.Context(), productID)
	if err != nil {
		respondWithServiceError(w, h.logger, err)
		return
	}
	respondWithJSON(w, http.StatusOK, product)
}

func (h *ProductHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req models.CreateProductRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	product, err := h.products.Create(r.Context(), &req)
	if err != nil {
		respondWithServiceError(w, h.logger, err)
		return
	}
	respondWithJSON(w, http.StatusCreated, product)
}

func pathID(w http.ResponseWriter, r *http.Request, message string) (int64, bool) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil || id <= 0 {
		respondWithError(w, http.StatusBadRequest, "invalid_id", message)
		return 0, false
	}
	return id, true
}
