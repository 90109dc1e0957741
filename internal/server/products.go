package server

import (
	"errors"
	"io"
	"net/http"

	"github.com/MarcoPoloResearchLab/ecofinds/internal/apperr"
	"github.com/MarcoPoloResearchLab/ecofinds/internal/catalog"
	"github.com/MarcoPoloResearchLab/ecofinds/internal/users"
	"github.com/gin-gonic/gin"
)

type createProductPayload struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Price       any    `json:"price"`
	Category    string `json:"category"`
	Image       string `json:"image"`
}

type createProductResponse struct {
	Message string            `json:"message"`
	ID      catalog.ProductID `json:"id"`
}

func (h *httpHandler) handleCreateProduct(c *gin.Context, userID users.UserID) {
	var payload createProductPayload
	if err := c.ShouldBindJSON(&payload); err != nil && !errors.Is(err, io.EOF) {
		h.writeError(c, apperr.Validation("invalid request body"))
		return
	}

	productID, err := h.catalog.CreateProduct(c.Request.Context(), userID, catalog.CreateProductInput{
		Title:       payload.Title,
		Description: payload.Description,
		Price:       payload.Price,
		Category:    payload.Category,
		Image:       payload.Image,
	})
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, createProductResponse{Message: "product created", ID: productID})
}

func (h *httpHandler) handleListProducts(c *gin.Context) {
	listings, err := h.catalog.ListProducts(c.Request.Context(), catalog.ListFilter{
		Query:    c.Query("q"),
		Category: c.Query("category"),
	})
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, listings)
}

func (h *httpHandler) handleProfile(c *gin.Context, userID users.UserID) {
	profile, err := h.users.Profile(c.Request.Context(), userID)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, profile)
}
