package handlers

import (
	"errors"
	"net/http"
	"strings"

	"genzfits/internal/database"
	"genzfits/internal/logger"
	"genzfits/internal/models"
	"genzfits/internal/store"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type createProductRequest struct {
	Name          string   `json:"name" binding:"required"`
	Price         *float64 `json:"price" binding:"required"`
	Category      string   `json:"category" binding:"required"`
	Description   string   `json:"description"`
	Images        []string `json:"images"`
	Stock         *int     `json:"stock"`
	OriginalPrice *float64 `json:"originalPrice"`
	Discount      *int     `json:"discount"`
	Assured       *bool    `json:"assured"`
	Brand         *string  `json:"brand"`
	Sizes         []string `json:"sizes"`
	Rating        float64  `json:"rating"`
	ReviewCount   int      `json:"reviewCount"`
}

func (r createProductRequest) toProduct() models.Product {
	product := models.Product{
		Name:          strings.TrimSpace(r.Name),
		Category:      strings.TrimSpace(r.Category),
		Description:   r.Description,
		Images:        r.Images,
		OriginalPrice: r.OriginalPrice,
		Discount:      r.Discount,
		Assured:       r.Assured,
		Brand:         r.Brand,
		Sizes:         r.Sizes,
		Rating:        r.Rating,
		ReviewCount:   r.ReviewCount,
	}
	if r.Price != nil {
		product.Price = *r.Price
	}
	if r.Stock != nil {
		product.Stock = *r.Stock
	}
	return product
}

func respondProducts(c *gin.Context, products []models.Product, err error) {
	if err != nil {
		logger.FromGin(c).Error("Error loading products", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error loading products"})
		return
	}
	c.JSON(http.StatusOK, products)
}

func ListProducts(c *gin.Context) {
	products, err := store.ListProducts(c.Request.Context(), database.DB)
	respondProducts(c, products, err)
}

func ListProductsByCategory(c *gin.Context) {
	products, err := store.ListProductsByCategory(c.Request.Context(), database.DB, c.Param("category"))
	respondProducts(c, products, err)
}

// SearchProducts matches ?query= against product names, case-insensitively.
func SearchProducts(c *gin.Context) {
	products, err := store.SearchProducts(c.Request.Context(), database.DB, c.Query("query"))
	respondProducts(c, products, err)
}

func GetProduct(c *gin.Context) {
	id, ok := parseIDParam(c, "product")
	if !ok {
		return
	}

	product, err := store.GetProduct(c.Request.Context(), database.DB, id)
	if errors.Is(err, store.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
		return
	}
	if err != nil {
		respondStoreError(c, "loading product", err)
		return
	}

	c.JSON(http.StatusOK, product)
}

func CreateProduct(c *gin.Context) {
	var req createProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Error adding product: name, price and category are required"})
		return
	}

	product, err := store.CreateProduct(c.Request.Context(), database.DB, req.toProduct())
	if err != nil {
		respondStoreError(c, "adding product", err)
		return
	}

	logger.FromGin(c).Info("Product created", zap.Int64("product_id", product.ID))
	c.JSON(http.StatusOK, product)
}

// UpdateProduct applies the provided fields. An unknown id answers 200 with a
// null body, which existing clients rely on.
func UpdateProduct(c *gin.Context) {
	id, ok := parseIDParam(c, "product")
	if !ok {
		return
	}

	var patch models.ProductPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Error updating product: invalid request body"})
		return
	}

	product, err := store.UpdateProduct(c.Request.Context(), database.DB, id, patch)
	if err != nil {
		respondStoreError(c, "updating product", err)
		return
	}
	if product == nil {
		logger.FromGin(c).Warn("Update of missing product", zap.Int64("product_id", id))
		c.JSON(http.StatusOK, nil)
		return
	}

	c.JSON(http.StatusOK, product)
}

func DeleteProduct(c *gin.Context) {
	id, ok := parseIDParam(c, "product")
	if !ok {
		return
	}

	if err := store.DeleteProduct(c.Request.Context(), database.DB, id); err != nil {
		respondStoreError(c, "deleting product", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Product deleted successfully"})
}
