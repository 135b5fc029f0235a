package handlers

import (
	"errors"
	"net/http"

	"genzfits/internal/database"
	"genzfits/internal/logger"
	"genzfits/internal/middleware"
	"genzfits/internal/models"
	"genzfits/internal/store"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func respondOrders(c *gin.Context, orders []models.Order, err error) {
	if err != nil {
		logger.FromGin(c).Error("Error loading orders", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error loading orders"})
		return
	}
	c.JSON(http.StatusOK, orders)
}

// ListOrders returns every order, optionally filtered by ?status=.
func ListOrders(c *gin.Context) {
	orders, err := store.ListOrders(c.Request.Context(), database.DB, c.Query("status"))
	respondOrders(c, orders, err)
}

func GetOrder(c *gin.Context) {
	id, ok := parseIDParam(c, "order")
	if !ok {
		return
	}

	order, err := store.GetOrder(c.Request.Context(), database.DB, id)
	if errors.Is(err, store.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Order not found"})
		return
	}
	if err != nil {
		respondStoreError(c, "loading order", err)
		return
	}

	c.JSON(http.StatusOK, order)
}

type updateOrderStatusRequest struct {
	Status string `json:"status"`
}

// UpdateOrderStatus sets the status of an order. An unknown id answers 200
// with a null body.
func UpdateOrderStatus(c *gin.Context) {
	id, ok := parseIDParam(c, "order")
	if !ok {
		return
	}

	var req updateOrderStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Error updating order: invalid request body"})
		return
	}

	order, err := store.UpdateOrderStatus(c.Request.Context(), database.DB, id, req.Status)
	if err != nil {
		respondStoreError(c, "updating order", err)
		return
	}
	if order == nil {
		logger.FromGin(c).Warn("Status update of missing order", zap.Int64("order_id", id))
		c.JSON(http.StatusOK, nil)
		return
	}

	logger.FromGin(c).Info("Order status updated", zap.Int64("order_id", id), zap.String("status", order.Status))
	c.JSON(http.StatusOK, order)
}

// PlaceOrder checks out the session user's cart.
func PlaceOrder(c *gin.Context) {
	sess, ok := middleware.SessionFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Login required"})
		return
	}

	var input store.PlaceOrderInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Error placing order: items are required"})
		return
	}

	order, err := store.PlaceOrder(c.Request.Context(), database.DB, sess.User.ID, input)
	if err != nil {
		respondStoreError(c, "placing order", err)
		return
	}
	order.User = &models.OrderUser{ID: sess.User.ID, Username: sess.User.Username, FullName: sess.User.FullName}

	logger.FromGin(c).Info("Order placed",
		zap.Int64("order_id", order.ID),
		zap.Int64("user_id", sess.User.ID),
		zap.Float64("total", order.Total))
	c.JSON(http.StatusCreated, order)
}

// ListMyOrders returns the session user's orders.
func ListMyOrders(c *gin.Context) {
	sess, ok := middleware.SessionFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Login required"})
		return
	}

	orders, err := store.ListOrdersForUser(c.Request.Context(), database.DB, sess.User.ID)
	respondOrders(c, orders, err)
}
