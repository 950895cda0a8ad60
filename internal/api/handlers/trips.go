package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"travel-wallet/internal/api/middleware"
	"travel-wallet/internal/service"
	"travel-wallet/internal/storages"
)

const maxExpensesLimit = 100

// TripsHandler обработчик для чтения поездок и расходов
type TripsHandler struct {
	service      *service.TripService
	defaultLimit int
	logger       *logrus.Logger
}

// NewTripsHandler создает новый обработчик поездок
func NewTripsHandler(service *service.TripService, defaultLimit int, logger *logrus.Logger) *TripsHandler {
	return &TripsHandler{
		service:      service,
		defaultLimit: defaultLimit,
		logger:       logger,
	}
}

// ListTrips возвращает поездки пользователя
// @Summary List trips
// @Description List all trips of the user, newest first
// @Tags trips
// @Security BearerAuth
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 401 {object} map[string]string
// @Failure 500 {object} map[string]string
// @Router /api/v1/trips [get]
func (h *TripsHandler) ListTrips(c *gin.Context) {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	trips, err := h.service.ListTrips(c.Request.Context(), userID)
	if err != nil {
		h.logger.Errorf("Failed to list trips: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list trips"})
		return
	}

	if trips == nil {
		trips = []storages.Trip{}
	}
	c.JSON(http.StatusOK, gin.H{"trips": trips})
}

// ActiveTrip возвращает активную поездку с суммами расходов
// @Summary Get active trip
// @Description Get the active trip with spending totals
// @Tags trips
// @Security BearerAuth
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 401 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /api/v1/trips/active [get]
func (h *TripsHandler) ActiveTrip(c *gin.Context) {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	overview, err := h.service.Overview(c.Request.Context(), userID)
	if errors.Is(err, storages.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "No active trip"})
		return
	}
	if err != nil {
		h.logger.Errorf("Failed to get active trip: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get active trip"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"trip":   overview.Trip,
		"totals": overview.Totals,
	})
}

// TripExpenses возвращает последние расходы поездки
// @Summary List trip expenses
// @Description List the latest expenses of a trip
// @Tags trips
// @Security BearerAuth
// @Produce json
// @Param id path int true "Trip ID"
// @Param limit query int false "Max number of expenses"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} map[string]string
// @Failure 401 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /api/v1/trips/{id}/expenses [get]
func (h *TripsHandler) TripExpenses(c *gin.Context) {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	tripID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || tripID <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid trip id"})
		return
	}

	limit := h.defaultLimit
	if raw := c.Query("limit"); raw != "" {
		limit, err = strconv.Atoi(raw)
		if err != nil || limit <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid limit"})
			return
		}
	}
	if limit > maxExpensesLimit {
		limit = maxExpensesLimit
	}

	history, err := h.service.TripHistory(c.Request.Context(), userID, tripID, limit)
	if errors.Is(err, storages.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Trip not found"})
		return
	}
	if err != nil {
		h.logger.Errorf("Failed to get expenses: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get expenses"})
		return
	}

	expenses := history.Expenses
	if expenses == nil {
		expenses = []storages.Expense{}
	}
	c.JSON(http.StatusOK, gin.H{
		"trip":     history.Trip,
		"expenses": expenses,
		"totals":   history.Totals,
	})
}
