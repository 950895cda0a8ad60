package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"travel-wallet/internal/currency"
	"travel-wallet/internal/rates"
	"travel-wallet/pkg"
)

// RatesHandler обработчик для курсов валют
type RatesHandler struct {
	provider rates.Provider
	logger   *logrus.Logger
}

// NewRatesHandler создает новый обработчик курсов
func NewRatesHandler(provider rates.Provider, logger *logrus.Logger) *RatesHandler {
	return &RatesHandler{
		provider: provider,
		logger:   logger,
	}
}

// GetRate возвращает курс пары валют
// @Summary Get exchange rate
// @Description Units of "to" currency per 1 unit of "from" currency
// @Tags rates
// @Security BearerAuth
// @Produce json
// @Param from query string true "Source currency"
// @Param to query string true "Target currency"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} map[string]string
// @Failure 503 {object} map[string]string
// @Router /api/v1/rates [get]
func (h *RatesHandler) GetRate(c *gin.Context) {
	from := pkg.NormalizeCurrency(c.Query("from"))
	to := pkg.NormalizeCurrency(c.Query("to"))

	if !currency.Known(from) || !currency.Known(to) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown currency pair: " + from + "/" + to})
		return
	}

	rate, err := h.provider.FetchRate(c.Request.Context(), from, to)
	if errors.Is(err, rates.ErrUnavailable) {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Exchange rate unavailable"})
		return
	}
	if err != nil {
		h.logger.Errorf("Failed to fetch rate: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch rate"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"from": from,
		"to":   to,
		"rate": rate,
	})
}
