package api

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"travel-wallet/internal/api/handlers"
	"travel-wallet/internal/api/middleware"
	"travel-wallet/internal/rates"
	"travel-wallet/internal/service"
)

// SetupRouter настраивает и возвращает роутер с всеми эндпоинтами
func SetupRouter(
	tripService *service.TripService,
	provider rates.Provider,
	jwtMiddleware *middleware.JWTMiddleware,
	historyLimit int,
	logger *logrus.Logger,
	ginMode string,
) *gin.Engine {
	gin.SetMode(ginMode)

	router := gin.New()

	router.Use(gin.Recovery())
	router.Use(middleware.Logger(logger))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	tripsHandler := handlers.NewTripsHandler(tripService, historyLimit, logger)
	ratesHandler := handlers.NewRatesHandler(provider, logger)

	// Все маршруты API требуют токен, выданный ботом по /token
	v1 := router.Group("/api/v1")
	v1.Use(jwtMiddleware.Auth())
	{
		v1.GET("/trips", tripsHandler.ListTrips)
		v1.GET("/trips/active", tripsHandler.ActiveTrip)
		v1.GET("/trips/:id/expenses", tripsHandler.TripExpenses)

		v1.GET("/rates", ratesHandler.GetRate)
	}

	return router
}
