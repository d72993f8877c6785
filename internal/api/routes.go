package api

import (
	"github.com/gin-gonic/gin"
)

func SetupRoutes(router *gin.Engine, handler *Handler) {
	api := router.Group("/api")
	{
		api.GET("/map/:level", handler.GetMapStats)
		api.GET("/types", handler.GetTypeShares)
		api.GET("/timeseries", handler.GetTimeSeries)
		api.GET("/histogram", handler.GetHistogram)
		api.GET("/locations", handler.GetLocations)
		api.GET("/summary", handler.GetSummary)
		api.POST("/refresh", handler.RefreshTable)
	}
}
