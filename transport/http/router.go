package http

import (
	"github.com/gin-gonic/gin"
)

// SetupRouter sets up the Gin router.
func SetupRouter(handlers *WalletHandlers) *gin.Engine {
	router := gin.Default()

	wallet := router.Group("/wallet")
	{
		wallet.POST("/connect", handlers.Connect)
		wallet.POST("/disconnect", handlers.Disconnect)
		wallet.POST("/reconnect", handlers.Reconnect)
		wallet.GET("/status", handlers.Status)
		wallet.GET("/balance", handlers.Balance)
		wallet.POST("/withdraw", handlers.Withdraw)
		wallet.POST("/bid", handlers.PlaceBid)
	}

	return router
}
