package server

import (
	handler "auction-rooms/services/auction/handler"

	"github.com/gin-gonic/gin"
)

// SetupRouter configures all Gin routes for the application
func SetupRouter(registry handler.RoomRegistryInterface, engine handler.BiddingEngineInterface) *gin.Engine {
	router := gin.New() // New router without default middleware for full control over middleware and logging

	router.Use(gin.Recovery())          // recover from panics
	router.Use(RequestLoggerMiddleware) // custom request logging

	auctionHandler := handler.NewAuctionHandler(registry, engine)

	bids := router.Group("/bids")
	{
		bids.POST("", auctionHandler.SubmitBidHandler)
	}

	auctions := router.Group("/auctions")
	{
		auctions.GET("/:auction_id", auctionHandler.GetRoomSnapshotHandler)
		auctions.GET("/:auction_id/bids/recent", auctionHandler.GetRecentBidsHandler)
		auctions.POST("/:auction_id/participants", auctionHandler.JoinRoomHandler)
		auctions.DELETE("/:auction_id/participants/:user_id", auctionHandler.LeaveRoomHandler)
		auctions.POST("/:auction_id/participants/:user_id/heartbeat", auctionHandler.HeartbeatHandler)
	}

	return router
}
