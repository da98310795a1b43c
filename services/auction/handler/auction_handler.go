package handler

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	bidding "auction-rooms/internal/biddingEngine"
	model "auction-rooms/internal/models"
	"auction-rooms/services/auction/helpers"
	"auction-rooms/utils"

	"github.com/gin-gonic/gin"
)

type RoomRegistryInterface interface {
	AddParticipant(ctx context.Context, auctionID string, user model.User, connectionID string) bool
	RemoveParticipant(auctionID, userID string) bool
	Heartbeat(auctionID, userID string) bool
	Snapshot(auctionID string) *model.RoomSnapshot
}

type BiddingEngineInterface interface {
	SubmitBid(ctx context.Context, auctionID, userID string, amount float64, user model.User) (bidding.BidResult, error)
	GetRecentBids(auctionID string, limit int) ([]model.Bid, error)
}

type AuctionHandler struct {
	registry RoomRegistryInterface
	engine   BiddingEngineInterface
}

func NewAuctionHandler(registry RoomRegistryInterface, engine BiddingEngineInterface) *AuctionHandler {
	return &AuctionHandler{registry: registry, engine: engine}
}

// JoinRoomHandler handles POST /auctions/:auction_id/participants
func (h *AuctionHandler) JoinRoomHandler(c *gin.Context) {
	auctionID := c.Param("auction_id")

	var req helpers.JoinRoomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.HandleBindError(c, "JoinRoomHandler", err)
		return
	}

	user := model.User{UserID: req.UserID, Username: req.Username}
	if !h.registry.AddParticipant(c.Request.Context(), auctionID, user, req.ConnectionID) {
		utils.JSONError(c, http.StatusConflict, fmt.Errorf("join refused for auction %s", auctionID), "could not join auction room")
		utils.Warn("JoinRoomHandler: join refused", map[string]any{
			"auction_id": auctionID,
			"user_id":    req.UserID,
		})
		return
	}

	utils.JSONResponse(c, http.StatusOK, gin.H{"joined": true}, "joined auction room")
	helpers.LogSuccess("JoinRoomHandler", "joined auction room", map[string]any{
		"auction_id": auctionID,
		"user_id":    req.UserID,
	})
}

// LeaveRoomHandler handles DELETE /auctions/:auction_id/participants/:user_id
func (h *AuctionHandler) LeaveRoomHandler(c *gin.Context) {
	auctionID := c.Param("auction_id")
	userID := c.Param("user_id")

	removed := h.registry.RemoveParticipant(auctionID, userID)

	// leaving is idempotent; report whether anything changed
	utils.JSONResponse(c, http.StatusOK, gin.H{"removed": removed}, "left auction room")
	helpers.LogSuccess("LeaveRoomHandler", "left auction room", map[string]any{
		"auction_id": auctionID,
		"user_id":    userID,
		"removed":    removed,
	})
}

// HeartbeatHandler handles POST /auctions/:auction_id/participants/:user_id/heartbeat
func (h *AuctionHandler) HeartbeatHandler(c *gin.Context) {
	auctionID := c.Param("auction_id")
	userID := c.Param("user_id")

	if !h.registry.Heartbeat(auctionID, userID) {
		utils.JSONError(c, http.StatusNotFound, fmt.Errorf("user %s is not in auction %s", userID, auctionID), "participant not in room")
		return
	}
	utils.JSONResponse(c, http.StatusOK, gin.H{"alive": true}, "heartbeat recorded")
}

// SubmitBidHandler handles POST /bids
func (h *AuctionHandler) SubmitBidHandler(c *gin.Context) {
	var req helpers.SubmitBidRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.HandleBindError(c, "SubmitBidHandler", err)
		return
	}

	user := model.User{UserID: req.UserID, Username: req.Username}
	result, err := h.engine.SubmitBid(c.Request.Context(), req.AuctionID, req.UserID, req.Amount, user)
	if err != nil {
		status := helpers.MapCodeToHTTP(result.Code)
		utils.JSONError(c, status, err, result.Message)
		utils.Warn("SubmitBidHandler: bid rejected", map[string]any{
			"auction_id": req.AuctionID,
			"user_id":    req.UserID,
			"code":       result.Code,
			"error":      err.Error(),
		})
		return
	}

	resp := helpers.BidResponse{
		BidID:     result.Bid.BidID,
		AuctionID: result.Bid.AuctionID,
		UserID:    result.Bid.UserID,
		Amount:    result.Bid.Amount,
		CreatedAt: result.Bid.CreatedAt.UTC().Format(time.RFC3339),
	}

	utils.JSONResponse(c, http.StatusCreated, resp, "bid accepted")
	helpers.LogSuccess("SubmitBidHandler", "bid accepted", map[string]any{
		"bid_id":     result.Bid.BidID,
		"auction_id": req.AuctionID,
		"user_id":    req.UserID,
		"amount":     req.Amount,
	})
}

// GetRoomSnapshotHandler handles GET /auctions/:auction_id
func (h *AuctionHandler) GetRoomSnapshotHandler(c *gin.Context) {
	auctionID := c.Param("auction_id")

	snap := h.registry.Snapshot(auctionID)
	if snap == nil {
		utils.JSONError(c, http.StatusNotFound, fmt.Errorf("no live room for auction %s", auctionID), "no live room for auction")
		utils.Info("GetRoomSnapshotHandler: no live room", map[string]any{"auction_id": auctionID})
		return
	}

	utils.JSONResponse(c, http.StatusOK, snap, "room snapshot retrieved")
}

// GetRecentBidsHandler handles GET /auctions/:auction_id/bids/recent
func (h *AuctionHandler) GetRecentBidsHandler(c *gin.Context) {
	auctionID := c.Param("auction_id")

	limit := 0
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			utils.JSONError(c, http.StatusBadRequest, fmt.Errorf("invalid limit %q", raw), "invalid limit")
			return
		}
		limit = parsed
	}

	bids, err := h.engine.GetRecentBids(auctionID, limit)
	if err != nil {
		utils.JSONError(c, http.StatusNotFound, err, "no live room for auction")
		utils.Info("GetRecentBidsHandler: no live room", map[string]any{"auction_id": auctionID})
		return
	}
	if bids == nil {
		bids = []model.Bid{}
	}

	utils.JSONResponse(c, http.StatusOK, bids, "recent bids retrieved")
	helpers.LogSuccess("GetRecentBidsHandler", "recent bids retrieved", map[string]any{
		"auction_id": auctionID,
		"count":      len(bids),
	})
}
