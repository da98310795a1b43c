package auctionerrors

import "errors"

// Room and auction lookup errors
var (
	ErrAuctionNotFound   = errors.New("auction not found")
	ErrAuctionEnded      = errors.New("auction has ended")
	ErrAuctionNotStarted = errors.New("auction is not accepting bids")
)

// Bid rejection errors
var (
	ErrInvalidData       = errors.New("invalid bid data")
	ErrBidTooLow         = errors.New("bid amount too low")
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrRateLimited       = errors.New("a bid from this user is already in flight")
	ErrUserBanned        = errors.New("user is banned from this auction")
)

// Infrastructure errors
var (
	ErrSystem = errors.New("system error")
)

// Machine codes surfaced across the transport boundary.
const (
	CodeAuctionNotFound   = "AUCTION_NOT_FOUND"
	CodeAuctionEnded      = "AUCTION_ENDED"
	CodeAuctionNotStarted = "AUCTION_NOT_STARTED"
	CodeBidTooLow         = "BID_TOO_LOW"
	CodeInsufficientFunds = "INSUFFICIENT_FUNDS"
	CodeRateLimited       = "RATE_LIMITED"
	CodeUserBanned        = "USER_BANNED"
	CodeInvalidData       = "INVALID_DATA"
	CodeSystemError       = "SYSTEM_ERROR"
)

// CodeFor maps an error chain to its stable machine code.
func CodeFor(err error) string {
	switch {
	case errors.Is(err, ErrAuctionNotFound):
		return CodeAuctionNotFound
	case errors.Is(err, ErrAuctionEnded):
		return CodeAuctionEnded
	case errors.Is(err, ErrAuctionNotStarted):
		return CodeAuctionNotStarted
	case errors.Is(err, ErrBidTooLow):
		return CodeBidTooLow
	case errors.Is(err, ErrInsufficientFunds):
		return CodeInsufficientFunds
	case errors.Is(err, ErrRateLimited):
		return CodeRateLimited
	case errors.Is(err, ErrUserBanned):
		return CodeUserBanned
	case errors.Is(err, ErrInvalidData):
		return CodeInvalidData
	default:
		return CodeSystemError
	}
}
