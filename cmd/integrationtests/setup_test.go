package integrationtests

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"testing"

	bidding "auction-rooms/internal/biddingEngine"
	"auction-rooms/internal/events"
	"auction-rooms/internal/ledger"
	model "auction-rooms/internal/models"
	"auction-rooms/internal/registry"
	"auction-rooms/internal/server"
	"auction-rooms/internal/wallet"

	"github.com/gin-gonic/gin"
)

// testHarness bundles the collaborators behind a test router so individual
// tests can seed balances or inspect the ledger after driving the API.
type testHarness struct {
	Router *gin.Engine
	Store  *ledger.MemoryLedger
	Funds  *wallet.MemoryWallet
	Reg    *registry.Registry
}

// SetupTestRouterWithAuctions initializes the full HTTP stack over in-memory
// collaborators and seeds the ledger with the given auctions. Every seeded
// user1..user5 gets a large balance so funds checks pass unless a test
// overrides them.
func SetupTestRouterWithAuctions(t *testing.T, auctions ...model.AuctionSnapshot) *testHarness {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store := ledger.NewMemoryLedger()
	funds := wallet.NewMemoryWallet()
	bus := events.NewBus()

	for _, a := range auctions {
		store.AddAuction(a)
	}
	for _, id := range []string{"user1", "user2", "user3", "user4", "user5"} {
		funds.SetBalance(id, 1_000_000)
	}

	reg := registry.New(store, bus, model.DefaultRoomConfig())
	t.Cleanup(reg.Stop)

	engine := bidding.NewEngine(reg, store, funds, nil, bus)
	router := server.SetupRouter(reg, engine)

	return &testHarness{Router: router, Store: store, Funds: funds, Reg: reg}
}

// ExecuteRequest executes an HTTP request and returns the response recorder.
func ExecuteRequest(t *testing.T, router *gin.Engine, method, url string, body []byte) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, url, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

// ExecuteRequestAndParse executes an HTTP request on the given router and parses the response
func ExecuteRequestAndParse(t *testing.T, router *gin.Engine, method, url string, body any) (map[string]any, *httptest.ResponseRecorder) {
	t.Helper()

	var reqBody []byte
	var err error

	switch v := body.(type) {
	case []byte:
		reqBody = v
	case string:
		reqBody = []byte(v)
	default:
		reqBody, err = json.Marshal(v)
		if err != nil {
			t.Fatalf("failed to marshal body: %v", err)
		}
	}

	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, url, bytes.NewReader(reqBody))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	var resp map[string]any
	if len(w.Body.Bytes()) > 0 {
		if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
			t.Fatalf("failed to unmarshal response: %v", err)
		}

		if w.Code == 201 {
			resp = resp["data"].(map[string]any)
		}
	}

	return resp, w
}
