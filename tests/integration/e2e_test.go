package integration

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tokenbay/marketplace-backend/internal/adapter/custody"
	"github.com/tokenbay/marketplace-backend/internal/adapter/feed"
	"github.com/tokenbay/marketplace-backend/internal/adapter/httpapi"
	"github.com/tokenbay/marketplace-backend/internal/adapter/payment"
	"github.com/tokenbay/marketplace-backend/internal/adapter/store/memory"
	"github.com/tokenbay/marketplace-backend/internal/config"
	"github.com/tokenbay/marketplace-backend/internal/domain"
	"github.com/tokenbay/marketplace-backend/internal/usecase/marketplace"
)

// startServer wires the full in-memory stack the way cmd/server does.
func startServer(t *testing.T) (*httptest.Server, *payment.Ledger) {
	t.Helper()

	cfg := config.Default()
	store := memory.New()
	registry := custody.NewRegistry()
	payments := payment.NewLedger()
	hub := feed.NewHub(cfg.Feed.ClientBuffer)

	market := marketplace.NewService(store, registry, payments, hub,
		domain.Address(cfg.Market.OperatorAddress))

	api := httpapi.NewAPI(market, hub, registry)
	srv := httptest.NewServer(httpapi.NewRouter(api, cfg.Server.AuthToken))
	t.Cleanup(srv.Close)
	return srv, payments
}

func post(t *testing.T, url string, body map[string]string) *http.Response {
	t.Helper()
	payload, err := json.Marshal(body)
	require.NoError(t, err)
	resp, err := http.Post(url, "application/json", bytes.NewReader(payload))
	require.NoError(t, err)
	return resp
}

func get(t *testing.T, url string) map[string]string {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var out map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

func TestMarketplaceEndToEnd(t *testing.T) {
	srv, payments := startServer(t)
	base := srv.URL

	// Subscribe to the event feed before any activity.
	wsURL := "ws" + strings.TrimPrefix(base, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer conn.Close()

	received := make(chan domain.MarketEvent, 16)
	go func() {
		for {
			var ev domain.MarketEvent
			if err := conn.ReadJSON(&ev); err != nil {
				close(received)
				return
			}
			received <- ev
		}
	}()

	waitEvent := func(want domain.EventType) domain.MarketEvent {
		t.Helper()
		select {
		case ev := <-received:
			require.Equal(t, want, ev.Type)
			return ev
		case <-time.After(5 * time.Second):
			t.Fatalf("timed out waiting for %s event", want)
			return domain.MarketEvent{}
		}
	}

	// Mint token 0 to the seller and approve the marketplace.
	resp := post(t, base+"/assets/mint", map[string]string{
		"asset_contract": "0xbasicnft", "token_id": "0", "owner": "0xdeployer",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	resp.Body.Close()

	resp = post(t, base+"/assets/approvals", map[string]string{
		"asset_contract": "0xbasicnft", "token_id": "0", "caller": "0xdeployer",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	// List at 100.
	resp = post(t, base+"/listings", map[string]string{
		"asset_contract": "0xbasicnft", "token_id": "0", "price": "100", "seller": "0xdeployer",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	resp.Body.Close()

	listed := waitEvent(domain.EventItemListed)
	assert.Equal(t, domain.Address("0xdeployer"), listed.Seller)
	assert.Equal(t, "100", listed.Price.String())

	listing := get(t, base+"/listings/0xbasicnft/0")
	assert.Equal(t, "100", listing["price"])
	assert.Equal(t, "0xdeployer", listing["seller"])

	// Buyer pays the full price.
	resp = post(t, base+"/purchases", map[string]string{
		"asset_contract": "0xbasicnft", "token_id": "0", "buyer": "0xplayer", "paid_amount": "100",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	bought := waitEvent(domain.EventItemBought)
	assert.Equal(t, domain.Address("0xplayer"), bought.Buyer)

	// Proceeds credited, listing cleared, ownership moved.
	assert.Equal(t, "100", get(t, base+"/proceeds/0xdeployer")["amount"])

	cleared := get(t, base+"/listings/0xbasicnft/0")
	assert.Equal(t, "0", cleared["price"])
	assert.Equal(t, string(domain.ZeroAddress), cleared["seller"])

	assert.Equal(t, "0xplayer", get(t, base+"/assets/0xbasicnft/0/owner")["owner"])

	// Seller withdraws the proceeds.
	resp = post(t, base+"/withdrawals", map[string]string{"caller": "0xdeployer"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	assert.Equal(t, "0", get(t, base+"/proceeds/0xdeployer")["amount"])
	assert.Equal(t, "100", payments.BalanceOf("0xdeployer").String())
}

func TestWithdrawRollbackKeepsBalance(t *testing.T) {
	srv, payments := startServer(t)
	base := srv.URL

	// Seed a sale so the seller has proceeds.
	post(t, base+"/assets/mint", map[string]string{
		"asset_contract": "0xbasicnft", "token_id": "1", "owner": "0xdeployer",
	}).Body.Close()
	post(t, base+"/assets/approvals", map[string]string{
		"asset_contract": "0xbasicnft", "token_id": "1", "caller": "0xdeployer",
	}).Body.Close()
	post(t, base+"/listings", map[string]string{
		"asset_contract": "0xbasicnft", "token_id": "1", "price": "100", "seller": "0xdeployer",
	}).Body.Close()
	post(t, base+"/purchases", map[string]string{
		"asset_contract": "0xbasicnft", "token_id": "1", "buyer": "0xplayer", "paid_amount": "100",
	}).Body.Close()

	// The payment collaborator rejects the seller.
	payments.Reject("0xdeployer")

	resp := post(t, base+"/withdrawals", map[string]string{"caller": "0xdeployer"})
	assert.Equal(t, http.StatusBadGateway, resp.StatusCode)
	resp.Body.Close()

	// Balance intact: no funds were lost.
	assert.Equal(t, "100", get(t, base+"/proceeds/0xdeployer")["amount"])
}
