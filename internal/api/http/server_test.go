package httpapi

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/foodchain/foodchain/internal/application/inspection"
	"github.com/foodchain/foodchain/internal/application/market"
	"github.com/foodchain/foodchain/internal/domain/event"
	"github.com/foodchain/foodchain/internal/domain/ledger"
	"github.com/foodchain/foodchain/internal/domain/party"
	"github.com/foodchain/foodchain/internal/domain/product"
	"github.com/foodchain/foodchain/internal/infrastructure/sse"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	hub := sse.NewHub()
	t.Cleanup(hub.Stop)

	sink := event.Multi{hub}
	log := ledger.NewLog(ledger.NewMemoryStore())
	chain := party.NewChain(product.NewCatalogFactory(), log, sink)
	engine := inspection.NewEngine(inspection.DefaultRules(), sink, zerolog.Nop())
	svc := market.NewService(chain, log, engine, zerolog.Nop())

	srv := httptest.NewServer(NewServer(svc, hub).Router())
	t.Cleanup(srv.Close)
	return srv
}

func postJSON(t *testing.T, url string, body interface{}) *http.Response {
	t.Helper()
	data, err := json.Marshal(body)
	require.NoError(t, err)
	resp, err := http.Post(url, "application/json", bytes.NewReader(data))
	require.NoError(t, err)
	return resp
}

func decode(t *testing.T, resp *http.Response, v interface{}) {
	t.Helper()
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(v))
}

func TestHealthz(t *testing.T) {
	srv := newTestServer(t)

	resp, err := http.Get(srv.URL + "/healthz")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestRequestAndPaymentEndpoints(t *testing.T) {
	srv := newTestServer(t)

	resp := postJSON(t, srv.URL+"/v1/requests", map[string]string{"product": "milk"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var req market.RequestResult
	decode(t, resp, &req)
	assert.True(t, req.Found)
	assert.Equal(t, "Milk", req.Product)
	assert.Equal(t, 45, req.Price)

	resp = postJSON(t, srv.URL+"/v1/payments", map[string]int{"amount": 45})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var pay market.PaymentResult
	decode(t, resp, &pay)
	assert.True(t, pay.Successful)
	assert.True(t, pay.Delivered)
}

func TestRequestValidation(t *testing.T) {
	srv := newTestServer(t)

	resp := postJSON(t, srv.URL+"/v1/requests", map[string]string{"product": ""})
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = postJSON(t, srv.URL+"/v1/requests", map[string]string{"unknown": "field"})
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestPaymentWithoutRequest(t *testing.T) {
	srv := newTestServer(t)

	resp := postJSON(t, srv.URL+"/v1/payments", map[string]int{"amount": 45})
	defer resp.Body.Close()
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
}

func TestPartyEndpoints(t *testing.T) {
	srv := newTestServer(t)

	resp, err := http.Get(srv.URL + "/v1/parties")
	require.NoError(t, err)
	var list struct {
		Parties []party.Snapshot `json:"parties"`
	}
	decode(t, resp, &list)
	require.Len(t, list.Parties, 6)
	assert.Equal(t, party.RoleCustomer, list.Parties[0].Role)

	resp, err = http.Get(srv.URL + "/v1/parties/seller")
	require.NoError(t, err)
	var snap party.Snapshot
	decode(t, resp, &snap)
	assert.Equal(t, party.RoleSeller, snap.Role)

	resp, err = http.Get(srv.URL + "/v1/parties/broker")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestLedgerEndpoint(t *testing.T) {
	srv := newTestServer(t)

	postJSON(t, srv.URL+"/v1/requests", map[string]string{"product": "apple"}).Body.Close()
	postJSON(t, srv.URL+"/v1/payments", map[string]int{"amount": 20}).Body.Close()

	resp, err := http.Get(srv.URL + "/v1/ledger")
	require.NoError(t, err)
	var view market.LedgerView
	decode(t, resp, &view)
	assert.Equal(t, int64(10), view.Size)
	assert.True(t, view.Valid)
	require.NotEmpty(t, view.Entries)
	assert.Equal(t, int64(1), view.Entries[0].Seq)
}
