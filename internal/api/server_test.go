package api

import (
	"context"
	"encoding/json"
	"fmt"
	"math/big"
	"net/http"
	"net/http/httptest"
	"testing"

	"evm-wallet-inspector/internal/domain/entity"
	"evm-wallet-inspector/internal/infrastructure/logger"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubEvents struct {
	query  entity.EventQuery
	events []entity.DecodedEvent
	err    error
}

func (s *stubEvents) QueryEvents(ctx context.Context, query entity.EventQuery) ([]entity.DecodedEvent, error) {
	s.query = query
	return s.events, s.err
}

type stubDecoder struct {
	call *entity.DecodedCall
	err  error
}

func (s *stubDecoder) DecodeTransaction(ctx context.Context, txHash common.Hash, chain entity.ChainID) (*entity.DecodedCall, error) {
	return s.call, s.err
}

type stubHoldings struct {
	wallet       common.Address
	includeBatch bool
	holdings     []entity.Holding
	err          error
}

func (s *stubHoldings) Aggregate(ctx context.Context, wallet common.Address, curated entity.CuratedList, includeBatch bool) ([]entity.Holding, error) {
	s.wallet = wallet
	s.includeBatch = includeBatch
	return s.holdings, s.err
}

func (s *stubHoldings) Holding(ctx context.Context, wallet, contract common.Address, meta entity.CuratedContract) (*entity.Holding, error) {
	return nil, s.err
}

func newTestServer(events *stubEvents, decoder *stubDecoder, holdings *stubHoldings) *httptest.Server {
	if events == nil {
		events = &stubEvents{}
	}
	if decoder == nil {
		decoder = &stubDecoder{}
	}
	if holdings == nil {
		holdings = &stubHoldings{}
	}
	srv := NewServer(events, decoder, holdings, nil, logger.Nop())
	return httptest.NewServer(srv.Handler())
}

func getJSON(t *testing.T, url string, out interface{}) int {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))
	if out != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp.StatusCode
}

func TestHealth(t *testing.T) {
	ts := newTestServer(nil, nil, nil)
	defer ts.Close()

	var body map[string]string
	status := getJSON(t, ts.URL+"/health", &body)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "ok", body["status"])
}

func TestHoldingsEndpoint(t *testing.T) {
	contract := common.HexToAddress("0x5aaeb6053f3e94c9b9a09f33669435e7ef1beaed")
	holdings := &stubHoldings{holdings: []entity.Holding{{
		Address: contract,
		Symbol:  "X",
		Name:    "Foo",
		Balance: big.NewInt(3),
	}}}
	ts := newTestServer(nil, nil, holdings)
	defer ts.Close()

	wallet := "0xfB6916095ca1df60bB79Ce92cE3Ea74c37c5d359"
	var body struct {
		Wallet   string           `json:"wallet"`
		Holdings []entity.Holding `json:"holdings"`
	}
	status := getJSON(t, fmt.Sprintf("%s/v1/holdings/%s?include_batch=true", ts.URL, wallet), &body)

	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, wallet, body.Wallet)
	require.Len(t, body.Holdings, 1)
	assert.Equal(t, "X", body.Holdings[0].Symbol)
	assert.Equal(t, big.NewInt(3), body.Holdings[0].Balance)

	assert.Equal(t, common.HexToAddress(wallet), holdings.wallet)
	assert.True(t, holdings.includeBatch)
}

func TestHoldingsEndpointRejectsBadAddress(t *testing.T) {
	ts := newTestServer(nil, nil, nil)
	defer ts.Close()

	var body map[string]string
	status := getJSON(t, ts.URL+"/v1/holdings/not-an-address", &body)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.NotEmpty(t, body["error"])
}

func TestDecodeTransactionEndpoint(t *testing.T) {
	decoder := &stubDecoder{call: &entity.DecodedCall{
		Function: "transfer",
		Args: map[string]interface{}{
			"to":    "0xdBF03B407c01E7cD3CBea99509d93f8DDDC8C6FB",
			"value": "1000",
		},
	}}
	ts := newTestServer(nil, decoder, nil)
	defer ts.Close()

	txHash := "0xabcdef1234567890abcdef1234567890abcdef1234567890abcdef1234567890"
	var body entity.DecodedCall
	status := getJSON(t, ts.URL+"/v1/tx/"+txHash+"/decode", &body)

	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "transfer", body.Function)
}

func TestDecodeTransactionEndpointRejectsBadHash(t *testing.T) {
	ts := newTestServer(nil, nil, nil)
	defer ts.Close()

	for _, hash := range []string{
		"0x1234",
		"1111111111111111111111111111111111111111111111111111111111111111",
		// Right length and prefix, but not hex
		"0xzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzz",
	} {
		status := getJSON(t, ts.URL+"/v1/tx/"+hash+"/decode", nil)
		assert.Equal(t, http.StatusBadRequest, status, "hash %q", hash)
	}
}

func TestDecodeTransactionEndpointUnknownSelector(t *testing.T) {
	decoder := &stubDecoder{err: fmt.Errorf("%w: 0xdeadbeef", entity.ErrUnknownSelector)}
	ts := newTestServer(nil, decoder, nil)
	defer ts.Close()

	txHash := "0x1111111111111111111111111111111111111111111111111111111111111111"
	status := getJSON(t, ts.URL+"/v1/tx/"+txHash+"/decode", nil)
	assert.Equal(t, http.StatusNotFound, status)
}

func TestQueryEventsEndpoint(t *testing.T) {
	events := &stubEvents{events: []entity.DecodedEvent{{
		Name:        "Transfer",
		Args:        map[string]interface{}{"value": "42"},
		BlockNumber: 100,
		LogIndex:    3,
	}}}
	ts := newTestServer(events, nil, nil)
	defer ts.Close()

	contract := "0x5aAeb6053F3E94C9b9A09f33669435E7Ef1BeAed"
	url := fmt.Sprintf("%s/v1/contracts/%s/events?name=Transfer&from=-100&to=2000&chain=polygon", ts.URL, contract)

	var body struct {
		Contract string                `json:"contract"`
		Events   []entity.DecodedEvent `json:"events"`
	}
	status := getJSON(t, url, &body)

	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, contract, body.Contract)
	require.Len(t, body.Events, 1)
	assert.Equal(t, "Transfer", body.Events[0].Name)

	assert.Equal(t, "Transfer", events.query.Event)
	assert.Equal(t, entity.ChainID("polygon"), events.query.Chain)
	assert.Equal(t, int64(-100), events.query.Range.Start)
	require.NotNil(t, events.query.Range.End)
	assert.Equal(t, uint64(2000), *events.query.Range.End)
}

func TestQueryEventsEndpointRequiresName(t *testing.T) {
	ts := newTestServer(nil, nil, nil)
	defer ts.Close()

	contract := "0x5aAeb6053F3E94C9b9A09f33669435E7Ef1BeAed"
	resp, err := http.Get(ts.URL + "/v1/contracts/" + contract + "/events")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestQueryEventsEndpointDefaultsRangeToLatest(t *testing.T) {
	events := &stubEvents{}
	ts := newTestServer(events, nil, nil)
	defer ts.Close()

	contract := "0x5aAeb6053F3E94C9b9A09f33669435E7Ef1BeAed"
	status := getJSON(t, ts.URL+"/v1/contracts/"+contract+"/events?name=Transfer&to=latest", nil)

	assert.Equal(t, http.StatusOK, status)
	assert.Nil(t, events.query.Range.End)
	assert.Equal(t, entity.ChainEthereum, events.query.Chain)
}

func TestErrorMapping(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
	}{
		{"ambiguous event", entity.ErrAmbiguousEvent, http.StatusBadRequest},
		{"unknown chain", entity.ErrUnknownChain, http.StatusBadRequest},
		{"event not found", entity.ErrEventNotFound, http.StatusNotFound},
		{"abi unavailable", entity.ErrABIUnavailable, http.StatusNotFound},
		{"transport", entity.ErrTransport, http.StatusBadGateway},
		{"other", fmt.Errorf("boom"), http.StatusInternalServerError},
	}

	contract := "0x5aAeb6053F3E94C9b9A09f33669435E7Ef1BeAed"
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			ts := newTestServer(&stubEvents{err: tc.err}, nil, nil)
			defer ts.Close()

			var body map[string]string
			status := getJSON(t, ts.URL+"/v1/contracts/"+contract+"/events?name=Transfer", &body)
			assert.Equal(t, tc.status, status)
			assert.NotEmpty(t, body["error"])
		})
	}
}
