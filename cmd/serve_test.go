package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pankajverma010101-svg/predict-cpi/internal/extract"
	"github.com/pankajverma010101-svg/predict-cpi/internal/pricing"
	"github.com/pankajverma010101-svg/predict-cpi/internal/store"
)

func newTestAPI(t *testing.T) *api {
	t.Helper()

	st, err := store.NewSQLite(filepath.Join(t.TempDir(), "api.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })
	require.NoError(t, st.Migrate(context.Background()))

	price := decimal.RequireFromString("3.00")
	engine := pricing.NewEngine(pricing.Tables{
		General: pricing.RuleTable{
			"USA": {{Market: "USA", LOIMin: 1, LOIMax: 60, IRMin: 1, IRMax: 100, Price: price}},
		},
	})

	return &api{
		extractor:  extract.New(),
		classifier: extract.NewTypeClassifier(nil, ""),
		engine:     engine,
		store:      st,
	}
}

func postJSON(t *testing.T, h http.Handler, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	raw, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestHealth(t *testing.T) {
	a := newTestAPI(t)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	a.router().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestHandleExtract(t *testing.T) {
	a := newTestAPI(t)

	rec := postJSON(t, a.router(), "/v1/extract", map[string]string{
		"body": "Market: USA\nIR: 20%\nLOI: 15 min\nN: 500",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Records      []map[string]string `json:"records"`
		BusinessType string              `json:"business_type"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Records, 1)
	assert.Equal(t, "usa", resp.Records[0]["market"])
	assert.Equal(t, "b2c", resp.BusinessType)
}

func TestHandleExtractMissingBody(t *testing.T) {
	a := newTestAPI(t)

	rec := postJSON(t, a.router(), "/v1/extract", map[string]string{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandlePrice(t *testing.T) {
	a := newTestAPI(t)

	rec := postJSON(t, a.router(), "/v1/price", pricing.Request{
		BusinessType: "b2b", Market: "usa", IR: "20", LOI: "15",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp pricing.Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, pricing.SourceB2BCover, resp.Source)
	assert.Equal(t, "3", resp.PredictedPrice.String())
}

func TestHandlePriceErrorMapping(t *testing.T) {
	a := newTestAPI(t)
	router := a.router()

	tests := []struct {
		name string
		req  pricing.Request
		code int
	}{
		{"missing field", pricing.Request{BusinessType: "b2b", Market: "usa", IR: "20"}, http.StatusBadRequest},
		{"unparseable", pricing.Request{BusinessType: "b2b", Market: "usa", IR: "tbd", LOI: "10"}, http.StatusUnprocessableEntity},
		{"no rows", pricing.Request{BusinessType: "b2b", Market: "narnia", IR: "20", LOI: "10"}, http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := postJSON(t, router, "/v1/price", tt.req)
			assert.Equal(t, tt.code, rec.Code)
		})
	}
}

func TestHandleSubmit(t *testing.T) {
	a := newTestAPI(t)

	body := "Market: USA\nIR: 20%\nLOI: 15 min\nthis is a b2b study"
	rec := postJSON(t, a.router(), "/v1/submit", map[string]string{"body": body})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Quotes []pricing.Response `json:"quotes"`
		BidIDs []string           `json:"bid_ids"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Quotes, 1)
	assert.Equal(t, pricing.SourceB2BCover, resp.Quotes[0].Source)
	require.Len(t, resp.BidIDs, 1)

	bids, err := a.store.ListBids(context.Background(), store.BidFilter{})
	require.NoError(t, err)
	require.Len(t, bids, 1)
	assert.Equal(t, "3", bids[0].PredictedPrice)
	assert.Equal(t, "b2b_cover", bids[0].PriceSource)
}

// A record naming a client absent from the client table still persists, just
// without a price.
func TestHandleSubmitUnpricedRecord(t *testing.T) {
	a := newTestAPI(t)

	body := "From: priya@acmepanel.com\nMarket: USA\nIR: 20%\nLOI: 15 min\nthis is a b2b study"
	rec := postJSON(t, a.router(), "/v1/submit", map[string]string{"body": body})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Quotes []pricing.Response `json:"quotes"`
		BidIDs []string           `json:"bid_ids"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Quotes, 1)
	assert.Equal(t, "unpriced", resp.Quotes[0].Status)
	require.Len(t, resp.BidIDs, 1)

	bids, err := a.store.ListBids(context.Background(), store.BidFilter{})
	require.NoError(t, err)
	require.Len(t, bids, 1)
	assert.Equal(t, "acmepanel", bids[0].Fields["client_name"])
	assert.Equal(t, "priya@acmepanel.com", bids[0].Sender)
}

func TestHandleListBids(t *testing.T) {
	a := newTestAPI(t)

	postJSON(t, a.router(), "/v1/submit", map[string]string{
		"body": "Market: USA\nIR: 20%\nLOI: 10\nb2b audience",
	})

	req := httptest.NewRequest(http.MethodGet, "/v1/bids?limit=10", nil)
	rec := httptest.NewRecorder()
	a.router().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp struct {
		Bids []json.RawMessage `json:"bids"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Len(t, resp.Bids, 1)
}

func TestHandleListBidsBadLimit(t *testing.T) {
	a := newTestAPI(t)

	req := httptest.NewRequest(http.MethodGet, "/v1/bids?limit=nope", nil)
	rec := httptest.NewRecorder()
	a.router().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
