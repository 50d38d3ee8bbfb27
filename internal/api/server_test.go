package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wallet-risk-lab/internal/alert"
	"wallet-risk-lab/internal/analysis"
	"wallet-risk-lab/internal/covalent"
	"wallet-risk-lab/internal/domain"
	"wallet-risk-lab/internal/features"
	"wallet-risk-lab/internal/ingestion"
	"wallet-risk-lab/internal/observability"
	"wallet-risk-lab/internal/scoring"
)

const wallet = "0x742d35Cc6634C0532925a3b844Bc454e4438f44e"

type fakeFeatures struct {
	err error
}

func (f *fakeFeatures) Features(ctx context.Context, address string) (*analysis.Result, error) {
	address, err := analysis.NormalizeAddress(address)
	if err != nil {
		return nil, err
	}
	if f.err != nil {
		return nil, f.err
	}
	record := features.Compute(address, []domain.Transaction{
		{Timestamp: time.Unix(0, 0), From: address, To: "0xbb", Value: "1000000000000000000"},
	}, nil, nil)
	return &analysis.Result{
		Address:          address,
		Record:           record,
		TransactionCount: 1,
		PagesFetched:     1,
		StopReason:       ingestion.StopComplete,
	}, nil
}

type fakePager struct {
	gotPage, gotSize int
	err              error
}

func (f *fakePager) FetchTransactionPage(ctx context.Context, address string, page, pageSize int) (*covalent.TransactionPage, error) {
	f.gotPage, f.gotSize = page, pageSize
	if f.err != nil {
		return nil, f.err
	}
	return &covalent.TransactionPage{Number: page, Items: []domain.Transaction{
		{Hash: "0x1", From: address, To: "0xbb", Value: "1"},
	}}, nil
}

type fakeScorer struct {
	assessment *scoring.Assessment
	err        error
}

func (f *fakeScorer) Assess(ctx context.Context, address string) (*scoring.Assessment, error) {
	return f.assessment, f.err
}

type fakeSender struct {
	got string
	err error
}

func (f *fakeSender) Send(ctx context.Context, message string) (*alert.SendResult, error) {
	if message == "" {
		return nil, alert.ErrEmptyMessage
	}
	f.got = message
	if f.err != nil {
		return nil, f.err
	}
	return &alert.SendResult{Delivered: true}, nil
}

func newTestServer(opts Options) http.Handler {
	if opts.Features == nil {
		opts.Features = &fakeFeatures{}
	}
	if opts.Pager == nil {
		opts.Pager = &fakePager{}
	}
	if opts.Alerts == nil {
		opts.Alerts = &fakeSender{}
	}
	return NewServer(opts).Router()
}

func do(t *testing.T, h http.Handler, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, bytes.NewReader([]byte(body)))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func errorOf(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body errorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body.Error
}

func TestHealth(t *testing.T) {
	rec := do(t, newTestServer(Options{}), http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestMetricsRoute(t *testing.T) {
	m := observability.NewMetrics("test", prometheus.NewRegistry())
	m.RecordAlert("sent")

	rec := do(t, newTestServer(Options{Metrics: m}), http.MethodGet, "/metrics", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "test_alert_sent_total")
}

func TestFeatures(t *testing.T) {
	rec := do(t, newTestServer(Options{}), http.MethodPost, "/api/features", `{"address":"`+wallet+`"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var body map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))

	var record map[string]interface{}
	require.NoError(t, json.Unmarshal(body["features"], &record))
	assert.Equal(t, wallet, record["Address"])
	assert.Equal(t, 1.0, record["Sent tnx"])
	assert.Equal(t, 1.0, record["total Ether sent"])
	assert.Nil(t, record["ERC20 most sent token type"])

	var stats FetchStats
	require.NoError(t, json.Unmarshal(body["stats"], &stats))
	assert.Equal(t, 1, stats.Transactions)
	assert.Equal(t, ingestion.StopComplete, stats.StopReason)
}

func TestFeatures_InputErrors(t *testing.T) {
	h := newTestServer(Options{})

	rec := do(t, h, http.MethodPost, "/api/features", `{}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, analysis.ErrMissingAddress.Error(), errorOf(t, rec))

	rec = do(t, h, http.MethodPost, "/api/features", `{"address":"0x12"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, h, http.MethodPost, "/api/features", `not json`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestFeatures_UpstreamError(t *testing.T) {
	h := newTestServer(Options{Features: &fakeFeatures{err: errors.New("fetch wallet data: balances down")}})

	rec := do(t, h, http.MethodPost, "/api/features", `{"address":"`+wallet+`"}`)
	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Equal(t, "Failed to fetch wallet data", errorOf(t, rec))
	assert.NotContains(t, rec.Body.String(), "balances down")
}

func TestFeatures_MethodNotAllowed(t *testing.T) {
	rec := do(t, newTestServer(Options{}), http.MethodGet, "/api/features", "")
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestAnalyze(t *testing.T) {
	scorer := &fakeScorer{assessment: &scoring.Assessment{
		Prediction: &scoring.Prediction{Address: wallet, Label: scoring.LabelFraud, ProbabilityFraud: 0.91, Confidence: 0.91},
		Explanation: &scoring.Explanation{
			Summary:           "High outgoing velocity",
			FeatureImportance: map[string]float64{"Sent tnx": 0.5, "FLAG": 0.01, "avg val sent": -0.7, "Received Tnx": 0.2},
		},
	}}
	h := newTestServer(Options{Scorer: scorer})

	rec := do(t, h, http.MethodPost, "/api/analyze", `{"address":"`+wallet+`"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp AnalyzeResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, wallet, resp.Address)
	assert.Equal(t, "Fraud", resp.Prediction)
	assert.Equal(t, 0.91, resp.ProbabilityFraud)
	assert.Equal(t, scoring.LevelHigh, resp.RiskLevel)
	assert.Equal(t, "High outgoing velocity", resp.Explanation)
	require.Len(t, resp.TopFactors, 3)
	assert.Equal(t, "avg val sent", resp.TopFactors[0].Name)
	assert.Equal(t, "Sent tnx", resp.TopFactors[1].Name)
	assert.Equal(t, "Received Tnx", resp.TopFactors[2].Name)
	assert.Equal(t, 1, resp.Features.SentTnx)
}

func TestAnalyze_ScoringNotConfigured(t *testing.T) {
	rec := do(t, newTestServer(Options{}), http.MethodPost, "/api/analyze", `{"address":"`+wallet+`"}`)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, errorOf(t, rec), "not configured")
}

func TestAnalyze_MissingAddress(t *testing.T) {
	rec := do(t, newTestServer(Options{Scorer: &fakeScorer{}}), http.MethodPost, "/api/analyze", `{"address":""}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAnalyze_ScoringError(t *testing.T) {
	scorer := &fakeScorer{err: &scoring.APIError{Endpoint: "analyze", StatusCode: 500, Detail: "model not loaded"}}
	rec := do(t, newTestServer(Options{Scorer: scorer}), http.MethodPost, "/api/analyze", `{"address":"`+wallet+`"}`)
	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Equal(t, "Scoring API request failed", errorOf(t, rec))
	assert.NotContains(t, rec.Body.String(), "model not loaded")
}

func TestTransactions(t *testing.T) {
	pager := &fakePager{}
	h := newTestServer(Options{Pager: pager})

	rec := do(t, h, http.MethodGet, "/api/transactions?address="+wallet+"&page=3", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 3, pager.gotPage)
	assert.Equal(t, RecentTransactionsPageSize, pager.gotSize)

	var items []domain.Transaction
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &items))
	require.Len(t, items, 1)
	assert.Equal(t, "0x1", items[0].Hash)
}

func TestTransactions_BareHexAddress(t *testing.T) {
	pager := &fakePager{}
	h := newTestServer(Options{Pager: pager})

	rec := do(t, h, http.MethodGet, "/api/transactions?address="+wallet[2:], "")
	require.Equal(t, http.StatusOK, rec.Code)

	var items []domain.Transaction
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &items))
	require.Len(t, items, 1)
	assert.Equal(t, wallet, items[0].From)
}

func TestTransactions_Errors(t *testing.T) {
	h := newTestServer(Options{Pager: &fakePager{err: fmt.Errorf("boom")}})

	rec := do(t, h, http.MethodGet, "/api/transactions", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Missing address parameter", errorOf(t, rec))

	rec = do(t, h, http.MethodGet, "/api/transactions?address=0x1234", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, errorOf(t, rec), analysis.ErrInvalidAddress.Error())

	rec = do(t, h, http.MethodGet, "/api/transactions?address="+wallet+"&page=-1", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, h, http.MethodGet, "/api/transactions?address="+wallet, "")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "Failed to fetch transactions", errorOf(t, rec))
}

func TestSendAlert(t *testing.T) {
	sender := &fakeSender{}
	h := newTestServer(Options{Alerts: sender})

	rec := do(t, h, http.MethodPost, "/api/send-alert", `{"message":"wallet flagged"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "wallet flagged", sender.got)

	var resp AlertResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.True(t, resp.Delivered)
	assert.Equal(t, "Alert processing initiated", resp.Message)
}

func TestSendAlert_Errors(t *testing.T) {
	h := newTestServer(Options{Alerts: &fakeSender{err: errors.New("telegram: Bad Request: chat not found (status 400)")}})

	rec := do(t, h, http.MethodPost, "/api/send-alert", `{"message":""}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Message is required", errorOf(t, rec))

	rec = do(t, h, http.MethodPost, "/api/send-alert", `{"message":"hi"}`)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.True(t, strings.HasPrefix(errorOf(t, rec), "telegram:"))
}
