package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"golang.org/x/sync/errgroup"

	"wallet-risk-lab/internal/alert"
	"wallet-risk-lab/internal/analysis"
	"wallet-risk-lab/internal/domain"
	"wallet-risk-lab/internal/features"
	"wallet-risk-lab/internal/ingestion"
	"wallet-risk-lab/internal/scoring"
)

// topFactorCount is how many factors /api/analyze reports.
const topFactorCount = 3

type addressRequest struct {
	Address string `json:"address"`
}

type alertRequest struct {
	Message string `json:"message"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// FetchStats describes how much history backs a feature record.
type FetchStats struct {
	Transactions int                  `json:"transactions"`
	Transfers    int                  `json:"transfers"`
	Pages        int                  `json:"pages"`
	Partial      bool                 `json:"partial"`
	StopReason   ingestion.StopReason `json:"stop_reason"`
}

// FeaturesResponse is the body of POST /api/features.
type FeaturesResponse struct {
	Address  string          `json:"address"`
	Features features.Record `json:"features"`
	Stats    FetchStats      `json:"stats"`
}

// AnalyzeResponse is the body of POST /api/analyze.
type AnalyzeResponse struct {
	Address           string             `json:"address"`
	Prediction        string             `json:"prediction"`
	ProbabilityFraud  float64            `json:"probability_fraud"`
	Confidence        float64            `json:"confidence"`
	RiskLevel         scoring.Level      `json:"risk_level"`
	Explanation       string             `json:"explanation,omitempty"`
	FeatureImportance map[string]float64 `json:"feature_importance,omitempty"`
	TopFactors        []scoring.Factor   `json:"top_factors"`
	Features          features.Record    `json:"features"`
	Stats             FetchStats         `json:"stats"`
}

// AlertResponse is the body of POST /api/send-alert.
type AlertResponse struct {
	Success   bool   `json:"success"`
	Message   string `json:"message"`
	Delivered bool   `json:"delivered"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleFeatures(w http.ResponseWriter, r *http.Request) {
	var req addressRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	result, err := s.features.Features(r.Context(), req.Address)
	if err != nil {
		s.writePipelineError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, FeaturesResponse{
		Address:  result.Address,
		Features: result.Record,
		Stats:    statsOf(result),
	})
}

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	var req addressRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	address, err := analysis.NormalizeAddress(req.Address)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if s.scorer == nil {
		writeError(w, http.StatusInternalServerError, "scoring API is not configured")
		return
	}

	g, ctx := errgroup.WithContext(r.Context())
	var (
		result     *analysis.Result
		assessment *scoring.Assessment
	)
	g.Go(func() error {
		var err error
		result, err = s.features.Features(ctx, address)
		return err
	})
	g.Go(func() error {
		var err error
		assessment, err = s.scorer.Assess(ctx, address)
		return err
	})
	if err := g.Wait(); err != nil {
		s.writePipelineError(w, err)
		return
	}

	resp := AnalyzeResponse{
		Address:          address,
		Prediction:       assessment.Prediction.Label,
		ProbabilityFraud: assessment.Prediction.ProbabilityFraud,
		Confidence:       assessment.Prediction.Confidence,
		RiskLevel:        scoring.RiskLevel(assessment.Prediction.Label),
		TopFactors:       []scoring.Factor{},
		Features:         result.Record,
		Stats:            statsOf(result),
	}
	if e := assessment.Explanation; e != nil {
		resp.Explanation = e.Summary
		resp.FeatureImportance = e.FeatureImportance
		if top := scoring.TopFactors(e.FeatureImportance, topFactorCount); top != nil {
			resp.TopFactors = top
		}
	}

	s.logger.Infow("wallet analyzed",
		"address", address,
		"prediction", resp.Prediction,
		"probability_fraud", resp.ProbabilityFraud,
	)
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleTransactions(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	if strings.TrimSpace(query.Get("address")) == "" {
		writeError(w, http.StatusBadRequest, "Missing address parameter")
		return
	}
	address, err := analysis.NormalizeAddress(query.Get("address"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	page := 0
	if raw := query.Get("page"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, "invalid page parameter")
			return
		}
		page = n
	}

	result, err := s.pager.FetchTransactionPage(r.Context(), address, page, RecentTransactionsPageSize)
	if err != nil {
		s.logger.Errorw("transaction page failed", "address", address, "page", page, "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to fetch transactions")
		return
	}

	items := result.Items
	if items == nil {
		items = []domain.Transaction{}
	}
	writeJSON(w, http.StatusOK, items)
}

func (s *Server) handleSendAlert(w http.ResponseWriter, r *http.Request) {
	var req alertRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	res, err := s.alerts.Send(r.Context(), req.Message)
	switch {
	case errors.Is(err, alert.ErrEmptyMessage):
		writeError(w, http.StatusBadRequest, "Message is required")
		return
	case err != nil:
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, AlertResponse{
		Success:   true,
		Message:   "Alert processing initiated",
		Delivered: res.Delivered,
	})
}

// writePipelineError maps input errors to 400 and upstream failures to 502.
// Upstream error text is logged, never returned.
func (s *Server) writePipelineError(w http.ResponseWriter, err error) {
	if analysis.IsInputError(err) {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	s.logger.Errorw("analysis failed", "error", err)

	var scoringErr *scoring.APIError
	if errors.As(err, &scoringErr) {
		writeError(w, http.StatusBadGateway, "Scoring API request failed")
		return
	}
	writeError(w, http.StatusBadGateway, "Failed to fetch wallet data")
}

func statsOf(result *analysis.Result) FetchStats {
	return FetchStats{
		Transactions: result.TransactionCount,
		Transfers:    result.TransferCount,
		Pages:        result.PagesFetched,
		Partial:      result.Partial,
		StopReason:   result.StopReason,
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}
