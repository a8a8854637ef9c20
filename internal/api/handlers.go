package api

import (
	"encoding/json"
	"io"
	"net/http"

	"go.uber.org/zap"

	"github.com/cardiometrix/riskd/internal/ml"
	"github.com/cardiometrix/riskd/internal/risk"
)

// request bodies beyond this are rejected before validation; 50k train rows
// of 13 features fit comfortably
const maxBodyBytes = 64 << 20

type healthResponse struct {
	OK           bool   `json:"ok"`
	ModelLoaded  bool   `json:"model_loaded"`
	ModelVersion string `json:"model_version"`
}

type scoreResponse struct {
	Risk         float64       `json:"risk"`
	Band         string        `json:"band"`
	Drivers      []risk.Driver `json:"drivers"`
	ModelVersion string        `json:"model_version"`
	AsOfDate     string        `json:"as_of_date"`
}

type batchScoreRequest struct {
	Items []risk.Features `json:"items"`
}

type batchScoreResponse struct {
	Items []scoreResponse `json:"items"`
}

type trainRow struct {
	Features risk.Features `json:"features"`
	Label    float64       `json:"label"`
}

type trainRequest struct {
	Rows []trainRow `json:"rows"`
}

type errorResponse struct {
	Detail string `json:"detail"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, healthResponse{
		OK:           true,
		ModelLoaded:  s.manager.ModelLoaded(),
		ModelVersion: s.manager.ModelVersion(),
	})
}

func (s *Server) handleScore(w http.ResponseWriter, r *http.Request) {
	body, ok := s.readBody(w, r)
	if !ok {
		return
	}
	if err := validateBody(scoreSchema, body); err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}

	var features risk.Features
	if err := json.Unmarshal(body, &features); err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}
	if err := features.Validate(); err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}

	result, err := s.manager.ScoreOne(&features)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err)
		return
	}

	s.metrics.ObserveScore(result.Band, result.ModelVersion == risk.RuleModelVersion)
	s.writeJSON(w, http.StatusOK, scoreResult(result, features.AsOfDate))
}

func (s *Server) handleScoreBatch(w http.ResponseWriter, r *http.Request) {
	body, ok := s.readBody(w, r)
	if !ok {
		return
	}
	if err := validateBody(batchSchema, body); err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}

	var req batchScoreRequest
	if err := json.Unmarshal(body, &req); err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}
	for i := range req.Items {
		if err := req.Items[i].Validate(); err != nil {
			s.writeError(w, http.StatusBadRequest, err)
			return
		}
	}

	// results are order-preserving: items[i] produces resp.Items[i], each
	// tagged with its own input's date
	resp := batchScoreResponse{Items: make([]scoreResponse, 0, len(req.Items))}
	for i := range req.Items {
		result, err := s.manager.ScoreOne(&req.Items[i])
		if err != nil {
			s.writeError(w, http.StatusInternalServerError, err)
			return
		}
		s.metrics.ObserveScore(result.Band, result.ModelVersion == risk.RuleModelVersion)
		resp.Items = append(resp.Items, scoreResult(result, req.Items[i].AsOfDate))
	}
	s.writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleTrain(w http.ResponseWriter, r *http.Request) {
	body, ok := s.readBody(w, r)
	if !ok {
		return
	}
	if err := validateBody(trainSchema, body); err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}

	var req trainRequest
	if err := json.Unmarshal(body, &req); err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}

	rows := make([]ml.TrainRow, len(req.Rows))
	for i := range req.Rows {
		if err := req.Rows[i].Features.Validate(); err != nil {
			s.writeError(w, http.StatusBadRequest, err)
			return
		}
		rows[i] = ml.TrainRow{Features: &req.Rows[i].Features, Label: req.Rows[i].Label}
	}

	summary, err := s.manager.TrainAndSave(rows)
	if err != nil {
		s.metrics.ObserveTraining(false)
		if ml.IsValidationError(err) {
			s.writeError(w, http.StatusBadRequest, err)
		} else {
			s.writeError(w, http.StatusInternalServerError, err)
		}
		return
	}

	s.metrics.ObserveTraining(true)
	s.writeJSON(w, http.StatusOK, summary)
}

func scoreResult(result *ml.ScoreResult, asOfDate string) scoreResponse {
	return scoreResponse{
		Risk:         result.Risk,
		Band:         result.Band,
		Drivers:      result.Drivers,
		ModelVersion: result.ModelVersion,
		AsOfDate:     asOfDate,
	}
}

func (s *Server) readBody(w http.ResponseWriter, r *http.Request) ([]byte, bool) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return nil, false
	}
	return body, true
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.logger.Error("write response", zap.Error(err))
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, err error) {
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", zap.Int("status", status), zap.Error(err))
	}
	s.writeJSON(w, status, errorResponse{Detail: err.Error()})
}
