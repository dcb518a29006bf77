package web

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"leaf-doctor/internal/domain/entity"
)

type diseaseResponse struct {
	Label       string   `json:"label"`
	Slug        string   `json:"slug"`
	Description string   `json:"description"`
	Treatment   []string `json:"treatment"`
	ImageURL    string   `json:"image_url,omitempty"`
}

type diagnosisResponse struct {
	ID            string             `json:"id"`
	CreatedAt     time.Time          `json:"created_at"`
	Source        entity.Source      `json:"source"`
	Filename      string             `json:"filename,omitempty"`
	Label         string             `json:"label"`
	Confidence    float32            `json:"confidence"`
	Probabilities map[string]float32 `json:"probabilities"`
	Threshold     float32            `json:"threshold"`
	Recognized    bool               `json:"recognized"`
	Message       string             `json:"message"`
	Disease       *diseaseResponse   `json:"disease,omitempty"`
}

// ErrorResponse тело ответа с ошибкой.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func toDiseaseResponse(d entity.Disease) diseaseResponse {
	resp := diseaseResponse{
		Label:       d.Label,
		Slug:        d.Slug(),
		Description: d.Description,
		Treatment:   d.Treatment,
	}
	if d.Image != "" {
		resp.ImageURL = "/images/" + d.Image
	}
	return resp
}

func toDiagnosisResponse(d *entity.Diagnosis) diagnosisResponse {
	resp := diagnosisResponse{
		ID:            d.ID,
		CreatedAt:     d.CreatedAt,
		Source:        d.Source,
		Filename:      d.Filename,
		Label:         d.Prediction.Label,
		Confidence:    d.Prediction.Confidence,
		Probabilities: d.Prediction.Probabilities,
		Threshold:     d.Threshold,
		Recognized:    d.Accepted,
		Message:       resultHeadline(d),
	}
	if d.Disease != nil {
		info := toDiseaseResponse(*d.Disease)
		resp.Disease = &info
	}
	return resp
}

func (s *Server) handleAPIDiagnose(w http.ResponseWriter, r *http.Request) {
	in, err := readInput(w, r, s.opts.MaxUploadBytes)
	if err != nil {
		s.sendError(w, err)
		return
	}

	d, err := s.opts.Diagnosis.Diagnose(r.Context(), in)
	if err != nil {
		s.sendError(w, err)
		return
	}

	respondJSON(w, toDiagnosisResponse(d), http.StatusOK)
}

func (s *Server) handleAPIDiseases(w http.ResponseWriter, r *http.Request) {
	list := s.opts.Diseases.List()
	resp := make([]diseaseResponse, 0, len(list))
	for _, d := range list {
		resp = append(resp, toDiseaseResponse(d))
	}
	respondJSON(w, resp, http.StatusOK)
}

func (s *Server) handleAPIDisease(w http.ResponseWriter, r *http.Request) {
	d, err := s.opts.Diseases.Get(mux.Vars(r)["key"])
	if err != nil {
		s.sendError(w, err)
		return
	}
	respondJSON(w, toDiseaseResponse(d), http.StatusOK)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	resp := map[string]any{
		"status":       "ok",
		"model_loaded": s.opts.Diagnosis.Ready(),
		"threshold":    s.opts.Diagnosis.Threshold(),
		"diseases":     len(s.opts.Diseases.List()),
	}
	if s.opts.HealthDetails != nil {
		for k, v := range s.opts.HealthDetails() {
			resp[k] = v
		}
	}
	if !s.opts.Diagnosis.Ready() {
		resp["status"] = "degraded"
	}
	respondJSON(w, resp, http.StatusOK)
}

func (s *Server) sendError(w http.ResponseWriter, err error) {
	code, status := classifyError(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("Request failed", "code", code, "error", err)
	}
	respondJSON(w, ErrorResponse{Code: code, Message: err.Error()}, status)
}

func respondJSON(w http.ResponseWriter, data any, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
