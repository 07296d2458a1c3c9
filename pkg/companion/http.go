// Package companion serves the patient app: intake, image analysis, chat,
// clinic lookup and progress.
package companion

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/mouthwatch/platform/pkg/analysis"
	"github.com/mouthwatch/platform/pkg/assistant"
	"github.com/mouthwatch/platform/pkg/clinics"
	"github.com/mouthwatch/platform/pkg/common/logger"
	"github.com/mouthwatch/platform/pkg/common/models"
	"github.com/mouthwatch/platform/pkg/screening"
)

const maxImageBytes = 10 << 20

type Analyzer interface {
	Analyze(ctx context.Context, img analysis.Image, answers screening.Answers) (analysis.Result, error)
}

type Assistant interface {
	Reply(ctx context.Context, history []assistant.Message, input string) (string, error)
}

type Handler struct {
	analyzer      Analyzer
	assistant     Assistant
	clinics       clinics.Catalog
	maxImageBytes int64
}

func NewHandler(analyzer Analyzer, chat Assistant, catalog clinics.Catalog) *Handler {
	return &Handler{analyzer: analyzer, assistant: chat, clinics: catalog, maxImageBytes: maxImageBytes}
}

func (h *Handler) Register(r *mux.Router) {
	r.HandleFunc("/intake/questions", h.handleQuestions).Methods(http.MethodGet)
	r.HandleFunc("/intake/assess", h.handleAssess).Methods(http.MethodPost)
	r.HandleFunc("/analyze", h.handleAnalyze).Methods(http.MethodPost)
	r.HandleFunc("/chat", h.handleGreeting).Methods(http.MethodGet)
	r.HandleFunc("/chat", h.handleChat).Methods(http.MethodPost)
	r.HandleFunc("/clinics", h.handleClinics).Methods(http.MethodGet)
	r.HandleFunc("/progress/trend", h.handleTrend).Methods(http.MethodPost)
}

type assessRequest struct {
	Answers screening.Answers `json:"answers"`
}

type chatRequest struct {
	History []assistant.Message `json:"history"`
	Message string              `json:"message"`
}

type trendRequest struct {
	History []models.Scan `json:"history"`
}

type clinicView struct {
	clinics.Clinic
	DirectionsURL string `json:"directionsUrl"`
	CallURL       string `json:"callUrl"`
}

func (h *Handler) handleQuestions(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{"items": screening.Questions()})
}

func (h *Handler) handleAssess(w http.ResponseWriter, r *http.Request) {
	var req assessRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}
	assessment, err := screening.Assess(req.Answers)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"assessment": assessment})
}

// handleAnalyze accepts the same multipart form the analysis service takes
// and relays it.
func (h *Handler) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(h.maxImageBytes); err != nil {
		http.Error(w, "invalid multipart form", http.StatusBadRequest)
		return
	}
	file, header, err := r.FormFile("image")
	if err != nil {
		http.Error(w, analysis.ErrNoImage.Error(), http.StatusBadRequest)
		return
	}
	defer file.Close()
	if header.Size > h.maxImageBytes {
		http.Error(w, "image too large", http.StatusRequestEntityTooLarge)
		return
	}
	data, err := io.ReadAll(io.LimitReader(file, h.maxImageBytes+1))
	if err != nil {
		http.Error(w, "failed to read image", http.StatusBadRequest)
		return
	}
	if int64(len(data)) > h.maxImageBytes {
		http.Error(w, "image too large", http.StatusRequestEntityTooLarge)
		return
	}

	answers := screening.Answers{}
	if raw := r.FormValue("risk_factors"); raw != "" {
		if answers, err = decodeRiskFactors(raw); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
	}
	if err := answers.Validate(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	img := analysis.Image{
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Data:        data,
	}
	result, err := h.analyzer.Analyze(r.Context(), img, answers)
	if err != nil {
		if errors.Is(err, analysis.ErrNoImage) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		writeJSON(w, http.StatusBadGateway, map[string]interface{}{
			"success": false,
			"error":   analysis.FallbackMessage,
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"success": true, "result": result})
}

func (h *Handler) handleGreeting(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{"messages": assistant.Greeting()})
}

func (h *Handler) handleChat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}
	reply, err := h.assistant.Reply(r.Context(), req.History, req.Message)
	fallback := false
	switch {
	case errors.Is(err, assistant.ErrEmptyInput), errors.Is(err, assistant.ErrUnknownRole):
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	case err != nil:
		logger.Log.WithError(err).Debug("chat degraded to fallback reply")
		reply = assistant.FallbackReply
		fallback = true
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"message":  assistant.Message{Role: assistant.RoleAssistant, Content: reply},
		"fallback": fallback,
	})
}

func (h *Handler) handleClinics(w http.ResponseWriter, r *http.Request) {
	list := h.clinics.Clinics
	if raw := r.URL.Query().Get("open"); raw != "" {
		onlyOpen, err := strconv.ParseBool(raw)
		if err != nil {
			http.Error(w, "open must be a boolean", http.StatusBadRequest)
			return
		}
		if onlyOpen {
			list = h.clinics.Open()
		}
	}
	items := make([]clinicView, 0, len(list))
	for _, c := range list {
		items = append(items, clinicView{
			Clinic:        c,
			DirectionsURL: clinics.DirectionsURL(c.Address),
			CallURL:       clinics.CallURL(c.Phone),
		})
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"items": items})
}

func (h *Handler) handleTrend(w http.ResponseWriter, r *http.Request) {
	var req trendRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"trend": screening.TrendOf(req.History)})
}

// decodeRiskFactors accepts the app's shape: strings for single-choice
// questions and string lists for multi-select ones.
func decodeRiskFactors(raw string) (screening.Answers, error) {
	var wire map[string]interface{}
	if err := json.Unmarshal([]byte(raw), &wire); err != nil {
		return nil, errors.New("risk_factors is not valid JSON")
	}
	answers := make(screening.Answers, len(wire))
	for id, v := range wire {
		switch val := v.(type) {
		case string:
			answers[id] = []string{val}
		case []interface{}:
			values := make([]string, 0, len(val))
			for _, item := range val {
				s, ok := item.(string)
				if !ok {
					return nil, errors.New("risk_factors lists must hold strings")
				}
				values = append(values, s)
			}
			answers[id] = values
		default:
			return nil, errors.New("risk_factors values must be strings or string lists")
		}
	}
	return answers, nil
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
