package companion

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/mux"
	"github.com/mouthwatch/platform/pkg/analysis"
	"github.com/mouthwatch/platform/pkg/assistant"
	"github.com/mouthwatch/platform/pkg/clinics"
	"github.com/mouthwatch/platform/pkg/screening"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubAnalyzer struct {
	answers screening.Answers
	err     error
}

func (s *stubAnalyzer) Analyze(ctx context.Context, img analysis.Image, answers screening.Answers) (analysis.Result, error) {
	s.answers = answers
	if s.err != nil {
		return analysis.Result{}, s.err
	}
	return analysis.Result{Color: "yellow", Label: "Moderate Risk", CombinedScore: 48.2}, nil
}

type stubAssistant struct {
	reply string
	err   error
}

func (s stubAssistant) Reply(ctx context.Context, history []assistant.Message, input string) (string, error) {
	if strings.TrimSpace(input) == "" {
		return "", assistant.ErrEmptyInput
	}
	return s.reply, s.err
}

func newRouter(a Analyzer, c Assistant) *mux.Router {
	r := mux.NewRouter()
	NewHandler(a, c, clinics.DefaultCatalog()).Register(r)
	return r
}

func multipartBody(t *testing.T, image []byte, riskFactors string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	if image != nil {
		part, err := w.CreateFormFile("image", "lesion.jpg")
		require.NoError(t, err)
		_, err = part.Write(image)
		require.NoError(t, err)
	}
	if riskFactors != "" {
		require.NoError(t, w.WriteField("risk_factors", riskFactors))
	}
	require.NoError(t, w.Close())
	return &buf, w.FormDataContentType()
}

func TestAnalyzeRelaysAnswers(t *testing.T) {
	stub := &stubAnalyzer{}
	r := newRouter(stub, stubAssistant{})

	body, ct := multipartBody(t, []byte("jpeg"), `{"tobacco":"daily","symptoms":["pain","sore"]}`)
	req := httptest.NewRequest(http.MethodPost, "/analyze", body)
	req.Header.Set("Content-Type", ct)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, screening.Answers{"tobacco": {"daily"}, "symptoms": {"pain", "sore"}}, stub.answers)
	assert.Contains(t, rec.Body.String(), `"combined_score":48.2`)
}

func TestAnalyzeFailureReturnsFallback(t *testing.T) {
	r := newRouter(&stubAnalyzer{err: errors.New("timeout")}, stubAssistant{})

	body, ct := multipartBody(t, []byte("jpeg"), "")
	req := httptest.NewRequest(http.MethodPost, "/analyze", body)
	req.Header.Set("Content-Type", ct)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Contains(t, rec.Body.String(), analysis.FallbackMessage)
}

func TestAnalyzeRejectsBadForms(t *testing.T) {
	r := newRouter(&stubAnalyzer{}, stubAssistant{})

	for name, tc := range map[string]struct {
		image []byte
		rf    string
	}{
		"no image":       {image: nil, rf: `{"tobacco":"daily"}`},
		"bad json":       {image: []byte("x"), rf: `{not json`},
		"unknown answer": {image: []byte("x"), rf: `{"tobacco":"weekly"}`},
	} {
		body, ct := multipartBody(t, tc.image, tc.rf)
		req := httptest.NewRequest(http.MethodPost, "/analyze", body)
		req.Header.Set("Content-Type", ct)
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code, name)
	}
}

func TestAnalyzeRejectsOversizedImage(t *testing.T) {
	stub := &stubAnalyzer{}
	h := NewHandler(stub, stubAssistant{}, clinics.DefaultCatalog())
	h.maxImageBytes = 8
	r := mux.NewRouter()
	h.Register(r)

	send := func(image []byte) int {
		body, ct := multipartBody(t, image, "")
		req := httptest.NewRequest(http.MethodPost, "/analyze", body)
		req.Header.Set("Content-Type", ct)
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)
		return rec.Code
	}

	assert.Equal(t, http.StatusRequestEntityTooLarge, send([]byte("123456789")))
	assert.Nil(t, stub.answers)
	assert.Equal(t, http.StatusOK, send([]byte("12345678")))
}

func TestChatFallback(t *testing.T) {
	r := newRouter(&stubAnalyzer{}, stubAssistant{err: errors.New("quota")})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/chat", strings.NewReader(`{"message":"hello"}`)))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Message  assistant.Message `json:"message"`
		Fallback bool              `json:"fallback"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Fallback)
	assert.Equal(t, assistant.FallbackReply, resp.Message.Content)

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/chat", strings.NewReader(`{"message":"  "}`)))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestClinicsOpenFilter(t *testing.T) {
	r := newRouter(&stubAnalyzer{}, stubAssistant{})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/clinics?open=true", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Items []clinicView `json:"items"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Items, 3)
	assert.Equal(t, "https://maps.google.com/?q=123%20King%20St%20W%2C%20Toronto", resp.Items[0].DirectionsURL)

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/clinics?open=maybe", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestTrendEndpoint(t *testing.T) {
	r := newRouter(&stubAnalyzer{}, stubAssistant{})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/progress/trend",
		strings.NewReader(`{"history":[{"id":"1","score":67.6},{"id":"2","score":45.2}]}`)))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"direction":"increasing"`)
}

func TestAssessEndpoint(t *testing.T) {
	r := newRouter(&stubAnalyzer{}, stubAssistant{})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/intake/assess",
		strings.NewReader(`{"answers":{"prior_cancer":["yes"],"hpv":["yes"],"tobacco":["daily"]}}`)))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"color":"red"`)
}
