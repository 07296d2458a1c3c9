// Package analysis calls the image-analysis service that scores a lesion
// photo together with the intake answers.
package analysis

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"
	"time"

	"github.com/mouthwatch/platform/pkg/common/config"
	"github.com/mouthwatch/platform/pkg/common/logger"
	"github.com/mouthwatch/platform/pkg/gateway/httpclient"
	"github.com/mouthwatch/platform/pkg/observability/metrics"
	"github.com/mouthwatch/platform/pkg/screening"
)

const (
	serviceName     = "analysis"
	defaultFilename = "lesion.jpg"
	maxResponseSize = 1 << 20

	// FallbackMessage is shown to the patient whenever analysis fails.
	FallbackMessage = "Please check your connection and try again."
)

var (
	ErrNoImage  = errors.New("no image provided")
	ErrNoResult = errors.New("analysis response carried no result")
)

// Result mirrors the analysis service's result object.
type Result struct {
	Color           string             `json:"color"`
	Label           string             `json:"label"`
	Message         string             `json:"message"`
	Urgency         string             `json:"urgency"`
	CombinedScore   float64            `json:"combined_score"`
	MLConfidence    float64            `json:"ml_confidence"`
	MLPrediction    string             `json:"ml_prediction"`
	MLRiskScore     float64            `json:"ml_risk_score"`
	RiskFactorScore float64            `json:"risk_factor_score"`
	AllPredictions  map[string]float64 `json:"all_predictions"`
	Disclaimer      string             `json:"disclaimer"`
}

type response struct {
	Success bool    `json:"success"`
	Result  *Result `json:"result"`
	Error   string  `json:"error"`
}

// Image is one uploaded photo.
type Image struct {
	Filename    string
	ContentType string
	Data        []byte
}

type Client struct {
	baseURL    string
	http       *http.Client
	attempts   int
	retryDelay time.Duration
}

func NewClient(cfg *config.Config) *Client {
	return &Client{
		baseURL:    strings.TrimRight(cfg.AnalysisBaseURL, "/"),
		http:       httpclient.NewAuthorized(cfg.AnalysisTimeout, cfg.AnalysisToken),
		attempts:   cfg.OutboundRetryAttempts,
		retryDelay: cfg.OutboundRetryDelay,
	}
}

// Analyze uploads img with the intake answers and returns the scored result.
func (c *Client) Analyze(ctx context.Context, img Image, answers screening.Answers) (Result, error) {
	if len(img.Data) == 0 {
		return Result{}, ErrNoImage
	}
	body, contentType, err := encodeForm(img, answers)
	if err != nil {
		return Result{}, err
	}

	var out response
	err = httpclient.Retry(ctx, c.attempts, c.retryDelay, func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/analyze", bytes.NewReader(body))
		if err != nil {
			return err
		}
		req.Header.Set("Content-Type", contentType)

		resp, err := c.http.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		if err := httpclient.CheckStatus(serviceName, resp); err != nil {
			_, _ = io.Copy(io.Discard, resp.Body)
			return err
		}
		out = response{}
		return json.NewDecoder(io.LimitReader(resp.Body, maxResponseSize)).Decode(&out)
	})
	if err != nil {
		metrics.ExternalFailures.WithLabelValues(serviceName).Inc()
		logger.Log.WithError(err).Warn("image analysis failed")
		return Result{}, fmt.Errorf("analyze: %w", err)
	}
	if !out.Success || out.Result == nil {
		metrics.ExternalFailures.WithLabelValues(serviceName).Inc()
		if out.Error != "" {
			return Result{}, fmt.Errorf("analyze: %s: %w", out.Error, ErrNoResult)
		}
		return Result{}, ErrNoResult
	}
	return *out.Result, nil
}

func encodeForm(img Image, answers screening.Answers) ([]byte, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	filename := img.Filename
	if filename == "" {
		filename = defaultFilename
	}
	contentType := img.ContentType
	if contentType == "" {
		contentType = "image/jpeg"
	}
	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="image"; filename=%q`, filename))
	header.Set("Content-Type", contentType)
	part, err := w.CreatePart(header)
	if err != nil {
		return nil, "", err
	}
	if _, err := part.Write(img.Data); err != nil {
		return nil, "", err
	}

	factors, err := json.Marshal(answers.Wire())
	if err != nil {
		return nil, "", err
	}
	if err := w.WriteField("risk_factors", string(factors)); err != nil {
		return nil, "", err
	}
	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return buf.Bytes(), w.FormDataContentType(), nil
}
