package scoring

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"speakcheck/internal/config"
	"speakcheck/internal/domain"
	"speakcheck/internal/logger"

	"go.uber.org/zap"
)

// Provider protocol field names are fixed by the external service and must
// not be renamed.
type decomposeRequest struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

type decomposeResponse struct {
	ID               string `json:"id"`
	Text             string `json:"text"`
	LetterSyllables  string `json:"syll ltrs"`
	PhonemeSyllables string `json:"syll phns"`
	ErrorCode        int    `json:"error code"`
}

type buildModelRequest struct {
	ID               string `json:"id"`
	Text             string `json:"text"`
	LetterSyllables  string `json:"syll ltrs"`
	PhonemeSyllables string `json:"syll phns"`
}

type buildModelResponse struct {
	ID               string `json:"id"`
	Text             string `json:"text"`
	LetterSyllables  string `json:"syll ltrs"`
	PhonemeSyllables string `json:"syll phns"`
	AcousticModel    string `json:"fst"`
	ErrorCode        int    `json:"error code"`
}

type scoreRequest struct {
	ID               string `json:"id"`
	Text             string `json:"text"`
	LetterSyllables  string `json:"syll ltrs"`
	PhonemeSyllables string `json:"syll phns"`
	AcousticModel    string `json:"fst"`
	AudioBase64      string `json:"wav usr"`
}

type scoreWordDetail struct {
	Word      string    `json:"word"`
	Score     float64   `json:"score"`
	Syllables []float64 `json:"syllables,omitempty"`
	Phonemes  []float64 `json:"phonemes,omitempty"`
}

type scoreDetails struct {
	Words          []scoreWordDetail `json:"words"`
	RecognizedText string            `json:"recognizedText,omitempty"`
}

type scoreResponse struct {
	Score     float64       `json:"score"`
	Details   *scoreDetails `json:"details,omitempty"`
	ErrorCode int           `json:"error code"`
}

// Client implements domain.ScoringProvider against the provider's HTTP/JSON
// protocol. Each operation is a single round trip with its own fixed timeout
// and no automatic retries.
type Client struct {
	httpClient   *http.Client
	baseURL      string
	buildTimeout time.Duration
	scoreTimeout time.Duration
}

// NewClient creates a scoring provider client from config.
func NewClient(cfg config.ScoringConfig) domain.ScoringProvider {
	return &Client{
		httpClient:   &http.Client{},
		baseURL:      cfg.BaseURL,
		buildTimeout: cfg.BuildTimeout,
		scoreTimeout: cfg.ScoreTimeout,
	}
}

// Decompose implements domain.ScoringProvider
func (c *Client) Decompose(ctx context.Context, sentenceID, text string) (*domain.Decomposition, error) {
	req := decomposeRequest{ID: sentenceID, Text: NormalizeText(text)}

	var resp decomposeResponse
	if _, err := c.post(ctx, domain.StageDecompose, "/decompose", c.buildTimeout, req, &resp); err != nil {
		return nil, err
	}
	if resp.ErrorCode != 0 {
		return nil, domain.NewProviderCodeError(domain.StageDecompose, resp.ErrorCode)
	}

	return &domain.Decomposition{
		LetterSyllables:  resp.LetterSyllables,
		PhonemeSyllables: resp.PhonemeSyllables,
	}, nil
}

// BuildModel implements domain.ScoringProvider
func (c *Client) BuildModel(ctx context.Context, sentenceID, text string, dec *domain.Decomposition) (*domain.ReferenceModel, error) {
	req := buildModelRequest{
		ID:               sentenceID,
		Text:             NormalizeText(text),
		LetterSyllables:  dec.LetterSyllables,
		PhonemeSyllables: dec.PhonemeSyllables,
	}

	var resp buildModelResponse
	if _, err := c.post(ctx, domain.StageBuildModel, "/build", c.buildTimeout, req, &resp); err != nil {
		return nil, err
	}
	if resp.ErrorCode != 0 {
		return nil, domain.NewProviderCodeError(domain.StageBuildModel, resp.ErrorCode)
	}

	return &domain.ReferenceModel{
		LetterSyllables:  resp.LetterSyllables,
		PhonemeSyllables: resp.PhonemeSyllables,
		AcousticModel:    resp.AcousticModel,
		GeneratedAt:      time.Now(),
	}, nil
}

// Score implements domain.ScoringProvider
func (c *Client) Score(ctx context.Context, sentenceID, text string, model *domain.ReferenceModel, audioBase64 string) (*domain.ScoreResult, error) {
	req := scoreRequest{
		ID:               sentenceID,
		Text:             NormalizeText(text),
		LetterSyllables:  model.LetterSyllables,
		PhonemeSyllables: model.PhonemeSyllables,
		AcousticModel:    model.AcousticModel,
		AudioBase64:      audioBase64,
	}

	var resp scoreResponse
	raw, err := c.post(ctx, domain.StageScore, "/score", c.scoreTimeout, req, &resp)
	if err != nil {
		return nil, err
	}
	if resp.ErrorCode != 0 {
		return nil, domain.NewProviderCodeError(domain.StageScore, resp.ErrorCode)
	}

	result := &domain.ScoreResult{
		OverallScore: resp.Score,
		Raw:          raw,
	}
	if resp.Details != nil {
		result.RecognizedText = resp.Details.RecognizedText
		result.Words = make([]domain.WordScore, 0, len(resp.Details.Words))
		for _, w := range resp.Details.Words {
			result.Words = append(result.Words, domain.WordScore{
				Word:      w.Word,
				Score:     w.Score,
				Syllables: w.Syllables,
				Phonemes:  w.Phonemes,
			})
		}
	}
	return result, nil
}

// post performs one provider round trip and returns the raw response body.
// Transport-level failures, including the per-call timeout, are reported as
// provider errors with no numeric code.
func (c *Client) post(ctx context.Context, stage domain.ProviderStage, path string, timeout time.Duration, payload interface{}, out interface{}) (json.RawMessage, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, domain.NewProviderTransportError(stage, fmt.Errorf("failed to encode request: %w", err))
	}

	callCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	httpReq, err := http.NewRequestWithContext(callCtx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, domain.NewProviderTransportError(stage, err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	start := time.Now()
	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		logger.Get().Error("Scoring provider call failed",
			zap.String("stage", string(stage)),
			zap.Duration("elapsed", time.Since(start)),
			zap.Error(err))
		return nil, domain.NewProviderTransportError(stage, err)
	}
	defer httpResp.Body.Close()

	rawBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, domain.NewProviderTransportError(stage, fmt.Errorf("failed to read response: %w", err))
	}

	if httpResp.StatusCode != http.StatusOK {
		return nil, domain.NewProviderTransportError(stage,
			fmt.Errorf("unexpected status %d from provider", httpResp.StatusCode))
	}

	if err := json.Unmarshal(rawBody, out); err != nil {
		return nil, domain.NewProviderTransportError(stage, fmt.Errorf("failed to decode response: %w", err))
	}

	logger.Get().Debug("Scoring provider call completed",
		zap.String("stage", string(stage)),
		zap.Duration("elapsed", time.Since(start)))

	return rawBody, nil
}
