package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	json "github.com/goccy/go-json"
	"github.com/rs/zerolog"
	gobreaker "github.com/sony/gobreaker/v2"
)

// ErrRerankerUnavailable reports a transport-level failure of the external
// ranking service. Handlers map it to 503; parse problems never reach it.
var ErrRerankerUnavailable = errors.New("recommendation service unavailable")

// RerankerService calls a chat-completion style API to rank candidates.
// All calls go through a circuit breaker so a dead upstream fails fast.
type RerankerService struct {
	baseURL string
	apiKey  string
	model   string
	client  *http.Client
	breaker *gobreaker.CircuitBreaker[string]
	log     zerolog.Logger
}

// NewRerankerService constructs a RerankerService.
func NewRerankerService(baseURL, apiKey, model string, timeout time.Duration, log zerolog.Logger) *RerankerService {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	settings := gobreaker.Settings{
		Name:    "reranker",
		Timeout: 30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn().Str("breaker", name).Str("from", from.String()).Str("to", to.String()).
				Msg("reranker circuit breaker state changed")
		},
	}

	return &RerankerService{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		model:   model,
		client:  &http.Client{Timeout: timeout},
		breaker: gobreaker.NewCircuitBreaker[string](settings),
		log:     log,
	}
}

type completionRequest struct {
	Model    string              `json:"model"`
	Messages []completionMessage `json:"messages"`
}

type completionMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type completionResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// Complete sends the prompt and returns the raw text answer. Any failure
// to reach or read the upstream wraps ErrRerankerUnavailable.
func (s *RerankerService) Complete(ctx context.Context, prompt string) (string, error) {
	content, err := s.breaker.Execute(func() (string, error) {
		return s.complete(ctx, prompt)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return "", fmt.Errorf("%w: circuit open", ErrRerankerUnavailable)
		}
		return "", err
	}
	return content, nil
}

func (s *RerankerService) complete(ctx context.Context, prompt string) (string, error) {
	payload, err := json.Marshal(completionRequest{
		Model: s.model,
		Messages: []completionMessage{
			{Role: "user", Content: prompt},
		},
	})
	if err != nil {
		return "", fmt.Errorf("reranker request marshal: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("reranker request build: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.apiKey)

	resp, err := s.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrRerankerUnavailable, err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		s.log.Error().Int("status", resp.StatusCode).Msg("reranker returned non-2xx")
		return "", fmt.Errorf("%w: status %d", ErrRerankerUnavailable, resp.StatusCode)
	}

	var parsed completionResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", fmt.Errorf("%w: unmarshal: %v", ErrRerankerUnavailable, err)
	}
	if len(parsed.Choices) == 0 {
		return "", fmt.Errorf("%w: empty choices", ErrRerankerUnavailable)
	}

	return parsed.Choices[0].Message.Content, nil
}
