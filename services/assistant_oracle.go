package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"macrolog/apierr"
	"macrolog/logger"
)

type AssistantConfig struct {
	BaseURL      string
	APIKey       string
	AssistantID  string
	PollInterval time.Duration
	Timeout      time.Duration
}

// AssistantOracle runs a pre-configured OpenAI assistant on a fresh thread
// per request and polls the run until it reaches a terminal state.
type AssistantOracle struct {
	baseURL      string
	apiKey       string
	assistantID  string
	pollInterval time.Duration
	timeout      time.Duration
	client       *http.Client
	log          *logger.Logger
}

func NewAssistantOracle(cfg AssistantConfig, log *logger.Logger) *AssistantOracle {
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = time.Second
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 90 * time.Second
	}
	return &AssistantOracle{
		baseURL:      strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:       cfg.APIKey,
		assistantID:  cfg.AssistantID,
		pollInterval: cfg.PollInterval,
		timeout:      cfg.Timeout,
		client:       &http.Client{Timeout: 30 * time.Second},
		log:          log.With("service", "AssistantOracle"),
	}
}

type assistantRun struct {
	ID        string `json:"id"`
	ThreadID  string `json:"thread_id"`
	Status    string `json:"status"`
	LastError *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"last_error"`
}

type assistantMessages struct {
	Data []struct {
		Role    string `json:"role"`
		Content []struct {
			Type string `json:"type"`
			Text struct {
				Value string `json:"value"`
			} `json:"text"`
		} `json:"content"`
	} `json:"data"`
}

type assistantHTTPError struct {
	StatusCode int
	Body       string
}

func (e *assistantHTTPError) Error() string {
	return fmt.Sprintf("assistant http %d: %s", e.StatusCode, e.Body)
}

// classifyRun maps an Assistants run status onto RunState.
func classifyRun(status string) RunState {
	switch status {
	case "completed":
		return RunSucceeded
	case "failed", "cancelled", "expired", "incomplete", "requires_action":
		return RunFailed
	default:
		return RunPending
	}
}

func (o *AssistantOracle) EstimateMacros(ctx context.Context, items []OracleItem) (*OracleReply, error) {
	payload, err := json.Marshal(map[string]any{"items": items})
	if err != nil {
		return nil, err
	}
	text, err := o.Run(ctx, string(payload))
	if err != nil {
		return nil, err
	}
	reply, err := ParseOracleReply([]byte(text))
	if err != nil {
		return nil, apierr.New(http.StatusBadGateway, "oracle_bad_reply", err)
	}
	return reply, nil
}

// Run sends content to the assistant and returns its reply text. It waits at
// most the configured timeout; running out of time is a retryable 504.
func (o *AssistantOracle) Run(ctx context.Context, content string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, o.timeout)
	defer cancel()

	body := map[string]any{
		"assistant_id": o.assistantID,
		"thread": map[string]any{
			"messages": []map[string]string{{"role": "user", "content": content}},
		},
	}
	var run assistantRun
	if err := o.do(ctx, http.MethodPost, "/threads/runs", body, &run); err != nil {
		return "", o.wrap(err)
	}
	o.log.Debug("assistant run started", "run_id", run.ID, "thread_id", run.ThreadID)

	ticker := time.NewTicker(o.pollInterval)
	defer ticker.Stop()
	started := time.Now()

	for classifyRun(run.Status) == RunPending {
		select {
		case <-ctx.Done():
			return "", o.wrap(ctx.Err())
		case <-ticker.C:
		}
		path := fmt.Sprintf("/threads/%s/runs/%s", url.PathEscape(run.ThreadID), url.PathEscape(run.ID))
		if err := o.do(ctx, http.MethodGet, path, nil, &run); err != nil {
			return "", o.wrap(err)
		}
	}

	if classifyRun(run.Status) == RunFailed {
		msg := run.Status
		if run.LastError != nil && run.LastError.Message != "" {
			msg = run.Status + ": " + run.LastError.Message
		}
		o.log.Warn("assistant run failed", "run_id", run.ID, "status", run.Status)
		return "", apierr.New(http.StatusBadGateway, "oracle_run_failed", errors.New(msg))
	}

	q := url.Values{"run_id": {run.ID}, "order": {"asc"}}
	path := fmt.Sprintf("/threads/%s/messages?%s", url.PathEscape(run.ThreadID), q.Encode())
	var msgs assistantMessages
	if err := o.do(ctx, http.MethodGet, path, nil, &msgs); err != nil {
		return "", o.wrap(err)
	}
	var sb strings.Builder
	for _, m := range msgs.Data {
		if m.Role != "assistant" {
			continue
		}
		for _, c := range m.Content {
			if c.Type == "text" {
				sb.WriteString(c.Text.Value)
			}
		}
	}
	if sb.Len() == 0 {
		return "", apierr.New(http.StatusBadGateway, "oracle_bad_reply", errors.New("assistant returned no text"))
	}
	o.log.Debug("assistant run completed", "run_id", run.ID, "elapsed", time.Since(started).String())
	return sb.String(), nil
}

func (o *AssistantOracle) wrap(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return apierr.New(http.StatusGatewayTimeout, "oracle_timeout",
			fmt.Errorf("oracle did not finish within %s", o.timeout))
	}
	if _, ok := apierr.As(err); ok {
		return err
	}
	return apierr.New(http.StatusBadGateway, "oracle_unavailable", err)
}

func (o *AssistantOracle) do(ctx context.Context, method, path string, body, out any) error {
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			return err
		}
	}
	req, err := http.NewRequestWithContext(ctx, method, o.baseURL+path, &buf)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+o.apiKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("OpenAI-Beta", "assistants=v2")

	resp, err := o.client.Do(req)
	if err != nil {
		return err
	}
	raw, err := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	if err != nil {
		return err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &assistantHTTPError{StatusCode: resp.StatusCode, Body: string(raw)}
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("assistant decode error: %w; raw=%s", err, string(raw))
	}
	return nil
}
