// Package browser drives the browser-automation provider's cloud API. Each
// call runs one agent task in a remote browser session: scanning a form for
// its fillable fields, or filling it with mapped values. The agent is
// instructed to never submit the form; submission is left to the human
// operator.
package browser

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"formfill-agent/internal/domain"
	"formfill-agent/internal/llm"
)

type Config struct {
	BaseURL      string // e.g. https://api.browser-use.com/api/v1
	APIKey       string
	PollInterval time.Duration
}

// Client is a thin JSON-over-HTTP client for the automation provider.
type Client struct {
	log        *slog.Logger
	cfg        Config
	httpClient *http.Client
}

func NewClient(log *slog.Logger, cfg Config) *Client {
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = 2 * time.Second
	}

	return &Client{
		log: log,
		cfg: cfg,
		// No overall client timeout: agent tasks are long-running and the
		// caller's context bounds each request.
		httpClient: &http.Client{},
	}
}

// ScanForm enumerates the user-fillable fields of the target form.
func (c *Client) ScanForm(ctx context.Context, formURL string) ([]domain.FieldRequirement, error) {
	task := fmt.Sprintf(`Open this form: %s
Identify all user-fillable fields in the main form and list what information is required.
Return JSON only with this shape:
{
  "fields": [
    {
      "name": "short machine-friendly field name",
      "label": "visible label or placeholder",
      "type": "text|date|select|checkbox|radio|email|tel|address|number|file",
      "required": true,
      "notes": "any helper text or constraints"
    }
  ]
}
Use double quotes for all JSON keys and string values. Do not include trailing text.`, formURL)

	c.log.Info("scanning form fields", slog.String("form_url", formURL))

	output, err := c.runTask(ctx, task)
	if err != nil {
		return nil, fmt.Errorf("form scan: %w", err)
	}

	raw, err := llm.ExtractJSONObject(output)
	if err != nil {
		return nil, fmt.Errorf("form scan response: %w", err)
	}

	var parsed struct {
		Fields []domain.FieldRequirement `json:"fields"`
	}
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, fmt.Errorf("failed to decode form scan response: %w", err)
	}

	c.log.Info("form scan complete", slog.Int("field_count", len(parsed.Fields)))

	return parsed.Fields, nil
}

// FillForm fills the target form with the mapped values and leaves it open
// for human review. Returns the agent's summary of what was filled.
func (c *Client) FillForm(ctx context.Context, formURL string, values []domain.FieldValue) (string, error) {
	payload, err := json.MarshalIndent(values, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to encode field values: %w", err)
	}

	task := fmt.Sprintf(`Open this form: %s
Fill the form using the provided field values. Do not submit the form.
Stop after filling and leave the form ready for human review.

Field values (JSON):
%s

Return a short summary of what was filled and what was missing.`, formURL, payload)

	c.log.Info("filling form",
		slog.String("form_url", formURL),
		slog.Int("value_count", len(values)),
	)

	output, err := c.runTask(ctx, task)
	if err != nil {
		return "", fmt.Errorf("form fill: %w", err)
	}

	summary := strings.TrimSpace(output)
	c.log.Info("form fill complete", slog.Int("summary_len", len(summary)))

	return summary, nil
}

type taskState struct {
	ID     string `json:"id"`
	Status string `json:"status"` // created | running | finished | failed
	Output string `json:"output"`
	Error  string `json:"error,omitempty"`
}

// runTask creates an agent task and polls it until it reaches a terminal
// state. No timeout is imposed here; a hung task stalls only its own job.
func (c *Client) runTask(ctx context.Context, task string) (string, error) {
	created, err := c.createTask(ctx, task)
	if err != nil {
		return "", err
	}

	c.log.Debug("agent task created", slog.String("task_id", created.ID))

	ticker := time.NewTicker(c.cfg.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			state, err := c.getTask(ctx, created.ID)
			if err != nil {
				return "", err
			}

			switch state.Status {
			case "finished":
				return state.Output, nil
			case "failed":
				if state.Error != "" {
					return "", fmt.Errorf("agent task failed: %s", state.Error)
				}
				return "", fmt.Errorf("agent task failed")
			}

		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
}

func (c *Client) createTask(ctx context.Context, task string) (taskState, error) {
	body, err := json.Marshal(map[string]string{"task": task})
	if err != nil {
		return taskState{}, fmt.Errorf("failed to marshal task: %w", err)
	}

	endpoint := strings.TrimRight(c.cfg.BaseURL, "/") + "/run-task"

	raw, err := c.do(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return taskState{}, err
	}

	var state taskState
	if err := json.Unmarshal(raw, &state); err != nil {
		return taskState{}, fmt.Errorf("failed to decode task response: %w", err)
	}
	if state.ID == "" {
		return taskState{}, fmt.Errorf("provider returned no task id")
	}

	return state, nil
}

func (c *Client) getTask(ctx context.Context, id string) (taskState, error) {
	endpoint := strings.TrimRight(c.cfg.BaseURL, "/") + "/task/" + id

	raw, err := c.do(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return taskState{}, err
	}

	var state taskState
	if err := json.Unmarshal(raw, &state); err != nil {
		return taskState{}, fmt.Errorf("failed to decode task state: %w", err)
	}

	return state, nil
}

func (c *Client) do(ctx context.Context, method, url string, body io.Reader) (_ []byte, err error) {
	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("provider request failed: %w", err)
	}
	defer func() {
		if closeErr := resp.Body.Close(); closeErr != nil {
			c.log.Warn("failed to close response body", slog.String("err", closeErr.Error()))
		}
	}()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("provider status %d: %s", resp.StatusCode, strings.TrimSpace(string(raw)))
	}

	return raw, nil
}
