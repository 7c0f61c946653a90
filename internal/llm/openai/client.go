package openai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"mediatracker/internal/common"
	"mediatracker/internal/llm"
)

// CleanRows implements llm.RowCleaner using chat/completions with a JSON
// response format. The model's free text still goes through the full
// decode-and-repair chain; json_object mode reduces, but does not
// eliminate, malformed output.
func (c *Client) CleanRows(ctx context.Context, req llm.CleanRequest) (llm.RawBatch, []byte, error) {
	if strings.TrimSpace(req.RawText) == "" {
		return llm.RawBatch{}, nil, common.NewAppError("INPUT_ERROR", "raw text is required", common.ErrInvalidInput)
	}
	if c.cfg.APIKey == "" {
		return llm.RawBatch{}, nil, common.NewAppError("CONFIG_ERROR", "OPENAI_API_KEY is not set", common.ErrInvalidInput)
	}

	rid := uuid.New().String()
	start := time.Now()

	c.log.Info("llm.clean.start",
		"req_id", rid,
		"model", c.cfg.Model,
		"temp", c.cfg.Temperature,
		"text_len", len(req.RawText),
		"default_medium", req.DefaultMedium,
	)

	body := map[string]any{
		"model":           c.cfg.Model,
		"temperature":     c.cfg.Temperature,
		"response_format": map[string]any{"type": "json_object"},
		"messages": []map[string]any{
			{"role": "system", "content": llm.BuildSystemPrompt(req)},
			{"role": "user", "content": llm.BuildUserPrompt(req)},
		},
	}

	endpoint := strings.TrimRight(c.cfg.BaseURL, "/") + "/chat/completions"
	headers := map[string]string{"Authorization": "Bearer " + c.cfg.APIKey}
	raw, _, err := llm.SendJSON(ctx, c.http, endpoint, body, headers, c.log)
	if err != nil {
		c.log.Error("llm.clean.http_error",
			"req_id", rid, "error", err,
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return llm.RawBatch{}, raw, fmt.Errorf("openai request: %w", err)
	}

	var cc struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.Unmarshal(raw, &cc); err != nil {
		c.log.Error("llm.clean.decode_error",
			"req_id", rid, "error", err, "raw_bytes", len(raw),
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return llm.RawBatch{}, raw, fmt.Errorf("decode openai response: %w", err)
	}
	if len(cc.Choices) == 0 {
		c.log.Error("llm.clean.no_choices",
			"req_id", rid, "raw_bytes", len(raw),
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return llm.RawBatch{}, raw, fmt.Errorf("no choices in openai response")
	}
	content := strings.TrimSpace(cc.Choices[0].Message.Content)

	batch, err := llm.DecodeBatch(content)
	if err != nil {
		c.log.Error("llm.clean.repair_exhausted",
			"req_id", rid, "error", err, "content_len", len(content),
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return llm.RawBatch{}, []byte(content), err
	}

	c.log.Info("llm.clean.ok",
		"req_id", rid,
		"entries", len(batch.Entries),
		"row_errors", len(batch.Errors),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return batch, []byte(content), nil
}
