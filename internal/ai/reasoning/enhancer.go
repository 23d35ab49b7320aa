package reasoning

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"crypto-signal-engine/internal/signal"
)

const systemPrompt = "You are a strict crypto market analyst assistant. " +
	"Improve signal explanation quality for traders. " +
	"Do not change the trading direction. " +
	"Return strict JSON with keys: summary, reasons, riskWarnings, playbook. " +
	"reasons: 4-6 short bullets. riskWarnings: 2-3 bullets. playbook: 2-3 bullets."

// Enhancement is the outcome of one enrichment attempt. Applied is false when
// anything went wrong; the caller keeps its baseline reasons in that case.
type Enhancement struct {
	Applied      bool     `json:"applied"`
	Reasons      []string `json:"reasons,omitempty"`
	Summary      string   `json:"summary,omitempty"`
	RiskWarnings []string `json:"riskWarnings,omitempty"`
	Playbook     []string `json:"playbook,omitempty"`
	Model        string   `json:"model,omitempty"`
	Warning      string   `json:"warning,omitempty"`
}

// Enhancer rewrites a signal's explanation through the LLM client.
type Enhancer struct {
	client *Client
	model  string
	logger zerolog.Logger
}

// NewEnhancer builds an enhancer around the given client.
func NewEnhancer(client *Client, logger zerolog.Logger) *Enhancer {
	return &Enhancer{
		client: client,
		model:  client.config.Model,
		logger: logger.With().Str("component", "reasoning").Logger(),
	}
}

// IsConfigured reports whether enrichment can run at all.
func (e *Enhancer) IsConfigured() bool {
	return e.client != nil && e.client.IsConfigured()
}

type llmOutput struct {
	Summary      string   `json:"summary"`
	Reasons      []string `json:"reasons"`
	RiskWarnings []string `json:"riskWarnings"`
	Playbook     []string `json:"playbook"`
}

// Enhance asks the model for a better explanation of an already-decided
// signal. It never returns an error; every failure path produces an
// Enhancement with Applied=false and a human-readable warning.
func (e *Enhancer) Enhance(ctx context.Context, result signal.Result) Enhancement {
	if !e.IsConfigured() {
		return skipped("OpenAI reasoning skipped: no API key configured")
	}

	payload, err := json.Marshal(buildPayload(result))
	if err != nil {
		return skipped(fmt.Sprintf("OpenAI reasoning skipped: %v", err))
	}

	userPrompt := "Improve the explanation for this trading signal. " +
		"Keep the direction and all numeric values unchanged.\n" + string(payload)

	raw, err := e.client.Complete(ctx, systemPrompt, userPrompt)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			e.logger.Warn().Err(err).Msg("reasoning request timed out")
			return skipped(fmt.Sprintf("OpenAI reasoning skipped: reasoning timed out after %s", e.client.config.Timeout))
		}
		e.logger.Warn().Err(err).Msg("reasoning request failed")
		return skipped(fmt.Sprintf("OpenAI reasoning skipped: %v", err))
	}

	var out llmOutput
	if err := parseJSONFromText(raw, &out); err != nil {
		e.logger.Warn().Err(err).Msg("reasoning response was not valid JSON")
		return skipped("OpenAI reasoning skipped: model returned unparsable output")
	}

	reasons := cleanStringList(out.Reasons, 4, 6, 180)
	if reasons == nil {
		return skipped("OpenAI reasoning skipped: model returned too few usable reasons")
	}

	summary := strings.TrimSpace(out.Summary)
	if summary == "" {
		summary = fmt.Sprintf("%s setup generated from technical and market context", result.Signal)
	}
	if len(summary) > 240 {
		summary = summary[:240]
	}

	return Enhancement{
		Applied:      true,
		Reasons:      reasons,
		Summary:      summary,
		RiskWarnings: cleanStringList(out.RiskWarnings, 2, 3, 160),
		Playbook:     cleanStringList(out.Playbook, 2, 3, 160),
		Model:        e.model,
	}
}

func skipped(warning string) Enhancement {
	return Enhancement{Applied: false, Warning: warning}
}

// buildPayload extracts the compact subset of the result the model needs.
func buildPayload(result signal.Result) map[string]interface{} {
	reasons := result.Reasons
	if len(reasons) > 10 {
		reasons = reasons[:10]
	}

	payload := map[string]interface{}{
		"signal":          result.Signal,
		"confidence":      result.Confidence,
		"qualityScore":    result.QualityScore,
		"qualityGrade":    result.QualityGrade,
		"regime":          result.Regime,
		"trendStrength":   result.TrendStrength,
		"currentPrice":    result.CurrentPrice,
		"takeProfit1":     result.TakeProfit1,
		"takeProfit2":     result.TakeProfit2,
		"stopLoss":        result.StopLoss,
		"riskReward":      result.RiskReward,
		"indicators":      result.Indicators,
		"futuresContext":  result.FuturesContext,
		"baselineReasons": reasons,
	}

	catalysts := result.CatalystWatch.Catalysts
	if len(catalysts) > 4 {
		catalysts = catalysts[:4]
	}
	payload["catalystWatch"] = map[string]interface{}{
		"sentimentLabel": result.CatalystWatch.SentimentLabel,
		"combinedScore":  result.CatalystWatch.CombinedScore,
		"newsScore":      result.CatalystWatch.NewsScore,
		"catalysts":      catalysts,
	}
	payload["breakoutDetection"] = result.Breakout

	if result.LiquidityHeatmap != nil {
		payload["liquidityHeatmap"] = result.LiquidityHeatmap
	}
	return payload
}

// parseJSONFromText unmarshals the text directly, falling back to the slice
// between the first '{' and the last '}' when the model wrapped its JSON in
// prose or code fences.
func parseJSONFromText(text string, dest interface{}) error {
	trimmed := strings.TrimSpace(text)
	if err := json.Unmarshal([]byte(trimmed), dest); err == nil {
		return nil
	}

	start := strings.Index(trimmed, "{")
	end := strings.LastIndex(trimmed, "}")
	if start < 0 || end <= start {
		return fmt.Errorf("no JSON object found in model output")
	}
	return json.Unmarshal([]byte(trimmed[start:end+1]), dest)
}

// cleanStringList trims entries, drops empties, caps entry length and list
// size. Returns nil when fewer than minItems usable entries remain.
func cleanStringList(list []string, minItems, maxItems, maxLen int) []string {
	cleaned := make([]string, 0, len(list))
	for _, item := range list {
		s := strings.TrimSpace(item)
		if s == "" {
			continue
		}
		if len(s) > maxLen {
			s = s[:maxLen]
		}
		cleaned = append(cleaned, s)
		if len(cleaned) == maxItems {
			break
		}
	}
	if len(cleaned) < minItems {
		return nil
	}
	return cleaned
}
