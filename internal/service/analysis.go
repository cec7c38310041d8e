package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/alanyoungcy/marketinsight/internal/domain"
	"github.com/alanyoungcy/marketinsight/internal/platform/xai"
)

const analysisSystemPrompt = "You are a real-time news and social intelligence assistant. " +
	"Your job is to surface fresh signal from X and the web, NOT to analyze market odds or probabilities. " +
	"Use at most 2 search tool calls. Be concise and specific: include real post excerpts, dates, and named sources where possible."

const (
	analysisUnavailable   = "Analysis unavailable: "
	analysisNotConfigured = analysisUnavailable + "XAI API key is not configured."
)

// buildAnalysisPrompt renders the market snapshot and the three-section task
// sent to the analyst.
func buildAnalysisPrompt(query string, pm, k *domain.Candidate, pmCands, kCands []domain.Candidate) string {
	lines := []string{
		"User query: " + query,
		"",
		"Prediction market snapshot:",
		primaryLine("Polymarket", pm),
		primaryLine("Kalshi", k),
	}
	if line, ok := alternatesLine("Polymarket", pmCands); ok {
		lines = append(lines, line)
	}
	if line, ok := alternatesLine("Kalshi", kCands); ok {
		lines = append(lines, line)
	}

	lines = append(lines,
		"",
		"Task: Use X search to surface the freshest real-world signal on this question. "+
			"Do NOT interpret or explain the market odds; the user can see those already. "+
			"Focus entirely on what is happening in the real world RIGHT NOW.",
		"Return exactly three short sections:",
		"1) X pulse: most relevant posts/sentiment on X in the last 48 hours, with approximate dates",
		"2) Latest news: key headlines or developments driving this question today",
		"3) Catalysts: specific upcoming events, dates, or triggers that could move this market",
	)
	return strings.Join(lines, "\n")
}

func primaryLine(venue string, c *domain.Candidate) string {
	if c == nil {
		return "- " + venue + " primary: no confident match"
	}
	return fmt.Sprintf("- %s primary: %s | %s | volume %s | score %s",
		venue, c.Title, percentLabel(c),
		strconv.FormatFloat(c.Volume, 'f', 0, 64),
		strconv.FormatFloat(c.Score, 'f', 2, 64),
	)
}

// alternatesLine lists every candidate after the first.
func alternatesLine(venue string, cands []domain.Candidate) (string, bool) {
	if len(cands) <= 1 {
		return "", false
	}
	parts := make([]string, 0, len(cands)-1)
	for i := range cands[1:] {
		c := &cands[i+1]
		parts = append(parts, fmt.Sprintf("%s (%s)", c.Title, percentLabel(c)))
	}
	return "- Other " + venue + " candidates: " + strings.Join(parts, "; "), true
}

func percentLabel(c *domain.Candidate) string {
	return strconv.FormatFloat(c.Probability*100, 'f', 1, 64) + "% " + c.ProbabilityLabel
}

// unavailableReason renders an analysis failure for the placeholder text.
func unavailableReason(err error) string {
	var apiErr *xai.APIError
	switch {
	case errors.As(err, &apiErr):
		return fmt.Sprintf("xAI returned %d: %s", apiErr.StatusCode, apiErr.Body)
	case errors.Is(err, context.DeadlineExceeded):
		return "request timed out"
	case errors.Is(err, domain.ErrNotConfigured):
		return "XAI API key is not configured."
	default:
		return err.Error()
	}
}
