// Package alpha is the placement client for provider A. Before placing a
// bet it re-verifies the quoted odds against the provider's live endpoint
// and rejects when the current quote has drifted beyond the configured
// tolerance.
package alpha

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"math"
	"net/http"
	"net/url"

	"github.com/oddskit/surebet/internal/domain"
	"github.com/oddskit/surebet/internal/provider"
)

// Name identifies provider A in opportunities and audit rows.
const Name = "alpha"

// Client talks to provider A's betting API.
type Client struct {
	cfg            provider.Config
	driftTolerance float64
	httpc          *http.Client
	logger         *slog.Logger
}

// NewClient creates a client. driftTolerance is the maximum allowed absolute
// difference between the expected odds and the live quote; zero means any
// drift rejects the bet.
func NewClient(cfg provider.Config, driftTolerance float64, logger *slog.Logger) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = provider.DefaultTimeout
	}
	return &Client{
		cfg:            cfg,
		driftTolerance: driftTolerance,
		httpc:          &http.Client{Timeout: timeout},
		logger:         logger.With(slog.String("component", "alpha_client")),
	}
}

// Name implements domain.BetPlacer.
func (c *Client) Name() string { return Name }

// placeRequest is provider A's wire shape for a placement call.
type placeRequest struct {
	MatchID   string  `json:"match_id"`
	OddsID    string  `json:"odds_id,omitempty"`
	Selection string  `json:"selection"`
	Odds      float64 `json:"odds"`
	Stake     float64 `json:"stake"`
	AccountID string  `json:"account_id"`
}

// placeResponse is provider A's answer.
type placeResponse struct {
	Status       string `json:"status"`
	BetID        string `json:"bet_id"`
	ErrorMessage string `json:"error_message"`
}

// oddsResponse is the live-odds verification answer.
type oddsResponse struct {
	Odds float64 `json:"odds"`
}

// Place re-verifies the live odds, then submits the bet. Network failures
// and non-2xx answers become BetResult{Status: LegFailed}.
func (c *Client) Place(ctx context.Context, req domain.BetRequest) (domain.BetResult, error) {
	current, err := c.currentOdds(ctx, req)
	if err != nil {
		return failed(fmt.Sprintf("odds verification: %v", err)), nil
	}
	if math.Abs(current-req.Odds) > c.driftTolerance {
		c.logger.WarnContext(ctx, "odds drift, rejecting placement",
			slog.String("match_id", req.MatchID),
			slog.Float64("expected", req.Odds),
			slog.Float64("current", current),
			slog.Float64("tolerance", c.driftTolerance),
		)
		return domain.BetResult{
			Status: domain.LegRejected,
			ErrorMessage: fmt.Sprintf("%v: expected %.3f, current %.3f",
				domain.ErrOddsDrift, req.Odds, current),
		}, nil
	}

	body, err := json.Marshal(placeRequest{
		MatchID:   req.MatchID,
		OddsID:    req.OddsID,
		Selection: string(req.Selection),
		Odds:      req.Odds,
		Stake:     req.Stake,
		AccountID: c.cfg.AccountID,
	})
	if err != nil {
		return domain.BetResult{}, fmt.Errorf("alpha: marshal place request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+"/api/v1/bets", bytes.NewReader(body))
	if err != nil {
		return domain.BetResult{}, fmt.Errorf("alpha: create place request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.cfg.APIToken)

	resp, err := c.httpc.Do(httpReq)
	if err != nil {
		return failed(err.Error()), nil
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return failed(fmt.Sprintf("unexpected status %d: %s", resp.StatusCode, respBody)), nil
	}

	var pr placeResponse
	if err := json.NewDecoder(resp.Body).Decode(&pr); err != nil {
		return failed(fmt.Sprintf("decode response: %v", err)), nil
	}

	return domain.BetResult{
		Status:       mapStatus(pr.Status),
		BetID:        pr.BetID,
		ErrorMessage: pr.ErrorMessage,
	}, nil
}

// currentOdds fetches the live quote for the selection being bet.
func (c *Client) currentOdds(ctx context.Context, req domain.BetRequest) (float64, error) {
	q := url.Values{}
	q.Set("match_id", req.MatchID)
	q.Set("selection", string(req.Selection))
	if req.OddsID != "" {
		q.Set("odds_id", req.OddsID)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.BaseURL+"/api/v1/odds?"+q.Encode(), nil)
	if err != nil {
		return 0, fmt.Errorf("create odds request: %w", err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+c.cfg.APIToken)

	resp, err := c.httpc.Do(httpReq)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return 0, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	var or oddsResponse
	if err := json.NewDecoder(resp.Body).Decode(&or); err != nil {
		return 0, fmt.Errorf("decode odds response: %w", err)
	}
	if or.Odds <= 0 {
		return 0, fmt.Errorf("no live odds for match %s", req.MatchID)
	}
	return or.Odds, nil
}

func mapStatus(s string) domain.LegStatus {
	switch s {
	case "ACCEPTED", "accepted", "ok":
		return domain.LegAccepted
	case "REJECTED", "rejected":
		return domain.LegRejected
	}
	return domain.LegFailed
}

func failed(msg string) domain.BetResult {
	return domain.BetResult{Status: domain.LegFailed, ErrorMessage: msg}
}

var _ domain.BetPlacer = (*Client)(nil)
