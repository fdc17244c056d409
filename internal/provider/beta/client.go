// Package beta is the placement client for provider B. Provider B's API has
// no live-odds endpoint, so bets are submitted directly; the site rejects
// drifted odds server-side.
package beta

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/oddskit/surebet/internal/domain"
	"github.com/oddskit/surebet/internal/provider"
)

// Name identifies provider B in opportunities and audit rows.
const Name = "beta"

// Client talks to provider B's betting API.
type Client struct {
	cfg    provider.Config
	httpc  *http.Client
	logger *slog.Logger
}

// NewClient creates a client for provider B.
func NewClient(cfg provider.Config, logger *slog.Logger) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = provider.DefaultTimeout
	}
	return &Client{
		cfg:    cfg,
		httpc:  &http.Client{Timeout: timeout},
		logger: logger.With(slog.String("component", "beta_client")),
	}
}

// Name implements domain.BetPlacer.
func (c *Client) Name() string { return Name }

// placeRequest is provider B's wire shape. Field names differ from provider
// A's; the normalizer flattens the same inconsistency on the feed side.
type placeRequest struct {
	Event  string  `json:"event"`
	Pick   string  `json:"pick"`
	Coef   float64 `json:"coef"`
	Amount float64 `json:"amount"`
	User   string  `json:"user"`
}

// placeResponse is provider B's answer: ok plus an optional ticket or
// reason.
type placeResponse struct {
	OK     bool   `json:"ok"`
	Ticket string `json:"ticket"`
	Reason string `json:"reason"`
}

// Place submits the bet. Transport failures and non-2xx answers become
// BetResult{Status: LegFailed}; an ok=false answer is a rejection.
func (c *Client) Place(ctx context.Context, req domain.BetRequest) (domain.BetResult, error) {
	body, err := json.Marshal(placeRequest{
		Event:  req.MatchID,
		Pick:   string(req.Selection),
		Coef:   req.Odds,
		Amount: req.Stake,
		User:   c.cfg.AccountID,
	})
	if err != nil {
		return domain.BetResult{}, fmt.Errorf("beta: marshal place request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+"/bets/place", bytes.NewReader(body))
	if err != nil {
		return domain.BetResult{}, fmt.Errorf("beta: create place request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("X-Api-Token", c.cfg.APIToken)

	resp, err := c.httpc.Do(httpReq)
	if err != nil {
		return domain.BetResult{Status: domain.LegFailed, ErrorMessage: err.Error()}, nil
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return domain.BetResult{
			Status:       domain.LegFailed,
			ErrorMessage: fmt.Sprintf("unexpected status %d: %s", resp.StatusCode, respBody),
		}, nil
	}

	var pr placeResponse
	if err := json.NewDecoder(resp.Body).Decode(&pr); err != nil {
		return domain.BetResult{Status: domain.LegFailed, ErrorMessage: "decode response: " + err.Error()}, nil
	}

	if !pr.OK {
		c.logger.WarnContext(ctx, "placement rejected",
			slog.String("match_id", req.MatchID),
			slog.String("reason", pr.Reason),
		)
		return domain.BetResult{Status: domain.LegRejected, ErrorMessage: pr.Reason}, nil
	}

	return domain.BetResult{Status: domain.LegAccepted, BetID: pr.Ticket}, nil
}

var _ domain.BetPlacer = (*Client)(nil)
