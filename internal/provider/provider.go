// Package provider contains the HTTP placement clients for the two betting
// sources. Each client implements domain.BetPlacer; transport and provider
// failures are folded into the returned BetResult so the engine never sees
// them as Go errors.
package provider

import "time"

// Config holds the connection parameters shared by both placement clients.
type Config struct {
	BaseURL   string
	APIToken  string
	AccountID string
	Timeout   time.Duration
}

// DefaultTimeout bounds one placement round trip when no timeout is
// configured. Placement calls suspend only the calling flow, so a generous
// bound is acceptable.
const DefaultTimeout = 10 * time.Second
