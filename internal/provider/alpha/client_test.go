package alpha

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/oddskit/surebet/internal/domain"
	"github.com/oddskit/surebet/internal/provider"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fakeAPI serves provider A's odds and placement endpoints.
func fakeAPI(t *testing.T, liveOdds float64, placeStatus string) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/odds", func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasPrefix(r.Header.Get("Authorization"), "Bearer ") {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]float64{"odds": liveOdds})
	})
	mux.HandleFunc("/api/v1/bets", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]string{
			"status": placeStatus,
			"bet_id": "bet-42",
		})
	})
	return httptest.NewServer(mux)
}

func betRequest() domain.BetRequest {
	return domain.BetRequest{
		MatchID:   "m1",
		Selection: domain.SelectionHome,
		Odds:      2.10,
		Stake:     52,
	}
}

func TestPlaceWithinTolerance(t *testing.T) {
	srv := fakeAPI(t, 2.08, "ACCEPTED")
	defer srv.Close()

	c := NewClient(provider.Config{BaseURL: srv.URL, APIToken: "tok"}, 0.05, testLogger())
	res, err := c.Place(context.Background(), betRequest())
	if err != nil {
		t.Fatalf("Place: %v", err)
	}
	if res.Status != domain.LegAccepted || res.BetID != "bet-42" {
		t.Fatalf("result = %+v, want ACCEPTED bet-42", res)
	}
}

func TestPlaceRejectsOnDrift(t *testing.T) {
	// Live odds moved from 2.10 to 2.00: past the 0.05 tolerance.
	srv := fakeAPI(t, 2.00, "ACCEPTED")
	defer srv.Close()

	c := NewClient(provider.Config{BaseURL: srv.URL, APIToken: "tok"}, 0.05, testLogger())
	res, err := c.Place(context.Background(), betRequest())
	if err != nil {
		t.Fatalf("Place: %v", err)
	}
	if res.Status != domain.LegRejected {
		t.Fatalf("status = %s, want REJECTED on drift", res.Status)
	}
	if !strings.Contains(res.ErrorMessage, domain.ErrOddsDrift.Error()) {
		t.Fatalf("error message %q does not mention odds drift", res.ErrorMessage)
	}
}

func TestPlaceZeroToleranceAcceptsExactMatch(t *testing.T) {
	srv := fakeAPI(t, 2.10, "ACCEPTED")
	defer srv.Close()

	c := NewClient(provider.Config{BaseURL: srv.URL, APIToken: "tok"}, 0, testLogger())
	res, err := c.Place(context.Background(), betRequest())
	if err != nil {
		t.Fatalf("Place: %v", err)
	}
	if res.Status != domain.LegAccepted {
		t.Fatalf("status = %s, want ACCEPTED at identical odds", res.Status)
	}
}

func TestPlaceProviderRejection(t *testing.T) {
	srv := fakeAPI(t, 2.10, "REJECTED")
	defer srv.Close()

	c := NewClient(provider.Config{BaseURL: srv.URL, APIToken: "tok"}, 0.05, testLogger())
	res, err := c.Place(context.Background(), betRequest())
	if err != nil {
		t.Fatalf("Place: %v", err)
	}
	if res.Status != domain.LegRejected {
		t.Fatalf("status = %s, want REJECTED", res.Status)
	}
}

func TestPlaceTransportFailureFoldsIntoResult(t *testing.T) {
	srv := fakeAPI(t, 2.10, "ACCEPTED")
	srv.Close() // connection refused from here on

	c := NewClient(provider.Config{BaseURL: srv.URL, APIToken: "tok"}, 0.05, testLogger())
	res, err := c.Place(context.Background(), betRequest())
	if err != nil {
		t.Fatalf("transport failures must not surface as Go errors, got %v", err)
	}
	if res.Status != domain.LegFailed || res.ErrorMessage == "" {
		t.Fatalf("result = %+v, want FAILED with message", res)
	}
}
