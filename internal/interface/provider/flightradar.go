package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"flightwatch-service/internal/domain/entity"
	"flightwatch-service/pkg/logger"
	"flightwatch-service/pkg/utils"
)

// FlightRadarProvider scrapes the public FlightRadar24 live feed. It needs
// no API key, which makes it the last-resort fallback, but it only sees
// airborne flights and carries no schedule or gate data.
type FlightRadarProvider struct {
	feedURL string
	client  *http.Client
	logger  logger.Logger
}

// NewFlightRadarProvider creates a new FlightRadar24 feed adapter
func NewFlightRadarProvider(logger logger.Logger) *FlightRadarProvider {
	return &FlightRadarProvider{
		feedURL: "https://data-live.flightradar24.com/zones/fcgi/feed.js",
		client:  newHTTPClient(),
		logger:  logger,
	}
}

// Name returns the adapter identifier used in budgets, logs and metrics
func (p *FlightRadarProvider) Name() string { return "flightradar" }

// FetchStatus scans the live feed for the flight's callsign. The date is
// ignored; the feed only carries flights currently in the air.
func (p *FlightRadarProvider) FetchStatus(ctx context.Context, flightNumber, _ string) (*entity.FlightStatus, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.feedURL, nil)
	if err != nil {
		return nil, adapterErr(p.Name(), err)
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36")

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, adapterErr(p.Name(), err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, adapterErr(p.Name(), fmt.Errorf("unexpected status %d", resp.StatusCode))
	}

	var feed map[string]json.RawMessage
	if err := json.NewDecoder(resp.Body).Decode(&feed); err != nil {
		return nil, adapterErr(p.Name(), fmt.Errorf("malformed payload: %w", err))
	}

	target := strings.ToUpper(strings.TrimSpace(flightNumber))
	for _, raw := range feed {
		var fields []any
		if err := json.Unmarshal(raw, &fields); err != nil {
			continue // metadata entries like full_count are not aircraft rows
		}
		if len(fields) <= 13 {
			continue
		}
		callsign, _ := fields[13].(string)
		if callsign == "" || !strings.Contains(strings.ToUpper(callsign), target) {
			continue
		}

		status := &entity.FlightStatus{
			FlightNumber: flightNumber,
			Carrier:      utils.CarrierCode(flightNumber),
			State:        entity.StateActive,
			CapturedAt:   time.Now(),
		}
		if origin, ok := fields[11].(string); ok {
			status.DepartureAirport = origin
		}
		if dest, ok := fields[12].(string); ok {
			status.ArrivalAirport = dest
		}
		p.logger.Debug("Found flight in live feed", "flight", flightNumber, "callsign", callsign)
		return status, nil
	}

	return nil, adapterErr(p.Name(), ErrNotFound)
}
