package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"flightwatch-service/internal/domain/entity"
	"flightwatch-service/pkg/logger"
	"flightwatch-service/pkg/utils"
)

const aeroDataBoxHost = "aerodatabox.p.rapidapi.com"

// AeroDataBoxProvider fetches flight status from AeroDataBox via RapidAPI.
// Free tier allows 150 requests/day.
type AeroDataBoxProvider struct {
	apiKey  string
	baseURL string
	client  *http.Client
	logger  logger.Logger
}

// NewAeroDataBoxProvider creates a new AeroDataBox adapter
func NewAeroDataBoxProvider(apiKey string, logger logger.Logger) *AeroDataBoxProvider {
	return &AeroDataBoxProvider{
		apiKey:  apiKey,
		baseURL: "https://" + aeroDataBoxHost,
		client:  newHTTPClient(),
		logger:  logger,
	}
}

// Name returns the adapter identifier used in budgets, logs and metrics
func (p *AeroDataBoxProvider) Name() string { return "aerodatabox" }

type aeroDataBoxLeg struct {
	Airport struct {
		IATA string `json:"iata"`
	} `json:"airport"`
	ScheduledTime struct {
		UTC   string `json:"utc"`
		Local string `json:"local"`
	} `json:"scheduledTime"`
	RevisedTime struct {
		UTC string `json:"utc"`
	} `json:"revisedTime"`
	ActualTime struct {
		UTC string `json:"utc"`
	} `json:"actualTime"`
	Gate string `json:"gate"`
}

type aeroDataBoxFlight struct {
	Status  string `json:"status"`
	Airline struct {
		Name string `json:"name"`
	} `json:"airline"`
	Departure aeroDataBoxLeg `json:"departure"`
	Arrival   aeroDataBoxLeg `json:"arrival"`
}

// FetchStatus fetches the status of a flight on the given date (YYYY-MM-DD)
func (p *AeroDataBoxProvider) FetchStatus(ctx context.Context, flightNumber, date string) (*entity.FlightStatus, error) {
	if p.apiKey == "" {
		return nil, adapterErr(p.Name(), ErrMissingAPIKey)
	}
	if date == "" {
		date = time.Now().Format("2006-01-02")
	}

	url := fmt.Sprintf("%s/flights/number/%s%s/%s",
		p.baseURL, utils.CarrierCode(flightNumber), utils.FlightDigits(flightNumber), date)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, adapterErr(p.Name(), err)
	}
	req.Header.Set("X-RapidAPI-Key", p.apiKey)
	req.Header.Set("X-RapidAPI-Host", aeroDataBoxHost)

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, adapterErr(p.Name(), err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, adapterErr(p.Name(), fmt.Errorf("unexpected status %d", resp.StatusCode))
	}

	var flights []aeroDataBoxFlight
	if err := json.NewDecoder(resp.Body).Decode(&flights); err != nil {
		return nil, adapterErr(p.Name(), fmt.Errorf("malformed payload: %w", err))
	}
	if len(flights) == 0 {
		return nil, adapterErr(p.Name(), ErrNotFound)
	}

	return p.normalize(flightNumber, &flights[0]), nil
}

func (p *AeroDataBoxProvider) normalize(flightNumber string, f *aeroDataBoxFlight) *entity.FlightStatus {
	status := &entity.FlightStatus{
		FlightNumber:     flightNumber,
		Carrier:          f.Airline.Name,
		State:            normalizeState(f.Status),
		DepartureAirport: f.Departure.Airport.IATA,
		ArrivalAirport:   f.Arrival.Airport.IATA,
		CapturedAt:       time.Now(),
	}
	if status.Carrier == "" {
		status.Carrier = utils.CarrierCode(flightNumber)
	}
	if f.Departure.Gate != "" {
		g := f.Departure.Gate
		status.DepartureGate = &g
	}
	if f.Arrival.Gate != "" {
		g := f.Arrival.Gate
		status.ArrivalGate = &g
	}

	if t, err := utils.ParseProviderTime(f.Departure.ScheduledTime.UTC); err == nil {
		status.ScheduledDeparture = t
	}
	if t, err := utils.ParseProviderTime(f.Arrival.ScheduledTime.UTC); err == nil {
		status.ScheduledArrival = t
	}
	if t, err := utils.ParseProviderTime(f.Departure.ActualTime.UTC); err == nil {
		status.ActualDeparture = &t
	}
	if t, err := utils.ParseProviderTime(f.Arrival.ActualTime.UTC); err == nil {
		status.ActualArrival = &t
	}

	// Delay comes from the revised departure when the airline has published one
	if revised, err := utils.ParseProviderTime(f.Departure.RevisedTime.UTC); err == nil && !status.ScheduledDeparture.IsZero() {
		status.DelayMinutes = utils.DelayBetween(status.ScheduledDeparture, revised)
	}

	return status
}

func normalizeState(raw string) entity.FlightState {
	switch normalizeToken(raw) {
	case "scheduled", "expected", "checkin", "boarding", "gateclosed":
		return entity.StateScheduled
	case "active", "enroute", "departed", "approaching", "delayed":
		return entity.StateActive
	case "landed", "arrived":
		return entity.StateLanded
	case "cancelled", "canceled":
		return entity.StateCancelled
	case "diverted":
		return entity.StateDiverted
	case "incident":
		return entity.StateIncident
	default:
		return entity.StateScheduled
	}
}
