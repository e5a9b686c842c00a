package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"flightwatch-service/internal/domain/entity"
	"flightwatch-service/pkg/logger"
	"flightwatch-service/pkg/utils"
)

// AviationStackProvider fetches flight status from AviationStack.
// Free tier allows 100 requests/month, so it sits behind a very small
// daily budget in the chain. It also serves same-route searches for the
// alternative-flight finder.
type AviationStackProvider struct {
	apiKey  string
	baseURL string
	client  *http.Client
	logger  logger.Logger
}

// NewAviationStackProvider creates a new AviationStack adapter
func NewAviationStackProvider(apiKey string, logger logger.Logger) *AviationStackProvider {
	return &AviationStackProvider{
		apiKey:  apiKey,
		baseURL: "http://api.aviationstack.com/v1",
		client:  newHTTPClient(),
		logger:  logger,
	}
}

// Name returns the adapter identifier used in budgets, logs and metrics
func (p *AviationStackProvider) Name() string { return "aviationstack" }

type aviationStackLeg struct {
	IATA      string `json:"iata"`
	Gate      string `json:"gate"`
	Delay     int    `json:"delay"`
	Scheduled string `json:"scheduled"`
	Actual    string `json:"actual"`
}

type aviationStackFlight struct {
	FlightDate   string `json:"flight_date"`
	FlightStatus string `json:"flight_status"`
	Departure    aviationStackLeg `json:"departure"`
	Arrival      aviationStackLeg `json:"arrival"`
	Airline      struct {
		Name string `json:"name"`
		IATA string `json:"iata"`
	} `json:"airline"`
	Flight struct {
		IATA string `json:"iata"`
	} `json:"flight"`
}

type aviationStackResponse struct {
	Data []aviationStackFlight `json:"data"`
}

// FetchStatus fetches the status of a flight on the given date
func (p *AviationStackProvider) FetchStatus(ctx context.Context, flightNumber, date string) (*entity.FlightStatus, error) {
	params := url.Values{}
	params.Set("flight_iata", flightNumber)
	params.Set("limit", "1")
	if date != "" {
		params.Set("flight_date", date)
	}

	flights, err := p.query(ctx, params)
	if err != nil {
		return nil, err
	}
	if len(flights) == 0 {
		return nil, adapterErr(p.Name(), ErrNotFound)
	}

	return p.normalize(flightNumber, &flights[0]), nil
}

// SearchAlternatives returns same-route flights departing within the window
// around the reference departure. AviationStack carries no fare or seat
// data, so PriceDeltaUSD and AvailableSeats stay at their zero values and
// the ranker scores them neutrally.
func (p *AviationStackProvider) SearchAlternatives(ctx context.Context, origin, destination, date string, around time.Time, window time.Duration) ([]entity.Alternative, error) {
	params := url.Values{}
	params.Set("dep_iata", origin)
	params.Set("arr_iata", destination)
	params.Set("limit", "100")
	if date != "" {
		params.Set("flight_date", date)
	}

	flights, err := p.query(ctx, params)
	if err != nil {
		return nil, err
	}

	var alternatives []entity.Alternative
	for _, f := range flights {
		dep, err := utils.ParseProviderTime(f.Departure.Scheduled)
		if err != nil {
			continue
		}
		if dep.Before(around.Add(-window)) || dep.After(around.Add(window)) {
			continue
		}
		arr, _ := utils.ParseProviderTime(f.Arrival.Scheduled)
		carrier := f.Airline.Name
		if carrier == "" {
			carrier = f.Airline.IATA
		}
		alternatives = append(alternatives, entity.Alternative{
			FlightNumber: f.Flight.IATA,
			Carrier:      carrier,
			Departure:    dep,
			Arrival:      arr,
		})
	}

	return alternatives, nil
}

func (p *AviationStackProvider) query(ctx context.Context, params url.Values) ([]aviationStackFlight, error) {
	if p.apiKey == "" {
		return nil, adapterErr(p.Name(), ErrMissingAPIKey)
	}
	params.Set("access_key", p.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.baseURL+"/flights?"+params.Encode(), nil)
	if err != nil {
		return nil, adapterErr(p.Name(), err)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, adapterErr(p.Name(), err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, adapterErr(p.Name(), fmt.Errorf("unexpected status %d", resp.StatusCode))
	}

	var parsed aviationStackResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, adapterErr(p.Name(), fmt.Errorf("malformed payload: %w", err))
	}

	return parsed.Data, nil
}

func (p *AviationStackProvider) normalize(flightNumber string, f *aviationStackFlight) *entity.FlightStatus {
	status := &entity.FlightStatus{
		FlightNumber:     flightNumber,
		Carrier:          f.Airline.Name,
		State:            normalizeState(f.FlightStatus),
		DepartureAirport: f.Departure.IATA,
		ArrivalAirport:   f.Arrival.IATA,
		DelayMinutes:     f.Departure.Delay,
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
	if t, err := utils.ParseProviderTime(f.Departure.Scheduled); err == nil {
		status.ScheduledDeparture = t
	}
	if t, err := utils.ParseProviderTime(f.Arrival.Scheduled); err == nil {
		status.ScheduledArrival = t
	}
	if t, err := utils.ParseProviderTime(f.Departure.Actual); err == nil {
		status.ActualDeparture = &t
	}
	if t, err := utils.ParseProviderTime(f.Arrival.Actual); err == nil {
		status.ActualArrival = &t
	}
	return status
}
