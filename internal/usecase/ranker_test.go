package usecase

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"flightwatch-service/internal/domain/entity"
)

func rankerTask() *entity.MonitoringTask {
	return &entity.MonitoringTask{
		ID:           "task-1",
		TripID:       "trip-1",
		FlightNumber: "UA2013",
	}
}

func disruptedStatus() *entity.FlightStatus {
	return &entity.FlightStatus{
		FlightNumber: "UA2013",
		Carrier:      "United Airlines",
		State:        entity.StateCancelled,
	}
}

func TestRank_SameCarrierOutweighsFareIncrease(t *testing.T) {
	r := NewRecommendationRanker(2 * time.Hour)

	// Seats between 5 and 10 keep the availability adjustment neutral, so
	// the carrier bonus is the deciding factor against the fare penalty.
	alternatives := []entity.Alternative{
		{FlightNumber: "UA2015", Carrier: "United Airlines", AvailableSeats: 8, PriceDeltaUSD: 50},
		{FlightNumber: "AA1234", Carrier: "American Airlines", AvailableSeats: 8, PriceDeltaUSD: 75},
		{FlightNumber: "DL5678", Carrier: "Delta Air Lines", AvailableSeats: 8, PriceDeltaUSD: 0},
	}

	rec := r.Rank(rankerTask(), disruptedStatus(), alternatives)

	require.NotNil(t, rec.Recommended)
	assert.Equal(t, "UA2015", rec.Recommended.FlightNumber)
	assert.InDelta(t, 120.0, rec.Recommended.Score, 0.001) // 100 - 5 + 20 + 5
	assert.Contains(t, rec.Reason, "same carrier")

	// The free same-route option scores 100 - 0 + 5 = 105, the $75 one 97.5
	assert.Equal(t, "DL5678", rec.Alternatives[1].FlightNumber)
	assert.InDelta(t, 105.0, rec.Alternatives[1].Score, 0.001)
	assert.InDelta(t, 97.5, rec.Alternatives[2].Score, 0.001)
}

func TestRank_FareClaimOnlyWhenActuallyCheapest(t *testing.T) {
	r := NewRecommendationRanker(2 * time.Hour)

	// The same-carrier option wins despite the free DL seat; the reason
	// must not call its +$50 fare the smallest increase
	alternatives := []entity.Alternative{
		{FlightNumber: "UA2015", Carrier: "United Airlines", AvailableSeats: 8, PriceDeltaUSD: 50},
		{FlightNumber: "DL5678", Carrier: "Delta Air Lines", AvailableSeats: 8, PriceDeltaUSD: 0},
	}

	rec := r.Rank(rankerTask(), disruptedStatus(), alternatives)
	require.NotNil(t, rec.Recommended)
	assert.Equal(t, "UA2015", rec.Recommended.FlightNumber)
	assert.NotContains(t, rec.Reason, "smallest fare increase")

	// With no cheaper candidate in the running the claim is legitimate
	rec = r.Rank(rankerTask(), disruptedStatus(), []entity.Alternative{
		{FlightNumber: "UA2015", Carrier: "United Airlines", AvailableSeats: 8, PriceDeltaUSD: 50},
		{FlightNumber: "DL5678", Carrier: "Delta Air Lines", AvailableSeats: 8, PriceDeltaUSD: 80},
	})
	require.NotNil(t, rec.Recommended)
	assert.Contains(t, rec.Reason, "smallest fare increase")
}

func TestRank_ChosenHasMaximumScore(t *testing.T) {
	r := NewRecommendationRanker(2 * time.Hour)

	alternatives := []entity.Alternative{
		{FlightNumber: "B6100", Carrier: "JetBlue", AvailableSeats: 20, PriceDeltaUSD: 10},
		{FlightNumber: "NK200", Carrier: "Spirit", AvailableSeats: 2, PriceDeltaUSD: 0},
		{FlightNumber: "AS300", Carrier: "Alaska", AvailableSeats: 7, PriceDeltaUSD: 400},
	}

	rec := r.Rank(rankerTask(), disruptedStatus(), alternatives)

	require.NotNil(t, rec.Recommended)
	for _, alt := range rec.Alternatives {
		assert.LessOrEqual(t, alt.Score, rec.Recommended.Score)
	}
}

func TestRank_PricePenaltyCapped(t *testing.T) {
	r := NewRecommendationRanker(2 * time.Hour)

	alternatives := []entity.Alternative{
		{FlightNumber: "AA1", Carrier: "American", AvailableSeats: 8, PriceDeltaUSD: 1000},
	}

	rec := r.Rank(rankerTask(), disruptedStatus(), alternatives)
	require.NotNil(t, rec.Recommended)
	assert.InDelta(t, 75.0, rec.Recommended.Score, 0.001) // 100 - 30 + 5
}

func TestRank_TieBreakIsDeterministic(t *testing.T) {
	r := NewRecommendationRanker(2 * time.Hour)

	tied := []entity.Alternative{
		{FlightNumber: "DL900", Carrier: "Delta", AvailableSeats: 8},
		{FlightNumber: "AA100", Carrier: "American", AvailableSeats: 8},
		{FlightNumber: "B6500", Carrier: "JetBlue", AvailableSeats: 8},
	}

	for i := 0; i < 5; i++ {
		rec := r.Rank(rankerTask(), disruptedStatus(), tied)
		require.NotNil(t, rec.Recommended)
		assert.Equal(t, "AA100", rec.Recommended.FlightNumber, "run %d", i)
	}
}

func TestRank_ExactlyOneChosen(t *testing.T) {
	r := NewRecommendationRanker(2 * time.Hour)

	alternatives := []entity.Alternative{
		{FlightNumber: "UA1", Carrier: "United Airlines", AvailableSeats: 15},
		{FlightNumber: "UA2", Carrier: "United Airlines", AvailableSeats: 15},
	}

	rec := r.Rank(rankerTask(), disruptedStatus(), alternatives)

	chosen := 0
	for _, alt := range rec.Alternatives {
		if alt.Chosen {
			chosen++
		}
	}
	assert.Equal(t, 1, chosen)
}

func TestRank_EmptyCandidates(t *testing.T) {
	r := NewRecommendationRanker(2 * time.Hour)

	rec := r.Rank(rankerTask(), disruptedStatus(), nil)

	assert.Nil(t, rec.Recommended)
	assert.Equal(t, "No alternatives found in window", rec.Reason)
	assert.Empty(t, rec.Alternatives)
	assert.WithinDuration(t, time.Now().Add(2*time.Hour), rec.Deadline, 5*time.Second)
}

func TestRank_DoesNotMutateInput(t *testing.T) {
	r := NewRecommendationRanker(2 * time.Hour)

	input := []entity.Alternative{
		{FlightNumber: "UA1", Carrier: "United Airlines", AvailableSeats: 15},
	}
	r.Rank(rankerTask(), disruptedStatus(), input)

	assert.Zero(t, input[0].Score)
	assert.False(t, input[0].Chosen)
}
