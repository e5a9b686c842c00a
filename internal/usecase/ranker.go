package usecase

import (
	"math"
	"sort"
	"strings"
	"time"

	"flightwatch-service/internal/domain/entity"
	"flightwatch-service/pkg/utils"
)

// How long a recommendation stays actionable before seats are assumed gone
const defaultRecommendationTTL = 2 * time.Hour

const (
	baseScore         = 100.0
	maxPricePenalty   = 30.0
	seatBonus         = 10.0
	seatPenalty       = 10.0
	sameCarrierBonus  = 20.0
	proximityBonus    = 5.0
	plentifulSeats    = 10
	scarceSeats       = 5
	noAlternativesMsg = "No alternatives found in window"
)

// RecommendationRanker scores alternatives and selects a top
// recommendation with a human-readable justification
type RecommendationRanker struct {
	ttl time.Duration
}

// NewRecommendationRanker creates a ranker; a non-positive TTL falls back
// to the default two hours
func NewRecommendationRanker(ttl time.Duration) *RecommendationRanker {
	if ttl <= 0 {
		ttl = defaultRecommendationTTL
	}
	return &RecommendationRanker{ttl: ttl}
}

// Rank scores each alternative against the original flight, sorts
// descending and marks the winner chosen. Ties break by flight number so
// repeated runs on identical input are reproducible. An empty candidate
// list yields a valid recommendation with no chosen flight.
func (r *RecommendationRanker) Rank(task *entity.MonitoringTask, original *entity.FlightStatus, alternatives []entity.Alternative) *entity.RebookingRecommendation {
	now := time.Now()
	rec := &entity.RebookingRecommendation{
		TaskID:       task.ID,
		FlightNumber: task.FlightNumber,
		Deadline:     now.Add(r.ttl),
		CreatedAt:    now,
	}

	if len(alternatives) == 0 {
		rec.Reason = noAlternativesMsg
		rec.Alternatives = []entity.Alternative{}
		return rec
	}

	scored := make([]entity.Alternative, len(alternatives))
	copy(scored, alternatives)
	for i := range scored {
		scored[i].Score = r.score(original, &scored[i])
		scored[i].Chosen = false
	}

	sort.SliceStable(scored, func(i, j int) bool {
		if scored[i].Score != scored[j].Score {
			return scored[i].Score > scored[j].Score
		}
		return scored[i].FlightNumber < scored[j].FlightNumber
	})

	scored[0].Chosen = true
	chosen := scored[0]
	rec.Recommended = &chosen
	rec.Alternatives = scored
	rec.Reason = r.justify(original, &chosen, scored)
	return rec
}

func (r *RecommendationRanker) score(original *entity.FlightStatus, alt *entity.Alternative) float64 {
	score := baseScore

	// Diminishing price penalty, capped so a pricey seat on the right
	// flight can still win
	score -= math.Min(alt.PriceDeltaUSD/10, maxPricePenalty)

	if alt.AvailableSeats > plentifulSeats {
		score += seatBonus
	} else if alt.AvailableSeats < scarceSeats {
		score -= seatPenalty
	}

	if sameCarrier(original, alt) {
		score += sameCarrierBonus
	}

	// Flat bonus: every candidate already passed the departure-window filter
	score += proximityBonus

	return score
}

func (r *RecommendationRanker) justify(original *entity.FlightStatus, chosen *entity.Alternative, all []entity.Alternative) string {
	var factors []string

	if sameCarrier(original, chosen) {
		factors = append(factors, "same carrier")
	}
	switch {
	case chosen.PriceDeltaUSD <= 0:
		factors = append(factors, "no fare increase")
	case chosen.PriceDeltaUSD <= lowestFareDelta(all):
		// Only claimed when no cheaper candidate was in the running
		factors = append(factors, "smallest fare increase")
	}
	if chosen.AvailableSeats > plentifulSeats {
		factors = append(factors, "good seat availability")
	}

	if len(factors) == 0 {
		return "Best balance of price and timing"
	}
	return strings.Join(factors, ", ")
}

func lowestFareDelta(all []entity.Alternative) float64 {
	lowest := math.Inf(1)
	for _, alt := range all {
		if alt.PriceDeltaUSD < lowest {
			lowest = alt.PriceDeltaUSD
		}
	}
	return lowest
}

func sameCarrier(original *entity.FlightStatus, alt *entity.Alternative) bool {
	if alt.Carrier != "" && alt.Carrier == original.Carrier {
		return true
	}
	return utils.CarrierCode(alt.FlightNumber) == utils.CarrierCode(original.FlightNumber)
}
