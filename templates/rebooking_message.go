package templates

import (
	"fmt"
	"strings"

	"flightwatch-service/internal/domain/entity"
)

const rebookingBodyTemplate = `<!DOCTYPE html>
<html>
<body style="font-family: Arial, sans-serif; color: #333;">
  <div style="max-width: 600px; margin: 0 auto; padding: 20px;">
    <h1 style="color: #2c3e50;">Rebooking recommendation for %s</h1>
    %s
    <h2>All options considered</h2>
    %s
    <p style="color: #666; font-size: 0.9em;">Act before %s &mdash; seats on
    alternatives are not held and may sell out.</p>
  </div>
</body>
</html>`

const chosenCardTemplate = `<div style="background: #f8f9fa; border-left: 4px solid #28a745; padding: 20px; margin: 15px 0;">
      <strong>Recommended:</strong> %s (%s)<br>
      <strong>Departs:</strong> %s<br>
      <strong>Arrives:</strong> %s<br>
      <strong>Seats available:</strong> %d<br>
      <strong>Fare difference:</strong> %s<br>
      <strong>Why:</strong> %s
    </div>`

// RecommendationSubject builds the subject line for a rebooking mail
func RecommendationSubject(event *entity.DisruptionEvent, rec *entity.RebookingRecommendation) string {
	if rec.Recommended == nil {
		return fmt.Sprintf("Flight %s: no rebooking options found", event.Task.FlightNumber)
	}
	return fmt.Sprintf("Rebooking suggestion: %s to %s",
		event.Task.FlightNumber, rec.Recommended.FlightNumber)
}

// RecommendationBody builds the HTML body listing the chosen alternative
// and the full ranked list
func RecommendationBody(event *entity.DisruptionEvent, rec *entity.RebookingRecommendation) string {
	var chosen string
	if rec.Recommended != nil {
		chosen = fmt.Sprintf(chosenCardTemplate,
			rec.Recommended.FlightNumber,
			rec.Recommended.Carrier,
			rec.Recommended.Departure.Format("2006-01-02 15:04"),
			rec.Recommended.Arrival.Format("2006-01-02 15:04"),
			rec.Recommended.AvailableSeats,
			fareDelta(rec.Recommended.PriceDeltaUSD),
			rec.Reason,
		)
	} else {
		chosen = fmt.Sprintf(`<div style="background: #fff3cd; padding: 20px; margin: 15px 0;">%s</div>`, rec.Reason)
	}

	var rows []string
	for _, alt := range rec.Alternatives {
		marker := ""
		if alt.Chosen {
			marker = " &#10003;"
		}
		rows = append(rows, fmt.Sprintf(
			`<li>%s (%s) departs %s, %d seats, %s, score %.1f%s</li>`,
			alt.FlightNumber, alt.Carrier,
			alt.Departure.Format("15:04"),
			alt.AvailableSeats,
			fareDelta(alt.PriceDeltaUSD),
			alt.Score,
			marker,
		))
	}
	options := "<p>No alternatives were found in the search window.</p>"
	if len(rows) > 0 {
		options = "<ol>" + strings.Join(rows, "") + "</ol>"
	}

	return fmt.Sprintf(rebookingBodyTemplate,
		event.Task.FlightNumber,
		chosen,
		options,
		rec.Deadline.Format("2006-01-02 15:04 MST"),
	)
}

func fareDelta(delta float64) string {
	switch {
	case delta > 0:
		return fmt.Sprintf("+$%.0f", delta)
	case delta < 0:
		return fmt.Sprintf("-$%.0f", -delta)
	default:
		return "no fare change"
	}
}
