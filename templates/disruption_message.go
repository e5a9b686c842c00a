package templates

import (
	"fmt"

	"flightwatch-service/internal/domain/entity"
	"flightwatch-service/pkg/utils"
)

const disruptionBodyTemplate = `<!DOCTYPE html>
<html>
<body style="font-family: Arial, sans-serif; color: #333;">
  <div style="max-width: 600px; margin: 0 auto; padding: 20px;">
    <h1 style="color: #c0392b;">Flight %s %s</h1>
    <div style="background: #fff3cd; border-left: 4px solid #ffc107; padding: 15px;">
      <strong>Status:</strong> %s<br>
      <strong>Route:</strong> %s &rarr; %s<br>
      <strong>Carrier:</strong> %s<br>
      <strong>Scheduled departure:</strong> %s<br>
      <strong>Delay:</strong> %s
    </div>
    <p>We are searching for alternative flights and will follow up with a
    rebooking recommendation shortly.</p>
  </div>
</body>
</html>`

// DisruptionSubject builds the subject line for a disruption alert
func DisruptionSubject(event *entity.DisruptionEvent) string {
	if event.Kind == entity.CancelledDisruption {
		return fmt.Sprintf("Flight %s cancelled", event.Task.FlightNumber)
	}
	return fmt.Sprintf("Flight %s delayed %d minutes",
		event.Task.FlightNumber, event.Status.DelayMinutes)
}

// DisruptionBody builds the HTML body for a disruption alert. Airport
// rows may be nil when reference data is missing; the IATA codes from the
// task are used instead.
func DisruptionBody(event *entity.DisruptionEvent, departure, arrival *entity.Airport) string {
	headline := "delayed"
	if event.Kind == entity.CancelledDisruption {
		headline = "cancelled"
	}

	delayText := "none reported"
	if event.Status.DelayMinutes > 0 {
		delayText = fmt.Sprintf("%d minutes", event.Status.DelayMinutes)
	}

	departureText := "unknown"
	if !event.Status.ScheduledDeparture.IsZero() {
		tz := ""
		if departure != nil {
			tz = departure.TzName
		}
		departureText = utils.FormatInLocation(event.Status.ScheduledDeparture, tz)
	}

	return fmt.Sprintf(disruptionBodyTemplate,
		event.Task.FlightNumber,
		headline,
		event.Status.State,
		airportLabel(event.Task.DepartureAirport, departure),
		airportLabel(event.Task.ArrivalAirport, arrival),
		event.Status.Carrier,
		departureText,
		delayText,
	)
}

func airportLabel(code string, airport *entity.Airport) string {
	if airport == nil || airport.Name == "" {
		return code
	}
	return fmt.Sprintf("%s | %s", airport.Name, airport.CityName)
}
