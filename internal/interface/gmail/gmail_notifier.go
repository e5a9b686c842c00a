package gmail

import (
	"context"
	"encoding/base64"
	"fmt"

	"flightwatch-service/internal/domain/entity"
	"flightwatch-service/internal/domain/repository"
	"flightwatch-service/pkg/logger"
	"flightwatch-service/templates"

	"golang.org/x/oauth2"
	"google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"
)

// GmailNotifier delivers disruption alerts and rebooking recommendations
// over the Gmail API. A send failure is returned to the caller; the engine
// persists its outputs regardless.
type GmailNotifier struct {
	gmailService *gmail.Service
	airportRepo  repository.AirportRepository
	sender       string
	logger       logger.Logger
}

// NewGmailNotifier creates a new Gmail-backed notifier
func NewGmailNotifier(ctx context.Context, tokenSource oauth2.TokenSource, airportRepo repository.AirportRepository, sender string, logger logger.Logger) (*GmailNotifier, error) {
	service, err := gmail.NewService(ctx, option.WithTokenSource(tokenSource))
	if err != nil {
		return nil, err
	}

	return &GmailNotifier{
		gmailService: service,
		airportRepo:  airportRepo,
		sender:       sender,
		logger:       logger,
	}, nil
}

// SendDisruption mails a disruption alert to the task's notification target
func (n *GmailNotifier) SendDisruption(ctx context.Context, event *entity.DisruptionEvent) error {
	departure := n.lookupAirport(ctx, event.Task.DepartureAirport)
	arrival := n.lookupAirport(ctx, event.Task.ArrivalAirport)

	subject := templates.DisruptionSubject(event)
	body := templates.DisruptionBody(event, departure, arrival)

	if err := n.send(event.Task.NotifyEmail, subject, body); err != nil {
		return fmt.Errorf("failed to send disruption notification: %w", err)
	}

	n.logger.Info("Disruption notification sent",
		"task", event.Task.ID, "to", event.Task.NotifyEmail, "kind", event.Kind)
	return nil
}

// SendRecommendation mails the rebooking recommendation
func (n *GmailNotifier) SendRecommendation(ctx context.Context, event *entity.DisruptionEvent, rec *entity.RebookingRecommendation) error {
	subject := templates.RecommendationSubject(event, rec)
	body := templates.RecommendationBody(event, rec)

	if err := n.send(event.Task.NotifyEmail, subject, body); err != nil {
		return fmt.Errorf("failed to send recommendation notification: %w", err)
	}

	n.logger.Info("Recommendation notification sent",
		"task", event.Task.ID, "to", event.Task.NotifyEmail,
		"alternatives", len(rec.Alternatives))
	return nil
}

func (n *GmailNotifier) send(to, subject, htmlBody string) error {
	raw := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\nMIME-Version: 1.0\r\nContent-Type: text/html; charset=\"UTF-8\"\r\n\r\n%s",
		n.sender, to, subject, htmlBody)

	message := &gmail.Message{
		Raw: base64.URLEncoding.EncodeToString([]byte(raw)),
	}

	_, err := n.gmailService.Users.Messages.Send("me", message).Do()
	return err
}

func (n *GmailNotifier) lookupAirport(ctx context.Context, code string) *entity.Airport {
	if n.airportRepo == nil || code == "" {
		return nil
	}
	airport, err := n.airportRepo.GetByCode(ctx, code)
	if err != nil {
		n.logger.Debug("Airport lookup failed", "code", code, "error", err)
		return nil
	}
	return airport
}
