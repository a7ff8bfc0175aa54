package services

import (
	"context"
	"fmt"
	"log/slog"

	"eventscape/internal/domain"
)

type emailService struct {
	mailer   domain.Mailer
	renderer domain.EmailTemplateRenderer
	logger   *slog.Logger
}

// NewEmailService returns an EmailService that uses the given Mailer and template renderer.
func NewEmailService(mailer domain.Mailer, renderer domain.EmailTemplateRenderer, logger *slog.Logger) domain.EmailService {
	return &emailService{mailer: mailer, renderer: renderer, logger: logger}
}

// SendInvitation sends an event invitation using the "invitation" template.
func (s *emailService) SendInvitation(ctx context.Context, data *domain.InvitationEmailData) error {
	if data == nil {
		return fmt.Errorf("invitation email data is nil")
	}
	if err := s.send(ctx, "invitation", data.Email, data); err != nil {
		return err
	}
	s.logger.InfoContext(ctx, "invitation email sent", "to", data.Email, "event", data.EventName)
	return nil
}

// SendAnnouncement sends a host announcement using the "announcement" template.
func (s *emailService) SendAnnouncement(ctx context.Context, data *domain.AnnouncementEmailData) error {
	if data == nil {
		return fmt.Errorf("announcement email data is nil")
	}
	if err := s.send(ctx, "announcement", data.Email, data); err != nil {
		return err
	}
	s.logger.InfoContext(ctx, "announcement email sent", "to", data.Email, "event", data.EventName)
	return nil
}

func (s *emailService) send(ctx context.Context, template, to string, data any) error {
	subject, htmlBody, textBody, err := s.renderer.Render(template, data)
	if err != nil {
		return fmt.Errorf("failed to render %s template: %w", template, err)
	}
	if err := s.mailer.Send(ctx, to, subject, htmlBody, textBody); err != nil {
		return fmt.Errorf("failed to send %s email: %w", template, err)
	}
	return nil
}
