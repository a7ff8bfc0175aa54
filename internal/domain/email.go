package domain

import "context"

// Mailer defines the contract for sending emails (infrastructure port).
type Mailer interface {
	Send(ctx context.Context, to, subject, html, text string) error
}

// EmailTemplateRenderer renders email content from a named template with the given data.
type EmailTemplateRenderer interface {
	Render(templateName string, data any) (subject, htmlBody, textBody string, err error)
}

// InvitationEmailData holds data for the event invitation email.
type InvitationEmailData struct {
	Email     string
	HostName  string
	EventName string
	Message   string
	Link      string
}

// AnnouncementEmailData holds data for the announcement email.
type AnnouncementEmailData struct {
	Email       string
	DisplayName string
	EventName   string
	Content     string
}

// EmailService defines the contract for sending domain-level emails.
type EmailService interface {
	SendInvitation(ctx context.Context, data *InvitationEmailData) error
	SendAnnouncement(ctx context.Context, data *AnnouncementEmailData) error
}
