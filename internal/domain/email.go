package domain

import "context"

// Mailer defines the contract for sending emails (infrastructure port).
type Mailer interface {
	Send(to, subject, html, text string) error
}

// EmailTemplateRenderer renders email content from a named template with the given data.
type EmailTemplateRenderer interface {
	Render(templateName string, data any) (subject, htmlBody, textBody string, err error)
}

// RSVPConfirmationEmailData holds data for the RSVP confirmation email.
type RSVPConfirmationEmailData struct {
	Email     string
	FirstName string
	EventName string
	Status    string
}

// InvitationEmailData holds data for the event invitation email.
type InvitationEmailData struct {
	Email     string
	FirstName string
	EventName string
	EventDate string
	RSVPURL   string
}

// EmailService defines the contract for sending domain-level emails. All
// sends are best-effort: callers log failures and never fail the triggering
// operation because of them.
type EmailService interface {
	SendRSVPConfirmation(ctx context.Context, data *RSVPConfirmationEmailData) error
	SendEventInvitation(ctx context.Context, data *InvitationEmailData) error
}
