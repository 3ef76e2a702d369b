package core

import "net/mail"

type EmailMessage struct {
	To          []mail.Address
	Cc          []mail.Address
	Bcc         []mail.Address
	Subject     string
	TextContent string
}

func (m *EmailMessage) HasRecipients() bool {
	return len(m.To) > 0 || len(m.Cc) > 0 || len(m.Bcc) > 0
}

func (m *EmailMessage) HasContent() bool {
	return m.TextContent != ""
}

// EmailService sends messages asynchronously; failures are logged, not returned.
type EmailService interface {
	SendMessages(messages ...*EmailMessage)
}
