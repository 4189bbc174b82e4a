package mailer

import (
	"fmt"

	"gopkg.in/gomail.v2"
)

type IEmailService interface {
	SendHandoffAlert(toEmail, visitorName, visitorPhone, sessionId string) error
}

type emailService struct {
	dialer      *gomail.Dialer
	senderEmail string
	senderName  string
}

func NewEmailService(host string, port int, username, password, senderName string) IEmailService {
	return &emailService{
		dialer:      gomail.NewDialer(host, port, username, password),
		senderEmail: username,
		senderName:  senderName,
	}
}

// SendHandoffAlert tells the support staff a visitor is waiting for a
// human. Delivery failure is the caller's problem to log, not to retry:
// the admin console shows the session either way.
func (s *emailService) SendHandoffAlert(toEmail, visitorName, visitorPhone, sessionId string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", m.FormatAddress(s.senderEmail, s.senderName))
	m.SetHeader("To", toEmail)
	m.SetHeader("Subject", fmt.Sprintf("Live chat request from %s", visitorName))

	body := fmt.Sprintf(`
		<div style="font-family: Arial, sans-serif; padding: 20px; color: #333;">
			<h2>A visitor wants to talk to a human</h2>
			<p><strong>Name:</strong> %s</p>
			<p><strong>Phone:</strong> %s</p>
			<p>Open the admin chat panel and pick up session <strong>%s</strong>.</p>
		</div>
	`, visitorName, visitorPhone, sessionId)

	m.SetBody("text/html", body)
	return s.dialer.DialAndSend(m)
}
