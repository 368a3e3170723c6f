package services

import (
	"github.com/eedraws/draws-backend/shared"
	"github.com/sirupsen/logrus"
	"gopkg.in/gomail.v2"
)

// NotifierService ships the human-readable draw summary over SMTP.
// Transport details (STARTTLS handshake, auth) live entirely in the dialer.
type NotifierService struct {
	dialer  *gomail.Dialer
	from    string
	logger  *logrus.Entry
	metrics *shared.ServiceMetrics
}

// NewNotifierService creates a notifier with the given SMTP credentials.
func NewNotifierService(server string, port int, user, password, from string) *NotifierService {
	return &NotifierService{
		dialer:  gomail.NewDialer(server, port, user, password),
		from:    from,
		logger:  logrus.WithField("component", "NotifierService"),
		metrics: shared.NewServiceMetrics("notifier-service"),
	}
}

// Send delivers one plain-text message. A failure is returned as a
// notification-category error; the caller logs it and moves on, since a
// completed synchronization is never rolled back over a lost email.
func (s *NotifierService) Send(subject, body, to string) error {
	message := gomail.NewMessage()
	message.SetHeader("From", s.from)
	message.SetHeader("To", to)
	message.SetHeader("Subject", subject)
	message.SetBody("text/plain", body)

	if err := s.dialer.DialAndSend(message); err != nil {
		s.metrics.RecordRequest(false)
		return shared.WrapError(err, shared.ErrorCategoryNotification, "EMAIL_SEND", "notifier-service", "Send", true)
	}

	s.metrics.RecordRequest(true)
	s.logger.WithFields(logrus.Fields{
		"recipient": to,
		"subject":   subject,
	}).Info("Email sent successfully")
	return nil
}

// Metrics exposes delivery counters.
func (s *NotifierService) Metrics() *shared.ServiceMetrics {
	return s.metrics
}
