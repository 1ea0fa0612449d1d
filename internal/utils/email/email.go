package email

import (
	"context"
	"fmt"
	"net/smtp"

	"github.com/Dan9191/finance-tracker/internal/config"
	"github.com/Dan9191/finance-tracker/internal/models"
	"github.com/Rhymond/go-money"
	"github.com/jordan-wright/email"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// Sender handles sending emails via SMTP
type Sender struct {
	cfg    *config.Config
	logger *logrus.Logger
	send   func(e *email.Email, addr string, auth smtp.Auth) error
}

// NewSender creates a new email sender
func NewSender(cfg *config.Config, logger *logrus.Logger) *Sender {
	return &Sender{
		cfg:    cfg,
		logger: logger,
		send:   func(e *email.Email, addr string, auth smtp.Auth) error { return e.Send(addr, auth) },
	}
}

// FormatAmount renders an amount with the currency symbol and grouping of its currency.
func FormatAmount(amount decimal.Decimal, currency string) string {
	cur := money.GetCurrency(currency)
	if cur == nil {
		return fmt.Sprintf("%s %s", amount.StringFixed(2), currency)
	}
	minor := amount.Shift(int32(cur.Fraction)).Round(0).IntPart()
	return money.New(minor, cur.Code).Display()
}

// buildReminder composes the message for one upcoming or overdue payment.
func buildReminder(from, to, username string, p models.UpcomingPayment) *email.Email {
	e := email.NewEmail()
	e.From = from
	e.To = []string{to}
	amount := FormatAmount(p.Amount, p.Currency)

	body := fmt.Sprintf("Dear %s,\n\n", username)
	switch {
	case p.Overdue():
		e.Subject = fmt.Sprintf("Overdue payment: %s", p.Title)
		body += fmt.Sprintf(
			"Payment #%d of %s for \"%s\" was due on %s and is %d day(s) overdue.\n"+
				"Please make the payment as soon as possible.\n",
			p.N, amount, p.Title, p.Date, -p.DaysUntil,
		)
	case p.DaysUntil == 0:
		e.Subject = fmt.Sprintf("Payment due today: %s", p.Title)
		body += fmt.Sprintf("Payment #%d of %s for \"%s\" is due today (%s).\n", p.N, amount, p.Title, p.Date)
	default:
		e.Subject = fmt.Sprintf("Upcoming payment reminder: %s", p.Title)
		body += fmt.Sprintf(
			"This is a reminder that payment #%d of %s for \"%s\" is due on %s, in %d day(s).\n",
			p.N, amount, p.Title, p.Date, p.DaysUntil,
		)
	}
	body += "\nBest regards,\nFinance Tracker"
	e.Text = []byte(body)
	return e
}

// SendPaymentReminder sends a payment reminder email
func (s *Sender) SendPaymentReminder(ctx context.Context, to, username string, p models.UpcomingPayment) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	e := buildReminder(s.cfg.SenderEmail, to, username, p)

	addr := fmt.Sprintf("%s:%s", s.cfg.SMTPHost, s.cfg.SMTPPort)
	var auth smtp.Auth
	if s.cfg.SMTPUsername != "" {
		auth = smtp.PlainAuth("", s.cfg.SMTPUsername, s.cfg.SMTPPassword, s.cfg.SMTPHost)
	}
	if err := s.send(e, addr, auth); err != nil {
		s.logger.Errorf("Failed to send email to %s: %v", to, err)
		return fmt.Errorf("failed to send email: %w", err)
	}

	s.logger.Infof("Email sent to %s: %s", to, e.Subject)
	return nil
}
