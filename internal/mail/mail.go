package mail

import (
	"fmt"

	"github.com/ishira-web/expense-tracker/internal/config"
	"github.com/ishira-web/expense-tracker/internal/logger"

	"gopkg.in/gomail.v2"
)

// Mailer sends wallet notification emails over SMTP. All sends are
// fire-and-forget: failures are logged, never returned, because the wallet
// state has already been committed when a mail goes out.
type Mailer struct {
	dialer   *gomail.Dialer
	from     string
	fromName string
	currency string
}

// New builds a Mailer from config. It returns nil when no SMTP host is
// configured; callers treat a nil *Mailer as "notifications disabled".
func New(cfg config.MailConfig, currency string) *Mailer {
	if cfg.Host == "" {
		return nil
	}
	if currency == "" {
		currency = "LKR"
	}
	return &Mailer{
		dialer:   gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
		from:     cfg.From,
		fromName: cfg.FromName,
		currency: currency,
	}
}

func (m *Mailer) send(msg *gomail.Message) error {
	msg.SetAddressHeader("From", m.from, m.fromName)
	return m.dialer.DialAndSend(msg)
}

// SendDeposit mails a deposit confirmation to the wallet owner.
func (m *Mailer) SendDeposit(email, name string, amountCent int64) {
	msg := gomail.NewMessage()
	msg.SetAddressHeader("To", email, name)
	msg.SetHeader("Subject", "Deposit Received")
	msg.SetBody("text/html", fmt.Sprintf(`
		<h1>Deposit Received</h1>
		<p>Hello %s,</p>
		<p>We are pleased to inform you that a deposit of <strong>%s %s</strong> has been made to your wallet.</p>
		<p>Thank you.</p>`,
		name, m.currency, formatCent(amountCent)))

	if err := m.send(msg); err != nil {
		logger.Errorf("send deposit email to %s: %v", email, err)
		return
	}
	logger.Infof("deposit email sent to %s", email)
}

// SendLowBalance alerts HR that a user's wallet went negative.
func (m *Mailer) SendLowBalance(emails []string, name string, balanceCent, totalDepositedCent int64) {
	if len(emails) == 0 {
		return
	}

	msg := gomail.NewMessage()
	msg.SetHeader("To", emails...)
	msg.SetHeader("Subject", fmt.Sprintf("Low Balance Alert: %s", name))
	msg.SetBody("text/html", fmt.Sprintf(`
		<h1>Low Balance Alert</h1>
		<p>User <strong>%s</strong> has exceeded their deposit amount.</p>
		<p><strong>Current Balance:</strong> %s %s</p>
		<p><strong>Total Deposit was:</strong> %s %s</p>
		<p>Please review and update the deposit amount.</p>`,
		name, m.currency, formatCent(balanceCent), m.currency, formatCent(totalDepositedCent)))

	if err := m.send(msg); err != nil {
		logger.Errorf("send low balance email: %v", err)
		return
	}
	logger.Infof("low balance email sent to %d hr recipients", len(emails))
}

func formatCent(cent int64) string {
	sign := ""
	if cent < 0 {
		sign = "-"
		cent = -cent
	}
	return fmt.Sprintf("%s%d.%02d", sign, cent/100, cent%100)
}
