package services

import (
	"bytes"
	"context"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"math"
	"time"

	"github.com/counselflow/counselflow-api/internal/config"
	"github.com/counselflow/counselflow-api/internal/models"
	"github.com/counselflow/counselflow-api/pkg/logger"
	"github.com/resend/resend-go/v2"
)

//go:embed templates/email/*.html
var emailTemplates embed.FS

// emailSender is the part of the Resend client used to deliver mail
type emailSender interface {
	Send(params *resend.SendEmailRequest) (*resend.SendEmailResponse, error)
}

type EmailService struct {
	config *config.Config
	emails emailSender
}

func NewEmailService(cfg *config.Config) *EmailService {
	s := &EmailService{config: cfg}
	if cfg.EmailEnabled() {
		s.emails = resend.NewClient(cfg.ResendAPIKey).Emails
	}
	return s
}

// Enabled reports whether mail can be delivered
func (s *EmailService) Enabled() bool {
	return s.emails != nil
}

type expiringContractLine struct {
	ID       string
	Title    string
	Client   string
	EndDate  string
	DaysLeft int
}

// SendExpiringDigest mails lawyer the list of their contracts ending soon
func (s *EmailService) SendExpiringDigest(ctx context.Context, lawyer *models.User, contracts []models.Contract, now time.Time) error {
	if err := s.checkEmailPreconditions(lawyer); err != nil {
		return err
	}

	lines := make([]expiringContractLine, 0, len(contracts))
	for i := range contracts {
		c := &contracts[i]
		if c.EndDate == nil {
			continue
		}
		lines = append(lines, expiringContractLine{
			ID:       c.ID,
			Title:    c.Title,
			Client:   c.Client.Name,
			EndDate:  c.EndDate.Format("Jan 2, 2006"),
			DaysLeft: int(math.Ceil(c.EndDate.Sub(now).Hours() / 24)),
		})
	}

	data := struct {
		Name      string
		Days      int
		Contracts []expiringContractLine
		AppURL    string
	}{
		Name:      lawyer.FullName,
		Days:      s.config.ExpiryReminderDays,
		Contracts: lines,
		AppURL:    s.config.AppURL,
	}

	body, err := s.renderTemplate("expiring_contracts.html", data)
	if err != nil {
		return err
	}

	subject := fmt.Sprintf("%d contract(s) expiring in the next %d days", len(lines), s.config.ExpiryReminderDays)
	_, err = s.emails.Send(&resend.SendEmailRequest{
		From:    s.config.FromEmail,
		To:      []string{lawyer.Email},
		Subject: subject,
		Html:    body,
	})
	if err != nil {
		logger.WithContext(ctx).Error("failed to send email", "to", lawyer.Email, "error", err)
		return err
	}

	logger.WithContext(ctx).Info("email sent", "to", lawyer.Email, "subject", subject)
	return nil
}

func (s *EmailService) checkEmailPreconditions(user *models.User) error {
	if !s.Enabled() {
		return ErrEmailDisabled
	}
	if user == nil || user.Email == "" {
		return errors.New("email address is empty")
	}
	return nil
}

func (s *EmailService) renderTemplate(name string, data any) (string, error) {
	tmpl, err := template.ParseFS(emailTemplates, "templates/email/"+name)
	if err != nil {
		return "", fmt.Errorf("failed to parse template %s: %w", name, err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to execute template %s: %w", name, err)
	}

	return buf.String(), nil
}
