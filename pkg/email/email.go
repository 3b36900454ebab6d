package email

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"html/template"
	"io"
	"net/http"
	"time"

	"estatedeal_backend/pkg/logger"
)

const resendEndpoint = "https://api.resend.com/emails"

type EmailService struct {
	apiKey    string
	from      string
	endpoint  string
	client    *http.Client
	templates *template.Template
}

type EmailData struct {
	From    string `json:"from"`
	To      string `json:"to"`
	Subject string `json:"subject"`
	Html    string `json:"html"`
}

type WelcomeEmailData struct {
	Name string
	Role string
}

type OTPEmailData struct {
	Name string
	Code string
}

type VisitReminderData struct {
	Name          string
	PropertyTitle string
	ScheduledDate time.Time
}

type CommissionPaidData struct {
	Name          string
	Amount        string
	Currency      string
	TransactionID uint
}

func NewEmailService(apiKey, from string) (*EmailService, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("resend API key is required")
	}

	templates, err := loadTemplates()
	if err != nil {
		return nil, fmt.Errorf("error loading email templates: %v", err)
	}

	return &EmailService{
		apiKey:    apiKey,
		from:      from,
		endpoint:  resendEndpoint,
		client:    &http.Client{Timeout: 10 * time.Second},
		templates: templates,
	}, nil
}

func (s *EmailService) sendTemplateEmail(ctx context.Context, to, subject, templateName string, data interface{}) error {
	var body bytes.Buffer
	if err := s.templates.ExecuteTemplate(&body, templateName, data); err != nil {
		return fmt.Errorf("template execution error: %v", err)
	}

	jsonData, err := json.Marshal(EmailData{
		From:    s.from,
		To:      to,
		Subject: subject,
		Html:    body.String(),
	})
	if err != nil {
		return fmt.Errorf("error marshaling email data: %v", err)
	}

	logger.Log.Debugf("Sending %s email to %s", templateName, to)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, bytes.NewBuffer(jsonData))
	if err != nil {
		return fmt.Errorf("error creating request: %v", err)
	}
	req.Header.Set("Authorization", "Bearer "+s.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("error sending request: %v", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("error reading response: %v", err)
	}

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return fmt.Errorf("resend API error: %s", string(respBody))
	}

	return nil
}

func (s *EmailService) SendWelcomeEmail(ctx context.Context, email, name, role string) error {
	data := WelcomeEmailData{Name: name, Role: role}
	return s.sendTemplateEmail(ctx, email, "Welcome to EstateDeal", "welcome.html", data)
}

func (s *EmailService) SendOTPEmail(ctx context.Context, email, name, code string) error {
	data := OTPEmailData{Name: name, Code: code}
	return s.sendTemplateEmail(ctx, email, "Your verification code", "otp_code.html", data)
}

func (s *EmailService) SendVisitReminder(ctx context.Context, email, name, propertyTitle string, scheduled time.Time) error {
	data := VisitReminderData{
		Name:          name,
		PropertyTitle: propertyTitle,
		ScheduledDate: scheduled,
	}
	return s.sendTemplateEmail(ctx, email, "Reminder: your property visit is tomorrow", "visit_reminder.html", data)
}

func (s *EmailService) SendCommissionPaidEmail(ctx context.Context, email, name, amount, currency string, transactionID uint) error {
	data := CommissionPaidData{
		Name:          name,
		Amount:        amount,
		Currency:      currency,
		TransactionID: transactionID,
	}
	return s.sendTemplateEmail(ctx, email, "Your commission has been sent", "commission_paid.html", data)
}
