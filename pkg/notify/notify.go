package notify

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/twilio/twilio-go"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"

	"estatedeal_backend/internal/model"
	"estatedeal_backend/pkg/logger"
)

var ErrNoChannel = errors.New("buyer has no phone number or email")

// SMSSender delivers a text message to a phone number.
type SMSSender interface {
	SendSMS(ctx context.Context, to, body string) error
}

// EmailSender delivers the OTP email.
type EmailSender interface {
	SendOTPEmail(ctx context.Context, email, name, code string) error
}

// Notifier delivers one-time codes to buyers: SMS when a sender is
// configured and the buyer has a phone, otherwise email, otherwise the
// debug log.
type Notifier struct {
	sms   SMSSender
	email EmailSender
}

func NewNotifier(sms SMSSender, email EmailSender) *Notifier {
	return &Notifier{sms: sms, email: email}
}

func (n *Notifier) SendOTP(ctx context.Context, buyer *model.Buyer, code string) error {
	fields := logrus.Fields{"buyer_id": buyer.ID}

	if n.sms != nil && buyer.Phone != "" {
		body := fmt.Sprintf("Your EstateDeal verification code is %s", code)
		if err := n.sms.SendSMS(ctx, buyer.Phone, body); err != nil {
			return fmt.Errorf("sms delivery failed: %w", err)
		}
		logger.Log.WithFields(fields).Info("OTP sent by SMS")
		return nil
	}

	if n.email != nil && buyer.Email != "" {
		if err := n.email.SendOTPEmail(ctx, buyer.Email, buyer.Name, code); err != nil {
			return fmt.Errorf("email delivery failed: %w", err)
		}
		logger.Log.WithFields(fields).Info("OTP sent by email")
		return nil
	}

	if (n.sms != nil || n.email != nil) && buyer.Phone == "" && buyer.Email == "" {
		logger.Log.WithFields(fields).Warn("OTP not delivered, buyer has no contact details")
		return ErrNoChannel
	}

	logger.Log.WithFields(fields).Debugf("OTP for buyer: %s", code)
	return nil
}

// TwilioSender sends SMS through the Twilio messages API.
type TwilioSender struct {
	client *twilio.RestClient
	from   string
}

func NewTwilioSender(accountSID, authToken, from string) *TwilioSender {
	client := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username: accountSID,
		Password: authToken,
	})
	return &TwilioSender{client: client, from: from}
}

func (s *TwilioSender) SendSMS(ctx context.Context, to, body string) error {
	params := &twilioApi.CreateMessageParams{}
	params.SetTo(to)
	params.SetFrom(s.from)
	params.SetBody(body)

	resp, err := s.client.Api.CreateMessage(params)
	if err != nil {
		return err
	}
	if resp.Sid != nil {
		logger.Log.Debugf("Twilio message queued: %s", *resp.Sid)
	}
	return nil
}
