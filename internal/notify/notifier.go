package notify

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"salonq/internal/config"
	"salonq/internal/domain"
	"salonq/internal/metrics"
	"salonq/internal/worker"

	"github.com/rs/zerolog"
	"github.com/twilio/twilio-go"
	twclient "github.com/twilio/twilio-go/client"
	openapi "github.com/twilio/twilio-go/rest/api/v2010"
)

const whatsappPrefix = "whatsapp:"

// messageCreator is the part of the Twilio REST API the notifier uses.
type messageCreator interface {
	CreateMessage(params *openapi.CreateMessageParams) (*openapi.ApiV2010Message, error)
}

// TwilioNotifier sends WhatsApp messages through the Twilio REST API.
type TwilioNotifier struct {
	api    messageCreator
	from   string
	retry  worker.RetryPolicy
	logger *zerolog.Logger
}

func NewTwilioNotifier(cfg config.MessagingConfig, logger *zerolog.Logger) *TwilioNotifier {
	client := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username: cfg.AccountSID,
		Password: cfg.AuthToken,
	})
	return newTwilioNotifier(client.Api, cfg, logger)
}

func newTwilioNotifier(api messageCreator, cfg config.MessagingConfig, logger *zerolog.Logger) *TwilioNotifier {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	return &TwilioNotifier{
		api:  api,
		from: withPrefix(cfg.From),
		retry: worker.RetryPolicy{
			MaxRetries:    cfg.MaxRetries,
			InitialDelay:  500 * time.Millisecond,
			MaxDelay:      5 * time.Second,
			BackoffFactor: 2,
		},
		logger: logger,
	}
}

// Notify delivers body to phone. The error is returned after logging so the
// caller can keep the entry eligible for the next cycle.
func (n *TwilioNotifier) Notify(ctx context.Context, phone, body string) error {
	params := &openapi.CreateMessageParams{}
	params.SetTo(withPrefix(phone))
	params.SetFrom(n.from)
	params.SetBody(body)

	var sid string
	err := n.retry.Do(ctx, func() error {
		msg, err := n.api.CreateMessage(params)
		if err != nil {
			return err
		}
		if msg != nil && msg.Sid != nil {
			sid = *msg.Sid
		}
		return nil
	}, retryable)
	if err != nil {
		metrics.IncNotification("failed")
		n.logger.Error().Err(err).Str("phone", phone).Msg("whatsapp send failed")
		return fmt.Errorf("send whatsapp message: %w", err)
	}

	metrics.IncNotification("sent")
	n.logger.Info().Str("phone", phone).Str("sid", sid).Msg("whatsapp message sent")
	return nil
}

// retryable is false for client errors (bad number, auth): resending won't help.
func retryable(err error) bool {
	var restErr *twclient.TwilioRestError
	if errors.As(err, &restErr) {
		return restErr.Status >= 500 || restErr.Status == 429
	}
	return true
}

func withPrefix(phone string) string {
	if phone == "" || strings.HasPrefix(phone, whatsappPrefix) {
		return phone
	}
	return whatsappPrefix + phone
}

// LogNotifier только пишет сообщение в лог (режим без учетных данных Twilio).
type LogNotifier struct {
	logger *zerolog.Logger
}

func NewLogNotifier(logger *zerolog.Logger) *LogNotifier {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	return &LogNotifier{logger: logger}
}

func (n *LogNotifier) Notify(_ context.Context, phone, body string) error {
	metrics.IncNotification("sent")
	n.logger.Info().Str("phone", phone).Str("body", body).Msg("notification (log only)")
	return nil
}

// New picks the Twilio notifier when credentials are configured.
func New(cfg config.MessagingConfig, logger *zerolog.Logger) domain.Notifier {
	if cfg.AccountSID == "" {
		return NewLogNotifier(logger)
	}
	return NewTwilioNotifier(cfg, logger)
}
