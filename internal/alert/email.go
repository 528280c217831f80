package alert

import (
	"context"
	"fmt"

	"notify-engine/internal/common/config"
	"notify-engine/internal/common/errors"
	"notify-engine/internal/common/logger"
	"notify-engine/internal/models"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"
)

// SESService is the slice of the SES client the email channel needs.
// Defined here so tests can substitute a mock.
type SESService interface {
	SendEmail(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error)
}

// EmailEmitter delivers alerts as SES emails to a fixed recipient.
type EmailEmitter struct {
	client    SESService
	fromEmail string
	toEmail   string
	logger    logger.Logger
}

func NewEmailEmitter(ctx context.Context, cfg config.AlertsConfig, log logger.Logger) (*EmailEmitter, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.AWS.Region))
	if err != nil {
		return nil, fmt.Errorf("load AWS config: %w", err)
	}
	return NewEmailEmitterWithClient(ses.NewFromConfig(awsCfg), cfg, log), nil
}

func NewEmailEmitterWithClient(client SESService, cfg config.AlertsConfig, log logger.Logger) *EmailEmitter {
	return &EmailEmitter{
		client:    client,
		fromEmail: cfg.Email.FromEmail,
		toEmail:   cfg.Email.ToEmail,
		logger:    log.WithFields(map[string]interface{}{"channel": "email"}),
	}
}

func (e *EmailEmitter) Success(ctx context.Context, title, message string, opts Options) error {
	return e.send(ctx, models.KindSuccess, title, message, opts)
}

func (e *EmailEmitter) Error(ctx context.Context, title, message string, opts Options) error {
	return e.send(ctx, models.KindError, title, message, opts)
}

func (e *EmailEmitter) Warning(ctx context.Context, title, message string, opts Options) error {
	return e.send(ctx, models.KindWarning, title, message, opts)
}

func (e *EmailEmitter) Info(ctx context.Context, title, message string, opts Options) error {
	return e.send(ctx, models.KindInfo, title, message, opts)
}

func (e *EmailEmitter) Reminder(ctx context.Context, title, message string, opts Options) error {
	return e.send(ctx, models.KindReminder, title, message, opts)
}

func (e *EmailEmitter) send(ctx context.Context, kind models.Kind, title, message string, opts Options) error {
	subject := fmt.Sprintf("[%s] %s", kind, title)
	body := message
	if opts.Entity != nil {
		body = fmt.Sprintf("%s\n\n%s: %s", message, opts.Entity.Type, opts.Entity.ID)
	}

	_, err := e.client.SendEmail(ctx, &ses.SendEmailInput{
		Destination: &types.Destination{
			ToAddresses: []string{e.toEmail},
		},
		Message: &types.Message{
			Subject: &types.Content{Data: aws.String(subject)},
			Body: &types.Body{
				Text: &types.Content{Data: aws.String(body)},
				Html: &types.Content{Data: aws.String(body)},
			},
		},
		Source: aws.String(e.fromEmail),
	})
	if err != nil {
		return errors.NewAlertDeliveryFailedError("email", err)
	}
	return nil
}
