package alert

import (
	"context"
	"encoding/json"
	"fmt"

	"notify-engine/internal/common/config"
	"notify-engine/internal/common/errors"
	"notify-engine/internal/common/logger"
	"notify-engine/internal/models"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sns"
)

// SNSService is the slice of the SNS client the push channel needs.
type SNSService interface {
	Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
}

// PushEmitter publishes alerts to an SNS topic. A missing topic ARN means
// the push channel was never provisioned; Registered reports that fact and
// the dispatcher checks it before every delivery.
type PushEmitter struct {
	client   SNSService
	topicARN string
	logger   logger.Logger
}

func NewPushEmitter(ctx context.Context, cfg config.AlertsConfig, log logger.Logger) (*PushEmitter, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.AWS.Region))
	if err != nil {
		return nil, fmt.Errorf("load AWS config: %w", err)
	}
	return NewPushEmitterWithClient(sns.NewFromConfig(awsCfg), cfg, log), nil
}

func NewPushEmitterWithClient(client SNSService, cfg config.AlertsConfig, log logger.Logger) *PushEmitter {
	return &PushEmitter{
		client:   client,
		topicARN: cfg.Push.TopicARN,
		logger:   log.WithFields(map[string]interface{}{"channel": "push"}),
	}
}

// Registered reports whether the push channel has an endpoint to publish to.
func (p *PushEmitter) Registered() bool {
	return p.topicARN != ""
}

func (p *PushEmitter) Success(ctx context.Context, title, message string, opts Options) error {
	return p.publish(ctx, models.KindSuccess, title, message, opts)
}

func (p *PushEmitter) Error(ctx context.Context, title, message string, opts Options) error {
	return p.publish(ctx, models.KindError, title, message, opts)
}

func (p *PushEmitter) Warning(ctx context.Context, title, message string, opts Options) error {
	return p.publish(ctx, models.KindWarning, title, message, opts)
}

func (p *PushEmitter) Info(ctx context.Context, title, message string, opts Options) error {
	return p.publish(ctx, models.KindInfo, title, message, opts)
}

func (p *PushEmitter) Reminder(ctx context.Context, title, message string, opts Options) error {
	return p.publish(ctx, models.KindReminder, title, message, opts)
}

type pushPayload struct {
	Kind       string `json:"kind"`
	Title      string `json:"title"`
	Message    string `json:"message"`
	EntityType string `json:"entityType,omitempty"`
	EntityID   string `json:"entityId,omitempty"`
}

func (p *PushEmitter) publish(ctx context.Context, kind models.Kind, title, message string, opts Options) error {
	payload := pushPayload{
		Kind:    string(kind),
		Title:   title,
		Message: message,
	}
	if opts.Entity != nil {
		payload.EntityType = string(opts.Entity.Type)
		payload.EntityID = opts.Entity.ID
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return errors.NewAlertDeliveryFailedError("push", err)
	}

	_, err = p.client.Publish(ctx, &sns.PublishInput{
		TopicArn: aws.String(p.topicARN),
		Subject:  aws.String(title),
		Message:  aws.String(string(data)),
	})
	if err != nil {
		return errors.NewAlertDeliveryFailedError("push", err)
	}
	return nil
}
