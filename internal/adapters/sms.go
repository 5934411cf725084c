// internal/adapters/sms.go
package adapters

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sns"

	"notifyd/internal/common/config"
	"notifyd/internal/common/logger"
	"notifyd/internal/models"
)

// SNSService is the SNS surface used by the SMS adapter, narrowed for mocking.
type SNSService interface {
	Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
}

// SMSAdapter sends via SNS, or reports a configured simulated outcome when
// running without a real transport.
type SMSAdapter struct {
	client          SNSService
	simulate        bool
	simulateOutcome string
	logger          logger.Logger
}

func NewSMSAdapter(cfg config.SMSChannelConfig, log logger.Logger) (*SMSAdapter, error) {
	a := &SMSAdapter{
		simulate:        cfg.Simulate,
		simulateOutcome: cfg.SimulateOutcome,
		logger:          log,
	}

	if !cfg.Simulate {
		awsCfg, err := awsconfig.LoadDefaultConfig(context.Background(), awsconfig.WithRegion(cfg.Region))
		if err != nil {
			return nil, fmt.Errorf("load AWS config: %w", err)
		}
		a.client = sns.NewFromConfig(awsCfg)
	}

	return a, nil
}

// NewSMSAdapterWithClient injects an SNS client, used by tests.
func NewSMSAdapterWithClient(client SNSService, log logger.Logger) *SMSAdapter {
	return &SMSAdapter{client: client, logger: log}
}

func (a *SMSAdapter) Channel() models.Channel {
	return models.ChannelSMS
}

func (a *SMSAdapter) Attempt(ctx context.Context, n *models.Notification, content *models.Content, target *Target) *Result {
	if a.simulate {
		return simulated(a.simulateOutcome)
	}

	if target == nil || target.User == nil || target.User.Phone == "" {
		return permanent("recipient has no phone number", 0, 0)
	}

	start := time.Now()
	_, err := a.client.Publish(ctx, &sns.PublishInput{
		PhoneNumber: aws.String(target.User.Phone),
		Message:     aws.String(content.Body),
	})
	latency := time.Since(start)

	if err != nil {
		return transient(fmt.Sprintf("sns publish failed: %v", err), 0, latency)
	}
	return success("sms accepted", 0, latency)
}
