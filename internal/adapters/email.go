// internal/adapters/email.go
package adapters

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"

	"notifyd/internal/common/config"
	"notifyd/internal/common/logger"
	"notifyd/internal/models"
)

// SESService is the SES surface used by the email adapter, narrowed for mocking.
type SESService interface {
	SendEmail(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error)
}

// EmailAdapter sends via SES, or reports a configured simulated outcome when
// running without a real transport.
type EmailAdapter struct {
	client          SESService
	fromEmail       string
	simulate        bool
	simulateOutcome string
	logger          logger.Logger
}

func NewEmailAdapter(cfg config.EmailChannelConfig, log logger.Logger) (*EmailAdapter, error) {
	a := &EmailAdapter{
		fromEmail:       cfg.FromEmail,
		simulate:        cfg.Simulate,
		simulateOutcome: cfg.SimulateOutcome,
		logger:          log,
	}

	if !cfg.Simulate {
		awsCfg, err := awsconfig.LoadDefaultConfig(context.Background(), awsconfig.WithRegion(cfg.Region))
		if err != nil {
			return nil, fmt.Errorf("load AWS config: %w", err)
		}
		a.client = ses.NewFromConfig(awsCfg)
	}

	return a, nil
}

// NewEmailAdapterWithClient injects an SES client, used by tests.
func NewEmailAdapterWithClient(client SESService, fromEmail string, log logger.Logger) *EmailAdapter {
	return &EmailAdapter{client: client, fromEmail: fromEmail, logger: log}
}

func (a *EmailAdapter) Channel() models.Channel {
	return models.ChannelEmail
}

func (a *EmailAdapter) Attempt(ctx context.Context, n *models.Notification, content *models.Content, target *Target) *Result {
	if a.simulate {
		return simulated(a.simulateOutcome)
	}

	if target == nil || target.User == nil || target.User.Email == "" {
		return permanent("recipient has no email address", 0, 0)
	}

	start := time.Now()
	_, err := a.client.SendEmail(ctx, &ses.SendEmailInput{
		Destination: &types.Destination{
			ToAddresses: []string{target.User.Email},
		},
		Message: &types.Message{
			Subject: &types.Content{Data: aws.String(content.Subject)},
			Body: &types.Body{
				Text: &types.Content{Data: aws.String(content.Body)},
			},
		},
		Source: aws.String(a.fromEmail),
	})
	latency := time.Since(start)

	if err != nil {
		return transient(fmt.Sprintf("ses send failed: %v", err), 0, latency)
	}
	return success("email accepted", 0, latency)
}

func simulated(outcome string) *Result {
	if outcome == "permanent_failure" {
		return permanent("simulated failure", 0, 0)
	}
	return success("simulated delivery", 0, 0)
}
