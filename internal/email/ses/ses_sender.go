// Package ses sends case status emails through Amazon SES.
package ses

import (
	"context"
	"fmt"
	"log"
	"net/mail"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"

	"notaria/internal/config"
	"notaria/internal/domain"
	"notaria/internal/email"
	"notaria/internal/port"
)

// sendAPI is the slice of the SES client the notifier uses.
type sendAPI interface {
	SendEmail(ctx context.Context, in *sesv2.SendEmailInput, optFns ...func(*sesv2.Options)) (*sesv2.SendEmailOutput, error)
}

type sesNotifier struct {
	api         sendAPI
	from        string
	frontendURL string
}

// NewSESNotifier creates an SES-backed Notifier that emails the case contact.
func NewSESNotifier(cfg *config.EmailConfig) (port.Notifier, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(context.Background(), awsconfig.WithRegion(cfg.Region))
	if err != nil {
		return nil, fmt.Errorf("loading AWS config for SES: %w", err)
	}
	return newNotifier(sesv2.NewFromConfig(awsCfg), cfg), nil
}

func newNotifier(api sendAPI, cfg *config.EmailConfig) *sesNotifier {
	from := (&mail.Address{Name: cfg.FromName, Address: cfg.FromAddress}).String()
	return &sesNotifier{api: api, from: from, frontendURL: cfg.FrontendURL}
}

func (s *sesNotifier) NotifyCaseStatus(ctx context.Context, c *domain.Case) error {
	if c.ContactEmail == "" {
		return nil
	}
	msg, ok := email.BuildCaseStatusMessage(s.frontendURL, c)
	if !ok {
		return nil
	}
	if _, err := s.api.SendEmail(ctx, sendInput(s.from, c.ContactEmail, msg)); err != nil {
		return fmt.Errorf("SES SendEmail: %w", err)
	}
	log.Printf("sesNotifier.NotifyCaseStatus: case %s %s sent to %s", c.ID, c.Status, c.ContactEmail)
	return nil
}

func sendInput(from, to string, msg email.Message) *sesv2.SendEmailInput {
	utf8 := aws.String("UTF-8")
	return &sesv2.SendEmailInput{
		FromEmailAddress: aws.String(from),
		Destination:      &types.Destination{ToAddresses: []string{to}},
		Content: &types.EmailContent{
			Simple: &types.Message{
				Subject: &types.Content{Data: aws.String(msg.Subject), Charset: utf8},
				Body: &types.Body{
					Html: &types.Content{Data: aws.String(msg.HTML), Charset: utf8},
					Text: &types.Content{Data: aws.String(msg.Text), Charset: utf8},
				},
			},
		},
	}
}
