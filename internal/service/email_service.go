package service

import (
	"context"
	"fmt"
	"html"
	"log/slog"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"

	"saodo/internal/models"
)

type sesSender interface {
	SendEmail(ctx context.Context, params *sesv2.SendEmailInput, optFns ...func(*sesv2.Options)) (*sesv2.SendEmailOutput, error)
}

// EmailService sends emails via Amazon SES
type EmailService struct {
	client    sesSender
	fromEmail string
	fromName  string
	enabled   bool
	logger    *slog.Logger
}

// NewEmailService creates a new email service. An empty fromEmail disables sending.
func NewEmailService(ctx context.Context, awsRegion, fromEmail, fromName string, logger *slog.Logger) (*EmailService, error) {
	logger = logger.With(slog.String("component", "email"))
	if fromEmail == "" {
		logger.Info("email_disabled", slog.String("reason", "SES_FROM_EMAIL not configured"))
		return &EmailService{enabled: false, logger: logger}, nil
	}

	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(awsRegion))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	logger.Info("email_enabled", slog.String("from", fromEmail), slog.String("region", awsRegion))
	return &EmailService{
		client:    sesv2.NewFromConfig(cfg),
		fromEmail: fromEmail,
		fromName:  fromName,
		enabled:   true,
		logger:    logger,
	}, nil
}

// IsEnabled returns whether the email service is enabled
func (s *EmailService) IsEnabled() bool {
	return s.enabled
}

// SendWeeklyReport mails a generated report to every recipient
func (s *EmailService) SendWeeklyReport(ctx context.Context, recipients []string, report *models.WeeklyReport) error {
	if !s.enabled || len(recipients) == 0 {
		s.logger.Info("email_skipped", slog.Int("week", report.Week), slog.Bool("enabled", s.enabled))
		return nil
	}

	subject := fmt.Sprintf("Báo cáo Sao Đỏ tuần %d", report.Week)
	var paragraphs []string
	for _, p := range strings.Split(report.Content, "\n\n") {
		if p = strings.TrimSpace(p); p != "" {
			paragraphs = append(paragraphs, "<p>"+strings.ReplaceAll(html.EscapeString(p), "\n", "<br>")+"</p>")
		}
	}
	htmlBody := fmt.Sprintf(`<!DOCTYPE html>
<html>
<head><meta charset="UTF-8"></head>
<body style="font-family: Arial, sans-serif; line-height: 1.6; color: #333;">
	<div style="max-width: 640px; margin: 0 auto; padding: 20px;">
		<h2 style="color: #c62828;">%s</h2>
		%s
		<p style="font-size: 12px; color: #666;">Email tự động từ hệ thống Sao Đỏ. Vui lòng không trả lời.</p>
	</div>
</body>
</html>
`, html.EscapeString(subject), strings.Join(paragraphs, "\n\t\t"))

	return s.sendEmail(ctx, recipients, subject, htmlBody, report.Content)
}

// sendEmail sends an email using Amazon SES
func (s *EmailService) sendEmail(ctx context.Context, to []string, subject, htmlBody, textBody string) error {
	fromAddress := s.fromEmail
	if s.fromName != "" {
		fromAddress = fmt.Sprintf("%s <%s>", s.fromName, s.fromEmail)
	}

	input := &sesv2.SendEmailInput{
		FromEmailAddress: aws.String(fromAddress),
		Destination: &types.Destination{
			ToAddresses: to,
		},
		Content: &types.EmailContent{
			Simple: &types.Message{
				Subject: &types.Content{
					Data:    aws.String(subject),
					Charset: aws.String("UTF-8"),
				},
				Body: &types.Body{
					Html: &types.Content{
						Data:    aws.String(htmlBody),
						Charset: aws.String("UTF-8"),
					},
					Text: &types.Content{
						Data:    aws.String(textBody),
						Charset: aws.String("UTF-8"),
					},
				},
			},
		},
	}

	result, err := s.client.SendEmail(ctx, input)
	if err != nil {
		return fmt.Errorf("failed to send email to %s: %w", strings.Join(to, ","), err)
	}

	attrs := []any{slog.Int("recipients", len(to)), slog.String("subject", subject)}
	if result.MessageId != nil {
		attrs = append(attrs, slog.String("message_id", *result.MessageId))
	}
	s.logger.Info("email_sent", attrs...)
	return nil
}
