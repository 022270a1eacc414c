package selfhosted

import (
	"context"

	"github.com/semtetteh/semsterapp/internal/logger"
)

// Mailer delivers one-time codes out of band. Delivery is best-effort;
// the auth flow does not wait on receipts.
type Mailer interface {
	SendOTP(ctx context.Context, email, code string) error
	SendPasswordReset(ctx context.Context, email, code, redirectURL string) error
}

// LogMailer writes outbound mail to the log. Development only.
type LogMailer struct{}

func (LogMailer) SendOTP(_ context.Context, email, code string) error {
	logger.Info("otp issued", map[string]any{
		"email": email,
		"code":  code,
	})
	return nil
}

func (LogMailer) SendPasswordReset(_ context.Context, email, code, redirectURL string) error {
	logger.Info("password reset issued", map[string]any{
		"email":    email,
		"code":     code,
		"redirect": redirectURL,
	})
	return nil
}
