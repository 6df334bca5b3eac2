package mailer

import (
	"github.com/SeakMengs/SignFlow/internal/config"
	"go.uber.org/zap"
)

// New picks the provider named by MAIL_PROVIDER.
func New(cfg *config.Config, logger *zap.SugaredLogger) Client {
	if cfg.Mail.PROVIDER == "gmail" {
		return NewGmailMailer(cfg.Mail.GMAIL.USERNAME, cfg.Mail.GMAIL.APP_PASSWORD, logger)
	}
	return NewSendgrid(cfg.Mail.SEND_GRID.API_KEY, cfg.Mail.FROM_EMAIL, cfg.IsProduction(), logger)
}
