package mailer

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"time"

	"github.com/SeakMengs/SignFlow/internal/util"
	"github.com/SeakMengs/SignFlow/pkg/esign"
)

const (
	MAX_RETRY = 3

	TemplateInvitation = "invitation.tmpl"
	TemplateReminder   = "reminder.tmpl"
	TemplateVoided     = "voided.tmpl"
)

//go:embed "templates"
var FS embed.FS

type Client interface {
	Send(templateFile, toName, toEmail string, data any) (int, error)
}

// SigningMailData is what every signing template renders.
type SigningMailData struct {
	AppName        string
	LogoURL        string
	RecipientName  string
	SenderName     string
	SenderEmail    string
	DocumentName   string
	Message        string
	DueDate        string
	ReminderNumber int
	Reason         string
	SigningURL     string
	ShortLinkURL   string
}

func TemplateForIntent(kind esign.IntentKind) (string, error) {
	switch kind {
	case esign.IntentInvitation:
		return TemplateInvitation, nil
	case esign.IntentReminder:
		return TemplateReminder, nil
	case esign.IntentVoided:
		return TemplateVoided, nil
	}
	return "", fmt.Errorf("no mail template for intent kind %q", kind)
}

func NewSigningMailData(frontURL string, intent esign.Intent) SigningMailData {
	data := SigningMailData{
		AppName:        util.GetAppName(),
		LogoURL:        util.GetAppLogoURL(frontURL),
		RecipientName:  intent.RecipientName,
		SenderName:     intent.SenderName,
		SenderEmail:    intent.SenderEmail,
		DocumentName:   intent.DocumentName,
		Message:        intent.Message,
		ReminderNumber: intent.ReminderNumber,
		Reason:         intent.Reason,
	}
	if intent.DueDate != nil {
		data.DueDate = intent.DueDate.UTC().Format(time.RFC1123)
	}
	if intent.Kind != esign.IntentVoided {
		data.SigningURL = util.ToSigningURL(frontURL, intent.SigningRequestID, intent.RecipientEmail, intent.Token)
		data.ShortLinkURL = util.ToShortLinkURL(frontURL, intent.Token)
	}
	return data
}

// Render executes the "subject" and "body" blocks of an embedded template.
func Render(templateFile string, data any) (string, string, error) {
	tmpl, err := template.ParseFS(FS, "templates/"+templateFile)
	if err != nil {
		return "", "", fmt.Errorf("failed to parse mail template %s: %w", templateFile, err)
	}

	subject := new(bytes.Buffer)
	if err := tmpl.ExecuteTemplate(subject, "subject", data); err != nil {
		return "", "", fmt.Errorf("failed to render subject of %s: %w", templateFile, err)
	}

	body := new(bytes.Buffer)
	if err := tmpl.ExecuteTemplate(body, "body", data); err != nil {
		return "", "", fmt.Errorf("failed to render body of %s: %w", templateFile, err)
	}

	return subject.String(), body.String(), nil
}
