package services

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v4"
	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
	"github.com/twilio/twilio-go"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"

	"github.com/ips-ux/maintenance-manager/internal/utils"
)

const overdueTurnEmailHTML = `<!DOCTYPE html>
<html>
<head>
<meta charset="UTF-8">
<title>Overdue Turn Alert</title>
<style>
  body { font-family: -apple-system, BlinkMacSystemFont, "Segoe UI", Roboto, "Helvetica Neue", Arial, sans-serif; background-color: #fcf8e3; color: #8a6d3b; margin: 0; padding: 20px; }
  .container { max-width: 600px; margin: auto; background: #fff; border: 1px solid #faebcc; border-radius: 8px; }
  .header { background-color: #fcf8e3; padding: 15px 20px; border-bottom: 1px solid #faebcc; }
  .header h1 { margin: 0; font-size: 20px; color: #8a6d3b; }
  .content { padding: 20px; }
  .content p { margin-top: 0; }
  ul { list-style: none; padding: 0; }
  li { padding: 8px; border-bottom: 1px solid #eee; }
  li:last-child { border-bottom: none; }
  strong { color: #333; }
</style>
</head>
<body>
  <div class="container">
    <div class="header">
      <h1>%s</h1>
    </div>
    <div class="content">
      <p>A turn has passed its target completion date. Please review.</p>
      <ul>
        <li><strong>Unit:</strong> %s</li>
        <li><strong>Days Overdue:</strong> %d</li>
        <li><strong>Target Date:</strong> %s</li>
        <li><strong>Progress:</strong> %.2f%% (%d of %d tasks)</li>
        <li><strong>Technician:</strong> %s</li>
      </ul>
    </div>
  </div>
</body>
</html>`

func sendSMS(client *twilio.RestClient, fromPhone, toPhone, body string) {
	if client == nil {
		utils.Logger.Warn("Twilio client is nil, skipping SMS")
		return
	}
	params := &twilioApi.CreateMessageParams{}
	params.SetTo(toPhone)
	params.SetFrom(fromPhone)
	params.SetBody(body)
	if _, err := client.Api.CreateMessage(params); err != nil {
		utils.Logger.WithError(err).Warnf("Failed to send SMS to %s", toPhone)
	}
}

func sendEmail(
	client *sendgrid.Client,
	fromEmail, toName, toEmail, subject, plainText, htmlBody string,
	sandbox bool,
) {
	if client == nil {
		utils.Logger.Warn("SendGrid client is nil, skipping email")
		return
	}
	from := mail.NewEmail("Maintenance Manager", fromEmail)
	to := mail.NewEmail(toName, toEmail)
	msg := mail.NewSingleEmail(from, subject, to, plainText, htmlBody)
	msg.TrackingSettings = &mail.TrackingSettings{
		ClickTracking: &mail.ClickTrackingSetting{
			Enable: utils.Ptr(false),
		},
	}
	if sandbox {
		ms := mail.NewMailSettings()
		ms.SetSandboxMode(mail.NewSetting(true))
		msg.MailSettings = ms
	}
	if _, err := client.Send(msg); err != nil {
		utils.Logger.WithError(err).Warnf("Email send failure to %s", toEmail)
	}
}

func formatOverdueSubject(unitNumber string, days int) string {
	return fmt.Sprintf("Overdue Turn: Unit %s (%d days past target)", unitNumber, days)
}

// notFoundIfNoRows converts the repository's zero-rows signal into the
// domain not-found sentinel.
func notFoundIfNoRows(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return utils.ErrNotFound
	}
	return err
}
