package services

import (
	"context"
	"fmt"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
	"github.com/sirupsen/logrus"
	"github.com/twilio/twilio-go"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"

	"github.com/viraj01032007/setmystay02/backend/shared/go-models"
	"github.com/viraj01032007/setmystay02/backend/shared/go-utils"
)

// InquiryContact is how the person asking can be reached.
type InquiryContact struct {
	Phone string
	Email string
}

// InquiryNotifier tells an owner about a booking inquiry. Implementations
// log their own failures; a notification never fails the inquiry.
type InquiryNotifier interface {
	NotifyOwner(ctx context.Context, l *models.Listing, inq *models.BookingInquiry, contact InquiryContact)
}

type NotifierConfig struct {
	OrganizationName string
	FromEmail        string
	SandboxMode      bool
	FromPhone        string
}

// OwnerNotifier e-mails the owner through SendGrid when both are available,
// texts them through Twilio when configured, and otherwise only logs.
type OwnerNotifier struct {
	cfg            NotifierConfig
	sendgridClient *sendgrid.Client
	twilioClient   *twilio.RestClient
}

// NewOwnerNotifier accepts nil clients for channels that are not configured.
func NewOwnerNotifier(cfg NotifierConfig, sg *sendgrid.Client, tw *twilio.RestClient) *OwnerNotifier {
	return &OwnerNotifier{cfg: cfg, sendgridClient: sg, twilioClient: tw}
}

func (n *OwnerNotifier) NotifyOwner(_ context.Context, l *models.Listing, inq *models.BookingInquiry, contact InquiryContact) {
	log := utils.Logger.WithFields(logrus.Fields{"itemID": l.ID, "bedID": inq.BedID, "inquiryID": inq.ID})
	subject := fmt.Sprintf("New booking inquiry for %s", l.Title)
	body := inquiryText(l, inq, contact)
	sent := false

	if n.sendgridClient != nil && l.ContactEmail != "" && n.cfg.FromEmail != "" {
		from := mail.NewEmail(n.cfg.OrganizationName, n.cfg.FromEmail)
		to := mail.NewEmail(l.OwnerName, l.ContactEmail)
		msg := mail.NewSingleEmail(from, subject, to, body, fmt.Sprintf(inquiryEmailHTML, l.OwnerName, l.Title, inq.BedID, inq.Name,
			inq.StartDate.Format("January 2, 2006"), inq.EndDate.Format("January 2, 2006"), contactLine(contact)))
		if n.cfg.SandboxMode {
			ms := mail.NewMailSettings()
			ms.SetSandboxMode(mail.NewSetting(true))
			msg.MailSettings = ms
		}
		if resp, err := n.sendgridClient.Send(msg); err != nil {
			log.WithError(err).Error("Failed to e-mail owner about booking inquiry")
		} else if resp.StatusCode >= 300 {
			log.Errorf("SendGrid rejected booking inquiry e-mail: %d", resp.StatusCode)
		} else {
			sent = true
		}
	}

	if n.twilioClient != nil && n.cfg.FromPhone != "" && l.ContactPhone != "" {
		params := &twilioApi.CreateMessageParams{}
		params.SetTo(l.ContactPhone)
		params.SetFrom(n.cfg.FromPhone)
		params.SetBody(fmt.Sprintf("%s: %s asked about bed %s at %s from %s to %s.",
			n.cfg.OrganizationName, inq.Name, inq.BedID, l.Title,
			inq.StartDate.Format("2 Jan"), inq.EndDate.Format("2 Jan")))
		if _, err := n.twilioClient.Api.CreateMessage(params); err != nil {
			log.WithError(err).Error("Failed to text owner about booking inquiry")
		} else {
			sent = true
		}
	}

	if !sent {
		log.Infof("booking inquiry recorded without notification:\n%s", body)
	}
}

func inquiryText(l *models.Listing, inq *models.BookingInquiry, contact InquiryContact) string {
	return fmt.Sprintf(
		"Hi %s,\n\n%s would like to book bed %s at %s from %s to %s.\n%s\n\n- The SetMyStay Team",
		l.OwnerName,
		inq.Name,
		inq.BedID,
		l.Title,
		inq.StartDate.Format("January 2, 2006"),
		inq.EndDate.Format("January 2, 2006"),
		contactLine(contact),
	)
}

func contactLine(c InquiryContact) string {
	switch {
	case c.Phone != "" && c.Email != "":
		return fmt.Sprintf("You can reach them at %s or %s.", c.Phone, c.Email)
	case c.Phone != "":
		return fmt.Sprintf("You can reach them at %s.", c.Phone)
	case c.Email != "":
		return fmt.Sprintf("You can reach them at %s.", c.Email)
	}
	return "They will contact you shortly."
}

const inquiryEmailHTML = `<!DOCTYPE html>
<html>
<body style="font-family: Arial, sans-serif; color: #1f2937;">
  <p>Hi %s,</p>
  <p>You have a new booking inquiry for <strong>%s</strong>.</p>
  <table style="border-collapse: collapse;">
    <tr><td style="padding: 4px 12px 4px 0;">Bed</td><td>%s</td></tr>
    <tr><td style="padding: 4px 12px 4px 0;">Name</td><td>%s</td></tr>
    <tr><td style="padding: 4px 12px 4px 0;">Move-in</td><td>%s</td></tr>
    <tr><td style="padding: 4px 12px 4px 0;">Move-out</td><td>%s</td></tr>
  </table>
  <p>%s</p>
  <p>- The SetMyStay Team</p>
</body>
</html>`
