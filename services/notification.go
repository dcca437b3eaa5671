package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/renelwllms/erepair1-sub001/mailer"
	"github.com/renelwllms/erepair1-sub001/models"
	"github.com/renelwllms/erepair1-sub001/sms"
	"github.com/renelwllms/erepair1-sub001/utils"
	"gorm.io/gorm"
)

// NotificationService emails customers about their jobs and quotes and keeps an
// EmailLog row for every attempt. Nothing it does can fail the caller.
type NotificationService struct {
	db       *gorm.DB
	mail     mailer.Sender
	sms      sms.Sender
	settings *SettingsService
	log      *slog.Logger
	baseURL  string
	now      func() time.Time
}

// NewNotificationService wires the gateways. smsSender may be nil to disable SMS.
func NewNotificationService(db *gorm.DB, mail mailer.Sender, smsSender sms.Sender, settings *SettingsService, log *slog.Logger, baseURL string) *NotificationService {
	return &NotificationService{
		db:       db,
		mail:     mail,
		sms:      smsSender,
		settings: settings,
		log:      log,
		baseURL:  strings.TrimRight(baseURL, "/"),
		now:      time.Now,
	}
}

// JobStatusChanged implements StatusObserver.
func (n *NotificationService) JobStatusChanged(ctx context.Context, change StatusChange) {
	job := change.Job
	settings := n.loadSettings(ctx)

	if job.Customer == nil || strings.TrimSpace(job.Customer.Email) == "" {
		n.log.Warn("customer has no email address, status email skipped",
			"job", job.JobNumber, "status", change.NewStatus)
	} else {
		n.sendStatusEmail(ctx, change, settings)
	}

	if change.NewStatus.IsReadyForPickup() && settings.SMSNotifications && n.sms != nil {
		n.sendPickupSMS(ctx, change, settings)
	}
}

func (n *NotificationService) sendStatusEmail(ctx context.Context, change StatusChange, settings *models.Settings) {
	job := change.Job
	data := statusEmail{
		CustomerName: job.Customer.Name,
		JobNumber:    job.JobNumber,
		Appliance:    applianceLabel(job),
		OldStatus:    humanStatus(change.OldStatus),
		NewStatus:    humanStatus(change.NewStatus),
		Note:         change.Note,
		ShopName:     shopName(settings),
	}

	tmpl := "status_change"
	emailType := models.EmailTypeStatusChange
	subject := fmt.Sprintf("Job %s update: %s", job.JobNumber, humanStatus(change.NewStatus))
	text := fmt.Sprintf("Hello %s,\n\nThe status of your repair job %s changed from %s to %s.\n",
		data.CustomerName, job.JobNumber, data.OldStatus, data.NewStatus)
	if change.Note != "" {
		text += "\nNote: " + change.Note + "\n"
	}

	if change.NewStatus.IsReadyForPickup() {
		tmpl = "ready_for_pickup"
		emailType = models.EmailTypeReadyForPickup
		subject = fmt.Sprintf("Your %s is ready for pickup (%s)", data.Appliance, job.JobNumber)
		data.ShopAddress = settings.ShopAddress
		data.ShopPhone = settings.ShopPhone
		data.BusinessHours = businessHours(settings)
		text = fmt.Sprintf("Hello %s,\n\nYour %s (job %s) is ready for pickup at %s.\n",
			data.CustomerName, data.Appliance, job.JobNumber, data.ShopName)
		if settings.ShopAddress != "" {
			text += settings.ShopAddress + "\n"
		}
		if settings.ShopPhone != "" {
			text += "Phone: " + settings.ShopPhone + "\n"
		}
	}

	html, err := renderEmail(tmpl, data)
	if err != nil {
		n.log.Error("render email template", "template", tmpl, "error", err)
		html = text
	}

	entry := models.EmailLog{
		Recipient:       job.Customer.Email,
		Subject:         subject,
		Body:            html,
		Type:            emailType,
		Channel:         models.ChannelEmail,
		RelatedEntity:   "job",
		RelatedEntityID: &job.ID,
	}
	if change.Actor != nil {
		entry.SentByID = &change.Actor.ID
	}
	n.deliver(ctx, &entry, mailer.Message{
		To:      job.Customer.Email,
		Subject: subject,
		HTML:    html,
		Text:    text,
	})
}

func (n *NotificationService) sendPickupSMS(ctx context.Context, change StatusChange, settings *models.Settings) {
	job := change.Job
	if job.Customer == nil || strings.TrimSpace(job.Customer.Phone) == "" {
		n.log.Warn("customer has no phone number, pickup sms skipped", "job", job.JobNumber)
		return
	}

	body := fmt.Sprintf("%s: your %s (job %s) is ready for pickup.",
		shopName(settings), applianceLabel(job), job.JobNumber)
	if settings.ShopPhone != "" {
		body += " Questions? Call " + settings.ShopPhone
	}

	entry := models.EmailLog{
		Recipient:       job.Customer.Phone,
		Subject:         "Ready for pickup",
		Body:            body,
		Type:            models.EmailTypeReadyForPickup,
		Channel:         models.ChannelSMS,
		RelatedEntity:   "job",
		RelatedEntityID: &job.ID,
	}
	if change.Actor != nil {
		entry.SentByID = &change.Actor.ID
	}

	sid, err := n.sms.SendSMS(ctx, job.Customer.Phone, body)
	if err != nil {
		n.log.Warn("pickup sms failed", "job", job.JobNumber, "error", err)
		entry.Status = models.EmailStatusFailed
		entry.ErrorMessage = err.Error()
	} else {
		entry.Status = models.EmailStatusSent
		entry.MessageID = sid
	}
	n.record(ctx, &entry)
}

// QuoteSent implements QuoteObserver: it emails the customer the accept and reject links.
func (n *NotificationService) QuoteSent(ctx context.Context, quote *models.Quote, actor *models.Actor) {
	if quote.Customer == nil || strings.TrimSpace(quote.Customer.Email) == "" {
		n.log.Warn("customer has no email address, quote email skipped", "quote", quote.QuoteNumber)
		return
	}
	settings := n.loadSettings(ctx)

	jobNumber := ""
	if quote.Job != nil {
		jobNumber = quote.Job.JobNumber
	}
	data := quoteEmail{
		CustomerName: quote.Customer.Name,
		QuoteNumber:  quote.QuoteNumber,
		JobNumber:    jobNumber,
		Total:        quote.TotalAmount.StringFixed(2),
		ValidUntil:   quote.ValidUntil.Format("2 Jan 2006"),
		DaysLeft:     utils.DaysBetween(n.now(), quote.ValidUntil),
		AcceptURL:    fmt.Sprintf("%s/quotes/%s?action=accept", n.baseURL, quote.ID),
		RejectURL:    fmt.Sprintf("%s/quotes/%s?action=reject", n.baseURL, quote.ID),
		ShopName:     shopName(settings),
	}
	subject := fmt.Sprintf("Quote %s from %s", quote.QuoteNumber, data.ShopName)
	text := fmt.Sprintf("Hello %s,\n\nQuote %s totals %s and is valid until %s.\nAccept: %s\nReject: %s\n",
		data.CustomerName, data.QuoteNumber, data.Total, data.ValidUntil, data.AcceptURL, data.RejectURL)

	html, err := renderEmail("quote_sent", data)
	if err != nil {
		n.log.Error("render email template", "template", "quote_sent", "error", err)
		html = text
	}

	entry := models.EmailLog{
		Recipient:       quote.Customer.Email,
		Subject:         subject,
		Body:            html,
		Type:            models.EmailTypeQuoteSent,
		Channel:         models.ChannelEmail,
		RelatedEntity:   "quote",
		RelatedEntityID: &quote.ID,
	}
	if actor != nil {
		entry.SentByID = &actor.ID
	}
	n.deliver(ctx, &entry, mailer.Message{
		To:      quote.Customer.Email,
		Subject: subject,
		HTML:    html,
		Text:    text,
	})
}

// deliver sends msg and records the outcome on entry.
func (n *NotificationService) deliver(ctx context.Context, entry *models.EmailLog, msg mailer.Message) {
	res, err := n.mail.Send(ctx, msg)
	if err != nil {
		n.log.Warn("email delivery failed",
			"recipient", msg.To, "type", entry.Type, "error", err)
		entry.Status = models.EmailStatusFailed
		entry.ErrorMessage = err.Error()
	} else {
		entry.Status = models.EmailStatusSent
		entry.MessageID = res.MessageID
	}
	n.record(ctx, entry)
}

func (n *NotificationService) record(ctx context.Context, entry *models.EmailLog) {
	if err := n.db.WithContext(ctx).Create(entry).Error; err != nil {
		n.log.Error("failed to write email log",
			"recipient", entry.Recipient, "type", entry.Type, "error", err)
	}
}

func (n *NotificationService) loadSettings(ctx context.Context) *models.Settings {
	settings, err := n.settings.Get(ctx)
	if err != nil {
		n.log.Warn("settings unavailable for notification", "error", err)
		return &models.Settings{}
	}
	return settings
}

func shopName(settings *models.Settings) string {
	if settings.ShopName != "" {
		return settings.ShopName
	}
	return "Repair Shop"
}

func applianceLabel(job *models.Job) string {
	label := strings.TrimSpace(strings.Join([]string{job.Brand, job.ApplianceType}, " "))
	if label == "" {
		return "appliance"
	}
	return label
}

// humanStatus turns READY_FOR_PICKUP into "Ready For Pickup".
func humanStatus(status models.JobStatus) string {
	words := strings.Split(strings.ToLower(string(status)), "_")
	for i, w := range words {
		if w != "" {
			words[i] = strings.ToUpper(w[:1]) + w[1:]
		}
	}
	return strings.Join(words, " ")
}

var weekdays = []string{"monday", "tuesday", "wednesday", "thursday", "friday", "saturday", "sunday"}

// businessHours renders the settings JSON, either {"monday": "9-5", ...} or a list of
// lines, as display lines.
func businessHours(settings *models.Settings) []string {
	if len(settings.BusinessHours) == 0 {
		return nil
	}
	var lines []string
	if err := json.Unmarshal(settings.BusinessHours, &lines); err == nil {
		return lines
	}

	var byDay map[string]string
	if err := json.Unmarshal(settings.BusinessHours, &byDay); err != nil {
		return nil
	}
	order := make(map[string]int, len(weekdays))
	for i, d := range weekdays {
		order[d] = i
	}
	days := make([]string, 0, len(byDay))
	for d := range byDay {
		days = append(days, d)
	}
	sort.Slice(days, func(i, j int) bool {
		oi, iok := order[strings.ToLower(days[i])]
		oj, jok := order[strings.ToLower(days[j])]
		if iok && jok {
			return oi < oj
		}
		if iok != jok {
			return iok
		}
		return days[i] < days[j]
	})
	for _, d := range days {
		lines = append(lines, fmt.Sprintf("%s: %s", humanStatus(models.JobStatus(d)), byDay[d]))
	}
	return lines
}
