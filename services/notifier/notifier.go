package notifier

import (
	"fmt"
	"strings"

	"office-portal/httpServices/mail"
	"office-portal/logger"
	notificationModel "office-portal/models/notification"

	"gorm.io/gorm"
)

// Recipient identifies one delivery target. UserID 0 means email-only (no
// in-app record), used for plain CC addresses.
type Recipient struct {
	UserID uint
	Email  string
	Name   string
}

// Dispatcher sends templated email and creates in-app notification records.
// Delivery is best-effort: Send reports success but never propagates an error
// to the caller, so a failing mail transport cannot block a state transition.
type Dispatcher struct {
	DB   *gorm.DB
	Mail *mail.MailClient
}

// NewDispatcher creates a new notification dispatcher
func NewDispatcher(db *gorm.DB) *Dispatcher {
	return &Dispatcher{DB: db, Mail: mail.NewClient()}
}

// Send renders templateType with variables and delivers it to the recipient.
// Returns false when neither the email nor the in-app record could be written.
func (d *Dispatcher) Send(templateType string, recipient Recipient, variables map[string]string) bool {
	tpl, ok := templates[templateType]
	if !ok {
		logger.Warning(fmt.Sprintf("Unknown notification template: %s", templateType))
		return false
	}

	subject := render(tpl.Subject, variables)
	body := render(tpl.Body, variables)

	emailOK := true
	if recipient.Email != "" {
		if err := d.Mail.Send(recipient.Email, recipient.Name, subject, body); err != nil {
			logger.Error(fmt.Sprintf("Failed to send %s email to %s", templateType, recipient.Email), err)
			emailOK = false
		}
	}

	inAppOK := false
	if recipient.UserID != 0 {
		record := notificationModel.Notification{
			UserID: recipient.UserID,
			Type:   templateType,
			Title:  subject,
			Body:   body,
		}
		if err := d.DB.Create(&record).Error; err != nil {
			logger.Error(fmt.Sprintf("Failed to create in-app notification for user %d", recipient.UserID), err)
		} else {
			inAppOK = true
		}
	}

	return emailOK || inAppOK
}

func render(template string, variables map[string]string) string {
	out := template
	for key, value := range variables {
		out = strings.ReplaceAll(out, "{"+key+"}", value)
	}
	return out
}
