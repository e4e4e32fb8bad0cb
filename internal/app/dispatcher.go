package app

import (
	"context"
	"database/sql"

	"recruitment_notification_bot/internal/domain/direction"
	"recruitment_notification_bot/internal/domain/messaging"

	"github.com/sirupsen/logrus"
)

// ChannelDispatcher fans one message out to a user's email and phone and
// records every attempt in the audit tables. Channel failures are logged and
// audited, never propagated: delivery is best-effort and one bad recipient
// must not block the rest of a round.
type ChannelDispatcher struct {
	email   messaging.EmailSender
	sms     messaging.SMSSender
	history messaging.HistoryRepository
	logger  *logrus.Logger
}

func NewChannelDispatcher(
	email messaging.EmailSender,
	sms messaging.SMSSender,
	history messaging.HistoryRepository,
	logger *logrus.Logger,
) *ChannelDispatcher {
	return &ChannelDispatcher{email: email, sms: sms, history: history, logger: logger}
}

// Dispatch sends subject/body as an email and body as an SMS to the user.
// The component tag ends up in the audit rows.
func (d *ChannelDispatcher) Dispatch(ctx context.Context, u *direction.User, subject, body, component string) {
	d.dispatchEmail(ctx, u, subject, body, component)
	d.dispatchSMS(ctx, u, body, component)
}

func (d *ChannelDispatcher) dispatchEmail(ctx context.Context, u *direction.User, subject, body, component string) {
	mailErr := d.email.SendEmail(ctx, u.Email, subject, body)
	h := &messaging.MailHistory{
		UserID:    sql.NullInt64{Int64: u.ID, Valid: true},
		Email:     u.Email,
		Message:   body,
		Component: component,
		Success:   mailErr == nil,
	}
	if mailErr != nil {
		h.Response = mailErr.Error()
		d.logger.Errorf("Failed to send email to UserID %d (%s): %v", u.ID, u.Email, mailErr)
	}
	if err := d.history.RecordMail(ctx, h); err != nil {
		d.logger.Errorf("Failed to record mail history for UserID %d: %v", u.ID, err)
	}
}

func (d *ChannelDispatcher) dispatchSMS(ctx context.Context, u *direction.User, body, component string) {
	phone := ""
	if u.Phone.Valid {
		phone = u.Phone.String
	}
	normalized := messaging.NormalizePhone(phone)

	res := messaging.SMSResult{Success: false, Response: "no phone number"}
	if normalized != "" {
		var smsErr error
		res, smsErr = d.sms.SendSMS(ctx, phone, body)
		if smsErr != nil {
			res = messaging.SMSResult{Success: false, Response: smsErr.Error()}
		}
	}
	if !res.Success {
		d.logger.Warnf("SMS to UserID %d not delivered: %s", u.ID, res.Response)
	}

	h := &messaging.SMSHistory{
		UserID:    sql.NullInt64{Int64: u.ID, Valid: true},
		Phone:     normalized,
		Message:   body,
		Component: component,
		Success:   res.Success,
		Response:  res.Response,
	}
	if err := d.history.RecordSMS(ctx, h); err != nil {
		d.logger.Errorf("Failed to record sms history for UserID %d: %v", u.ID, err)
	}
}
