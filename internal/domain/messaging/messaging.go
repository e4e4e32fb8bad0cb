package messaging

import (
	"context"
	"database/sql"
	"time"
)

// EmailSender delivers a single email. Implementations must not retry;
// a failed send is terminal for that occurrence.
type EmailSender interface {
	SendEmail(ctx context.Context, to, subject, body string) error
}

// SMSResult captures the outcome of one gateway call for the audit trail.
type SMSResult struct {
	Success  bool
	Response string // raw provider response, truncated by the sender
}

// SMSSender delivers a single SMS through the gateway. An empty normalized
// phone short-circuits to a failed result without a gateway call.
type SMSSender interface {
	SendSMS(ctx context.Context, phone, text string) (SMSResult, error)
}

// SMSHistory is one append-only row of the outbound SMS audit log.
type SMSHistory struct {
	ID        int64
	UserID    sql.NullInt64
	Phone     string
	Message   string
	Component string
	Success   bool
	Response  string
	CreatedAt time.Time
}

// MailHistory is one append-only row of the outbound email audit log.
type MailHistory struct {
	ID        int64
	UserID    sql.NullInt64
	Email     string
	Message   string
	Component string
	Success   bool
	Response  string
	CreatedAt time.Time
}

// HistoryRepository records message attempts. Rows are write-once.
type HistoryRepository interface {
	RecordSMS(ctx context.Context, h *SMSHistory) error
	RecordMail(ctx context.Context, h *MailHistory) error
}
