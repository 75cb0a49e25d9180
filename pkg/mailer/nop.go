package mailer

import "context"

// NopSender reports every send as successful without delivering anything.
// Used when MAIL_SEND_ENABLED=false so local signups still complete.
type NopSender struct{}

func (NopSender) Send(ctx context.Context, to, subject, text, html string) error {
	return nil
}

var _ Sender = NopSender{}
