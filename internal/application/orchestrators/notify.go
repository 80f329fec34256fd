package orchestrators

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	emailAdapter "flipfit/internal/adapters/email"
	"flipfit/internal/domain/action"
	"flipfit/internal/domain/session"
)

// deliver sends msg when a sender is configured. Delivery problems never reach the user.
func deliver(ctx context.Context, sender emailAdapter.Sender, msg emailAdapter.Message) {
	if sender == nil {
		return
	}
	res, err := sender.Send(ctx, msg)
	if err != nil {
		slog.WarnContext(ctx, "notification_failed", "to", msg.To, "subject", msg.Subject, "error", err)
		return
	}
	slog.InfoContext(ctx, "notification_sent", "to", msg.To, "subject", msg.Subject, "message_id", res.MessageID)
}

func registrationConfirmation(kind RegisterKind, fullName, to string) emailAdapter.Message {
	var b strings.Builder
	fmt.Fprintf(&b, "# Welcome to FlipFit, %s\n\n", markdownEscape(fullName))
	switch kind {
	case RegisterOwner:
		b.WriteString("Your gym owner account has been created. ")
		b.WriteString("An administrator will review it before you can list gym centres.\n\n")
	default:
		b.WriteString("Your customer account has been created. ")
		b.WriteString("Log in to browse gym centres and book slots.\n\n")
	}
	fmt.Fprintf(&b, "You can sign in with **%s**.\n", markdownEscape(to))
	return emailAdapter.Message{
		To:       []string{to},
		Subject:  "Your FlipFit account",
		Markdown: b.String(),
	}
}

func bookingReceipt(sess session.Session, in action.Values, confirmation string) emailAdapter.Message {
	var b strings.Builder
	b.WriteString("# Booking received\n\n")
	fmt.Fprintf(&b, "Hi %s,\n\n", markdownEscape(sess.FullName))
	b.WriteString("| Gym | Slot | Date |\n|---|---|---|\n")
	fmt.Fprintf(&b, "| %s | %s | %s |\n\n", markdownEscape(in.Get("gymId")), markdownEscape(in.Get("slotId")), markdownEscape(in.Get("date")))
	if confirmation != "" {
		fmt.Fprintf(&b, "> %s\n", markdownEscape(confirmation))
	}
	return emailAdapter.Message{
		To:       []string{sess.Email},
		Subject:  "FlipFit booking receipt",
		Markdown: b.String(),
	}
}

var markdownReplacer = strings.NewReplacer(
	`\`, `\\`, "*", `\*`, "_", `\_`, "`", "\\`", "|", `\|`,
	"[", `\[`, "]", `\]`, "<", "&lt;", ">", "&gt;", "\n", " ",
)

// markdownEscape neutralises user-supplied text inside a markdown body.
func markdownEscape(s string) string {
	return markdownReplacer.Replace(s)
}
