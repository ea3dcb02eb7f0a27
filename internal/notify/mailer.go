package notify

import (
	"context"
	"fmt"
	"html"
	"regexp"
	"strings"

	"storefront-chat/internal/domain/message"
	"storefront-chat/internal/domain/room"

	"gopkg.in/gomail.v2"
)

// Gateway is the outbound email transport. *gomail.Dialer satisfies it.
type Gateway interface {
	DialAndSend(m ...*gomail.Message) error
}

// EmailNotifier renders one notification email per persisted message and
// hands it to the gateway. No retries are owned here; the caller treats
// failure as logged-and-dropped.
type EmailNotifier struct {
	gateway     Gateway
	senderEmail string
	companyName string
}

func NewEmailNotifier(host string, port int, username, password, senderEmail, companyName string) *EmailNotifier {
	return &EmailNotifier{
		gateway:     gomail.NewDialer(host, port, username, password),
		senderEmail: senderEmail,
		companyName: companyName,
	}
}

// NewEmailNotifierWithGateway wires a custom gateway. Used in tests.
func NewEmailNotifierWithGateway(gateway Gateway, senderEmail, companyName string) *EmailNotifier {
	return &EmailNotifier{gateway: gateway, senderEmail: senderEmail, companyName: companyName}
}

func (n *EmailNotifier) Notify(ctx context.Context, msg message.Message, rm room.Room, recipient string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", n.senderEmail)
	m.SetHeader("To", recipient)
	m.SetHeader("Subject", n.subject(msg))
	m.SetHeader("Reply-To", msg.SenderEmail)
	m.SetBody("text/html", n.body(msg, rm))

	done := make(chan error, 1)
	go func() { done <- n.gateway.DialAndSend(m) }()

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (n *EmailNotifier) subject(msg message.Message) string {
	switch msg.Type {
	case message.TypeEnquiry:
		return fmt.Sprintf("New enquiry from %s", msg.SenderName)
	case message.TypeFile:
		return fmt.Sprintf("New file from %s", msg.SenderName)
	default:
		return fmt.Sprintf("New message from %s", msg.SenderName)
	}
}

func (n *EmailNotifier) body(msg message.Message, rm room.Room) string {
	return fmt.Sprintf(`
		<div style="font-family: Arial, sans-serif; padding: 20px; color: #333;">
			<h2>%s</h2>
			<p><strong>%s</strong> (%s) wrote:</p>
			<blockquote style="border-left: 3px solid #ccc; padding-left: 12px;">%s</blockquote>
			<p>Reply from the %s chat dashboard.</p>
		</div>
	`, n.companyName, html.EscapeString(msg.SenderName), html.EscapeString(msg.SenderEmail),
		RenderContent(msg.Content), html.EscapeString(n.companyName))
}

var (
	boldRe   = regexp.MustCompile(`\*\*([^*]+)\*\*`)
	italicRe = regexp.MustCompile(`\*([^*]+)\*`)
)

// RenderContent converts the chat's markdown-lite dialect (**bold**,
// *italic*, literal newlines) to inline HTML, escaping everything else.
func RenderContent(content string) string {
	out := html.EscapeString(content)
	out = boldRe.ReplaceAllString(out, "<strong>$1</strong>")
	out = italicRe.ReplaceAllString(out, "<em>$1</em>")
	return strings.ReplaceAll(out, "\n", "<br>")
}
