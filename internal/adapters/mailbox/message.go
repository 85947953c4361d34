package mailbox

import (
	"encoding/base64"
	"net/mail"
	"strings"

	"google.golang.org/api/gmail/v1"

	"github.com/mikey/admissions-mail-filter/internal/core"
)

// DecodeMessage converts a fetched Gmail message into an email record.
// Absent headers come through as empty strings; the engine tolerates them.
func DecodeMessage(msg *gmail.Message) *core.Email {
	email := &core.Email{}
	if msg == nil || msg.Payload == nil {
		return email
	}

	for _, h := range msg.Payload.Headers {
		switch strings.ToLower(h.Name) {
		case "subject":
			email.Subject = h.Value
		case "from":
			email.From = h.Value
		case "to":
			email.To = h.Value
		case "cc":
			email.Cc = h.Value
		case "date":
			if t, err := mail.ParseDate(h.Value); err == nil {
				email.Date = t
			}
		}
	}

	email.Body = extractBody(msg.Payload)
	if email.Body == "" && msg.Snippet != "" {
		email.Body = msg.Snippet
	}

	return email
}

// extractBody walks the MIME tree preferring text/plain parts and falls
// back to text/html when no plain part exists.
func extractBody(part *gmail.MessagePart) string {
	if part == nil {
		return ""
	}

	if text := findPart(part, "text/plain"); text != "" {
		return text
	}
	return findPart(part, "text/html")
}

func findPart(part *gmail.MessagePart, mimeType string) string {
	if part.MimeType == mimeType && part.Body != nil && part.Body.Data != "" {
		return decodeBody(part.Body.Data)
	}
	for _, child := range part.Parts {
		if text := findPart(child, mimeType); text != "" {
			return text
		}
	}
	return ""
}

// decodeBody decodes Gmail's web-safe base64 body data. Padding is not
// always present, so both variants are tried.
func decodeBody(data string) string {
	if b, err := base64.RawURLEncoding.DecodeString(data); err == nil {
		return string(b)
	}
	if b, err := base64.URLEncoding.DecodeString(data); err == nil {
		return string(b)
	}
	return ""
}
