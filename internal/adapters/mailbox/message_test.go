package mailbox

import (
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
	"google.golang.org/api/gmail/v1"
)

func encodeBody(s string) string {
	return base64.RawURLEncoding.EncodeToString([]byte(s))
}

func TestDecodeMessage(t *testing.T) {
	msg := &gmail.Message{
		Payload: &gmail.MessagePart{
			MimeType: "multipart/alternative",
			Headers: []*gmail.MessagePartHeader{
				{Name: "Subject", Value: "Application Received"},
				{Name: "From", Value: "Admissions <admissions@example.edu>"},
				{Name: "To", Value: "student@example.com"},
				{Name: "Cc", Value: "parent@example.com"},
				{Name: "Date", Value: "Mon, 12 May 2025 10:30:00 -0400"},
			},
			Parts: []*gmail.MessagePart{
				{
					MimeType: "text/html",
					Body:     &gmail.MessagePartBody{Data: encodeBody("<p>Thank you for submitting your application</p>")},
				},
				{
					MimeType: "text/plain",
					Body:     &gmail.MessagePartBody{Data: encodeBody("Thank you for submitting your application")},
				},
			},
		},
	}

	email := DecodeMessage(msg)

	assert.Equal(t, "Application Received", email.Subject)
	assert.Equal(t, "Admissions <admissions@example.edu>", email.From)
	assert.Equal(t, "student@example.com", email.To)
	assert.Equal(t, "parent@example.com", email.Cc)
	assert.Equal(t, 2025, email.Date.Year())
	assert.Equal(t, "Thank you for submitting your application", email.Body,
		"text/plain must win over text/html")
}

func TestDecodeMessageHTMLFallback(t *testing.T) {
	msg := &gmail.Message{
		Payload: &gmail.MessagePart{
			MimeType: "text/html",
			Body:     &gmail.MessagePartBody{Data: encodeBody("<p>Join us for an open house!</p>")},
		},
	}

	email := DecodeMessage(msg)
	assert.Equal(t, "<p>Join us for an open house!</p>", email.Body)
}

func TestDecodeMessageSnippetFallback(t *testing.T) {
	msg := &gmail.Message{
		Snippet: "Your financial aid package is ready",
		Payload: &gmail.MessagePart{
			MimeType: "multipart/mixed",
		},
	}

	email := DecodeMessage(msg)
	assert.Equal(t, "Your financial aid package is ready", email.Body)
}

func TestDecodeMessageNil(t *testing.T) {
	email := DecodeMessage(nil)
	assert.NotNil(t, email)
	assert.Empty(t, email.Subject)
	assert.Empty(t, email.Body)
}

func TestDecodeBodyPaddedVariant(t *testing.T) {
	padded := base64.URLEncoding.EncodeToString([]byte("hi"))
	assert.Equal(t, "hi", decodeBody(padded))
	assert.Equal(t, "", decodeBody("!!not base64!!"))
}
