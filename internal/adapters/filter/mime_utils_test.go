package filter

import (
	"net/mail"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parseMessage(t *testing.T, raw string) *mail.Message {
	t.Helper()
	msg, err := mail.ReadMessage(strings.NewReader(raw))
	require.NoError(t, err)
	return msg
}

func TestExtractTextFromPlainMessage(t *testing.T) {
	msg := parseMessage(t, "From: admissions@example.edu\r\n"+
		"Subject: Application Received\r\n"+
		"\r\n"+
		"Thank you for submitting your application.\r\n")

	text, err := extractTextFromMessage(msg)
	require.NoError(t, err)
	assert.Contains(t, text, "Thank you for submitting your application.")
}

func TestExtractTextFromMultipartMessage(t *testing.T) {
	raw := "From: awards@example.edu\r\n" +
		"Subject: Scholarship Awarded\r\n" +
		"Content-Type: multipart/alternative; boundary=\"sep\"\r\n" +
		"\r\n" +
		"--sep\r\n" +
		"Content-Type: text/plain; charset=utf-8\r\n" +
		"\r\n" +
		"Congratulations! You have received a scholarship.\r\n" +
		"--sep\r\n" +
		"Content-Type: text/html; charset=utf-8\r\n" +
		"\r\n" +
		"<p>Congratulations!</p>\r\n" +
		"--sep--\r\n"

	text, err := extractTextFromMessage(parseMessage(t, raw))
	require.NoError(t, err)
	assert.Contains(t, text, "Congratulations! You have received a scholarship.")
	assert.NotContains(t, text, "<p>")
}

func TestExtractTextBadBoundaryFallsBack(t *testing.T) {
	raw := "From: x@example.edu\r\n" +
		"Content-Type: multipart/mixed\r\n" +
		"\r\n" +
		"raw body without a boundary\r\n"

	text, err := extractTextFromMessage(parseMessage(t, raw))
	require.NoError(t, err)
	assert.Contains(t, text, "raw body without a boundary")
}

func TestDecodeEncodedHeader(t *testing.T) {
	decoded, err := decodeEncodedHeader("=?utf-8?q?Scholarship_Awarded?=")
	require.NoError(t, err)
	assert.Equal(t, "Scholarship Awarded", decoded)

	plain, err := decodeEncodedHeader("Application Received")
	require.NoError(t, err)
	assert.Equal(t, "Application Received", plain)
}
