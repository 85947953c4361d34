package filter

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net"
	"net/mail"
	"os"
	"strings"
	"time"

	"github.com/emersion/go-smtp"
	"github.com/mikey/admissions-mail-filter/internal/core"
	"go.uber.org/zap"
)

// SMTPFilter is an inbound content filter. It accepts mail from the MTA,
// classifies it, stamps the verdict into headers, and reinjects the
// message downstream. It never rejects mail: a delivery-time filter must
// be fail-open, so a classification or relay problem always leaves the
// message deliverable to the inbox.
type SMTPFilter struct {
	service       *core.FilterService
	logger        *zap.Logger
	listenAddr    string
	server        *smtp.Server
	statusHeader  string
	confHeader    string
	reasonHeader  string
	rulesHeader   string
	subjectPrefix string
	modifySubject bool
	relayAddr     string
	relayPort     int
	relayEnabled  bool
}

// NewSMTPFilter creates a new SMTP content filter
func NewSMTPFilter(
	service *core.FilterService,
	logger *zap.Logger,
	listenAddr string,
	statusHeader string,
	confHeader string,
	reasonHeader string,
	rulesHeader string,
	subjectPrefix string,
	modifySubject bool,
	relayAddr string,
	relayPort int,
	relayEnabled bool,
) *SMTPFilter {
	if subjectPrefix == "" && modifySubject {
		subjectPrefix = "[College-Filtered] "
	}

	return &SMTPFilter{
		service:       service,
		logger:        logger,
		listenAddr:    listenAddr,
		statusHeader:  statusHeader,
		confHeader:    confHeader,
		reasonHeader:  reasonHeader,
		rulesHeader:   rulesHeader,
		subjectPrefix: subjectPrefix,
		modifySubject: modifySubject,
		relayAddr:     relayAddr,
		relayPort:     relayPort,
		relayEnabled:  relayEnabled,
	}
}

// Start starts the SMTP filter service
func (f *SMTPFilter) Start() error {
	f.server = smtp.NewServer(&smtpBackend{filter: f})

	f.server.Addr = f.listenAddr
	f.server.Domain = "localhost"
	f.server.ReadTimeout = 30 * time.Second
	f.server.WriteTimeout = 30 * time.Second
	f.server.MaxMessageBytes = 30 * 1024 * 1024 // 30MB
	f.server.MaxRecipients = 50
	f.server.AllowInsecureAuth = true

	f.logger.Info("SMTP filter starting", zap.String("address", f.listenAddr))

	go func() {
		if err := f.server.ListenAndServe(); err != nil {
			if err != smtp.ErrServerClosed {
				f.logger.Error("SMTP server error", zap.Error(err))
			}
		}
	}()

	return nil
}

// Stop stops the SMTP filter service
func (f *SMTPFilter) Stop() error {
	if f.server != nil {
		return f.server.Close()
	}
	return nil
}

// ProcessEmail classifies one email. Used for testing and direct calls.
func (f *SMTPFilter) ProcessEmail(ctx context.Context, email *core.Email) (core.Result, error) {
	return f.service.Classify(ctx, email), nil
}

// relay reinjects the stamped message to the downstream MTA
func (f *SMTPFilter) relay(sender string, recipients []string, emailData []byte) error {
	addr := fmt.Sprintf("%s:%d", f.relayAddr, f.relayPort)

	hostname, err := os.Hostname()
	if err != nil {
		hostname = "localhost"
	}

	conn, err := net.DialTimeout("tcp", addr, 10*time.Second)
	if err != nil {
		return fmt.Errorf("failed to connect to relay: %w", err)
	}

	if err := conn.SetDeadline(time.Now().Add(30 * time.Second)); err != nil {
		conn.Close()
		return fmt.Errorf("failed to set connection deadline: %w", err)
	}

	c := smtp.NewClient(conn)
	defer c.Close()

	if err := c.Hello(hostname); err != nil {
		return fmt.Errorf("EHLO failed: %w", err)
	}
	if err := c.Mail(sender, nil); err != nil {
		return fmt.Errorf("MAIL FROM failed: %w", err)
	}

	recipientOK := false
	for _, recipient := range recipients {
		if err := c.Rcpt(recipient, nil); err != nil {
			f.logger.Warn("RCPT TO failed for recipient",
				zap.String("recipient", recipient),
				zap.Error(err))
		} else {
			recipientOK = true
		}
	}
	if !recipientOK {
		return fmt.Errorf("all recipients were rejected")
	}

	wc, err := c.Data()
	if err != nil {
		return fmt.Errorf("DATA command failed: %w", err)
	}
	if _, err := wc.Write(emailData); err != nil {
		wc.Close()
		return fmt.Errorf("failed to send email data: %w", err)
	}
	if err := wc.Close(); err != nil {
		return fmt.Errorf("failed to close data writer: %w", err)
	}

	if err := c.Quit(); err != nil {
		f.logger.Warn("QUIT command failed", zap.Error(err))
	}

	return nil
}

// smtpBackend implements the go-smtp Backend interface
type smtpBackend struct {
	filter *SMTPFilter
}

// NewSession creates a new SMTP session
func (b *smtpBackend) NewSession(c *smtp.Conn) (smtp.Session, error) {
	return &smtpSession{
		filter:     b.filter,
		recipients: make([]string, 0),
	}, nil
}

// smtpSession implements the go-smtp Session interface
type smtpSession struct {
	filter     *SMTPFilter
	sender     string
	recipients []string
}

// Reset resets the session state
func (s *smtpSession) Reset() {
	s.sender = ""
	s.recipients = make([]string, 0)
}

// AuthPlain handles PLAIN authentication (not needed for the filter)
func (s *smtpSession) AuthPlain(_ []byte) error {
	return smtp.ErrAuthUnsupported
}

// Mail sets the sender address
func (s *smtpSession) Mail(from string, _ *smtp.MailOptions) error {
	s.sender = from
	return nil
}

// Rcpt adds a recipient
func (s *smtpSession) Rcpt(to string, _ *smtp.RcptOptions) error {
	s.recipients = append(s.recipients, to)
	return nil
}

// Data classifies the message, stamps the verdict headers, and relays the
// result downstream
func (s *smtpSession) Data(r io.Reader) error {
	rawData, err := io.ReadAll(r)
	if err != nil {
		s.filter.logger.Error("Failed to read message data", zap.Error(err))
		return err
	}

	msg, err := mail.ReadMessage(bytes.NewReader(rawData))
	if err != nil {
		s.filter.logger.Error("Failed to parse email message", zap.Error(err))
		return err
	}

	textContent, err := extractTextFromMessage(msg)
	if err != nil {
		s.filter.logger.Error("Failed to extract text content", zap.Error(err))
		return err
	}

	email := &core.Email{
		Subject: msg.Header.Get("Subject"),
		Body:    textContent,
		From:    s.sender,
		To:      strings.Join(s.recipients, ", "),
		Cc:      msg.Header.Get("Cc"),
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	result := s.filter.service.Classify(ctx, email)

	var out bytes.Buffer

	// Stamp the verdict so the MDA and a human audit can see why the
	// message was kept or filtered
	fmt.Fprintf(&out, "%s: %t\r\n", s.filter.statusHeader, result.Pertains)
	fmt.Fprintf(&out, "%s: %.4f\r\n", s.filter.confHeader, result.Confidence)
	fmt.Fprintf(&out, "%s: %s\r\n", s.filter.reasonHeader, result.Reason)
	fmt.Fprintf(&out, "%s: %s\r\n", s.filter.rulesHeader, strings.Join(result.MatchedRules, ","))

	prefixSubject := !result.Pertains && s.filter.modifySubject && s.filter.subjectPrefix != ""
	for key, values := range msg.Header {
		if prefixSubject && strings.EqualFold(key, "Subject") {
			continue
		}
		for _, value := range values {
			fmt.Fprintf(&out, "%s: %s\r\n", key, value)
		}
	}
	if prefixSubject {
		subject := msg.Header.Get("Subject")
		if decoded, err := decodeEncodedHeader(subject); err == nil {
			subject = decoded
		}
		if !strings.HasPrefix(subject, s.filter.subjectPrefix) {
			subject = s.filter.subjectPrefix + subject
		}
		fmt.Fprintf(&out, "Subject: %s\r\n", subject)
	}
	fmt.Fprintf(&out, "\r\n")

	// Preserve the original body bytes, MIME parts and all
	if i := bytes.Index(rawData, []byte("\r\n\r\n")); i >= 0 {
		out.Write(rawData[i+4:])
	} else if i := bytes.Index(rawData, []byte("\n\n")); i >= 0 {
		out.Write(rawData[i+2:])
	}

	if s.filter.relayEnabled {
		if err := s.filter.relay(s.sender, s.recipients, out.Bytes()); err != nil {
			s.filter.logger.Error("Failed to relay email downstream",
				zap.Error(err),
				zap.String("sender", email.From))
			return err
		}
	} else {
		s.filter.logger.Warn("Relay disabled, message consumed; this is likely a misconfiguration")
	}

	s.filter.logger.Info("Processed email",
		zap.String("from", email.From),
		zap.Bool("pertains", result.Pertains),
		zap.Float64("confidence", result.Confidence),
		zap.Strings("matched_rules", result.MatchedRules))

	return nil
}

// Logout handles SMTP logout (not needed for the filter)
func (s *smtpSession) Logout() error {
	return nil
}
