package mailbox

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"

	"github.com/mikey/admissions-mail-filter/internal/core"
	"github.com/mikey/admissions-mail-filter/internal/utils"
	"go.uber.org/zap"
)

const inboxLabelID = "INBOX"

// maxBodyBytes caps how much decoded body text is handed to the engine.
const maxBodyBytes = 64 * 1024

// NewGmailService builds an authenticated Gmail service from an OAuth
// client credentials file and a stored user token.
func NewGmailService(ctx context.Context, credentialsFile, tokenFile string) (*gmail.Service, error) {
	credBytes, err := os.ReadFile(credentialsFile)
	if err != nil {
		return nil, fmt.Errorf("failed to read credentials file: %w", err)
	}

	oauthCfg, err := google.ConfigFromJSON(credBytes, gmail.GmailModifyScope)
	if err != nil {
		return nil, fmt.Errorf("failed to parse credentials: %w", err)
	}

	tokBytes, err := os.ReadFile(tokenFile)
	if err != nil {
		return nil, fmt.Errorf("failed to read token file: %w", err)
	}
	tok := &oauth2.Token{}
	if err := json.Unmarshal(tokBytes, tok); err != nil {
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}

	svc, err := gmail.NewService(ctx, option.WithHTTPClient(oauthCfg.Client(ctx, tok)))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gmail service: %w", err)
	}
	return svc, nil
}

// GmailSource supplies email records from a Gmail mailbox query
type GmailSource struct {
	svc    *gmail.Service
	logger *zap.Logger
	tp     *utils.TextProcessor
	user   string
	query  string
}

// NewGmailSource creates a new Gmail mailbox source
func NewGmailSource(svc *gmail.Service, logger *zap.Logger, tp *utils.TextProcessor, user, query string) *GmailSource {
	return &GmailSource{
		svc:    svc,
		logger: logger,
		tp:     tp,
		user:   user,
		query:  query,
	}
}

// Fetch returns up to max messages matching the configured query
func (s *GmailSource) Fetch(ctx context.Context, max int64) ([]core.SourcedEmail, error) {
	list, err := s.svc.Users.Messages.List(s.user).Q(s.query).MaxResults(max).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}

	emails := make([]core.SourcedEmail, 0, len(list.Messages))
	for _, ref := range list.Messages {
		msg, err := s.svc.Users.Messages.Get(s.user, ref.Id).Format("full").Context(ctx).Do()
		if err != nil {
			// One unreadable message must not abort the batch
			s.logger.Warn("Failed to fetch message", zap.String("id", ref.Id), zap.Error(err))
			continue
		}

		email := DecodeMessage(msg)
		email.Body = s.tp.ProcessText(email.Body, maxBodyBytes)

		emails = append(emails, core.SourcedEmail{ID: ref.Id, Email: email})
	}

	return emails, nil
}

// GmailDispatcher applies verdicts to the mailbox. It is fail-open: if an
// action cannot be applied the message stays in the inbox and the error is
// logged for audit, the mirror image of the engine's fail-closed default.
type GmailDispatcher struct {
	svc             *gmail.Service
	logger          *zap.Logger
	user            string
	filteredLabel   string
	filteredLabelID string
	dryRun          bool
}

// NewGmailDispatcher creates a new Gmail action dispatcher
func NewGmailDispatcher(svc *gmail.Service, logger *zap.Logger, user, filteredLabel string, dryRun bool) *GmailDispatcher {
	return &GmailDispatcher{
		svc:           svc,
		logger:        logger,
		user:          user,
		filteredLabel: filteredLabel,
		dryRun:        dryRun,
	}
}

// Dispatch applies the label/move operation for one verdict. Kept mail is
// left untouched; filtered mail is archived under the filtered label.
// Every action is logged with the matched rule ids and reason.
func (d *GmailDispatcher) Dispatch(ctx context.Context, msg core.SourcedEmail, result core.Result) error {
	fields := []zap.Field{
		zap.String("id", msg.ID),
		zap.Bool("pertains", result.Pertains),
		zap.Float64("confidence", result.Confidence),
		zap.String("reason", result.Reason),
		zap.Strings("matched_rules", result.MatchedRules),
	}

	if result.Pertains {
		d.logger.Info("Keeping email in inbox", fields...)
		return nil
	}

	if d.dryRun {
		d.logger.Info("Dry run: would archive email", fields...)
		return nil
	}

	labelID, err := d.ensureFilteredLabel(ctx)
	if err != nil {
		// Fail open: on doubt the message stays in the inbox
		d.logger.Error("Failed to resolve filtered label, keeping email", append(fields, zap.Error(err))...)
		return err
	}

	req := &gmail.ModifyMessageRequest{
		AddLabelIds:    []string{labelID},
		RemoveLabelIds: []string{inboxLabelID},
	}
	if _, err := d.svc.Users.Messages.Modify(d.user, msg.ID, req).Context(ctx).Do(); err != nil {
		d.logger.Error("Failed to archive email, keeping in inbox", append(fields, zap.Error(err))...)
		return fmt.Errorf("failed to modify message %s: %w", msg.ID, err)
	}

	d.logger.Info("Archived email under filtered label", fields...)
	return nil
}

// ensureFilteredLabel resolves the filtered label id, creating the label
// on first use.
func (d *GmailDispatcher) ensureFilteredLabel(ctx context.Context) (string, error) {
	if d.filteredLabelID != "" {
		return d.filteredLabelID, nil
	}

	list, err := d.svc.Users.Labels.List(d.user).Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("failed to list labels: %w", err)
	}
	for _, l := range list.Labels {
		if l.Name == d.filteredLabel {
			d.filteredLabelID = l.Id
			return l.Id, nil
		}
	}

	created, err := d.svc.Users.Labels.Create(d.user, &gmail.Label{
		Name:                  d.filteredLabel,
		LabelListVisibility:   "labelShow",
		MessageListVisibility: "show",
	}).Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("failed to create label %q: %w", d.filteredLabel, err)
	}

	d.logger.Info("Created filtered label", zap.String("label", d.filteredLabel), zap.String("id", created.Id))
	d.filteredLabelID = created.Id
	return created.Id, nil
}
