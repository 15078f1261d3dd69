// Package notifications fans committed moderation events out to realtime
// clients, submitters and the moderators chat. Delivery is best effort.
package notifications

import (
	"context"
	"encoding/json"
	"fmt"
	"html"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/v4codeit/prato-rinaldo-webapp-sub003/internal/domain/enums"
	"github.com/v4codeit/prato-rinaldo-webapp-sub003/internal/domain/model"
	"github.com/v4codeit/prato-rinaldo-webapp-sub003/internal/infra/mail"
)

const (
	EventQueued   = "moderation.queued"
	EventAssigned = "moderation.assigned"
	EventResolved = "moderation.resolved"

	deliveryTimeout = 5 * time.Second
)

type Publisher interface {
	Publish(ctx context.Context, channel string, payload []byte) (int64, error)
}

type Mailer interface {
	Send(ctx context.Context, msg mail.Message) error
}

type Alerter interface {
	SendModerationAlert(ctx context.Context, chatID int64, text, reviewURL string) error
}

type MembershipStore interface {
	GetMembership(ctx context.Context, tenantID, userID uuid.UUID) (model.Membership, error)
}

type Config struct {
	// BaseURL is the public origin of the portal, used for links in messages.
	BaseURL         string
	ModeratorChatID int64
}

type Event struct {
	Type       string                 `json:"type"`
	EntryID    uuid.UUID              `json:"entry_id"`
	ItemType   enums.ItemType         `json:"item_type"`
	ItemID     uuid.UUID              `json:"item_id"`
	Status     enums.ModerationStatus `json:"status"`
	Source     enums.QueueSource      `json:"source,omitempty"`
	AssignedTo *uuid.UUID             `json:"assigned_to,omitempty"`
	At         time.Time              `json:"at"`
}

type Service struct {
	publisher Publisher
	mailer    Mailer
	alerter   Alerter
	members   MembershipStore
	cfg       Config
	logger    *zap.Logger
	now       func() time.Time
}

// NewService accepts nil for any channel that is not configured.
func NewService(publisher Publisher, mailer Mailer, alerter Alerter, members MembershipStore, cfg Config, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	cfg.BaseURL = strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	return &Service{
		publisher: publisher,
		mailer:    mailer,
		alerter:   alerter,
		members:   members,
		cfg:       cfg,
		logger:    logger,
		now:       time.Now,
	}
}

func Channel(tenantID uuid.UUID) string {
	return "portal:" + tenantID.String() + ":moderation"
}

func (s *Service) EntryQueued(ctx context.Context, entry model.ModerationQueueEntry, content model.ContentRef) {
	s.publish(ctx, EventQueued, entry)

	if s.alerter == nil || s.cfg.ModeratorChatID == 0 {
		return
	}
	ctx, cancel := deliveryContext(ctx)
	defer cancel()

	text := queuedAlertText(entry, content)
	if err := s.alerter.SendModerationAlert(ctx, s.cfg.ModeratorChatID, text, s.reviewURL(entry.ID)); err != nil {
		s.logger.Warn("moderator alert failed",
			zap.String("entry_id", entry.ID.String()),
			zap.Error(err),
		)
	}
}

func (s *Service) EntryAssigned(ctx context.Context, entry model.ModerationQueueEntry) {
	s.publish(ctx, EventAssigned, entry)
}

func (s *Service) EntryResolved(ctx context.Context, entry model.ModerationQueueEntry, content model.ContentRef, notes string) {
	s.publish(ctx, EventResolved, entry)

	if s.mailer == nil || s.members == nil || content.OwnerID == uuid.Nil {
		return
	}
	ctx, cancel := deliveryContext(ctx)
	defer cancel()

	owner, err := s.members.GetMembership(ctx, entry.TenantID, content.OwnerID)
	if err != nil {
		s.logger.Warn("decision email skipped: owner lookup failed",
			zap.String("entry_id", entry.ID.String()),
			zap.Error(err),
		)
		return
	}
	if strings.TrimSpace(owner.Email) == "" {
		return
	}

	if err := s.mailer.Send(ctx, decisionEmail(owner, entry, content, notes)); err != nil {
		s.logger.Warn("decision email failed",
			zap.String("entry_id", entry.ID.String()),
			zap.Error(err),
		)
		return
	}
	s.logger.Info("decision email sent", zap.String("entry_id", entry.ID.String()))
}

func (s *Service) publish(ctx context.Context, eventType string, entry model.ModerationQueueEntry) {
	if s.publisher == nil {
		return
	}

	payload, err := json.Marshal(Event{
		Type:       eventType,
		EntryID:    entry.ID,
		ItemType:   entry.ItemType,
		ItemID:     entry.ItemID,
		Status:     entry.Status,
		Source:     entry.Source,
		AssignedTo: entry.AssignedTo,
		At:         s.now().UTC(),
	})
	if err != nil {
		s.logger.Warn("encode moderation event failed", zap.Error(err))
		return
	}

	if _, err := s.publisher.Publish(ctx, Channel(entry.TenantID), payload); err != nil {
		s.logger.Warn("publish moderation event failed",
			zap.String("event", eventType),
			zap.String("entry_id", entry.ID.String()),
			zap.Error(err),
		)
	}
}

func (s *Service) reviewURL(entryID uuid.UUID) string {
	if s.cfg.BaseURL == "" {
		return ""
	}
	return s.cfg.BaseURL + "/admin/moderation/" + entryID.String()
}

func deliveryContext(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.WithoutCancel(ctx), deliveryTimeout)
}

var itemLabels = map[enums.ItemType]string{
	enums.ItemTypeMarketplaceItem: "annuncio del mercatino",
	enums.ItemTypeServiceProfile:  "scheda professionale",
	enums.ItemTypeProposal:        "proposta",
	enums.ItemTypeTutorialRequest: "richiesta di ripetizioni",
}

func queuedAlertText(entry model.ModerationQueueEntry, content model.ContentRef) string {
	label := itemLabels[entry.ItemType]
	if entry.Source == enums.QueueSourceReport {
		reason := ""
		if entry.Reason != nil {
			reason = *entry.Reason
		}
		return fmt.Sprintf("Segnalazione: %s \"%s\"\nMotivo: %s", label, content.Title, reason)
	}
	return fmt.Sprintf("Da revisionare: %s \"%s\"", label, content.Title)
}

func decisionEmail(owner model.Membership, entry model.ModerationQueueEntry, content model.ContentRef, notes string) mail.Message {
	label := itemLabels[entry.ItemType]
	var subject, body string
	if entry.Status == enums.ModerationStatusApproved {
		subject = "Il tuo contenuto è stato pubblicato"
		body = fmt.Sprintf("Esito della revisione per %s \"%s\": approvato. Ora è visibile nel portale.", label, content.Title)
	} else {
		subject = "Il tuo contenuto non è stato approvato"
		body = fmt.Sprintf("Esito della revisione per %s \"%s\": non approvato.", label, content.Title)
		if strings.TrimSpace(notes) != "" {
			body += "\nMotivo: " + notes
		}
	}

	return mail.Message{
		ToName:    owner.DisplayName,
		ToAddress: owner.Email,
		Subject:   subject,
		Text:      body,
		HTML:      "<p>" + strings.ReplaceAll(html.EscapeString(body), "\n", "<br>") + "</p>",
	}
}
