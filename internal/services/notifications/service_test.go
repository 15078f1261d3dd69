package notifications_test

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"

	"github.com/v4codeit/prato-rinaldo-webapp-sub003/internal/domain/enums"
	"github.com/v4codeit/prato-rinaldo-webapp-sub003/internal/domain/model"
	"github.com/v4codeit/prato-rinaldo-webapp-sub003/internal/infra/mail"
	redrepo "github.com/v4codeit/prato-rinaldo-webapp-sub003/internal/repo/redis"
	"github.com/v4codeit/prato-rinaldo-webapp-sub003/internal/services/notifications"
	"github.com/v4codeit/prato-rinaldo-webapp-sub003/internal/testutils/memstore"
)

type fakeMailer struct {
	sent []mail.Message
	err  error
}

func (f *fakeMailer) Send(_ context.Context, msg mail.Message) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, msg)
	return nil
}

type alert struct {
	chatID int64
	text   string
	url    string
}

type fakeAlerter struct {
	alerts []alert
}

func (f *fakeAlerter) SendModerationAlert(_ context.Context, chatID int64, text, reviewURL string) error {
	f.alerts = append(f.alerts, alert{chatID: chatID, text: text, url: reviewURL})
	return nil
}

type failingPublisher struct{}

func (failingPublisher) Publish(context.Context, string, []byte) (int64, error) {
	return 0, errors.New("redis down")
}

func sampleEntry(tenantID uuid.UUID) (model.ModerationQueueEntry, model.ContentRef) {
	itemID := uuid.New()
	entry := model.ModerationQueueEntry{
		ID:          uuid.New(),
		ItemType:    enums.ItemTypeMarketplaceItem,
		ItemID:      itemID,
		TenantID:    tenantID,
		SubmittedBy: uuid.New(),
		Status:      enums.ModerationStatusPending,
		Source:      enums.QueueSourceSubmission,
		CreatedAt:   time.Now().UTC(),
	}
	content := model.ContentRef{
		ItemType: enums.ItemTypeMarketplaceItem,
		ID:       itemID,
		TenantID: tenantID,
		OwnerID:  entry.SubmittedBy,
		Title:    "Bicicletta da corsa",
		Status:   enums.ModerationStatusPending,
	}
	return entry, content
}

func TestEntryQueuedPublishesAndAlerts(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	defer client.Close()
	events := redrepo.NewEventsRepo(client)

	tenantID := uuid.New()
	sub, err := events.Subscribe(context.Background(), notifications.Channel(tenantID))
	if err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	defer sub.Close()

	alerter := &fakeAlerter{}
	svc := notifications.NewService(events, nil, alerter, nil, notifications.Config{
		BaseURL:         "https://portal.example/",
		ModeratorChatID: -100123,
	}, nil)

	entry, content := sampleEntry(tenantID)
	svc.EntryQueued(context.Background(), entry, content)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	msg, err := sub.ReceiveMessage(ctx)
	if err != nil {
		t.Fatalf("receive event: %v", err)
	}

	var event notifications.Event
	if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
		t.Fatalf("decode event: %v", err)
	}
	if event.Type != notifications.EventQueued || event.EntryID != entry.ID || event.ItemType != enums.ItemTypeMarketplaceItem {
		t.Fatalf("unexpected event: %+v", event)
	}

	if len(alerter.alerts) != 1 {
		t.Fatalf("expected one alert, got %d", len(alerter.alerts))
	}
	got := alerter.alerts[0]
	if got.chatID != -100123 || !strings.Contains(got.text, "Bicicletta da corsa") {
		t.Fatalf("unexpected alert: %+v", got)
	}
	if got.url != "https://portal.example/admin/moderation/"+entry.ID.String() {
		t.Fatalf("unexpected review url %q", got.url)
	}
}

func TestEntryResolvedEmailsOwner(t *testing.T) {
	store := memstore.New()
	tenantID := uuid.New()
	entry, content := sampleEntry(tenantID)
	store.PutMembership(model.Membership{
		TenantID:    tenantID,
		UserID:      content.OwnerID,
		Role:        enums.RoleResident,
		Verified:    true,
		Email:       "maria@example.it",
		DisplayName: "Maria",
	})

	mailer := &fakeMailer{}
	svc := notifications.NewService(failingPublisher{}, mailer, nil, store, notifications.Config{}, nil)

	entry.Status = enums.ModerationStatusRejected
	svc.EntryResolved(context.Background(), entry, content, "Foto non pertinenti <img>")

	if len(mailer.sent) != 1 {
		t.Fatalf("expected one email, got %d", len(mailer.sent))
	}
	sent := mailer.sent[0]
	if sent.ToAddress != "maria@example.it" || sent.ToName != "Maria" {
		t.Fatalf("unexpected recipient: %+v", sent)
	}
	if !strings.Contains(sent.Text, "non approvato") || !strings.Contains(sent.Text, "Foto non pertinenti") {
		t.Fatalf("unexpected body: %q", sent.Text)
	}
	if strings.Contains(sent.HTML, "<img>") {
		t.Fatalf("notes must be escaped in html: %q", sent.HTML)
	}
}

func TestDeliveryFailuresAreSwallowed(t *testing.T) {
	store := memstore.New()
	tenantID := uuid.New()
	entry, content := sampleEntry(tenantID)
	store.PutMembership(model.Membership{TenantID: tenantID, UserID: content.OwnerID, Email: "a@b.it"})

	svc := notifications.NewService(failingPublisher{}, &fakeMailer{err: errors.New("smtp refused")}, nil, store, notifications.Config{}, nil)

	// none of these may panic or block
	svc.EntryQueued(context.Background(), entry, content)
	svc.EntryAssigned(context.Background(), entry)
	entry.Status = enums.ModerationStatusApproved
	svc.EntryResolved(context.Background(), entry, content, "")
}

func TestNoEmailWithoutAddress(t *testing.T) {
	store := memstore.New()
	tenantID := uuid.New()
	entry, content := sampleEntry(tenantID)
	store.PutMembership(model.Membership{TenantID: tenantID, UserID: content.OwnerID})

	mailer := &fakeMailer{}
	svc := notifications.NewService(nil, mailer, nil, store, notifications.Config{}, nil)
	entry.Status = enums.ModerationStatusApproved
	svc.EntryResolved(context.Background(), entry, content, "")

	if len(mailer.sent) != 0 {
		t.Fatalf("expected no email, got %d", len(mailer.sent))
	}
}
