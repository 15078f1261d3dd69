package marketplace_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"

	"github.com/v4codeit/prato-rinaldo-webapp-sub003/internal/domain/enums"
	"github.com/v4codeit/prato-rinaldo-webapp-sub003/internal/domain/model"
	"github.com/v4codeit/prato-rinaldo-webapp-sub003/internal/pkg/validate"
	redrepo "github.com/v4codeit/prato-rinaldo-webapp-sub003/internal/repo/redis"
	"github.com/v4codeit/prato-rinaldo-webapp-sub003/internal/services/marketplace"
	"github.com/v4codeit/prato-rinaldo-webapp-sub003/internal/services/moderation"
	"github.com/v4codeit/prato-rinaldo-webapp-sub003/internal/testutils/memstore"
)

type fakeStorage struct {
	puts        map[string][]byte
	calls       []string
	deleteCalls int
}

func (f *fakeStorage) PutImage(_ context.Context, key string, body io.Reader, _ int64, _ string) error {
	f.calls = append(f.calls, "put")
	data, err := io.ReadAll(body)
	if err != nil {
		return err
	}
	if f.puts == nil {
		f.puts = map[string][]byte{}
	}
	f.puts[key] = data
	return nil
}

func (f *fakeStorage) PresignGet(_ context.Context, key string, _ time.Duration) (string, error) {
	f.calls = append(f.calls, "presign")
	return "https://signed.local/" + key, nil
}

func (f *fakeStorage) Delete(_ context.Context, _ string) error {
	f.deleteCalls++
	return nil
}

type env struct {
	store      *memstore.Store
	moderation *moderation.Service
	svc        *marketplace.Service
	storage    *fakeStorage
	seller     model.Actor
	admin      model.Actor
}

func newEnv(t *testing.T) *env {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() {
		_ = client.Close()
		mr.Close()
	})
	cache := redrepo.NewCacheRepo(client)

	store := memstore.New()
	registry := moderation.NewRegistry()
	if err := registry.Register(enums.ItemTypeMarketplaceItem, store.Content(enums.ItemTypeMarketplaceItem)); err != nil {
		t.Fatalf("register: %v", err)
	}
	modSvc := moderation.NewService(moderation.Dependencies{
		Tx: store, Queue: store, Actions: store, Memberships: store,
		Registry: registry, Cache: cache,
	})

	tenantID := uuid.New()
	seller := model.Actor{UserID: uuid.New(), TenantID: tenantID}
	admin := model.Actor{UserID: uuid.New(), TenantID: tenantID}
	store.PutMembership(model.Membership{TenantID: tenantID, UserID: seller.UserID, Role: enums.RoleResident, Verified: true})
	store.PutMembership(model.Membership{TenantID: tenantID, UserID: admin.UserID, Role: enums.RoleAdmin})

	storage := &fakeStorage{}
	return &env{
		store:      store,
		moderation: modSvc,
		svc:        marketplace.NewService(store, modSvc, storage, cache, time.Minute, nil),
		storage:    storage,
		seller:     seller,
		admin:      admin,
	}
}

func validDraft() marketplace.ItemDraft {
	return marketplace.ItemDraft{
		Title:     "Tavolo in legno",
		Price:     50,
		Category:  "Furniture",
		Condition: "good",
	}
}

func TestSubmitApproveAndList(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	item, err := e.svc.CreateItem(ctx, e.seller, validDraft())
	if err != nil {
		t.Fatalf("create item: %v", err)
	}
	if item.PriceCents != 5000 || item.Status != enums.ModerationStatusPending {
		t.Fatalf("unexpected item: %+v", item)
	}

	listed, err := e.svc.GetApprovedItems(ctx, e.seller.TenantID, marketplace.ItemFilter{})
	if err != nil {
		t.Fatalf("list before approval: %v", err)
	}
	if len(listed) != 0 {
		t.Fatalf("pending item must not be listed")
	}

	queue, err := e.moderation.ListQueue(ctx, e.admin, model.QueueFilter{Status: enums.ModerationStatusPending})
	if err != nil {
		t.Fatalf("list queue: %v", err)
	}
	if len(queue) != 1 || queue[0].ItemID != item.ID {
		t.Fatalf("unexpected queue: %+v", queue)
	}

	if _, err := e.moderation.Approve(ctx, e.admin, queue[0].ID, ""); err != nil {
		t.Fatalf("approve: %v", err)
	}

	status, _ := e.store.ContentStatus(enums.ItemTypeMarketplaceItem, item.ID)
	if status != enums.ModerationStatusApproved {
		t.Fatalf("item status = %q", status)
	}

	listed, err = e.svc.GetApprovedItems(ctx, e.seller.TenantID, marketplace.ItemFilter{})
	if err != nil {
		t.Fatalf("list after approval: %v", err)
	}
	if len(listed) != 1 || listed[0].ID != item.ID {
		t.Fatalf("approved item missing from listing (stale cache?): %+v", listed)
	}

	actions, err := e.moderation.ListActions(ctx, e.admin, queue[0].ID)
	if err != nil {
		t.Fatalf("list actions: %v", err)
	}
	if len(actions) != 1 || actions[0].Action != enums.ModerationActionApproved {
		t.Fatalf("unexpected audit trail: %+v", actions)
	}
}

func TestCreateItemValidation(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	cases := []struct {
		name  string
		mut   func(*marketplace.ItemDraft)
		field string
	}{
		{"short title", func(d *marketplace.ItemDraft) { d.Title = "ab" }, "title"},
		{"negative price", func(d *marketplace.ItemDraft) { d.Price = -1 }, "price"},
		{"price above cap", func(d *marketplace.ItemDraft) { d.Price = 100000.01 }, "price"},
		{"unknown category", func(d *marketplace.ItemDraft) { d.Category = "Cars" }, "category"},
		{"unknown condition", func(d *marketplace.ItemDraft) { d.Condition = "broken" }, "condition"},
		{"long description", func(d *marketplace.ItemDraft) { d.Description = strings.Repeat("x", 2001) }, "description"},
		{"foreign image", func(d *marketplace.ItemDraft) { d.ImageKeys = []string{"tenants/other/x.jpg"} }, "image_keys"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			draft := validDraft()
			tc.mut(&draft)

			_, err := e.svc.CreateItem(ctx, e.seller, draft)
			var verrs validate.Errors
			if !errors.As(err, &verrs) {
				t.Fatalf("expected validation errors, got %v", err)
			}
			if verrs.First().Field != tc.field {
				t.Fatalf("first field = %q, want %q", verrs.First().Field, tc.field)
			}
		})
	}

	if _, err := e.svc.CreateItem(ctx, model.Actor{}, validDraft()); !errors.Is(err, moderation.ErrUnauthenticated) {
		t.Fatalf("expected ErrUnauthenticated, got %v", err)
	}
}

func TestCategoryIsCaseInsensitive(t *testing.T) {
	e := newEnv(t)
	draft := validDraft()
	draft.Category = "furniture"
	draft.Condition = "LIKE_NEW"

	item, err := e.svc.CreateItem(context.Background(), e.seller, draft)
	if err != nil {
		t.Fatalf("create item: %v", err)
	}
	if item.Category != "Furniture" || item.Condition != "like_new" {
		t.Fatalf("options not canonicalized: %q %q", item.Category, item.Condition)
	}
}

func TestMarkSold(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	item, err := e.svc.CreateItem(ctx, e.seller, validDraft())
	if err != nil {
		t.Fatalf("create item: %v", err)
	}

	if _, err := e.svc.MarkSold(ctx, e.seller, item.ID); !errors.Is(err, marketplace.ErrNotSellable) {
		t.Fatalf("pending item should not be sellable, got %v", err)
	}

	queue, _ := e.moderation.ListQueue(ctx, e.admin, model.QueueFilter{})
	if _, err := e.moderation.Approve(ctx, e.admin, queue[0].ID, ""); err != nil {
		t.Fatalf("approve: %v", err)
	}

	if _, err := e.svc.MarkSold(ctx, e.admin, item.ID); !errors.Is(err, marketplace.ErrNotOwner) {
		t.Fatalf("expected ErrNotOwner, got %v", err)
	}

	// warm the cache so the sold item would be served stale without invalidation
	if listed, _ := e.svc.GetApprovedItems(ctx, e.seller.TenantID, marketplace.ItemFilter{}); len(listed) != 1 {
		t.Fatalf("expected the approved item to be listed")
	}

	sold, err := e.svc.MarkSold(ctx, e.seller, item.ID)
	if err != nil {
		t.Fatalf("mark sold: %v", err)
	}
	if sold.SoldAt == nil {
		t.Fatalf("sold_at not set")
	}

	listed, err := e.svc.GetApprovedItems(ctx, e.seller.TenantID, marketplace.ItemFilter{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(listed) != 0 {
		t.Fatalf("sold item still listed")
	}

	counters, err := e.store.ActivityCounters(ctx, e.seller.TenantID, e.seller.UserID)
	if err != nil {
		t.Fatalf("counters: %v", err)
	}
	if counters[model.MetricSoldItems] != 1 {
		t.Fatalf("sold_items metric = %d", counters[model.MetricSoldItems])
	}
}

var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")

func TestUploadImageAcceptsPNG(t *testing.T) {
	e := newEnv(t)
	body := append(append([]byte{}, pngHeader...), bytes.Repeat([]byte{0}, 1024)...)

	img, err := e.svc.UploadImage(context.Background(), e.seller, "sedia.png", "image/png", bytes.NewReader(body), int64(len(body)))
	if err != nil {
		t.Fatalf("upload: %v", err)
	}
	if !strings.HasPrefix(img.Key, "tenants/"+e.seller.TenantID.String()+"/marketplace/"+e.seller.UserID.String()+"/") || !strings.HasSuffix(img.Key, ".png") {
		t.Fatalf("unexpected key %q", img.Key)
	}
	if !bytes.Equal(e.storage.puts[img.Key], body) {
		t.Fatalf("stored body differs from upload")
	}
	// one write and one signature per upload, no bucket round trip
	if strings.Join(e.storage.calls, ",") != "put,presign" {
		t.Fatalf("storage calls = %v", e.storage.calls)
	}

	draft := validDraft()
	draft.ImageKeys = []string{img.Key}
	if _, err := e.svc.CreateItem(context.Background(), e.seller, draft); err != nil {
		t.Fatalf("create item with uploaded image: %v", err)
	}
}

func TestUploadImageRejectsBadInput(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	text := []byte("just some text, definitely not an image")
	_, err := e.svc.UploadImage(ctx, e.seller, "a.png", "image/png", bytes.NewReader(text), int64(len(text)))
	var verrs validate.Errors
	if !errors.As(err, &verrs) || verrs.First().Code != "invalid_type" {
		t.Fatalf("expected invalid_type, got %v", err)
	}

	_, err = e.svc.UploadImage(ctx, e.seller, "big.png", "image/png", bytes.NewReader(pngHeader), marketplace.MaxImageBytes+1)
	if !errors.As(err, &verrs) || verrs.First().Code != "too_large" {
		t.Fatalf("expected too_large, got %v", err)
	}
	if len(e.storage.puts) != 0 {
		t.Fatalf("rejected uploads reached storage")
	}
}
