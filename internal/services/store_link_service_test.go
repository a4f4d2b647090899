package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"reverse-market/internal/models"
	"reverse-market/internal/testutil"
)

func sellerWithPendingLinks(t *testing.T, e *env, phone string, links map[int]string) *models.User {
	t.Helper()
	seller := testutil.Seller(t, e.db, phone)
	for slot, url := range links {
		seller.Link(slot).Submit(strPtr(url), time.Now())
	}
	seller.SyncPendingFlag()
	require.NoError(t, e.repo.SaveUser(context.Background(), seller))
	return seller
}

func TestApproveLinkPublishesPendingValue(t *testing.T) {
	e := newEnv(t)
	seller := sellerWithPendingLinks(t, e, "0505555550", map[int]string{1: "https://a.example", 2: "https://b.example"})

	updated, err := e.storeLinks.ApproveLink(context.Background(), e.actor, seller.ID, 2)
	require.NoError(t, err)

	assert.Equal(t, "https://b.example", *updated.WebsiteURL2)
	assert.False(t, updated.Link(2).IsPending())
	assert.True(t, updated.Link(1).IsPending())
	assert.True(t, updated.HasPendingURLChanges)
	assert.NotNil(t, updated.URLsLastApprovedAt)

	var n models.Notification
	require.NoError(t, e.db.Where("user_id = ?", seller.ID).First(&n).Error)
	assert.Equal(t, models.NotificationStoreLinkApproved, n.Type)
	assert.True(t, n.WhatsAppSent)
	assert.False(t, n.EmailSent)
}

func TestRejectLinkKeepsLiveValue(t *testing.T) {
	e := newEnv(t)
	seller := sellerWithPendingLinks(t, e, "0505555551", map[int]string{3: "https://bad.example"})
	require.NoError(t, e.db.Model(seller).Update("website_url3", "https://good.example").Error)

	updated, err := e.storeLinks.RejectLink(context.Background(), e.actor, seller.ID, 3)
	require.NoError(t, err)
	assert.Equal(t, "https://good.example", *updated.WebsiteURL3)
	assert.Nil(t, updated.PendingWebsiteURL3)
	assert.False(t, updated.HasPendingURLChanges)
}

func TestLinkReviewErrors(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	seller := sellerWithPendingLinks(t, e, "0505555552", map[int]string{1: "https://a.example"})
	buyer := testutil.Buyer(t, e.db, "0505555553")

	_, err := e.storeLinks.ApproveLink(ctx, e.actor, seller.ID, 4)
	assert.ErrorIs(t, err, ErrInvalidLinkSlot)
	_, err = e.storeLinks.ApproveLink(ctx, e.actor, seller.ID, 2)
	assert.ErrorIs(t, err, ErrLinkNotPending)
	_, err = e.storeLinks.RejectLink(ctx, e.actor, buyer.ID, 1)
	assert.ErrorIs(t, err, ErrSellersOnly)
	_, err = e.storeLinks.ApproveAll(ctx, e.actor, 9999)
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestApproveAllAndListPending(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	seller := sellerWithPendingLinks(t, e, "0505555554", map[int]string{1: "https://a.example", 3: "https://c.example"})
	sellerWithPendingLinks(t, e, "0505555555", map[int]string{2: "https://z.example"})

	page, err := e.storeLinks.ListPending(ctx, 1)
	require.NoError(t, err)
	assert.EqualValues(t, 2, page.Total)

	updated, err := e.storeLinks.ApproveAll(ctx, e.actor, seller.ID)
	require.NoError(t, err)
	assert.Equal(t, "https://a.example", *updated.WebsiteURL1)
	assert.Equal(t, "https://c.example", *updated.WebsiteURL3)
	assert.Zero(t, updated.PendingURLsCount())

	page, err = e.storeLinks.ListPending(ctx, 1)
	require.NoError(t, err)
	assert.EqualValues(t, 1, page.Total)

	_, err = e.storeLinks.ApproveAll(ctx, e.actor, seller.ID)
	assert.ErrorIs(t, err, ErrNoPendingLinks)
}

func TestApproveStoreAndToggleActive(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	seller := testutil.Seller(t, e.db, "0505555556")
	require.NoError(t, e.db.Model(seller).Update("is_store_approved", false).Error)

	approved, err := e.storeLinks.ApproveStore(ctx, e.actor, seller.ID)
	require.NoError(t, err)
	assert.True(t, approved.IsStoreApproved)
	assert.Equal(t, e.actor.UserID, *approved.StoreApprovedBy)

	toggled, err := e.storeLinks.ToggleUserActive(ctx, e.actor, seller.ID)
	require.NoError(t, err)
	assert.False(t, toggled.IsActive)
	toggled, err = e.storeLinks.ToggleUserActive(ctx, e.actor, seller.ID)
	require.NoError(t, err)
	assert.True(t, toggled.IsActive)

	var logs int64
	e.db.Model(&models.AdminLog{}).Where("resource_id = ?", seller.ID).Count(&logs)
	assert.EqualValues(t, 3, logs)
}
