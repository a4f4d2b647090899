package services

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"reverse-market/internal/models"
	"reverse-market/internal/testutil"
)

func sellerEdit(u *models.User) ProfileEdit {
	return ProfileEdit{
		UserType:    u.UserType,
		FirstName:   "Sara",
		LastName:    "K",
		City:        "Riyadh",
		District:    "Olaya",
		Gender:      "female",
		DateOfBirth: time.Date(1990, 1, 1, 0, 0, 0, 0, time.UTC),
		StoreName:   strPtr("Sara Tools"),
	}
}

func TestEditRejectsUserTypeChange(t *testing.T) {
	e := newEnv(t)
	buyer := testutil.Buyer(t, e.db, "0504444440")

	in := sellerEdit(buyer)
	in.UserType = models.UserTypeSeller
	in.StoreName = nil

	_, err := e.profiles.Edit(context.Background(), buyer.ID, in)
	assert.ErrorIs(t, err, ErrUserTypeChange)
}

func TestEditBuyerRejectsStoreFields(t *testing.T) {
	e := newEnv(t)
	buyer := testutil.Buyer(t, e.db, "0504444441")

	in := sellerEdit(buyer)
	_, err := e.profiles.Edit(context.Background(), buyer.ID, in)
	assert.ErrorIs(t, err, ErrBuyerStoreFields)

	in.StoreName = nil
	in.WebsiteURLs[2] = strPtr("https://shop.example")
	_, err = e.profiles.Edit(context.Background(), buyer.ID, in)
	assert.ErrorIs(t, err, ErrBuyerStoreFields)
}

func TestEditBuyerClearsLeftoverStoreData(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	buyer := testutil.Buyer(t, e.db, "0504444442")
	tree := testutil.CategoryTree(t, e.db, "Phones")
	require.NoError(t, e.db.Model(buyer).Updates(map[string]interface{}{
		"store_name":        "stale",
		"website_url1":      "https://stale.example",
		"is_store_approved": false,
	}).Error)
	require.NoError(t, e.db.Create(&models.StoreCategory{UserID: buyer.ID, CategoryID: tree.Category.ID}).Error)

	in := sellerEdit(buyer)
	in.StoreName = nil
	in.FirstName = "Noura"
	in.Email = strPtr(" noura@example.com ")

	res, err := e.profiles.Edit(ctx, buyer.ID, in)
	require.NoError(t, err)
	assert.False(t, res.LinksPending)

	var stored models.User
	require.NoError(t, e.db.First(&stored, buyer.ID).Error)
	assert.Equal(t, "Noura", stored.FirstName)
	assert.Equal(t, "noura@example.com", *stored.Email)
	assert.Nil(t, stored.StoreName)
	assert.Nil(t, stored.WebsiteURL1)
	assert.True(t, stored.IsStoreApproved)
	assert.NotNil(t, stored.UpdatedAt)
	assert.Equal(t, buyer.PhoneNumber, stored.PhoneNumber)

	var cats int64
	e.db.Model(&models.StoreCategory{}).Where("user_id = ?", buyer.ID).Count(&cats)
	assert.Zero(t, cats)
}

func TestEditSellerHoldsChangedLinksForReview(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	seller := testutil.Seller(t, e.db, "0504444443")
	require.NoError(t, e.db.Model(seller).Update("website_url1", "https://live.example").Error)

	in := sellerEdit(seller)
	in.WebsiteURLs = [3]*string{strPtr("https://live.example"), strPtr("https://new.example"), nil}

	res, err := e.profiles.Edit(ctx, seller.ID, in)
	require.NoError(t, err)
	assert.True(t, res.LinksPending)

	var stored models.User
	require.NoError(t, e.db.First(&stored, seller.ID).Error)
	assert.Equal(t, "Sara Tools", *stored.StoreName)
	assert.Equal(t, "https://live.example", *stored.WebsiteURL1)
	assert.False(t, stored.Link(1).IsPending())
	assert.Nil(t, stored.WebsiteURL2, "new link is not live until approved")
	assert.Equal(t, "https://new.example", *stored.PendingWebsiteURL2)
	assert.True(t, stored.Link(2).IsPending())
	assert.NotNil(t, stored.PendingURL2SubmittedAt)
	assert.True(t, stored.HasPendingURLChanges)

	// resubmitting unchanged links is a plain success
	res, err = e.profiles.Edit(ctx, seller.ID, in)
	require.NoError(t, err)
	assert.False(t, res.LinksPending)
}

func TestEditSellerRequiresStoreName(t *testing.T) {
	e := newEnv(t)
	seller := testutil.Seller(t, e.db, "0504444444")

	in := sellerEdit(seller)
	in.StoreName = strPtr("  ")
	_, err := e.profiles.Edit(context.Background(), seller.ID, in)
	assert.ErrorIs(t, err, ErrStoreNameRequired)
}

func TestUpdateStoreReplacesCategories(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	seller := testutil.Seller(t, e.db, "0504444445")
	old := testutil.CategoryTree(t, e.db, "Old")
	tree := testutil.CategoryTree(t, e.db, "Phones")
	require.NoError(t, e.db.Create(&models.StoreCategory{UserID: seller.ID, CategoryID: old.Category.ID}).Error)

	res, err := e.profiles.UpdateStore(ctx, seller.ID, StoreUpdate{
		StoreName:       "Phone House",
		WebsiteURLs:     [3]*string{strPtr("https://phonehouse.example"), nil, nil},
		SubCategory2IDs: []uint{tree.Sub2.ID, 424242},
	})
	require.NoError(t, err)
	assert.True(t, res.LinksPending)

	view, err := e.profiles.ManageStore(ctx, seller.ID)
	require.NoError(t, err)
	require.Len(t, view.StoreCategories, 1)
	sc := view.StoreCategories[0]
	assert.Equal(t, tree.Category.ID, sc.CategoryID)
	assert.Equal(t, tree.Sub1.ID, *sc.SubCategory1ID)
	assert.Equal(t, tree.Sub2.ID, *sc.SubCategory2ID)
	assert.Equal(t, "Phones > Phones sub > Phones leaf", sc.FullPath)
	assert.True(t, view.Links[0].IsPending)
}

func TestUpdateStoreKeepsCategoriesWhenNoneSent(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	seller := testutil.Seller(t, e.db, "0504444446")
	tree := testutil.CategoryTree(t, e.db, "Phones")
	require.NoError(t, e.db.Create(&models.StoreCategory{UserID: seller.ID, CategoryID: tree.Category.ID}).Error)

	_, err := e.profiles.UpdateStore(ctx, seller.ID, StoreUpdate{StoreName: "Renamed"})
	require.NoError(t, err)

	var cats int64
	e.db.Model(&models.StoreCategory{}).Where("user_id = ?", seller.ID).Count(&cats)
	assert.EqualValues(t, 1, cats)
}

func TestUpdateStoreValidation(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	seller := testutil.Seller(t, e.db, "0504444447")
	buyer := testutil.Buyer(t, e.db, "0504444448")

	_, err := e.profiles.UpdateStore(ctx, buyer.ID, StoreUpdate{StoreName: "x"})
	assert.ErrorIs(t, err, ErrSellersOnly)

	_, err = e.profiles.UpdateStore(ctx, seller.ID, StoreUpdate{StoreName: ""})
	assert.ErrorIs(t, err, ErrStoreNameRequired)

	var verr *ValidationError
	_, err = e.profiles.UpdateStore(ctx, seller.ID, StoreUpdate{StoreName: strings.Repeat("a", 256)})
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "store_name", verr.Field)

	_, err = e.profiles.UpdateStore(ctx, seller.ID, StoreUpdate{StoreName: "ok", WebsiteURLs: [3]*string{nil, strPtr("not a url"), nil}})
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "website_url2", verr.Field)

	long := "https://example.com/" + strings.Repeat("a", 490)
	_, err = e.profiles.UpdateStore(ctx, seller.ID, StoreUpdate{StoreName: "ok", WebsiteURLs: [3]*string{strPtr(long), nil, nil}})
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "website_url1", verr.Field)
}

func TestProfileIndexAndMyRequests(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	buyer := testutil.Buyer(t, e.db, "0504444449")
	seller := testutil.Seller(t, e.db, "0504444450")
	tree := testutil.CategoryTree(t, e.db, "Phones")
	for i := 0; i < 11; i++ {
		e.request(t, buyer, tree, models.RequestStatusPending)
	}
	e.request(t, buyer, tree, models.RequestStatusApproved)
	e.request(t, buyer, tree, models.RequestStatusRejected)

	view, err := e.profiles.Index(ctx, buyer.ID)
	require.NoError(t, err)
	require.NotNil(t, view.Stats)
	assert.Equal(t, RequestStats{Total: 13, Approved: 1, Pending: 11, Rejected: 1}, *view.Stats)
	assert.Len(t, view.Requests, 13)

	sellerView, err := e.profiles.Index(ctx, seller.ID)
	require.NoError(t, err)
	assert.Nil(t, sellerView.Stats)
	assert.Empty(t, sellerView.Requests)

	page, err := e.profiles.MyRequests(ctx, buyer.ID, 2)
	require.NoError(t, err)
	assert.Equal(t, 2, page.TotalPages)
	assert.Len(t, page.Requests, 3)

	_, err = e.profiles.MyRequests(ctx, seller.ID, 1)
	assert.ErrorIs(t, err, ErrBuyersOnly)
}

func TestEditFormHidesStoreFieldsFromBuyers(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	buyer := testutil.Buyer(t, e.db, "0504444451")
	seller := testutil.Seller(t, e.db, "0504444452")
	testutil.CategoryTree(t, e.db, "Phones")

	form, err := e.profiles.EditForm(ctx, buyer.ID)
	require.NoError(t, err)
	assert.Equal(t, models.UserTypeBuyer, form.UserType)
	assert.Nil(t, form.Links)
	assert.Len(t, form.Categories, 1)

	form, err = e.profiles.EditForm(ctx, seller.ID)
	require.NoError(t, err)
	assert.Len(t, form.Links, 3)
	assert.Equal(t, "Store 0504444452", *form.StoreName)
}

func TestUploadProfileImage(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	user := testutil.Buyer(t, e.db, "0504444453")
	content := []byte("fake image bytes")

	_, err := e.profiles.UploadProfileImage(ctx, user.ID, "avatar.gif", int64(len(content)), bytes.NewReader(content))
	assert.ErrorIs(t, err, ErrInvalidImageType)

	_, err = e.profiles.UploadProfileImage(ctx, user.ID, "avatar.png", maxProfileImageSize+1, bytes.NewReader(content))
	assert.ErrorIs(t, err, ErrImageTooLarge)

	first, err := e.profiles.UploadProfileImage(ctx, user.ID, "avatar.PNG", int64(len(content)), bytes.NewReader(content))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(first, "/uploads/profiles/"))
	assert.True(t, strings.HasSuffix(first, ".png"))

	firstFile := filepath.Join(e.profiles.uploadDir, "profiles", filepath.Base(first))
	_, err = os.Stat(firstFile)
	require.NoError(t, err)

	second, err := e.profiles.UploadProfileImage(ctx, user.ID, "me.webp", int64(len(content)), bytes.NewReader(content))
	require.NoError(t, err)
	assert.NotEqual(t, first, second)

	_, err = os.Stat(firstFile)
	assert.True(t, os.IsNotExist(err), "previous image is removed")

	var stored models.User
	require.NoError(t, e.db.First(&stored, user.ID).Error)
	assert.Equal(t, second, *stored.ProfileImage)
}
