package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func strPtr(s string) *string { return &s }

func TestDisplayName(t *testing.T) {
	buyer := User{FirstName: "Ali", LastName: "Jamal", UserType: UserTypeBuyer, StoreName: strPtr("ignored")}
	assert.Equal(t, "Ali Jamal", buyer.DisplayName())

	seller := User{FirstName: "Sara", LastName: "K", UserType: UserTypeSeller}
	assert.Equal(t, "Sara K", seller.DisplayName())

	seller.StoreName = strPtr("Sara Tools")
	assert.Equal(t, "Sara Tools", seller.DisplayName())
}

func TestLinkSubmitMarksSlotPending(t *testing.T) {
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	u := User{WebsiteURL1: strPtr("https://old.example")}

	changed := u.Link(1).Submit(strPtr("https://new.example"), now)
	u.SyncPendingFlag()

	assert.True(t, changed)
	assert.Equal(t, "https://old.example", *u.WebsiteURL1, "live link stays until approved")
	assert.Equal(t, "https://new.example", *u.PendingWebsiteURL1)
	assert.Equal(t, PendingURLStatus, *u.PendingURL1Status)
	assert.Equal(t, now, *u.PendingURL1SubmittedAt)
	assert.True(t, u.HasPendingURLChanges)
	assert.Equal(t, 1, u.PendingURLsCount())
}

func TestLinkSubmitSameAsLiveIsNoop(t *testing.T) {
	u := User{WebsiteURL2: strPtr("https://same.example")}

	assert.False(t, u.Link(2).Submit(strPtr("https://same.example"), time.Now()))
	assert.False(t, u.Link(3).Submit(strPtr(""), time.Now()), "empty equals unset")
	assert.False(t, u.HasAnyPendingURL())
}

func TestLinkSubmitLiveValueWithdrawsPendingEdit(t *testing.T) {
	u := User{WebsiteURL1: strPtr("https://live.example")}
	u.Link(1).Submit(strPtr("https://draft.example"), time.Now())

	changed := u.Link(1).Submit(strPtr("https://live.example"), time.Now())
	u.SyncPendingFlag()

	assert.True(t, changed)
	assert.Nil(t, u.PendingWebsiteURL1)
	assert.Nil(t, u.PendingURL1Status)
	assert.False(t, u.HasPendingURLChanges)
}

func TestLinkApprove(t *testing.T) {
	u := User{}
	u.Link(3).Submit(strPtr("https://shop.example"), time.Now())

	u.Link(3).Approve()

	assert.Equal(t, "https://shop.example", *u.WebsiteURL3)
	assert.Nil(t, u.PendingWebsiteURL3)
	assert.Nil(t, u.PendingURL3SubmittedAt)
	assert.False(t, u.Link(3).IsPending())
}

func TestLinkApproveEmptyRemovesLiveLink(t *testing.T) {
	u := User{WebsiteURL2: strPtr("https://gone.example")}
	u.Link(2).Submit(nil, time.Now())
	assert.True(t, u.Link(2).IsPending())

	u.Link(2).Approve()
	assert.Nil(t, u.WebsiteURL2)
}

func TestClearStore(t *testing.T) {
	u := User{
		StoreName:   strPtr("x"),
		WebsiteURL1: strPtr("https://a.example"),
	}
	u.Link(2).Submit(strPtr("https://b.example"), time.Now())
	u.SyncPendingFlag()

	u.ClearStore()

	assert.Nil(t, u.StoreName)
	assert.Nil(t, u.WebsiteURL1)
	assert.Nil(t, u.PendingWebsiteURL2)
	assert.False(t, u.HasPendingURLChanges)
}

func TestRequestStatusIsValid(t *testing.T) {
	assert.False(t, RequestStatus(0).IsValid())
	assert.True(t, RequestStatusPending.IsValid())
	assert.True(t, RequestStatusPostponed.IsValid())
	assert.False(t, RequestStatus(5).IsValid())
}

func TestCategoryPath(t *testing.T) {
	c := &Category{Name: "Electronics"}
	s1 := &SubCategory1{Name: "Phones"}
	s2 := &SubCategory2{Name: "Android"}

	assert.Equal(t, "Electronics > Phones > Android", CategoryPath(c, s1, s2))
	assert.Equal(t, "Electronics", CategoryPath(c, nil, nil))
	assert.Equal(t, "غير محدد", CategoryPath(nil, nil, nil))
}
