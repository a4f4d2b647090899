package services

import (
	"context"
	"fmt"

	"go.uber.org/ratelimit"
	"go.uber.org/zap"

	"reverse-market/internal/models"
	"reverse-market/internal/repository"
)

// FanoutResult summarizes a store fan-out run
type FanoutResult struct {
	Matched   int
	Succeeded int
	Failed    int
}

// RequestNotifier tells buyers about moderation decisions and announces
// approved requests to matching stores.
type RequestNotifier struct {
	repo          *repository.Repository
	notifications *NotificationService
	limiter       ratelimit.Limiter
	log           *zap.Logger
}

// NewRequestNotifier creates a notifier. limiter paces the store fan-out.
func NewRequestNotifier(repo *repository.Repository, notifications *NotificationService, limiter ratelimit.Limiter, log *zap.Logger) *RequestNotifier {
	if limiter == nil {
		limiter = ratelimit.NewUnlimited()
	}
	return &RequestNotifier{
		repo:          repo,
		notifications: notifications,
		limiter:       limiter,
		log:           log.Named("request_notifier"),
	}
}

// RequestLink is the site path of a request's public page
func RequestLink(id uint) string {
	return fmt.Sprintf("/requests/%d", id)
}

func buyerFirstName(req *models.Request) string {
	if req.User == nil {
		return ""
	}
	return req.User.FirstName
}

// NotifyApproved tells the buyer their request was approved, on every channel
func (n *RequestNotifier) NotifyApproved(ctx context.Context, req *models.Request, adminUserID *uint) error {
	msg := fmt.Sprintf("مرحباً %s!\n\n"+
		"يسعدنا إبلاغك بأنه تم اعتماد طلبك: \"%s\"\n\n"+
		"سيتم الآن عرض طلبك للمتاجر المتخصصة وستتلقى عروضاً قريباً.\n\n"+
		"شكراً لاستخدامك السوق العكسي! 🛒", buyerFirstName(req), req.Title)

	_, err := n.notifications.Notify(ctx, NotificationInput{
		UserID:      req.UserID,
		Title:       "تم اعتماد طلبك! 🎉",
		Message:     msg,
		Type:        models.NotificationRequestApproved,
		RequestID:   &req.ID,
		Link:        RequestLink(req.ID),
		IsFromAdmin: true,
		AdminID:     adminUserID,
	}, AllChannels)
	return err
}

// NotifyRejected tells the buyer their request was rejected, quoting the
// admin notes as the reason when present
func (n *RequestNotifier) NotifyRejected(ctx context.Context, req *models.Request, adminUserID *uint) error {
	msg := fmt.Sprintf("مرحباً %s!\n\n"+
		"نأسف لإبلاغك بأن طلبك: \"%s\" لم تتم الموافقة عليه.\n\n", buyerFirstName(req), req.Title)
	if req.AdminNotes != nil && *req.AdminNotes != "" {
		msg += fmt.Sprintf("السبب: %s\n\n", *req.AdminNotes)
	}
	msg += "يمكنك إضافة طلب جديد في أي وقت.\n\n" +
		"شكراً لتفهمك - السوق العكسي 🛒"

	_, err := n.notifications.Notify(ctx, NotificationInput{
		UserID:      req.UserID,
		Title:       "تحديث حول طلبك",
		Message:     msg,
		Type:        models.NotificationRequestRejected,
		RequestID:   &req.ID,
		IsFromAdmin: true,
		AdminID:     adminUserID,
	}, AllChannels)
	return err
}

// NotifyStores announces an approved request to every matching store, one at
// a time and paced by the limiter. A failure for one store does not stop the
// others.
func (n *RequestNotifier) NotifyStores(ctx context.Context, requestID uint) (FanoutResult, error) {
	var result FanoutResult

	req, err := n.repo.GetRequestByID(ctx, requestID)
	if err != nil {
		return result, fmt.Errorf("failed to load request %d: %w", requestID, err)
	}

	stores, err := n.repo.FindStoresForRequest(ctx, req)
	if err != nil {
		return result, fmt.Errorf("failed to find stores for request %d: %w", requestID, err)
	}

	log := n.log.With(zap.Uint("request_id", req.ID))
	if len(stores) == 0 {
		log.Warn("no matching stores for approved request",
			zap.Uint("category_id", req.CategoryID),
			zap.Uintp("sub_category1_id", req.SubCategory1ID),
			zap.Uintp("sub_category2_id", req.SubCategory2ID))
		return result, nil
	}
	result.Matched = len(stores)
	log.Info("notifying matching stores", zap.Int("stores", len(stores)))

	categoryName := "غير محدد"
	if req.Category != nil {
		categoryName = req.Category.Name
	}
	msg := fmt.Sprintf("طلب جديد في فئتك المتخصصة:\n\n"+
		"📋 العنوان: %s\n"+
		"📂 الفئة: %s\n"+
		"📍 المدينة: %s\n\n"+
		"اضغط للاطلاع على التفاصيل وتقديم عرضك!", req.Title, categoryName, req.City)

	for _, store := range stores {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		n.limiter.Take()

		_, err := n.notifications.Notify(ctx, NotificationInput{
			UserID:      store.ID,
			Title:       "طلب جديد متاح! 🛒",
			Message:     msg,
			Type:        models.NotificationNewRequestForStore,
			RequestID:   &req.ID,
			Link:        RequestLink(req.ID),
			IsFromAdmin: true,
		}, AllChannels)
		if err != nil {
			result.Failed++
			log.Error("failed to notify store",
				zap.Uint("store_id", store.ID),
				zap.String("store", store.DisplayName()),
				zap.Error(err))
			continue
		}
		result.Succeeded++
	}

	log.Info("store notifications finished",
		zap.Int("succeeded", result.Succeeded),
		zap.Int("failed", result.Failed))
	if result.Succeeded == 0 && result.Failed > 0 {
		log.Error("every store notification failed, check messaging configuration")
	}
	return result, nil
}
