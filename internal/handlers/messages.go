package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"reverse-market/internal/auth"
	"reverse-market/internal/models"
	"reverse-market/internal/repository"
	"reverse-market/internal/services"
)

// User-facing messages
const (
	msgInvalidInput      = "البيانات المدخلة غير صحيحة"
	msgInvalidID         = "معرف غير صحيح"
	msgUnauthorized      = "يجب تسجيل الدخول أولاً"
	msgNotAdmin          = "غير مصرح لك بالدخول إلى لوحة الإدارة"
	msgSuperAdminOnly    = "هذا الإجراء متاح للمدير العام فقط"
	msgServerError       = "حدث خطأ غير متوقع، يرجى المحاولة لاحقاً"
	msgInvalidStatus     = "حالة الطلب غير صحيحة"
	msgRequestNotFound   = "الطلب غير موجود"
	msgUserNotFound      = "المستخدم غير موجود"
	msgCategoryNotFound  = "الفئة غير موجودة"
	msgInvalidCategories = "الفئات المختارة غير مترابطة"
	msgNotToggleable     = "يمكن إيقاف أو تفعيل الطلبات المعتمدة أو المؤجلة فقط"
	msgForbidden         = "غير مصرح لك بعرض هذا الطلب"
	msgBuyersOnly        = "عذراً، هذه الصفحة متاحة للمشترين فقط."
	msgSellersOnly       = "عذراً، هذه الصفحة متاحة للبائعين فقط."
	msgUserTypeChange    = "لا يمكن تغيير نوع الحساب. يرجى التواصل مع الإدارة إذا كنت بحاجة لذلك."
	msgBuyerStoreFields  = "المشترون لا يمكنهم إضافة معلومات متجر. نوع حسابك: مشتري."
	msgStoreNameRequired = "اسم المتجر مطلوب للبائعين"
	msgInvalidLinkSlot   = "رقم الرابط غير صحيح"
	msgLinkNotPending    = "لا يوجد رابط بانتظار المراجعة"
	msgInvalidImageType  = "نوع الصورة غير مدعوم. الأنواع المسموحة: jpg, jpeg, png, webp"
	msgImageTooLarge     = "حجم الصورة يجب ألا يتجاوز 5 ميجابايت"
	msgImageRequired     = "يرجى اختيار صورة"
	msgBadCredentials    = "رقم الجوال أو كلمة المرور غير صحيحة"
	msgAccountInactive   = "تم إيقاف حسابك. يرجى التواصل مع الإدارة."
	msgPhoneTaken        = "رقم الجوال مسجل مسبقاً"
	msgAlreadyAdmin      = "المستخدم مدير بالفعل"
	msgNotFound          = "العنصر غير موجود"

	msgRequestApproved  = "تم اعتماد الطلب بنجاح"
	msgRequestRejected  = "تم رفض الطلب بنجاح"
	msgRequestPostponed = "تم تأجيل الطلب بنجاح"
	msgRequestUpdated   = "تم تحديث الطلب بنجاح"
	msgRequestDeleted   = "تم حذف الطلب بنجاح"
	msgRequestStopped   = "تم إيقاف الطلب"
	msgRequestActivated = "تم تفعيل الطلب"
	msgRequestCreated   = "تم إرسال طلبك بنجاح وسيتم مراجعته من قبل الإدارة"

	msgProfileUpdated      = "تم تحديث ملفك الشخصي بنجاح"
	msgProfileLinksPending = "تم حفظ تعديلاتك بنجاح. الروابط الجديدة بانتظار موافقة الإدارة."
	msgStoreUpdated        = "تم تحديث معلومات المتجر بنجاح"
	msgStoreLinksPending   = "تم تحديث معلومات المتجر بنجاح. الروابط الجديدة بانتظار موافقة الإدارة."
	msgImageUploaded       = "تم تحديث الصورة الشخصية بنجاح"

	msgLinkApproved     = "تم اعتماد الرابط"
	msgLinkRejected     = "تم رفض الرابط"
	msgAllLinksApproved = "تم اعتماد جميع الروابط"
	msgStoreApproved    = "تم اعتماد المتجر"
	msgUserActivated    = "تم تفعيل الحساب"
	msgUserDeactivated  = "تم إيقاف الحساب"
	msgCategoryCreated  = "تمت إضافة الفئة بنجاح"
	msgAdminPromoted    = "تمت ترقية المستخدم إلى مدير"
)

var statusMessages = map[models.RequestStatus]string{
	models.RequestStatusApproved:  msgRequestApproved,
	models.RequestStatusRejected:  msgRequestRejected,
	models.RequestStatusPostponed: msgRequestPostponed,
}

func statusMessage(s models.RequestStatus) string {
	if msg, ok := statusMessages[s]; ok {
		return msg
	}
	return msgRequestUpdated
}

var errorStatuses = []struct {
	err     error
	status  int
	message string
}{
	{services.ErrRequestNotFound, http.StatusNotFound, msgRequestNotFound},
	{services.ErrUserNotFound, http.StatusNotFound, msgUserNotFound},
	{services.ErrCategoryNotFound, http.StatusNotFound, msgCategoryNotFound},
	{repository.ErrNotFound, http.StatusNotFound, msgNotFound},
	{services.ErrInvalidStatus, http.StatusBadRequest, msgInvalidStatus},
	{services.ErrInvalidCategoryPath, http.StatusBadRequest, msgInvalidCategories},
	{services.ErrStatusNotToggleable, http.StatusConflict, msgNotToggleable},
	{services.ErrForbidden, http.StatusForbidden, msgForbidden},
	{services.ErrBuyersOnly, http.StatusForbidden, msgBuyersOnly},
	{services.ErrSellersOnly, http.StatusForbidden, msgSellersOnly},
	{services.ErrUserTypeChange, http.StatusBadRequest, msgUserTypeChange},
	{services.ErrBuyerStoreFields, http.StatusBadRequest, msgBuyerStoreFields},
	{services.ErrStoreNameRequired, http.StatusBadRequest, msgStoreNameRequired},
	{services.ErrInvalidLinkSlot, http.StatusBadRequest, msgInvalidLinkSlot},
	{services.ErrLinkNotPending, http.StatusConflict, msgLinkNotPending},
	{services.ErrNoPendingLinks, http.StatusConflict, msgLinkNotPending},
	{services.ErrInvalidImageType, http.StatusBadRequest, msgInvalidImageType},
	{services.ErrImageTooLarge, http.StatusBadRequest, msgImageTooLarge},
	{services.ErrInvalidCredentials, http.StatusUnauthorized, msgBadCredentials},
	{services.ErrAccountInactive, http.StatusForbidden, msgAccountInactive},
	{services.ErrPhoneTaken, http.StatusConflict, msgPhoneTaken},
	{services.ErrAlreadyAdmin, http.StatusConflict, msgAlreadyAdmin},
}

// respondError maps a service error to a status and message. Unknown errors
// are logged and reported as a server error.
func respondError(c *gin.Context, log *zap.Logger, err error) {
	var verr *services.ValidationError
	if errors.As(err, &verr) {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   msgInvalidInput,
			"field":   verr.Field,
			"details": verr.Message,
		})
		return
	}

	for _, e := range errorStatuses {
		if errors.Is(err, e.err) {
			c.JSON(e.status, gin.H{"success": false, "error": e.message})
			return
		}
	}

	log.Error("request failed",
		zap.String("method", c.Request.Method),
		zap.String("path", c.FullPath()),
		zap.Error(err),
	)
	c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": msgServerError})
}

func respondBadRequest(c *gin.Context, err error) {
	body := gin.H{"success": false, "error": msgInvalidInput}
	if err != nil {
		body["details"] = err.Error()
	}
	c.JSON(http.StatusBadRequest, body)
}

func respondOK(c *gin.Context, message string, data interface{}) {
	body := gin.H{"success": true, "data": data}
	if message != "" {
		body["message"] = message
	}
	c.JSON(http.StatusOK, body)
}

// idParam parses a positive numeric path parameter
func idParam(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": msgInvalidID})
		return 0, false
	}
	return uint(id), true
}

func pageQuery(c *gin.Context) int {
	page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil || page < 1 {
		return 1
	}
	return page
}

// statusQuery reads an optional ?status= filter. ok is false when the value
// is present but not a known status.
func statusQuery(c *gin.Context) (status *models.RequestStatus, ok bool) {
	raw := c.Query("status")
	if raw == "" {
		return nil, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return nil, false
	}
	s := models.RequestStatus(n)
	if !s.IsValid() {
		return nil, false
	}
	return &s, true
}

func requireUser(c *gin.Context) (uint, bool) {
	userID, ok := auth.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "error": msgUnauthorized})
		return 0, false
	}
	return userID, true
}
