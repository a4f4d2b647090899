package services

import (
	"context"
	"errors"
	"sync"
	"testing"

	"go.uber.org/ratelimit"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"reverse-market/internal/models"
	"reverse-market/internal/repository"
	"reverse-market/internal/testutil"
)

type sentMessage struct {
	To   string
	Body string
}

// recordingSender captures outbound messages and fails for listed recipients
type recordingSender struct {
	mu     sync.Mutex
	sent   []sentMessage
	failTo map[string]bool
}

func (r *recordingSender) record(to, body string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failTo[to] {
		return errors.New("gateway unavailable")
	}
	r.sent = append(r.sent, sentMessage{To: to, Body: body})
	return nil
}

func (r *recordingSender) messages() []sentMessage {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]sentMessage(nil), r.sent...)
}

type fakeWhatsApp struct{ recordingSender }

func (f *fakeWhatsApp) Send(_ context.Context, recipient, text string) error {
	return f.record(recipient, text)
}

type fakeMailer struct{ recordingSender }

func (f *fakeMailer) Send(_ context.Context, to, subject, body string) error {
	return f.record(to, subject+"\n"+body)
}

type fakeQueue struct {
	ids []uint
}

func (q *fakeQueue) Enqueue(id uint) bool {
	q.ids = append(q.ids, id)
	return true
}

type env struct {
	db            *gorm.DB
	repo          *repository.Repository
	whatsapp      *fakeWhatsApp
	mailer        *fakeMailer
	queue         *fakeQueue
	admin         *AdminService
	categories    *CategoryService
	notifications *NotificationService
	notifier      *RequestNotifier
	requests      *RequestService
	profiles      *ProfileService
	storeLinks    *StoreLinkService
	auth          *AuthService
	actor         Actor
}

func newEnv(t *testing.T) *env {
	t.Helper()
	db := testutil.NewDB(t)
	repo := repository.NewRepository(db)
	log := zap.NewNop()

	e := &env{
		db:       db,
		repo:     repo,
		whatsapp: &fakeWhatsApp{},
		mailer:   &fakeMailer{},
		queue:    &fakeQueue{},
	}
	e.admin = NewAdminService(repo, log)
	e.categories = NewCategoryService(repo)
	e.notifications = NewNotificationService(repo, e.mailer, e.whatsapp, "https://market.example/", log)
	e.notifier = NewRequestNotifier(repo, e.notifications, ratelimit.NewUnlimited(), log)
	e.requests = NewRequestService(repo, e.categories, e.notifier, e.queue, e.admin, log)
	e.profiles = NewProfileService(repo, e.categories, t.TempDir(), log)
	e.storeLinks = NewStoreLinkService(repo, e.notifications, e.admin, log)
	e.auth = NewAuthService(repo, log)

	adminUser := testutil.Buyer(t, db, "0599999999")
	admin := &models.AdminUser{UserID: adminUser.ID, Role: models.AdminRoleSuper}
	if err := db.Create(admin).Error; err != nil {
		t.Fatalf("failed to create admin: %v", err)
	}
	e.actor = Actor{UserID: adminUser.ID, AdminID: admin.ID}
	return e
}

func (e *env) request(t *testing.T, buyer *models.User, tree testutil.Tree, status models.RequestStatus) *models.Request {
	t.Helper()
	req := &models.Request{
		UserID:         buyer.ID,
		Title:          "iPhone 15",
		Description:    "Looking for a new phone",
		CategoryID:     tree.Category.ID,
		SubCategory1ID: &tree.Sub1.ID,
		City:           "Riyadh",
		District:       "Olaya",
		Status:         status,
	}
	if err := e.db.Create(req).Error; err != nil {
		t.Fatalf("failed to create request: %v", err)
	}
	return req
}

func strPtr(s string) *string { return &s }
