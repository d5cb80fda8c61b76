package services

import (
	"errors"
	"testing"

	"github.com/axevisa/visa-backend/internal/database"
	"github.com/axevisa/visa-backend/internal/models"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeChecklistStore struct {
	app       *models.VisaApplication
	item      *models.ChecklistItem
	statusSet string
	fileSet   string
	reviewed  string
	remarks   models.NullString
}

func (f *fakeChecklistStore) GetByID(id uuid.UUID) (*models.VisaApplication, error) {
	if f.app == nil || f.app.ID != id {
		return nil, database.ErrApplicationNotFound
	}
	return f.app, nil
}

func (f *fakeChecklistStore) GetByIDForUser(id, userID uuid.UUID) (*models.VisaApplication, error) {
	if f.app == nil || f.app.ID != id || f.app.UserID != userID {
		return nil, database.ErrApplicationNotFound
	}
	return f.app, nil
}

func (f *fakeChecklistStore) AddChecklistItem(item *models.ChecklistItem) error {
	item.ID = uuid.New()
	f.item = item
	return nil
}

func (f *fakeChecklistStore) GetChecklistItem(itemID, applicationID uuid.UUID) (*models.ChecklistItem, error) {
	if f.item == nil || f.item.ID != itemID {
		return nil, database.ErrChecklistItemNotFound
	}
	return f.item, nil
}

func (f *fakeChecklistStore) SetChecklistFile(itemID uuid.UUID, filePath string) error {
	f.fileSet = filePath
	return nil
}

func (f *fakeChecklistStore) ReviewChecklistItem(itemID uuid.UUID, accepted string, remarks models.NullString) error {
	f.reviewed = accepted
	f.remarks = remarks
	return nil
}

func (f *fakeChecklistStore) UpdateStatus(id uuid.UUID, status string) error {
	f.statusSet = status
	return nil
}

type fakeNotificationStore struct {
	created []models.Notification
	err     error
}

func (f *fakeNotificationStore) Create(n *models.Notification) error {
	if f.err != nil {
		return f.err
	}
	f.created = append(f.created, *n)
	return nil
}

func testChecklistService(app *models.VisaApplication) (*ChecklistService, *fakeChecklistStore, *fakeNotificationStore) {
	store := &fakeChecklistStore{app: app}
	notices := &fakeNotificationStore{}
	logger := logrus.New()
	svc := NewChecklistService(store, notices, logger)
	return svc, store, notices
}

func testApplication() *models.VisaApplication {
	return &models.VisaApplication{
		ID:       uuid.New(),
		UserID:   uuid.New(),
		FullName: models.NewNullString("Priya Sharma"),
	}
}

func TestAddItem_MovesToDocumentsRequiredAndNotifiesUser(t *testing.T) {
	app := testApplication()
	svc, store, notices := testChecklistService(app)

	item, err := svc.AddItem(app.ID, "Bank Statement", "Last 6 months")
	require.NoError(t, err)

	assert.Equal(t, "Bank Statement", item.Note)
	assert.Equal(t, models.StatusDocumentsRequired, store.statusSet)

	require.Len(t, notices.created, 1)
	n := notices.created[0]
	assert.Equal(t, models.NotifyUser, n.To)
	assert.Equal(t, "Please upload document: Bank Statement", n.Title)
	assert.Equal(t, "Note: Last 6 months", n.Message.String)
}

func TestAddItem_NoSubnoteLeavesMessageEmpty(t *testing.T) {
	app := testApplication()
	svc, _, notices := testChecklistService(app)

	_, err := svc.AddItem(app.ID, "Passport Copy", "")
	require.NoError(t, err)

	require.Len(t, notices.created, 1)
	assert.False(t, notices.created[0].Message.Valid)
}

func TestAddItem_UnknownApplication(t *testing.T) {
	svc, _, _ := testChecklistService(testApplication())

	_, err := svc.AddItem(uuid.New(), "Bank Statement", "")
	assert.ErrorIs(t, err, database.ErrApplicationNotFound)
}

func TestUpload_ResetsReviewAndNotifiesAdmin(t *testing.T) {
	app := testApplication()
	svc, store, notices := testChecklistService(app)

	added, err := svc.AddItem(app.ID, "Bank Statement", "")
	require.NoError(t, err)
	notices.created = nil

	// Simulate a previously rejected item
	store.item.Accepted = models.ChecklistRejected
	store.item.Remarks = models.NewNullString("Blurry scan")

	item, err := svc.Upload(app.ID, app.UserID, added.ID, "/uploads/checklist/abc.pdf")
	require.NoError(t, err)

	assert.Equal(t, "/uploads/checklist/abc.pdf", store.fileSet)
	assert.Equal(t, models.ChecklistPending, item.Accepted)
	assert.False(t, item.Remarks.Valid)

	require.Len(t, notices.created, 1)
	n := notices.created[0]
	assert.Equal(t, models.NotifyAdmin, n.To)
	assert.Equal(t, "Priya Sharma uploaded Bank Statement document.", n.Title)
}

func TestUpload_WrongOwner(t *testing.T) {
	app := testApplication()
	svc, _, _ := testChecklistService(app)

	added, err := svc.AddItem(app.ID, "Bank Statement", "")
	require.NoError(t, err)

	_, err = svc.Upload(app.ID, uuid.New(), added.ID, "/uploads/checklist/abc.pdf")
	assert.ErrorIs(t, err, database.ErrApplicationNotFound)
}

func TestUpload_AnonymousApplicantFallback(t *testing.T) {
	app := testApplication()
	app.FullName = models.NullString{}
	svc, _, notices := testChecklistService(app)

	added, err := svc.AddItem(app.ID, "Photo", "")
	require.NoError(t, err)
	notices.created = nil

	_, err = svc.Upload(app.ID, app.UserID, added.ID, "/uploads/checklist/p.jpg")
	require.NoError(t, err)

	require.Len(t, notices.created, 1)
	assert.Equal(t, "Applicant uploaded Photo document.", notices.created[0].Title)
}

func TestReview_AcceptNotifiesUser(t *testing.T) {
	app := testApplication()
	svc, store, notices := testChecklistService(app)

	added, err := svc.AddItem(app.ID, "Bank Statement", "")
	require.NoError(t, err)
	notices.created = nil

	err = svc.Review(app.ID, added.ID, models.ChecklistAccepted, "")
	require.NoError(t, err)

	assert.Equal(t, models.ChecklistAccepted, store.reviewed)

	require.Len(t, notices.created, 1)
	n := notices.created[0]
	assert.Equal(t, models.NotifyUser, n.To)
	assert.Equal(t, "Bank Statement document was Accepted", n.Title)
	assert.False(t, n.Message.Valid)
}

func TestReview_RejectCarriesReason(t *testing.T) {
	app := testApplication()
	svc, _, notices := testChecklistService(app)

	added, err := svc.AddItem(app.ID, "Bank Statement", "")
	require.NoError(t, err)
	notices.created = nil

	err = svc.Review(app.ID, added.ID, models.ChecklistRejected, "Pages missing")
	require.NoError(t, err)

	require.Len(t, notices.created, 1)
	n := notices.created[0]
	assert.Equal(t, "Bank Statement document was Rejected", n.Title)
	assert.Equal(t, "Reason: Pages missing", n.Message.String)
}

func TestReview_InvalidDecision(t *testing.T) {
	app := testApplication()
	svc, _, _ := testChecklistService(app)

	err := svc.Review(app.ID, uuid.New(), "Maybe", "")
	assert.ErrorIs(t, err, ErrInvalidChecklistDecision)
}

func TestNotificationFailureDoesNotFailOperation(t *testing.T) {
	app := testApplication()
	store := &fakeChecklistStore{app: app}
	notices := &fakeNotificationStore{err: errors.New("insert failed")}
	svc := NewChecklistService(store, notices, logrus.New())

	_, err := svc.AddItem(app.ID, "Bank Statement", "")
	assert.NoError(t, err)
}
