package services

import (
	"errors"
	"fmt"

	"github.com/axevisa/visa-backend/internal/database"
	"github.com/axevisa/visa-backend/internal/models"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// ErrInvalidChecklistDecision is returned for review states other than
// Accepted or Rejected
var ErrInvalidChecklistDecision = errors.New("checklist decision must be Accepted or Rejected")

// checklistStore is the slice of the visa repository the workflow needs
type checklistStore interface {
	GetByID(id uuid.UUID) (*models.VisaApplication, error)
	GetByIDForUser(id, userID uuid.UUID) (*models.VisaApplication, error)
	AddChecklistItem(item *models.ChecklistItem) error
	GetChecklistItem(itemID, applicationID uuid.UUID) (*models.ChecklistItem, error)
	SetChecklistFile(itemID uuid.UUID, filePath string) error
	ReviewChecklistItem(itemID uuid.UUID, accepted string, remarks models.NullString) error
	UpdateStatus(id uuid.UUID, status string) error
}

// notificationStore records in-app notifications
type notificationStore interface {
	Create(n *models.Notification) error
}

// ChecklistService drives the document checklist workflow and its
// notification fan-out. Notification writes are best effort: a failed
// insert is logged and never fails the triggering operation.
type ChecklistService struct {
	apps          checklistStore
	notifications notificationStore
	logger        *logrus.Logger
}

// NewChecklistService creates a new checklist service
func NewChecklistService(apps checklistStore, notifications notificationStore, logger *logrus.Logger) *ChecklistService {
	return &ChecklistService{
		apps:          apps,
		notifications: notifications,
		logger:        logger,
	}
}

// AddItem requests a document from the applicant. The application moves
// to Documents Required and the user is notified.
func (s *ChecklistService) AddItem(applicationID uuid.UUID, note, subnote string) (*models.ChecklistItem, error) {
	app, err := s.apps.GetByID(applicationID)
	if err != nil {
		return nil, err
	}

	item := &models.ChecklistItem{
		VisaApplicationID: app.ID,
		Note:              note,
		Subnote:           models.NewNullString(subnote),
	}
	if err := s.apps.AddChecklistItem(item); err != nil {
		return nil, err
	}

	if err := s.apps.UpdateStatus(app.ID, models.StatusDocumentsRequired); err != nil {
		return nil, err
	}

	message := models.NullString{}
	if subnote != "" {
		message = models.NewNullString("Note: " + subnote)
	}
	s.notify(&models.Notification{
		VisaApplicationID: app.ID,
		To:                models.NotifyUser,
		Title:             "Please upload document: " + note,
		Message:           message,
	})

	return item, nil
}

// Upload stores a document against a checklist item on the user's own
// application. The item's review state resets to Pending and remarks are
// cleared, then the admin side is notified.
func (s *ChecklistService) Upload(applicationID, userID, itemID uuid.UUID, filePath string) (*models.ChecklistItem, error) {
	app, err := s.apps.GetByIDForUser(applicationID, userID)
	if err != nil {
		return nil, err
	}

	item, err := s.apps.GetChecklistItem(itemID, app.ID)
	if err != nil {
		return nil, err
	}

	if err := s.apps.SetChecklistFile(item.ID, filePath); err != nil {
		return nil, err
	}

	fullName := app.FullName.String
	if fullName == "" {
		fullName = "Applicant"
	}
	s.notify(&models.Notification{
		VisaApplicationID: app.ID,
		To:                models.NotifyAdmin,
		Title:             fmt.Sprintf("%s uploaded %s document.", fullName, item.Note),
	})

	item.File = models.NewNullString(filePath)
	item.Accepted = models.ChecklistPending
	item.Remarks = models.NullString{}
	return item, nil
}

// Review records an accept or reject decision with remarks and notifies
// the applicant.
func (s *ChecklistService) Review(applicationID, itemID uuid.UUID, decision, remarks string) error {
	if decision != models.ChecklistAccepted && decision != models.ChecklistRejected {
		return ErrInvalidChecklistDecision
	}

	item, err := s.apps.GetChecklistItem(itemID, applicationID)
	if err != nil {
		return err
	}

	if err := s.apps.ReviewChecklistItem(item.ID, decision, models.NewNullString(remarks)); err != nil {
		return err
	}

	message := models.NullString{}
	if remarks != "" {
		message = models.NewNullString("Reason: " + remarks)
	}
	s.notify(&models.Notification{
		VisaApplicationID: applicationID,
		To:                models.NotifyUser,
		Title:             fmt.Sprintf("%s document was %s", item.Note, decision),
		Message:           message,
	})

	return nil
}

// notify writes a notification, logging instead of failing on error
func (s *ChecklistService) notify(n *models.Notification) {
	if err := s.notifications.Create(n); err != nil {
		s.logger.WithError(err).WithFields(logrus.Fields{
			"application_id": n.VisaApplicationID,
			"title":          n.Title,
		}).Error("failed to create notification")
	}
}

// ensure the concrete repository satisfies the store interface
var _ checklistStore = (*database.VisaApplicationRepository)(nil)
var _ notificationStore = (*database.NotificationRepository)(nil)
