package service

import (
	"context"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/tracker-console/internal/dto"
	"github.com/noah-isme/tracker-console/internal/models"
	appErrors "github.com/noah-isme/tracker-console/pkg/errors"
)

type trackerWriter interface {
	CreateActivity(ctx context.Context, sessionID string, activity models.Activity) (*models.Activity, error)
	UpdateActivity(ctx context.Context, sessionID string, id models.ID, activity models.Activity) (*models.Activity, error)
	DeleteActivity(ctx context.Context, sessionID string, id models.ID) error
	CreateWellness(ctx context.Context, sessionID string, category models.WellnessCategory, entry models.Record) (models.Record, error)
	UpdateWellness(ctx context.Context, sessionID string, category models.WellnessCategory, id models.ID, entry models.Record) (models.Record, error)
	DeleteWellness(ctx context.Context, sessionID string, category models.WellnessCategory, id models.ID) error
	CreateUser(ctx context.Context, sessionID string, req models.CreateUserRequest) (*models.UserProfile, error)
	DeleteUser(ctx context.Context, sessionID string, id models.ID) error
}

// RecordService validates browser forms and writes them to the tracker API.
type RecordService struct {
	api       trackerWriter
	validator *validator.Validate
	logger    *zap.Logger
}

// NewRecordService constructs the record service.
func NewRecordService(api trackerWriter, validate *validator.Validate, logger *zap.Logger) *RecordService {
	if validate == nil {
		validate = NewValidator()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RecordService{api: api, validator: validate, logger: logger}
}

func (s *RecordService) CreateActivity(ctx context.Context, sessionID string, form dto.ActivityForm) (*models.Activity, error) {
	activity, err := s.activityFromForm(form)
	if err != nil {
		return nil, err
	}
	created, err := s.api.CreateActivity(ctx, sessionID, activity)
	if err != nil {
		return nil, err
	}
	s.logger.Info("activity created", zap.String("session_id", sessionID), zap.String("activity_id", created.ID.String()))
	return created, nil
}

func (s *RecordService) UpdateActivity(ctx context.Context, sessionID string, id models.ID, form dto.ActivityForm) (*models.Activity, error) {
	if id.IsZero() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "activity id is required")
	}
	activity, err := s.activityFromForm(form)
	if err != nil {
		return nil, err
	}
	return s.api.UpdateActivity(ctx, sessionID, id, activity)
}

func (s *RecordService) DeleteActivity(ctx context.Context, sessionID string, id models.ID) error {
	if id.IsZero() {
		return appErrors.Clone(appErrors.ErrValidation, "activity id is required")
	}
	return s.api.DeleteActivity(ctx, sessionID, id)
}

// CreateWellness writes one entry. form must be the concrete form of category.
func (s *RecordService) CreateWellness(ctx context.Context, sessionID string, category models.WellnessCategory, form dto.WellnessForm) (models.Record, error) {
	entry, err := s.wellnessFromForm(form)
	if err != nil {
		return nil, err
	}
	return s.api.CreateWellness(ctx, sessionID, category, entry)
}

func (s *RecordService) UpdateWellness(ctx context.Context, sessionID string, category models.WellnessCategory, id models.ID, form dto.WellnessForm) (models.Record, error) {
	if id.IsZero() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "entry id is required")
	}
	entry, err := s.wellnessFromForm(form)
	if err != nil {
		return nil, err
	}
	return s.api.UpdateWellness(ctx, sessionID, category, id, entry)
}

func (s *RecordService) DeleteWellness(ctx context.Context, sessionID string, category models.WellnessCategory, id models.ID) error {
	if id.IsZero() {
		return appErrors.Clone(appErrors.ErrValidation, "entry id is required")
	}
	return s.api.DeleteWellness(ctx, sessionID, category, id)
}

// CreateUser is the admin user creation.
func (s *RecordService) CreateUser(ctx context.Context, sessionID string, req models.CreateUserRequest) (*models.UserProfile, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid user payload")
	}
	created, err := s.api.CreateUser(ctx, sessionID, req)
	if err != nil {
		return nil, err
	}
	s.logger.Info("user created", zap.String("session_id", sessionID), zap.String("username", created.Username))
	return created, nil
}

func (s *RecordService) DeleteUser(ctx context.Context, sessionID string, id models.ID) error {
	if id.IsZero() {
		return appErrors.Clone(appErrors.ErrValidation, "user id is required")
	}
	if err := s.api.DeleteUser(ctx, sessionID, id); err != nil {
		return err
	}
	s.logger.Info("user deleted", zap.String("session_id", sessionID), zap.String("user_id", id.String()))
	return nil
}

func (s *RecordService) activityFromForm(form dto.ActivityForm) (models.Activity, error) {
	if err := s.validator.Struct(form); err != nil {
		return models.Activity{}, validationError(err, "invalid activity payload")
	}
	activity, err := form.ToModel()
	if err != nil {
		return models.Activity{}, appErrors.Clone(appErrors.ErrValidation, err.Error())
	}
	return activity, nil
}

func (s *RecordService) wellnessFromForm(form dto.WellnessForm) (models.Record, error) {
	if form == nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "entry payload is required")
	}
	if err := s.validator.Struct(form); err != nil {
		return nil, validationError(err, "invalid wellness payload")
	}
	entry, err := form.ToModel()
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, err.Error())
	}
	return entry, nil
}
