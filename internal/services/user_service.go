package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/franciscosanchezn/gin-food-api/internal/models"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

const (
	suspendedText   = "Your account has been suspended."
	reactivatedText = "Your account has been reactivated."
)

type UserService interface {
	CreateUser(ctx context.Context, user *models.User) error
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByID(ctx context.Context, id string) (*models.User, error)
	// ListUsers returns every account for the admin panel
	ListUsers(ctx context.Context, actor models.Actor) ([]models.User, error)
	// SetStatus suspends or reactivates an account and tells its owner
	SetStatus(ctx context.Context, actor models.Actor, id string, status models.UserStatus) (*models.User, error)
}

type userService struct {
	db       *gorm.DB
	notifier Notifier
}

// NewUserService creates a user service. Status changes are announced through
// notifier when it is not nil.
func NewUserService(db *gorm.DB, notifier Notifier) UserService {
	return &userService{db: db, notifier: notifier}
}

func (s *userService) CreateUser(ctx context.Context, user *models.User) error {
	if strings.TrimSpace(user.Email) == "" {
		return fmt.Errorf("%w: email is required", models.ErrValidation)
	}
	var count int64
	if err := s.db.WithContext(ctx).Model(&models.User{}).Where("email = ?", user.Email).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return fmt.Errorf("%w: user %s", models.ErrDuplicate, user.Email)
	}

	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	if user.Status == "" {
		user.Status = models.UserActive
	}
	return s.db.WithContext(ctx).Create(user).Error
}

func (s *userService) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		return nil, notFound(err, "user "+email)
	}
	return &user, nil
}

func (s *userService) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).Where("id = ?", id).First(&user).Error; err != nil {
		return nil, notFound(err, "user "+id)
	}
	return &user, nil
}

func (s *userService) ListUsers(ctx context.Context, actor models.Actor) ([]models.User, error) {
	if !actor.IsAdmin {
		return nil, fmt.Errorf("%w: only admins can list users", models.ErrNotPermitted)
	}
	var users []models.User
	if err := s.db.WithContext(ctx).Order("created_at ASC").Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

func (s *userService) SetStatus(ctx context.Context, actor models.Actor, id string, status models.UserStatus) (*models.User, error) {
	if !actor.IsAdmin {
		return nil, fmt.Errorf("%w: only admins can change account status", models.ErrNotPermitted)
	}
	if !status.Valid() {
		return nil, fmt.Errorf("%w: unknown account status %q", models.ErrValidation, status)
	}

	user, err := s.GetUserByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if user.IsAdmin {
		return nil, fmt.Errorf("%w: admin accounts cannot be suspended", models.ErrNotPermitted)
	}
	if user.Status == status {
		return user, nil
	}

	if err := s.db.WithContext(ctx).Model(user).Update("status", status).Error; err != nil {
		return nil, err
	}
	user.Status = status
	log.WithFields(logrus.Fields{"user_id": id, "status": status}).Info("Account status changed")

	if s.notifier != nil {
		text := reactivatedText
		if status == models.UserSuspended {
			text = suspendedText
		}
		if err := s.notifier.Dispatch(ctx, models.Notification{UserID: id, Text: text, Type: models.MessageAlert}); err != nil {
			log.WithError(err).WithField("user_id", id).Error("Failed to notify account status change")
		}
	}
	return user, nil
}

func notFound(err error, what string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%w: %s", models.ErrRecordNotFound, what)
	}
	return err
}
