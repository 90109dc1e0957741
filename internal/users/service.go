package users

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/MarcoPoloResearchLab/ecofinds/internal/apperr"
	"github.com/MarcoPoloResearchLab/ecofinds/internal/auth"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ErrInvalidIdentity indicates the verified identity did not carry a subject.
var ErrInvalidIdentity = errors.New("users: invalid identity")

const (
	opResolve = "users.resolve"
	opProfile = "users.profile"
)

// ProvisionRecorder observes first-time user creation.
type ProvisionRecorder interface {
	RecordUserProvisioned()
}

// ServiceConfig describes the dependencies required for user identity resolution.
type ServiceConfig struct {
	Database *gorm.DB
	Logger   *zap.Logger
	Metrics  ProvisionRecorder
}

// Service maps verified identities onto local users.
type Service struct {
	db      *gorm.DB
	logger  *zap.Logger
	metrics ProvisionRecorder
}

// NewService constructs the user service.
func NewService(cfg ServiceConfig) (*Service, error) {
	if cfg.Database == nil {
		return nil, fmt.Errorf("users: database connection required")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		db:      cfg.Database,
		logger:  logger,
		metrics: cfg.Metrics,
	}, nil
}

// Resolve returns the local user id for the identity, creating the user on first sight.
// Concurrent first-time calls for the same subject converge on a single row.
func (s *Service) Resolve(ctx context.Context, identity auth.Identity) (UserID, error) {
	subject := strings.TrimSpace(identity.Subject)
	if subject == "" {
		return 0, apperr.Authentication("invalid token", ErrInvalidIdentity)
	}

	existing, err := s.findBySubject(ctx, subject)
	if err == nil {
		return existing.ID, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		s.logError(opResolve, "lookup_failed", err, zap.String("subject", subject))
		return 0, apperr.Storage(err)
	}

	return s.provision(ctx, subject, identity)
}

func (s *Service) provision(ctx context.Context, subject string, identity auth.Identity) (UserID, error) {
	candidate := User{
		Subject:  subject,
		Username: DeriveUsername(identity.DisplayName, identity.Email),
		Email:    strings.TrimSpace(identity.Email),
	}

	result := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "firebase_uid"}},
			DoNothing: true,
		}).
		Create(&candidate)
	if result.Error != nil && !isUniqueViolation(result.Error) {
		s.logError(opResolve, "insert_failed", result.Error, zap.String("subject", subject))
		return 0, apperr.Storage(result.Error)
	}
	if result.Error == nil && result.RowsAffected > 0 && candidate.ID != 0 {
		if s.metrics != nil {
			s.metrics.RecordUserProvisioned()
		}
		s.logger.Info("user provisioned",
			zap.Uint("user_id", uint(candidate.ID)),
			zap.String("subject", subject))
		return candidate.ID, nil
	}

	// Another request inserted the same subject between lookup and insert.
	winner, err := s.findBySubject(ctx, subject)
	if err != nil {
		s.logError(opResolve, "reload_failed", err, zap.String("subject", subject))
		return 0, apperr.Storage(err)
	}
	return winner.ID, nil
}

// Profile returns the public view of the user.
func (s *Service) Profile(ctx context.Context, id UserID) (Profile, error) {
	var user User
	err := s.db.WithContext(ctx).Where("id = ?", id).Take(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return Profile{}, apperr.NotFound("not found")
	}
	if err != nil {
		s.logError(opProfile, "query_failed", err, zap.Uint("user_id", uint(id)))
		return Profile{}, apperr.Storage(err)
	}
	return Profile{ID: user.ID, Username: user.Username, Email: user.Email}, nil
}

func (s *Service) findBySubject(ctx context.Context, subject string) (User, error) {
	var user User
	err := s.db.WithContext(ctx).Where("firebase_uid = ?", subject).Take(&user).Error
	return user, err
}

func (s *Service) logError(operation, reason string, err error, fields ...zap.Field) {
	attrs := []zap.Field{
		zap.String("operation", operation),
		zap.String("reason", reason),
		zap.Error(err),
	}
	s.logger.Error("users service error", append(attrs, fields...)...)
}
