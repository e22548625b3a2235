package application

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/automator-io/admin-service/internal/domain/repository"
	"github.com/automator-io/admin-service/pkg/hash"
	"github.com/automator-io/admin-service/pkg/helpers"
	"github.com/automator-io/admin-service/pkg/mailer"
	"github.com/automator-io/admin-service/pkg/resterr"
)

const (
	verifyTokenTTL = 24 * time.Hour
	resetTokenTTL  = 30 * time.Minute

	verifyKeyPrefix   = "verify:token:"
	resetKeyPrefix    = "reset:token:"
	verifiedKeyPrefix = "user:verified:"
)

// VerificationService drives email verification and password reset.
// Single-use tokens live in Redis mapped to the user id; the actual mail
// is handed off to the email worker through RabbitMQ.
type VerificationService struct {
	users  repository.UserRepository
	hasher *hash.Hasher
	rdb    *redis.Client
	queue  *helpers.RabbitPublisher
	logger *logrus.Logger

	verifyURL string
	resetURL  string
}

func NewVerificationService(users repository.UserRepository, hasher *hash.Hasher, rdb *redis.Client, queue *helpers.RabbitPublisher, logger *logrus.Logger, verifyURL, resetURL string) *VerificationService {
	return &VerificationService{
		users:     users,
		hasher:    hasher,
		rdb:       rdb,
		queue:     queue,
		logger:    logger,
		verifyURL: verifyURL,
		resetURL:  resetURL,
	}
}

// newToken returns a URL-safe random token.
func newToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

// InitVerification issues a verification token for the caller and queues
// the verification mail. Already-verified accounts short-circuit.
func (s *VerificationService) InitVerification(ctx context.Context, userID string) (map[string]any, *resterr.Error) {
	user, err := s.users.FindByID(ctx, userID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, resterr.NotFound("USER_NOT_FOUND", "User not found").WithField("user_id")
	}
	if err != nil {
		s.logger.WithError(err).Error("verify init: user lookup failed")
		return nil, resterr.Internal("DATABASE_ERROR", "Database connection error").WithField("system")
	}

	if user.Security != nil && user.Security.IsEmailVerified {
		return map[string]any{"user_id": userID, "status": "already_verified"}, nil
	}

	token, terr := newToken()
	if terr != nil {
		s.logger.WithError(terr).Error("verify init: token generation failed")
		return nil, resterr.Internal("TOKEN_GENERATION_ERROR", "Token generation failed").WithField("verification_token")
	}
	if err := s.rdb.Set(ctx, verifyKeyPrefix+token, userID, verifyTokenTTL).Err(); err != nil {
		s.logger.WithError(err).Error("verify init: token store failed")
		return nil, resterr.Internal("CACHE_ERROR", "Verification token could not be stored").WithField("system")
	}

	link := s.verifyURL + "?token=" + token
	s.enqueueMail(ctx, &mailer.EmailJob{
		To:   user.Email,
		Kind: mailer.JobVerifyEmail,
		Data: map[string]any{"link": link, "user_id": userID},
	})

	return map[string]any{
		"user_id":           userID,
		"verification_link": link,
		"expires_in":        int(verifyTokenTTL.Seconds()),
	}, nil
}

// ConfirmVerification redeems a verification token and flips the
// security.is_email_verified flag.
func (s *VerificationService) ConfirmVerification(ctx context.Context, token string) (map[string]any, *resterr.Error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, resterr.BadRequest("MISSING_TOKEN", "Verification token is required").WithField("token")
	}

	userID, err := s.rdb.Get(ctx, verifyKeyPrefix+token).Result()
	if errors.Is(err, redis.Nil) {
		return nil, resterr.BadRequest("INVALID_VERIFICATION_TOKEN", "Invalid or expired verification token").WithField("token")
	}
	if err != nil {
		s.logger.WithError(err).Error("verify confirm: token lookup failed")
		return nil, resterr.Internal("CACHE_ERROR", "Verification token could not be read").WithField("system")
	}

	now := time.Now().UTC()
	if err := s.users.SetEmailVerified(ctx, userID, now); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, resterr.NotFound("USER_NOT_FOUND", "User not found").WithField("user_id")
		}
		s.logger.WithError(err).Error("verify confirm: flag update failed")
		return nil, resterr.Internal("DATABASE_UPDATE_ERROR", "Error updating verification status").WithField("database")
	}

	if err := helpers.RedisSetJSON(ctx, s.rdb, verifiedKeyPrefix+userID, true, 0); err != nil {
		s.logger.WithError(err).WithField("user_id", userID).Warn("verify confirm: flag cache write failed")
	}
	if err := helpers.RedisDel(ctx, s.rdb, verifyKeyPrefix+token); err != nil {
		s.logger.WithError(err).Warn("verify confirm: token cleanup failed")
	}

	s.logger.WithField("user_id", userID).Info("email verified")
	return map[string]any{"user_id": userID, "status": "verified"}, nil
}

// InitPasswordReset always reports success so the response carries no
// signal about which emails exist. The token and mail are only produced
// when the address is on record.
func (s *VerificationService) InitPasswordReset(ctx context.Context, email string) (map[string]any, *resterr.Error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return nil, resterr.BadRequest("MISSING_EMAIL", "Email is required").WithField("email")
	}

	result := map[string]any{"status": "reset_requested"}

	user, err := s.users.FindByEmail(ctx, email)
	if errors.Is(err, repository.ErrNotFound) {
		s.logger.WithField("email", email).Info("reset init: unknown email, no token issued")
		return result, nil
	}
	if err != nil {
		s.logger.WithError(err).Error("reset init: user lookup failed")
		return nil, resterr.Internal("DATABASE_ERROR", "Database connection error").WithField("system")
	}

	token, terr := newToken()
	if terr != nil {
		s.logger.WithError(terr).Error("reset init: token generation failed")
		return nil, resterr.Internal("TOKEN_GENERATION_ERROR", "Token generation failed").WithField("reset_token")
	}
	if err := s.rdb.Set(ctx, resetKeyPrefix+token, user.UserID, resetTokenTTL).Err(); err != nil {
		s.logger.WithError(err).Error("reset init: token store failed")
		return nil, resterr.Internal("CACHE_ERROR", "Reset token could not be stored").WithField("system")
	}

	link := s.resetURL + "?token=" + token
	s.enqueueMail(ctx, &mailer.EmailJob{
		To:   user.Email,
		Kind: mailer.JobResetPassword,
		Data: map[string]any{"link": link, "user_id": user.UserID},
	})

	return result, nil
}

// ConfirmPasswordReset redeems a reset token and replaces the stored
// password hash wholesale.
func (s *VerificationService) ConfirmPasswordReset(ctx context.Context, token, newPassword string) (map[string]any, *resterr.Error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, resterr.BadRequest("MISSING_TOKEN", "Reset token is required").WithField("token")
	}
	if len(newPassword) < 8 {
		return nil, resterr.BadRequest("INVALID_PASSWORD", "Password must be at least 8 characters").WithField("new_password")
	}

	userID, err := s.rdb.Get(ctx, resetKeyPrefix+token).Result()
	if errors.Is(err, redis.Nil) {
		return nil, resterr.BadRequest("INVALID_RESET_TOKEN", "Invalid or expired reset token").WithField("token")
	}
	if err != nil {
		s.logger.WithError(err).Error("reset confirm: token lookup failed")
		return nil, resterr.Internal("CACHE_ERROR", "Reset token could not be read").WithField("system")
	}

	digest, herr := s.hasher.Hash(newPassword)
	if herr != nil {
		s.logger.WithError(herr).Error("reset confirm: password hashing failed")
		return nil, resterr.Internal("PASSWORD_ENCRYPTION_ERROR", "Password encryption failed").WithField("password")
	}

	if err := s.users.UpdatePassword(ctx, userID, digest, time.Now().UTC()); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, resterr.NotFound("USER_NOT_FOUND", "User not found").WithField("user_id")
		}
		s.logger.WithError(err).Error("reset confirm: password update failed")
		return nil, resterr.Internal("DATABASE_UPDATE_ERROR", "Error updating password").WithField("database")
	}

	if err := helpers.RedisDel(ctx, s.rdb, resetKeyPrefix+token); err != nil {
		s.logger.WithError(err).Warn("reset confirm: token cleanup failed")
	}

	s.logger.WithField("user_id", userID).Info("password reset completed")
	return map[string]any{"user_id": userID, "status": "password_reset"}, nil
}

// enqueueMail hands a job to the email queue. Delivery is best effort,
// the triggering operation already succeeded.
func (s *VerificationService) enqueueMail(ctx context.Context, job *mailer.EmailJob) {
	if s.queue == nil {
		return
	}
	if err := s.queue.PublishJSON(ctx, job); err != nil {
		s.logger.WithError(err).WithField("to", job.To).Warn("email job publish failed")
	}
}
