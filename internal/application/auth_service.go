package application

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/automator-io/admin-service/internal/domain/entity"
	"github.com/automator-io/admin-service/internal/domain/repository"
	"github.com/automator-io/admin-service/pkg/hash"
	"github.com/automator-io/admin-service/pkg/resterr"
	"github.com/automator-io/admin-service/pkg/token"
)

// AuthService drives the login state machine, registration and the
// token lifecycle on top of the user repository.
type AuthService struct {
	users  repository.UserRepository
	hasher *hash.Hasher
	codec  *token.Codec
	logger *logrus.Logger
}

func NewAuthService(users repository.UserRepository, hasher *hash.Hasher, codec *token.Codec, logger *logrus.Logger) *AuthService {
	return &AuthService{users: users, hasher: hasher, codec: codec, logger: logger}
}

type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token,omitempty"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int    `json:"expires_in"`
}

var errInvalidCredentials = &resterr.Error{
	Status:  401,
	Code:    "INVALID_CREDENTIALS",
	Message: "Invalid email or password",
	Field:   "email,password",
}

// Login walks the credential checks in a fixed order. A missing user and
// a wrong password produce the identical error so the response carries no
// signal about which emails exist.
func (s *AuthService) Login(ctx context.Context, email, password string) (*TokenPair, *resterr.Error) {
	if email == "" || password == "" {
		return nil, resterr.BadRequest("MISSING_CREDENTIALS", "Email and password are required").WithField("email,password")
	}

	email = strings.ToLower(strings.TrimSpace(email))
	if !strings.Contains(email, "@") || !strings.Contains(email, ".") {
		return nil, resterr.BadRequest("INVALID_EMAIL_FORMAT", "Invalid email format").WithField("email")
	}

	user, err := s.users.FindByEmail(ctx, email)
	if errors.Is(err, repository.ErrNotFound) {
		s.logger.WithField("email", email).Warn("login: user not found")
		return nil, errInvalidCredentials
	}
	if err != nil {
		s.logger.WithError(err).Error("login: user lookup failed")
		return nil, resterr.Internal("DATABASE_ERROR", "Database connection error").WithField("system")
	}
	if user.UserID == "" {
		s.logger.WithField("email", email).Error("login: stored record missing user_id")
		return nil, resterr.Internal("USER_DATA_FORMAT_ERROR", "User data format error").WithField("user_data")
	}

	if !user.IsActive {
		s.logger.WithField("email", email).Warn("login: inactive account")
		return nil, resterr.Forbidden("ACCOUNT_INACTIVE", "Account is inactive. Please contact support.").WithField("account_status")
	}
	if user.IsBanned {
		s.logger.WithField("email", email).Warn("login: banned account")
		return nil, resterr.Forbidden("ACCOUNT_BANNED", "Account is banned. Please contact support.").WithField("account_status")
	}
	if user.IsSuspended {
		s.logger.WithField("email", email).Warn("login: suspended account")
		return nil, resterr.Forbidden("ACCOUNT_SUSPENDED", "Account is suspended. Please contact support.").WithField("account_status")
	}
	if user.IsLoggedIn {
		// Multiple concurrent sessions are allowed, just noted.
		s.logger.WithField("email", email).Info("login: user already has an active session")
	}
	if user.OrgID == "" {
		s.logger.WithField("email", email).Warn("login: no organization assigned")
		return nil, resterr.Forbidden("NO_ORGANIZATION", "User must be assigned to an organization. Please contact support.").WithField("organization")
	}
	if user.Security == nil || !user.Security.IsEmailVerified {
		s.logger.WithField("email", email).Warn("login: email not verified")
		return nil, resterr.Forbidden("EMAIL_NOT_VERIFIED", "Email address must be verified before login. Please check your email for verification link.").WithField("email_verification")
	}
	if user.Security.PasswordHash == "" {
		s.logger.WithField("email", email).Error("login: no password hash on record")
		return nil, resterr.Internal("ACCOUNT_CONFIG_ERROR", "Account configuration error").WithField("password_hash")
	}

	if !s.hasher.Verify(password, user.Security.PasswordHash) {
		s.logger.WithField("email", email).Warn("login: wrong password")
		return nil, errInvalidCredentials
	}

	roles := user.Roles
	if len(roles) == 0 {
		roles = []string{"user"}
	}
	access, err := s.codec.IssueAccess(user.UserID, roles, user.OrgID, user.BusinessUnits, nil)
	if err != nil {
		s.logger.WithError(err).Error("login: access token issuance failed")
		return nil, resterr.Internal("TOKEN_GENERATION_ERROR", "Token generation failed").WithField("jwt_tokens")
	}
	refresh, err := s.codec.IssueRefresh(user.UserID, user.OrgID, user.BusinessUnits, nil)
	if err != nil {
		s.logger.WithError(err).Error("login: refresh token issuance failed")
		return nil, resterr.Internal("TOKEN_GENERATION_ERROR", "Token generation failed").WithField("jwt_tokens")
	}

	// Bookkeeping is best effort. A failed write is logged but never
	// turns a valid credential check into a login failure.
	if err := s.users.MarkLoggedIn(ctx, user.UserID, time.Now().UTC()); err != nil {
		s.logger.WithError(err).WithField("user_id", user.UserID).Warn("login: bookkeeping update failed")
	}

	return &TokenPair{
		AccessToken:  access,
		RefreshToken: refresh,
		TokenType:    "Bearer",
		ExpiresIn:    int(s.codec.AccessTTL().Seconds()),
	}, nil
}

// Refresh validates the presented refresh token and issues a new access
// token with the roles currently on record, not the roles at login time.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*TokenPair, *resterr.Error) {
	claims, err := s.codec.DecodeRefresh(refreshToken)
	if err != nil {
		s.logger.WithError(err).Warn("refresh: token rejected")
		return nil, resterr.Unauthorized("INVALID_TOKEN", "Invalid authentication credentials")
	}

	user, err := s.users.FindByID(ctx, claims.UserID)
	if errors.Is(err, repository.ErrNotFound) {
		s.logger.WithField("user_id", claims.UserID).Warn("refresh: subject no longer exists")
		return nil, resterr.Unauthorized("INVALID_TOKEN", "Invalid authentication credentials")
	}
	if err != nil {
		s.logger.WithError(err).Error("refresh: user lookup failed")
		return nil, resterr.Internal("DATABASE_ERROR", "Database connection error").WithField("system")
	}

	roles := user.Roles
	if len(roles) == 0 {
		roles = []string{"user"}
	}
	access, err := s.codec.RefreshAccess(refreshToken, roles)
	if err != nil {
		s.logger.WithError(err).Error("refresh: access token issuance failed")
		return nil, resterr.Internal("TOKEN_GENERATION_ERROR", "Token generation failed").WithField("jwt_tokens")
	}
	return &TokenPair{
		AccessToken: access,
		TokenType:   "Bearer",
		ExpiresIn:   int(s.codec.AccessTTL().Seconds()),
	}, nil
}

// RegisterRequest is the registration payload. The plaintext password may
// arrive either in the password field or, for legacy clients, in
// security.password_hash; it is hashed before anything is stored.
type RegisterRequest struct {
	entity.User
	Password string `json:"password,omitempty" binding:"omitempty,pwd"`
}

func (s *AuthService) Register(ctx context.Context, req *RegisterRequest) (*entity.User, *resterr.Error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	username := strings.TrimSpace(req.Username)
	password := req.Password
	if password == "" && req.Security != nil {
		password = req.Security.PasswordHash
	}

	if email == "" || password == "" || username == "" {
		return nil, resterr.BadRequest("MISSING_REQUIRED_FIELDS", "Email, password, and username are required").WithField("email,password,username")
	}

	if _, err := s.users.FindByEmail(ctx, email); err == nil {
		return nil, resterr.BadRequest("EMAIL_ALREADY_EXISTS", "Email address is already registered").WithField("email")
	} else if !errors.Is(err, repository.ErrNotFound) {
		s.logger.WithError(err).Error("register: email lookup failed")
		return nil, resterr.Internal("DATABASE_ERROR", "Database connection error").WithField("system")
	}
	if _, err := s.users.FindByUsername(ctx, username); err == nil {
		return nil, resterr.BadRequest("USERNAME_ALREADY_EXISTS", "Username is already taken").WithField("username")
	} else if !errors.Is(err, repository.ErrNotFound) {
		s.logger.WithError(err).Error("register: username lookup failed")
		return nil, resterr.Internal("DATABASE_ERROR", "Database connection error").WithField("system")
	}

	digest, err := s.hasher.Hash(password)
	if err != nil {
		s.logger.WithError(err).Error("register: password hashing failed")
		return nil, resterr.Internal("PASSWORD_ENCRYPTION_ERROR", "Password encryption failed").WithField("password")
	}

	now := time.Now().UTC()
	user := buildNewUser(req, email, username, digest, now)

	if err := s.users.Insert(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, resterr.BadRequest("EMAIL_ALREADY_EXISTS", "Email address is already registered").WithField("email")
		}
		s.logger.WithError(err).Error("register: insert failed")
		return nil, resterr.Internal("DATABASE_INSERT_ERROR", "Database insert operation failed").WithField("database")
	}

	s.logger.WithFields(logrus.Fields{"user_id": user.UserID, "email": email}).Info("user registered")
	return user.Redacted(), nil
}

func buildNewUser(req *RegisterRequest, email, username, passwordHash string, now time.Time) *entity.User {
	user := req.User
	user.UserID = uuid.New().String()
	user.Email = email
	user.Username = username

	if user.Profile == nil {
		user.Profile = &entity.Profile{}
	}
	if user.Profile.Locale == "" {
		user.Profile.Locale = "en-US"
	}
	if user.Address == nil {
		user.Address = &entity.Address{}
	}
	if user.Preferences == nil {
		user.Preferences = entity.DefaultPreferences()
	}

	sec := entity.Security{}
	if req.Security != nil {
		sec = *req.Security
	}
	sec.PasswordHash = passwordHash
	user.Security = &sec

	if user.Membership == nil {
		user.Membership = &entity.Membership{Status: "free_tier", StartDate: &now}
	} else if user.Membership.Status == "" {
		user.Membership.Status = "free_tier"
	}

	if len(user.Roles) == 0 {
		user.Roles = []string{"user"}
	}
	if len(user.Tags) == 0 {
		user.Tags = []string{"new_user"}
	}
	if user.Metadata == nil {
		user.Metadata = map[string]any{}
	}
	if _, ok := user.Metadata["registration_source"]; !ok {
		user.Metadata["registration_source"] = "web"
	}
	if _, ok := user.Metadata["last_activity"]; !ok {
		user.Metadata["last_activity"] = now
	}

	if user.CreatedAt.IsZero() {
		user.CreatedAt = now
	}
	user.UpdatedAt = now
	user.IsActive = true
	user.IsBanned = false
	user.IsSuspended = false
	user.IsLoggedIn = false
	return &user
}

type LogoutResult struct {
	UserID string `json:"user_id"`
	Status string `json:"status"`
}

// Logout is idempotent: a second call for an already logged out user
// succeeds without touching the store.
func (s *AuthService) Logout(ctx context.Context, userID string) (*LogoutResult, *resterr.Error) {
	if userID == "" {
		return nil, resterr.BadRequest("MISSING_USER_ID", "User ID not found in access payload").WithField("user_id")
	}

	user, err := s.users.FindByID(ctx, userID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, resterr.NotFound("USER_NOT_FOUND", "User not found").WithField("user_id")
	}
	if err != nil {
		s.logger.WithError(err).Error("logout: user lookup failed")
		return nil, resterr.Internal("DATABASE_ERROR", "Database connection error").WithField("system")
	}

	if !user.IsLoggedIn {
		return &LogoutResult{UserID: userID, Status: "logged_out"}, nil
	}

	if err := s.users.MarkLoggedOut(ctx, userID, time.Now().UTC()); err != nil {
		s.logger.WithError(err).WithField("user_id", userID).Error("logout: bookkeeping update failed")
		return nil, resterr.Internal("DATABASE_UPDATE_ERROR", "Error updating user logout data").WithField("database")
	}
	return &LogoutResult{UserID: userID, Status: "logged_out"}, nil
}

// Me returns the caller's own record with credentials redacted.
func (s *AuthService) Me(ctx context.Context, userID string) (*entity.User, *resterr.Error) {
	if userID == "" {
		return nil, resterr.BadRequest("MISSING_USER_ID", "User ID not found in access payload").WithField("user_id")
	}

	user, err := s.users.FindByID(ctx, userID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, resterr.NotFound("USER_NOT_FOUND", "User not found").WithField("user_id")
	}
	if err != nil {
		s.logger.WithError(err).Error("me: user lookup failed")
		return nil, resterr.Internal("DATABASE_ERROR", "Database connection error").WithField("system")
	}
	return user.Redacted(), nil
}
