package application

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"path/filepath"
	"strings"
	"time"

	"cloud.google.com/go/storage"
	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/automator-io/admin-service/internal/domain/entity"
	"github.com/automator-io/admin-service/internal/domain/repository"
	"github.com/automator-io/admin-service/pkg/hash"
	"github.com/automator-io/admin-service/pkg/helpers"
	"github.com/automator-io/admin-service/pkg/resterr"
)

// UserAdminService is the admin-side user CRUD, plus the Elasticsearch
// profile index and GCS avatar uploads. All operations run behind the
// caller-organization gate.
type UserAdminService struct {
	users  repository.UserRepository
	orgs   repository.OrganizationRepository
	hasher *hash.Hasher
	logger *logrus.Logger

	ES           *elasticsearch.Client
	ESUsersIndex string
	GCS          *storage.Client
	GCSBucket    string
}

func NewUserAdminService(users repository.UserRepository, orgs repository.OrganizationRepository, hasher *hash.Hasher, logger *logrus.Logger) *UserAdminService {
	return &UserAdminService{users: users, orgs: orgs, hasher: hasher, logger: logger}
}

func (s *UserAdminService) CreateUser(ctx context.Context, callerOrgID string, req *RegisterRequest) (*entity.User, *resterr.Error) {
	if gerr := requireActiveOrg(ctx, s.orgs, s.logger, callerOrgID); gerr != nil {
		return nil, gerr
	}

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
		s.logger.WithError(err).Error("create user: email lookup failed")
		return nil, errOrgDB
	}
	if _, err := s.users.FindByUsername(ctx, username); err == nil {
		return nil, resterr.BadRequest("USERNAME_ALREADY_EXISTS", "Username is already taken").WithField("username")
	} else if !errors.Is(err, repository.ErrNotFound) {
		s.logger.WithError(err).Error("create user: username lookup failed")
		return nil, errOrgDB
	}

	digest, err := s.hasher.Hash(password)
	if err != nil {
		s.logger.WithError(err).Error("create user: password hashing failed")
		return nil, resterr.Internal("PASSWORD_ENCRYPTION_ERROR", "Password encryption failed").WithField("password")
	}

	user := buildNewUser(req, email, username, digest, time.Now().UTC())
	if err := s.users.Insert(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, resterr.BadRequest("EMAIL_ALREADY_EXISTS", "Email address is already registered").WithField("email")
		}
		s.logger.WithError(err).Error("create user: insert failed")
		return nil, resterr.Internal("DATABASE_INSERT_ERROR", "Database insert operation failed").WithField("database")
	}

	s.indexUser(ctx, user)
	s.logger.WithFields(logrus.Fields{"user_id": user.UserID, "email": email}).Info("user created")
	return user.Redacted(), nil
}

func (s *UserAdminService) GetUser(ctx context.Context, callerOrgID, userID string) (*entity.User, *resterr.Error) {
	if gerr := requireActiveOrg(ctx, s.orgs, s.logger, callerOrgID); gerr != nil {
		return nil, gerr
	}
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, resterr.BadRequest("MISSING_USER_ID", "User ID is required").WithField("user_id")
	}

	user, err := s.users.FindByID(ctx, userID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, resterr.NotFound("USER_NOT_FOUND", "User not found").WithField("user_id")
	}
	if err != nil {
		s.logger.WithError(err).Error("get user: lookup failed")
		return nil, errOrgDB
	}
	return user.Redacted(), nil
}

// UserList is the paginated list payload.
type UserList struct {
	Users      []*entity.User `json:"users"`
	Pagination Page           `json:"pagination"`
}

func (s *UserAdminService) ListUsers(ctx context.Context, callerOrgID string, limit, skip int) (*UserList, *resterr.Error) {
	if gerr := requireActiveOrg(ctx, s.orgs, s.logger, callerOrgID); gerr != nil {
		return nil, gerr
	}
	if perr := validatePageParams(limit, skip); perr != nil {
		return nil, perr
	}

	// No per-tenant filter here: the admin surface lists every user, the
	// organization gate above is the only tenancy check performed.
	total, err := s.users.Count(ctx, nil)
	if err != nil {
		s.logger.WithError(err).Error("list users: count failed")
		return nil, errOrgDB
	}
	users, err := s.users.List(ctx, nil, limit, skip)
	if err != nil {
		s.logger.WithError(err).Error("list users: query failed")
		return nil, errOrgDB
	}

	redacted := make([]*entity.User, 0, len(users))
	for _, u := range users {
		redacted = append(redacted, u.Redacted())
	}
	return &UserList{
		Users:      redacted,
		Pagination: newPage(total, len(redacted), limit, skip),
	}, nil
}

// UserPatch carries the updatable user fields. Nested sections replace
// wholesale when present. A password_hash inside security is treated as
// a plaintext password and hashed before storage.
type UserPatch struct {
	Email          *string                `json:"email"`
	Username       *string                `json:"username"`
	Profile        *entity.Profile        `json:"profile"`
	Address        *entity.Address        `json:"address"`
	Preferences    *entity.Preferences    `json:"preferences"`
	Security       *entity.Security       `json:"security"`
	Membership     *entity.Membership     `json:"membership"`
	OrgID          *string                `json:"org_id"`
	BusinessUnits  []string               `json:"business_units"`
	SocialProfiles []entity.SocialProfile `json:"social_profiles"`
	Roles          []string               `json:"roles"`
	Groups         []string               `json:"groups"`
	Tags           []string               `json:"tags"`
	Metadata       map[string]any         `json:"metadata"`
	IsActive       *bool                  `json:"is_active"`
	IsBanned       *bool                  `json:"is_banned"`
	IsSuspended    *bool                  `json:"is_suspended"`
}

var userPatchFields = map[string]struct{}{
	"user_id": {}, "email": {}, "username": {}, "profile": {},
	"address": {}, "preferences": {}, "security": {}, "org_id": {},
	"business_units": {}, "membership": {}, "social_profiles": {},
	"roles": {}, "groups": {}, "tags": {}, "metadata": {},
	"created_at": {}, "updated_at": {}, "is_active": {},
	"is_banned": {}, "is_suspended": {}, "is_logged_in": {},
}

func (s *UserAdminService) UpdateUser(ctx context.Context, callerOrgID, userID string, body []byte) (*entity.User, *resterr.Error) {
	if gerr := requireActiveOrg(ctx, s.orgs, s.logger, callerOrgID); gerr != nil {
		return nil, gerr
	}
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, resterr.BadRequest("MISSING_USER_ID", "User ID is required").WithField("user_id")
	}

	user, err := s.users.FindByID(ctx, userID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, resterr.NotFound("USER_NOT_FOUND", "User not found").WithField("user_id")
	}
	if err != nil {
		s.logger.WithError(err).Error("update user: lookup failed")
		return nil, errOrgDB
	}

	var patch UserPatch
	if derr := decodePatch(body, userPatchFields, &patch); derr != nil {
		return nil, derr
	}

	changed := 0
	if patch.Email != nil {
		email := strings.ToLower(strings.TrimSpace(*patch.Email))
		other, err := s.users.FindByEmail(ctx, email)
		if err == nil && other.UserID != userID {
			return nil, resterr.BadRequest("EMAIL_ALREADY_EXISTS", "Email address is already registered").WithField("email")
		}
		if err != nil && !errors.Is(err, repository.ErrNotFound) {
			s.logger.WithError(err).Error("update user: email lookup failed")
			return nil, errOrgDB
		}
		user.Email = email
		changed++
	}
	if patch.Username != nil {
		username := strings.TrimSpace(*patch.Username)
		other, err := s.users.FindByUsername(ctx, username)
		if err == nil && other.UserID != userID {
			return nil, resterr.BadRequest("USERNAME_ALREADY_EXISTS", "Username is already taken").WithField("username")
		}
		if err != nil && !errors.Is(err, repository.ErrNotFound) {
			s.logger.WithError(err).Error("update user: username lookup failed")
			return nil, errOrgDB
		}
		user.Username = username
		changed++
	}
	if patch.Profile != nil {
		user.Profile = patch.Profile
		changed++
	}
	if patch.Address != nil {
		user.Address = patch.Address
		changed++
	}
	if patch.Preferences != nil {
		user.Preferences = patch.Preferences
		changed++
	}
	if patch.Security != nil {
		sec := *patch.Security
		if sec.PasswordHash != "" {
			digest, herr := s.hasher.Hash(sec.PasswordHash)
			if herr != nil {
				s.logger.WithError(herr).Error("update user: password hashing failed")
				return nil, resterr.Internal("PASSWORD_ENCRYPTION_ERROR", "Password encryption failed").WithField("password")
			}
			sec.PasswordHash = digest
		} else if user.Security != nil {
			sec.PasswordHash = user.Security.PasswordHash
		}
		user.Security = &sec
		changed++
	}
	if patch.Membership != nil {
		user.Membership = patch.Membership
		changed++
	}
	if patch.OrgID != nil {
		user.OrgID = *patch.OrgID
		changed++
	}
	if patch.BusinessUnits != nil {
		user.BusinessUnits = patch.BusinessUnits
		changed++
	}
	if patch.SocialProfiles != nil {
		user.SocialProfiles = patch.SocialProfiles
		changed++
	}
	if patch.Roles != nil {
		user.Roles = patch.Roles
		changed++
	}
	if patch.Groups != nil {
		user.Groups = patch.Groups
		changed++
	}
	if patch.Tags != nil {
		user.Tags = patch.Tags
		changed++
	}
	if patch.Metadata != nil {
		user.Metadata = patch.Metadata
		changed++
	}
	if patch.IsActive != nil {
		user.IsActive = *patch.IsActive
		changed++
	}
	if patch.IsBanned != nil {
		user.IsBanned = *patch.IsBanned
		changed++
	}
	if patch.IsSuspended != nil {
		user.IsSuspended = *patch.IsSuspended
		changed++
	}

	if changed == 0 {
		return nil, resterr.BadRequest("NO_FIELDS_TO_UPDATE", "No valid fields provided for update").WithField("user_data")
	}

	user.UpdatedAt = time.Now().UTC()
	if err := s.users.Replace(ctx, user); err != nil {
		s.logger.WithError(err).Error("update user: write failed")
		return nil, resterr.Internal("DATABASE_ERROR", "Database update error").WithField("system")
	}

	s.indexUser(ctx, user)
	s.logger.WithFields(logrus.Fields{"user_id": userID, "fields": changed}).Info("user updated")
	return user.Redacted(), nil
}

func (s *UserAdminService) DeleteUser(ctx context.Context, callerOrgID, userID string) (map[string]any, *resterr.Error) {
	if gerr := requireActiveOrg(ctx, s.orgs, s.logger, callerOrgID); gerr != nil {
		return nil, gerr
	}
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, resterr.BadRequest("MISSING_USER_ID", "User ID is required").WithField("user_id")
	}

	if _, err := s.users.FindByID(ctx, userID); errors.Is(err, repository.ErrNotFound) {
		return nil, resterr.NotFound("USER_NOT_FOUND", "User not found").WithField("user_id")
	} else if err != nil {
		s.logger.WithError(err).Error("delete user: lookup failed")
		return nil, errOrgDB
	}

	if err := s.users.Delete(ctx, userID); err != nil {
		s.logger.WithError(err).Error("delete user: delete failed")
		return nil, resterr.Internal("DATABASE_DELETE_ERROR", "Database delete operation failed").WithField("database")
	}

	s.removeFromIndex(ctx, userID)
	s.logger.WithField("user_id", userID).Info("user deleted")
	return map[string]any{"user_id": userID}, nil
}

// UploadAvatar stores the image in GCS and records the public URL on the
// user's profile.
func (s *UserAdminService) UploadAvatar(ctx context.Context, callerOrgID, userID string, r io.Reader, filename, contentType string) (string, *resterr.Error) {
	if gerr := requireActiveOrg(ctx, s.orgs, s.logger, callerOrgID); gerr != nil {
		return "", gerr
	}
	if s.GCS == nil || s.GCSBucket == "" {
		return "", resterr.Internal("STORAGE_NOT_CONFIGURED", "Object storage is not configured").WithField("system")
	}

	user, err := s.users.FindByID(ctx, userID)
	if errors.Is(err, repository.ErrNotFound) {
		return "", resterr.NotFound("USER_NOT_FOUND", "User not found").WithField("user_id")
	}
	if err != nil {
		s.logger.WithError(err).Error("upload avatar: lookup failed")
		return "", errOrgDB
	}

	ext := strings.ToLower(filepath.Ext(filename))
	objectPath := filepath.ToSlash(filepath.Join("avatars", userID, uuid.NewString()+ext))
	url, err := helpers.UploadObject(ctx, s.GCS, s.GCSBucket, objectPath, contentType, r)
	if err != nil {
		s.logger.WithError(err).WithField("user_id", userID).Error("upload avatar: object write failed")
		return "", resterr.Internal("STORAGE_UPLOAD_ERROR", "Avatar upload failed").WithField("avatar")
	}

	if user.Profile == nil {
		user.Profile = &entity.Profile{}
	}
	user.Profile.ProfilePictureURL = url
	user.UpdatedAt = time.Now().UTC()
	if err := s.users.Replace(ctx, user); err != nil {
		s.logger.WithError(err).Error("upload avatar: profile update failed")
		return "", resterr.Internal("DATABASE_ERROR", "Database update error").WithField("system")
	}

	s.indexUser(ctx, user)
	return url, nil
}

// indexUser pushes a trimmed profile document into Elasticsearch. Index
// maintenance never fails the calling operation.
func (s *UserAdminService) indexUser(ctx context.Context, u *entity.User) {
	if s.ES == nil || s.ESUsersIndex == "" {
		return
	}
	doc := map[string]any{
		"user_id":    u.UserID,
		"email":      u.Email,
		"username":   u.Username,
		"org_id":     u.OrgID,
		"roles":      u.Roles,
		"created_at": u.CreatedAt.Format(time.RFC3339Nano),
		"updated_at": u.UpdatedAt.Format(time.RFC3339Nano),
	}
	if u.Profile != nil {
		doc["first_name"] = u.Profile.FirstName
		doc["last_name"] = u.Profile.LastName
		doc["profile_picture_url"] = u.Profile.ProfilePictureURL
	}
	b, _ := json.Marshal(doc)
	req := esapi.IndexRequest{Index: s.ESUsersIndex, DocumentID: u.UserID, Body: strings.NewReader(string(b)), Refresh: "false"}
	c, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	res, err := req.Do(c, s.ES)
	if err != nil {
		s.logger.WithError(err).WithField("user_id", u.UserID).Warn("es index failed")
		return
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() {
		s.logger.WithFields(logrus.Fields{"status": res.Status(), "user_id": u.UserID}).Warn("es index response error")
	}
}

func (s *UserAdminService) removeFromIndex(ctx context.Context, userID string) {
	if s.ES == nil || s.ESUsersIndex == "" {
		return
	}
	req := esapi.DeleteRequest{Index: s.ESUsersIndex, DocumentID: userID}
	c, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	res, err := req.Do(c, s.ES)
	if err != nil {
		s.logger.WithError(err).WithField("user_id", userID).Warn("es delete failed")
		return
	}
	_ = res.Body.Close()
}

// SearchUsers performs a multi_match query over the indexed profile
// fields, email weighted highest.
func (s *UserAdminService) SearchUsers(ctx context.Context, q string, size int) ([]map[string]any, *resterr.Error) {
	if s.ES == nil || s.ESUsersIndex == "" {
		return []map[string]any{}, nil
	}
	if size <= 0 || size > 50 {
		size = 10
	}
	query := map[string]any{
		"query": map[string]any{
			"multi_match": map[string]any{
				"query":  q,
				"fields": []string{"email^2", "username", "first_name", "last_name"},
			},
		},
		"size": size,
	}
	b, _ := json.Marshal(query)

	c, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	res, err := s.ES.Search(s.ES.Search.WithContext(c), s.ES.Search.WithIndex(s.ESUsersIndex), s.ES.Search.WithBody(strings.NewReader(string(b))))
	if err != nil {
		s.logger.WithError(err).Error("search users: query failed")
		return nil, resterr.Internal("SEARCH_ERROR", "User search failed").WithField("search")
	}
	defer func() { _ = res.Body.Close() }()

	var parsed struct {
		Hits struct {
			Hits []struct {
				ID     string         `json:"_id"`
				Source map[string]any `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		s.logger.WithError(err).Error("search users: response decode failed")
		return nil, resterr.Internal("SEARCH_ERROR", "User search failed").WithField("search")
	}

	out := make([]map[string]any, 0, len(parsed.Hits.Hits))
	for _, h := range parsed.Hits.Hits {
		out = append(out, h.Source)
	}
	return out, nil
}
