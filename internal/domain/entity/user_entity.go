package entity

import (
	"time"
)

// User is the aggregate root for the user domain.
// Documents are stored as-is, so JSON tags double as storage field names.
// Passwords live in Security.PasswordHash as bcrypt digests.
type User struct {
	UserID   string `json:"user_id"`
	Email    string `json:"email,omitempty"`
	Username string `json:"username,omitempty"`

	Profile     *Profile     `json:"profile,omitempty"`
	Address     *Address     `json:"address,omitempty"`
	Preferences *Preferences `json:"preferences,omitempty"`
	Security    *Security    `json:"security,omitempty"`
	Membership  *Membership  `json:"membership,omitempty"`

	OrgID         string   `json:"org_id,omitempty"`
	BusinessUnits []string `json:"business_units,omitempty"`

	SocialProfiles []SocialProfile `json:"social_profiles,omitempty"`
	Roles          []string        `json:"roles,omitempty"`
	Groups         []string        `json:"groups,omitempty"`
	Tags           []string        `json:"tags,omitempty"`
	Metadata       map[string]any  `json:"metadata,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	IsActive    bool `json:"is_active"`
	IsBanned    bool `json:"is_banned"`
	IsSuspended bool `json:"is_suspended"`
	IsLoggedIn  bool `json:"is_logged_in"`
}

type Profile struct {
	FirstName         string `json:"first_name,omitempty"`
	LastName          string `json:"last_name,omitempty"`
	Bio               string `json:"bio,omitempty"`
	DateOfBirth       string `json:"date_of_birth,omitempty"`
	ProfilePictureURL string `json:"profile_picture_url,omitempty"`
	PhoneNumber       string `json:"phone_number,omitempty"`
	Gender            string `json:"gender,omitempty"`
	Locale            string `json:"locale,omitempty"`
	Timezone          string `json:"timezone,omitempty"`
}

type Address struct {
	Street     string `json:"street,omitempty"`
	City       string `json:"city,omitempty"`
	State      string `json:"state,omitempty"`
	PostalCode string `json:"postal_code,omitempty"`
	Country    string `json:"country,omitempty"`
}

type Preferences struct {
	Theme                     string `json:"theme,omitempty"`
	NotificationsEnabled      bool   `json:"notifications_enabled"`
	EmailNotificationsEnabled bool   `json:"email_notifications_enabled"`
	IsPublic                  bool   `json:"is_public"`
	ContentLanguage           string `json:"content_language,omitempty"`
}

type Security struct {
	IsEmailVerified bool       `json:"is_email_verified"`
	IsPhoneVerified bool       `json:"is_phone_verified"`
	PasswordHash    string     `json:"password_hash,omitempty"`
	LastLogin       *time.Time `json:"last_login,omitempty"`
	MFAEnabled      bool       `json:"mfa_enabled"`
	RecoveryCodes   []string   `json:"recovery_codes,omitempty"`
}

type Membership struct {
	Status    string     `json:"status,omitempty"`
	StartDate *time.Time `json:"start_date,omitempty"`
	EndDate   *time.Time `json:"end_date,omitempty"`
}

type SocialProfile struct {
	Platform string `json:"platform,omitempty"`
	URL      string `json:"url,omitempty"`
	Handle   string `json:"handle,omitempty"`
}

// DefaultPreferences mirrors the defaults applied when a user registers
// without an explicit preferences block.
func DefaultPreferences() *Preferences {
	return &Preferences{
		Theme:                     "light",
		NotificationsEnabled:      true,
		EmailNotificationsEnabled: true,
		IsPublic:                  true,
		ContentLanguage:           "en",
	}
}

// Redacted returns a copy safe for API responses, with credential
// material stripped out of the security block.
func (u *User) Redacted() *User {
	if u == nil {
		return nil
	}
	out := *u
	if u.Security != nil {
		sec := *u.Security
		sec.PasswordHash = ""
		sec.RecoveryCodes = nil
		out.Security = &sec
	}
	return &out
}
