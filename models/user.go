// models/user.go
package models

// SessionUser is the slice of the authenticated user kept in the "user"
// cookie. It exists so role routing never needs a network round trip.
type SessionUser struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

// Roles recognized by the route guard.
const (
	RoleAdmin      = "admin"
	RoleManager    = "manager"
	RoleInfluencer = "influencer"
)

// User mirrors the backend's user document as the admin screens consume it.
type User struct {
	ID             string `json:"_id,omitempty"`
	Name           string `json:"name"`
	Email          string `json:"email"`
	Role           string `json:"role"`
	ManagerID      string `json:"managerId,omitempty"`
	CouponCode     string `json:"couponCode,omitempty"`
	WhatsappNumber string `json:"whatsappNumber,omitempty"`
	IsActive       bool   `json:"isActive"`
	CreatedAt      string `json:"createdAt,omitempty"`
}

// LoginRequest is the login form binding.
type LoginRequest struct {
	Email    string `json:"email" form:"email" validate:"required,email"`
	Password string `json:"password" form:"password" validate:"required"`
}

// RegisterRequest covers both self-registration and admin-driven creation of
// managers and influencers.
type RegisterRequest struct {
	Name           string `json:"name" form:"name" validate:"required"`
	Email          string `json:"email" form:"email" validate:"required,email"`
	Password       string `json:"password" form:"password" validate:"required,min=6"`
	Role           string `json:"role" form:"role" validate:"required,oneof=admin manager influencer"`
	ManagerID      string `json:"managerId,omitempty" form:"managerId"`
	CouponCode     string `json:"couponCode,omitempty" form:"couponCode"`
	WhatsappNumber string `json:"whatsappNumber,omitempty" form:"whatsappNumber"`
}

// UserFilters narrows the admin user listing.
type UserFilters struct {
	Role     string
	Search   string
	IsActive *bool
	Page     int
	Limit    int
}

// UpdatePasswordRequest is the settings-page password change binding.
type UpdatePasswordRequest struct {
	CurrentPassword string `json:"currentPassword" form:"currentPassword" validate:"required"`
	NewPassword     string `json:"newPassword" form:"newPassword" validate:"required,min=6"`
}

// UpdateProfileRequest is the settings-page profile binding.
type UpdateProfileRequest struct {
	Name  string `json:"name" form:"name" validate:"required"`
	Email string `json:"email" form:"email" validate:"required,email"`
}

// NotificationSettings is the per-user message-automation configuration the
// backend stores; the panel only edits it.
type NotificationSettings struct {
	WelcomeEnabled  bool   `json:"welcomeEnabled"`
	ReportEnabled   bool   `json:"reportEnabled"`
	ReminderEnabled bool   `json:"reminderEnabled"`
	ReportDay       string `json:"reportDay,omitempty"`
}

// LoginResult carries the authenticated user plus the opaque bearer token.
type LoginResult struct {
	Result
	User  SessionUser
	Token string
}

// UserResult carries a single user document.
type UserResult struct {
	Result
	User *User `json:"user,omitempty"`
}

// UsersResult carries a paged user listing.
type UsersResult struct {
	Result
	Users []User `json:"users,omitempty"`
	Total int    `json:"total,omitempty"`
	Pages int    `json:"pages,omitempty"`
}

// SettingsResult carries the user's notification settings.
type SettingsResult struct {
	Result
	Settings *NotificationSettings `json:"settings,omitempty"`
}
