package domain

import "time"

// Account is a user record held by the development backend.
type Account struct {
	ID           int64
	Username     string
	Email        string
	PasswordHash string
	IsAdmin      bool
	Level        UserLevel
	Status       UserStatus
	DomainQuota  int
	InviteCode   string
	// TokenVersion is embedded in issued tokens; bumping it revokes them.
	TokenVersion int
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Profile projects the account onto what the profile endpoint returns.
func (a Account) Profile() UserProfile {
	return UserProfile{
		ID:          a.ID,
		DisplayName: a.Username,
		Email:       a.Email,
		IsAdmin:     a.IsAdmin,
		Level:       a.Level,
		Status:      a.Status,
		DomainQuota: a.DomainQuota,
		InviteCode:  a.InviteCode,
	}
}
