package domain

// UserLevel is the membership tier the backend assigns to an account.
type UserLevel string

const (
	UserLevelNormal  UserLevel = "normal"
	UserLevelBasic   UserLevel = "basic"
	UserLevelMember  UserLevel = "member"
	UserLevelRegular UserLevel = "regular"
	UserLevelLeader  UserLevel = "leader"
)

// UserStatus represents lifecycle states for an account.
type UserStatus string

const (
	UserStatusActive UserStatus = "active"
	UserStatusFrozen UserStatus = "frozen"
	UserStatusBanned UserStatus = "banned"
)

// UserProfile is the server-asserted snapshot of the signed-in user.
// It is replaced wholesale on every successful fetch and never mutated in place.
type UserProfile struct {
	ID          int64
	DisplayName string
	Email       string
	IsAdmin     bool
	Level       UserLevel
	Status      UserStatus
	DomainQuota int
	InviteCode  string
}
