package model

import "time"

type AccountRole string

const (
	RoleStandard AccountRole = "standard"
	RoleAdmin    AccountRole = "admin"
)

// Account stores a user's spendable balance, lifetime earnings and upline link.
// UID is the Firebase auth uid. ReferredBy points at the tier-1 referrer's UID;
// nil means the account is a root of its referral chain.
type Account struct {
	UID          string      `gorm:"column:uid;primaryKey;size:128"`
	DisplayName  string      `gorm:"column:display_name;size:255"`
	Points       int64       `gorm:"column:points;not null;default:0"`
	TotalEarned  int64       `gorm:"column:total_earned;not null;default:0"`
	Level        int         `gorm:"column:level;not null;default:1"`
	ReferredBy   *string     `gorm:"column:referred_by;size:128;index"`
	ReferralCode string      `gorm:"column:referral_code;size:36;uniqueIndex"`
	Role         AccountRole `gorm:"column:role;size:16;not null;default:standard"`
	CreatedAt    time.Time   `gorm:"autoCreateTime"`
	UpdatedAt    time.Time   `gorm:"autoUpdateTime"`
}

func (Account) TableName() string {
	return "accounts"
}

func (a *Account) IsAdmin() bool {
	return a.Role == RoleAdmin
}
