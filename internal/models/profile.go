package models

import "time"

type Profile struct {
	BaseModel
	Email              string           `gorm:"uniqueIndex;not null"`
	PasswordHash       string           `gorm:"not null"`
	PhoneNumber        string           `gorm:"type:varchar(20)"`
	Role               UserRole         `gorm:"type:varchar(20);not null;default:'writer'"`
	Tier               SubscriptionTier `gorm:"type:varchar(20);not null;default:'basic'"`
	IsActive           bool             `gorm:"not null;default:false"`
	WalletBalanceCents int64            `gorm:"not null;default:0"`

	// Relations
	Bids          []Bid          `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	Transactions  []Transaction  `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	RefreshTokens []RefreshToken `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
}

// CanClaimWork is the activation gate: admins always pass, everyone else
// needs a confirmed activation payment. Subscription tier never factors in.
func (p *Profile) CanClaimWork() bool {
	return p.Role == UserRoleAdmin || p.IsActive
}

type RefreshToken struct {
	BaseModel
	UserID    string    `gorm:"not null;index"`
	Token     string    `gorm:"not null;uniqueIndex"`
	ExpiresAt time.Time `gorm:"not null"`
}

// AdminGrant marks an identity that registers (or is promoted) as admin.
// Seeded out-of-band from config; application logic never compares against
// literal email strings.
type AdminGrant struct {
	BaseModel
	Email string `gorm:"uniqueIndex;not null"`
}
