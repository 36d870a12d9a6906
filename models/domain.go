package models

// Domain is a top-level progression area (e.g. "Endurance", "Strength").
// XP and ranks accumulate per domain.
type Domain struct {
	ID          string `json:"id" gorm:"primaryKey;type:uuid"`
	Name        string `json:"name" gorm:"not null"`
	Slug        string `json:"slug" gorm:"uniqueIndex;not null"`
	Description string `json:"description"`
	IconURL     string `json:"icon_url"`
	SortOrder   int    `json:"sort_order" gorm:"column:sort_order;default:0"`

	Timestamps
}

// Category groups challenges inside a domain.
type Category struct {
	ID       string `json:"id" gorm:"primaryKey;type:uuid"`
	DomainID string `json:"domain_id" gorm:"not null;index"`
	Name     string `json:"name" gorm:"not null"`
	Slug     string `json:"slug" gorm:"uniqueIndex;not null"`

	Domain *Domain `json:"domain,omitempty" gorm:"foreignKey:DomainID"`

	Timestamps
}

// EquipmentItem is admin catalog plumbing; challenges reference it.
type EquipmentItem struct {
	ID          string `json:"id" gorm:"primaryKey;type:uuid"`
	Name        string `json:"name" gorm:"not null"`
	Description string `json:"description"`
	ImageURL    string `json:"image_url"`

	Timestamps
}

// ChallengeEquipment joins challenges to the equipment they need.
type ChallengeEquipment struct {
	ChallengeID string `json:"challenge_id" gorm:"primaryKey"`
	EquipmentID string `json:"equipment_id" gorm:"primaryKey"`
}
