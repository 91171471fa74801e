package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// TrendSearch is one dashboard trend-discovery run. It is the unit of
// content a checkout unlocks: the public UUID travels through the checkout
// metadata as the correlation id for the product session being paid for.
type TrendSearch struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	UUID        string    `gorm:"type:varchar(36);uniqueIndex" json:"uuid"`
	UserID      uint      `gorm:"not null;index" json:"user_id"`
	Query       string    `gorm:"type:varchar(255);not null" json:"query"`
	ResultsJSON string    `gorm:"type:longtext" json:"-"`
	ViewCount   int64     `gorm:"default:0" json:"view_count"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (t *TrendSearch) BeforeCreate(tx *gorm.DB) error {
	if t.UUID == "" {
		t.UUID = uuid.New().String()
	}
	return nil
}

// FindTrendSearchByUUID resolves a public search id to its row.
func FindTrendSearchByUUID(db *gorm.DB, publicID string) (*TrendSearch, error) {
	var ts TrendSearch
	if err := db.Where("uuid = ?", publicID).First(&ts).Error; err != nil {
		return nil, err
	}
	return &ts, nil
}
