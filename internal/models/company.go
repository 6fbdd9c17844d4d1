package models

import (
	"gorm.io/gorm"
)

// Company represents a bus operator whose trips can be booked
type Company struct {
	gorm.Model
	Name        string  `json:"name" gorm:"not null;unique"`
	LogoURL     string  `json:"logoUrl"`
	ImageURL    string  `json:"imageUrl"`
	Rating      float64 `json:"rating" gorm:"not null;default:0"`
	ReviewCount int     `json:"reviewCount" gorm:"not null;default:0"`
}

// TableName specifies the table name
func (Company) TableName() string {
	return "companies"
}
