package models

import "time"

type UserRole string

const (
	RoleAdmin          UserRole = "admin"
	RoleProjectManager UserRole = "project_manager"
	RoleSiteEngineer   UserRole = "site_engineer"
	RoleStoreKeeper    UserRole = "store_keeper"
)

type User struct {
	ID           uint `gorm:"primaryKey"`
	ProjectID    *uint
	Project      *Project
	Name         string   `gorm:"size:100;not null"`
	Email        string   `gorm:"size:100;uniqueIndex;not null"`
	PasswordHash string   `gorm:"size:255;not null"`
	Role         UserRole `gorm:"size:20;not null"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
