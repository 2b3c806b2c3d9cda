package entity

import "time"

// Roles válidos para User.
const (
	RoleAdmin       = "admin"
	RoleBilling     = "billing"
	RoleCollections = "collections"
)

// ValidRole indica si r es un rol conocido.
func ValidRole(r string) bool {
	return r == RoleAdmin || r == RoleBilling || r == RoleCollections
}

// User operador del back-office.
type User struct {
	ID           string
	Username     string
	PasswordHash string // bcrypt hash, nunca plano en dominio después de persistir
	Role         string // admin, billing, collections
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
