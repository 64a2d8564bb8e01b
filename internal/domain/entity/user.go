package entity

import (
	"fmt"
	"strings"
	"time"
)

// Role rol de usuario. Conjunto cerrado; la autorización se decide en policy.
type Role string

const (
	RoleSuperadmin Role = "superadmin"
	RoleAdmin      Role = "admin"
	RoleSeller     Role = "vendedor"
	RoleClient     Role = "cliente"
)

// Roles lista de roles válidos.
var Roles = []Role{RoleSuperadmin, RoleAdmin, RoleSeller, RoleClient}

// ParseRole convierte un string a Role. Acepta los alias en inglés seller/client.
func ParseRole(s string) (Role, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "superadmin":
		return RoleSuperadmin, nil
	case "admin":
		return RoleAdmin, nil
	case "vendedor", "seller":
		return RoleSeller, nil
	case "cliente", "client":
		return RoleClient, nil
	}
	return "", fmt.Errorf("rol desconocido: %q", s)
}

// Redirect ruta del panel correspondiente al rol tras el login.
func (r Role) Redirect() string {
	switch r {
	case RoleSuperadmin, RoleAdmin:
		return "/admin/dashboard"
	case RoleSeller:
		return "/vendedor/dashboard"
	default:
		return "/cliente/dashboard"
	}
}

// User representa un usuario del sistema.
type User struct {
	ID           string
	Email        string
	PasswordHash string // bcrypt hash
	Name         string
	Role         Role
	Active       bool
	Points       int // puntos acumulados (clientes)
	CreatedBy    string
	LastLoginAt  *time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
