// Package policy concentra la autorización: una tabla explícita de capacidades por rol
// y las reglas de jerarquía para la gestión de usuarios.
package policy

import "github.com/jhoicas/erp-api/internal/domain/entity"

// Capability acción protegida de la API.
type Capability string

const (
	ProductsRead    Capability = "products:read"
	ProductsWrite   Capability = "products:write"
	SalesRead       Capability = "sales:read"
	SalesWrite      Capability = "sales:write"
	PurchasesRead   Capability = "purchases:read"
	PurchasesWrite  Capability = "purchases:write"
	InventoryRead   Capability = "inventory:read"
	InventoryAdjust Capability = "inventory:adjust"
	UsersManage     Capability = "users:manage"
	DashboardAdmin  Capability = "dashboard:admin"
	DashboardSeller Capability = "dashboard:seller"
	DashboardClient Capability = "dashboard:client"
)

var staff = []Capability{
	ProductsRead, ProductsWrite,
	SalesRead, SalesWrite,
	PurchasesRead, PurchasesWrite,
	InventoryRead, InventoryAdjust,
	UsersManage,
	DashboardAdmin, DashboardSeller,
}

var table = map[entity.Role]map[Capability]bool{
	entity.RoleSuperadmin: set(staff...),
	entity.RoleAdmin:      set(staff...),
	entity.RoleSeller:     set(ProductsRead, SalesRead, SalesWrite, InventoryRead, DashboardSeller),
	entity.RoleClient:     set(ProductsRead, DashboardClient),
}

func set(caps ...Capability) map[Capability]bool {
	m := make(map[Capability]bool, len(caps))
	for _, c := range caps {
		m[c] = true
	}
	return m
}

// Can indica si el rol tiene la capacidad. Roles desconocidos no tienen ninguna.
func Can(role entity.Role, c Capability) bool {
	return table[role][c]
}

// Capabilities devuelve las capacidades del rol (orden estable).
func Capabilities(role entity.Role) []Capability {
	all := append(append([]Capability{}, staff...), DashboardClient)
	out := make([]Capability, 0, len(all))
	for _, c := range all {
		if Can(role, c) {
			out = append(out, c)
		}
	}
	return out
}

// CanManageRole indica si actor puede crear, modificar o eliminar usuarios con rol target.
// Solo un superadmin gestiona superadmins y admins; un admin gestiona vendedores y clientes.
func CanManageRole(actor, target entity.Role) bool {
	if !Can(actor, UsersManage) {
		return false
	}
	switch target {
	case entity.RoleSuperadmin, entity.RoleAdmin:
		return actor == entity.RoleSuperadmin
	case entity.RoleSeller, entity.RoleClient:
		return true
	}
	return false
}
