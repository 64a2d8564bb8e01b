package policy_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/erp-api/internal/domain/entity"
	"github.com/jhoicas/erp-api/internal/domain/policy"
)

func TestCan_TablaDeCapacidades(t *testing.T) {
	cases := []struct {
		role entity.Role
		cap  policy.Capability
		want bool
	}{
		{entity.RoleSuperadmin, policy.UsersManage, true},
		{entity.RoleAdmin, policy.PurchasesWrite, true},
		{entity.RoleAdmin, policy.DashboardClient, false},
		{entity.RoleSeller, policy.SalesWrite, true},
		{entity.RoleSeller, policy.PurchasesWrite, false},
		{entity.RoleSeller, policy.ProductsWrite, false},
		{entity.RoleSeller, policy.InventoryAdjust, false},
		{entity.RoleClient, policy.ProductsRead, true},
		{entity.RoleClient, policy.SalesRead, false},
		{entity.RoleClient, policy.DashboardClient, true},
		{entity.Role("root"), policy.ProductsRead, false},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, policy.Can(tc.role, tc.cap), "%s / %s", tc.role, tc.cap)
	}
}

func TestCanManageRole_Jerarquia(t *testing.T) {
	assert.True(t, policy.CanManageRole(entity.RoleSuperadmin, entity.RoleAdmin))
	assert.True(t, policy.CanManageRole(entity.RoleSuperadmin, entity.RoleSuperadmin))
	assert.False(t, policy.CanManageRole(entity.RoleAdmin, entity.RoleAdmin))
	assert.False(t, policy.CanManageRole(entity.RoleAdmin, entity.RoleSuperadmin))
	assert.True(t, policy.CanManageRole(entity.RoleAdmin, entity.RoleSeller))
	assert.True(t, policy.CanManageRole(entity.RoleAdmin, entity.RoleClient))
	assert.False(t, policy.CanManageRole(entity.RoleSeller, entity.RoleClient))
}

func TestCapabilities_Cliente(t *testing.T) {
	assert.Equal(t,
		[]policy.Capability{policy.ProductsRead, policy.DashboardClient},
		policy.Capabilities(entity.RoleClient))
}
