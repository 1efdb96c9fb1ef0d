package rbac

import "testing"

func TestHasPermission(t *testing.T) {
	tests := []struct {
		role       string
		permission string
		want       bool
	}{
		{RoleLandlord, PermManageListing, true},
		{RoleLandlord, PermRequestSettle, true},
		{RoleLandlord, PermConfirmSettle, false},
		{RoleLandlord, PermPayRent, false},
		{RoleTenant, PermPayRent, true},
		{RoleTenant, PermConfirmSettle, true},
		{RoleTenant, PermRequestSettle, false},
		{RoleTenant, PermManageListing, false},
		{RoleArbitrator, PermResolveDispute, true},
		{RoleArbitrator, PermForceSettle, true},
		{RoleArbitrator, PermPayRent, false},
		{"unknown", PermPayRent, false},
	}

	for _, tt := range tests {
		if got := HasPermission(tt.role, tt.permission); got != tt.want {
			t.Errorf("HasPermission(%s, %s) = %v, want %v", tt.role, tt.permission, got, tt.want)
		}
	}
}

func TestIsArbitrationOperation(t *testing.T) {
	if !IsArbitrationOperation(PermForceSettle) {
		t.Error("force settle should be arbitration-only")
	}
	if !IsArbitrationOperation(PermResolveDispute) {
		t.Error("dispute resolution should be arbitration-only")
	}
	if IsArbitrationOperation(PermRequestSettle) {
		t.Error("settle request is a party operation")
	}
}
