package rbac

// Role constants
const (
	RoleLandlord   = "landlord"
	RoleTenant     = "tenant"
	RoleArbitrator = "arbitrator"
)

// Permission constants
const (
	PermManageListing  = "manage_listing"
	PermApplyListing   = "apply_listing"
	PermSignLease      = "sign_lease"
	PermPayRent        = "pay_rent"
	PermTerminateLease = "terminate_lease"
	PermReleaseEscrow  = "release_escrow"
	PermRequestSettle  = "request_settle"
	PermConfirmSettle  = "confirm_settle"
	PermForceSettle    = "force_settle"
	PermRaiseDispute   = "raise_dispute"
	PermResolveDispute = "resolve_dispute"
)

// RolePermissions defines what each role can do.
var RolePermissions = map[string][]string{
	RoleLandlord: {
		PermManageListing, PermSignLease, PermTerminateLease,
		PermReleaseEscrow, PermRequestSettle, PermRaiseDispute,
	},
	RoleTenant: {
		PermApplyListing, PermSignLease, PermPayRent, PermTerminateLease,
		PermReleaseEscrow, PermConfirmSettle, PermRaiseDispute,
		// Tenant CANNOT: PermRequestSettle — deductions are proposed by the landlord
	},
	RoleArbitrator: {
		PermResolveDispute, PermForceSettle,
	},
}

// HasPermission checks if a role has a specific permission.
func HasPermission(role, permission string) bool {
	perms, ok := RolePermissions[role]
	if !ok {
		return false
	}
	for _, p := range perms {
		if p == permission {
			return true
		}
	}
	return false
}

// IsArbitrationOperation checks if permission is arbitrator-only.
func IsArbitrationOperation(permission string) bool {
	return permission == PermResolveDispute || permission == PermForceSettle
}
