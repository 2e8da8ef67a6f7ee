package models

// Role is the account kind a session is issued for.
type Role string

const (
	RoleMember Role = "MEMBER"
	RoleCast   Role = "CAST"
	RoleAdmin  Role = "ADMIN"
)

func (r Role) Valid() bool {
	switch r {
	case RoleMember, RoleCast, RoleAdmin:
		return true
	}
	return false
}

type VerificationStatus string

const (
	VerificationPending  VerificationStatus = "PENDING"
	VerificationApproved VerificationStatus = "APPROVED"
	VerificationRejected VerificationStatus = "REJECTED"
)

const (
	AuthTypeLocal = "local"
	AuthTypeLDAP  = "ldap"
)
