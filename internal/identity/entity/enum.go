package entity

import (
	"strconv"
)

type Role int16

const (
	// RoleUnknown is mean role is not known / not set.
	RoleUnknown Role = 0

	// RoleUser is the default job-seeker role.
	RoleUser Role = 1

	// RoleEmployer can post and manage job listings.
	RoleEmployer Role = 2

	// RoleAdmin can manage the user directory.
	RoleAdmin Role = 3

	// RoleSuperAdmin can manage admins.
	RoleSuperAdmin Role = 4
)

func (r Role) String() string {
	switch r {
	case RoleUser:
		return "user"
	case RoleEmployer:
		return "employer"
	case RoleAdmin:
		return "admin"
	case RoleSuperAdmin:
		return "superAdmin"
	default:
		return "unknown"
	}
}

func (r Role) IsUnknown() bool {
	switch r {
	case RoleUser, RoleEmployer, RoleAdmin, RoleSuperAdmin:
		return false
	default:
		return true
	}
}

func RoleFromString(str string) Role {
	switch str {
	case "user":
		return RoleUser
	case "employer":
		return RoleEmployer
	case "admin":
		return RoleAdmin
	case "superAdmin":
		return RoleSuperAdmin
	default:
		return RoleUnknown
	}
}

// SelfRegisterableRoles are the roles a signup request may ask for.
// Admin roles are only granted through the directory.
func SelfRegisterableRoles() []Role {
	return []Role{RoleUser, RoleEmployer}
}

func ParseSafeRoles(raws []string) []Role {
	out := make([]Role, 0)
	seen := map[Role]struct{}{}

	for _, v := range raws {
		n, err := strconv.ParseInt(v, 10, 16)
		if err != nil {
			continue
		}

		r := Role(n)
		if r.IsUnknown() {
			continue
		}

		if _, ok := seen[r]; ok {
			continue
		}

		seen[r] = struct{}{}
		out = append(out, r)
	}

	return out
}

func ToInt16Slice(roles []Role) []int16 {
	out := make([]int16, len(roles))
	for i, r := range roles {
		out[i] = int16(r)
	}
	return out
}
