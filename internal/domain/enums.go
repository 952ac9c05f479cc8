package domain

type Role string

const (
	RoleAdmin     Role = "admin"
	RoleDeveloper Role = "developer"
	RoleUser      Role = "user"
)

// ValidRoles is the canonical set of accepted role strings.
var ValidRoles = map[string]bool{
	"admin": true, "developer": true, "user": true,
}

// Elevated reports whether the role bypasses per-task access checks.
func (r Role) Elevated() bool {
	return r == RoleAdmin || r == RoleDeveloper
}

type UserStatus string

const (
	UserActive   UserStatus = "active"
	UserInactive UserStatus = "inactive"
)

type TeamRole string

const (
	TeamLead   TeamRole = "lead"
	TeamMember TeamRole = "member"
)

// ValidTeamRoles is the canonical set of accepted team membership roles.
var ValidTeamRoles = map[string]bool{
	"lead": true, "member": true,
}

// SystemTaskTitle is the title of the catch-all task created for every project.
const SystemTaskTitle = "General"
