package enums

// RoleType is the role carried in a bearer token
type RoleType string

const (
	// RoleLoader may write institutions and their records
	RoleLoader RoleType = "LOADER"
	// RoleAnalyst may only read
	RoleAnalyst RoleType = "ANALYST"
)

// Valid reports whether r is a known role
func (r RoleType) Valid() bool {
	return r == RoleLoader || r == RoleAnalyst
}
