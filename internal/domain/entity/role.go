package entity

// Roles del sistema (conjunto cerrado, se siembran al iniciar).
const (
	RoleAdmin      = "admin"
	RoleEditor     = "editor"
	RoleSupervisor = "supervisor"
)

// DefaultRoles devuelve los nombres de rol que deben existir siempre.
func DefaultRoles() []string {
	return []string{RoleAdmin, RoleEditor, RoleSupervisor}
}

// IsValidRole indica si name pertenece al conjunto de roles conocido.
func IsValidRole(name string) bool {
	switch name {
	case RoleAdmin, RoleEditor, RoleSupervisor:
		return true
	}
	return false
}

// Role representa un rol de permisos.
type Role struct {
	ID   string
	Name string
}
