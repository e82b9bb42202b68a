package entity

// Roles válidos para Account.
const (
	RoleAdmin    = "admin"
	RoleWorkshop = "victor" // cuenta del taller asociado; sin acceso al rastreo
)

// Account es una cuenta estática de acceso al panel (login + rol + hash bcrypt).
type Account struct {
	Login        string
	Name         string
	Role         string
	PasswordHash string // bcrypt hash, nunca la contraseña plana
}
