package entity

type Role string

const (
	RoleClient    Role = "client"
	RolePerformer Role = "performer"
	RoleAdmin     Role = "admin"
)

// User mirrors the identity provider's account; this service only reads it.
type User struct {
	BaseNoDelete
	Name          string `db:"name"`
	Email         string `db:"email"`
	Phone         string `db:"phone"`
	WhatsAppOptIn bool   `db:"whatsapp_opt_in"`
	Role          Role   `db:"role"`
}
