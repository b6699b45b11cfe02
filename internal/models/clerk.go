package models

import (
	"github.com/uptrace/bun"
)

// TicketClerk is a staff account allowed to scan tickets at the entrance.
type TicketClerk struct {
	bun.BaseModel `bun:"table:ticket_clerks"`

	ID           int64  `bun:"id,pk,autoincrement" json:"id"`
	Username     string `bun:"username,notnull,unique" json:"username"`
	PasswordHash string `bun:"password_hash,notnull" json:"-"`
}
