package models

import "time"

// User mirrors the identities managed by the external auth service.
// The attendance core only reads this table: identity rows are kept in sync
// by the collaborator, and the export feed joins against them.
type User struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	RoleType  RoleType  `json:"roleType"`
	CreatedAt time.Time `json:"createdAt"`
}
