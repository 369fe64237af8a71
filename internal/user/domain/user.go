package domain

import (
	"strings"

	"github.com/google/uuid"
)

// CatalogOwnerID identifies the system user that owns every monster imported
// from the bundled bestiary.
var CatalogOwnerID = uuid.MustParse("ba4726f1-5df7-4798-a530-66ad845e1b05")

const (
	CatalogOwnerName  = "wotc"
	CatalogOwnerEmail = "catalog@wizards.com"
)

// User is an identity record. UserAuth holds the credential digest and is
// never serialized.
type User struct {
	ID        uuid.UUID `json:"id"`
	UserName  string    `json:"user_name"`
	UserEmail string    `json:"user_email"`
	UserAuth  string    `json:"-"`
}

// ReservedName reports whether name belongs to a system user and cannot be
// claimed through registration.
func ReservedName(name string) bool {
	return name == CatalogOwnerName
}

func ReservedEmail(email string) bool {
	return strings.EqualFold(email, CatalogOwnerEmail)
}
