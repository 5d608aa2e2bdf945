package models

import "fmt"

var (
	ErrAdminUserNotFound = fmt.Errorf("admin user not found")
)

type AdminUser struct {
	BaseModel

	Email        string `db:"email"`
	PasswordHash string `db:"password_hash"`
}

/*
AdminSession is what the admin cookie carries. The password hash never
leaves the database.
*/
type AdminSession struct {
	UserID string
	Email  string
}
