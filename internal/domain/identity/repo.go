package identity

// Repository is the account storage the service needs. Lookups report
// absence with ok=false rather than an error.
type Repository interface {
	CreateUser(u NewUser) (*User, error)
	GetUser(id int64) (*User, bool)
	GetUserByEmail(email string) (*User, bool)
	GetUserByUsername(username string) (*User, bool)
}
