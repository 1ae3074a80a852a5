package schema

// UserAccountTable represents the 'users.account' table
type UserAccountTable struct {
	Table               string
	ID                  string
	Name                string
	Email               string
	Password            string
	Role                string
	Bio                 string
	AvatarURL           string
	LastAuthenticatedAt string
	CreatedAt           string
	UpdatedAt           string
}

// UserAccount is the schema definition for users.account
var UserAccount = UserAccountTable{
	Table:               "users.account",
	ID:                  "id",
	Name:                "name",
	Email:               "email",
	Password:            "passwordhash",
	Role:                "role",
	Bio:                 "bio",
	AvatarURL:           "avatarurl",
	LastAuthenticatedAt: "lastauthenticatedat",
	CreatedAt:           "createdat",
	UpdatedAt:           "updatedat",
}

// Columns returns all standard column names
func (t UserAccountTable) Columns() []string {
	return []string{
		t.ID, t.Name, t.Email, t.Password, t.Role, t.Bio, t.AvatarURL,
		t.LastAuthenticatedAt, t.CreatedAt, t.UpdatedAt,
	}
}
