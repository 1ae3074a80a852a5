package schema

// CommerceEntitlementTable represents the 'commerce.entitlement' table
type CommerceEntitlementTable struct {
	Table     string
	UserID    string
	CourseID  string
	Source    string
	GrantedAt string
}

// CommerceEntitlement is the schema definition for commerce.entitlement
var CommerceEntitlement = CommerceEntitlementTable{
	Table:     "commerce.entitlement",
	UserID:    "userid",
	CourseID:  "courseid",
	Source:    "source",
	GrantedAt: "grantedat",
}

func (t CommerceEntitlementTable) Columns() []string {
	return []string{t.UserID, t.CourseID, t.Source, t.GrantedAt}
}
