package schema

// CommerceOrderTable represents the 'commerce.order' table
type CommerceOrderTable struct {
	Table             string
	ID                string
	UserID            string
	CourseID          string
	CheckoutSessionID string
	AmountCents       string
	Currency          string
	Status            string
	CreatedAt         string
	UpdatedAt         string
}

// CommerceOrder is the schema definition for commerce.order
var CommerceOrder = CommerceOrderTable{
	Table:             "commerce.order",
	ID:                "id",
	UserID:            "userid",
	CourseID:          "courseid",
	CheckoutSessionID: "checkoutsessionid",
	AmountCents:       "amountcents",
	Currency:          "currency",
	Status:            "status",
	CreatedAt:         "createdat",
	UpdatedAt:         "updatedat",
}

func (t CommerceOrderTable) Columns() []string {
	return []string{
		t.ID, t.UserID, t.CourseID, t.CheckoutSessionID, t.AmountCents,
		t.Currency, t.Status, t.CreatedAt, t.UpdatedAt,
	}
}
