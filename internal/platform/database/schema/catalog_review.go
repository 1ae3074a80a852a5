package schema

// CatalogReviewTable represents the 'catalog.review' table
type CatalogReviewTable struct {
	Table     string
	CourseID  string
	UserID    string
	Stars     string
	Comment   string
	CreatedAt string
	UpdatedAt string
}

// CatalogReview is the schema definition for catalog.review
var CatalogReview = CatalogReviewTable{
	Table:     "catalog.review",
	CourseID:  "courseid",
	UserID:    "userid",
	Stars:     "stars",
	Comment:   "comment",
	CreatedAt: "createdat",
	UpdatedAt: "updatedat",
}

func (t CatalogReviewTable) Columns() []string {
	return []string{t.CourseID, t.UserID, t.Stars, t.Comment, t.CreatedAt, t.UpdatedAt}
}
