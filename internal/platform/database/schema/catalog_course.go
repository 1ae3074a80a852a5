package schema

// CatalogCourseTable represents the 'catalog.course' table
type CatalogCourseTable struct {
	Table            string
	ID               string
	Title            string
	Slug             string
	Description      string
	PriceCents       string
	Currency         string
	ImageLink        string
	Published        string
	InstructorID     string
	Category         string
	Level            string
	DurationMinutes  string
	LearningOutcomes string
	Prerequisites    string
	Tags             string
	Rating           string
	NumberOfReviews  string
	CreatedAt        string
	UpdatedAt        string
}

// CatalogCourse is the schema definition for catalog.course
var CatalogCourse = CatalogCourseTable{
	Table:            "catalog.course",
	ID:               "id",
	Title:            "title",
	Slug:             "slug",
	Description:      "description",
	PriceCents:       "pricecents",
	Currency:         "currency",
	ImageLink:        "imagelink",
	Published:        "published",
	InstructorID:     "instructorid",
	Category:         "category",
	Level:            "level",
	DurationMinutes:  "durationminutes",
	LearningOutcomes: "learningoutcomes",
	Prerequisites:    "prerequisites",
	Tags:             "tags",
	Rating:           "rating",
	NumberOfReviews:  "numberofreviews",
	CreatedAt:        "createdat",
	UpdatedAt:        "updatedat",
}

func (t CatalogCourseTable) Columns() []string {
	return []string{
		t.ID, t.Title, t.Slug, t.Description, t.PriceCents, t.Currency, t.ImageLink,
		t.Published, t.InstructorID, t.Category, t.Level, t.DurationMinutes,
		t.LearningOutcomes, t.Prerequisites, t.Tags, t.Rating, t.NumberOfReviews,
		t.CreatedAt, t.UpdatedAt,
	}
}
