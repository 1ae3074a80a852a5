package schema

// CatalogChapterTable represents the 'catalog.chapter' table
type CatalogChapterTable struct {
	Table           string
	ID              string
	CourseID        string
	Title           string
	Description     string
	VideoURL        string
	ContentType     string
	IsFree          string
	DurationMinutes string
	SortOrder       string
}

// CatalogChapter is the schema definition for catalog.chapter
var CatalogChapter = CatalogChapterTable{
	Table:           "catalog.chapter",
	ID:              "id",
	CourseID:        "courseid",
	Title:           "title",
	Description:     "description",
	VideoURL:        "videourl",
	ContentType:     "contenttype",
	IsFree:          "isfree",
	DurationMinutes: "durationminutes",
	SortOrder:       "sortorder",
}

func (t CatalogChapterTable) Columns() []string {
	return []string{
		t.ID, t.CourseID, t.Title, t.Description, t.VideoURL, t.ContentType,
		t.IsFree, t.DurationMinutes, t.SortOrder,
	}
}
