package models

import "time"

// Inquiry statuses as accepted by the backend.
const (
	StatusPending   = "pending"
	StatusContacted = "contacted"
	StatusResolved  = "resolved"
)

// Statuses lists the valid inquiry statuses in lifecycle order.
var Statuses = []string{StatusPending, StatusContacted, StatusResolved}

// ValidStatus reports whether s is one of the three inquiry statuses.
func ValidStatus(s string) bool {
	return s == StatusPending || s == StatusContacted || s == StatusResolved
}

// Option lists offered to the inquiry form. The backend treats the values as
// free strings; these are the suggested choices rendered in the selects.
var (
	Grades       = []string{"8th", "9th", "10th", "11th", "12th", "Other"}
	Programs     = []string{"Science", "Commerce", "Arts", "Engineering", "Medicine", "Law", "Management", "Other"}
	InquiryTypes = []string{"Admission", "Fees", "Facilities", "Curriculum", "Scholarships", "Other"}
)

// Inquiry is a parent/guardian-submitted admissions request as returned by
// the backend. Field names follow the wire contract.
type Inquiry struct {
	ID                string     `json:"_id"`
	ParentName        string     `json:"parentName"`
	ParentEmail       string     `json:"parentEmail"`
	ParentPhone       string     `json:"parentPhone"`
	StudentName       string     `json:"studentName"`
	CurrentGrade      string     `json:"currentGrade"`
	InterestedProgram string     `json:"interestedProgram"`
	InquiryType       string     `json:"inquiryType"`
	Message           string     `json:"message"`
	Status            string     `json:"status"`
	AdminNotes        string     `json:"adminNotes"`
	CreatedAt         time.Time  `json:"createdAt"`
	UpdatedAt         time.Time  `json:"updatedAt"`
	ContactedAt       *time.Time `json:"contactedAt,omitempty"`
	ResolvedAt        *time.Time `json:"resolvedAt,omitempty"`
}

// InquiryForm is the public submission payload.
type InquiryForm struct {
	ParentName        string `json:"parentName" form:"parentName"`
	ParentEmail       string `json:"parentEmail" form:"parentEmail"`
	ParentPhone       string `json:"parentPhone" form:"parentPhone"`
	StudentName       string `json:"studentName" form:"studentName"`
	CurrentGrade      string `json:"currentGrade" form:"currentGrade"`
	InterestedProgram string `json:"interestedProgram" form:"interestedProgram"`
	InquiryType       string `json:"inquiryType" form:"inquiryType"`
	Message           string `json:"message" form:"message"`
}

// InquiryUpdate is the admin mutation payload. Nil fields are omitted so the
// backend only touches what was edited.
type InquiryUpdate struct {
	Status     *string `json:"status,omitempty"`
	AdminNotes *string `json:"adminNotes,omitempty"`
}

// ListQuery captures the dashboard's filter and pagination parameters.
type ListQuery struct {
	Search string
	Status string
	Page   int
	Limit  int
	SortBy string
	Order  string
}

// Pagination mirrors the backend's pagination block.
type Pagination struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
	Total int `json:"total"`
	Pages int `json:"pages"`
}
