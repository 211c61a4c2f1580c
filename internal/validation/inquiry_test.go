package validation

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/excellence-college/school-portal/internal/models"
)

func validForm() models.InquiryForm {
	return models.InquiryForm{
		ParentName:        "Jane Doe",
		ParentEmail:       "jane@example.com",
		ParentPhone:       "+1 (555) 123-4567",
		StudentName:       "John Doe",
		CurrentGrade:      "10th",
		InterestedProgram: "Science",
		InquiryType:       "Admission",
		Message:           "We would like to know more about admissions.",
	}
}

func TestInquiryValidFormPasses(t *testing.T) {
	errs := Inquiry(validForm())
	assert.Empty(t, errs)
}

func TestInquiryEmptyFormReportsEveryField(t *testing.T) {
	errs := Inquiry(models.InquiryForm{})

	require.Len(t, errs, 8)
	assert.Equal(t, "Parent name is required", errs["parentName"])
	assert.Equal(t, "Email is required", errs["parentEmail"])
	assert.Equal(t, "Phone number is required", errs["parentPhone"])
	assert.Equal(t, "Student name is required", errs["studentName"])
	assert.Equal(t, "Please select current grade", errs["currentGrade"])
	assert.Equal(t, "Please select interested program", errs["interestedProgram"])
	assert.Equal(t, "Please select inquiry type", errs["inquiryType"])
	assert.Equal(t, "Message is required", errs["message"])
}

func TestInquiryWhitespaceOnlyNamesRejected(t *testing.T) {
	form := validForm()
	form.ParentName = "   "
	form.StudentName = "\t\n"

	errs := Inquiry(form)
	assert.Equal(t, "Parent name is required", errs["parentName"])
	assert.Equal(t, "Student name is required", errs["studentName"])
}

func TestInquiryNameLengthLimits(t *testing.T) {
	form := validForm()
	form.ParentName = strings.Repeat("a", 101)
	form.StudentName = strings.Repeat("b", 100)

	errs := Inquiry(form)
	assert.Equal(t, "Name cannot exceed 100 characters", errs["parentName"])
	assert.NotContains(t, errs, "studentName")
}

func TestInquiryEmailShape(t *testing.T) {
	cases := map[string]bool{
		"jane@example.com":   true,
		"a@b.co":             true,
		"not-an-email":       false,
		"jane@example":       false,
		"jane doe@place.com": false,
		"@example.com":       false,
	}
	for email, ok := range cases {
		form := validForm()
		form.ParentEmail = email
		errs := Inquiry(form)
		if ok {
			assert.NotContains(t, errs, "parentEmail", email)
		} else {
			assert.Equal(t, "Please enter a valid email", errs["parentEmail"], email)
		}
	}
}

func TestInquiryPhoneShape(t *testing.T) {
	cases := map[string]bool{
		"+1 (555) 123-4567":     true,
		"5551234567":            true,
		"123456789":             false, // too short
		"555-123-4567 ext 9":    false, // letters
		"123456789012345678901": false, // too long
	}
	for phone, ok := range cases {
		form := validForm()
		form.ParentPhone = phone
		errs := Inquiry(form)
		if ok {
			assert.NotContains(t, errs, "parentPhone", phone)
		} else {
			assert.Equal(t, "Please enter a valid phone number", errs["parentPhone"], phone)
		}
	}
}

func TestInquiryMessageLength(t *testing.T) {
	short := validForm()
	short.Message = "too short"
	assert.Equal(t, "Message must be at least 10 characters", Inquiry(short)["message"])

	long := validForm()
	long.Message = strings.Repeat("x", 2001)
	assert.Equal(t, "Message cannot exceed 2000 characters", Inquiry(long)["message"])

	exact := validForm()
	exact.Message = strings.Repeat("x", 2000)
	assert.NotContains(t, Inquiry(exact), "message")
}

func TestInquiryOneMessagePerField(t *testing.T) {
	form := validForm()
	form.ParentEmail = "" // fails notblank and emailshape

	errs := Inquiry(form)
	assert.Equal(t, "Email is required", errs["parentEmail"])
}
