package validation

import (
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/excellence-college/school-portal/internal/models"
)

var (
	emailShape = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	phoneShape = regexp.MustCompile(`^[\d\s\-\+\(\)]{10,20}$`)
)

// validate is package-wide; validator instances are safe for concurrent use.
var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	must(v.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	}))
	must(v.RegisterValidation("emailshape", func(fl validator.FieldLevel) bool {
		return emailShape.MatchString(fl.Field().String())
	}))
	must(v.RegisterValidation("phoneshape", func(fl validator.FieldLevel) bool {
		return phoneShape.MatchString(fl.Field().String())
	}))
	return v
}

func must(err error) {
	if err != nil {
		panic(err)
	}
}

// inquiryRules mirrors models.InquiryForm with the submission rules. The
// select fields only check non-emptiness; the backend owns enum membership.
type inquiryRules struct {
	ParentName        string `validate:"notblank,max=100"`
	ParentEmail       string `validate:"notblank,emailshape"`
	ParentPhone       string `validate:"notblank,phoneshape"`
	StudentName       string `validate:"notblank,max=100"`
	CurrentGrade      string `validate:"required"`
	InterestedProgram string `validate:"required"`
	InquiryType       string `validate:"required"`
	Message           string `validate:"notblank,min=10,max=2000"`
}

// Inquiry checks a draft submission and returns one human-readable message
// per failing field, keyed by the wire field name. An empty map means the
// submission is acceptable to send. Pure; no I/O.
func Inquiry(form models.InquiryForm) map[string]string {
	rules := inquiryRules(form)

	err := validate.Struct(rules)
	if err == nil {
		return map[string]string{}
	}

	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return map[string]string{"message": "invalid submission"}
	}

	messages := map[string]string{}
	for _, fe := range verrs {
		field := wireField(fe.StructField())
		if _, seen := messages[field]; seen {
			continue
		}
		messages[field] = message(field, fe.Tag())
	}
	return messages
}

func wireField(structField string) string {
	if structField == "" {
		return structField
	}
	return strings.ToLower(structField[:1]) + structField[1:]
}

// message yields the exact copy shown next to each field.
func message(field, tag string) string {
	switch field {
	case "parentName":
		if tag == "max" {
			return "Name cannot exceed 100 characters"
		}
		return "Parent name is required"
	case "parentEmail":
		if tag == "emailshape" {
			return "Please enter a valid email"
		}
		return "Email is required"
	case "parentPhone":
		if tag == "phoneshape" {
			return "Please enter a valid phone number"
		}
		return "Phone number is required"
	case "studentName":
		if tag == "max" {
			return "Name cannot exceed 100 characters"
		}
		return "Student name is required"
	case "currentGrade":
		return "Please select current grade"
	case "interestedProgram":
		return "Please select interested program"
	case "inquiryType":
		return "Please select inquiry type"
	case "message":
		switch tag {
		case "min":
			return "Message must be at least 10 characters"
		case "max":
			return "Message cannot exceed 2000 characters"
		default:
			return "Message is required"
		}
	default:
		return "Invalid value"
	}
}
