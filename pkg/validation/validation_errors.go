package validation

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// FieldLabels maps struct field names to user-friendly labels
var FieldLabels = map[string]string{
	// User fields
	"FirstName":    "First name",
	"LastName":     "Last name",
	"Email":        "Email",
	"Password":     "Password",
	"YearOfStudy":  "Year of study",
	"ProfileImage": "Profile image",

	// Assessment fields
	"AssessmentDate":       "Assessment date",
	"Rating":               "Rating",
	"CompletedRotations":   "Completed rotations",
	"CertificationsEarned": "Certifications earned",
	"PapersPublished":      "Papers published",
	"PresentationsGiven":   "Presentations given",
	"ProjectsCompleted":    "Projects completed",
	"AreasForImprovement":  "Areas for improvement",
	"NextSteps":            "Next steps",
	"SubmittedBy":          "Submitted by",
}

// FormatValidationErrors converts validator.ValidationErrors to user-friendly messages
func FormatValidationErrors(err error) []string {
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return []string{err.Error()}
	}

	messages := make([]string, 0, len(validationErrors))
	for _, e := range validationErrors {
		messages = append(messages, formatSingleError(e))
	}
	return messages
}

// Message joins the formatted errors into one sentence for the response envelope.
func Message(err error) string {
	return strings.Join(FormatValidationErrors(err), "; ")
}

func formatSingleError(e validator.FieldError) string {
	label := labelFor(e)
	param := e.Param()

	switch e.Tag() {
	case "required", "not_blank":
		return fmt.Sprintf("%s is required", label)
	case "min":
		if e.Kind().String() == "string" {
			return fmt.Sprintf("%s must be at least %s characters", label, param)
		}
		return fmt.Sprintf("%s must be at least %s", label, param)
	case "max":
		if e.Kind().String() == "string" {
			return fmt.Sprintf("%s must be at most %s characters", label, param)
		}
		return fmt.Sprintf("%s must be at most %s", label, param)
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", label, strings.Join(strings.Fields(param), ", "))
	case "email":
		return fmt.Sprintf("%s is not a valid email address", label)
	case "valid_name":
		return fmt.Sprintf("%s may only contain letters, spaces and . ' -", label)
	case "no_emoji":
		return fmt.Sprintf("%s must not contain emoji or symbols", label)
	default:
		return fmt.Sprintf("%s failed validation (%s)", label, e.Tag())
	}
}

// labelFor prefixes nested competency ratings with their parent, e.g. "Leadership rating".
func labelFor(e validator.FieldError) string {
	label := getFieldLabel(e.Field())
	if e.Field() != "Rating" {
		return label
	}
	parts := strings.Split(e.StructNamespace(), ".")
	if len(parts) < 2 {
		return label
	}
	return getFieldLabel(parts[len(parts)-2]) + " rating"
}

func getFieldLabel(fieldName string) string {
	if label, ok := FieldLabels[fieldName]; ok {
		return label
	}
	return formatCamelCase(fieldName)
}

// formatCamelCase converts CamelCase to a sentence-cased phrase
func formatCamelCase(s string) string {
	var result strings.Builder
	for i, r := range s {
		if i > 0 && r >= 'A' && r <= 'Z' {
			result.WriteRune(' ')
			r += 'a' - 'A'
		}
		result.WriteRune(r)
	}
	return result.String()
}
