package validator

import (
	"reflect"
	"strings"

	"github.com/SAP-F-2025/exam-session-client/internal/models"
	"github.com/go-playground/validator/v10"
)

// Validator wraps the struct validator with the tags used by session requests and config.
type Validator struct {
	structValidator *validator.Validate
}

// New creates a validator with all custom tags registered.
func New() *Validator {
	structValidator := validator.New()

	registerCustomValidators(structValidator)

	return &Validator{
		structValidator: structValidator,
	}
}

// ValidateStruct validates struct tags only
func (v *Validator) ValidateStruct(s interface{}) error {
	return v.structValidator.Struct(s)
}

// Var validates a single value against a tag expression.
func (v *Validator) Var(field interface{}, tag string) error {
	return v.structValidator.Var(field, tag)
}

func registerCustomValidators(validate *validator.Validate) {
	validate.RegisterValidation("exam_mode", validateExamMode)
	validate.RegisterValidation("selection_source", validateSelectionSource)

	// Report JSON names so error payloads match request bodies
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			return fld.Name
		}
		return name
	})
}

func validateExamMode(fl validator.FieldLevel) bool {
	switch models.ExamMode(fl.Field().String()) {
	case models.ModePractice, models.ModeExam:
		return true
	}
	return false
}

func validateSelectionSource(fl validator.FieldLevel) bool {
	switch models.SelectionSource(fl.Field().String()) {
	case models.SourceContent, models.SourceSheet:
		return true
	}
	return false
}
