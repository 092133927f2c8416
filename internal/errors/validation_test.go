package errors

import (
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidationError(t *testing.T) {
	err := NewValidationError("question_number", "must be at least 1", 0)

	if err.Field != "question_number" {
		t.Errorf("Expected field to be 'question_number', got '%s'", err.Field)
	}

	if err.Value != 0 {
		t.Errorf("Expected value to be 0, got '%v'", err.Value)
	}

	expected := "validation error on field 'question_number': must be at least 1"
	if err.Error() != expected {
		t.Errorf("Expected error message to be '%s', got '%s'", expected, err.Error())
	}
}

func TestValidationErrors(t *testing.T) {
	var errs ValidationErrors
	if errs.Error() != "validation failed" {
		t.Errorf("Expected 'validation failed' for empty errors, got '%s'", errs.Error())
	}

	errs = append(errs, *NewValidationError("answer", "is required", nil))
	expected := "validation failed: answer is required"
	if errs.Error() != expected {
		t.Errorf("Expected '%s' for single error, got '%s'", expected, errs.Error())
	}

	errs = append(errs, *NewValidationErrorWithRule("source", "must be content or sheet", "selection_source", "grid"))
	expected = "validation failed: 2 field errors"
	if errs.Error() != expected {
		t.Errorf("Expected '%s' for multiple errors, got '%s'", expected, errs.Error())
	}
}

func TestToValidationErrors(t *testing.T) {
	type payload struct {
		QuestionNumber int    `validate:"min=1,max=200"`
		Answer         string `validate:"required"`
	}

	v := validator.New()
	err := v.Struct(payload{QuestionNumber: 201})
	require.Error(t, err)

	errs := ToValidationErrors(err)
	require.Len(t, errs, 2)
	assert.Equal(t, "QuestionNumber", errs[0].Field)
	assert.Equal(t, "must be at most 200", errs[0].Message)
	assert.Equal(t, "max", errs[0].Rule)
	assert.Equal(t, "Answer", errs[1].Field)
	assert.Equal(t, "is required", errs[1].Message)

	assert.Empty(t, ToValidationErrors(assert.AnError))
}
