package validator

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type selection struct {
	Answer string `json:"answer" validate:"required,max=16"`
	Source string `json:"source" validate:"required,selection_source"`
	Mode   string `json:"mode" validate:"omitempty,exam_mode"`
}

func TestValidator_CustomTags(t *testing.T) {
	v := New()

	tests := []struct {
		name    string
		input   selection
		wantErr bool
	}{
		{"content source", selection{Answer: "A", Source: "content"}, false},
		{"sheet source with mode", selection{Answer: "d", Source: "sheet", Mode: "exam"}, false},
		{"unknown source", selection{Answer: "A", Source: "grid"}, true},
		{"multi character answer", selection{Answer: "AB", Source: "sheet"}, false},
		{"empty answer", selection{Answer: "", Source: "sheet"}, true},
		{"oversized answer", selection{Answer: "ABCDEFGHIJKLMNOPQ", Source: "sheet"}, true},
		{"unknown mode", selection{Answer: "B", Source: "content", Mode: "strict"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.ValidateStruct(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidator_Var(t *testing.T) {
	v := New()
	assert.NoError(t, v.Var("practice", "exam_mode"))
	assert.Error(t, v.Var("review", "exam_mode"))
}
