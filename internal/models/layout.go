package models

import "fmt"

// PartRange is one section of the exam: an inclusive question interval with a display name.
type PartRange struct {
	Part      int    `json:"part" validate:"required,min=1"`
	Start     int    `json:"start" validate:"required,min=1"`
	End       int    `json:"end" validate:"required,gtefield=Start"`
	Name      string `json:"name" validate:"required,max=50"`
	Listening bool   `json:"listening"`
}

// Contains reports whether question q belongs to the part.
func (p PartRange) Contains(q int) bool {
	return q >= p.Start && q <= p.End
}

// Size returns the number of questions in the part.
func (p PartRange) Size() int {
	return p.End - p.Start + 1
}

// ExamLayout is the part range table of one exam configuration.
type ExamLayout struct {
	Name           string      `json:"name" validate:"required"`
	TotalQuestions int         `json:"total_questions" validate:"required,min=1"`
	Parts          []PartRange `json:"parts" validate:"required,min=1,dive"`
}

// TOEICLayout is the standard seven-part, 200-question TOEIC layout.
func TOEICLayout() *ExamLayout {
	return &ExamLayout{
		Name:           "toeic",
		TotalQuestions: 200,
		Parts: []PartRange{
			{Part: 1, Start: 1, End: 10, Name: "Part I", Listening: true},
			{Part: 2, Start: 11, End: 40, Name: "Part II", Listening: true},
			{Part: 3, Start: 41, End: 70, Name: "Part III", Listening: true},
			{Part: 4, Start: 71, End: 100, Name: "Part IV", Listening: true},
			{Part: 5, Start: 101, End: 140, Name: "Part V"},
			{Part: 6, Start: 141, End: 152, Name: "Part VI"},
			{Part: 7, Start: 153, End: 200, Name: "Part VII"},
		},
	}
}

// PartCount returns the number of parts.
func (l *ExamLayout) PartCount() int {
	return len(l.Parts)
}

// Part returns the range for part n (1-based).
func (l *ExamLayout) Part(n int) (PartRange, bool) {
	if n < 1 || n > len(l.Parts) {
		return PartRange{}, false
	}
	return l.Parts[n-1], true
}

// PartOf returns the part number that question q belongs to, or 0.
func (l *ExamLayout) PartOf(q int) int {
	for _, p := range l.Parts {
		if p.Contains(q) {
			return p.Part
		}
	}
	return 0
}

// ValidQuestion reports whether q is a question number of this exam.
func (l *ExamLayout) ValidQuestion(q int) bool {
	return q >= 1 && q <= l.TotalQuestions
}

// CheckContiguous verifies that parts are numbered 1..n in order and tile
// 1..TotalQuestions without gaps or overlaps.
func (l *ExamLayout) CheckContiguous() error {
	next := 1
	for i, p := range l.Parts {
		if p.Part != i+1 {
			return fmt.Errorf("part %d is out of order at position %d", p.Part, i+1)
		}
		if p.Start != next {
			return fmt.Errorf("part %d starts at %d, expected %d", p.Part, p.Start, next)
		}
		if p.End < p.Start {
			return fmt.Errorf("part %d ends before it starts", p.Part)
		}
		next = p.End + 1
	}
	if next-1 != l.TotalQuestions {
		return fmt.Errorf("parts cover 1..%d, exam has %d questions", next-1, l.TotalQuestions)
	}
	return nil
}
