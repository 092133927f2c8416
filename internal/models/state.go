package models

// ExamState is the body of GET /get_exam_state/{attempt_id}. Every field is optional.
type ExamState struct {
	Answers        map[string]string `json:"answers,omitempty"`
	TimeRemaining  *int              `json:"time_remaining,omitempty"`
	AnsweredCount  *int              `json:"answered_count,omitempty"`
	TotalQuestions *int              `json:"total_questions,omitempty"`
	Status         string            `json:"status,omitempty"`
}

// Attempt statuses reported by the exam server.
const (
	AttemptInProgress    = "in_progress"
	AttemptCompleted     = "completed"
	AttemptAutoSubmitted = "auto_submitted"
)

// ExamMode controls audio replay policy.
type ExamMode string

const (
	ModePractice ExamMode = "practice"
	ModeExam     ExamMode = "exam"
)
