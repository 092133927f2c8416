package models

import (
	"math"
	"sort"
	"strconv"
)

// SelectionSource identifies which UI surface produced an answer selection.
type SelectionSource string

const (
	SourceContent SelectionSource = "content" // inline radio next to the question
	SourceSheet   SelectionSource = "sheet"   // answer-sheet button grid
	SourceServer  SelectionSource = "server"  // restored from saved exam state
)

// AnswerMap maps question number to the selected choice.
type AnswerMap map[int]string

// Clone returns a copy of the map.
func (m AnswerMap) Clone() AnswerMap {
	out := make(AnswerMap, len(m))
	for q, a := range m {
		out[q] = a
	}
	return out
}

// Questions returns the answered question numbers in ascending order.
func (m AnswerMap) Questions() []int {
	qs := make([]int, 0, len(m))
	for q := range m {
		qs = append(qs, q)
	}
	sort.Ints(qs)
	return qs
}

// Wire converts the map to the string-keyed form used in JSON payloads.
func (m AnswerMap) Wire() map[string]string {
	out := make(map[string]string, len(m))
	for q, a := range m {
		out[strconv.Itoa(q)] = a
	}
	return out
}

// AnswerMapFromWire parses a string-keyed answer map. Keys that are not
// question numbers and empty answers are skipped.
func AnswerMapFromWire(raw map[string]string) AnswerMap {
	out := make(AnswerMap, len(raw))
	for k, a := range raw {
		q, err := strconv.Atoi(k)
		if err != nil || a == "" {
			continue
		}
		out[q] = a
	}
	return out
}

// Progress describes how much of the exam has been answered.
type Progress struct {
	Answered int    `json:"answered"`
	Total    int    `json:"total"`
	Percent  int    `json:"percent"`
	Text     string `json:"text"`
}

// NewProgress computes round(100 * answered / total).
func NewProgress(answered, total int) Progress {
	pct := 0
	if total > 0 {
		pct = int(math.Round(float64(answered) / float64(total) * 100))
	}
	return Progress{
		Answered: answered,
		Total:    total,
		Percent:  pct,
		Text:     strconv.Itoa(answered) + "/" + strconv.Itoa(total) + " (" + strconv.Itoa(pct) + "%)",
	}
}
