package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SAP-F-2025/exam-session-client/internal/events"
	"github.com/SAP-F-2025/exam-session-client/internal/models"
)

func TestExamController_Mount(t *testing.T) {
	h := newHarness(t)
	h.exam(time.Hour)

	s := h.page.Snapshot()
	assert.True(t, s.Parts["part-1"])
	for _, id := range []string{"part-2", "part-3", "part-7"} {
		assert.False(t, s.Parts[id], id)
	}
	assert.Equal(t, "Part I", s.NavigatorTitle)
	assert.True(t, s.PrevPartBtn.Disabled)
	assert.False(t, s.NextPartBtn.Disabled)
	assert.Equal(t, "0/200 (0%)", s.ProgressText)
	assert.True(t, s.Bubbles["bubble-1"].Current)
}

func TestExamController_HandleSelection(t *testing.T) {
	ctx := context.Background()

	t.Run("mirrors both surfaces", func(t *testing.T) {
		h := newHarness(t)
		c := h.exam(time.Hour)

		require.NoError(t, c.HandleSelection(ctx, 12, "C", models.SourceContent))
		require.NoError(t, c.HandleSelection(ctx, 13, "A", models.SourceSheet))

		for q, want := range map[int]string{12: "C", 13: "A"} {
			checked, sheet := h.page.Question(q)
			assert.Equal(t, want, checked)
			assert.Equal(t, want, sheet)
		}
		s := h.page.Snapshot()
		assert.True(t, s.Bubbles["bubble-12"].Answered)
		assert.True(t, s.Bubbles["bubble-13"].Answered)
		assert.Equal(t, "2/200 (1%)", s.ProgressText)
		assert.Equal(t, models.AnswerMap{12: "C", 13: "A"}, c.Answers())

		pending, err := h.journal.Pending(ctx, testAttemptID)
		require.NoError(t, err)
		assert.Equal(t, map[int]string{12: "C", 13: "A"}, pending)
		assert.Len(t, h.publisher.EventsOfType(events.EventAnswerSelected), 2)
	})

	t.Run("rejects bad input", func(t *testing.T) {
		h := newHarness(t)
		c := h.exam(time.Hour)

		assert.ErrorIs(t, c.HandleSelection(ctx, 0, "A", models.SourceContent), ErrQuestionOutOfRange)
		assert.ErrorIs(t, c.HandleSelection(ctx, 201, "A", models.SourceContent), ErrQuestionOutOfRange)
		assert.ErrorIs(t, c.HandleSelection(ctx, 5, "", models.SourceContent), ErrEmptyAnswer)
		assert.Empty(t, c.Answers())
	})

	t.Run("locked after submission", func(t *testing.T) {
		h := newHarness(t)
		c := h.exam(time.Hour)
		h.submitter.Lock()

		err := c.HandleSelection(ctx, 5, "A", models.SourceContent)
		assert.ErrorIs(t, err, ErrExamLocked)
		assert.True(t, IsLocked(err))
		assert.Empty(t, c.Answers())
	})
}

func TestExamController_DebouncedSavePerQuestion(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	c := h.exam(30 * time.Millisecond)

	require.NoError(t, c.HandleSelection(ctx, 1, "A", models.SourceContent))
	require.NoError(t, c.HandleSelection(ctx, 2, "D", models.SourceSheet))
	require.NoError(t, c.HandleSelection(ctx, 1, "B", models.SourceSheet))

	assert.Eventually(t, func() bool {
		return len(h.api.Saves()) == 2
	}, time.Second, 5*time.Millisecond)
	time.Sleep(60 * time.Millisecond)

	assert.ElementsMatch(t, []savedAnswer{{1, "B"}, {2, "D"}}, h.api.Saves())

	pending, err := h.journal.Pending(ctx, testAttemptID)
	require.NoError(t, err)
	assert.Empty(t, pending)
	_, shown := h.page.Notice("saveIndicator")
	assert.True(t, shown)
	assert.Len(t, h.publisher.EventsOfType(events.EventAnswerSaved), 2)
}

func TestExamController_SaveFailureKeepsJournal(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	h.api.SetSaveErr(errors.New("connection refused"))
	c := h.exam(5 * time.Millisecond)

	require.NoError(t, c.HandleSelection(ctx, 3, "C", models.SourceContent))

	assert.Eventually(t, func() bool {
		_, shown := h.page.Notice("saveErrorIndicator")
		return shown
	}, time.Second, 5*time.Millisecond)
	assert.Eventually(t, func() bool {
		return len(h.publisher.EventsOfType(events.EventAnswerSaveFailed)) == 1
	}, time.Second, 5*time.Millisecond)

	pending, err := h.journal.Pending(ctx, testAttemptID)
	require.NoError(t, err)
	assert.Equal(t, map[int]string{3: "C"}, pending)

	// The next flush retries it.
	h.api.SetSaveErr(nil)
	c.Flush(ctx)
	assert.Equal(t, []savedAnswer{{3, "C"}}, h.api.Saves())
	pending, err = h.journal.Pending(ctx, testAttemptID)
	require.NoError(t, err)
	assert.Empty(t, pending)
}

func TestExamController_Flush(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	c := h.exam(time.Hour)

	require.NoError(t, c.HandleSelection(ctx, 150, "A", models.SourceContent))
	require.NoError(t, c.HandleSelection(ctx, 151, "B", models.SourceContent))
	assert.Empty(t, h.api.Saves())

	c.Flush(ctx)

	assert.Equal(t, []savedAnswer{{150, "A"}, {151, "B"}}, h.api.Saves())

	c.Flush(ctx)
	assert.Len(t, h.api.Saves(), 2)
}

func TestExamController_Progress(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	c := h.exam(time.Hour)

	for q := 1; q <= 3; q++ {
		require.NoError(t, c.HandleSelection(ctx, q, "A", models.SourceContent))
	}
	assert.Equal(t, models.Progress{Answered: 3, Total: 200, Percent: 2, Text: "3/200 (2%)"}, c.Progress())

	// Changing an answer does not count twice.
	require.NoError(t, c.HandleSelection(ctx, 2, "B", models.SourceSheet))
	assert.Equal(t, 3, c.AnsweredCount())
	assert.Equal(t, 197, c.SubmitConfirmation())
	require.NotNil(t, h.page.Snapshot().UnansweredCount)
	assert.Equal(t, 197, *h.page.Snapshot().UnansweredCount)
}

func TestExamController_Navigation(t *testing.T) {
	h := newHarness(t)
	c := h.exam(time.Hour)

	c.PrevPart()
	part, q := c.Position()
	assert.Equal(t, 1, part)
	assert.Equal(t, 1, q)

	c.NextPart()
	part, q = c.Position()
	assert.Equal(t, 2, part)
	assert.Equal(t, 11, q)
	s := h.page.Snapshot()
	assert.False(t, s.Parts["part-1"])
	assert.True(t, s.Parts["part-2"])
	assert.Equal(t, "Part II", s.NavigatorTitle)
	assert.False(t, s.PrevPartBtn.Disabled)

	require.NoError(t, c.SwitchToPart(7))
	c.NextPart()
	part, q = c.Position()
	assert.Equal(t, 7, part)
	assert.Equal(t, 153, q)
	assert.True(t, h.page.Snapshot().NextPartBtn.Disabled)

	assert.ErrorIs(t, c.SwitchToPart(8), ErrInvalidPart)
	assert.ErrorIs(t, c.SwitchToPart(0), ErrInvalidPart)

	require.NoError(t, c.GoToQuestion(45))
	part, q = c.Position()
	assert.Equal(t, 3, part)
	assert.Equal(t, 45, q)
	assert.True(t, h.page.Snapshot().Bubbles["bubble-45"].Current)

	require.NoError(t, c.ObserveQuestion(120))
	part, q = c.Position()
	assert.Equal(t, 3, part)
	assert.Equal(t, 120, q)

	assert.ErrorIs(t, c.GoToQuestion(201), ErrQuestionOutOfRange)
	assert.ErrorIs(t, c.ObserveQuestion(-1), ErrQuestionOutOfRange)
}

func TestExamController_LoadSavedAnswers(t *testing.T) {
	ctx := context.Background()

	t.Run("restores server answers", func(t *testing.T) {
		h := newHarness(t)
		h.api.state = &models.ExamState{
			Answers:       map[string]string{"1": "A", "2": "B", "999": "C", "x": "D", "3": ""},
			TimeRemaining: intPtr(1200),
			Status:        models.AttemptInProgress,
		}
		c := h.exam(time.Hour)

		state, err := c.LoadSavedAnswers(ctx)
		require.NoError(t, err)
		assert.Equal(t, 1200, *state.TimeRemaining)
		assert.Equal(t, models.AnswerMap{1: "A", 2: "B"}, c.Answers())
		checked, sheet := h.page.Question(2)
		assert.Equal(t, "B", checked)
		assert.Equal(t, "B", sheet)
		assert.Equal(t, "2/200 (1%)", h.page.Snapshot().ProgressText)
		assert.Empty(t, h.api.Saves())
	})

	t.Run("pending local edits win", func(t *testing.T) {
		h := newHarness(t)
		h.api.state = &models.ExamState{Answers: map[string]string{"1": "A", "2": "B"}}
		c := h.exam(time.Hour)

		require.NoError(t, c.HandleSelection(ctx, 1, "D", models.SourceContent))
		_, err := c.LoadSavedAnswers(ctx)
		require.NoError(t, err)

		assert.Equal(t, models.AnswerMap{1: "D", 2: "B"}, c.Answers())
	})

	t.Run("replays journal from an earlier run", func(t *testing.T) {
		h := newHarness(t)
		h.api.state = &models.ExamState{Answers: map[string]string{"1": "A", "2": "B"}}
		require.NoError(t, h.journal.Put(ctx, testAttemptID, 2, "C"))
		require.NoError(t, h.journal.Put(ctx, testAttemptID, 5, "D"))
		c := h.exam(5 * time.Millisecond)

		_, err := c.LoadSavedAnswers(ctx)
		require.NoError(t, err)
		assert.Equal(t, models.AnswerMap{1: "A", 2: "C", 5: "D"}, c.Answers())

		assert.Eventually(t, func() bool {
			return len(h.api.Saves()) == 2
		}, time.Second, 5*time.Millisecond)
		assert.ElementsMatch(t, []savedAnswer{{2, "C"}, {5, "D"}}, h.api.Saves())
	})

	t.Run("fetch error", func(t *testing.T) {
		h := newHarness(t)
		h.api.stateErr = errors.New("unauthorized")
		c := h.exam(time.Hour)

		state, err := c.LoadSavedAnswers(ctx)
		assert.Error(t, err)
		assert.Nil(t, state)
		assert.Empty(t, c.Answers())
	})
}
