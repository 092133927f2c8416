package page

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SAP-F-2025/exam-session-client/internal/models"
	"github.com/SAP-F-2025/exam-session-client/internal/services"
)

var _ services.View = (*Page)(nil)

func TestPage_SnapshotUsesElementIDs(t *testing.T) {
	p := New()
	p.SetTimer("00:14:59", models.ColorWarning)
	p.SetProgress(models.NewProgress(1, 200))
	p.ShowPart(1, true)
	p.ShowPart(2, false)
	p.SetNavigator("Part I", true, false)
	p.SetContentChoice(5, "B")
	p.SetSheetChoice(5, "B")
	p.MarkBubbleAnswered(5)
	p.SetCurrentQuestion(5)
	p.SetAudioButton(5, models.AudioButtonReady)

	s := p.Snapshot()
	assert.Equal(t, TimerView{Text: "00:14:59", Color: models.ColorWarning}, s.Timer)
	assert.Equal(t, "1/200 (1%)", s.ProgressText)
	assert.Equal(t, 1, s.ProgressBar)
	assert.True(t, s.Parts["part-1"])
	assert.False(t, s.Parts["part-2"])
	assert.True(t, s.Tabs["tab-part-1"])
	assert.True(t, s.BubbleGroups["bubbles-part-1"])
	assert.Equal(t, "Part I", s.NavigatorTitle)
	assert.True(t, s.PrevPartBtn.Disabled)
	assert.False(t, s.NextPartBtn.Disabled)

	q := s.Questions["question-5"]
	assert.Equal(t, "B", q.Checked)
	assert.Equal(t, "B", q.Sheet)
	require.NotNil(t, q.Audio)
	assert.Equal(t, models.AudioButtonReady, *q.Audio)
	assert.Equal(t, BubbleView{Answered: true, Current: true}, s.Bubbles["bubble-5"])

	raw, err := json.Marshal(s)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"question-5"`)
	assert.Contains(t, string(raw), `"navigatorTitle":"Part I"`)
}

func TestPage_VersionAndChanged(t *testing.T) {
	p := New()
	ch := p.Changed()
	v := p.Version()

	p.DisableControls()

	select {
	case <-ch:
	default:
		t.Fatal("expected change notification")
	}
	assert.Equal(t, v+1, p.Version())
	assert.True(t, p.ControlsDisabled())
	assert.True(t, p.Snapshot().ControlsDisabled)
}

func TestPage_NoticeTTL(t *testing.T) {
	p := New()
	p.ShowNotice(models.Notice{ID: "saveIndicator", Level: models.NoticeSuccess, Message: "Saved", TTL: 20 * time.Millisecond})
	p.ShowNotice(models.Notice{ID: "timeExpired", Level: models.NoticeDanger, Message: "Time Expired", Blocking: true})

	_, ok := p.Notice("saveIndicator")
	assert.True(t, ok)
	assert.Len(t, p.Snapshot().Notices, 2)

	assert.Eventually(t, func() bool {
		_, ok := p.Notice("saveIndicator")
		return !ok
	}, time.Second, 5*time.Millisecond)

	_, ok = p.Notice("timeExpired")
	assert.True(t, ok)
}

func TestPage_NoticeReshownKeepsNewTTL(t *testing.T) {
	p := New()
	p.ShowNotice(models.Notice{ID: "saveIndicator", Message: "Saved", TTL: 20 * time.Millisecond})
	p.ShowNotice(models.Notice{ID: "saveIndicator", Message: "Saved", TTL: time.Hour})

	time.Sleep(60 * time.Millisecond)
	_, ok := p.Notice("saveIndicator")
	assert.True(t, ok)

	p.DismissNotice("saveIndicator")
	_, ok = p.Notice("saveIndicator")
	assert.False(t, ok)
}

func TestPage_ToneSink(t *testing.T) {
	p := New()
	var got []models.Tone
	p.OnTone(func(tone models.Tone) { got = append(got, tone) })

	p.PlayTone(models.WarningTone)

	assert.Equal(t, []models.Tone{models.WarningTone}, got)
	assert.Equal(t, 1, p.Snapshot().Tones)
}

func TestPage_CountersAndSample(t *testing.T) {
	p := New()
	s := p.Snapshot()
	assert.Nil(t, s.AutoSubmitCountdown)
	assert.Nil(t, s.UnansweredCount)
	assert.Equal(t, models.SampleLabelPlay, s.SampleAudio.Label)

	p.SetAutoSubmitCountdown(3)
	p.SetUnansweredCount(198)
	p.SetSampleButton(models.SampleLabelStop, true)

	s = p.Snapshot()
	require.NotNil(t, s.AutoSubmitCountdown)
	assert.Equal(t, 3, *s.AutoSubmitCountdown)
	require.NotNil(t, s.UnansweredCount)
	assert.Equal(t, 198, *s.UnansweredCount)
	assert.Equal(t, SampleView{Label: models.SampleLabelStop, Playing: true}, s.SampleAudio)
}
