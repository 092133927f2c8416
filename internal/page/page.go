// Package page holds the rendered state of the exam page. It implements
// services.View and keeps the element ids of the page markup as snapshot keys
// so a thin front-end can bind to them directly.
package page

import (
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/SAP-F-2025/exam-session-client/internal/models"
)

func QuestionID(n int) string    { return "question-" + strconv.Itoa(n) }
func BubbleID(n int) string      { return "bubble-" + strconv.Itoa(n) }
func PartID(n int) string        { return "part-" + strconv.Itoa(n) }
func TabID(n int) string         { return "tab-part-" + strconv.Itoa(n) }
func BubblesPartID(n int) string { return "bubbles-part-" + strconv.Itoa(n) }

type TimerView struct {
	Text  string `json:"text"`
	Color string `json:"color"`
}

type ButtonView struct {
	Disabled bool `json:"disabled"`
}

type BubbleView struct {
	Answered bool `json:"answered"`
	Current  bool `json:"current"`
}

type QuestionView struct {
	// Checked is the value of the checked inline radio.
	Checked string `json:"checked,omitempty"`
	// Sheet is the answer-sheet button shown as selected.
	Sheet string              `json:"sheet,omitempty"`
	Audio *models.AudioButton `json:"audio,omitempty"`
}

type SampleView struct {
	Label   string `json:"label"`
	Playing bool   `json:"playing"`
}

// Snapshot is the whole page at one version.
type Snapshot struct {
	Version             uint64                  `json:"version"`
	Timer               TimerView               `json:"timer"`
	AutoSubmitCountdown *int                    `json:"autoSubmitCountdown,omitempty"`
	ProgressText        string                  `json:"progressText"`
	ProgressBar         int                     `json:"progressBar"`
	NavigatorTitle      string                  `json:"navigatorTitle"`
	PrevPartBtn         ButtonView              `json:"prevPartBtn"`
	NextPartBtn         ButtonView              `json:"nextPartBtn"`
	Parts               map[string]bool         `json:"parts"`
	Tabs                map[string]bool         `json:"tabs"`
	BubbleGroups        map[string]bool         `json:"bubbleGroups"`
	Questions           map[string]QuestionView `json:"questions"`
	Bubbles             map[string]BubbleView   `json:"bubbles"`
	UnansweredCount     *int                    `json:"unansweredCount,omitempty"`
	SampleAudio         SampleView              `json:"sampleAudio"`
	Notices             []models.Notice         `json:"notices"`
	ControlsDisabled    bool                    `json:"controlsDisabled"`
	Tones               int                     `json:"tones"`
}

type noticeEntry struct {
	notice models.Notice
	seq    uint64
	shown  time.Time
}

// Page is an in-memory exam page. The zero value is not usable; call New.
type Page struct {
	mu      sync.RWMutex
	version uint64
	changed chan struct{}

	timer      TimerView
	countdown  *int
	progress   models.Progress
	navigator  string
	prevBtn    ButtonView
	nextBtn    ButtonView
	parts      map[int]bool
	current    int
	content    map[int]string
	sheet      map[int]string
	answered   map[int]bool
	unanswered *int
	audio      map[int]models.AudioButton
	sample     SampleView
	notices    map[string]noticeEntry
	noticeSeq  uint64
	disabled   bool
	tones      int
	onTone     func(models.Tone)
}

func New() *Page {
	return &Page{
		changed:  make(chan struct{}),
		parts:    make(map[int]bool),
		content:  make(map[int]string),
		sheet:    make(map[int]string),
		answered: make(map[int]bool),
		audio:    make(map[int]models.AudioButton),
		notices:  make(map[string]noticeEntry),
		sample:   SampleView{Label: models.SampleLabelPlay},
	}
}

// OnTone registers a sink for audible signals, e.g. a terminal bell.
func (p *Page) OnTone(fn func(models.Tone)) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.onTone = fn
}

// Changed returns a channel closed at the next mutation.
func (p *Page) Changed() <-chan struct{} {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.changed
}

func (p *Page) Version() uint64 {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.version
}

func (p *Page) touchLocked() {
	p.version++
	close(p.changed)
	p.changed = make(chan struct{})
}

func (p *Page) update(fn func()) {
	p.mu.Lock()
	defer p.mu.Unlock()
	fn()
	p.touchLocked()
}

func (p *Page) SetTimer(display, color string) {
	p.update(func() { p.timer = TimerView{Text: display, Color: color} })
}

func (p *Page) SetAutoSubmitCountdown(seconds int) {
	p.update(func() { p.countdown = &seconds })
}

// ShowNotice adds or replaces the notice with the same id. Notices with a TTL
// are removed when it elapses unless they were shown again meanwhile.
func (p *Page) ShowNotice(n models.Notice) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.noticeSeq++
	seq := p.noticeSeq
	p.notices[n.ID] = noticeEntry{notice: n, seq: seq, shown: time.Now()}
	p.touchLocked()

	if n.TTL > 0 {
		time.AfterFunc(n.TTL, func() {
			p.mu.Lock()
			defer p.mu.Unlock()
			if e, ok := p.notices[n.ID]; ok && e.seq == seq {
				delete(p.notices, n.ID)
				p.touchLocked()
			}
		})
	}
}

func (p *Page) DismissNotice(id string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if _, ok := p.notices[id]; ok {
		delete(p.notices, id)
		p.touchLocked()
	}
}

func (p *Page) PlayTone(tone models.Tone) {
	p.mu.Lock()
	p.tones++
	sink := p.onTone
	p.touchLocked()
	p.mu.Unlock()

	if sink != nil {
		sink(tone)
	}
}

func (p *Page) DisableControls() {
	p.update(func() { p.disabled = true })
}

func (p *Page) SetContentChoice(question int, answer string) {
	p.update(func() { p.content[question] = answer })
}

func (p *Page) SetSheetChoice(question int, answer string) {
	p.update(func() { p.sheet[question] = answer })
}

func (p *Page) MarkBubbleAnswered(question int) {
	p.update(func() { p.answered[question] = true })
}

func (p *Page) SetCurrentQuestion(question int) {
	p.update(func() { p.current = question })
}

func (p *Page) SetProgress(progress models.Progress) {
	p.update(func() { p.progress = progress })
}

func (p *Page) ShowPart(part int, visible bool) {
	p.update(func() { p.parts[part] = visible })
}

func (p *Page) SetNavigator(title string, prevDisabled, nextDisabled bool) {
	p.update(func() {
		p.navigator = title
		p.prevBtn = ButtonView{Disabled: prevDisabled}
		p.nextBtn = ButtonView{Disabled: nextDisabled}
	})
}

func (p *Page) SetUnansweredCount(count int) {
	p.update(func() { p.unanswered = &count })
}

func (p *Page) SetAudioButton(question int, button models.AudioButton) {
	p.update(func() { p.audio[question] = button })
}

func (p *Page) SetSampleButton(label string, playing bool) {
	p.update(func() { p.sample = SampleView{Label: label, Playing: playing} })
}

// Snapshot copies the page.
func (p *Page) Snapshot() Snapshot {
	p.mu.RLock()
	defer p.mu.RUnlock()

	s := Snapshot{
		Version:          p.version,
		Timer:            p.timer,
		ProgressText:     p.progress.Text,
		ProgressBar:      p.progress.Percent,
		NavigatorTitle:   p.navigator,
		PrevPartBtn:      p.prevBtn,
		NextPartBtn:      p.nextBtn,
		Parts:            make(map[string]bool, len(p.parts)),
		Tabs:             make(map[string]bool, len(p.parts)),
		BubbleGroups:     make(map[string]bool, len(p.parts)),
		Questions:        make(map[string]QuestionView),
		Bubbles:          make(map[string]BubbleView),
		SampleAudio:      p.sample,
		ControlsDisabled: p.disabled,
		Tones:            p.tones,
	}
	if p.countdown != nil {
		n := *p.countdown
		s.AutoSubmitCountdown = &n
	}
	if p.unanswered != nil {
		n := *p.unanswered
		s.UnansweredCount = &n
	}
	for part, visible := range p.parts {
		s.Parts[PartID(part)] = visible
		s.Tabs[TabID(part)] = visible
		s.BubbleGroups[BubblesPartID(part)] = visible
	}

	question := func(q int) QuestionView {
		return s.Questions[QuestionID(q)]
	}
	for q, a := range p.content {
		v := question(q)
		v.Checked = a
		s.Questions[QuestionID(q)] = v
	}
	for q, a := range p.sheet {
		v := question(q)
		v.Sheet = a
		s.Questions[QuestionID(q)] = v
	}
	for q, b := range p.audio {
		v := question(q)
		button := b
		v.Audio = &button
		s.Questions[QuestionID(q)] = v
	}

	for q := range p.answered {
		s.Bubbles[BubbleID(q)] = BubbleView{Answered: true}
	}
	if p.current > 0 {
		b := s.Bubbles[BubbleID(p.current)]
		b.Current = true
		s.Bubbles[BubbleID(p.current)] = b
	}

	entries := make([]noticeEntry, 0, len(p.notices))
	for _, e := range p.notices {
		entries = append(entries, e)
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].seq < entries[j].seq })
	s.Notices = make([]models.Notice, 0, len(entries))
	for _, e := range entries {
		s.Notices = append(s.Notices, e.notice)
	}
	return s
}

// Question returns the inline and sheet selections of one question.
func (p *Page) Question(q int) (checked, sheet string) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.content[q], p.sheet[q]
}

// Notice returns the visible notice with the given id.
func (p *Page) Notice(id string) (models.Notice, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	e, ok := p.notices[id]
	return e.notice, ok
}

// ControlsDisabled reports whether the form has been disabled.
func (p *Page) ControlsDisabled() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.disabled
}
