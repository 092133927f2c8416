// Package media provides the audio players used by the audio controller.
package media

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gabriel-vasile/mimetype"
)

// MaxTrackSize caps the bytes read from one audio asset.
const MaxTrackSize = 64 << 20

var (
	ErrNotAudio      = errors.New("asset is not audio")
	ErrUnsupported   = errors.New("audio format not supported")
	ErrTrackNotFound = errors.New("audio asset not found")
)

// Track plays one remote audio asset. Position is kept by wall clock while
// playing; the decoded stream is not rendered anywhere.
type Track struct {
	url    string
	client *http.Client
	caps   *Capabilities
	now    func() time.Time

	mu        sync.Mutex
	loaded    bool
	mime      string
	size      int
	playing   bool
	startedAt time.Time
	offset    time.Duration
}

type TrackOption func(*Track)

func WithHTTPClient(c *http.Client) TrackOption {
	return func(t *Track) { t.client = c }
}

func WithCapabilities(c *Capabilities) TrackOption {
	return func(t *Track) { t.caps = c }
}

func withClock(now func() time.Time) TrackOption {
	return func(t *Track) { t.now = now }
}

func NewTrack(url string, opts ...TrackOption) *Track {
	t := &Track{
		url:    url,
		client: http.DefaultClient,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// QuestionTrackURL is where the audio of a question lives under base.
func QuestionTrackURL(base string, question int) string {
	return strings.TrimRight(base, "/") + "/question_" + strconv.Itoa(question) + ".mp3"
}

// SampleTrackURL is the home page sample track under base.
func SampleTrackURL(base string) string {
	return strings.TrimRight(base, "/") + "/sample.mp3"
}

func (t *Track) URL() string { return t.url }

// Load fetches the asset and checks that it is playable audio.
func (t *Track) Load(ctx context.Context) error {
	t.mu.Lock()
	if t.loaded {
		t.mu.Unlock()
		return nil
	}
	t.mu.Unlock()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, t.url, nil)
	if err != nil {
		return fmt.Errorf("load %s: %w", t.url, err)
	}
	res, err := t.client.Do(req)
	if err != nil {
		return fmt.Errorf("load %s: %w", t.url, err)
	}
	defer res.Body.Close()

	if res.StatusCode == http.StatusNotFound {
		return fmt.Errorf("load %s: %w", t.url, ErrTrackNotFound)
	}
	if res.StatusCode/100 != 2 {
		return fmt.Errorf("load %s: %s", t.url, res.Status)
	}

	body, err := io.ReadAll(io.LimitReader(res.Body, MaxTrackSize))
	if err != nil {
		return fmt.Errorf("load %s: %w", t.url, err)
	}

	mtype := mimetype.Detect(body)
	if !isAudio(mtype) {
		return fmt.Errorf("load %s: %w: %s", t.url, ErrNotAudio, mtype.String())
	}
	if t.caps != nil && !t.caps.CanPlayType(mtype.String()) {
		return fmt.Errorf("load %s: %w: %s", t.url, ErrUnsupported, mtype.String())
	}

	t.mu.Lock()
	t.loaded = true
	t.mime = mtype.String()
	t.size = len(body)
	t.mu.Unlock()
	return nil
}

// Play loads the track if needed and resumes from the current position.
func (t *Track) Play(ctx context.Context) error {
	if err := t.Load(ctx); err != nil {
		return err
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.playing {
		t.playing = true
		t.startedAt = t.now()
	}
	return nil
}

func (t *Track) Pause() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.playing {
		t.offset += t.now().Sub(t.startedAt)
		t.playing = false
	}
}

func (t *Track) Rewind() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.offset = 0
	if t.playing {
		t.startedAt = t.now()
	}
}

func (t *Track) Paused() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return !t.playing
}

func (t *Track) Position() time.Duration {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.playing {
		return t.offset + t.now().Sub(t.startedAt)
	}
	return t.offset
}

// MIME returns the detected media type, empty until loaded.
func (t *Track) MIME() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.mime
}

func (t *Track) Size() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.size
}

func isAudio(m *mimetype.MIME) bool {
	for ; m != nil; m = m.Parent() {
		if strings.HasPrefix(m.String(), "audio/") {
			return true
		}
	}
	return false
}
