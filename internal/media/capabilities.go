package media

import (
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

// Capabilities lists the media types this client can decode.
type Capabilities struct {
	formats map[string]bool
}

func NewCapabilities(formats []string) *Capabilities {
	c := &Capabilities{formats: make(map[string]bool, len(formats))}
	for _, f := range formats {
		c.formats[canonical(f)] = true
	}
	return c
}

// CanPlayType resolves aliases such as audio/mp3 before matching.
func (c *Capabilities) CanPlayType(mimeType string) bool {
	return c.formats[canonical(mimeType)]
}

func canonical(mimeType string) string {
	t := strings.ToLower(strings.TrimSpace(mimeType))
	if i := strings.IndexByte(t, ';'); i >= 0 {
		t = strings.TrimSpace(t[:i])
	}
	if m := mimetype.Lookup(t); m != nil {
		return m.String()
	}
	return t
}
