// Package avatar renders initials avatars and the URLs that point at them.
package avatar

import (
	"fmt"
	"hash/fnv"
	"html"
	"net/url"
	"strings"
	"unicode"

	"github.com/hszk-dev/aora/internal/domain/repository"
)

// InitialsPath is the route that serves initials images, relative to the platform endpoint.
const InitialsPath = "/avatars/initials"

const (
	DefaultSize = 100
	MaxSize     = 2000
)

var palette = []string{
	"#FF9C00", "#FF6A4D", "#F0436F", "#C044D8",
	"#7B61FF", "#3C8CFF", "#1DB5B5", "#2FBF71",
}

// Generator builds initials avatar URLs for a platform endpoint.
type Generator struct {
	endpoint  string
	projectID string
}

// NewGenerator creates a Generator. endpoint is the platform base URL, e.g. http://host/v1.
func NewGenerator(endpoint, projectID string) *Generator {
	return &Generator{
		endpoint:  strings.TrimRight(endpoint, "/"),
		projectID: projectID,
	}
}

// InitialsURL returns the URL of the initials image for name.
func (g *Generator) InitialsURL(name string) string {
	q := url.Values{}
	q.Set("name", name)
	if g.projectID != "" {
		q.Set("project", g.projectID)
	}
	return g.endpoint + InitialsPath + "?" + q.Encode()
}

// Initials returns up to two upper-case letters taken from the first two words of name.
func Initials(name string) string {
	var out []rune
	for _, word := range strings.FieldsFunc(name, isSeparator) {
		for _, r := range word {
			if unicode.IsLetter(r) || unicode.IsDigit(r) {
				out = append(out, unicode.ToUpper(r))
				break
			}
		}
		if len(out) == 2 {
			break
		}
	}
	if len(out) == 0 {
		return "?"
	}
	return string(out)
}

func isSeparator(r rune) bool {
	return unicode.IsSpace(r) || r == '_' || r == '-' || r == '.'
}

// Color picks a stable background color for name.
func Color(name string) string {
	h := fnv.New32a()
	_, _ = h.Write([]byte(strings.ToLower(name)))
	return palette[h.Sum32()%uint32(len(palette))]
}

// SVG renders a square initials image. Sizes outside 1..MaxSize fall back to DefaultSize.
func SVG(name string, size int) []byte {
	if size < 1 || size > MaxSize {
		size = DefaultSize
	}
	half := size / 2
	fontSize := size * 2 / 5

	return []byte(fmt.Sprintf(
		`<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">`+
			`<rect width="%d" height="%d" fill="%s"/>`+
			`<text x="%d" y="%d" dy=".35em" text-anchor="middle" font-family="sans-serif" font-size="%d" fill="#FFFFFF">%s</text>`+
			`</svg>`,
		size, size, size, size,
		size, size, Color(name),
		half, half, fontSize, html.EscapeString(Initials(name)),
	))
}

var _ repository.Avatars = (*Generator)(nil)
