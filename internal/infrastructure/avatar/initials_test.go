package avatar

import (
	"net/url"
	"strings"
	"testing"
)

func TestInitials(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "single word", in: "ann", want: "A"},
		{name: "two words", in: "ann lee", want: "AL"},
		{name: "three words uses first two", in: "ann marie lee", want: "AM"},
		{name: "underscore separated", in: "video_fan", want: "VF"},
		{name: "leading symbols skipped", in: "@ann", want: "A"},
		{name: "unicode", in: "émile zola", want: "ÉZ"},
		{name: "empty", in: "", want: "?"},
		{name: "only symbols", in: "!!!", want: "?"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Initials(tt.in); got != tt.want {
				t.Errorf("Initials(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestGenerator_InitialsURL(t *testing.T) {
	g := NewGenerator("http://localhost:8080/v1/", "aora")

	raw := g.InitialsURL("ann lee")

	u, err := url.Parse(raw)
	if err != nil {
		t.Fatalf("invalid url %q: %v", raw, err)
	}
	if u.Path != "/v1/avatars/initials" {
		t.Errorf("path = %q", u.Path)
	}
	if u.Query().Get("name") != "ann lee" {
		t.Errorf("name = %q", u.Query().Get("name"))
	}
	if u.Query().Get("project") != "aora" {
		t.Errorf("project = %q", u.Query().Get("project"))
	}

	if raw != g.InitialsURL("ann lee") {
		t.Error("InitialsURL is not deterministic")
	}
}

func TestColor_Stable(t *testing.T) {
	if Color("Ann") != Color("ann") {
		t.Error("color should ignore case")
	}
}

func TestSVG(t *testing.T) {
	svg := string(SVG("ann <lee>", 64))

	if !strings.HasPrefix(svg, "<svg") || !strings.HasSuffix(svg, "</svg>") {
		t.Fatalf("not an svg document: %s", svg)
	}
	if !strings.Contains(svg, `width="64"`) {
		t.Errorf("size not applied: %s", svg)
	}
	if !strings.Contains(svg, ">AL</text>") {
		t.Errorf("initials missing: %s", svg)
	}

	if !strings.Contains(string(SVG("ann", 0)), `width="100"`) {
		t.Error("invalid size should fall back to default")
	}
}
