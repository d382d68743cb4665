// Copyright © 2026 ソニーレベル <C7kali3@gmail.com>
// Scaffold fragment matchers

package sanitize

import (
	"regexp"
)

// Matcher finds and removes one kind of scaffold fragment
type Matcher interface {
	Name() string
	// Remove returns content with every occurrence removed and the count removed
	Remove(content []byte) ([]byte, int)
}

// TagRegion matches a complete tagged region, from an exact opening tag to the
// first following closing tag, across lines. The opening tag is compared
// literally, so attribute order and spacing must match the exporter output.
type TagRegion struct {
	name string
	re   *regexp.Regexp
}

// NewTagRegion builds a matcher for open ... close
func NewTagRegion(name, open, close string) *TagRegion {
	pattern := `(?s)` + regexp.QuoteMeta(open) + `.*?` + regexp.QuoteMeta(close)
	return &TagRegion{
		name: name,
		re:   regexp.MustCompile(pattern),
	}
}

func (m *TagRegion) Name() string { return m.name }

func (m *TagRegion) Remove(content []byte) ([]byte, int) {
	matches := m.re.FindAllIndex(content, -1)
	if len(matches) == 0 {
		return content, 0
	}
	return m.re.ReplaceAllLiteral(content, nil), len(matches)
}

// Fragment names
const (
	FragmentPlaceholderGeometry = "placeholder-geometry"
	FragmentPlaceholderNode     = "placeholder-node"
	FragmentCameraLibrary       = "camera-library"
	FragmentCameraNode          = "camera-node"
	FragmentLightLibrary        = "light-library"
	FragmentLightNode           = "light-node"
)

// DefaultMatchers returns the scaffold a fresh Blender scene carries into a
// Collada export: the default cube, camera and light.
func DefaultMatchers() []Matcher {
	return []Matcher{
		NewTagRegion(FragmentPlaceholderGeometry, `<geometry id="Cube-mesh" name="Cube">`, `</geometry>`),
		NewTagRegion(FragmentPlaceholderNode, `<node id="Cube" name="Cube" type="NODE">`, `</node>`),
		NewTagRegion(FragmentCameraLibrary, `<library_cameras>`, `</library_cameras>`),
		NewTagRegion(FragmentCameraNode, `<node id="Camera" name="Camera" type="NODE">`, `</node>`),
		NewTagRegion(FragmentLightLibrary, `<library_lights>`, `</library_lights>`),
		NewTagRegion(FragmentLightNode, `<node id="Light" name="Light" type="NODE">`, `</node>`),
	}
}
