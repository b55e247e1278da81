// Package program assembles device program source from a main kernel source
// and a set of named headers, some of which are generated at runtime.
package program

import (
	"fmt"
	"sort"
	"strings"

	"github.com/GPUOpen-LibrariesAndSDKs/RadeonProRender-Baikal-sub002/log"
)

// Default options passed to the device compiler.
const DefaultOptions = "-cl-mad-enable -cl-fast-relaxed-math -cl-std=CL1.2 -I ."

// Builder is implemented by devices that can compile program source.
type Builder interface {
	BuildProgram(source, options string) error
}

// Manager tracks program headers and a version counter that is bumped
// whenever a header changes.
type Manager struct {
	logger log.Logger

	// Options passed to the device compiler.
	Options string

	headers      map[string]string
	version      uint64
	builtVersion uint64
	built        bool
}

// Create a new program manager.
func NewManager() *Manager {
	return &Manager{
		logger:  log.New("program manager"),
		Options: DefaultOptions,
		headers: make(map[string]string),
	}
}

// Add or replace a header. It returns true if the header contents changed.
func (m *Manager) AddHeader(name, source string) bool {
	if prev, exists := m.headers[name]; exists && prev == source {
		return false
	}
	m.headers[name] = source
	m.version++
	m.logger.Debugf("updated header %q (%d bytes); program version %d", name, len(source), m.version)
	return true
}

// Get the contents of a header.
func (m *Manager) Header(name string) (string, bool) {
	src, ok := m.headers[name]
	return src, ok
}

// Get the header names in sorted order.
func (m *Manager) HeaderNames() []string {
	names := make([]string, 0, len(m.headers))
	for name := range m.headers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Get the current program version.
func (m *Manager) Version() uint64 {
	return m.version
}

// Check whether headers changed since the last successful build.
func (m *Manager) NeedsRebuild() bool {
	return !m.built || m.builtVersion != m.version
}

// Assemble the full program source. Known headers referenced by
// "#include <name>" directives are expanded in place, each at most once.
// Headers that are not referenced by the main source are prepended in
// sorted name order.
func (m *Manager) Source(main string) string {
	var buf strings.Builder
	included := make(map[string]bool)

	var referenced []string
	m.scanIncludes(main, map[string]bool{}, &referenced)
	refSet := make(map[string]bool, len(referenced))
	for _, name := range referenced {
		refSet[name] = true
	}

	for _, name := range m.HeaderNames() {
		if refSet[name] || included[name] {
			continue
		}
		included[name] = true
		m.expand(&buf, m.headers[name], included)
		buf.WriteString("\n")
	}
	m.expand(&buf, main, included)
	return buf.String()
}

// Compile the assembled program with the builder.
func (m *Manager) Build(builder Builder, main string) error {
	version := m.version
	if err := builder.BuildProgram(m.Source(main), m.Options); err != nil {
		return fmt.Errorf("program manager: build of version %d failed: %w", version, err)
	}
	m.builtVersion = version
	m.built = true
	m.logger.Noticef("built program version %d", version)
	return nil
}

func (m *Manager) expand(buf *strings.Builder, source string, included map[string]bool) {
	for _, line := range strings.SplitAfter(source, "\n") {
		name, ok := includeName(line)
		if !ok {
			buf.WriteString(line)
			continue
		}
		header, known := m.headers[name]
		if !known {
			// Left for the device compiler to resolve.
			buf.WriteString(line)
			continue
		}
		if included[name] {
			continue
		}
		included[name] = true
		m.expand(buf, header, included)
		if !strings.HasSuffix(header, "\n") {
			buf.WriteString("\n")
		}
	}
}

func (m *Manager) scanIncludes(source string, seen map[string]bool, out *[]string) {
	for _, line := range strings.SplitAfter(source, "\n") {
		name, ok := includeName(line)
		if !ok || seen[name] {
			continue
		}
		header, known := m.headers[name]
		if !known {
			continue
		}
		seen[name] = true
		*out = append(*out, name)
		m.scanIncludes(header, seen, out)
	}
}

// Parse an include directive of the form #include <name> or #include "name".
func includeName(line string) (string, bool) {
	line = strings.TrimSpace(line)
	if !strings.HasPrefix(line, "#include") {
		return "", false
	}
	rest := strings.TrimSpace(strings.TrimPrefix(line, "#include"))
	if len(rest) < 2 {
		return "", false
	}
	var closing byte
	switch rest[0] {
	case '<':
		closing = '>'
	case '"':
		closing = '"'
	default:
		return "", false
	}
	end := strings.IndexByte(rest[1:], closing)
	if end < 1 {
		return "", false
	}
	return rest[1 : 1+end], true
}
