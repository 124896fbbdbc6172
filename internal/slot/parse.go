package slot

import (
	"strings"

	"gopkg.in/yaml.v3"
)

type NodeKind int

const (
	TextNode NodeKind = iota
	SlotNode
)

// Node is one piece of a parsed body: either literal markdown or a slot
// marker with its props and children.
type Node struct {
	Kind     NodeKind
	Text     string
	Name     string
	Props    Props
	Children []Node
}

// Parse splits an MDX-like body into text and slot nodes. Slot markers are
// JSX-style elements whose name starts with an upper-case letter:
//
//	<Hero />
//	<FeatureGrid className="mt-8" columns={3} />
//	<Comparison>| a | <Check /> |</Comparison>
//
// Markers inside code spans and fenced code blocks are left alone, and a
// marker that cannot be parsed is kept as literal text. Parse never fails.
func Parse(body string) []Node {
	p := &parser{src: body}
	nodes, _ := p.parseUntil("")
	return nodes
}

type parser struct {
	src string
	pos int
}

// parseUntil consumes nodes until the closing tag of name (when name is set)
// or the end of input. The bool reports whether the closing tag was found.
func (p *parser) parseUntil(name string) ([]Node, bool) {
	var nodes []Node
	var text strings.Builder

	flush := func() {
		if text.Len() > 0 {
			nodes = append(nodes, Node{Kind: TextNode, Text: text.String()})
			text.Reset()
		}
	}

	closing := ""
	if name != "" {
		closing = "</" + name + ">"
	}

	for p.pos < len(p.src) {
		rest := p.src[p.pos:]

		if closing != "" && strings.HasPrefix(rest, closing) {
			p.pos += len(closing)
			flush()
			return nodes, true
		}

		if p.atLineStart() {
			if end, ok := p.fencedBlockEnd(); ok {
				text.WriteString(p.src[p.pos:end])
				p.pos = end
				continue
			}
		}

		switch rest[0] {
		case '`':
			end := p.codeSpanEnd()
			text.WriteString(p.src[p.pos:end])
			p.pos = end
			continue
		case '<':
			start := p.pos
			tag, ok := p.parseTag()
			if !ok {
				p.pos = start + 1
				text.WriteByte('<')
				continue
			}
			if tag.selfClosing {
				flush()
				nodes = append(nodes, Node{Kind: SlotNode, Name: tag.name, Props: tag.props})
				continue
			}
			if !p.hasClosing(tag.name) {
				text.WriteString(p.src[start:p.pos])
				continue
			}
			flush()
			children, _ := p.parseUntil(tag.name)
			nodes = append(nodes, Node{Kind: SlotNode, Name: tag.name, Props: tag.props, Children: children})
			continue
		}

		text.WriteByte(rest[0])
		p.pos++
	}

	flush()
	return nodes, false
}

func (p *parser) atLineStart() bool {
	return p.pos == 0 || p.src[p.pos-1] == '\n'
}

// fencedBlockEnd returns the offset just past a fenced code block starting at
// the current line, including its closing fence line.
func (p *parser) fencedBlockEnd() (int, bool) {
	line := p.src[p.pos:]
	if i := strings.IndexByte(line, '\n'); i >= 0 {
		line = line[:i]
	}
	trimmed := strings.TrimLeft(line, " ")
	if len(line)-len(trimmed) > 3 {
		return 0, false
	}

	fence := fenceRun(trimmed)
	if fence == "" {
		return 0, false
	}

	offset := p.pos + len(line)
	for offset < len(p.src) {
		offset++ // newline
		next := p.src[offset:]
		if i := strings.IndexByte(next, '\n'); i >= 0 {
			next = next[:i]
		}
		if strings.HasPrefix(strings.TrimLeft(next, " "), fence) {
			return offset + len(next), true
		}
		offset += len(next)
	}
	return len(p.src), true
}

func fenceRun(line string) string {
	if len(line) < 3 || (line[0] != '`' && line[0] != '~') {
		return ""
	}
	n := 0
	for n < len(line) && line[n] == line[0] {
		n++
	}
	if n < 3 {
		return ""
	}
	return line[:n]
}

// codeSpanEnd returns the offset past a backtick code span starting at pos.
// An unmatched run of backticks is consumed as plain text.
func (p *parser) codeSpanEnd() int {
	n := 0
	for p.pos+n < len(p.src) && p.src[p.pos+n] == '`' {
		n++
	}
	run := p.src[p.pos : p.pos+n]
	if i := strings.Index(p.src[p.pos+n:], run); i >= 0 {
		return p.pos + n + i + n
	}
	return p.pos + n
}

// hasClosing reports whether </name> follows the current position with
// balanced nesting of same-named elements. Code spans and fenced blocks are
// skipped the same way parseUntil skips them.
func (p *parser) hasClosing(name string) bool {
	open, closing := "<"+name, "</"+name+">"
	depth := 1
	q := &parser{src: p.src, pos: p.pos}
	for q.pos < len(q.src) {
		rest := q.src[q.pos:]

		if strings.HasPrefix(rest, closing) {
			depth--
			if depth == 0 {
				return true
			}
			q.pos += len(closing)
			continue
		}

		if q.atLineStart() {
			if end, ok := q.fencedBlockEnd(); ok {
				q.pos = end
				continue
			}
		}

		switch {
		case rest[0] == '`':
			q.pos = q.codeSpanEnd()
		case strings.HasPrefix(rest, open) && len(rest) > len(open) && !isNameByte(rest[len(open)]):
			start := q.pos
			if t, ok := q.parseTag(); ok {
				if !t.selfClosing {
					depth++
				}
			} else {
				q.pos = start + 1
			}
		default:
			q.pos++
		}
	}
	return false
}

type tag struct {
	name        string
	props       Props
	selfClosing bool
}

// parseTag reads an opening or self-closing slot tag at pos. On success pos
// is left just past the tag.
func (p *parser) parseTag() (tag, bool) {
	i := p.pos + 1
	if i >= len(p.src) || p.src[i] < 'A' || p.src[i] > 'Z' {
		return tag{}, false
	}
	start := i
	for i < len(p.src) && isNameByte(p.src[i]) {
		i++
	}
	t := tag{name: p.src[start:i], props: Props{}}

	for {
		i = skipSpace(p.src, i)
		if i >= len(p.src) {
			return tag{}, false
		}
		switch {
		case strings.HasPrefix(p.src[i:], "/>"):
			t.selfClosing = true
			p.pos = i + 2
			return t, true
		case p.src[i] == '>':
			p.pos = i + 1
			return t, true
		}

		keyStart := i
		for i < len(p.src) && isAttrByte(p.src[i]) {
			i++
		}
		if i == keyStart {
			return tag{}, false
		}
		key := p.src[keyStart:i]

		j := skipSpace(p.src, i)
		if j >= len(p.src) || p.src[j] != '=' {
			t.props[key] = true
			continue
		}

		i = skipSpace(p.src, j+1)
		if i >= len(p.src) {
			return tag{}, false
		}
		value, end, ok := readValue(p.src, i)
		if !ok {
			return tag{}, false
		}
		t.props[key] = value
		i = end
	}
}

func readValue(src string, i int) (any, int, bool) {
	switch src[i] {
	case '"', '\'':
		end := strings.IndexByte(src[i+1:], src[i])
		if end < 0 {
			return nil, 0, false
		}
		return src[i+1 : i+1+end], i + end + 2, true
	case '{':
		end, ok := matchBrace(src, i)
		if !ok {
			return nil, 0, false
		}
		return decodeExpr(src[i+1 : end]), end + 1, true
	}
	return nil, 0, false
}

// matchBrace returns the index of the brace closing the one at i, skipping
// quoted strings.
func matchBrace(src string, i int) (int, bool) {
	depth := 0
	var quote byte
	for ; i < len(src); i++ {
		c := src[i]
		if quote != 0 {
			if c == '\\' {
				i++
			} else if c == quote {
				quote = 0
			}
			continue
		}
		switch c {
		case '"', '\'', '`':
			quote = c
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return i, true
			}
		}
	}
	return 0, false
}

// decodeExpr turns a {expression} attribute into a value. Literals (numbers,
// booleans, strings, arrays, objects) are decoded as YAML flow values, which
// covers JSON; anything else is kept as its source text.
func decodeExpr(expr string) any {
	expr = strings.TrimSpace(expr)
	if expr == "" {
		return ""
	}
	var v any
	if err := yaml.Unmarshal([]byte(expr), &v); err != nil {
		return expr
	}
	return v
}

func skipSpace(s string, i int) int {
	for i < len(s) && (s[i] == ' ' || s[i] == '\t' || s[i] == '\n' || s[i] == '\r') {
		i++
	}
	return i
}

func isNameByte(c byte) bool {
	return c >= 'A' && c <= 'Z' || c >= 'a' && c <= 'z' || c >= '0' && c <= '9' || c == '_'
}

func isAttrByte(c byte) bool {
	return isNameByte(c) || c == '-' || c == ':'
}
