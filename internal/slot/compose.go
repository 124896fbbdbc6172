package slot

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"strings"
	"unicode/utf8"

	"github.com/oklog/ulid/v2"
	"github.com/pkg/errors"
	"github.com/yakoovad/productsite/internal/model"
	"github.com/yakoovad/productsite/pkg/logger"
	"go.uber.org/zap"
)

const excerptLength = 150

// Composer binds parsed page bodies to the renderers of a registry.
type Composer struct {
	registry *Registry
	opts     Options
	tpl      *template.Template
}

func NewComposer(registry *Registry, opts Options) (*Composer, error) {
	tpl, err := parseTemplates()
	if err != nil {
		return nil, err
	}
	return &Composer{registry: registry, opts: opts, tpl: tpl}, nil
}

// Compose renders the page body. Every recognised marker is replaced by its
// renderer output; unknown markers are dropped.
func (c *Composer) Compose(ctx context.Context, page *model.Page) (template.HTML, error) {
	return c.render(ctx, Parse(page.Body), NewPageContext(page))
}

type navLink struct {
	NavItem
	Active bool
}

// RenderPage composes the body and wraps it in the product layout.
func (c *Composer) RenderPage(ctx context.Context, page *model.Page) ([]byte, error) {
	body, err := c.Compose(ctx, page)
	if err != nil {
		return nil, err
	}

	description := page.Description
	if description == "" {
		description = page.Excerpt
	}
	if description == "" {
		description = Excerpt(page.Body, excerptLength)
	}

	path := c.opts.PathPrefix + page.Slug
	nav := make([]navLink, 0, len(c.opts.Nav))
	for _, item := range c.opts.Nav {
		nav = append(nav, navLink{NavItem: item, Active: item.URL == path})
	}

	var buf bytes.Buffer
	err = c.tpl.ExecuteTemplate(&buf, "layout.html", map[string]any{
		"SEOTitle":    fmt.Sprintf("%s - %s", page.Title, c.opts.Brand),
		"Title":       page.Title,
		"Brand":       c.opts.Brand,
		"Description": description,
		"Image":       socialImage(page.Slug),
		"Nav":         nav,
		"Body":        body,
	})
	if err != nil {
		return nil, errors.Wrap(err, "execute layout")
	}
	return buf.Bytes(), nil
}

func (c *Composer) render(ctx context.Context, nodes []Node, page PageContext) (template.HTML, error) {
	l := logger.FromContext(ctx)

	var src strings.Builder
	var fills []template.HTML
	nonce := ulid.Make().String()

	for i, n := range nodes {
		if n.Kind == TextNode {
			src.WriteString(n.Text)
			continue
		}

		fn, ok := c.registry.Lookup(n.Name)
		if !ok {
			l.Debug("unknown slot omitted", zap.String("slot", n.Name), zap.String("slug", page.Slug))
			continue
		}

		var children template.HTML
		if len(n.Children) > 0 {
			var err error
			if children, err = c.render(ctx, n.Children, page); err != nil {
				return "", err
			}
		}

		out, err := fn(ctx, Input{Props: n.Props, Children: children, Page: page})
		if err != nil {
			return "", errors.Wrapf(err, "render slot %s", n.Name)
		}
		if out == "" {
			continue
		}

		key := placeholder(nonce, len(fills))
		if before := src.String(); ownLine(before, nodes, i) {
			key = "\n\n" + lineIndent(before) + key + "\n\n"
		}
		src.WriteString(key)
		fills = append(fills, out)
	}

	var buf bytes.Buffer
	if err := md.Convert([]byte(src.String()), &buf); err != nil {
		return "", errors.Wrap(err, "convert markdown")
	}

	html := buf.String()
	for i, fill := range fills {
		key := placeholder(nonce, i)
		if block := "<p>" + key + "</p>"; strings.Contains(html, block) {
			html = strings.Replace(html, block, string(fill), 1)
			continue
		}
		html = strings.Replace(html, key, string(fill), 1)
	}
	return template.HTML(html), nil
}

// ownLine reports whether the marker at nodes[i] sits alone on its line, in
// which case its output is a block rather than inline content.
func ownLine(before string, nodes []Node, i int) bool {
	if before != "" && !strings.HasSuffix(strings.TrimRight(before, " \t"), "\n") {
		return false
	}
	if i+1 >= len(nodes) {
		return true
	}
	next := nodes[i+1]
	if next.Kind != TextNode {
		return false
	}
	after := strings.TrimLeft(next.Text, " \t")
	return after == "" || after[0] == '\n' || after[0] == '\r'
}

// lineIndent returns the whitespace between the last newline of before and
// the marker, so a block marker stays inside an enclosing list item.
func lineIndent(before string) string {
	line := before[strings.LastIndexByte(before, '\n')+1:]
	if strings.TrimLeft(line, " \t") != "" {
		return ""
	}
	return line
}

// placeholder survives markdown conversion untouched. The nonce keeps
// authored text from colliding with it; the trailing marker keeps slot 1 from
// matching inside slot 10.
func placeholder(nonce string, i int) string {
	return fmt.Sprintf("SLOTPLACEHOLDER%sN%dEND", nonce, i)
}

// socialImage mirrors the per-product preview images under /images/product.
func socialImage(slug string) string {
	tail := slug
	if i := strings.LastIndexByte(slug, '/'); i >= 0 {
		tail = slug[i+1:]
	}
	return "/images/product/" + tail + ".png"
}

var excerptStrip = strings.NewReplacer("#", "", "*", "", "_", "", "`", "", ">", "", "|", " ")

// Excerpt returns up to n characters of the body's plain text, cut at a word
// boundary. Slot markers are skipped.
func Excerpt(body string, n int) string {
	var text strings.Builder
	for _, node := range Parse(body) {
		if node.Kind == TextNode {
			text.WriteString(node.Text)
			text.WriteByte(' ')
		}
	}

	plain := strings.Join(strings.Fields(excerptStrip.Replace(text.String())), " ")
	if utf8.RuneCountInString(plain) <= n {
		return plain
	}

	runes := []rune(plain)[:n]
	cut := string(runes)
	if i := strings.LastIndexByte(cut, ' '); i > 0 {
		cut = cut[:i]
	}
	return cut + "…"
}
