package genai

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Prompt is a rendered instruction. Media holds the data URIs lifted out of
// {{media url=...}} tags, sent alongside the text as inline payloads.
type Prompt struct {
	Text  string
	Media []string
}

// Render substitutes input fields into tmpl. The grammar is a small
// handlebars subset:
//
//	{{field}} / {{{field}}}        literal substitution
//	{{#if field}}...{{/if}}        rendered only when field is present and non-empty
//	{{#each field}}...{{/each}}    one pass per element, bound to {{this}} / {{this.key}}
//	{{media url=field}}            lifts a data URI into Prompt.Media
//
// Missing fields substitute as empty text; a malformed template is an error.
func Render(tmpl string, input map[string]any) (*Prompt, error) {
	nodes, err := parseTemplate(tmpl)
	if err != nil {
		return nil, err
	}
	prompt := &Prompt{}
	var sb strings.Builder
	renderNodes(nodes, input, nil, &sb, prompt)
	prompt.Text = sb.String()
	return prompt, nil
}

type node any

type textNode struct{ text string }

type varNode struct{ path string }

type mediaNode struct{ field string }

type blockNode struct {
	kind  string // "if" or "each"
	field string
	body  []node
}

type parser struct {
	src string
	pos int
}

func parseTemplate(src string) ([]node, error) {
	p := &parser{src: src}
	nodes, closing, err := p.parseNodes()
	if err != nil {
		return nil, err
	}
	if closing != "" {
		return nil, fmt.Errorf("unexpected {{/%s}}", closing)
	}
	return nodes, nil
}

// parseNodes consumes nodes until EOF or a closing tag, whose kind it returns.
func (p *parser) parseNodes() ([]node, string, error) {
	var nodes []node
	for p.pos < len(p.src) {
		i := strings.Index(p.src[p.pos:], "{{")
		if i < 0 {
			nodes = append(nodes, textNode{p.src[p.pos:]})
			p.pos = len(p.src)
			break
		}
		if i > 0 {
			nodes = append(nodes, textNode{p.src[p.pos : p.pos+i]})
			p.pos += i
		}
		tag, err := p.readTag()
		if err != nil {
			return nil, "", err
		}
		switch {
		case strings.HasPrefix(tag, "/"):
			return nodes, strings.TrimSpace(tag[1:]), nil
		case strings.HasPrefix(tag, "#if "):
			field := strings.TrimSpace(tag[len("#if "):])
			body, closing, err := p.parseNodes()
			if err != nil {
				return nil, "", err
			}
			if closing != "if" {
				return nil, "", fmt.Errorf("unclosed {{#if %s}}", field)
			}
			nodes = append(nodes, blockNode{kind: "if", field: field, body: body})
		case strings.HasPrefix(tag, "#each "):
			field := strings.TrimSpace(tag[len("#each "):])
			body, closing, err := p.parseNodes()
			if err != nil {
				return nil, "", err
			}
			if closing != "each" {
				return nil, "", fmt.Errorf("unclosed {{#each %s}}", field)
			}
			nodes = append(nodes, blockNode{kind: "each", field: field, body: body})
		case strings.HasPrefix(tag, "media "):
			attr := strings.TrimSpace(tag[len("media "):])
			field, ok := strings.CutPrefix(attr, "url=")
			if !ok || field == "" {
				return nil, "", fmt.Errorf("media tag requires url=<field>, got %q", attr)
			}
			nodes = append(nodes, mediaNode{field: field})
		case tag == "" || strings.HasPrefix(tag, "#"):
			return nil, "", fmt.Errorf("unsupported template tag %q", tag)
		default:
			nodes = append(nodes, varNode{path: strings.TrimSpace(tag)})
		}
	}
	return nodes, "", nil
}

// readTag consumes one {{...}} or {{{...}}} tag and returns its inner text.
// Triple braces are accepted for handlebars compatibility; substitution is
// never escaped, so they behave like double braces.
func (p *parser) readTag() (string, error) {
	open, closing := "{{", "}}"
	if strings.HasPrefix(p.src[p.pos:], "{{{") {
		open, closing = "{{{", "}}}"
	}
	rest := p.src[p.pos+len(open):]
	end := strings.Index(rest, closing)
	if end < 0 {
		return "", fmt.Errorf("unterminated %s tag", open)
	}
	tag := strings.TrimSpace(rest[:end])
	p.pos += len(open) + end + len(closing)
	return tag, nil
}

func renderNodes(nodes []node, input map[string]any, this any, sb *strings.Builder, prompt *Prompt) {
	for _, n := range nodes {
		switch n := n.(type) {
		case textNode:
			sb.WriteString(n.text)
		case varNode:
			sb.WriteString(formatValue(lookup(n.path, input, this)))
		case mediaNode:
			if s, ok := lookup(n.field, input, this).(string); ok && s != "" {
				prompt.Media = append(prompt.Media, s)
			}
		case blockNode:
			val := lookup(n.field, input, this)
			if n.kind == "if" {
				if truthy(val) {
					renderNodes(n.body, input, this, sb, prompt)
				}
				continue
			}
			if items, ok := val.([]any); ok {
				for _, item := range items {
					renderNodes(n.body, input, item, sb, prompt)
				}
			}
		}
	}
}

func lookup(path string, input map[string]any, this any) any {
	if path == "this" {
		return this
	}
	if key, ok := strings.CutPrefix(path, "this."); ok {
		if m, ok := this.(map[string]any); ok {
			return m[key]
		}
		return nil
	}
	return input[path]
}

func truthy(v any) bool {
	switch v := v.(type) {
	case nil:
		return false
	case string:
		return v != ""
	case bool:
		return v
	case []any:
		return len(v) > 0
	case float64:
		return v != 0
	case int:
		return v != 0
	}
	return true
}

func formatValue(v any) string {
	switch v := v.(type) {
	case nil:
		return ""
	case string:
		return v
	case float64:
		if v == math.Trunc(v) && math.Abs(v) < 1e15 {
			return strconv.FormatInt(int64(v), 10)
		}
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return fmt.Sprintf("%v", v)
	}
}
