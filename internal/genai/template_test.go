package genai

import (
	"strings"
	"testing"
)

func TestRenderSubstitution(t *testing.T) {
	prompt, err := Render("Hello {{name}}, score {{score}}.", map[string]any{
		"name":  "Alice",
		"score": float64(95),
	})
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	if prompt.Text != "Hello Alice, score 95." {
		t.Fatalf("unexpected text: %q", prompt.Text)
	}
}

func TestRenderTripleBraces(t *testing.T) {
	prompt, err := Render("Query: {{{query}}}", map[string]any{"query": "is <this> safe?"})
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	if prompt.Text != "Query: is <this> safe?" {
		t.Fatalf("unexpected text: %q", prompt.Text)
	}
}

func TestRenderMissingFieldIsEmpty(t *testing.T) {
	prompt, err := Render("a{{missing}}b", map[string]any{})
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	if prompt.Text != "ab" {
		t.Fatalf("unexpected text: %q", prompt.Text)
	}
}

func TestRenderIfBlocks(t *testing.T) {
	tmpl := "{{#if text}}Text: {{text}}{{/if}}{{#if image}}has image{{/if}}"

	prompt, err := Render(tmpl, map[string]any{"text": "aspirin"})
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	if prompt.Text != "Text: aspirin" {
		t.Fatalf("unexpected text: %q", prompt.Text)
	}

	prompt, err = Render(tmpl, map[string]any{"text": ""})
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	if prompt.Text != "" {
		t.Fatalf("empty string should be falsy, got %q", prompt.Text)
	}
}

func TestRenderEach(t *testing.T) {
	tmpl := "{{#each items}}- {{this.name}} ({{this.qty}})\n{{/each}}"
	prompt, err := Render(tmpl, map[string]any{
		"items": []any{
			map[string]any{"name": "Aspirin", "qty": float64(3)},
			map[string]any{"name": "Metformin", "qty": float64(1)},
		},
	})
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	want := "- Aspirin (3)\n- Metformin (1)\n"
	if prompt.Text != want {
		t.Fatalf("unexpected text: %q", prompt.Text)
	}
}

func TestRenderEachScalars(t *testing.T) {
	prompt, err := Render("{{#each issues}}{{this}}; {{/each}}", map[string]any{
		"issues": []any{"dosage too high", "interaction"},
	})
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	if prompt.Text != "dosage too high; interaction; " {
		t.Fatalf("unexpected text: %q", prompt.Text)
	}
}

func TestRenderMediaLiftsDataURI(t *testing.T) {
	uri := "data:image/png;base64,aGVsbG8="
	prompt, err := Render("Image: {{media url=img}}", map[string]any{"img": uri})
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	if len(prompt.Media) != 1 || prompt.Media[0] != uri {
		t.Fatalf("unexpected media: %v", prompt.Media)
	}
	if strings.Contains(prompt.Text, uri) {
		t.Fatalf("data URI leaked into text: %q", prompt.Text)
	}
}

func TestRenderMediaAbsentField(t *testing.T) {
	prompt, err := Render("{{media url=img}}", map[string]any{})
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	if len(prompt.Media) != 0 {
		t.Fatalf("expected no media, got %v", prompt.Media)
	}
}

func TestRenderMalformedTemplates(t *testing.T) {
	cases := []string{
		"{{#if a}}never closed",
		"{{unterminated",
		"{{/if}}",
		"{{media nourl}}",
		"{{#unknown x}}{{/unknown}}",
	}
	for _, tmpl := range cases {
		if _, err := Render(tmpl, map[string]any{"a": "x"}); err == nil {
			t.Fatalf("expected error for template %q", tmpl)
		}
	}
}
