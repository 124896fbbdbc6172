package slot

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		expected []Node
	}{
		{
			name: "success: block marker between paragraphs",
			body: "Intro\n\n<Hero />\n\nOutro",
			expected: []Node{
				{Kind: TextNode, Text: "Intro\n\n"},
				{Kind: SlotNode, Name: "Hero", Props: Props{}},
				{Kind: TextNode, Text: "\n\nOutro"},
			},
		},
		{
			name: "success: string, expression and bare props",
			body: `<FeatureGrid className="mt-8" label='x y' columns={3} tags={["a", "b"]} wide />`,
			expected: []Node{
				{Kind: SlotNode, Name: "FeatureGrid", Props: Props{
					"className": "mt-8",
					"label":     "x y",
					"columns":   3,
					"tags":      []any{"a", "b"},
					"wide":      true,
				}},
			},
		},
		{
			name: "success: children with inline marker",
			body: "<Comparison>\n| a | <Check /> |\n</Comparison>",
			expected: []Node{
				{Kind: SlotNode, Name: "Comparison", Props: Props{}, Children: []Node{
					{Kind: TextNode, Text: "\n| a | "},
					{Kind: SlotNode, Name: "Check", Props: Props{}},
					{Kind: TextNode, Text: " |\n"},
				}},
			},
		},
		{
			name: "success: multi-line tag",
			body: "<Roadmap\n  team=\"Replay\"\n/>",
			expected: []Node{
				{Kind: SlotNode, Name: "Roadmap", Props: Props{"team": "Replay"}},
			},
		},
		{
			name: "success: fenced code is not scanned",
			body: "```\n<Hero />\n```\n<CTA />",
			expected: []Node{
				{Kind: TextNode, Text: "```\n<Hero />\n```\n"},
				{Kind: SlotNode, Name: "CTA", Props: Props{}},
			},
		},
		{
			name: "success: code span is not scanned",
			body: "Use `<Hero />` here",
			expected: []Node{
				{Kind: TextNode, Text: "Use `<Hero />` here"},
			},
		},
		{
			name: "failure: malformed attribute stays text",
			body: "a <Hero b= > c",
			expected: []Node{
				{Kind: TextNode, Text: "a <Hero b= > c"},
			},
		},
		{
			name: "failure: unclosed element stays text",
			body: "<Comparison>\ntext",
			expected: []Node{
				{Kind: TextNode, Text: "<Comparison>\ntext"},
			},
		},
		{
			name: "success: closing tag in code span is skipped",
			body: "<Comparison>`</Comparison>` x</Comparison>",
			expected: []Node{
				{Kind: SlotNode, Name: "Comparison", Props: Props{}, Children: []Node{
					{Kind: TextNode, Text: "`</Comparison>` x"},
				}},
			},
		},
		{
			name: "failure: closing tag only in code span stays text",
			body: "<Comparison>`</Comparison>`",
			expected: []Node{
				{Kind: TextNode, Text: "<Comparison>`</Comparison>`"},
			},
		},
		{
			name: "failure: closing tag only in fenced block stays text",
			body: "<Comparison>\n```\n</Comparison>\n```\n",
			expected: []Node{
				{Kind: TextNode, Text: "<Comparison>\n```\n</Comparison>\n```\n"},
			},
		},
		{
			name: "success: lower-case html is text",
			body: "<div>x</div>",
			expected: []Node{
				{Kind: TextNode, Text: "<div>x</div>"},
			},
		},
		{
			name:     "success: empty body",
			body:     "",
			expected: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Parse(tt.body))
		})
	}
}

func TestProps(t *testing.T) {
	p := Props{
		"s":     "text",
		"n":     3,
		"ns":    "7",
		"flag":  true,
		"fs":    "true",
		"list":  []any{"a", 1},
		"empty": "",
	}

	assert.Equal(t, "text", p.String("s", "def"))
	assert.Equal(t, "3", p.String("n", "def"))
	assert.Equal(t, "def", p.String("missing", "def"))
	assert.Equal(t, "def", p.String("flag", "def"))

	assert.Equal(t, 3, p.Int("n", 0))
	assert.Equal(t, 7, p.Int("ns", 0))
	assert.Equal(t, 9, p.Int("s", 9))

	assert.True(t, p.Bool("flag"))
	assert.True(t, p.Bool("fs"))
	assert.False(t, p.Bool("missing"))

	assert.Equal(t, []string{"a", "1"}, p.Strings("list"))
	assert.Equal(t, []string{"text"}, p.Strings("s"))
	assert.Nil(t, p.Strings("empty"))
}
