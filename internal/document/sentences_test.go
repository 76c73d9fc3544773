package document

import "testing"

func TestSplitSentences(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []sentencePart
	}{
		{
			name: "two terminated",
			text: "First sentence here. Second one follows!",
			want: []sentencePart{
				{Text: "First sentence here.", Terminated: true},
				{Text: "Second one follows!", Terminated: true},
			},
		},
		{
			name: "trailing truncation",
			text: "Complete thought. Then it just stops mid",
			want: []sentencePart{
				{Text: "Complete thought.", Terminated: true},
				{Text: "Then it just stops mid", Terminated: false},
			},
		},
		{
			name: "closing quote absorbed",
			text: `He said "stop." Then he left.`,
			want: []sentencePart{
				{Text: `He said "stop."`, Terminated: true},
				{Text: "Then he left.", Terminated: true},
			},
		},
		{
			name: "abbreviation splits stay terminated",
			text: "See e.g. the report.",
			want: []sentencePart{
				{Text: "See e.g.", Terminated: true},
				{Text: "the report.", Terminated: true},
			},
		},
		{
			name: "ellipsis",
			text: "It trails off… And resumes.",
			want: []sentencePart{
				{Text: "It trails off…", Terminated: true},
				{Text: "And resumes.", Terminated: true},
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := splitSentences(tt.text)
			if len(got) != len(tt.want) {
				t.Fatalf("splitSentences() = %d parts, want %d: %+v", len(got), len(tt.want), got)
			}
			for i, want := range tt.want {
				if got[i].Text != want.Text {
					t.Errorf("part %d text = %q, want %q", i, got[i].Text, want.Text)
				}
				if got[i].Terminated != want.Terminated {
					t.Errorf("part %d terminated = %v, want %v", i, got[i].Terminated, want.Terminated)
				}
			}
		})
	}
}

func TestQuoteImbalance(t *testing.T) {
	tests := []struct {
		text string
		want int
	}{
		{`a "quoted" phrase`, 0},
		{`a "dangling quote`, 1},
		{"“balanced curly”", 0},
		{"“unclosed curly", 1},
		{"it's fine, apostrophes ignored", 0},
	}
	for _, tt := range tests {
		if got := quoteImbalance(tt.text); got != tt.want {
			t.Errorf("quoteImbalance(%q) = %d, want %d", tt.text, got, tt.want)
		}
	}
}

func TestParenImbalance(t *testing.T) {
	tests := []struct {
		text string
		want int
	}{
		{"balanced (like this) text", 0},
		{"opened (and never closed", 1},
		{"bracket [pair] and (pair)", 0},
		{"double ((trouble)", 1},
	}
	for _, tt := range tests {
		if got := parenImbalance(tt.text); got != tt.want {
			t.Errorf("parenImbalance(%q) = %d, want %d", tt.text, got, tt.want)
		}
	}
}
