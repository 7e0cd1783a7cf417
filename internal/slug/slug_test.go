package slug

import "testing"

func TestMake(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		// Basic normalization
		{"lowercase", "DRAGONS", "dragons"},
		{"spaces to hyphens", "Hello World", "hello-world"},
		{"underscores to hyphens", "hello_world", "hello-world"},
		{"already normalized", "hello-world", "hello-world"},

		// Whitespace handling
		{"trim whitespace", "  dragons  ", "dragons"},
		{"multiple spaces", "  multi   word ", "multi-word"},
		{"tabs and spaces", "multi\t word", "multi-word"},

		// Special characters
		{"ampersand and punctuation", "Tech & Design!!", "tech-design"},
		{"emoji removal", "🚀 Startups!", "startups"},
		{"apostrophe removal", "don't panic", "dont-panic"},
		{"accent folding", "Café au Lait", "cafe-au-lait"},

		// Hyphen handling
		{"multiple hyphens", "slow--burn", "slow-burn"},
		{"leading hyphens", "--dragons", "dragons"},
		{"trailing hyphens", "dragons--", "dragons"},
		{"mixed hyphens", "--slow--burn--", "slow-burn"},

		// Edge cases
		{"empty string", "", ""},
		{"only spaces", "   ", ""},
		{"only special chars", "!@#$%", ""},
		{"numbers allowed", "top10", "top10"},
		{"mixed case with numbers", "Top 10 Stories", "top-10-stories"},

		// Real-world examples
		{"technology", "Technology", "technology"},
		{"entertainment", "Entertainment", "entertainment"},
		{"multi word title", "The Future of Web Development", "the-future-of-web-development"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Make(tt.input)
			if result != tt.expected {
				t.Errorf("Make(%q) = %q, want %q", tt.input, result, tt.expected)
			}
		})
	}
}

func TestMake_Idempotent(t *testing.T) {
	inputs := []string{
		"Hello World",
		"Tech & Design!!",
		"  multi   word ",
		"Café au Lait",
		"already-a-slug",
		"",
	}

	for _, in := range inputs {
		once := Make(in)
		twice := Make(once)
		if once != twice {
			t.Errorf("Make is not idempotent for %q: Make(x)=%q, Make(Make(x))=%q", in, once, twice)
		}
	}
}
