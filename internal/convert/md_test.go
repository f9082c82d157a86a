package convert

import (
	"context"
	"strings"
	"testing"
)

func TestMarkdownLiquidAnchor(t *testing.T) {
	testCases := []struct {
		name     string
		input    string
		expected string
	}{
		{"plain", `<p>Next: <a href="{% post_url 2017-01-05-second %}#top">second</a></p>`, "[second]({% post_url 2017-01-05-second %}#top)"},
		{"markdown_chars", `<p>Next: <a href="{% post_url 2017-01-05-second %}">see ] *here</a></p>`, `[see \] \*here]({% post_url 2017-01-05-second %})`},
		{"brackets_and_code", "<p><a href=\"{% post_url a %}\">[a_b] `c`</a></p>", "[\\[a\\_b\\] \\`c\\`]({% post_url a %})"},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := newMarkdownConverter("test.md").ConvertString(context.Background(), tc.input)
			if err != nil {
				t.Fatalf("ConvertString failed: %v", err)
			}
			if !strings.Contains(got, tc.expected) {
				t.Errorf("expected %q in %q", tc.expected, got)
			}
		})
	}
}
