package htmlutil

import "testing"

func TestToText(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "plain", in: "Geneva has warmed.", want: "Geneva has warmed."},
		{name: "tags", in: "<p>Geneva has <b>warmed</b>.</p>", want: "Geneva has warmed."},
		{name: "entities", in: "Rain &amp; snow", want: "Rain & snow"},
		{name: "whitespace", in: "  two\n\nlines  ", want: "two lines"},
		{name: "empty", in: "", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ToText(tt.in); got != tt.want {
				t.Errorf("ToText(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}
