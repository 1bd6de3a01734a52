package main

import "testing"

func TestDefaultOutput(t *testing.T) {
	cases := map[string]string{
		"app-compressed":      "app",
		"app.compressed":      "app",
		"dir/tool-compressed": "dir/tool",
		"app":                 "app.out",
		"compressed":          "compressed.out",
	}
	for in, want := range cases {
		if got := defaultOutput(in); got != want {
			t.Errorf("defaultOutput(%q) = %q, want %q", in, got, want)
		}
	}
}
