package sqlutil

import (
	"testing"

	"github.com/mx-go/statecache/setup/config"
)

func TestParseFileURI(t *testing.T) {
	tests := []struct {
		dataSource config.DataSource
		want       string
	}{
		{"file:statecache.db", "statecache.db"},
		{"file:///var/lib/statecache.db", "/var/lib/statecache.db"},
		{"file::memory:", ":memory:"},
	}
	for _, tc := range tests {
		got, err := ParseFileURI(tc.dataSource)
		if err != nil {
			t.Fatalf("ParseFileURI(%q): %s", tc.dataSource, err)
		}
		if got != tc.want {
			t.Errorf("ParseFileURI(%q): want %q, got %q", tc.dataSource, tc.want, got)
		}
	}
}
