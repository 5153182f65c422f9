package storage_test

import (
	"testing"

	"github.com/Johntang666/l2cache/storage"
)

func TestEntryKey(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		prefix string
		region string
		key    string
		want   string
	}{
		{"no prefix", "", "brand", "42", "brand:42"},
		{"with prefix", "app:", "brand", "42", "app:brand:42"},
		{"empty key", "app:", "brand", "", "app:brand:"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := storage.EntryKey(tt.prefix, tt.region, tt.key); got != tt.want {
				t.Errorf("EntryKey() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestDefaultKeyFunc(t *testing.T) {
	t.Parallel()

	type shopBrand struct {
		Shop  string
		Brand int
	}
	if got := storage.DefaultKeyFunc[int]()(42); got != "42" {
		t.Errorf("int key = %q", got)
	}
	if got := storage.DefaultKeyFunc[string]()("acme"); got != "acme" {
		t.Errorf("string key = %q", got)
	}
	if got := storage.DefaultKeyFunc[shopBrand]()(shopBrand{"s1", 7}); got != "{s1 7}" {
		t.Errorf("struct key = %q", got)
	}
}
