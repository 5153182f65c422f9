package l2cache_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/Johntang666/l2cache"
)

type brand struct {
	ID   int
	Name string
	Tags []string
}

func (b *brand) Clone() *brand {
	return &brand{ID: b.ID, Name: b.Name, Tags: append([]string(nil), b.Tags...)}
}

type deepCopyBrand struct {
	ID int
}

func (b *deepCopyBrand) DeepCopy() *deepCopyBrand {
	return &deepCopyBrand{ID: b.ID}
}

func TestDefaultValueCloner_Clone(t *testing.T) {
	t.Parallel()

	cloner := l2cache.DefaultValueCloner[*brand]()
	original := &brand{ID: 42, Tags: []string{"a"}}
	cloned := cloner.CloneValue(original)

	if original == cloned {
		t.Error("Expected different pointer, got same pointer")
	}
	original.Tags[0] = "b"
	if cloned.ID != 42 || cloned.Tags[0] != "a" {
		t.Errorf("Expected cloned value to remain unchanged, got %+v", cloned)
	}
}

func TestDefaultValueCloner_DeepCopy(t *testing.T) {
	t.Parallel()

	cloner := l2cache.DefaultValueCloner[*deepCopyBrand]()
	original := &deepCopyBrand{ID: 42}
	cloned := cloner.CloneValue(original)

	if original == cloned {
		t.Error("Expected different pointer, got same pointer")
	}
	original.ID = 100
	if cloned.ID != 42 {
		t.Errorf("Expected cloned value to remain unchanged, got %d", cloned.ID)
	}
}

func TestDefaultValueCloner_Fallback(t *testing.T) {
	t.Parallel()

	type plain struct {
		Value int
	}

	if _, ok := l2cache.DefaultValueCloner[*plain]().(l2cache.NopValueCloner[*plain]); !ok {
		t.Error("Expected NopValueCloner for type with no special methods")
	}
	if _, ok := l2cache.DefaultValueCloner[string]().(l2cache.NopValueCloner[string]); !ok {
		t.Error("Expected NopValueCloner for string")
	}
	if _, ok := l2cache.DefaultValueCloner[*brand]().(l2cache.ValueClonerFunc[*brand]); !ok {
		t.Error("Expected ValueClonerFunc for type with Clone method")
	}
}

func TestDeepCopyValueCloner(t *testing.T) {
	t.Parallel()

	type catalog struct {
		Name   string
		Brands []string
		Counts map[string]int
	}

	cloner := l2cache.DeepCopyValueCloner[catalog]()
	original := catalog{Name: "spring", Brands: []string{"acme"}, Counts: map[string]int{"acme": 1}}
	cloned := cloner.CloneValue(original)

	if diff := cmp.Diff(original, cloned); diff != "" {
		t.Errorf("CloneValue() mismatch (-want +got):\n%s", diff)
	}
	original.Brands[0] = "globex"
	original.Counts["acme"] = 2
	if cloned.Brands[0] != "acme" || cloned.Counts["acme"] != 1 {
		t.Errorf("Expected cloned value to remain unchanged, got %+v", cloned)
	}
}
