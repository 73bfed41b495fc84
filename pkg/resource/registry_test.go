package resource

import (
	"errors"
	"slices"
	"sync"
	"testing"

	errs "github.com/matzehuels/blokdust/pkg/errors"
)

func TestAddAndGet(t *testing.T) {
	r := NewRegistry()
	if err := r.AddResource("answer", 42); err != nil {
		t.Fatalf("AddResource() error = %v", err)
	}

	got, err := r.GetResource("answer")
	if err != nil {
		t.Fatalf("GetResource() error = %v", err)
	}
	if got != 42 {
		t.Errorf("GetResource() = %v, want 42", got)
	}
	if !r.Has("answer") {
		t.Error("Has() = false, want true")
	}
}

func TestGetResourceNotFound(t *testing.T) {
	r := NewRegistry()
	_, err := r.GetResource("missing")
	if !errors.Is(err, ErrResourceNotFound) {
		t.Fatalf("GetResource() error = %v, want ErrResourceNotFound", err)
	}
	if !errs.Is(err, errs.ErrCodeResourceNotFound) {
		t.Errorf("code = %v, want %v", errs.GetCode(err), errs.ErrCodeResourceNotFound)
	}
}

func TestAddResourceDuplicate(t *testing.T) {
	r := NewRegistry()
	_ = r.AddResource("x", "first")

	err := r.AddResource("x", "second")
	if !errors.Is(err, ErrDuplicateResource) {
		t.Fatalf("AddResource() error = %v, want ErrDuplicateResource", err)
	}
	got, _ := r.GetResource("x")
	if got != "first" {
		t.Errorf("GetResource() = %v, want first registration to survive", got)
	}
}

func TestAddResourceEmptyName(t *testing.T) {
	r := NewRegistry()
	if err := r.AddResource("", 1); !errors.Is(err, ErrInvalidName) {
		t.Errorf("AddResource(\"\") error = %v, want ErrInvalidName", err)
	}
}

func TestRemoveAndNames(t *testing.T) {
	r := NewRegistry()
	_ = r.AddResource("b", 2)
	_ = r.AddResource("a", 1)
	_ = r.AddResource("c", 3)

	if names := r.Names(); !slices.Equal(names, []string{"a", "b", "c"}) {
		t.Errorf("Names() = %v, want [a b c]", names)
	}
	if !r.Remove("b") {
		t.Error("Remove(b) = false, want true")
	}
	if r.Remove("b") {
		t.Error("second Remove(b) = true, want false")
	}
	if r.Len() != 2 {
		t.Errorf("Len() = %d, want 2", r.Len())
	}
	if err := r.AddResource("b", 20); err != nil {
		t.Errorf("AddResource() after Remove() error = %v", err)
	}
}

func TestGetTyped(t *testing.T) {
	r := NewRegistry()
	_ = r.AddResource("name", "blokdust")

	s, err := Get[string](r, "name")
	if err != nil || s != "blokdust" {
		t.Errorf("Get[string]() = %q, %v", s, err)
	}

	_, err = Get[int](r, "name")
	if !errors.Is(err, ErrResourceType) {
		t.Errorf("Get[int]() error = %v, want ErrResourceType", err)
	}

	_, err = Get[string](r, "missing")
	if !errors.Is(err, ErrResourceNotFound) {
		t.Errorf("Get[string](missing) error = %v, want ErrResourceNotFound", err)
	}
}

func TestConcurrentAccess(t *testing.T) {
	r := NewRegistry()
	var wg sync.WaitGroup
	for i := range 20 {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			name := string(rune('a' + i))
			_ = r.AddResource(name, i)
			_, _ = r.GetResource(name)
			_ = r.Names()
		}(i)
	}
	wg.Wait()
	if r.Len() != 20 {
		t.Errorf("Len() = %d, want 20", r.Len())
	}
}
