package backend

import (
	"testing"

	"github.com/gogpu/spin/menu"
	"github.com/gogpu/spin/pyramid"
)

type stubBackend struct{ name string }

func (s *stubBackend) Name() string                                      { return s.name }
func (s *stubBackend) SetSource(_ *pyramid.Buffer) error                 { return nil }
func (s *stubBackend) Resize(_, _ int) error                             { return nil }
func (s *stubBackend) Present(_ []byte, _ Params, _ *menu.Overlay) error { return nil }
func (s *stubBackend) Invalidate()                                       {}
func (s *stubBackend) Close()                                            {}

func TestRegistryRegisterGet(t *testing.T) {
	Register("stub", func() (Backend, error) {
		return &stubBackend{name: "stub"}, nil
	})
	defer Unregister("stub")

	factory := Get("stub")
	if factory == nil {
		t.Fatal("expected factory for registered backend")
	}
	b, err := factory()
	if err != nil {
		t.Fatalf("factory failed: %v", err)
	}
	if b.Name() != "stub" {
		t.Errorf("expected name 'stub', got %q", b.Name())
	}
}

func TestRegistryUnregister(t *testing.T) {
	Register("gone", func() (Backend, error) { return &stubBackend{name: "gone"}, nil })
	Unregister("gone")

	if Get("gone") != nil {
		t.Error("expected no factory after Unregister")
	}
	if IsRegistered("gone") {
		t.Error("IsRegistered should report false after Unregister")
	}
}

func TestRegistryAvailable(t *testing.T) {
	Register("zeta", func() (Backend, error) { return &stubBackend{name: "zeta"}, nil })
	defer Unregister("zeta")

	found := false
	for _, n := range Available() {
		if n == "zeta" {
			found = true
		}
	}
	if !found {
		t.Errorf("expected 'zeta' in %v", Available())
	}
}

func TestRegistrySoftwareAlwaysRegistered(t *testing.T) {
	if !IsRegistered(BackendSoftware) {
		t.Fatal("software backend must always be registered")
	}
}
