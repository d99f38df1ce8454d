package platform

import (
	"comment-ranker/internal/config"
	"comment-ranker/internal/crawler"
	"context"
	"reflect"
	"testing"
)

type mockRunner struct {
	sheet string
}

func (m *mockRunner) Run(ctx context.Context, req crawler.RunRequest) (crawler.Result, error) {
	return crawler.Result{SheetName: m.sheet}, nil
}

func TestRegisterAndNew(t *testing.T) {
	mu.Lock()
	origF, origC := factories, canonical
	factories, canonical = map[string]Factory{}, map[string]string{}
	mu.Unlock()
	t.Cleanup(func() {
		mu.Lock()
		factories, canonical = origF, origC
		mu.Unlock()
	})

	Register("foo", []string{"bar", "Baz"}, func(cfg config.Config) crawler.Runner { return &mockRunner{sheet: cfg.SheetName} })

	for _, name := range []string{"foo", "bar", " BAZ "} {
		r, err := New(name, config.Config{SheetName: "s"})
		if err != nil {
			t.Fatalf("New(%q) err: %v", name, err)
		}
		res, _ := r.Run(context.Background(), crawler.RunRequest{})
		if res.SheetName != "s" {
			t.Fatalf("factory did not receive config")
		}
	}
	if _, err := New("unknown", config.Config{}); err == nil {
		t.Fatalf("expected error for unknown platform")
	}
	if got := Names(); !reflect.DeepEqual(got, []string{"foo"}) {
		t.Fatalf("Names() = %v", got)
	}

	defer func() {
		if recover() == nil {
			t.Fatalf("expected panic on duplicate register")
		}
	}()
	Register("bar", nil, func(cfg config.Config) crawler.Runner { return &mockRunner{} })
}
