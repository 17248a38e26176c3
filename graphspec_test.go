package supercollider

import (
	"errors"
	"sync"
	"testing"
)

func TestLoadGraphSpec_BuildsDependencyOrder(t *testing.T) {
	src := []byte(`
job "input" {}

job "filter" {
  depends_on = ["input"]
}

job "output" {
  depends_on = ["filter"]
}
`)

	var mu sync.Mutex
	var order []string
	factory := func(id string, _ float64) (Job, error) {
		return JobFunc(func(int) {
			mu.Lock()
			order = append(order, id)
			mu.Unlock()
		}), nil
	}

	g, err := LoadGraphSpec("patch.hcl", src, factory)
	if err != nil {
		t.Fatalf("LoadGraphSpec: %v", err)
	}
	if g.TotalNodeCount() != 3 {
		t.Fatalf("TotalNodeCount = %d, want 3", g.TotalNodeCount())
	}

	interp := NewInterpreter(DefaultConfig())
	if _, err := interp.InstallQueue(g); err != nil {
		t.Fatal(err)
	}
	interp.InitTick()
	interp.TickMaster()

	want := []string{"input", "filter", "output"}
	if len(order) != len(want) {
		t.Fatalf("order = %v, want %v", order, want)
	}
	for i, id := range want {
		if order[i] != id {
			t.Fatalf("order = %v, want %v", order, want)
		}
	}
}

func TestLoadGraphSpec_UnresolvedFactoryErrorPropagates(t *testing.T) {
	src := []byte(`job "broken" {}`)
	boom := errors.New("no such job")
	factory := func(id string, _ float64) (Job, error) { return nil, boom }

	if _, err := LoadGraphSpec("patch.hcl", src, factory); !errors.Is(err, boom) {
		t.Fatalf("expected wrapped factory error, got %v", err)
	}
}

func TestLoadGraphSpec_UnknownDependencyRejected(t *testing.T) {
	src := []byte(`
job "output" {
  depends_on = ["missing"]
}
`)
	factory := func(id string, _ float64) (Job, error) { return noopJob(), nil }
	if _, err := LoadGraphSpec("patch.hcl", src, factory); err == nil {
		t.Fatal("expected an error for a dependency on an unknown job")
	}
}
