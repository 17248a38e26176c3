package supercollider

import (
	"testing"

	"go.uber.org/goleak"
)

func TestThreadPool_RunTickReportsEmptyWithNoGraph(t *testing.T) {
	defer goleak.VerifyNone(t)

	interp := NewInterpreter(DefaultConfig())
	pool := NewThreadPool(interp, 2)
	defer pool.Close()

	if pool.RunTick() {
		t.Fatal("RunTick should report false when no graph is installed")
	}
}

func TestThreadPool_CloseIsIdempotentSafe(t *testing.T) {
	defer goleak.VerifyNone(t)

	interp := NewInterpreter(DefaultConfig())
	pool := NewThreadPool(interp, 3)

	if err := pool.Close(); err != nil {
		t.Fatalf("first Close: %v", err)
	}
	if err := pool.Close(); err != nil {
		t.Fatalf("second Close: %v", err)
	}
}

func TestThreadPool_RunTickDrivesInstalledGraph(t *testing.T) {
	defer goleak.VerifyNone(t)

	var ran int
	b := NewGraphBuilder()
	if err := b.AddJob("only", JobFunc(func(int) { ran++ })); err != nil {
		t.Fatal(err)
	}
	g, err := b.Build()
	if err != nil {
		t.Fatal(err)
	}

	interp := NewInterpreterWithOptions(WithThreadCount(4))
	if _, err := interp.InstallQueue(g); err != nil {
		t.Fatal(err)
	}
	pool := NewThreadPool(interp, interp.GetUsedHelperThreads())
	defer pool.Close()

	if !pool.RunTick() {
		t.Fatal("RunTick reported an empty tick")
	}
	if ran != 1 {
		t.Fatalf("job ran %d times, want 1", ran)
	}
}
