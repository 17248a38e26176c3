//go:build !debugger

// Package debugonly provides a breakpoint hook for the interpreter's
// install/release boundary (Interpreter.InstallQueue, Interpreter.ReleaseQueue).
// Neither call is on the tick hot path, so a debugger build may safely stop
// there without violating the wait-free tick requirement; production builds
// compile the hook away entirely.
package debugonly

// InstallBoundary is a no-op stub called by InstallQueue and ReleaseQueue in
// non-debugger builds. It exists purely as a breakpoint target.
func InstallBoundary(graphID string) {}

// Enabled reports whether the debugger build tag is active. Always false in
// production builds.
func Enabled() bool { return false }
