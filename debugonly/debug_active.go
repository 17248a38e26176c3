//go:build debugger

package debugonly

// InstallBoundary is called by InstallQueue and ReleaseQueue with the
// affected graph's ID. Set a breakpoint on this line to stop whenever the
// installed graph changes.
func InstallBoundary(graphID string) {
	_ = graphID // breakpoint target
}

// Enabled reports whether the debugger build tag is active.
func Enabled() bool { return true }
