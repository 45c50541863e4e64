// Package pipeline runs the scaffolding sequence.
//
// A Plan is an ordered list of stages, each tagged with the model.State it
// represents and holding an ordered list of steps. Steps are a closed set of
// kinds (StepCheck, StepMkdir, StepChdir, StepCommand, StepRemove) executed
// by one driver loop, Pipeline.Run:
//
//	for each stage:
//	    report the stage message
//	    for each step: execute it; on error enter Aborted and return
//	    report completion
//
// The first failing step aborts the run. Nothing is retried, rolled back or
// cancelled; the only abort path is not starting the next step. The one
// place where work overlaps is StepRemove, whose paths are deleted
// concurrently and jointly awaited.
//
// Build assembles the fixed scaffolding plan from Options, so the
// emptiness-only, git-aware and interactive-naming flows are one pipeline
// with different options rather than separate code paths.
package pipeline
