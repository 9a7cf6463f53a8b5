package events

import "time"

// RunStart is emitted before a generation run starts on a unit.
type RunStart struct {
	Unit       string
	Operations int
	Fragments  int
}

// RunFinish is emitted after a generation run completes or fails.
type RunFinish struct {
	Unit     string
	Classes  int
	Warnings int
	Err      error
	Duration time.Duration
}

// Warning is emitted for every non-fatal diagnostic raised during a run.
type Warning struct {
	Unit    string
	Message string
}

// OutputWritten is emitted after generated source has been written.
type OutputWritten struct {
	Path  string
	Bytes int
}

// Rebuild is emitted when watched files change and generation is re-run.
type Rebuild struct {
	Paths []string
}
