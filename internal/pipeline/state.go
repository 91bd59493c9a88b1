package pipeline

// State names a pipeline stage for logs and progress callbacks.
type State string

const (
	StateCollecting State = "collecting"
	StateConverting State = "converting"
	StateRendering  State = "rendering"
	StateDraining   State = "draining"
	StateDone       State = "done"
	StateFailed     State = "failed"
)
