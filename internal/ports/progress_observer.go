package ports

// ProgressEvent describes one completed work item of a pool generation run.
type ProgressEvent struct {
	Done     int
	Total    int
	Target   string
	Capacity int
	Variant  int
	Err      error
}

// ProgressObserver is notified once per completed work item. It is called
// from worker goroutines and must be safe for concurrent use.
type ProgressObserver interface {
	OnTaskDone(ev ProgressEvent)
}

// ProgressFunc adapts a function to ProgressObserver.
type ProgressFunc func(ev ProgressEvent)

func (f ProgressFunc) OnTaskDone(ev ProgressEvent) { f(ev) }

// NopProgress ignores every event.
type NopProgress struct{}

func (NopProgress) OnTaskDone(ProgressEvent) {}

// MultiProgress forwards every event to each observer in order.
type MultiProgress []ProgressObserver

func (m MultiProgress) OnTaskDone(ev ProgressEvent) {
	for _, o := range m {
		o.OnTaskDone(ev)
	}
}
