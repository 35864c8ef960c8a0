package implementation

import (
	"sync"
)

type Sample struct {
	Name   string
	Labels map[string]string
	Value  float64
}

// MemoryRecorder keeps every sample it receives. It is meant for tests and
// for inspecting measurements in-process.
type MemoryRecorder struct {
	mu      sync.Mutex
	samples []Sample
}

func NewMemoryRecorder() *MemoryRecorder {
	return &MemoryRecorder{}
}

func (r *MemoryRecorder) RecordHistogram(name string, labels map[string]string, value float64) {
	copied := make(map[string]string, len(labels))
	for k, v := range labels {
		copied[k] = v
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.samples = append(r.samples, Sample{Name: name, Labels: copied, Value: value})
}

func (r *MemoryRecorder) Samples() []Sample {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Sample, len(r.samples))
	copy(out, r.samples)
	return out
}

// SamplesFor returns the samples recorded under name.
func (r *MemoryRecorder) SamplesFor(name string) []Sample {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []Sample
	for _, s := range r.samples {
		if s.Name == name {
			out = append(out, s)
		}
	}
	return out
}

func (r *MemoryRecorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.samples = nil
}
