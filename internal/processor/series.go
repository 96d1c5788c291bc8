package processor

import (
	"time"

	"procwatch/internal/models"
)

// Series is the fixed-capacity rolling window of aggregate usage samples
// backing the CPU and memory charts. Eviction is FIFO: once the window is
// full, each append drops the oldest sample. The three internal slices are
// always the same length and never exceed the capacity set at construction.
//
// Series is not safe for concurrent use; the presenter owns it and touches
// it from one goroutine only.
type Series struct {
	capacity   int
	timestamps []time.Time
	cpu        []float64
	memory     []float64
}

// NewSeries creates an empty series. Capacities below one are raised to one.
func NewSeries(capacity int) *Series {
	if capacity < 1 {
		capacity = 1
	}
	return &Series{
		capacity:   capacity,
		timestamps: make([]time.Time, 0, capacity),
		cpu:        make([]float64, 0, capacity),
		memory:     make([]float64, 0, capacity),
	}
}

// Append adds one sample, evicting the oldest when the window is full.
func (s *Series) Append(point models.UsagePoint) {
	if len(s.timestamps) >= s.capacity {
		s.timestamps = s.timestamps[1:]
		s.cpu = s.cpu[1:]
		s.memory = s.memory[1:]
	}
	s.timestamps = append(s.timestamps, point.At)
	s.cpu = append(s.cpu, point.CPUPercent)
	s.memory = append(s.memory, point.MemoryPercent)
}

// Len returns the number of samples currently held.
func (s *Series) Len() int {
	return len(s.timestamps)
}

// Capacity returns the fixed window capacity.
func (s *Series) Capacity() int {
	return s.capacity
}

// View returns an independent copy of the window for the chart sinks.
func (s *Series) View() models.UsageSeries {
	view := models.UsageSeries{
		Timestamps:   make([]time.Time, len(s.timestamps)),
		CPUValues:    make([]float64, len(s.cpu)),
		MemoryValues: make([]float64, len(s.memory)),
	}
	copy(view.Timestamps, s.timestamps)
	copy(view.CPUValues, s.cpu)
	copy(view.MemoryValues, s.memory)
	return view
}
