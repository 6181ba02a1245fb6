package metrics

import (
	"sync"
	"time"

	"github.com/target/residence-console/internal/observability/statsd"
)

// Sample is one metric captured by MemorySink.
type Sample struct {
	Name  string
	Value int64
	Dur   time.Duration
	Tags  map[string]string
}

// MemorySink records metrics in memory; used by tests and when no agent is configured.
type MemorySink struct {
	mu      sync.Mutex
	samples []Sample
}

var _ statsd.Sink = (*MemorySink)(nil)

func (m *MemorySink) Count(name string, value int64, tags map[string]string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.samples = append(m.samples, Sample{Name: name, Value: value, Tags: copyTags(tags)})
}

func (m *MemorySink) Timing(name string, value time.Duration, tags map[string]string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.samples = append(m.samples, Sample{Name: name, Dur: value, Tags: copyTags(tags)})
}

// Named returns the samples with the given metric name.
func (m *MemorySink) Named(name string) []Sample {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []Sample
	for _, s := range m.samples {
		if s.Name == name {
			out = append(out, s)
		}
	}
	return out
}

func copyTags(tags map[string]string) map[string]string {
	out := make(map[string]string, len(tags))
	for k, v := range tags {
		out[k] = v
	}
	return out
}
