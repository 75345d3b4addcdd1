// Package broker provides the topic-based message seam between the depot
// runtime, the scheduler and the demand generator. Components never hold
// references into each other's state; everything crosses this boundary as a
// serialized snapshot.
package broker

import "sync"

// Broker is a named-topic queue of serialized messages. Publish appends a
// payload to a topic; Drain returns every pending payload and empties the
// topic.
type Broker interface {
	Publish(topic string, payload []byte)
	Drain(topic string) [][]byte
}

// Memory is the in-process Broker used for single-run simulations.
type Memory struct {
	mu     sync.Mutex
	topics map[string][][]byte
}

// NewMemory creates an empty in-memory broker.
func NewMemory() *Memory {
	return &Memory{topics: make(map[string][][]byte)}
}

// Publish appends the payload to the topic.
func (m *Memory) Publish(topic string, payload []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := make([]byte, len(payload))
	copy(cp, payload)
	m.topics[topic] = append(m.topics[topic], cp)
}

// Drain returns all pending payloads for the topic and clears it.
func (m *Memory) Drain(topic string) [][]byte {
	m.mu.Lock()
	defer m.mu.Unlock()
	msgs := m.topics[topic]
	delete(m.topics, topic)
	return msgs
}

// Pending returns the number of queued messages on the topic without
// consuming them.
func (m *Memory) Pending(topic string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.topics[topic])
}
