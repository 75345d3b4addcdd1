package mqtt

import (
	"github.com/johnhorn2/powerflex-station-assignment-heuristic/internal/broker"
)

// Mirror is a broker that copies every published payload to a secondary
// broker while reads stay on the primary. Used to expose the simulation's
// message flow over MQTT without changing who consumes what.
type Mirror struct {
	primary   broker.Broker
	secondary broker.Broker
}

// NewMirror wraps primary so publishes are also sent to secondary.
func NewMirror(primary, secondary broker.Broker) *Mirror {
	return &Mirror{primary: primary, secondary: secondary}
}

func (m *Mirror) Publish(topic string, payload []byte) {
	m.primary.Publish(topic, payload)
	m.secondary.Publish(topic, payload)
}

func (m *Mirror) Drain(topic string) [][]byte {
	return m.primary.Drain(topic)
}
