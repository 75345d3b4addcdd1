package broker

import (
	"encoding/json"
	"fmt"
)

// PublishOne serializes a single value onto the topic.
func PublishOne[T any](b Broker, topic string, item T) error {
	payload, err := json.Marshal(item)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", topic, err)
	}
	b.Publish(topic, payload)
	return nil
}

// PublishAll serializes every value in the collection onto the topic, one
// message per value.
func PublishAll[T any](b Broker, topic string, items []T) error {
	for _, item := range items {
		if err := PublishOne(b, topic, item); err != nil {
			return err
		}
	}
	return nil
}

// DrainInto deserializes every pending message on the topic into dst,
// overwriting by key so the last-published snapshot wins. The topic is
// drained as a side effect.
func DrainInto[K comparable, T any](b Broker, topic string, dst map[K]T, key func(T) K) error {
	for _, payload := range b.Drain(topic) {
		var item T
		if err := json.Unmarshal(payload, &item); err != nil {
			return fmt.Errorf("unmarshal %s: %w", topic, err)
		}
		dst[key(item)] = item
	}
	return nil
}

// DrainAll deserializes every pending message on the topic in publish order.
func DrainAll[T any](b Broker, topic string) ([]T, error) {
	payloads := b.Drain(topic)
	out := make([]T, 0, len(payloads))
	for _, payload := range payloads {
		var item T
		if err := json.Unmarshal(payload, &item); err != nil {
			return nil, fmt.Errorf("unmarshal %s: %w", topic, err)
		}
		out = append(out, item)
	}
	return out, nil
}
