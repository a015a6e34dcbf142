package domain

import "fmt"

type UnknownIntervalError struct {
	Name string
}

func (e UnknownIntervalError) Error() string {
	return fmt.Sprintf("unknown interval %q", e.Name)
}

type NodeNotFoundError struct {
	NodeID string
}

func (e NodeNotFoundError) Error() string {
	return fmt.Sprintf("node with id %s not found", e.NodeID)
}

// MalformedReadingError identifies a stored record that is missing a quantity
// or whose key is not a valid timestamp.
type MalformedReadingError struct {
	Key    string
	Reason string
}

func (e MalformedReadingError) Error() string {
	return fmt.Sprintf("malformed reading %q: %s", e.Key, e.Reason)
}
