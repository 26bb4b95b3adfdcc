package cache

import "encoding/json"

// Node is the collected state of one cache key. Exactly one of Data and Err
// is authoritative: a node with Err set must never be read as data. A
// successful collection that found nothing stores an empty, non-nil slice.
type Node struct {
	Data any
	Err  error
}

// DataNode returns a successful node holding data.
func DataNode(data any) *Node {
	return &Node{Data: data}
}

// ErrNode returns a failed node holding err.
func ErrNode(err error) *Node {
	return &Node{Err: err}
}

// OK reports whether the node holds usable data.
func (n *Node) OK() bool {
	return n != nil && n.Err == nil && n.Data != nil
}

// ErrorMessage returns the collection error text, or a generic message when
// the node has neither data nor an error.
func (n *Node) ErrorMessage() string {
	switch {
	case n == nil:
		return "no data collected"
	case n.Err != nil:
		return n.Err.Error()
	case n.Data == nil:
		return "empty response"
	default:
		return ""
	}
}

// MarshalJSON encodes the node as {"data": ...} or {"error": "..."}.
func (n *Node) MarshalJSON() ([]byte, error) {
	type wire struct {
		Data  any    `json:"data,omitempty"`
		Error string `json:"error,omitempty"`
	}
	w := wire{Data: n.Data}
	if n.Err != nil {
		w = wire{Error: n.Err.Error()}
	}
	return json.Marshal(w)
}

// As returns the node's data as T. It returns false when the node is nil,
// carries an error, has no data, or holds a different type.
func As[T any](n *Node) (T, bool) {
	var zero T
	if !n.OK() {
		return zero, false
	}
	v, ok := n.Data.(T)
	if !ok {
		return zero, false
	}
	return v, true
}
