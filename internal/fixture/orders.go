// Package fixture serves a local stand-in for the order-lookup service.
//
// Orders are loaded from a JSON file and served as stored, byte for byte,
// under GET /api/order/{id}. The contract matches the real service: 200 with
// the order body when found, 404 with {"error":"Order not found"} otherwise.
package fixture

import (
	"bytes"
	"fmt"
	"os"
	"sort"
	"strings"
	"sync"

	gojson "github.com/goccy/go-json"
)

// DefaultKey is the order field used as the ID when loading an array.
const DefaultKey = "order_uid"

// Orders is an in-memory order catalog keyed by order ID.
type Orders struct {
	mu     sync.RWMutex
	orders map[string][]byte
}

// NewOrders creates an empty catalog.
func NewOrders() *Orders {
	return &Orders{orders: make(map[string][]byte)}
}

// Get returns the stored body of an order.
func (o *Orders) Get(id string) ([]byte, bool) {
	o.mu.RLock()
	defer o.mu.RUnlock()
	body, ok := o.orders[id]
	return body, ok
}

// Put stores body under id, replacing any previous order.
func (o *Orders) Put(id string, body []byte) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.orders[id] = append([]byte(nil), body...)
}

// Len returns the number of orders.
func (o *Orders) Len() int {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return len(o.orders)
}

// IDs returns all order IDs, sorted.
func (o *Orders) IDs() []string {
	o.mu.RLock()
	defer o.mu.RUnlock()
	ids := make([]string, 0, len(o.orders))
	for id := range o.orders {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// LoadOrders reads a fixture file. See ParseOrders for the accepted shapes.
func LoadOrders(path, key string) (*Orders, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading fixture %s: %w", path, err)
	}
	orders, err := ParseOrders(data, key)
	if err != nil {
		return nil, fmt.Errorf("parsing fixture %s: %w", path, err)
	}
	return orders, nil
}

// ParseOrders accepts either an array of orders, each identified by its key
// field, or an object mapping order ID to order.
func ParseOrders(data []byte, key string) (*Orders, error) {
	if key == "" {
		key = DefaultKey
	}
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, fmt.Errorf("empty fixture")
	}

	orders := NewOrders()
	switch trimmed[0] {
	case '[':
		var list []gojson.RawMessage
		if err := gojson.Unmarshal(trimmed, &list); err != nil {
			return nil, fmt.Errorf("decoding order array: %w", err)
		}
		for i, raw := range list {
			id, err := orderID(raw, key)
			if err != nil {
				return nil, fmt.Errorf("order %d: %w", i, err)
			}
			orders.Put(id, raw)
		}
	case '{':
		var byID map[string]gojson.RawMessage
		if err := gojson.Unmarshal(trimmed, &byID); err != nil {
			return nil, fmt.Errorf("decoding order map: %w", err)
		}
		for id, raw := range byID {
			orders.Put(id, raw)
		}
	default:
		return nil, fmt.Errorf("fixture must be a JSON array or object")
	}
	return orders, nil
}

// orderID extracts the key field of one order. String IDs are unquoted,
// numeric IDs keep their literal text.
func orderID(raw gojson.RawMessage, key string) (string, error) {
	var fields map[string]gojson.RawMessage
	if err := gojson.Unmarshal(raw, &fields); err != nil {
		return "", fmt.Errorf("not an object: %w", err)
	}
	field, ok := fields[key]
	if !ok {
		return "", fmt.Errorf("missing %q field", key)
	}

	var s string
	if err := gojson.Unmarshal(field, &s); err == nil {
		if s == "" {
			return "", fmt.Errorf("empty %q field", key)
		}
		return s, nil
	}
	lit := strings.TrimSpace(string(field))
	if lit != "" && (lit[0] == '-' || (lit[0] >= '0' && lit[0] <= '9')) {
		return lit, nil
	}
	return "", fmt.Errorf("%q must be a string or number", key)
}
