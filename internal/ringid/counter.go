// Package ringid provides the single shared ring-id counter every detector
// draws from. Modeling it as a small passed-around state object, rather
// than a package-level global, keeps the cross-component coupling the
// design notes call out explicit and testable — see spec section 9.
package ringid

import "fmt"

// Counter mints monotonically increasing ring ids formatted as
// "<prefix>_###", zero-padded to at least three digits.
type Counter struct {
	prefix string
	next   int
}

// NewCounter creates a counter that starts minting at 1.
func NewCounter(prefix string) *Counter {
	return &Counter{prefix: prefix, next: 1}
}

// Next returns the next ring id and advances the counter.
func (c *Counter) Next() string {
	id := fmt.Sprintf("%s_%03d", c.prefix, c.next)
	c.next++
	return id
}
