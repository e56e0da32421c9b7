package weavetest

// calls counts the invocations of a mock. Failed calls count as well.
type calls struct {
	check   int
	deliver int
}

// CheckCallCount returns how many times Check was called.
func (c *calls) CheckCallCount() int { return c.check }

// DeliverCallCount returns how many times Deliver was called.
func (c *calls) DeliverCallCount() int { return c.deliver }

// CallCount returns the total number of Check and Deliver calls.
func (c *calls) CallCount() int { return c.check + c.deliver }
