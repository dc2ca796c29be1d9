package filter

import "firestige.xyz/u2kit/internal/unified2"

// FilterChain runs filters in order and ends in handler.
type FilterChain struct {
	filters []Filter
	handler func(e *unified2.Entry)
	current Filter
	chain   *FilterChain
}

func NewFilterChain(handler func(e *unified2.Entry), filters []Filter) *FilterChain {
	allFilters := make([]Filter, len(filters))
	copy(allFilters, filters)
	chain := initChain(allFilters, handler)
	return &FilterChain{
		filters: allFilters,
		handler: handler,
		chain:   chain.chain,
		current: chain.current,
	}
}

func newChain(filters []Filter, handler func(e *unified2.Entry), current Filter, chain *FilterChain) *FilterChain {
	return &FilterChain{
		filters: filters,
		handler: handler,
		current: current,
		chain:   chain,
	}
}

func initChain(filters []Filter, handler func(e *unified2.Entry)) *FilterChain {
	chain := newChain(filters, handler, nil, nil)
	for i := len(filters) - 1; i >= 0; i-- {
		chain = newChain(filters, handler, filters[i], chain)
	}
	return chain
}

func (c *FilterChain) GetFilters() []Filter {
	return c.filters
}

func (c *FilterChain) Filter(e *unified2.Entry) {
	if c.current != nil && c.chain != nil {
		c.current.Filter(e, c.chain)
	} else {
		c.handler(e)
	}
}
