package web

import "net/url"

// Params is a multi-valued view of query or form data. Values are
// always slices because the same key may legally repeat; consumers
// that need a scalar read the first element.
type Params map[string][]string

// ParseParams decodes url-encoded key/value data into a Params map.
// Standard percent-decoding applies and '+' decodes to a space.
// Repeated keys keep their original order. Pairs that fail to decode
// are dropped, everything that parses is kept.
func ParseParams(raw string) Params {
	values, err := url.ParseQuery(raw)
	if err != nil && values == nil {
		return Params{}
	}
	return Params(values)
}

// First returns the first value recorded for key. A missing key or an
// empty value list yields fallback rather than an error.
func (p Params) First(key, fallback string) string {
	if values, ok := p[key]; ok && len(values) > 0 {
		return values[0]
	}
	return fallback
}

// All returns every value recorded for key, in original order.
func (p Params) All(key string) []string {
	return p[key]
}
