// Package pricing talks to the external quote source. The rest of the
// service only sees QuoteProvider; partial coverage of the requested
// symbol set is normal and is not an error.
package pricing

import "context"

// QuoteProvider returns current prices for a set of asset symbols in a
// single batched call. The result maps normalized (upper-case) symbols
// to unit prices; symbols the source cannot quote are simply absent.
// A transport or non-2xx failure returns an error and an empty map.
type QuoteProvider interface {
	Quotes(ctx context.Context, symbols []string) (map[string]float64, error)
}
