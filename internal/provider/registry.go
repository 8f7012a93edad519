package provider

import (
	"fmt"

	"github.com/distinctmentorship/payments/internal/model"
)

// Registry holds the configured gateway variants keyed by provider tag. The
// reconciliation engine looks capabilities up here and stays unaware of
// which variant it is calling.
type Registry struct {
	gateways map[model.Provider]Gateway
}

func NewRegistry(gateways ...Gateway) *Registry {
	r := &Registry{gateways: make(map[model.Provider]Gateway, len(gateways))}
	for _, g := range gateways {
		r.gateways[g.Provider()] = g
	}
	return r
}

func (r *Registry) Get(p model.Provider) (Gateway, error) {
	g, ok := r.gateways[p]
	if !ok {
		return nil, fmt.Errorf("no gateway registered for provider %q", p)
	}
	return g, nil
}
