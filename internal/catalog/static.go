package catalog

import "context"

// Static serves a fixed product set, used in tests and seed data.
type Static struct {
	byID  map[string]Product
	order []string
}

func NewStatic(products ...Product) *Static {
	s := &Static{byID: make(map[string]Product, len(products))}
	for _, p := range products {
		if _, ok := s.byID[p.ID]; ok {
			continue
		}
		s.byID[p.ID] = p
		s.order = append(s.order, p.ID)
	}
	return s
}

func (s *Static) Resolve(_ context.Context, id string) (Product, bool, error) {
	p, ok := s.byID[id]
	return p, ok, nil
}

func (s *Static) List(_ context.Context) ([]Product, error) {
	out := make([]Product, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.byID[id])
	}
	return out, nil
}
