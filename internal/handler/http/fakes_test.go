package http

import (
	"context"
	"errors"
	"sort"
	"strconv"
	"sync"

	"github.com/caffeinepub/saree-catalogue-portal/internal/domain"
	apperrors "github.com/caffeinepub/saree-catalogue-portal/pkg/errors"
	"github.com/caffeinepub/saree-catalogue-portal/pkg/pagination"
)

var errBackendDown = errors.New("backend down")

// fakeStore keeps every repository in memory for router tests.
type fakeStore struct {
	mu        sync.Mutex
	products  map[string]map[uint64]*domain.Product
	nextID    map[string]uint64
	customers map[string]map[string]*domain.Customer
	weavers   map[string]*domain.WeaverProfile
	users     map[string]*domain.UserProfile
	roles     map[string]domain.Role
	failReads bool
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		products:  map[string]map[uint64]*domain.Product{},
		nextID:    map[string]uint64{},
		customers: map[string]map[string]*domain.Customer{},
		weavers:   map[string]*domain.WeaverProfile{},
		users:     map[string]*domain.UserProfile{},
		roles:     map[string]domain.Role{},
	}
}

func (s *fakeStore) PublicCatalog(_ context.Context, owner string, ct domain.CustomerType) ([]domain.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failReads {
		return nil, errBackendDown
	}
	out := []domain.Product{}
	for _, p := range s.sorted(owner) {
		if p.Visibility.VisibleTo(ct) {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (s *fakeStore) PublicProduct(_ context.Context, owner string, id uint64) (*domain.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failReads {
		return nil, errBackendDown
	}
	return s.get(owner, id)
}

func (s *fakeStore) Create(_ context.Context, p *domain.Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID[p.Owner]++
	p.ID = s.nextID[p.Owner]
	if s.products[p.Owner] == nil {
		s.products[p.Owner] = map[uint64]*domain.Product{}
	}
	cp := *p
	s.products[p.Owner][p.ID] = &cp
	return nil
}

func (s *fakeStore) Get(_ context.Context, owner string, id uint64) (*domain.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.get(owner, id)
}

func (s *fakeStore) ListByOwner(_ context.Context, owner string, page pagination.Params) ([]domain.Product, int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	all := s.sorted(owner)
	out := []domain.Product{}
	for i := page.Offset(); i < len(all) && len(out) < page.PerPage; i++ {
		out = append(out, *all[i])
	}
	return out, len(all), nil
}

func (s *fakeStore) Update(_ context.Context, p *domain.Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.get(p.Owner, p.ID); err != nil {
		return err
	}
	cp := *p
	s.products[p.Owner][p.ID] = &cp
	return nil
}

func (s *fakeStore) Delete(_ context.Context, owner string, id uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.get(owner, id); err != nil {
		return err
	}
	delete(s.products[owner], id)
	return nil
}

func (s *fakeStore) SetQuantity(_ context.Context, owner string, id uint64, quantity int64) (*domain.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.get(owner, id); err != nil {
		return nil, err
	}
	s.products[owner][id].AvailableQuantity = quantity
	return s.get(owner, id)
}

func (s *fakeStore) ToggleOutOfStock(_ context.Context, owner string, id uint64) (*domain.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.get(owner, id); err != nil {
		return nil, err
	}
	p := s.products[owner][id]
	if p.AvailableQuantity > 0 {
		p.AvailableQuantity = 0
	} else {
		p.AvailableQuantity = 1
	}
	return s.get(owner, id)
}

func (s *fakeStore) get(owner string, id uint64) (*domain.Product, error) {
	p, ok := s.products[owner][id]
	if !ok {
		return nil, apperrors.NotFound("product", strconv.FormatUint(id, 10))
	}
	cp := *p
	return &cp, nil
}

func (s *fakeStore) sorted(owner string) []*domain.Product {
	out := make([]*domain.Product, 0, len(s.products[owner]))
	for _, p := range s.products[owner] {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// customers

type fakeCustomers struct{ *fakeStore }

func (s fakeCustomers) Upsert(_ context.Context, c *domain.Customer) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.customers[c.Owner] == nil {
		s.customers[c.Owner] = map[string]*domain.Customer{}
	}
	cp := *c
	s.customers[c.Owner][c.ID] = &cp
	return nil
}

func (s fakeCustomers) Get(_ context.Context, owner, id string) (*domain.Customer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.customers[owner][id]
	if !ok {
		return nil, apperrors.NotFound("customer", id)
	}
	cp := *c
	return &cp, nil
}

func (s fakeCustomers) List(_ context.Context, owner string) ([]domain.Customer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []domain.Customer
	for _, c := range s.customers[owner] {
		out = append(out, *c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (s fakeCustomers) Delete(_ context.Context, owner, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.customers[owner][id]; !ok {
		return apperrors.NotFound("customer", id)
	}
	delete(s.customers[owner], id)
	return nil
}

// profiles and roles

func (s *fakeStore) GetWeaverProfile(_ context.Context, owner string) (*domain.WeaverProfile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.weavers[owner]
	if !ok {
		return nil, apperrors.NotFound("weaver profile", owner)
	}
	cp := *p
	return &cp, nil
}

func (s *fakeStore) UpsertWeaverProfile(_ context.Context, p *domain.WeaverProfile) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *p
	s.weavers[p.Owner] = &cp
	return nil
}

func (s *fakeStore) GetUserProfile(_ context.Context, principal string) (*domain.UserProfile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.users[principal]
	if !ok {
		return nil, apperrors.NotFound("user profile", principal)
	}
	cp := *p
	return &cp, nil
}

func (s *fakeStore) UpsertUserProfile(_ context.Context, p *domain.UserProfile) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *p
	s.users[p.Principal] = &cp
	return nil
}

func (s *fakeStore) GetRole(_ context.Context, principal string) (domain.Role, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.roles[principal]
	if !ok {
		return "", apperrors.NotFound("role", principal)
	}
	return r, nil
}

func (s *fakeStore) SetRole(_ context.Context, principal string, role domain.Role) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.roles[principal] = role
	return nil
}
