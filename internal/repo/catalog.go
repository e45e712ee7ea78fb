package repo

import (
	"fmt"
	"sort"
	"sync"

	"github.com/mrovira/fieldops/internal/model"
)

// StoreRepo holds the store catalog.
type StoreRepo struct {
	mu     sync.RWMutex
	stores map[string]model.Store
}

func NewStoreRepo() *StoreRepo {
	return &StoreRepo{stores: make(map[string]model.Store)}
}

func (r *StoreRepo) Put(s model.Store) error {
	if s.ID == "" || s.Name == "" {
		return fmt.Errorf("store requires id and name")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.stores[s.ID] = s
	return nil
}

func (r *StoreRepo) Get(id string) (model.Store, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.stores[id]
	if !ok {
		return model.Store{}, fmt.Errorf("store %q: %w", id, ErrNotFound)
	}
	return s, nil
}

func (r *StoreRepo) List() []model.Store {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]model.Store, 0, len(r.stores))
	for _, s := range r.stores {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func (r *StoreRepo) Delete(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.stores[id]; !ok {
		return fmt.Errorf("store %q: %w", id, ErrNotFound)
	}
	delete(r.stores, id)
	return nil
}

// EquipmentRepo holds the serviceable assets.
type EquipmentRepo struct {
	mu    sync.RWMutex
	units map[string]model.Equipment
}

func NewEquipmentRepo() *EquipmentRepo {
	return &EquipmentRepo{units: make(map[string]model.Equipment)}
}

func (r *EquipmentRepo) Put(e model.Equipment) error {
	if e.ID == "" || e.Name == "" {
		return fmt.Errorf("equipment requires id and name")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.units[e.ID] = e
	return nil
}

func (r *EquipmentRepo) Get(id string) (model.Equipment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.units[id]
	if !ok {
		return model.Equipment{}, fmt.Errorf("equipment %q: %w", id, ErrNotFound)
	}
	return e, nil
}

// ForStore lists the assets installed at one store, sorted by name.
func (r *EquipmentRepo) ForStore(storeID string) []model.Equipment {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []model.Equipment
	for _, e := range r.units {
		if e.StoreID == storeID {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func (r *EquipmentRepo) List() []model.Equipment {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]model.Equipment, 0, len(r.units))
	for _, e := range r.units {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (r *EquipmentRepo) Delete(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.units[id]; !ok {
		return fmt.Errorf("equipment %q: %w", id, ErrNotFound)
	}
	delete(r.units, id)
	return nil
}

// UserRepo holds technicians and administrators.
type UserRepo struct {
	mu    sync.RWMutex
	users map[string]model.User
}

func NewUserRepo() *UserRepo {
	return &UserRepo{users: make(map[string]model.User)}
}

func (r *UserRepo) Put(u model.User) error {
	if u.ID == "" || u.Name == "" {
		return fmt.Errorf("user requires id and name")
	}
	switch u.Role {
	case model.RoleSuperAdmin, model.RoleAdmin, model.RoleTechnician:
	default:
		return fmt.Errorf("unknown role %q", u.Role)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.users[u.ID] = u
	return nil
}

func (r *UserRepo) Get(id string) (model.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	u, ok := r.users[id]
	if !ok {
		return model.User{}, fmt.Errorf("user %q: %w", id, ErrNotFound)
	}
	return u, nil
}

func (r *UserRepo) List() []model.User {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]model.User, 0, len(r.users))
	for _, u := range r.users {
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Technicians lists the users who can be assigned work orders.
func (r *UserRepo) Technicians() []model.User {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []model.User
	for _, u := range r.users {
		if u.Role == model.RoleTechnician {
			out = append(out, u)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
