package repo

import (
	"sync"
	"time"

	"plate-backend/internal/domain"
)

type MemoryOrderRepo struct {
	mu sync.RWMutex
	m  map[string]*domain.Order
}

func NewMemoryOrderRepo() *MemoryOrderRepo {
	return &MemoryOrderRepo{m: make(map[string]*domain.Order)}
}

func (r *MemoryOrderRepo) Put(o *domain.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *o
	r.m[o.OrderID] = &cp
	return nil
}

func (r *MemoryOrderRepo) Get(id string) (*domain.Order, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	o, ok := r.m[id]
	if !ok {
		return nil, false
	}
	cp := *o
	return &cp, true
}

// MarkPaidByIntent applies paid=true, status=accepted to every order carrying
// the intent id, in one critical section. Re-application on replay is a no-op
// value-wise, which is what makes redelivery safe.
func (r *MemoryOrderRepo) MarkPaidByIntent(intentID string) ([]domain.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Order
	now := time.Now().UTC()
	for _, o := range r.m {
		if o.PaymentIntentID != intentID {
			continue
		}
		if !o.Paid {
			o.Paid = true
			o.Status = domain.OrderAccepted
			o.UpdatedAt = now
		}
		out = append(out, *o)
	}
	return out, nil
}

func (r *MemoryOrderRepo) LinkIntent(orderIDs []string, intentID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := time.Now().UTC()
	for _, id := range orderIDs {
		if o, ok := r.m[id]; ok {
			o.PaymentIntentID = intentID
			o.UpdatedAt = now
		}
	}
	return nil
}

type txKey struct {
	intentID string
	orderID  string
}

type MemoryTransactionRepo struct {
	mu sync.RWMutex
	m  map[txKey]*domain.Transaction
}

func NewMemoryTransactionRepo() *MemoryTransactionRepo {
	return &MemoryTransactionRepo{m: make(map[txKey]*domain.Transaction)}
}

// Insert appends one ledger row. Returns false without error when a row for
// the same payment intent and order already exists, which is the replay no-op.
func (r *MemoryTransactionRepo) Insert(t *domain.Transaction) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	k := txKey{intentID: t.PaymentIntentID, orderID: t.OrderID}
	if _, exists := r.m[k]; exists {
		return false, nil
	}
	cp := *t
	r.m[k] = &cp
	return true, nil
}

func (r *MemoryTransactionRepo) ListByIntent(intentID string) ([]domain.Transaction, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []domain.Transaction
	for k, t := range r.m {
		if k.intentID == intentID {
			out = append(out, *t)
		}
	}
	return out, nil
}

type MemoryProfileRepo struct {
	mu sync.RWMutex
	m  map[string]*domain.Profile
}

func NewMemoryProfileRepo() *MemoryProfileRepo {
	return &MemoryProfileRepo{m: make(map[string]*domain.Profile)}
}

func (r *MemoryProfileRepo) PutProfile(p *domain.Profile) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *p
	r.m[p.UserID] = &cp
	return nil
}

func (r *MemoryProfileRepo) GetProfile(id string) (*domain.Profile, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.m[id]
	if !ok {
		return nil, false
	}
	cp := *p
	return &cp, true
}

func (r *MemoryProfileRepo) GetProfileByCustomer(customerID string) (*domain.Profile, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, p := range r.m {
		if p.StripeCustomerID == customerID {
			cp := *p
			return &cp, true
		}
	}
	return nil, false
}

type MemoryMealRepo struct {
	mu sync.RWMutex
	m  map[string]*domain.Meal
}

func NewMemoryMealRepo() *MemoryMealRepo {
	return &MemoryMealRepo{m: make(map[string]*domain.Meal)}
}

func (r *MemoryMealRepo) PutMeal(m *domain.Meal) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *m
	r.m[m.MealID] = &cp
	return nil
}

func (r *MemoryMealRepo) GetMeal(id string) (*domain.Meal, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	m, ok := r.m[id]
	if !ok {
		return nil, false
	}
	cp := *m
	return &cp, true
}

type MemoryMetroRepo struct {
	mu     sync.RWMutex
	counts map[string]domain.MetroAreaCounts
	alerts []domain.AdminAlert
	notes  []domain.Notification
}

func NewMemoryMetroRepo() *MemoryMetroRepo {
	return &MemoryMetroRepo{counts: make(map[string]domain.MetroAreaCounts)}
}

func (r *MemoryMetroRepo) PutMetroCounts(c domain.MetroAreaCounts) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.counts[c.MetroArea] = c
	return nil
}

func (r *MemoryMetroRepo) ListMetroCounts() ([]domain.MetroAreaCounts, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]domain.MetroAreaCounts, 0, len(r.counts))
	for _, c := range r.counts {
		out = append(out, c)
	}
	return out, nil
}

func (r *MemoryMetroRepo) InsertAlert(a *domain.AdminAlert) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.alerts = append(r.alerts, *a)
	return nil
}

func (r *MemoryMetroRepo) Alerts() []domain.AdminAlert {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]domain.AdminAlert, len(r.alerts))
	copy(out, r.alerts)
	return out
}

func (r *MemoryMetroRepo) InsertNotification(n *domain.Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notes = append(r.notes, *n)
	return nil
}

func (r *MemoryMetroRepo) Notifications() []domain.Notification {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]domain.Notification, len(r.notes))
	copy(out, r.notes)
	return out
}
