package memory

import (
	"cmp"
	"context"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/BrandonDHaskell/timekeep/internal/attendance"
	"github.com/BrandonDHaskell/timekeep/internal/attendance/store"
)

// Vendor is an in-memory vendor database holding already-decoded punches.
// The plan passed to its methods only gates support; flags are stored as
// given. It is intended for use in tests and dev environments.
type Vendor struct {
	mu        sync.RWMutex
	employees []vendorEmployee
	events    map[string][]attendance.RawEvent
	err       error
}

type vendorEmployee struct {
	attendance.Employee
	active bool
}

func NewVendor() *Vendor {
	return &Vendor{events: make(map[string][]attendance.RawEvent)}
}

// AddEmployee registers an employee. Inactive employees are invisible to
// every query, as in the vendor active filter.
func (v *Vendor) AddEmployee(emp attendance.Employee, active bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.employees = append(v.employees, vendorEmployee{Employee: emp, active: active})
}

// AddEvents appends punches for cardNo.
func (v *Vendor) AddEvents(cardNo string, events ...attendance.RawEvent) {
	v.mu.Lock()
	defer v.mu.Unlock()
	all := append(v.events[cardNo], events...)
	slices.SortStableFunc(all, func(a, b attendance.RawEvent) int { return a.Time.Compare(b.Time) })
	v.events[cardNo] = all
}

// FailWith makes every subsequent call return err. nil clears it.
func (v *Vendor) FailWith(err error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.err = err
}

func (v *Vendor) active() []attendance.Employee {
	var out []attendance.Employee
	for _, e := range v.employees {
		if e.active && e.CardNo != "" && e.CardNo != "0" {
			out = append(out, e.Employee)
		}
	}
	slices.SortStableFunc(out, func(a, b attendance.Employee) int {
		return cmp.Or(cmp.Compare(a.Name, b.Name), cmp.Compare(a.CardNo, b.CardNo))
	})
	return out
}

func (v *Vendor) isActive(cardNo string) bool {
	for _, e := range v.active() {
		if e.CardNo == cardNo {
			return true
		}
	}
	return false
}

func between(events []attendance.RawEvent, from, to time.Time) []attendance.RawEvent {
	var out []attendance.RawEvent
	for _, e := range events {
		if !e.Time.Before(from) && e.Time.Before(to) {
			out = append(out, e)
		}
	}
	return out
}

// ── EventSource ────────────────────────────────────────────────────────────

func (v *Vendor) RecentEvents(_ context.Context, plan attendance.VariantPlan, limit int) ([]attendance.RawEvent, error) {
	v.mu.RLock()
	defer v.mu.RUnlock()
	if v.err != nil {
		return nil, v.err
	}
	if !plan.Supported() {
		return nil, nil
	}
	var all []attendance.RawEvent
	for _, evs := range v.events {
		all = append(all, evs...)
	}
	slices.SortStableFunc(all, func(a, b attendance.RawEvent) int { return b.Time.Compare(a.Time) })
	if limit > 0 && len(all) > limit {
		all = all[:limit]
	}
	return all, nil
}

func (v *Vendor) EventsForCard(_ context.Context, plan attendance.VariantPlan, cardNo string, from, to time.Time) ([]attendance.RawEvent, error) {
	v.mu.RLock()
	defer v.mu.RUnlock()
	if v.err != nil {
		return nil, v.err
	}
	if !plan.Supported() || !v.isActive(cardNo) {
		return nil, nil
	}
	return between(v.events[cardNo], from, to), nil
}

func (v *Vendor) LastEventBefore(_ context.Context, plan attendance.VariantPlan, cardNo string, t time.Time) (*attendance.RawEvent, error) {
	v.mu.RLock()
	defer v.mu.RUnlock()
	if v.err != nil {
		return nil, v.err
	}
	if !plan.Supported() || !v.isActive(cardNo) {
		return nil, nil
	}
	evs := v.events[cardNo]
	for i := len(evs) - 1; i >= 0; i-- {
		if evs[i].Time.Before(t) {
			e := evs[i]
			return &e, nil
		}
	}
	return nil, nil
}

func (v *Vendor) EventsForActive(_ context.Context, plan attendance.VariantPlan, from, to time.Time) (map[string][]attendance.RawEvent, error) {
	v.mu.RLock()
	defer v.mu.RUnlock()
	if v.err != nil {
		return nil, v.err
	}
	out := make(map[string][]attendance.RawEvent)
	if !plan.Supported() {
		return out, nil
	}
	for _, emp := range v.active() {
		if evs := between(v.events[emp.CardNo], from, to); len(evs) > 0 {
			out[emp.CardNo] = evs
		}
	}
	return out, nil
}

func (v *Vendor) LatestForActive(_ context.Context, plan attendance.VariantPlan) (map[string]attendance.RawEvent, error) {
	v.mu.RLock()
	defer v.mu.RUnlock()
	if v.err != nil {
		return nil, v.err
	}
	out := make(map[string]attendance.RawEvent)
	if !plan.Supported() {
		return out, nil
	}
	for _, emp := range v.active() {
		if evs := v.events[emp.CardNo]; len(evs) > 0 {
			out[emp.CardNo] = evs[len(evs)-1]
		}
	}
	return out, nil
}

// ── EmployeeDirectory ──────────────────────────────────────────────────────

func (v *Vendor) Identity(_ context.Context, cardNo string) (attendance.Employee, bool, error) {
	v.mu.RLock()
	defer v.mu.RUnlock()
	if v.err != nil {
		return attendance.Employee{}, false, v.err
	}
	for _, e := range v.active() {
		if e.CardNo == cardNo {
			return e, true, nil
		}
	}
	return attendance.Employee{}, false, nil
}

func (v *Vendor) ActiveEmployees(context.Context) ([]attendance.Employee, error) {
	v.mu.RLock()
	defer v.mu.RUnlock()
	if v.err != nil {
		return nil, v.err
	}
	return v.active(), nil
}

func (v *Vendor) SearchEmployees(_ context.Context, search string, limit int) ([]attendance.Employee, error) {
	v.mu.RLock()
	defer v.mu.RUnlock()
	if v.err != nil {
		return nil, v.err
	}
	needle := strings.ToLower(strings.TrimSpace(search))
	var out []attendance.Employee
	for _, e := range v.active() {
		if needle == "" ||
			strings.Contains(strings.ToLower(e.Name), needle) ||
			strings.Contains(strings.ToLower(e.CardNo), needle) ||
			strings.Contains(strings.ToLower(e.EmployeeID), needle) {
			out = append(out, e)
		}
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}

func (v *Vendor) CountActive(context.Context) (int, error) {
	v.mu.RLock()
	defer v.mu.RUnlock()
	if v.err != nil {
		return 0, v.err
	}
	return len(v.active()), nil
}

var (
	_ store.EventSource       = (*Vendor)(nil)
	_ store.EmployeeDirectory = (*Vendor)(nil)
)
