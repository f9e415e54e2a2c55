// Package memory provides a map-backed implementation of the repository
// interfaces. InTransaction snapshots the whole state and restores it when
// the unit of work fails, giving the same all-or-nothing guarantee the
// MySQL-backed transaction manager provides. Intended for tests and local
// development.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/pointward/rewards-backend/internal/model"
	"github.com/pointward/rewards-backend/internal/repository"
	"gorm.io/gorm"
)

type completionKey struct {
	uid    string
	taskID uint64
}

type state struct {
	accounts    map[string]model.Account
	tasks       map[uint64]model.Task
	completions map[completionKey]model.TaskCompletion
	nextTaskID  uint64
}

func (st *state) clone() *state {
	cp := &state{
		accounts:    make(map[string]model.Account, len(st.accounts)),
		tasks:       make(map[uint64]model.Task, len(st.tasks)),
		completions: make(map[completionKey]model.TaskCompletion, len(st.completions)),
		nextTaskID:  st.nextTaskID,
	}
	for k, v := range st.accounts {
		cp.accounts[k] = v
	}
	for k, v := range st.tasks {
		cp.tasks[k] = v
	}
	for k, v := range st.completions {
		cp.completions[k] = v
	}
	return cp
}

type Store struct {
	mu sync.Mutex
	st *state

	// creditFailures makes ApplyCredit fail for the given uid, to exercise
	// rollback paths in tests.
	creditFailures map[string]error
}

func NewStore() *Store {
	return &Store{
		st: &state{
			accounts:    map[string]model.Account{},
			tasks:       map[uint64]model.Task{},
			completions: map[completionKey]model.TaskCompletion{},
			nextTaskID:  1,
		},
		creditFailures: map[string]error{},
	}
}

// FailApplyCredit arranges for every ApplyCredit on uid to return err.
func (s *Store) FailApplyCredit(uid string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.creditFailures[uid] = err
}

// Repos returns repositories that lock the store per call.
func (s *Store) Repos() repository.Repos {
	return s.repos(false)
}

func (s *Store) repos(inTx bool) repository.Repos {
	return repository.Repos{
		Accounts:    &accounts{s: s, inTx: inTx},
		Tasks:       &tasks{s: s, inTx: inTx},
		Completions: &completions{s: s, inTx: inTx},
	}
}

// InTransaction holds the store lock for the whole unit of work and rolls
// the state back if fn fails.
func (s *Store) InTransaction(ctx context.Context, fn func(r repository.Repos) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	snapshot := s.st.clone()
	if err := fn(s.repos(true)); err != nil {
		s.st = snapshot
		return err
	}
	return nil
}

func (s *Store) run(inTx bool, fn func(st *state) error) error {
	if !inTx {
		s.mu.Lock()
		defer s.mu.Unlock()
	}
	return fn(s.st)
}

type accounts struct {
	s    *Store
	inTx bool
}

func (r *accounts) FindByUID(ctx context.Context, uid string) (*model.Account, error) {
	var out *model.Account
	err := r.s.run(r.inTx, func(st *state) error {
		a, ok := st.accounts[uid]
		if !ok {
			return gorm.ErrRecordNotFound
		}
		out = &a
		return nil
	})
	return out, err
}

// FindByUIDForUpdate matches the MySQL locking read; the store's mutex
// already serializes transactions, so the lookup itself is identical.
func (r *accounts) FindByUIDForUpdate(ctx context.Context, uid string) (*model.Account, error) {
	return r.FindByUID(ctx, uid)
}

func (r *accounts) FindByReferralCode(ctx context.Context, code string) (*model.Account, error) {
	var out *model.Account
	err := r.s.run(r.inTx, func(st *state) error {
		for _, a := range st.accounts {
			if a.ReferralCode == code {
				cp := a
				out = &cp
				return nil
			}
		}
		return gorm.ErrRecordNotFound
	})
	return out, err
}

func (r *accounts) Create(ctx context.Context, a *model.Account) error {
	return r.s.run(r.inTx, func(st *state) error {
		if _, ok := st.accounts[a.UID]; ok {
			return gorm.ErrDuplicatedKey
		}
		a.CreatedAt = time.Now()
		a.UpdatedAt = a.CreatedAt
		st.accounts[a.UID] = *a
		return nil
	})
}

func (r *accounts) ApplyCredit(ctx context.Context, uid string, amount int64, level int) error {
	return r.s.run(r.inTx, func(st *state) error {
		if err, ok := r.s.creditFailures[uid]; ok {
			return err
		}
		a, ok := st.accounts[uid]
		if !ok {
			return gorm.ErrRecordNotFound
		}
		a.Points += amount
		a.TotalEarned += amount
		a.Level = level
		a.UpdatedAt = time.Now()
		st.accounts[uid] = a
		return nil
	})
}

func (r *accounts) ListByReferrer(ctx context.Context, uid string) ([]model.Account, error) {
	var out []model.Account
	err := r.s.run(r.inTx, func(st *state) error {
		for _, a := range st.accounts {
			if a.ReferredBy != nil && *a.ReferredBy == uid {
				out = append(out, a)
			}
		}
		return nil
	})
	return out, err
}

type tasks struct {
	s    *Store
	inTx bool
}

func (r *tasks) FindByID(ctx context.Context, id uint64) (*model.Task, error) {
	var out *model.Task
	err := r.s.run(r.inTx, func(st *state) error {
		t, ok := st.tasks[id]
		if !ok {
			return gorm.ErrRecordNotFound
		}
		out = &t
		return nil
	})
	return out, err
}

func (r *tasks) Create(ctx context.Context, t *model.Task) error {
	return r.s.run(r.inTx, func(st *state) error {
		if t.ID == 0 {
			t.ID = st.nextTaskID
			st.nextTaskID++
		} else if t.ID >= st.nextTaskID {
			st.nextTaskID = t.ID + 1
		}
		t.CreatedAt = time.Now()
		t.UpdatedAt = t.CreatedAt
		st.tasks[t.ID] = *t
		return nil
	})
}

func (r *tasks) ListActive(ctx context.Context) ([]model.Task, error) {
	var out []model.Task
	err := r.s.run(r.inTx, func(st *state) error {
		for id := uint64(1); id < st.nextTaskID; id++ {
			if t, ok := st.tasks[id]; ok && t.Active {
				out = append(out, t)
			}
		}
		return nil
	})
	return out, err
}

type completions struct {
	s    *Store
	inTx bool
}

func (r *completions) FindByKey(ctx context.Context, uid string, taskID uint64) (*model.TaskCompletion, error) {
	var out *model.TaskCompletion
	err := r.s.run(r.inTx, func(st *state) error {
		c, ok := st.completions[completionKey{uid, taskID}]
		if !ok {
			return gorm.ErrRecordNotFound
		}
		out = &c
		return nil
	})
	return out, err
}

func (r *completions) Create(ctx context.Context, c *model.TaskCompletion) error {
	return r.s.run(r.inTx, func(st *state) error {
		key := completionKey{c.AccountUID, c.TaskID}
		if _, ok := st.completions[key]; ok {
			return gorm.ErrDuplicatedKey
		}
		c.CreatedAt = time.Now()
		c.UpdatedAt = c.CreatedAt
		st.completions[key] = *c
		return nil
	})
}

func (r *completions) StartIfAvailable(ctx context.Context, uid string, taskID uint64, at time.Time) (int64, error) {
	var n int64
	err := r.s.run(r.inTx, func(st *state) error {
		key := completionKey{uid, taskID}
		c, ok := st.completions[key]
		if !ok || c.Status != model.CompletionStatusAvailable {
			return nil
		}
		c.Status = model.CompletionStatusInProgress
		c.StartedAt = &at
		c.UpdatedAt = at
		st.completions[key] = c
		n = 1
		return nil
	})
	return n, err
}

func (r *completions) CompleteIfInProgress(ctx context.Context, uid string, taskID uint64, at time.Time) (int64, error) {
	var n int64
	err := r.s.run(r.inTx, func(st *state) error {
		key := completionKey{uid, taskID}
		c, ok := st.completions[key]
		if !ok || c.Status != model.CompletionStatusInProgress {
			return nil
		}
		c.Status = model.CompletionStatusCompleted
		c.CompletedAt = &at
		c.UpdatedAt = at
		st.completions[key] = c
		n = 1
		return nil
	})
	return n, err
}

func (r *completions) ResetToAvailable(ctx context.Context, uid string, taskID uint64) (int64, error) {
	var n int64
	err := r.s.run(r.inTx, func(st *state) error {
		key := completionKey{uid, taskID}
		c, ok := st.completions[key]
		if !ok {
			return nil
		}
		c.Status = model.CompletionStatusAvailable
		c.StartedAt = nil
		c.CompletedAt = nil
		c.UpdatedAt = time.Now()
		st.completions[key] = c
		n = 1
		return nil
	})
	return n, err
}

func (r *completions) ListByAccount(ctx context.Context, uid string) ([]model.TaskCompletion, error) {
	var out []model.TaskCompletion
	err := r.s.run(r.inTx, func(st *state) error {
		for key, c := range st.completions {
			if key.uid == uid {
				out = append(out, c)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(out, func(i, j int) bool { return out[i].TaskID < out[j].TaskID })
	return out, nil
}

func (r *completions) SumCompletedPoints(ctx context.Context, uid string) (int64, error) {
	var total int64
	err := r.s.run(r.inTx, func(st *state) error {
		for key, c := range st.completions {
			if key.uid != uid || c.Status != model.CompletionStatusCompleted {
				continue
			}
			if t, ok := st.tasks[key.taskID]; ok {
				total += t.Points
			}
		}
		return nil
	})
	return total, err
}
