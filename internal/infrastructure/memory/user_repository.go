package memory

import (
	"context"
	"sort"
	"strings"

	"github.com/jhoicas/erp-api/internal/domain"
	"github.com/jhoicas/erp-api/internal/domain/entity"
	"github.com/jhoicas/erp-api/internal/domain/repository"
)

var _ repository.UserRepository = (*UserRepo)(nil)

// UserRepo usuarios en memoria.
type UserRepo struct {
	v view
}

func (r *UserRepo) Create(_ context.Context, u *entity.User) error {
	return r.v.do(func(st *state) error {
		if _, ok := st.users[u.ID]; ok {
			return domain.ErrDuplicate
		}
		if findByEmail(st, u.Email) != nil {
			return domain.ErrEmailAlreadyExists
		}
		cp := *u
		st.users[u.ID] = &cp
		return nil
	})
}

func (r *UserRepo) GetByID(_ context.Context, id string) (*entity.User, error) {
	var out *entity.User
	err := r.v.do(func(st *state) error {
		if u, ok := st.users[id]; ok {
			cp := *u
			out = &cp
		}
		return nil
	})
	return out, err
}

func (r *UserRepo) GetByEmail(_ context.Context, email string) (*entity.User, error) {
	var out *entity.User
	err := r.v.do(func(st *state) error {
		if u := findByEmail(st, email); u != nil {
			cp := *u
			out = &cp
		}
		return nil
	})
	return out, err
}

// Update conserva puntos y datos de alta: los puntos solo cambian con AddPoints.
func (r *UserRepo) Update(_ context.Context, u *entity.User) error {
	return r.v.do(func(st *state) error {
		cur, ok := st.users[u.ID]
		if !ok {
			return domain.ErrUserNotFound
		}
		if other := findByEmail(st, u.Email); other != nil && other.ID != u.ID {
			return domain.ErrEmailAlreadyExists
		}
		cp := *u
		cp.Points = cur.Points
		cp.CreatedBy = cur.CreatedBy
		cp.CreatedAt = cur.CreatedAt
		st.users[u.ID] = &cp
		return nil
	})
}

func (r *UserRepo) AddPoints(_ context.Context, id string, delta int) error {
	return r.v.do(func(st *state) error {
		u, ok := st.users[id]
		if !ok {
			return domain.ErrUserNotFound
		}
		u.Points += delta
		return nil
	})
}

func (r *UserRepo) List(_ context.Context, limit, offset int) ([]*entity.User, int, error) {
	var (
		out   []*entity.User
		total int
	)
	err := r.v.do(func(st *state) error {
		all := make([]*entity.User, 0, len(st.users))
		for _, u := range st.users {
			cp := *u
			all = append(all, &cp)
		}
		sort.Slice(all, func(i, j int) bool {
			if !all[i].CreatedAt.Equal(all[j].CreatedAt) {
				return all[i].CreatedAt.After(all[j].CreatedAt)
			}
			return all[i].Email < all[j].Email
		})
		total = len(all)
		from, to := page(total, limit, offset)
		out = all[from:to]
		return nil
	})
	return out, total, err
}

func (r *UserRepo) CountActive(_ context.Context) (int, error) {
	n := 0
	err := r.v.do(func(st *state) error {
		for _, u := range st.users {
			if u.Active {
				n++
			}
		}
		return nil
	})
	return n, err
}

func (r *UserRepo) ExistsWithRole(_ context.Context, role entity.Role) (bool, error) {
	found := false
	err := r.v.do(func(st *state) error {
		for _, u := range st.users {
			if u.Role == role {
				found = true
				break
			}
		}
		return nil
	})
	return found, err
}

func (r *UserRepo) Delete(_ context.Context, id string) error {
	return r.v.do(func(st *state) error {
		delete(st.users, id)
		return nil
	})
}

func findByEmail(st *state, email string) *entity.User {
	for _, u := range st.users {
		if strings.EqualFold(u.Email, email) {
			return u
		}
	}
	return nil
}
