package memory

import (
	"context"

	"github.com/vl4ks/filmorate/internal/domain/user"
)

type userRepo struct{ s *Store }

func (r userRepo) Create(ctx context.Context, u *user.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	u.ID = r.s.userSeq.Add(1)
	r.s.users[u.ID] = u.Clone()
	return nil
}

func (r userRepo) Update(ctx context.Context, id int64, fn user.UpdateFunc) (*user.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	current, ok := r.s.users[id]
	if !ok {
		return nil, user.NotFound(id)
	}

	next := current.Clone()
	if err := fn(next); err != nil {
		return nil, err
	}
	next.ID = id

	r.s.users[id] = next
	return next.Clone(), nil
}

func (r userRepo) Delete(ctx context.Context, id int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.users[id]; !ok {
		return user.NotFound(id)
	}
	delete(r.s.users, id)

	for _, likers := range r.s.likes {
		delete(likers, id)
	}
	for friendID := range r.s.friends[id] {
		delete(r.s.friends[friendID], id)
	}
	delete(r.s.friends, id)
	return nil
}

func (r userRepo) FindByID(ctx context.Context, id int64) (*user.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	u, ok := r.s.users[id]
	if !ok {
		return nil, user.NotFound(id)
	}
	return u.Clone(), nil
}

func (r userRepo) FindByIDs(ctx context.Context, ids []int64) ([]*user.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := make([]*user.User, 0, len(ids))
	for _, id := range ids {
		if u, ok := r.s.users[id]; ok {
			out = append(out, u.Clone())
		}
	}
	return out, nil
}

func (r userRepo) FindAll(ctx context.Context) ([]*user.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := sortedValues(r.s.users)
	for i, u := range out {
		out[i] = u.Clone()
	}
	return out, nil
}
