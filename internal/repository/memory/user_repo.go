package memory

import (
	"context"

	"github.com/simplelender/backend/internal/db"
)

type UserRepository struct {
	store *Store
}

func (r *UserRepository) CreateUser(_ context.Context, in db.CreateUserInput) (*db.User, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range s.users {
		if u.Email == in.Email {
			return nil, db.ErrEmailTaken
		}
	}
	now := s.now()
	row := &userRow{
		User: db.User{
			ID:           in.ID,
			FirstName:    in.FirstName,
			LastName:     in.LastName,
			Email:        in.Email,
			Phone:        in.Phone,
			PasswordHash: in.PasswordHash,
			CreatedAt:    now,
			UpdatedAt:    now,
		},
		seq: s.next(),
	}
	s.users[in.ID] = row
	out := row.User
	return &out, nil
}

func (r *UserRepository) GetUserByEmail(_ context.Context, email string) (*db.User, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, u := range s.users {
		if u.Email == email {
			out := u.User
			return &out, nil
		}
	}
	return nil, db.ErrUserNotFound
}

func (r *UserRepository) UpdateProfile(_ context.Context, email string, in db.ProfileUpdate) (*db.User, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range s.users {
		if u.Email != email {
			continue
		}
		if in.FirstName != nil {
			u.FirstName = *in.FirstName
		}
		if in.LastName != nil {
			u.LastName = *in.LastName
		}
		if in.Phone != nil {
			u.Phone = *in.Phone
		}
		u.UpdatedAt = s.now()
		out := u.User
		return &out, nil
	}
	return nil, db.ErrUserNotFound
}
