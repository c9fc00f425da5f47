package auth

import (
	"context"
	"sync"
)

var _ usersRepo = (*repoMock)(nil)

type repoMock struct {
	Users map[int]*User
	mutex sync.Mutex
}

func newRepoMock() *repoMock {
	return &repoMock{
		Users: make(map[int]*User),
	}
}

func (r *repoMock) addUser(user *User) {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	r.Users[user.ID] = user
}

func (r *repoMock) GetByUsernameOrEmail(_ context.Context, login string) (*User, error) {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	for _, u := range r.Users {
		if u.Username == login || u.Email == login {
			return u, nil
		}
	}
	return nil, ErrUserNotFound
}

func (r *repoMock) GetByID(_ context.Context, id int) (*User, error) {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	if u, ok := r.Users[id]; ok {
		return u, nil
	}
	return nil, ErrUserNotFound
}
