package service_test

import (
	"context"
	"errors"
	"sync"

	"github.com/google/uuid"

	commonerrors "github.com/yaddak/yaddak/internal/common/errors"
	userdomain "github.com/yaddak/yaddak/internal/user/domain"
)

const testSecret = "test-secret-key-must-be-at-least-32-bytes-long"

type mockUserRepo struct {
	migrateFunc    func(ctx context.Context) error
	getFunc        func(ctx context.Context, id uuid.UUID) (userdomain.User, error)
	getAllFunc     func(ctx context.Context) ([]userdomain.User, error)
	insertFunc     func(ctx context.Context, user userdomain.User) error
	updateFunc     func(ctx context.Context, id uuid.UUID, user userdomain.User) error
	deleteFunc     func(ctx context.Context, id uuid.UUID) error
	findByNameFunc func(ctx context.Context, name string) (userdomain.User, error)
	findByAuthFunc func(ctx context.Context, digest string) (userdomain.User, error)
	nameTakenFunc  func(ctx context.Context, name string, exclude uuid.UUID) (bool, error)
	emailTakenFunc func(ctx context.Context, email string, exclude uuid.UUID) (bool, error)
}

func (m *mockUserRepo) Migrate(ctx context.Context) error {
	if m.migrateFunc != nil {
		return m.migrateFunc(ctx)
	}
	return nil
}

func (m *mockUserRepo) Get(ctx context.Context, id uuid.UUID) (userdomain.User, error) {
	if m.getFunc != nil {
		return m.getFunc(ctx, id)
	}
	return userdomain.User{}, commonerrors.ErrNotFound
}

func (m *mockUserRepo) GetAll(ctx context.Context) ([]userdomain.User, error) {
	if m.getAllFunc != nil {
		return m.getAllFunc(ctx)
	}
	return []userdomain.User{}, nil
}

func (m *mockUserRepo) Insert(ctx context.Context, user userdomain.User) error {
	if m.insertFunc != nil {
		return m.insertFunc(ctx, user)
	}
	return nil
}

func (m *mockUserRepo) Update(ctx context.Context, id uuid.UUID, user userdomain.User) error {
	if m.updateFunc != nil {
		return m.updateFunc(ctx, id, user)
	}
	return nil
}

func (m *mockUserRepo) Delete(ctx context.Context, id uuid.UUID) error {
	if m.deleteFunc != nil {
		return m.deleteFunc(ctx, id)
	}
	return nil
}

func (m *mockUserRepo) FindByName(ctx context.Context, name string) (userdomain.User, error) {
	if m.findByNameFunc != nil {
		return m.findByNameFunc(ctx, name)
	}
	return userdomain.User{}, commonerrors.ErrNotFound
}

func (m *mockUserRepo) FindByAuth(ctx context.Context, digest string) (userdomain.User, error) {
	if m.findByAuthFunc != nil {
		return m.findByAuthFunc(ctx, digest)
	}
	return userdomain.User{}, commonerrors.ErrNotFound
}

func (m *mockUserRepo) NameTaken(ctx context.Context, name string, exclude uuid.UUID) (bool, error) {
	if m.nameTakenFunc != nil {
		return m.nameTakenFunc(ctx, name, exclude)
	}
	return false, nil
}

func (m *mockUserRepo) EmailTaken(ctx context.Context, email string, exclude uuid.UUID) (bool, error) {
	if m.emailTakenFunc != nil {
		return m.emailTakenFunc(ctx, email, exclude)
	}
	return false, nil
}

// memoryUserRepo keeps users in a map and enforces the same uniqueness rules
// as the unique indexes.
type memoryUserRepo struct {
	mu    sync.Mutex
	users map[uuid.UUID]userdomain.User
}

func newMemoryUserRepo() *memoryUserRepo {
	return &memoryUserRepo{users: make(map[uuid.UUID]userdomain.User)}
}

func (m *memoryUserRepo) Migrate(context.Context) error { return nil }

func (m *memoryUserRepo) Get(_ context.Context, id uuid.UUID) (userdomain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return userdomain.User{}, commonerrors.ErrNotFound
	}
	return u, nil
}

func (m *memoryUserRepo) GetAll(context.Context) ([]userdomain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]userdomain.User, 0, len(m.users))
	for _, u := range m.users {
		out = append(out, u)
	}
	return out, nil
}

func (m *memoryUserRepo) Insert(_ context.Context, user userdomain.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.conflict(user, uuid.Nil); err != nil {
		return err
	}
	m.users[user.ID] = user
	return nil
}

func (m *memoryUserRepo) Update(_ context.Context, id uuid.UUID, user userdomain.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[id]; !ok {
		return commonerrors.ErrNotFound
	}
	if err := m.conflict(user, id); err != nil {
		return err
	}
	user.ID = id
	m.users[id] = user
	return nil
}

func (m *memoryUserRepo) Delete(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[id]; !ok {
		return commonerrors.ErrNotFound
	}
	delete(m.users, id)
	return nil
}

func (m *memoryUserRepo) FindByName(_ context.Context, name string) (userdomain.User, error) {
	return m.find(func(u userdomain.User) bool { return u.UserName == name })
}

func (m *memoryUserRepo) FindByAuth(_ context.Context, digest string) (userdomain.User, error) {
	return m.find(func(u userdomain.User) bool { return u.UserAuth == digest })
}

func (m *memoryUserRepo) NameTaken(_ context.Context, name string, exclude uuid.UUID) (bool, error) {
	return m.taken(func(u userdomain.User) bool { return u.UserName == name && u.ID != exclude })
}

func (m *memoryUserRepo) EmailTaken(_ context.Context, email string, exclude uuid.UUID) (bool, error) {
	return m.taken(func(u userdomain.User) bool { return u.UserEmail == email && u.ID != exclude })
}

func (m *memoryUserRepo) find(match func(userdomain.User) bool) (userdomain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if match(u) {
			return u, nil
		}
	}
	return userdomain.User{}, commonerrors.ErrNotFound
}

func (m *memoryUserRepo) conflict(user userdomain.User, self uuid.UUID) error {
	for id, u := range m.users {
		if id == self {
			continue
		}
		if u.UserName == user.UserName || u.UserEmail == user.UserEmail {
			return commonerrors.ErrAlreadyExists
		}
	}
	return nil
}

func (m *memoryUserRepo) taken(match func(userdomain.User) bool) (bool, error) {
	_, err := m.find(match)
	if errors.Is(err, commonerrors.ErrNotFound) {
		return false, nil
	}
	return err == nil, err
}

// mockHasher derives "h:<id>:<name>:<secret>" so tests can assert on inputs.
type mockHasher struct {
	hashFunc   func(id uuid.UUID, name, secret string) (string, error)
	verifyFunc func(digest string, id uuid.UUID, name, secret string) error
}

func (m *mockHasher) Hash(id uuid.UUID, name, secret string) (string, error) {
	if m.hashFunc != nil {
		return m.hashFunc(id, name, secret)
	}
	return "h:" + id.String() + ":" + name + ":" + secret, nil
}

func (m *mockHasher) Verify(digest string, id uuid.UUID, name, secret string) error {
	if m.verifyFunc != nil {
		return m.verifyFunc(digest, id, name, secret)
	}
	expected, _ := m.Hash(id, name, secret)
	if expected != digest {
		return commonerrors.ErrInvalidCredential
	}
	return nil
}

type mockIDGenerator struct {
	newIDFunc func() (uuid.UUID, error)
}

func (m *mockIDGenerator) NewID() (uuid.UUID, error) {
	if m.newIDFunc != nil {
		return m.newIDFunc()
	}
	return uuid.NewRandom()
}
