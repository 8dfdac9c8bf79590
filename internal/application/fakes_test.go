package application

import (
	"context"
	"sync"

	"shopbridge/internal/domain"
)

// fakeSessionStore is an in-memory stand-in for the delegated backend.
type fakeSessionStore struct {
	mu       sync.Mutex
	sessions map[string]*domain.Session

	storeErr      error
	findErr       error
	deleteManyErr error

	storeCalls      int
	deleteManyCalls [][]string
}

func newFakeSessionStore() *fakeSessionStore {
	return &fakeSessionStore{sessions: map[string]*domain.Session{}}
}

func (f *fakeSessionStore) Store(ctx context.Context, session *domain.Session) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.storeCalls++
	if f.storeErr != nil {
		return f.storeErr
	}
	f.sessions[session.ID] = session
	return nil
}

func (f *fakeSessionStore) Load(ctx context.Context, id string) (*domain.Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.sessions[id], nil
}

func (f *fakeSessionStore) Delete(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.sessions, id)
	return nil
}

func (f *fakeSessionStore) DeleteMany(ctx context.Context, ids []string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleteManyCalls = append(f.deleteManyCalls, ids)
	if f.deleteManyErr != nil {
		return f.deleteManyErr
	}
	for _, id := range ids {
		delete(f.sessions, id)
	}
	return nil
}

func (f *fakeSessionStore) FindByShop(ctx context.Context, shop string) ([]*domain.Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.findErr != nil {
		return nil, f.findErr
	}
	var out []*domain.Session
	for _, s := range f.sessions {
		if s.Shop == shop {
			out = append(out, s)
		}
	}
	return out, nil
}

// fakePlatform records webhook registration calls and can fail per topic.
type fakePlatform struct {
	mu        sync.Mutex
	topicErrs map[string]error
	calls     []string
}

func (f *fakePlatform) EnsureWebhook(ctx context.Context, shop, accessToken, topic, address string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, topic)
	if f.topicErrs != nil {
		return f.topicErrs[topic]
	}
	return nil
}

// fakeInstallations records Delete calls.
type fakeInstallations struct {
	mu      sync.Mutex
	deleted []string
	err     error
}

func (f *fakeInstallations) Includes(ctx context.Context, shop string) (bool, error) {
	return false, nil
}

func (f *fakeInstallations) Delete(ctx context.Context, shop string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, shop)
	return f.err
}
