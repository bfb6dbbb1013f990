package usecase

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/hszk-dev/aora/internal/domain/model"
	"github.com/hszk-dev/aora/internal/domain/repository"
)

// mockDocumentStore provides a configurable mock for DocumentStore.
// Unset functions fall back to an in-memory store so sequential behaviour can be asserted.
type mockDocumentStore struct {
	createFn          func(ctx context.Context, collection, id string, data map[string]any) (*model.Document, error)
	getFn             func(ctx context.Context, collection, id string) (*model.Document, error)
	listFn            func(ctx context.Context, collection string, queries ...repository.Query) ([]*model.Document, error)
	updateIfVersionFn func(ctx context.Context, collection, id string, version int64, data map[string]any) (*model.Document, error)

	calls atomic.Int32

	mu   sync.Mutex
	docs map[string]*model.Document
	seq  int
}

func newMockDocumentStore() *mockDocumentStore {
	return &mockDocumentStore{docs: make(map[string]*model.Document)}
}

func (m *mockDocumentStore) Create(ctx context.Context, collection, id string, data map[string]any) (*model.Document, error) {
	m.calls.Add(1)
	if m.createFn != nil {
		return m.createFn(ctx, collection, id, data)
	}
	return m.put(collection, id, data), nil
}

func (m *mockDocumentStore) Get(ctx context.Context, collection, id string) (*model.Document, error) {
	m.calls.Add(1)
	if m.getFn != nil {
		return m.getFn(ctx, collection, id)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	doc, ok := m.docs[collection+"/"+id]
	if !ok {
		return nil, repository.ErrDocumentNotFound
	}
	return cloneDoc(doc), nil
}

func (m *mockDocumentStore) List(ctx context.Context, collection string, queries ...repository.Query) ([]*model.Document, error) {
	m.calls.Add(1)
	if m.listFn != nil {
		return m.listFn(ctx, collection, queries...)
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	out := []*model.Document{}
	for _, doc := range m.docs {
		if doc.Collection == collection && matches(doc, queries) {
			out = append(out, cloneDoc(doc))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	for _, q := range queries {
		switch q.Kind {
		case repository.QueryOrderDesc:
			sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
		case repository.QueryLimit:
			if len(out) > q.Limit {
				out = out[:q.Limit]
			}
		}
	}
	return out, nil
}

func (m *mockDocumentStore) Update(ctx context.Context, collection, id string, data map[string]any) (*model.Document, error) {
	m.calls.Add(1)
	return m.merge(collection, id, -1, data)
}

func (m *mockDocumentStore) UpdateIfVersion(ctx context.Context, collection, id string, version int64, data map[string]any) (*model.Document, error) {
	m.calls.Add(1)
	if m.updateIfVersionFn != nil {
		return m.updateIfVersionFn(ctx, collection, id, version, data)
	}
	return m.merge(collection, id, version, data)
}

func (m *mockDocumentStore) Delete(ctx context.Context, collection, id string) error {
	m.calls.Add(1)
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.docs[collection+"/"+id]; !ok {
		return repository.ErrDocumentNotFound
	}
	delete(m.docs, collection+"/"+id)
	return nil
}

func (m *mockDocumentStore) put(collection, id string, data map[string]any) *model.Document {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seq++
	ts := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC).Add(time.Duration(m.seq) * time.Minute)
	doc := &model.Document{
		ID:         id,
		Collection: collection,
		Data:       data,
		Version:    1,
		CreatedAt:  ts,
		UpdatedAt:  ts,
	}
	m.docs[collection+"/"+id] = doc
	return cloneDoc(doc)
}

func (m *mockDocumentStore) merge(collection, id string, version int64, data map[string]any) (*model.Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	doc, ok := m.docs[collection+"/"+id]
	if !ok {
		return nil, repository.ErrDocumentNotFound
	}
	if version >= 0 && doc.Version != version {
		return nil, repository.ErrVersionConflict
	}
	for k, v := range data {
		doc.Data[k] = v
	}
	doc.Version++
	return cloneDoc(doc), nil
}

func matches(doc *model.Document, queries []repository.Query) bool {
	for _, q := range queries {
		switch q.Kind {
		case repository.QueryEqual:
			if fmt.Sprint(doc.Data[q.Field]) != fmt.Sprint(q.Value) {
				return false
			}
		case repository.QuerySearch:
			s, _ := doc.Data[q.Field].(string)
			if !strings.Contains(strings.ToLower(s), strings.ToLower(fmt.Sprint(q.Value))) {
				return false
			}
		}
	}
	return true
}

func cloneDoc(doc *model.Document) *model.Document {
	c := *doc
	c.Data = make(map[string]any, len(doc.Data))
	for k, v := range doc.Data {
		c.Data[k] = v
	}
	return &c
}

// mockObjectStorage provides a configurable mock for ObjectStorage.
type mockObjectStorage struct {
	uploadFn     func(ctx context.Context, key string, reader io.Reader, size int64, contentType string) error
	viewURLFn    func(ctx context.Context, key string) (string, error)
	previewURLFn func(ctx context.Context, key string, width, height int) (string, error)
	existsFn     func(ctx context.Context, key string) (bool, error)

	calls atomic.Int32
}

func (m *mockObjectStorage) Upload(ctx context.Context, key string, reader io.Reader, size int64, contentType string) error {
	m.calls.Add(1)
	if m.uploadFn != nil {
		return m.uploadFn(ctx, key, reader, size, contentType)
	}
	return nil
}

func (m *mockObjectStorage) ViewURL(ctx context.Context, key string) (string, error) {
	m.calls.Add(1)
	if m.viewURLFn != nil {
		return m.viewURLFn(ctx, key)
	}
	return "http://files.example.com/" + key, nil
}

func (m *mockObjectStorage) PreviewURL(ctx context.Context, key string, width, height int) (string, error) {
	m.calls.Add(1)
	if m.previewURLFn != nil {
		return m.previewURLFn(ctx, key, width, height)
	}
	return fmt.Sprintf("http://files.example.com/%s?width=%d&height=%d", key, width, height), nil
}

func (m *mockObjectStorage) Delete(ctx context.Context, key string) error {
	m.calls.Add(1)
	return nil
}

func (m *mockObjectStorage) Exists(ctx context.Context, key string) (bool, error) {
	m.calls.Add(1)
	if m.existsFn != nil {
		return m.existsFn(ctx, key)
	}
	return true, nil
}

// mockAuthService provides a configurable mock for AuthService.
type mockAuthService struct {
	createAccountFn func(ctx context.Context, id, email, password, name string) (*model.Account, error)
	createSessionFn func(ctx context.Context, email, password string) (*model.Session, error)
	deleteSessionFn func(ctx context.Context, token string) error
	getAccountFn    func(ctx context.Context, token string) (*model.Account, error)

	calls atomic.Int32
}

func (m *mockAuthService) CreateAccount(ctx context.Context, id, email, password, name string) (*model.Account, error) {
	m.calls.Add(1)
	if m.createAccountFn != nil {
		return m.createAccountFn(ctx, id, email, password, name)
	}
	return &model.Account{ID: id, Email: email, Name: name}, nil
}

func (m *mockAuthService) CreateEmailPasswordSession(ctx context.Context, email, password string) (*model.Session, error) {
	m.calls.Add(1)
	if m.createSessionFn != nil {
		return m.createSessionFn(ctx, email, password)
	}
	return &model.Session{ID: "s1", AccountID: "a1", Token: "token-1"}, nil
}

func (m *mockAuthService) DeleteSession(ctx context.Context, token string) error {
	m.calls.Add(1)
	if m.deleteSessionFn != nil {
		return m.deleteSessionFn(ctx, token)
	}
	return nil
}

func (m *mockAuthService) GetAccount(ctx context.Context, token string) (*model.Account, error) {
	m.calls.Add(1)
	if m.getAccountFn != nil {
		return m.getAccountFn(ctx, token)
	}
	return nil, repository.ErrUnauthorized
}

type mockAvatars struct{}

func (mockAvatars) InitialsURL(name string) string {
	return "http://avatars.example.com/initials?name=" + name
}

// mockEventPublisher records published events.
type mockEventPublisher struct {
	publishFn func(ctx context.Context, event repository.ActivityEvent) error

	mu     sync.Mutex
	events []repository.ActivityEvent
}

func (m *mockEventPublisher) PublishEvent(ctx context.Context, event repository.ActivityEvent) error {
	if m.publishFn != nil {
		return m.publishFn(ctx, event)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, event)
	return nil
}

func (m *mockEventPublisher) types() []repository.EventType {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]repository.EventType, 0, len(m.events))
	for _, e := range m.events {
		out = append(out, e.Type)
	}
	return out
}

// testDeps bundles the mocks behind a service under test.
type testDeps struct {
	docs   *mockDocumentStore
	files  *mockObjectStorage
	auth   *mockAuthService
	events *mockEventPublisher

	bestEffortMu sync.Mutex
	bestEffort   []string
}

func newTestDeps() *testDeps {
	return &testDeps{
		docs:   newMockDocumentStore(),
		files:  &mockObjectStorage{},
		auth:   &mockAuthService{},
		events: &mockEventPublisher{},
	}
}

func (d *testDeps) service() Service {
	cfg := DefaultServiceConfig()
	cfg.OnBestEffortFailure = func(op string, err error) {
		d.bestEffortMu.Lock()
		defer d.bestEffortMu.Unlock()
		d.bestEffort = append(d.bestEffort, op)
	}
	return NewService(d.docs, d.files, d.auth, mockAvatars{}, d.events, cfg)
}

func (d *testDeps) remoteCalls() int32 {
	return d.docs.calls.Load() + d.files.calls.Load() + d.auth.calls.Load()
}

func (d *testDeps) bestEffortOps() []string {
	d.bestEffortMu.Lock()
	defer d.bestEffortMu.Unlock()
	return append([]string(nil), d.bestEffort...)
}

func (d *testDeps) seedUser(id string, saved ...string) {
	refs := make([]any, 0, len(saved))
	for _, v := range saved {
		refs = append(refs, map[string]any{model.AttrID: v})
	}
	d.docs.put("users", id, map[string]any{
		"accountId":   "acc-" + id,
		"email":       id + "@example.com",
		"username":    id,
		"avatar":      "http://avatars.example.com/" + id,
		"savedVideos": refs,
	})
}

func (d *testDeps) seedPost(id, title, userID string) {
	d.docs.put("videos", id, map[string]any{
		"title":     title,
		"thumbnail": "http://files.example.com/t-" + id,
		"video":     "http://files.example.com/v-" + id,
		"prompt":    "prompt " + id,
		"users":     userID,
	})
}

// mockService is a mock implementation of Service for testing decorators.
type mockService struct {
	Service

	getAllPostsFn     func(ctx context.Context) ([]*model.Post, error)
	getLatestPostsFn  func(ctx context.Context) ([]*model.Post, error)
	createVideoPostFn func(ctx context.Context, form model.PostForm) (*model.Post, error)

	getAllCount    atomic.Int32
	getLatestCount atomic.Int32
}

func (m *mockService) GetAllPosts(ctx context.Context) ([]*model.Post, error) {
	m.getAllCount.Add(1)
	if m.getAllPostsFn != nil {
		return m.getAllPostsFn(ctx)
	}
	return []*model.Post{}, nil
}

func (m *mockService) GetLatestPosts(ctx context.Context) ([]*model.Post, error) {
	m.getLatestCount.Add(1)
	if m.getLatestPostsFn != nil {
		return m.getLatestPostsFn(ctx)
	}
	return []*model.Post{}, nil
}

func (m *mockService) CreateVideoPost(ctx context.Context, form model.PostForm) (*model.Post, error) {
	if m.createVideoPostFn != nil {
		return m.createVideoPostFn(ctx, form)
	}
	return &model.Post{ID: "p-new", Title: form.Title}, nil
}

// mockPostListCache is a mock implementation of PostListCache for testing.
type mockPostListCache struct {
	mu   sync.Mutex
	data map[string][]*model.Post

	getFn        func(ctx context.Context, key string) ([]*model.Post, bool, error)
	setFn        func(ctx context.Context, key string, posts []*model.Post, ttl time.Duration) error
	invalidateFn func(ctx context.Context) error
}

func newMockPostListCache() *mockPostListCache {
	return &mockPostListCache{data: make(map[string][]*model.Post)}
}

func (m *mockPostListCache) Get(ctx context.Context, key string) ([]*model.Post, bool, error) {
	if m.getFn != nil {
		return m.getFn(ctx, key)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	posts, ok := m.data[key]
	return posts, ok, nil
}

func (m *mockPostListCache) Set(ctx context.Context, key string, posts []*model.Post, ttl time.Duration) error {
	if m.setFn != nil {
		return m.setFn(ctx, key, posts, ttl)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = posts
	return nil
}

func (m *mockPostListCache) Invalidate(ctx context.Context) error {
	if m.invalidateFn != nil {
		return m.invalidateFn(ctx)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data = make(map[string][]*model.Post)
	return nil
}

func (m *mockPostListCache) len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.data)
}
