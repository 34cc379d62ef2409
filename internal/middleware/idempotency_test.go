package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"

	internalRedis "shuttle/internal/redis"
)

type memoryStore struct {
	mu        sync.Mutex
	responses map[string]internalRedis.StoredResponse
}

func newMemoryStore() *memoryStore {
	return &memoryStore{responses: make(map[string]internalRedis.StoredResponse)}
}

func (s *memoryStore) Lookup(ctx context.Context, key string) (*internalRedis.StoredResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	resp, ok := s.responses[key]
	if !ok {
		return nil, nil
	}
	return &resp, nil
}

func (s *memoryStore) Reserve(ctx context.Context, key string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.responses[key]; ok {
		return false, nil
	}
	s.responses[key] = internalRedis.StoredResponse{}
	return true, nil
}

func (s *memoryStore) Save(ctx context.Context, key string, resp internalRedis.StoredResponse) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.responses[key] = resp
	return nil
}

func (s *memoryStore) Release(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.responses, key)
	return nil
}

func newIdempotentRouter(store internalRedis.ResponseStore, status int, calls *int) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(IdempotencyMiddleware(store, nil))
	router.POST("/v1/bookings", func(c *gin.Context) {
		*calls++
		c.JSON(status, gin.H{"call": *calls})
	})
	return router
}

func post(router http.Handler, key string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/v1/bookings", nil)
	if key != "" {
		req.Header.Set(idempotencyHeader, key)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestIdempotency_ReplaysStoredResponse(t *testing.T) {
	t.Parallel()

	calls := 0
	router := newIdempotentRouter(newMemoryStore(), http.StatusCreated, &calls)

	first := post(router, "k-1")
	second := post(router, "k-1")

	if calls != 1 {
		t.Errorf("expected handler to run once, ran %d times", calls)
	}
	if second.Code != http.StatusCreated || second.Body.String() != first.Body.String() {
		t.Errorf("expected replay of %d %q, got %d %q", first.Code, first.Body.String(), second.Code, second.Body.String())
	}
}

func TestIdempotency_WithoutKeyAlwaysRuns(t *testing.T) {
	t.Parallel()

	calls := 0
	router := newIdempotentRouter(newMemoryStore(), http.StatusCreated, &calls)

	post(router, "")
	post(router, "")

	if calls != 2 {
		t.Errorf("expected handler to run twice, ran %d times", calls)
	}
}

func TestIdempotency_ServerErrorsAreNotStored(t *testing.T) {
	t.Parallel()

	calls := 0
	router := newIdempotentRouter(newMemoryStore(), http.StatusInternalServerError, &calls)

	post(router, "k-1")
	post(router, "k-1")

	if calls != 2 {
		t.Errorf("expected retry after a server error, handler ran %d times", calls)
	}
}

func TestIdempotency_InFlightKeyConflicts(t *testing.T) {
	t.Parallel()

	store := newMemoryStore()
	calls := 0
	router := newIdempotentRouter(store, http.StatusCreated, &calls)

	if ok, _ := store.Reserve(context.Background(), "POST:/v1/bookings:k-1"); !ok {
		t.Fatal("expected reservation to succeed")
	}

	rec := post(router, "k-1")
	if rec.Code != http.StatusConflict {
		t.Errorf("expected 409 for in-flight key, got %d", rec.Code)
	}
	if calls != 0 {
		t.Errorf("expected handler not to run, ran %d times", calls)
	}
}
