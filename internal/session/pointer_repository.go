package session

import (
	"time"

	"support-chat-be/internal/entity"

	"github.com/patrickmn/go-cache"
)

// PointerRepository holds each client's session pointer {id, createdAt}.
// It stands in for the widget's device-local storage: the backend keeps it
// per client id so resumption survives page reloads. The TTL counts from
// pointer creation, not lastActive, and is evaluated on read; an
// already-resumed session is never interrupted when it crosses the window.
type PointerRepository struct {
	cache *cache.Cache
	ttl   time.Duration
	now   func() time.Time
}

func NewPointerRepository(ttl time.Duration) *PointerRepository {
	return &PointerRepository{
		cache: cache.New(ttl, 10*time.Minute),
		ttl:   ttl,
		now:   time.Now,
	}
}

// WithClock overrides the clock; tests age pointers without sleeping.
func (r *PointerRepository) WithClock(now func() time.Time) *PointerRepository {
	r.now = now
	return r
}

func (r *PointerRepository) Save(clientId string, pointer entity.SessionPointer) {
	r.cache.Set(clientId, pointer, cache.DefaultExpiration)
}

// Get returns the pointer if it exists and is younger than the TTL; an
// expired pointer is discarded as a side effect, like the widget clearing
// its stored session.
func (r *PointerRepository) Get(clientId string) (entity.SessionPointer, bool) {
	x, found := r.cache.Get(clientId)
	if !found {
		return entity.SessionPointer{}, false
	}
	pointer := x.(entity.SessionPointer)

	age := r.now().UnixMilli() - pointer.CreatedAt
	if age >= r.ttl.Milliseconds() {
		r.cache.Delete(clientId)
		return entity.SessionPointer{}, false
	}
	return pointer, true
}

func (r *PointerRepository) Delete(clientId string) {
	r.cache.Delete(clientId)
}
