package server

import (
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/frontinsight/loginpage/internal/form"
)

// FormRegistry keeps the server-side form of every rendered page, keyed
// by the token embedded in the page. Entries expire ttl after they were
// last created or resolved; evicted forms are disposed.
type FormRegistry struct {
	cache   *expirable.LRU[string, *form.Form]
	newForm func() *form.Form
}

func NewFormRegistry(size int, ttl time.Duration, newForm func() *form.Form) *FormRegistry {
	onEvict := func(_ string, f *form.Form) {
		f.Dispose()
	}
	return &FormRegistry{
		cache:   expirable.NewLRU[string, *form.Form](size, onEvict, ttl),
		newForm: newForm,
	}
}

// Create registers a new form under a fresh token.
func (r *FormRegistry) Create() (string, *form.Form) {
	token := uuid.NewString()
	f := r.newForm()
	r.cache.Add(token, f)
	return token, f
}

func (r *FormRegistry) Get(token string) (*form.Form, bool) {
	if token == "" {
		return nil, false
	}
	return r.cache.Get(token)
}

// Resolve returns the form registered under token, or a new form with a
// new token when the token is unknown or expired. A resolved form's
// expiry starts over.
func (r *FormRegistry) Resolve(token string) (string, *form.Form) {
	if f, ok := r.Get(token); ok {
		r.cache.Add(token, f)
		return token, f
	}
	return r.Create()
}

func (r *FormRegistry) Len() int {
	return r.cache.Len()
}

// Purge disposes every registered form.
func (r *FormRegistry) Purge() {
	r.cache.Purge()
}
