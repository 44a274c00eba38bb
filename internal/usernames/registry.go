package usernames

import "github.com/aymen-fkir/sku-review-generator/internal/models"

// Registry is the set of usernames already handed out in one run.
// It only grows until Reset.
type Registry struct {
	used map[string]struct{}
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{used: make(map[string]struct{})}
}

func (r *Registry) Contains(name string) bool {
	_, ok := r.used[name]
	return ok
}

func (r *Registry) Add(name string) {
	r.used[name] = struct{}{}
}

func (r *Registry) Len() int {
	return len(r.used)
}

// Reset forgets every username.
func (r *Registry) Reset() {
	clear(r.used)
}

// Rebuild resets the registry to the usernames of restored records.
func (r *Registry) Rebuild(records []models.ReviewRecord) {
	r.Reset()
	for _, rec := range records {
		if rec.Username != "" {
			r.Add(rec.Username)
		}
	}
}
