package firmware

import (
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/moffa90/go-mysb/ihex"
)

// LoadFunc loads the image stored at path.
type LoadFunc func(path string) (*ihex.Image, error)

// Loader returns a LoadFunc reading Intel-HEX files with the given options.
func Loader(opts ...ihex.Option) LoadFunc {
	return func(path string) (*ihex.Image, error) {
		return ihex.Load(path, opts...)
	}
}

// Store memoizes loaded images for the lifetime of the process.
// At most one load per key runs at a time; failed loads are not cached.
//
// Store is safe for concurrent use.
type Store struct {
	load LoadFunc

	mu     sync.RWMutex
	images map[Key]*ihex.Image

	group singleflight.Group
}

// NewStore creates an empty Store. A nil load uses Loader().
func NewStore(load LoadFunc) *Store {
	if load == nil {
		load = Loader()
	}

	return &Store{
		load:   load,
		images: make(map[Key]*ihex.Image),
	}
}

// Get returns the image for key, loading it from path on first use.
func (s *Store) Get(key Key, path string) (*ihex.Image, error) {
	s.mu.RLock()
	img, ok := s.images[key]
	s.mu.RUnlock()
	if ok {
		return img, nil
	}

	v, err, _ := s.group.Do(key.String(), func() (interface{}, error) {
		s.mu.RLock()
		cached, ok := s.images[key]
		s.mu.RUnlock()
		if ok {
			return cached, nil
		}

		loaded, err := s.load(path)
		if err != nil {
			return nil, err
		}

		s.mu.Lock()
		s.images[key] = loaded
		s.mu.Unlock()

		return loaded, nil
	})
	if err != nil {
		return nil, err
	}

	return v.(*ihex.Image), nil
}

// Len returns the number of cached images.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.images)
}
