package page

import "errors"

// ErrNilBackend is returned when a Page is constructed without a texture
// backend.
var ErrNilBackend = errors.New("page: backend is nil")

// Handle is an opaque texture handle owned by the texture backend. The
// page never inspects it; it only carries it between Create, Update, and
// Destroy calls.
type Handle any

// Backend is the client-supplied texture factory. It is the only thing
// in this module that touches an actual GPU or software texture; the
// rest of the cache only ever holds a Handle.
type Backend interface {
	// Create allocates a texture of the given size from the initial RGBA
	// buffer (width*height*4 bytes) and returns an opaque handle.
	Create(width, height int, initial []byte) (Handle, error)

	// Update uploads the full RGBA buffer to the texture identified by
	// handle. The buffer's bytes may be read synchronously during the
	// call; the page retains ownership of buf and may mutate it after
	// Update returns.
	Update(h Handle, buf []byte) error

	// Destroy releases the texture. Called when the owning Variant Atlas
	// is torn down.
	Destroy(h Handle) error
}
