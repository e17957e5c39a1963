package service

const (
	DefaultPageLimit = 20
	MaxPageLimit     = 100
)

// Page is a normalized limit/offset pair.
type Page struct {
	Limit  int32
	Offset int32
}

// NewPage clamps limit to [1, MaxPageLimit] (0 means the default) and
// floors offset at zero.
func NewPage(limit, offset int) Page {
	switch {
	case limit <= 0:
		limit = DefaultPageLimit
	case limit > MaxPageLimit:
		limit = MaxPageLimit
	}
	if offset < 0 {
		offset = 0
	}
	return Page{Limit: int32(limit), Offset: int32(offset)}
}
