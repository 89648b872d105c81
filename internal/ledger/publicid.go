package ledger

import (
	"crypto/rand"
	"io"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

// Public identifier prefixes.
const (
	ContributorIDPrefix  = "DNR-"
	ContributionIDPrefix = "DON-"
)

// IDMinter issues opaque public identifiers.
type IDMinter interface {
	Contributor() string
	Contribution() string
}

// ULIDMinter mints time-ordered ULIDs. Safe for concurrent use.
type ULIDMinter struct {
	mu      sync.Mutex
	entropy io.Reader
	now     func() time.Time
}

// NewULIDMinter returns a minter backed by crypto/rand with monotonic entropy.
func NewULIDMinter() *ULIDMinter {
	return &ULIDMinter{
		entropy: ulid.Monotonic(rand.Reader, 0),
		now:     time.Now,
	}
}

func (m *ULIDMinter) Contributor() string  { return ContributorIDPrefix + m.next() }
func (m *ULIDMinter) Contribution() string { return ContributionIDPrefix + m.next() }

func (m *ULIDMinter) next() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return ulid.MustNew(ulid.Timestamp(m.now()), m.entropy).String()
}
