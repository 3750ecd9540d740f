package features

import (
	"sync"
	"time"

	"platform-observer/src/interfaces"
	"platform-observer/src/logger"
	"platform-observer/src/models"

	"github.com/google/uuid"
)

// -----------------------------------------------------------------------------
// base carries the lifecycle shared by every feature manager: the
// initialized flag, the owner id used for socket subscriptions, the
// polling stop channel and the generation counter that lets late async
// results from a torn-down incarnation be detected and discarded.
// -----------------------------------------------------------------------------

type base struct {
	Config   *models.MConfig
	Logger   *logger.Logger
	API      interfaces.IAPIClient
	Socket   interfaces.ISocketManager
	Store    interfaces.ISnapshotStore
	Exchange interfaces.IDataExchanger

	mu          sync.Mutex
	initialized bool
	generation  uint64
	stop        chan struct{}
	ownerID     string
}

// -----------------------------------------------------------------------------

func newBase(cfg *models.MConfig, log *logger.Logger, api interfaces.IAPIClient,
	sock interfaces.ISocketManager, store interfaces.ISnapshotStore,
	exchange interfaces.IDataExchanger) base {
	return base{
		Config:   cfg,
		Logger:   log,
		API:      api,
		Socket:   sock,
		Store:    store,
		Exchange: exchange,
	}
}

// -----------------------------------------------------------------------------

// beginInit flips the manager to initialized. Returns false when already
// initialized; the caller logs and performs no side effects in that case.
func (b *base) beginInit(name string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.initialized {
		return false
	}
	b.initialized = true
	b.generation++
	b.stop = make(chan struct{})
	b.ownerID = name + "-" + uuid.NewString()
	return true
}

// -----------------------------------------------------------------------------

// beginDestroy tears the lifecycle down. Returns false when the manager
// was never initialized (Destroy tolerates that).
func (b *base) beginDestroy() (string, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.initialized {
		return "", false
	}
	b.initialized = false
	b.generation++
	close(b.stop)
	owner := b.ownerID
	b.ownerID = ""
	return owner, true
}

// -----------------------------------------------------------------------------

// confirmSubscription undoes a socket subscription that raced with Destroy
// between beginInit and the Subscribe call. Returns false when the owner is
// no longer current; the caller then stops its own initialization.
func (b *base) confirmSubscription(owner string) bool {
	b.mu.Lock()
	active := b.initialized && b.ownerID == owner
	b.mu.Unlock()

	if !active {
		b.Socket.Unsubscribe(owner)
	}
	return active
}

// -----------------------------------------------------------------------------

// currentGeneration snapshots the lifecycle generation before an async
// operation starts.
func (b *base) currentGeneration() uint64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.generation
}

// -----------------------------------------------------------------------------

// stillCurrent reports whether an async result begun at generation g may
// still be applied. Must be called with b.mu held.
func (b *base) stillCurrent(g uint64) bool {
	return b.initialized && b.generation == g
}

// -----------------------------------------------------------------------------

// pollLoop drives periodic refreshes. interval is re-evaluated every round
// so managers with a market-aware cadence pick up schedule changes.
func (b *base) pollLoop(stop chan struct{}, interval func() time.Duration, refresh func()) {
	for {
		timer := time.NewTimer(interval())
		select {
		case <-stop:
			timer.Stop()
			return
		case <-timer.C:
			refresh()
		}
	}
}

// -----------------------------------------------------------------------------

// loadCached reads the persisted snapshot when it is fresher than the
// configured cache duration.
func (b *base) loadCached(feature string) ([]byte, bool) {
	if b.Store == nil {
		return nil, false
	}

	payload, savedAt, err := b.Store.Load(feature)
	if err != nil {
		return nil, false
	}

	maxAge := time.Duration(b.Config.Storage.CacheDurationMinutes) * time.Minute
	if time.Since(savedAt) > maxAge {
		return nil, false
	}
	return payload, true
}

// -----------------------------------------------------------------------------

// persist writes the serialized snapshot to the cache store. Failures are
// logged, never propagated: the cache is an optimization.
func (b *base) persist(feature string, payload []byte) {
	if b.Store == nil {
		return
	}
	if err := b.Store.Save(feature, payload, time.Now()); err != nil {
		b.Logger.Warning("Failed to persist %s snapshot: %v", feature, err)
	}
}

// -----------------------------------------------------------------------------

// broadcast pushes a snapshot copy to local UI clients.
func (b *base) broadcast(feature string, snapshot interface{}) {
	if b.Exchange == nil {
		return
	}
	b.Exchange.Broadcast(feature, snapshot)
}
