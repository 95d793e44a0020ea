package persist

import (
	"encoding/json"
	"sync"

	"github.com/encuestas-platform/client-layer/pkg/logger"
)

// DefaultNamespace prefixes every storage key.
const DefaultNamespace = "encuestas"

// SnapshotFunc returns a store's current state as serializable fields. The
// adapter filters it through the configured allowlist; values stay opaque.
type SnapshotFunc func() map[string]json.RawMessage

// Config maps a store identifier to the fields mirrored for it. A store
// with no configured fields is left untouched.
type Config map[string][]string

// DefaultConfig mirrors the session credential and nothing for the survey
// collection.
func DefaultConfig() Config {
	return Config{
		"session": {"token"},
		"surveys": {},
	}
}

// Adapter is the generic write-through mirror. It has no knowledge of any
// store's schema beyond the configured field names.
type Adapter struct {
	storage   Storage
	namespace string
	config    Config
	log       *logger.Logger

	mu        sync.Mutex
	snapshots map[string]SnapshotFunc
}

// NewAdapter creates an adapter over the given storage backend.
func NewAdapter(storage Storage, config Config, log *logger.Logger) *Adapter {
	if log == nil {
		log = logger.NewDefault("persist")
	}
	if config == nil {
		config = DefaultConfig()
	}
	return &Adapter{
		storage:   storage,
		namespace: DefaultNamespace,
		config:    config,
		log:       log,
		snapshots: make(map[string]SnapshotFunc),
	}
}

func (a *Adapter) key(storeID string) string {
	return a.namespace + "-" + storeID
}

// Register binds a store's snapshot function. Call once at store
// construction, before the first Flush.
func (a *Adapter) Register(storeID string, snapshot SnapshotFunc) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.snapshots[storeID] = snapshot
}

// Rehydrate reads the store's persisted payload and returns the configured
// fields present in it. Best-effort: a missing key yields an empty map and
// an unparseable payload is discarded rather than failing store creation.
func (a *Adapter) Rehydrate(storeID string) map[string]json.RawMessage {
	fields := a.config[storeID]
	restored := make(map[string]json.RawMessage)
	if len(fields) == 0 {
		return restored
	}

	key := a.key(storeID)
	data, ok, err := a.storage.Get(key)
	if err != nil {
		a.log.WithError(err).WithField("store", storeID).Warn("read persisted state failed")
		return restored
	}
	if !ok {
		return restored
	}

	var parsed map[string]json.RawMessage
	if err := json.Unmarshal(data, &parsed); err != nil {
		a.log.WithError(err).WithField("store", storeID).Warn("discarding corrupt persisted state")
		if err := a.storage.Delete(key); err != nil {
			a.log.WithError(err).WithField("store", storeID).Warn("remove corrupt persisted state failed")
		}
		return restored
	}

	for _, field := range fields {
		if v, ok := parsed[field]; ok {
			restored[field] = v
		}
	}
	return restored
}

// Flush serializes the configured fields of the store's current snapshot
// and writes them through. Best-effort: failures are logged, never
// surfaced to the mutating action.
func (a *Adapter) Flush(storeID string) {
	fields := a.config[storeID]
	if len(fields) == 0 {
		return
	}

	a.mu.Lock()
	snapshot := a.snapshots[storeID]
	a.mu.Unlock()
	if snapshot == nil {
		return
	}

	state := snapshot()
	payload := make(map[string]json.RawMessage, len(fields))
	for _, field := range fields {
		if v, ok := state[field]; ok {
			payload[field] = v
		}
	}

	data, err := json.Marshal(payload)
	if err != nil {
		a.log.WithError(err).WithField("store", storeID).Warn("serialize persisted state failed")
		return
	}
	if err := a.storage.Set(a.key(storeID), data); err != nil {
		a.log.WithError(err).WithField("store", storeID).Warn("write persisted state failed")
	}
}
