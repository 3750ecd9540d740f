package features

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"platform-observer/src/logger"
	"platform-observer/src/models"
)

// -----------------------------------------------------------------------------
// Test Doubles
// -----------------------------------------------------------------------------

// fakeAPI serves canned JSON per endpoint. onGet, when set, runs before the
// response is returned so tests can interleave socket patches with a fetch.
type fakeAPI struct {
	mu        sync.Mutex
	responses map[string]string
	errs      map[string]error
	getCalls  map[string]int
	postCalls map[string]int
	onGet     func(endpoint string)
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{
		responses: map[string]string{},
		errs:      map[string]error{},
		getCalls:  map[string]int{},
		postCalls: map[string]int{},
	}
}

func (f *fakeAPI) Get(ctx context.Context, endpoint string, out interface{}) error {
	f.mu.Lock()
	f.getCalls[endpoint]++
	body, ok := f.responses[endpoint]
	err := f.errs[endpoint]
	hook := f.onGet
	f.mu.Unlock()

	if hook != nil {
		hook(endpoint)
	}
	if err != nil {
		return err
	}
	if !ok {
		return context.Canceled
	}
	return json.Unmarshal([]byte(body), out)
}

func (f *fakeAPI) Post(ctx context.Context, endpoint string, body interface{}, out interface{}) error {
	f.mu.Lock()
	f.postCalls[endpoint]++
	resp, ok := f.responses["POST "+endpoint]
	err := f.errs["POST "+endpoint]
	f.mu.Unlock()

	if err != nil {
		return err
	}
	if !ok || out == nil {
		return nil
	}
	return json.Unmarshal([]byte(resp), out)
}

func (f *fakeAPI) calls(endpoint string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.getCalls[endpoint]
}

// -----------------------------------------------------------------------------

// fakeSocket records subscriptions without any real connection. onSubscribe,
// when set, fires once before the registration lands so tests can interleave
// a teardown with an in-flight Subscribe.
type fakeSocket struct {
	mu          sync.Mutex
	subs        map[string][]models.Topic
	onSubscribe func()
}

func newFakeSocket() *fakeSocket {
	return &fakeSocket{subs: map[string][]models.Topic{}}
}

func (f *fakeSocket) Connect(ctx context.Context) error { return nil }

func (f *fakeSocket) Subscribe(ownerID string, topics []models.Topic, fn func(models.MSocketMessage)) {
	f.mu.Lock()
	hook := f.onSubscribe
	f.onSubscribe = nil
	f.mu.Unlock()

	if hook != nil {
		hook()
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.subs[ownerID] = topics
}

func (f *fakeSocket) Unsubscribe(ownerID string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.subs, ownerID)
}

func (f *fakeSocket) IsConnected() bool              { return true }
func (f *fakeSocket) State() models.ConnectionState  { return models.StateConnected }
func (f *fakeSocket) Close()                         {}

func (f *fakeSocket) subscriptionCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.subs)
}

// -----------------------------------------------------------------------------

// fakeStore is an in-memory snapshot store.
type fakeStore struct {
	mu      sync.Mutex
	rows    map[string][]byte
	savedAt map[string]time.Time
	saves   int
}

func newFakeStore() *fakeStore {
	return &fakeStore{rows: map[string][]byte{}, savedAt: map[string]time.Time{}}
}

func (f *fakeStore) Initialize() error { return nil }

func (f *fakeStore) Save(feature string, payload []byte, savedAt time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rows[feature] = payload
	f.savedAt[feature] = savedAt
	f.saves++
	return nil
}

func (f *fakeStore) Load(feature string) ([]byte, time.Time, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	payload, ok := f.rows[feature]
	if !ok {
		return nil, time.Time{}, context.Canceled
	}
	return payload, f.savedAt[feature], nil
}

func (f *fakeStore) CleanupExpired(maxAge time.Duration) error { return nil }
func (f *fakeStore) Close() error                              { return nil }

// -----------------------------------------------------------------------------

// fakeExchange counts broadcasts per feature.
type fakeExchange struct {
	mu     sync.Mutex
	counts map[string]int
}

func newFakeExchange() *fakeExchange {
	return &fakeExchange{counts: map[string]int{}}
}

func (f *fakeExchange) Broadcast(feature string, payload interface{}) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.counts[feature]++
}

func (f *fakeExchange) Start() error { return nil }
func (f *fakeExchange) Stop() error  { return nil }

// -----------------------------------------------------------------------------

// testConfig keeps polling far away so tickers never fire during a test.
func testConfig() *models.MConfig {
	return &models.MConfig{
		Name:     "test",
		LogLevel: "ERROR",
		API: models.MAPIConfig{
			BaseURL:        "http://localhost:8000/api/v1",
			RequestTimeout: 2,
			MaxRetries:     1,
			RetryDelayMs:   1,
		},
		Polling: models.MPollingConfig{
			IntervalSeconds:         3600,
			OffHoursIntervalSeconds: 7200,
		},
		Storage: models.MStorageConfig{CacheDurationMinutes: 5},
		Updates: models.MUpdatesConfig{MaxEntries: 50},
	}
}

func testLogger() *logger.Logger {
	return logger.NewLogger("ERROR", "features-test")
}

// -----------------------------------------------------------------------------

func envelope(topic models.Topic, payload interface{}) models.MSocketMessage {
	raw, _ := json.Marshal(payload)
	return models.MSocketMessage{Type: topic, Data: raw, Timestamp: time.Now().Unix()}
}
