package usecase_test

import (
	"context"
	"strconv"
	"sync"
	"time"

	"rental/internal/domain/model"
	infraRepo "rental/internal/infra/repository"

	"github.com/stretchr/testify/mock"
)

// =====================
// Mocks / stubs
// =====================

type GeocoderMock struct{ mock.Mock }

func (m *GeocoderMock) Reverse(ctx context.Context, lat, lng float64) (model.GeocodeResult, error) {
	args := m.Called(ctx, lat, lng)
	res, _ := args.Get(0).(model.GeocodeResult)
	return res, args.Error(1)
}

func (m *GeocoderMock) Forward(ctx context.Context, address string) (model.GeocodeResult, error) {
	args := m.Called(ctx, address)
	res, _ := args.Get(0).(model.GeocodeResult)
	return res, args.Error(1)
}

type deviceResult struct {
	pos model.Position
	err error
}

// release に値を送るまで返らない端末
type blockingDevice struct {
	release chan deviceResult

	mu    sync.Mutex
	calls int
}

func newBlockingDevice() *blockingDevice {
	return &blockingDevice{release: make(chan deviceResult, 1)}
}

func (d *blockingDevice) CurrentPosition(ctx context.Context, _ model.PositionOptions) (model.Position, error) {
	d.mu.Lock()
	d.calls++
	d.mu.Unlock()

	select {
	case r := <-d.release:
		return r.pos, r.err
	case <-ctx.Done():
		return model.Position{}, ctx.Err()
	}
}

func (d *blockingDevice) Calls() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.calls
}

type recordingNotifier struct {
	mu  sync.Mutex
	got []model.Notification
}

func (n *recordingNotifier) Notify(_ context.Context, note model.Notification) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.got = append(n.got, note)
}

func (n *recordingNotifier) All() []model.Notification {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]model.Notification, len(n.got))
	copy(out, n.got)
	return out
}

// 期限が来るまで返らない通知先
type stallingNotifier struct {
	mu          sync.Mutex
	hadDeadline bool
}

func (n *stallingNotifier) Notify(ctx context.Context, _ model.Notification) {
	_, ok := ctx.Deadline()
	n.mu.Lock()
	n.hadDeadline = ok
	n.mu.Unlock()
	<-ctx.Done()
}

func (n *stallingNotifier) HadDeadline() bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.hadDeadline
}

// 最初の Set だけ gate が閉じるまで止まる保存先
type gatedStore struct {
	*infraRepo.KVMemoryRepository
	entered chan struct{}
	gate    chan struct{}
	once    sync.Once
}

func newGatedStore() *gatedStore {
	return &gatedStore{
		KVMemoryRepository: infraRepo.NewKVMemoryRepository(),
		entered:            make(chan struct{}),
		gate:               make(chan struct{}),
	}
}

func (s *gatedStore) Set(ctx context.Context, key, value string) error {
	first := false
	s.once.Do(func() { first = true })
	if first {
		close(s.entered)
		<-s.gate
	}
	return s.KVMemoryRepository.Set(ctx, key, value)
}

type seqIDGen struct {
	mu sync.Mutex
	n  int
}

func (g *seqIDGen) NewID() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.n++
	return "n-" + strconv.Itoa(g.n)
}

type fixedClock struct{ t time.Time }

func (c fixedClock) Now() time.Time { return c.t }

type fixedLocation struct {
	loc model.Location
	ok  bool
}

func (f *fixedLocation) CurrentLocation() (model.Location, bool) { return f.loc, f.ok }

func waitDone(ch <-chan struct{}) bool {
	select {
	case <-ch:
		return true
	case <-time.After(2 * time.Second):
		return false
	}
}
