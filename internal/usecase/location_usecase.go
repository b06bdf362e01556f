package usecase

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"time"

	"rental/internal/domain/model"
	"rental/internal/repository"
)

// 通知先が詰まっても解決処理を止めない上限
const defaultNotifyTimeout = 3 * time.Second

// 画面に返す現在の状態
type LocationSnapshot struct {
	State    model.LocationState       `json:"state"`
	Location *model.Location           `json:"location"`
	Error    model.LocationErrorReason `json:"error,omitempty"`
	Message  string                    `json:"message,omitempty"`
	Loading  bool                      `json:"loading"`
	Draft    string                    `json:"draft"`
}

// セッションで1つだけ持つ「ユーザーの現在地」の管理者。
// 失敗は状態として持ち、呼び出し元にエラーを返さない。
type LocationResolver struct {
	device           DevicePositioner
	geocoder         Geocoder
	store            repository.KeyValueStore
	codec            LocationCodec
	notifier         Notifier
	idGen            IDGenerator
	clock            Clock
	opts             model.PositionOptions
	fallbackDistrict string
	notifyTimeout    time.Duration
	logger           *slog.Logger

	//保存の順序を確定の順序に揃える
	persistMu sync.Mutex

	mu       sync.Mutex
	state    model.LocationState
	location *model.Location
	lastErr  model.LocationErrorReason
	//最後に開始した解決要求の番号（古い結果は捨てる）
	generation uint64
	//端末に問い合わせ中なら non-nil
	inflight  chan struct{}
	draft     string
	listeners []func(model.Location)
}

// DI（device が nil なら位置取得は Unsupported）
func NewLocationResolver(
	device DevicePositioner,
	geocoder Geocoder,
	store repository.KeyValueStore,
	codec LocationCodec,
	notifier Notifier,
	idGen IDGenerator,
	clock Clock,
	opts model.PositionOptions,
	fallbackDistrict string,
	logger *slog.Logger,
) *LocationResolver {
	if logger == nil {
		logger = slog.Default()
	}
	return &LocationResolver{
		device:           device,
		geocoder:         geocoder,
		store:            store,
		codec:            codec,
		notifier:         notifier,
		idGen:            idGen,
		clock:            clock,
		opts:             opts,
		fallbackDistrict: fallbackDistrict,
		notifyTimeout:    defaultNotifyTimeout,
		logger:           logger.With("component", "location_resolver"),
		state:            model.LocationStateIdle,
	}
}

// Restore は起動時に保存済みの位置を読み込む。
// 壊れていれば黙って捨てて Idle のまま。
func (r *LocationResolver) Restore(ctx context.Context) bool {
	if r.store == nil || r.codec == nil {
		return false
	}

	raw, ok, err := r.store.Get(ctx, repository.LocationKey)
	if err != nil {
		r.logger.Warn("read persisted location failed", "error", err)
		return false
	}
	if !ok {
		return false
	}

	loc, err := r.codec.DecodeLocation([]byte(raw))
	if err != nil {
		r.logger.Debug("discard malformed persisted location", "error", err)
		return false
	}

	r.mu.Lock()
	r.location = &loc
	r.state = model.LocationStateResolved
	listeners := r.copyListeners()
	r.mu.Unlock()

	r.logger.Info("persisted location restored", "district", loc.District)
	for _, fn := range listeners {
		fn(loc)
	}
	return true
}

// OnChange は位置が確定するたびに呼ばれる関数を登録する。
func (r *LocationResolver) OnChange(fn func(model.Location)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.listeners = append(r.listeners, fn)
}

// Supported は端末の位置取得機能があるか。
func (r *LocationResolver) Supported() bool {
	return r.device != nil
}

// RequestDeviceLocation は端末に現在地を問い合わせる。
// 問い合わせ中の2回目は無視し、進行中の完了チャネルを返す。
func (r *LocationResolver) RequestDeviceLocation(ctx context.Context) <-chan struct{} {
	r.mu.Lock()
	if r.inflight != nil {
		ch := r.inflight
		r.mu.Unlock()
		r.logger.Debug("device location already requesting, ignored")
		return ch
	}

	if r.device == nil {
		r.state = model.LocationStateFailed
		r.lastErr = model.ReasonUnsupported
		r.mu.Unlock()

		r.logger.Warn("device location unsupported")
		r.notifyError(ctx, model.ReasonUnsupported)
		done := make(chan struct{})
		close(done)
		return done
	}

	r.generation++
	gen := r.generation
	r.state = model.LocationStateRequesting
	r.lastErr = ""
	done := make(chan struct{})
	r.inflight = done
	r.mu.Unlock()

	//HTTPリクエストが終わっても取得は続ける
	go r.acquire(context.WithoutCancel(ctx), gen, done)
	return done
}

func (r *LocationResolver) acquire(ctx context.Context, gen uint64, done chan struct{}) {
	defer close(done)

	dctx, cancel := r.withTimeout(ctx)
	pos, err := r.device.CurrentPosition(dctx, r.opts)
	cancel()
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			err = model.ErrPositionTimeout
		}
		reason := model.ReasonFromError(err)
		if reason == model.ReasonGeocodeError {
			reason = model.ReasonUnknown
		}
		r.logger.Warn("device location failed", "reason", reason, "error", err)
		r.commitFailed(ctx, gen, reason, true)
		return
	}

	address := r.reverseAddress(ctx, pos)
	loc := model.NewLocation(pos.Latitude, pos.Longitude, address, r.fallbackDistrict)
	r.commitResolved(ctx, gen, loc, model.MessageDeviceLocationSet, true)
}

// 逆ジオコーディングに失敗しても既定の住所で続ける
func (r *LocationResolver) reverseAddress(ctx context.Context, pos model.Position) string {
	fallback := model.FallbackAddress(r.fallbackDistrict)
	if r.geocoder == nil {
		return fallback
	}

	gctx, cancel := r.withTimeout(ctx)
	defer cancel()

	res, err := r.geocoder.Reverse(gctx, pos.Latitude, pos.Longitude)
	if err != nil || strings.TrimSpace(res.Address) == "" {
		r.logger.Warn("reverse geocode failed, using fallback address", "error", err)
		return fallback
	}
	return res.Address
}

// SetManualLocation は手入力の住所で位置を決める。
// 空白だけの入力は何もしない。失敗しても確定済みの位置は残す。
func (r *LocationResolver) SetManualLocation(ctx context.Context, address string) LocationSnapshot {
	trimmed := strings.TrimSpace(address)
	if trimmed == "" {
		return r.Snapshot()
	}

	r.mu.Lock()
	r.generation++
	gen := r.generation
	r.state = model.LocationStateRequesting
	r.lastErr = ""
	r.mu.Unlock()

	if r.geocoder == nil {
		r.commitFailed(ctx, gen, model.ReasonGeocodeError, false)
		return r.Snapshot()
	}

	gctx, cancel := r.withTimeout(ctx)
	res, err := r.geocoder.Forward(gctx, trimmed)
	cancel()
	if err != nil {
		r.logger.Warn("forward geocode failed", "address", trimmed, "error", err)
		r.commitFailed(ctx, gen, model.ReasonGeocodeError, false)
		return r.Snapshot()
	}

	loc := model.NewLocation(res.Latitude, res.Longitude, trimmed, r.fallbackDistrict)
	if r.commitResolved(ctx, gen, loc, model.MessageManualLocationSet, false) {
		r.mu.Lock()
		r.draft = ""
		r.mu.Unlock()
	}
	return r.Snapshot()
}

// UpdateManualDraft は住所入力欄の途中の値を持つ。
func (r *LocationResolver) UpdateManualDraft(text string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.draft = text
}

func (r *LocationResolver) CurrentLocation() (model.Location, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.location == nil {
		return model.Location{}, false
	}
	return *r.location, true
}

// LastError は直近の失敗理由（次の解決開始でクリア）。
func (r *LocationResolver) LastError() (model.LocationErrorReason, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.lastErr, r.lastErr != ""
}

func (r *LocationResolver) State() model.LocationState {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

func (r *LocationResolver) Snapshot() LocationSnapshot {
	r.mu.Lock()
	defer r.mu.Unlock()

	s := LocationSnapshot{
		State:   r.state,
		Error:   r.lastErr,
		Loading: r.state == model.LocationStateRequesting,
		Draft:   r.draft,
	}
	if r.location != nil {
		loc := *r.location
		s.Location = &loc
	}
	if r.lastErr != "" {
		s.Message = r.lastErr.Message()
	}
	return s
}

// 最後に開始した要求の結果だけを反映する
func (r *LocationResolver) commitResolved(ctx context.Context, gen uint64, loc model.Location, message string, fromDevice bool) bool {
	r.mu.Lock()
	if fromDevice {
		r.inflight = nil
	}
	if gen != r.generation {
		r.mu.Unlock()
		r.logger.Debug("superseded location result discarded", "district", loc.District)
		return false
	}
	r.location = &loc
	r.state = model.LocationStateResolved
	r.lastErr = ""
	listeners := r.copyListeners()
	r.mu.Unlock()

	r.persist(ctx, gen, loc)
	r.logger.Info("location resolved", "district", loc.District, "device", fromDevice)
	r.notify(ctx, model.Notification{
		Kind:     model.NotificationSuccess,
		Message:  message,
		Location: &loc,
	})
	for _, fn := range listeners {
		fn(loc)
	}
	return true
}

func (r *LocationResolver) commitFailed(ctx context.Context, gen uint64, reason model.LocationErrorReason, fromDevice bool) {
	r.mu.Lock()
	if fromDevice {
		r.inflight = nil
	}
	if gen != r.generation {
		r.mu.Unlock()
		r.logger.Debug("superseded location failure discarded", "reason", reason)
		return
	}
	r.state = model.LocationStateFailed
	r.lastErr = reason
	r.mu.Unlock()

	r.notifyError(ctx, reason)
}

// 書き込み前に世代を見直し、追い越された結果は保存しない
func (r *LocationResolver) persist(ctx context.Context, gen uint64, loc model.Location) {
	if r.store == nil || r.codec == nil {
		return
	}

	r.persistMu.Lock()
	defer r.persistMu.Unlock()

	r.mu.Lock()
	current := gen == r.generation
	r.mu.Unlock()
	if !current {
		r.logger.Debug("superseded location not persisted", "district", loc.District)
		return
	}

	raw, err := r.codec.EncodeLocation(loc)
	if err != nil {
		r.logger.Error("encode location failed", "error", err)
		return
	}
	if err := r.store.Set(ctx, repository.LocationKey, string(raw)); err != nil {
		r.logger.Error("persist location failed", "error", err)
	}
}

func (r *LocationResolver) notifyError(ctx context.Context, reason model.LocationErrorReason) {
	r.notify(ctx, model.Notification{
		Kind:    model.NotificationError,
		Reason:  reason,
		Message: reason.Message(),
	})
}

func (r *LocationResolver) notify(ctx context.Context, n model.Notification) {
	if r.notifier == nil {
		return
	}
	if r.idGen != nil {
		n.ID = r.idGen.NewID()
	}
	if r.clock != nil {
		n.At = r.clock.Now()
	}

	nctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), r.notifyTimeout)
	defer cancel()
	r.notifier.Notify(nctx, n)
}

func (r *LocationResolver) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if r.opts.Timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, r.opts.Timeout)
}

func (r *LocationResolver) copyListeners() []func(model.Location) {
	out := make([]func(model.Location), len(r.listeners))
	copy(out, r.listeners)
	return out
}
