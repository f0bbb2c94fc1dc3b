package runner

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"doodledash/internal/dashboard"
	"doodledash/internal/display"
	"doodledash/internal/domain"
	"doodledash/internal/filter"
	"doodledash/internal/notification"
)

// events is a shared log so ordering across feeds, handlers and sleeps can
// be asserted
type events []string

func (e *events) add(s string) { *e = append(*e, s) }

type fakeFeed struct {
	id    string
	texts []string
	err   error
	log   *events
}

func (f *fakeFeed) LatestEntities(context.Context) ([]domain.Message, error) {
	f.log.add("collect " + f.id)
	if f.err != nil {
		return nil, f.err
	}
	msgs := make([]domain.Message, len(f.texts))
	for i, t := range f.texts {
		msgs[i] = domain.NewMessage(t, f.id)
	}
	return msgs, nil
}

type fakeHandler struct {
	id        string
	log       *events
	updates   []string
	updateErr error
	drawErr   error
}

func (h *fakeHandler) Update(msg domain.Message) error {
	h.log.add("update " + h.id + " " + msg.Text)
	h.updates = append(h.updates, msg.Text)
	return h.updateErr
}

func (h *fakeHandler) Draw(domain.Display) error {
	h.log.add("draw " + h.id)
	return h.drawErr
}

type recordingSleep struct {
	log   *events
	calls []time.Duration
}

func (s *recordingSleep) sleep(_ context.Context, d time.Duration) error {
	s.log.add("sleep")
	s.calls = append(s.calls, d)
	return nil
}

func durationPtr(d time.Duration) *time.Duration { return &d }

func newRunner(t *testing.T, d *dashboard.Dashboard, sleep SleepFunc, reg prometheus.Registerer) *Runner {
	t.Helper()
	r, err := New(d, reg, WithSleep(sleep), WithLogger(zap.NewNop()))
	require.NoError(t, err)
	return r
}

func TestCycle_OrderAndPacing(t *testing.T) {
	log := &events{}
	sleeper := &recordingSleep{log: log}

	h1 := &fakeHandler{id: "n1", log: log}
	h2 := &fakeHandler{id: "n2", log: log}
	d := &dashboard.Dashboard{
		Display: display.NewRecord(),
		DataFeeds: []domain.DataFeed{
			&fakeFeed{id: "f1", texts: []string{"a", "b"}, log: log},
			&fakeFeed{id: "f2", texts: []string{"c"}, log: log},
		},
		Notifications: []*notification.Notification{notification.New(h1), notification.New(h2)},
		Interval:      durationPtr(3 * time.Second),
	}

	require.NoError(t, newRunner(t, d, sleeper.sleep, nil).Cycle(context.Background()))

	assert.Equal(t, events{
		"collect f1", "collect f2",
		"update n1 a", "update n1 b", "update n1 c", "draw n1", "sleep",
		"update n2 a", "update n2 b", "update n2 c", "draw n2", "sleep",
	}, *log)
	assert.Equal(t, []time.Duration{3 * time.Second, 3 * time.Second}, sleeper.calls)
}

func TestCycle_SleepsOncePerNotification(t *testing.T) {
	for _, count := range []int{0, 1, 4} {
		log := &events{}
		sleeper := &recordingSleep{log: log}

		var ns []*notification.Notification
		for i := 0; i < count; i++ {
			ns = append(ns, notification.New(&fakeHandler{log: log}))
		}
		d := &dashboard.Dashboard{Display: display.NewRecord(), Notifications: ns}

		require.NoError(t, newRunner(t, d, sleeper.sleep, nil).Cycle(context.Background()))
		assert.Len(t, sleeper.calls, count)
		for _, c := range sleeper.calls {
			assert.Equal(t, DefaultInterval, c, "default interval applies when none is configured")
		}
	}
}

func TestCycle_FiltersPerNotification(t *testing.T) {
	log := &events{}
	sleeper := &recordingSleep{log: log}

	only123 := &fakeHandler{id: "a", log: log}
	all := &fakeHandler{id: "b", log: log}
	d := &dashboard.Dashboard{
		Display:   display.NewRecord(),
		DataFeeds: []domain.DataFeed{&fakeFeed{id: "f", texts: []string{"123", "456"}, log: log}},
		Notifications: []*notification.Notification{
			notification.New(only123, filter.NewContainsText("123", false)),
			notification.New(all),
		},
	}

	require.NoError(t, newRunner(t, d, sleeper.sleep, nil).Cycle(context.Background()))
	assert.Equal(t, []string{"123"}, only123.updates)
	assert.Equal(t, []string{"123", "456"}, all.updates, "filtering one notification does not affect the next")
}

func TestCycle_FeedErrorAborts(t *testing.T) {
	log := &events{}
	sleeper := &recordingSleep{log: log}
	boom := errors.New("feed down")

	h := &fakeHandler{id: "n", log: log}
	d := &dashboard.Dashboard{
		Display: display.NewRecord(),
		DataFeeds: []domain.DataFeed{
			&fakeFeed{id: "ok", texts: []string{"x"}, log: log},
			&fakeFeed{id: "bad", err: boom, log: log},
			&fakeFeed{id: "never", log: log},
		},
		Notifications: []*notification.Notification{notification.New(h)},
	}

	err := newRunner(t, d, sleeper.sleep, nil).Cycle(context.Background())
	require.ErrorIs(t, err, boom)
	assert.Equal(t, events{"collect ok", "collect bad"}, *log)
	assert.Empty(t, h.updates)
}

func TestCycle_HandlerErrorAborts(t *testing.T) {
	log := &events{}
	sleeper := &recordingSleep{log: log}
	boom := errors.New("cannot draw")

	failing := &fakeHandler{id: "a", log: log, drawErr: boom}
	after := &fakeHandler{id: "b", log: log}
	d := &dashboard.Dashboard{
		Display:       display.NewRecord(),
		DataFeeds:     []domain.DataFeed{&fakeFeed{id: "f", texts: []string{"x"}, log: log}},
		Notifications: []*notification.Notification{notification.New(failing), notification.New(after)},
	}

	err := newRunner(t, d, sleeper.sleep, nil).Cycle(context.Background())
	require.ErrorIs(t, err, boom)
	assert.Empty(t, after.updates)
	assert.Empty(t, sleeper.calls)

	failing.drawErr = nil
	failing.updateErr = boom
	err = newRunner(t, d, sleeper.sleep, nil).Cycle(context.Background())
	require.ErrorIs(t, err, boom)
}

func TestCycle_NoDisplay(t *testing.T) {
	d := &dashboard.Dashboard{
		Notifications: []*notification.Notification{notification.New(&fakeHandler{log: &events{}})},
	}
	err := newRunner(t, d, (&recordingSleep{log: &events{}}).sleep, nil).Cycle(context.Background())
	assert.ErrorIs(t, err, ErrNoDisplay)

	// Without notifications a display is not needed
	empty := &dashboard.Dashboard{DataFeeds: []domain.DataFeed{&fakeFeed{id: "f", log: &events{}}}}
	assert.NoError(t, newRunner(t, empty, nil, nil).Cycle(context.Background()))
}

func TestCycle_Cancelled(t *testing.T) {
	log := &events{}
	h1 := &fakeHandler{id: "1", log: log}
	h2 := &fakeHandler{id: "2", log: log}
	d := &dashboard.Dashboard{
		Display:       display.NewRecord(),
		Notifications: []*notification.Notification{notification.New(h1), notification.New(h2)},
		Interval:      durationPtr(time.Hour),
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := newRunner(t, d, Sleep, nil).Cycle(ctx)
	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, events{"draw 1"}, *log)
}

func TestCycle_RecordDisplay(t *testing.T) {
	rec := display.NewRecord()
	d := &dashboard.Dashboard{
		Display: rec,
		DataFeeds: []domain.DataFeed{
			&fakeFeed{id: "f", texts: []string{"hello", "world"}, log: &events{}},
		},
		Notifications: []*notification.Notification{notification.New(notification.NewTextHandler(""))},
	}

	require.NoError(t, newRunner(t, d, (&recordingSleep{log: &events{}}).sleep, nil).Cycle(context.Background()))
	assert.Equal(t, []string{"Clear display", "Write text: 'world'"}, rec.Calls())
}

func TestSleep(t *testing.T) {
	require.NoError(t, Sleep(context.Background(), time.Millisecond))
	require.NoError(t, Sleep(context.Background(), 0))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, Sleep(ctx, time.Hour), context.Canceled)
}

func TestCollectEntities(t *testing.T) {
	log := &events{}
	msgs, err := CollectEntities(context.Background(), []domain.DataFeed{
		&fakeFeed{id: "a", texts: []string{"1", "2"}, log: log},
		&fakeFeed{id: "b", log: log},
		&fakeFeed{id: "c", texts: []string{"3"}, log: log},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"1", "2", "3"}, domain.Texts(msgs))

	msgs, err = CollectEntities(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, msgs)
}

func TestMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	log := &events{}

	h := &fakeHandler{id: "n", log: log}
	n := notification.New(h, filter.NewContainsText("keep", false))
	n.SetName("alerts")
	d := &dashboard.Dashboard{
		Display:       display.NewRecord(),
		DataFeeds:     []domain.DataFeed{&fakeFeed{id: "f", texts: []string{"keep", "drop", "keep too"}, log: log}},
		Notifications: []*notification.Notification{n},
	}

	r := newRunner(t, d, (&recordingSleep{log: log}).sleep, reg)
	require.NoError(t, r.Cycle(context.Background()))
	require.NoError(t, r.Cycle(context.Background()))

	assert.Equal(t, float64(2), testutil.ToFloat64(r.metrics.cycles.WithLabelValues("ok")))
	assert.Equal(t, float64(6), testutil.ToFloat64(r.metrics.entitiesCollected))
	assert.Equal(t, float64(4), testutil.ToFloat64(r.metrics.entitiesDelivered.WithLabelValues("alerts")))

	expected := `
# HELP doodledash_runner_entities_collected_total Total number of messages collected from data feeds
# TYPE doodledash_runner_entities_collected_total counter
doodledash_runner_entities_collected_total 6
`
	require.NoError(t, testutil.GatherAndCompare(reg, strings.NewReader(expected), "doodledash_runner_entities_collected_total"))

	_, err := New(d, reg)
	assert.Error(t, err, "registering twice on one registry fails")
}

func TestNew_NilDashboard(t *testing.T) {
	_, err := New(nil, nil)
	assert.Error(t, err)
}
