package instance

import (
	"testing"
	"time"

	"github.com/cuemby/hoconnect/pkg/events"
	"github.com/cuemby/hoconnect/pkg/notify"
	"github.com/cuemby/hoconnect/pkg/storage"
	"github.com/cuemby/hoconnect/pkg/types"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	waitFor = 2 * time.Second
	tick    = 5 * time.Millisecond
)

var (
	alice = types.Employee{ID: "u-alice", Name: "alice", Department: types.DepartmentSales, Level: types.JobLevelManager}
	bob   = types.Employee{ID: "u-bob", Name: "bob", Department: types.DepartmentLogistics, Level: types.JobLevelStaff}
	carol = types.Employee{ID: "u-carol", Name: "carol", Department: types.DepartmentHR, Level: types.JobLevelStaff}
)

type cluster struct {
	store *storage.BoltStore
	bus   *events.Broker
	clock *clockwork.FakeClock
}

func newCluster(t *testing.T, directory ...types.Employee) *cluster {
	t.Helper()

	store, err := storage.NewBoltStore(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	bus := events.NewBroker()
	bus.Start()
	t.Cleanup(bus.Stop)

	if len(directory) > 0 {
		require.NoError(t, storage.Save(store, storage.KeyEmployees, directory))
	}

	return &cluster{
		store: store,
		bus:   bus,
		clock: clockwork.NewFakeClockAt(time.Date(2026, 10, 18, 9, 0, 0, 0, time.UTC)),
	}
}

func (c *cluster) open(t *testing.T, cfg Config) *Instance {
	t.Helper()
	cfg.Clock = c.clock
	inst := New(c.store, c.bus, cfg)
	inst.Open()
	inst.Start()
	t.Cleanup(inst.Close)
	return inst
}

func (c *cluster) login(t *testing.T, user types.Employee) *Instance {
	t.Helper()
	inst := c.open(t, Config{})
	_, err := inst.Login(user.ID)
	require.NoError(t, err)
	return inst
}

func notifyInfo(title string) notify.Request {
	return notify.Request{Title: title, Message: title, Type: types.NotificationInfo}
}

func TestEndToEndMention(t *testing.T) {
	c := newCluster(t, alice, bob, carol)
	a := c.login(t, alice)
	b := c.login(t, bob)
	cc := c.login(t, carol)

	_, err := a.SendChatMessage(types.GlobalRoom, "@bob check this")
	require.NoError(t, err)

	records := a.dispatcher.Records()
	require.Len(t, records, 1)
	assert.Equal(t, types.NotificationMention, records[0].Type)
	assert.Equal(t, bob.ID, records[0].TargetUserID)
	assert.Empty(t, a.Toasts(), "the sender is not the target")

	require.Eventually(t, func() bool { return len(b.Toasts()) == 1 }, waitFor, tick)
	toasts := b.Toasts()
	require.Len(t, toasts, 1)
	assert.Contains(t, toasts[0].Title, alice.Name)
	assert.Equal(t, records[0].ID, toasts[0].ID)

	require.Eventually(t, func() bool { return cc.LedgerLen() == 1 }, waitFor, tick)
	assert.Empty(t, cc.Toasts())
	assert.Equal(t, 0, cc.UnreadCount())
	assert.Equal(t, 1, b.UnreadCount())

	c.clock.Advance(9 * time.Second)
	assert.Len(t, b.Toasts(), 1)
	c.clock.Advance(1001 * time.Millisecond)
	require.Eventually(t, func() bool { return len(b.Toasts()) == 0 }, waitFor, tick)
}

func TestBroadcastNotification(t *testing.T) {
	c := newCluster(t, alice, bob)
	a := c.login(t, alice)
	b := c.login(t, bob)

	n, err := a.Notify(notifyInfo("hello everyone"))
	require.NoError(t, err)

	assert.Len(t, a.Toasts(), 1)
	require.Eventually(t, func() bool { return b.LedgerLen() == 1 }, waitFor, tick)
	assert.Equal(t, 1, b.UnreadCount())
	assert.Equal(t, n.ID, b.Notifications()[0].ID)
	assert.Empty(t, b.Toasts(), "only mentions are toasted from a signal")
}

func TestSelfMentionIgnored(t *testing.T) {
	c := newCluster(t, alice, bob)
	a := c.login(t, alice)

	_, err := a.SendChatMessage(types.GlobalRoom, "note to @alice")
	require.NoError(t, err)
	assert.Equal(t, 0, a.LedgerLen())
}

func TestMentionInDepartmentRoom(t *testing.T) {
	c := newCluster(t, alice, bob, carol)
	a := c.login(t, alice)

	room := types.DepartmentSales + "/ทีมเหนือ"
	_, err := a.SendChatMessage(room, "@bob and @carol please look, @bob again")
	require.NoError(t, err)

	records := a.dispatcher.Records()
	require.Len(t, records, 2)
	assert.Equal(t, carol.ID, records[0].TargetUserID)
	assert.Equal(t, bob.ID, records[1].TargetUserID)
	assert.Contains(t, records[1].Message, "ทีมเหนือ")
}

func TestDirectMessage(t *testing.T) {
	c := newCluster(t, alice, bob)
	a := c.login(t, alice)
	b := c.login(t, bob)

	room := types.DMRoom(alice.ID, bob.ID)
	msg, err := a.SendChatMessage(room, "lunch?")
	require.NoError(t, err)
	assert.Equal(t, room, msg.Room)
	assert.Len(t, a.Messages(room), 1)

	records := a.dispatcher.Records()
	require.Len(t, records, 1)
	assert.Equal(t, types.NotificationInfo, records[0].Type)
	assert.Equal(t, bob.ID, records[0].TargetUserID)
	assert.Contains(t, records[0].Title, alice.Name)
	assert.Contains(t, records[0].Message, "lunch?...")

	require.Eventually(t, func() bool { return b.UnreadCount() == 1 }, waitFor, tick)
	assert.Empty(t, b.Toasts())
}

func TestSendChatMessageValidation(t *testing.T) {
	c := newCluster(t, alice)
	inst := c.open(t, Config{})

	_, err := inst.SendChatMessage(types.GlobalRoom, "hi")
	assert.ErrorIs(t, err, ErrNotLoggedIn)

	_, err = inst.Login(alice.ID)
	require.NoError(t, err)
	_, err = inst.SendChatMessage(types.GlobalRoom, "   ")
	assert.ErrorIs(t, err, ErrEmptyText)
}

func TestChatPreviewTruncated(t *testing.T) {
	c := newCluster(t, alice, bob)
	a := c.login(t, alice)

	text := "@bob สวัสดีครับ วันนี้มีประชุมเรื่องยอดขายประจำไตรมาสตอนบ่ายสามโมงนะครับ"
	_, err := a.SendChatMessage(types.GlobalRoom, text)
	require.NoError(t, err)

	records := a.dispatcher.Records()
	require.Len(t, records, 1)
	want := "ในห้อง รวมทุกฝ่าย: \"" + string([]rune(text)[:50]) + "...\""
	assert.Equal(t, want, records[0].Message)
}

func TestSyncIndicator(t *testing.T) {
	c := newCluster(t, alice)
	inst := c.open(t, Config{})
	assert.False(t, inst.Syncing())

	inst.HandleSignal(&events.Signal{Key: storage.KeyTasks, Value: []byte("[]"), Origin: "other"})
	assert.True(t, inst.Syncing())

	c.clock.Advance(999 * time.Millisecond)
	assert.True(t, inst.Syncing())
	c.clock.Advance(time.Millisecond)
	assert.False(t, inst.Syncing())
}

func TestHandleSignalMalformedPayload(t *testing.T) {
	c := newCluster(t, alice, bob)
	inst := c.open(t, Config{})
	require.Len(t, inst.Employees(), 2)

	inst.HandleSignal(&events.Signal{Key: storage.KeyEmployees, Value: []byte("{oops"), Origin: "other"})
	assert.Empty(t, inst.Employees())
	assert.True(t, inst.Syncing())
}

func TestHandleSignalIgnoresUntrackedKey(t *testing.T) {
	c := newCluster(t, alice)
	inst := c.open(t, Config{})

	inst.HandleSignal(&events.Signal{Key: "something_else", Value: []byte("[]"), Origin: "other"})
	assert.False(t, inst.Syncing())
}

func TestReplicasFollowSignals(t *testing.T) {
	c := newCluster(t, alice, bob)
	a := c.login(t, alice)
	b := c.login(t, bob)

	_, err := a.ReportIssue(types.DepartmentWarehouse, "ชั้นวางพัง", types.IssueSeverityUrgent)
	require.NoError(t, err)

	require.Eventually(t, func() bool { return len(b.Issues()) == 1 }, waitFor, tick)
	assert.Equal(t, "ชั้นวางพัง", b.Issues()[0].Text)
	assert.Eventually(t, b.Syncing, waitFor, tick)
}

func TestAvailableDepartments(t *testing.T) {
	custom := types.Employee{ID: "u-dev", Name: "dev", Department: "ฝ่ายไอที"}
	c := newCluster(t, alice, custom)
	inst := c.login(t, alice)

	_, err := inst.AddTask(types.TaskDraft{Title: "audit", Department: "ฝ่ายบัญชี"})
	require.NoError(t, err)
	_, err = inst.ReportIssue("ฝ่ายไอที", "printer", types.IssueSeverityNormal)
	require.NoError(t, err)

	want := append(append([]string{}, types.BaseDepartments...), "ฝ่ายไอที", "ฝ่ายบัญชี")
	assert.Equal(t, want, inst.AvailableDepartments())
}

func TestMetricsSnapshot(t *testing.T) {
	c := newCluster(t, alice, bob, carol)
	inst := c.login(t, alice)
	_, err := inst.Notify(notifyInfo("x"))
	require.NoError(t, err)

	snap := inst.MetricsSnapshot()
	assert.Equal(t, 1, snap.OnlineEmployees)
	assert.Equal(t, 2, snap.OfflineEmployees)
	assert.Equal(t, 1, snap.LedgerSize)
}

func TestCloseIsIdempotent(t *testing.T) {
	c := newCluster(t, alice)
	inst := New(c.store, c.bus, Config{Clock: c.clock})
	inst.Open()
	inst.Start()
	assert.Equal(t, 1, c.bus.SubscriberCount())

	inst.Close()
	inst.Close()
	assert.Equal(t, 0, c.bus.SubscriberCount())
}
