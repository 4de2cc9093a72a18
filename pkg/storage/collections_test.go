package storage

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/cuemby/hoconnect/pkg/log"
	"github.com/cuemby/hoconnect/pkg/metrics"
	"github.com/cuemby/hoconnect/pkg/types"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecode(t *testing.T) {
	tests := []struct {
		name    string
		data    string
		wantLen int
	}{
		{"empty payload", "", 0},
		{"null", "null", 0},
		{"empty array", "[]", 0},
		{"two records", `[{"id":"a","type":"info"},{"id":"b","type":"mention"}]`, 2},
		{"truncated", `[{"id":"a"`, 0},
		{"wrong shape", `{"id":"a"}`, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Decode[types.Notification](KeyNotifications, []byte(tt.data))
			require.NotNil(t, got)
			assert.Len(t, got, tt.wantLen)
		})
	}
}

func TestDecodeCountsParseFailures(t *testing.T) {
	before := testutil.ToFloat64(metrics.SignalParseFailures.WithLabelValues(KeyIssues))
	Decode[types.Issue](KeyIssues, []byte("{broken"))
	after := testutil.ToFloat64(metrics.SignalParseFailures.WithLabelValues(KeyIssues))
	assert.Equal(t, before+1, after)
}

func TestSaveLoadRoundTrip(t *testing.T) {
	s := newTestBoltStore(t)

	assert.Empty(t, Load[types.Employee](s, KeyEmployees))

	emps := []types.Employee{
		{ID: "u-1", Name: "Somchai", Department: types.DepartmentSales},
		{ID: "u-2", Name: "สมหญิง", Department: types.DepartmentHR},
	}
	require.NoError(t, Save(s, KeyEmployees, emps))
	assert.Equal(t, emps, Load[types.Employee](s, KeyEmployees))

	require.NoError(t, Save[types.Employee](s, KeyEmployees, nil))
	data, err := s.Get(KeyEmployees)
	require.NoError(t, err)
	assert.Equal(t, "[]", string(data))
}

func TestLoadDocument(t *testing.T) {
	s := newTestBoltStore(t)

	_, ok := LoadDocument[types.Employee](s, SessionKey("inst"))
	assert.False(t, ok)

	require.NoError(t, SaveDocument(s, SessionKey("inst"), types.Employee{ID: "u-1", Name: "alice"}))
	emp, ok := LoadDocument[types.Employee](s, SessionKey("inst"))
	require.True(t, ok)
	assert.Equal(t, "alice", emp.Name)

	require.NoError(t, s.Put(SessionKey("inst"), []byte("garbage")))
	_, ok = LoadDocument[types.Employee](s, SessionKey("inst"))
	assert.False(t, ok)
}

type failingStore struct{ Store }

func (failingStore) Get(string) ([]byte, error) { return nil, errors.New("disk gone") }

func TestDegradedReadsAreLogged(t *testing.T) {
	var buf bytes.Buffer
	log.Init(log.Config{Level: log.WarnLevel, JSONOutput: true, Output: &buf})
	defer log.Init(log.Config{Level: log.InfoLevel, JSONOutput: true, Output: &bytes.Buffer{}})

	s := newTestBoltStore(t)
	require.NoError(t, s.Put(KeyCurrentUser+":x", []byte("{broken")))

	tests := []struct {
		name string
		read func()
		msg  string
	}{
		{"malformed collection", func() { Decode[types.Employee](KeyEmployees, []byte("{broken")) }, "malformed collection"},
		{"unreadable collection", func() { Load[types.Employee](failingStore{}, KeyTasks) }, "failed to read collection"},
		{"malformed document", func() { LoadDocument[types.Employee](s, KeyCurrentUser+":x") }, "malformed document"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf.Reset()
			tt.read()
			lines := strings.TrimSpace(buf.String())
			require.NotEmpty(t, lines)
			assert.Contains(t, lines, `"component":"storage"`)
			assert.Contains(t, lines, `"level":"warn"`)
			assert.Contains(t, lines, tt.msg)
		})
	}
}
