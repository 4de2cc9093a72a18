package assistant

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/cuemby/hoconnect/pkg/metrics"
	"github.com/cuemby/hoconnect/pkg/types"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func replyServer(t *testing.T, status int, text string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/messages", r.URL.Path)
		assert.Equal(t, "test-key", r.Header.Get("x-api-key"))
		assert.Equal(t, apiVersion, r.Header.Get("anthropic-version"))

		var req apiRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, defaultModel, req.Model)
		assert.Len(t, req.Messages, 1)

		w.WriteHeader(status)
		if status != http.StatusOK {
			_, _ = w.Write([]byte(text))
			return
		}
		_ = json.NewEncoder(w).Encode(apiResponse{
			Type:    "message",
			Role:    "assistant",
			Content: []apiContentBlock{{Type: "text", Text: text}},
		})
	}))
	t.Cleanup(srv.Close)
	return srv
}

func newTestClient(srv *httptest.Server) *Client {
	return New(Config{APIKey: "test-key", BaseURL: srv.URL, HTTPClient: srv.Client()})
}

func TestGenerateIdeas(t *testing.T) {
	srv := replyServer(t, http.StatusOK, "```json\n"+`[{"title":"ครอสเทรนนิ่ง","description":"d","objective":"o","keySteps":["a","b"],"impact":"i"}]`+"\n```")

	ideas, err := newTestClient(srv).GenerateIdeas(context.Background(), "staff turnover", types.BaseDepartments)
	require.NoError(t, err)
	require.Len(t, ideas, 1)
	assert.Equal(t, "ครอสเทรนนิ่ง", ideas[0].Title)
	assert.Equal(t, []string{"a", "b"}, ideas[0].KeySteps)
}

func TestDraftTask(t *testing.T) {
	srv := replyServer(t, http.StatusOK, `{"title":"เช็คสต็อก","description":"d","department":"คลังสินค้า","assigneeId":"u-1","assigneeName":"bob","deadline":"2026-10-20","suggestedSubTasks":["นับ"]}`)

	draft, err := newTestClient(srv).DraftTask(context.Background(), "ให้ bob เช็คสต็อก",
		[]types.Employee{{ID: "u-1", Name: "bob", Department: types.DepartmentWarehouse}}, types.BaseDepartments)
	require.NoError(t, err)
	require.NotNil(t, draft)
	assert.Equal(t, "u-1", draft.AssigneeID)
	assert.Equal(t, []string{"นับ"}, draft.SuggestedSubTasks)
}

func TestAPIError(t *testing.T) {
	srv := replyServer(t, http.StatusTooManyRequests, `{"type":"error","error":{"type":"rate_limit_error","message":"slow down"}}`)

	_, err := newTestClient(srv).GenerateIdeas(context.Background(), "x", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "slow down")
	assert.Contains(t, err.Error(), "429")
}

func TestMalformedReply(t *testing.T) {
	srv := replyServer(t, http.StatusOK, "sorry, I cannot help with that")

	_, err := newTestClient(srv).DraftTask(context.Background(), "x", nil, nil)
	assert.Error(t, err)
}

func TestExtractJSON(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{`[]`, `[]`},
		{"  {\"a\":1}\n", `{"a":1}`},
		{"```json\n[1]\n```", `[1]`},
		{"```\n{}\n```", `{}`},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, extractJSON(tt.in))
	}
}

type stubGenerator struct {
	ideas []types.ProjectIdea
	draft *types.TaskDraft
	err   error
}

func (s *stubGenerator) GenerateIdeas(context.Context, string, []string) ([]types.ProjectIdea, error) {
	return s.ideas, s.err
}

func (s *stubGenerator) DraftTask(context.Context, string, []types.Employee, []string) (*types.TaskDraft, error) {
	return s.draft, s.err
}

func TestSafeDegradesToNoSuggestion(t *testing.T) {
	ctx := context.Background()

	failing := NewSafe(&stubGenerator{err: errors.New("boom")})
	ideas := failing.Ideas(ctx, "x", nil)
	assert.NotNil(t, ideas)
	assert.Empty(t, ideas)
	assert.Nil(t, failing.Draft(ctx, "x", nil, nil))

	none := NewSafe(nil)
	assert.Empty(t, none.Ideas(ctx, "x", nil))
	assert.Nil(t, none.Draft(ctx, "x", nil, nil))

	blank := NewSafe(&stubGenerator{draft: &types.TaskDraft{}})
	assert.Nil(t, blank.Draft(ctx, "x", nil, nil))
}

func TestSafeFiltersShape(t *testing.T) {
	ctx := context.Background()
	s := NewSafe(&stubGenerator{
		ideas: []types.ProjectIdea{{Title: "a"}, {Description: "no title"}},
		draft: &types.TaskDraft{Title: "t", AssigneeID: "u-ghost"},
	})

	ideas := s.Ideas(ctx, "x", nil)
	require.Len(t, ideas, 1)
	assert.Equal(t, []string{}, ideas[0].KeySteps)

	draft := s.Draft(ctx, "x", []types.Employee{{ID: "u-1"}}, nil)
	require.NotNil(t, draft)
	assert.Empty(t, draft.AssigneeID)

	// one latency series per operation
	assert.Equal(t, 2, testutil.CollectAndCount(metrics.GeneratorDuration))
}

func TestSafeOverHTTPFailure(t *testing.T) {
	srv := replyServer(t, http.StatusInternalServerError, "upstream down")
	s := NewSafe(newTestClient(srv))

	assert.Empty(t, s.Ideas(context.Background(), "x", nil))
}
