package metrics

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func resetHealth() {
	healthChecker = newHealthChecker()
}

func TestRegisterComponent(t *testing.T) {
	resetHealth()

	RegisterComponent(ComponentStore, true, "bolt open")

	require.Len(t, healthChecker.components, 1)
	comp := healthChecker.components[ComponentStore]
	assert.True(t, comp.Healthy)
	assert.Equal(t, "bolt open", comp.Message)
}

func TestUpdateComponent(t *testing.T) {
	resetHealth()

	RegisterComponent(ComponentBus, true, "ok")
	UpdateComponent(ComponentBus, false, "redis unreachable")

	comp := healthChecker.components[ComponentBus]
	assert.False(t, comp.Healthy)
	assert.Equal(t, "redis unreachable", comp.Message)
}

func TestGetHealth(t *testing.T) {
	tests := []struct {
		name       string
		components map[string]bool
		wantStatus string
	}{
		{"no components", map[string]bool{}, "healthy"},
		{"all healthy", map[string]bool{ComponentStore: true, ComponentBus: true}, "healthy"},
		{"generator down", map[string]bool{ComponentStore: true, ComponentGenerator: false}, "unhealthy"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resetHealth()
			SetVersion("1.0.0")
			for name, healthy := range tt.components {
				RegisterComponent(name, healthy, "msg")
			}

			health := GetHealth()
			assert.Equal(t, tt.wantStatus, health.Status)
			assert.Len(t, health.Components, len(tt.components))
			assert.Equal(t, "1.0.0", health.Version)
		})
	}
}

func TestGetReadiness(t *testing.T) {
	tests := []struct {
		name       string
		components map[string]bool
		wantStatus string
	}{
		{"store and bus ready", map[string]bool{ComponentStore: true, ComponentBus: true}, "ready"},
		{"bus missing", map[string]bool{ComponentStore: true}, "not_ready"},
		{"store unhealthy", map[string]bool{ComponentStore: false, ComponentBus: true}, "not_ready"},
		{"generator irrelevant", map[string]bool{ComponentStore: true, ComponentBus: true, ComponentGenerator: false}, "ready"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resetHealth()
			for name, healthy := range tt.components {
				RegisterComponent(name, healthy, "msg")
			}

			readiness := GetReadiness()
			assert.Equal(t, tt.wantStatus, readiness.Status)
			if tt.wantStatus == "not_ready" {
				assert.NotEmpty(t, readiness.Message)
			}
		})
	}
}

func TestHandlers(t *testing.T) {
	resetHealth()
	RegisterComponent(ComponentStore, true, "")

	mux := NewServeMux()

	tests := []struct {
		path       string
		wantCode   int
		wantStatus string
	}{
		{"/health", http.StatusOK, "healthy"},
		{"/ready", http.StatusServiceUnavailable, "not_ready"},
		{"/live", http.StatusOK, "alive"},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, req)

			assert.Equal(t, tt.wantCode, w.Code)
			assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

			var body map[string]interface{}
			require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
			assert.Equal(t, tt.wantStatus, body["status"])
		})
	}
}

func TestMetricsEndpoint(t *testing.T) {
	NotificationsDispatched.WithLabelValues("mention", "targeted").Inc()

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	w := httptest.NewRecorder()
	NewServeMux().ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "hoconnect_notifications_dispatched_total")
}
