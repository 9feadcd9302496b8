package gateway_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/storegate/storegate/pkg/gateway"
)

func corsHandler(t *testing.T, origins []string) (http.Handler, *bool) {
	t.Helper()

	routed := false
	policy := gateway.NewCORSPolicy(origins)
	handler := policy.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		routed = true
		w.WriteHeader(http.StatusOK)
	}))
	return handler, &routed
}

func TestCORSPolicy(t *testing.T) {
	t.Parallel()

	t.Run("no origin header always passes", func(t *testing.T) {
		t.Parallel()

		handler, routed := corsHandler(t, []string{"http://allowed.example"})
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, httptest.NewRequest("GET", "/product/products", nil))

		assert.Equal(t, http.StatusOK, w.Code)
		assert.True(t, *routed)
	})

	t.Run("allowed origin is routed with CORS headers", func(t *testing.T) {
		t.Parallel()

		handler, routed := corsHandler(t, []string{"http://allowed.example"})
		req := httptest.NewRequest("GET", "/product/products", nil)
		req.Header.Set("Origin", "http://allowed.example")
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.True(t, *routed)
		assert.Equal(t, "http://allowed.example", w.Header().Get("Access-Control-Allow-Origin"))
		assert.Equal(t, "true", w.Header().Get("Access-Control-Allow-Credentials"))
		assert.Contains(t, w.Header().Get("Access-Control-Allow-Headers"), "X-Tenant-Sig")
		assert.Contains(t, w.Header().Values("Vary"), "Origin")
	})

	t.Run("preflight short-circuits with no content", func(t *testing.T) {
		t.Parallel()

		handler, routed := corsHandler(t, []string{"http://allowed.example"})
		req := httptest.NewRequest(http.MethodOptions, "/product/products", nil)
		req.Header.Set("Origin", "http://allowed.example")
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNoContent, w.Code)
		assert.Empty(t, w.Body.String())
		assert.False(t, *routed)
		assert.Equal(t, "http://allowed.example", w.Header().Get("Access-Control-Allow-Origin"))
		assert.Equal(t, "GET,POST,PUT,PATCH,DELETE,OPTIONS", w.Header().Get("Access-Control-Allow-Methods"))
	})

	t.Run("disallowed origin is rejected before routing", func(t *testing.T) {
		t.Parallel()

		handler, routed := corsHandler(t, []string{"http://allowed.example"})
		req := httptest.NewRequest(http.MethodOptions, "/product/products", nil)
		req.Header.Set("Origin", "http://evil.example")
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)

		assert.Equal(t, http.StatusForbidden, w.Code)
		assert.False(t, *routed)
		assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("wildcard allows any origin", func(t *testing.T) {
		t.Parallel()

		handler, routed := corsHandler(t, []string{"*"})
		req := httptest.NewRequest("GET", "/product/products", nil)
		req.Header.Set("Origin", "http://anything.example")
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.True(t, *routed)
		assert.Equal(t, "http://anything.example", w.Header().Get("Access-Control-Allow-Origin"))
	})
}

func TestLoadRoutesFile(t *testing.T) {
	t.Parallel()

	t.Run("parses routes", func(t *testing.T) {
		t.Parallel()

		path := t.TempDir() + "/routes.yaml"
		content := "routes:\n  product: http://localhost:4300/api\n  payment: http://localhost:8000/payment-service\n"
		writeFile(t, path, content)

		routes, err := gateway.LoadRoutesFile(path)
		assert.NoError(t, err)
		assert.Equal(t, map[string]string{
			"product": "http://localhost:4300/api",
			"payment": "http://localhost:8000/payment-service",
		}, routes)
	})

	t.Run("missing file errors", func(t *testing.T) {
		t.Parallel()

		_, err := gateway.LoadRoutesFile(t.TempDir() + "/nope.yaml")
		assert.Error(t, err)
	})
}
