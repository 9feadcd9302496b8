package registry_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/storegate/storegate/pkg/tenantsig"
	"github.com/storegate/storegate/svc/registry"
)

const (
	adminToken  = "op-token-123"
	signingKey  = "registry-test-secret"
	dbLocationA = "mongodb://db.internal/tenant-a"
)

type fakeStore struct {
	mu      sync.Mutex
	tenants map[string]registry.Tenant
}

func newFakeStore() *fakeStore {
	return &fakeStore{tenants: make(map[string]registry.Tenant)}
}

func (f *fakeStore) Create(_ context.Context, in registry.Input) (*registry.Tenant, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	subdomain := in.Subdomain
	if subdomain == "" {
		subdomain = "generated-" + uuid.NewString()[:8]
	}
	for _, t := range f.tenants {
		if t.Subdomain == subdomain {
			return nil, registry.ErrDuplicateSubdomain
		}
	}
	t := registry.Tenant{
		ID:         uuid.NewString(),
		Name:       in.Name,
		Subdomain:  subdomain,
		DBLocation: in.DBLocation,
		CreatedAt:  time.Now().UTC(),
	}
	f.tenants[t.ID] = t
	return &t, nil
}

func (f *fakeStore) Get(_ context.Context, id string) (*registry.Tenant, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	t, ok := f.tenants[id]
	if !ok {
		return nil, registry.ErrNotFound
	}
	return &t, nil
}

func (f *fakeStore) GetBySubdomain(_ context.Context, subdomain string) (*registry.Tenant, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, t := range f.tenants {
		if t.Subdomain == subdomain {
			return &t, nil
		}
	}
	return nil, registry.ErrNotFound
}

func (f *fakeStore) List(_ context.Context) ([]registry.Tenant, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]registry.Tenant, 0, len(f.tenants))
	for _, t := range f.tenants {
		out = append(out, t)
	}
	return out, nil
}

func newTestRouter(t *testing.T, secret string) (http.Handler, *fakeStore) {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte(adminToken), bcrypt.MinCost)
	require.NoError(t, err)

	store := newFakeStore()
	handler := registry.Router(registry.Config{
		AdminTokenHash: string(hash),
		SigningSecret:  secret,
	}, store, nil)
	return handler, store
}

func authedRequest(t *testing.T, method, target string, body any) *http.Request {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set("Authorization", "Bearer "+adminToken)
	return req
}

func TestRouterAuth(t *testing.T) {
	t.Parallel()

	handler, _ := newTestRouter(t, signingKey)

	t.Run("missing token", func(t *testing.T) {
		t.Parallel()

		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("wrong token", func(t *testing.T) {
		t.Parallel()

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer wrong-token")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("correct token", func(t *testing.T) {
		t.Parallel()

		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, authedRequest(t, http.MethodGet, "/", nil))
		assert.Equal(t, http.StatusOK, rec.Code)
	})
}

func TestRouterRegistration(t *testing.T) {
	t.Parallel()

	handler, _ := newTestRouter(t, signingKey)

	t.Run("creates tenant", func(t *testing.T) {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, authedRequest(t, http.MethodPost, "/", registry.Input{
			Name:       "Acme Stores",
			Subdomain:  "acme",
			DBLocation: dbLocationA,
		}))
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

		var created registry.Tenant
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&created))
		assert.NotEmpty(t, created.ID)
		assert.Equal(t, "acme", created.Subdomain)

		rec = httptest.NewRecorder()
		handler.ServeHTTP(rec, authedRequest(t, http.MethodGet, "/"+created.ID, nil))
		assert.Equal(t, http.StatusOK, rec.Code)

		rec = httptest.NewRecorder()
		handler.ServeHTTP(rec, authedRequest(t, http.MethodGet, "/resolve/acme", nil))
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("duplicate subdomain conflicts", func(t *testing.T) {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, authedRequest(t, http.MethodPost, "/", registry.Input{
			Name:       "Acme Clone",
			Subdomain:  "acme",
			DBLocation: dbLocationA,
		}))
		assert.Equal(t, http.StatusConflict, rec.Code)
	})

	t.Run("missing db_location is a 400", func(t *testing.T) {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, authedRequest(t, http.MethodPost, "/", registry.Input{Name: "No Location"}))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("unknown subdomain is a 404", func(t *testing.T) {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, authedRequest(t, http.MethodGet, "/resolve/nobody", nil))
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestRouterCredentials(t *testing.T) {
	t.Parallel()

	t.Run("mints verifiable signature", func(t *testing.T) {
		t.Parallel()

		handler, _ := newTestRouter(t, signingKey)

		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, authedRequest(t, http.MethodPost, "/", registry.Input{
			Name:       "Signed Store",
			Subdomain:  "signed",
			DBLocation: dbLocationA,
		}))
		require.Equal(t, http.StatusCreated, rec.Code)

		var created registry.Tenant
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&created))

		rec = httptest.NewRecorder()
		handler.ServeHTTP(rec, authedRequest(t, http.MethodGet, "/"+created.ID+"/credentials", nil))
		require.Equal(t, http.StatusOK, rec.Code)

		var creds registry.Credentials
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&creds))
		assert.Equal(t, created.ID, creds.TenantID)
		assert.Equal(t, dbLocationA, creds.DBLocation)
		assert.Equal(t, tenantsig.Sign(created.ID, dbLocationA, signingKey), creds.Signature)

		// The minted headers must pass backend verification as-is.
		h := http.Header{}
		h.Set(tenantsig.HeaderTenantID, creds.TenantID)
		h.Set(tenantsig.HeaderDBURI, creds.DBLocation)
		h.Set(tenantsig.HeaderSignature, creds.Signature)
		assert.True(t, tenantsig.Verify(h, signingKey))
	})

	t.Run("unconfigured signing key is a 500", func(t *testing.T) {
		t.Parallel()

		handler, store := newTestRouter(t, "")
		created, err := store.Create(context.Background(), registry.Input{
			Name:       "Keyless Store",
			Subdomain:  "keyless",
			DBLocation: dbLocationA,
		})
		require.NoError(t, err)

		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, authedRequest(t, http.MethodGet, "/"+created.ID+"/credentials", nil))
		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.Contains(t, rec.Body.String(), "Tenant signing key not configured")
	})
}

func TestInputValidate(t *testing.T) {
	t.Parallel()

	valid := registry.Input{Name: "Acme", Subdomain: "acme-1", DBLocation: dbLocationA}
	assert.NoError(t, valid.Validate())

	assert.ErrorIs(t, registry.Input{DBLocation: dbLocationA}.Validate(), registry.ErrInvalidInput)
	assert.ErrorIs(t, registry.Input{Name: "Acme"}.Validate(), registry.ErrInvalidInput)
	assert.ErrorIs(t, registry.Input{Name: "Acme", Subdomain: "Has Spaces", DBLocation: dbLocationA}.Validate(), registry.ErrInvalidInput)
	assert.ErrorIs(t, registry.Input{Name: "Acme", Subdomain: "UPPER", DBLocation: dbLocationA}.Validate(), registry.ErrInvalidInput)
}
