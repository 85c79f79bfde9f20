package repository

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"dashboard/internal/model"
	"dashboard/internal/stubserver"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRepo(t *testing.T, baseURL string) *DashboardRepository {
	t.Helper()
	repo, err := NewDashboardRepository(Endpoints{
		BaseURL:      baseURL,
		ChartsPath:   "/charts",
		TopUsersPath: "/top-users",
	}, nil)
	require.NoError(t, err)
	return repo
}

func TestNewDashboardRepository_URLs(t *testing.T) {
	repo, err := NewDashboardRepository(Endpoints{
		BaseURL:      "http://localhost:3001/",
		ChartsPath:   "charts",
		TopUsersPath: "/top-users",
	}, nil)
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:3001/charts", repo.ChartsURL())
	assert.Equal(t, "http://localhost:3001/top-users", repo.TopUsersURL())
}

func TestNewDashboardRepository_RejectsRelativeBase(t *testing.T) {
	_, err := NewDashboardRepository(Endpoints{BaseURL: "localhost"}, nil)
	assert.Error(t, err)
}

func TestFetchCharts_FromStubServer(t *testing.T) {
	srv := stubserver.New([]model.ChartCatalogEntry{{Type: "bar"}, {Type: "pie"}}, nil, nil)
	ts := httptest.NewServer(srv.Router())
	defer ts.Close()

	entries, err := newRepo(t, ts.URL).FetchCharts(context.Background())

	require.NoError(t, err)
	assert.Equal(t, []model.ChartCatalogEntry{{Type: model.ChartBar}, {Type: model.ChartPie}}, entries)
}

func TestFetchTopUsers_FromStubServer(t *testing.T) {
	srv := stubserver.New(nil, stubserver.SampleUsers(8), nil)
	ts := httptest.NewServer(srv.Router())
	defer ts.Close()

	data, err := newRepo(t, ts.URL).FetchTopUsers(context.Background(), model.NewTopN(5))

	require.NoError(t, err)
	require.Len(t, data, 5)
	assert.Equal(t, "alice", data[0].Name)
}

func TestFetchTopUsers_SendsCoercedBody(t *testing.T) {
	var got map[string]interface{}
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/top-users", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		body, _ := io.ReadAll(r.Body)
		assert.NoError(t, json.Unmarshal(body, &got))
		w.Write([]byte(`[{"name":"alice","value":10},{"name":"bob","value":7}]`))
	}))
	defer ts.Close()

	data, err := newRepo(t, ts.URL).FetchTopUsers(context.Background(), model.ParseTopN("2"))

	require.NoError(t, err)
	assert.Equal(t, map[string]interface{}{"topN": float64(2)}, got)
	assert.Equal(t, []model.DataPoint{{Name: "alice", Value: 10}, {Name: "bob", Value: 7}}, data)
}

func TestFetch_Failures(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
		status  int
	}{
		{
			name:    "server error",
			handler: func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusInternalServerError) },
			status:  http.StatusInternalServerError,
		},
		{
			name:    "not found",
			handler: func(w http.ResponseWriter, r *http.Request) { http.NotFound(w, r) },
			status:  http.StatusNotFound,
		},
		{
			name:    "malformed body",
			handler: func(w http.ResponseWriter, r *http.Request) { w.Write([]byte(`{"type":`)) },
		},
		{
			name:    "empty body",
			handler: func(w http.ResponseWriter, r *http.Request) {},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := httptest.NewServer(tt.handler)
			defer ts.Close()
			repo := newRepo(t, ts.URL)

			_, chartsErr := repo.FetchCharts(context.Background())
			_, usersErr := repo.FetchTopUsers(context.Background(), model.NewTopN(5))

			require.Error(t, chartsErr)
			require.Error(t, usersErr)
			if tt.status != 0 {
				var statusErr *StatusError
				require.ErrorAs(t, usersErr, &statusErr)
				assert.Equal(t, tt.status, statusErr.StatusCode)
				assert.Equal(t, http.MethodPost, statusErr.Method)
			}
		})
	}
}

func TestFetch_NullBodyIsEmpty(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`null`))
	}))
	defer ts.Close()
	repo := newRepo(t, ts.URL)

	entries, err := repo.FetchCharts(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, entries)
	assert.Empty(t, entries)

	data, err := repo.FetchTopUsers(context.Background(), model.NewTopN(1))
	require.NoError(t, err)
	assert.NotNil(t, data)
}

func TestFetch_TransportFailure(t *testing.T) {
	ts := httptest.NewServer(http.NotFoundHandler())
	url := ts.URL
	ts.Close()

	_, err := newRepo(t, url).FetchCharts(context.Background())

	assert.Error(t, err)
}

func TestNewAuthorizedClient_SendsBearerToken(t *testing.T) {
	var auth string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		w.Write([]byte(`[]`))
	}))
	defer ts.Close()

	client := NewAuthorizedClient(context.Background(), "secret")
	repo, err := NewDashboardRepository(Endpoints{BaseURL: ts.URL, ChartsPath: "/charts", TopUsersPath: "/top-users"}, client)
	require.NoError(t, err)

	_, err = repo.FetchCharts(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Bearer secret", auth)
}
