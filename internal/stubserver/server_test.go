package stubserver

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"dashboard/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer() *httptest.Server {
	srv := New(DefaultCatalog(), SampleUsers(12), nil)
	return httptest.NewServer(srv.Router())
}

func postTopUsers(t *testing.T, base, body string) (*http.Response, []model.DataPoint) {
	t.Helper()
	resp, err := http.Post(base+"/top-users", "application/json", strings.NewReader(body))
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })

	var data []model.DataPoint
	if resp.StatusCode == http.StatusOK {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&data))
	}
	return resp, data
}

func TestCharts(t *testing.T) {
	ts := newTestServer()
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/charts")
	require.NoError(t, err)
	defer resp.Body.Close()

	var entries []model.ChartCatalogEntry
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&entries))
	assert.Equal(t, DefaultCatalog(), entries)
}

func TestTopUsers(t *testing.T) {
	ts := newTestServer()
	defer ts.Close()

	tests := []struct {
		name   string
		body   string
		status int
		count  int
	}{
		{"number", `{"topN":5}`, http.StatusOK, 5},
		{"numeric string", `{"topN":"3"}`, http.StatusOK, 3},
		{"more than available", `{"topN":50}`, http.StatusOK, 12},
		{"zero", `{"topN":0}`, http.StatusOK, 0},
		{"negative", `{"topN":-4}`, http.StatusOK, 0},
		{"fraction", `{"topN":2.5}`, http.StatusOK, 2},
		{"fractional string", `{"topN":"3.9"}`, http.StatusOK, 3},
		{"negative fraction", `{"topN":-0.5}`, http.StatusOK, 0},
		{"not a number", `{"topN":"many"}`, http.StatusBadRequest, 0},
		{"too many", `{"topN":5000}`, http.StatusBadRequest, 0},
		{"malformed", `{`, http.StatusBadRequest, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, data := postTopUsers(t, ts.URL, tt.body)
			assert.Equal(t, tt.status, resp.StatusCode)
			assert.Len(t, data, tt.count)
		})
	}
}

func TestTopUsers_Ranked(t *testing.T) {
	srv := New(nil, []model.DataPoint{{Name: "low", Value: 1}, {Name: "high", Value: 9}, {Name: "mid", Value: 5}}, nil)
	ts := httptest.NewServer(srv.Router())
	defer ts.Close()

	_, data := postTopUsers(t, ts.URL, `{"topN":3}`)

	assert.Equal(t, []string{"high", "mid", "low"}, []string{data[0].Name, data[1].Name, data[2].Name})
}

func TestSampleUsers(t *testing.T) {
	users := SampleUsers(11)
	require.Len(t, users, 11)
	assert.Equal(t, "alice", users[0].Name)
	assert.Equal(t, "alice1", users[10].Name)
	assert.Greater(t, users[0].Value, users[1].Value)
}

func TestCORSPreflight(t *testing.T) {
	ts := newTestServer()
	defer ts.Close()

	req, err := http.NewRequest(http.MethodOptions, ts.URL+"/top-users", nil)
	require.NoError(t, err)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", "POST")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"))
}
