package dwd

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const indexPage = `<html><head><title>Index of /climate_environment/CDC/observations_germany/climate/10_minutes/precipitation/historical/</title></head>
<body>
<h1>Index of /climate_environment/CDC/observations_germany/climate/10_minutes/precipitation/historical/</h1><hr><pre><a href="../">../</a>
<a href="10minutenwerte_nieder_00003_19930428_19991231_hist.zip">10minutenwerte_nieder_00003_19930428_19991231_hist.zip</a>      08-Mar-2024 10:24    3165K
<a href="10minutenwerte_nieder_00044_20070209_20091231_hist.zip">10minutenwerte_nieder_00044_20070209_20091231_hist.zip</a>      08-Mar-2024 10:24     887K
<a href="BESCHREIBUNG_obsgermany_climate_10min_precipitation_de.pdf">BESCHREIBUNG_obsgermany_climate_10min_precipitation_de.pdf</a> 08-Mar-2024 10:24 199K
<a href="zehn_min_rr_Beschreibung_Stationen.txt">zehn_min_rr_Beschreibung_Stationen.txt</a>                      08-Mar-2024 10:24 110K
</pre><hr></body></html>`

func testClient() *Client {
	return &Client{
		httpClient: &http.Client{Timeout: 5 * time.Second},
		userAgent:  "test",
		logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

func TestClient_Fetch_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/multi_annual/mean_61-90/Niederschlag_1961-1990.txt", r.URL.Path)
		assert.Equal(t, "test", r.Header.Get("User-Agent"))
		_, _ = w.Write([]byte("Stations_id;Bezugszeitraum"))
	}))
	defer srv.Close()

	body, err := testClient().Fetch(context.Background(), srv.URL+"/multi_annual/mean_61-90/Niederschlag_1961-1990.txt")
	require.NoError(t, err)
	assert.Equal(t, "Stations_id;Bezugszeitraum", string(body))
}

func TestClient_Fetch_NotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "not found", http.StatusNotFound)
	}))
	defer srv.Close()

	_, err := testClient().Fetch(context.Background(), srv.URL+"/missing.zip")
	require.Error(t, err)

	var fe *FetchError
	require.True(t, errors.As(err, &fe))
	assert.Equal(t, http.StatusNotFound, fe.Status)
	assert.Equal(t, srv.URL+"/missing.zip", fe.URL)
	assert.Contains(t, err.Error(), "status 404")
}

func TestClient_Fetch_BodyLimit(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/exact.txt" {
			_, _ = w.Write([]byte("12345678"))
			return
		}
		_, _ = w.Write([]byte("123456789"))
	}))
	defer srv.Close()

	c := testClient()
	c.maxBody = 8

	body, err := c.Fetch(context.Background(), srv.URL+"/exact.txt")
	require.NoError(t, err)
	assert.Equal(t, "12345678", string(body))

	_, err = c.Fetch(context.Background(), srv.URL+"/oversized.zip")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrBodyTooLarge)
}

func TestClient_Fetch_ContextCancelled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("ok"))
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := testClient().Fetch(ctx, srv.URL)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestClient_Fetch_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		time.Sleep(200 * time.Millisecond)
		_, _ = w.Write([]byte("late"))
	}))
	defer srv.Close()

	c := testClient()
	c.httpClient.Timeout = 20 * time.Millisecond

	_, err := c.Fetch(context.Background(), srv.URL)
	require.Error(t, err)
}

func TestClient_List(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/10_minutes/precipitation/historical/", r.URL.Path)
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(indexPage))
	}))
	defer srv.Close()

	names, err := testClient().List(context.Background(), srv.URL+"/10_minutes/precipitation/historical/",
		"10minutenwerte_nieder_", "_hist.zip")
	require.NoError(t, err)
	assert.Equal(t, []string{
		"10minutenwerte_nieder_00003_19930428_19991231_hist.zip",
		"10minutenwerte_nieder_00044_20070209_20091231_hist.zip",
	}, names)
}

func TestClient_List_Error(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	_, err := testClient().List(context.Background(), srv.URL+"/", "a", "b")
	var fe *FetchError
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, http.StatusServiceUnavailable, fe.Status)
}
