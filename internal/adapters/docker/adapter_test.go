package docker

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/docker/docker/client"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nextcloud/ncp-activation/internal/core/domain"
)

const apiVersion = "1.43"

func newTestAdapter(t *testing.T, handler http.Handler) *Adapter {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	cli, err := client.NewClientWithOpts(
		client.WithHost("tcp://"+srv.Listener.Addr().String()),
		client.WithVersion(apiVersion),
		client.WithHTTPClient(srv.Client()),
	)
	require.NoError(t, err)
	t.Cleanup(func() { cli.Close() })
	return &Adapter{cli: cli}
}

func TestProbe(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/v"+apiVersion+"/version", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"Version":"25.0.6","ApiVersion":"1.44"}`))
	})
	mux.HandleFunc("/v"+apiVersion+"/containers/json", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "1", r.URL.Query().Get("all"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[
			{"Id":"a1","Names":["/nextcloud-aio-apache"],"Image":"nextcloud/aio-apache","ImageID":"sha256:1","State":"running","Status":"Up 2 minutes","Created":1700000000},
			{"Id":"b2","State":"exited"}
		]`))
	})
	a := newTestAdapter(t, mux)

	res, err := a.Probe(t.Context())
	require.NoError(t, err)

	assert.Equal(t, "25.0.6", res.RuntimeVersion)
	require.Len(t, res.Containers, 2)
	assert.Equal(t, domain.ContainerSummary{
		ImageID:   "sha256:1",
		Image:     "nextcloud/aio-apache",
		Status:    "Up 2 minutes",
		State:     "running",
		CreatedAt: 1700000000,
		Names:     []string{"/nextcloud-aio-apache"},
	}, res.Containers[0])
	assert.Equal(t, domain.ContainerSummary{
		ImageID: domain.Unknown,
		Image:   domain.Unknown,
		Status:  domain.Unknown,
		State:   "exited",
		Names:   []string{},
	}, res.Containers[1])
}

func TestProbeMissingVersion(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/v"+apiVersion+"/version", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{}`))
	})
	mux.HandleFunc("/v"+apiVersion+"/containers/json", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[]`))
	})
	a := newTestAdapter(t, mux)

	res, err := a.Probe(t.Context())
	require.NoError(t, err)
	assert.Equal(t, domain.Unknown, res.RuntimeVersion)
	assert.Empty(t, res.Containers)
}

func TestProbeDaemonError(t *testing.T) {
	a := newTestAdapter(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"message":"daemon is starting"}`, http.StatusInternalServerError)
	}))

	_, err := a.Probe(t.Context())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "daemon is starting")
}

func TestProbeUnreachable(t *testing.T) {
	cli, err := client.NewClientWithOpts(client.WithHost("unix:///nonexistent/docker.sock"), client.WithVersion(apiVersion))
	require.NoError(t, err)
	a := &Adapter{cli: cli}
	defer a.Close()

	_, err = a.Probe(t.Context())
	assert.Error(t, err)
}
