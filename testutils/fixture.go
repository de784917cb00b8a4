package testutils

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"testing"
	"time"

	"gotest.tools/v3/assert"

	"github.com/meshforge/scenecore"
)

// GetOpenPort asks the kernel for a free port and returns it as a string.
func GetOpenPort(t testing.TB) string {
	l, err := net.Listen("tcp", "127.0.0.1:0")
	defer func() {
		assert.NilError(t, l.Close())
	}()

	assert.NilError(t, err)
	tcpAddr, err := net.ResolveTCPAddr(l.Addr().Network(), l.Addr().String())
	assert.NilError(t, err)
	return fmt.Sprintf("%d", tcpAddr.Port)
}

// TestFixture wraps a scene plus a running inspector server. Build the
// fixture, register component types on fixture.Scene, then call Start.
type TestFixture struct {
	T     testing.TB
	Scene *scenecore.Scene
	Host  string
}

// NewTestFixture creates a scene on its own port, backed by miniredis.
func NewTestFixture(t testing.TB, opts ...scenecore.SceneOption) *TestFixture {
	port := GetOpenPort(t)
	opts = append([]scenecore.SceneOption{scenecore.WithPort(port)}, opts...)
	scene := NewTestScene(t, opts...)

	return &TestFixture{
		T:     t,
		Scene: scene,
		Host:  "localhost:" + port,
	}
}

// Start starts the scene and blocks until the inspector server answers its
// health check. Shutdown is registered as test cleanup.
func (f *TestFixture) Start() {
	assert.NilError(f.T, f.Scene.Start())
	f.T.Cleanup(func() {
		assert.NilError(f.T, f.Scene.Shutdown())
	})

	start := time.Now()
	for {
		assert.Check(f.T, time.Since(start) < 5*time.Second, "timeout while waiting for a healthy server")
		//nolint:noctx // its for a test.
		resp, err := http.Get(f.MakeHTTPURL("health"))
		if err == nil && resp.StatusCode == 200 {
			// the health check endpoint was successfully queried.
			resp.Body.Close()
			break
		}
		if resp != nil {
			resp.Body.Close()
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func (f *TestFixture) MakeHTTPURL(path string) string {
	return "http://" + f.Host + "/" + path
}

func (f *TestFixture) MakeWebSocketURL(path string) string {
	return "ws://" + f.Host + "/" + path
}

// Get issues a GET against the fixture's server.
func (f *TestFixture) Get(path string) *http.Response {
	//nolint:noctx // its for a test its ok.
	res, err := http.Get(f.MakeHTTPURL(path))
	assert.NilError(f.T, err)
	return res
}

// Post issues a JSON POST against the fixture's server.
func (f *TestFixture) Post(path string, payload any) *http.Response {
	bz, err := json.Marshal(payload)
	assert.NilError(f.T, err)
	//nolint:noctx // its for a test its ok.
	res, err := http.Post(f.MakeHTTPURL(path), "application/json", bytes.NewReader(bz))
	assert.NilError(f.T, err)
	return res
}
