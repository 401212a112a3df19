// Package integration exercises the admind server end to end: a real TCP
// listener in front of the admin API, backed by a fake data-service tier.
package integration

import (
	"fmt"
	"net"
	"net/http"
	"sync/atomic"
	"testing"
	"time"
)

// Global port counter for all integration tests to avoid port collisions
// when tests run in parallel. Starting at 30000 to avoid common ports.
var globalPortCounter uint32 = 30000

// GetFreePortSafe returns a unique port for testing that won't collide
// with other tests running in parallel.
func GetFreePortSafe() int {
	for attempts := 0; attempts < 100; attempts++ {
		port := int(atomic.AddUint32(&globalPortCounter, 1))
		if isPortFree(port) {
			return port
		}
	}
	// Fallback to the atomic counter value even if not verified free
	return int(atomic.AddUint32(&globalPortCounter, 1))
}

// isPortFree checks if a port is available for binding
func isPortFree(port int) bool {
	ln, err := net.Listen("tcp", fmt.Sprintf(":%d", port))
	if err != nil {
		return false
	}
	ln.Close()
	return true
}

// waitForReady polls the health endpoint until the server answers or the
// deadline passes.
func waitForReady(t *testing.T, baseURL string) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		resp, err := http.Get(baseURL + "/health")
		if err == nil {
			resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				return
			}
		}
		time.Sleep(20 * time.Millisecond)
	}
	t.Fatalf("server at %s did not become ready", baseURL)
}
