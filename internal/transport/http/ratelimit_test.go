package http

import (
	stdhttp "net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func invokeLimiter(t *testing.T, handler gin.HandlerFunc, remoteAddr string) int {
	t.Helper()

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req := httptest.NewRequest(stdhttp.MethodPost, "/users", nil)
	req.RemoteAddr = remoteAddr
	c.Request = req

	handler(c)
	return w.Code
}

func TestIPRateLimiterSharedAcrossInstances(t *testing.T) {
	gin.SetMode(gin.TestMode)

	l := newIPRateLimiter(2)
	mid1 := l.Middleware()
	mid2 := l.Middleware()

	// Both middleware instances drain the same per-IP bucket.
	if code := invokeLimiter(t, mid1, "10.0.0.1:1111"); code != stdhttp.StatusOK {
		t.Fatalf("first request = %d", code)
	}
	if code := invokeLimiter(t, mid2, "10.0.0.1:2222"); code != stdhttp.StatusOK {
		t.Fatalf("second request = %d", code)
	}
	if code := invokeLimiter(t, mid1, "10.0.0.1:3333"); code != stdhttp.StatusTooManyRequests {
		t.Fatalf("over-budget request = %d, want 429", code)
	}

	// A different IP has its own bucket.
	if code := invokeLimiter(t, mid2, "10.0.0.2:1111"); code != stdhttp.StatusOK {
		t.Fatalf("other IP = %d", code)
	}
}

func TestIPRateLimiterDisabled(t *testing.T) {
	gin.SetMode(gin.TestMode)

	l := newIPRateLimiter(0)
	if l != nil {
		t.Fatal("zero budget should disable the limiter")
	}

	mid := l.Middleware()
	for i := 0; i < 5; i++ {
		if code := invokeLimiter(t, mid, "10.0.0.1:1111"); code != stdhttp.StatusOK {
			t.Fatalf("disabled limiter rejected request: %d", code)
		}
	}
}

func TestIPRateLimiterPrune(t *testing.T) {
	l := newIPRateLimiter(5)
	l.limiter("10.0.0.1")

	// A full bucket is eligible for pruning; a drained one is kept.
	l.limiter("10.0.0.2").Allow()
	l.prune()

	l.mu.Lock()
	_, fullKept := l.limits["10.0.0.1"]
	_, drainedKept := l.limits["10.0.0.2"]
	l.mu.Unlock()

	if fullKept {
		t.Error("full bucket survived prune")
	}
	if !drainedKept {
		t.Error("active bucket was pruned")
	}
}
