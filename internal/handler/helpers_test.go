package handler_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/carte-app/api/internal/auth"
	"github.com/carte-app/api/internal/enum"
	"github.com/carte-app/api/internal/event"
	"github.com/carte-app/api/internal/middleware"
	"github.com/go-chi/chi/v5"
)

const testJWTSecret = "test-secret"

func doRequest(t *testing.T, router http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	return do(t, router, newRequest(t, method, path, body))
}

func doAuthRequest(t *testing.T, router http.Handler, method, path string, body interface{}, menuID int64) *httptest.ResponseRecorder {
	t.Helper()
	token, err := auth.GenerateToken(testJWTSecret, menuID)
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}
	req := newRequest(t, method, path, body)
	req.Header.Set("Authorization", "Bearer "+token)
	return do(t, router, req)
}

func newRequest(t *testing.T, method, path string, body interface{}) *http.Request {
	t.Helper()
	if body == nil {
		return httptest.NewRequest(method, path, nil)
	}
	var b []byte
	if raw, ok := body.(string); ok {
		b = []byte(raw)
	} else {
		var err error
		if b, err = json.Marshal(body); err != nil {
			t.Fatalf("marshal request: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, bytes.NewReader(b))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func do(t *testing.T, router http.Handler, req *http.Request) *httptest.ResponseRecorder {
	t.Helper()
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	return rr
}

func decodeMap(t *testing.T, rr *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var resp map[string]interface{}
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return resp
}

func decodeInto(t *testing.T, rr *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.NewDecoder(rr.Body).Decode(v); err != nil {
		t.Fatalf("decode response: %v", err)
	}
}

func expectStatus(t *testing.T, rr *httptest.ResponseRecorder, want int) {
	t.Helper()
	if rr.Code != want {
		t.Fatalf("status = %d, want %d; body: %s", rr.Code, want, rr.Body.String())
	}
}

// menuRouter lays routes out the way the server does: root on /menus,
// public under /menus/{mid} and admin behind the same middleware chain.
func menuRouter(root, public, admin func(r chi.Router)) *chi.Mux {
	r := chi.NewRouter()
	r.Route("/menus", func(r chi.Router) {
		if root != nil {
			root(r)
		}
		r.Route("/{mid}", func(r chi.Router) {
			if public != nil {
				public(r)
			}
			if admin != nil {
				r.Group(func(r chi.Router) {
					r.Use(middleware.Authenticate(testJWTSecret))
					r.Use(middleware.RequireMenu)
					r.Use(middleware.RequireRole(enum.RoleMenuAdmin))
					admin(r)
				})
			}
		})
	})
	return r
}

type published struct {
	channel string
	msg     event.Message
}

type recordingPublisher struct {
	mu   sync.Mutex
	msgs []published
}

func (p *recordingPublisher) Publish(channel string, msg event.Message) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.msgs = append(p.msgs, published{channel: channel, msg: msg})
	return nil
}

// onChannel returns the messages published to channel, in order.
func (p *recordingPublisher) onChannel(channel string) []event.Message {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []event.Message
	for _, m := range p.msgs {
		if m.channel == channel {
			out = append(out, m.msg)
		}
	}
	return out
}
