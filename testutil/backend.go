package testutil

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
)

// RecordedRequest is a request observed by FakeBackend.
type RecordedRequest struct {
	Method        string
	Path          string
	Authorization string
	RequestID     string
	ContentType   string
	Accept        string
	Body          string
}

type fakeRoute struct {
	status int
	body   string
}

type fakeUser struct {
	password string
	user     string // JSON object returned as AuthResponse.user
}

// FakeBackend is an http.Handler that imitates the GymView API's bearer-token
// behaviour: protected routes answer 401 unless the Authorization header holds
// an access token it issued, and POST /auth/refresh trades known refresh tokens
// for new access tokens.
type FakeBackend struct {
	mu            sync.Mutex
	validAccess   map[string]bool
	refreshTokens map[string]string // refresh token -> access token to issue
	users         map[string]fakeUser
	routes        map[string]fakeRoute
	requests      []RecordedRequest
	refreshCalls  int
	refreshGate   chan struct{}
	refreshSeen   chan struct{}
	issued        int
}

// NewFakeBackend creates an empty FakeBackend.
func NewFakeBackend() *FakeBackend {
	return &FakeBackend{
		validAccess:   make(map[string]bool),
		refreshTokens: make(map[string]string),
		users:         make(map[string]fakeUser),
		routes:        make(map[string]fakeRoute),
		refreshSeen:   make(chan struct{}, 64),
	}
}

// AddRoute registers a protected route answering status and body.
func (b *FakeBackend) AddRoute(method, path string, status int, body string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.routes[method+" "+path] = fakeRoute{status: status, body: body}
}

// AllowAccessToken marks token as a valid access token.
func (b *FakeBackend) AllowAccessToken(token string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.validAccess[token] = true
}

// RevokeAccessToken makes token answer 401 from now on.
func (b *FakeBackend) RevokeAccessToken(token string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.validAccess, token)
}

// AddRefreshToken makes refresh exchangeable for access. If valid is false the
// issued access token is itself rejected, which simulates a broken refresh.
func (b *FakeBackend) AddRefreshToken(refresh, access string, valid bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.refreshTokens[refresh] = access
	if !valid {
		b.validAccess[access] = false
	}
}

// AddUser registers login credentials. userJSON is returned as the session user.
func (b *FakeBackend) AddUser(usuario, password, userJSON string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.users[usuario] = fakeUser{password: password, user: userJSON}
}

// HoldRefresh makes refresh requests block until the returned release func is called.
func (b *FakeBackend) HoldRefresh() (release func()) {
	gate := make(chan struct{})
	b.mu.Lock()
	b.refreshGate = gate
	b.mu.Unlock()

	var once sync.Once
	return func() { once.Do(func() { close(gate) }) }
}

// RefreshSeen receives a value each time a refresh request arrives.
func (b *FakeBackend) RefreshSeen() <-chan struct{} {
	return b.refreshSeen
}

// RefreshCalls reports how many refresh requests were received.
func (b *FakeBackend) RefreshCalls() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.refreshCalls
}

// Requests returns every request received so far.
func (b *FakeBackend) Requests() []RecordedRequest {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]RecordedRequest, len(b.requests))
	copy(out, b.requests)
	return out
}

// RequestsTo returns the requests received for method and path.
func (b *FakeBackend) RequestsTo(method, path string) []RecordedRequest {
	var out []RecordedRequest
	for _, r := range b.Requests() {
		if r.Method == method && r.Path == path {
			out = append(out, r)
		}
	}
	return out
}

// ServeHTTP implements http.Handler.
func (b *FakeBackend) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	raw, _ := io.ReadAll(r.Body)
	body := string(raw)

	b.mu.Lock()
	b.requests = append(b.requests, RecordedRequest{
		Method:        r.Method,
		Path:          r.URL.Path,
		Authorization: r.Header.Get("Authorization"),
		RequestID:     r.Header.Get("X-Request-ID"),
		ContentType:   r.Header.Get("Content-Type"),
		Accept:        r.Header.Get("Accept"),
		Body:          body,
	})
	b.mu.Unlock()

	switch {
	case r.Method == http.MethodPost && r.URL.Path == "/auth/refresh":
		b.serveRefresh(w, body)
	case r.Method == http.MethodPost && r.URL.Path == "/auth/login":
		b.serveLogin(w, body)
	default:
		b.serveProtected(w, r)
	}
}

func (b *FakeBackend) serveRefresh(w http.ResponseWriter, body string) {
	b.mu.Lock()
	b.refreshCalls++
	gate := b.refreshGate
	b.mu.Unlock()

	b.refreshSeen <- struct{}{}
	if gate != nil {
		<-gate
	}

	var req struct {
		RefreshToken string `json:"refreshToken"`
	}
	_ = json.Unmarshal([]byte(body), &req)

	b.mu.Lock()
	access, ok := b.refreshTokens[req.RefreshToken]
	if ok {
		if _, marked := b.validAccess[access]; !marked {
			b.validAccess[access] = true
		}
	}
	b.mu.Unlock()

	if !ok {
		writeJSON(w, http.StatusUnauthorized, `{"message":"invalid refresh token"}`)
		return
	}
	writeJSON(w, http.StatusOK, fmt.Sprintf(`{"access_token":%q}`, access))
}

func (b *FakeBackend) serveLogin(w http.ResponseWriter, body string) {
	var req struct {
		Usuario    string `json:"usuario"`
		Contrasena string `json:"contrasena"`
	}
	_ = json.Unmarshal([]byte(body), &req)

	b.mu.Lock()
	u, ok := b.users[req.Usuario]
	if ok && u.password == req.Contrasena {
		b.issued++
	}
	n := b.issued
	access := fmt.Sprintf("access-%s-%d", req.Usuario, n)
	refresh := fmt.Sprintf("refresh-%s-%d", req.Usuario, n)
	if ok && u.password == req.Contrasena {
		b.validAccess[access] = true
		b.refreshTokens[refresh] = access + "-r"
	}
	b.mu.Unlock()

	if !ok || u.password != req.Contrasena {
		writeJSON(w, http.StatusUnauthorized, `{"success":false,"message":"Credenciales inválidas"}`)
		return
	}
	writeJSON(w, http.StatusOK, fmt.Sprintf(
		`{"success":true,"data":{"access_token":%q,"refresh_token":%q,"user":%s}}`,
		access, refresh, u.user,
	))
}

func (b *FakeBackend) serveProtected(w http.ResponseWriter, r *http.Request) {
	token := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")

	b.mu.Lock()
	valid := b.validAccess[token]
	route, found := b.routes[r.Method+" "+r.URL.Path]
	b.mu.Unlock()

	if !valid {
		writeJSON(w, http.StatusUnauthorized, `{"message":"token expired"}`)
		return
	}
	if !found {
		writeJSON(w, http.StatusNotFound, `{"message":"not found"}`)
		return
	}
	writeJSON(w, route.status, route.body)
}

func writeJSON(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(body))
}
