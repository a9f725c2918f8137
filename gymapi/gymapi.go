// Package gymapi provides typed access to the GymView REST API.
//
// Usage:
//
//	hc, err := httpclient.NewBuilder("http://localhost:8080/api").
//	    WithTokenStore(store).
//	    Build()
//	api := gymapi.New(hc, store)
//
//	session, err := api.Auth.Login(ctx, gymapi.LoginCredentials{Usuario: "ana", Contrasena: "..."})
//	clientes, err := api.Clientes.List(ctx)
//	pagos, err := api.Pagos.ByCliente(ctx, 1)
//
// Requests go through the authenticated httpclient.Client, so an expired
// access token is refreshed transparently.
package gymapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"

	"github.com/ironfitness/go-gymview/authz"
	"github.com/ironfitness/go-gymview/httpclient"
	"github.com/ironfitness/go-gymview/tokenstore"
)

// Client is the GymView API client.
type Client struct {
	http   *httpclient.Client
	store  tokenstore.Store
	logger httpclient.Logger
	policy *authz.Evaluator

	// Service accessors
	Auth         *AuthService
	Usuarios     *UsuariosService
	Clientes     *ClientesService
	Entrenadores *EntrenadoresService
	Rutinas      *RutinasService
	Asistencias  *AsistenciasService
	Pagos        *PagosService
	Reportes     *ReportesService
}

// Option configures a Client.
type Option func(*Client)

// WithLogger sets the logger used for non-fatal problems such as a failed
// logout call.
func WithLogger(logger httpclient.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithPolicies replaces the role requirements used by AuthService.Authorize
// and AuthService.Features.
func WithPolicies(policies map[authz.Feature]authz.Policy) Option {
	return func(c *Client) {
		c.policy = authz.NewEvaluator(policies)
	}
}

// New creates a Client. store must be the store the httpclient.Client's
// refresher reads from, since login and logout write session credentials to it.
func New(hc *httpclient.Client, store tokenstore.Store, opts ...Option) *Client {
	c := &Client{
		http:  hc,
		store: store,
	}
	for _, o := range opts {
		o(c)
	}
	if c.policy == nil {
		c.policy = authz.NewEvaluator(authz.DefaultPolicies())
	}
	c.Auth = &AuthService{c: c}
	c.Usuarios = &UsuariosService{c: c}
	c.Clientes = &ClientesService{c: c}
	c.Entrenadores = &EntrenadoresService{c: c}
	c.Rutinas = &RutinasService{c: c}
	c.Asistencias = &AsistenciasService{c: c}
	c.Pagos = &PagosService{c: c}
	c.Reportes = &ReportesService{c: c}
	return c
}

// HTTP returns the underlying authenticated client for endpoints not covered here.
func (c *Client) HTTP() *httpclient.Client {
	return c.http
}

func (c *Client) logf(format string, args ...any) {
	if c.logger != nil {
		c.logger.Printf(format, args...)
	}
}

// --- internal helpers ---

// doRequest sends a request and decodes the response into T. Responses wrapped
// in the {"success", "data"} envelope are unwrapped first.
func doRequest[T any](ctx context.Context, c *Client, method, path string, body any, opts ...httpclient.CallOption) (*T, error) {
	var raw []byte
	if err := c.http.Do(ctx, method, path, body, &raw, opts...); err != nil {
		return nil, err
	}

	out, err := unwrap[T](raw)
	if err != nil {
		if _, ok := err.(*APIError); ok {
			return nil, err
		}
		return nil, &httpclient.DecodeError{Method: method, Path: path, Body: raw, Err: err}
	}
	return out, nil
}

func doList[T any](ctx context.Context, c *Client, method, path string, body any) ([]T, error) {
	out, err := doRequest[[]T](ctx, c, method, path, body)
	if err != nil {
		return nil, err
	}
	return *out, nil
}

// doEnvelope sends a request to an endpoint that always answers with the
// {"success", "data", "message"} envelope and returns data.
func doEnvelope[T any](ctx context.Context, c *Client, method, path string, body any, opts ...httpclient.CallOption) (*T, error) {
	var raw []byte
	if err := c.http.Do(ctx, method, path, body, &raw, opts...); err != nil {
		return nil, err
	}

	var env APIResponse[T]
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, &httpclient.DecodeError{Method: method, Path: path, Body: raw, Err: err}
	}
	if !env.Success {
		return nil, &APIError{Message: env.Message, Errors: env.Errors}
	}
	return &env.Data, nil
}

func unwrap[T any](raw []byte) (*T, error) {
	var out T
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return &out, nil
	}

	var env struct {
		Success *bool           `json:"success"`
		Data    json.RawMessage `json:"data"`
		Message string          `json:"message"`
		Errors  []string        `json:"errors"`
	}
	if raw[0] == '{' && json.Unmarshal(raw, &env) == nil && env.Success != nil {
		if !*env.Success {
			return nil, &APIError{Message: env.Message, Errors: env.Errors}
		}
		if len(env.Data) > 0 {
			raw = env.Data
		}
	}

	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func idPath(format string, id int) string {
	return fmt.Sprintf(format, id)
}

func withQuery(path string, query url.Values) string {
	if len(query) == 0 {
		return path
	}
	return path + "?" + query.Encode()
}

func pageQuery(opts ListOptions) url.Values {
	q := url.Values{}
	if opts.Page > 0 {
		q.Set("page", strconv.Itoa(opts.Page))
	}
	if opts.PageSize > 0 {
		q.Set("pageSize", strconv.Itoa(opts.PageSize))
	}
	return q
}
