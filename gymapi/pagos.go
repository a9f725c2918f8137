package gymapi

import (
	"context"
	"net/http"
)

// PagosService records payments and invoices.
type PagosService struct {
	c *Client
}

// List returns every payment.
func (s *PagosService) List(ctx context.Context) ([]Pago, error) {
	return doList[Pago](ctx, s.c, http.MethodGet, "/pagos", nil)
}

// ListPage returns one page of payments.
func (s *PagosService) ListPage(ctx context.Context, opts ListOptions) (*PaginatedResponse[Pago], error) {
	return doRequest[PaginatedResponse[Pago]](ctx, s.c, http.MethodGet, withQuery("/pagos", pageQuery(opts)), nil)
}

// Get returns one payment.
func (s *PagosService) Get(ctx context.Context, id int) (*Pago, error) {
	return doRequest[Pago](ctx, s.c, http.MethodGet, idPath("/pagos/%d", id), nil)
}

// Create records a payment.
func (s *PagosService) Create(ctx context.Context, in PagoInput) (*Pago, error) {
	return doRequest[Pago](ctx, s.c, http.MethodPost, "/pagos", in)
}

// ByCliente returns a client's payments.
func (s *PagosService) ByCliente(ctx context.Context, idCliente int) ([]Pago, error) {
	return doList[Pago](ctx, s.c, http.MethodGet, idPath("/pagos/cliente/%d", idCliente), nil)
}

// Facturas returns the invoices issued for a payment.
func (s *PagosService) Facturas(ctx context.Context, id int) ([]Factura, error) {
	return doList[Factura](ctx, s.c, http.MethodGet, idPath("/pagos/%d/facturas", id), nil)
}
