package gymapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/ironfitness/go-gymview/httpclient"
)

func TestServices_Endpoints(t *testing.T) {
	desde := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	hasta := time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name       string
		call       func(ctx context.Context, api *Client) error
		response   string
		wantMethod string
		wantPath   string
	}{
		{"usuarios list", func(ctx context.Context, api *Client) error { _, err := api.Usuarios.List(ctx); return err }, `[]`, "GET", "/usuarios"},
		{"usuarios get", func(ctx context.Context, api *Client) error { _, err := api.Usuarios.Get(ctx, 2); return err }, `{}`, "GET", "/usuarios/2"},
		{"usuarios by role", func(ctx context.Context, api *Client) error {
			_, err := api.Usuarios.ListByRole(ctx, RoleEntrenador)
			return err
		}, `[]`, "GET", "/usuarios/role/entrenador"},
		{"usuarios create", func(ctx context.Context, api *Client) error {
			_, err := api.Usuarios.Create(ctx, RegisterInput{Usuario: "x"})
			return err
		}, `{}`, "POST", "/usuarios"},
		{"usuarios update", func(ctx context.Context, api *Client) error {
			estado := false
			_, err := api.Usuarios.Update(ctx, 2, UsuarioUpdate{Estado: &estado})
			return err
		}, `{}`, "PUT", "/usuarios/2"},
		{"usuarios delete", func(ctx context.Context, api *Client) error { return api.Usuarios.Delete(ctx, 2) }, ``, "DELETE", "/usuarios/2"},

		{"clientes list", func(ctx context.Context, api *Client) error { _, err := api.Clientes.List(ctx); return err }, `[]`, "GET", "/clientes"},
		{"clientes page", func(ctx context.Context, api *Client) error {
			_, err := api.Clientes.ListPage(ctx, ListOptions{Page: 2, PageSize: 20})
			return err
		}, `{"data":[],"total":0,"page":2,"pageSize":20,"totalPages":0}`, "GET", "/clientes?page=2&pageSize=20"},
		{"clientes get", func(ctx context.Context, api *Client) error { _, err := api.Clientes.Get(ctx, 1); return err }, `{}`, "GET", "/clientes/1"},
		{"clientes create", func(ctx context.Context, api *Client) error {
			_, err := api.Clientes.Create(ctx, ClienteInput{Nombre: "Ana"})
			return err
		}, `{}`, "POST", "/clientes"},
		{"clientes update", func(ctx context.Context, api *Client) error {
			_, err := api.Clientes.Update(ctx, 1, ClienteInput{Nombre: "Ana"})
			return err
		}, `{}`, "PUT", "/clientes/1"},
		{"clientes delete", func(ctx context.Context, api *Client) error { return api.Clientes.Delete(ctx, 1) }, ``, "DELETE", "/clientes/1"},
		{"clientes membresias", func(ctx context.Context, api *Client) error { _, err := api.Clientes.Membresias(ctx, 1); return err }, `[]`, "GET", "/clientes/1/membresias"},
		{"clientes rutinas", func(ctx context.Context, api *Client) error { _, err := api.Clientes.Rutinas(ctx, 1); return err }, `[]`, "GET", "/clientes/1/rutinas"},

		{"entrenadores list", func(ctx context.Context, api *Client) error { _, err := api.Entrenadores.List(ctx); return err }, `[]`, "GET", "/entrenadores"},
		{"entrenadores get", func(ctx context.Context, api *Client) error { _, err := api.Entrenadores.Get(ctx, 4); return err }, `{}`, "GET", "/entrenadores/4"},
		{"entrenadores create", func(ctx context.Context, api *Client) error {
			_, err := api.Entrenadores.Create(ctx, EntrenadorInput{Nombre: "Luis"})
			return err
		}, `{}`, "POST", "/entrenadores"},
		{"entrenadores update", func(ctx context.Context, api *Client) error {
			_, err := api.Entrenadores.Update(ctx, 4, EntrenadorInput{Nombre: "Luis"})
			return err
		}, `{}`, "PUT", "/entrenadores/4"},
		{"entrenadores delete", func(ctx context.Context, api *Client) error { return api.Entrenadores.Delete(ctx, 4) }, ``, "DELETE", "/entrenadores/4"},
		{"entrenadores clientes", func(ctx context.Context, api *Client) error { _, err := api.Entrenadores.Clientes(ctx, 4); return err }, `[]`, "GET", "/entrenadores/4/clientes"},
		{"entrenadores rutinas", func(ctx context.Context, api *Client) error { _, err := api.Entrenadores.Rutinas(ctx, 4); return err }, `[]`, "GET", "/entrenadores/4/rutinas"},

		{"rutinas list", func(ctx context.Context, api *Client) error { _, err := api.Rutinas.List(ctx); return err }, `[]`, "GET", "/rutinas"},
		{"rutinas get", func(ctx context.Context, api *Client) error { _, err := api.Rutinas.Get(ctx, 8); return err }, `{}`, "GET", "/rutinas/8"},
		{"rutinas create", func(ctx context.Context, api *Client) error {
			_, err := api.Rutinas.Create(ctx, RutinaInput{NombreRutina: "Fuerza", IDCliente: 1})
			return err
		}, `{}`, "POST", "/rutinas"},
		{"rutinas update", func(ctx context.Context, api *Client) error {
			_, err := api.Rutinas.Update(ctx, 8, RutinaInput{NombreRutina: "Fuerza", IDCliente: 1})
			return err
		}, `{}`, "PUT", "/rutinas/8"},
		{"rutinas delete", func(ctx context.Context, api *Client) error { return api.Rutinas.Delete(ctx, 8) }, ``, "DELETE", "/rutinas/8"},
		{"rutinas ejercicios", func(ctx context.Context, api *Client) error { _, err := api.Rutinas.Ejercicios(ctx, 8); return err }, `[]`, "GET", "/rutinas/8/ejercicios"},
		{"rutinas add ejercicio", func(ctx context.Context, api *Client) error {
			_, err := api.Rutinas.AddEjercicio(ctx, 8, RutinaEjercicioInput{IDEjercicio: 3, Series: "4", Repeticiones: "10"})
			return err
		}, `{}`, "POST", "/rutinas/8/ejercicios"},

		{"asistencias list", func(ctx context.Context, api *Client) error { _, err := api.Asistencias.List(ctx); return err }, `[]`, "GET", "/asistencias"},
		{"asistencias register", func(ctx context.Context, api *Client) error {
			_, err := api.Asistencias.Register(ctx, AsistenciaInput{IDCliente: 1})
			return err
		}, `{}`, "POST", "/asistencias"},
		{"asistencias by cliente", func(ctx context.Context, api *Client) error { _, err := api.Asistencias.ByCliente(ctx, 1); return err }, `[]`, "GET", "/asistencias/cliente/1"},
		{"asistencias today", func(ctx context.Context, api *Client) error { _, err := api.Asistencias.Today(ctx); return err }, `[]`, "GET", "/asistencias/today"},

		{"pagos list", func(ctx context.Context, api *Client) error { _, err := api.Pagos.List(ctx); return err }, `[]`, "GET", "/pagos"},
		{"pagos page", func(ctx context.Context, api *Client) error {
			_, err := api.Pagos.ListPage(ctx, ListOptions{})
			return err
		}, `{"data":[]}`, "GET", "/pagos"},
		{"pagos get", func(ctx context.Context, api *Client) error { _, err := api.Pagos.Get(ctx, 9); return err }, `{}`, "GET", "/pagos/9"},
		{"pagos create", func(ctx context.Context, api *Client) error {
			_, err := api.Pagos.Create(ctx, PagoInput{IDCliente: 1, Monto: 30, MetodoPago: PagoEfectivo})
			return err
		}, `{}`, "POST", "/pagos"},
		{"pagos by cliente", func(ctx context.Context, api *Client) error { _, err := api.Pagos.ByCliente(ctx, 1); return err }, `[]`, "GET", "/pagos/cliente/1"},
		{"pagos facturas", func(ctx context.Context, api *Client) error { _, err := api.Pagos.Facturas(ctx, 9); return err }, `[]`, "GET", "/pagos/9/facturas"},

		{"reporte asistencia", func(ctx context.Context, api *Client) error {
			_, err := api.Reportes.Asistencia(ctx, ReportRange{Desde: desde, Hasta: hasta})
			return err
		}, `{}`, "GET", "/reportes/asistencia?desde=2024-01-01&hasta=2024-01-31"},
		{"reporte ingresos", func(ctx context.Context, api *Client) error {
			_, err := api.Reportes.Ingresos(ctx, ReportRange{})
			return err
		}, `{}`, "GET", "/reportes/ingresos"},
		{"reporte membresias", func(ctx context.Context, api *Client) error {
			_, err := api.Reportes.Membresias(ctx, ReportRange{Desde: desde})
			return err
		}, `{}`, "GET", "/reportes/membresias?desde=2024-01-01"},
		{"reporte entrenadores", func(ctx context.Context, api *Client) error {
			_, err := api.Reportes.Entrenadores(ctx, ReportRange{})
			return err
		}, `[]`, "GET", "/reportes/entrenadores"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var seen *httpclient.Request
			api, _ := newStubAPI(t, func(req *httpclient.Request) (*httpclient.Response, error) {
				seen = req
				return ok(tt.response), nil
			})

			if err := tt.call(context.Background(), api); err != nil {
				t.Fatalf("call failed: %v", err)
			}
			if seen.Method != tt.wantMethod || seen.Path != tt.wantPath {
				t.Errorf("expected %s %s, got %s %s", tt.wantMethod, tt.wantPath, seen.Method, seen.Path)
			}
		})
	}
}

func TestServices_DecodeModels(t *testing.T) {
	api, _ := newStubAPI(t, func(req *httpclient.Request) (*httpclient.Response, error) {
		switch req.Path {
		case "/pagos/cliente/1":
			return ok(`[{"id_pago":9,"id_cliente":1,"monto":35.5,"fecha_pago":"2024-02-10T09:30:00Z","metodo_pago":"tarjeta","estado":"completado"}]`), nil
		case "/clientes/1":
			return ok(`{"success":true,"data":{"id_cliente":1,"nombre":"Ana","apellido":"Pérez","email":"ana@example.com","fecha_vencimiento":"2024-12-31"}}`), nil
		case "/rutinas":
			return ok(`{"id_rutina":8,"id_cliente":1,"nombre_rutina":"Fuerza","fecha_creacion":"2024-02-01 10:00:00"}`), nil
		}
		return &httpclient.Response{StatusCode: http.StatusNotFound}, nil
	})
	ctx := context.Background()

	pagos, err := api.Pagos.ByCliente(ctx, 1)
	if err != nil {
		t.Fatalf("ByCliente failed: %v", err)
	}
	if len(pagos) != 1 || pagos[0].Monto != 35.5 || pagos[0].MetodoPago != PagoTarjeta || pagos[0].Estado != PagoCompletado {
		t.Errorf("unexpected pagos: %+v", pagos)
	}
	if pagos[0].FechaPago.Hour() != 9 {
		t.Errorf("unexpected fecha_pago: %v", pagos[0].FechaPago)
	}

	cliente, err := api.Clientes.Get(ctx, 1)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if cliente.Apellido != "Pérez" || cliente.FechaVencimiento == nil || cliente.FechaVencimiento.Month() != time.December {
		t.Errorf("enveloped cliente not decoded: %+v", cliente)
	}

	rutina, err := api.Rutinas.Create(ctx, RutinaInput{
		NombreRutina: "Fuerza",
		IDCliente:    1,
		Ejercicios:   []RutinaEjercicioInput{{IDEjercicio: 3, Series: "4", Repeticiones: "10"}},
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if rutina.IDRutina != 8 || rutina.FechaCreacion.Day() != 1 {
		t.Errorf("unexpected rutina: %+v", rutina)
	}

	_, err = api.Entrenadores.Get(ctx, 99)
	var statusErr *httpclient.StatusError
	if !errors.As(err, &statusErr) || statusErr.StatusCode != http.StatusNotFound {
		t.Errorf("expected 404 StatusError, got %v", err)
	}
}

func TestServices_DecodeError(t *testing.T) {
	api, _ := newStubAPI(t, func(req *httpclient.Request) (*httpclient.Response, error) {
		return ok(`{"id_cliente":"uno"}`), nil
	})

	_, err := api.Clientes.Get(context.Background(), 1)

	var decodeErr *httpclient.DecodeError
	if !errors.As(err, &decodeErr) {
		t.Fatalf("expected DecodeError, got %v", err)
	}
	if decodeErr.Path != "/clientes/1" {
		t.Errorf("unexpected path: %s", decodeErr.Path)
	}
}

func TestUnwrap(t *testing.T) {
	t.Run("bare object", func(t *testing.T) {
		got, err := unwrap[Cliente]([]byte(`{"id_cliente":1}`))
		if err != nil || got.IDCliente != 1 {
			t.Fatalf("unexpected result: %+v %v", got, err)
		}
	})

	t.Run("bare array", func(t *testing.T) {
		got, err := unwrap[[]Cliente]([]byte(` [{"id_cliente":1},{"id_cliente":2}]`))
		if err != nil || len(*got) != 2 {
			t.Fatalf("unexpected result: %+v %v", got, err)
		}
	})

	t.Run("envelope", func(t *testing.T) {
		got, err := unwrap[[]Cliente]([]byte(`{"success":true,"data":[{"id_cliente":3}]}`))
		if err != nil || len(*got) != 1 || (*got)[0].IDCliente != 3 {
			t.Fatalf("unexpected result: %+v %v", got, err)
		}
	})

	t.Run("unsuccessful envelope", func(t *testing.T) {
		_, err := unwrap[Cliente]([]byte(`{"success":false,"message":"No autorizado"}`))
		var apiErr *APIError
		if !errors.As(err, &apiErr) || apiErr.Message != "No autorizado" {
			t.Fatalf("expected APIError, got %v", err)
		}
	})

	t.Run("empty", func(t *testing.T) {
		got, err := unwrap[Cliente](nil)
		if err != nil || got == nil {
			t.Fatalf("unexpected result: %+v %v", got, err)
		}
	})

	t.Run("paginated is not an envelope", func(t *testing.T) {
		got, err := unwrap[PaginatedResponse[Pago]]([]byte(`{"data":[{"id_pago":1}],"total":1,"page":1,"pageSize":10,"totalPages":1}`))
		if err != nil || got.Total != 1 || len(got.Data) != 1 {
			t.Fatalf("unexpected result: %+v %v", got, err)
		}
	})
}

func TestDate_JSON(t *testing.T) {
	tests := []struct {
		in   string
		want time.Time
	}{
		{`"2024-02-10T09:30:00Z"`, time.Date(2024, 2, 10, 9, 30, 0, 0, time.UTC)},
		{`"2024-02-10T09:30:00.123Z"`, time.Date(2024, 2, 10, 9, 30, 0, 123000000, time.UTC)},
		{`"2024-02-10T09:30:00"`, time.Date(2024, 2, 10, 9, 30, 0, 0, time.UTC)},
		{`"2024-02-10 09:30:00"`, time.Date(2024, 2, 10, 9, 30, 0, 0, time.UTC)},
		{`"2024-02-10"`, time.Date(2024, 2, 10, 0, 0, 0, 0, time.UTC)},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			var d Date
			if err := json.Unmarshal([]byte(tt.in), &d); err != nil {
				t.Fatalf("Unmarshal failed: %v", err)
			}
			if !d.Equal(tt.want) {
				t.Errorf("expected %v, got %v", tt.want, d.Time)
			}
		})
	}

	var d Date
	if err := json.Unmarshal([]byte(`"10/02/2024"`), &d); err == nil {
		t.Error("expected error for unsupported layout")
	}
	if err := json.Unmarshal([]byte(`null`), &d); err != nil || !d.IsZero() {
		t.Errorf("null should leave a zero date: %v %v", d, err)
	}

	out, err := json.Marshal(struct {
		A Date  `json:"a"`
		B *Date `json:"b,omitempty"`
	}{A: NewDate(time.Date(2024, 2, 10, 9, 30, 0, 0, time.UTC))})
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	if string(out) != `{"a":"2024-02-10T09:30:00Z"}` {
		t.Errorf("unexpected JSON: %s", out)
	}
}

func TestParseQR(t *testing.T) {
	now := time.UnixMilli(1_700_000_000_000)

	qr, err := ParseQR(`{"id_cliente":1,"codigo":"abc","timestamp":1699999990000,"expiracion":1700000300000}`, now)
	if err != nil {
		t.Fatalf("ParseQR failed: %v", err)
	}
	if qr.IDCliente != 1 || qr.Codigo != "abc" {
		t.Errorf("unexpected QR: %+v", qr)
	}

	invalid := []string{
		`not json`,
		`{"codigo":"abc","timestamp":1}`,
		`{"id_cliente":1,"timestamp":1}`,
		`{"id_cliente":1,"codigo":"abc"}`,
	}
	for _, payload := range invalid {
		if _, err := ParseQR(payload, now); !errors.Is(err, ErrInvalidQR) {
			t.Errorf("%s: expected ErrInvalidQR, got %v", payload, err)
		}
	}

	_, err = ParseQR(`{"id_cliente":1,"codigo":"abc","timestamp":1,"expiracion":1699999999999}`, now)
	if !errors.Is(err, ErrQRExpired) {
		t.Errorf("expected ErrQRExpired, got %v", err)
	}
}

func TestAsistencias_ValidateQR(t *testing.T) {
	requests := 0
	api, _ := newStubAPI(t, func(req *httpclient.Request) (*httpclient.Response, error) {
		requests++
		if req.Path != "/asistencias/validate-qr" {
			t.Errorf("unexpected path: %s", req.Path)
		}
		if !strings.Contains(string(req.Body), `"codigo":"abc"`) {
			t.Errorf("unexpected body: %s", req.Body)
		}
		return ok(`{"valido":true,"mensaje":"Asistencia registrada correctamente","asistencia":{"id_asistencia":5,"id_cliente":1,"fecha_hora_ingreso":"2024-02-10T09:30:00Z","codigo_validado":"abc"}}`), nil
	})
	ctx := context.Background()

	now := time.Now()
	res, err := api.Asistencias.ValidateQR(ctx, QRData{
		IDCliente:  1,
		Codigo:     "abc",
		Timestamp:  now.UnixMilli(),
		Expiracion: now.Add(5 * time.Minute).UnixMilli(),
	})
	if err != nil {
		t.Fatalf("ValidateQR failed: %v", err)
	}
	if !res.Valido || res.Asistencia == nil || res.Asistencia.CodigoValidado != "abc" {
		t.Errorf("unexpected response: %+v", res)
	}

	_, err = api.Asistencias.ValidateQR(ctx, QRData{
		IDCliente:  1,
		Codigo:     "abc",
		Timestamp:  now.Add(-10 * time.Minute).UnixMilli(),
		Expiracion: now.Add(-5 * time.Minute).UnixMilli(),
	})
	if !errors.Is(err, ErrQRExpired) {
		t.Fatalf("expected ErrQRExpired, got %v", err)
	}
	if requests != 1 {
		t.Errorf("expired codes must not reach the API, got %d requests", requests)
	}
}
