package gymapi

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/ironfitness/go-gymview/authz"
)

// Date is a timestamp as sent by the API. It accepts RFC 3339 as well as the
// plain date and date-time layouts PostgreSQL produces.
type Date struct {
	time.Time
}

var dateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// NewDate wraps t.
func NewDate(t time.Time) Date {
	return Date{Time: t}
}

// UnmarshalJSON implements json.Unmarshaler.
func (d *Date) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("gymapi: date must be a string: %w", err)
	}
	if s == "" {
		d.Time = time.Time{}
		return nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			d.Time = t
			return nil
		}
	}
	return fmt.Errorf("gymapi: unsupported date format %q", s)
}

// MarshalJSON implements json.Marshaler.
func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(d.Format(time.RFC3339))
}

// --- Envelopes ---

// APIResponse is the envelope used by the auth endpoints and some resources.
type APIResponse[T any] struct {
	Success bool     `json:"success"`
	Data    T        `json:"data"`
	Message string   `json:"message,omitempty"`
	Errors  []string `json:"errors,omitempty"`
}

// PaginatedResponse is a page of a list endpoint.
type PaginatedResponse[T any] struct {
	Data       []T `json:"data"`
	Total      int `json:"total"`
	Page       int `json:"page"`
	PageSize   int `json:"pageSize"`
	TotalPages int `json:"totalPages"`
}

// ListOptions selects a page. Zero values leave the choice to the server.
type ListOptions struct {
	Page     int
	PageSize int
}

// --- Auth ---

// Role is a user role.
type Role string

const (
	RoleAdmin         Role = authz.RoleAdmin
	RoleRecepcionista Role = authz.RoleRecepcionista
	RoleEntrenador    Role = authz.RoleEntrenador
	RoleCliente       Role = authz.RoleCliente
)

// LoginCredentials is the body of POST /auth/login.
type LoginCredentials struct {
	Usuario    string `json:"usuario"`
	Contrasena string `json:"contrasena"`
}

// SessionUser is the signed-in user as returned by login and kept in the token store.
type SessionUser struct {
	IDUsuario      int    `json:"id_usuario"`
	Usuario        string `json:"usuario"`
	Rol            Role   `json:"rol"`
	NombreCompleto string `json:"nombre_completo"`
}

// AuthResponse is the data of a successful login.
type AuthResponse struct {
	AccessToken  string      `json:"access_token"`
	RefreshToken string      `json:"refresh_token"`
	User         SessionUser `json:"user"`
}

// RegisterInput is the body of POST /auth/register and POST /usuarios.
type RegisterInput struct {
	Usuario    string `json:"usuario"`
	Contrasena string `json:"contrasena"`
	Email      string `json:"email"`
	IDRol      int    `json:"id_rol"`
}

// --- Usuarios ---

// Rol is a role record.
type Rol struct {
	IDRol       int    `json:"id_rol"`
	NombreRol   Role   `json:"nombre_rol"`
	Descripcion string `json:"descripcion,omitempty"`
}

// Usuario is a user account. The password hash is never exposed.
type Usuario struct {
	IDUsuario     int    `json:"id_usuario"`
	Usuario       string `json:"usuario"`
	IDRol         int    `json:"id_rol"`
	Estado        bool   `json:"estado"`
	FechaRegistro Date   `json:"fecha_registro"`
	UltimoAcceso  *Date  `json:"ultimo_acceso,omitempty"`
}

// UsuarioUpdate is the body of PUT /usuarios/:id. Nil fields are left unchanged.
type UsuarioUpdate struct {
	Usuario *string `json:"usuario,omitempty"`
	Email   *string `json:"email,omitempty"`
	IDRol   *int    `json:"id_rol,omitempty"`
	Estado  *bool   `json:"estado,omitempty"`
}

// --- Clientes ---

// TipoMembresia is a membership plan.
type TipoMembresia struct {
	IDTipoMembresia int     `json:"id_tipo_membresia"`
	NombreTipo      string  `json:"nombre_tipo"`
	Precio          float64 `json:"precio"`
	DuracionDias    int     `json:"duracion_dias"`
}

// EstadoMembresia is the state of a membership.
type EstadoMembresia string

const (
	MembresiaActiva    EstadoMembresia = "activa"
	MembresiaVencida   EstadoMembresia = "vencida"
	MembresiaCancelada EstadoMembresia = "cancelada"
)

// Membresia is a membership held by a client.
type Membresia struct {
	IDMembresia     int             `json:"id_membresia"`
	IDTipoMembresia int             `json:"id_tipo_membresia"`
	FechaInicio     Date            `json:"fecha_inicio"`
	FechaFin        Date            `json:"fecha_fin"`
	PrecioPagado    float64         `json:"precio_pagado"`
	Estado          EstadoMembresia `json:"estado"`
}

// Cliente is a gym member.
type Cliente struct {
	IDCliente        int    `json:"id_cliente"`
	IDUsuario        int    `json:"id_usuario"`
	Nombre           string `json:"nombre"`
	Apellido         string `json:"apellido"`
	Email            string `json:"email"`
	Telefono         string `json:"telefono,omitempty"`
	FechaNacimiento  *Date  `json:"fecha_nacimiento,omitempty"`
	IDMembresia      *int   `json:"id_membresia,omitempty"`
	FechaVencimiento *Date  `json:"fecha_vencimiento,omitempty"`
}

// ClienteInput is the body used to create or update a client.
type ClienteInput struct {
	Nombre          string `json:"nombre"`
	Apellido        string `json:"apellido"`
	Email           string `json:"email"`
	Telefono        string `json:"telefono,omitempty"`
	FechaNacimiento *Date  `json:"fecha_nacimiento,omitempty"`
	Usuario         string `json:"usuario,omitempty"`
	Contrasena      string `json:"contrasena,omitempty"`
	IDTipoMembresia *int   `json:"id_tipo_membresia,omitempty"`
}

// --- Entrenadores ---

// Entrenador is a trainer.
type Entrenador struct {
	IDEntrenador   int    `json:"id_entrenador"`
	IDUsuario      int    `json:"id_usuario"`
	Nombre         string `json:"nombre"`
	Apellido       string `json:"apellido"`
	Email          string `json:"email"`
	Especialidad   string `json:"especialidad,omitempty"`
	NotasDesempeno string `json:"notas_desempeno,omitempty"`
}

// EntrenadorInput is the body used to create or update a trainer.
type EntrenadorInput struct {
	Nombre       string `json:"nombre"`
	Apellido     string `json:"apellido"`
	Email        string `json:"email"`
	Especialidad string `json:"especialidad,omitempty"`
	Usuario      string `json:"usuario,omitempty"`
	Contrasena   string `json:"contrasena,omitempty"`
}

// --- Rutinas ---

// Ejercicio is an exercise from the catalogue.
type Ejercicio struct {
	IDEjercicio     int    `json:"id_ejercicio"`
	NombreEjercicio string `json:"nombre_ejercicio"`
	GrupoMuscular   string `json:"grupo_muscular,omitempty"`
}

// Rutina is a training routine assigned to a client.
type Rutina struct {
	IDRutina      int    `json:"id_rutina"`
	IDCliente     int    `json:"id_cliente"`
	IDEntrenador  *int   `json:"id_entrenador,omitempty"`
	NombreRutina  string `json:"nombre_rutina"`
	Objetivo      string `json:"objetivo,omitempty"`
	FechaCreacion Date   `json:"fecha_creacion"`
}

// DetalleRutina is one exercise of a routine.
type DetalleRutina struct {
	IDDetalle       int    `json:"id_detalle"`
	IDRutina        int    `json:"id_rutina"`
	IDEjercicio     int    `json:"id_ejercicio"`
	NombreEjercicio string `json:"nombre_ejercicio,omitempty"`
	GrupoMuscular   string `json:"grupo_muscular,omitempty"`
	Series          string `json:"series,omitempty"`
	Repeticiones    string `json:"repeticiones,omitempty"`
}

// RutinaEjercicioInput adds an exercise to a routine.
type RutinaEjercicioInput struct {
	IDEjercicio  int    `json:"id_ejercicio"`
	Series       string `json:"series"`
	Repeticiones string `json:"repeticiones"`
}

// RutinaInput is the body used to create or update a routine.
type RutinaInput struct {
	NombreRutina string                 `json:"nombre_rutina"`
	Objetivo     string                 `json:"objetivo,omitempty"`
	IDCliente    int                    `json:"id_cliente"`
	Ejercicios   []RutinaEjercicioInput `json:"ejercicios"`
}

// --- Asistencias ---

// Asistencia is a gym check-in.
type Asistencia struct {
	IDAsistencia     int    `json:"id_asistencia"`
	IDCliente        int    `json:"id_cliente"`
	FechaHoraIngreso Date   `json:"fecha_hora_ingreso"`
	DispositivoQR    string `json:"dispositivo_qr,omitempty"`
	CodigoValidado   string `json:"codigo_validado,omitempty"`
	FechaHoraSalida  *Date  `json:"fecha_hora_salida,omitempty"`
}

// AsistenciaInput registers a check-in without a QR code.
type AsistenciaInput struct {
	IDCliente     int    `json:"id_cliente"`
	DispositivoQR string `json:"dispositivo_qr,omitempty"`
}

// QRData is the payload encoded in a client's check-in QR code.
// Timestamp and Expiracion are Unix milliseconds.
type QRData struct {
	IDCliente  int    `json:"id_cliente"`
	Codigo     string `json:"codigo"`
	Timestamp  int64  `json:"timestamp"`
	Expiracion int64  `json:"expiracion"`
}

// QRValidationResponse is the answer to POST /asistencias/validate-qr.
type QRValidationResponse struct {
	Valido     bool        `json:"valido"`
	Mensaje    string      `json:"mensaje"`
	Asistencia *Asistencia `json:"asistencia,omitempty"`
}

// --- Pagos ---

// MetodoPago is a payment method.
type MetodoPago string

const (
	PagoEfectivo      MetodoPago = "efectivo"
	PagoTarjeta       MetodoPago = "tarjeta"
	PagoTransferencia MetodoPago = "transferencia"
)

// EstadoPago is the state of a payment.
type EstadoPago string

const (
	PagoCompletado EstadoPago = "completado"
	PagoPendiente  EstadoPago = "pendiente"
	PagoCancelado  EstadoPago = "cancelado"
)

// Pago is a payment.
type Pago struct {
	IDPago        int        `json:"id_pago"`
	IDCliente     int        `json:"id_cliente"`
	Monto         float64    `json:"monto"`
	FechaPago     Date       `json:"fecha_pago"`
	MetodoPago    MetodoPago `json:"metodo_pago"`
	Estado        EstadoPago `json:"estado"`
	Observaciones string     `json:"observaciones,omitempty"`
}

// PagoInput records a payment.
type PagoInput struct {
	IDCliente     int        `json:"id_cliente"`
	Monto         float64    `json:"monto"`
	MetodoPago    MetodoPago `json:"metodo_pago"`
	Estado        EstadoPago `json:"estado,omitempty"`
	Observaciones string     `json:"observaciones,omitempty"`
}

// FacturaDetalle is an invoice line.
type FacturaDetalle struct {
	IDDetalleFactura int     `json:"id_detalle_factura"`
	IDFactura        int     `json:"id_factura"`
	Descripcion      string  `json:"descripcion"`
	Cantidad         int     `json:"cantidad"`
	PrecioUnitario   float64 `json:"precio_unitario"`
	SubtotalLinea    float64 `json:"subtotal_linea"`
}

// Factura is an invoice issued for a payment.
type Factura struct {
	IDFactura          int              `json:"id_factura"`
	IDPago             int              `json:"id_pago"`
	NumeroFactura      string           `json:"numero_factura"`
	FechaEmision       Date             `json:"fecha_emision"`
	RazonSocialCliente string           `json:"razon_social_cliente"`
	RucCliente         string           `json:"ruc_cliente"`
	DireccionCliente   string           `json:"direccion_cliente,omitempty"`
	Subtotal           float64          `json:"subtotal"`
	IVA                float64          `json:"iva"`
	Total              float64          `json:"total"`
	Detalles           []FacturaDetalle `json:"detalles,omitempty"`
}

// --- Reportes ---

// ReportRange limits a report to a date interval. Zero bounds are omitted.
type ReportRange struct {
	Desde time.Time
	Hasta time.Time
}
