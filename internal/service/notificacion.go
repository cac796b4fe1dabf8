package service

import (
	"bytes"
	"fmt"
	"html/template"

	"snp/internal/model"
)

// Email variants.
const (
	TipoGerente = "gerente"
	TipoSNP     = "snp"
)

const (
	asuntoGerente = "Copia de ticket a SNP"
	nombreSNP     = "SNP Novogar"
)

// AsuntoSNP is the subject of the service desk notification.
func AsuntoSNP(sucursal string) string {
	return "Tenés un nuevo ticket cargado por sucursal " + sucursal
}

type datosEmail struct {
	Titulo string
	Lead   string
	Ticket model.Ticket
}

var emailTmpl = template.Must(template.New("ticket").Funcs(template.FuncMap{
	"guion": func(s string) string {
		if s == "" {
			return "-"
		}
		return s
	},
}).Parse(`<!DOCTYPE html>
<html lang="es">
<head><meta charset="UTF-8" /><title>{{.Titulo}}</title></head>
<body style="margin:0;padding:24px;background:#f3f4f6;font-family:Arial,Helvetica,sans-serif;color:#111827;">
<div style="max-width:640px;margin:0 auto;background:#ffffff;border-radius:12px;overflow:hidden;">
  <div style="background:#e30613;color:#ffffff;padding:18px 24px;">
    <h1 style="margin:0;font-size:20px;">SNP · Ticket de reclamo</h1>
    <p style="margin:4px 0 0;font-size:13px;">{{.Titulo}}</p>
  </div>
  <div style="padding:20px 24px;">
    <p>{{.Lead}}</p>
    <p style="font-size:13px;">Fecha y hora (ARG): {{.Ticket.CreatedAtDisplay}}</p>
    <h3>Datos de sucursal</h3>
    <table cellpadding="4" style="font-size:13px;">
      <tr><th align="left">Sucursal</th><td>{{.Ticket.Sucursal}}</td></tr>
      <tr><th align="left">Gerente</th><td>{{guion .Ticket.SucursalGerenteNombre}} &lt;{{guion .Ticket.SucursalGerenteEmail}}&gt;</td></tr>
    </table>
    <h3>Datos del cliente</h3>
    <table cellpadding="4" style="font-size:13px;">
      <tr><th align="left">Cliente</th><td>{{.Ticket.Cliente}}</td></tr>
      <tr><th align="left">Número de cliente</th><td>{{guion .Ticket.NroCliente}}</td></tr>
      <tr><th align="left">Dirección</th><td>{{.Ticket.Direccion}}</td></tr>
      <tr><th align="left">Teléfono</th><td>{{.Ticket.Telefono}}</td></tr>
      {{- with .Ticket.FechaCompraDisplay}}
      <tr><th align="left">Fecha de compra</th><td>{{.}}</td></tr>
      {{- end}}
    </table>
    <h3>Producto</h3>
    <p><strong>SKU:</strong> {{.Ticket.Producto}}</p>
    <h3>Falla / Reclamo</h3>
    <div style="border:1px solid #e5e7eb;border-radius:8px;padding:10px;white-space:pre-wrap;">{{.Ticket.Falla}}</div>
    <p style="margin-top:20px;font-size:11px;color:#6b7280;"><strong>Ticket SNP</strong> · {{.Ticket.CreatedAtIso}}<br />
    Este correo fue generado automáticamente desde el formulario SNP Novogar.</p>
  </div>
</div>
</body>
</html>
`))

// RenderEmail builds the HTML body for tipo (TipoGerente or TipoSNP).
// Every field is escaped by html/template.
func RenderEmail(tipo string, t model.Ticket) (string, error) {
	d := datosEmail{Ticket: t}
	switch tipo {
	case TipoGerente:
		d.Titulo = asuntoGerente
		d.Lead = "Recibiste esta copia porque figurás como gerente de la sucursal."
	case TipoSNP:
		d.Titulo = "Nuevo ticket cargado por sucursal " + t.Sucursal
		d.Lead = "Se cargó un nuevo ticket desde una sucursal de Novogar."
	default:
		return "", fmt.Errorf("notificacion: tipo desconocido %q", tipo)
	}

	var buf bytes.Buffer
	if err := emailTmpl.Execute(&buf, d); err != nil {
		return "", fmt.Errorf("notificacion: render: %w", err)
	}
	return buf.String(), nil
}
