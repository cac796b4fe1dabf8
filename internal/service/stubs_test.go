package service

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"snp/internal/infra"
	"snp/internal/model"
	"snp/internal/timekey"
	"snp/internal/worker"
)

// ── In-memory TicketRepository ───────────────────────────────────────────────

type memTicketRepo struct {
	mu      sync.Mutex
	docs    map[string]model.Ticket
	putErr  error
	getErr  error
	puts    int
	gets    atomic.Int32
	release chan struct{} // when set, GetAll blocks until closed
	started chan struct{} // signalled once per GetAll call
}

func newMemTicketRepo() *memTicketRepo {
	return &memTicketRepo{docs: make(map[string]model.Ticket)}
}

func (r *memTicketRepo) Put(_ context.Context, key string, t model.Ticket) (json.RawMessage, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.puts++
	if r.putErr != nil {
		return nil, r.putErr
	}
	r.docs[key] = t
	return json.Marshal(t)
}

func (r *memTicketRepo) GetAll(_ context.Context) (map[string]model.Ticket, error) {
	r.gets.Add(1)
	if r.started != nil {
		r.started <- struct{}{}
	}
	if r.release != nil {
		<-r.release
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.getErr != nil {
		return nil, r.getErr
	}
	out := make(map[string]model.Ticket, len(r.docs))
	for k, v := range r.docs {
		out[k] = v
	}
	return out, nil
}

// ── Relays ───────────────────────────────────────────────────────────────────

type stubSheets struct {
	err   error
	calls []infra.SheetPayload
}

func (s *stubSheets) Despachar(_ context.Context, p infra.SheetPayload) (infra.Despachado, error) {
	s.calls = append(s.calls, p)
	if s.err != nil {
		return infra.Despachado{}, &infra.RelayError{Endpoint: "stub", Err: s.err}
	}
	return infra.Despachado{At: time.Now()}, nil
}

type stubMailer struct {
	failTo map[string]bool
	sent   []infra.Email
}

func (m *stubMailer) Enviar(_ context.Context, e infra.Email) error {
	m.sent = append(m.sent, e)
	if m.failTo[e.ToEmail] {
		return &infra.DeliveryFailure{Destinatario: e.ToEmail, Status: "error"}
	}
	return nil
}

type stubDir struct {
	sucursales map[string]model.Sucursal
}

func (d stubDir) Buscar(nombre string) (model.Sucursal, bool) {
	s, ok := d.sucursales[nombre]
	return s, ok
}

func (d stubDir) Vacio() bool { return len(d.sucursales) == 0 }

type recordingDLQ struct {
	entries []worker.DLQEntry
}

func (d *recordingDLQ) Registrar(_ context.Context, e worker.DLQEntry) {
	d.entries = append(d.entries, e)
}

// ── Helpers ──────────────────────────────────────────────────────────────────

var errStub = errors.New("stub failure")

// fixedClock returns a generator whose clock starts at start and advances one
// second per reading.
func fixedClock(start time.Time) *timekey.Generator {
	var mu sync.Mutex
	now := start
	return timekey.NewGenerator(timekey.DefaultZone).WithClock(func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		t := now
		now = now.Add(time.Second)
		return t
	})
}

func ticketAt(iso, producto string) model.Ticket {
	return model.Ticket{
		Sucursal:     "Centro",
		Cliente:      "CLIENTE",
		Producto:     producto,
		Falla:        "Falla SKU 1 (" + producto + "): x",
		CreatedAtIso: iso,
		Status:       model.EstadoNuevo,
	}
}
