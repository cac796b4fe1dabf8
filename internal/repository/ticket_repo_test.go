package repository

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"snp/internal/infra"
	"snp/internal/model"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func ticket(cliente, iso string) model.Ticket {
	return model.Ticket{
		Sucursal:     "Centro",
		Cliente:      cliente,
		Producto:     "061",
		Falla:        "Falla SKU 1 (061): no enciende",
		CreatedAtIso: iso,
		Timezone:     model.TicketTimezone,
		Status:       model.EstadoNuevo,
	}
}

// ── Firebase ─────────────────────────────────────────────────────────────────

func TestFirebaseRepo_PutYGetAll(t *testing.T) {
	docs := map[string]string{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodPut:
			body, _ := io.ReadAll(r.Body)
			docs[r.URL.Path] = string(body)
			_, _ = w.Write(body)
		case http.MethodGet:
			assert.Equal(t, "/tickets_snp.json", r.URL.Path)
			_, _ = w.Write([]byte(`{
				"jueves_13_11_2025_18_42_31": {"cliente":"Ana","status":"nuevo"},
				"roto": "no es un ticket"
			}`))
		}
	}))
	defer srv.Close()

	repo := NewFirebaseTicketRepository(infra.NewFirebaseClient(srv.URL, "", srv.Client()), "tickets_snp")

	stored, err := repo.Put(context.Background(), "jueves_13_11_2025_18_42_31", ticket("Ana", "2025-11-13T21:42:31Z"))
	require.NoError(t, err)
	assert.Contains(t, string(stored), `"cliente":"Ana"`)
	assert.Contains(t, docs, "/tickets_snp/jueves_13_11_2025_18_42_31.json")

	all, err := repo.GetAll(context.Background())
	require.NoError(t, err)
	require.Len(t, all, 1, "undecodable records are skipped")
	assert.Equal(t, "Ana", all["jueves_13_11_2025_18_42_31"].Cliente)
}

func TestFirebaseRepo_ColeccionVacia(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("null"))
	}))
	defer srv.Close()

	all, err := NewFirebaseTicketRepository(infra.NewFirebaseClient(srv.URL, "", srv.Client()), "tickets_snp").
		GetAll(context.Background())
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestFirebaseRepo_ErroresTipados(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte("Permission denied"))
	}))
	defer srv.Close()
	repo := NewFirebaseTicketRepository(infra.NewFirebaseClient(srv.URL, "", srv.Client()), "tickets_snp")

	_, err := repo.Put(context.Background(), "k", ticket("Ana", ""))
	var werr *StoreWriteError
	require.True(t, errors.As(err, &werr))
	assert.Equal(t, "k", werr.Key)
	assert.Equal(t, http.StatusUnauthorized, werr.Status)
	assert.Equal(t, "Permission denied", werr.Body)

	_, err = repo.GetAll(context.Background())
	var rerr *StoreReadError
	require.True(t, errors.As(err, &rerr))
	assert.Equal(t, http.StatusUnauthorized, rerr.Status)
}

// ── GORM (SQLite in memory) ──────────────────────────────────────────────────

func newSQLite(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	// One connection, otherwise every new one sees a fresh empty database.
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, infra.Migrate(db))
	return db
}

func TestGormRepo_PutSobrescribe(t *testing.T) {
	repo := NewGormTicketRepository(newSQLite(t))
	ctx := context.Background()

	_, err := repo.Put(ctx, "k1", ticket("Ana", "2025-11-13T21:42:31Z"))
	require.NoError(t, err)
	_, err = repo.Put(ctx, "k2", ticket("Luis", "2025-11-13T21:43:00Z"))
	require.NoError(t, err)

	stored, err := repo.Put(ctx, "k1", ticket("Ana María", "2025-11-13T21:42:31Z"))
	require.NoError(t, err)
	assert.Contains(t, string(stored), `"firebaseKey":"k1"`)

	all, err := repo.GetAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "Ana María", all["k1"].Cliente)
	assert.Equal(t, "Luis", all["k2"].Cliente)
	assert.Equal(t, model.EstadoNuevo, all["k2"].Status)
}

func TestGormRepo_Vacio(t *testing.T) {
	all, err := NewGormTicketRepository(newSQLite(t)).GetAll(context.Background())
	require.NoError(t, err)
	assert.Empty(t, all)
}
