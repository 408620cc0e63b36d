package sqldb

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/destel/rill"
	"github.com/sandrolain/table-bridge/src/connectors"
	"github.com/sandrolain/table-bridge/src/record"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createSQLiteSource(t *testing.T) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "source.db")
	db, err := sql.Open("sqlite", path)
	require.NoError(t, err)
	defer db.Close()

	_, err = db.Exec(`CREATE TABLE items (id INTEGER PRIMARY KEY, nome TEXT, categoria TEXT, valor REAL)`)
	require.NoError(t, err)
	_, err = db.Exec(`INSERT INTO items (id, nome, categoria, valor) VALUES
		(3, 'C', 'Z', 30.5),
		(1, 'A', 'X', 10.25),
		(2, 'B', NULL, 20)`)
	require.NoError(t, err)

	return path
}

func collect(t *testing.T, ch <-chan rill.Try[record.Record]) ([]record.Record, []error) {
	t.Helper()

	var recs []record.Record
	var errs []error
	timeout := time.After(10 * time.Second)
	for {
		select {
		case item, ok := <-ch:
			if !ok {
				return recs, errs
			}
			if item.Error != nil {
				errs = append(errs, item.Error)
				continue
			}
			recs = append(recs, item.Value)
		case <-timeout:
			t.Fatal("timed out waiting for source stream")
		}
	}
}

func TestSQLSourceReadsRowsInOrder(t *testing.T) {
	path := createSQLiteSource(t)

	src, err := NewSource(&connectors.SourceConfig{
		Driver:     connectors.SourceDriverSQLite,
		ConnString: path,
		Query:      "SELECT id, nome, categoria, valor FROM items ORDER BY id",
	})
	require.NoError(t, err)

	recs, errs := collect(t, src.Read(context.Background()))
	require.Empty(t, errs)
	require.Len(t, recs, 3)

	for i, rec := range recs {
		assert.Equal(t, []string{"id", "nome", "categoria", "valor"}, rec.Columns())
		assert.Equal(t, record.KindInteger, rec.ID().Kind())
		assert.Equal(t, int64(i+1), rec.ID().Int())
	}

	nome, _ := recs[0].Get("nome")
	assert.Equal(t, "A", nome.Str())
	valor, _ := recs[0].Get("valor")
	assert.Equal(t, record.KindDecimal, valor.Kind())
	assert.Equal(t, "10.25", valor.Str())
	categoria, _ := recs[1].Get("categoria")
	assert.True(t, categoria.IsNull())
}

func TestSQLSourceReadsWholeTable(t *testing.T) {
	path := createSQLiteSource(t)

	src, err := NewSource(&connectors.SourceConfig{
		Driver:     connectors.SourceDriverSQLite,
		ConnString: path,
		Table:      "items",
	})
	require.NoError(t, err)
	assert.Equal(t, "SELECT * FROM items", src.Query())

	recs, errs := collect(t, src.Read(context.Background()))
	require.Empty(t, errs)
	assert.Len(t, recs, 3)
}

func TestSQLSourceQueryFailure(t *testing.T) {
	path := createSQLiteSource(t)

	src, err := NewSource(&connectors.SourceConfig{
		Driver:     connectors.SourceDriverSQLite,
		ConnString: path,
		Query:      "SELECT * FROM missing_table",
	})
	require.NoError(t, err)

	recs, errs := collect(t, src.Read(context.Background()))
	assert.Empty(t, recs)
	require.Len(t, errs, 1)
	assert.ErrorIs(t, errs[0], connectors.ErrSourceRead)
}

func TestSQLSourceCancelled(t *testing.T) {
	path := createSQLiteSource(t)

	src, err := NewSource(&connectors.SourceConfig{
		Driver:     connectors.SourceDriverSQLite,
		ConnString: path,
		Table:      "items",
	})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	// the stream must close without blocking; items may or may not arrive
	_, _ = collect(t, src.Read(ctx))
}

func TestNewSourceValidation(t *testing.T) {
	_, err := NewSource(nil)
	require.Error(t, err)

	_, err = NewSource(&connectors.SourceConfig{Driver: connectors.SourceDriverPGX, ConnString: "x", Table: "t"})
	require.ErrorContains(t, err, "unsupported")

	_, err = NewSource(&connectors.SourceConfig{Driver: connectors.SourceDriverMySQL, Table: "t"})
	require.ErrorContains(t, err, "connString is required")

	_, err = NewSource(&connectors.SourceConfig{Driver: connectors.SourceDriverMySQL, ConnString: "u:p@tcp(localhost)/db", Table: "t;drop"})
	require.ErrorIs(t, err, connectors.ErrInvalidIdentifier)

	src, err := NewSource(&connectors.SourceConfig{Driver: connectors.SourceDriverPostgres, ConnString: "postgres://localhost/db", Table: "teste.tabelaTeste"})
	require.NoError(t, err)
	assert.Equal(t, "SELECT * FROM teste.tabelateste", src.Query())
}

func TestConvert(t *testing.T) {
	assert.Equal(t, record.Int(42), convert([]byte("42"), "BIGINT"))
	assert.Equal(t, record.Decimal("10.00"), convert([]byte("10.00"), "DECIMAL"))
	assert.Equal(t, record.Text("abc"), convert([]byte("abc"), "VARCHAR"))
	assert.Equal(t, record.Text("x1"), convert([]byte("x1"), "INT"))
	assert.Equal(t, record.Int(7), convert(int64(7), "INTEGER"))
	assert.True(t, convert(nil, "TEXT").IsNull())
}

func TestSQLSourceMixedCaseColumns(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mixed.db")
	db, err := sql.Open("sqlite", path)
	require.NoError(t, err)
	_, err = db.Exec(`CREATE TABLE Itens (ID INTEGER PRIMARY KEY, Nome TEXT, Valor REAL)`)
	require.NoError(t, err)
	_, err = db.Exec(`INSERT INTO Itens (ID, Nome, Valor) VALUES (4, 'D', 4.5)`)
	require.NoError(t, err)
	require.NoError(t, db.Close())

	src, err := NewSource(&connectors.SourceConfig{
		Driver:     connectors.SourceDriverSQLite,
		ConnString: path,
		Query:      "SELECT ID, Nome, Valor FROM Itens",
	})
	require.NoError(t, err)

	recs, errs := collect(t, src.Read(context.Background()))
	require.Empty(t, errs)
	require.Len(t, recs, 1)

	// names are kept as the source returns them
	assert.Equal(t, []string{"ID", "Nome", "Valor"}, recs[0].Columns())
	assert.False(t, recs[0].ID().IsNull())
	assert.Equal(t, int64(4), recs[0].ID().Int())
}
