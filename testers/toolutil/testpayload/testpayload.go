package testpayload

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/go-faker/faker/v4"
)

// Row is one row of the source table.
// faker annotates fields for automatic generation
// https://github.com/go-faker/faker#supported-tags
type Row struct {
	ID          int64     `faker:"-" json:"id"`
	Nome        string    `faker:"name" json:"nome"`
	Categoria   string    `faker:"oneof: eletronicos, livros, moveis, roupas" json:"categoria"`
	Valor       string    `faker:"-" json:"valor"`
	DataCriacao time.Time `faker:"-" json:"data_criacao"`
}

// InvalidValor does not parse as NUMERIC and makes the destination reject the row.
const InvalidValor = "abc"

// GenerateRows creates count rows with consecutive ids starting at startID.
// When invalidEvery > 0, every invalidEvery-th row gets InvalidValor.
func GenerateRows(startID int64, count int, invalidEvery int) ([]Row, error) {
	rows := make([]Row, 0, count)
	for i := 0; i < count; i++ {
		var r Row
		if err := faker.FakeData(&r); err != nil {
			return nil, fmt.Errorf("failed to generate row: %w", err)
		}
		r.ID = startID + int64(i)
		r.Valor = GenerateValor()
		r.DataCriacao = GenerateRandomDateTime()
		if invalidEvery > 0 && (i+1)%invalidEvery == 0 {
			r.Valor = InvalidValor
		}
		rows = append(rows, r)
	}
	return rows, nil
}

// GenerateValor returns a decimal with two digits that fits NUMERIC(10, 2).
func GenerateValor() string {
	cents := rand.Int63n(10_000_000) // #nosec G404 -- test data generator
	return fmt.Sprintf("%d.%02d", cents/100, cents%100)
}

func GenerateRandomDateTime() time.Time {
	// Generate a random Unix timestamp between now and 10 years ago
	timestamp := rand.Int63n(10*365*24*3600) + (time.Now().Unix() - 10*365*24*3600) // #nosec G404 -- test data generator
	return time.Unix(timestamp, 0).UTC()
}
