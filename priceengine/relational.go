package priceengine

import (
	"database/sql"
	"fmt"
	"io"
	"strconv"
	"strings"

	_ "github.com/mattn/go-sqlite3"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/mtgjson/mtgjson/models"
)

// priceDumpBatchSize is the INSERT batch size for the SQL-dump writer, per
// spec.md §4.E's explicit "10 000-row INSERT batches" rule for the prices
// table.
const priceDumpBatchSize = 10000

const pricesSchema = `
CREATE TABLE IF NOT EXISTS prices (
	uuid TEXT, date TEXT, source TEXT, provider TEXT, priceType TEXT, finish TEXT,
	price REAL, currency TEXT
);
CREATE INDEX IF NOT EXISTS idx_prices_uuid ON prices(uuid);
CREATE INDEX IF NOT EXISTS idx_prices_date ON prices(date);
CREATE INDEX IF NOT EXISTS idx_prices_provider ON prices(provider);
`

const pricesInsert = `INSERT INTO prices (uuid, date, source, provider, priceType, finish, price, currency) VALUES (?,?,?,?,?,?,?,?)`

// WriteSQLite writes every price row to a SQLite database at path, indexed
// on uuid/date/provider per spec.md §4.E's relational-writer note.
func WriteSQLite(path string, rows []models.PriceRow) error {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return err
	}
	defer db.Close()
	if _, err := db.Exec(pricesSchema); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	tx, err := db.Begin()
	if err != nil {
		return err
	}
	stmt, err := tx.Prepare(pricesInsert)
	if err != nil {
		tx.Rollback()
		return err
	}
	defer stmt.Close()
	for _, r := range rows {
		if _, err := stmt.Exec(r.UUID, r.Date, r.Source, r.Provider, r.PriceType, r.Finish, r.Price, r.Currency); err != nil {
			tx.Rollback()
			return fmt.Errorf("insert price row %s: %w", r.Key(), err)
		}
	}
	return tx.Commit()
}

// WriteSQLDump writes a plain-text SQL dump of the prices table in batches
// of priceDumpBatchSize rows.
func WriteSQLDump(w io.Writer, rows []models.PriceRow) error {
	if _, err := io.WriteString(w, pricesSchema); err != nil {
		return err
	}
	for i := 0; i < len(rows); i += priceDumpBatchSize {
		end := i + priceDumpBatchSize
		if end > len(rows) {
			end = len(rows)
		}
		if err := writePriceInsertBatch(w, rows[i:end]); err != nil {
			return err
		}
	}
	return nil
}

func writePriceInsertBatch(w io.Writer, batch []models.PriceRow) error {
	if len(batch) == 0 {
		return nil
	}
	var sb strings.Builder
	sb.WriteString("INSERT INTO prices (uuid,date,source,provider,priceType,finish,price,currency) VALUES\n")
	for i, r := range batch {
		if i > 0 {
			sb.WriteString(",\n")
		}
		sb.WriteString("(")
		sb.WriteString(sqlStringLiteral(r.UUID) + ",")
		sb.WriteString(sqlStringLiteral(r.Date) + ",")
		sb.WriteString(sqlStringLiteral(r.Source) + ",")
		sb.WriteString(sqlStringLiteral(r.Provider) + ",")
		sb.WriteString(sqlStringLiteral(r.PriceType) + ",")
		sb.WriteString(sqlStringLiteral(r.Finish) + ",")
		sb.WriteString(strconv.FormatFloat(r.Price, 'g', -1, 64) + ",")
		sb.WriteString(sqlStringLiteral(r.Currency))
		sb.WriteString(")")
	}
	sb.WriteString(";\n")
	_, err := io.WriteString(w, sb.String())
	return err
}

func sqlStringLiteral(s string) string {
	if s == "" {
		return "NULL"
	}
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}

// postgresPrice is the GORM model backing the PostgreSQL price output
// target.
type postgresPrice struct {
	UUID      string `gorm:"index"`
	Date      string `gorm:"index"`
	Source    string
	Provider  string `gorm:"index"`
	PriceType string
	Finish    string
	Price     float64
	Currency  string
}

// WritePostgres auto-migrates the prices table and batch-inserts every row.
func WritePostgres(dsn string, rows []models.PriceRow) error {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return fmt.Errorf("connect postgres: %w", err)
	}
	if err := db.AutoMigrate(&postgresPrice{}); err != nil {
		return fmt.Errorf("automigrate: %w", err)
	}

	records := make([]postgresPrice, 0, len(rows))
	for _, r := range rows {
		records = append(records, postgresPrice{
			UUID: r.UUID, Date: r.Date, Source: r.Source, Provider: r.Provider,
			PriceType: r.PriceType, Finish: r.Finish, Price: r.Price, Currency: r.Currency,
		})
	}
	const batchSize = 1000
	for i := 0; i < len(records); i += batchSize {
		end := i + batchSize
		if end > len(records) {
			end = len(records)
		}
		if err := db.Create(records[i:end]).Error; err != nil {
			return fmt.Errorf("batch insert at offset %d: %w", i, err)
		}
	}
	return nil
}
