package assembly

import (
	"database/sql"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	_ "github.com/mattn/go-sqlite3"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/mtgjson/mtgjson/models"
)

// flatRow is one relational row: a card face flattened to the shared
// column set in csvColumns, keyed by column name the way every relational
// writer (CSV, SQLite, SQL-dump, PostgreSQL) consumes it.
type flatRow map[string]any

// flatten walks every set's cards (sorted by set code, then by the face
// order the pipeline already sorted within each set) and produces one
// flatRow per face, matching spec.md §4.D's flattening rule:
// `identifiers.scryfallId` -> `scryfallId`, `legalities.standard` ->
// `legalities_standard`, and so on.
func flatten(sets map[string]models.Set) []flatRow {
	var out []flatRow
	for _, code := range sortedSetCodes(sets) {
		for _, c := range sets[code].Cards {
			out = append(out, flattenFace(c))
		}
	}
	return out
}

func flattenFace(c models.CardFace) flatRow {
	return flatRow{
		"uuid": c.UUID, "name": c.Name, "faceName": c.FaceName,
		"setCode": c.SetCode, "number": c.Number, "side": c.Side, "layout": c.Layout,
		"manaCost": c.ManaCost, "manaValue": c.ManaValue, "type": c.Type,
		"text": c.Text, "power": c.Power, "toughness": c.Toughness, "loyalty": c.Loyalty,
		"rarity": c.Rarity, "artist": c.Artist, "watermark": c.Watermark,
		"scryfallId": c.Identifiers.ScryfallID, "scryfallOracleId": c.Identifiers.ScryfallOracleID,
		"multiverseId": c.Identifiers.MultiverseID, "mtgoId": c.Identifiers.MtgoID,
		"mtgArenaId": c.Identifiers.MtgArenaID, "tcgplayerProductId": c.Identifiers.TcgplayerProductID,
		"cardKingdomId": c.Identifiers.CardKingdomID,
		"legalities_standard": c.Legalities.Standard, "legalities_modern": c.Legalities.Modern,
		"legalities_legacy": c.Legalities.Legacy, "legalities_vintage": c.Legalities.Vintage,
		"legalities_commander": c.Legalities.Commander, "legalities_pauper": c.Legalities.Pauper,
		"availability_arena": c.Availability.Arena, "availability_mtgo": c.Availability.Mtgo,
		"availability_paper": c.Availability.Paper,
		"isFunny": c.IsFunny, "hasContentWarning": c.HasContentWarning,
	}
}

// WriteSQLite opens (creating if absent) a SQLite database at path via the
// `mattn/go-sqlite3` driver, creates the cards table and its foreignData
// child table, and batch-inserts every flattened row plus each face's
// foreign-language printings, indexed on uuid/name/setCode per spec.md §4.D.
func WriteSQLite(path string, sets map[string]models.Set) error {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return err
	}
	defer db.Close()

	if _, err := db.Exec(sqliteSchema); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}

	tx, err := db.Begin()
	if err != nil {
		return err
	}
	stmt, err := tx.Prepare(sqliteInsert)
	if err != nil {
		tx.Rollback()
		return err
	}
	defer stmt.Close()

	for _, code := range sortedSetCodes(sets) {
		for _, c := range sets[code].Cards {
			r := flattenFace(c)
			if _, err := stmt.Exec(
				r["uuid"], r["name"], r["faceName"], r["setCode"], r["number"], r["side"],
				r["layout"], r["manaCost"], r["manaValue"], r["type"], r["text"],
				r["power"], r["toughness"], r["loyalty"], r["rarity"], r["artist"], r["watermark"],
				r["scryfallId"], r["scryfallOracleId"], r["multiverseId"], r["mtgoId"],
				r["mtgArenaId"], r["tcgplayerProductId"], r["cardKingdomId"],
				r["legalities_standard"], r["legalities_modern"], r["legalities_legacy"],
				r["legalities_vintage"], r["legalities_commander"], r["legalities_pauper"],
				r["availability_arena"], r["availability_mtgo"], r["availability_paper"],
				r["isFunny"], r["hasContentWarning"],
			); err != nil {
				tx.Rollback()
				return fmt.Errorf("insert card %s: %w", c.UUID, err)
			}
			for _, fd := range c.ForeignData {
				if _, err := tx.Exec(sqliteForeignInsert, c.UUID, fd.Language, fd.Name, fd.Text, fd.Type, fd.FaceName, fd.MultiverseID); err != nil {
					tx.Rollback()
					return fmt.Errorf("insert foreignData for %s: %w", c.UUID, err)
				}
			}
		}
	}
	return tx.Commit()
}

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS cards (
	uuid TEXT PRIMARY KEY, name TEXT, faceName TEXT, setCode TEXT, number TEXT,
	side TEXT, layout TEXT, manaCost TEXT, manaValue REAL, type TEXT, text TEXT,
	power TEXT, toughness TEXT, loyalty TEXT, rarity TEXT, artist TEXT, watermark TEXT,
	scryfallId TEXT, scryfallOracleId TEXT, multiverseId TEXT, mtgoId TEXT, mtgArenaId TEXT,
	tcgplayerProductId TEXT, cardKingdomId TEXT,
	legalities_standard TEXT, legalities_modern TEXT, legalities_legacy TEXT,
	legalities_vintage TEXT, legalities_commander TEXT, legalities_pauper TEXT,
	availability_arena INTEGER, availability_mtgo INTEGER, availability_paper INTEGER,
	isFunny INTEGER, hasContentWarning INTEGER
);
CREATE INDEX IF NOT EXISTS idx_cards_name ON cards(name);
CREATE INDEX IF NOT EXISTS idx_cards_setCode ON cards(setCode);
CREATE TABLE IF NOT EXISTS card_foreign_data (
	uuid TEXT, language TEXT, name TEXT, text TEXT, type TEXT, faceName TEXT, multiverseId TEXT
);
CREATE INDEX IF NOT EXISTS idx_foreign_uuid ON card_foreign_data(uuid);
`

const sqliteInsert = `INSERT INTO cards (
	uuid, name, faceName, setCode, number, side, layout, manaCost, manaValue, type, text,
	power, toughness, loyalty, rarity, artist, watermark,
	scryfallId, scryfallOracleId, multiverseId, mtgoId, mtgArenaId, tcgplayerProductId, cardKingdomId,
	legalities_standard, legalities_modern, legalities_legacy, legalities_vintage, legalities_commander, legalities_pauper,
	availability_arena, availability_mtgo, availability_paper, isFunny, hasContentWarning
) VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)`

const sqliteForeignInsert = `INSERT INTO card_foreign_data (uuid, language, name, text, type, faceName, multiverseId) VALUES (?,?,?,?,?,?,?)`

// sqlDumpBatchSize is the INSERT batch size for the SQL-dump writer, per
// spec.md §4.E's relational-writer note (10 000-row batches).
const sqlDumpBatchSize = 10000

// WriteSQLDump writes a plain-text SQL dump (schema + batched INSERTs) of
// every flattened card row to w, portable to any SQL engine without a
// live database connection.
func WriteSQLDump(w io.Writer, sets map[string]models.Set) error {
	if _, err := io.WriteString(w, sqliteSchema); err != nil {
		return err
	}
	rows := flatten(sets)
	for i := 0; i < len(rows); i += sqlDumpBatchSize {
		batch := rows[i:min(i+sqlDumpBatchSize, len(rows))]
		if err := writeInsertBatch(w, batch); err != nil {
			return err
		}
	}
	return nil
}

func writeInsertBatch(w io.Writer, batch []flatRow) error {
	if len(batch) == 0 {
		return nil
	}
	var sb strings.Builder
	sb.WriteString("INSERT INTO cards (" + strings.Join(csvColumns, ",") + ") VALUES\n")
	for i, r := range batch {
		if i > 0 {
			sb.WriteString(",\n")
		}
		sb.WriteString("(")
		for j, col := range csvColumns {
			if j > 0 {
				sb.WriteString(",")
			}
			sb.WriteString(sqlLiteral(r[col]))
		}
		sb.WriteString(")")
	}
	sb.WriteString(";\n")
	_, err := io.WriteString(w, sb.String())
	return err
}

func sqlLiteral(v any) string {
	switch t := v.(type) {
	case nil:
		return "NULL"
	case string:
		if t == "" {
			return "NULL"
		}
		return "'" + strings.ReplaceAll(t, "'", "''") + "'"
	case bool:
		if t {
			return "1"
		}
		return "0"
	case float64:
		return strconv.FormatFloat(t, 'g', -1, 64)
	default:
		return "'" + strings.ReplaceAll(fmt.Sprint(t), "'", "''") + "'"
	}
}

// postgresCard is the GORM model backing the PostgreSQL relational output
// target, auto-migrated on each run. Kept distinct from models.CardFace
// (which is the JSON output shape) since GORM's column tags and the JSON
// tags would otherwise collide over struct-to-schema translation.
type postgresCard struct {
	UUID       string `gorm:"primaryKey"`
	Name       string `gorm:"index"`
	FaceName   string
	SetCode    string `gorm:"index"`
	Number     string
	Side       string
	Layout     string
	ManaCost   string
	ManaValue  float64
	Type       string
	Text       string
	Power      string
	Toughness  string
	Loyalty    string
	Rarity     string
	Artist     string
	Watermark  string
	ScryfallID string
	MultiverseID string
	MtgoID     string
	MtgArenaID string
	TcgplayerProductID string
	CardKingdomID string
	LegalitiesStandard string
	LegalitiesModern   string
	LegalitiesLegacy   string
	LegalitiesVintage  string
	LegalitiesCommander string
	LegalitiesPauper   string
	AvailabilityArena bool
	AvailabilityMtgo  bool
	AvailabilityPaper bool
	IsFunny           bool
	HasContentWarning bool
}

// WritePostgres opens a PostgreSQL connection via `gorm.io/driver/postgres`,
// auto-migrates the cards table, and batch-inserts every flattened face in
// chunks, matching the teacher's GORM usage pattern (`services/*.go`'s
// `f.DB.Save`/`f.DB.Find`) generalized from single-row saves to a bulk
// loader.
func WritePostgres(dsn string, sets map[string]models.Set) error {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return fmt.Errorf("connect postgres: %w", err)
	}
	if err := db.AutoMigrate(&postgresCard{}); err != nil {
		return fmt.Errorf("automigrate: %w", err)
	}

	var rows []postgresCard
	for _, code := range sortedSetCodes(sets) {
		for _, c := range sets[code].Cards {
			rows = append(rows, toPostgresCard(c))
		}
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].UUID < rows[j].UUID })

	const batchSize = 1000
	for i := 0; i < len(rows); i += batchSize {
		batch := rows[i:min(i+batchSize, len(rows))]
		if err := db.Create(&batch).Error; err != nil {
			return fmt.Errorf("batch insert at offset %d: %w", i, err)
		}
	}
	return nil
}

func toPostgresCard(c models.CardFace) postgresCard {
	return postgresCard{
		UUID: c.UUID, Name: c.Name, FaceName: c.FaceName, SetCode: c.SetCode,
		Number: c.Number, Side: c.Side, Layout: c.Layout, ManaCost: c.ManaCost,
		ManaValue: c.ManaValue, Type: c.Type, Text: c.Text, Power: c.Power,
		Toughness: c.Toughness, Loyalty: c.Loyalty, Rarity: c.Rarity, Artist: c.Artist,
		Watermark: c.Watermark, ScryfallID: c.Identifiers.ScryfallID,
		MultiverseID: c.Identifiers.MultiverseID, MtgoID: c.Identifiers.MtgoID,
		MtgArenaID: c.Identifiers.MtgArenaID, TcgplayerProductID: c.Identifiers.TcgplayerProductID,
		CardKingdomID: c.Identifiers.CardKingdomID,
		LegalitiesStandard: c.Legalities.Standard, LegalitiesModern: c.Legalities.Modern,
		LegalitiesLegacy: c.Legalities.Legacy, LegalitiesVintage: c.Legalities.Vintage,
		LegalitiesCommander: c.Legalities.Commander, LegalitiesPauper: c.Legalities.Pauper,
		AvailabilityArena: c.Availability.Arena, AvailabilityMtgo: c.Availability.Mtgo,
		AvailabilityPaper: c.Availability.Paper, IsFunny: c.IsFunny, HasContentWarning: c.HasContentWarning,
	}
}
