// csv2sqlite imports a delimited text file into a SQLite table, one
// TEXT column per header field. It exists both as a useful tool and as
// an end-to-end exercise of the laxcsv read surface.
package main

import (
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"log"
	"path/filepath"
	"strings"

	"github.com/davecgh/go-spew/spew"
	"github.com/laxcsv/laxcsv"
	_ "github.com/mattn/go-sqlite3"
)

func main() {
	var (
		dbPath  = flag.String("db", "out.db", "sqlite database to create or append to")
		table   = flag.String("table", "", "table name (default: input file name without extension)")
		sep     = flag.String("sep", ",", "field separator, a single character")
		quote   = flag.String("quote", `"`, "quote character, a single character")
		skip    = flag.Int("skip", 0, "lines to discard before the header")
		verbose = flag.Bool("v", false, "dump the first data row for inspection")
	)
	flag.Parse()

	if flag.NArg() != 1 {
		log.Fatalf("usage: csv2sqlite [flags] <file.csv>")
	}
	if len(*sep) != 1 || len(*quote) != 1 {
		log.Fatalf("-sep and -quote must each be a single character")
	}
	path := flag.Arg(0)

	r, err := laxcsv.Open(path)
	if err != nil {
		log.Fatalf("open input: %v", err)
	}
	defer r.Close()
	r.SetSeparator((*sep)[0])
	r.SetQuote((*quote)[0])

	for i := 0; i < *skip; i++ {
		if err := r.SkipLine(); err != nil {
			log.Fatalf("skip leading line %d: %v", i+1, err)
		}
	}

	header, err := r.ReadHeader()
	if err != nil {
		log.Fatalf("read header: %v", err)
	}

	name := *table
	if name == "" {
		base := filepath.Base(path)
		name = strings.TrimSuffix(base, filepath.Ext(base))
	}

	db, err := sql.Open("sqlite3", *dbPath)
	if err != nil {
		log.Fatalf("open database: %v", err)
	}
	defer db.Close()

	if err := createTable(db, name, header); err != nil {
		log.Fatalf("create table %s: %v", name, err)
	}

	n, err := importRows(db, r, name, header, *verbose)
	if err != nil {
		log.Fatalf("import after %d rows: %v", n, err)
	}
	log.Printf("imported %d rows into %s (table %s)", n, *dbPath, name)
}

func createTable(db *sql.DB, name string, header []string) error {
	cols := make([]string, len(header))
	for i, h := range header {
		cols[i] = quoteIdent(h) + " TEXT"
	}
	ddl := fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (%s)", quoteIdent(name), strings.Join(cols, ", "))
	_, err := db.Exec(ddl)
	return err
}

func importRows(db *sql.DB, r *laxcsv.Reader, table string, header []string, verbose bool) (int, error) {
	tx, err := db.Begin()
	if err != nil {
		return 0, err
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(header)), ",")
	insert := fmt.Sprintf("INSERT INTO %s VALUES (%s)", quoteIdent(table), placeholders)
	stmt, err := tx.Prepare(insert)
	if err != nil {
		tx.Rollback()
		return 0, err
	}
	defer stmt.Close()

	count := 0
	for {
		fields, err := r.ReadLine()
		if errors.Is(err, laxcsv.ErrEndOfInput) {
			break
		}
		if err != nil {
			tx.Rollback()
			return count, err
		}
		if verbose && count == 0 {
			log.Printf("first data row:\n%s", spew.Sdump(fields))
		}

		// Rows are padded or truncated to the header width.
		args := make([]any, len(header))
		for i := range header {
			if i < len(fields) {
				args[i] = fields[i]
			} else {
				args[i] = ""
			}
		}
		if _, err := stmt.Exec(args...); err != nil {
			tx.Rollback()
			return count, err
		}
		count++
	}
	return count, tx.Commit()
}

func quoteIdent(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}
