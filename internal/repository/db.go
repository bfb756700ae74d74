package repository

// scanner abstracts *sql.Row and *sql.Rows so the same scan helpers serve
// single-row and multi-row queries.
type scanner interface {
	Scan(dest ...any) error
}
