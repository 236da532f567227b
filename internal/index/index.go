package index

// ItemIndex is the set of index operations the services and transports use.
type ItemIndex interface {
	ReplaceType(typ, checksum string, rows []ItemRow) ([]Change, error)
	DeleteType(typ string) ([]Change, error)
	TypeChecksum(typ string) (string, error)
	Types() ([]string, error)
	Count(typ string) (int, error)
	Search(query string, limit int) ([]SearchResult, error)
	Close() error
}

// Verify *DB satisfies ItemIndex at compile time.
var _ ItemIndex = (*DB)(nil)
