package db

const (
	// DefaultPageSize is the page size used when a caller passes none.
	DefaultPageSize = 50

	// DefaultMinGapMinutes is the default gap threshold of ScanTimeGaps.
	DefaultMinGapMinutes = 60.0

	sqliteHeader = "SQLite format 3\x00"
	headerSize   = 100

	sqlListTables = `
		SELECT name, COALESCE(sql, '')
		FROM sqlite_master
		WHERE type = 'table' AND name NOT LIKE 'sqlite\_%' ESCAPE '\'
		ORDER BY name`

	sqlFindTable = `
		SELECT name, COALESCE(sql, '')
		FROM sqlite_master
		WHERE type = 'table' AND name NOT LIKE 'sqlite\_%' ESCAPE '\' AND name = ? COLLATE NOCASE`
)
