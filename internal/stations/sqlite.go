package stations

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

// OpenSQLite loads the station catalog from a stations.db file into an
// in-memory Index. The database is only read at startup; queries never touch
// it afterwards.
func OpenSQLite(path string) (*Index, error) {
	db, err := sql.Open("sqlite3", path+"?mode=ro")
	if err != nil {
		return nil, fmt.Errorf("open stations db: %w", err)
	}
	defer db.Close()

	rows, err := db.Query(`SELECT id, name, country, latitude, longitude, elevation, timezone FROM stations`)
	if err != nil {
		return nil, fmt.Errorf("query stations: %w", err)
	}
	defer rows.Close()

	var items []Station
	for rows.Next() {
		var (
			s         Station
			country   sql.NullString
			elevation sql.NullFloat64
			timezone  sql.NullString
		)
		if err := rows.Scan(&s.ID, &s.Name, &country, &s.Latitude, &s.Longitude, &elevation, &timezone); err != nil {
			return nil, fmt.Errorf("scan station row: %w", err)
		}
		s.Country = country.String
		s.Timezone = timezone.String
		if elevation.Valid {
			e := elevation.Float64
			s.Elevation = &e
		}
		items = append(items, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate stations: %w", err)
	}

	return NewIndex(items), nil
}
