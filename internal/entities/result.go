package entities

// ResultSet holds the rows collected for a single snapshot. The warehouse
// schema is treated as opaque: rows are key/value maps and Columns keeps the
// column order the query returned, so exports stay stable.
type ResultSet struct {
	SnapshotID string           `json:"snapshot_id"`
	Columns    []string         `json:"columns"`
	Rows       []map[string]any `json:"rows"`
}

func (rs *ResultSet) Len() int {
	return len(rs.Rows)
}

func (rs *ResultSet) Empty() bool {
	return len(rs.Rows) == 0
}
