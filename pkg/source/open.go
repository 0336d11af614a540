package source

// Open returns the snapshot file at collectionsPath when it is set, and the
// SQLite database at dbPath otherwise. The returned close func is never nil.
func Open(dbPath, collectionsPath string) (Source, func() error, error) {
	if collectionsPath != "" {
		c, err := LoadCollections(collectionsPath)
		if err != nil {
			return nil, nil, err
		}
		return c, func() error { return nil }, nil
	}

	db, err := NewSQLiteSource(dbPath)
	if err != nil {
		return nil, nil, err
	}
	return db, db.Close, nil
}
