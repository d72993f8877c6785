package database

import "fmt"

func (d *Database) RunMigrations() error {
	// Raw transactions table, columns named after the DVF dump
	_, err := d.db.Exec(`
		CREATE TABLE IF NOT EXISTS transactions (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			id_mutation TEXT NOT NULL,
			id_parcelle TEXT NOT NULL DEFAULT '',
			date_mutation TEXT,
			valeur_fonciere TEXT,
			surface_reelle_bati TEXT,
			type_local TEXT,
			code_departement TEXT,
			code_commune TEXT,
			latitude TEXT,
			longitude TEXT,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			UNIQUE(id_mutation, id_parcelle)
		);
	`)
	if err != nil {
		return fmt.Errorf("failed to create transactions table: %w", err)
	}

	_, err = d.db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_transactions_geography
		ON transactions(code_departement, code_commune);
	`)
	if err != nil {
		return err
	}

	_, err = d.db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_transactions_date
		ON transactions(date_mutation);
	`)
	if err != nil {
		return err
	}

	return nil
}
