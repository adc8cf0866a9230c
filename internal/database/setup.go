package database

import (
	"chatspace-backend/internal/models"
	"database/sql"
	"fmt"
)

func setPragmaValues(db *sql.DB) error {
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		return err
	}

	// these next 2 extremely speed up performance of sqlite
	if _, err := db.Exec("PRAGMA journal_mode = WAL"); err != nil {
		return err
	}

	if _, err := db.Exec("PRAGMA synchronous = normal"); err != nil {
		return err
	}

	return nil
}

func Setup(cfg *models.ConfigFile) (*sql.DB, error) {
	var db *sql.DB
	var err error

	if cfg.SelfContained {
		db, err = sql.Open("sqlite", "./database.db")
		if err != nil {
			return db, err
		}

		// there can be sqlite busy errors if this is not set to 1
		db.SetMaxOpenConns(1)

		err = setPragmaValues(db)
		if err != nil {
			return db, err
		}
	} else {
		db, err = sql.Open("mysql", fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&timeout=10s", cfg.DbUser, cfg.DbPassword, cfg.DbAddress, cfg.DbPort, cfg.DbDatabase))
		if err != nil {
			return db, err
		}

		db.SetMaxOpenConns(10)
	}

	err = SetupTables(db)
	if err != nil {
		return db, err
	}

	return db, nil
}

// SetupTables creates the schema if it doesn't exist yet. The DDL is kept to
// the subset both mysql and sqlite accept.
func SetupTables(db *sql.DB) error {
	var err error

	_, err = db.Exec(`
			CREATE TABLE IF NOT EXISTS users (
				id BIGINT PRIMARY KEY,
				email VARCHAR(64) NOT NULL UNIQUE,
				password BINARY(60) NOT NULL,
				first_name VARCHAR(64) NOT NULL DEFAULT '',
				last_name VARCHAR(64) NOT NULL DEFAULT '',
				image TEXT,
				color INT NOT NULL DEFAULT 0,
				profile_setup BOOLEAN NOT NULL DEFAULT FALSE
			);
		`)
	if err != nil {
		return err
	}

	_, err = db.Exec(`
			CREATE TABLE IF NOT EXISTS messages (
				id BIGINT PRIMARY KEY,
				sender_id BIGINT NOT NULL,
				recipient_id BIGINT,
				message_type VARCHAR(8) NOT NULL,
				content TEXT,
				file_url TEXT,
				timestamp TIMESTAMP NOT NULL,
				FOREIGN KEY (sender_id) REFERENCES users(id) ON DELETE CASCADE,
				FOREIGN KEY (recipient_id) REFERENCES users(id) ON DELETE CASCADE
			);
		`)
	if err != nil {
		return err
	}

	_, err = db.Exec(`
			CREATE TABLE IF NOT EXISTS channels (
				id BIGINT PRIMARY KEY,
				name VARCHAR(64) NOT NULL,
				admin_id BIGINT NOT NULL,
				created_at TIMESTAMP NOT NULL,
				updated_at TIMESTAMP NOT NULL,
				FOREIGN KEY (admin_id) REFERENCES users(id) ON DELETE CASCADE
			);
		`)
	if err != nil {
		return err
	}

	_, err = db.Exec(`
			CREATE TABLE IF NOT EXISTS channel_members (
				channel_id BIGINT NOT NULL,
				user_id BIGINT NOT NULL,
				PRIMARY KEY (channel_id, user_id),
				FOREIGN KEY (channel_id) REFERENCES channels(id) ON DELETE CASCADE,
				FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE
			);
		`)
	if err != nil {
		return err
	}

	// append-only link table, insertion order is the channel's message order
	_, err = db.Exec(`
			CREATE TABLE IF NOT EXISTS channel_messages (
				channel_id BIGINT NOT NULL,
				message_id BIGINT NOT NULL,
				PRIMARY KEY (channel_id, message_id),
				FOREIGN KEY (channel_id) REFERENCES channels(id) ON DELETE CASCADE,
				FOREIGN KEY (message_id) REFERENCES messages(id) ON DELETE CASCADE
			);
		`)
	if err != nil {
		return err
	}

	return nil
}
