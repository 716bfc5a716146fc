package repository

import (
	"errors"

	"github.com/jmoiron/sqlx"
	"github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog/log"
)

type SQLiteRepository struct {
	sqlRepository
}

func sqliteIsUniqueViolation(err error) bool {
	var sqliteErr sqlite3.Error
	return errors.As(err, &sqliteErr) &&
		sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique
}

func NewSQLiteRepository(filePath string) (*SQLiteRepository, error) {
	db, err := sqlx.Open("sqlite3", filePath)
	if err != nil {
		return nil, err
	}
	// sqlite serializes writers anyway; a single pooled connection also
	// keeps :memory: databases from splitting across connections.
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(`pragma foreign_keys = on`); err != nil {
		return nil, err
	}
	log.Info().Str("path", filePath).Msg("opened sqlite database, ensuring tables")

	// make sure the required tables exist
	// if not then create them
	usersTable := `
	  create table if not exists users (
		user_id integer primary key autoincrement,
		email text not null unique,
		name text not null,
		password text not null
	  );`
	linksTable := `
	  create table if not exists links (
		link_id integer primary key autoincrement,
		url text not null,
		description text not null,
		created_at integer not null,
		posted_by integer references users (user_id)
	  );`
	votesTable := `
	  create table if not exists votes (
		vote_id integer primary key autoincrement,
		link_id integer not null references links (link_id),
		user_id integer not null references users (user_id),
		unique (link_id, user_id)
	  );`

	for _, t := range []string{usersTable, linksTable, votesTable} {
		if _, err := db.Exec(t); err != nil {
			return nil, err
		}
	}

	return &SQLiteRepository{sqlRepository{
		db:                db,
		isUniqueViolation: sqliteIsUniqueViolation,
	}}, nil
}
