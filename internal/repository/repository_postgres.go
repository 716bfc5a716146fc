package repository

import (
	"errors"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/rs/zerolog/log"
)

type PostgresRepository struct {
	sqlRepository
}

// pgUniqueViolation is the postgres error class for unique_violation.
const pgUniqueViolation = "23505"

func pgIsUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == pgUniqueViolation
}

func NewPostgresRepository(dbUrl string) (*PostgresRepository, error) {
	db, err := sqlx.Open("postgres", dbUrl)
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		return nil, err
	}
	log.Info().Msg("connected to postgres, ensuring tables")

	// make sure the required tables exist
	// if not then create them
	usersTable := `
	  create table if not exists users (
		user_id serial primary key,
		email text not null unique,
		name text not null,
		password text not null
	  );`
	linksTable := `
	  create table if not exists links (
		link_id serial primary key,
		url text not null,
		description text not null,
		created_at bigint not null,
		posted_by integer references users (user_id)
	  );`
	votesTable := `
	  create table if not exists votes (
		vote_id serial primary key,
		link_id integer not null references links (link_id),
		user_id integer not null references users (user_id),
		constraint one_vote_per_link_user unique (link_id, user_id)
	  );`

	for _, t := range []string{usersTable, linksTable, votesTable} {
		if _, err := db.Exec(t); err != nil {
			return nil, err
		}
	}

	return &PostgresRepository{sqlRepository{
		db:                db,
		isUniqueViolation: pgIsUniqueViolation,
	}}, nil
}
