package repository

import (
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"github.com/hackernews-go/app/internal/models"
)

// sqlRepository holds the query logic shared by the postgres and sqlite
// stores. Queries are written with ? placeholders and rebound per driver.
// isUniqueViolation is supplied by the driver-specific constructor.
type sqlRepository struct {
	db                *sqlx.DB
	isUniqueViolation func(err error) bool
}

func (r *sqlRepository) CreateUser(user models.User) (int64, error) {
	query := r.db.Rebind(`insert into users (email, name, password) values (?, ?, ?)`)

	var id int64
	if r.db.DriverName() == "postgres" {
		err := r.db.QueryRow(query+" returning user_id", user.Email, user.Name, user.Password).Scan(&id)
		if err != nil {
			if r.isUniqueViolation(err) {
				return 0, ErrDuplicateEmail
			}
			return 0, err
		}
		return id, nil
	}

	res, err := r.db.Exec(query, user.Email, user.Name, user.Password)
	if err != nil {
		if r.isUniqueViolation(err) {
			return 0, ErrDuplicateEmail
		}
		return 0, err
	}
	return res.LastInsertId()
}

func (r *sqlRepository) GetUserByID(id int64) (*models.User, error) {
	query := r.db.Rebind(`select user_id, email, name, password from users where user_id = ?`)

	user := models.User{}
	err := r.db.QueryRow(query, id).Scan(&user.UserID, &user.Email, &user.Name, &user.Password)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *sqlRepository) GetUserByEmail(email string) (*models.User, error) {
	query := r.db.Rebind(`select user_id, email, name, password from users where email = ?`)

	user := models.User{}
	err := r.db.QueryRow(query, email).Scan(&user.UserID, &user.Email, &user.Name, &user.Password)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *sqlRepository) InsertLink(link models.Link) (int64, error) {
	query := r.db.Rebind(`insert into links (url, description, created_at, posted_by) values (?, ?, ?, ?)`)

	var postedBy interface{}
	if link.PostedBy != nil {
		postedBy = link.PostedBy.UserID
	}

	if r.db.DriverName() == "postgres" {
		var id int64
		err := r.db.QueryRow(query+" returning link_id",
			link.URL, link.Description, link.CreatedAt, postedBy).Scan(&id)
		return id, err
	}

	res, err := r.db.Exec(query, link.URL, link.Description, link.CreatedAt, postedBy)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

func (r *sqlRepository) GetLinkByID(id int64) (*models.Link, error) {
	query := r.db.Rebind(`
	  select l.link_id, l.url, l.description, l.created_at,
		u.user_id, u.email, u.name
	  from links as l
	  left join users as u on u.user_id = l.posted_by
	  where l.link_id = ?`)

	l, err := scanLink(r.db.QueryRow(query, id))
	if err != nil {
		return nil, err
	}

	votes, err := r.votesForLinks([]int64{l.LinkID})
	if err != nil {
		return nil, err
	}
	l.Votes = votes[l.LinkID]
	if l.Votes == nil {
		l.Votes = []models.Vote{}
	}
	return l, nil
}

func (r *sqlRepository) FeedLinks(p FeedParams) ([]models.Link, int64, error) {
	order, err := p.orderClause()
	if err != nil {
		return nil, 0, err
	}

	where := ""
	args := []interface{}{}
	if p.Filter != "" {
		where = "where l.description like ? or l.url like ?"
		pattern := "%" + p.Filter + "%"
		args = append(args, pattern, pattern)
	}

	var count int64
	countQuery := r.db.Rebind("select count(*) from links as l " + where)
	if err := r.db.QueryRow(countQuery, args...).Scan(&count); err != nil {
		return nil, 0, err
	}

	query := `
	  select l.link_id, l.url, l.description, l.created_at,
		u.user_id, u.email, u.name
	  from links as l
	  left join users as u on u.user_id = l.posted_by ` + where + " " + order
	if p.First > 0 {
		query += " limit ?"
		args = append(args, p.First)
	} else if p.Skip > 0 {
		// sqlite accepts offset only after a limit clause
		query += " limit ?"
		args = append(args, count)
	}
	if p.Skip > 0 {
		query += " offset ?"
		args = append(args, p.Skip)
	}

	rows, err := r.db.Query(r.db.Rebind(query), args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	links := make([]models.Link, 0)
	linkIDs := make([]int64, 0)
	for rows.Next() {
		l, err := scanLink(rows)
		if err != nil {
			return nil, 0, err
		}
		links = append(links, *l)
		linkIDs = append(linkIDs, l.LinkID)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	votes, err := r.votesForLinks(linkIDs)
	if err != nil {
		return nil, 0, err
	}
	for i := range links {
		if vs, ok := votes[links[i].LinkID]; ok {
			links[i].Votes = vs
		} else {
			links[i].Votes = []models.Vote{}
		}
	}
	return links, count, nil
}

func (r *sqlRepository) VotesForLink(linkID int64) ([]models.Vote, error) {
	votes, err := r.votesForLinks([]int64{linkID})
	if err != nil {
		return nil, err
	}
	if vs, ok := votes[linkID]; ok {
		return vs, nil
	}
	return []models.Vote{}, nil
}

// votesForLinks loads the votes for a set of links in one query,
// voter attached, keyed by link id.
func (r *sqlRepository) votesForLinks(linkIDs []int64) (map[int64][]models.Vote, error) {
	result := make(map[int64][]models.Vote)
	if len(linkIDs) == 0 {
		return result, nil
	}

	query, args, err := sqlx.In(`
	  select v.vote_id, v.link_id, v.user_id, u.email, u.name
	  from votes as v
	  join users as u on u.user_id = v.user_id
	  where v.link_id in (?)
	  order by v.vote_id asc`, linkIDs)
	if err != nil {
		return nil, err
	}

	rows, err := r.db.Query(r.db.Rebind(query), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		v := models.Vote{User: &models.User{}}
		err = rows.Scan(&v.VoteID, &v.LinkID, &v.UserID, &v.User.Email, &v.User.Name)
		if err != nil {
			return nil, err
		}
		v.User.UserID = v.UserID
		result[v.LinkID] = append(result[v.LinkID], v)
	}
	return result, rows.Err()
}

func (r *sqlRepository) InsertVote(linkID, userID int64) (int64, error) {
	query := r.db.Rebind(`insert into votes (link_id, user_id) values (?, ?)`)

	if r.db.DriverName() == "postgres" {
		var id int64
		err := r.db.QueryRow(query+" returning vote_id", linkID, userID).Scan(&id)
		if err != nil {
			if r.isUniqueViolation(err) {
				return 0, ErrDuplicateVote
			}
			return 0, err
		}
		return id, nil
	}

	res, err := r.db.Exec(query, linkID, userID)
	if err != nil {
		if r.isUniqueViolation(err) {
			return 0, ErrDuplicateVote
		}
		return 0, err
	}
	return res.LastInsertId()
}

func (r *sqlRepository) GetVote(linkID, userID int64) (*models.Vote, error) {
	query := r.db.Rebind(`select vote_id, link_id, user_id from votes where link_id = ? and user_id = ?`)

	v := models.Vote{}
	err := r.db.QueryRow(query, linkID, userID).Scan(&v.VoteID, &v.LinkID, &v.UserID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func (r *sqlRepository) Close() error {
	return r.db.Close()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

// scanLink reads one link row from the links/users left join. The
// poster columns are nullable for links with no owning user.
func scanLink(row rowScanner) (*models.Link, error) {
	l := models.Link{}
	var (
		posterID    sql.NullInt64
		posterEmail sql.NullString
		posterName  sql.NullString
	)
	err := row.Scan(&l.LinkID, &l.URL, &l.Description, &l.CreatedAt,
		&posterID, &posterEmail, &posterName)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if posterID.Valid {
		l.PostedBy = &models.User{
			UserID: posterID.Int64,
			Email:  posterEmail.String,
			Name:   posterName.String,
		}
	}
	return &l, nil
}
