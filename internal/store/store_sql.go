package store

import (
	"context"
	"database/sql"
	"errors"
)

type SQLStore struct {
	db *sql.DB
}

func NewSQLStore(db *sql.DB) *SQLStore { return &SQLStore{db: db} }

func (s *SQLStore) PutDoc(ctx context.Context, d Doc) error {
	_, err := s.db.ExecContext(ctx, `INSERT INTO docs (id,title,source,data_json,created_at,updated_at)
		VALUES ($1,$2,$3,$4,$5,$6)
		ON CONFLICT (id) DO UPDATE SET title=EXCLUDED.title, data_json=EXCLUDED.data_json, updated_at=EXCLUDED.updated_at`,
		d.ID, d.Title, d.Source, string(d.Data), d.CreatedAt, d.UpdatedAt)
	return err
}

func (s *SQLStore) GetDoc(ctx context.Context, id string) (Doc, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id,title,source,data_json,created_at,updated_at FROM docs WHERE id=$1`, id)
	var d Doc
	var data string
	if err := row.Scan(&d.ID, &d.Title, &d.Source, &data, &d.CreatedAt, &d.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Doc{}, ErrNotFound
		}
		return Doc{}, err
	}
	d.Data = []byte(data)
	return d, nil
}

func (s *SQLStore) ListDocs(ctx context.Context) ([]DocSummary, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id,title,source,updated_at FROM docs ORDER BY updated_at DESC, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []DocSummary{}
	for rows.Next() {
		var d DocSummary
		if err := rows.Scan(&d.ID, &d.Title, &d.Source, &d.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

func (s *SQLStore) DeleteDoc(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM docs WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *SQLStore) AddResult(ctx context.Context, r Result) error {
	_, err := s.db.ExecContext(ctx, `INSERT INTO results (doc_id,doc_title,ok,bad,blank,total,started_at,finished_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`,
		r.DocID, r.DocTitle, r.OK, r.Bad, r.Blank, r.Total, r.StartedAt, r.FinishedAt)
	return err
}

func (s *SQLStore) ListResults(ctx context.Context, limit int) ([]Result, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id,doc_id,doc_title,ok,bad,blank,total,started_at,finished_at
		 FROM results ORDER BY finished_at DESC, id DESC LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Result{}
	for rows.Next() {
		var r Result
		if err := rows.Scan(&r.ID, &r.DocID, &r.DocTitle, &r.OK, &r.Bad, &r.Blank, &r.Total, &r.StartedAt, &r.FinishedAt); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *SQLStore) ClearResults(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM results`)
	return err
}
