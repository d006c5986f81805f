package postgres

import (
	"context"
	"database/sql"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/MyNameIsWhaaat/replythread/internal/thread/model"
	"github.com/MyNameIsWhaaat/replythread/internal/thread/storage"
)

type Repo struct {
	db *sql.DB
}

func New(db *sql.DB) *Repo {
	return &Repo{db: db}
}

// Open connects over the pgx stdlib driver.
func Open(dsn string) (*Repo, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		return nil, err
	}
	return New(db), nil
}

func (r *Repo) Close() error {
	return r.db.Close()
}

func (r *Repo) ListByPost(ctx context.Context, postID string) ([]model.Row, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT c.id, c.post_id, c.author_id, c.parent_id, c.body, c.created_at,
		       u.display_name, u.username
		FROM comments c
		LEFT JOIN users u ON u.id = c.author_id
		WHERE c.post_id = $1
	`, postID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanRows(rows)
}

func (r *Repo) Insert(ctx context.Context, c storage.NewComment) (storage.Created, error) {
	var out storage.Created
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO comments(id, post_id, author_id, parent_id, body)
		VALUES (gen_random_uuid(), $1, $2, $3, $4)
		RETURNING id, created_at
	`, c.PostID, c.AuthorID, c.ParentID, c.Body).Scan(&out.ID, &out.CreatedAt)
	if err != nil {
		return storage.Created{}, err
	}
	return out, nil
}

func (r *Repo) DeleteSubtree(ctx context.Context, id string) (int, error) {
	rows, err := r.db.QueryContext(ctx, `
		WITH RECURSIVE t AS (
			SELECT id FROM comments WHERE id = $1
			UNION ALL
			SELECT c.id FROM comments c JOIN t ON c.parent_id = t.id
		)
		DELETE FROM comments
		WHERE id IN (SELECT id FROM t)
		RETURNING id
	`, id)
	if err != nil {
		return 0, err
	}
	defer rows.Close()

	deleted := 0
	for rows.Next() {
		deleted++
	}
	return deleted, rows.Err()
}

func (r *Repo) Subtree(ctx context.Context, id string) ([]model.Row, error) {
	rows, err := r.db.QueryContext(ctx, `
		WITH RECURSIVE t AS (
			SELECT id, post_id, author_id, parent_id, body, created_at
			FROM comments
			WHERE id = $1

			UNION ALL

			SELECT c.id, c.post_id, c.author_id, c.parent_id, c.body, c.created_at
			FROM comments c
			JOIN t ON c.parent_id = t.id
		)
		SELECT t.id, t.post_id, t.author_id, t.parent_id, t.body, t.created_at,
		       u.display_name, u.username
		FROM t
		LEFT JOIN users u ON u.id = t.author_id
	`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out, err := scanRows(rows)
	if err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, storage.ErrNotFound
	}
	return out, nil
}

func (r *Repo) Path(ctx context.Context, id string) ([]model.PathItem, error) {
	rows, err := r.db.QueryContext(ctx, `
		WITH RECURSIVE p AS (
			SELECT id, parent_id, body
			FROM comments
			WHERE id = $1
			UNION ALL
			SELECT c.id, c.parent_id, c.body
			FROM comments c
			JOIN p ON c.id = p.parent_id
		)
		SELECT id, parent_id, body
		FROM p
	`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []model.PathItem
	for rows.Next() {
		var it model.PathItem
		var parent sql.NullString
		if err := rows.Scan(&it.ID, &parent, &it.Body); err != nil {
			return nil, err
		}
		if parent.Valid {
			it.ParentID = &parent.String
		}
		items = append(items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, storage.ErrNotFound
	}

	// CTE walks child -> root; breadcrumbs read root -> child.
	for i, j := 0, len(items)-1; i < j; i, j = i+1, j-1 {
		items[i], items[j] = items[j], items[i]
	}
	return items, nil
}

func scanRows(rows *sql.Rows) ([]model.Row, error) {
	var out []model.Row
	for rows.Next() {
		var (
			row         model.Row
			parent      sql.NullString
			displayName sql.NullString
			username    sql.NullString
		)
		err := rows.Scan(&row.ID, &row.PostID, &row.AuthorID, &parent,
			&row.Body, &row.CreatedAt, &displayName, &username)
		if err != nil {
			return nil, err
		}
		if parent.Valid {
			row.ParentID = &parent.String
		}
		if displayName.Valid || username.Valid {
			row.Author = model.AuthorRelation{Record: &model.AuthorRecord{
				DisplayName: displayName.String,
				Username:    username.String,
			}}
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
