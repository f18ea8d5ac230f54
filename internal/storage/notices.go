package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"transitboard/internal/notice"
)

const noticeColumns = `id, title, content, priority, active, created_at, expires_at`

// Active implements notice.Store.
func (db *DB) Active(ctx context.Context, now time.Time) ([]notice.Notice, error) {
	q := db.Rebind(`SELECT ` + noticeColumns + ` FROM notices
		WHERE active = ? AND (expires_at IS NULL OR expires_at > ?)
		ORDER BY CASE priority WHEN 'high' THEN 3 WHEN 'medium' THEN 2 ELSE 1 END DESC,
			created_at DESC, id`)

	out := []notice.Notice{}
	if err := db.SelectContext(ctx, &out, q, true, now.UTC()); err != nil {
		return nil, fmt.Errorf("query active notices: %w", err)
	}
	normalize(out)
	return out, nil
}

func (db *DB) Get(ctx context.Context, id string) (notice.Notice, error) {
	var n notice.Notice
	err := db.GetContext(ctx, &n, db.Rebind(`SELECT `+noticeColumns+` FROM notices WHERE id = ?`), id)
	if errors.Is(err, sql.ErrNoRows) {
		return notice.Notice{}, notice.ErrNotFound
	}
	if err != nil {
		return notice.Notice{}, fmt.Errorf("get notice: %w", err)
	}
	return normalizeOne(n), nil
}

func (db *DB) Create(ctx context.Context, d notice.Draft) (notice.Notice, error) {
	if err := d.Normalize(); err != nil {
		return notice.Notice{}, err
	}
	n := notice.Notice{
		ID:        uuid.NewString(),
		Title:     d.Title,
		Content:   d.Content,
		Priority:  d.Priority,
		Active:    d.IsActive(),
		CreatedAt: db.now().UTC().Truncate(time.Microsecond),
	}
	if d.ExpiresAt != nil {
		t := d.ExpiresAt.UTC().Truncate(time.Microsecond)
		n.ExpiresAt = &t
	}

	_, err := db.NamedExecContext(ctx, `INSERT INTO notices (`+noticeColumns+`)
		VALUES (:id, :title, :content, :priority, :active, :created_at, :expires_at)`, n)
	if err != nil {
		return notice.Notice{}, fmt.Errorf("insert notice: %w", err)
	}
	return n, nil
}

// Update applies p in a single UPDATE ... RETURNING statement.
func (db *DB) Update(ctx context.Context, id string, p notice.Patch) (notice.Notice, error) {
	if err := p.Normalize(); err != nil {
		return notice.Notice{}, err
	}

	var sets []string
	var args []any
	add := func(col string, v any) {
		sets = append(sets, col+" = ?")
		args = append(args, v)
	}
	if p.Title != nil {
		add("title", *p.Title)
	}
	if p.Content != nil {
		add("content", *p.Content)
	}
	if p.Priority != nil {
		add("priority", *p.Priority)
	}
	if p.Active != nil {
		add("active", *p.Active)
	}
	switch {
	case p.ClearExpiry:
		sets = append(sets, "expires_at = NULL")
	case p.ExpiresAt != nil:
		add("expires_at", p.ExpiresAt.UTC().Truncate(time.Microsecond))
	}
	args = append(args, id)

	q := db.Rebind(`UPDATE notices SET ` + strings.Join(sets, ", ") +
		` WHERE id = ? RETURNING ` + noticeColumns)

	var n notice.Notice
	err := db.GetContext(ctx, &n, q, args...)
	if errors.Is(err, sql.ErrNoRows) {
		return notice.Notice{}, notice.ErrNotFound
	}
	if err != nil {
		return notice.Notice{}, fmt.Errorf("update notice: %w", err)
	}
	return normalizeOne(n), nil
}

func (db *DB) Delete(ctx context.Context, id string) error {
	res, err := db.ExecContext(ctx, db.Rebind(`DELETE FROM notices WHERE id = ?`), id)
	if err != nil {
		return fmt.Errorf("delete notice: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete notice: %w", err)
	}
	if n == 0 {
		return notice.ErrNotFound
	}
	return nil
}

func (db *DB) Count(ctx context.Context) (int, error) {
	var n int
	if err := db.GetContext(ctx, &n, `SELECT COUNT(*) FROM notices`); err != nil {
		return 0, fmt.Errorf("count notices: %w", err)
	}
	return n, nil
}

// normalize puts scanned timestamps in UTC; drivers differ in the
// location they attach.
func normalize(ns []notice.Notice) {
	for i := range ns {
		ns[i] = normalizeOne(ns[i])
	}
}

func normalizeOne(n notice.Notice) notice.Notice {
	n.CreatedAt = n.CreatedAt.UTC()
	if n.ExpiresAt != nil {
		t := n.ExpiresAt.UTC()
		n.ExpiresAt = &t
	}
	return n
}

var _ notice.Store = (*DB)(nil)
