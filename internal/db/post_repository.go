package db

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
)

var ErrPostNotFound = errors.New("post not found")

type Post struct {
	ID          uuid.UUID
	Title       string
	Description string
	Image       string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

type PostRepository struct {
	db *DB
}

func NewPostRepository(db *DB) *PostRepository {
	return &PostRepository{db: db}
}

func (r *PostRepository) Create(ctx context.Context, post *Post) error {
	query := `
		INSERT INTO posts (id, title, description, image, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	return r.db.WithTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, query,
			post.ID, post.Title, post.Description, nullable(post.Image), post.CreatedAt, post.UpdatedAt,
		)
		return err
	})
}

func (r *PostRepository) GetByID(ctx context.Context, id uuid.UUID) (*Post, error) {
	query := `
		SELECT id, title, description, image, created_at, updated_at
		FROM posts
		WHERE id = $1
	`

	return scanPost(r.db.QueryRowContext(ctx, query, id))
}

func (r *PostRepository) List(ctx context.Context) ([]*Post, error) {
	query := `
		SELECT id, title, description, image, created_at, updated_at
		FROM posts
		ORDER BY created_at
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	posts := []*Post{}
	for rows.Next() {
		post, err := scanPost(rows)
		if err != nil {
			return nil, err
		}
		posts = append(posts, post)
	}

	return posts, rows.Err()
}

func (r *PostRepository) Update(ctx context.Context, post *Post) error {
	query := `
		UPDATE posts
		SET title = $2, description = $3, image = $4, updated_at = $5
		WHERE id = $1
	`

	return r.db.WithTx(ctx, func(tx *sql.Tx) error {
		result, err := tx.ExecContext(ctx, query,
			post.ID, post.Title, post.Description, nullable(post.Image), post.UpdatedAt,
		)
		if err != nil {
			return err
		}

		rows, err := result.RowsAffected()
		if err != nil {
			return err
		}
		if rows == 0 {
			return ErrPostNotFound
		}
		return nil
	})
}

func (r *PostRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := `
		DELETE FROM posts
		WHERE id = $1
	`

	return r.db.WithTx(ctx, func(tx *sql.Tx) error {
		result, err := tx.ExecContext(ctx, query, id)
		if err != nil {
			return err
		}

		rows, err := result.RowsAffected()
		if err != nil {
			return err
		}
		if rows == 0 {
			return ErrPostNotFound
		}
		return nil
	})
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPost(row rowScanner) (*Post, error) {
	post := &Post{}
	var image sql.NullString
	err := row.Scan(
		&post.ID, &post.Title, &post.Description, &image, &post.CreatedAt, &post.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrPostNotFound
		}
		return nil, err
	}
	post.Image = image.String
	return post, nil
}

func nullable(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
