package posts

import (
	"context"
	"errors"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/postboard/backend/internal/db"
	"github.com/postboard/backend/internal/logger"
	"github.com/postboard/backend/internal/storage"
)

// PostStore is the repository surface the service needs.
type PostStore interface {
	Create(ctx context.Context, post *db.Post) error
	GetByID(ctx context.Context, id uuid.UUID) (*db.Post, error)
	List(ctx context.Context) ([]*db.Post, error)
	Update(ctx context.Context, post *db.Post) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// Upload is an incoming image file: its contents and the client-supplied
// extension (without dot).
type Upload struct {
	Reader io.Reader
	Ext    string
}

type Service struct {
	repo   PostStore
	images storage.ImageStore
	log    *logger.Logger
}

func NewService(repo PostStore, images storage.ImageStore) *Service {
	return &Service{
		repo:   repo,
		images: images,
		log:    logger.Default().WithComponent("posts"),
	}
}

func (s *Service) List(ctx context.Context) ([]*db.Post, error) {
	return s.repo.List(ctx)
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*db.Post, error) {
	return s.repo.GetByID(ctx, id)
}

// Create stores the image first, then inserts the row. If the insert fails
// the stored file is removed again so no orphan survives.
func (s *Service) Create(ctx context.Context, title, description string, image Upload) (*db.Post, error) {
	filename, err := s.images.Save(ctx, image.Reader, image.Ext)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	post := &db.Post{
		ID:          uuid.New(),
		Title:       title,
		Description: description,
		Image:       filename,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.repo.Create(ctx, post); err != nil {
		s.removeFile(ctx, filename)
		return nil, err
	}

	return post, nil
}

// Update replaces title and description, and the image only when a new one
// is supplied. The old file is removed after the row change commits; a
// failed row change removes the newly stored file instead.
func (s *Service) Update(ctx context.Context, id uuid.UUID, title, description string, image *Upload) (*db.Post, error) {
	post, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	oldImage := post.Image
	newImage := ""
	if image != nil {
		newImage, err = s.images.Save(ctx, image.Reader, image.Ext)
		if err != nil {
			return nil, err
		}
		post.Image = newImage
	}

	post.Title = title
	post.Description = description
	post.UpdatedAt = time.Now()

	if err := s.repo.Update(ctx, post); err != nil {
		if newImage != "" {
			s.removeFile(ctx, newImage)
		}
		return nil, err
	}

	if newImage != "" && oldImage != "" {
		s.removeFile(ctx, oldImage)
	}

	return post, nil
}

// Delete removes the row, then the image file best-effort. A missing file
// never fails the delete.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	post, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	if post.Image != "" {
		s.removeFile(ctx, post.Image)
	}

	return nil
}

// removeFile deletes an image file best-effort. Absence is expected in
// recovery paths; anything else is logged and swallowed.
func (s *Service) removeFile(ctx context.Context, name string) {
	err := s.images.Remove(ctx, name)
	if err == nil || errors.Is(err, storage.ErrNotFound) {
		return
	}
	s.log.Warn(ctx, "failed to remove image file", map[string]interface{}{
		"image": name,
		"error": err.Error(),
	})
}
