package posts

import (
	"errors"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/postboard/backend/internal/db"
	apperrors "github.com/postboard/backend/internal/errors"
	"github.com/postboard/backend/internal/storage"
)

// PostInfo is the post shape returned from list, create and update.
type PostInfo struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Image       string    `json:"image"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// PostSummary is the narrower projection returned from get.
type PostSummary struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Image       string `json:"image"`
}

type ListResponse struct {
	Status  bool        `json:"status"`
	Message string      `json:"message"`
	Data    []*PostInfo `json:"data"`
}

type GetResponse struct {
	Status  bool         `json:"status"`
	Message string       `json:"message"`
	Data    *PostSummary `json:"data"`
}

type PostResponse struct {
	Status  bool      `json:"status"`
	Message string    `json:"message"`
	Post    *PostInfo `json:"post"`
}

type DeleteResponse struct {
	Status  bool   `json:"status"`
	Message string `json:"message"`
}

type Handlers struct {
	service        *Service
	maxUploadBytes int64
}

func NewHandlers(service *Service, maxUploadBytes int64) *Handlers {
	return &Handlers{
		service:        service,
		maxUploadBytes: maxUploadBytes,
	}
}

func (h *Handlers) List(w http.ResponseWriter, r *http.Request) error {
	posts, err := h.service.List(r.Context())
	if err != nil {
		return apperrors.DatabaseError("failed to list posts").WithCause(err)
	}

	data := make([]*PostInfo, 0, len(posts))
	for _, post := range posts {
		data = append(data, postInfo(post))
	}

	requestID := apperrors.GetRequestID(r.Context())
	apperrors.WriteJSON(w, requestID, http.StatusOK, ListResponse{
		Status:  true,
		Message: "All post data",
		Data:    data,
	})
	return nil
}

func (h *Handlers) Get(w http.ResponseWriter, r *http.Request) error {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		return apperrors.PostNotFound()
	}

	post, err := h.service.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, db.ErrPostNotFound) {
			return apperrors.PostNotFound()
		}
		return apperrors.DatabaseError("failed to fetch post").WithCause(err)
	}

	requestID := apperrors.GetRequestID(r.Context())
	apperrors.WriteJSON(w, requestID, http.StatusOK, GetResponse{
		Status:  true,
		Message: "Single post",
		Data: &PostSummary{
			ID:          post.ID.String(),
			Title:       post.Title,
			Description: post.Description,
			Image:       post.Image,
		},
	})
	return nil
}

func (h *Handlers) Create(w http.ResponseWriter, r *http.Request) error {
	if err := r.ParseMultipartForm(h.maxUploadBytes); err != nil {
		return apperrors.BadRequest("invalid multipart form")
	}
	defer r.MultipartForm.RemoveAll()

	title := strings.TrimSpace(r.FormValue("title"))
	description := strings.TrimSpace(r.FormValue("description"))
	file, header, fileErr := r.FormFile("image")

	var fields []string
	if title == "" {
		fields = append(fields, "title is required")
	}
	if description == "" {
		fields = append(fields, "description is required")
	}
	ext := ""
	if fileErr != nil {
		fields = append(fields, "image is required")
	} else {
		defer file.Close()
		ext = imageExt(header.Filename)
		if !storage.AllowedExtension(ext) {
			fields = append(fields, "image must be a jpg, jpeg, png or gif file")
		}
	}
	if len(fields) > 0 {
		return apperrors.ValidationError(fields...)
	}

	post, err := h.service.Create(r.Context(), title, description, Upload{Reader: file, Ext: ext})
	if err != nil {
		return apperrors.InternalError("failed to create post").WithCause(err)
	}

	requestID := apperrors.GetRequestID(r.Context())
	apperrors.WriteJSON(w, requestID, http.StatusCreated, PostResponse{
		Status:  true,
		Message: "Post created successfully",
		Post:    postInfo(post),
	})
	return nil
}

func (h *Handlers) Update(w http.ResponseWriter, r *http.Request) error {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		return apperrors.PostNotFound()
	}

	if err := r.ParseMultipartForm(h.maxUploadBytes); err != nil {
		return apperrors.BadRequest("invalid multipart form")
	}
	defer r.MultipartForm.RemoveAll()

	title := strings.TrimSpace(r.FormValue("title"))
	description := strings.TrimSpace(r.FormValue("description"))

	var fields []string
	if title == "" {
		fields = append(fields, "title is required")
	}
	if description == "" {
		fields = append(fields, "description is required")
	}

	// Image is optional on update; omitting it keeps the current file.
	var upload *Upload
	file, header, fileErr := r.FormFile("image")
	if fileErr == nil {
		defer file.Close()
		ext := imageExt(header.Filename)
		if !storage.AllowedExtension(ext) {
			fields = append(fields, "image must be a jpg, jpeg, png or gif file")
		} else {
			upload = &Upload{Reader: file, Ext: ext}
		}
	} else if !errors.Is(fileErr, http.ErrMissingFile) {
		return apperrors.BadRequest("invalid image upload")
	}

	if len(fields) > 0 {
		return apperrors.ValidationError(fields...)
	}

	post, err := h.service.Update(r.Context(), id, title, description, upload)
	if err != nil {
		if errors.Is(err, db.ErrPostNotFound) {
			return apperrors.PostNotFound()
		}
		return apperrors.InternalError("failed to update post").WithCause(err)
	}

	requestID := apperrors.GetRequestID(r.Context())
	apperrors.WriteJSON(w, requestID, http.StatusOK, PostResponse{
		Status:  true,
		Message: "Post updated successfully",
		Post:    postInfo(post),
	})
	return nil
}

func (h *Handlers) Delete(w http.ResponseWriter, r *http.Request) error {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		return apperrors.PostNotFound()
	}

	if err := h.service.Delete(r.Context(), id); err != nil {
		if errors.Is(err, db.ErrPostNotFound) {
			return apperrors.PostNotFound()
		}
		return apperrors.InternalError("failed to delete post").WithCause(err)
	}

	requestID := apperrors.GetRequestID(r.Context())
	apperrors.WriteJSON(w, requestID, http.StatusOK, DeleteResponse{
		Status:  true,
		Message: "Your post has been removed",
	})
	return nil
}

func postInfo(post *db.Post) *PostInfo {
	return &PostInfo{
		ID:          post.ID.String(),
		Title:       post.Title,
		Description: post.Description,
		Image:       post.Image,
		CreatedAt:   post.CreatedAt,
		UpdatedAt:   post.UpdatedAt,
	}
}

func imageExt(filename string) string {
	return strings.TrimPrefix(strings.ToLower(filepath.Ext(filename)), ".")
}
