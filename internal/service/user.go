package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"net/mail"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"userapi/internal/model"
	"userapi/internal/repository"
	"userapi/internal/storage"
)

var (
	ErrIDRequired         = errors.New("id is required")
	ErrNotFound           = errors.New("user not found")
	ErrNameRequired       = errors.New("name is required")
	ErrInvalidEmail       = errors.New("email is malformed")
	ErrEmailTaken         = errors.New("email is already in use")
	ErrReaderNil          = errors.New("reader is nil")
	ErrNoAvatar           = errors.New("user has no avatar")
	ErrStorageUnavailable = errors.New("object storage is not configured")
)

// UserListResult is the service-level DTO for paginated users.
type UserListResult struct {
	Items []model.User `json:"data"`
	Total int          `json:"total"`
}

// UserService defines the use cases for managing directory users.
// It wraps the repository with field validation and email uniqueness checks.
type UserService interface {
	// Create validates the fields, assigns an ID and timestamps, and stores the user.
	Create(ctx context.Context, name, email string) (*model.User, error)

	// Get returns a single user by its ID.
	Get(ctx context.Context, id string) (*model.User, error)

	// List returns users using limit/offset and a total count.
	List(ctx context.Context, limit, offset int) (*UserListResult, error)

	// Update replaces name and email of an existing user after validation.
	Update(ctx context.Context, id, name, email string) (*model.User, error)

	// Delete removes a user and any stored avatar object.
	Delete(ctx context.Context, id string) error

	// UploadAvatar stores the avatar in object storage, records the key on the
	// user, and rolls back the object if the DB update fails.
	// - originalFilename is used only to extract the extension; the stored key is UUID + extension.
	UploadAvatar(ctx context.Context, id string, r io.Reader, originalFilename, contentType string, size int64) (*model.User, error)

	// AvatarURL returns a presigned, time-limited download URL for the avatar.
	AvatarURL(ctx context.Context, id string) (string, error)

	// DeleteAvatar removes the avatar object and clears the key on the user.
	DeleteAvatar(ctx context.Context, id string) (*model.User, error)
}

// userService is a concrete implementation of UserService.
type userService struct {
	store     storage.Storage
	repo      repository.UserRepository
	listeners []UserListener
}

// NewUserService constructs a new UserService.
// store may be nil when the deployment runs without object storage; avatar
// operations then fail with ErrStorageUnavailable.
// Listeners are notified after each successful create, update and delete.
func NewUserService(store storage.Storage, repo repository.UserRepository, listeners ...UserListener) UserService {
	return &userService{store: store, repo: repo, listeners: listeners}
}

func (s *userService) Create(ctx context.Context, name, email string) (*model.User, error) {
	name, email, err := s.validateFields(name, email)
	if err != nil {
		return nil, err
	}
	if err := s.checkEmailFree(ctx, email, ""); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	u := &model.User{
		ID:        uuid.New().String(),
		Name:      name,
		Email:     email,
		CreatedAt: now,
		UpdatedAt: now,
	}
	stored, err := s.repo.Create(ctx, u)
	if err != nil {
		return nil, fmt.Errorf("db save failed: %w", err)
	}
	s.notify(UserEvent{Type: UserCreated, User: *stored, At: now})
	return stored, nil
}

// Get returns a user by ID.
func (s *userService) Get(ctx context.Context, id string) (*model.User, error) {
	if id == "" {
		return nil, ErrIDRequired
	}
	u, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return u, nil
}

// List returns paginated users without exposing repository types.
func (s *userService) List(ctx context.Context, limit, offset int) (*UserListResult, error) {
	if limit <= 0 {
		limit = 10
	}
	if offset < 0 {
		offset = 0
	}

	res, err := s.repo.List(ctx, repository.PageQuery{Limit: limit, Offset: offset})
	if err != nil {
		return nil, err
	}
	return &UserListResult{Items: res.Items, Total: res.Total}, nil
}

func (s *userService) Update(ctx context.Context, id, name, email string) (*model.User, error) {
	if id == "" {
		return nil, ErrIDRequired
	}
	name, email, err := s.validateFields(name, email)
	if err != nil {
		return nil, err
	}
	if err := s.checkEmailFree(ctx, email, id); err != nil {
		return nil, err
	}

	current, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	now := time.Now().UTC()
	current.Name = name
	current.Email = email
	current.UpdatedAt = now

	stored, err := s.repo.Update(ctx, current)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	s.notify(UserEvent{Type: UserUpdated, User: *stored, At: now})
	return stored, nil
}

// Delete removes the avatar object first, then deletes the record.
func (s *userService) Delete(ctx context.Context, id string) error {
	if id == "" {
		return ErrIDRequired
	}
	u, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		return err
	}
	// Delete the avatar first; if this fails, keep the row so the object
	// reference is not lost.
	if u.AvatarPath != "" && s.store != nil {
		if err := s.store.Delete(ctx, u.AvatarPath); err != nil {
			return fmt.Errorf("delete avatar: %w", err)
		}
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.notify(UserEvent{Type: UserDeleted, User: *u, At: time.Now().UTC()})
	return nil
}

func (s *userService) UploadAvatar(ctx context.Context, id string, r io.Reader, originalFilename, contentType string, size int64) (*model.User, error) {
	if id == "" {
		return nil, ErrIDRequired
	}
	if r == nil {
		return nil, ErrReaderNil
	}
	if s.store == nil {
		return nil, ErrStorageUnavailable
	}

	u, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	// Generate object key using UUID + extension
	ext := filepath.Ext(originalFilename)
	key := filepath.ToSlash(filepath.Join("avatars", uuid.New().String()+ext))

	objInfo, err := s.store.Put(ctx, key, r, storage.PutObjectOptions{
		Size:        size,
		ContentType: contentType,
		Metadata: map[string]string{
			"original-filename": originalFilename,
			"user-id":           id,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("upload to storage: %w", err)
	}

	prev := u.AvatarPath
	u.AvatarPath = objInfo.Key
	u.UpdatedAt = time.Now().UTC()

	stored, err := s.repo.Update(ctx, u)
	if err != nil {
		// Rollback: delete the freshly uploaded object
		if delErr := s.store.Delete(ctx, key); delErr != nil {
			return nil, fmt.Errorf("db save failed: %v; rollback delete failed: %v", err, delErr)
		}
		return nil, fmt.Errorf("db save failed: %w", err)
	}

	// Replaced avatars leave no orphan behind. A failure here is not fatal:
	// the new avatar is already live.
	if prev != "" {
		_ = s.store.Delete(ctx, prev)
	}

	s.notify(UserEvent{Type: UserUpdated, User: *stored, At: stored.UpdatedAt})
	return stored, nil
}

func (s *userService) AvatarURL(ctx context.Context, id string) (string, error) {
	if id == "" {
		return "", ErrIDRequired
	}
	if s.store == nil {
		return "", ErrStorageUnavailable
	}
	u, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", ErrNotFound
		}
		return "", err
	}
	if u.AvatarPath == "" {
		return "", ErrNoAvatar
	}
	url, err := s.store.PresignGet(ctx, u.AvatarPath, 15*time.Minute)
	if err != nil {
		return "", fmt.Errorf("presign avatar: %w", err)
	}
	return url, nil
}

func (s *userService) DeleteAvatar(ctx context.Context, id string) (*model.User, error) {
	if id == "" {
		return nil, ErrIDRequired
	}
	if s.store == nil {
		return nil, ErrStorageUnavailable
	}
	u, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if u.AvatarPath == "" {
		return nil, ErrNoAvatar
	}
	if err := s.store.Delete(ctx, u.AvatarPath); err != nil {
		return nil, fmt.Errorf("delete avatar: %w", err)
	}

	u.AvatarPath = ""
	u.UpdatedAt = time.Now().UTC()
	stored, err := s.repo.Update(ctx, u)
	if err != nil {
		return nil, err
	}
	s.notify(UserEvent{Type: UserUpdated, User: *stored, At: stored.UpdatedAt})
	return stored, nil
}

// validateFields normalizes and validates name and email.
func (s *userService) validateFields(name, email string) (string, string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", "", ErrNameRequired
	}
	email = strings.TrimSpace(email)
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return "", "", ErrInvalidEmail
	}
	return name, email, nil
}

// checkEmailFree reports ErrEmailTaken if the email belongs to a different user.
func (s *userService) checkEmailFree(ctx context.Context, email, selfID string) error {
	existing, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil
		}
		return err
	}
	if existing.ID != selfID {
		return ErrEmailTaken
	}
	return nil
}

func (s *userService) notify(e UserEvent) {
	for _, l := range s.listeners {
		l.NotifyUserEvent(e)
	}
}
