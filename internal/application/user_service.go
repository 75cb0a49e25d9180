package application

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"cloud.google.com/go/storage"
	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/shopora/user-service/internal/domain/entity"
	repo "github.com/shopora/user-service/internal/domain/repository"
	"github.com/shopora/user-service/pkg/helpers"
	"github.com/shopora/user-service/pkg/mailer"
	tpl "github.com/shopora/user-service/pkg/mailer/templates"
)

// Stable errors crossing the service boundary. Handlers map these to HTTP
// statuses; anything else is an internal failure and must not leak.
var (
	ErrMissingFields        = errors.New("name, email and password are required")
	ErrMissingCredentials   = errors.New("email and password are required")
	ErrMissingToken         = errors.New("activation token is required")
	ErrMissingAddressFields = errors.New("country, city, address, pincode and address_type are all required")
	ErrEmailRegistered      = errors.New("an account with this email already exists")
	ErrAccountNotFound      = errors.New("no account with this email, please sign up")
	ErrNotActivated         = errors.New("account is not activated, check your activation email")
	ErrInvalidCredentials   = errors.New("password is incorrect")
	ErrInvalidToken         = errors.New("activation token is invalid or expired")
	ErrUserNotFound         = errors.New("user not found")
	ErrMailDelivery         = errors.New("could not deliver the activation email")
	ErrStorageUnavailable   = errors.New("photo storage is not configured")
)

// Service orchestrates the account lifecycle: signup with email activation,
// login, profile reads and mutations. Redis, the queue publisher and
// Elasticsearch are optional; when nil the corresponding side effects are
// skipped.
type Service struct {
	Repo         repo.UserRepository
	JWT          *helpers.JWTManager
	Mailer       mailer.Sender
	Queue        *helpers.RabbitPublisher
	GCS          *storage.Client
	GCSBucket    string
	Redis        *redis.Client
	Logger       *logrus.Logger
	ES           *elasticsearch.Client
	ESUsersIndex string

	// ActivationURL is the base URL of the activation endpoint; the token is
	// appended as a path segment to form the emailed link.
	ActivationURL string
}

func NewService(repo repo.UserRepository, jwt *helpers.JWTManager, sender mailer.Sender, activationURL string) *Service {
	return &Service{
		Repo:          repo,
		JWT:           jwt,
		Mailer:        sender,
		ActivationURL: activationURL,
	}
}

// SignupInput carries the fields required to register an account.
type SignupInput struct {
	Name     string
	Email    string
	Password string
}

// AddressInput carries one full address unit. Partial addresses are rejected.
type AddressInput struct {
	Country     string
	City        string
	Line        string
	Pincode     string
	AddressType string
}

// SessionToken is an issued login credential and its expiry.
type SessionToken struct {
	Token     string
	ExpiresAt time.Time
}

// ProfileView is the read-only projection returned by profile operations.
// It deliberately has no password field.
type ProfileView struct {
	ID           string           `json:"id"`
	Name         string           `json:"name"`
	Email        string           `json:"email"`
	Role         entity.Role      `json:"role"`
	ProfilePhoto string           `json:"profile_photo,omitempty"`
	Addresses    []entity.Address `json:"addresses"`
	CreatedAt    time.Time        `json:"created_at"`
}

func viewOf(u *entity.User) *ProfileView {
	addrs := u.Addresses
	if addrs == nil {
		addrs = []entity.Address{}
	}
	return &ProfileView{
		ID:           u.ID,
		Name:         u.Name,
		Email:        u.Email,
		Role:         u.Role,
		ProfilePhoto: u.ProfilePhoto,
		Addresses:    addrs,
		CreatedAt:    u.CreatedAt,
	}
}

func sessionKey(userID string) string {
	return "user:session:" + userID
}

// Signup registers a new account. The activation email is sent before the
// account is persisted: if delivery fails nothing is stored, so no account
// can exist whose owner never received an activation link. The id is
// assigned up front so the token can reference the not-yet-durable account.
func (s *Service) Signup(ctx context.Context, in SignupInput) (*entity.User, error) {
	name := strings.TrimSpace(in.Name)
	email := strings.TrimSpace(strings.ToLower(in.Email))
	if name == "" || email == "" || in.Password == "" {
		return nil, ErrMissingFields
	}

	existing, err := s.Repo.GetByEmail(ctx, email)
	if err != nil && !errors.Is(err, repo.ErrNotFound) {
		return nil, fmt.Errorf("lookup email: %w", err)
	}
	if existing != nil {
		return nil, ErrEmailRegistered
	}

	hash, err := helpers.HashPassword(in.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	u := &entity.User{
		ID:       uuid.NewString(),
		Name:     name,
		Email:    email,
		Password: hash,
		Role:     entity.RoleUser,
	}

	token, _, err := s.JWT.GenerateActivationToken(u.ID)
	if err != nil {
		return nil, fmt.Errorf("issue activation token: %w", err)
	}
	link := s.ActivationURL + "/" + token

	subject, text, html, err := tpl.Render(tpl.Activation, map[string]any{"Name": u.Name, "Link": link})
	if err != nil {
		return nil, fmt.Errorf("render activation email: %w", err)
	}
	if err := s.Mailer.Send(ctx, u.Email, subject, text, html); err != nil {
		if s.Logger != nil {
			s.Logger.WithError(err).WithField("email", u.Email).Error("activation email send failed")
		}
		return nil, ErrMailDelivery
	}

	if err := s.Repo.Create(ctx, u); err != nil {
		if errors.Is(err, repo.ErrEmailTaken) {
			return nil, ErrEmailRegistered
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	s.indexUser(ctx, u)
	return u, nil
}

// Activate verifies an activation token and flips the account to activated.
// Re-activating an already active account is a no-op success.
func (s *Service) Activate(ctx context.Context, token string) error {
	if token == "" {
		return ErrMissingToken
	}
	claims, err := s.JWT.ParseActivationToken(token)
	if err != nil {
		return ErrInvalidToken
	}

	u, err := s.Repo.GetByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return ErrInvalidToken
		}
		return fmt.Errorf("load user: %w", err)
	}
	if u.IsActivated {
		return nil
	}
	if err := s.Repo.SetActivated(ctx, u.ID); err != nil {
		return fmt.Errorf("activate user: %w", err)
	}

	s.enqueueEmail(ctx, mailer.EmailJob{
		To:       u.Email,
		Template: tpl.Welcome,
		Data:     map[string]any{"Name": u.Name},
	})
	return nil
}

// Login authenticates an activated account and issues a session token.
func (s *Service) Login(ctx context.Context, email, password string) (*entity.User, SessionToken, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	if email == "" || password == "" {
		return nil, SessionToken{}, ErrMissingCredentials
	}

	u, err := s.Repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, SessionToken{}, ErrAccountNotFound
		}
		return nil, SessionToken{}, fmt.Errorf("lookup email: %w", err)
	}
	if !u.IsActivated {
		return nil, SessionToken{}, ErrNotActivated
	}
	if !helpers.CompareHashAndPassword(u.Password, password) {
		return nil, SessionToken{}, ErrInvalidCredentials
	}

	token, exp, err := s.JWT.GenerateSessionToken(u.ID)
	if err != nil {
		return nil, SessionToken{}, fmt.Errorf("issue session token: %w", err)
	}

	if s.Redis != nil {
		key := sessionKey(u.ID)
		pipe := s.Redis.Pipeline()
		pipe.HSet(ctx, key, map[string]any{
			"user_id":    u.ID,
			"email":      u.Email,
			"name":       u.Name,
			"logged_in":  true,
			"created_at": time.Now().UTC().Format(time.RFC3339Nano),
		})
		pipe.Expire(ctx, key, 24*time.Hour)
		if _, rErr := pipe.Exec(ctx); rErr != nil && s.Logger != nil {
			s.Logger.WithError(rErr).WithField("key", key).Warn("redis pipeline failed")
		}
	}

	s.enqueueEmail(ctx, mailer.EmailJob{
		To:       u.Email,
		Template: tpl.LoginNotice,
		Data: map[string]any{
			"Name": u.Name,
			"Time": time.Now().UTC().Format("02 January 2006, 15:04 MST"),
		},
	})

	return u, SessionToken{Token: token, ExpiresAt: exp}, nil
}

// Profile returns the read-only account projection used by checklogin.
func (s *Service) Profile(ctx context.Context, userID string) (*ProfileView, error) {
	u, err := s.Repo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("load user: %w", err)
	}
	return viewOf(u), nil
}

// SetProfilePhoto records an already-uploaded photo reference on the account.
func (s *Service) SetProfilePhoto(ctx context.Context, userID, photoURL string) (*ProfileView, error) {
	if err := s.Repo.SetProfilePhoto(ctx, userID, photoURL); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("set profile photo: %w", err)
	}
	u, err := s.Repo.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("reload user: %w", err)
	}
	s.indexUser(ctx, u)
	return viewOf(u), nil
}

// UploadProfilePhoto stores the photo bytes in GCS and records the resulting
// URL on the account.
func (s *Service) UploadProfilePhoto(ctx context.Context, userID string, r io.Reader, filename, contentType string) (*ProfileView, error) {
	if s.GCS == nil || s.GCSBucket == "" {
		return nil, ErrStorageUnavailable
	}
	ext := strings.ToLower(filepath.Ext(filename))
	objectPath := filepath.ToSlash(filepath.Join("profiles", userID, uuid.NewString()+ext))
	url, err := helpers.UploadObject(ctx, s.GCS, s.GCSBucket, objectPath, contentType, r)
	if err != nil {
		return nil, fmt.Errorf("upload photo: %w", err)
	}
	return s.SetProfilePhoto(ctx, userID, url)
}

// AddAddress appends one full address unit to the account's address list.
func (s *Service) AddAddress(ctx context.Context, userID string, in AddressInput) (*ProfileView, error) {
	if strings.TrimSpace(in.Country) == "" ||
		strings.TrimSpace(in.City) == "" ||
		strings.TrimSpace(in.Line) == "" ||
		strings.TrimSpace(in.Pincode) == "" ||
		strings.TrimSpace(in.AddressType) == "" {
		return nil, ErrMissingAddressFields
	}

	addr := entity.Address{
		Country:     in.Country,
		City:        in.City,
		Line:        in.Line,
		Pincode:     in.Pincode,
		AddressType: in.AddressType,
	}
	if err := s.Repo.AppendAddress(ctx, userID, addr); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("append address: %w", err)
	}

	u, err := s.Repo.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("reload user: %w", err)
	}
	return viewOf(u), nil
}

// enqueueEmail publishes a non-gating notification job; failures are logged
// and never affect the calling operation.
func (s *Service) enqueueEmail(ctx context.Context, job mailer.EmailJob) {
	if s.Queue == nil {
		return
	}
	if err := s.Queue.PublishJSON(ctx, job); err != nil && s.Logger != nil {
		s.Logger.WithError(err).WithField("template", job.Template).Warn("enqueue email failed")
	}
}

// indexUser mirrors the public profile fields into Elasticsearch so the
// search endpoint sees fresh data. Best effort.
func (s *Service) indexUser(ctx context.Context, u *entity.User) {
	if s.ES == nil || s.ESUsersIndex == "" {
		return
	}
	doc := map[string]any{
		"id":            u.ID,
		"email":         u.Email,
		"name":          u.Name,
		"profile_photo": u.ProfilePhoto,
		"is_activated":  u.IsActivated,
		"created_at":    u.CreatedAt.Format(time.RFC3339Nano),
		"updated_at":    u.UpdatedAt.Format(time.RFC3339Nano),
	}
	b, _ := json.Marshal(doc)
	req := esapi.IndexRequest{Index: s.ESUsersIndex, DocumentID: u.ID, Body: strings.NewReader(string(b)), Refresh: "false"}
	c, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	res, err := req.Do(c, s.ES)
	if err != nil {
		if s.Logger != nil {
			s.Logger.WithError(err).WithField("user_id", u.ID).Warn("es index failed")
		}
		return
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() && s.Logger != nil {
		s.Logger.WithField("status", res.Status()).WithField("user_id", u.ID).Warn("es index response error")
	}
}

// SearchUsers performs a simple multi_match search on email and name.
func (s *Service) SearchUsers(ctx context.Context, q string, size int) ([]map[string]any, error) {
	if s.ES == nil || s.ESUsersIndex == "" {
		return []map[string]any{}, nil
	}
	if size <= 0 || size > 50 {
		size = 10
	}
	query := map[string]any{
		"query": map[string]any{
			"multi_match": map[string]any{
				"query":  q,
				"fields": []string{"email^2", "name"},
			},
		},
		"size": size,
	}
	b, _ := json.Marshal(query)

	c, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	res, err := s.ES.Search(
		s.ES.Search.WithContext(c),
		s.ES.Search.WithIndex(s.ESUsersIndex),
		s.ES.Search.WithBody(strings.NewReader(string(b))),
	)
	if err != nil {
		return nil, err
	}
	defer func() { _ = res.Body.Close() }()

	var parsed struct {
		Hits struct {
			Hits []struct {
				ID     string         `json:"_id"`
				Source map[string]any `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, err
	}

	out := make([]map[string]any, 0, len(parsed.Hits.Hits))
	for _, h := range parsed.Hits.Hits {
		out = append(out, h.Source)
	}
	return out, nil
}
