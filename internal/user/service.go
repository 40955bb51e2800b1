package user

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/nekogravitycat/user-management-backend/internal/auth"
	"github.com/nekogravitycat/user-management-backend/internal/pkg/apperror"
	"github.com/nekogravitycat/user-management-backend/internal/role"
)

// Service defines business logic related to users.
type Service interface {
	Create(ctx context.Context, username, email, password string) (*User, error)
	GetByID(ctx context.Context, id string) (*User, error)
	GetAll(ctx context.Context) ([]*User, error)
	// List returns one page of users matching criteria. A nil criteria lists
	// every user; a nil page uses DefaultPageRequest.
	List(ctx context.Context, criteria *Criteria, page *PageRequest) (*PageResult, error)
	UpdateStatus(ctx context.Context, id string, status Status) (*User, error)
	AssignRole(ctx context.Context, userID, roleName string) (*User, error)
	RemoveRole(ctx context.Context, userID, roleName string) (*User, error)
}

// createInput carries the normalized fields checked before a user is created.
type createInput struct {
	Username string `validate:"required,max=50"`
	Email    string `validate:"required,email,max=255"`
	Password string `validate:"required,min=6,max=72"`
}

type service struct {
	repo     Repository
	hasher   auth.PasswordHasher
	roles    role.Service
	executor *Executor
	validate *validator.Validate
}

// NewService creates a new user Service. maxPageSize bounds List requests;
// 0 leaves them unbounded.
func NewService(repo Repository, hasher auth.PasswordHasher, roles role.Service, maxPageSize int) Service {
	return &service{
		repo:     repo,
		hasher:   hasher,
		roles:    roles,
		executor: NewExecutor(repo, maxPageSize),
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}
}

func (s *service) Create(ctx context.Context, username, email, password string) (*User, error) {
	in := createInput{
		Username: strings.TrimSpace(username),
		Email:    normalizeEmail(email),
		Password: password,
	}
	if err := s.validate.Struct(in); err != nil {
		return nil, apperror.Wrap(ErrValidationFailed, ErrValidationFailed.Code, "validation failed: "+describeValidation(err))
	}

	// Username is checked first so simultaneous collisions report the username.
	if _, err := s.repo.GetByUsername(ctx, in.Username); err == nil {
		return nil, ErrDuplicateUsername
	} else if !errors.Is(err, ErrNotFound) {
		return nil, fmt.Errorf("failed to check existing username: %w", err)
	}

	if _, err := s.repo.GetByEmail(ctx, in.Email); err == nil {
		return nil, ErrDuplicateEmail
	} else if !errors.Is(err, ErrNotFound) {
		return nil, fmt.Errorf("failed to check existing email: %w", err)
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	u := &User{
		Username:     in.Username,
		Email:        in.Email,
		PasswordHash: hash,
		Status:       StatusActive,
		Roles:        []RoleBrief{},
	}

	// The store's unique indexes still decide races between concurrent creates;
	// they report the same duplicate errors as the checks above.
	if err := s.repo.Create(ctx, u); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return u, nil
}

func (s *service) GetByID(ctx context.Context, id string) (*User, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *service) GetAll(ctx context.Context) ([]*User, error) {
	return s.repo.FindAll(ctx)
}

func (s *service) List(ctx context.Context, criteria *Criteria, page *PageRequest) (*PageResult, error) {
	var filter Filter
	if criteria != nil {
		filter = criteria.Filter()
	}

	p := DefaultPageRequest()
	if page != nil {
		p = *page
	}

	return s.executor.Execute(ctx, filter, p)
}

func (s *service) UpdateStatus(ctx context.Context, id string, status Status) (*User, error) {
	if !status.Valid() {
		return nil, ErrInvalidStatus
	}
	if err := s.repo.UpdateStatus(ctx, id, status); err != nil {
		return nil, err
	}
	return s.repo.GetByID(ctx, id)
}

func (s *service) AssignRole(ctx context.Context, userID, roleName string) (*User, error) {
	if _, err := s.repo.GetByID(ctx, userID); err != nil {
		return nil, err
	}

	r, err := s.roles.GetByName(ctx, roleName)
	if err != nil {
		return nil, err
	}

	if err := s.repo.AddRole(ctx, userID, RoleBrief{ID: r.ID, Name: r.Name}); err != nil {
		return nil, err
	}
	return s.repo.GetByID(ctx, userID)
}

func (s *service) RemoveRole(ctx context.Context, userID, roleName string) (*User, error) {
	if _, err := s.repo.GetByID(ctx, userID); err != nil {
		return nil, err
	}

	r, err := s.roles.GetByName(ctx, roleName)
	if err != nil {
		return nil, err
	}

	if err := s.repo.RemoveRole(ctx, userID, r.ID); err != nil {
		return nil, err
	}
	return s.repo.GetByID(ctx, userID)
}

// normalizeEmail trims spaces and lowercases the email.
func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// describeValidation lists the failing fields of a validator error.
func describeValidation(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}
	parts := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		parts = append(parts, strings.ToLower(fe.Field())+" failed "+fe.Tag())
	}
	return strings.Join(parts, ", ")
}
