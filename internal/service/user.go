package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Skotchmaster/paperman/internal/events"
	"github.com/Skotchmaster/paperman/internal/models"
	"github.com/Skotchmaster/paperman/internal/repo"
	"github.com/Skotchmaster/paperman/internal/transport"
	"github.com/Skotchmaster/paperman/internal/util"
	"github.com/Skotchmaster/paperman/pkg/hash"
)

type UserService struct {
	base
	Repo *repo.GormRepo
	Loc  *time.Location
	Now  func() time.Time
}

func NewUserService(r *repo.GormRepo, pub events.Publisher, loc *time.Location) *UserService {
	if loc == nil {
		loc = time.UTC
	}
	return &UserService{base: base{Events: pub}, Repo: r, Loc: loc, Now: time.Now}
}

// validate checks req and returns the parsed DOB. The password is required
// only when creating.
func (s *UserService) validate(req transport.UserRequest, creating bool) (*time.Time, error) {
	f := fieldErrors{}
	required(f, "username", req.Username, "username")
	required(f, "first_name", req.FirstName, "first name")
	required(f, "last_name", req.LastName, "last name")
	required(f, "email", req.Email, "email")
	checkEmail(f, "email", normEmail(req.Email))
	checkPhone(f, "phone", strings.TrimSpace(req.Phone))
	if v := strings.TrimSpace(req.AadharNo); v != "" && !aadharRe.MatchString(v) {
		f.add("aadhar_no", "aadhar number must be 12 digits")
	}
	if v := strings.ToUpper(strings.TrimSpace(req.PanNo)); v != "" && !panRe.MatchString(v) {
		f.add("pan_no", "invalid PAN format")
	}
	if role := strings.ToLower(strings.TrimSpace(req.Role)); role != "" && role != models.RoleAdmin && role != models.RoleStaff {
		f.add("role", "role must be admin or staff")
	}
	if creating || req.Password != "" {
		checkPassword(f, req.Password)
	}

	var dob *time.Time
	if v := strings.TrimSpace(req.DOB); v != "" {
		d, err := util.ParseDate(v, s.Loc)
		switch {
		case err != nil:
			f.add("dob", "invalid date")
		case d.After(s.Now()):
			f.add("dob", "date of birth cannot be in the future")
		default:
			dob = &d
		}
	}
	return dob, f.err()
}

func applyUser(u *models.User, req transport.UserRequest, dob *time.Time) {
	u.Username = strings.TrimSpace(req.Username)
	u.FirstName = strings.TrimSpace(req.FirstName)
	u.LastName = strings.TrimSpace(req.LastName)
	u.Email = normEmail(req.Email)
	u.Phone = strings.TrimSpace(req.Phone)
	u.AadharNo = strings.TrimSpace(req.AadharNo)
	u.PanNo = strings.ToUpper(strings.TrimSpace(req.PanNo))
	u.DOB = dob
	if role := strings.ToLower(strings.TrimSpace(req.Role)); role != "" {
		u.Role = role
	}
	if u.Role == "" {
		u.Role = models.RoleStaff
	}
}

// checkUnique reports username and email clashes as field errors.
func (s *UserService) checkUnique(ctx context.Context, u *models.User) error {
	f := fieldErrors{}
	if other, err := s.Repo.GetUserByUsername(ctx, u.Username); err == nil && other.ID != u.ID {
		f.add("username", "username already taken")
	} else if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}
	if other, err := s.Repo.GetUserByEmail(ctx, u.Email); err == nil && other.ID != u.ID {
		f.add("email", "email already registered")
	} else if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}
	if len(f) > 0 {
		return &conflictError{ValidationError{Fields: f}}
	}
	return nil
}

// conflictError carries field messages for a 409.
type conflictError struct {
	ValidationError
}

func (e *conflictError) Unwrap() error { return ErrConflict }

func (s *UserService) List(ctx context.Context, p util.ListParams) ([]models.User, int64, error) {
	return s.Repo.ListUsers(ctx, p)
}

func (s *UserService) Get(ctx context.Context, id uuid.UUID) (*models.User, error) {
	u, err := s.Repo.GetUser(ctx, id)
	return u, storeErr(err, "user")
}

func (s *UserService) Create(ctx context.Context, req transport.UserRequest) (*models.User, error) {
	dob, err := s.validate(req, true)
	if err != nil {
		return nil, err
	}
	var u models.User
	applyUser(&u, req, dob)
	if err := s.checkUnique(ctx, &u); err != nil {
		return nil, err
	}
	if u.PasswordHash, err = hash.HashPassword(req.Password); err != nil {
		return nil, err
	}
	if err := s.Repo.CreateUser(ctx, &u); err != nil {
		return nil, storeErr(err, "user")
	}
	s.publish(ctx, events.UserCreated, u.ID.String(), u)
	return &u, nil
}

// Update keeps the current password unless a new one is sent.
func (s *UserService) Update(ctx context.Context, id uuid.UUID, req transport.UserRequest) (*models.User, error) {
	dob, err := s.validate(req, false)
	if err != nil {
		return nil, err
	}
	u, err := s.Repo.GetUser(ctx, id)
	if err != nil {
		return nil, storeErr(err, "user")
	}
	applyUser(u, req, dob)
	if err := s.checkUnique(ctx, u); err != nil {
		return nil, err
	}
	if req.Password != "" {
		if u.PasswordHash, err = hash.HashPassword(req.Password); err != nil {
			return nil, err
		}
	}
	if err := s.Repo.UpdateUser(ctx, u); err != nil {
		return nil, storeErr(err, "user")
	}
	s.publish(ctx, events.UserUpdated, u.ID.String(), u)
	return u, nil
}

func (s *UserService) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.Repo.DeleteUser(ctx, id); err != nil {
		return storeErr(err, "user")
	}
	s.publish(ctx, events.UserDeleted, id.String(), nil)
	return nil
}
