package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/sfms-app/sfms-api/internal/models"
	appErrors "github.com/sfms-app/sfms-api/pkg/errors"
)

type assignmentRepository interface {
	Create(ctx context.Context, assignment *models.Assignment) error
	CreateBulk(ctx context.Context, staffID string, studentIDs []string) (int, error)
	ListAll(ctx context.Context) ([]models.AssignmentDetail, error)
	Delete(ctx context.Context, id string) error
	UnassignedStudents(ctx context.Context) ([]models.User, error)
	StudentsNotAssignedToStaff(ctx context.Context, staffID string) ([]models.User, error)
	Stats(ctx context.Context) (*models.AssignmentStats, error)
}

type assignmentUserRepository interface {
	FindByID(ctx context.Context, id string) (*models.User, error)
	ListActiveByRole(ctx context.Context, role models.UserRole) ([]models.User, error)
}

// AssignRequest pairs one staff member with one or more students.
type AssignRequest struct {
	StaffID    string   `json:"staff_id" validate:"required"`
	StudentIDs []string `json:"student_ids" validate:"required,min=1,dive,required"`
}

// AssignResult reports how many of the requested pairings were new.
type AssignResult struct {
	Assigned  int `json:"assigned"`
	Requested int `json:"requested"`
}

// AssignmentsPage is the admin assignment screen: current pairings plus the
// pickers used to create new ones.
type AssignmentsPage struct {
	Assignments []models.AssignmentDetail `json:"assignments"`
	Staff       []models.User             `json:"staff"`
	Students    []models.User             `json:"students"`
	Unassigned  []models.User             `json:"unassigned_students"`
}

// AssignmentService implements admin-side staff-student pairing.
type AssignmentService struct {
	repo      assignmentRepository
	users     assignmentUserRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewAssignmentService constructs an AssignmentService instance.
func NewAssignmentService(repo assignmentRepository, users assignmentUserRepository, validate *validator.Validate, logger *zap.Logger) *AssignmentService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &AssignmentService{repo: repo, users: users, validator: validate, logger: logger}
}

// Assign pairs a staff member with the given students. Students already
// assigned to that staff member are skipped; the result reports the number
// of new pairings.
func (s *AssignmentService) Assign(ctx context.Context, req AssignRequest) (*AssignResult, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "Staff and at least one student are required")
	}

	if err := s.requireRole(ctx, req.StaffID, models.RoleStaff, "Staff member not found"); err != nil {
		return nil, err
	}
	for _, studentID := range req.StudentIDs {
		if err := s.requireRole(ctx, studentID, models.RoleStudent, "Student not found"); err != nil {
			return nil, err
		}
	}

	assigned, err := s.repo.CreateBulk(ctx, req.StaffID, req.StudentIDs)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create assignments")
	}

	s.logger.Info("students assigned",
		zap.String("staffId", req.StaffID),
		zap.Int("assigned", assigned),
		zap.Int("requested", len(req.StudentIDs)),
	)
	return &AssignResult{Assigned: assigned, Requested: len(req.StudentIDs)}, nil
}

// AssignOne creates a single pairing, reporting a duplicate as a typed error.
func (s *AssignmentService) AssignOne(ctx context.Context, staffID, studentID string) (*models.Assignment, error) {
	if staffID == "" || studentID == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "Staff and student are required")
	}
	if err := s.requireRole(ctx, staffID, models.RoleStaff, "Staff member not found"); err != nil {
		return nil, err
	}
	if err := s.requireRole(ctx, studentID, models.RoleStudent, "Student not found"); err != nil {
		return nil, err
	}

	assignment := &models.Assignment{StaffID: staffID, StudentID: studentID}
	if err := s.repo.Create(ctx, assignment); err != nil {
		return nil, err
	}
	return assignment, nil
}

// Remove deletes a pairing by assignment id.
func (s *AssignmentService) Remove(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "Assignment not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to remove assignment")
	}
	return nil
}

// Overview assembles the admin assignment management screen. When staffID is
// given, the unassigned picker narrows to students not yet paired with that
// staff member.
func (s *AssignmentService) Overview(ctx context.Context, staffID string) (*AssignmentsPage, error) {
	assignments, err := s.repo.ListAll(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch assignments")
	}
	staff, err := s.users.ListActiveByRole(ctx, models.RoleStaff)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch staff")
	}
	students, err := s.users.ListActiveByRole(ctx, models.RoleStudent)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch students")
	}
	var unassigned []models.User
	if staffID != "" {
		unassigned, err = s.repo.StudentsNotAssignedToStaff(ctx, staffID)
	} else {
		unassigned, err = s.repo.UnassignedStudents(ctx)
	}
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch unassigned students")
	}

	return &AssignmentsPage{
		Assignments: assignments,
		Staff:       staff,
		Students:    students,
		Unassigned:  unassigned,
	}, nil
}

// Stats returns aggregate pairing counts for the admin dashboard.
func (s *AssignmentService) Stats(ctx context.Context) (*models.AssignmentStats, error) {
	stats, err := s.repo.Stats(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch assignment stats")
	}
	return stats, nil
}

func (s *AssignmentService) requireRole(ctx context.Context, id string, role models.UserRole, notFoundMsg string) error {
	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrValidation, notFoundMsg)
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch user")
	}
	if user.Role != role {
		return appErrors.Clone(appErrors.ErrValidation, notFoundMsg)
	}
	return nil
}
