package persistence

import (
	"context"
	"errors"
	"fmt"

	"github.com/agricred/intake/internal/domain/intake"
	"github.com/agricred/intake/internal/domain/shared"
	"github.com/agricred/intake/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormSubmissionArchive implements intake.SubmissionArchive on GORM
type GormSubmissionArchive struct {
	db *gorm.DB
}

// NewGormSubmissionArchive creates a new archive
func NewGormSubmissionArchive(db *gorm.DB) *GormSubmissionArchive {
	return &GormSubmissionArchive{db: db}
}

// Store saves a submission. A second submission for the same session is
// rejected with ErrAlreadySubmitted.
func (a *GormSubmissionArchive) Store(ctx context.Context, submission *intake.Submission) error {
	model, err := models.SubmissionModelFromDomain(submission)
	if err != nil {
		return err
	}
	if err := a.db.WithContext(ctx).Create(model).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return intake.ErrAlreadySubmitted
		}
		return fmt.Errorf("failed to archive submission: %w", err)
	}
	return nil
}

// FindByID returns a submission by its id
func (a *GormSubmissionArchive) FindByID(ctx context.Context, id uuid.UUID) (*intake.Submission, error) {
	return a.findOne(ctx, "id = ?", id)
}

// FindBySession returns the submission of a session
func (a *GormSubmissionArchive) FindBySession(ctx context.Context, sessionID uuid.UUID) (*intake.Submission, error) {
	return a.findOne(ctx, "session_id = ?", sessionID)
}

func (a *GormSubmissionArchive) findOne(ctx context.Context, query string, arg any) (*intake.Submission, error) {
	var model models.SubmissionModel
	if err := a.db.WithContext(ctx).Where(query, arg).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, intake.ErrSubmissionNotFound
		}
		return nil, err
	}
	return model.ToDomain()
}

// List pages through submissions, optionally narrowed to one submitter
func (a *GormSubmissionArchive) List(ctx context.Context, submittedBy string, filter shared.Filter) (shared.Paginated[intake.Submission], error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 || filter.PageSize > 100 {
		filter.PageSize = shared.DefaultFilter().PageSize
	}

	query := a.db.WithContext(ctx).Model(&models.SubmissionModel{})
	if submittedBy != "" {
		query = query.Where("submitted_by = ?", submittedBy)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return shared.Paginated[intake.Submission]{}, err
	}

	orderBy := ValidateSortField(filter.OrderBy, SubmissionSortFields, "submitted_at")
	orderDir := ValidateSortOrder(filter.OrderDir)

	var rows []models.SubmissionModel
	err := query.
		Order(orderBy + " " + orderDir).
		Offset(filter.Offset()).
		Limit(filter.PageSize).
		Find(&rows).Error
	if err != nil {
		return shared.Paginated[intake.Submission]{}, err
	}

	items := make([]intake.Submission, 0, len(rows))
	for i := range rows {
		s, err := rows[i].ToDomain()
		if err != nil {
			return shared.Paginated[intake.Submission]{}, err
		}
		items = append(items, *s)
	}
	return shared.NewPaginated(items, total, filter.Page, filter.PageSize), nil
}

// Ensure GormSubmissionArchive implements SubmissionArchive
var _ intake.SubmissionArchive = (*GormSubmissionArchive)(nil)
