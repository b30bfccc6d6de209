package service

import (
	"fmt"

	"github.com/totosugito/sicerdas-sub001/internal/dto"
	"github.com/totosugito/sicerdas-sub001/internal/model"
	"github.com/totosugito/sicerdas-sub001/internal/repository"
)

type AdminPackageService interface {
	CreatePackage(req dto.CreatePackageRequest) (*dto.PackageResponseDTO, error)
}

type adminPackageService struct {
	packageRepo repository.PackageRepository
}

func NewAdminPackageService(packageRepo repository.PackageRepository) AdminPackageService {
	return &adminPackageService{packageRepo: packageRepo}
}

// CreatePackage publishes a new exam package with its question assignments.
// Question orders must be unique within the package since they drive the
// answer-sheet layout snapshotted at session start.
func (s *adminPackageService) CreatePackage(req dto.CreatePackageRequest) (*dto.PackageResponseDTO, error) {
	seen := make(map[int]bool, len(req.Questions))
	for _, q := range req.Questions {
		if seen[q.QuestionOrder] {
			return nil, fmt.Errorf("%w: order %d", ErrDuplicateOrder, q.QuestionOrder)
		}
		seen[q.QuestionOrder] = true
	}

	pkg := model.Package{
		Title:           req.Title,
		Description:     req.Description,
		DurationMinutes: req.DurationMinutes,
		IsActive:        true,
		Questions:       make([]model.PackageQuestion, 0, len(req.Questions)),
	}
	for _, q := range req.Questions {
		pkg.Questions = append(pkg.Questions, model.PackageQuestion{
			QuestionID:    q.QuestionID,
			QuestionOrder: q.QuestionOrder,
		})
	}

	if err := s.packageRepo.Create(&pkg); err != nil {
		return nil, fmt.Errorf("creating package: %w", err)
	}

	resp := dto.PackageResponseDTO{
		ID:              pkg.ID,
		Title:           pkg.Title,
		Description:     pkg.Description,
		DurationMinutes: pkg.DurationMinutes,
		IsActive:        pkg.IsActive,
		CreatedAt:       pkg.CreatedAt,
	}
	for _, q := range pkg.Questions {
		resp.Questions = append(resp.Questions, dto.PackageQuestionAssignment{
			QuestionID:    q.QuestionID,
			QuestionOrder: q.QuestionOrder,
		})
	}
	return &resp, nil
}
