package repository

import (
	"github.com/google/uuid"
	"github.com/totosugito/sicerdas-sub001/internal/model"
	"gorm.io/gorm"
)

type PackageRepository interface {
	Create(pkg *model.Package) error
	FindActiveByID(id uuid.UUID) (*model.Package, error)
	FindQuestionOrder(packageID uuid.UUID) ([]model.PackageQuestion, error)
}

type packageRepository struct {
	db *gorm.DB
}

func NewPackageRepository(db *gorm.DB) PackageRepository {
	return &packageRepository{db: db}
}

func (r *packageRepository) Create(pkg *model.Package) error {
	// GORM creates the associated PackageQuestion rows when pkg.Questions is populated.
	return r.db.Create(pkg).Error
}

func (r *packageRepository) FindActiveByID(id uuid.UUID) (*model.Package, error) {
	var pkg model.Package
	err := r.db.Where("id = ? AND is_active = ?", id, true).First(&pkg).Error
	if err != nil {
		return nil, err
	}
	return &pkg, nil
}

func (r *packageRepository) FindQuestionOrder(packageID uuid.UUID) ([]model.PackageQuestion, error) {
	var questions []model.PackageQuestion
	err := r.db.Where("package_id = ?", packageID).Order("question_order ASC").Find(&questions).Error
	return questions, err
}
