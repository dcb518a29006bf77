package app

import (
	"fmt"
	"strings"

	"leaf-doctor/internal/domain/entity"
	"leaf-doctor/internal/domain/port"
)

// DiseaseService отдаёт справочник болезней для страницы "Penyakit".
type DiseaseService struct {
	catalog port.DiseaseCatalog
}

func NewDiseaseService(catalog port.DiseaseCatalog) *DiseaseService {
	return &DiseaseService{catalog: catalog}
}

// List возвращает все болезни в порядке справочника.
func (s *DiseaseService) List() []entity.Disease {
	return s.catalog.All()
}

// Get ищет болезнь по метке ("Cashew red rust") или по slug ("cashew-red-rust").
func (s *DiseaseService) Get(key string) (entity.Disease, error) {
	if d, ok := s.catalog.Lookup(key); ok {
		return d, nil
	}

	slug := entity.Slugify(key)
	for _, d := range s.catalog.All() {
		if d.Slug() == slug || strings.EqualFold(d.Label, key) {
			return d, nil
		}
	}

	return entity.Disease{}, fmt.Errorf("%w: %q", entity.ErrDiseaseNotFound, key)
}
