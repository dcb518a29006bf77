package port

import "leaf-doctor/internal/domain/entity"

// DiseaseCatalog интерфейс справочника болезней
type DiseaseCatalog interface {
	// Lookup ищет справку по метке класса
	Lookup(label string) (entity.Disease, bool)

	// All возвращает все записи в порядке объявления
	All() []entity.Disease
}
