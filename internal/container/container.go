package container

import (
	"log/slog"

	app "leaf-doctor/internal/application"
	"leaf-doctor/internal/domain/port"
)

// Container сервисы приложения, собранные из инфраструктуры.
type Container struct {
	UserService      *app.UserService
	DiagnosisService *app.DiagnosisService
	DiseaseService   *app.DiseaseService
}

// Deps зависимости из слоя инфраструктуры. Preprocessor и Classifier
// равны nil, если модель не загружена: диагностика тогда недоступна.
type Deps struct {
	Users        port.UserRepository
	Preprocessor port.Preprocessor
	Classifier   port.Classifier
	Catalog      port.DiseaseCatalog
	Observer     port.DiagnosisObserver
	Threshold    float32
	Logger       *slog.Logger
}

func New(deps Deps) *Container {
	return &Container{
		UserService: app.NewUserService(deps.Users),
		DiagnosisService: app.NewDiagnosisService(
			deps.Preprocessor,
			deps.Classifier,
			deps.Catalog,
			deps.Observer,
			deps.Threshold,
			deps.Logger,
		),
		DiseaseService: app.NewDiseaseService(deps.Catalog),
	}
}
