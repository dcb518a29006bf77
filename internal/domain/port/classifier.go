package port

import "context"

// Classifier интерфейс обученного классификатора
type Classifier interface {
	// Classify возвращает распределение вероятностей по меткам Labels().
	// Длина input должна совпадать с размером входа модели.
	Classify(ctx context.Context, input []float32) ([]float32, error)

	// Labels возвращает метки классов в порядке выходов модели
	Labels() []string
}

// Preprocessor интерфейс подготовки изображения к инференсу
type Preprocessor interface {
	// Preprocess декодирует изображение и превращает его в нормализованный тензор
	Preprocess(ctx context.Context, imageData []byte) ([]float32, error)
}
