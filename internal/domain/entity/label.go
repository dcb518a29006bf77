package entity

// NonLeafLabel класс-заглушка для изображений, на которых нет листа кешью.
const NonLeafLabel = "non-leaf"

// DefaultLabels метки классов в порядке выходов модели.
var DefaultLabels = []string{
	"Cashew anthracnose",
	"Cashew healthy",
	"Cashew leaf miner",
	"Cashew red rust",
	NonLeafLabel,
}

// DefaultThreshold минимальная уверенность, при которой предсказание принимается.
const DefaultThreshold float32 = 0.6
