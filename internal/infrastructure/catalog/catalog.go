// Package catalog хранит справочник болезней листа кешью.
//
// Справочник встроен в бинарник (diseases.yaml) и может быть заменён
// внешним YAML-файлом того же формата.
package catalog

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"leaf-doctor/internal/domain/entity"
	"leaf-doctor/internal/domain/port"
)

//go:embed diseases.yaml
var embedded []byte

type record struct {
	Label       string   `yaml:"label"`
	Description string   `yaml:"description"`
	Treatment   []string `yaml:"treatment"`
	Image       string   `yaml:"image"`
}

type document struct {
	Diseases []record `yaml:"diseases"`
}

// Catalog потокобезопасный справочник. Содержимое можно заменить на лету.
type Catalog struct {
	mu       sync.RWMutex
	diseases []entity.Disease
	index    map[string]int
}

// New создаёт справочник из готового списка.
func New(diseases []entity.Disease) *Catalog {
	c := &Catalog{}
	c.Replace(diseases)
	return c
}

// Default возвращает встроенный справочник.
func Default() (*Catalog, error) {
	diseases, err := Parse(embedded)
	if err != nil {
		return nil, fmt.Errorf("embedded catalog: %w", err)
	}
	return New(diseases), nil
}

// Load читает справочник из файла; пустой путь означает встроенный справочник.
func Load(path string) (*Catalog, error) {
	if path == "" {
		return Default()
	}
	diseases, err := ReadFile(path)
	if err != nil {
		return nil, err
	}
	return New(diseases), nil
}

// ReadFile читает и проверяет YAML-файл справочника.
func ReadFile(path string) ([]entity.Disease, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog %s: %w", path, err)
	}
	diseases, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parse catalog %s: %w", path, err)
	}
	return diseases, nil
}

// Parse разбирает YAML и проверяет записи: метка и описание обязательны,
// метки уникальны, класс non-leaf не может быть болезнью.
func Parse(data []byte) ([]entity.Disease, error) {
	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	if len(doc.Diseases) == 0 {
		return nil, errors.New("catalog has no diseases")
	}

	seen := make(map[string]bool, len(doc.Diseases))
	diseases := make([]entity.Disease, 0, len(doc.Diseases))
	for i, r := range doc.Diseases {
		label := strings.TrimSpace(r.Label)
		switch {
		case label == "":
			return nil, fmt.Errorf("disease #%d: label is required", i+1)
		case label == entity.NonLeafLabel:
			return nil, fmt.Errorf("disease #%d: %q is not a disease", i+1, label)
		case strings.TrimSpace(r.Description) == "":
			return nil, fmt.Errorf("disease %q: description is required", label)
		case seen[label]:
			return nil, fmt.Errorf("disease %q is declared twice", label)
		}
		seen[label] = true

		diseases = append(diseases, entity.Disease{
			Label:       label,
			Description: strings.TrimSpace(r.Description),
			Treatment:   append([]string(nil), r.Treatment...),
			Image:       strings.TrimSpace(r.Image),
		})
	}

	return diseases, nil
}

// Lookup ищет болезнь по метке класса.
func (c *Catalog) Lookup(label string) (entity.Disease, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	i, ok := c.index[label]
	if !ok {
		return entity.Disease{}, false
	}
	return c.diseases[i], true
}

// All возвращает копию списка болезней.
func (c *Catalog) All() []entity.Disease {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]entity.Disease, len(c.diseases))
	copy(out, c.diseases)
	return out
}

// Len количество записей.
func (c *Catalog) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.diseases)
}

// Replace атомарно подменяет содержимое справочника.
func (c *Catalog) Replace(diseases []entity.Disease) {
	index := make(map[string]int, len(diseases))
	for i, d := range diseases {
		index[d.Label] = i
	}

	c.mu.Lock()
	c.diseases = append([]entity.Disease(nil), diseases...)
	c.index = index
	c.mu.Unlock()
}

// Reload перечитывает файл. При ошибке прежнее содержимое сохраняется.
func (c *Catalog) Reload(path string) error {
	diseases, err := ReadFile(path)
	if err != nil {
		return err
	}
	c.Replace(diseases)
	return nil
}

var _ port.DiseaseCatalog = (*Catalog)(nil)
