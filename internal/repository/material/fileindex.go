package material

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/google/renameio/v2"
	"github.com/liftsign/controlplane/internal/domains/material"
)

// indexDocument is the on-disk shape of the JSON material index.
type indexDocument struct {
	Items []material.Material `json:"items"`
}

// FileMaterialRepo is the fallback store used when the database is
// unavailable at startup. All mutations go through a single mutex and the
// index file is replaced atomically, so a crash mid-write can never leave a
// corrupt index behind.
type FileMaterialRepo struct {
	mu        sync.Mutex
	indexPath string
}

func NewFileMaterialRepo(indexPath string) (*FileMaterialRepo, error) {
	r := &FileMaterialRepo{indexPath: indexPath}
	if err := os.MkdirAll(filepath.Dir(indexPath), 0o755); err != nil {
		return nil, fmt.Errorf("failed to prepare index dir: %w", err)
	}
	if _, err := os.Stat(indexPath); os.IsNotExist(err) {
		if err := r.write(&indexDocument{Items: []material.Material{}}); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Create implements material.MaterialRepository. New items go to the front
// so listing is newest first, matching the GORM store's ordering.
func (r *FileMaterialRepo) Create(m *material.Material) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	doc, err := r.read()
	if err != nil {
		return err
	}
	doc.Items = append([]material.Material{*m}, doc.Items...)
	return r.write(doc)
}

// GetByID implements material.MaterialRepository
func (r *FileMaterialRepo) GetByID(id string) (*material.Material, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	doc, err := r.read()
	if err != nil {
		return nil, err
	}
	for i := range doc.Items {
		if doc.Items[i].ID == id {
			m := doc.Items[i]
			return &m, nil
		}
	}
	return nil, material.ErrMaterialNotFound
}

// List implements material.MaterialRepository
func (r *FileMaterialRepo) List(offset, limit int) ([]material.Material, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	doc, err := r.read()
	if err != nil {
		return nil, 0, err
	}
	total := int64(len(doc.Items))
	if offset >= len(doc.Items) {
		return []material.Material{}, total, nil
	}
	end := offset + limit
	if end > len(doc.Items) {
		end = len(doc.Items)
	}
	out := make([]material.Material, end-offset)
	copy(out, doc.Items[offset:end])
	return out, total, nil
}

// Update implements material.MaterialRepository
func (r *FileMaterialRepo) Update(m *material.Material) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	doc, err := r.read()
	if err != nil {
		return err
	}
	for i := range doc.Items {
		if doc.Items[i].ID == m.ID {
			doc.Items[i] = *m
			return r.write(doc)
		}
	}
	return material.ErrMaterialNotFound
}

// Delete implements material.MaterialRepository
func (r *FileMaterialRepo) Delete(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	doc, err := r.read()
	if err != nil {
		return err
	}
	for i := range doc.Items {
		if doc.Items[i].ID == id {
			doc.Items = append(doc.Items[:i], doc.Items[i+1:]...)
			return r.write(doc)
		}
	}
	return material.ErrMaterialNotFound
}

func (r *FileMaterialRepo) read() (*indexDocument, error) {
	raw, err := os.ReadFile(r.indexPath)
	if err != nil {
		if os.IsNotExist(err) {
			return &indexDocument{Items: []material.Material{}}, nil
		}
		return nil, fmt.Errorf("failed to read material index: %w", err)
	}
	if len(raw) == 0 {
		return &indexDocument{Items: []material.Material{}}, nil
	}
	var doc indexDocument
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("failed to decode material index: %w", err)
	}
	return &doc, nil
}

func (r *FileMaterialRepo) write(doc *indexDocument) error {
	raw, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode material index: %w", err)
	}
	if err := renameio.WriteFile(r.indexPath, raw, 0o644); err != nil {
		return fmt.Errorf("failed to replace material index: %w", err)
	}
	return nil
}
