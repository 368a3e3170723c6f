// Package storage persists the draw collection and derived analysis
// documents as whole-file JSON. Files are rewritten in full on every
// change; there is no in-place patching of individual records.
package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/eedraws/draws-backend/models"
	"github.com/eedraws/draws-backend/shared"
	"github.com/sirupsen/logrus"
)

const (
	collectionFile   = "EE.json"
	analysisFile     = "analysis.json"
	timeAnalysisFile = "time_analysis.json"
)

// DrawStore reads and writes the data directory. Single-writer access is
// assumed; concurrent invocations must be serialized by the caller.
type DrawStore struct {
	dataDir string
	logger  *logrus.Entry
}

// NewDrawStore creates a store rooted at dataDir, creating it if needed.
func NewDrawStore(dataDir string) (*DrawStore, error) {
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, shared.WrapError(err, shared.ErrorCategoryPersistence, "DATA_DIR_CREATE", "draw-store", "NewDrawStore", false)
	}
	return &DrawStore{
		dataDir: dataDir,
		logger:  logrus.WithField("component", "DrawStore"),
	}, nil
}

// CollectionPath returns the path of the persisted draw collection.
func (s *DrawStore) CollectionPath() string {
	return filepath.Join(s.dataDir, collectionFile)
}

// LoadCollection reads the persisted draw collection. A missing file is not
// an error: it returns (nil, nil) so the first run starts from an empty set.
func (s *DrawStore) LoadCollection() (*models.DrawCollection, error) {
	data, err := os.ReadFile(s.CollectionPath())
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, shared.WrapError(err, shared.ErrorCategoryPersistence, "COLLECTION_READ", "draw-store", "LoadCollection", false)
	}

	var collection models.DrawCollection
	if err := json.Unmarshal(data, &collection); err != nil {
		return nil, shared.WrapError(err, shared.ErrorCategoryPersistence, "COLLECTION_DECODE", "draw-store", "LoadCollection", false)
	}

	s.logger.WithField("draw_count", len(collection.Rounds)).Debug("Loaded existing draw collection")
	return &collection, nil
}

// ReplaceCollection overwrites the whole persisted collection atomically.
func (s *DrawStore) ReplaceCollection(collection models.DrawCollection) error {
	return s.writeJSON(s.CollectionPath(), collection, "ReplaceCollection")
}

// WriteAnalysis fully regenerates the summary-statistics document.
func (s *DrawStore) WriteAnalysis(stats models.SummaryStats) error {
	return s.writeJSON(filepath.Join(s.dataDir, analysisFile), stats, "WriteAnalysis")
}

// WriteTimeAnalysis fully regenerates the time-distribution document.
func (s *DrawStore) WriteTimeAnalysis(stats models.TimeStats) error {
	return s.writeJSON(filepath.Join(s.dataDir, timeAnalysisFile), stats, "WriteTimeAnalysis")
}

// LoadAnalysis reads the summary-statistics document, if present.
func (s *DrawStore) LoadAnalysis() (*models.SummaryStats, error) {
	var stats models.SummaryStats
	ok, err := s.readJSON(filepath.Join(s.dataDir, analysisFile), &stats, "LoadAnalysis")
	if err != nil || !ok {
		return nil, err
	}
	return &stats, nil
}

// LoadTimeAnalysis reads the time-distribution document, if present.
func (s *DrawStore) LoadTimeAnalysis() (*models.TimeStats, error) {
	var stats models.TimeStats
	ok, err := s.readJSON(filepath.Join(s.dataDir, timeAnalysisFile), &stats, "LoadTimeAnalysis")
	if err != nil || !ok {
		return nil, err
	}
	return &stats, nil
}

func (s *DrawStore) readJSON(path string, out any, operation string) (bool, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return false, nil
		}
		return false, shared.WrapError(err, shared.ErrorCategoryPersistence, "DOCUMENT_READ", "draw-store", operation, false)
	}
	if err := json.Unmarshal(data, out); err != nil {
		return false, shared.WrapError(err, shared.ErrorCategoryPersistence, "DOCUMENT_DECODE", "draw-store", operation, false)
	}
	return true, nil
}

// writeJSON writes a document via temp-file-then-rename so readers never
// observe a partially written file.
func (s *DrawStore) writeJSON(path string, document any, operation string) error {
	data, err := json.MarshalIndent(document, "", "  ")
	if err != nil {
		return shared.WrapError(err, shared.ErrorCategoryPersistence, "DOCUMENT_ENCODE", "draw-store", operation, false)
	}
	data = append(data, '\n')

	tmp, err := os.CreateTemp(s.dataDir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return shared.WrapError(err, shared.ErrorCategoryPersistence, "TEMP_CREATE", "draw-store", operation, false)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return shared.WrapError(err, shared.ErrorCategoryPersistence, "TEMP_WRITE", "draw-store", operation, false)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return shared.WrapError(err, shared.ErrorCategoryPersistence, "TEMP_CLOSE", "draw-store", operation, false)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return shared.WrapError(err, shared.ErrorCategoryPersistence, "DOCUMENT_RENAME", "draw-store", operation, false)
	}

	s.logger.WithField("path", path).Debugf("Wrote %s", filepath.Base(path))
	return nil
}

// String describes the store location for diagnostics.
func (s *DrawStore) String() string {
	return fmt.Sprintf("DrawStore(%s)", s.dataDir)
}
