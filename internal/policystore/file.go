// internal/policystore/file.go
package policystore

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"policy-assistant/internal/common/logger"
	"policy-assistant/internal/models"
)

// keyedRecord pairs a product key with its policy record, preserving the
// order the records appear in the source file. encoding/json maps do not
// keep key order, so the file is decoded token by token.
type keyedRecord struct {
	Key    string
	Record *models.PolicyRecord
}

// FileStore serves policy records and product metadata from JSON files
// loaded into memory at construction time. Read-only.
type FileStore struct {
	records  []keyedRecord
	products map[string]models.ProductInfo
	logger   logger.Logger
}

// NewFileStore loads the user details file eagerly. The product mapping path
// may be empty, in which case product lookups always miss.
func NewFileStore(userDetailsPath, productMappingPath string, log logger.Logger) (*FileStore, error) {
	s := &FileStore{
		products: map[string]models.ProductInfo{},
		logger:   log.WithFields(map[string]interface{}{"component": "policystore"}),
	}

	records, err := loadOrderedRecords(userDetailsPath)
	if err != nil {
		return nil, fmt.Errorf("load user details: %w", err)
	}
	s.records = records

	if productMappingPath != "" {
		data, err := os.ReadFile(productMappingPath)
		if err != nil {
			s.logger.Warn("product mapping not loaded", map[string]interface{}{
				"path":  productMappingPath,
				"error": err.Error(),
			})
		} else if err := json.Unmarshal(data, &s.products); err != nil {
			return nil, fmt.Errorf("parse product mapping: %w", err)
		}
	}

	s.logger.Info("policy store loaded", map[string]interface{}{
		"records":  len(s.records),
		"products": len(s.products),
	})
	return s, nil
}

// loadOrderedRecords decodes a top-level JSON object while preserving the
// order of its keys.
func loadOrderedRecords(path string) ([]keyedRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	dec := json.NewDecoder(f)

	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, fmt.Errorf("expected top-level object, got %v", tok)
	}

	var records []keyedRecord
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key, ok := keyTok.(string)
		if !ok {
			return nil, fmt.Errorf("expected object key, got %v", keyTok)
		}

		var rec models.PolicyRecord
		if err := dec.Decode(&rec); err != nil {
			return nil, fmt.Errorf("record %q: %w", key, err)
		}
		records = append(records, keyedRecord{Key: key, Record: &rec})
	}

	return records, nil
}

// FindPolicy scans records in file order and returns the first match.
func (s *FileStore) FindPolicy(_ context.Context, q Query) (*models.PolicyRecord, error) {
	if q.Empty() {
		return nil, ErrNotFound
	}
	for _, kr := range s.records {
		if matches(kr.Record, q) {
			return kr.Record, nil
		}
	}
	return nil, ErrNotFound
}

// ProductInfo looks up a product by code, falling back to a case-insensitive
// name substring search.
func (s *FileStore) ProductInfo(codeOrName string) (models.ProductInfo, bool) {
	if info, ok := s.products[codeOrName]; ok {
		return info, true
	}

	needle := strings.ToLower(codeOrName)
	for _, info := range s.products {
		if strings.Contains(strings.ToLower(info.Name), needle) {
			return info, true
		}
	}
	return models.ProductInfo{}, false
}
