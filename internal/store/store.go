package store

import (
	"comment-ranker/internal/config"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

type Store interface {
	Save(data interface{}, filename string) error
}

type CSVer interface {
	ToCSV() []string
	CSVHeader() []string
}

type JsonStore struct {
	Dir string
	mu  sync.Mutex
}

func NewJsonStore(dir string) *JsonStore {
	return &JsonStore{Dir: dir}
}

func (s *JsonStore) Save(data interface{}, filename string) error {
	if err := os.MkdirAll(s.Dir, 0755); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	path := filepath.Join(s.Dir, filename)
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return err
	}
	defer file.Close()

	encoder := json.NewEncoder(file)
	encoder.SetEscapeHTML(false)
	return encoder.Encode(data)
}

type CsvStore struct {
	Dir string
	mu  sync.Mutex
}

func NewCsvStore(dir string) *CsvStore {
	return &CsvStore{Dir: dir}
}

func (s *CsvStore) Save(data interface{}, filename string) error {
	item, ok := data.(CSVer)
	if !ok {
		return fmt.Errorf("data does not implement CSVer interface")
	}

	if err := os.MkdirAll(s.Dir, 0755); err != nil {
		return err
	}

	path := filepath.Join(s.Dir, filename)

	s.mu.Lock()
	defer s.mu.Unlock()

	fileExists := false
	if _, err := os.Stat(path); err == nil {
		fileExists = true
	}

	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return err
	}
	defer file.Close()

	// Write BOM for Excel compatibility
	if !fileExists {
		if _, err := file.WriteString("\xEF\xBB\xBF"); err != nil {
			return err
		}
	}

	writer := csv.NewWriter(file)
	if !fileExists {
		if err := writer.Write(item.CSVHeader()); err != nil {
			return err
		}
	}
	if err := writer.Write(item.ToCSV()); err != nil {
		return err
	}
	writer.Flush()
	return writer.Error()
}

// RunsDir is where the file backend writes, {DATA_DIR}/afreeca.
func RunsDir() string {
	dataDir := strings.TrimSpace(config.AppConfig.DataDir)
	if dataDir == "" {
		dataDir = "data"
	}
	return filepath.Join(dataDir, "afreeca")
}

func fileExt() string {
	if config.AppConfig.SaveDataOption == "csv" {
		return "csv"
	}
	return "json"
}

func GetStore() Store {
	path := RunsDir()
	if fileExt() == "csv" {
		return NewCsvStore(path)
	}
	return NewJsonStore(path)
}
