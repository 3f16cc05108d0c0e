package storage

import (
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strconv"
	"strings"

	logger "restaurant-crm-api/src/infrastructure/logger"

	securejoin "github.com/cyphar/filepath-securejoin"
	"go.uber.org/zap"
)

// LocalStorage keeps uploaded media on disk under one root, one directory per restaurant.
type LocalStorage struct {
	root          string
	publicBaseURL string
	Logger        *logger.Logger
}

func NewLocalStorage(root, publicBaseURL string, loggerInstance *logger.Logger) *LocalStorage {
	return &LocalStorage{
		root:          root,
		publicBaseURL: strings.TrimRight(publicBaseURL, "/"),
		Logger:        loggerInstance,
	}
}

func (s *LocalStorage) Root() string {
	return s.root
}

// Save writes data as <root>/<restaurantID>/<name> and returns the path relative to root.
func (s *LocalStorage) Save(restaurantID int, name string, data []byte) (string, error) {
	rel := path.Join(strconv.Itoa(restaurantID), name)
	full, err := securejoin.SecureJoin(s.root, rel)
	if err != nil {
		return "", fmt.Errorf("resolve media path: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return "", fmt.Errorf("create media directory: %w", err)
	}
	if err := os.WriteFile(full, data, 0o644); err != nil {
		s.Logger.Error("Error writing media file", zap.Error(err), zap.String("path", full))
		return "", fmt.Errorf("write media file: %w", err)
	}
	return rel, nil
}

// Open resolves a relative path inside root; traversal attempts stay inside root.
func (s *LocalStorage) Open(rel string) (*os.File, error) {
	full, err := securejoin.SecureJoin(s.root, rel)
	if err != nil {
		return nil, err
	}
	return os.Open(full)
}

// URL is the public address the gateway fetches the file from.
func (s *LocalStorage) URL(rel string) string {
	return s.publicBaseURL + "/media/" + rel
}
