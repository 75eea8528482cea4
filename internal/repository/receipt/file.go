package receipt

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// Receipt records what the last successful install produced.
type Receipt struct {
	// Version is the installed release version.
	Version string `json:"version"`
	// PreviousVersion is the version the install replaced, when known.
	PreviousVersion string `json:"previous_version,omitempty"`
	// Asset is the artifact name the binary came from.
	Asset string `json:"asset"`
	// InstalledAt is when the install transition completed.
	InstalledAt time.Time `json:"installed_at"`
}

// Repository defines persistence operations for install receipts.
type Repository interface {
	Load(ctx context.Context) (*Receipt, error)
	Save(ctx context.Context, rec *Receipt) error
}

// ErrNotFound is returned when no receipt has been written yet.
var ErrNotFound = errors.New("receipt not found")

// filePermissions restricts the receipt to the installing user.
const filePermissions = 0o600

// FileRepository persists the receipt to a JSON file on disk.
type FileRepository struct {
	// path is the filesystem location of the JSON receipt.
	path string
	// mu protects concurrent access to the receipt file.
	mu sync.Mutex
}

// NewFileRepository creates a repository that reads/writes JSON at the provided path.
func NewFileRepository(path string) *FileRepository {
	return &FileRepository{
		path: filepath.Clean(path),
	}
}

// Load reads the receipt from disk.
func (r *FileRepository) Load(_ context.Context) (*Receipt, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	contents, err := os.ReadFile(r.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrNotFound
		}

		return nil, fmt.Errorf("read receipt: %w", err)
	}

	var rec Receipt
	if err = json.Unmarshal(contents, &rec); err != nil {
		return nil, fmt.Errorf("decode receipt: %w", err)
	}

	return &rec, nil
}

// Save writes the receipt to disk, creating its directory when missing.
func (r *FileRepository) Save(_ context.Context, rec *Receipt) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return fmt.Errorf("encode receipt: %w", err)
	}

	if err = os.MkdirAll(filepath.Dir(r.path), 0o755); err != nil {
		return fmt.Errorf("create receipt directory: %w", err)
	}

	if err = os.WriteFile(r.path, data, filePermissions); err != nil {
		return fmt.Errorf("write receipt: %w", err)
	}

	return nil
}
