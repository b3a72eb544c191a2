package ledger_store

import (
	"errors"
	"fmt"
	"os"
	"sync"

	"github.com/BurntSushi/toml"
	"github.com/danmuck/dps_ledger/src/chain"
	logs "github.com/danmuck/smplog"
	"github.com/segmentio/ksuid"
)

// FileStore keeps a ledger's chain and pending queue in a single TOML file.
type FileStore struct {
	config LedgerStoreConfig
	lock   sync.Mutex
	lastID string // save_id of the file last read or written
}

var _ chain.Store = (*FileStore)(nil)

// InitFileStore creates a FileStore with the default file name.
func InitFileStore(storageDir string) (*FileStore, error) {
	return InitFileStoreWithConfig(DefaultConfig(storageDir))
}

// InitFileStoreWithConfig creates the storage directory if needed.
func InitFileStoreWithConfig(cfg LedgerStoreConfig) (*FileStore, error) {
	if cfg.StorageDir == "" {
		cfg.StorageDir = "."
	}
	if err := os.MkdirAll(cfg.StorageDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create storage directory: %w", err)
	}
	return &FileStore{config: cfg}, nil
}

func (fs *FileStore) Path() string {
	return fs.config.path()
}

// LastSaveID returns the save_id of the ledger file most recently loaded or
// saved by this store, or "" if there is none yet.
func (fs *FileStore) LastSaveID() string {
	fs.lock.Lock()
	defer fs.lock.Unlock()
	return fs.lastID
}

// Load reads the ledger file. A missing file is not an error: it yields an
// empty State so the caller starts from genesis.
func (fs *FileStore) Load() (chain.State, error) {
	fs.lock.Lock()
	defer fs.lock.Unlock()

	path := fs.Path()
	var file ledgerFile
	if _, err := toml.DecodeFile(path, &file); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			if fs.config.Verbose {
				logs.Infof("no ledger file at %s", path)
			}
			return chain.State{}, nil
		}
		return chain.State{}, fmt.Errorf("failed to decode ledger file %s: %w", path, err)
	}

	state, err := file.state()
	if err != nil {
		return chain.State{}, fmt.Errorf("invalid ledger file %s: %w", path, err)
	}
	fs.lastID = file.SaveID
	if fs.config.Verbose {
		logs.Infof("loaded ledger %s from %s: %d block(s), %d pending", file.SaveID, path, len(state.Chain), len(state.Pending))
	}
	return state, nil
}

// Save atomically replaces the ledger file: it writes a temp file in the
// same directory, then renames it over the old one.
func (fs *FileStore) Save(state chain.State) error {
	fs.lock.Lock()
	defer fs.lock.Unlock()

	if err := os.MkdirAll(fs.config.StorageDir, 0755); err != nil {
		return fmt.Errorf("failed to create storage directory: %w", err)
	}

	finalPath := fs.Path()
	tmpFile, err := os.CreateTemp(fs.config.StorageDir, "ledger-*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp ledger file: %w", err)
	}
	tmpPath := tmpFile.Name()

	cleanupTmp := true
	defer func() {
		if cleanupTmp {
			_ = os.Remove(tmpPath)
		}
	}()

	saveID := ksuid.New()
	encoder := toml.NewEncoder(tmpFile)
	encoder.Indent = "    "
	if err := encoder.Encode(toLedgerFile(state, saveID)); err != nil {
		_ = tmpFile.Close()
		return fmt.Errorf("failed to encode ledger: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("failed to close temp ledger file: %w", err)
	}

	if err := os.Rename(tmpPath, finalPath); err != nil {
		return fmt.Errorf("failed to atomically publish ledger file: %w", err)
	}
	cleanupTmp = false
	fs.lastID = saveID.String()

	if fs.config.Verbose {
		logs.Debugf("saved ledger %s to %s: %d block(s), %d pending", fs.lastID, finalPath, len(state.Chain), len(state.Pending))
	}
	return nil
}

// Cleanup removes the ledger file.
func (fs *FileStore) Cleanup() error {
	fs.lock.Lock()
	defer fs.lock.Unlock()

	if err := os.Remove(fs.Path()); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete ledger file: %w", err)
	}
	return nil
}
