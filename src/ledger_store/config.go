package ledger_store

import "path/filepath"

const (
	FileExtension   = ".toml"
	DefaultFileName = "ledger" + FileExtension
)

// LedgerStoreConfig controls where and how a FileStore writes ledger state.
type LedgerStoreConfig struct {
	StorageDir string // directory holding the ledger file
	FileName   string // ledger file name inside StorageDir
	Verbose    bool   // when true, log every save and load
}

// DefaultConfig returns a LedgerStoreConfig writing DefaultFileName under
// storageDir.
func DefaultConfig(storageDir string) LedgerStoreConfig {
	return LedgerStoreConfig{
		StorageDir: storageDir,
		FileName:   DefaultFileName,
		Verbose:    false,
	}
}

func (c LedgerStoreConfig) path() string {
	name := c.FileName
	if name == "" {
		name = DefaultFileName
	}
	return filepath.Join(c.StorageDir, name)
}
