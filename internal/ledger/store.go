package ledger

import (
	"fmt"
	"os"
	"path/filepath"
	"reactledger/internal/ledger/interfaces"
	"reactledger/internal/models"
	"reactledger/internal/providers"
	"reactledger/internal/structures"
	"strconv"
	"sync"
	"time"

	json "github.com/goccy/go-json"
)

// FileStore keeps the ledger in a single JSON snapshot file. Saves go through
// a uniquely named temp file and rename, so readers only ever see a complete
// snapshot, even with several processes saving to the same path.
type FileStore struct {
	path       string
	compressor interfaces.CompressorInterface
	logger     providers.Logger
	metrics    providers.MetricsProviderInterface
	saveMu     sync.Mutex
}

func NewFileStore(conf *structures.Config, compressor interfaces.CompressorInterface, logger providers.Logger, metrics providers.MetricsProviderInterface) interfaces.StoreInterface {
	return &FileStore{
		path:       conf.Persistence.FilePath,
		compressor: compressor,
		logger:     logger,
		metrics:    metrics,
	}
}

// Load never fails: a missing, unreadable or invalid snapshot yields an
// empty ledger.
func (f *FileStore) Load() models.Ledger {
	start := time.Now()
	defer func() { f.metrics.ObservePersistenceDuration("load", time.Since(start)) }()

	data, err := os.ReadFile(f.path)
	if err != nil {
		if !os.IsNotExist(err) {
			f.logger.Warnf(providers.TypeApp, "Unable to read ledger %s, starting fresh: %s", f.path, err)
		}
		return models.Ledger{}
	}

	decompressed, err := f.compressor.Decompress(data)
	if err != nil {
		f.logger.Warnf(providers.TypeApp, "Corrupt ledger %s, starting fresh: %s", f.path, err)
		return models.Ledger{}
	}

	var ledger models.Ledger
	if err := json.Unmarshal(decompressed, &ledger); err != nil {
		f.logger.Warnf(providers.TypeApp, "Inconsistent ledger %s, starting fresh: %s", f.path, err)
		return models.Ledger{}
	}
	if ledger == nil {
		return models.Ledger{}
	}

	ledger.Normalize()
	if err := ledger.Validate(); err != nil {
		f.logger.Warnf(providers.TypeApp, "Invalid ledger %s, starting fresh: %s", f.path, err)
		return models.Ledger{}
	}
	return ledger
}

func (f *FileStore) Save(ledger models.Ledger) error {
	f.saveMu.Lock()
	defer f.saveMu.Unlock()

	start := time.Now()
	defer func() { f.metrics.ObservePersistenceDuration("save", time.Since(start)) }()

	if ledger == nil {
		ledger = models.Ledger{}
	}
	jsonData, err := json.Marshal(ledger)
	if err != nil {
		return fmt.Errorf("encode ledger: %w", err)
	}
	data, err := f.compressor.Compress(jsonData)
	if err != nil {
		return fmt.Errorf("compress ledger: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(f.path), 0o755); err != nil {
		return fmt.Errorf("create ledger dir: %w", err)
	}

	dir, base := filepath.Split(f.path)
	file, err := os.CreateTemp(filepath.Clean(dir), base+".*.tmp")
	if err != nil {
		return err
	}
	tmpFile := file.Name()

	_, err = file.Write(data)
	if err != nil {
		file.Close()
		os.Remove(tmpFile)
		return err
	}

	if err = file.Sync(); err != nil {
		file.Close()
		os.Remove(tmpFile)
		return err
	}

	if err = file.Close(); err != nil {
		os.Remove(tmpFile)
		return err
	}

	if err = os.Rename(tmpFile, f.path); err != nil {
		os.Remove(tmpFile)
		return err
	}
	return nil
}

// Version changes whenever a new snapshot replaces the file. It is empty
// when no snapshot exists.
func (f *FileStore) Version() string {
	info, err := os.Stat(f.path)
	if err != nil {
		return ""
	}
	return strconv.FormatInt(info.ModTime().UnixNano(), 36) + "-" + strconv.FormatInt(info.Size(), 36)
}
