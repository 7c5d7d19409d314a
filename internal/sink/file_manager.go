package sink

import (
	"errors"
	"fmt"
	"os"

	"onlinesync/internal/providers"
)

// FileManager owns the on-disk side of the CSV store: reads, atomic
// replacement and compressed backups of the previous version.
type FileManager struct {
	compressor CompressorInterface
	logger     providers.Logger
	mode       os.FileMode
}

func NewFileManager(compressor CompressorInterface, logger providers.Logger) *FileManager {
	return &FileManager{
		compressor: compressor,
		logger:     logger,
		mode:       0o644,
	}
}

// Read returns the file contents, or nil when the file does not exist yet.
func (f *FileManager) Read(fileName string) ([]byte, error) {
	data, err := os.ReadFile(fileName)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}
	return data, nil
}

// Save replaces fileName with data through a synced temp file and a rename.
func (f *FileManager) Save(fileName string, data []byte) error {
	tmpFile := fileName + ".tmp"
	file, err := os.OpenFile(tmpFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, f.mode)
	if err != nil {
		return err
	}

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

	return os.Rename(tmpFile, fileName)
}

func BackupName(fileName string) string {
	return fileName + ".bak.zst"
}

// Backup compresses the current contents of fileName into BackupName(fileName).
// A missing source file is not an error.
func (f *FileManager) Backup(fileName string) error {
	data, err := f.Read(fileName)
	if err != nil {
		return err
	}
	if data == nil {
		return nil
	}
	compressed, err := f.compressor.Compress(data)
	if err != nil {
		return fmt.Errorf("compress backup: %w", err)
	}
	if err := f.Save(BackupName(fileName), compressed); err != nil {
		return err
	}
	f.logger.Debugf(providers.TypeSink, "Backed up %s (%d -> %d bytes)", fileName, len(data), len(compressed))
	return nil
}

// RestoreBackup returns the decompressed contents of the latest backup.
func (f *FileManager) RestoreBackup(fileName string) ([]byte, error) {
	data, err := f.Read(BackupName(fileName))
	if err != nil || data == nil {
		return nil, err
	}
	return f.compressor.Decompress(data)
}

func (f *FileManager) Close() {
	f.compressor.Close()
}
