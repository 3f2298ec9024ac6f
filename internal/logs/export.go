package logs

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/klauspost/compress/zstd"

	"github.com/charliek/tailboard/internal/domain"
)

// WriteRecords writes one "<timestamp> <message>" line per record
func WriteRecords(w io.Writer, records []domain.LogRecord) error {
	bw := bufio.NewWriter(w)
	for _, r := range records {
		if _, err := bw.WriteString(r.String()); err != nil {
			return err
		}
		if err := bw.WriteByte('\n'); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// WriteCompressed writes the records zstd-compressed
func WriteCompressed(w io.Writer, records []domain.LogRecord) error {
	enc, err := zstd.NewWriter(w)
	if err != nil {
		return fmt.Errorf("creating zstd encoder: %w", err)
	}
	if err := WriteRecords(enc, records); err != nil {
		enc.Close()
		return err
	}
	return enc.Close()
}

// ExportFile writes records to path, compressing when it ends in ".zst"
func ExportFile(path string, records []domain.LogRecord) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating export file: %w", err)
	}

	if strings.HasSuffix(path, ".zst") {
		err = WriteCompressed(f, records)
	} else {
		err = WriteRecords(f, records)
	}
	if closeErr := f.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		return fmt.Errorf("writing export file %s: %w", path, err)
	}
	return nil
}
