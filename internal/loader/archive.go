package loader

import (
	"fmt"
	"io"
	"path"
	"sort"

	"github.com/klauspost/compress/zip"
)

// ArchiveName is the file name offered for a case's "download all" archive.
func (r *CaseResult) ArchiveName() string {
	return path.Base(r.Path) + ".zip"
}

// WriteArchive writes every successfully fetched record into a zip under a directory named after the case.
func (r *CaseResult) WriteArchive(w io.Writer) error {
	records := make([]Record, 0, len(r.Records))
	for _, rec := range r.Records {
		if rec.Err == nil {
			records = append(records, rec)
		}
	}
	sort.Slice(records, func(i, j int) bool { return records[i].Name < records[j].Name })

	zw := zip.NewWriter(w)
	dir := path.Base(r.Path)
	for _, rec := range records {
		f, err := zw.Create(path.Join(dir, rec.Name))
		if err != nil {
			return fmt.Errorf("add %s to archive: %w", rec.Name, err)
		}
		if _, err := f.Write(rec.Data); err != nil {
			return fmt.Errorf("write %s to archive: %w", rec.Name, err)
		}
	}
	return zw.Close()
}
