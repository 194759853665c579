package csvstore

import (
	"bytes"

	"github.com/kjk/fileops/atomicfile"
	"github.com/kjk/fileops/u"
)

// Export copies the store file to dstPath, compressed if dstPath ends
// with .gz, .zst or .br. Exporting onto the store file itself is
// u.ErrSameFile.
func (s *Store) Export(dstPath string) error {
	s.log.V(1).Info("exporting", "dst", dstPath)
	if err := u.CompressFile(dstPath, s.path); err != nil {
		return err
	}
	s.log.V(1).Info("finished exporting", "dst", dstPath)
	return nil
}

// Import replaces the store file with content of srcPath, decompressed
// based on its extension (.gz, .bz2, .zst, .br). srcPath must be
// in the same format as the store (including the header line, if any).
// Importing an empty file is a no-op.
func (s *Store) Import(srcPath string) error {
	s.log.V(1).Info("importing", "src", srcPath)
	d, err := u.ReadFileMaybeCompressed(srcPath)
	if err != nil {
		return err
	}
	if len(d) == 0 {
		s.log.Info("nothing to import, file not changed", "src", srcPath)
		return nil
	}
	if !bytes.HasSuffix(d, []byte{'\n'}) {
		d = append(d, '\n')
	}
	if err = atomicfile.WriteFile(s.path, d); err != nil {
		return err
	}
	s.log.V(1).Info("finished importing", "src", srcPath)
	return nil
}
