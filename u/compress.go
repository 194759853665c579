package u

import (
	"bytes"
	"compress/bzip2"
	"compress/gzip"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/andybalholm/brotli"
	"github.com/kjk/fileops/atomicfile"
	"github.com/klauspost/compress/zstd"
)

// implement io.ReadCloser over os.File wrapped with io.Reader.
// io.Closer goes to os.File (and the decoder, if it needs closing),
// io.Reader goes to wrapping reader
type readerWrappedFile struct {
	f       *os.File
	r       io.Reader
	onClose func()
}

func (rc *readerWrappedFile) Close() error {
	if rc.onClose != nil {
		rc.onClose()
	}
	return rc.f.Close()
}

func (rc *readerWrappedFile) Read(p []byte) (int, error) {
	return rc.r.Read(p)
}

func wrapInReadCloser(f *os.File, r io.Reader, err error) (io.ReadCloser, error) {
	if err != nil {
		f.Close()
		return nil, err
	}
	return &readerWrappedFile{
		f: f,
		r: r,
	}, nil
}

// CompressionFromPath returns compression kind based on file extension:
// "gz", "bz2", "zst", "br" or "" for uncompressed
func CompressionFromPath(path string) string {
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".gz":
		return "gz"
	case ".bz2":
		return "bz2"
	case ".zst", ".zstd":
		return "zst"
	case ".br":
		return "br"
	}
	return ""
}

// OpenFileMaybeCompressed opens a file that might be compressed with gzip
// or bzip2 or zstd or brotli
// TODO: could sniff file content instead of checking file extension
func OpenFileMaybeCompressed(path string) (io.ReadCloser, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	switch CompressionFromPath(path) {
	case "gz":
		r, err := gzip.NewReader(f)
		return wrapInReadCloser(f, r, err)
	case "bz2":
		return wrapInReadCloser(f, bzip2.NewReader(f), nil)
	case "zst":
		r, err := zstd.NewReader(f)
		rc, err := wrapInReadCloser(f, r, err)
		if err != nil {
			return nil, err
		}
		rc.(*readerWrappedFile).onClose = r.Close
		return rc, nil
	case "br":
		return wrapInReadCloser(f, brotli.NewReader(f), nil)
	}
	return f, nil
}

// ReadFileMaybeCompressed reads file, decompressing based on extension
func ReadFileMaybeCompressed(path string) ([]byte, error) {
	r, err := OpenFileMaybeCompressed(path)
	if err != nil {
		return nil, err
	}
	defer r.Close()
	return io.ReadAll(r)
}

func getErr(errs ...error) error {
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}

func zstdNewWriter(dst io.Writer) (*zstd.Encoder, error) {
	// zstd.SpeedBestCompression is much slower and not much better
	return zstd.NewWriter(dst, zstd.WithEncoderLevel(zstd.SpeedDefault))
}

// newCompressingWriter returns a writer compressing into w
// using compression kind as returned by CompressionFromPath
func newCompressingWriter(w io.Writer, kind string) (io.WriteCloser, error) {
	switch kind {
	case "gz":
		return gzip.NewWriterLevel(w, gzip.BestCompression)
	case "zst":
		return zstdNewWriter(w)
	case "br":
		return brotli.NewWriterLevel(w, brotli.DefaultCompression), nil
	}
	return nil, nil
}

// CompressFile copies srcPath to dstPath compressing it based on
// extension of dstPath (.gz, .zst, .br). Other extensions are
// copied as-is. bzip2 can only be read, not written.
// dstPath is written atomically and must not be the same file as srcPath.
func CompressFile(dstPath string, srcPath string) error {
	kind := CompressionFromPath(dstPath)
	if kind == "" || kind == "bz2" {
		return CopyFile(dstPath, srcPath)
	}
	if err := checkNotSameFile(dstPath, srcPath); err != nil {
		return err
	}
	fSrc, err := os.Open(srcPath)
	if err != nil {
		return err
	}
	defer fSrc.Close()
	if err = os.MkdirAll(filepath.Dir(dstPath), 0755); err != nil {
		return err
	}
	fDst, err := atomicfile.New(dstPath)
	if err != nil {
		return err
	}
	defer fDst.RemoveIfNotClosed()

	w, err := newCompressingWriter(fDst, kind)
	if err != nil {
		return err
	}
	_, err = io.Copy(w, fSrc)
	err2 := w.Close()
	if err = getErr(err, err2); err != nil {
		return err
	}
	return fDst.Close()
}

// BrCompressData compresses d with brotli at a given level
func BrCompressData(d []byte, level int) ([]byte, error) {
	var dst bytes.Buffer
	w := brotli.NewWriterLevel(&dst, level)
	_, err := w.Write(d)
	err2 := w.Close()
	if err = getErr(err, err2); err != nil {
		return nil, err
	}
	return dst.Bytes(), nil
}
