// SPDX-License-Identifier: EPL-2.0

package wav

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"

	"github.com/ik5/ambientor/audio"
)

// maxEmptyReads bounds consecutive (0, nil) reads from the source.
const maxEmptyReads = 64

// WriteFile streams src into a WAVE file at path and returns the number of
// frames written.
//
// The data goes to a temporary file in the same directory which is synced
// and renamed over path only once the header is complete. On any failure
// the temporary file is removed, path is left as it was, and the returned
// error is a *WriteError. ctx is checked between chunks.
func WriteFile(ctx context.Context, path string, src audio.Source, encoding Encoding) (int64, error) {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return 0, &WriteError{Path: path, Op: "create", Err: err}
	}

	w := &fileWriter{path: path, tmp: tmp}
	frames, err := w.write(ctx, src, encoding)
	if err != nil {
		w.discard()
		return 0, err
	}

	return frames, nil
}

type fileWriter struct {
	path   string
	tmp    *os.File
	frames int64
}

func (w *fileWriter) fail(op string, err error) error {
	return &WriteError{Path: w.path, Op: op, Frames: w.frames, Err: err}
}

func (w *fileWriter) discard() {
	_ = w.tmp.Close()
	_ = os.Remove(w.tmp.Name())
}

func (w *fileWriter) write(ctx context.Context, src audio.Source, encoding Encoding) (int64, error) {
	enc, err := NewEncoder(w.tmp, src.SampleRate(), src.Channels(), encoding)
	if err != nil {
		return 0, w.fail("encode", err)
	}

	channels := src.Channels()
	size := max(src.BufSize(), channels)
	buf := make([]float32, size-size%channels)

	for empty := 0; ; {
		if err := ctx.Err(); err != nil {
			return 0, w.fail("cancel", err)
		}

		n, rerr := src.ReadSamples(buf)
		n -= n % channels

		if n > 0 {
			empty = 0
			if err := enc.Write(buf[:n]); err != nil {
				return 0, w.fail("write", err)
			}
			w.frames = enc.Frames()
		}

		if errors.Is(rerr, io.EOF) {
			break
		}
		if rerr != nil {
			return 0, w.fail("read", rerr)
		}
		if n == 0 {
			if empty++; empty >= maxEmptyReads {
				return 0, w.fail("read", io.ErrNoProgress)
			}
		}
	}

	if err := enc.Close(); err != nil {
		return 0, w.fail("write", err)
	}
	if err := w.tmp.Chmod(0o644); err != nil {
		return 0, w.fail("chmod", err)
	}
	if err := w.tmp.Sync(); err != nil {
		return 0, w.fail("sync", err)
	}
	if err := w.tmp.Close(); err != nil {
		return 0, w.fail("close", err)
	}
	if err := os.Rename(w.tmp.Name(), w.path); err != nil {
		return 0, w.fail("rename", err)
	}

	return enc.Frames(), nil
}
