// SPDX-FileCopyrightText: 2026 Mikołaj Kuranowski
// SPDX-License-Identifier: MIT

package fsutil

import (
	"bufio"
	"fmt"
	"io"
	"path/filepath"

	"github.com/spf13/afero"
)

// WriteFileAtomic writes the output of the provided callback to a temporary file
// next to path, and only renames it over path when the whole write succeeded.
// On failure, the temporary file is removed and path is left untouched.
func WriteFileAtomic(fs afero.Fs, path string, write func(io.Writer) error) (err error) {
	tempPath := TempOutputPath(path)

	f, err := fs.Create(tempPath)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			fs.Remove(tempPath)
		}
	}()

	b := bufio.NewWriter(f)
	if err = write(b); err != nil {
		f.Close()
		return err
	}

	if err = b.Flush(); err != nil {
		f.Close()
		return err
	}

	if err = f.Close(); err != nil {
		return err
	}

	return fs.Rename(tempPath, path)
}

func TempOutputPath(path string) string {
	dir, name := filepath.Split(path)
	return fmt.Sprintf("%s.%s.tmp", dir, name)
}
