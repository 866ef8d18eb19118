// Copyright (c) 2025, NVIDIA CORPORATION.  All rights reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package serializer

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	apperrors "github.com/NVIDIA/irule-builder/pkg/errors"
)

// WriteFileAtomic writes data to a temporary file next to path and renames
// it into place, so readers see either the old content or all of the new
// content. Failures return ErrCodeOutputWrite and leave path untouched.
func WriteFileAtomic(path string, data []byte, perm os.FileMode) error {
	ctx := map[string]any{"path": path}
	dir := filepath.Dir(path)

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return apperrors.WrapWithContext(apperrors.ErrCodeOutputWrite, "failed to create output file", err, ctx)
	}
	tmpName := tmp.Name()
	cleanup := func() {
		if rmErr := os.Remove(tmpName); rmErr != nil && !os.IsNotExist(rmErr) {
			slog.Warn("failed to remove temporary file", "path", tmpName, "error", rmErr)
		}
	}

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		cleanup()
		return apperrors.WrapWithContext(apperrors.ErrCodeOutputWrite, "failed to write output file", err, ctx)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		cleanup()
		return apperrors.WrapWithContext(apperrors.ErrCodeOutputWrite, "failed to sync output file", err, ctx)
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return apperrors.WrapWithContext(apperrors.ErrCodeOutputWrite, "failed to close output file", err, ctx)
	}
	if err := os.Chmod(tmpName, perm); err != nil {
		cleanup()
		return apperrors.WrapWithContext(apperrors.ErrCodeOutputWrite, "failed to set output file mode", err, ctx)
	}
	if err := os.Rename(tmpName, path); err != nil {
		cleanup()
		return apperrors.WrapWithContext(apperrors.ErrCodeOutputWrite,
			fmt.Sprintf("failed to move output into place at %s", path), err, ctx)
	}

	slog.Debug("output written", "path", path, "bytes", len(data))
	return nil
}
