package compare

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/studiowebux/benchops/internal/config"
	"go.uber.org/zap"
)

// PromoteBaseline copies the current results file verbatim over the baseline,
// keeping the source's permissions and modification time.
func PromoteBaseline(currentPath, baselinePath string) error {
	info, err := os.Stat(currentPath)
	if err != nil {
		return fmt.Errorf("failed to stat current results: %w", err)
	}
	data, err := os.ReadFile(currentPath)
	if err != nil {
		return fmt.Errorf("failed to read current results: %w", err)
	}

	if err := config.EnsureDir(filepath.Dir(baselinePath)); err != nil {
		return err
	}

	tmp := baselinePath + ".tmp"
	if err := os.WriteFile(tmp, data, info.Mode().Perm()); err != nil {
		return fmt.Errorf("failed to write baseline: %w", err)
	}
	if err := os.Rename(tmp, baselinePath); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to replace baseline: %w", err)
	}
	if err := os.Chtimes(baselinePath, info.ModTime(), info.ModTime()); err != nil {
		zap.S().Debugf("could not preserve baseline mtime: %v", err)
	}

	zap.S().Infof("Saved current results as new baseline: %s", baselinePath)
	return nil
}
