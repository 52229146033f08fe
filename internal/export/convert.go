package export

import (
	"bytes"
	"fmt"
	"hash/fnv"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// ConvertDocument is a Document backed by a source model file and an
// external converter executable on the PATH. It covers hosts that
// expose their documents as files rather than a live API.
type ConvertDocument struct {
	// SourcePath is the source model document
	SourcePath string

	// Tool is the converter executable, e.g. "IfcConvert"
	Tool string
}

// Identity derives the cache identity from the source file's path and
// last write time. An unreadable source degrades to a title identity
// so keying still works; the export itself will report the real error.
func (d ConvertDocument) Identity() Identity {
	info, err := os.Stat(d.SourcePath)
	if err != nil {
		h := fnv.New64a()
		h.Write([]byte(d.SourcePath))
		return Identity{
			Title:        strings.TrimSuffix(filepath.Base(d.SourcePath), filepath.Ext(d.SourcePath)),
			InstanceHash: fmt.Sprintf("%x", h.Sum64()),
		}
	}
	return Identity{
		Path:      d.SourcePath,
		LastWrite: info.ModTime(),
		Title:     strings.TrimSuffix(filepath.Base(d.SourcePath), filepath.Ext(d.SourcePath)),
		Saved:     true,
	}
}

// Export runs the converter, capturing its output for the error
// message on failure
func (d ConvertDocument) Export(targetDir, fileName string, opts Options) error {
	if _, err := exec.LookPath(d.Tool); err != nil {
		return fmt.Errorf("%s not found in PATH", d.Tool)
	}

	outputFile := filepath.Join(targetDir, fileName)
	args := []string{d.SourcePath, outputFile}
	if opts.RoomName != "" {
		args = append(args, "--space", opts.RoomName)
	}

	cmd := exec.Command(d.Tool, args...)
	cmd.Dir = filepath.Dir(d.SourcePath)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		var errMsg strings.Builder
		errMsg.WriteString(fmt.Sprintf("failed to convert %s: %v\n", d.SourcePath, err))
		if stderr.Len() > 0 {
			errMsg.WriteString("stderr: ")
			errMsg.WriteString(stderr.String())
		}
		if stdout.Len() > 0 {
			errMsg.WriteString("stdout: ")
			errMsg.WriteString(stdout.String())
		}
		return fmt.Errorf("%s", errMsg.String())
	}
	return nil
}
