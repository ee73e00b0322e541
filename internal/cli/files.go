package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/matzehuels/wbsgen/pkg/errors"
	"github.com/matzehuels/wbsgen/pkg/render"
	"github.com/matzehuels/wbsgen/pkg/store"
)

// layoutFileSuffix marks the files written by the layout command.
const layoutFileSuffix = ".layout.json"

// stdinName is the source name used for "-"; its extension selects the
// plain-text reader.
const stdinName = "stdin.txt"

// openInput opens a source file, or stdin for "-". The returned name is what
// the ingestion stage sees.
func openInput(path string) (io.ReadCloser, string, error) {
	if path == "-" {
		return io.NopCloser(os.Stdin), stdinName, nil
	}
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, "", errors.Wrap(errors.ErrCodeFileNotFound, err, "input %s", path)
		}
		return nil, "", fmt.Errorf("open input: %w", err)
	}
	return f, path, nil
}

// isLayoutFile reports whether path was written by the layout command.
func isLayoutFile(path string) bool {
	return strings.HasSuffix(strings.ToLower(path), layoutFileSuffix)
}

// readLayoutFile loads a layout file.
func readLayoutFile(path string) (*store.Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "layout %s", path)
		}
		return nil, fmt.Errorf("read layout: %w", err)
	}
	var doc store.Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "decode layout %s", path)
	}
	if len(doc.Geometry) == 0 {
		return nil, errors.New(errors.ErrCodeInvalidInput, "layout %s has no geometry", path)
	}
	return &doc, nil
}

// writeLayoutFile writes doc as indented JSON.
func writeLayoutFile(path string, doc *store.Document) error {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("encode layout: %w", err)
	}
	return os.WriteFile(path, append(data, '\n'), 0o644)
}

// basePath derives the base output path from the output and input paths.
// With no output, the input's extension (or layout suffix) is stripped; an
// output ending in a known format extension loses it.
func basePath(output, input string) string {
	if output == "" {
		if input == "-" {
			return strings.TrimSuffix(stdinName, filepath.Ext(stdinName))
		}
		if isLayoutFile(input) {
			return input[:len(input)-len(layoutFileSuffix)]
		}
		return strings.TrimSuffix(input, filepath.Ext(input))
	}
	ext := strings.ToLower(filepath.Ext(output))
	if isFormatExt(ext) {
		return strings.TrimSuffix(output, filepath.Ext(output))
	}
	return output
}

func isFormatExt(ext string) bool {
	f := strings.TrimPrefix(ext, ".")
	return slices.Contains(render.ChartFormats, f) || slices.Contains(render.TreeFormats, f)
}

// outputPaths maps each format to the file it is written to. A single
// format honours an explicit output path verbatim.
func outputPaths(formats []string, output, input string) map[string]string {
	paths := make(map[string]string, len(formats))
	if len(formats) == 1 && output != "" && isFormatExt(filepath.Ext(output)) {
		paths[formats[0]] = output
		return paths
	}
	base := basePath(output, input)
	for _, f := range formats {
		paths[f] = base + "." + f
	}
	return paths
}

// writeArtifacts writes artifacts in format order and prints each path.
func writeArtifacts(artifacts map[string][]byte, formats []string, output, input string) error {
	paths := outputPaths(formats, output, input)
	for _, f := range formats {
		path := paths[f]
		if dir := filepath.Dir(path); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return fmt.Errorf("create output dir: %w", err)
			}
		}
		if err := os.WriteFile(path, artifacts[f], 0o644); err != nil {
			return fmt.Errorf("write %s: %w", path, err)
		}
		wrote(path)
	}
	return nil
}
