package source

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// jsExtensions are the file extensions considered JavaScript source.
var jsExtensions = map[string]bool{
	".js":  true,
	".mjs": true,
	".cjs": true,
}

// IsJavaScriptFile reports whether path has a JavaScript extension.
func IsJavaScriptFile(path string) bool {
	return jsExtensions[strings.ToLower(filepath.Ext(path))]
}

// Expand turns user-facing inputs into concrete refs:
//
//   - http(s) URLs pass through
//   - directories walk to all JavaScript files beneath them
//   - patterns containing glob metacharacters expand via filepath.Glob
//   - everything else is treated as a file path and passed through
//
// Refs come back in a deterministic order: inputs in the order given,
// directory walks and globs in lexical order.
func Expand(inputs []string) ([]string, error) {
	var refs []string
	for _, input := range inputs {
		switch {
		case IsRemote(input):
			refs = append(refs, input)
		case strings.ContainsAny(input, "*?["):
			matches, err := filepath.Glob(input)
			if err != nil {
				return nil, fmt.Errorf("glob %q: %w", input, err)
			}
			for _, m := range matches {
				if IsJavaScriptFile(m) {
					refs = append(refs, m)
				}
			}
		default:
			info, err := os.Stat(input)
			if err == nil && info.IsDir() {
				walked, err := walkJSFiles(input)
				if err != nil {
					return nil, err
				}
				refs = append(refs, walked...)
				continue
			}
			refs = append(refs, input)
		}
	}
	return refs, nil
}

// skipDirs are directory names excluded from directory expansion.
var skipDirs = map[string]bool{
	"node_modules": true,
	"vendor":       true,
}

func walkJSFiles(root string) ([]string, error) {
	var paths []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			name := d.Name()
			if path != root && (strings.HasPrefix(name, ".") || skipDirs[name]) {
				return filepath.SkipDir
			}
			return nil
		}
		if IsJavaScriptFile(path) {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk directory %s: %w", root, err)
	}
	return paths, nil
}
