// Package jscompat determines which JavaScript language and runtime-API
// features a piece of source code uses, and cross-references them against a
// bundled compatibility dataset to report which browsers and runtimes can
// run the code unmodified.
//
// # Pipeline
//
// For each source unit the engine:
//
//  1. Computes (or reuses) the sha256 content hash; identical bytes always
//     yield an identical occurrence set, so the hash is the cache key.
//  2. Consults the cache manager; concurrent analyses of the same content
//     single-flight into one parse+detect pass.
//  3. On a miss, parses with tree-sitter, builds the scope/binding graph,
//     and runs the rule engine in a single pre-order traversal.
//  4. Merges the occurrences with compatibility data into an
//     [AnalysisReport], whether the occurrences came from cache or not.
//
// # Usage
//
// Create an Engine, load a unit, analyze:
//
//	e, err := jscompat.New(jscompat.WithCachePath(".jscompat/cache.db"))
//	if err != nil { ... }
//	defer e.Close()
//
//	unit, err := e.Loader().Load(ctx, "dist/app.js")
//	rep, err := e.Analyze(ctx, unit, jscompat.DefaultOptions())
//
// Batches preserve input order regardless of completion order:
//
//	results := e.AnalyzeBatch(ctx, []string{"a.js", "https://cdn.example.com/b.js"}, opts)
//
// # Scope awareness
//
// Global-API rules consult the binding graph before reporting: a local
// binding that shadows a tracked global name (a `const fetch = ...`, a
// parameter, an import) suppresses the match.
package jscompat
