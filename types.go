package jscompat

import (
	"github.com/jward/jscompat/internal/ast"
	"github.com/jward/jscompat/internal/compat"
	"github.com/jward/jscompat/internal/feature"
	"github.com/jward/jscompat/internal/report"
	"github.com/jward/jscompat/internal/source"
)

// Public type aliases for internal types used in the Engine API. These are
// Go type aliases (=), identical to the internal types at compile time, so
// external consumers use these names with no conversion.

type SourceUnit = source.Unit
type SourceLoader = source.Loader
type LoadError = source.LoadError
type ParseError = ast.ParseError
type Occurrence = feature.Occurrence
type Rule = feature.Rule
type RuleFault = feature.Fault
type CompatEntry = compat.Entry
type AnalysisReport = report.Report
type FeatureRow = report.Row
