// =============================================================================
// shipcheck - Configuration Module
// =============================================================================
//
// This module loads and validates the run configuration. One YAML file
// describes an entire run: how workbooks are loaded (header detection,
// column name standardization), which references the primary is reconciled
// against and under which mapping rules, and how flat exports are segmented
// into per-invoice tabs.
//
// The configuration is static for the run. Defaults are applied on load and
// every pattern is compiled during validation, so a bad configuration fails
// before any workbook is opened.
//
// =============================================================================

package config

import (
	"fmt"
	"os"
	"regexp"

	"gopkg.in/yaml.v3"

	"github.com/importdesk/shipcheck/internal/reconcile"
	"github.com/importdesk/shipcheck/internal/segment"
	"github.com/importdesk/shipcheck/internal/table"
)

// =============================================================================
// TOP-LEVEL CONFIGURATION
// =============================================================================

// Config is the full run configuration.
type Config struct {
	// LogLevel controls verbosity: "debug" or "info".
	// Default: "info"
	LogLevel string `yaml:"log_level"`

	// Output holds output and archival settings.
	Output OutputConfig `yaml:"output"`

	// Load holds workbook loading settings shared by both pipelines.
	Load LoadConfig `yaml:"load"`

	// Reconcile configures the reconciliation pipeline.
	Reconcile ReconcileConfig `yaml:"reconcile"`

	// Segment configures the segmentation pipeline.
	Segment SegmentConfig `yaml:"segment"`
}

// =============================================================================
// OUTPUT SETTINGS
// =============================================================================

// OutputConfig holds output locations and file naming.
type OutputConfig struct {
	// Dir is the directory where output workbooks are written.
	// Default: "./output"
	Dir string `yaml:"dir"`

	// ReportFile is the file name for the findings report workbook.
	// Placeholders: {uuid}, {timestamp}.
	// Default: "validation_report_{timestamp}.xlsx"
	ReportFile string `yaml:"report_file"`

	// SegmentFile is the file name for the segmented output workbook.
	// Placeholders: {stem} (input file name without extension), {uuid},
	// {timestamp}.
	// Default: "{stem}_segmented.xlsx"
	SegmentFile string `yaml:"segment_file"`

	// ArchiveDir is where processed input files are moved after a
	// successful run. Empty disables archival.
	ArchiveDir string `yaml:"archive_dir"`
}

// =============================================================================
// LOAD SETTINGS
// =============================================================================

// LoadConfig controls how sheets are turned into tables.
type LoadConfig struct {
	// HeaderScanRows is how many leading rows are scanned for the header.
	// Default: 5
	HeaderScanRows int `yaml:"header_scan_rows"`

	// HeaderTokens are the column name fragments that identify the header
	// row. A row matching at least MinHeaderMatches of them is the header.
	HeaderTokens []string `yaml:"header_tokens"`

	// MinHeaderMatches is the required token count. Default: 3, capped to
	// the number of tokens.
	MinHeaderMatches int `yaml:"min_header_matches"`

	// ColumnVariants standardizes column names at load time. The key is
	// the canonical name; the values are the variants that map to it.
	// Example:
	//   column_variants:
	//     "P/N": ["Part Number", "Part No", "料号"]
	//     "Description": ["Desc", "产品描述"]
	ColumnVariants map[string][]string `yaml:"column_variants"`
}

// =============================================================================
// RECONCILIATION SETTINGS
// =============================================================================

// ReconcileConfig configures the reconciliation pipeline.
type ReconcileConfig struct {
	// Primary is the path to the primary workbook, the document under
	// validation. May be overridden on the command line.
	Primary string `yaml:"primary"`

	// References lists the reference workbooks, each with its own mapping
	// rule. Rules are applied in list order.
	References []ReferenceConfig `yaml:"references"`
}

// ReferenceConfig is the mapping rule for one reference workbook.
type ReferenceConfig struct {
	// Name identifies the reference in findings, e.g. "shipping_list".
	Name string `yaml:"name"`

	// Path is the workbook file. May be overridden on the command line.
	Path string `yaml:"path"`

	// PrimaryKeyColumns are the key columns in the primary table.
	PrimaryKeyColumns []string `yaml:"primary_key_columns"`

	// ReferenceKeyColumns are the key columns in this reference table.
	// Defaults to PrimaryKeyColumns.
	ReferenceKeyColumns []string `yaml:"reference_key_columns"`

	// KeyNormalization is "standard" or "part_number".
	// Default: "standard"
	KeyNormalization string `yaml:"key_normalization"`

	// NumericTolerance is the absolute tolerance for numeric field
	// comparisons. Default: 0 (exact match).
	NumericTolerance float64 `yaml:"numeric_tolerance"`

	// FieldPairs are the column pairs compared between a primary row and
	// its counterpart, in order.
	FieldPairs []reconcile.FieldPair `yaml:"field_pairs"`
}

// Rule converts the reference configuration into an engine rule.
func (r ReferenceConfig) Rule() reconcile.Rule {
	refKeys := r.ReferenceKeyColumns
	if len(refKeys) == 0 {
		refKeys = r.PrimaryKeyColumns
	}
	mode := table.KeyNormalization(r.KeyNormalization)
	if mode == "" {
		mode = table.KeyNormalizeStandard
	}
	return reconcile.Rule{
		Name:                r.Name,
		PrimaryKeyColumns:   r.PrimaryKeyColumns,
		ReferenceKeyColumns: refKeys,
		KeyNormalization:    mode,
		Pairs:               r.FieldPairs,
		NumericTolerance:    r.NumericTolerance,
	}
}

// =============================================================================
// SEGMENTATION SETTINGS
// =============================================================================

// SegmentConfig configures the segmentation pipeline.
type SegmentConfig struct {
	// Input is the path to the flat export workbook. May be overridden on
	// the command line.
	Input string `yaml:"input"`

	// BoundaryPattern matches a boundary marker row.
	// Default: `(?i)Invoice:`
	BoundaryPattern string `yaml:"boundary_pattern"`

	// IdentifierPattern extracts the group identifier from a marker row.
	// The first capture group is used when present, otherwise the whole
	// match. Default: `\d+HC\d+-\d+[A-Z]*`
	IdentifierPattern string `yaml:"identifier_pattern"`

	// PlaceholderIdentifier is the stem used when extraction fails.
	// Default: "INVOICE"
	PlaceholderIdentifier string `yaml:"placeholder_identifier"`

	// SkipPatterns match preamble and noise rows that belong to no group.
	SkipPatterns []string `yaml:"skip_patterns"`

	// HeaderTokens identify the shared header row of the export.
	HeaderTokens []string `yaml:"header_tokens"`

	// MinHeaderMatches is the required token count. Default: 2, capped to
	// the number of tokens.
	MinHeaderMatches int `yaml:"min_header_matches"`

	// PreamblePolicy is "discard" or "group": what happens to data rows
	// ahead of the first boundary marker. Default: "discard"
	PreamblePolicy string `yaml:"preamble_policy"`

	// PreambleGroupName is the identifier of the implicit preamble group
	// under the "group" policy. Default: "PREAMBLE"
	PreambleGroupName string `yaml:"preamble_group_name"`

	// KeepColumns optionally restricts the output tabs to these columns,
	// in this order. Empty keeps every column.
	KeepColumns []string `yaml:"keep_columns"`

	// Transform optionally rewrites each group for customs output before it
	// is written. Disabled when description_column is empty.
	Transform TransformConfig `yaml:"transform"`
}

// TransformConfig configures the per-group description transform.
type TransformConfig struct {
	// DescriptionColumn is the overloaded description column, e.g. "Desc".
	// Empty disables the transform.
	DescriptionColumn string `yaml:"description_column"`

	// SplitMarker cuts the description ahead of the part number tail.
	// Default: "-PART NO"
	SplitMarker string `yaml:"split_marker"`

	// ModelPattern extracts the model number from the full description; the
	// first capture group is used.
	// Default: `(?i)MODEL NO\.?\s*([\w.-]+?)(?:\s*$|-\s*$)`
	ModelPattern string `yaml:"model_pattern"`

	// ModelColumn is the appended model number column.
	// Default: "Model Nos."
	ModelColumn string `yaml:"model_column"`

	// ItemNumberColumn, when set, is prepended and numbers the rows of each
	// group from 1, e.g. "Item Nos.".
	ItemNumberColumn string `yaml:"item_number_column"`

	// CategoryColumn, when set, is overwritten with the part of the cleaned
	// description before its first hyphen.
	CategoryColumn string `yaml:"category_column"`

	// RenameColumns maps export column names to their customs names.
	RenameColumns map[string]string `yaml:"rename_columns"`

	// FrontColumns are moved to the front of every output tab, in order.
	FrontColumns []string `yaml:"front_columns"`
}

// Enabled reports whether the transform is configured.
func (t TransformConfig) Enabled() bool {
	return t.DescriptionColumn != ""
}

// Transform compiles the configuration into a group transform. Validation
// compiles the pattern too, so after a successful Load this cannot fail.
func (t TransformConfig) Transform() (*segment.Transform, error) {
	pattern, err := regexp.Compile(t.ModelPattern)
	if err != nil {
		return nil, fmt.Errorf("invalid model_pattern: %w", err)
	}
	return &segment.Transform{
		DescriptionColumn: t.DescriptionColumn,
		SplitMarker:       t.SplitMarker,
		ModelPattern:      pattern,
		ModelColumn:       t.ModelColumn,
		ItemNumberColumn:  t.ItemNumberColumn,
		CategoryColumn:    t.CategoryColumn,
		RenameColumns:     t.RenameColumns,
		FrontColumns:      t.FrontColumns,
	}, nil
}

// Options compiles the segmentation configuration into engine options.
// Patterns are compiled once more during validation, so after a successful
// Load this cannot fail.
func (s SegmentConfig) Options() (segment.Options, error) {
	marker, err := regexp.Compile(s.BoundaryPattern)
	if err != nil {
		return segment.Options{}, fmt.Errorf("invalid boundary_pattern: %w", err)
	}
	identifier, err := regexp.Compile(s.IdentifierPattern)
	if err != nil {
		return segment.Options{}, fmt.Errorf("invalid identifier_pattern: %w", err)
	}
	skip := make([]*regexp.Regexp, 0, len(s.SkipPatterns))
	for _, p := range s.SkipPatterns {
		re, err := regexp.Compile(p)
		if err != nil {
			return segment.Options{}, fmt.Errorf("invalid skip_pattern %q: %w", p, err)
		}
		skip = append(skip, re)
	}
	return segment.Options{
		Boundary: segment.BoundaryRule{
			Marker:      marker,
			Identifier:  identifier,
			Placeholder: s.PlaceholderIdentifier,
		},
		Skip:         segment.SkipRule{Patterns: skip},
		Header:       segment.HeaderRule{Tokens: s.HeaderTokens, MinMatches: s.MinHeaderMatches},
		Preamble:     segment.PreamblePolicy(s.PreamblePolicy),
		PreambleName: s.PreambleGroupName,
	}, nil
}

// =============================================================================
// LOADING
// =============================================================================

// Load reads, defaults, and validates a run configuration.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	applyDefaults(&cfg)

	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// applyDefaults sets default values for any unset options.
func applyDefaults(cfg *Config) {
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
	if cfg.Output.Dir == "" {
		cfg.Output.Dir = "./output"
	}
	if cfg.Output.ReportFile == "" {
		cfg.Output.ReportFile = "validation_report_{timestamp}.xlsx"
	}
	if cfg.Output.SegmentFile == "" {
		cfg.Output.SegmentFile = "{stem}_segmented.xlsx"
	}
	if cfg.Load.HeaderScanRows == 0 {
		cfg.Load.HeaderScanRows = 5
	}
	if cfg.Load.MinHeaderMatches == 0 {
		cfg.Load.MinHeaderMatches = 3
	}
	if n := len(cfg.Load.HeaderTokens); n > 0 && cfg.Load.MinHeaderMatches > n {
		cfg.Load.MinHeaderMatches = n
	}
	if cfg.Segment.BoundaryPattern == "" {
		cfg.Segment.BoundaryPattern = `(?i)Invoice:`
	}
	if cfg.Segment.IdentifierPattern == "" {
		cfg.Segment.IdentifierPattern = `\d+HC\d+-\d+[A-Z]*`
	}
	if cfg.Segment.PlaceholderIdentifier == "" {
		cfg.Segment.PlaceholderIdentifier = "INVOICE"
	}
	if cfg.Segment.MinHeaderMatches == 0 {
		cfg.Segment.MinHeaderMatches = 2
	}
	if n := len(cfg.Segment.HeaderTokens); n > 0 && cfg.Segment.MinHeaderMatches > n {
		cfg.Segment.MinHeaderMatches = n
	}
	if cfg.Segment.PreamblePolicy == "" {
		cfg.Segment.PreamblePolicy = string(segment.PreambleDiscard)
	}
	if cfg.Segment.PreambleGroupName == "" {
		cfg.Segment.PreambleGroupName = "PREAMBLE"
	}
	if cfg.Segment.Transform.Enabled() {
		if cfg.Segment.Transform.SplitMarker == "" {
			cfg.Segment.Transform.SplitMarker = "-PART NO"
		}
		if cfg.Segment.Transform.ModelPattern == "" {
			cfg.Segment.Transform.ModelPattern = `(?i)MODEL NO\.?\s*([\w.-]+?)(?:\s*$|-\s*$)`
		}
		if cfg.Segment.Transform.ModelColumn == "" {
			cfg.Segment.Transform.ModelColumn = "Model Nos."
		}
	}
	for i := range cfg.Reconcile.References {
		ref := &cfg.Reconcile.References[i]
		if ref.KeyNormalization == "" {
			ref.KeyNormalization = string(table.KeyNormalizeStandard)
		}
		if len(ref.ReferenceKeyColumns) == 0 {
			ref.ReferenceKeyColumns = ref.PrimaryKeyColumns
		}
	}
}

// validate rejects configurations that cannot produce a meaningful run.
func validate(cfg *Config) error {
	switch cfg.LogLevel {
	case "debug", "info":
	default:
		return fmt.Errorf("log_level must be \"debug\" or \"info\", got %q", cfg.LogLevel)
	}

	seen := make(map[string]bool, len(cfg.Reconcile.References))
	for i, ref := range cfg.Reconcile.References {
		if ref.Name == "" {
			return fmt.Errorf("reference %d has no name", i)
		}
		if seen[ref.Name] {
			return fmt.Errorf("duplicate reference name %q", ref.Name)
		}
		seen[ref.Name] = true
		if len(ref.PrimaryKeyColumns) == 0 {
			return fmt.Errorf("reference %q has no primary_key_columns", ref.Name)
		}
		// Composite keys join one part per column; differing counts would
		// make every lookup miss instead of failing loudly here.
		if len(ref.ReferenceKeyColumns) != len(ref.PrimaryKeyColumns) {
			return fmt.Errorf("reference %q: reference_key_columns has %d column(s), primary_key_columns has %d",
				ref.Name, len(ref.ReferenceKeyColumns), len(ref.PrimaryKeyColumns))
		}
		if len(ref.FieldPairs) == 0 {
			return fmt.Errorf("reference %q has no field_pairs", ref.Name)
		}
		switch table.KeyNormalization(ref.KeyNormalization) {
		case table.KeyNormalizeStandard, table.KeyNormalizePartNumber:
		default:
			return fmt.Errorf("reference %q has unknown key_normalization %q", ref.Name, ref.KeyNormalization)
		}
		if ref.NumericTolerance < 0 {
			return fmt.Errorf("reference %q has negative numeric_tolerance", ref.Name)
		}
		for _, pair := range ref.FieldPairs {
			if pair.Primary == "" || pair.Reference == "" {
				return fmt.Errorf("reference %q has an incomplete field pair", ref.Name)
			}
		}
	}

	switch segment.PreamblePolicy(cfg.Segment.PreamblePolicy) {
	case segment.PreambleDiscard, segment.PreambleGroup:
	default:
		return fmt.Errorf("preamble_policy must be %q or %q, got %q",
			segment.PreambleDiscard, segment.PreambleGroup, cfg.Segment.PreamblePolicy)
	}

	// Compiling here surfaces pattern errors at load time instead of in
	// the middle of a run.
	if _, err := cfg.Segment.Options(); err != nil {
		return err
	}
	if cfg.Segment.Transform.Enabled() {
		if _, err := cfg.Segment.Transform.Transform(); err != nil {
			return err
		}
	}

	return nil
}
