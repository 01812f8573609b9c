package scan

import "devclean/internal/catalog"

// Classify derives category, risk, and confidence for a raw match. It
// is a pure function of (source, basename, relative path) over the
// catalog tables, so the same input always yields the same
// classification.
func Classify(cat *catalog.Catalog, source catalog.RuleSource, basename, relPath string) (catalog.Category, catalog.RiskLevel, catalog.Confidence) {
	category := cat.CategoryOf(basename, relPath)
	return category, cat.RiskFor(source, category), cat.ConfidenceFor(source)
}
