package domain

// CoverageLevel is a categorical vegetation density label.
type CoverageLevel string

const (
	CoverageHigh   CoverageLevel = "High"
	CoverageMedium CoverageLevel = "Medium"
	CoverageLow    CoverageLevel = "Low"
)

// CoverageLevels lists every valid level in display order.
var CoverageLevels = []CoverageLevel{CoverageHigh, CoverageMedium, CoverageLow}

// Valid reports whether l is one of High, Medium or Low.
func (l CoverageLevel) Valid() bool {
	switch l {
	case CoverageHigh, CoverageMedium, CoverageLow:
		return true
	}
	return false
}
