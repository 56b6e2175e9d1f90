package correlate

import (
	"fmt"

	"github.com/pulsemon/pulsemon-mcp/domain/analytics"
	"github.com/pulsemon/pulsemon-mcp/domain/analytics/stats"
)

// Source-count bounds for the correlation matrix.
const (
	MinMatrixSources = 2
	MaxMatrixSources = 10
)

// StrongCorrelationCutoff is the |r| above which a pair is reported.
const StrongCorrelationCutoff = 0.7

// StrongCorrelation records one upper-triangle pair above the cutoff.
type StrongCorrelation struct {
	SourceA      int     `json:"source_a"`
	SourceB      int     `json:"source_b"`
	LabelA       string  `json:"label_a"`
	LabelB       string  `json:"label_b"`
	Correlation  float64 `json:"correlation"`
	Relationship string  `json:"relationship"`
}

// MatrixResult holds the N-by-N Pearson matrix and its strong pairs.
type MatrixResult struct {
	Matrix        [][]float64         `json:"correlation_matrix"`
	Strong        []StrongCorrelation `json:"strong_correlations"`
	CommonSamples int                 `json:"common_samples"`
}

// ValidateSourceCount rejects out-of-bounds matrix requests before any
// fetching happens.
func ValidateSourceCount(n int) error {
	if n < MinMatrixSources {
		return fmt.Errorf("%w: at least %d sources required", analytics.ErrValidation, MinMatrixSources)
	}
	if n > MaxMatrixSources {
		return fmt.Errorf("%w: maximum %d sources allowed", analytics.ErrValidation, MaxMatrixSources)
	}
	return nil
}

// BuildMatrix computes the symmetric Pearson correlation matrix across
// the given series. Series are right-truncated to the shortest common
// length; alignment is purely positional. The diagonal is fixed at 1.
func BuildMatrix(seriesList [][]float64, labels []string) (MatrixResult, error) {
	n := len(seriesList)

	minLen := -1
	for _, s := range seriesList {
		if minLen < 0 || len(s) < minLen {
			minLen = len(s)
		}
	}
	if minLen < 2 {
		return MatrixResult{}, fmt.Errorf("%w: need at least 2 overlapping samples, have %d", analytics.ErrInsufficientData, minLen)
	}

	truncated := make([][]float64, n)
	for i, s := range seriesList {
		truncated[i] = s[:minLen]
	}

	matrix := make([][]float64, n)
	for i := range matrix {
		matrix[i] = make([]float64, n)
		matrix[i][i] = 1.0
	}

	var strong []StrongCorrelation
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			r, err := stats.PearsonCorrelation(truncated[i], truncated[j])
			if err != nil {
				return MatrixResult{}, err
			}
			r = stats.Round(r, 4)
			matrix[i][j] = r
			matrix[j][i] = r

			if r > StrongCorrelationCutoff || r < -StrongCorrelationCutoff {
				relationship := "strong_positive"
				if r < 0 {
					relationship = "strong_negative"
				}
				strong = append(strong, StrongCorrelation{
					SourceA:      i,
					SourceB:      j,
					LabelA:       labels[i],
					LabelB:       labels[j],
					Correlation:  r,
					Relationship: relationship,
				})
			}
		}
	}

	return MatrixResult{Matrix: matrix, Strong: strong, CommonSamples: minLen}, nil
}
