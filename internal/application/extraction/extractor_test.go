package extraction

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sooam-edu/tutoring-hub/internal/domain/report"
)

func TestForKind(t *testing.T) {
	kinds := []report.Kind{report.KindTest, report.KindMonthly, report.KindWeekly, report.KindConsolidated}

	for _, kind := range kinds {
		e, err := ForKind(kind)
		require.NoError(t, err, string(kind))
		assert.Equal(t, kind, e.Kind())
	}

	_, err := ForKind("quarterly")
	assert.Error(t, err)
}

func TestSeverityForPriority(t *testing.T) {
	assert.Equal(t, 5, severityForPriority(1))
	assert.Equal(t, 4, severityForPriority(2))
	assert.Equal(t, 3, severityForPriority(3))
	assert.Equal(t, 3, severityForPriority(0))
}
