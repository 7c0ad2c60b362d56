package postgres

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGradePool(t *testing.T) {
	tests := []struct {
		name  string
		usage PoolUsage
		want  string
	}{
		{"idle pool", PoolUsage{Acquired: 0, Max: 20}, "healthy"},
		{"headroom left", PoolUsage{Acquired: 17, Max: 20}, "healthy"},
		{"headroom used", PoolUsage{Acquired: 18, Max: 20}, "degraded"},
		{"small pool idle", PoolUsage{Acquired: 0, Max: 2}, "healthy"},
		{"small pool full", PoolUsage{Acquired: 2, Max: 2}, "degraded"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, msg := gradePool(tt.usage)
			assert.Equal(t, tt.want, got)
			if tt.want == "healthy" {
				assert.Empty(t, msg)
			} else {
				assert.Contains(t, msg, "acquired")
			}
		})
	}
}
