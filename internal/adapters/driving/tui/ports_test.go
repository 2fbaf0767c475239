package tui

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPorts_Validate(t *testing.T) {
	full := newTestPorts()
	assert.NoError(t, full.Validate())

	tests := []struct {
		name  string
		ports *Ports
		want  error
	}{
		{"nil", nil, ErrInvalidPorts},
		{"no report", &Ports{Document: full.Document, Settings: full.Settings}, ErrMissingReportService},
		{"no document", &Ports{Report: full.Report, Settings: full.Settings}, ErrMissingDocumentService},
		{"no settings", &Ports{Report: full.Report, Document: full.Document}, ErrMissingSettingsService},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, tt.ports.Validate(), tt.want)
		})
	}
}
