package output

import (
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/stretchr/testify/assert"
)

func TestStatusStyle(t *testing.T) {
	tests := []struct {
		name     string
		status   string
		wantBold bool
		wantFG   lipgloss.Color
		wantDim  bool
	}{
		{
			name:   "installed returns green",
			status: StatusInstalled,
			wantFG: colorGreen,
		},
		{
			name:   "upgraded returns yellow",
			status: StatusUpgraded,
			wantFG: ColorYellow,
		},
		{
			name:    "reused returns faint",
			status:  StatusReused,
			wantDim: true,
		},
		{
			name:   "exhausted returns red",
			status: StatusExhausted,
			wantFG: colorRed,
		},
		{
			name:     "failed returns bold red",
			status:   statusFailed,
			wantBold: true,
			wantFG:   colorBoldRed,
		},
		{
			name:   "unknown returns default unstyled",
			status: "unknown-value",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			style := statusStyle(tt.status)
			if tt.wantBold {
				assert.True(t, style.GetBold(), "expected bold")
			}
			if tt.wantFG != "" {
				assert.Equal(t, tt.wantFG, style.GetForeground(), "foreground color mismatch")
			}
			if tt.wantDim {
				assert.True(t, style.GetFaint(), "expected faint")
			}
		})
	}
}

func TestFormatStageLine(t *testing.T) {
	result := FormatStageLine("image", "acr.io/deep-research:deadbee", StatusPushed)

	stripped := stripAnsi(result)
	assert.True(t, strings.HasPrefix(stripped, "image:"))
	assert.Contains(t, stripped, "acr.io/deep-research:deadbee")
	assert.Contains(t, stripped, StatusPushed)

	t.Run("alignment consistency", func(t *testing.T) {
		line1 := stripAnsi(FormatStageLine("identity", "id-deep-research", StatusCreated))
		line2 := stripAnsi(FormatStageLine("release", "deep-research/mcp", StatusCreated))

		assert.Equal(t, strings.Index(line1, StatusCreated), strings.Index(line2, StatusCreated),
			"status words should align to same column")
	})
}

func TestFormatCheckmark(t *testing.T) {
	result := FormatCheckmark("Release applied")
	assert.Contains(t, result, "✔", "should contain checkmark")
	assert.Contains(t, result, "Release applied", "should contain message")
}

func TestFormatWarning(t *testing.T) {
	result := stripAnsi(FormatWarning("endpoint not observed"))
	assert.Equal(t, "! endpoint not observed", result)
}

// stripAnsi removes ANSI escape sequences for content assertions.
func stripAnsi(s string) string {
	var result strings.Builder
	inEscape := false
	for i := 0; i < len(s); i++ {
		if s[i] == '\033' {
			inEscape = true
			continue
		}
		if inEscape {
			if s[i] == 'm' {
				inEscape = false
			}
			continue
		}
		result.WriteByte(s[i])
	}
	return result.String()
}
