package cli

import (
	"bytes"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/restaurant-seeder/constants"
	"github.com/joseph-ayodele/restaurant-seeder/internal/common"
	"github.com/joseph-ayodele/restaurant-seeder/internal/pipeline"
)

func TestNewLogger(t *testing.T) {
	tests := []struct {
		name    string
		opts    LogOptions
		wantErr bool
		want    string
	}{
		{name: "text drops time and level", opts: LogOptions{Format: "text", Level: "info"}, want: "msg=hello k=v"},
		{name: "json", opts: LogOptions{Format: "json", Level: "info"}, want: `"msg":"hello"`},
		{name: "bad format", opts: LogOptions{Format: "xml", Level: "info"}, wantErr: true},
		{name: "bad level", opts: LogOptions{Format: "text", Level: "loud"}, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			logger, err := NewLogger(&buf, tt.opts)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			logger.Info("hello", "k", "v")
			assert.Contains(t, buf.String(), tt.want)
			assert.NotContains(t, buf.String(), "level=")
		})
	}
}

func TestBindDatabaseFlags_Override(t *testing.T) {
	cfg := common.DatabaseConfig{Driver: "sqlite", DSN: "file:a.db"}
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	BindDatabaseFlags(fs, &cfg)
	require.NoError(t, fs.Parse([]string{"--db-driver", "postgres"}))
	assert.Equal(t, "postgres", cfg.Driver)
	assert.Equal(t, "file:a.db", cfg.DSN)
}

func TestPrintSummary(t *testing.T) {
	color.NoColor = true
	var buf bytes.Buffer
	PrintSummary(&buf, pipeline.RunSummary{
		RunID:        "run-1",
		Status:       constants.RunStatusPartial,
		FilesScanned: 3,
		FilesParsed:  2,
		FilesFailed:  1,
		Created:      4,
		Errors:       1,
		LimitReached: true,
	})
	out := buf.String()
	assert.Contains(t, out, "run-1")
	assert.Contains(t, out, "PARTIAL")
	assert.Contains(t, out, "3 scanned, 2 parsed, 1 failed")
	assert.Contains(t, out, "1 errors")
	assert.True(t, strings.Contains(out, "limit reached"))
}

func TestFail_ReturnsCode(t *testing.T) {
	color.NoColor = true
	assert.Equal(t, 3, Fail(3, "open database: %v", "refused"))
}
