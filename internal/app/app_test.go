package app

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/caffeinepub/saree-catalogue-portal/internal/config"
)

func TestNewApp_FailureReleasesResources(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))

	cfg := &config.Config{
		ServiceName:  "catalog",
		PublicAppURL: "ftp://sarees.example/app/",
	}

	a, err := NewApp(cfg, logger)
	require.Error(t, err)
	assert.Nil(t, a)
	assert.Contains(t, err.Error(), "scheme must be http or https")
	assert.Contains(t, buf.String(), "application shutdown complete")
}
