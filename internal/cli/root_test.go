package cli

import (
	"context"
	"testing"
)

func TestConfigContext(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Render.Colormap = "PiYG"

	ctx := withConfig(context.Background(), cfg)
	if got := configFromContext(ctx); got.Render.Colormap != "PiYG" {
		t.Errorf("configFromContext() colormap = %q, want PiYG", got.Render.Colormap)
	}

	// Without an attached config the defaults come back.
	if got := configFromContext(context.Background()); got.Render.Colormap != "RdYlGn" {
		t.Errorf("default colormap = %q, want RdYlGn", got.Render.Colormap)
	}
}
