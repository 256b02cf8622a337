package backend

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseHubURL(t *testing.T) {
	tests := []struct {
		name string
		url  string
		want hubSource
		ok   bool
	}{
		{
			"resolve url",
			"https://huggingface.co/stabilityai/sdxl-base/resolve/main/sd_xl_base_1.0.safetensors",
			hubSource{Repo: "stabilityai/sdxl-base", Revision: "main", FilePath: "sd_xl_base_1.0.safetensors"},
			true,
		},
		{
			"nested file path",
			"https://huggingface.co/org/model/resolve/fp16/vae/diffusion_pytorch_model.bin",
			hubSource{Repo: "org/model", Revision: "fp16", FilePath: "vae/diffusion_pytorch_model.bin"},
			true,
		},
		{
			"plain http",
			"http://huggingface.co/a/b/resolve/main/f.bin",
			hubSource{Repo: "a/b", Revision: "main", FilePath: "f.bin"},
			true,
		},
		{"non-hub host", "https://civitai.com/api/download/models/1234", hubSource{}, false},
		{"hub page url without resolve", "https://huggingface.co/org/model", hubSource{}, false},
		{"blob url", "https://huggingface.co/org/model/blob/main/f.bin", hubSource{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := parseHubURL(tt.url)
			require.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func TestHubClient_CanHandle(t *testing.T) {
	c := NewHubClient()

	assert.True(t, c.CanHandle("https://huggingface.co/org/model/resolve/main/model.safetensors"))
	assert.False(t, c.CanHandle("https://example.com/model.safetensors"))
}
