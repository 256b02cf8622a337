package plan_test

import (
	"testing"

	"github.com/modelfetch/modelfetch/internal/plan"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validPlan = `
batches:
  - name: checkpoints
    files:
      - url: https://huggingface.co/org/model/resolve/main/model.safetensors
        dest: /workspace/models/checkpoints/model.safetensors
        size: 6938078334
      - url: https://example.com/vae.pt
        dest: /workspace/models/vae/vae.pt
  - name: upscalers
    files:
      - url: https://example.com/up.pth
        dest: /workspace/models/upscale/up.pth
`

func TestParse_Valid(t *testing.T) {
	p, err := plan.Parse([]byte(validPlan))
	require.NoError(t, err)
	require.Len(t, p.Batches, 2)
	assert.Equal(t, "checkpoints", p.Batches[0].Name)
	assert.Equal(t, int64(6938078334), p.Batches[0].Files[0].Size)

	batches, err := p.JobBatches()
	require.NoError(t, err)
	require.Len(t, batches, 2)
	assert.Len(t, batches[0].Jobs, 2)
	assert.Equal(t, "/workspace/models/upscale/up.pth", batches[1].Jobs[0].DestPath)
}

func TestParse_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		wantErr string
	}{
		{
			"empty plan",
			`batches: []`,
			"no batches",
		},
		{
			"unnamed batch",
			"batches:\n  - files:\n      - {url: u, dest: /d}",
			"no name",
		},
		{
			"batch without files",
			"batches:\n  - name: empty\n    files: []",
			"no files",
		},
		{
			"missing url",
			"batches:\n  - name: b\n    files:\n      - {dest: /d}",
			"no url",
		},
		{
			"relative destination",
			"batches:\n  - name: b\n    files:\n      - {url: u, dest: models/a.bin}",
			"must be absolute",
		},
		{
			"duplicate destination across batches",
			"batches:\n" +
				"  - name: b1\n    files:\n      - {url: u1, dest: /models/a.bin}\n" +
				"  - name: b2\n    files:\n      - {url: u2, dest: /models/a.bin}",
			"claimed by both",
		},
		{
			"not yaml",
			`{{{`,
			"failed to parse plan",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := plan.Parse([]byte(tt.yaml))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
