package template

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFetchCommand(t *testing.T) {
	cmd := Tools{}.FetchCommand("/work", "https://example.com/master.zip", "psk.zip")

	assert.Equal(t, "curl", cmd.Name)
	assert.Equal(t, []string{"-L", "--fail", "https://example.com/master.zip", "--output", "psk.zip"}, cmd.Args)
	assert.Equal(t, "/work", cmd.Dir)
}

func TestExtractCommand(t *testing.T) {
	cmd := Tools{Tar: "bsdtar"}.ExtractCommand("/work", "psk.zip")

	assert.Equal(t, "bsdtar", cmd.Name)
	assert.Equal(t, []string{"-zxf", "psk.zip", "--strip", "1"}, cmd.Args)
	assert.Equal(t, "/work", cmd.Dir)
}

// TestStartCommand covers script preference, comment-tolerant parsing and
// the fallback.
func TestStartCommand(t *testing.T) {
	tests := []struct {
		name     string
		manifest string
		want     string
		wantErr  bool
	}{
		{
			name:     "start script",
			manifest: `{"scripts": {"start": "node server.js", "dev": "vite"}}`,
			want:     "npm start",
		},
		{
			name:     "dev script only",
			manifest: `{"scripts": {"dev": "vite"}}`,
			want:     "npm run dev",
		},
		{
			name: "comments and trailing commas",
			manifest: `{
				// starter kit scripts
				"scripts": {
					"start": "gulp", /* default task */
				},
			}`,
			want: "npm start",
		},
		{
			name:     "no scripts",
			manifest: `{"name": "kit"}`,
			want:     "make run",
		},
		{
			name:     "not json",
			manifest: `<html>404</html>`,
			want:     "make run",
			wantErr:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			require.NoError(t, os.WriteFile(filepath.Join(dir, ManifestFile), []byte(tt.manifest), 0644))

			got, err := StartCommand(dir, "npm", "make run")
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestStartCommandMissingManifest(t *testing.T) {
	got, err := StartCommand(t.TempDir(), "npm", "npm start")
	require.NoError(t, err)
	assert.Equal(t, "npm start", got)
}

func TestStartCommandPackageManager(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ManifestFile), []byte(`{"scripts":{"dev":"next dev"}}`), 0644))

	got, err := StartCommand(dir, "pnpm", "")
	require.NoError(t, err)
	assert.Equal(t, "pnpm run dev", got)
}

func TestProgramOf(t *testing.T) {
	assert.Equal(t, "npm", ProgramOf("npm install"))
	assert.Equal(t, "yarn", ProgramOf("  yarn  "))
	assert.Equal(t, "", ProgramOf(""))
}

func TestNodeEngine(t *testing.T) {
	dir := t.TempDir()

	got, err := NodeEngine(dir)
	require.NoError(t, err)
	assert.Empty(t, got, "missing manifest")

	require.NoError(t, os.WriteFile(filepath.Join(dir, ManifestFile),
		[]byte(`{"engines": {"node": " >=18 "}, /* kit */ }`), 0644))
	got, err = NodeEngine(dir)
	require.NoError(t, err)
	assert.Equal(t, ">=18", got)
}

func TestSatisfiesEngine(t *testing.T) {
	tests := []struct {
		constraint string
		version    string
		want       bool
		wantErr    bool
	}{
		{constraint: ">=18", version: "v20.11.1\n", want: true},
		{constraint: ">=18", version: "v16.20.2", want: false},
		{constraint: "^20 || ^22", version: "v22.1.0", want: true},
		{constraint: "18.x", version: "v18.19.0", want: true},
		{constraint: "18.x", version: "v19.0.0", want: false},
		{constraint: "not a range", version: "v20.0.0", wantErr: true},
		{constraint: ">=18", version: "node", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.constraint+" "+tt.version, func(t *testing.T) {
			got, err := SatisfiesEngine(tt.constraint, tt.version)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
