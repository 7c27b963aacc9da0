package main

import (
	"bytes"
	"context"
	"flag"
	"os"
	"path"
	"strings"
	"testing"

	"github.com/rmorshead/nbsvg/config"
	"github.com/rmorshead/nbsvg/model"
	"github.com/rmorshead/nbsvg/protocol"
	"github.com/rmorshead/nbsvg/snapshot"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig(t *testing.T) {
	t.Setenv(protocol.NBSVG_CONFIG_ENV, "")
	configPath := path.Join(t.TempDir(), "nbsvg.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte("serve: localhost:8080\nfile: a.svg\n"), 0644))

	fs := flag.NewFlagSet("nbsvg", flag.ContinueOnError)
	fs.String(config.FlagServe, "", "")
	fs.String(config.FlagFile, "", "")
	require.NoError(t, fs.Parse([]string{"-file=b.svg"}))
	cfg, err := loadConfig(fs, configPath)
	require.NoError(t, err)
	assert.Equal(t, "localhost:8080", cfg.Serve)
	assert.Equal(t, "b.svg", cfg.File)

	// Nothing to do.
	fs = flag.NewFlagSet("nbsvg", flag.ContinueOnError)
	_, err = loadConfig(fs, "")
	require.Error(t, err)
}

func TestRenderHTML(t *testing.T) {
	m := model.New(map[string]any{"svg": `<circle r="3"/>`})
	var buf bytes.Buffer
	require.NoError(t, renderHTML(&buf, m))
	page := buf.String()
	assert.True(t, strings.HasPrefix(page, "<!DOCTYPE html>"))
	assert.Contains(t, page, `<div id="nbsvg-host"></div>`)
	assert.Contains(t, page, `createElementNS('http://www.w3.org/2000/svg', 'svg')`)
	assert.Contains(t, page, `style.setProperty('overflow', 'hidden')`)
	assert.Contains(t, page, `innerHTML = '<circle r="3"/>'`)
	assert.Equal(t, 4, strings.Count(page, "<script>"))
	assert.True(t, strings.HasSuffix(page, "</html>\n"))

	// The rendering view doesn't stay subscribed.
	assert.Equal(t, 0, m.Subscribers(model.ChangeEvent("svg")))
}

func TestRunRender(t *testing.T) {
	dir := t.TempDir()
	svgPath := path.Join(dir, "drawing.svg")
	require.NoError(t, os.WriteFile(svgPath, []byte(`<rect width="5"/>`), 0644))
	htmlPath := path.Join(dir, "drawing.html")

	cfg := config.Default()
	cfg.File = svgPath
	cfg.Render = htmlPath
	require.NoError(t, run(context.Background(), cfg))
	contents, err := os.ReadFile(htmlPath)
	require.NoError(t, err)
	assert.Contains(t, string(contents), `innerHTML = '<rect width="5"/>'`)
}

func TestRunSnapshot(t *testing.T) {
	dir := t.TempDir()
	svgPath := path.Join(dir, "drawing.svg")
	require.NoError(t, os.WriteFile(svgPath, []byte(`<ellipse rx="2"/>`), 0644))

	cfg := config.Default()
	cfg.File = svgPath
	cfg.Render = path.Join(dir, "drawing.html")
	cfg.Snapshot = path.Join(dir, "snapshots")
	require.NoError(t, run(context.Background(), cfg))
	saved, err := snapshot.Load[string](snapshot.MustNew(cfg.Snapshot), "svg")
	require.NoError(t, err)
	assert.Equal(t, `<ellipse rx="2"/>`, saved)

	// Without a source, the last drawing is restored.
	cfg.File = ""
	require.NoError(t, os.Remove(cfg.Render))
	require.NoError(t, run(context.Background(), cfg))
	contents, err := os.ReadFile(cfg.Render)
	require.NoError(t, err)
	assert.Contains(t, string(contents), `innerHTML = '<ellipse rx="2"/>'`)
}

func TestRunDemo(t *testing.T) {
	cfg := config.Default()
	cfg.Demo = true
	cfg.Render = path.Join(t.TempDir(), "demo.html")
	require.NoError(t, run(context.Background(), cfg))
	contents, err := os.ReadFile(cfg.Render)
	require.NoError(t, err)
	assert.Contains(t, string(contents), `id="hand"`)
}
