package cli

import (
	"bytes"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vtracer-api/internal/config"
	"vtracer-api/internal/domain"
)

const fakeSVG = `<svg xmlns="http://www.w3.org/2000/svg"></svg>`

// fakeTracer writes a script that copies a fixed SVG to --output and a config
// file pointing at it. It returns the config path.
func fakeTracer(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	bin := filepath.Join(dir, "vtracer")
	script := `#!/bin/sh
while [ $# -gt 0 ]; do
  case "$1" in
    --output) out="$2"; shift ;;
  esac
  shift
done
printf '%s' '` + fakeSVG + `' > "$out"
`
	require.NoError(t, os.WriteFile(bin, []byte(script), 0o755))

	cfgPath := filepath.Join(dir, "config.yaml")
	cfg := "tracer:\n  binary_path: " + strconv.Quote(bin) + "\n  scratch_dir: " + strconv.Quote(dir) + "\n"
	require.NoError(t, os.WriteFile(cfgPath, []byte(cfg), 0o644))
	return cfgPath
}

func writePNG(t *testing.T, path string) {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 2, 2))
	img.Set(0, 0, color.RGBA{R: 255, A: 255})
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("CONFIG_PATH", "")
	t.Setenv("PORT", "")
	var out, errOut bytes.Buffer
	root := RootCommand()
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestConvertCommand_WritesDerivedFilename(t *testing.T) {
	cfgPath := fakeTracer(t)
	input := filepath.Join(t.TempDir(), "logo.png")
	writePNG(t, input)

	out, err := run(t, "--config", cfgPath, "convert", "--input", input)
	require.NoError(t, err)

	want := filepath.Join(filepath.Dir(input), "logo.svg")
	assert.Contains(t, out, want)
	got, err := os.ReadFile(want)
	require.NoError(t, err)
	assert.Equal(t, fakeSVG, string(got))
}

func TestConvertCommand_ExplicitOutput(t *testing.T) {
	cfgPath := fakeTracer(t)
	dir := t.TempDir()
	input := filepath.Join(dir, "photo.png")
	writePNG(t, input)
	output := filepath.Join(dir, "nested.svg")

	_, err := run(t, "--config", cfgPath, "convert", "--input", input, "--output", output,
		"--options", `{"color_mode":"binary"}`)
	require.NoError(t, err)
	_, err = os.Stat(output)
	assert.NoError(t, err)
}

func TestConvertCommand_RejectsDisallowedType(t *testing.T) {
	cfgPath := fakeTracer(t)
	input := filepath.Join(t.TempDir(), "notes.txt")
	require.NoError(t, os.WriteFile(input, []byte("plain text"), 0o644))

	_, err := run(t, "--config", cfgPath, "convert", "--input", input)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Contains(t, err.Error(), "Invalid file type")
}

func TestConvertCommand_RequiresInput(t *testing.T) {
	_, err := run(t, "convert")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "input")
}

func TestModelsCommand_PrintsCatalog(t *testing.T) {
	out, err := run(t, "models")
	require.NoError(t, err)

	var catalog domain.Catalog
	require.NoError(t, json.Unmarshal([]byte(out), &catalog))
	assert.Equal(t, domain.ModelCatalog(), catalog)
}

func TestEnsureLogDir(t *testing.T) {
	require.NoError(t, ensureLogDir(""))
	require.NoError(t, ensureLogDir("app.log"))

	dir := filepath.Join(t.TempDir(), "nested", "logs")
	require.NoError(t, ensureLogDir(filepath.Join(dir, "vtracer.log")))
	st, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, st.IsDir())
}

func freePort(t *testing.T) string {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()
	return strconv.Itoa(ln.Addr().(*net.TCPAddr).Port)
}

func TestStartServer_GracefulShutdown(t *testing.T) {
	cfg := config.Default()
	cfg.Server.Host = "127.0.0.1"
	cfg.Server.Port = freePort(t)
	cfg.Server.ShutdownTimeout = 2 * time.Second

	app := newApp(cfg)
	sigint := make(chan os.Signal, 1)
	idleConnsClosed := make(chan struct{})
	done := make(chan struct{})
	go func() {
		assert.NoError(t, startServer(app, cfg, sigint, idleConnsClosed))
		close(done)
	}()

	require.Eventually(t, func() bool {
		conn, err := net.Dial("tcp", cfg.Addr())
		if err != nil {
			return false
		}
		conn.Close()
		return true
	}, 3*time.Second, 20*time.Millisecond)

	sigint <- syscall.SIGTERM

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
	select {
	case <-idleConnsClosed:
	default:
		t.Fatal("idleConnsClosed not closed")
	}
	_, err := net.DialTimeout("tcp", cfg.Addr(), 200*time.Millisecond)
	assert.Error(t, err)
}

func TestStartServer_ReturnsListenError(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()

	cfg := config.Default()
	cfg.Server.Host = "127.0.0.1"
	cfg.Server.Port = strconv.Itoa(ln.Addr().(*net.TCPAddr).Port)

	app := newApp(cfg)
	idleConnsClosed := make(chan struct{})
	errCh := make(chan error, 1)
	go func() {
		errCh <- startServer(app, cfg, make(chan os.Signal), idleConnsClosed)
	}()

	select {
	case err := <-errCh:
		require.Error(t, err)
		assert.Contains(t, err.Error(), cfg.Addr())
	case <-time.After(5 * time.Second):
		t.Fatal("startServer kept waiting after the listener failed")
	}
	select {
	case <-idleConnsClosed:
	default:
		t.Fatal("idleConnsClosed not closed")
	}
}
