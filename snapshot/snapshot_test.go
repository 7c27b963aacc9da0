package snapshot

import (
	"os"
	"path"
	"testing"

	"github.com/rmorshead/nbsvg/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStorage(t *testing.T) {
	s := MustNew(path.Join(t.TempDir(), "snapshots"))

	_, err := Load[string](s, "svg")
	require.ErrorIs(t, err, os.ErrNotExist)

	require.NoError(t, s.Save("svg", "<g/>"))
	require.NoError(t, s.Save("width", 200))
	got, err := Load[string](s, "svg")
	require.NoError(t, err)
	assert.Equal(t, "<g/>", got)
	width, err := Load[int](s, "width")
	require.NoError(t, err)
	assert.Equal(t, 200, width)

	_, err = Load[int](s, "svg")
	require.Error(t, err, "wrong type")

	require.NoError(t, s.Save("svg", "<circle/>"))
	got, err = Load[string](s, "svg")
	require.NoError(t, err)
	assert.Equal(t, "<circle/>", got)

	keys, err := s.Keys()
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"svg", "width"}, keys)

	require.NoError(t, s.Reset("width"))
	require.NoError(t, s.Reset("width"))
	keys, err = s.Keys()
	require.NoError(t, err)
	assert.Equal(t, []string{"svg"}, keys)

	require.Error(t, s.Save("../escape", 1))
	require.Error(t, s.Save("", 1))
}

func TestNewNotADirectory(t *testing.T) {
	filePath := path.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(filePath, []byte("x"), 0644))
	_, err := New(filePath)
	require.Error(t, err)
}

func TestBind(t *testing.T) {
	s := MustNew(t.TempDir())
	m := model.New(map[string]any{"svg": ""})
	release, err := Bind(s, m, "svg")
	require.NoError(t, err)
	assert.Equal(t, "", m.String("svg"), "nothing to restore")

	m.Set("svg", "<rect/>")
	m.Set("other", "not saved")
	got, err := Load[string](s, "svg")
	require.NoError(t, err)
	assert.Equal(t, "<rect/>", got)
	keys, err := s.Keys()
	require.NoError(t, err)
	assert.Equal(t, []string{"svg"}, keys)

	release()
	assert.Equal(t, 0, m.Subscribers(model.ChangeEvent("svg")))
	m.Set("svg", "<line/>")
	got, err = Load[string](s, "svg")
	require.NoError(t, err)
	assert.Equal(t, "<rect/>", got, "changes after release are not saved")

	// A new model restores the last saved value.
	m2 := model.New(nil)
	release, err = Bind(s, m2, "svg")
	require.NoError(t, err)
	defer release()
	assert.Equal(t, "<rect/>", m2.String("svg"))
}
