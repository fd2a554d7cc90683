package storage

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObjectKey(t *testing.T) {
	at := time.Unix(1700000000, 0)
	assert.Equal(t, "menu/abc-1700000000-masala-dosa.png", ObjectKey("abc", "Masala Dosa!.PNG", at))
	assert.Equal(t, "menu/abc-1700000000-image.jpg", ObjectKey("abc", "___.jpg", at))
}

func TestValidateImage(t *testing.T) {
	_, err := ValidateImage("photo", 10)
	assert.ErrorIs(t, err, ErrMissingExtension)

	_, err = ValidateImage("photo.gif", 10)
	assert.ErrorIs(t, err, ErrUnsupportedType)

	_, err = ValidateImage("photo.webp", MaxImageSize+1)
	assert.ErrorIs(t, err, ErrTooLarge)

	ext, err := ValidateImage("photo.JPEG", MaxImageSize)
	require.NoError(t, err)
	assert.Equal(t, ".jpeg", ext)
}

func TestSaveAndDelete(t *testing.T) {
	root := t.TempDir()
	s := NewLocalStore(root, "http://canteen.local/")

	url, err := s.SaveMenuImage("item1", "tea.png", 4, bytes.NewReader([]byte("data")), time.Unix(42, 0))
	require.NoError(t, err)
	assert.Equal(t, "http://canteen.local/public/menu/item1-42-tea.png", url)

	stored := filepath.Join(root, "menu", "item1-42-tea.png")
	content, err := os.ReadFile(stored)
	require.NoError(t, err)
	assert.Equal(t, "data", string(content))

	require.NoError(t, s.Delete(url))
	_, err = os.Stat(stored)
	assert.True(t, os.IsNotExist(err))

	require.NoError(t, s.Delete(url), "deleting twice is not an error")
	assert.Error(t, s.Delete("http://canteen.local/public/../etc/passwd"))
	assert.Error(t, s.Delete("/elsewhere/menu/x.png"))
}

func TestSaveRejectsOversizedStream(t *testing.T) {
	s := NewLocalStore(t.TempDir(), "")
	big := strings.NewReader(strings.Repeat("x", MaxImageSize+10))

	_, err := s.SaveMenuImage("item1", "big.jpg", 10, big, time.Unix(1, 0))
	assert.ErrorIs(t, err, ErrTooLarge)
}
