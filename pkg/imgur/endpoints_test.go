package imgur

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"imgurr/pkg/errors"
)

func TestPagePath(t *testing.T) {
	path, err := PagePath("/r/test", 0)
	require.NoError(t, err)
	assert.Equal(t, "/r/test/page/0.json", path)

	path, err = PagePath("/r/test", 42)
	require.NoError(t, err)
	assert.Equal(t, "/r/test/page/42.json", path)

	_, err = PagePath("test", 0)
	assert.True(t, errors.IsType(err, errors.ErrorTypeInvalidName))

	_, err = PagePath("/r/test", -1)
	assert.True(t, errors.IsType(err, errors.ErrorTypeInvalidName))
}

func TestImagePath(t *testing.T) {
	tests := []struct {
		name    string
		img     Image
		want    string
		wantErr bool
	}{
		{"jpg", Image{Hash: "abc123", Ext: ".jpg"}, "/abc123.jpg", false},
		{"gif", Image{Hash: "Zz9", Ext: ".gif"}, "/Zz9.gif", false},
		{"slash in hash", Image{Hash: "ab/c", Ext: ".jpg"}, "", true},
		{"unknown ext", Image{Hash: "abc", Ext: ".webm"}, "", true},
		{"missing dot", Image{Hash: "abc", Ext: "jpg"}, "", true},
		{"empty hash", Image{Hash: "", Ext: ".png"}, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ImagePath(&tt.img)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.IsType(err, errors.ErrorTypeInvalidDescriptor))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFileName(t *testing.T) {
	assert.Equal(t, "abc123.jpg", FileName(&Image{Hash: "abc123", Ext: ".jpg"}))
}
