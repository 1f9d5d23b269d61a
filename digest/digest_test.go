package digest

import (
	"bytes"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromBytes(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		payload []byte
		want    string
		wantErr error
	}{
		{
			name:    "known vector",
			payload: []byte("hello world"),
			want:    "b94d27b9934d3e08a52e52d7da7dabfac484efe37a5380ee9088f7ace2efcde9",
		},
		{
			name:    "single byte",
			payload: []byte{0x00},
			want:    "6e340b9cffb37a989ca544e6bb780a2c78901d3fb33738768511a30617afa01d",
		},
		{
			name:    "empty payload",
			payload: nil,
			wantErr: ErrEmptyPayload,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := FromBytes(tt.payload)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Len(t, got, HexLength)
		})
	}
}

func TestFromBytes_Deterministic(t *testing.T) {
	t.Parallel()

	payload := bytes.Repeat([]byte("certificate image bytes "), 4096)

	first, err := FromBytes(payload)
	require.NoError(t, err)

	for i := 0; i < 10; i++ {
		again, err := FromBytes(payload)
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}

func TestFromReader(t *testing.T) {
	t.Parallel()

	t.Run("matches FromBytes", func(t *testing.T) {
		t.Parallel()

		payload := []byte("hello world")
		want, err := FromBytes(payload)
		require.NoError(t, err)

		got, err := FromReader(bytes.NewReader(payload))
		require.NoError(t, err)
		assert.Equal(t, want, got)
	})

	t.Run("empty reader", func(t *testing.T) {
		t.Parallel()

		_, err := FromReader(bytes.NewReader(nil))
		require.ErrorIs(t, err, ErrEmptyPayload)
	})

	t.Run("read failure", func(t *testing.T) {
		t.Parallel()

		readErr := errors.New("disk gone")
		_, err := FromReader(io.MultiReader(strings.NewReader("partial"), &failingReader{err: readErr}))
		require.ErrorIs(t, err, readErr)
	})
}

func TestValidate(t *testing.T) {
	t.Parallel()

	valid := "b94d27b9934d3e08a52e52d7da7dabfac484efe37a5380ee9088f7ace2efcde9"

	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{name: "valid", input: valid},
		{name: "too short", input: valid[:63], wantErr: true},
		{name: "too long", input: valid + "a", wantErr: true},
		{name: "uppercase hex", input: strings.ToUpper(valid), wantErr: true},
		{name: "non-hex characters", input: strings.Replace(valid, "b", "z", 1), wantErr: true},
		{name: "empty", input: "", wantErr: true},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := Validate(tt.input)
			if tt.wantErr {
				require.ErrorIs(t, err, ErrInvalidDigest)
				return
			}
			require.NoError(t, err)
		})
	}
}

// failingReader always returns its configured error.
type failingReader struct {
	err error
}

func (r *failingReader) Read([]byte) (int, error) {
	return 0, r.err
}
