package kv

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testStores() map[string]func(t *testing.T) Store {
	return map[string]func(t *testing.T) Store{
		"file": func(t *testing.T) Store {
			s, err := NewFileStore(t.TempDir())
			require.NoError(t, err)
			return s
		},
		"sqlite": func(t *testing.T) Store {
			s, err := NewSQLiteStore(filepath.Join(t.TempDir(), "state.db"))
			require.NoError(t, err)
			t.Cleanup(func() { s.Close() })
			return s
		},
		"memory": func(t *testing.T) Store {
			return NewMemoryStore()
		},
	}
}

func TestStore_Contract(t *testing.T) {
	for name, newStore := range testStores() {
		t.Run(name+" missing key", func(t *testing.T) {
			s := newStore(t)

			_, ok, err := s.Get("token")
			require.NoError(t, err)
			assert.False(t, ok)
		})

		t.Run(name+" set many then get", func(t *testing.T) {
			s := newStore(t)

			err := s.SetMany(map[string]string{"token": "T1", "userRole": "admin"})
			require.NoError(t, err)

			v, ok, err := s.Get("token")
			require.NoError(t, err)
			assert.True(t, ok)
			assert.Equal(t, "T1", v)

			v, ok, err = s.Get("userRole")
			require.NoError(t, err)
			assert.True(t, ok)
			assert.Equal(t, "admin", v)
		})

		t.Run(name+" overwrite", func(t *testing.T) {
			s := newStore(t)

			require.NoError(t, Set(s, "token", "T1"))
			require.NoError(t, Set(s, "token", "T2"))

			v, _, err := s.Get("token")
			require.NoError(t, err)
			assert.Equal(t, "T2", v)
		})

		t.Run(name+" delete", func(t *testing.T) {
			s := newStore(t)

			require.NoError(t, s.SetMany(map[string]string{"token": "T1", "userRole": "admin"}))
			require.NoError(t, s.Delete("token", "userRole", "never-set"))

			_, ok, err := s.Get("token")
			require.NoError(t, err)
			assert.False(t, ok)
			_, ok, err = s.Get("userRole")
			require.NoError(t, err)
			assert.False(t, ok)
		})

		t.Run(name+" rejects empty key", func(t *testing.T) {
			s := newStore(t)

			err := s.SetMany(map[string]string{"": "x"})
			assert.ErrorIs(t, err, ErrEmptyKey)
		})
	}
}

func TestFileStore_PersistsAcrossInstances(t *testing.T) {
	dir := t.TempDir()

	s1, err := NewFileStore(dir)
	require.NoError(t, err)
	require.NoError(t, s1.SetMany(map[string]string{"token": "T1"}))

	s2, err := NewFileStore(dir)
	require.NoError(t, err)

	v, ok, err := s2.Get("token")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "T1", v)
}

func TestFileStore_Permissions(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "state")

	s, err := NewFileStore(dir)
	require.NoError(t, err)

	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0700), info.Mode().Perm())

	info, err = os.Stat(s.Path())
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())

	// no temp file left behind after a write
	require.NoError(t, Set(s, "token", "T1"))
	_, err = os.Stat(s.Path() + ".tmp")
	assert.True(t, os.IsNotExist(err))
}

func TestFileStore_CorruptDocument(t *testing.T) {
	dir := t.TempDir()
	s, err := NewFileStore(dir)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(s.Path(), []byte("{not json"), 0600))

	_, _, err = s.Get("token")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse state")
}

func TestSQLiteStore_PersistsAcrossInstances(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "state.db")

	s1, err := NewSQLiteStore(path)
	require.NoError(t, err)
	require.NoError(t, s1.SetMany(map[string]string{"token": "T1", "userRole": "standard"}))
	require.NoError(t, s1.Close())

	s2, err := NewSQLiteStore(path)
	require.NoError(t, err)
	defer s2.Close()

	v, ok, err := s2.Get("userRole")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "standard", v)
}

func TestOpen(t *testing.T) {
	tests := []struct {
		backend string
		wantErr error
	}{
		{backend: BackendFile},
		{backend: BackendSQLite},
		{backend: BackendMemory},
		{backend: "redis", wantErr: ErrUnknownBackend},
	}

	for _, tt := range tests {
		t.Run(tt.backend, func(t *testing.T) {
			s, err := Open(tt.backend, t.TempDir())
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			require.NoError(t, s.Close())
		})
	}
}
