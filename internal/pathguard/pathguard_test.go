package pathguard

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitizeProject(t *testing.T) {
	t.Run("strips disallowed characters", func(t *testing.T) {
		got, err := SanitizeProject("../etc")
		require.NoError(t, err)
		assert.Equal(t, "etc", got)
	})

	t.Run("rejects empty result", func(t *testing.T) {
		_, err := SanitizeProject("../../")
		require.Error(t, err)
	})

	t.Run("caps length", func(t *testing.T) {
		long := ""
		for i := 0; i < 100; i++ {
			long += "a"
		}
		got, err := SanitizeProject(long)
		require.NoError(t, err)
		assert.Len(t, got, MaxProjectNameLength)
	})
}

func TestResolve(t *testing.T) {
	root := "/var/data/store"

	t.Run("admits descendant", func(t *testing.T) {
		p, err := Resolve(root, "memories", "default")
		require.NoError(t, err)
		assert.Equal(t, "/var/data/store/memories/default", p)
	})

	t.Run("rejects traversal", func(t *testing.T) {
		_, err := Resolve(root, "..", "etc")
		require.Error(t, err)
	})

	t.Run("rejects prefix-but-not-descendant sibling", func(t *testing.T) {
		// "/var/data/store-evil" has "/var/data/store" as a string prefix but
		// is not a descendant; isWithin must require the separator.
		assert.False(t, isWithin("/var/data/store", "/var/data/store-evil"))
	})

	t.Run("root itself is admitted", func(t *testing.T) {
		p, err := Resolve(root)
		require.NoError(t, err)
		assert.Equal(t, root, p)
	})
}

func TestResolveProject(t *testing.T) {
	_, err := ResolveProject("/var/data/store", "../etc")
	require.Error(t, err) // a ".." element is rejected, not sanitized to "etc"

	p, err := ResolveProject("/var/data/store", "my.project")
	require.NoError(t, err)
	assert.Equal(t, "/var/data/store/myproject", p)
}
