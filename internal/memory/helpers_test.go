package memory

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/endlessblink/memstore/internal/frontmatter"
)

func fixedClock(t *testing.T, daySeed int) func() time.Time {
	t.Helper()
	base := time.Date(2026, 1, daySeed, 12, 0, 0, 0, time.UTC)
	return func() time.Time { return base }
}

func renderDoc(doc *frontmatter.Document) ([]byte, error) {
	return frontmatter.Render(doc)
}

func writeDup(t *testing.T, path string, data []byte) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, data, 0o644))
}
