package task

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/endlessblink/memstore/internal/store"
	"github.com/endlessblink/memstore/internal/storeerr"
)

const serialCounterFile = "task-serial.counter"

// nextSerial reads, increments, and rewrites the store-wide serial counter
// under <root>/data, returning e.g. "TASK-042". The read-increment-write
// runs under WithFileLock on the counter file itself, so concurrent calls
// are serialized here.
func nextSerial(engine *store.Engine) (string, error) {
	path := filepath.Join(engine.Root, "data", serialCounterFile)

	var serial string
	err := engine.WithFileLock(path, func() error {
		n, err := readCounter(path)
		if err != nil {
			return err
		}
		n++
		if err := store.WriteAtomic(path, []byte(strconv.Itoa(n)), 0o644); err != nil {
			return storeerr.Wrap(storeerr.Internal, err, "writing serial counter: %v", err)
		}
		serial = fmt.Sprintf("TASK-%03d", n)
		return nil
	})
	return serial, err
}

func readCounter(path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, storeerr.Wrap(storeerr.Internal, err, "reading serial counter: %v", err)
	}
	n, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil {
		return 0, storeerr.Wrap(storeerr.Internal, err, "parsing serial counter: %v", err)
	}
	return n, nil
}
