package inbox

import (
	"crypto/sha256"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

type source struct {
	name string
	data []byte
}

// archiveSources writes the rendered term sheets into a block under
// archive/{BLOCK_ID}/ and returns the block id. The id is the timestamp
// plus the first 8 hex digits of the data hash.
func archiveSources(root string, sources []source, now time.Time) (string, error) {
	var dataBuf strings.Builder
	names := make([]string, 0, len(sources))
	for _, s := range sources {
		dataBuf.Write(s.data)
		if len(s.data) > 0 && s.data[len(s.data)-1] != '\n' {
			dataBuf.WriteString("\n")
		}
		names = append(names, s.name)
	}
	data := dataBuf.String()

	hash := sha256.Sum256([]byte(data))
	hashHex := fmt.Sprintf("%x", hash)
	blockID := fmt.Sprintf("%s-%s", now.Format("20060102T150405"), hashHex[:8])

	blockDir := filepath.Join(root, DirArchive, blockID)
	if err := os.MkdirAll(blockDir, 0755); err != nil {
		return "", err
	}

	meta := fmt.Sprintf("block_id: %s\ncreated_at: %s\nfiles: %d\nnames: %s\nsha256: %s\n",
		blockID,
		now.UTC().Format(time.RFC3339),
		len(sources),
		strings.Join(names, ", "),
		hashHex,
	)
	if err := os.WriteFile(filepath.Join(blockDir, "meta.txt"), []byte(meta), 0644); err != nil {
		return "", err
	}
	if err := os.WriteFile(filepath.Join(blockDir, "data"), []byte(data), 0644); err != nil {
		return "", err
	}
	return blockID, nil
}
