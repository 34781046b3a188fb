package main

import (
	"os"

	"go.uber.org/zap"
)

func testLogger() *zap.Logger { return zap.NewNop() }

func writeFile(path, content string) error {
	return os.WriteFile(path, []byte(content), 0o644)
}
