// Package web holds the status page of the monitoring server.
package web

import (
	"embed"
	"fmt"
	"io/fs"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
)

// devModeEnv names the variable that switches to serving from the source tree.
const devModeEnv = "MEMBIST_MONITOR_DEV"

//go:embed dist/*
var dist embed.FS

// GetAssets returns the page and its assets. When MEMBIST_MONITOR_DEV is
// true they are read from the source tree, so edits show up without a
// rebuild.
func GetAssets() http.FileSystem {
	if dev, _ := strconv.ParseBool(os.Getenv(devModeEnv)); dev {
		dir := sourceDist()
		fmt.Fprintf(os.Stderr, "monitor: serving the page from %s\n", dir)

		return http.Dir(dir)
	}

	sub, err := fs.Sub(dist, "dist")
	if err != nil {
		log.Panic(err)
	}

	return http.FS(sub)
}

func sourceDist() string {
	_, file, _, ok := runtime.Caller(0)
	if !ok {
		log.Panic("cannot locate the monitoring page sources")
	}

	return filepath.Join(filepath.Dir(file), "dist")
}
