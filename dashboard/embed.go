// Package dashboard holds the embedded tally page served by the API at "/".
package dashboard

import (
	"embed"
	"io/fs"
)

//go:embed dist
var distFS embed.FS

// FS returns the page assets rooted at dist/.
func FS() fs.FS {
	sub, err := fs.Sub(distFS, "dist")
	if err != nil {
		panic(err)
	}
	return sub
}
