package site

import (
	"embed"
	"io/fs"
)

//go:embed static
var embedded embed.FS

// static is the embedded asset tree rooted at the static directory.
func static() fs.FS {
	sub, err := fs.Sub(embedded, "static")
	if err != nil {
		panic("site: static assets missing: " + err.Error())
	}
	return sub
}
