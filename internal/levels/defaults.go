package levels

import (
	"embed"
	"fmt"
	"io/fs"
)

//go:embed builtin/*.yaml
var builtinFS embed.FS

func init() {
	entries, err := fs.Glob(builtinFS, "builtin/*.yaml")
	if err != nil {
		panic(fmt.Sprintf("levels: reading built-ins: %v", err))
	}
	for _, path := range entries {
		data, err := builtinFS.ReadFile(path)
		if err != nil {
			panic(fmt.Sprintf("levels: reading built-in %s: %v", path, err))
		}
		lvl, err := ParseYAML(data)
		if err != nil {
			panic(fmt.Sprintf("levels: built-in %s: %v", path, err))
		}
		Register(lvl)
	}
}
