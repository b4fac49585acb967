package testdata

import "embed"

//go:embed specs/*.yaml
var Specs embed.FS

// Spec returns an embedded OpenAPI fixture by file name. It panics when the fixture is missing.
func Spec(name string) []byte {
	data, err := Specs.ReadFile("specs/" + name)
	if err != nil {
		panic(err)
	}

	return data
}
