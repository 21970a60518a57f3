//go:build purego || !(386 || amd64 || arm64)

package bitops

func available() Extension {
	return ExtensionNone
}

func kernelFor(Extension) func(front, back []byte) {
	return nil
}
