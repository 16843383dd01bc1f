package app

// AssetHandle is an opaque, ref-counted handle to a shader, image, or
// other asset. The core never dereferences it; only an AssetServer
// implementation knows how to resolve one.
type AssetHandle struct {
	id uint64
}

// AssetServer fetches assets by path and manages AssetHandle lifetime.
// Implementations live outside this module (a concrete filesystem or
// packed-archive loader); app only depends on this narrow interface.
type AssetServer interface {
	Load(path string) (AssetHandle, error)
	Release(h AssetHandle)
}

// assetServerFactory is a package-level factory instance for
// constructing the handles AssetServer implementations hand back,
// keeping the counter private to this package.
type assetServerFactory struct {
	next uint64
}

// Factory is the package-level constructor for AssetHandle values; an
// AssetServer implementation calls it once per newly loaded asset.
var Factory = &assetServerFactory{}

// NewHandle allocates the next sequential AssetHandle.
func (f *assetServerFactory) NewHandle() AssetHandle {
	f.next++
	return AssetHandle{id: f.next}
}
