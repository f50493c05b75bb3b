package assets

// StyleLoader loads a stylesheet by name, without the .css extension.
// Implementations return ErrStyleNotFound for unknown names and
// ErrInvalidAssetName for names that could address other files.
type StyleLoader interface {
	LoadStyle(name string) (string, error)
}
