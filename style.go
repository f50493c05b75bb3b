package include

import "github.com/alnah/go-include/internal/assets"

// Style loading errors.
var (
	ErrStyleNotFound    = assets.ErrStyleNotFound
	ErrInvalidStyleName = assets.ErrInvalidAssetName
	ErrInvalidStyleDir  = assets.ErrInvalidBasePath
)

// DefaultStyle is the built-in style for screen reading.
const DefaultStyle = assets.DefaultStyle

// StyleNames lists the built-in styles.
func StyleNames() []string { return assets.Names() }

// LoadStyle returns the stylesheet for nameOrPath, for use with WithStyle.
// A value containing a path separator or ending in .css is read as a file.
// A name is looked up in customDir/styles first when customDir is set, then
// among the built-in styles.
func LoadStyle(nameOrPath, customDir string) (string, error) {
	r, err := assets.NewStyleResolver(customDir)
	if err != nil {
		return "", err
	}
	return r.Resolve(nameOrPath)
}
