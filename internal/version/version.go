// ABOUTME: Version and product constants
// ABOUTME: Reported by the CLI and the probe command
package version

const (
	Version      = "0.3.0"
	Product      = "oggplay"
	Manufacturer = "oggplay-go"
)

// String returns the product name and version
func String() string {
	return Product + " " + Version
}
