// Package useragent builds the User-Agent header sent with outbound HTTP requests.
package useragent

import (
	"fmt"
	"runtime"

	"github.com/toozej/precureplaylist/pkg/version"
)

// Product is the product token of the User-Agent string.
const Product = "precureplaylist"

// Get returns the application User-Agent for the running binary, e.g.
// "precureplaylist/v1.2.3 (linux; amd64)".
func Get() string {
	return Build(Product, version.Version, runtime.GOOS, runtime.GOARCH)
}

// Build formats a User-Agent string from its parts. An empty ver becomes "dev".
func Build(product, ver, goos, goarch string) string {
	if ver == "" {
		ver = "dev"
	}
	return fmt.Sprintf("%s/%s (%s; %s)", product, ver, goos, goarch)
}
