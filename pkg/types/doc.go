// Package types holds the value types and capability interfaces shared by the
// sfs core packages. It has no dependencies on the rest of the module so that
// every package can import it without cycles.
package types
