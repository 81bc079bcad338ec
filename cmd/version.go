// File: cmd/version.go
package cmd

// Version is the application version.
// Set at build time with: go build -ldflags "-X github.com/xkilldash9x/tgcontacts/cmd.Version=1.0.0"
var Version = "1.0"
