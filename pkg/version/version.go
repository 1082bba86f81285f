package version

import "fmt"

// Version indicates what version of boxopt the binary belongs to
var Version string

// GitCommit indicates which git commit the binary was built from
var GitCommit string

// String returns a pretty string concatenation of Version and GitCommit
func String() string {
	v := Version
	if v == "" {
		v = "devel"
	}
	return fmt.Sprintf("boxopt version: %s\n    git commit: %s\n", v, GitCommit)
}
