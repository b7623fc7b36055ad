// Package archive stages a correlation-run file set, packs it with the
// system archiving utility, and atomically publishes the result.
package archive

import (
	"os/exec"
	"strings"
)

// Fixed identity recorded as the owner of every archive member.
const (
	archiveOwner = "root"
	archiveGroup = "root"
)

// Dialect identifies which of the two incompatible ownership-flag dialects
// the local archiving utility speaks. It is resolved once per run.
type Dialect int

const (
	DialectGNU Dialect = iota
	DialectBSD
)

func (d Dialect) String() string {
	if d == DialectGNU {
		return "gnu"
	}
	return "bsd"
}

// ownershipFlags returns the flags forcing the fixed owner/group identity
// and the permission mask for this dialect.
func (d Dialect) ownershipFlags() []string {
	if d == DialectGNU {
		return []string{
			"--owner=" + archiveOwner,
			"--group=" + archiveGroup,
			"--mode=u+rw,go+r,go-w",
		}
	}
	return []string{
		"--uname=" + archiveOwner,
		"--gname=" + archiveGroup,
	}
}

// DetectDialect probes the archiving utility once. A probe failure falls
// back to the BSD dialect, whose flags bsdtar always accepts.
func DetectDialect(tarPath string) Dialect {
	out, err := exec.Command(tarPath, "--version").CombinedOutput()
	if err != nil {
		return DialectBSD
	}
	return dialectFromVersion(string(out))
}

func dialectFromVersion(version string) Dialect {
	if strings.Contains(version, "GNU tar") {
		return DialectGNU
	}
	return DialectBSD
}
